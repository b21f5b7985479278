package services

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/kadrohq/kadro/internal/models"
	pgrepo "github.com/kadrohq/kadro/internal/repositories/postgres"
	"github.com/kadrohq/kadro/internal/utils"
)

// TurnChannel returns the Redis pub/sub channel live monitors subscribe to
// for an interview's dialogue turns.
func TurnChannel(interviewID int64) string {
	return "interview:" + strconv.FormatInt(interviewID, 10) + ":turns"
}

type ConversationService interface {
	Append(ctx context.Context, interviewID int64, role, content string, sequenceNumber int) (*models.ConversationMessage, error)
	ListByInterview(ctx context.Context, interviewID int64) ([]models.ConversationMessage, error)
}

type conversationService struct {
	messages pgrepo.ConversationRepository
	rdb      *redis.Client
	log      *logrus.Logger
}

func NewConversationService(messages pgrepo.ConversationRepository, rdb *redis.Client, log *logrus.Logger) ConversationService {
	return &conversationService{messages: messages, rdb: rdb, log: log}
}

func (s *conversationService) Append(ctx context.Context, interviewID int64, role, content string, sequenceNumber int) (*models.ConversationMessage, error) {
	const op = "ConversationService.Append"

	if interviewID == 0 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "interview_id is required", nil)
	}
	switch role {
	case models.MessageRoleAssistant, models.MessageRoleUser, models.MessageRoleSystem:
	default:
		return nil, utils.E(utils.CodeInvalidArgument, op, "unknown message role", nil)
	}
	if content == "" || sequenceNumber < 1 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "content and a positive sequence_number are required", nil)
	}

	msg := &models.ConversationMessage{
		InterviewID:    interviewID,
		Role:           role,
		Content:        content,
		SequenceNumber: sequenceNumber,
		Timestamp:      time.Now().UTC(),
	}
	if err := s.messages.Insert(ctx, msg); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to store message", err)
	}

	s.publish(ctx, msg)
	return msg, nil
}

func (s *conversationService) ListByInterview(ctx context.Context, interviewID int64) ([]models.ConversationMessage, error) {
	const op = "ConversationService.ListByInterview"

	rows, err := s.messages.ListByInterview(ctx, interviewID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list messages", err)
	}
	return rows, nil
}

// publish fans the turn out to live admin monitors. Persistence already
// succeeded, so a pub/sub failure is only logged.
func (s *conversationService) publish(ctx context.Context, msg *models.ConversationMessage) {
	if s.rdb == nil {
		return
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}
	if err := s.rdb.Publish(ctx, TurnChannel(msg.InterviewID), payload).Err(); err != nil && s.log != nil {
		s.log.WithError(err).WithField("interview_id", msg.InterviewID).Debug("turn publish failed")
	}
}
