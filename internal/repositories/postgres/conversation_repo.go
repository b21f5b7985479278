package postgres

import (
	"context"

	"github.com/kadrohq/kadro/internal/models"
	"gorm.io/gorm"
)

type ConversationRepository interface {
	Insert(ctx context.Context, msg *models.ConversationMessage) error
	ListByInterview(ctx context.Context, interviewID int64) ([]models.ConversationMessage, error)
}

type conversationRepo struct {
	db *gorm.DB
}

func NewConversationRepo(db *gorm.DB) ConversationRepository {
	return &conversationRepo{db: db}
}

func (r *conversationRepo) Insert(ctx context.Context, msg *models.ConversationMessage) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

func (r *conversationRepo) ListByInterview(ctx context.Context, interviewID int64) ([]models.ConversationMessage, error) {
	var rows []models.ConversationMessage
	err := r.db.WithContext(ctx).
		Where("interview_id = ?", interviewID).
		Order("sequence_number ASC").
		Find(&rows).Error
	return rows, err
}
