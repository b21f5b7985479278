package services

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kadrohq/kadro/internal/models"
	mongorepo "github.com/kadrohq/kadro/internal/repositories/mongo"
	"github.com/kadrohq/kadro/internal/utils"
)

const (
	AnalysisStatusPending    = "pending"
	AnalysisStatusProcessing = "processing"
	AnalysisStatusDone       = "done"
	AnalysisStatusFailed     = "failed"
)

type AnalysisService interface {
	Get(ctx context.Context, interviewID int64) (*models.InterviewAnalysis, error)
	// Regenerate resets the analysis to pending and requeues the interview.
	Regenerate(ctx context.Context, interviewID int64) error
}

type analysisService struct {
	analyses   mongorepo.AnalysisRepository
	interviews InterviewService
	rdb        *redis.Client
}

func NewAnalysisService(analyses mongorepo.AnalysisRepository, interviews InterviewService, rdb *redis.Client) AnalysisService {
	return &analysisService{analyses: analyses, interviews: interviews, rdb: rdb}
}

func (s *analysisService) Get(ctx context.Context, interviewID int64) (*models.InterviewAnalysis, error) {
	const op = "AnalysisService.Get"

	a, err := s.analyses.GetByInterview(ctx, interviewID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "analysis not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load analysis", err)
	}
	return a, nil
}

func (s *analysisService) Regenerate(ctx context.Context, interviewID int64) error {
	const op = "AnalysisService.Regenerate"

	iv, err := s.interviews.Get(ctx, interviewID)
	if err != nil {
		return err
	}
	if iv.Status == models.InterviewStatusPending {
		return utils.E(utils.CodeInvalidArgument, op, "interview has no recorded conversation yet", nil)
	}

	if err := s.analyses.Upsert(ctx, &models.InterviewAnalysis{
		InterviewID: interviewID,
		Status:      AnalysisStatusPending,
	}); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to reset analysis", err)
	}

	if s.rdb == nil {
		return utils.E(utils.CodeUnavailable, op, "analysis queue is not configured", nil)
	}
	err = s.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: AnalysisStream,
		Values: map[string]any{
			"interview_id": strconv.FormatInt(interviewID, 10),
			"enqueued_at":  time.Now().UTC().Format(time.RFC3339),
		},
	}).Err()
	if err != nil {
		return utils.E(utils.CodeUnavailable, op, "failed to enqueue analysis job", err)
	}
	return nil
}
