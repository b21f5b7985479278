package services

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/kadrohq/kadro/internal/cache"
	"github.com/kadrohq/kadro/internal/models"
	pgrepo "github.com/kadrohq/kadro/internal/repositories/postgres"
	"github.com/kadrohq/kadro/internal/storage"
	"github.com/kadrohq/kadro/internal/utils"
)

// AnalysisStream is the Redis stream completed interviews are queued on
// for background analysis.
const AnalysisStream = "analysis:stream"

// mediaURLTTL bounds the signed playback URLs handed to the dashboard.
// Recordings are stored as bare object keys; the bucket is not public.
const mediaURLTTL = 15 * time.Minute

type InterviewService interface {
	// Get and List resolve stored media keys into time-limited signed GET
	// URLs so dashboard clients can play the recordings directly.
	Get(ctx context.Context, id int64) (*models.Interview, error)
	List(ctx context.Context) ([]models.Interview, error)
	SetStatus(ctx context.Context, id int64, status models.InterviewStatus) error
	// AssociateMedia attaches recorded media to the candidate's interview,
	// creating the interview row if the conversation never produced one.
	// The token is consumed: subsequent verifications fail.
	AssociateMedia(ctx context.Context, token, videoURL, audioURL string) (*models.Interview, error)
}

type interviewService struct {
	interviews pgrepo.InterviewRepository
	candidates pgrepo.CandidateRepository
	tokens     TokenService
	cache      cache.Cache
	rdb        *redis.Client
	signer     storage.Signer
	log        *logrus.Logger
}

func NewInterviewService(
	interviews pgrepo.InterviewRepository,
	candidates pgrepo.CandidateRepository,
	tokens TokenService,
	c cache.Cache,
	rdb *redis.Client,
	signer storage.Signer,
	log *logrus.Logger,
) InterviewService {
	return &interviewService{
		interviews: interviews,
		candidates: candidates,
		tokens:     tokens,
		cache:      c,
		rdb:        rdb,
		signer:     signer,
		log:        log,
	}
}

func (s *interviewService) Get(ctx context.Context, id int64) (*models.Interview, error) {
	const op = "InterviewService.Get"

	iv, err := s.interviews.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "interview not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get interview", err)
	}
	s.presentMedia(ctx, iv)
	return iv, nil
}

func (s *interviewService) List(ctx context.Context) ([]models.Interview, error) {
	const op = "InterviewService.List"

	rows, err := s.interviews.List(ctx)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list interviews", err)
	}
	for i := range rows {
		s.presentMedia(ctx, &rows[i])
	}
	return rows, nil
}

func (s *interviewService) SetStatus(ctx context.Context, id int64, status models.InterviewStatus) error {
	const op = "InterviewService.SetStatus"

	if err := s.interviews.SetStatus(ctx, id, status); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.E(utils.CodeNotFound, op, "interview not found", err)
		}
		return utils.E(utils.CodeInternal, op, "failed to update interview status", err)
	}
	return nil
}

func (s *interviewService) AssociateMedia(ctx context.Context, token, videoURL, audioURL string) (*models.Interview, error) {
	const op = "InterviewService.AssociateMedia"

	if videoURL == "" && audioURL == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "at least one media reference is required", nil)
	}

	cand, err := s.tokens.Verify(ctx, token)
	if err != nil {
		return nil, err
	}

	iv, err := s.findOrCreate(ctx, cand)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to resolve interview", err)
	}

	if videoURL != "" {
		iv.VideoURL = videoURL
	}
	if audioURL != "" {
		iv.AudioURL = audioURL
	}
	iv.Status = models.InterviewStatusCompleted
	if err := s.interviews.Update(ctx, iv); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to save interview media", err)
	}

	if err := s.candidates.MarkUsed(ctx, cand.ID, time.Now().UTC()); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to consume token", err)
	}
	if s.cache != nil {
		_ = s.cache.Del(ctx, "candidate:token:"+token)
	}

	s.enqueueAnalysis(ctx, iv.ID)
	return iv, nil
}

func (s *interviewService) findOrCreate(ctx context.Context, cand *models.Candidate) (*models.Interview, error) {
	iv, err := s.interviews.GetByCandidate(ctx, cand.ID)
	if err == nil {
		return iv, nil
	}
	if !errors.Is(err, utils.ErrNotFound) {
		return nil, err
	}

	iv = &models.Interview{
		JobID:       cand.JobID,
		CandidateID: cand.ID,
		Status:      models.InterviewStatusPending,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.interviews.Insert(ctx, iv); err != nil {
		return nil, err
	}
	return iv, nil
}

// presentMedia swaps stored media keys for signed GET URLs on the way out.
// Legacy rows holding full URLs pass through untouched; a signing failure
// leaves the raw reference rather than dropping the field.
func (s *interviewService) presentMedia(ctx context.Context, iv *models.Interview) {
	iv.VideoURL = s.signedMediaURL(ctx, iv.VideoURL)
	iv.AudioURL = s.signedMediaURL(ctx, iv.AudioURL)
}

func (s *interviewService) signedMediaURL(ctx context.Context, ref string) string {
	if ref == "" || s.signer == nil || strings.HasPrefix(ref, "http") {
		return ref
	}
	url, err := s.signer.SignedGetURL(ctx, ref, mediaURLTTL)
	if err != nil {
		if s.log != nil {
			s.log.WithError(err).WithField("object", ref).Warn("failed to sign media url")
		}
		return ref
	}
	return url
}

// enqueueAnalysis is best effort. A missed enqueue can be recovered by
// re-running analysis from the admin panel.
func (s *interviewService) enqueueAnalysis(ctx context.Context, interviewID int64) {
	if s.rdb == nil {
		return
	}
	err := s.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: AnalysisStream,
		Values: map[string]any{
			"interview_id": strconv.FormatInt(interviewID, 10),
			"enqueued_at":  time.Now().UTC().Format(time.RFC3339),
		},
	}).Err()
	if err != nil && s.log != nil {
		s.log.WithError(err).WithField("interview_id", interviewID).Warn("failed to enqueue analysis job")
	}
}
