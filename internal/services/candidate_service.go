package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kadrohq/kadro/internal/models"
	pgrepo "github.com/kadrohq/kadro/internal/repositories/postgres"
	"github.com/kadrohq/kadro/internal/storage"
	"github.com/kadrohq/kadro/internal/utils"
)

const tokenValidity = 72 * time.Hour

type CandidateService interface {
	Create(ctx context.Context, userID, jobID int64, name, email string) (*models.Candidate, error)
	Get(ctx context.Context, id int64) (*models.Candidate, error)
	GetByToken(ctx context.Context, token string) (*models.Candidate, error)
	List(ctx context.Context, userID int64) ([]models.Candidate, error)
	Update(ctx context.Context, id int64, name, email string, status models.CandidateStatus) (*models.Candidate, error)
	Delete(ctx context.Context, id int64) error
	SendLink(ctx context.Context, id int64) (link string, err error)
	AttachResume(ctx context.Context, id int64, fileName, contentType string, r io.Reader) (*models.Candidate, error)
}

type candidateService struct {
	candidates pgrepo.CandidateRepository
	uploader   storage.Uploader
	baseURL    string
}

// NewCandidateService builds the candidate CRUD service. baseURL is the
// public frontend origin interview links are minted against.
func NewCandidateService(candidates pgrepo.CandidateRepository, uploader storage.Uploader, baseURL string) CandidateService {
	return &candidateService{
		candidates: candidates,
		uploader:   uploader,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

func (s *candidateService) Create(ctx context.Context, userID, jobID int64, name, email string) (*models.Candidate, error) {
	const op = "CandidateService.Create"

	if userID == 0 || name == "" || email == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id, name, and email are required", nil)
	}

	now := time.Now().UTC()
	cand := &models.Candidate{
		UserID:    userID,
		JobID:     jobID,
		Name:      name,
		Email:     email,
		Status:    models.CandidateStatusPending,
		Token:     newInterviewToken(),
		ExpiresAt: now.Add(tokenValidity),
		CreatedAt: now,
	}
	if err := s.candidates.Insert(ctx, cand); err != nil {
		return nil, utils.E(utils.CodeConflict, op, "email already registered", err)
	}
	return cand, nil
}

func (s *candidateService) Get(ctx context.Context, id int64) (*models.Candidate, error) {
	const op = "CandidateService.Get"

	cand, err := s.candidates.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "candidate not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get candidate", err)
	}
	return cand, nil
}

func (s *candidateService) GetByToken(ctx context.Context, token string) (*models.Candidate, error) {
	const op = "CandidateService.GetByToken"

	cand, err := s.candidates.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "candidate not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get candidate", err)
	}
	return cand, nil
}

func (s *candidateService) List(ctx context.Context, userID int64) ([]models.Candidate, error) {
	const op = "CandidateService.List"

	rows, err := s.candidates.List(ctx, userID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list candidates", err)
	}
	return rows, nil
}

func (s *candidateService) Update(ctx context.Context, id int64, name, email string, status models.CandidateStatus) (*models.Candidate, error) {
	const op = "CandidateService.Update"

	cand, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if name != "" {
		cand.Name = name
	}
	if email != "" {
		cand.Email = email
	}
	if status != "" {
		cand.Status = status
	}
	if err := s.candidates.Update(ctx, cand); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to update candidate", err)
	}
	return cand, nil
}

func (s *candidateService) Delete(ctx context.Context, id int64) error {
	const op = "CandidateService.Delete"

	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.candidates.Delete(ctx, id); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to delete candidate", err)
	}
	return nil
}

// SendLink rotates the candidate's token and returns a fresh interview link.
// Delivering the link (mail or otherwise) is the caller's concern.
func (s *candidateService) SendLink(ctx context.Context, id int64) (string, error) {
	const op = "CandidateService.SendLink"

	cand, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}

	token := newInterviewToken()
	if err := s.candidates.SetToken(ctx, cand.ID, token, time.Now().UTC().Add(tokenValidity)); err != nil {
		return "", utils.E(utils.CodeInternal, op, "failed to rotate token", err)
	}
	return fmt.Sprintf("%s/interview/%s", s.baseURL, token), nil
}

func (s *candidateService) AttachResume(ctx context.Context, id int64, fileName, contentType string, r io.Reader) (*models.Candidate, error) {
	const op = "CandidateService.AttachResume"

	cand, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.uploader == nil {
		return nil, utils.E(utils.CodeInternal, op, "uploader is not configured", nil)
	}

	objectName := fmt.Sprintf("resumes/%d/%s_%s", cand.ID, uuid.NewString(), fileName)
	storedPath, err := s.uploader.Upload(ctx, objectName, contentType, r)
	if err != nil {
		return nil, utils.E(utils.CodeUnavailable, op, "failed to upload resume", err)
	}

	cand.ResumeURL = storedPath
	if err := s.candidates.Update(ctx, cand); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to persist resume reference", err)
	}
	return cand, nil
}

func newInterviewToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
