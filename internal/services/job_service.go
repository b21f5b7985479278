package services

import (
	"context"
	"errors"
	"time"

	"github.com/kadrohq/kadro/internal/models"
	pgrepo "github.com/kadrohq/kadro/internal/repositories/postgres"
	"github.com/kadrohq/kadro/internal/utils"
)

type JobService interface {
	Create(ctx context.Context, userID int64, title, description string) (*models.Job, error)
	Get(ctx context.Context, id int64) (*models.Job, error)
	List(ctx context.Context, userID int64) ([]models.Job, error)
	Update(ctx context.Context, id int64, title, description string) (*models.Job, error)
	Delete(ctx context.Context, id int64) error
}

type jobService struct {
	jobs pgrepo.JobRepository
}

func NewJobService(jobs pgrepo.JobRepository) JobService {
	return &jobService{jobs: jobs}
}

func (s *jobService) Create(ctx context.Context, userID int64, title, description string) (*models.Job, error) {
	const op = "JobService.Create"

	if userID == 0 || title == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id and title are required", nil)
	}

	now := time.Now().UTC()
	job := &models.Job{
		UserID:      userID,
		Title:       title,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.jobs.Insert(ctx, job); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create job", err)
	}
	return job, nil
}

func (s *jobService) Get(ctx context.Context, id int64) (*models.Job, error) {
	const op = "JobService.Get"

	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "job not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get job", err)
	}
	return job, nil
}

func (s *jobService) List(ctx context.Context, userID int64) ([]models.Job, error) {
	const op = "JobService.List"

	rows, err := s.jobs.ListByUser(ctx, userID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list jobs", err)
	}
	return rows, nil
}

func (s *jobService) Update(ctx context.Context, id int64, title, description string) (*models.Job, error) {
	const op = "JobService.Update"

	job, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if title != "" {
		job.Title = title
	}
	if description != "" {
		job.Description = description
	}
	job.UpdatedAt = time.Now().UTC()

	if err := s.jobs.Update(ctx, job); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to update job", err)
	}
	return job, nil
}

func (s *jobService) Delete(ctx context.Context, id int64) error {
	const op = "JobService.Delete"

	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.jobs.Delete(ctx, id); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to delete job", err)
	}
	return nil
}
