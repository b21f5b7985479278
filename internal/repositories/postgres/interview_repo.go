package postgres

import (
	"context"
	"errors"

	"github.com/kadrohq/kadro/internal/models"
	"github.com/kadrohq/kadro/internal/utils"
	"gorm.io/gorm"
)

type InterviewRepository interface {
	Insert(ctx context.Context, iv *models.Interview) error
	GetByID(ctx context.Context, id int64) (*models.Interview, error)
	GetByCandidate(ctx context.Context, candidateID int64) (*models.Interview, error)
	List(ctx context.Context) ([]models.Interview, error)
	Update(ctx context.Context, iv *models.Interview) error
	SetStatus(ctx context.Context, id int64, status models.InterviewStatus) error
}

type interviewRepo struct {
	db *gorm.DB
}

func NewInterviewRepo(db *gorm.DB) InterviewRepository {
	return &interviewRepo{db: db}
}

func (r *interviewRepo) Insert(ctx context.Context, iv *models.Interview) error {
	return r.db.WithContext(ctx).Create(iv).Error
}

func (r *interviewRepo) GetByID(ctx context.Context, id int64) (*models.Interview, error) {
	var iv models.Interview
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&iv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &iv, err
}

func (r *interviewRepo) GetByCandidate(ctx context.Context, candidateID int64) (*models.Interview, error) {
	var iv models.Interview
	err := r.db.WithContext(ctx).
		Where("candidate_id = ?", candidateID).
		Order("created_at DESC").
		Take(&iv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &iv, err
}

func (r *interviewRepo) List(ctx context.Context) ([]models.Interview, error) {
	var rows []models.Interview
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&rows).Error
	return rows, err
}

func (r *interviewRepo) Update(ctx context.Context, iv *models.Interview) error {
	return r.db.WithContext(ctx).Save(iv).Error
}

func (r *interviewRepo) SetStatus(ctx context.Context, id int64, status models.InterviewStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Interview{}).
		Where("id = ?", id).
		Update("status", status).Error
}
