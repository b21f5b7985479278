package postgres

import (
	"context"
	"errors"

	"github.com/kadrohq/kadro/internal/models"
	"github.com/kadrohq/kadro/internal/utils"
	"gorm.io/gorm"
)

type JobRepository interface {
	Insert(ctx context.Context, j *models.Job) error
	GetByID(ctx context.Context, id int64) (*models.Job, error)
	ListByUser(ctx context.Context, userID int64) ([]models.Job, error)
	Update(ctx context.Context, j *models.Job) error
	Delete(ctx context.Context, id int64) error
}

type jobRepo struct {
	db *gorm.DB
}

func NewJobRepo(db *gorm.DB) JobRepository {
	return &jobRepo{db: db}
}

func (r *jobRepo) Insert(ctx context.Context, j *models.Job) error {
	return r.db.WithContext(ctx).Create(j).Error
}

func (r *jobRepo) GetByID(ctx context.Context, id int64) (*models.Job, error) {
	var j models.Job
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&j).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &j, err
}

func (r *jobRepo) ListByUser(ctx context.Context, userID int64) ([]models.Job, error) {
	var rows []models.Job
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *jobRepo) Update(ctx context.Context, j *models.Job) error {
	return r.db.WithContext(ctx).Save(j).Error
}

func (r *jobRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&models.Job{}, id).Error
}
