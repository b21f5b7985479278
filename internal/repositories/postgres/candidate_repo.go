package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/kadrohq/kadro/internal/models"
	"github.com/kadrohq/kadro/internal/utils"
	"gorm.io/gorm"
)

type CandidateRepository interface {
	Insert(ctx context.Context, c *models.Candidate) error
	GetByID(ctx context.Context, id int64) (*models.Candidate, error)
	GetByToken(ctx context.Context, token string) (*models.Candidate, error)
	List(ctx context.Context, userID int64) ([]models.Candidate, error)
	Update(ctx context.Context, c *models.Candidate) error
	Delete(ctx context.Context, id int64) error
	SetToken(ctx context.Context, id int64, token string, expiresAt time.Time) error
	MarkUsed(ctx context.Context, id int64, usedAt time.Time) error
}

type candidateRepo struct {
	db *gorm.DB
}

func NewCandidateRepo(db *gorm.DB) CandidateRepository {
	return &candidateRepo{db: db}
}

func (r *candidateRepo) Insert(ctx context.Context, c *models.Candidate) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *candidateRepo) GetByID(ctx context.Context, id int64) (*models.Candidate, error) {
	var c models.Candidate
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &c, err
}

func (r *candidateRepo) GetByToken(ctx context.Context, token string) (*models.Candidate, error) {
	var c models.Candidate
	err := r.db.WithContext(ctx).Where("token = ?", token).Take(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &c, err
}

func (r *candidateRepo) List(ctx context.Context, userID int64) ([]models.Candidate, error) {
	var rows []models.Candidate
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *candidateRepo) Update(ctx context.Context, c *models.Candidate) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *candidateRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&models.Candidate{}, id).Error
}

func (r *candidateRepo) SetToken(ctx context.Context, id int64, token string, expiresAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Candidate{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"token":      token,
			"expires_at": expiresAt.UTC(),
			"used_at":    nil,
		}).Error
}

func (r *candidateRepo) MarkUsed(ctx context.Context, id int64, usedAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Candidate{}).
		Where("id = ?", id).
		Update("used_at", usedAt.UTC()).Error
}
