package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/kadrohq/kadro/internal/models"
	"github.com/kadrohq/kadro/internal/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type AnalysisRepository interface {
	Upsert(ctx context.Context, a *models.InterviewAnalysis) error
	GetByInterview(ctx context.Context, interviewID int64) (*models.InterviewAnalysis, error)
	SetStatus(ctx context.Context, interviewID int64, status string) error
	SetResult(ctx context.Context, interviewID int64, a *models.InterviewAnalysis) error
}

type analysisRepo struct {
	col *mongo.Collection
}

func NewAnalysisRepo(db *mongo.Database) AnalysisRepository {
	return &analysisRepo{col: db.Collection("interview_analyses")}
}

func (r *analysisRepo) Upsert(ctx context.Context, a *models.InterviewAnalysis) error {
	now := time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now

	_, err := r.col.UpdateOne(ctx,
		bson.M{"interview_id": a.InterviewID},
		bson.M{
			"$set": bson.M{
				"status":     a.Status,
				"updated_at": a.UpdatedAt,
			},
			"$setOnInsert": bson.M{
				"interview_id": a.InterviewID,
				"created_at":   a.CreatedAt,
			},
		},
		options.Update().SetUpsert(true),
	)
	return err
}

func (r *analysisRepo) GetByInterview(ctx context.Context, interviewID int64) (*models.InterviewAnalysis, error) {
	var a models.InterviewAnalysis
	err := r.col.FindOne(ctx, bson.M{"interview_id": interviewID}).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	return &a, err
}

func (r *analysisRepo) SetStatus(ctx context.Context, interviewID int64, status string) error {
	_, err := r.col.UpdateOne(ctx,
		bson.M{"interview_id": interviewID},
		bson.M{"$set": bson.M{"status": status, "updated_at": time.Now().UTC()}},
	)
	return err
}

func (r *analysisRepo) SetResult(ctx context.Context, interviewID int64, a *models.InterviewAnalysis) error {
	_, err := r.col.UpdateOne(ctx,
		bson.M{"interview_id": interviewID},
		bson.M{"$set": bson.M{
			"status":             a.Status,
			"summary":            a.Summary,
			"strengths":          a.Strengths,
			"weaknesses":         a.Weaknesses,
			"model_used":         a.ModelUsed,
			"processing_time_ms": a.ProcessingTimeMS,
			"updated_at":         time.Now().UTC(),
		}},
	)
	return err
}
