package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// InterviewAnalysis is the LLM-produced narrative over a finished transcript,
// stored schemaless in Mongo. Status follows the worker lifecycle.
type InterviewAnalysis struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	InterviewID int64              `bson:"interview_id" json:"interview_id"`

	Status string `bson:"status" json:"status"` // pending|processing|done|failed

	Summary    string   `bson:"summary,omitempty" json:"summary,omitempty"`
	Strengths  []string `bson:"strengths,omitempty" json:"strengths,omitempty"`
	Weaknesses []string `bson:"weaknesses,omitempty" json:"weaknesses,omitempty"`

	ModelUsed        string `bson:"model_used,omitempty" json:"model_used,omitempty"`
	ProcessingTimeMS int64  `bson:"processing_time_ms,omitempty" json:"processing_time_ms,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
