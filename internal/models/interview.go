package models

import (
	"time"

	"gorm.io/datatypes"
)

type InterviewStatus string

const (
	InterviewStatusPending   InterviewStatus = "pending"
	InterviewStatusCompleted InterviewStatus = "completed"
	InterviewStatusAnalyzed  InterviewStatus = "analyzed"
)

// Interview is created when the first media association call arrives for a
// candidate token; conversation messages link to it by ID.
type Interview struct {
	ID          int64           `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	JobID       int64           `gorm:"column:job_id;index" json:"job_id"`
	CandidateID int64           `gorm:"column:candidate_id;index" json:"candidate_id"`
	Status      InterviewStatus `gorm:"column:status;type:text;default:pending" json:"status"`

	VideoURL string `gorm:"column:video_url;type:text" json:"video_url"`
	AudioURL string `gorm:"column:audio_url;type:text" json:"audio_url"`

	Metadata datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamptz" json:"updated_at"`
}

func (Interview) TableName() string { return "interviews" }
