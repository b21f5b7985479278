package models

import "time"

type CandidateStatus string

const (
	CandidateStatusPending     CandidateStatus = "pending"
	CandidateStatusInterviewed CandidateStatus = "interviewed"
	CandidateStatusRejected    CandidateStatus = "rejected"
	CandidateStatusHired       CandidateStatus = "hired"
)

// Candidate carries the single-use interview token. The token is minted when
// the candidate is created (or a link is re-sent), expires after a fixed
// window, and is burned once media is associated with an interview.
type Candidate struct {
	ID        int64           `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID    int64           `gorm:"column:user_id;index" json:"user_id"`
	JobID     int64           `gorm:"column:job_id;index" json:"job_id"`
	Name      string          `gorm:"column:name;type:text" json:"name"`
	Email     string          `gorm:"column:email;type:text;uniqueIndex" json:"email"`
	ResumeURL string          `gorm:"column:resume_url;type:text" json:"resume_url"`
	Status    CandidateStatus `gorm:"column:status;type:text;default:pending" json:"status"`

	Token     string     `gorm:"column:token;type:text;uniqueIndex" json:"token"`
	ExpiresAt time.Time  `gorm:"column:expires_at;type:timestamptz" json:"expires_at"`
	UsedAt    *time.Time `gorm:"column:used_at;type:timestamptz" json:"used_at,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz" json:"created_at"`
}

func (Candidate) TableName() string { return "candidates" }
