package models

import "time"

const (
	MessageRoleAssistant = "assistant"
	MessageRoleUser      = "user"
	MessageRoleSystem    = "system"
)

// ConversationMessage is one mirrored dialogue turn. SequenceNumber is the
// client-assigned position in conversation order, 1-based per interview.
type ConversationMessage struct {
	ID             int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	InterviewID    int64     `gorm:"column:interview_id;index" json:"interview_id"`
	Role           string    `gorm:"column:role;type:text" json:"role"`
	Content        string    `gorm:"column:content;type:text" json:"content"`
	SequenceNumber int       `gorm:"column:sequence_number" json:"sequence_number"`
	Timestamp      time.Time `gorm:"column:timestamp;type:timestamptz" json:"timestamp"`
}

func (ConversationMessage) TableName() string { return "conversation_messages" }
