package models

import "time"

type Job struct {
	ID          int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID      int64     `gorm:"column:user_id;index" json:"user_id"`
	Title       string    `gorm:"column:title;type:text" json:"title"`
	Description string    `gorm:"column:description;type:text" json:"description"`
	CreatedAt   time.Time `gorm:"column:created_at;type:timestamptz" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at;type:timestamptz" json:"updated_at"`
}

func (Job) TableName() string { return "jobs" }
