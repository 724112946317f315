package model

import "time"

// Task is a tracked unit of work. TimeElapsed holds whole minutes as text.
type Task struct {
	ID          uint  `gorm:"primaryKey"`
	UserID      uint  `gorm:"index"`
	CategoryID  uint  `gorm:"index"`
	ActivityID  *uint `gorm:"index"`
	Content     string
	EntryDate   time.Time
	EndDate     *time.Time
	IsEnded     bool   `gorm:"default:false"`
	IsAltered   bool   `gorm:"default:false"`
	TimeElapsed string `gorm:"default:'0'"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
