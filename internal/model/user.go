package model

import "time"

// User is a Telegram account that owns categories and tasks.
type User struct {
	ID         uint  `gorm:"primaryKey"`
	TelegramID int64 `gorm:"uniqueIndex"`
	FirstName  string
	LastName   string
	Username   string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Categories []Category `gorm:"foreignKey:UserID"`
}
