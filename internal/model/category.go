package model

import "time"

// Category is the top-level grouping of tracked time for a user.
type Category struct {
	ID         uint   `gorm:"primaryKey"`
	UserID     uint   `gorm:"index:idx_user_category_title,unique"`
	Title      string `gorm:"index:idx_user_category_title,unique"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Activities []Activity `gorm:"foreignKey:CategoryID"`
	Tasks      []Task     `gorm:"foreignKey:CategoryID"`
}
