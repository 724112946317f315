package model

import "time"

// Activity is a named group of tasks inside a category.
type Activity struct {
	ID         uint   `gorm:"primaryKey"`
	CategoryID uint   `gorm:"index:idx_category_activity_name,unique"`
	Name       string `gorm:"index:idx_category_activity_name,unique"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Tasks      []Task `gorm:"foreignKey:ActivityID"`
}
