package model

import "time"

// Reminder is a message the bot sends to its owner at TargetDate. A
// repeating reminder moves its TargetDate forward after every delivery.
type Reminder struct {
	ID         uint `gorm:"primaryKey"`
	UserID     uint `gorm:"index"`
	User       User
	Content    string
	EntryDate  time.Time
	TargetDate time.Time `gorm:"index"`
	Repetition string
	IsPaused   bool `gorm:"default:false"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
