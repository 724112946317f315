package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"time-logger/internal/model"
)

// ReminderRepository stores per-user reminders.
type ReminderRepository struct {
	db *gorm.DB
}

func NewReminderRepository(db *gorm.DB) *ReminderRepository {
	return &ReminderRepository{db: db}
}

func (r *ReminderRepository) Create(ctx context.Context, reminder *model.Reminder) error {
	if err := r.db.WithContext(ctx).Create(reminder).Error; err != nil {
		return fmt.Errorf("create reminder: %w", err)
	}
	return nil
}

func (r *ReminderRepository) Save(ctx context.Context, reminder *model.Reminder) error {
	if err := r.db.WithContext(ctx).Omit("User").Save(reminder).Error; err != nil {
		return fmt.Errorf("save reminder: %w", err)
	}
	return nil
}

func (r *ReminderRepository) FindByID(ctx context.Context, userID, reminderID uint) (*model.Reminder, error) {
	var reminder model.Reminder
	if err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, reminderID).First(&reminder).Error; err != nil {
		return nil, err
	}
	return &reminder, nil
}

// ListByUser returns the user's reminders, soonest first.
func (r *ReminderRepository) ListByUser(ctx context.Context, userID uint) ([]model.Reminder, error) {
	var reminders []model.Reminder
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("target_date ASC, id ASC").
		Find(&reminders).Error; err != nil {
		return nil, fmt.Errorf("list reminders: %w", err)
	}
	return reminders, nil
}

// ListDue returns active reminders whose target date is not after now,
// with their owner loaded.
func (r *ReminderRepository) ListDue(ctx context.Context, now time.Time) ([]model.Reminder, error) {
	var reminders []model.Reminder
	if err := r.db.WithContext(ctx).Preload("User").
		Where("is_paused = ? AND target_date <= ?", false, now).
		Order("target_date ASC, id ASC").
		Find(&reminders).Error; err != nil {
		return nil, fmt.Errorf("list due reminders: %w", err)
	}
	return reminders, nil
}

func (r *ReminderRepository) SetPaused(ctx context.Context, userID, reminderID uint, paused bool) error {
	res := r.db.WithContext(ctx).Model(&model.Reminder{}).
		Where("user_id = ? AND id = ?", userID, reminderID).
		Update("is_paused", paused)
	if res.Error != nil {
		return fmt.Errorf("pause reminder: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *ReminderRepository) Delete(ctx context.Context, userID, reminderID uint) error {
	res := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, reminderID).Delete(&model.Reminder{})
	if res.Error != nil {
		return fmt.Errorf("delete reminder: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
