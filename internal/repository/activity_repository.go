package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"time-logger/internal/model"
	"time-logger/internal/timelog"
)

// ActivityRepository manages activities inside categories.
type ActivityRepository struct {
	db *gorm.DB
}

var _ timelog.ActivityStore = (*ActivityRepository)(nil)

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

func (r *ActivityRepository) GetOrCreate(ctx context.Context, categoryID uint, name string) (*model.Activity, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("activity name is required")
	}

	var activity model.Activity
	db := r.db.WithContext(ctx)
	err := db.Where("category_id = ? AND name = ?", categoryID, name).First(&activity).Error
	switch {
	case err == nil:
		return &activity, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		activity = model.Activity{CategoryID: categoryID, Name: name}
		if err := db.Create(&activity).Error; err != nil {
			return nil, fmt.Errorf("create activity: %w", err)
		}
		return &activity, nil
	default:
		return nil, fmt.Errorf("find activity: %w", err)
	}
}

// ListByCategory returns activities in creation order.
func (r *ActivityRepository) ListByCategory(ctx context.Context, categoryID uint) ([]model.Activity, error) {
	var activities []model.Activity
	if err := r.db.WithContext(ctx).Where("category_id = ?", categoryID).Order("id ASC").Find(&activities).Error; err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	return activities, nil
}

func (r *ActivityRepository) ActivitiesByCategory(ctx context.Context, categoryID uint) ([]timelog.ActivityRecord, error) {
	activities, err := r.ListByCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	records := make([]timelog.ActivityRecord, 0, len(activities))
	for _, a := range activities {
		records = append(records, timelog.ActivityRecord{ID: a.ID, Name: a.Name})
	}
	return records, nil
}
