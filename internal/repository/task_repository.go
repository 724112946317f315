package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"time-logger/internal/model"
	"time-logger/internal/timelog"
)

// TaskRepository handles CRUD for tracked tasks and serves as the
// timelog.TaskStore.
type TaskRepository struct {
	db *gorm.DB
}

var _ timelog.TaskStore = (*TaskRepository)(nil)

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

func (r *TaskRepository) Save(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Save(task).Error; err != nil {
		return fmt.Errorf("save task: %w", err)
	}
	return nil
}

func (r *TaskRepository) FindByID(ctx context.Context, userID, taskID uint) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, taskID).First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// ListRunning returns the user's tasks that are not ended, oldest first.
func (r *TaskRepository) ListRunning(ctx context.Context, userID uint) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).Where("user_id = ? AND is_ended = ?", userID, false).
		Order("entry_date ASC, id ASC").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list running tasks: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepository) Delete(ctx context.Context, userID, taskID uint) error {
	res := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, taskID).Delete(&model.Task{})
	if res.Error != nil {
		return fmt.Errorf("delete task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *TaskRepository) EndedAlteredByActivity(ctx context.Context, activityID uint) ([]timelog.TaskRecord, error) {
	return r.records(ctx, r.db.Where("activity_id = ? AND is_ended = ? AND is_altered = ?", activityID, true, true))
}

func (r *TaskRepository) AlteredNotEndedByCategory(ctx context.Context, categoryID uint) ([]timelog.TaskRecord, error) {
	return r.records(ctx, r.db.Where("category_id = ? AND activity_id IS NULL AND is_ended = ? AND is_altered = ?", categoryID, false, true))
}

func (r *TaskRepository) records(ctx context.Context, query *gorm.DB) ([]timelog.TaskRecord, error) {
	var records []timelog.TaskRecord
	err := query.WithContext(ctx).
		Model(&model.Task{}).
		Select("content, time_elapsed AS elapsed_text").
		Order("id ASC").
		Scan(&records).Error
	if err != nil {
		return nil, fmt.Errorf("list task records: %w", err)
	}
	return records, nil
}
