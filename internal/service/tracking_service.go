package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"time-logger/internal/model"
	"time-logger/internal/repository"
	"time-logger/internal/timelog"
)

var (
	ErrEmptyContent   = errors.New("task content is required")
	ErrInvalidMinutes = errors.New("minutes must be a positive number")
	ErrTaskEnded      = errors.New("task is already ended")
)

// TrackInput describes a task to start. Activity is optional; an empty
// Category falls back to the configured default category.
type TrackInput struct {
	Category string
	Activity string
	Content  string
}

// TrackingService records the time entries that reports are built from.
type TrackingService struct {
	taskRepo        *repository.TaskRepository
	categoryRepo    *repository.CategoryRepository
	activityRepo    *repository.ActivityRepository
	defaultCategory string
	logger          *zap.Logger
}

func NewTrackingService(taskRepo *repository.TaskRepository, categoryRepo *repository.CategoryRepository, activityRepo *repository.ActivityRepository, defaultCategory string, logger *zap.Logger) *TrackingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TrackingService{
		taskRepo:        taskRepo,
		categoryRepo:    categoryRepo,
		activityRepo:    activityRepo,
		defaultCategory: defaultCategory,
		logger:          logger,
	}
}

// StartTask opens a new running task.
func (s *TrackingService) StartTask(ctx context.Context, user *model.User, input TrackInput, now time.Time) (*model.Task, error) {
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, ErrEmptyContent
	}

	title := strings.TrimSpace(input.Category)
	if title == "" {
		title = s.defaultCategory
	}
	category, err := s.categoryRepo.GetOrCreate(ctx, user.ID, title)
	if err != nil {
		return nil, err
	}

	task := model.Task{
		UserID:      user.ID,
		CategoryID:  category.ID,
		Content:     content,
		EntryDate:   now,
		TimeElapsed: "0",
	}

	if name := strings.TrimSpace(input.Activity); name != "" {
		activity, err := s.activityRepo.GetOrCreate(ctx, category.ID, name)
		if err != nil {
			return nil, err
		}
		task.ActivityID = &activity.ID
	}

	if err := s.taskRepo.Create(ctx, &task); err != nil {
		return nil, err
	}

	s.logger.Info("task started",
		zap.Uint("task_id", task.ID),
		zap.Uint("user_id", user.ID),
		zap.String("category", category.Title))
	return &task, nil
}

// LogTime adds minutes to a running task and marks it altered.
func (s *TrackingService) LogTime(ctx context.Context, user *model.User, taskID uint, minutes int) (*model.Task, error) {
	if minutes <= 0 {
		return nil, ErrInvalidMinutes
	}

	task, err := s.taskRepo.FindByID(ctx, user.ID, taskID)
	if err != nil {
		return nil, err
	}
	if task.IsEnded {
		return nil, ErrTaskEnded
	}

	elapsed, err := elapsedOf(task)
	if err != nil {
		return nil, err
	}
	task.TimeElapsed = strconv.Itoa(elapsed + minutes)
	task.IsAltered = true

	if err := s.taskRepo.Save(ctx, task); err != nil {
		return nil, err
	}
	s.logger.Info("time logged", zap.Uint("task_id", task.ID), zap.Int("minutes", minutes))
	return task, nil
}

// StopTask ends a running task. A task that never had time logged is
// credited with the whole minutes between its start and now.
func (s *TrackingService) StopTask(ctx context.Context, user *model.User, taskID uint, now time.Time) (*model.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, user.ID, taskID)
	if err != nil {
		return nil, err
	}
	if task.IsEnded {
		return nil, ErrTaskEnded
	}

	if !task.IsAltered {
		minutes := int(now.Sub(task.EntryDate) / time.Minute)
		if minutes < 0 {
			minutes = 0
		}
		task.TimeElapsed = strconv.Itoa(minutes)
	}
	task.IsEnded = true
	task.IsAltered = true
	task.EndDate = &now

	if err := s.taskRepo.Save(ctx, task); err != nil {
		return nil, err
	}
	s.logger.Info("task stopped", zap.Uint("task_id", task.ID), zap.String("elapsed", task.TimeElapsed))
	return task, nil
}

func (s *TrackingService) ListRunning(ctx context.Context, user *model.User) ([]model.Task, error) {
	return s.taskRepo.ListRunning(ctx, user.ID)
}

func (s *TrackingService) DeleteTask(ctx context.Context, user *model.User, taskID uint) error {
	return s.taskRepo.Delete(ctx, user.ID, taskID)
}

func elapsedOf(task *model.Task) (int, error) {
	text := strings.TrimSpace(task.TimeElapsed)
	if text == "" {
		return 0, nil
	}
	minutes, err := strconv.Atoi(text)
	if err != nil {
		return 0, fmt.Errorf("task %d: %w", task.ID, &timelog.MalformedDurationError{Content: task.Content, Text: task.TimeElapsed, Err: err})
	}
	return minutes, nil
}
