package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"time-logger/internal/model"
	"time-logger/internal/repository"
)

// Repetition values accepted for reminders. The empty value fires once.
const (
	RepeatNone    = ""
	RepeatDaily   = "daily"
	RepeatWeekly  = "weekly"
	RepeatMonthly = "monthly"
)

var (
	ErrInvalidRepetition = errors.New("repetition must be daily, weekly or monthly")
	ErrPastTarget        = errors.New("reminder time is already past")
)

// ReminderInput describes a reminder to create.
type ReminderInput struct {
	Content    string
	Target     time.Time
	Repetition string
}

// ReminderService keeps user reminders and hands out the due ones.
type ReminderService struct {
	repo   *repository.ReminderRepository
	logger *zap.Logger
}

func NewReminderService(repo *repository.ReminderRepository, logger *zap.Logger) *ReminderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReminderService{repo: repo, logger: logger}
}

// Add stores a reminder. Targets are kept in UTC at minute precision.
func (s *ReminderService) Add(ctx context.Context, user *model.User, input ReminderInput, now time.Time) (*model.Reminder, error) {
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, ErrEmptyContent
	}
	repetition, err := ParseRepetition(input.Repetition)
	if err != nil {
		return nil, err
	}
	target := input.Target.UTC().Truncate(time.Minute)
	if !target.After(now.UTC()) {
		return nil, ErrPastTarget
	}

	reminder := model.Reminder{
		UserID:     user.ID,
		Content:    content,
		EntryDate:  now.UTC(),
		TargetDate: target,
		Repetition: repetition,
	}
	if err := s.repo.Create(ctx, &reminder); err != nil {
		return nil, err
	}

	s.logger.Info("reminder added",
		zap.Uint("reminder_id", reminder.ID),
		zap.Uint("user_id", user.ID),
		zap.Time("target", target),
		zap.String("repetition", repetition))
	return &reminder, nil
}

func (s *ReminderService) List(ctx context.Context, user *model.User) ([]model.Reminder, error) {
	return s.repo.ListByUser(ctx, user.ID)
}

func (s *ReminderService) Remove(ctx context.Context, user *model.User, reminderID uint) error {
	return s.repo.Delete(ctx, user.ID, reminderID)
}

// SetPaused pauses or resumes a reminder. Paused reminders are never due.
func (s *ReminderService) SetPaused(ctx context.Context, user *model.User, reminderID uint, paused bool) error {
	return s.repo.SetPaused(ctx, user.ID, reminderID, paused)
}

// TakeDue returns the reminders due at now. One-shot reminders are removed
// and repeating ones move to their next target after now.
func (s *ReminderService) TakeDue(ctx context.Context, now time.Time) ([]model.Reminder, error) {
	now = now.UTC()
	due, err := s.repo.ListDue(ctx, now)
	if err != nil {
		return nil, err
	}

	for i := range due {
		reminder := due[i]
		if reminder.Repetition == RepeatNone {
			if err := s.repo.Delete(ctx, reminder.UserID, reminder.ID); err != nil {
				return nil, err
			}
			continue
		}
		reminder.TargetDate = nextTarget(reminder.TargetDate, reminder.Repetition, now)
		if err := s.repo.Save(ctx, &reminder); err != nil {
			return nil, err
		}
	}

	if len(due) > 0 {
		s.logger.Debug("reminders due", zap.Int("count", len(due)))
	}
	return due, nil
}

// ParseRepetition normalizes a repetition name.
func ParseRepetition(raw string) (string, error) {
	switch value := strings.ToLower(strings.TrimSpace(raw)); value {
	case RepeatNone, RepeatDaily, RepeatWeekly, RepeatMonthly:
		return value, nil
	default:
		return "", fmt.Errorf("%q: %w", raw, ErrInvalidRepetition)
	}
}

// nextTarget steps target by the repetition until it is after now. Periods
// missed while the bot was down are skipped.
func nextTarget(target time.Time, repetition string, now time.Time) time.Time {
	for !target.After(now) {
		switch repetition {
		case RepeatDaily:
			target = target.AddDate(0, 0, 1)
		case RepeatWeekly:
			target = target.AddDate(0, 0, 7)
		case RepeatMonthly:
			target = target.AddDate(0, 1, 0)
		default:
			return target
		}
	}
	return target
}
