package bot

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"time-logger/internal/model"
	"time-logger/internal/repository"
	"time-logger/internal/service"
	"time-logger/internal/timelog"
)

func TestParseTrackArgs(t *testing.T) {
	tests := []struct {
		args    string
		want    service.TrackInput
		wantErr bool
	}{
		{args: "Read mail", want: service.TrackInput{Content: "Read mail"}},
		{args: "Work | Email", want: service.TrackInput{Category: "Work", Content: "Email"}},
		{args: " Work | Coding |  Fix bug ", want: service.TrackInput{Category: "Work", Activity: "Coding", Content: "Fix bug"}},
		{args: "", wantErr: true},
		{args: "Work |", wantErr: true},
		{args: "a | b | c | d", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.args, func(t *testing.T) {
			got, err := parseTrackArgs(tt.args)
			if tt.wantErr {
				assert.ErrorIs(t, err, errTrackUsage)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseID(t *testing.T) {
	id, err := parseID(" 42 ")
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)

	for _, bad := range []string{"", "0", "-1", "x"} {
		_, err := parseID(bad)
		assert.Error(t, err, bad)
	}
}

func TestSplitMessage(t *testing.T) {
	assert.Equal(t, []string{"short"}, splitMessage("short", 10))
	assert.Nil(t, splitMessage("", 10))

	assert.Equal(t, []string{"aaaa", "bbbb", "cc"}, splitMessage("aaaa\nbbbb\ncc", 6))

	// Without line breaks the cut lands on a rune boundary.
	chunks := splitMessage(strings.Repeat("⥤", 5), 7)
	assert.Equal(t, []string{"⥤⥤", "⥤⥤", "⥤"}, chunks)
}

func TestErrorTexts(t *testing.T) {
	assert.Equal(t, "Task not found.", taskErrorText(fmt.Errorf("find: %w", gorm.ErrRecordNotFound)))
	assert.Equal(t, "That task is already finished.", taskErrorText(service.ErrTaskEnded))
	assert.Equal(t, "Error: &lt;x&gt;", taskErrorText(errors.New("<x>")))

	assert.Equal(t, "No tracked time found.", reportErrorText(fmt.Errorf("category: %w", service.ErrNoData)))
	assert.Equal(t, "Task «Run» has an invalid time value (abc).",
		reportErrorText(&timelog.MalformedDurationError{Content: "Run", Text: "abc"}))
}

func TestFormatRunning(t *testing.T) {
	now := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)
	task := model.Task{ID: 3, Content: "Fix <bug>", EntryDate: now.Add(-75 * time.Minute), TimeElapsed: "0"}
	assert.Equal(t, "▶️ <b>#3</b> Fix &lt;bug&gt; · started 1h 15m ago\n", formatRunning(task, now))

	task.IsAltered = true
	task.TimeElapsed = "20"
	assert.Equal(t, "▶️ <b>#3</b> Fix &lt;bug&gt; · started 1h 15m ago · logged 20m\n", formatRunning(task, now))
}

func TestChartFileName(t *testing.T) {
	assert.Equal(t, "categories.json", chartFileName(""))
	assert.Equal(t, "deep_work.json", chartFileName("Deep Work"))
}

func TestShortTitle(t *testing.T) {
	assert.Equal(t, "abc", shortTitle(" abc ", 5))
	assert.Equal(t, "abcd…", shortTitle("abcdefgh", 5))
}

func TestParseRemindArgs(t *testing.T) {
	now := time.Date(2024, 5, 1, 18, 0, 0, 0, time.UTC)
	tests := []struct {
		args    string
		want    service.ReminderInput
		wantErr bool
	}{
		{args: "45m | Stretch", want: service.ReminderInput{Content: "Stretch", Target: now.Add(45 * time.Minute)}},
		{args: "18:30 | Call mom", want: service.ReminderInput{Content: "Call mom", Target: time.Date(2024, 5, 1, 18, 30, 0, 0, time.UTC)}},
		{args: "09:00 | Standup | daily", want: service.ReminderInput{Content: "Standup", Target: time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC), Repetition: "daily"}},
		{args: "2024-06-01 10:15 | Rent | monthly", want: service.ReminderInput{Content: "Rent", Target: time.Date(2024, 6, 1, 10, 15, 0, 0, time.UTC), Repetition: "monthly"}},
		{args: "Stretch", wantErr: true},
		{args: "45m |", wantErr: true},
		{args: "-5m | Late", wantErr: true},
		{args: "soon | Stretch", wantErr: true},
		{args: "a | b | c | d", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.args, func(t *testing.T) {
			got, err := parseRemindArgs(tt.args, now)
			if tt.wantErr {
				assert.ErrorIs(t, err, errRemindUsage)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want.Content, got.Content)
			assert.Equal(t, tt.want.Repetition, got.Repetition)
			assert.True(t, tt.want.Target.Equal(got.Target), "target %s, want %s", got.Target, tt.want.Target)
		})
	}
}

func TestFormatReminder(t *testing.T) {
	reminder := model.Reminder{
		ID:         4,
		Content:    "Pay <rent>",
		TargetDate: time.Date(2024, 6, 1, 10, 15, 0, 0, time.Local),
		Repetition: service.RepeatMonthly,
		IsPaused:   true,
	}
	assert.Equal(t, "2024-06-01 10:15 · Pay &lt;rent&gt; · monthly · paused", formatReminderLine(reminder))
	assert.Equal(t, "⏰ <b>Reminder</b>\nPay &lt;rent&gt;", formatReminderAlert(reminder))

	assert.Equal(t, "Reminder not found.", reminderErrorText(fmt.Errorf("pause: %w", gorm.ErrRecordNotFound)))
	assert.Equal(t, "That time is already past.", reminderErrorText(service.ErrPastTarget))
	assert.Equal(t, "Repeat must be daily, weekly or monthly.", reminderErrorText(fmt.Errorf("x: %w", service.ErrInvalidRepetition)))
}

func TestCategorySummaries(t *testing.T) {
	ctx := context.Background()
	db, err := repository.NewDB(filepath.Join(t.TempDir(), "bot.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	users := repository.NewUserRepository(db)
	categories := repository.NewCategoryRepository(db)
	activities := repository.NewActivityRepository(db)
	tasks := repository.NewTaskRepository(db)
	loader := timelog.NewLoader(categories, activities, tasks)
	b := &Bot{reportSvc: service.NewReportService(loader, nil)}

	user, err := users.UpsertFromTelegram(ctx, 42, "Ada", "", "ada")
	require.NoError(t, err)

	summaries, err := b.categorySummaries(ctx, user)
	require.NoError(t, err)
	assert.Empty(t, summaries)

	work, err := categories.GetOrCreate(ctx, user.ID, "Work")
	require.NoError(t, err)
	task := model.Task{UserID: user.ID, CategoryID: work.ID, Content: "Email", IsAltered: true, TimeElapsed: "75", EntryDate: time.Now()}
	require.NoError(t, tasks.Create(ctx, &task))

	summaries, err = b.categorySummaries(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"Work": "1h 15m"}, summaries)

	task.TimeElapsed = "ten"
	require.NoError(t, tasks.Save(ctx, &task))

	summaries, err = b.categorySummaries(ctx, user)
	var malformed *timelog.MalformedDurationError
	require.ErrorAs(t, err, &malformed)
	assert.Empty(t, summaries)
}
