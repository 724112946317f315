package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"time-logger/internal/model"
	"time-logger/internal/timelog"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "nested", "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func ptr(v uint) *uint { return &v }

func TestUserRepository_Upsert(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(openTestDB(t))

	first, err := repo.UpsertFromTelegram(ctx, 77, "Ada", "", "ada")
	require.NoError(t, err)
	second, err := repo.UpsertFromTelegram(ctx, 77, "Ada", "Lovelace", "ada")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	found, err := repo.FindByTelegramID(ctx, 77)
	require.NoError(t, err)
	assert.Equal(t, "Lovelace", found.LastName)

	_, err = repo.FindByTelegramID(ctx, 78)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	users, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestCategoryRepository_GetOrCreateAndLookup(t *testing.T) {
	ctx := context.Background()
	repo := NewCategoryRepository(openTestDB(t))

	work, err := repo.GetOrCreate(ctx, 1, " Work ")
	require.NoError(t, err)
	again, err := repo.GetOrCreate(ctx, 1, "Work")
	require.NoError(t, err)
	assert.Equal(t, work.ID, again.ID)

	_, err = repo.GetOrCreate(ctx, 1, "Health")
	require.NoError(t, err)
	_, err = repo.GetOrCreate(ctx, 2, "Work")
	require.NoError(t, err)

	_, err = repo.GetOrCreate(ctx, 1, "  ")
	assert.Error(t, err)

	records, err := repo.CategoriesByUser(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []timelog.CategoryRecord{{ID: work.ID, Title: "Work"}, {ID: work.ID + 1, Title: "Health"}}, records)

	rec, err := repo.CategoryByTitle(ctx, 1, "Work")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, work.ID, rec.ID)

	rec, err = repo.CategoryByTitle(ctx, 1, "work")
	require.NoError(t, err)
	assert.Nil(t, rec)

	empty, err := repo.CategoriesByUser(ctx, 9)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestActivityRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewActivityRepository(openTestDB(t))

	coding, err := repo.GetOrCreate(ctx, 1, "Coding")
	require.NoError(t, err)
	again, err := repo.GetOrCreate(ctx, 1, "Coding")
	require.NoError(t, err)
	assert.Equal(t, coding.ID, again.ID)
	_, err = repo.GetOrCreate(ctx, 1, "Meetings")
	require.NoError(t, err)

	records, err := repo.ActivitiesByCategory(ctx, 1)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Coding", records[0].Name)
	assert.Equal(t, "Meetings", records[1].Name)
}

func TestTaskRepository_GatewayQueries(t *testing.T) {
	ctx := context.Background()
	repo := NewTaskRepository(openTestDB(t))
	now := time.Now()

	tasks := []model.Task{
		{UserID: 1, CategoryID: 1, ActivityID: ptr(10), Content: "done+altered", IsEnded: true, IsAltered: true, TimeElapsed: "12", EntryDate: now},
		{UserID: 1, CategoryID: 1, ActivityID: ptr(10), Content: "done only", IsEnded: true, TimeElapsed: "5", EntryDate: now},
		{UserID: 1, CategoryID: 1, ActivityID: ptr(10), Content: "running+altered", IsAltered: true, TimeElapsed: "3", EntryDate: now},
		{UserID: 1, CategoryID: 1, Content: "direct running+altered", IsAltered: true, TimeElapsed: "4", EntryDate: now},
		{UserID: 1, CategoryID: 1, Content: "direct done+altered", IsEnded: true, IsAltered: true, TimeElapsed: "8", EntryDate: now},
		{UserID: 1, CategoryID: 1, Content: "direct untouched", TimeElapsed: "0", EntryDate: now},
	}
	for i := range tasks {
		require.NoError(t, repo.Create(ctx, &tasks[i]))
	}

	ended, err := repo.EndedAlteredByActivity(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []timelog.TaskRecord{{Content: "done+altered", ElapsedText: "12"}}, ended)

	direct, err := repo.AlteredNotEndedByCategory(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []timelog.TaskRecord{{Content: "direct running+altered", ElapsedText: "4"}}, direct)

	running, err := repo.ListRunning(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, running, 3)
}

func TestTaskRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo := NewTaskRepository(openTestDB(t))

	task := model.Task{UserID: 1, CategoryID: 1, Content: "x", EntryDate: time.Now()}
	require.NoError(t, repo.Create(ctx, &task))

	assert.True(t, errors.Is(repo.Delete(ctx, 2, task.ID), gorm.ErrRecordNotFound))
	require.NoError(t, repo.Delete(ctx, 1, task.ID))

	_, err := repo.FindByID(ctx, 1, task.ID)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestReminderRepository(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	users := NewUserRepository(db)
	repo := NewReminderRepository(db)

	owner, err := users.UpsertFromTelegram(ctx, 501, "Ada", "", "ada")
	require.NoError(t, err)

	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	reminders := []model.Reminder{
		{UserID: owner.ID, Content: "later", EntryDate: now, TargetDate: now.Add(time.Hour)},
		{UserID: owner.ID, Content: "due", EntryDate: now, TargetDate: now.Add(-time.Minute)},
		{UserID: owner.ID, Content: "due now", EntryDate: now, TargetDate: now},
		{UserID: owner.ID, Content: "paused", EntryDate: now, TargetDate: now.Add(-time.Hour)},
	}
	for i := range reminders {
		require.NoError(t, repo.Create(ctx, &reminders[i]))
	}
	require.NoError(t, repo.SetPaused(ctx, owner.ID, reminders[3].ID, true))
	assert.True(t, errors.Is(repo.SetPaused(ctx, owner.ID+1, reminders[3].ID, true), gorm.ErrRecordNotFound))

	due, err := repo.ListDue(ctx, now)
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.Equal(t, "due", due[0].Content)
	assert.Equal(t, "due now", due[1].Content)
	assert.Equal(t, int64(501), due[0].User.TelegramID)

	all, err := repo.ListByUser(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "paused", all[0].Content)
	assert.True(t, all[0].IsPaused)

	assert.True(t, errors.Is(repo.Delete(ctx, owner.ID+1, reminders[0].ID), gorm.ErrRecordNotFound))
	require.NoError(t, repo.Delete(ctx, owner.ID, reminders[0].ID))
	_, err = repo.FindByID(ctx, owner.ID, reminders[0].ID)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}
