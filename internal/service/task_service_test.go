package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"kinetics/internal/analytics"
	"kinetics/internal/model"
	"kinetics/internal/repository"
)

type serviceEnv struct {
	db        *gorm.DB
	user      *model.User
	taskRepo  *repository.TaskRepository
	entryRepo *repository.EntryRepository
	taskSvc   *TaskService
}

func newServiceEnv(t *testing.T) *serviceEnv {
	t.Helper()
	db, err := repository.NewDB(":memory:")
	require.NoError(t, err)

	user, err := repository.NewUserRepository(db).UpsertFromTelegram(context.Background(), 555, "Test", "User", "testuser")
	require.NoError(t, err)

	taskRepo := repository.NewTaskRepository(db)
	entryRepo := repository.NewEntryRepository(db)
	taskSvc := NewTaskService(taskRepo, repository.NewCategoryRepository(db), entryRepo, 5, 48*time.Hour)

	return &serviceEnv{db: db, user: user, taskRepo: taskRepo, entryRepo: entryRepo, taskSvc: taskSvc}
}

func svcDay(offset int) time.Time {
	anchor := time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)
	return anchor.AddDate(0, 0, -offset)
}

func TestTaskService_CreateTaskDefaults(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()

	task, err := env.taskSvc.CreateTask(ctx, env.user, TaskInput{Title: "ship it", Date: svcDay(0).Add(13 * time.Hour)})
	require.NoError(t, err)
	assert.Equal(t, model.DefaultWeight, task.Weight)
	assert.Nil(t, task.CategoryID)
	assert.Equal(t, analytics.DayKey(svcDay(0)), analytics.DayKey(task.Date))
	assert.False(t, task.IsCompleted)

	heavy, err := env.taskSvc.CreateTask(ctx, env.user, TaskInput{Title: "marathon", Weight: 99, Category: "Спорт", Date: svcDay(0)})
	require.NoError(t, err)
	assert.Equal(t, model.MaxWeight, heavy.Weight)
	assert.NotNil(t, heavy.CategoryID)

	_, err = env.taskSvc.CreateTask(ctx, env.user, TaskInput{Date: svcDay(0)})
	assert.Error(t, err, "empty title is rejected")
}

func TestTaskService_CompleteHeavyTaskGrantsRecovery(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()

	// Yesterday exists but nothing was executed: the streak is broken.
	broken := model.Task{UserID: env.user.ID, Title: "skipped", Weight: 2, Date: svcDay(1)}
	require.NoError(t, env.taskRepo.Create(ctx, &broken))

	heavy, err := env.taskSvc.CreateTask(ctx, env.user, TaskInput{Title: "big push", Weight: 8, Date: svcDay(0)})
	require.NoError(t, err)

	now := svcDay(0).Add(12 * time.Hour) // 36h after the break started
	completed, window, err := env.taskSvc.CompleteTask(ctx, env.user, heavy.ID, now)
	require.NoError(t, err)
	assert.True(t, completed.IsCompleted)
	require.NotNil(t, window, "recovery grant expected")
	assert.Equal(t, analytics.DayKey(svcDay(1)), analytics.DayKey(window.BrokenDate))

	var status model.DayStatus
	require.NoError(t, env.db.Where("user_id = ? AND day_key = ?", env.user.ID, analytics.DayKey(svcDay(1))).First(&status).Error)
	assert.Equal(t, model.DayRecovered, status.Status)

	// The recovered day now counts toward the streak.
	entries, err := env.entryRepo.LoadRange(ctx, env.user.ID, svcDay(10))
	require.NoError(t, err)
	assert.Equal(t, 2, analytics.CurrentStreak(entries, now))
}

func TestTaskService_LightTaskDoesNotRecover(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()

	broken := model.Task{UserID: env.user.ID, Title: "skipped", Weight: 2, Date: svcDay(1)}
	require.NoError(t, env.taskRepo.Create(ctx, &broken))

	light, err := env.taskSvc.CreateTask(ctx, env.user, TaskInput{Title: "small step", Weight: 2, Date: svcDay(0)})
	require.NoError(t, err)

	now := svcDay(0).Add(12 * time.Hour)
	_, window, err := env.taskSvc.CompleteTask(ctx, env.user, light.ID, now)
	require.NoError(t, err)
	assert.Nil(t, window)

	var count int64
	require.NoError(t, env.db.Model(&model.DayStatus{}).Where("user_id = ?", env.user.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestTaskService_ExpiredBreakIsNotRecovered(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()

	broken := model.Task{UserID: env.user.ID, Title: "long gone", Weight: 2, Date: svcDay(3)}
	require.NoError(t, env.taskRepo.Create(ctx, &broken))

	heavy, err := env.taskSvc.CreateTask(ctx, env.user, TaskInput{Title: "too late", Weight: 9, Date: svcDay(0)})
	require.NoError(t, err)

	now := svcDay(0).Add(12 * time.Hour) // 84h after the break, past the 48h grace
	_, window, err := env.taskSvc.CompleteTask(ctx, env.user, heavy.ID, now)
	require.NoError(t, err)
	assert.Nil(t, window)
}

func TestTaskService_CompleteTwiceIsNoop(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()

	task, err := env.taskSvc.CreateTask(ctx, env.user, TaskInput{Title: "once", Weight: 6, Date: svcDay(0)})
	require.NoError(t, err)

	now := svcDay(0).Add(10 * time.Hour)
	_, _, err = env.taskSvc.CompleteTask(ctx, env.user, task.ID, now)
	require.NoError(t, err)

	again, window, err := env.taskSvc.CompleteTask(ctx, env.user, task.ID, now.Add(time.Hour))
	require.NoError(t, err)
	assert.Nil(t, window)
	require.NotNil(t, again.CompletedAt)
	assert.True(t, again.CompletedAt.Equal(now))
}

func TestTaskService_UncompleteClearsTimestamp(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()

	task, err := env.taskSvc.CreateTask(ctx, env.user, TaskInput{Title: "flip", Weight: 4, Date: svcDay(0)})
	require.NoError(t, err)

	now := svcDay(0).Add(10 * time.Hour)
	_, _, err = env.taskSvc.CompleteTask(ctx, env.user, task.ID, now)
	require.NoError(t, err)

	reopened, err := env.taskSvc.UncompleteTask(ctx, env.user, task.ID)
	require.NoError(t, err)
	assert.False(t, reopened.IsCompleted)
	assert.Nil(t, reopened.CompletedAt)
}
