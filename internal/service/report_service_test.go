package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kinetics/internal/analytics"
	"kinetics/internal/model"
	"kinetics/internal/repository"
)

func newReportService(env *serviceEnv) *ReportService {
	return NewReportService(env.taskRepo, repository.NewCategoryRepository(env.db), env.entryRepo, 48*time.Hour)
}

func TestReportService_DailySummary(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()
	svc := newReportService(env)

	now := svcDay(0).Add(18 * time.Hour)
	done, err := env.taskSvc.CreateTask(ctx, env.user, TaskInput{Title: "deep work", Weight: 6, Category: "Работа", Date: svcDay(0)})
	require.NoError(t, err)
	_, _, err = env.taskSvc.CompleteTask(ctx, env.user, done.ID, now)
	require.NoError(t, err)
	_, err = env.taskSvc.CreateTask(ctx, env.user, TaskInput{Title: "stretch", Weight: 2, Date: svcDay(0)})
	require.NoError(t, err)

	text, err := svc.DailySummary(ctx, *env.user, now)
	require.NoError(t, err)

	assert.Contains(t, text, "Ежедневный отчёт")
	assert.Contains(t, text, "Deep work")
	assert.Contains(t, text, "<b>6</b> из <b>8</b>")
	assert.Contains(t, text, "Серия: <b>1 дн.</b>")
}

func TestReportService_DailySummaryShowsRecoveryBanner(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()
	svc := newReportService(env)

	broken := model.Task{UserID: env.user.ID, Title: "skipped", Weight: 2, Date: svcDay(1)}
	require.NoError(t, env.taskRepo.Create(ctx, &broken))

	now := svcDay(0).Add(12 * time.Hour)
	text, err := svc.DailySummary(ctx, *env.user, now)
	require.NoError(t, err)
	assert.Contains(t, text, "ещё можно спасти")
}

func TestReportService_HeatmapReportShape(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()
	svc := newReportService(env)

	now := svcDay(0).Add(10 * time.Hour)
	task, err := env.taskSvc.CreateTask(ctx, env.user, TaskInput{Title: "mark the map", Weight: 5, Date: svcDay(0)})
	require.NoError(t, err)
	_, _, err = env.taskSvc.CompleteTask(ctx, env.user, task.ID, now)
	require.NoError(t, err)

	text, err := svc.HeatmapReport(ctx, *env.user, now, nil, false)
	require.NoError(t, err)

	start := strings.Index(text, "<pre>")
	end := strings.Index(text, "</pre>")
	require.True(t, start >= 0 && end > start)

	lines := strings.Split(text[start+len("<pre>"):end], "\n")
	// month strip plus one line per weekday, trailing newline yields an
	// empty tail element
	require.Len(t, lines, analytics.GridRows+2)
	assert.Len(t, []rune(lines[0]), analytics.GridCols)
	for _, line := range lines[1 : analytics.GridRows+1] {
		assert.Len(t, []rune(line), analytics.GridCols)
	}
	assert.Contains(t, text, "█", "the completed day renders at full shade")
}

func TestReportService_StatsReport(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()
	svc := newReportService(env)

	now := svcDay(0).Add(16 * time.Hour)
	for offset := 0; offset < 3; offset++ {
		task, err := env.taskSvc.CreateTask(ctx, env.user, TaskInput{Title: "routine", Weight: 4, Category: "Спорт", Date: svcDay(offset)})
		require.NoError(t, err)
		_, _, err = env.taskSvc.CompleteTask(ctx, env.user, task.ID, svcDay(offset).Add(12*time.Hour))
		require.NoError(t, err)
	}

	text, err := svc.StatsReport(ctx, *env.user, now, 7)
	require.NoError(t, err)

	assert.Contains(t, text, "Статистика за 7 дн.")
	assert.Contains(t, text, "Задач: <b>3</b>, выполнено: <b>3</b>")
	assert.Contains(t, text, "Спорт: 3")
	assert.Contains(t, text, "Лучшая серия: <b>3 дн.</b>")
}
