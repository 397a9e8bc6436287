package service

import (
	"context"
	"fmt"
	"time"

	"kinetics/internal/analytics"
	"kinetics/internal/model"
	"kinetics/internal/repository"
)

// TaskInput represents data required to create a task.
type TaskInput struct {
	Title    string
	Weight   int
	Category string
	Date     time.Time
}

// TaskService wraps task-related business logic, including the recovery
// grant that completing a heavy task can trigger.
type TaskService struct {
	taskRepo     *repository.TaskRepository
	categoryRepo *repository.CategoryRepository
	entryRepo    *repository.EntryRepository

	recoveryThreshold int
	recoveryGrace     time.Duration
}

func NewTaskService(
	taskRepo *repository.TaskRepository,
	categoryRepo *repository.CategoryRepository,
	entryRepo *repository.EntryRepository,
	recoveryThreshold int,
	recoveryGrace time.Duration,
) *TaskService {
	if recoveryThreshold <= 0 {
		recoveryThreshold = analytics.DefaultRecoveryThreshold
	}
	if recoveryGrace <= 0 {
		recoveryGrace = analytics.DefaultRecoveryGraceHours * time.Hour
	}
	return &TaskService{
		taskRepo:          taskRepo,
		categoryRepo:      categoryRepo,
		entryRepo:         entryRepo,
		recoveryThreshold: recoveryThreshold,
		recoveryGrace:     recoveryGrace,
	}
}

func (s *TaskService) CreateTask(ctx context.Context, user *model.User, input TaskInput) (*model.Task, error) {
	if input.Title == "" {
		return nil, fmt.Errorf("title is required")
	}

	var categoryID *uint
	if input.Category != "" {
		category, err := s.categoryRepo.GetOrCreate(ctx, user.ID, input.Category)
		if err != nil {
			return nil, err
		}
		if category != nil {
			categoryID = &category.ID
		}
	}

	date := input.Date
	if date.IsZero() {
		date = time.Now()
	}

	weight := input.Weight
	if weight == 0 {
		weight = model.DefaultWeight
	}

	task := model.Task{
		UserID:     user.ID,
		CategoryID: categoryID,
		Title:      input.Title,
		Weight:     model.ClampWeight(weight),
		Date:       analytics.StartOfDay(date),
	}

	if err := s.taskRepo.Create(ctx, &task); err != nil {
		return nil, err
	}

	return &task, nil
}

func (s *TaskService) GetTask(ctx context.Context, user *model.User, taskID uint) (*model.Task, error) {
	return s.taskRepo.FindByID(ctx, user.ID, taskID)
}

func (s *TaskService) ListForDay(ctx context.Context, user *model.User, day time.Time) ([]model.Task, error) {
	return s.taskRepo.ListForDay(ctx, user.ID, analytics.StartOfDay(day))
}

// CompleteTask marks a task as done. When the completed task is heavy
// enough and a broken day is still inside its grace window, the broken day
// is credited as recovered; the returned window is non-nil exactly when
// that grant happened.
func (s *TaskService) CompleteTask(ctx context.Context, user *model.User, taskID uint, completedAt time.Time) (*model.Task, *analytics.RecoveryWindow, error) {
	task, err := s.taskRepo.FindByID(ctx, user.ID, taskID)
	if err != nil {
		return nil, nil, err
	}
	if task.IsCompleted {
		return task, nil, nil
	}

	// The window must be located before the completion lands, otherwise
	// today's new volume hides the break.
	entries, err := s.loadHistory(ctx, user.ID, completedAt)
	if err != nil {
		return nil, nil, err
	}
	window := analytics.FindRecovery(pastEntries(entries, completedAt), completedAt, int(s.recoveryGrace.Hours()))

	if err := s.taskRepo.SetCompleted(ctx, task, true, completedAt); err != nil {
		return nil, nil, err
	}

	candidate := analytics.Task{Completed: true, Weight: model.ClampWeight(task.Weight)}
	if window == nil || !window.Recoverable || !analytics.QualifiesForRecovery(candidate, s.recoveryThreshold) {
		return task, nil, nil
	}

	brokenKey := analytics.DayKey(window.BrokenDate)
	if err := s.entryRepo.MarkRecovered(ctx, user.ID, brokenKey, completedAt); err != nil {
		return nil, nil, err
	}
	return task, window, nil
}

// UncompleteTask reopens a completed task. A recovery granted off this
// task is deliberately left in place; grants are never retracted.
func (s *TaskService) UncompleteTask(ctx context.Context, user *model.User, taskID uint) (*model.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, user.ID, taskID)
	if err != nil {
		return nil, err
	}
	if !task.IsCompleted {
		return task, nil
	}
	if err := s.taskRepo.SetCompleted(ctx, task, false, time.Time{}); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, user *model.User, taskID uint) error {
	return s.taskRepo.Delete(ctx, user.ID, taskID)
}

// RecoveryWindow exposes the current repairable break, if any, for status
// commands.
func (s *TaskService) RecoveryWindow(ctx context.Context, user *model.User, now time.Time) (*analytics.RecoveryWindow, error) {
	entries, err := s.loadHistory(ctx, user.ID, now)
	if err != nil {
		return nil, err
	}
	return analytics.FindRecovery(pastEntries(entries, now), now, int(s.recoveryGrace.Hours())), nil
}

// RecoveryThreshold is the impact weight a completed task needs to repair
// a break.
func (s *TaskService) RecoveryThreshold() int {
	return s.recoveryThreshold
}

func (s *TaskService) loadHistory(ctx context.Context, userID uint, now time.Time) ([]analytics.DayEntry, error) {
	cutoff := analytics.StartOfDay(now).AddDate(0, 0, -analytics.MaxHistoryDays)
	return s.entryRepo.LoadRange(ctx, userID, cutoff)
}

// pastEntries drops today's entry: a recovery grant repairs a finished
// day, never the one still in progress.
func pastEntries(entries []analytics.DayEntry, now time.Time) []analytics.DayEntry {
	past := make([]analytics.DayEntry, 0, len(entries))
	for _, entry := range entries {
		if analytics.SameDay(entry.Date, now) {
			continue
		}
		past = append(past, entry)
	}
	return past
}
