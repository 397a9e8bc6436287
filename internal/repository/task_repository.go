package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"kinetics/internal/model"
)

// TaskRepository handles CRUD for weighted day tasks.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
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

// ListForDay returns a user's tasks dated within [dayStart, dayStart+24h).
func (r *TaskRepository) ListForDay(ctx context.Context, userID uint, dayStart time.Time) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND date >= ? AND date < ?", userID, dayStart, dayStart.AddDate(0, 0, 1)).
		Order("created_at ASC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListSince returns all of a user's tasks dated on or after cutoff.
func (r *TaskRepository) ListSince(ctx context.Context, userID uint, cutoff time.Time) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND date >= ?", userID, cutoff).
		Order("date ASC, created_at ASC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// SetCompleted flips completion state, keeping the completed_at invariant:
// set on completion, cleared when toggled back.
func (r *TaskRepository) SetCompleted(ctx context.Context, task *model.Task, completed bool, at time.Time) error {
	task.IsCompleted = completed
	if completed {
		task.CompletedAt = &at
	} else {
		task.CompletedAt = nil
	}
	if err := r.db.WithContext(ctx).Model(task).Select("is_completed", "completed_at").Updates(map[string]interface{}{
		"is_completed": task.IsCompleted,
		"completed_at": task.CompletedAt,
	}).Error; err != nil {
		return fmt.Errorf("update task completion: %w", err)
	}
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, userID, taskID uint) error {
	if err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, taskID).
		Delete(&model.Task{}).Error; err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

// CompletedWeightByUser sums completed impact weights per user over
// [dayStart, dayStart+24h), for squad contribution lookups.
func (r *TaskRepository) CompletedWeightByUser(ctx context.Context, userIDs []uint, dayStart time.Time) (map[uint]int, error) {
	sums := make(map[uint]int, len(userIDs))
	if len(userIDs) == 0 {
		return sums, nil
	}

	type row struct {
		UserID uint
		Total  int
	}
	var rows []row
	if err := r.db.WithContext(ctx).Model(&model.Task{}).
		Select("user_id, SUM(weight) AS total").
		Where("user_id IN ? AND is_completed = ? AND date >= ? AND date < ?",
			userIDs, true, dayStart, dayStart.AddDate(0, 0, 1)).
		Group("user_id").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("sum contributions: %w", err)
	}
	for _, r := range rows {
		sums[r.UserID] = r.Total
	}
	return sums, nil
}
