package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"gorm.io/gorm"

	"kinetics/internal/analytics"
	"kinetics/internal/model"
)

// EntryRepository assembles the engine's day-entry collection from stored
// tasks and per-day statuses, and owns the recovery status transition.
type EntryRepository struct {
	db *gorm.DB
}

func NewEntryRepository(db *gorm.DB) *EntryRepository {
	return &EntryRepository{db: db}
}

// LoadRange builds the DayEntry collection for a user covering tasks dated
// on or after cutoff. Days that only exist as a status row (e.g. a
// recovered day with no tasks) are included with an empty task list.
func (r *EntryRepository) LoadRange(ctx context.Context, userID uint, cutoff time.Time) ([]analytics.DayEntry, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND date >= ?", userID, cutoff).
		Order("date ASC, created_at ASC").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}

	var statuses []model.DayStatus
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND day_key >= ?", userID, analytics.DayKey(cutoff)).
		Find(&statuses).Error; err != nil {
		return nil, fmt.Errorf("load day statuses: %w", err)
	}

	categories, err := r.categoryNames(ctx, userID)
	if err != nil {
		return nil, err
	}

	byDay := make(map[string]*analytics.DayEntry)
	keys := make([]string, 0)
	ensure := func(key string, date time.Time) *analytics.DayEntry {
		if entry, ok := byDay[key]; ok {
			return entry
		}
		entry := &analytics.DayEntry{Date: analytics.StartOfDay(date), Status: analytics.StatusActive}
		byDay[key] = entry
		keys = append(keys, key)
		return entry
	}

	for _, task := range tasks {
		key := analytics.DayKey(task.Date)
		entry := ensure(key, task.Date)
		entry.Tasks = append(entry.Tasks, toEngineTask(task, categories))
	}

	for _, status := range statuses {
		date, err := time.ParseInLocation(analytics.DayKeyFormat, status.DayKey, time.Local)
		if err != nil {
			continue
		}
		entry := ensure(status.DayKey, date)
		entry.Status = analytics.Status(status.Status)
		entry.RecoveryAttemptedAt = status.RecoveryAttemptedAt
	}

	sort.Strings(keys)
	entries := make([]analytics.DayEntry, 0, len(keys))
	for _, key := range keys {
		entries = append(entries, *byDay[key])
	}
	return entries, nil
}

// MarkRecovered transitions a day active -> recovered, stamping the grant
// time. Recovered days are left untouched so the transition never
// regresses or restamps.
func (r *EntryRepository) MarkRecovered(ctx context.Context, userID uint, dayKey string, at time.Time) error {
	db := r.db.WithContext(ctx)

	var status model.DayStatus
	err := db.Where("user_id = ? AND day_key = ?", userID, dayKey).First(&status).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		status = model.DayStatus{
			UserID:              userID,
			DayKey:              dayKey,
			Status:              model.DayRecovered,
			RecoveryAttemptedAt: &at,
		}
		if err := db.Create(&status).Error; err != nil {
			return fmt.Errorf("create day status: %w", err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("find day status: %w", err)
	}

	if status.Status == model.DayRecovered {
		return nil
	}
	status.Status = model.DayRecovered
	status.RecoveryAttemptedAt = &at
	if err := db.Save(&status).Error; err != nil {
		return fmt.Errorf("update day status: %w", err)
	}
	return nil
}

// ReplaceAll atomically replaces a user's tasks and day statuses with an
// imported collection. Any failure rolls the whole import back.
func (r *EntryRepository) ReplaceAll(ctx context.Context, userID uint, entries []analytics.DayEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&model.Task{}).Error; err != nil {
			return fmt.Errorf("clear tasks: %w", err)
		}
		if err := tx.Where("user_id = ?", userID).Delete(&model.DayStatus{}).Error; err != nil {
			return fmt.Errorf("clear day statuses: %w", err)
		}

		categoryIDs := make(map[string]uint)
		categoryID := func(name string) (*uint, error) {
			if name == "" {
				name = analytics.DefaultCategory
			}
			if id, ok := categoryIDs[name]; ok {
				return &id, nil
			}
			var category model.Category
			err := tx.Where("user_id = ? AND name = ?", userID, name).First(&category).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				category = model.Category{UserID: userID, Name: name}
				if err := tx.Create(&category).Error; err != nil {
					return nil, fmt.Errorf("create category: %w", err)
				}
			} else if err != nil {
				return nil, fmt.Errorf("find category: %w", err)
			}
			categoryIDs[name] = category.ID
			return &category.ID, nil
		}

		for _, entry := range entries {
			date := analytics.StartOfDay(entry.Date)
			for _, task := range entry.Tasks {
				catID, err := categoryID(task.Category)
				if err != nil {
					return err
				}
				stored := model.Task{
					UserID:      userID,
					CategoryID:  catID,
					Title:       task.Title,
					Weight:      model.ClampWeight(task.Weight),
					Date:        date,
					IsCompleted: task.Completed,
					CompletedAt: task.CompletedAt,
				}
				if stored.IsCompleted && stored.CompletedAt == nil {
					at := date
					stored.CompletedAt = &at
				}
				if !stored.IsCompleted {
					stored.CompletedAt = nil
				}
				if err := tx.Create(&stored).Error; err != nil {
					return fmt.Errorf("import task: %w", err)
				}
			}

			if entry.Status != analytics.StatusActive && entry.Status != "" {
				status := model.DayStatus{
					UserID:              userID,
					DayKey:              analytics.DayKey(date),
					Status:              string(entry.Status),
					RecoveryAttemptedAt: entry.RecoveryAttemptedAt,
				}
				if err := tx.Create(&status).Error; err != nil {
					return fmt.Errorf("import day status: %w", err)
				}
			}
		}
		return nil
	})
}

// categoryNames maps category ids to display names for one user.
func (r *EntryRepository) categoryNames(ctx context.Context, userID uint) (map[uint]string, error) {
	var categories []model.Category
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	names := make(map[uint]string, len(categories))
	for _, category := range categories {
		names[category.ID] = category.Name
	}
	return names, nil
}

// toEngineTask converts a stored task into the engine's view, resolving
// category and weight defaults once at this boundary.
func toEngineTask(task model.Task, categories map[uint]string) analytics.Task {
	category := analytics.DefaultCategory
	if task.CategoryID != nil {
		if name, ok := categories[*task.CategoryID]; ok && name != "" {
			category = name
		}
	}
	return analytics.Task{
		ID:          strconv.FormatUint(uint64(task.ID), 10),
		Title:       task.Title,
		Completed:   task.IsCompleted,
		Weight:      model.ClampWeight(task.Weight),
		Category:    category,
		CreatedAt:   task.CreatedAt,
		CompletedAt: task.CompletedAt,
	}
}
