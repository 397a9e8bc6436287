package transfer

import (
	"encoding/json"
	"fmt"
	"time"

	"kinetics/internal/analytics"
	"kinetics/internal/model"
)

// legacyDayDoc is the oldest export format: a day-of-month number plus a
// list of tasks that are either bare title strings or {title, completed}
// objects.
type legacyDayDoc struct {
	Day   int               `json:"Day"`
	Tasks []json.RawMessage `json:"Tasks"`
}

type legacyTaskDoc struct {
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// Parse reads a backup document in any supported format and returns the
// entries it contains. Supported shapes:
//
//   - a snapshot object {"entries": [...], "squads": [...]}
//   - a bare array of entry objects (pre-squad exports)
//   - a legacy array of {Day, Tasks} objects, where Day is a day of the
//     current month
//
// Validation is strict: any malformed element rejects the whole document.
func Parse(data []byte, now time.Time) ([]analytics.DayEntry, error) {
	var probe interface{}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	switch probe.(type) {
	case map[string]interface{}:
		return parseSnapshot(data)
	case []interface{}:
		return parseArray(data, now)
	default:
		return nil, fmt.Errorf("unsupported document shape: expected object or array")
	}
}

func parseSnapshot(data []byte) ([]analytics.DayEntry, error) {
	var raw struct {
		Entries json.RawMessage `json:"entries"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid snapshot: %w", err)
	}
	if len(raw.Entries) == 0 {
		return nil, fmt.Errorf("snapshot is missing the entries field")
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw.Entries, &items); err != nil {
		return nil, fmt.Errorf("entries must be an array")
	}
	return parseEntryDocs(items)
}

func parseArray(data []byte, now time.Time) ([]analytics.DayEntry, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("invalid array: %w", err)
	}
	if len(items) == 0 {
		return []analytics.DayEntry{}, nil
	}

	var first map[string]json.RawMessage
	if err := json.Unmarshal(items[0], &first); err != nil {
		return nil, fmt.Errorf("array elements must be objects")
	}
	if _, legacy := first["Day"]; legacy {
		return parseLegacyDocs(items, now)
	}
	return parseEntryDocs(items)
}

func parseEntryDocs(items []json.RawMessage) ([]analytics.DayEntry, error) {
	entries := make([]analytics.DayEntry, 0, len(items))
	for i, item := range items {
		var doc EntryDoc
		if err := json.Unmarshal(item, &doc); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		date, err := parseDate(doc.Date)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		status, err := parseStatus(doc.Status)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}

		entry := analytics.DayEntry{
			Date:                date,
			Status:              status,
			RecoveryAttemptedAt: doc.RecoveryAttemptedAt,
			Tasks:               make([]analytics.Task, 0, len(doc.Tasks)),
		}
		for j, taskDoc := range doc.Tasks {
			task, err := toEntryTask(taskDoc, date)
			if err != nil {
				return nil, fmt.Errorf("entry %d task %d: %w", i, j, err)
			}
			entry.Tasks = append(entry.Tasks, task)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func parseLegacyDocs(items []json.RawMessage, now time.Time) ([]analytics.DayEntry, error) {
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	daysInMonth := monthStart.AddDate(0, 1, -1).Day()

	entries := make([]analytics.DayEntry, 0, len(items))
	for i, item := range items {
		var doc legacyDayDoc
		if err := json.Unmarshal(item, &doc); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		if doc.Day < 1 {
			return nil, fmt.Errorf("entry %d: day %d is out of range", i, doc.Day)
		}
		day := doc.Day
		if day > daysInMonth {
			day = daysInMonth
		}
		date := time.Date(now.Year(), now.Month(), day, 0, 0, 0, 0, now.Location())

		entry := analytics.DayEntry{
			Date:   date,
			Status: analytics.StatusActive,
			Tasks:  make([]analytics.Task, 0, len(doc.Tasks)),
		}
		for j, rawTask := range doc.Tasks {
			var title string
			if err := json.Unmarshal(rawTask, &title); err == nil {
				entry.Tasks = append(entry.Tasks, newImportTask(title, false, date))
				continue
			}
			var taskDoc legacyTaskDoc
			if err := json.Unmarshal(rawTask, &taskDoc); err != nil {
				return nil, fmt.Errorf("entry %d task %d: expected string or object", i, j)
			}
			if taskDoc.Title == "" {
				return nil, fmt.Errorf("entry %d task %d: title is required", i, j)
			}
			entry.Tasks = append(entry.Tasks, newImportTask(taskDoc.Title, taskDoc.Completed, date))
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func toEntryTask(doc TaskDoc, date time.Time) (analytics.Task, error) {
	if doc.Title == "" {
		return analytics.Task{}, fmt.Errorf("title is required")
	}
	task := analytics.Task{
		ID:          doc.ID,
		Title:       doc.Title,
		Completed:   doc.Completed,
		Weight:      doc.ImpactWeight,
		Category:    doc.CategoryID,
		CompletedAt: doc.CompletedAt,
	}
	if task.Weight == 0 {
		task.Weight = analytics.DefaultWeight
	}
	task.Weight = model.ClampWeight(task.Weight)
	if task.Category == "" {
		task.Category = analytics.DefaultCategory
	}
	if doc.CreatedAt != nil {
		task.CreatedAt = *doc.CreatedAt
	} else {
		task.CreatedAt = date
	}
	if task.Completed && task.CompletedAt == nil {
		at := date
		task.CompletedAt = &at
	}
	if !task.Completed {
		task.CompletedAt = nil
	}
	return task, nil
}

func newImportTask(title string, completed bool, date time.Time) analytics.Task {
	task := analytics.Task{
		Title:     title,
		Completed: completed,
		Weight:    analytics.DefaultWeight,
		Category:  analytics.DefaultCategory,
		CreatedAt: date,
	}
	if completed {
		at := date
		task.CompletedAt = &at
	}
	return task
}

func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("date is required")
	}
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return analytics.StartOfDay(parsed.Local()), nil
	}
	if parsed, err := time.ParseInLocation(analytics.DayKeyFormat, value, time.Local); err == nil {
		return parsed, nil
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", value)
}

func parseStatus(value string) (analytics.Status, error) {
	switch analytics.Status(value) {
	case "", analytics.StatusActive:
		return analytics.StatusActive, nil
	case analytics.StatusRecovered:
		return analytics.StatusRecovered, nil
	case analytics.StatusMissed:
		return analytics.StatusMissed, nil
	default:
		return "", fmt.Errorf("unknown day status %q", value)
	}
}
