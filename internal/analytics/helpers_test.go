package analytics

import (
	"fmt"
	"time"
)

// day returns a UTC midnight date offset days back from the fixed test
// anchor.
func day(offset int) time.Time {
	anchor := time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)
	return anchor.AddDate(0, 0, -offset)
}

func doneTask(weight int) Task {
	at := day(0)
	return Task{
		ID:          fmt.Sprintf("t-%d", weight),
		Title:       "task",
		Completed:   true,
		Weight:      weight,
		Category:    DefaultCategory,
		CreatedAt:   at,
		CompletedAt: &at,
	}
}

func openTask(weight int) Task {
	return Task{
		ID:        fmt.Sprintf("o-%d", weight),
		Title:     "task",
		Completed: false,
		Weight:    weight,
		Category:  DefaultCategory,
		CreatedAt: day(0),
	}
}

func withCategory(t Task, category string) Task {
	t.Category = category
	return t
}

func entry(offset int, tasks ...Task) DayEntry {
	return DayEntry{Date: day(offset), Tasks: tasks, Status: StatusActive}
}

func recoveredEntry(offset int, tasks ...Task) DayEntry {
	at := day(offset).Add(30 * time.Hour)
	return DayEntry{Date: day(offset), Tasks: tasks, Status: StatusRecovered, RecoveryAttemptedAt: &at}
}
