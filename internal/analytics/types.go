package analytics

import (
	"sort"
	"time"
)

// Status describes the streak lifecycle of a single day.
type Status string

const (
	StatusActive    Status = "active"
	StatusRecovered Status = "recovered"
	StatusMissed    Status = "missed"
)

const (
	// DefaultWeight is assigned when a task carries no impact weight.
	DefaultWeight = 3
	// DefaultCategory is assigned when a task carries no category label.
	DefaultCategory = "General"
)

// Task is the engine's view of one tracked item. Weight and Category are
// expected to be resolved to their defaults at ingestion.
type Task struct {
	ID          string
	Title       string
	Completed   bool
	Weight      int
	Category    string
	CreatedAt   time.Time
	CompletedAt *time.Time
}

// DayEntry groups all tasks attributed to one calendar day. Absence of an
// entry for a day means zero intention and zero execution.
type DayEntry struct {
	Date                time.Time
	Tasks               []Task
	Status              Status
	RecoveryAttemptedAt *time.Time
}

// ExecutionVolume is the impact-weight sum of completed tasks.
func (e DayEntry) ExecutionVolume() int {
	sum := 0
	for _, t := range e.Tasks {
		if t.Completed {
			sum += t.Weight
		}
	}
	return sum
}

// IntentionVolume is the impact-weight sum of all tasks, completed or not.
func (e DayEntry) IntentionVolume() int {
	sum := 0
	for _, t := range e.Tasks {
		sum += t.Weight
	}
	return sum
}

// sortedByDateDesc returns a copy sorted most recent first. The engine never
// reorders the caller's slice.
func sortedByDateDesc(entries []DayEntry) []DayEntry {
	sorted := make([]DayEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.After(sorted[j].Date)
	})
	return sorted
}

// sortedByDateAsc returns a copy sorted oldest first.
func sortedByDateAsc(entries []DayEntry) []DayEntry {
	sorted := make([]DayEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})
	return sorted
}
