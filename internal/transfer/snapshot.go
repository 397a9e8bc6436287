// Package transfer owns the JSON backup/import contracts wrapped around
// the engine's data model. Parsing fails closed: a malformed document is
// rejected as a whole so existing state is never partially replaced.
package transfer

import (
	"encoding/json"
	"fmt"
	"time"

	"kinetics/internal/analytics"
)

// TaskDoc is the serialized task shape.
type TaskDoc struct {
	ID           string     `json:"id,omitempty"`
	Title        string     `json:"title"`
	Completed    bool       `json:"completed"`
	ImpactWeight int        `json:"impact_weight,omitempty"`
	CategoryID   string     `json:"category_id,omitempty"`
	CreatedAt    *time.Time `json:"created_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// EntryDoc is the serialized day-entry shape. Date is ISO-8601.
type EntryDoc struct {
	Date                string     `json:"date"`
	Status              string     `json:"status,omitempty"`
	RecoveryAttemptedAt *time.Time `json:"recoveryAttemptedAt,omitempty"`
	Tasks               []TaskDoc  `json:"tasks"`
}

// MemberDoc is one time-bounded membership record.
type MemberDoc struct {
	UserID   string     `json:"user_id"`
	JoinedAt time.Time  `json:"joined_at"`
	LeftAt   *time.Time `json:"left_at,omitempty"`
}

// SquadDoc is the serialized squad shape.
type SquadDoc struct {
	Name          string      `json:"name"`
	MinThreshold  int         `json:"min_threshold"`
	StreakFreezes int         `json:"streak_freezes"`
	OwnerTimezone string      `json:"owner_timezone,omitempty"`
	MemberHistory []MemberDoc `json:"member_history"`
}

// Snapshot is the top-level backup document.
type Snapshot struct {
	Entries []EntryDoc `json:"entries"`
	Squads  []SquadDoc `json:"squads,omitempty"`
}

// Export renders entries (and optionally squads) as an indented snapshot
// document.
func Export(entries []analytics.DayEntry, squads []analytics.Squad) ([]byte, error) {
	snapshot := Snapshot{Entries: make([]EntryDoc, 0, len(entries))}
	for _, entry := range entries {
		doc := EntryDoc{
			Date:                entry.Date.Format(time.RFC3339),
			RecoveryAttemptedAt: entry.RecoveryAttemptedAt,
			Tasks:               make([]TaskDoc, 0, len(entry.Tasks)),
		}
		if entry.Status != analytics.StatusActive && entry.Status != "" {
			doc.Status = string(entry.Status)
		}
		for _, task := range entry.Tasks {
			created := task.CreatedAt
			taskDoc := TaskDoc{
				ID:           task.ID,
				Title:        task.Title,
				Completed:    task.Completed,
				ImpactWeight: task.Weight,
				CategoryID:   task.Category,
				CompletedAt:  task.CompletedAt,
			}
			if !created.IsZero() {
				taskDoc.CreatedAt = &created
			}
			doc.Tasks = append(doc.Tasks, taskDoc)
		}
		snapshot.Entries = append(snapshot.Entries, doc)
	}

	for _, squad := range squads {
		doc := SquadDoc{
			Name:          squad.Name,
			MinThreshold:  squad.MinThreshold,
			StreakFreezes: squad.StreakFreezes,
			OwnerTimezone: squad.OwnerTimezone,
			MemberHistory: make([]MemberDoc, 0, len(squad.Members)),
		}
		for _, member := range squad.Members {
			doc.MemberHistory = append(doc.MemberHistory, MemberDoc{
				UserID:   member.UserID,
				JoinedAt: member.JoinedAt,
				LeftAt:   member.LeftAt,
			})
		}
		snapshot.Squads = append(snapshot.Squads, doc)
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return data, nil
}
