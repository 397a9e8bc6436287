package analytics

import "time"

const (
	// DefaultRecoveryGraceHours is how long a broken day stays repairable.
	DefaultRecoveryGraceHours = 48
	// DefaultRecoveryThreshold is the minimum impact weight of a completed
	// task that repairs a break.
	DefaultRecoveryThreshold = 5
)

// RecoveryWindow describes a streak break that can still be repaired.
type RecoveryWindow struct {
	BrokenDate      time.Time
	HoursSinceBreak int
	Recoverable     bool
}

// FindRecovery locates the most recent non-recovered zero-execution day.
// It returns nil when the most recent non-recovered day already has
// positive execution (nothing to recover) or when the break is older than
// the grace window (permanent).
func FindRecovery(entries []DayEntry, today time.Time, graceHours int) *RecoveryWindow {
	if graceHours <= 0 {
		graceHours = DefaultRecoveryGraceHours
	}
	day := StartOfDay(today)

	for _, entry := range sortedByDateDesc(entries) {
		if entry.Status == StatusRecovered {
			continue
		}
		if StartOfDay(entry.Date).After(day) {
			continue
		}
		if entry.ExecutionVolume() > 0 {
			return nil
		}
		hours := int(today.Sub(entry.Date).Hours())
		if hours > 0 && hours < graceHours {
			return &RecoveryWindow{
				BrokenDate:      entry.Date,
				HoursSinceBreak: hours,
				Recoverable:     true,
			}
		}
		return nil
	}
	return nil
}

// QualifiesForRecovery reports whether a completed task repairs a break.
func QualifiesForRecovery(task Task, threshold int) bool {
	if threshold <= 0 {
		threshold = DefaultRecoveryThreshold
	}
	return task.Completed && task.Weight >= threshold
}

// Recover returns a copy of the entry credited as recovered at grantedAt.
// A day only ever transitions active -> recovered; recovered and missed
// entries are returned unchanged.
func Recover(entry DayEntry, grantedAt time.Time) DayEntry {
	if entry.Status != StatusActive {
		return entry
	}
	stamp := grantedAt
	entry.Status = StatusRecovered
	entry.RecoveryAttemptedAt = &stamp
	return entry
}
