package analytics

import "time"

// MaxHistoryDays bounds every backward walk over the entry history.
const MaxHistoryDays = 365

// CurrentStreak counts the unbroken run of qualifying days ending at or
// before today. A day qualifies with positive execution volume or a
// recovered status; the first entry that does neither ends the run.
// Entries dated after today are skipped, not counted as breaks.
func CurrentStreak(entries []DayEntry, today time.Time) int {
	day := StartOfDay(today)
	horizon := day.AddDate(0, 0, -MaxHistoryDays)

	streak := 0
	for _, entry := range sortedByDateDesc(entries) {
		date := StartOfDay(entry.Date)
		if date.After(day) {
			continue
		}
		if date.Before(horizon) {
			break
		}
		if entry.ExecutionVolume() > 0 || entry.Status == StatusRecovered {
			streak++
			continue
		}
		break
	}
	return streak
}

// LongestStreak finds the longest qualifying run among entries dated within
// [from, to], walking oldest first.
func LongestStreak(entries []DayEntry, from, to time.Time) int {
	start := StartOfDay(from)
	end := StartOfDay(to)

	longest := 0
	run := 0
	for _, entry := range sortedByDateAsc(entries) {
		date := StartOfDay(entry.Date)
		if date.Before(start) || date.After(end) {
			continue
		}
		if entry.ExecutionVolume() > 0 || entry.Status == StatusRecovered {
			run++
			if run > longest {
				longest = run
			}
			continue
		}
		run = 0
	}
	return longest
}
