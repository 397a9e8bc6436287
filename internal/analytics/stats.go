package analytics

import (
	"math"
	"sort"
	"time"
)

// CategoryShare is one slice of the completed-task category distribution.
type CategoryShare struct {
	Name  string
	Value int
}

// RangeStats summarizes activity over a date range for reporting.
type RangeStats struct {
	TotalTasks           int
	CompletedTasks       int
	ConsistencyScore     int
	TopCategory          string
	CategoryDistribution []CategoryShare
	LongestStreak        int
	BusiestDay           string
	LeastBusyDay         string
	Percentile           int
}

// ComputeRangeStats aggregates entries dated within [from, to].
func ComputeRangeStats(entries []DayEntry, from, to time.Time) RangeStats {
	start := StartOfDay(from)
	end := StartOfDay(to)

	var inRange []DayEntry
	for _, entry := range entries {
		date := StartOfDay(entry.Date)
		if date.Before(start) || date.After(end) {
			continue
		}
		inRange = append(inRange, entry)
	}

	total := 0
	completed := 0
	categories := make(map[string]int)
	var weekdays [7]int
	for _, entry := range inRange {
		entryCompleted := 0
		for _, task := range entry.Tasks {
			total++
			if !task.Completed {
				continue
			}
			completed++
			entryCompleted++
			categories[task.Category]++
		}
		if entryCompleted > 0 {
			weekdays[int(entry.Date.Weekday())] += entryCompleted
		}
	}

	consistency := 0
	if total > 0 {
		consistency = int(math.Round(float64(completed) / float64(total) * 100))
	}

	distribution := make([]CategoryShare, 0, len(categories))
	for name, value := range categories {
		distribution = append(distribution, CategoryShare{Name: name, Value: value})
	}
	sort.SliceStable(distribution, func(i, j int) bool {
		if distribution[i].Value != distribution[j].Value {
			return distribution[i].Value > distribution[j].Value
		}
		return distribution[i].Name < distribution[j].Name
	})
	top := "None"
	if len(distribution) > 0 {
		top = distribution[0].Name
	}
	if len(distribution) > 5 {
		distribution = distribution[:5]
	}

	busiest, least := weekdayExtremes(weekdays)

	longest := LongestStreak(inRange, start, end)

	percentile := int(math.Round(50 + float64(consistency)*0.4))
	if longest > 7 {
		percentile += 5
	}
	if percentile > 99 {
		percentile = 99
	}

	return RangeStats{
		TotalTasks:           total,
		CompletedTasks:       completed,
		ConsistencyScore:     consistency,
		TopCategory:          top,
		CategoryDistribution: distribution,
		LongestStreak:        longest,
		BusiestDay:           busiest,
		LeastBusyDay:         least,
		Percentile:           percentile,
	}
}

// weekdayExtremes picks the busiest and least-busy weekdays by completed
// task count. Days with zero activity never win "least busy"; with no
// activity at all both are "N/A".
func weekdayExtremes(counts [7]int) (string, string) {
	names := [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

	maxIdx := -1
	minIdx := -1
	for i, count := range counts {
		if count == 0 {
			continue
		}
		if maxIdx == -1 || count > counts[maxIdx] {
			maxIdx = i
		}
		if minIdx == -1 || count < counts[minIdx] {
			minIdx = i
		}
	}
	if maxIdx == -1 {
		return "N/A", "N/A"
	}
	return names[maxIdx], names[minIdx]
}
