package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeRangeStats_Empty(t *testing.T) {
	stats := ComputeRangeStats(nil, day(7), day(0))

	assert.Equal(t, 0, stats.TotalTasks)
	assert.Equal(t, 0, stats.ConsistencyScore)
	assert.Equal(t, "None", stats.TopCategory)
	assert.Equal(t, "N/A", stats.BusiestDay)
	assert.Equal(t, "N/A", stats.LeastBusyDay)
}

func TestComputeRangeStats_ConsistencyAndCategories(t *testing.T) {
	entries := []DayEntry{
		entry(2, withCategory(doneTask(3), "Work"), withCategory(doneTask(4), "Work"), openTask(2)),
		entry(1, withCategory(doneTask(5), "Health")),
		entry(20, doneTask(9)), // outside range, ignored
	}

	stats := ComputeRangeStats(entries, day(7), day(0))

	assert.Equal(t, 4, stats.TotalTasks)
	assert.Equal(t, 3, stats.CompletedTasks)
	assert.Equal(t, 75, stats.ConsistencyScore)
	assert.Equal(t, "Work", stats.TopCategory)
	require.NotEmpty(t, stats.CategoryDistribution)
	assert.Equal(t, CategoryShare{Name: "Work", Value: 2}, stats.CategoryDistribution[0])
}

func TestComputeRangeStats_BusiestWeekday(t *testing.T) {
	// day(0) anchor is a Sunday.
	entries := []DayEntry{
		entry(0, doneTask(3), doneTask(3), doneTask(3)), // Sunday, 3 completed
		entry(1, doneTask(3)),                           // Saturday, 1 completed
	}

	stats := ComputeRangeStats(entries, day(7), day(0))

	assert.Equal(t, "Sunday", stats.BusiestDay)
	assert.Equal(t, "Saturday", stats.LeastBusyDay)
}

func TestComputeRangeStats_PercentileCapped(t *testing.T) {
	entries := make([]DayEntry, 0, 10)
	for i := 0; i < 10; i++ {
		entries = append(entries, entry(i, doneTask(5)))
	}

	stats := ComputeRangeStats(entries, day(30), day(0))

	assert.Equal(t, 100, stats.ConsistencyScore)
	assert.Equal(t, 10, stats.LongestStreak)
	assert.Equal(t, 95, stats.Percentile)
	assert.LessOrEqual(t, stats.Percentile, 99)
}
