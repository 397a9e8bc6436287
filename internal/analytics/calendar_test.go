package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZoneDayKey_ValidZone(t *testing.T) {
	// 2026-03-14 23:30 UTC is already 2026-03-15 in Tokyo.
	instant := time.Date(2026, time.March, 14, 23, 30, 0, 0, time.UTC)

	assert.Equal(t, "2026-03-15", ZoneDayKey(instant, "Asia/Tokyo"))
	assert.Equal(t, "2026-03-14", ZoneDayKey(instant, "UTC"))
}

func TestZoneDayKey_InvalidZoneFallsBackToUTC(t *testing.T) {
	instant := time.Date(2026, time.March, 14, 23, 30, 0, 0, time.UTC)

	assert.Equal(t, "2026-03-14", ZoneDayKey(instant, "Not/AZone"))
	assert.Equal(t, "2026-03-14", ZoneDayKey(instant, ""))
}

func TestBuildYearGrid_Completeness(t *testing.T) {
	for _, weekday := range []int{0, 1, 2, 3, 4, 5, 6} {
		// 2026-03-15 is a Sunday; shift to cover every weekday as "today".
		today := time.Date(2026, time.March, 15+weekday, 12, 0, 0, 0, time.UTC)
		grid := BuildYearGrid(today)

		end := StartOfDay(today)
		windowStart := end.AddDate(0, 0, -364)

		seen := make(map[string]bool)
		padding := 0
		for col := 0; col < GridCols; col++ {
			for row := 0; row < GridRows; row++ {
				cell := grid.Cells[row][col]
				if cell.Padding {
					padding++
					continue
				}
				key := DayKey(cell.Date)
				require.False(t, seen[key], "duplicate date %s", key)
				seen[key] = true
				assert.Equal(t, time.Weekday(row), cell.Date.Weekday())
			}
		}

		// Every day of the trailing 364-day window must be present.
		for d := windowStart; !d.After(end); d = d.AddDate(0, 0, 1) {
			assert.True(t, seen[DayKey(d)], "missing %s", DayKey(d))
		}
		assert.Equal(t, GridRows*GridCols, len(seen)+padding)
	}
}

func TestBuildYearGrid_ColumnZeroStartsOnSunday(t *testing.T) {
	grid := BuildYearGrid(time.Date(2026, time.March, 18, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, time.Sunday, grid.Start.Weekday())
	assert.False(t, grid.Start.After(grid.End.AddDate(0, 0, -364)))
}

func TestBuildYearGrid_MonthLabels(t *testing.T) {
	grid := BuildYearGrid(time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC))

	require.NotEmpty(t, grid.Months)
	for _, label := range grid.Months {
		assert.GreaterOrEqual(t, label.Col, 0)
		assert.Less(t, label.Col, GridCols)
		// Column must actually contain the first of a month.
		found := false
		for row := 0; row < GridRows; row++ {
			cell := grid.Cells[row][label.Col]
			if !cell.Padding && cell.Date.Day() == 1 && cell.Date.Format("Jan") == label.Label {
				found = true
			}
		}
		assert.True(t, found, "label %s not backed by a first-of-month cell", label.Label)
	}
	// A trailing year always crosses at least 12 month starts.
	assert.GreaterOrEqual(t, len(grid.Months), 12)
}
