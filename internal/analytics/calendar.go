package analytics

import "time"

// DayKeyFormat is the canonical day-key layout used for every map lookup.
const DayKeyFormat = "2006-01-02"

// DayKey formats t as a canonical yyyy-MM-dd key.
func DayKey(t time.Time) string {
	return t.Format(DayKeyFormat)
}

// ZoneDayKey formats the day key in the given IANA timezone. An empty or
// invalid zone falls back to UTC rather than failing.
func ZoneDayKey(t time.Time, zone string) string {
	loc := time.UTC
	if zone != "" {
		if parsed, err := time.LoadLocation(zone); err == nil {
			loc = parsed
		}
	}
	return t.In(loc).Format(DayKeyFormat)
}

// StartOfDay returns 00:00:00 of the same day in the same location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDay reports whether two times fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

const (
	// GridRows is one row per weekday, Sunday first.
	GridRows = 7
	// GridCols is the number of week columns covering a trailing year.
	GridCols = 53
)

// GridCell is one slot of the trailing-year grid. Padding cells carry no
// date and render empty.
type GridCell struct {
	Date    time.Time
	Padding bool
}

// MonthLabel marks the week column holding the first day of a month.
type MonthLabel struct {
	Label string
	Col   int
}

// YearGrid is a GitHub-style contribution grid: row = weekday (0 = Sunday),
// column = week index, always exactly GridRows x GridCols cells.
type YearGrid struct {
	Cells  [GridRows][GridCols]GridCell
	Months []MonthLabel
	Start  time.Time
	End    time.Time
}

// BuildYearGrid lays out the 371 cells covering the year trailing today.
// Column 0 begins on the Sunday on or before today-364d; cells dated after
// today are padding.
func BuildYearGrid(today time.Time) YearGrid {
	end := StartOfDay(today)
	windowStart := end.AddDate(0, 0, -364)
	start := windowStart.AddDate(0, 0, -int(windowStart.Weekday()))

	grid := YearGrid{Start: start, End: end}
	for col := 0; col < GridCols; col++ {
		for row := 0; row < GridRows; row++ {
			date := start.AddDate(0, 0, col*7+row)
			grid.Cells[row][col] = GridCell{Date: date, Padding: date.After(end)}
		}
	}

	seen := make(map[string]bool)
	for col := 0; col < GridCols; col++ {
		for row := 0; row < GridRows; row++ {
			cell := grid.Cells[row][col]
			if cell.Padding || cell.Date.Day() != 1 {
				continue
			}
			month := cell.Date.Format("2006-01")
			if seen[month] {
				continue
			}
			seen[month] = true
			grid.Months = append(grid.Months, MonthLabel{Label: cell.Date.Format("Jan"), Col: col})
		}
	}
	return grid
}
