package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectHeatmap_PerformanceNormalizedAgainstMax(t *testing.T) {
	entries := []DayEntry{
		entry(0, doneTask(4)),
		entry(1, doneTask(8)),
		entry(2, doneTask(2)),
	}

	points := ProjectHeatmap(entries, BurnoutMetrics{}, HeatmapOptions{})

	require.Len(t, points, 3)
	assert.InDelta(t, 0.5, points[0].PerformanceScore, 1e-9)
	assert.InDelta(t, 1.0, points[1].PerformanceScore, 1e-9)
	assert.InDelta(t, 0.25, points[2].PerformanceScore, 1e-9)
}

func TestProjectHeatmap_GhostDayForcesFullPerformance(t *testing.T) {
	entries := []DayEntry{
		entry(0, doneTask(10)),
		recoveredEntry(1),
	}

	points := ProjectHeatmap(entries, BurnoutMetrics{}, HeatmapOptions{})

	assert.False(t, points[0].Ghost)
	assert.True(t, points[1].Ghost)
	assert.InDelta(t, 1.0, points[1].PerformanceScore, 1e-9)
	assert.Equal(t, 0, points[1].ExecutionVolume)
}

func TestProjectHeatmap_IntegrityScoreRatioSafety(t *testing.T) {
	entries := []DayEntry{
		entry(0, openTask(4), doneTask(2)), // partial: 2/6
		entry(1, doneTask(5)),              // fully executed: capped at 1
		entry(2),                           // neither: integrity undefined
	}

	points := ProjectHeatmap(entries, BurnoutMetrics{}, HeatmapOptions{})

	require.NotNil(t, points[0].IntegrityScore)
	assert.InDelta(t, float64(2)/float64(6), *points[0].IntegrityScore, 1e-9)

	require.NotNil(t, points[1].IntegrityScore)
	assert.InDelta(t, 1.0, *points[1].IntegrityScore, 1e-9)

	assert.Nil(t, points[2].IntegrityScore)
	assert.InDelta(t, 0.0, points[2].PerformanceScore, 1e-9, "zero day never yields NaN")
}

func TestProjectHeatmap_CategoryFilterScopesMax(t *testing.T) {
	entries := []DayEntry{
		entry(0, withCategory(doneTask(3), "Health")),
		entry(1, withCategory(doneTask(9), "Work")),
	}

	points := ProjectHeatmap(entries, BurnoutMetrics{}, HeatmapOptions{
		ActiveCategories: []string{"Health"},
	})

	// Work's 9 is out of scope: Health's 3 is the max in scope.
	assert.InDelta(t, 1.0, points[0].PerformanceScore, 1e-9)
	assert.Equal(t, 0, points[1].ExecutionVolume)
}

func TestProjectHeatmap_OverlayNormalizesPerCategory(t *testing.T) {
	entries := []DayEntry{
		entry(0, withCategory(doneTask(2), "Health"), withCategory(doneTask(5), "Work")),
		entry(1, withCategory(doneTask(4), "Health"), withCategory(doneTask(10), "Work")),
	}

	points := ProjectHeatmap(entries, BurnoutMetrics{}, HeatmapOptions{
		ActiveCategories: []string{"Health", "Work"},
		Overlay:          true,
	})

	require.NotNil(t, points[0].OverlayScores)
	assert.InDelta(t, 0.5, points[0].OverlayScores["Health"], 1e-9)
	assert.InDelta(t, 0.5, points[0].OverlayScores["Work"], 1e-9)
	assert.InDelta(t, 1.0, points[1].OverlayScores["Health"], 1e-9)
	assert.InDelta(t, 1.0, points[1].OverlayScores["Work"], 1e-9)

	// Base score is the maximum across the active categories' scores.
	assert.InDelta(t, 0.5, points[0].PerformanceScore, 1e-9)
	assert.InDelta(t, 1.0, points[1].PerformanceScore, 1e-9)
}

func TestProjectHeatmap_RiskLevels(t *testing.T) {
	entries := []DayEntry{
		entry(0, doneTask(9)),
		entry(1, doneTask(2)),
	}
	burnout := BurnoutMetrics{
		RiskPercent: 85,
		HighDays:    map[string]bool{DayKey(day(0)): true},
	}

	points := ProjectHeatmap(entries, burnout, HeatmapOptions{})

	assert.Equal(t, RiskHigh, points[0].RiskLevel)
	assert.Equal(t, RiskNone, points[1].RiskLevel)
}
