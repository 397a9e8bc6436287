package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeBurnout_EmptyHistory(t *testing.T) {
	metrics := ComputeBurnout(nil, day(0), DefaultBurnoutParams())

	assert.Equal(t, 0, metrics.RiskPercent)
	assert.Empty(t, metrics.HighDays)
	assert.Equal(t, 0, metrics.Consecutive)
}

func TestComputeBurnout_PercentileIsOrderInsensitive(t *testing.T) {
	forward := []DayEntry{
		entry(0, doneTask(9)),
		entry(1, doneTask(2)),
		entry(2, doneTask(7)),
		entry(3, doneTask(4)),
		entry(4, doneTask(1)),
	}
	shuffled := []DayEntry{forward[3], forward[0], forward[4], forward[2], forward[1]}

	a := ComputeBurnout(forward, day(0), DefaultBurnoutParams())
	b := ComputeBurnout(shuffled, day(0), DefaultBurnoutParams())

	assert.Equal(t, a.P90, b.P90)
	assert.Equal(t, a.RiskPercent, b.RiskPercent)
	assert.Equal(t, a.HighDays, b.HighDays)
}

func TestComputeBurnout_NearestRankPercentile(t *testing.T) {
	// Ten days of low volume plus one spike: sorted series of 11 values,
	// nearest rank floor(0.9*10) = index 9.
	entries := make([]DayEntry, 0, 11)
	for i := 1; i <= 10; i++ {
		entries = append(entries, entry(i, doneTask(i)))
	}
	entries = append(entries, entry(0, doneTask(20)))

	metrics := ComputeBurnout(entries, day(0), DefaultBurnoutParams())

	assert.Equal(t, 10, metrics.P90)
	assert.True(t, metrics.HighDays[DayKey(day(0))])
	assert.False(t, metrics.HighDays[DayKey(day(1))])
}

func TestComputeBurnout_ConsecutiveRunForcesFullRisk(t *testing.T) {
	// A 90-day window dominated by volume-4 days (81 of 90), ending in nine
	// straight days at 9. Nearest rank floor(0.9*89) = 80 still lands on a
	// low day, so p90 = 4 and the run of 9 exceeds the force limit.
	entries := make([]DayEntry, 0, 90)
	for i := 9; i < 90; i++ {
		entries = append(entries, entry(i, doneTask(4)))
	}
	for i := 0; i < 9; i++ {
		entries = append(entries, entry(i, doneTask(9)))
	}

	metrics := ComputeBurnout(entries, day(0), DefaultBurnoutParams())

	assert.Equal(t, 4, metrics.P90)
	assert.Equal(t, 9, metrics.Consecutive)
	assert.Equal(t, 100, metrics.RiskPercent)
}

func TestComputeBurnout_GrindingPatternFloorsRisk(t *testing.T) {
	// Flat output at the historical maximum: low variance, high mean.
	// Only two recent days exceed nothing (p90 equals the volume), so the
	// consecutive run stays short of the force limit.
	entries := make([]DayEntry, 0, 30)
	for i := 0; i < 30; i++ {
		entries = append(entries, entry(i, doneTask(8)))
	}

	metrics := ComputeBurnout(entries, day(0), DefaultBurnoutParams())

	assert.Equal(t, 0, metrics.Consecutive, "nothing strictly exceeds p90 on flat series")
	assert.Equal(t, 80, metrics.RiskPercent, "flat high-volume grind floors risk at 80")
}

func TestBurnoutMetrics_ClassifyDay(t *testing.T) {
	warning := BurnoutMetrics{RiskPercent: 40, HighDays: map[string]bool{"2026-03-10": true}}
	assert.Equal(t, RiskWarning, warning.ClassifyDay("2026-03-10"))
	assert.Equal(t, RiskNone, warning.ClassifyDay("2026-03-11"))

	high := BurnoutMetrics{RiskPercent: 90, HighDays: map[string]bool{"2026-03-10": true}}
	assert.Equal(t, RiskHigh, high.ClassifyDay("2026-03-10"))
}

func TestComputeBurnout_DoesNotCountMissingDaysAsZero(t *testing.T) {
	// Two present days at 10, the rest of the 30-day window absent. Mean
	// must be 10, not diluted by missing days.
	entries := []DayEntry{
		entry(0, doneTask(10)),
		entry(5, doneTask(10)),
	}

	metrics := ComputeBurnout(entries, day(0), DefaultBurnoutParams())

	// Flat series of two identical values: variance 0, mean == max, so the
	// grinding floor applies even with a short consecutive run.
	assert.GreaterOrEqual(t, metrics.RiskPercent, 80)
}
