package analytics

import (
	"math"
	"sort"
	"time"
)

// RiskLevel classifies one calendar day against the burnout metrics.
type RiskLevel string

const (
	RiskNone    RiskLevel = "none"
	RiskWarning RiskLevel = "warning"
	RiskHigh    RiskLevel = "high"
)

// BurnoutParams are the tunable constants of the estimator. Product intent
// still owns the exact values; these defaults match the reference behavior.
type BurnoutParams struct {
	// WindowDays is the trailing window feeding the percentile.
	WindowDays int
	// MeanWindowDays is the trailing window feeding mean/variance.
	MeanWindowDays int
	// RiskDivisor maps the consecutive-day run onto 0-100.
	RiskDivisor int
	// ForceLimit is the consecutive-day run that forces risk to 100.
	ForceLimit int
	// LowVarianceRatio: variance below ratio*maxVolume counts as flat.
	LowVarianceRatio float64
	// HighVolumeRatio: mean at or above ratio*maxVolume counts as grinding.
	HighVolumeRatio float64
	// LookbackDays bounds the consecutive-day walk.
	LookbackDays int
}

// DefaultBurnoutParams returns the reference constants.
func DefaultBurnoutParams() BurnoutParams {
	return BurnoutParams{
		WindowDays:       90,
		MeanWindowDays:   30,
		RiskDivisor:      10,
		ForceLimit:       7,
		LowVarianceRatio: 0.1,
		HighVolumeRatio:  0.7,
		LookbackDays:     MaxHistoryDays,
	}
}

// BurnoutMetrics is the estimator output.
type BurnoutMetrics struct {
	RiskPercent int
	HighDays    map[string]bool
	P90         int
	Consecutive int
}

// ClassifyDay returns the per-day risk classification used to mark
// calendar cells.
func (m BurnoutMetrics) ClassifyDay(dayKey string) RiskLevel {
	if !m.HighDays[dayKey] {
		return RiskNone
	}
	if m.RiskPercent >= 80 {
		return RiskHigh
	}
	return RiskWarning
}

// ComputeBurnout estimates sustained-overload risk from the execution
// volume series.
//
// The percentile is nearest-rank over the trailing WindowDays; the
// consecutive run counts days (including today) strictly above it; mean and
// population variance cover the trailing MeanWindowDays, where only days
// present in the entry collection contribute (missing days are not treated
// as zero).
func ComputeBurnout(entries []DayEntry, today time.Time, params BurnoutParams) BurnoutMetrics {
	day := StartOfDay(today)
	windowStart := day.AddDate(0, 0, -(params.WindowDays - 1))

	volumes := make(map[string]int)
	series := make([]int, 0, len(entries))
	maxVolume := 1
	for _, entry := range entries {
		date := StartOfDay(entry.Date)
		volume := entry.ExecutionVolume()
		if volume > maxVolume {
			maxVolume = volume
		}
		if date.After(day) || date.Before(windowStart) {
			continue
		}
		volumes[DayKey(date)] = volume
		series = append(series, volume)
	}

	sort.Ints(series)
	p90 := 0
	if len(series) > 0 {
		p90 = series[int(math.Floor(0.9*float64(len(series)-1)))]
	}

	consecutive := 0
	for i := 0; i < params.LookbackDays; i++ {
		key := DayKey(day.AddDate(0, 0, -i))
		if volumes[key] > p90 {
			consecutive++
			continue
		}
		break
	}

	meanStart := day.AddDate(0, 0, -(params.MeanWindowDays - 1))
	recent := make([]int, 0, params.MeanWindowDays)
	sum := 0
	for i := 0; i < params.MeanWindowDays; i++ {
		key := DayKey(meanStart.AddDate(0, 0, i))
		if volume, ok := volumes[key]; ok {
			recent = append(recent, volume)
			sum += volume
		}
	}
	mean := 0.0
	variance := 0.0
	if len(recent) > 0 {
		mean = float64(sum) / float64(len(recent))
		for _, volume := range recent {
			diff := float64(volume) - mean
			variance += diff * diff
		}
		variance /= float64(len(recent))
	}

	risk := int(math.Round(float64(consecutive) / float64(params.RiskDivisor) * 100))
	if risk > 100 {
		risk = 100
	}
	grinding := variance < params.LowVarianceRatio*float64(maxVolume) &&
		mean >= params.HighVolumeRatio*float64(maxVolume) &&
		len(recent) > 0
	if grinding && risk < 80 {
		risk = 80
	}
	if consecutive >= params.ForceLimit {
		risk = 100
	}

	highDays := make(map[string]bool)
	for key, volume := range volumes {
		if volume > p90 {
			highDays[key] = true
		}
	}

	return BurnoutMetrics{
		RiskPercent: risk,
		HighDays:    highDays,
		P90:         p90,
		Consecutive: consecutive,
	}
}
