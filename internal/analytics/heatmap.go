package analytics

// HeatmapPoint is the per-day projection consumed by visualization.
type HeatmapPoint struct {
	DayKey           string
	Intensity        int
	IntentionVolume  int
	ExecutionVolume  int
	PerformanceScore float64
	// IntegrityScore is nil when neither intention nor execution exists.
	IntegrityScore *float64
	AllDone        bool
	Status         Status
	Ghost          bool
	RiskLevel      RiskLevel
	// OverlayScores holds one normalized score per active category in
	// overlay mode, nil otherwise.
	OverlayScores map[string]float64
}

// HeatmapOptions select the filtering scope of the projection.
type HeatmapOptions struct {
	// ActiveCategories restricts volumes to these categories; empty means
	// all tasks.
	ActiveCategories []string
	// Overlay computes one normalized score per active category.
	Overlay bool
}

// ProjectHeatmap maps every entry to its heatmap point. Performance is the
// execution volume normalized against the maximum observed in the active
// scope; ghost (recovered) days are forced to full performance. In overlay
// mode each category is normalized against its own cross-day maximum and
// the base score is the maximum across the active categories.
func ProjectHeatmap(entries []DayEntry, burnout BurnoutMetrics, opts HeatmapOptions) []HeatmapPoint {
	inScope := func(Task) bool { return true }
	if len(opts.ActiveCategories) > 0 {
		active := make(map[string]bool, len(opts.ActiveCategories))
		for _, cat := range opts.ActiveCategories {
			active[cat] = true
		}
		inScope = func(t Task) bool { return active[t.Category] }
	}

	intention := VolumeByDay(entries, inScope)
	execution := VolumeByDay(entries, func(t Task) bool { return t.Completed && inScope(t) })
	maxExecution := maxVolume(execution, 1)

	var overlays map[string]map[string]int
	var overlayMax map[string]int
	if opts.Overlay && len(opts.ActiveCategories) > 0 {
		overlays = OverlayVolumes(entries, opts.ActiveCategories)
		overlayMax = make(map[string]int, len(overlays))
		for cat, volumes := range overlays {
			overlayMax[cat] = maxVolume(volumes, 1)
		}
	}

	points := make([]HeatmapPoint, 0, len(entries))
	for _, entry := range entries {
		key := DayKey(entry.Date)
		iv := intention[key]
		ev := execution[key]
		ghost := entry.Status == StatusRecovered

		var integrity *float64
		switch {
		case iv > 0:
			score := float64(ev) / float64(iv)
			if score > 1 {
				score = 1
			}
			integrity = &score
		case ev > 0:
			one := 1.0
			integrity = &one
		}

		performance := float64(ev) / float64(maxExecution)

		var overlayScores map[string]float64
		if overlays != nil {
			overlayScores = make(map[string]float64, len(overlays))
			performance = 0
			for cat, volumes := range overlays {
				score := float64(volumes[key]) / float64(overlayMax[cat])
				overlayScores[cat] = score
				if score > performance {
					performance = score
				}
			}
		}

		if ghost {
			performance = 1
		}

		allDone := len(entry.Tasks) > 0
		for _, task := range entry.Tasks {
			if !task.Completed {
				allDone = false
				break
			}
		}

		points = append(points, HeatmapPoint{
			DayKey:           key,
			Intensity:        len(entry.Tasks),
			IntentionVolume:  iv,
			ExecutionVolume:  ev,
			PerformanceScore: performance,
			IntegrityScore:   integrity,
			AllDone:          allDone,
			Status:           entry.Status,
			Ghost:            ghost,
			RiskLevel:        burnout.ClassifyDay(key),
			OverlayScores:    overlayScores,
		})
	}
	return points
}
