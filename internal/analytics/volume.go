package analytics

// VolumeByDay sums impact weights per canonical day key over tasks accepted
// by keep. Days without matching tasks are simply absent from the map.
func VolumeByDay(entries []DayEntry, keep func(Task) bool) map[string]int {
	volumes := make(map[string]int)
	for _, entry := range entries {
		key := DayKey(entry.Date)
		for _, task := range entry.Tasks {
			if keep == nil || keep(task) {
				volumes[key] += task.Weight
			}
		}
	}
	return volumes
}

// IntentionVolumeByDay sums all task weights per day, regardless of
// completion.
func IntentionVolumeByDay(entries []DayEntry) map[string]int {
	return VolumeByDay(entries, nil)
}

// ExecutionVolumeByDay sums completed task weights per day.
func ExecutionVolumeByDay(entries []DayEntry) map[string]int {
	return VolumeByDay(entries, func(t Task) bool { return t.Completed })
}

// CategoryExecutionVolume sums completed task weights per day for one
// category.
func CategoryExecutionVolume(entries []DayEntry, category string) map[string]int {
	return VolumeByDay(entries, func(t Task) bool {
		return t.Completed && t.Category == category
	})
}

// OverlayVolumes computes one execution-volume map per category in a single
// pass, for side-by-side rendering.
func OverlayVolumes(entries []DayEntry, categories []string) map[string]map[string]int {
	active := make(map[string]bool, len(categories))
	overlays := make(map[string]map[string]int, len(categories))
	for _, cat := range categories {
		active[cat] = true
		overlays[cat] = make(map[string]int)
	}
	for _, entry := range entries {
		key := DayKey(entry.Date)
		for _, task := range entry.Tasks {
			if !task.Completed || !active[task.Category] {
				continue
			}
			overlays[task.Category][key] += task.Weight
		}
	}
	return overlays
}

// maxVolume returns the largest value in a volume map, never below floor.
func maxVolume(volumes map[string]int, floor int) int {
	max := floor
	for _, v := range volumes {
		if v > max {
			max = v
		}
	}
	return max
}
