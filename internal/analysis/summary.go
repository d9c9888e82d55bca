package analysis

const highImpactThreshold = 7

// Summarize reduces an adjustment list to display counts. An empty list yields
// all-zero counts with a zero mean impact.
func Summarize(adjustments []Adjustment) Summary {
	summary := Summary{
		Total:           len(adjustments),
		ByPriority:      make(map[Priority]int),
		ByType:          make(map[AdjustmentType]int),
		BySource:        make(map[Source]int),
		HighImpact:      0,
		WorkoutsTouched: 0,
		MeanImpact:      0,
	}
	if len(adjustments) == 0 {
		return summary
	}

	workouts := make(map[int]struct{})
	impactSum := 0
	for _, adjustment := range adjustments {
		summary.ByPriority[adjustment.Priority]++
		summary.ByType[adjustment.Type]++
		summary.BySource[adjustment.Source]++
		if adjustment.Impact >= highImpactThreshold {
			summary.HighImpact++
		}
		if adjustment.WorkoutID != 0 {
			workouts[adjustment.WorkoutID] = struct{}{}
		}
		impactSum += adjustment.Impact
	}
	summary.WorkoutsTouched = len(workouts)
	summary.MeanImpact = float64(impactSum) / float64(len(adjustments))

	return summary
}
