package analysis

import (
	"cmp"
	"slices"
)

const (
	tooEasyCompletionRate = 0.95
	tooHardCompletionRate = 0.70
	progressionTolerance  = 0.05
	recentWeightSamples   = 3
)

// AggregateMetrics derives one ExerciseMetric per distinct exercise in records.
//
// The output is sorted by session count descending with name as a tie-break.
// Exercises without records are absent from the output rather than zero-filled.
func AggregateMetrics(records []SessionRecord) []ExerciseMetric {
	if len(records) == 0 {
		return nil
	}

	ordered := slices.Clone(records)
	slices.SortStableFunc(ordered, func(a, b SessionRecord) int {
		return a.PerformedAt.Compare(b.PerformedAt)
	})

	grouped := make(map[int][]SessionRecord)
	for _, record := range ordered {
		grouped[record.ExerciseID] = append(grouped[record.ExerciseID], record)
	}

	metrics := make([]ExerciseMetric, 0, len(grouped))
	for exerciseID, group := range grouped {
		metric := ExerciseMetric{
			ExerciseID:        exerciseID,
			ExerciseName:      group[0].ExerciseName,
			MuscleGroup:       group[0].MuscleGroup,
			SessionCount:      len(group),
			CompletionRate:    0,
			WeightProgression: nil,
			Difficulty:        DifficultyAdequate,
			Trend:             TrendStagnant,
		}

		var rateSum float64
		for _, record := range group {
			rateSum += completionRate(record)
			if record.WeightKg != nil {
				metric.WeightProgression = append(metric.WeightProgression, *record.WeightKg)
			}
		}
		metric.CompletionRate = rateSum / float64(len(group))
		metric.Difficulty = classifyDifficulty(metric.CompletionRate)
		metric.Trend = classifyTrend(metric.WeightProgression)

		metrics = append(metrics, metric)
	}

	slices.SortStableFunc(metrics, func(a, b ExerciseMetric) int {
		if c := cmp.Compare(b.SessionCount, a.SessionCount); c != 0 {
			return c
		}
		return cmp.Compare(a.ExerciseName, b.ExerciseName)
	})

	return metrics
}

// completionRate returns the completed/planned set ratio for one record, clamped to [0, 1].
func completionRate(record SessionRecord) float64 {
	planned := max(record.PlannedSets, 1)
	rate := float64(record.SetsCompleted) / float64(planned)
	return min(max(rate, 0), 1)
}

func classifyDifficulty(rate float64) Difficulty {
	switch {
	case rate > tooEasyCompletionRate:
		return DifficultyTooEasy
	case rate < tooHardCompletionRate:
		return DifficultyTooHard
	default:
		return DifficultyAdequate
	}
}

// classifyTrend compares the mean of the most recent weight samples against the mean of
// the earlier ones. Fewer than two samples means there is no trend to speak of.
func classifyTrend(weights []float64) Trend {
	if len(weights) < 2 {
		return TrendStagnant
	}

	recent := min(recentWeightSamples, len(weights)-1)
	split := len(weights) - recent

	earlierMean := mean(weights[:split])
	recentMean := mean(weights[split:])
	if earlierMean == 0 {
		if recentMean > 0 {
			return TrendProgressing
		}
		return TrendStagnant
	}

	ratio := recentMean / earlierMean
	switch {
	case ratio > 1+progressionTolerance:
		return TrendProgressing
	case ratio < 1-progressionTolerance:
		return TrendRegressing
	default:
		return TrendStagnant
	}
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
