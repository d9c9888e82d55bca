package analysis

import (
	"cmp"
	"slices"
)

const (
	attentionFrequencyShare = 0.7
	severeFrequencyShare    = 0.4
	attentionPerformance    = 0.75
)

// AnalyzeBalance computes per-muscle-group training frequency and performance.
//
// knownGroups lists the muscle groups from the exercise catalog. Groups with no
// recorded sessions still appear with zero frequency so that neglected groups
// can be flagged. Fewer than two groups with data means the cross-group average
// is meaningless and no flags are raised.
func AnalyzeBalance(metrics []ExerciseMetric, knownGroups []string) []GroupBalance {
	type groupAccumulator struct {
		frequency int
		rateSum   float64
		exercises int
	}

	accumulators := make(map[string]*groupAccumulator)
	for _, group := range knownGroups {
		accumulators[group] = &groupAccumulator{frequency: 0, rateSum: 0, exercises: 0}
	}
	for _, metric := range metrics {
		acc, ok := accumulators[metric.MuscleGroup]
		if !ok {
			acc = &groupAccumulator{frequency: 0, rateSum: 0, exercises: 0}
			accumulators[metric.MuscleGroup] = acc
		}
		acc.frequency += metric.SessionCount
		acc.rateSum += metric.CompletionRate
		acc.exercises++
	}

	if len(accumulators) == 0 {
		return nil
	}

	groupsWithData := 0
	totalFrequency := 0
	for _, acc := range accumulators {
		if acc.frequency > 0 {
			groupsWithData++
		}
		totalFrequency += acc.frequency
	}
	avgFrequency := float64(totalFrequency) / float64(len(accumulators))

	balances := make([]GroupBalance, 0, len(accumulators))
	for group, acc := range accumulators {
		balance := GroupBalance{
			MuscleGroup:    group,
			Frequency:      acc.frequency,
			Performance:    0,
			NeedsAttention: false,
			Severe:         false,
		}
		if acc.exercises > 0 {
			balance.Performance = acc.rateSum / float64(acc.exercises)
		}
		if groupsWithData >= 2 {
			lowFrequency := float64(balance.Frequency) < avgFrequency*attentionFrequencyShare
			lowPerformance := acc.frequency > 0 && balance.Performance < attentionPerformance
			balance.NeedsAttention = lowFrequency || lowPerformance
			balance.Severe = float64(balance.Frequency) < avgFrequency*severeFrequencyShare
		}
		balances = append(balances, balance)
	}

	slices.SortFunc(balances, func(a, b GroupBalance) int {
		if c := cmp.Compare(a.Frequency, b.Frequency); c != 0 {
			return c
		}
		return cmp.Compare(a.MuscleGroup, b.MuscleGroup)
	})

	return balances
}
