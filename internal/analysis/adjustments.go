package analysis

import (
	"cmp"
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"
)

// Thresholds collects the tunable constants behind the adjustment rules. Product
// decisions rather than invariants, so they live in one place.
type Thresholds struct {
	TooHardRate         float64
	TooHardHighRate     float64
	TooHardMinSessions  int
	LowSetRatio         float64
	SetReduction        float64
	MinSets             int
	WeightReduction     float64
	RepReduction        float64
	MinReps             int
	TooEasyRate         float64
	TooEasyMinSessions  int
	WeightIncrease      float64
	RepIncrease         int
	MaxReps             int
	FatigueRepDrop      float64
	RestIncreaseSeconds int
	MaxRestSeconds      int
	MisalignmentScore   float64
	HypertrophyMinRest  int
	HypertrophyRest     int
	FatLossMaxRest      int
	FatLossRest         int
	MaxAdjustments      int
}

// DefaultThresholds returns the production rule configuration.
func DefaultThresholds() Thresholds {
	return Thresholds{
		TooHardRate:         0.6,
		TooHardHighRate:     0.4,
		TooHardMinSessions:  2,
		LowSetRatio:         0.7,
		SetReduction:        0.8,
		MinSets:             2,
		WeightReduction:     0.85,
		RepReduction:        0.8,
		MinReps:             6,
		TooEasyRate:         0.9,
		TooEasyMinSessions:  3,
		WeightIncrease:      1.05,
		RepIncrease:         2,
		MaxReps:             20,
		FatigueRepDrop:      0.25,
		RestIncreaseSeconds: 30,
		MaxRestSeconds:      180,
		MisalignmentScore:   0.6,
		HypertrophyMinRest:  90,
		HypertrophyRest:     120,
		FatLossMaxRest:      90,
		FatLossRest:         60,
		MaxAdjustments:      20,
	}
}

// CatalogExercise is a public exercise available for add-exercise suggestions.
type CatalogExercise struct {
	ID          int
	Name        string
	MuscleGroup string
}

// Input bundles the already-fetched data the adjustment generator works on.
type Input struct {
	Profile  Profile
	Workouts []Workout
	Metrics  []ExerciseMetric
	Balance  []GroupBalance
	Records  []SessionRecord
	Catalog  []CatalogExercise
}

// GenerateAdjustments runs all adjustment rules over the input and returns a
// deduplicated, ranked list of suggestions, truncated to the configured maximum.
func GenerateAdjustments(input Input, thresholds Thresholds) []Adjustment {
	var adjustments []Adjustment

	adjustments = append(adjustments, performanceAdjustments(input, thresholds)...)
	adjustments = append(adjustments, fatigueAdjustments(input, thresholds)...)
	adjustments = append(adjustments, imbalanceAdjustments(input)...)
	adjustments = append(adjustments, goalAdjustments(input, thresholds)...)
	adjustments = append(adjustments, safetyAdjustments(input)...)

	adjustments = dedupe(adjustments)

	slices.SortStableFunc(adjustments, func(a, b Adjustment) int {
		if c := cmp.Compare(priorityRank[a.Priority], priorityRank[b.Priority]); c != 0 {
			return c
		}
		return cmp.Compare(b.Impact, a.Impact)
	})

	if len(adjustments) > thresholds.MaxAdjustments {
		adjustments = adjustments[:thresholds.MaxAdjustments]
	}
	return adjustments
}

// exercisePlacement locates an exercise's configuration within the user's workouts.
type exercisePlacement struct {
	workoutID int
	config    ExerciseConfig
}

func indexExercises(workouts []Workout) map[int]exercisePlacement {
	placements := make(map[int]exercisePlacement)
	for _, workout := range workouts {
		for _, exercise := range workout.Exercises {
			if _, ok := placements[exercise.ExerciseID]; !ok {
				placements[exercise.ExerciseID] = exercisePlacement{workoutID: workout.ID, config: exercise}
			}
		}
	}
	return placements
}

func recordsByExercise(records []SessionRecord) map[int][]SessionRecord {
	grouped := make(map[int][]SessionRecord)
	for _, record := range records {
		grouped[record.ExerciseID] = append(grouped[record.ExerciseID], record)
	}
	for _, group := range grouped {
		slices.SortStableFunc(group, func(a, b SessionRecord) int {
			return a.PerformedAt.Compare(b.PerformedAt)
		})
	}
	return grouped
}

// performanceAdjustments covers the too-hard and too-easy rules.
func performanceAdjustments(input Input, thresholds Thresholds) []Adjustment {
	placements := indexExercises(input.Workouts)
	grouped := recordsByExercise(input.Records)

	var adjustments []Adjustment
	for _, metric := range input.Metrics {
		placement, ok := placements[metric.ExerciseID]
		if !ok {
			continue
		}
		records := grouped[metric.ExerciseID]

		if metric.SessionCount >= thresholds.TooHardMinSessions && metric.CompletionRate < thresholds.TooHardRate {
			adjustments = append(adjustments, tooHardAdjustment(metric, placement, thresholds))
			continue
		}

		if consistentlyEasy(records, thresholds) {
			adjustments = append(adjustments, tooEasyAdjustment(metric, placement, thresholds))
		}
	}
	return adjustments
}

func tooHardAdjustment(metric ExerciseMetric, placement exercisePlacement, thresholds Thresholds) Adjustment {
	config := placement.config
	priority := PriorityMedium
	if metric.CompletionRate < thresholds.TooHardHighRate {
		priority = PriorityHigh
	}

	adjustment := Adjustment{
		Type:         AdjustParameters,
		WorkoutID:    placement.workoutID,
		ExerciseID:   metric.ExerciseID,
		ExerciseName: metric.ExerciseName,
		Priority:     priority,
		Deltas:       nil,
		Explanation: fmt.Sprintf("%s is completed at %.0f%% of plan; reduce the load to rebuild consistency",
			metric.ExerciseName, metric.CompletionRate*100),
		Impact:     8,
		Source:     SourcePerformance,
		Reversible: true,
	}

	switch {
	case metric.CompletionRate < thresholds.LowSetRatio:
		suggested := max(int(math.Floor(float64(config.Sets)*thresholds.SetReduction)), thresholds.MinSets)
		adjustment.Deltas = []ParameterDelta{{
			Parameter: "sets",
			Current:   float64(config.Sets),
			Suggested: float64(suggested),
			Reason:    "planned sets are rarely finished",
		}}
	case config.WeightKg != nil && *config.WeightKg > 0:
		adjustment.Deltas = []ParameterDelta{{
			Parameter: "weight_kg",
			Current:   *config.WeightKg,
			Suggested: roundToHalf(*config.WeightKg * thresholds.WeightReduction),
			Reason:    "current weight is too heavy to complete planned sets",
		}}
	default:
		suggested := max(int(math.Floor(float64(config.MaxReps)*thresholds.RepReduction)), thresholds.MinReps)
		adjustment.Deltas = []ParameterDelta{{
			Parameter: "max_reps",
			Current:   float64(config.MaxReps),
			Suggested: float64(suggested),
			Reason:    "target reps are out of reach at the moment",
		}}
	}

	return adjustment
}

// consistentlyEasy reports whether the most recent sessions all completed the
// full planned sets and reps.
func consistentlyEasy(records []SessionRecord, thresholds Thresholds) bool {
	if len(records) < thresholds.TooEasyMinSessions {
		return false
	}
	recent := records[len(records)-thresholds.TooEasyMinSessions:]
	for _, record := range recent {
		if completionRate(record) <= thresholds.TooEasyRate {
			return false
		}
		if record.SetsCompleted < record.PlannedSets {
			return false
		}
		for _, reps := range record.RepsPerSet {
			if reps < record.PlannedReps {
				return false
			}
		}
	}
	return true
}

func tooEasyAdjustment(metric ExerciseMetric, placement exercisePlacement, thresholds Thresholds) Adjustment {
	config := placement.config
	adjustment := Adjustment{
		Type:         AdjustParameters,
		WorkoutID:    placement.workoutID,
		ExerciseID:   metric.ExerciseID,
		ExerciseName: metric.ExerciseName,
		Priority:     PriorityMedium,
		Deltas:       nil,
		Explanation: fmt.Sprintf("%s has been fully completed in recent sessions; time to progress",
			metric.ExerciseName),
		Impact:     7,
		Source:     SourcePerformance,
		Reversible: true,
	}

	if config.WeightKg != nil && *config.WeightKg > 0 {
		adjustment.Deltas = []ParameterDelta{{
			Parameter: "weight_kg",
			Current:   *config.WeightKg,
			Suggested: roundToHalf(*config.WeightKg * thresholds.WeightIncrease),
			Reason:    "every planned set and rep was completed",
		}}
	} else {
		suggested := min(config.MaxReps+thresholds.RepIncrease, thresholds.MaxReps)
		adjustment.Deltas = []ParameterDelta{{
			Parameter: "max_reps",
			Current:   float64(config.MaxReps),
			Suggested: float64(suggested),
			Reason:    "every planned set and rep was completed",
		}}
	}
	return adjustment
}

// fatigueAdjustments flags exercises whose rep counts collapse between the first
// and last set of a session.
func fatigueAdjustments(input Input, thresholds Thresholds) []Adjustment {
	placements := indexExercises(input.Workouts)
	grouped := recordsByExercise(input.Records)

	var adjustments []Adjustment
	for _, exerciseID := range slices.Sorted(maps.Keys(grouped)) {
		records := grouped[exerciseID]
		placement, ok := placements[exerciseID]
		if !ok {
			continue
		}

		var dropSum float64
		sessions := 0
		for _, record := range records {
			if len(record.RepsPerSet) < 2 || record.RepsPerSet[0] == 0 {
				continue
			}
			first := float64(record.RepsPerSet[0])
			last := float64(record.RepsPerSet[len(record.RepsPerSet)-1])
			dropSum += (first - last) / first
			sessions++
		}
		if sessions == 0 || dropSum/float64(sessions) <= thresholds.FatigueRepDrop {
			continue
		}

		currentRest := 0
		if placement.config.RestSeconds != nil {
			currentRest = *placement.config.RestSeconds
		}
		suggestedRest := min(currentRest+thresholds.RestIncreaseSeconds, thresholds.MaxRestSeconds)
		if suggestedRest == currentRest {
			continue
		}

		adjustments = append(adjustments, Adjustment{
			Type:         AdjustParameters,
			WorkoutID:    placement.workoutID,
			ExerciseID:   exerciseID,
			ExerciseName: records[0].ExerciseName,
			Priority:     PriorityMedium,
			Deltas: []ParameterDelta{{
				Parameter: "rest_seconds",
				Current:   float64(currentRest),
				Suggested: float64(suggestedRest),
				Reason:    "reps drop sharply between the first and last set",
			}},
			Explanation: fmt.Sprintf("%s shows heavy fatigue within sessions; longer rest should stabilize rep counts",
				records[0].ExerciseName),
			Impact:     6,
			Source:     SourcePerformance,
			Reversible: true,
		})
	}
	return adjustments
}

// imbalanceAdjustments suggests adding a catalog exercise for each under-trained
// muscle group missing from a workout.
func imbalanceAdjustments(input Input) []Adjustment {
	catalogByGroup := make(map[string]CatalogExercise)
	for _, exercise := range input.Catalog {
		if _, ok := catalogByGroup[exercise.MuscleGroup]; !ok {
			catalogByGroup[exercise.MuscleGroup] = exercise
		}
	}

	var adjustments []Adjustment
	for _, balance := range input.Balance {
		if !balance.NeedsAttention {
			continue
		}
		candidate, ok := catalogByGroup[balance.MuscleGroup]
		if !ok {
			continue
		}

		priority := PriorityMedium
		if balance.Severe {
			priority = PriorityHigh
		}

		for _, workout := range input.Workouts {
			if workoutTrainsGroup(workout, balance.MuscleGroup) {
				continue
			}
			adjustments = append(adjustments, Adjustment{
				Type:         AddExercise,
				WorkoutID:    workout.ID,
				ExerciseID:   candidate.ID,
				ExerciseName: candidate.Name,
				Priority:     priority,
				Deltas:       nil,
				Explanation: fmt.Sprintf("%s is trained less than other muscle groups; add %s to %s",
					balance.MuscleGroup, candidate.Name, workout.Name),
				Impact:     8,
				Source:     SourceImbalance,
				Reversible: true,
			})
		}
	}
	return adjustments
}

func workoutTrainsGroup(workout Workout, group string) bool {
	for _, exercise := range workout.Exercises {
		if exercise.MuscleGroup == group {
			return true
		}
	}
	return false
}

// goalAdjustments covers overall misalignment and goal-specific rest conventions.
func goalAdjustments(input Input, thresholds Thresholds) []Adjustment {
	var adjustments []Adjustment
	for _, workout := range input.Workouts {
		alignment := ScoreGoalAlignment(workout, input.Profile.Goal)

		if len(workout.Exercises) > 0 && alignment.Overall < thresholds.MisalignmentScore {
			adjustments = append(adjustments, Adjustment{
				Type:         AdjustParameters,
				WorkoutID:    workout.ID,
				ExerciseID:   0,
				ExerciseName: "",
				Priority:     PriorityLow,
				Deltas:       nil,
				Explanation: fmt.Sprintf("%s scores %.0f%% against the %s goal; %s",
					workout.Name, alignment.Overall*100, input.Profile.Goal,
					firstSuggestion(alignment)),
				Impact:     5,
				Source:     SourceGoal,
				Reversible: true,
			})
		}

		adjustments = append(adjustments, restConventionAdjustments(workout, input.Profile.Goal, thresholds)...)
	}
	return adjustments
}

func firstSuggestion(alignment WorkoutAlignment) string {
	for _, exercise := range alignment.Exercises {
		if len(exercise.Suggestions) > 0 {
			return fmt.Sprintf("for %s, %s", exercise.ExerciseName, strings.Join(exercise.Suggestions, "; "))
		}
	}
	return "review its sets, reps and rest times"
}

func restConventionAdjustments(workout Workout, goal Goal, thresholds Thresholds) []Adjustment {
	var adjustments []Adjustment
	for _, exercise := range workout.Exercises {
		if exercise.RestSeconds == nil {
			continue
		}
		rest := *exercise.RestSeconds

		var suggested int
		var reason string
		switch {
		case goal == GoalMuscleGain && rest < thresholds.HypertrophyMinRest:
			suggested = thresholds.HypertrophyRest
			reason = "hypertrophy work needs longer rest for full recovery between sets"
		case goal == GoalFatLoss && rest > thresholds.FatLossMaxRest:
			suggested = thresholds.FatLossRest
			reason = "fat-loss work benefits from shorter rest to keep heart rate up"
		default:
			continue
		}

		adjustments = append(adjustments, Adjustment{
			Type:         AdjustParameters,
			WorkoutID:    workout.ID,
			ExerciseID:   exercise.ExerciseID,
			ExerciseName: exercise.ExerciseName,
			Priority:     PriorityMedium,
			Deltas: []ParameterDelta{{
				Parameter: "rest_seconds",
				Current:   float64(rest),
				Suggested: float64(suggested),
				Reason:    reason,
			}},
			Explanation: fmt.Sprintf("rest time for %s does not match the %s goal", exercise.ExerciseName, goal),
			Impact:      6,
			Source:      SourceGoal,
			Reversible:  true,
		})
	}
	return adjustments
}

// safetyAdjustments emits an informational reminder when the profile lists injuries.
// It is not tied to a specific exercise and never suppresses other rules.
func safetyAdjustments(input Input) []Adjustment {
	if len(input.Profile.Injuries) == 0 {
		return nil
	}
	return []Adjustment{{
		Type:         AdjustParameters,
		WorkoutID:    0,
		ExerciseID:   0,
		ExerciseName: "",
		Priority:     PriorityHigh,
		Deltas:       nil,
		Explanation: fmt.Sprintf("profile lists limitations (%s); review exercises touching the affected areas",
			strings.Join(input.Profile.Injuries, ", ")),
		Impact:     9,
		Source:     SourcePerformance,
		Reversible: false,
	}}
}

// dedupe collapses adjustments with the same type, target and suggested change,
// keeping the highest impact.
func dedupe(adjustments []Adjustment) []Adjustment {
	seen := make(map[string]int)
	var result []Adjustment
	for _, adjustment := range adjustments {
		key := dedupeKey(adjustment)
		if i, ok := seen[key]; ok {
			if adjustment.Impact > result[i].Impact {
				result[i] = adjustment
			}
			continue
		}
		seen[key] = len(result)
		result = append(result, adjustment)
	}
	return result
}

func dedupeKey(adjustment Adjustment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s|%d|%d", adjustment.Type, adjustment.WorkoutID, adjustment.ExerciseID)
	for _, delta := range adjustment.Deltas {
		fmt.Fprintf(&b, "|%s=%g", delta.Parameter, delta.Suggested)
	}
	return b.String()
}

// roundToHalf rounds a weight to the nearest 0.5 kg plate increment.
func roundToHalf(weight float64) float64 {
	return math.Round(weight*2) / 2
}
