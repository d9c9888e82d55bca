package analysis_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/repwise/repwise/internal/analysis"
	"github.com/repwise/repwise/internal/ptr"
)

func benchPressWorkout() analysis.Workout {
	return analysis.Workout{
		ID:   1,
		Name: "Push Day",
		Exercises: []analysis.ExerciseConfig{
			{
				ExerciseID:   1,
				ExerciseName: "Bench Press",
				MuscleGroup:  "chest",
				Sets:         4,
				MinReps:      8,
				MaxReps:      12,
				WeightKg:     ptr.Ref(60.0),
				RestSeconds:  ptr.Ref(150),
			},
		},
	}
}

func recordWithReps(exerciseID int, name string, planned, completed int, reps []int, daysAgo int) analysis.SessionRecord {
	return analysis.SessionRecord{
		ExerciseID:    exerciseID,
		ExerciseName:  name,
		MuscleGroup:   "chest",
		WorkoutID:     1,
		PlannedSets:   planned,
		PlannedReps:   10,
		WeightKg:      ptr.Ref(60.0),
		RestSeconds:   ptr.Ref(60),
		SetsCompleted: completed,
		RepsPerSet:    reps,
		PerformedAt:   time.Date(2026, 8, 30, 18, 0, 0, 0, time.UTC).AddDate(0, 0, -daysAgo),
	}
}

func findAdjustment(adjustments []analysis.Adjustment, typ analysis.AdjustmentType, exerciseID int) (analysis.Adjustment, bool) {
	for _, adjustment := range adjustments {
		if adjustment.Type == typ && adjustment.ExerciseID == exerciseID {
			return adjustment, true
		}
	}
	return analysis.Adjustment{}, false
}

func TestGenerateAdjustments_tooHard(t *testing.T) {
	records := []analysis.SessionRecord{
		recordWithReps(1, "Bench Press", 4, 2, []int{10, 8}, 14),
		recordWithReps(1, "Bench Press", 4, 2, []int{10, 9}, 7),
		recordWithReps(1, "Bench Press", 4, 3, []int{10, 9, 8}, 1),
	}
	input := analysis.Input{
		Profile:  analysis.Profile{Goal: analysis.GoalMuscleGain},
		Workouts: []analysis.Workout{benchPressWorkout()},
		Metrics:  analysis.AggregateMetrics(records),
		Balance:  nil,
		Records:  records,
		Catalog:  nil,
	}

	got := analysis.GenerateAdjustments(input, analysis.DefaultThresholds())

	adjustment, ok := findAdjustment(got, analysis.AdjustParameters, 1)
	if !ok {
		t.Fatalf("expected an adjust_parameters suggestion for bench press, got %+v", got)
	}
	if adjustment.Priority != analysis.PriorityMedium && adjustment.Priority != analysis.PriorityHigh {
		t.Errorf("Priority = %v, want medium or high", adjustment.Priority)
	}
	if adjustment.Source != analysis.SourcePerformance {
		t.Errorf("Source = %v, want performance_analysis", adjustment.Source)
	}
	if len(adjustment.Deltas) == 0 {
		t.Fatal("too-hard adjustment must carry a delta")
	}
	delta := adjustment.Deltas[0]
	if delta.Parameter != "sets" && delta.Parameter != "weight_kg" {
		t.Errorf("Parameter = %q, want a sets or weight reduction", delta.Parameter)
	}
	if delta.Suggested >= delta.Current {
		t.Errorf("Suggested %v should be below Current %v", delta.Suggested, delta.Current)
	}
}

func TestGenerateAdjustments_tooEasy(t *testing.T) {
	records := []analysis.SessionRecord{
		recordWithReps(1, "Bench Press", 4, 4, []int{12, 12, 12, 12}, 14),
		recordWithReps(1, "Bench Press", 4, 4, []int{12, 12, 12, 12}, 7),
		recordWithReps(1, "Bench Press", 4, 4, []int{12, 12, 12, 12}, 1),
	}
	input := analysis.Input{
		Profile:  analysis.Profile{Goal: analysis.GoalMuscleGain},
		Workouts: []analysis.Workout{benchPressWorkout()},
		Metrics:  analysis.AggregateMetrics(records),
		Balance:  nil,
		Records:  records,
		Catalog:  nil,
	}

	got := analysis.GenerateAdjustments(input, analysis.DefaultThresholds())

	adjustment, ok := findAdjustment(got, analysis.AdjustParameters, 1)
	if !ok {
		t.Fatalf("expected a progression suggestion for bench press, got %+v", got)
	}
	if len(adjustment.Deltas) == 0 {
		t.Fatal("too-easy adjustment must carry a delta")
	}
	delta := adjustment.Deltas[0]
	if delta.Parameter != "weight_kg" {
		t.Errorf("Parameter = %q, want weight_kg for a weighted exercise", delta.Parameter)
	}
	if delta.Suggested <= delta.Current {
		t.Errorf("Suggested %v should be above Current %v", delta.Suggested, delta.Current)
	}
}

func TestGenerateAdjustments_fatigue(t *testing.T) {
	// Reps collapse from 12 to 6 within each session.
	records := []analysis.SessionRecord{
		recordWithReps(1, "Bench Press", 4, 4, []int{12, 10, 8, 6}, 7),
		recordWithReps(1, "Bench Press", 4, 4, []int{12, 10, 7, 6}, 1),
	}
	workout := benchPressWorkout()
	workout.Exercises[0].RestSeconds = ptr.Ref(60)
	input := analysis.Input{
		Profile:  analysis.Profile{Goal: analysis.GoalMuscleGain},
		Workouts: []analysis.Workout{workout},
		Metrics:  analysis.AggregateMetrics(records),
		Balance:  nil,
		Records:  records,
		Catalog:  nil,
	}

	got := analysis.GenerateAdjustments(input, analysis.DefaultThresholds())

	var restDelta *analysis.ParameterDelta
	for _, adjustment := range got {
		for i, delta := range adjustment.Deltas {
			if delta.Parameter == "rest_seconds" && delta.Suggested == 90 {
				restDelta = &adjustment.Deltas[i]
			}
		}
	}
	if restDelta == nil {
		t.Fatalf("expected a rest_seconds +30s suggestion, got %+v", got)
	}
	if restDelta.Current != 60 {
		t.Errorf("Current = %v, want 60", restDelta.Current)
	}
}

func TestGenerateAdjustments_imbalance(t *testing.T) {
	input := analysis.Input{
		Profile:  analysis.Profile{Goal: analysis.GoalMuscleGain},
		Workouts: []analysis.Workout{benchPressWorkout()},
		Metrics:  nil,
		Balance: []analysis.GroupBalance{
			{MuscleGroup: "chest", Frequency: 10, Performance: 0.9, NeedsAttention: false, Severe: false},
			{MuscleGroup: "back", Frequency: 0, Performance: 0, NeedsAttention: true, Severe: true},
		},
		Records: nil,
		Catalog: []analysis.CatalogExercise{
			{ID: 10, Name: "Barbell Row", MuscleGroup: "back"},
		},
	}

	got := analysis.GenerateAdjustments(input, analysis.DefaultThresholds())

	adjustment, ok := findAdjustment(got, analysis.AddExercise, 10)
	if !ok {
		t.Fatalf("expected an add_exercise suggestion for the neglected back, got %+v", got)
	}
	if adjustment.Priority != analysis.PriorityHigh {
		t.Errorf("Priority = %v, want high for a severe imbalance", adjustment.Priority)
	}
	if adjustment.WorkoutID != 1 {
		t.Errorf("WorkoutID = %d, want 1", adjustment.WorkoutID)
	}
}

func TestGenerateAdjustments_restConventions(t *testing.T) {
	tests := []struct {
		name          string
		goal          analysis.Goal
		rest          int
		wantSuggested float64
	}{
		{name: "hypertrophy raises short rest", goal: analysis.GoalMuscleGain, rest: 45, wantSuggested: 120},
		{name: "fat loss lowers long rest", goal: analysis.GoalFatLoss, rest: 150, wantSuggested: 60},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			workout := benchPressWorkout()
			workout.Exercises[0].RestSeconds = ptr.Ref(tt.rest)
			input := analysis.Input{
				Profile:  analysis.Profile{Goal: tt.goal},
				Workouts: []analysis.Workout{workout},
				Metrics:  nil,
				Balance:  nil,
				Records:  nil,
				Catalog:  nil,
			}

			got := analysis.GenerateAdjustments(input, analysis.DefaultThresholds())

			found := false
			for _, adjustment := range got {
				for _, delta := range adjustment.Deltas {
					if delta.Parameter == "rest_seconds" && delta.Suggested == tt.wantSuggested {
						found = true
					}
				}
			}
			if !found {
				t.Errorf("expected a rest_seconds suggestion of %v, got %+v", tt.wantSuggested, got)
			}
		})
	}
}

func TestGenerateAdjustments_safety(t *testing.T) {
	input := analysis.Input{
		Profile: analysis.Profile{
			Goal:     analysis.GoalMuscleGain,
			Injuries: []string{"lower back"},
		},
		Workouts: nil,
		Metrics:  nil,
		Balance:  nil,
		Records:  nil,
		Catalog:  nil,
	}

	got := analysis.GenerateAdjustments(input, analysis.DefaultThresholds())

	if len(got) == 0 {
		t.Fatal("expected a safety adjustment for a profile with injuries")
	}
	safety := got[0]
	if safety.Priority != analysis.PriorityHigh {
		t.Errorf("Priority = %v, want high", safety.Priority)
	}
	if safety.ExerciseID != 0 {
		t.Errorf("ExerciseID = %d, safety advice is not tied to an exercise", safety.ExerciseID)
	}
	if safety.Reversible {
		t.Error("safety advice is informational, not reversible")
	}
}

func TestGenerateAdjustments_rankingAndCap(t *testing.T) {
	// Many workouts missing the neglected group generate one suggestion each.
	workouts := make([]analysis.Workout, 30)
	for i := range workouts {
		workouts[i] = analysis.Workout{
			ID:   i + 1,
			Name: "Day",
			Exercises: []analysis.ExerciseConfig{
				{
					ExerciseID:   1,
					ExerciseName: "Bench Press",
					MuscleGroup:  "chest",
					Sets:         4,
					MinReps:      8,
					MaxReps:      12,
					WeightKg:     nil,
					RestSeconds:  nil,
				},
			},
		}
	}
	input := analysis.Input{
		Profile:  analysis.Profile{Goal: analysis.GoalMuscleGain, Injuries: []string{"knee"}},
		Workouts: workouts,
		Metrics:  nil,
		Balance: []analysis.GroupBalance{
			{MuscleGroup: "chest", Frequency: 10, Performance: 0.9, NeedsAttention: false, Severe: false},
			{MuscleGroup: "back", Frequency: 1, Performance: 0.9, NeedsAttention: true, Severe: false},
		},
		Records: nil,
		Catalog: []analysis.CatalogExercise{{ID: 10, Name: "Barbell Row", MuscleGroup: "back"}},
	}
	thresholds := analysis.DefaultThresholds()

	got := analysis.GenerateAdjustments(input, thresholds)

	if len(got) > thresholds.MaxAdjustments {
		t.Errorf("got %d adjustments, want at most %d", len(got), thresholds.MaxAdjustments)
	}
	// The safety advice ranks first: high priority with the highest impact.
	if got[0].Impact != 9 {
		t.Errorf("first adjustment impact = %d, want the safety advice at 9", got[0].Impact)
	}
	for i := 1; i < len(got); i++ {
		prevRank, currRank := priorityRankOf(got[i-1].Priority), priorityRankOf(got[i].Priority)
		if prevRank > currRank {
			t.Errorf("adjustments[%d] priority %v ranks above adjustments[%d] priority %v",
				i, got[i].Priority, i-1, got[i-1].Priority)
		}
		if prevRank == currRank && got[i-1].Impact < got[i].Impact {
			t.Errorf("adjustments[%d] impact %d should not exceed adjustments[%d] impact %d",
				i, got[i].Impact, i-1, got[i-1].Impact)
		}
	}
}

func priorityRankOf(priority analysis.Priority) int {
	switch priority {
	case analysis.PriorityCritical:
		return 0
	case analysis.PriorityHigh:
		return 1
	case analysis.PriorityMedium:
		return 2
	case analysis.PriorityLow:
		return 3
	default:
		return 4
	}
}

func TestGenerateAdjustments_dedupe(t *testing.T) {
	// A short-rest bench press under the muscle gain goal can draw the same
	// rest suggestion from both the misalignment and convention rules; only one
	// may survive.
	workout := benchPressWorkout()
	workout.Exercises[0].RestSeconds = ptr.Ref(45)
	input := analysis.Input{
		Profile:  analysis.Profile{Goal: analysis.GoalMuscleGain},
		Workouts: []analysis.Workout{workout, workout},
		Metrics:  nil,
		Balance:  nil,
		Records:  nil,
		Catalog:  nil,
	}

	got := analysis.GenerateAdjustments(input, analysis.DefaultThresholds())

	seen := make(map[string]bool)
	for _, adjustment := range got {
		key := fmt.Sprintf("%s|%d|%d", adjustment.Type, adjustment.WorkoutID, adjustment.ExerciseID)
		for _, delta := range adjustment.Deltas {
			key += "|" + delta.Parameter
		}
		if seen[key] {
			t.Errorf("duplicate adjustment %+v", adjustment)
		}
		seen[key] = true
	}
}

func TestGenerateAdjustments_emptyInput(t *testing.T) {
	got := analysis.GenerateAdjustments(analysis.Input{
		Profile:  analysis.Profile{Goal: analysis.GoalMuscleGain},
		Workouts: nil,
		Metrics:  nil,
		Balance:  nil,
		Records:  nil,
		Catalog:  nil,
	}, analysis.DefaultThresholds())

	if len(got) != 0 {
		t.Errorf("GenerateAdjustments() = %+v, want none for empty input", got)
	}
}

func TestGenerateAdjustments_idempotent(t *testing.T) {
	// Six exercises with identical fatigue patterns produce six suggestions
	// with equal priority and impact, so any unstable ordering shows up here.
	names := []string{"Bench Press", "Barbell Row", "Back Squat", "Deadlift", "Overhead Press", "Biceps Curl"}
	workout := analysis.Workout{ID: 1, Name: "Full Body", Exercises: nil}
	var records []analysis.SessionRecord
	for i, name := range names {
		exerciseID := i + 1
		workout.Exercises = append(workout.Exercises, analysis.ExerciseConfig{
			ExerciseID:   exerciseID,
			ExerciseName: name,
			MuscleGroup:  "chest",
			Sets:         4,
			MinReps:      8,
			MaxReps:      12,
			WeightKg:     ptr.Ref(60.0),
			RestSeconds:  ptr.Ref(60),
		})
		records = append(records,
			recordWithReps(exerciseID, name, 4, 4, []int{12, 6}, 14),
			recordWithReps(exerciseID, name, 4, 4, []int{12, 6}, 7),
		)
	}
	input := analysis.Input{
		Profile:  analysis.Profile{Goal: analysis.GoalMuscleGain},
		Workouts: []analysis.Workout{workout},
		Metrics:  nil,
		Balance:  nil,
		Records:  records,
		Catalog:  nil,
	}

	first := analysis.GenerateAdjustments(input, analysis.DefaultThresholds())
	if len(first) == 0 {
		t.Fatal("expected fatigue suggestions for collapsing rep counts")
	}
	for range 10 {
		again := analysis.GenerateAdjustments(input, analysis.DefaultThresholds())
		if diff := cmp.Diff(first, again); diff != "" {
			t.Fatalf("repeated generation diverged (-first +again):\n%s", diff)
		}
	}
}

func TestGenerateAdjustments_tooHardMonotonic(t *testing.T) {
	thresholds := analysis.DefaultThresholds()

	triggersAtRate := func(rate float64) bool {
		input := analysis.Input{
			Profile:  analysis.Profile{Goal: analysis.GoalMuscleGain},
			Workouts: []analysis.Workout{benchPressWorkout()},
			Metrics: []analysis.ExerciseMetric{{
				ExerciseID:     1,
				ExerciseName:   "Bench Press",
				MuscleGroup:    "chest",
				SessionCount:   3,
				CompletionRate: rate,
			}},
			Balance: nil,
			Records: nil,
			Catalog: nil,
		}
		adjustment, ok := findAdjustment(analysis.GenerateAdjustments(input, thresholds), analysis.AdjustParameters, 1)
		return ok && len(adjustment.Deltas) > 0 && adjustment.Deltas[0].Suggested < adjustment.Deltas[0].Current
	}

	// Completing fewer sets must never clear a reduction that a better
	// performance already triggered.
	rates := []float64{0, 0.25, 0.5, 0.75, 1}
	previous := true
	for _, rate := range rates {
		triggered := triggersAtRate(rate)
		if triggered && !previous {
			t.Errorf("rate %v triggers a reduction while a lower rate does not", rate)
		}
		previous = triggered
	}
	if !triggersAtRate(0) {
		t.Error("a fully failed exercise must trigger a reduction")
	}
	if triggersAtRate(1) {
		t.Error("a fully completed exercise must not trigger a reduction")
	}
}

func TestGenerateAdjustments_tooEasyMonotonic(t *testing.T) {
	thresholds := analysis.DefaultThresholds()

	triggersAtReps := func(reps int) bool {
		records := []analysis.SessionRecord{
			recordWithReps(1, "Bench Press", 4, 4, []int{reps, reps, reps, reps}, 14),
			recordWithReps(1, "Bench Press", 4, 4, []int{reps, reps, reps, reps}, 7),
			recordWithReps(1, "Bench Press", 4, 4, []int{reps, reps, reps, reps}, 1),
		}
		input := analysis.Input{
			Profile:  analysis.Profile{Goal: analysis.GoalMuscleGain},
			Workouts: []analysis.Workout{benchPressWorkout()},
			Metrics:  analysis.AggregateMetrics(records),
			Balance:  nil,
			Records:  records,
			Catalog:  nil,
		}
		adjustment, ok := findAdjustment(analysis.GenerateAdjustments(input, thresholds), analysis.AdjustParameters, 1)
		return ok && len(adjustment.Deltas) > 0 && adjustment.Deltas[0].Suggested > adjustment.Deltas[0].Current
	}

	// Records plan 10 reps per set; exceeding the plan by more must never
	// clear a progression that a smaller surplus already triggered.
	previous := false
	for reps := 8; reps <= 12; reps++ {
		triggered := triggersAtReps(reps)
		if previous && !triggered {
			t.Errorf("%d reps fails to trigger a progression while fewer reps does", reps)
		}
		previous = triggered
	}
	if triggersAtReps(8) {
		t.Error("below-plan reps must not trigger a progression")
	}
	if !triggersAtReps(12) {
		t.Error("above-plan reps across all sessions must trigger a progression")
	}
}
