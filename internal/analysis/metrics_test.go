package analysis_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/repwise/repwise/internal/analysis"
	"github.com/repwise/repwise/internal/ptr"
)

func record(exerciseID int, name, group string, planned, completed int, weight *float64, daysAgo int) analysis.SessionRecord {
	return analysis.SessionRecord{
		ExerciseID:    exerciseID,
		ExerciseName:  name,
		MuscleGroup:   group,
		WorkoutID:     1,
		PlannedSets:   planned,
		PlannedReps:   10,
		WeightKg:      weight,
		RestSeconds:   nil,
		SetsCompleted: completed,
		RepsPerSet:    nil,
		PerformedAt:   time.Date(2026, 8, 30, 18, 0, 0, 0, time.UTC).AddDate(0, 0, -daysAgo),
	}
}

func TestAggregateMetrics(t *testing.T) {
	tests := []struct {
		name    string
		records []analysis.SessionRecord
		want    []analysis.ExerciseMetric
	}{
		{
			name:    "no records",
			records: nil,
			want:    nil,
		},
		{
			name: "struggling bench press is too hard",
			records: []analysis.SessionRecord{
				record(1, "Bench Press", "chest", 4, 2, ptr.Ref(60.0), 14),
				record(1, "Bench Press", "chest", 4, 2, ptr.Ref(60.0), 7),
				record(1, "Bench Press", "chest", 4, 3, ptr.Ref(60.0), 1),
			},
			want: []analysis.ExerciseMetric{
				{
					ExerciseID:        1,
					ExerciseName:      "Bench Press",
					MuscleGroup:       "chest",
					SessionCount:      3,
					CompletionRate:    7.0 / 12.0,
					WeightProgression: []float64{60, 60, 60},
					Difficulty:        analysis.DifficultyTooHard,
					Trend:             analysis.TrendStagnant,
				},
			},
		},
		{
			name: "full completion is too easy",
			records: []analysis.SessionRecord{
				record(2, "Plank", "core", 3, 3, nil, 7),
				record(2, "Plank", "core", 3, 3, nil, 1),
			},
			want: []analysis.ExerciseMetric{
				{
					ExerciseID:        2,
					ExerciseName:      "Plank",
					MuscleGroup:       "core",
					SessionCount:      2,
					CompletionRate:    1,
					WeightProgression: nil,
					Difficulty:        analysis.DifficultyTooEasy,
					Trend:             analysis.TrendStagnant,
				},
			},
		},
		{
			name: "increasing weight is progressing",
			records: []analysis.SessionRecord{
				record(3, "Back Squat", "quads", 3, 3, ptr.Ref(80.0), 21),
				record(3, "Back Squat", "quads", 3, 3, ptr.Ref(85.0), 14),
				record(3, "Back Squat", "quads", 3, 3, ptr.Ref(90.0), 7),
				record(3, "Back Squat", "quads", 3, 3, ptr.Ref(95.0), 1),
			},
			want: []analysis.ExerciseMetric{
				{
					ExerciseID:        3,
					ExerciseName:      "Back Squat",
					MuscleGroup:       "quads",
					SessionCount:      4,
					CompletionRate:    1,
					WeightProgression: []float64{80, 85, 90, 95},
					Difficulty:        analysis.DifficultyTooEasy,
					Trend:             analysis.TrendProgressing,
				},
			},
		},
		{
			name: "dropping weight is regressing",
			records: []analysis.SessionRecord{
				record(4, "Deadlift", "hamstrings", 3, 2, ptr.Ref(120.0), 14),
				record(4, "Deadlift", "hamstrings", 3, 2, ptr.Ref(100.0), 7),
			},
			want: []analysis.ExerciseMetric{
				{
					ExerciseID:        4,
					ExerciseName:      "Deadlift",
					MuscleGroup:       "hamstrings",
					SessionCount:      2,
					CompletionRate:    2.0 / 3.0,
					WeightProgression: []float64{120, 100},
					Difficulty:        analysis.DifficultyTooHard,
					Trend:             analysis.TrendRegressing,
				},
			},
		},
		{
			name: "single record is stagnant and adequate",
			records: []analysis.SessionRecord{
				record(5, "Barbell Row", "back", 4, 3, ptr.Ref(50.0), 1),
			},
			want: []analysis.ExerciseMetric{
				{
					ExerciseID:        5,
					ExerciseName:      "Barbell Row",
					MuscleGroup:       "back",
					SessionCount:      1,
					CompletionRate:    0.75,
					WeightProgression: []float64{50},
					Difficulty:        analysis.DifficultyAdequate,
					Trend:             analysis.TrendStagnant,
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := analysis.AggregateMetrics(tt.records)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("AggregateMetrics() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestAggregateMetrics_sortedBySessionCount(t *testing.T) {
	records := []analysis.SessionRecord{
		record(1, "Bench Press", "chest", 3, 3, nil, 9),
		record(2, "Barbell Row", "back", 3, 3, nil, 8),
		record(2, "Barbell Row", "back", 3, 3, nil, 7),
		record(2, "Barbell Row", "back", 3, 3, nil, 6),
		record(3, "Back Squat", "quads", 3, 3, nil, 5),
	}

	got := analysis.AggregateMetrics(records)

	wantOrder := []string{"Barbell Row", "Back Squat", "Bench Press"}
	if len(got) != len(wantOrder) {
		t.Fatalf("got %d metrics, want %d", len(got), len(wantOrder))
	}
	for i, name := range wantOrder {
		if got[i].ExerciseName != name {
			t.Errorf("metrics[%d].ExerciseName = %q, want %q", i, got[i].ExerciseName, name)
		}
	}
}

func TestAggregateMetrics_completionRateClamped(t *testing.T) {
	// Zero planned sets must not divide by zero, and over-completion stays within 1.
	records := []analysis.SessionRecord{
		record(1, "Push-up", "chest", 0, 1, nil, 1),
	}

	got := analysis.AggregateMetrics(records)

	if len(got) != 1 {
		t.Fatalf("got %d metrics, want 1", len(got))
	}
	if rate := got[0].CompletionRate; rate < 0 || rate > 1 {
		t.Errorf("CompletionRate = %v, want within [0, 1]", rate)
	}
}
