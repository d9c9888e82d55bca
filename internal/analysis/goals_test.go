package analysis_test

import (
	"testing"

	"github.com/repwise/repwise/internal/analysis"
	"github.com/repwise/repwise/internal/ptr"
)

func TestScoreGoalAlignment(t *testing.T) {
	t.Run("parameters inside the target ranges are optimal", func(t *testing.T) {
		workout := analysis.Workout{
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

		got := analysis.ScoreGoalAlignment(workout, analysis.GoalMuscleGain)

		if got.Overall != 1 {
			t.Errorf("Overall = %v, want 1", got.Overall)
		}
		if !got.Exercises[0].IsOptimal {
			t.Error("exercise inside all ranges should be optimal")
		}
		if len(got.Exercises[0].Suggestions) != 0 {
			t.Errorf("Suggestions = %v, want none", got.Exercises[0].Suggestions)
		}
	})

	t.Run("endurance style workout mismatches muscle gain goal", func(t *testing.T) {
		workout := analysis.Workout{
			ID:   2,
			Name: "Circuit",
			Exercises: []analysis.ExerciseConfig{
				{
					ExerciseID:   2,
					ExerciseName: "Lat Pulldown",
					MuscleGroup:  "back",
					Sets:         2,
					MinReps:      20,
					MaxReps:      25,
					WeightKg:     nil,
					RestSeconds:  ptr.Ref(30),
				},
			},
		}

		got := analysis.ScoreGoalAlignment(workout, analysis.GoalMuscleGain)

		exercise := got.Exercises[0]
		if exercise.IsOptimal {
			t.Errorf("Score = %v, workout far outside every range must not be optimal", exercise.Score)
		}
		if len(exercise.Suggestions) == 0 {
			t.Error("misaligned exercise must carry suggestions")
		}
	})

	t.Run("larger deviation scores lower", func(t *testing.T) {
		base := analysis.ExerciseConfig{
			ExerciseID:   3,
			ExerciseName: "Overhead Press",
			MuscleGroup:  "shoulders",
			Sets:         4,
			MinReps:      8,
			MaxReps:      12,
			WeightKg:     nil,
			RestSeconds:  nil,
		}
		near := base
		near.RestSeconds = ptr.Ref(110)
		far := base
		far.RestSeconds = ptr.Ref(50)

		nearScore := analysis.ScoreGoalAlignment(analysis.Workout{
			ID: 3, Name: "A", Exercises: []analysis.ExerciseConfig{near},
		}, analysis.GoalMuscleGain).Overall
		farScore := analysis.ScoreGoalAlignment(analysis.Workout{
			ID: 3, Name: "A", Exercises: []analysis.ExerciseConfig{far},
		}, analysis.GoalMuscleGain).Overall

		if nearScore <= farScore {
			t.Errorf("near deviation %v should score above far deviation %v", nearScore, farScore)
		}
	})

	t.Run("missing parameters are neutral", func(t *testing.T) {
		workout := analysis.Workout{
			ID:   4,
			Name: "Sparse",
			Exercises: []analysis.ExerciseConfig{
				{
					ExerciseID:   4,
					ExerciseName: "Pull-up",
					MuscleGroup:  "back",
					Sets:         4,
					MinReps:      8,
					MaxReps:      12,
					WeightKg:     nil,
					RestSeconds:  nil,
				},
			},
		}

		got := analysis.ScoreGoalAlignment(workout, analysis.GoalMuscleGain)

		if got.Overall != 1 {
			t.Errorf("Overall = %v, missing rest time must not be penalized", got.Overall)
		}
	})

	t.Run("empty workout scores zero without dividing by zero", func(t *testing.T) {
		got := analysis.ScoreGoalAlignment(analysis.Workout{ID: 5, Name: "Empty", Exercises: nil},
			analysis.GoalStrengthGain)

		if got.Overall != 0 {
			t.Errorf("Overall = %v, want 0 for an empty workout", got.Overall)
		}
	})

	t.Run("compound lifts weigh more for strength goals", func(t *testing.T) {
		aligned := analysis.ExerciseConfig{
			ExerciseID:   6,
			ExerciseName: "Back Squat",
			MuscleGroup:  "quads",
			Sets:         4,
			MinReps:      4,
			MaxReps:      5,
			WeightKg:     nil,
			RestSeconds:  ptr.Ref(200),
		}
		misaligned := analysis.ExerciseConfig{
			ExerciseID:   7,
			ExerciseName: "Curl",
			MuscleGroup:  "biceps",
			Sets:         4,
			MinReps:      4,
			MaxReps:      5,
			WeightKg:     nil,
			RestSeconds:  ptr.Ref(30),
		}
		workout := analysis.Workout{ID: 6, Name: "Mixed", Exercises: []analysis.ExerciseConfig{aligned, misaligned}}

		got := analysis.ScoreGoalAlignment(workout, analysis.GoalStrengthGain)

		// Equal weighting would land at the midpoint of the two exercise scores.
		unweighted := (got.Exercises[0].Score + got.Exercises[1].Score) / 2
		if got.Overall <= unweighted {
			t.Errorf("Overall = %v, compound weighting should pull above the plain mean %v",
				got.Overall, unweighted)
		}
	})
}
