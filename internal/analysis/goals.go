package analysis

import (
	"fmt"
	"strings"
)

// paramRange is an inclusive target range for one workout parameter.
type paramRange struct {
	Lo float64
	Hi float64
}

// goalParams holds the target parameter ranges for one training goal.
type goalParams struct {
	Reps        paramRange
	Sets        paramRange
	RestSeconds paramRange
	// Intensity and Progression describe training style; shown in explanations.
	Intensity   string
	Progression string
}

// goalParameters is the reference table for alignment scoring. The ranges follow
// common programming conventions for each goal.
//
//nolint:gochecknoglobals // immutable lookup table.
var goalParameters = map[Goal]goalParams{
	GoalMuscleGain: {
		Reps:        paramRange{Lo: 8, Hi: 12},
		Sets:        paramRange{Lo: 3, Hi: 5},
		RestSeconds: paramRange{Lo: 120, Hi: 180},
		Intensity:   "moderate to high",
		Progression: "add weight when the top of the rep range is reached",
	},
	GoalStrengthGain: {
		Reps:        paramRange{Lo: 3, Hi: 6},
		Sets:        paramRange{Lo: 3, Hi: 6},
		RestSeconds: paramRange{Lo: 180, Hi: 300},
		Intensity:   "high",
		Progression: "small weight increments with full recovery between sets",
	},
	GoalFatLoss: {
		Reps:        paramRange{Lo: 12, Hi: 20},
		Sets:        paramRange{Lo: 2, Hi: 4},
		RestSeconds: paramRange{Lo: 30, Hi: 60},
		Intensity:   "moderate",
		Progression: "shorten rest before adding weight",
	},
	GoalEndurance: {
		Reps:        paramRange{Lo: 12, Hi: 20},
		Sets:        paramRange{Lo: 2, Hi: 4},
		RestSeconds: paramRange{Lo: 30, Hi: 60},
		Intensity:   "low to moderate",
		Progression: "add reps before adding weight",
	},
	GoalRehabilitation: {
		Reps:        paramRange{Lo: 10, Hi: 15},
		Sets:        paramRange{Lo: 2, Hi: 3},
		RestSeconds: paramRange{Lo: 60, Hi: 120},
		Intensity:   "low",
		Progression: "pain-free range of motion before load",
	},
	GoalFunctionalFitness: {
		Reps:        paramRange{Lo: 8, Hi: 15},
		Sets:        paramRange{Lo: 2, Hi: 4},
		RestSeconds: paramRange{Lo: 45, Hi: 90},
		Intensity:   "moderate",
		Progression: "vary movement patterns week to week",
	},
}

const (
	optimalAlignmentScore = 0.8
	compoundLiftWeight    = 1.5
)

// compoundLiftNames lists lowercase substrings that identify compound movements,
// including common Portuguese exercise names found in imported catalogs.
//
//nolint:gochecknoglobals // immutable lookup table.
var compoundLiftNames = []string{
	"squat", "agachamento",
	"bench press", "supino",
	"deadlift", "levantamento terra",
	"pull-up", "pullup", "barra fixa",
	"row", "remada",
	"overhead press", "desenvolvimento",
}

// ScoreGoalAlignment scores a workout's configured parameters against the goal's
// target ranges. A parameter inside its range scores 1.0; outside, the score
// falls off linearly with distance from the nearest boundary. Absent parameters
// are neutral rather than penalized.
func ScoreGoalAlignment(workout Workout, goal Goal) WorkoutAlignment {
	params, ok := goalParameters[goal]
	if !ok {
		params = goalParameters[GoalMuscleGain]
	}

	alignment := WorkoutAlignment{
		WorkoutID: workout.ID,
		Overall:   0,
		Exercises: make([]ExerciseAlignment, 0, len(workout.Exercises)),
	}
	if len(workout.Exercises) == 0 {
		return alignment
	}

	var weightedSum, weightTotal float64
	for _, exercise := range workout.Exercises {
		scored := scoreExercise(exercise, params)
		alignment.Exercises = append(alignment.Exercises, scored)

		weight := 1.0
		if (goal == GoalMuscleGain || goal == GoalStrengthGain) && isCompoundLift(exercise.ExerciseName) {
			weight = compoundLiftWeight
		}
		weightedSum += scored.Score * weight
		weightTotal += weight
	}
	alignment.Overall = weightedSum / weightTotal

	return alignment
}

func scoreExercise(exercise ExerciseConfig, params goalParams) ExerciseAlignment {
	alignment := ExerciseAlignment{
		ExerciseID:   exercise.ExerciseID,
		ExerciseName: exercise.ExerciseName,
		Score:        0,
		IsOptimal:    false,
		Suggestions:  nil,
	}

	var scoreSum float64
	scored := 0

	// The configured rep range is compared through its midpoint.
	if exercise.MinReps > 0 || exercise.MaxReps > 0 {
		reps := float64(exercise.MinReps+exercise.MaxReps) / 2
		score := scoreParam(reps, params.Reps)
		scoreSum += score
		scored++
		if score < 1 {
			alignment.Suggestions = append(alignment.Suggestions,
				fmt.Sprintf("target %d-%d reps instead of %d-%d",
					int(params.Reps.Lo), int(params.Reps.Hi), exercise.MinReps, exercise.MaxReps))
		}
	}

	if exercise.Sets > 0 {
		score := scoreParam(float64(exercise.Sets), params.Sets)
		scoreSum += score
		scored++
		if score < 1 {
			alignment.Suggestions = append(alignment.Suggestions,
				fmt.Sprintf("use %d-%d sets instead of %d",
					int(params.Sets.Lo), int(params.Sets.Hi), exercise.Sets))
		}
	}

	if exercise.RestSeconds != nil {
		score := scoreParam(float64(*exercise.RestSeconds), params.RestSeconds)
		scoreSum += score
		scored++
		if score < 1 {
			alignment.Suggestions = append(alignment.Suggestions,
				fmt.Sprintf("rest %d-%ds between sets instead of %ds",
					int(params.RestSeconds.Lo), int(params.RestSeconds.Hi), *exercise.RestSeconds))
		}
	}

	if scored == 0 {
		// Nothing configured to judge, treat as neutral.
		alignment.Score = 1
	} else {
		alignment.Score = scoreSum / float64(scored)
	}
	alignment.IsOptimal = alignment.Score > optimalAlignmentScore

	return alignment
}

// scoreParam returns 1.0 inside the range and decays linearly with distance from
// the nearest boundary, relative to the range span. A value exactly at a boundary
// scores 1.0 and the decay is monotonic in the deviation.
func scoreParam(value float64, r paramRange) float64 {
	if value >= r.Lo && value <= r.Hi {
		return 1
	}
	var distance float64
	if value < r.Lo {
		distance = r.Lo - value
	} else {
		distance = value - r.Hi
	}
	span := max(r.Hi-r.Lo, 1)
	return max(0, 1-distance/span)
}

func isCompoundLift(name string) bool {
	lower := strings.ToLower(name)
	for _, compound := range compoundLiftNames {
		if strings.Contains(lower, compound) {
			return true
		}
	}
	return false
}
