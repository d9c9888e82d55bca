// Package analysis derives training insights and adjustment suggestions from workout history.
package analysis

import "time"

// Goal represents the user's training goal.
type Goal string

const (
	GoalMuscleGain        Goal = "muscle_gain"
	GoalStrengthGain      Goal = "strength_gain"
	GoalFatLoss           Goal = "fat_loss"
	GoalEndurance         Goal = "endurance"
	GoalRehabilitation    Goal = "rehabilitation"
	GoalFunctionalFitness Goal = "functional_fitness"
)

// Difficulty classifies how hard an exercise has been for the user lately.
type Difficulty string

const (
	DifficultyTooEasy  Difficulty = "too_easy"
	DifficultyAdequate Difficulty = "adequate"
	DifficultyTooHard  Difficulty = "too_hard"
)

// Trend classifies the direction of an exercise's weight progression.
type Trend string

const (
	TrendProgressing Trend = "progressing"
	TrendStagnant    Trend = "stagnant"
	TrendRegressing  Trend = "regressing"
)

// SessionRecord is one completed set-group for one exercise within one workout session.
// Records are immutable once written; later sessions supersede rather than overwrite them.
type SessionRecord struct {
	ExerciseID   int
	ExerciseName string
	MuscleGroup  string
	WorkoutID    int
	PlannedSets  int
	PlannedReps  int
	// WeightKg is nil for bodyweight exercises.
	WeightKg *float64
	// RestSeconds is nil when no rest time was configured.
	RestSeconds   *int
	SetsCompleted int
	// RepsPerSet holds the actual reps for each completed set, in order.
	RepsPerSet  []int
	PerformedAt time.Time
}

// ExerciseMetric is the aggregated view of an exercise across recent sessions.
type ExerciseMetric struct {
	ExerciseID   int
	ExerciseName string
	MuscleGroup  string
	SessionCount int
	// CompletionRate is the mean completed/planned set ratio over all sessions, in [0, 1].
	CompletionRate float64
	// WeightProgression lists actual weights ordered oldest to newest.
	WeightProgression []float64
	Difficulty        Difficulty
	Trend             Trend
}

// GroupBalance describes training frequency and performance for one muscle group.
type GroupBalance struct {
	MuscleGroup string
	// Frequency is the number of sessions that trained this group.
	Frequency int
	// Performance is the mean completion rate across those sessions.
	Performance    float64
	NeedsAttention bool
	// Severe marks a group trained far below the cross-group average.
	Severe bool
}

// Profile holds the analysis-relevant parts of a user's profile.
type Profile struct {
	Goal            Goal
	Experience      string
	Equipment       []string
	Injuries        []string
	WeeklyFrequency int
	SessionMinutes  int
}

// ExerciseConfig is the configured plan for one exercise within a workout.
type ExerciseConfig struct {
	ExerciseID   int
	ExerciseName string
	MuscleGroup  string
	Sets         int
	MinReps      int
	MaxReps      int
	WeightKg     *float64
	RestSeconds  *int
}

// Workout is one workout definition owned by the user.
type Workout struct {
	ID        int
	Name      string
	Exercises []ExerciseConfig
}

// AdjustmentType identifies the kind of change a suggestion proposes.
type AdjustmentType string

const (
	AdjustParameters AdjustmentType = "adjust_parameters"
	AddExercise      AdjustmentType = "add_exercise"
	RemoveExercise   AdjustmentType = "remove_exercise"
	ReplaceExercise  AdjustmentType = "replace_exercise"
)

// Priority orders adjustments for display.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// priorityRank maps priorities to sort order, highest first.
//
//nolint:gochecknoglobals // immutable lookup table.
var priorityRank = map[Priority]int{
	PriorityCritical: 0,
	PriorityHigh:     1,
	PriorityMedium:   2,
	PriorityLow:      3,
}

// Source identifies which analysis produced an adjustment.
type Source string

const (
	SourcePerformance Source = "performance_analysis"
	SourceImbalance   Source = "muscle_imbalance"
	SourceGoal        Source = "goal_alignment"
)

// ParameterDelta describes one suggested parameter change.
type ParameterDelta struct {
	Parameter string  `json:"parameter"`
	Current   float64 `json:"current"`
	Suggested float64 `json:"suggested"`
	Reason    string  `json:"reason"`
}

// Adjustment is a single suggested change to the user's training program.
type Adjustment struct {
	Type         AdjustmentType   `json:"type"`
	WorkoutID    int              `json:"workout_id"`
	ExerciseID   int              `json:"exercise_id,omitempty"`
	ExerciseName string           `json:"exercise_name,omitempty"`
	Priority     Priority         `json:"priority"`
	Deltas       []ParameterDelta `json:"deltas,omitempty"`
	Explanation  string           `json:"explanation"`
	// Impact estimates the benefit of applying the adjustment, 1 to 10.
	Impact     int    `json:"impact"`
	Source     Source `json:"source"`
	Reversible bool   `json:"reversible"`
}

// Summary is a pure reduction over an adjustment list.
type Summary struct {
	Total           int                    `json:"total"`
	ByPriority      map[Priority]int       `json:"by_priority"`
	ByType          map[AdjustmentType]int `json:"by_type"`
	BySource        map[Source]int         `json:"by_source"`
	HighImpact      int                    `json:"high_impact"`
	WorkoutsTouched int                    `json:"workouts_touched"`
	MeanImpact      float64                `json:"mean_impact"`
}

// ExerciseAlignment scores one exercise's configuration against the goal's target ranges.
type ExerciseAlignment struct {
	ExerciseID   int      `json:"exercise_id"`
	ExerciseName string   `json:"exercise_name"`
	Score        float64  `json:"score"`
	IsOptimal    bool     `json:"is_optimal"`
	Suggestions  []string `json:"suggestions,omitempty"`
}

// WorkoutAlignment scores a whole workout against the goal's target ranges.
type WorkoutAlignment struct {
	WorkoutID int                 `json:"workout_id"`
	Overall   float64             `json:"overall"`
	Exercises []ExerciseAlignment `json:"exercises"`
}
