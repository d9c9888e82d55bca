package analysis

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/repwise/repwise/internal/sqlite"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

const timestampFormat = "2006-01-02T15:04:05.000Z"

// sqliteRepository handles database access for the analysis service.
type sqliteRepository struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func newSQLiteRepository(db *sqlite.Database, logger *slog.Logger) *sqliteRepository {
	return &sqliteRepository{
		db:     db,
		logger: logger,
	}
}

// listRecords returns the user's session records since the given time, oldest first.
func (r *sqliteRepository) listRecords(ctx context.Context, userID int, since time.Time) ([]SessionRecord, error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT sr.id, sr.exercise_id, e.name, e.muscle_group, COALESCE(sr.workout_id, 0),
		       sr.planned_sets, sr.planned_reps, sr.weight_kg, sr.rest_seconds,
		       sr.sets_completed, sr.performed_at
		FROM session_records sr
		JOIN exercises e ON e.id = sr.exercise_id
		WHERE sr.user_id = ? AND sr.performed_at >= ?
		ORDER BY sr.performed_at`, userID, since.UTC().Format(timestampFormat))
	if err != nil {
		return nil, fmt.Errorf("query session records: %w", err)
	}
	defer r.closeRows(ctx, rows)

	var (
		records   []SessionRecord
		recordIDs []int
	)
	for rows.Next() {
		var (
			record      SessionRecord
			recordID    int
			performedAt string
		)
		if err = rows.Scan(
			&recordID, &record.ExerciseID, &record.ExerciseName, &record.MuscleGroup, &record.WorkoutID,
			&record.PlannedSets, &record.PlannedReps, &record.WeightKg, &record.RestSeconds,
			&record.SetsCompleted, &performedAt); err != nil {
			return nil, fmt.Errorf("scan session record: %w", err)
		}
		if record.PerformedAt, err = time.Parse(timestampFormat, performedAt); err != nil {
			return nil, fmt.Errorf("parse performed_at: %w", err)
		}
		records = append(records, record)
		recordIDs = append(recordIDs, recordID)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate session records: %w", err)
	}

	for i, recordID := range recordIDs {
		if records[i].RepsPerSet, err = r.listRecordReps(ctx, recordID); err != nil {
			return nil, fmt.Errorf("list reps for record %d: %w", recordID, err)
		}
	}
	return records, nil
}

func (r *sqliteRepository) listRecordReps(ctx context.Context, recordID int) ([]int, error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT reps FROM session_record_reps
		WHERE record_id = ?
		ORDER BY set_number`, recordID)
	if err != nil {
		return nil, fmt.Errorf("query record reps: %w", err)
	}
	defer r.closeRows(ctx, rows)

	var reps []int
	for rows.Next() {
		var count int
		if err = rows.Scan(&count); err != nil {
			return nil, fmt.Errorf("scan reps: %w", err)
		}
		reps = append(reps, count)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate record reps: %w", err)
	}
	return reps, nil
}

// getProfile returns the user's analysis profile, or sensible defaults when the
// user has not filled one in.
func (r *sqliteRepository) getProfile(ctx context.Context, userID int) (Profile, error) {
	var (
		profile       Profile
		equipmentJSON string
		injuriesJSON  string
	)
	err := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT goal, experience, equipment, injuries, weekly_frequency, session_minutes
		FROM profiles WHERE user_id = ?`, userID).Scan(
		&profile.Goal, &profile.Experience, &equipmentJSON, &injuriesJSON,
		&profile.WeeklyFrequency, &profile.SessionMinutes)
	if errors.Is(err, sql.ErrNoRows) {
		return Profile{
			Goal:            GoalMuscleGain,
			Experience:      "beginner",
			Equipment:       nil,
			Injuries:        nil,
			WeeklyFrequency: 3,
			SessionMinutes:  60,
		}, nil
	}
	if err != nil {
		return Profile{}, fmt.Errorf("query profile: %w", err)
	}
	if err = json.Unmarshal([]byte(equipmentJSON), &profile.Equipment); err != nil {
		return Profile{}, fmt.Errorf("unmarshal equipment: %w", err)
	}
	if err = json.Unmarshal([]byte(injuriesJSON), &profile.Injuries); err != nil {
		return Profile{}, fmt.Errorf("unmarshal injuries: %w", err)
	}
	return profile, nil
}

// listWorkouts returns the user's workout definitions with their exercise plans.
func (r *sqliteRepository) listWorkouts(ctx context.Context, userID int) ([]Workout, error) {
	// LEFT JOIN keeps workouts with no configured exercises: they are the
	// natural target for add-exercise suggestions.
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT w.id, w.name, e.id, e.name, e.muscle_group,
		       we.sets, we.min_reps, we.max_reps, we.weight_kg, we.rest_seconds
		FROM workouts w
		LEFT JOIN workout_exercises we ON we.workout_id = w.id
		LEFT JOIN exercises e ON e.id = we.exercise_id
		WHERE w.user_id = ?
		ORDER BY w.id, we.position`, userID)
	if err != nil {
		return nil, fmt.Errorf("query workouts: %w", err)
	}
	defer r.closeRows(ctx, rows)

	var workouts []Workout
	var current *Workout
	for rows.Next() {
		var (
			workoutID    int
			workoutName  string
			exerciseID   *int
			exerciseName *string
			muscleGroup  *string
			sets         *int
			minReps      *int
			maxReps      *int
			weightKg     *float64
			restSeconds  *int
		)
		if err = rows.Scan(
			&workoutID, &workoutName, &exerciseID, &exerciseName, &muscleGroup,
			&sets, &minReps, &maxReps, &weightKg, &restSeconds,
		); err != nil {
			return nil, fmt.Errorf("scan workout exercise: %w", err)
		}
		if current == nil || current.ID != workoutID {
			if current != nil {
				workouts = append(workouts, *current)
			}
			current = &Workout{ID: workoutID, Name: workoutName, Exercises: nil}
		}
		if exerciseID == nil {
			continue
		}
		exercise := ExerciseConfig{
			ExerciseID:   *exerciseID,
			ExerciseName: *exerciseName,
			MuscleGroup:  *muscleGroup,
			Sets:         *sets,
			MinReps:      *minReps,
			MaxReps:      *maxReps,
			WeightKg:     weightKg,
			RestSeconds:  restSeconds,
		}
		current.Exercises = append(current.Exercises, exercise)
	}
	if current != nil {
		workouts = append(workouts, *current)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate workouts: %w", err)
	}
	return workouts, nil
}

// listCatalog returns the public exercise catalog.
func (r *sqliteRepository) listCatalog(ctx context.Context) ([]CatalogExercise, error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT id, name, muscle_group FROM exercises
		WHERE is_public = TRUE
		ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query exercise catalog: %w", err)
	}
	defer r.closeRows(ctx, rows)

	var catalog []CatalogExercise
	for rows.Next() {
		var exercise CatalogExercise
		if err = rows.Scan(&exercise.ID, &exercise.Name, &exercise.MuscleGroup); err != nil {
			return nil, fmt.Errorf("scan catalog exercise: %w", err)
		}
		catalog = append(catalog, exercise)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate exercise catalog: %w", err)
	}
	return catalog, nil
}

// listMuscleGroups returns all known muscle groups.
func (r *sqliteRepository) listMuscleGroups(ctx context.Context) ([]string, error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `SELECT name FROM muscle_groups ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query muscle groups: %w", err)
	}
	defer r.closeRows(ctx, rows)

	var groups []string
	for rows.Next() {
		var group string
		if err = rows.Scan(&group); err != nil {
			return nil, fmt.Errorf("scan muscle group: %w", err)
		}
		groups = append(groups, group)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate muscle groups: %w", err)
	}
	return groups, nil
}

// updateExerciseParameters applies one parameter change to a workout exercise.
// The whole change is a single UPDATE so concurrent applies cannot interleave
// partial writes.
func (r *sqliteRepository) updateExerciseParameters(
	ctx context.Context,
	userID, workoutID, exerciseID int,
	deltas []ParameterDelta,
) error {
	var setsVal, minRepsVal, maxRepsVal, restVal *int
	var weightVal *float64
	for _, delta := range deltas {
		switch delta.Parameter {
		case "sets":
			v := int(delta.Suggested)
			setsVal = &v
		case "min_reps":
			v := int(delta.Suggested)
			minRepsVal = &v
		case "max_reps":
			v := int(delta.Suggested)
			maxRepsVal = &v
		case "weight_kg":
			v := delta.Suggested
			weightVal = &v
		case "rest_seconds":
			v := int(delta.Suggested)
			restVal = &v
		default:
			return fmt.Errorf("unknown parameter %q", delta.Parameter)
		}
	}

	result, err := r.db.ReadWrite.ExecContext(ctx, `
		UPDATE workout_exercises SET
			sets = COALESCE(?, sets),
			min_reps = COALESCE(?, min_reps),
			max_reps = COALESCE(?, max_reps),
			weight_kg = COALESCE(?, weight_kg),
			rest_seconds = COALESCE(?, rest_seconds)
		WHERE workout_id = ? AND exercise_id = ?
		  AND EXISTS (SELECT 1 FROM workouts WHERE id = ? AND user_id = ?)`,
		setsVal, minRepsVal, maxRepsVal, weightVal, restVal,
		workoutID, exerciseID, workoutID, userID)
	if err != nil {
		return fmt.Errorf("update workout exercise: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// addExercise inserts one exercise into a workout after the current last position.
func (r *sqliteRepository) addExercise(ctx context.Context, userID, workoutID, exerciseID int) error {
	result, err := r.db.ReadWrite.ExecContext(ctx, `
		INSERT INTO workout_exercises (workout_id, exercise_id, position, sets, min_reps, max_reps)
		SELECT w.id, ?, COALESCE((SELECT MAX(position) + 1 FROM workout_exercises WHERE workout_id = w.id), 0),
		       3, 8, 12
		FROM workouts w WHERE w.id = ? AND w.user_id = ?
		ON CONFLICT (workout_id, exercise_id) DO NOTHING`,
		exerciseID, workoutID, userID)
	if err != nil {
		return fmt.Errorf("insert workout exercise: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		// Either the workout does not belong to the user or the exercise is
		// already present. The latter makes re-applying a no-op.
		var exists bool
		if err = r.db.ReadOnly.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM workouts WHERE id = ? AND user_id = ?)`,
			workoutID, userID).Scan(&exists); err != nil {
			return fmt.Errorf("check workout ownership: %w", err)
		}
		if !exists {
			return ErrNotFound
		}
	}
	return nil
}

// removeExercise deletes one exercise from a workout.
func (r *sqliteRepository) removeExercise(ctx context.Context, userID, workoutID, exerciseID int) error {
	_, err := r.db.ReadWrite.ExecContext(ctx, `
		DELETE FROM workout_exercises
		WHERE workout_id = ? AND exercise_id = ?
		  AND EXISTS (SELECT 1 FROM workouts WHERE id = ? AND user_id = ?)`,
		workoutID, exerciseID, workoutID, userID)
	if err != nil {
		return fmt.Errorf("delete workout exercise: %w", err)
	}
	return nil
}

// swapExercise replaces one exercise reference in a workout with another.
func (r *sqliteRepository) swapExercise(ctx context.Context, userID, workoutID, oldID, newID int) error {
	result, err := r.db.ReadWrite.ExecContext(ctx, `
		UPDATE workout_exercises SET exercise_id = ?
		WHERE workout_id = ? AND exercise_id = ?
		  AND EXISTS (SELECT 1 FROM workouts WHERE id = ? AND user_id = ?)`,
		newID, workoutID, oldID, workoutID, userID)
	if err != nil {
		return fmt.Errorf("swap workout exercise: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *sqliteRepository) closeRows(ctx context.Context, rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		r.logger.LogAttrs(ctx, slog.LevelError, "failed to close rows", slog.Any("error", err))
	}
}
