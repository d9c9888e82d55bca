package player

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/repwise/repwise/internal/sqlite"
)

// ErrNotFound is returned when no snapshot or workout exists for the request.
var ErrNotFound = errors.New("not found")

const (
	dateFormat      = time.DateOnly
	timestampFormat = "2006-01-02T15:04:05.000Z"
)

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

// getPlan builds a session plan from a workout definition.
func (r *sqliteRepository) getPlan(ctx context.Context, userID, workoutID int) (Plan, error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT e.id, e.name, we.sets, we.min_reps, we.max_reps, we.weight_kg, we.rest_seconds
		FROM workout_exercises we
		JOIN exercises e ON e.id = we.exercise_id
		JOIN workouts w ON w.id = we.workout_id
		WHERE we.workout_id = ? AND w.user_id = ?
		ORDER BY we.position`, workoutID, userID)
	if err != nil {
		return Plan{}, fmt.Errorf("query workout exercises: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.LogAttrs(ctx, slog.LevelError, "failed to close rows", slog.Any("error", err))
		}
	}()

	plan := Plan{WorkoutID: workoutID, Exercises: nil}
	for rows.Next() {
		var (
			exercise PlannedExercise
			rest     *int
		)
		if err = rows.Scan(&exercise.ExerciseID, &exercise.Name, &exercise.Sets,
			&exercise.MinReps, &exercise.MaxReps, &exercise.WeightKg, &rest); err != nil {
			return Plan{}, fmt.Errorf("scan workout exercise: %w", err)
		}
		if rest != nil {
			exercise.RestSeconds = *rest
		}
		plan.Exercises = append(plan.Exercises, exercise)
	}
	if err = rows.Err(); err != nil {
		return Plan{}, fmt.Errorf("iterate workout exercises: %w", err)
	}
	if len(plan.Exercises) == 0 {
		return Plan{}, ErrNotFound
	}
	return plan, nil
}

// getSnapshot loads the stored snapshot for one session day.
func (r *sqliteRepository) getSnapshot(ctx context.Context, userID int, date time.Time) (Snapshot, error) {
	var payload []byte
	err := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT payload FROM player_snapshots
		WHERE user_id = ? AND workout_date = ?`,
		userID, date.Format(dateFormat)).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, ErrNotFound
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("query snapshot: %w", err)
	}
	snapshot, err := DecodeSnapshot(payload)
	if err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snapshot, nil
}

// saveSnapshot upserts a snapshot. A stored snapshot with more completed sets,
// or the same count and a later timestamp, is never overwritten, so racing
// writers converge to the furthest-progressed state.
func (r *sqliteRepository) saveSnapshot(ctx context.Context, userID int, date time.Time, snapshot Snapshot) error {
	payload, err := snapshot.Encode()
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if _, err = r.db.ReadWrite.ExecContext(ctx, `
		INSERT INTO player_snapshots (user_id, workout_date, payload, completed_sets, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id, workout_date) DO UPDATE SET
			payload = excluded.payload,
			completed_sets = excluded.completed_sets,
			updated_at = excluded.updated_at
		WHERE excluded.completed_sets > player_snapshots.completed_sets
		   OR (excluded.completed_sets = player_snapshots.completed_sets
		       AND excluded.updated_at >= player_snapshots.updated_at)`,
		userID, date.Format(dateFormat), payload, snapshot.CompletedSets,
		snapshot.UpdatedAt.UTC().Format(timestampFormat)); err != nil {
		return fmt.Errorf("upsert snapshot: %w", err)
	}
	return nil
}

// deleteSnapshot clears the stored snapshot once a session is finished.
func (r *sqliteRepository) deleteSnapshot(ctx context.Context, userID int, date time.Time) error {
	if _, err := r.db.ReadWrite.ExecContext(ctx, `
		DELETE FROM player_snapshots WHERE user_id = ? AND workout_date = ?`,
		userID, date.Format(dateFormat)); err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}

// recordSession writes one session record per exercise with recorded sets.
func (r *sqliteRepository) recordSession(
	ctx context.Context,
	userID int,
	plan Plan,
	progress []ExerciseProgress,
	performedAt time.Time,
) error {
	tx, err := r.db.ReadWrite.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			r.logger.LogAttrs(ctx, slog.LevelError, "failed to rollback transaction", slog.Any("error", err))
		}
	}()

	for i, exercise := range plan.Exercises {
		recorded := progress[i]
		if len(recorded.Sets) == 0 {
			continue
		}

		var weight *float64
		for _, set := range recorded.Sets {
			if set.WeightKg != nil {
				weight = set.WeightKg
			}
		}
		if weight == nil {
			weight = exercise.WeightKg
		}
		var rest *int
		if exercise.RestSeconds > 0 {
			rest = &exercise.RestSeconds
		}

		var result sql.Result
		if result, err = tx.ExecContext(ctx, `
			INSERT INTO session_records
				(user_id, workout_id, exercise_id, planned_sets, planned_reps,
				 weight_kg, rest_seconds, sets_completed, performed_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			userID, plan.WorkoutID, exercise.ExerciseID, exercise.Sets, exercise.MaxReps,
			weight, rest, len(recorded.Sets),
			performedAt.UTC().Format(timestampFormat)); err != nil {
			return fmt.Errorf("insert session record: %w", err)
		}
		var recordID int64
		if recordID, err = result.LastInsertId(); err != nil {
			return fmt.Errorf("session record id: %w", err)
		}
		for setNumber, set := range recorded.Sets {
			if _, err = tx.ExecContext(ctx, `
				INSERT INTO session_record_reps (record_id, set_number, reps)
				VALUES (?, ?, ?)`, recordID, setNumber+1, set.Reps); err != nil {
				return fmt.Errorf("insert session record reps: %w", err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
