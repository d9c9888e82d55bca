package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/repwise/repwise/internal/sqlite"
)

// ErrNotFound is returned when a requested exercise does not exist.
var ErrNotFound = errors.New("not found")

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

// list returns all public exercises ordered by name.
func (r *sqliteRepository) list(ctx context.Context) ([]Exercise, error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT id, name, muscle_group, description_markdown, is_public
		FROM exercises WHERE is_public = TRUE ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query exercises: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.LogAttrs(ctx, slog.LevelError, "failed to close rows", slog.Any("error", err))
		}
	}()

	var exercises []Exercise
	for rows.Next() {
		var exercise Exercise
		if err = rows.Scan(&exercise.ID, &exercise.Name, &exercise.MuscleGroup,
			&exercise.DescriptionMarkdown, &exercise.Public); err != nil {
			return nil, fmt.Errorf("scan exercise: %w", err)
		}
		exercises = append(exercises, exercise)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate exercises: %w", err)
	}

	for i := range exercises {
		if exercises[i].SecondaryMuscleGroups, err = r.secondaryGroups(ctx, exercises[i].ID); err != nil {
			return nil, fmt.Errorf("secondary groups for exercise %d: %w", exercises[i].ID, err)
		}
	}
	return exercises, nil
}

// get returns one exercise by ID.
func (r *sqliteRepository) get(ctx context.Context, id int) (Exercise, error) {
	var exercise Exercise
	err := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT id, name, muscle_group, description_markdown, is_public
		FROM exercises WHERE id = ?`, id).Scan(
		&exercise.ID, &exercise.Name, &exercise.MuscleGroup,
		&exercise.DescriptionMarkdown, &exercise.Public)
	if errors.Is(err, sql.ErrNoRows) {
		return Exercise{}, ErrNotFound
	}
	if err != nil {
		return Exercise{}, fmt.Errorf("query exercise: %w", err)
	}
	if exercise.SecondaryMuscleGroups, err = r.secondaryGroups(ctx, id); err != nil {
		return Exercise{}, fmt.Errorf("secondary groups: %w", err)
	}
	return exercise, nil
}

func (r *sqliteRepository) secondaryGroups(ctx context.Context, exerciseID int) ([]string, error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT muscle_group_name FROM exercise_secondary_muscle_groups
		WHERE exercise_id = ? ORDER BY muscle_group_name`, exerciseID)
	if err != nil {
		return nil, fmt.Errorf("query secondary muscle groups: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.LogAttrs(ctx, slog.LevelError, "failed to close rows", slog.Any("error", err))
		}
	}()

	var groups []string
	for rows.Next() {
		var group string
		if err = rows.Scan(&group); err != nil {
			return nil, fmt.Errorf("scan secondary muscle group: %w", err)
		}
		groups = append(groups, group)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate secondary muscle groups: %w", err)
	}
	return groups, nil
}

// create inserts an exercise and returns it with its assigned ID. Creating an
// exercise whose name already exists returns the existing one.
func (r *sqliteRepository) create(ctx context.Context, exercise Exercise) (Exercise, error) {
	result, err := r.db.ReadWrite.ExecContext(ctx, `
		INSERT INTO exercises (name, muscle_group, description_markdown, is_public)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (name) DO NOTHING`,
		exercise.Name, exercise.MuscleGroup, exercise.DescriptionMarkdown, exercise.Public)
	if err != nil {
		return Exercise{}, fmt.Errorf("insert exercise: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return Exercise{}, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		var existing Exercise
		if existing, err = r.getByName(ctx, exercise.Name); err != nil {
			return Exercise{}, fmt.Errorf("get existing exercise: %w", err)
		}
		return existing, nil
	}

	id, err := result.LastInsertId()
	if err != nil {
		return Exercise{}, fmt.Errorf("exercise id: %w", err)
	}
	exercise.ID = int(id)

	for _, group := range exercise.SecondaryMuscleGroups {
		if _, err = r.db.ReadWrite.ExecContext(ctx, `
			INSERT INTO exercise_secondary_muscle_groups (exercise_id, muscle_group_name)
			VALUES (?, ?) ON CONFLICT DO NOTHING`, exercise.ID, group); err != nil {
			return Exercise{}, fmt.Errorf("insert secondary muscle group: %w", err)
		}
	}
	return exercise, nil
}

func (r *sqliteRepository) getByName(ctx context.Context, name string) (Exercise, error) {
	var id int
	err := r.db.ReadOnly.QueryRowContext(ctx,
		"SELECT id FROM exercises WHERE name = ?", name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return Exercise{}, ErrNotFound
	}
	if err != nil {
		return Exercise{}, fmt.Errorf("query exercise by name: %w", err)
	}
	return r.get(ctx, id)
}

// listMuscleGroups returns all known muscle groups.
func (r *sqliteRepository) listMuscleGroups(ctx context.Context) ([]string, error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, "SELECT name FROM muscle_groups ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("query muscle groups: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.LogAttrs(ctx, slog.LevelError, "failed to close rows", slog.Any("error", err))
		}
	}()

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
