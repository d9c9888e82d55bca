package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/repwise/repwise/internal/sqlite"
)

// Service exposes the exercise catalog.
type Service struct {
	repo         *sqliteRepository
	logger       *slog.Logger
	openaiAPIKey string
}

// NewService creates a new catalog service.
func NewService(db *sqlite.Database, logger *slog.Logger, openaiAPIKey string) *Service {
	return &Service{
		repo:         newSQLiteRepository(db, logger),
		logger:       logger,
		openaiAPIKey: openaiAPIKey,
	}
}

// List returns all public exercises.
func (s *Service) List(ctx context.Context) ([]Exercise, error) {
	exercises, err := s.repo.list(ctx)
	if err != nil {
		return nil, fmt.Errorf("list exercises: %w", err)
	}
	return exercises, nil
}

// Get returns one exercise by ID.
func (s *Service) Get(ctx context.Context, id int) (Exercise, error) {
	exercise, err := s.repo.get(ctx, id)
	if err != nil {
		return Exercise{}, fmt.Errorf("get exercise %d: %w", id, err)
	}
	return exercise, nil
}

// ListMuscleGroups returns all known muscle groups.
func (s *Service) ListMuscleGroups(ctx context.Context) ([]string, error) {
	groups, err := s.repo.listMuscleGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("list muscle groups: %w", err)
	}
	return groups, nil
}

// CreateExercise persists a new exercise for the given name, filling in its
// description with AI generation when available.
//
// The returned exercise always has at least Name, MuscleGroup and ID set, even
// when generation fails.
func (s *Service) CreateExercise(ctx context.Context, name string) (Exercise, error) {
	exercise := s.generateExerciseContent(ctx, name)

	persisted, err := s.repo.create(ctx, exercise)
	if err != nil {
		return Exercise{}, fmt.Errorf("create exercise: %w", err)
	}
	return persisted, nil
}

func (s *Service) generateExerciseContent(ctx context.Context, name string) Exercise {
	if s.openaiAPIKey == "" {
		return createMinimalExercise(name)
	}

	muscleGroups, err := s.repo.listMuscleGroups(ctx)
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "failed to get muscle groups", slog.Any("error", err))
		return createMinimalExercise(name)
	}

	generator := newExerciseGenerator(s.openaiAPIKey, muscleGroups)
	generated, err := generator.Generate(ctx, name)
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "failed to generate exercise details",
			slog.Any("error", err), slog.String("name", name))
		return createMinimalExercise(name)
	}
	return generated
}

// createMinimalExercise returns a basic exercise the user can fill in later.
func createMinimalExercise(name string) Exercise {
	return Exercise{
		ID:                    0,
		Name:                  name,
		MuscleGroup:           "core",
		SecondaryMuscleGroups: nil,
		DescriptionMarkdown:   fmt.Sprintf("# %s\n\nNo description available yet.", name),
		Public:                false,
	}
}
