package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/repwise/repwise/internal/sqlite"
	"golang.org/x/sync/errgroup"
)

// historyWindowMonths bounds how far back the analysis looks.
const historyWindowMonths = 3

// Service runs the analysis pipeline over a user's training history.
type Service struct {
	repo       *sqliteRepository
	logger     *slog.Logger
	thresholds Thresholds
}

// NewService creates a new analysis service with the default rule thresholds.
func NewService(db *sqlite.Database, logger *slog.Logger) *Service {
	return &Service{
		repo:       newSQLiteRepository(db, logger),
		logger:     logger,
		thresholds: DefaultThresholds(),
	}
}

// Result is the full outcome of one analysis run.
type Result struct {
	// InsufficientData is set when the user has no session history at all.
	InsufficientData bool               `json:"insufficient_data"`
	Metrics          []ExerciseMetric   `json:"metrics"`
	Balance          []GroupBalance     `json:"balance"`
	Alignments       []WorkoutAlignment `json:"alignments"`
	Adjustments      []Adjustment       `json:"adjustments"`
	Summary          Summary            `json:"summary"`
}

// Analyze fetches the user's history snapshot and runs the full pipeline over it.
//
// The computation itself is pure; only the fetches touch the database, and they
// run concurrently since they are independent reads.
func (s *Service) Analyze(ctx context.Context, userID int) (Result, error) {
	var (
		records      []SessionRecord
		profile      Profile
		workouts     []Workout
		catalog      []CatalogExercise
		muscleGroups []string
	)

	since := time.Now().AddDate(0, -historyWindowMonths, 0)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if records, err = s.repo.listRecords(gctx, userID, since); err != nil {
			return fmt.Errorf("list records: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if profile, err = s.repo.getProfile(gctx, userID); err != nil {
			return fmt.Errorf("get profile: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if workouts, err = s.repo.listWorkouts(gctx, userID); err != nil {
			return fmt.Errorf("list workouts: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if catalog, err = s.repo.listCatalog(gctx); err != nil {
			return fmt.Errorf("list catalog: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if muscleGroups, err = s.repo.listMuscleGroups(gctx); err != nil {
			return fmt.Errorf("list muscle groups: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Result{}, fmt.Errorf("fetch analysis snapshot: %w", err)
	}

	result := s.analyzeSnapshot(records, profile, workouts, catalog, muscleGroups)

	s.logger.LogAttrs(ctx, slog.LevelInfo, "analysis complete",
		slog.Int("records", len(records)),
		slog.Int("adjustments", len(result.Adjustments)),
		slog.Bool("insufficientData", result.InsufficientData))

	return result, nil
}

// analyzeSnapshot is the pure pipeline over already-fetched data.
func (s *Service) analyzeSnapshot(
	records []SessionRecord,
	profile Profile,
	workouts []Workout,
	catalog []CatalogExercise,
	muscleGroups []string,
) Result {
	if len(records) == 0 {
		return Result{
			InsufficientData: true,
			Metrics:          nil,
			Balance:          nil,
			Alignments:       nil,
			Adjustments:      nil,
			Summary:          Summarize(nil),
		}
	}

	metrics := AggregateMetrics(records)
	balance := AnalyzeBalance(metrics, muscleGroups)

	alignments := make([]WorkoutAlignment, 0, len(workouts))
	for _, workout := range workouts {
		alignments = append(alignments, ScoreGoalAlignment(workout, profile.Goal))
	}

	adjustments := GenerateAdjustments(Input{
		Profile:  profile,
		Workouts: workouts,
		Metrics:  metrics,
		Balance:  balance,
		Records:  records,
		Catalog:  catalog,
	}, s.thresholds)

	return Result{
		InsufficientData: false,
		Metrics:          metrics,
		Balance:          balance,
		Alignments:       alignments,
		Adjustments:      adjustments,
		Summary:          Summarize(adjustments),
	}
}

// ApplyRequest identifies one adjustment to apply to the user's workout plan.
type ApplyRequest struct {
	Type          AdjustmentType   `json:"type"`
	WorkoutID     int              `json:"workout_id"`
	ExerciseID    int              `json:"exercise_id"`
	NewExerciseID int              `json:"new_exercise_id,omitempty"`
	Deltas        []ParameterDelta `json:"deltas,omitempty"`
}

// ApplyAdjustment performs the single mutation an adjustment describes. Each
// apply is one atomic statement, so re-applying the same adjustment is safe.
func (s *Service) ApplyAdjustment(ctx context.Context, userID int, req ApplyRequest) error {
	var err error
	switch req.Type {
	case AdjustParameters:
		if len(req.Deltas) == 0 {
			return errors.New("adjust_parameters requires at least one delta")
		}
		err = s.repo.updateExerciseParameters(ctx, userID, req.WorkoutID, req.ExerciseID, req.Deltas)
	case AddExercise:
		err = s.repo.addExercise(ctx, userID, req.WorkoutID, req.ExerciseID)
	case RemoveExercise:
		err = s.repo.removeExercise(ctx, userID, req.WorkoutID, req.ExerciseID)
	case ReplaceExercise:
		err = s.repo.swapExercise(ctx, userID, req.WorkoutID, req.ExerciseID, req.NewExerciseID)
	default:
		return fmt.Errorf("unknown adjustment type %q", req.Type)
	}
	if err != nil {
		return fmt.Errorf("apply %s: %w", req.Type, err)
	}
	return nil
}
