package player

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/repwise/repwise/internal/sqlite"
)

// Service persists the player state machine across requests. Each request
// rehydrates the machine from the latest snapshot, applies one event, and
// writes the result back.
type Service struct {
	repo   *sqliteRepository
	logger *slog.Logger
	// now is swappable for tests.
	now func() time.Time
}

// NewService creates a new player service.
func NewService(db *sqlite.Database, logger *slog.Logger) *Service {
	return &Service{
		repo:   newSQLiteRepository(db, logger),
		logger: logger,
		now:    time.Now,
	}
}

// Action identifies a player event.
type Action string

const (
	ActionCompleteSet    Action = "complete_set"
	ActionTick           Action = "tick"
	ActionPause          Action = "pause"
	ActionResume         Action = "resume"
	ActionSkip           Action = "skip"
	ActionSelectExercise Action = "select_exercise"
	ActionFinish         Action = "finish"
)

// Event is one user or timer interaction with the player.
type Event struct {
	Action        Action   `json:"action"`
	Reps          int      `json:"reps,omitempty"`
	WeightKg      *float64 `json:"weight_kg,omitempty"`
	ExerciseIndex int      `json:"exercise_index,omitempty"`
	Force         bool     `json:"force,omitempty"`
	Notes         string   `json:"notes,omitempty"`
}

// View is the player state returned to the UI after each event.
type View struct {
	Phase            Phase              `json:"phase"`
	ExerciseIndex    int                `json:"exercise_index"`
	SetIndex         int                `json:"set_index"`
	RestRemaining    int                `json:"rest_remaining_seconds"`
	ElapsedSeconds   int                `json:"elapsed_seconds"`
	CompletedSets    int                `json:"completed_sets"`
	PendingExercises []string           `json:"pending_exercises,omitempty"`
	Plan             Plan               `json:"plan"`
	Progress         []ExerciseProgress `json:"progress"`
}

func (s *Service) view(m *Machine, now time.Time) View {
	exerciseIndex, setIndex := m.Position()
	return View{
		Phase:            m.CurrentPhase(),
		ExerciseIndex:    exerciseIndex,
		SetIndex:         setIndex,
		RestRemaining:    m.RestRemaining(now),
		ElapsedSeconds:   m.Elapsed(now),
		CompletedSets:    m.CompletedSets(),
		PendingExercises: m.Pending(),
		Plan:             m.SessionPlan(),
		Progress:         m.Progress(),
	}
}

// Start begins or resumes the session for a workout on a date. An existing
// unfinished snapshot wins over a fresh start so reloading never loses progress.
func (s *Service) Start(ctx context.Context, userID, workoutID int, date time.Time) (View, error) {
	now := s.now()

	snapshot, err := s.repo.getSnapshot(ctx, userID, date)
	switch {
	case err == nil && snapshot.Phase != PhaseFinished && snapshot.Plan.WorkoutID == workoutID:
		machine := Rehydrate(snapshot)
		machine.Tick(now)
		return s.view(machine, now), nil
	case err != nil && !errors.Is(err, ErrNotFound):
		return View{}, fmt.Errorf("get snapshot: %w", err)
	}

	plan, err := s.repo.getPlan(ctx, userID, workoutID)
	if err != nil {
		return View{}, fmt.Errorf("get plan: %w", err)
	}
	machine := NewMachine(plan, now)
	if err = s.repo.saveSnapshot(ctx, userID, date, machine.Snapshot(now)); err != nil {
		return View{}, fmt.Errorf("save snapshot: %w", err)
	}

	s.logger.LogAttrs(ctx, slog.LevelInfo, "player session started",
		slog.Int("workoutID", workoutID), slog.Time("date", date))

	return s.view(machine, now), nil
}

// Get returns the current session state without mutating it, beyond catching up
// on an elapsed rest deadline.
func (s *Service) Get(ctx context.Context, userID int, date time.Time) (View, error) {
	now := s.now()
	snapshot, err := s.repo.getSnapshot(ctx, userID, date)
	if err != nil {
		return View{}, fmt.Errorf("get snapshot: %w", err)
	}
	machine := Rehydrate(snapshot)
	machine.Tick(now)
	return s.view(machine, now), nil
}

// Apply runs one event against the stored session. Mutating transitions persist
// a new snapshot; finishing records the session and clears the snapshot.
func (s *Service) Apply(ctx context.Context, userID int, date time.Time, event Event) (View, error) {
	now := s.now()

	snapshot, err := s.repo.getSnapshot(ctx, userID, date)
	if err != nil {
		return View{}, fmt.Errorf("get snapshot: %w", err)
	}
	machine := Rehydrate(snapshot)
	// Catch up on any rest deadline that passed while no requests arrived.
	changed := machine.Tick(now)

	if err = s.applyEvent(machine, event, now); err != nil {
		return View{}, err
	}
	changed = changed || event.Action != ActionTick

	if machine.CurrentPhase() == PhaseFinished {
		if err = s.repo.recordSession(ctx, userID, machine.SessionPlan(), machine.Progress(), now); err != nil {
			return View{}, fmt.Errorf("record session: %w", err)
		}
		if err = s.repo.deleteSnapshot(ctx, userID, date); err != nil {
			return View{}, fmt.Errorf("delete snapshot: %w", err)
		}
		s.logger.LogAttrs(ctx, slog.LevelInfo, "player session finished",
			slog.Int("completedSets", machine.CompletedSets()))
		return s.view(machine, now), nil
	}

	if changed {
		if err = s.repo.saveSnapshot(ctx, userID, date, machine.Snapshot(now)); err != nil {
			return View{}, fmt.Errorf("save snapshot: %w", err)
		}
	}
	return s.view(machine, now), nil
}

func (s *Service) applyEvent(machine *Machine, event Event, now time.Time) error {
	var err error
	switch event.Action {
	case ActionCompleteSet:
		err = machine.CompleteSet(SetResult{Reps: event.Reps, WeightKg: event.WeightKg}, now)
	case ActionTick:
		// Already handled by the catch-up tick.
	case ActionPause:
		err = machine.Pause(now)
	case ActionResume:
		err = machine.Resume(now)
	case ActionSkip:
		err = machine.Skip()
	case ActionSelectExercise:
		err = machine.SelectExercise(event.ExerciseIndex)
		if err == nil && event.Notes != "" {
			err = machine.SetNotes(event.ExerciseIndex, event.Notes)
		}
	case ActionFinish:
		err = machine.Finish(event.Force)
	default:
		return fmt.Errorf("unknown action %q", event.Action)
	}
	if err != nil {
		return fmt.Errorf("apply %s: %w", event.Action, err)
	}
	return nil
}

// Resync merges a client-cached snapshot with the stored one and persists the
// winner. It returns the reconciled session state.
func (s *Service) Resync(ctx context.Context, userID int, date time.Time, local Snapshot) (View, error) {
	now := s.now()

	remote, err := s.repo.getSnapshot(ctx, userID, date)
	if errors.Is(err, ErrNotFound) {
		remote = local
	} else if err != nil {
		return View{}, fmt.Errorf("get snapshot: %w", err)
	}

	winner := Reconcile(local, remote)
	if err = s.repo.saveSnapshot(ctx, userID, date, winner); err != nil {
		return View{}, fmt.Errorf("save snapshot: %w", err)
	}

	machine := Rehydrate(winner)
	machine.Tick(now)
	return s.view(machine, now), nil
}
