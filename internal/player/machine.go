// Package player drives a workout session through exercises, sets and rest periods.
package player

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Phase is the player's current activity.
type Phase string

const (
	PhaseExercising Phase = "exercising"
	PhaseResting    Phase = "resting"
	PhasePaused     Phase = "paused"
	PhaseFinished   Phase = "finished"
)

// ErrPendingExercises is returned by Finish when exercises remain incomplete and
// the caller did not force the transition.
var ErrPendingExercises = errors.New("exercises still pending")

// ErrInvalidTransition is returned when an event does not apply to the current phase.
var ErrInvalidTransition = errors.New("invalid transition")

// PlannedExercise is one exercise of the session plan.
type PlannedExercise struct {
	ExerciseID  int      `json:"exercise_id"`
	Name        string   `json:"name"`
	Sets        int      `json:"sets"`
	MinReps     int      `json:"min_reps"`
	MaxReps     int      `json:"max_reps"`
	WeightKg    *float64 `json:"weight_kg,omitempty"`
	RestSeconds int      `json:"rest_seconds"`
}

// Plan is the full session plan the player walks through.
type Plan struct {
	WorkoutID int               `json:"workout_id"`
	Exercises []PlannedExercise `json:"exercises"`
}

// SetResult records what the user actually did for one set.
type SetResult struct {
	Reps     int      `json:"reps"`
	WeightKg *float64 `json:"weight_kg,omitempty"`
}

// ExerciseProgress tracks recorded sets and notes for one planned exercise.
type ExerciseProgress struct {
	ExerciseID int         `json:"exercise_id"`
	Sets       []SetResult `json:"sets"`
	Notes      string      `json:"notes,omitempty"`
}

// Machine is the workout player state machine. All timing is derived from
// wall-clock deadlines passed in by the caller, so a machine that missed ticks
// while backgrounded lands in the correct state on the next event.
type Machine struct {
	plan Plan

	phase         Phase
	exerciseIndex int
	setIndex      int
	// restDeadline is the wall-clock end of the current rest period, valid in Resting.
	restDeadline time.Time
	// restRemaining preserves the rest countdown across a pause.
	restRemaining time.Duration
	// prevPhase is the phase to return to on resume, valid in Paused.
	prevPhase Phase

	startedAt   time.Time
	pausedAt    time.Time
	pausedTotal time.Duration

	progress []ExerciseProgress
}

// NewMachine starts a fresh session over the plan.
func NewMachine(plan Plan, now time.Time) *Machine {
	progress := make([]ExerciseProgress, len(plan.Exercises))
	for i, exercise := range plan.Exercises {
		progress[i] = ExerciseProgress{ExerciseID: exercise.ExerciseID, Sets: nil, Notes: ""}
	}
	return &Machine{
		plan:          plan,
		phase:         PhaseExercising,
		exerciseIndex: 0,
		setIndex:      0,
		restDeadline:  time.Time{},
		restRemaining: 0,
		prevPhase:     PhaseExercising,
		startedAt:     now,
		pausedAt:      time.Time{},
		pausedTotal:   0,
		progress:      progress,
	}
}

// CurrentPhase returns the current phase.
func (m *Machine) CurrentPhase() Phase { return m.phase }

// Position returns the current exercise and set indices.
func (m *Machine) Position() (exerciseIndex, setIndex int) {
	return m.exerciseIndex, m.setIndex
}

// SessionPlan returns the session plan.
func (m *Machine) SessionPlan() Plan { return m.plan }

// Progress returns the recorded progress for all exercises.
func (m *Machine) Progress() []ExerciseProgress { return m.progress }

// RestRemaining returns the rest countdown in whole seconds, never negative.
func (m *Machine) RestRemaining(now time.Time) int {
	switch m.phase {
	case PhaseResting:
		return int(max(0, m.restDeadline.Sub(now)) / time.Second)
	case PhasePaused:
		if m.prevPhase == PhaseResting {
			return int(m.restRemaining / time.Second)
		}
		return 0
	case PhaseExercising, PhaseFinished:
		return 0
	default:
		return 0
	}
}

// Elapsed returns the session duration in whole seconds, excluding paused time.
func (m *Machine) Elapsed(now time.Time) int {
	elapsed := now.Sub(m.startedAt) - m.pausedTotal
	if m.phase == PhasePaused {
		elapsed -= now.Sub(m.pausedAt)
	}
	return int(max(0, elapsed) / time.Second)
}

// CompletedSets counts all recorded sets across exercises.
func (m *Machine) CompletedSets() int {
	total := 0
	for _, exercise := range m.progress {
		total += len(exercise.Sets)
	}
	return total
}

// exerciseComplete reports whether all planned sets of exercise i are recorded.
func (m *Machine) exerciseComplete(i int) bool {
	return len(m.progress[i].Sets) >= m.plan.Exercises[i].Sets
}

// Pending returns the names of exercises with unrecorded sets.
func (m *Machine) Pending() []string {
	var pending []string
	for i, exercise := range m.plan.Exercises {
		if !m.exerciseComplete(i) {
			pending = append(pending, exercise.Name)
		}
	}
	return pending
}

// CompleteSet records the current set and advances the session. Entering a rest
// period uses the current exercise's configured rest time as a wall-clock
// deadline. Completing the last set of the last incomplete exercise finishes
// the session.
func (m *Machine) CompleteSet(result SetResult, now time.Time) error {
	if m.phase != PhaseExercising && m.phase != PhaseResting {
		return fmt.Errorf("%w: complete set in phase %s", ErrInvalidTransition, m.phase)
	}
	if len(m.plan.Exercises) == 0 {
		return fmt.Errorf("%w: empty plan", ErrInvalidTransition)
	}

	exercise := m.plan.Exercises[m.exerciseIndex]
	m.progress[m.exerciseIndex].Sets = append(m.progress[m.exerciseIndex].Sets, result)

	if !m.exerciseComplete(m.exerciseIndex) {
		m.setIndex = len(m.progress[m.exerciseIndex].Sets)
		m.enterRestOrExercise(exercise.RestSeconds, now)
		return nil
	}

	next, ok := m.nextIncompleteExercise()
	if !ok {
		m.phase = PhaseFinished
		return nil
	}
	m.exerciseIndex = next
	m.setIndex = len(m.progress[next].Sets)
	m.enterRestOrExercise(exercise.RestSeconds, now)
	return nil
}

func (m *Machine) enterRestOrExercise(restSeconds int, now time.Time) {
	if restSeconds > 0 {
		m.phase = PhaseResting
		m.restDeadline = now.Add(time.Duration(restSeconds) * time.Second)
		return
	}
	m.phase = PhaseExercising
}

func (m *Machine) nextIncompleteExercise() (int, bool) {
	for offset := 1; offset <= len(m.plan.Exercises); offset++ {
		i := (m.exerciseIndex + offset) % len(m.plan.Exercises)
		if !m.exerciseComplete(i) {
			return i, true
		}
	}
	return 0, false
}

// Tick re-evaluates time-driven transitions. It reports whether the state changed.
func (m *Machine) Tick(now time.Time) bool {
	if m.phase == PhaseResting && !now.Before(m.restDeadline) {
		m.phase = PhaseExercising
		m.restDeadline = time.Time{}
		return true
	}
	return false
}

// Skip ends the current rest period immediately.
func (m *Machine) Skip() error {
	if m.phase != PhaseResting {
		return fmt.Errorf("%w: skip in phase %s", ErrInvalidTransition, m.phase)
	}
	m.phase = PhaseExercising
	m.restDeadline = time.Time{}
	return nil
}

// Pause freezes the session. An active rest countdown is captured so resuming
// does not lose the waited time.
func (m *Machine) Pause(now time.Time) error {
	if m.phase == PhasePaused || m.phase == PhaseFinished {
		return fmt.Errorf("%w: pause in phase %s", ErrInvalidTransition, m.phase)
	}
	m.prevPhase = m.phase
	if m.phase == PhaseResting {
		m.restRemaining = max(0, m.restDeadline.Sub(now))
	}
	m.phase = PhasePaused
	m.pausedAt = now
	return nil
}

// Resume returns to the phase active before the pause, re-deriving any rest
// deadline from the preserved remaining time.
func (m *Machine) Resume(now time.Time) error {
	if m.phase != PhasePaused {
		return fmt.Errorf("%w: resume in phase %s", ErrInvalidTransition, m.phase)
	}
	m.pausedTotal += now.Sub(m.pausedAt)
	m.pausedAt = time.Time{}
	m.phase = m.prevPhase
	if m.phase == PhaseResting {
		m.restDeadline = now.Add(m.restRemaining)
		m.restRemaining = 0
	}
	return nil
}

// SelectExercise jumps to the given exercise, continuing from its next
// unrecorded set. A paused session must be resumed first so the paused
// interval stays accounted for.
func (m *Machine) SelectExercise(index int) error {
	if m.phase == PhaseFinished || m.phase == PhasePaused {
		return fmt.Errorf("%w: select exercise in phase %s", ErrInvalidTransition, m.phase)
	}
	if index < 0 || index >= len(m.plan.Exercises) {
		return fmt.Errorf("exercise index %d out of range", index)
	}
	m.exerciseIndex = index
	m.setIndex = min(len(m.progress[index].Sets), max(m.plan.Exercises[index].Sets-1, 0))
	m.phase = PhaseExercising
	m.restDeadline = time.Time{}
	return nil
}

// Finish ends the session. With incomplete exercises it fails with
// ErrPendingExercises unless forced.
func (m *Machine) Finish(force bool) error {
	if m.phase == PhaseFinished {
		return nil
	}
	if pending := m.Pending(); len(pending) > 0 && !force {
		return fmt.Errorf("%w: %s", ErrPendingExercises, strings.Join(pending, ", "))
	}
	m.phase = PhaseFinished
	return nil
}

// SetNotes attaches notes to one exercise's progress.
func (m *Machine) SetNotes(index int, notes string) error {
	if index < 0 || index >= len(m.progress) {
		return fmt.Errorf("exercise index %d out of range", index)
	}
	m.progress[index].Notes = notes
	return nil
}
