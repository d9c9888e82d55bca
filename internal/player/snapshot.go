package player

import (
	"encoding/json"
	"fmt"
	"time"
)

// Snapshot is the serializable form of a running session. It is written on
// every mutating transition and used to rehydrate the machine after a reload.
type Snapshot struct {
	Plan          Plan               `json:"plan"`
	Phase         Phase              `json:"phase"`
	ExerciseIndex int                `json:"exercise_index"`
	SetIndex      int                `json:"set_index"`
	RestDeadline  time.Time          `json:"rest_deadline,omitzero"`
	RestRemaining int                `json:"rest_remaining_seconds"`
	PrevPhase     Phase              `json:"prev_phase"`
	StartedAt     time.Time          `json:"started_at"`
	PausedAt      time.Time          `json:"paused_at,omitzero"`
	PausedSeconds int                `json:"paused_seconds"`
	Progress      []ExerciseProgress `json:"progress"`
	CompletedSets int                `json:"completed_sets"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// Snapshot captures the machine's current state.
func (m *Machine) Snapshot(now time.Time) Snapshot {
	return Snapshot{
		Plan:          m.plan,
		Phase:         m.phase,
		ExerciseIndex: m.exerciseIndex,
		SetIndex:      m.setIndex,
		RestDeadline:  m.restDeadline,
		RestRemaining: int(m.restRemaining / time.Second),
		PrevPhase:     m.prevPhase,
		StartedAt:     m.startedAt,
		PausedAt:      m.pausedAt,
		PausedSeconds: int(m.pausedTotal / time.Second),
		Progress:      m.progress,
		CompletedSets: m.CompletedSets(),
		UpdatedAt:     now,
	}
}

// Rehydrate rebuilds a machine from a snapshot.
func Rehydrate(snapshot Snapshot) *Machine {
	progress := snapshot.Progress
	if len(progress) != len(snapshot.Plan.Exercises) {
		progress = make([]ExerciseProgress, len(snapshot.Plan.Exercises))
		for i, exercise := range snapshot.Plan.Exercises {
			progress[i] = ExerciseProgress{ExerciseID: exercise.ExerciseID, Sets: nil, Notes: ""}
		}
		for _, recorded := range snapshot.Progress {
			for i := range progress {
				if progress[i].ExerciseID == recorded.ExerciseID {
					progress[i] = recorded
				}
			}
		}
	}
	return &Machine{
		plan:          snapshot.Plan,
		phase:         snapshot.Phase,
		exerciseIndex: snapshot.ExerciseIndex,
		setIndex:      snapshot.SetIndex,
		restDeadline:  snapshot.RestDeadline,
		restRemaining: time.Duration(snapshot.RestRemaining) * time.Second,
		prevPhase:     snapshot.PrevPhase,
		startedAt:     snapshot.StartedAt,
		pausedAt:      snapshot.PausedAt,
		pausedTotal:   time.Duration(snapshot.PausedSeconds) * time.Second,
		progress:      progress,
	}
}

// Reconcile picks the authoritative snapshot when two sources disagree, such as
// a server-side copy and a locally cached one. More completed sets win; ties go
// to the later update.
func Reconcile(a, b Snapshot) Snapshot {
	if a.CompletedSets != b.CompletedSets {
		if a.CompletedSets > b.CompletedSets {
			return a
		}
		return b
	}
	if b.UpdatedAt.After(a.UpdatedAt) {
		return b
	}
	return a
}

// Encode serializes the snapshot for storage.
func (s Snapshot) Encode() ([]byte, error) {
	payload, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return payload, nil
}

// DecodeSnapshot parses a stored snapshot payload.
func DecodeSnapshot(payload []byte) (Snapshot, error) {
	var snapshot Snapshot
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		return Snapshot{}, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return snapshot, nil
}
