package main

import (
	"net/http"
	"testing"
	"time"

	"github.com/repwise/repwise/internal/player"
)

func Test_player_lifecycle(t *testing.T) {
	ts := newTestServer(t)
	ctx := t.Context()

	userID := ts.establishSession(t)
	workoutID, _ := seedWorkout(ctx, t, ts.db, userID)

	date := time.Now().Format(time.DateOnly)
	base := "/api/workouts/" + date + "/player"

	var view player.View
	if status := ts.post(t, base+"/start", playerStartRequest{WorkoutID: workoutID}, &view); status != http.StatusOK {
		t.Fatalf("start status = %d, want 200", status)
	}
	if view.Phase != player.PhaseExercising {
		t.Fatalf("Phase = %v after start, want exercising", view.Phase)
	}
	if len(view.Plan.Exercises) != 1 {
		t.Fatalf("got %d planned exercises, want 1", len(view.Plan.Exercises))
	}

	event := player.Event{Action: player.ActionCompleteSet, Reps: 10}
	if status := ts.post(t, base+"/events", event, &view); status != http.StatusOK {
		t.Fatalf("complete_set status = %d, want 200", status)
	}
	if view.CompletedSets != 1 {
		t.Fatalf("CompletedSets = %d, want 1", view.CompletedSets)
	}

	// A fresh GET sees the persisted state.
	if status := ts.get(t, base, &view); status != http.StatusOK {
		t.Fatalf("get status = %d, want 200", status)
	}
	if view.CompletedSets != 1 {
		t.Errorf("CompletedSets = %d after reload, want 1", view.CompletedSets)
	}

	// The plan has two sets, so the second completion finishes the session.
	if status := ts.post(t, base+"/events", event, &view); status != http.StatusOK {
		t.Fatalf("final complete_set status = %d, want 200", status)
	}
	if view.Phase != player.PhaseFinished {
		t.Fatalf("Phase = %v after final set, want finished", view.Phase)
	}

	var setsCompleted int
	if err := ts.db.ReadOnly.QueryRowContext(ctx,
		"SELECT sets_completed FROM session_records WHERE user_id = ? AND workout_id = ?",
		userID, workoutID).Scan(&setsCompleted); err != nil {
		t.Fatalf("read back session record: %v", err)
	}
	if setsCompleted != 2 {
		t.Errorf("sets_completed = %d, want 2", setsCompleted)
	}

	// The snapshot is gone once the session is recorded.
	if status := ts.get(t, base, nil); status != http.StatusNotFound {
		t.Errorf("get after finish status = %d, want 404", status)
	}
}

func Test_playerGET_noSession(t *testing.T) {
	ts := newTestServer(t)
	ts.establishSession(t)

	date := time.Now().Format(time.DateOnly)
	if status := ts.get(t, "/api/workouts/"+date+"/player", nil); status != http.StatusNotFound {
		t.Errorf("status = %d, want 404", status)
	}
}

func Test_playerStartPOST_unknownWorkout(t *testing.T) {
	ts := newTestServer(t)
	ts.establishSession(t)

	date := time.Now().Format(time.DateOnly)
	status := ts.post(t, "/api/workouts/"+date+"/player/start", playerStartRequest{WorkoutID: 12345}, nil)
	if status != http.StatusNotFound {
		t.Errorf("status = %d, want 404", status)
	}
}

func Test_playerEventPOST_finishPendingConflict(t *testing.T) {
	ts := newTestServer(t)
	ctx := t.Context()

	userID := ts.establishSession(t)
	workoutID, _ := seedWorkout(ctx, t, ts.db, userID)

	date := time.Now().Format(time.DateOnly)
	base := "/api/workouts/" + date + "/player"

	if status := ts.post(t, base+"/start", playerStartRequest{WorkoutID: workoutID}, nil); status != http.StatusOK {
		t.Fatalf("start status = %d, want 200", status)
	}

	status := ts.post(t, base+"/events", player.Event{Action: player.ActionFinish}, nil)
	if status != http.StatusConflict {
		t.Fatalf("finish with pending exercises status = %d, want 409", status)
	}

	var view player.View
	if status = ts.post(t, base+"/events", player.Event{Action: player.ActionFinish, Force: true}, &view); status != http.StatusOK {
		t.Fatalf("forced finish status = %d, want 200", status)
	}
	if view.Phase != player.PhaseFinished {
		t.Errorf("Phase = %v after forced finish, want finished", view.Phase)
	}
}

func Test_playerResyncPOST(t *testing.T) {
	ts := newTestServer(t)
	ctx := t.Context()

	userID := ts.establishSession(t)
	workoutID, _ := seedWorkout(ctx, t, ts.db, userID)

	date := time.Now().Format(time.DateOnly)
	base := "/api/workouts/" + date + "/player"

	var view player.View
	if status := ts.post(t, base+"/start", playerStartRequest{WorkoutID: workoutID}, &view); status != http.StatusOK {
		t.Fatalf("start status = %d, want 200", status)
	}

	// Build a local snapshot one completed set ahead of the stored one.
	now := time.Now()
	machine := player.NewMachine(view.Plan, now)
	if err := machine.CompleteSet(player.SetResult{Reps: 9}, now); err != nil {
		t.Fatalf("CompleteSet: %v", err)
	}
	local := machine.Snapshot(now)

	if status := ts.post(t, base+"/resync", local, &view); status != http.StatusOK {
		t.Fatalf("resync status = %d, want 200", status)
	}
	if view.CompletedSets != 1 {
		t.Errorf("CompletedSets = %d after resync, want the local snapshot to win with 1", view.CompletedSets)
	}
}
