package main

import (
	"errors"
	"net/http"

	"github.com/repwise/repwise/internal/contexthelpers"
	"github.com/repwise/repwise/internal/player"
)

type playerStartRequest struct {
	WorkoutID int `json:"workout_id"`
}

// playerStartPOST begins or resumes a workout session for the given date.
func (app *application) playerStartPOST(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := contexthelpers.CurrentUserID(ctx)

	date, ok := app.parseDateParam(w, r)
	if !ok {
		return
	}
	var req playerStartRequest
	if !app.decodeJSON(w, r, &req) {
		return
	}

	view, err := app.playerService.Start(ctx, userID, req.WorkoutID, date)
	switch {
	case errors.Is(err, player.ErrNotFound):
		app.writeJSON(w, r, http.StatusNotFound, envelope{"error": "workout not found"})
	case err != nil:
		app.serverError(w, r, err)
	default:
		app.writeJSON(w, r, http.StatusOK, view)
	}
}

// playerGET returns the current session state, catching up on any rest
// deadline that passed since the last request.
func (app *application) playerGET(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := contexthelpers.CurrentUserID(ctx)

	date, ok := app.parseDateParam(w, r)
	if !ok {
		return
	}

	view, err := app.playerService.Get(ctx, userID, date)
	switch {
	case errors.Is(err, player.ErrNotFound):
		app.writeJSON(w, r, http.StatusNotFound, envelope{"error": "no session for date"})
	case err != nil:
		app.serverError(w, r, err)
	default:
		app.writeJSON(w, r, http.StatusOK, view)
	}
}

// playerEventPOST applies one player event to the stored session.
func (app *application) playerEventPOST(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := contexthelpers.CurrentUserID(ctx)

	date, ok := app.parseDateParam(w, r)
	if !ok {
		return
	}
	var event player.Event
	if !app.decodeJSON(w, r, &event) {
		return
	}

	view, err := app.playerService.Apply(ctx, userID, date, event)
	switch {
	case errors.Is(err, player.ErrNotFound):
		app.writeJSON(w, r, http.StatusNotFound, envelope{"error": "no session for date"})
	case errors.Is(err, player.ErrPendingExercises):
		app.writeJSON(w, r, http.StatusConflict, envelope{"error": err.Error()})
	case errors.Is(err, player.ErrInvalidTransition):
		app.writeJSON(w, r, http.StatusConflict, envelope{"error": err.Error()})
	case err != nil:
		app.serverError(w, r, err)
	default:
		app.writeJSON(w, r, http.StatusOK, view)
	}
}

// playerResyncPOST merges a client-cached snapshot with the stored one. The
// client sends whatever it last persisted locally and receives the winner.
func (app *application) playerResyncPOST(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := contexthelpers.CurrentUserID(ctx)

	date, ok := app.parseDateParam(w, r)
	if !ok {
		return
	}
	var local player.Snapshot
	if !app.decodeJSON(w, r, &local) {
		return
	}

	view, err := app.playerService.Resync(ctx, userID, date, local)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, view)
}
