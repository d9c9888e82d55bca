package main

import (
	"errors"
	"net/http"
	"strings"

	"github.com/repwise/repwise/internal/catalog"
)

// exercisesGET lists the public exercise catalog.
func (app *application) exercisesGET(w http.ResponseWriter, r *http.Request) {
	exercises, err := app.catalogService.List(r.Context())
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, envelope{"exercises": exercises})
}

func (app *application) exerciseGET(w http.ResponseWriter, r *http.Request) {
	exerciseID, ok := app.parseExerciseIDParam(w, r)
	if !ok {
		return
	}

	exercise, err := app.catalogService.Get(r.Context(), exerciseID)
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		app.writeJSON(w, r, http.StatusNotFound, envelope{"error": "exercise not found"})
	case err != nil:
		app.serverError(w, r, err)
	default:
		app.writeJSON(w, r, http.StatusOK, exercise)
	}
}

type createExerciseRequest struct {
	Name string `json:"name"`
}

// exerciseCreatePOST adds a new exercise to the catalog, generating its
// description content when an AI key is configured.
func (app *application) exerciseCreatePOST(w http.ResponseWriter, r *http.Request) {
	var req createExerciseRequest
	if !app.decodeJSON(w, r, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		app.writeJSON(w, r, http.StatusBadRequest, envelope{"error": "name is required"})
		return
	}

	exercise, err := app.catalogService.CreateExercise(r.Context(), req.Name)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusCreated, exercise)
}

func (app *application) muscleGroupsGET(w http.ResponseWriter, r *http.Request) {
	groups, err := app.catalogService.ListMuscleGroups(r.Context())
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, envelope{"muscle_groups": groups})
}
