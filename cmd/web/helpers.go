package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

const maxRequestBodyBytes = 1 << 20

func (app *application) serverError(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.LogAttrs(r.Context(), slog.LevelError, "server error", slog.Any("error", err))
	app.writeJSON(w, r, http.StatusInternalServerError, envelope{"error": "internal server error"})
}

type envelope map[string]any

func (app *application) writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		app.logger.LogAttrs(r.Context(), slog.LevelError, "encode response", slog.Any("error", err))
	}
}

// decodeJSON reads the request body into dst. On failure it sends a 400
// response and returns false.
func (app *application) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		app.writeJSON(w, r, http.StatusBadRequest, envelope{"error": fmt.Sprintf("decode request: %v", err)})
		return false
	}
	return true
}

// parseDateParam parses the "date" path parameter from the request URL.
// Returns the parsed date and true if successful, or zero time and false if parsing fails.
// On failure, sends HTTP 404 response automatically.
func (app *application) parseDateParam(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	dateStr := r.PathValue("date")
	date, err := time.Parse(time.DateOnly, dateStr)
	if err != nil {
		http.NotFound(w, r)
		return time.Time{}, false
	}
	return date, true
}

// parseExerciseIDParam parses the "exerciseID" path parameter from the request URL.
// Returns the parsed exercise ID and true if successful, or zero and false if parsing fails.
// On failure, sends HTTP 404 response automatically.
func (app *application) parseExerciseIDParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	exerciseID, err := strconv.Atoi(r.PathValue("exerciseID"))
	if err != nil {
		http.NotFound(w, r)
		return 0, false
	}
	return exerciseID, true
}

// createUser provisions a fresh user with a default profile.
func (app *application) createUser(ctx context.Context) (int, error) {
	var id int
	err := app.db.ReadWrite.QueryRowContext(ctx, "INSERT INTO users DEFAULT VALUES RETURNING id").Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert user: %w", err)
	}
	if _, err = app.db.ReadWrite.ExecContext(ctx, "INSERT INTO profiles (user_id) VALUES (?)", id); err != nil {
		return 0, fmt.Errorf("insert profile: %w", err)
	}
	return id, nil
}
