package main

import (
	"errors"
	"net/http"

	"github.com/repwise/repwise/internal/analysis"
	"github.com/repwise/repwise/internal/contexthelpers"
)

// analysisGET runs the full analysis pipeline over the current user's history
// and returns metrics, balance, alignments, adjustments and the summary.
func (app *application) analysisGET(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := contexthelpers.CurrentUserID(ctx)

	result, err := app.analysisService.Analyze(ctx, userID)
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	app.writeJSON(w, r, http.StatusOK, result)
}

type applyAdjustmentsRequest struct {
	Adjustments []analysis.ApplyRequest `json:"adjustments"`
}

type applyAdjustmentResult struct {
	Applied bool   `json:"applied"`
	Error   string `json:"error,omitempty"`
}

// adjustmentsApplyPOST applies a batch of adjustments. Each adjustment is
// applied independently so one failure does not abort the rest.
func (app *application) adjustmentsApplyPOST(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := contexthelpers.CurrentUserID(ctx)

	var req applyAdjustmentsRequest
	if !app.decodeJSON(w, r, &req) {
		return
	}
	if len(req.Adjustments) == 0 {
		app.writeJSON(w, r, http.StatusBadRequest, envelope{"error": "no adjustments given"})
		return
	}

	results := make([]applyAdjustmentResult, len(req.Adjustments))
	for i, adjustment := range req.Adjustments {
		err := app.analysisService.ApplyAdjustment(ctx, userID, adjustment)
		switch {
		case err == nil:
			results[i] = applyAdjustmentResult{Applied: true}
		case errors.Is(err, analysis.ErrNotFound):
			results[i] = applyAdjustmentResult{Error: "workout or exercise not found"}
		default:
			results[i] = applyAdjustmentResult{Error: err.Error()}
		}
	}

	app.writeJSON(w, r, http.StatusOK, envelope{"results": results})
}
