package main

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/repwise/repwise/internal/analysis"
	"github.com/repwise/repwise/internal/contexthelpers"
	"github.com/yuin/goldmark"
)

// formatFloat formats a float to remove trailing zeros and unnecessary precision.
// This handles the floating point rounding errors like 60.900000000000006.
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func (app *application) renderMarkdownToHTML(ctx context.Context, markdown string) template.HTML {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(markdown), &buf); err != nil {
		app.logger.LogAttrs(ctx, slog.LevelError, "render markdown", slog.Any("error", err))
		return template.HTML(template.HTMLEscapeString(markdown)) //nolint:gosec // escaped above.
	}
	return template.HTML(buf.String()) //nolint:gosec // goldmark escapes raw HTML by default.
}

func (app *application) templateFuncs(ctx context.Context) template.FuncMap {
	nonce := fmt.Sprintf("nonce=\"%s\"", contexthelpers.CSPNonce(ctx))
	return template.FuncMap{
		"nonce": func() template.HTMLAttr {
			return template.HTMLAttr(nonce) //nolint:gosec // we trust the nonce since it's not provided by user.
		},
		"mdToHTML": func(markdown string) template.HTML {
			return app.renderMarkdownToHTML(ctx, markdown)
		},
		"formatFloat": formatFloat,
	}
}

// render renders the named template from cmd/web/templates and writes it to
// the response writer.
func (app *application) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	t, err := template.New(name).Funcs(app.templateFuncs(r.Context())).ParseFS(app.templateFS, name+".gohtml")
	if err != nil {
		app.serverError(w, r, fmt.Errorf("parse template %s: %w", name, err))
		return
	}

	buf := new(bytes.Buffer)
	if err = t.ExecuteTemplate(buf, name, data); err != nil {
		app.serverError(w, r, fmt.Errorf("execute template %s: %w", name, err))
		return
	}

	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// priorityGroup collects the adjustments sharing one priority for the report.
type priorityGroup struct {
	Priority    analysis.Priority
	Adjustments []analysis.Adjustment
}

type reportTemplateData struct {
	InsufficientData bool
	Summary          analysis.Summary
	Groups           []priorityGroup
	Alignments       []analysis.WorkoutAlignment
}

// reportGET renders the adjustment report grouped by priority.
func (app *application) reportGET(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := contexthelpers.CurrentUserID(ctx)

	result, err := app.analysisService.Analyze(ctx, userID)
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	order := []analysis.Priority{
		analysis.PriorityCritical,
		analysis.PriorityHigh,
		analysis.PriorityMedium,
		analysis.PriorityLow,
	}
	var groups []priorityGroup
	for _, priority := range order {
		var adjustments []analysis.Adjustment
		for _, adjustment := range result.Adjustments {
			if adjustment.Priority == priority {
				adjustments = append(adjustments, adjustment)
			}
		}
		if len(adjustments) > 0 {
			groups = append(groups, priorityGroup{Priority: priority, Adjustments: adjustments})
		}
	}

	data := reportTemplateData{
		InsufficientData: result.InsufficientData,
		Summary:          result.Summary,
		Groups:           groups,
		Alignments:       result.Alignments,
	}
	app.render(w, r, http.StatusOK, "report", data)
}
