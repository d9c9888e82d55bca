package main

import (
	"net/http"
)

func (app *application) routes() *http.ServeMux {
	mux := http.NewServeMux()

	var (
		shared = func(next http.Handler) http.Handler {
			return app.logRequest(secureHeaders(app.crossOriginProtection(commonContext(next))))
		}
		noAuth = func(next http.Handler) http.Handler {
			return app.recoverPanic(shared(next))
		}
		session = func(next http.Handler) http.Handler {
			return app.recoverPanic(noCache(app.sessionManager.LoadAndSave(
				app.identifyUser(shared(next)))))
		}
	)

	mux.Handle("GET /api/analysis", session(http.HandlerFunc(app.analysisGET)))
	mux.Handle("POST /api/adjustments/apply", session(http.HandlerFunc(app.adjustmentsApplyPOST)))

	mux.Handle("POST /api/workouts/{date}/player/start", session(http.HandlerFunc(app.playerStartPOST)))
	mux.Handle("GET /api/workouts/{date}/player", session(http.HandlerFunc(app.playerGET)))
	mux.Handle("POST /api/workouts/{date}/player/events", session(http.HandlerFunc(app.playerEventPOST)))
	mux.Handle("POST /api/workouts/{date}/player/resync", session(http.HandlerFunc(app.playerResyncPOST)))

	mux.Handle("GET /api/exercises", session(http.HandlerFunc(app.exercisesGET)))
	mux.Handle("GET /api/exercises/{exerciseID}", session(http.HandlerFunc(app.exerciseGET)))
	mux.Handle("POST /api/exercises", session(http.HandlerFunc(app.exerciseCreatePOST)))
	mux.Handle("GET /api/muscle-groups", session(http.HandlerFunc(app.muscleGroupsGET)))

	mux.Handle("GET /report", session(http.HandlerFunc(app.reportGET)))

	mux.Handle("GET /api/healthy", noAuth(http.HandlerFunc(app.healthy)))

	return mux
}
