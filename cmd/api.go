package main

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/crm-migrate/internal/migrate"
	"github.com/sells-group/crm-migrate/internal/monitoring"
	"github.com/sells-group/crm-migrate/internal/progress"
)

// controlRequest is the action-dispatched body of POST /api/migration.
type controlRequest struct {
	Action string `json:"action"`
	File   string `json:"file,omitempty"`
}

// buildRouter assembles the HTTP control surface: the action-dispatched
// control operation, the statistics operation, the SSE progress channel,
// and a health probe.
func buildRouter(ctrl *migrate.Controller, collector *monitoring.Collector, b *progress.Broadcaster, defaultFile string) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/api/migration", func(w http.ResponseWriter, req *http.Request) {
		var body controlRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}

		switch body.Action {
		case "start":
			file := body.File
			if file == "" {
				file = defaultFile
			}
			if file == "" {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "file is required"})
				return
			}

			run, err := ctrl.Start(req.Context(), file)
			if eris.Is(err, migrate.ErrRunActive) {
				writeJSON(w, http.StatusConflict, map[string]string{"error": "a migration run is already active"})
				return
			}
			if err != nil {
				zap.L().Error("start migration", zap.Error(err))
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to start migration"})
				return
			}
			writeJSON(w, http.StatusAccepted, map[string]string{
				"message": "migration started",
				"id":      run.ID,
			})

		case "pause":
			message, supported := ctrl.Pause()
			writeJSON(w, http.StatusOK, map[string]any{
				"message":   message,
				"supported": supported,
			})

		case "abort":
			run, err := ctrl.Abort()
			if eris.Is(err, migrate.ErrNoActiveRun) {
				writeJSON(w, http.StatusNotFound, map[string]string{"error": "no active migration run"})
				return
			}
			writeJSON(w, http.StatusOK, map[string]string{
				"message": "abort requested for run " + run.ID,
			})

		case "status":
			active, run := ctrl.Status()
			message := "no migration running"
			if active {
				message = "migration " + run.ID + " is " + string(run.Status)
			}
			writeJSON(w, http.StatusOK, map[string]any{
				"active":  active,
				"message": message,
			})

		default:
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown action"})
		}
	})

	r.Get("/api/migration/stats", func(w http.ResponseWriter, req *http.Request) {
		ctx, cancel := context.WithTimeout(req.Context(), 10*time.Second)
		defer cancel()

		snap, err := collector.Collect(ctx)
		if err != nil {
			zap.L().Error("collect stats", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to collect statistics"})
			return
		}
		writeJSON(w, http.StatusOK, snap)
	})

	r.Get("/api/migration/events", progress.SSEHandler(b).ServeHTTP)

	return r
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
