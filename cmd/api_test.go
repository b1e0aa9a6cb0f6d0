package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/crm-migrate/internal/migrate"
	"github.com/sells-group/crm-migrate/internal/monitoring"
	"github.com/sells-group/crm-migrate/internal/progress"
	"github.com/sells-group/crm-migrate/internal/store"
)

func newTestRouter(t *testing.T, defaultFile string) (*chi.Mux, *migrate.Controller) {
	t.Helper()

	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "crm.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, st.Migrate(context.Background()))

	b := progress.NewBroadcaster(progress.WithPingInterval(time.Hour))
	ctrl := migrate.NewController(st, b, migrate.Config{})
	collector := monitoring.NewCollector(st, ctrl.Registry())

	return buildRouter(ctrl, collector, b, defaultFile), ctrl
}

func postControl(t *testing.T, router http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/migration", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRouter_Health(t *testing.T) {
	router, _ := newTestRouter(t, "")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeBody(t, rec)["status"])
}

func TestRouter_StatusWhenIdle(t *testing.T) {
	router, _ := newTestRouter(t, "")

	rec := postControl(t, router, `{"action":"status"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, false, body["active"])
	assert.Equal(t, "no migration running", body["message"])
}

func TestRouter_PauseAcknowledgedUnsupported(t *testing.T) {
	router, _ := newTestRouter(t, "")

	rec := postControl(t, router, `{"action":"pause"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, false, body["supported"])
	assert.NotEmpty(t, body["message"])
}

func TestRouter_AbortWithoutRun(t *testing.T) {
	router, _ := newTestRouter(t, "")

	rec := postControl(t, router, `{"action":"abort"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_UnknownAction(t *testing.T) {
	router, _ := newTestRouter(t, "")

	rec := postControl(t, router, `{"action":"restart"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_InvalidBody(t *testing.T) {
	router, _ := newTestRouter(t, "")

	rec := postControl(t, router, `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_StartRequiresFile(t *testing.T) {
	router, _ := newTestRouter(t, "")

	rec := postControl(t, router, `{"action":"start"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_StartAccepted(t *testing.T) {
	router, ctrl := newTestRouter(t, "")

	// The workbook does not exist; the run is accepted and fails
	// asynchronously, which frees the slot again.
	rec := postControl(t, router, `{"action":"start","file":"missing.xlsx"}`)
	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.NotEmpty(t, decodeBody(t, rec)["id"])

	require.Eventually(t, func() bool { return ctrl.Registry().Active() == nil },
		2*time.Second, 10*time.Millisecond)
}

func TestRouter_StartConflict(t *testing.T) {
	router, ctrl := newTestRouter(t, "")

	// Occupy the single-flight slot directly.
	holder := migrate.NewExecutor(nil, nil, ctrl.Registry(), "busy.xlsx", migrate.Config{})
	require.True(t, ctrl.Registry().TryInsert(holder))
	defer ctrl.Registry().Remove(holder.RunID())

	rec := postControl(t, router, `{"action":"start","file":"other.xlsx"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRouter_Stats(t *testing.T) {
	router, _ := newTestRouter(t, "")

	req := httptest.NewRequest(http.MethodGet, "/api/migration/stats", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, false, body["migration_active"])
	assert.Contains(t, body, "counts")
}
