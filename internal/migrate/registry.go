// Package migrate runs the spreadsheet-to-CRM migration pipeline: one
// cancellable run at a time, sequential sheet-then-row processing, with
// progress fanned out through the broadcaster.
package migrate

import (
	"sync"

	"github.com/rotisserie/eris"
)

// ErrRunActive is returned when a start is attempted while another run
// holds the active slot.
var ErrRunActive = eris.New("migrate: a migration run is already active")

// ErrNoActiveRun is returned when an abort or similar control call finds
// no active run.
var ErrNoActiveRun = eris.New("migrate: no active migration run")

// Registry owns the single process-wide active-run slot. TryInsert and
// Remove are atomic with respect to each other, so the single-flight
// check lives here and nowhere else.
type Registry struct {
	mu     sync.Mutex
	active *Executor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// TryInsert atomically claims the active slot for exec. Returns false,
// with no side effects, if another run already holds it.
func (r *Registry) TryInsert(exec *Executor) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active != nil {
		return false
	}
	r.active = exec
	return true
}

// Remove releases the slot if it is held by the run with the given ID.
// Returns whether anything was removed.
func (r *Registry) Remove(runID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active == nil || r.active.RunID() != runID {
		return false
	}
	r.active = nil
	return true
}

// Active returns the executor currently holding the slot, or nil.
func (r *Registry) Active() *Executor {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}
