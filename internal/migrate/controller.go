package migrate

import (
	"context"

	"github.com/sells-group/crm-migrate/internal/model"
	"github.com/sells-group/crm-migrate/internal/progress"
	"github.com/sells-group/crm-migrate/internal/store"
)

// Controller is the thin control surface over the executor: start,
// pause, abort, and status. It enforces nothing itself; the single-flight
// invariant belongs to the registry.
type Controller struct {
	store       store.Store
	broadcaster *progress.Broadcaster
	registry    *Registry
	cfg         Config
}

// NewController wires a controller over the given store and broadcaster.
func NewController(st store.Store, b *progress.Broadcaster, cfg Config) *Controller {
	return &Controller{
		store:       st,
		broadcaster: b,
		registry:    NewRegistry(),
		cfg:         cfg,
	}
}

// Registry exposes the active-run registry, mainly for status queries.
func (c *Controller) Registry() *Registry {
	return c.registry
}

// Start creates a run for the workbook file and begins asynchronous
// processing, returning immediately. Returns ErrRunActive, with no side
// effects, if a run is already active.
func (c *Controller) Start(ctx context.Context, file string) (model.MigrationRun, error) {
	exec := NewExecutor(c.store, c.broadcaster, c.registry, file, c.cfg)
	if err := exec.Start(ctx); err != nil {
		return model.MigrationRun{}, err
	}
	return exec.Status(), nil
}

// Pause is acknowledged but not supported: there is no durable cursor to
// park the loop on. Callers must not advertise it as functional.
func (c *Controller) Pause() (string, bool) {
	return "pause is not supported; the active run continues", false
}

// Abort signals the active run's cancellation flag. Returns ErrNoActiveRun
// if nothing is active.
func (c *Controller) Abort() (model.MigrationRun, error) {
	exec := c.registry.Active()
	if exec == nil {
		return model.MigrationRun{}, ErrNoActiveRun
	}
	exec.Abort()
	return exec.Status(), nil
}

// Status reports whether a run is active, and its snapshot when one is.
func (c *Controller) Status() (bool, model.MigrationRun) {
	exec := c.registry.Active()
	if exec == nil {
		return false, model.MigrationRun{Status: model.RunStatusIdle}
	}
	return true, exec.Status()
}
