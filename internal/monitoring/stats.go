// Package monitoring reports point-in-time statistics for clients that
// cannot hold a push connection open.
package monitoring

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/crm-migrate/internal/migrate"
	"github.com/sells-group/crm-migrate/internal/model"
	"github.com/sells-group/crm-migrate/internal/store"
)

// StatsSnapshot is a point-in-time view of the target tables and the
// migration engine.
type StatsSnapshot struct {
	Counts          model.EntityCounts `json:"counts"`
	MigrationActive bool               `json:"migration_active"`
	CollectedAt     time.Time          `json:"collected_at"`
}

// Collector gathers stats from the store and the run registry.
type Collector struct {
	store    store.Store
	registry *migrate.Registry
}

// NewCollector creates a stats collector.
func NewCollector(st store.Store, reg *migrate.Registry) *Collector {
	return &Collector{store: st, registry: reg}
}

// Collect returns the current aggregate entity counts plus the
// active-run flag.
func (c *Collector) Collect(ctx context.Context) (*StatsSnapshot, error) {
	counts, err := c.store.Counts(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "monitoring: count entities")
	}

	return &StatsSnapshot{
		Counts:          counts,
		MigrationActive: c.registry.Active() != nil,
		CollectedAt:     time.Now().UTC(),
	}, nil
}
