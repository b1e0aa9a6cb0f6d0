// Package store persists migrated CRM entities. Creates are
// conflict-aware: writing a row whose natural key already exists is a
// no-op reported to the caller, not an error.
package store

import (
	"context"

	"github.com/sells-group/crm-migrate/internal/model"
)

// Store defines the persistence interface the migration engine writes to.
// Every Create reports whether a row was actually inserted; false means
// the natural key already existed and the row was skipped.
type Store interface {
	CreateOrganization(ctx context.Context, org model.Organization) (bool, error)
	CreateContact(ctx context.Context, c model.Contact) (bool, error)
	CreateOpportunity(ctx context.Context, o model.Opportunity) (bool, error)
	CreateInteraction(ctx context.Context, in model.Interaction) (bool, error)

	// Counts returns current aggregate row counts per entity table.
	Counts(ctx context.Context) (model.EntityCounts, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
