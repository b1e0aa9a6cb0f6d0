package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/crm-migrate/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}

	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS organizations (
	id         UUID PRIMARY KEY,
	name       TEXT NOT NULL,
	email      TEXT,
	phone      TEXT,
	website    TEXT,
	segment    TEXT,
	priority   TEXT,
	address    TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_organizations_name ON organizations(lower(name));

CREATE TABLE IF NOT EXISTS contacts (
	id           UUID PRIMARY KEY,
	first_name   TEXT NOT NULL,
	last_name    TEXT NOT NULL,
	email        TEXT,
	phone        TEXT,
	title        TEXT,
	organization TEXT,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_contacts_identity
	ON contacts(lower(first_name), lower(last_name), lower(coalesce(email, '')));

CREATE TABLE IF NOT EXISTS opportunities (
	id           UUID PRIMARY KEY,
	name         TEXT NOT NULL,
	stage        TEXT,
	amount       DOUBLE PRECISION,
	close_date   TIMESTAMPTZ,
	organization TEXT,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_opportunities_identity
	ON opportunities(lower(name), lower(coalesce(organization, '')));

CREATE TABLE IF NOT EXISTS interactions (
	id          UUID PRIMARY KEY,
	kind        TEXT,
	subject     TEXT NOT NULL,
	notes       TEXT,
	occurred_at TIMESTAMPTZ,
	contact     TEXT,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_interactions_identity
	ON interactions(lower(subject), coalesce(occurred_at, 'epoch'::timestamptz), lower(coalesce(contact, '')));
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.pool.Ping(ctx), "postgres: ping")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) CreateOrganization(ctx context.Context, org model.Organization) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO organizations (id, name, email, phone, website, segment, priority, address)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT DO NOTHING`,
		pgID(org.ID), org.Name, pgText(org.Email), pgText(org.Phone), pgText(org.Website),
		pgText(org.Segment), pgText(org.Priority), pgText(org.Address),
	)
	if err != nil {
		return false, eris.Wrap(err, "postgres: insert organization")
	}
	return tag.RowsAffected() > 0, nil
}

func (s *PostgresStore) CreateContact(ctx context.Context, c model.Contact) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO contacts (id, first_name, last_name, email, phone, title, organization)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT DO NOTHING`,
		pgID(c.ID), c.FirstName, c.LastName, pgText(c.Email), pgText(c.Phone),
		pgText(c.Title), pgText(c.Organization),
	)
	if err != nil {
		return false, eris.Wrap(err, "postgres: insert contact")
	}
	return tag.RowsAffected() > 0, nil
}

func (s *PostgresStore) CreateOpportunity(ctx context.Context, o model.Opportunity) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO opportunities (id, name, stage, amount, close_date, organization)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT DO NOTHING`,
		pgID(o.ID), o.Name, pgText(o.Stage), o.Amount, o.CloseDate, pgText(o.Organization),
	)
	if err != nil {
		return false, eris.Wrap(err, "postgres: insert opportunity")
	}
	return tag.RowsAffected() > 0, nil
}

func (s *PostgresStore) CreateInteraction(ctx context.Context, in model.Interaction) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO interactions (id, kind, subject, notes, occurred_at, contact)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT DO NOTHING`,
		pgID(in.ID), pgText(in.Kind), in.Subject, pgText(in.Notes), in.OccurredAt, pgText(in.Contact),
	)
	if err != nil {
		return false, eris.Wrap(err, "postgres: insert interaction")
	}
	return tag.RowsAffected() > 0, nil
}

func (s *PostgresStore) Counts(ctx context.Context) (model.EntityCounts, error) {
	var counts model.EntityCounts
	row := s.pool.QueryRow(ctx, `
		SELECT
			(SELECT count(*) FROM organizations),
			(SELECT count(*) FROM contacts),
			(SELECT count(*) FROM opportunities),
			(SELECT count(*) FROM interactions)`,
	)
	if err := row.Scan(&counts.Organizations, &counts.Contacts, &counts.Opportunities, &counts.Interactions); err != nil {
		return model.EntityCounts{}, eris.Wrap(err, "postgres: count entities")
	}
	return counts, nil
}

func pgID(id string) string {
	if id != "" {
		return id
	}
	return uuid.New().String()
}

func pgText(s string) any {
	if s == "" {
		return nil
	}
	return s
}
