package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/crm-migrate/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS organizations (
	id       TEXT PRIMARY KEY,
	name     TEXT NOT NULL,
	email    TEXT,
	phone    TEXT,
	website  TEXT,
	segment  TEXT,
	priority TEXT,
	address  TEXT,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_organizations_name ON organizations(lower(name));

CREATE TABLE IF NOT EXISTS contacts (
	id           TEXT PRIMARY KEY,
	first_name   TEXT NOT NULL,
	last_name    TEXT NOT NULL,
	email        TEXT,
	phone        TEXT,
	title        TEXT,
	organization TEXT,
	created_at   DATETIME NOT NULL DEFAULT (datetime('now'))
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_contacts_identity
	ON contacts(lower(first_name), lower(last_name), lower(coalesce(email, '')));

CREATE TABLE IF NOT EXISTS opportunities (
	id           TEXT PRIMARY KEY,
	name         TEXT NOT NULL,
	stage        TEXT,
	amount       REAL,
	close_date   DATETIME,
	organization TEXT,
	created_at   DATETIME NOT NULL DEFAULT (datetime('now'))
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_opportunities_identity
	ON opportunities(lower(name), lower(coalesce(organization, '')));

CREATE TABLE IF NOT EXISTS interactions (
	id          TEXT PRIMARY KEY,
	kind        TEXT,
	subject     TEXT NOT NULL,
	notes       TEXT,
	occurred_at DATETIME,
	contact     TEXT,
	created_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_interactions_identity
	ON interactions(lower(subject), coalesce(occurred_at, ''), lower(coalesce(contact, '')));
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.db.PingContext(ctx), "sqlite: ping")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateOrganization(ctx context.Context, org model.Organization) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO organizations (id, name, email, phone, website, segment, priority, address)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		newID(org.ID), org.Name, nullable(org.Email), nullable(org.Phone), nullable(org.Website),
		nullable(org.Segment), nullable(org.Priority), nullable(org.Address),
	)
	if err != nil {
		return false, eris.Wrap(err, "sqlite: insert organization")
	}
	return inserted(res)
}

func (s *SQLiteStore) CreateContact(ctx context.Context, c model.Contact) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO contacts (id, first_name, last_name, email, phone, title, organization)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		newID(c.ID), c.FirstName, c.LastName, nullable(c.Email), nullable(c.Phone),
		nullable(c.Title), nullable(c.Organization),
	)
	if err != nil {
		return false, eris.Wrap(err, "sqlite: insert contact")
	}
	return inserted(res)
}

func (s *SQLiteStore) CreateOpportunity(ctx context.Context, o model.Opportunity) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO opportunities (id, name, stage, amount, close_date, organization)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		newID(o.ID), o.Name, nullable(o.Stage), o.Amount, o.CloseDate, nullable(o.Organization),
	)
	if err != nil {
		return false, eris.Wrap(err, "sqlite: insert opportunity")
	}
	return inserted(res)
}

func (s *SQLiteStore) CreateInteraction(ctx context.Context, in model.Interaction) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO interactions (id, kind, subject, notes, occurred_at, contact)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		newID(in.ID), nullable(in.Kind), in.Subject, nullable(in.Notes), in.OccurredAt, nullable(in.Contact),
	)
	if err != nil {
		return false, eris.Wrap(err, "sqlite: insert interaction")
	}
	return inserted(res)
}

func (s *SQLiteStore) Counts(ctx context.Context) (model.EntityCounts, error) {
	var counts model.EntityCounts
	for _, q := range []struct {
		table string
		dest  *int
	}{
		{"organizations", &counts.Organizations},
		{"contacts", &counts.Contacts},
		{"opportunities", &counts.Opportunities},
		{"interactions", &counts.Interactions},
	} {
		row := s.db.QueryRowContext(ctx, `SELECT count(*) FROM `+q.table)
		if err := row.Scan(q.dest); err != nil {
			return model.EntityCounts{}, eris.Wrapf(err, "sqlite: count %s", q.table)
		}
	}
	return counts, nil
}

// helpers

func newID(id string) string {
	if id != "" {
		return id
	}
	return uuid.New().String()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func inserted(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, eris.Wrap(err, "rows affected")
	}
	return n > 0, nil
}
