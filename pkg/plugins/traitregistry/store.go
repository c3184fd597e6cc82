package traitregistry

import (
	"context"
	"database/sql"
	"time"

	"github.com/arthur-debert/imgrename/pkg/errors"
	"github.com/google/uuid"

	// registers the "sqlite" driver
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS line (
	name       TEXT PRIMARY KEY,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS image (
	id          TEXT PRIMARY KEY,
	line        TEXT NOT NULL REFERENCES line(name),
	rank        INTEGER NOT NULL,
	session     TEXT NOT NULL,
	source      TEXT NOT NULL,
	destination TEXT NOT NULL DEFAULT '',
	created_by  TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL,
	created_at  TIMESTAMP NOT NULL,
	UNIQUE (line, rank)
);

CREATE INDEX IF NOT EXISTS idx_image_session ON image (session, status);
`

const (
	// StatusProvisional records are reserved for a row still being copied
	StatusProvisional = "provisional"
	// StatusCommitted records belong to a renamed file
	StatusCommitted = "committed"
)

// Record is one image in the registry
type Record struct {
	ID          string
	Line        string
	Rank        int
	Session     string
	Source      string
	Destination string
	CreatedBy   string
	Status      string
	CreatedAt   time.Time
}

// Store is the registry database
type Store struct {
	db  *sql.DB
	dsn string
}

// Open opens (and if needed creates) the registry at dsn
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, dbError(err, dsn, "cannot open trait registry")
	}
	// one connection keeps per-connection pragmas in effect and serialises writers
	db.SetMaxOpenConns(1)

	s := &Store{db: db, dsn: dsn}
	if err := s.init(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return dbError(err, s.dsn, "cannot connect to trait registry")
	}
	if _, err := s.db.ExecContext(ctx, "PRAGMA busy_timeout = 5000; PRAGMA foreign_keys = ON;"); err != nil {
		return dbError(err, s.dsn, "cannot configure trait registry")
	}
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return dbError(err, s.dsn, "cannot create trait registry schema")
	}
	return nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database is reachable
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return dbError(err, s.dsn, "trait registry unreachable")
	}
	return nil
}

// AddLine registers a line; registering an existing line is a no-op
func (s *Store) AddLine(ctx context.Context, name string) error {
	if _, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO line (name) VALUES (?)`, name); err != nil {
		return dbError(err, s.dsn, "cannot add line").WithDetail("value", name)
	}
	return nil
}

// LineExists reports whether name is a registered line
func (s *Store) LineExists(ctx context.Context, name string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM line WHERE name = ?`, name).Scan(&n)
	if err != nil {
		return false, dbError(err, s.dsn, "cannot look up line").WithDetail("value", name)
	}
	return n > 0, nil
}

// Reserve inserts a provisional image record for line with the next free rank
func (s *Store) Reserve(ctx context.Context, line, session, source string) (Record, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Record{}, dbError(err, s.dsn, "cannot begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	rec := Record{
		ID:        uuid.NewString(),
		Line:      line,
		Session:   session,
		Source:    source,
		Status:    StatusProvisional,
		CreatedAt: time.Now().UTC(),
	}
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(rank), 0) + 1 FROM image WHERE line = ?`, line).Scan(&rec.Rank); err != nil {
		return Record{}, dbError(err, s.dsn, "cannot compute rank").WithDetail("value", line)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO image (id, line, rank, session, source, status, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Line, rec.Rank, rec.Session, rec.Source, rec.Status, rec.CreatedAt)
	if err != nil {
		return Record{}, errors.Wrapf(err, errors.ErrRegistryRecord, "cannot reserve an image record for line %s", line).
			WithDetail("dsn", s.dsn).
			WithDetail("value", line).
			WithDetail("file", source)
	}
	if err := tx.Commit(); err != nil {
		return Record{}, dbError(err, s.dsn, "cannot commit reservation").WithDetail("file", source)
	}
	return rec, nil
}

// Commit marks a provisional record as belonging to destination
func (s *Store) Commit(ctx context.Context, id, destination, user string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE image SET status = ?, destination = ?, created_by = ? WHERE id = ? AND status = ?`,
		StatusCommitted, destination, user, id, StatusProvisional)
	if err != nil {
		return dbError(err, s.dsn, "cannot commit image record").WithDetail("file", destination)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.Newf(errors.ErrRegistryRecord, "image record %s is not provisional", id).
			WithDetail("dsn", s.dsn).
			WithDetail("file", destination)
	}
	return nil
}

// Release deletes a provisional record
func (s *Store) Release(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM image WHERE id = ? AND status = ?`, id, StatusProvisional); err != nil {
		return dbError(err, s.dsn, "cannot release image record").WithDetail("value", id)
	}
	return nil
}

// ReleaseSession deletes every provisional record a session left behind
func (s *Store) ReleaseSession(ctx context.Context, session string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM image WHERE session = ? AND status = ?`, session, StatusProvisional)
	if err != nil {
		return 0, dbError(err, s.dsn, "cannot release session records").WithDetail("session", session)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// Images returns the records of line ordered by rank
func (s *Store) Images(ctx context.Context, line string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, line, rank, session, source, destination, created_by, status, created_at
		FROM image WHERE line = ? ORDER BY rank`, line)
	if err != nil {
		return nil, dbError(err, s.dsn, "cannot list images").WithDetail("value", line)
	}
	defer func() { _ = rows.Close() }()

	var out []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.Line, &r.Rank, &r.Session, &r.Source, &r.Destination, &r.CreatedBy, &r.Status, &r.CreatedAt); err != nil {
			return nil, dbError(err, s.dsn, "cannot read image record")
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError(err, s.dsn, "cannot list images")
	}
	return out, nil
}

func dbError(err error, dsn, msg string) *errors.RenameError {
	return errors.Wrap(err, errors.ErrExternalSystem, msg).
		WithDetail("property", "dsn").
		WithDetail("dsn", dsn)
}
