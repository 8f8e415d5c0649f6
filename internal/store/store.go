package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Collection names persisted as single blobs.
const (
	CollectionUsers       = "users"
	CollectionAttendances = "attendances"
	CollectionTasks       = "tasks"
	CollectionStock       = "stock"
)

// Store persists each collection wholesale as one obfuscated blob keyed by
// collection name. There are no partial-collection writes; callers load the
// full collection, mutate it in memory and save it back inside a transaction.
type Store struct {
	DB *sql.DB
}

// CorruptDataError indicates a persisted blob that cannot be decoded. It is
// propagated to the caller; there is no partial recovery.
type CorruptDataError struct {
	Collection string
	Err        error
}

func (e *CorruptDataError) Error() string {
	return fmt.Sprintf("collection %s corrupt: %v", e.Collection, e.Err)
}

func (e *CorruptDataError) Unwrap() error { return e.Err }

// Load decodes the named collection into out. A missing collection leaves out
// untouched (callers start from the zero slice).
func (s Store) Load(ctx context.Context, name string, out any) error {
	return load(ctx, s.DB.QueryRowContext, name, out)
}

// LoadTx is Load inside an open transaction, so a read-modify-write cycle
// observes its own consistent snapshot.
func (s Store) LoadTx(ctx context.Context, tx *sql.Tx, name string, out any) error {
	return load(ctx, tx.QueryRowContext, name, out)
}

func load(ctx context.Context, queryRow func(context.Context, string, ...any) *sql.Row, name string, out any) error {
	var payload string
	err := queryRow(ctx, `SELECT payload FROM collections WHERE name=?`, name).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return err
	}
	if err := decode(payload, out); err != nil {
		return &CorruptDataError{Collection: name, Err: err}
	}
	return nil
}

// Save encodes records and replaces the named collection's blob. When tx is
// nil the write goes straight to the database.
func (s Store) Save(ctx context.Context, tx *sql.Tx, name string, records any) error {
	payload, err := encode(records)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	exec := func(query string, args ...any) (sql.Result, error) {
		if tx != nil {
			return tx.ExecContext(ctx, query, args...)
		}
		return s.DB.ExecContext(ctx, query, args...)
	}
	_, err = exec(`INSERT INTO collections(name,payload,updated_at) VALUES (?,?,?)
ON CONFLICT(name) DO UPDATE SET payload=excluded.payload, updated_at=excluded.updated_at`, name, payload, now)
	return err
}

// Exists reports whether the named collection has ever been written.
func (s Store) Exists(ctx context.Context, name string) (bool, error) {
	var n int
	err := s.DB.QueryRowContext(ctx, `SELECT 1 FROM collections WHERE name=? LIMIT 1`, name).Scan(&n)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}
