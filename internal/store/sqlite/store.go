// Package sqlite provides a score store backed by a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"time"

	_ "modernc.org/sqlite"

	"github.com/rescuerunner/runnerboard"
)

//go:embed migrations/000001_create_tables.up.sql
var up string

type Path string

type Store struct {
	db *sql.DB
}

// New opens the database at path and makes sure the schema exists.
func New(path Path) (*Store, func(), error) {
	db, err := sql.Open("sqlite", string(path))
	if err != nil {
		return nil, nil, err
	}

	if _, err := db.Exec(up); err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	return &Store{db: db}, func() { _ = db.Close() }, nil
}

// NewInMemory returns a store whose database lives only as long as the
// returned cleanup has not been called.
func NewInMemory() (*Store, func(), error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, func() {}, err
	}

	// every connection to :memory: is a separate database
	db.SetMaxOpenConns(1)

	_, err = db.Exec(up)
	if err != nil {
		db.Close()
		return nil, func() {}, err
	}

	return &Store{db}, func() { db.Close() }, nil
}

// NewWithDB wraps an already opened database. The schema is assumed to exist.
func NewWithDB(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Get(ctx context.Context, identity string) (runnerboard.Entry, error) {
	query := `SELECT identity, display_name, score, submitted_at, game_version FROM scores WHERE identity = ? LIMIT 1`
	r := s.db.QueryRowContext(ctx, query, identity)

	e, err := scanEntry(r)
	if errors.Is(err, sql.ErrNoRows) {
		err = runnerboard.ErrNotFound
	}
	if err != nil {
		return runnerboard.Entry{}, err
	}
	return e, nil
}

func (s *Store) Upsert(ctx context.Context, entry runnerboard.Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := upsert(ctx, tx, entry); err != nil {
		return err
	}

	return tx.Commit()
}

// Save runs the upsert and the capacity trim in one transaction.
func (s *Store) Save(ctx context.Context, entry runnerboard.Entry, max int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := upsert(ctx, tx, entry); err != nil {
		return err
	}

	if err := enforceCapacity(ctx, tx, max); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *Store) All(ctx context.Context) ([]runnerboard.Entry, error) {
	query := `SELECT identity, display_name, score, submitted_at, game_version FROM scores`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []runnerboard.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

func (s *Store) EnforceCapacity(ctx context.Context, max int) error {
	return enforceCapacity(ctx, s.db, max)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsert(ctx context.Context, tx execer, entry runnerboard.Entry) error {
	query := `UPDATE scores SET display_name = ?, score = ?, submitted_at = ?, game_version = ?, updated_at = datetime('now') WHERE identity = ?`
	args := []any{entry.DisplayName, entry.Score, entry.SubmittedAt.UnixNano(), entry.GameVersion, entry.Identity}
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	if affected, _ := res.RowsAffected(); affected == 1 {
		return nil
	}

	query = `INSERT INTO scores (
		created_at,
		updated_at,
		identity,
		display_name,
		score,
		submitted_at,
		game_version
		) VALUES (datetime('now'), datetime('now'), ?, ?, ?, ?, ?)`
	args = []any{entry.Identity, entry.DisplayName, entry.Score, entry.SubmittedAt.UnixNano(), entry.GameVersion}
	_, err = tx.ExecContext(ctx, query, args...)
	return err
}

func enforceCapacity(ctx context.Context, db execer, max int) error {
	if max < 0 {
		max = 0
	}

	query := `DELETE FROM scores WHERE identity NOT IN (
		SELECT identity FROM scores ORDER BY score DESC, submitted_at ASC, identity ASC LIMIT ?
	)`
	_, err := db.ExecContext(ctx, query, max)
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(r scanner) (runnerboard.Entry, error) {
	var (
		e           runnerboard.Entry
		submittedAt int64
	)
	err := r.Scan(&e.Identity, &e.DisplayName, &e.Score, &submittedAt, &e.GameVersion)
	if err != nil {
		return runnerboard.Entry{}, err
	}
	e.SubmittedAt = time.Unix(0, submittedAt).UTC()
	return e, nil
}
