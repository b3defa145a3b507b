package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	logx "pollcaster/pkg/logx"
)

//go:embed migrations.sql
var migrationsFS embed.FS

type sqliteStore struct {
	db   *sql.DB
	log  logx.Logger
	lock locker
}

func openSQLite(cfg Config, log logx.Logger) (Repository, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	path := cfg.Path
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	st, err := openSQLiteDB(path, cfg.BusyTimeout, log)
	if err == nil {
		return st, nil
	}
	if !isCorrupt(err) {
		return nil, err
	}

	// Unreadable state must not block every future run: keep the bad file
	// for inspection and start from an empty database.
	aside := fmt.Sprintf("%s.corrupt-%s", path, time.Now().UTC().Format("20060102T150405Z"))
	log.Warn("sqlite state unreadable; moving aside and starting empty",
		logx.String("path", path), logx.String("moved_to", aside), logx.Err(err))
	if err := moveAside(path, aside); err != nil {
		return nil, fmt.Errorf("move corrupt sqlite state: %w", err)
	}
	if st, err = openSQLiteDB(path, cfg.BusyTimeout, log); err != nil {
		return nil, err
	}
	return st, nil
}

func openSQLiteDB(path string, busy time.Duration, log logx.Logger) (*sqliteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite prefers a small number of concurrent writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	st := &sqliteStore{db: db, log: log, lock: &fileLock{path: path + ".lock"}}

	if busy > 0 {
		_, _ = db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", busy.Milliseconds()))
	}
	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")

	if err := st.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return st, nil
}

// isCorrupt reports SQLITE_NOTADB and SQLITE_CORRUPT, including extended codes.
func isCorrupt(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() & 0xff {
	case sqlite3.SQLITE_NOTADB, sqlite3.SQLITE_CORRUPT:
		return true
	}
	return false
}

// moveAside renames the database and any WAL/SHM companions.
func moveAside(path, aside string) error {
	if err := os.Rename(path, aside); err != nil {
		return err
	}
	for _, suffix := range []string{"-wal", "-shm"} {
		if err := os.Rename(path+suffix, aside+suffix); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	return nil
}

func (s *sqliteStore) migrate(ctx context.Context) error {
	b, err := migrationsFS.ReadFile("migrations.sql")
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, string(b))
	return err
}

func (s *sqliteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *sqliteStore) Lock(ctx context.Context) (func() error, error) {
	_ = ctx
	return s.lock.tryLock()
}

func (s *sqliteStore) Load(ctx context.Context) (State, error) {
	if s == nil || s.db == nil {
		return State{}, ErrClosed
	}
	var st State

	keys, err := s.column(ctx, `SELECT key FROM posted ORDER BY seq`)
	if err != nil {
		return s.loadFailed("load ledger", err)
	}
	st.Posted = decodeKeys(keys, s.log)

	st.Asked, err = s.column(ctx, `SELECT id FROM asked ORDER BY seq`)
	if err != nil {
		return s.loadFailed("load tracker", err)
	}
	return st, nil
}

// loadFailed degrades corruption to empty state; other errors fail the run.
func (s *sqliteStore) loadFailed(what string, err error) (State, error) {
	if isCorrupt(err) {
		s.log.Warn("sqlite state corrupt; using empty state", logx.String("stage", what), logx.Err(err))
		return State{}, nil
	}
	return State{}, fmt.Errorf("%s: %w", what, err)
}

func (s *sqliteStore) column(ctx context.Context, q string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Save replaces both tables in one transaction.
func (s *sqliteStore) Save(ctx context.Context, st State) (err error) {
	if s == nil || s.db == nil {
		return ErrClosed
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM posted`); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM asked`); err != nil {
		return err
	}
	for _, k := range st.Posted {
		if _, err = tx.ExecContext(ctx, `INSERT OR IGNORE INTO posted(key) VALUES(?)`, k.String()); err != nil {
			return err
		}
	}
	for _, id := range st.Asked {
		if _, err = tx.ExecContext(ctx, `INSERT OR IGNORE INTO asked(id) VALUES(?)`, id); err != nil {
			return err
		}
	}
	return tx.Commit()
}
