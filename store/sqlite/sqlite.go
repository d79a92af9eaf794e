// Package sqlite adapts a SQLite database to store.KeyStore via
// modernc.org/sqlite. Each cache entry is one row carrying the payload and an
// explicit dirty flag, so dirty tracking updates the entry itself instead of
// the cache core's sentinel list.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"runtime"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/unkn0wn-root/kvcache/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS cache_entries (
	key   TEXT PRIMARY KEY,
	value BLOB,
	dirty INTEGER NOT NULL DEFAULT 0
) WITHOUT ROWID;
`

// Store implements store.KeyStore on a SQLite database.
type Store struct {
	write *sql.DB // single-writer connection
	read  *sql.DB // multi-reader pool
}

var (
	_ store.KeyStore     = (*Store)(nil)
	_ store.Lister       = (*Store)(nil)
	_ store.BatchGetter  = (*Store)(nil)
	_ store.DirtyTracker = (*Store)(nil)
)

// New opens a SQLite database, creates the entry table, and returns a Store.
func New(dsn string) (*Store, error) {
	pragmas := "_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"

	// For :memory: databases, use shared cache so read/write pools share the same data
	var fullDSN string
	if dsn == ":memory:" {
		fullDSN = "file::memory:?mode=memory&cache=shared&" + pragmas
	} else {
		fullDSN = "file:" + dsn + "?" + pragmas
	}

	write, err := sql.Open("sqlite", fullDSN)
	if err != nil {
		return nil, fmt.Errorf("open write db: %w", err)
	}
	write.SetMaxOpenConns(1)

	read, err := sql.Open("sqlite", fullDSN)
	if err != nil {
		write.Close()
		return nil, fmt.Errorf("open read db: %w", err)
	}
	read.SetMaxOpenConns(max(4, runtime.NumCPU()))

	if _, err := write.Exec(schema); err != nil {
		write.Close()
		read.Close()
		return nil, fmt.Errorf("create entry table: %w", err)
	}

	return &Store{write: write, read: read}, nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.read.QueryRowContext(ctx,
		`SELECT value FROM cache_entries WHERE key = ? AND value IS NOT NULL`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

// Put creates or replaces the entry's payload. The dirty flag is left alone
// on replace: writing data and declaring it clean are separate acts.
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	if value == nil {
		value = []byte{} // nil would bind as NULL, the "no payload" marker
	}
	_, err := s.write.ExecContext(ctx, `
		INSERT INTO cache_entries (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value)
	return err
}

func (s *Store) Remove(ctx context.Context, key string) error {
	_, err := s.write.ExecContext(ctx,
		`DELETE FROM cache_entries WHERE key = ?`, key)
	return err
}

// GetMulti fetches all requested keys with one SELECT ... IN query: a single
// round trip regardless of key count.
func (s *Store) GetMulti(ctx context.Context, keys []string) (map[string][]byte, error) {
	out := make(map[string][]byte, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = k
	}
	q := `SELECT key, value FROM cache_entries WHERE value IS NOT NULL AND key IN (?` +
		strings.Repeat(",?", len(keys)-1) + `)`

	rows, err := s.read.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			key   string
			value []byte
		)
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		out[key] = value
	}
	return out, rows.Err()
}

func (s *Store) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.read.QueryContext(ctx, `SELECT key FROM cache_entries WHERE value IS NOT NULL`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// MarkDirty flips the entry's dirty column. Marking an absent key dirty
// still records the flag via a payload-less row (invisible to Get and Keys);
// clearing an absent key is a no-op.
func (s *Store) MarkDirty(ctx context.Context, key string, dirty bool) error {
	if !dirty {
		_, err := s.write.ExecContext(ctx,
			`UPDATE cache_entries SET dirty = 0 WHERE key = ?`, key)
		return err
	}
	_, err := s.write.ExecContext(ctx, `
		INSERT INTO cache_entries (key, value, dirty) VALUES (?, NULL, 1)
		ON CONFLICT(key) DO UPDATE SET dirty = 1`,
		key)
	return err
}

func (s *Store) Dirty(ctx context.Context, key string) (bool, error) {
	var dirty bool
	err := s.read.QueryRowContext(ctx,
		`SELECT dirty FROM cache_entries WHERE key = ?`, key).Scan(&dirty)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return dirty, nil
}

func (s *Store) Close(context.Context) error {
	rerr := s.read.Close()
	werr := s.write.Close()
	if werr != nil {
		return werr
	}
	return rerr
}
