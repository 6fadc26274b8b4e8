package postgres

import (
	"context"
	"fmt"

	"zoblogs/internal/storage"
)

// Store implements storage.Store on the kv_entries table. Compare-and-swap
// relies on the version predicate of a single UPDATE or on the primary key
// for the first insert.
type Store struct {
	pool *Pool
}

func NewStore(pool *Pool) *Store {
	return &Store{pool: pool}
}

var _ storage.Store = (*Store)(nil)

func (s *Store) Get(ctx context.Context, key string) (storage.Entry, error) {
	if !storage.ValidKey(key) {
		return storage.Entry{}, storage.ErrInvalidInput
	}

	var e storage.Entry
	err := s.pool.QueryRow(ctx,
		`SELECT value, version FROM kv_entries WHERE key = $1`, key,
	).Scan(&e.Value, &e.Version)
	if err != nil {
		if isNotFoundError(err) {
			return storage.Entry{}, storage.ErrNotFound
		}
		return storage.Entry{}, fmt.Errorf("get kv entry: %w", err)
	}
	return e, nil
}

func (s *Store) Put(ctx context.Context, key string, value []byte, expected int64) (int64, error) {
	if !storage.ValidKey(key) {
		return 0, storage.ErrInvalidInput
	}

	next := expected + 1
	var query string
	var args []any
	if expected == 0 {
		query = `
			INSERT INTO kv_entries (key, value, version)
			VALUES ($1, $2, 1)
			ON CONFLICT (key) DO NOTHING
		`
		args = []any{key, value}
	} else {
		query = `
			UPDATE kv_entries
			SET value = $2, version = version + 1, updated_at = now()
			WHERE key = $1 AND version = $3
		`
		args = []any{key, value, expected}
	}

	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("put kv entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return 0, storage.ErrVersionConflict
	}
	return next, nil
}

func (s *Store) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT key FROM kv_entries ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list kv keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scan kv key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}
