package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"fixity/internal/model"
)

// Get returns the record for a key, or nil when no record exists.
func (s *Store) Get(ctx context.Context, key string) (*model.IntegrityRecord, error) {
	var rec model.IntegrityRecord
	var mtime int64
	err := s.db.QueryRowContext(ctx, `
		SELECT path, checksum, algorithm, last_modified
		FROM records
		WHERE path = ?
	`, key).Scan(&rec.Key, &rec.Checksum, &rec.Algorithm, &mtime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get record %s: %w", key, err)
	}
	rec.LastModified = time.Unix(0, mtime)
	return &rec, nil
}

// Put inserts or overwrites the record for rec.Key. The row is always
// rewritten whole; checksum, algorithm and last_modified never diverge
// from a single engine decision.
func (s *Store) Put(ctx context.Context, rec model.IntegrityRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO records (path, checksum, algorithm, last_modified)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			checksum      = excluded.checksum,
			algorithm     = excluded.algorithm,
			last_modified = excluded.last_modified
	`,
		rec.Key,
		rec.Checksum,
		rec.Algorithm,
		rec.LastModified.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("put record %s: %w", rec.Key, err)
	}
	return nil
}

// Delete removes the record for a key. Deleting an absent key is not an
// error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE path = ?`, key); err != nil {
		return fmt.Errorf("delete record %s: %w", key, err)
	}
	return nil
}

// AllKeys returns every record key, ordered for deterministic traversal.
// Used once per run to detect files that vanished from every root.
func (s *Store) AllKeys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT path FROM records ORDER BY path ASC`)
	if err != nil {
		return nil, fmt.Errorf("list record keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan record key: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate record keys: %w", err)
	}
	return keys, nil
}

// Count returns the number of tracked records.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}
