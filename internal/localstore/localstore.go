// Package localstore is the client-side key/value storage that survives
// restarts, backed by sqlite.
package localstore

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

var ErrNotFound = errors.New("localstore: key not found")

type Store struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Get(key string) (string, error) {
	var value string
	err := s.db.Get(&value, `SELECT value FROM local_storage WHERE key = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return value, err
}

func (s *Store) Set(key, value string) error {
	_, err := s.db.Exec(`
INSERT INTO local_storage (key, value, updated_at) VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
`, key, value, time.Now().UTC())
	return err
}

func (s *Store) Remove(key string) error {
	_, err := s.db.Exec(`DELETE FROM local_storage WHERE key = ?`, key)
	return err
}

// Clear removes the given keys with a single statement; with no keys it empties
// the table.
func (s *Store) Clear(keys ...string) error {
	if len(keys) == 0 {
		_, err := s.db.Exec(`DELETE FROM local_storage`)
		return err
	}
	query, args, err := sqlx.In(`DELETE FROM local_storage WHERE key IN (?)`, keys)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(s.db.Rebind(query), args...)
	return err
}

func (s *Store) Keys() ([]string, error) {
	keys := []string{}
	err := s.db.Select(&keys, `SELECT key FROM local_storage ORDER BY key`)
	return keys, err
}
