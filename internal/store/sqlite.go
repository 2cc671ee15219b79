package store

import (
	"fmt"

	"github.com/debemdeboas/blogctl/internal/cache"
	"github.com/debemdeboas/blogctl/internal/db"
)

// SQLiteStore writes through to the kv table and serves reads from memory.
type SQLiteStore struct {
	db    db.DB
	items *cache.Cache[string, string]
}

// NewSQLiteStore loads every row so later reads never touch the database.
func NewSQLiteStore(database db.DB) (*SQLiteStore, error) {
	s := &SQLiteStore{
		db:    database,
		items: cache.NewCache[string, string](),
	}

	rows, err := database.Query("SELECT key, value FROM kv")
	if err != nil {
		return nil, fmt.Errorf("load kv: %w", err)
	}
	defer rows.Close()

	loaded := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scan kv: %w", err)
		}
		loaded[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load kv: %w", err)
	}

	s.items.SetTo(loaded)
	storeLogger.Debug().Int("keys", len(loaded)).Msg("Loaded persistent store")
	return s, nil
}

func (s *SQLiteStore) Get(key string) (string, bool, error) {
	v, ok := s.items.Get(key)
	return v, ok, nil
}

func (s *SQLiteStore) Set(key, value string) error {
	_, err := s.db.Exec(`
INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`, key, value)
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	s.items.Set(key, value)
	return nil
}

func (s *SQLiteStore) Delete(keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	tx, err := s.db.Get().Begin()
	if err != nil {
		return fmt.Errorf("begin delete: %w", err)
	}
	for _, k := range keys {
		if _, err := tx.Exec("DELETE FROM kv WHERE key = ?", k); err != nil {
			tx.Rollback()
			return fmt.Errorf("delete %s: %w", k, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete: %w", err)
	}

	for _, k := range keys {
		s.items.Delete(k)
	}
	return nil
}
