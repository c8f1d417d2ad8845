package refdata

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dynconv/analyzer/internal/database"
)

// Cache persists reference-data responses per security with an expiration
// timestamp, so repeated runs within the TTL do not hit the service again.
type Cache struct {
	db *database.DB
}

// NewCache creates the cache store and its table.
func NewCache(db *database.DB) (*Cache, error) {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS refdata_cache (
			security   TEXT PRIMARY KEY,
			data       TEXT NOT NULL,
			expires_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create refdata_cache table: %w", err)
	}
	return &Cache{db: db}, nil
}

// Store saves a security's fields with expiration = now + ttl.
func (c *Cache) Store(security string, fields Fields, ttl time.Duration) error {
	data, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("failed to marshal fields: %w", err)
	}

	expiresAt := time.Now().Add(ttl).Unix()

	_, err = c.db.Exec(
		"INSERT OR REPLACE INTO refdata_cache (security, data, expires_at) VALUES (?, ?, ?)",
		security, string(data), expiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to store cache entry: %w", err)
	}
	return nil
}

// Get returns the cached fields for a security if present and not expired.
func (c *Cache) Get(security string) (Fields, bool) {
	var data string
	var expiresAt int64

	err := c.db.QueryRow(
		"SELECT data, expires_at FROM refdata_cache WHERE security = ?",
		security,
	).Scan(&data, &expiresAt)
	if err != nil {
		return nil, false
	}

	if time.Now().Unix() > expiresAt {
		return nil, false
	}

	var fields Fields
	if err := json.Unmarshal([]byte(data), &fields); err != nil {
		return nil, false
	}
	return fields, true
}

// Cleanup removes expired entries.
func (c *Cache) Cleanup() (int64, error) {
	res, err := c.db.Exec("DELETE FROM refdata_cache WHERE expires_at < ?", time.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to clean refdata cache: %w", err)
	}
	return res.RowsAffected()
}
