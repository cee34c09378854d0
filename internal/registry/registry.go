// Package registry persists the user -> spreadsheet-ID mapping in a local
// SQLite file. The remote backend offers no way to look a user's document
// up by name, so the gateway consults the registry to make EnsureDocument
// idempotent across process restarts.
package registry

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNoDocument is returned by Lookup when the user has no registered
// spreadsheet yet.
var ErrNoDocument = errors.New("no document registered for user")

const schemaSQL = `
CREATE TABLE IF NOT EXISTS documents (
	user_id        INTEGER PRIMARY KEY,
	spreadsheet_id TEXT NOT NULL,
	created_at     TEXT NOT NULL
);
`

// Registry is a SQLite-backed document directory. Safe for concurrent use.
type Registry struct {
	mu sync.Mutex
	db *sql.DB
}

// Open creates or opens the registry file at path, creating parent
// directories as needed.
func Open(path string) (*Registry, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create registry dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open registry: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("init registry schema: %w", err)
	}
	return &Registry{db: db}, nil
}

// Lookup returns the spreadsheet ID registered for the user.
// Returns ErrNoDocument if none is registered.
func (r *Registry) Lookup(userID int64) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var id string
	err := r.db.QueryRow(
		"SELECT spreadsheet_id FROM documents WHERE user_id = ?", userID,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return "", ErrNoDocument
	}
	if err != nil {
		return "", fmt.Errorf("lookup document for user %d: %w", userID, err)
	}
	return id, nil
}

// Save registers (or replaces) the spreadsheet ID for the user.
func (r *Registry) Save(userID int64, spreadsheetID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(
		"INSERT INTO documents (user_id, spreadsheet_id, created_at) VALUES (?, ?, ?) "+
			"ON CONFLICT(user_id) DO UPDATE SET spreadsheet_id = excluded.spreadsheet_id",
		userID, spreadsheetID, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("save document for user %d: %w", userID, err)
	}
	return nil
}

// Delete removes the user's registration. Deleting an absent row is a
// no-op; account reset may run after a partial earlier teardown.
func (r *Registry) Delete(userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.db.Exec("DELETE FROM documents WHERE user_id = ?", userID); err != nil {
		return fmt.Errorf("delete document for user %d: %w", userID, err)
	}
	return nil
}

// Close releases the underlying database handle. Idempotent.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}
