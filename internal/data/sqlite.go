package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dolphinbot/dolphin/internal/biz/domain"

	_ "modernc.org/sqlite"
)

const (
	replyStateKey     = "enabled"
	replyStateEnabled = "enabled"
	replyStateOff     = "disabled"

	historyKeyPrefix = "msg_history:"
)

// SQLiteStore keeps reply state and group history in one SQLite database.
// It implements both repo.ReplyStateRepo and repo.HistoryRepo.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at dbPath
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// Ensure directory exists
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection keeps ":memory:" databases shared and serializes writers
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create kv table: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS history (
			key TEXT PRIMARY KEY,
			group_id TEXT NOT NULL,
			entries TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create history table: %w", err)
	}

	_, _ = db.Exec(`CREATE INDEX IF NOT EXISTS idx_history_updated_at ON history(updated_at)`)

	return &SQLiteStore{db: db}, nil
}

// ========== Reply State ==========

// IsEnabled returns the stored toggle, true when unset
func (s *SQLiteStore) IsEnabled(ctx context.Context) (bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, replyStateKey).Scan(&value)
	if err == sql.ErrNoRows {
		return true, nil
	}
	if err != nil {
		return true, fmt.Errorf("failed to read reply state: %w", err)
	}
	return strings.TrimSpace(value) != replyStateOff, nil
}

// SetEnabled stores the toggle
func (s *SQLiteStore) SetEnabled(ctx context.Context, enabled bool) error {
	value := replyStateOff
	if enabled {
		value = replyStateEnabled
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO kv (key, value, updated_at) VALUES (?, ?, ?)
	`, replyStateKey, value, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to save reply state: %w", err)
	}
	return nil
}

// ========== History ==========

// Get returns the history of a group
func (s *SQLiteStore) Get(ctx context.Context, groupID string) (*domain.ConversationHistory, error) {
	var raw string
	var updatedAt int64
	err := s.db.QueryRowContext(ctx, `
		SELECT entries, updated_at FROM history WHERE key = ?
	`, historyKeyPrefix+groupID).Scan(&raw, &updatedAt)
	if err == sql.ErrNoRows {
		return domain.NewConversationHistory(groupID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}

	history := domain.NewConversationHistory(groupID)
	if err := json.Unmarshal([]byte(raw), history); err != nil {
		// A corrupt row is treated like a missing one
		return domain.NewConversationHistory(groupID), nil
	}
	history.GroupID = groupID
	history.UpdatedAt = time.Unix(updatedAt, 0)
	return history, nil
}

// Append adds an entry to the group history.
// Read and write are separate statements; concurrent appends may lose an entry.
func (s *SQLiteStore) Append(ctx context.Context, groupID, userID, message string) error {
	history, err := s.Get(ctx, groupID)
	if err != nil {
		return err
	}
	history.Add(userID, message)

	raw, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO history (key, group_id, entries, updated_at)
		VALUES (?, ?, ?, ?)
	`, historyKeyPrefix+groupID, groupID, string(raw), history.UpdatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to save history: %w", err)
	}
	return nil
}

// CleanupStale removes histories not updated since before
func (s *SQLiteStore) CleanupStale(ctx context.Context, before time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM history WHERE updated_at < ?`, before.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup stale history: %w", err)
	}
	return result.RowsAffected()
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
