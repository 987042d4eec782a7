package repo

import (
	"context"
	"time"

	"github.com/dolphinbot/dolphin/internal/biz/domain"
)

// HistoryRepo is the per-group conversation history repository
type HistoryRepo interface {
	// Get returns the history of a group, empty when none exists
	Get(ctx context.Context, groupID string) (*domain.ConversationHistory, error)

	// Append adds an entry, evicting the oldest beyond domain.HistoryCapacity
	Append(ctx context.Context, groupID, userID, message string) error

	// CleanupStale removes histories not updated since before
	CleanupStale(ctx context.Context, before time.Time) (int64, error)
}
