package repo

import "context"

// ReplyStateRepo persists the deployment-wide auto-reply toggle
type ReplyStateRepo interface {
	// IsEnabled returns true when no state has been stored yet
	IsEnabled(ctx context.Context) (bool, error)

	// SetEnabled stores the toggle
	SetEnabled(ctx context.Context, enabled bool) error
}
