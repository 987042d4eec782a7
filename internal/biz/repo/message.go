package repo

import "context"

// MessageRepo is the outbound messaging interface
// Implemented on top of the LINE Messaging API
type MessageRepo interface {
	// Reply answers an inbound event using its reply token
	Reply(ctx context.Context, replyToken, text string) error

	// Push sends a message to a user or group without a reply token
	Push(ctx context.Context, to, text string) error
}
