package data

import (
	"context"

	"github.com/dolphinbot/dolphin/internal/biz/repo"
	"github.com/dolphinbot/dolphin/internal/infra/line"
)

// lineRepo implements the message repository on the LINE Messaging API
type lineRepo struct {
	client *line.Client
}

// NewLineRepo creates a new LINE message repository
func NewLineRepo(client *line.Client) repo.MessageRepo {
	return &lineRepo{client: client}
}

// Reply answers an event with a single text message
func (r *lineRepo) Reply(ctx context.Context, replyToken, text string) error {
	return r.client.Reply(ctx, replyToken, text)
}

// Push sends a single text message to a user or group
func (r *lineRepo) Push(ctx context.Context, to, text string) error {
	return r.client.Push(ctx, to, text)
}
