package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dolphinbot/dolphin/internal/biz/domain"
	"github.com/dolphinbot/dolphin/internal/biz/repo"
	"github.com/dolphinbot/dolphin/internal/biz/usecase"
	"github.com/dolphinbot/dolphin/internal/infra/line"
	"github.com/dolphinbot/dolphin/internal/observability"
)

// dedupWindow is how long webhook event ids are remembered
const dedupWindow = 5 * time.Minute

// WebhookService turns webhook events into router decisions and sends the results
type WebhookService struct {
	routerUC    *usecase.RouterUsecase
	messageRepo repo.MessageRepo

	// Event deduplication cache
	seenMu sync.Mutex
	seen   map[string]time.Time // webhookEventId -> first seen
	now    func() time.Time
}

// NewWebhookService creates a new webhook service
func NewWebhookService(routerUC *usecase.RouterUsecase, messageRepo repo.MessageRepo) *WebhookService {
	return &WebhookService{
		routerUC:    routerUC,
		messageRepo: messageRepo,
		seen:        make(map[string]time.Time),
		now:         time.Now,
	}
}

// EventResult records what happened to one event
type EventResult struct {
	EventID string
	Skipped string // reason, empty when processed
	Action  domain.Action
	Err     error
}

// HandleEvents processes a webhook batch in order.
// A failing event is logged and does not stop its siblings.
func (s *WebhookService) HandleEvents(ctx context.Context, events []line.Event) []EventResult {
	results := make([]EventResult, 0, len(events))
	for i := range events {
		res := s.HandleEvent(ctx, &events[i])
		if res.Err != nil {
			observability.LoggerFromContext(ctx).Error("Failed to handle event",
				"event_id", res.EventID, "action", string(res.Action.Type), "error", res.Err)
		}
		results = append(results, res)
	}
	return results
}

// HandleEvent processes a single webhook event
func (s *WebhookService) HandleEvent(ctx context.Context, event *line.Event) EventResult {
	log := observability.LoggerFromContext(ctx)
	res := EventResult{EventID: event.WebhookEventID, Action: domain.NoAction()}

	if event.DeliveryContext.IsRedelivery {
		log.Info("Skipping redelivered event", "event_id", event.WebhookEventID)
		res.Skipped = "redelivery"
		return res
	}
	if !event.IsTextMessage() {
		res.Skipped = "not a text message"
		return res
	}
	if event.ReplyToken == "" {
		log.Warn("Reply token is empty", "event_id", event.WebhookEventID)
		res.Skipped = "empty reply token"
		return res
	}
	if s.isSeen(event.WebhookEventID) {
		log.Info("Duplicate event ignored", "event_id", event.WebhookEventID)
		res.Skipped = "duplicate"
		return res
	}

	msg := domain.NewInboundMessage(event.Source.UserID, event.Source.GroupID, event.Message.Text)
	res.Action = s.routerUC.Route(ctx, msg)
	res.Err = s.execute(ctx, event.ReplyToken, res.Action)
	return res
}

// execute sends the router's decision.
// A failed push is converted into the action's failure reply.
func (s *WebhookService) execute(ctx context.Context, replyToken string, action domain.Action) error {
	log := observability.LoggerFromContext(ctx)

	switch action.Type {
	case domain.ActionReply:
		if err := s.messageRepo.Reply(ctx, replyToken, action.ReplyText); err != nil {
			return fmt.Errorf("failed to send reply: %w", err)
		}
		log.Info("Reply sent", "text", truncate(action.ReplyText, 50))
		return nil

	case domain.ActionReplyAndPush:
		reply := action.ReplyText
		if err := s.messageRepo.Push(ctx, action.PushTarget, action.PushText); err != nil {
			log.Error("Failed to send broadcast message", "target", action.PushTarget, "error", err)
			reply = action.FailureText
		} else {
			log.Info("Push message sent", "target", action.PushTarget, "text", truncate(action.PushText, 50))
		}
		if err := s.messageRepo.Reply(ctx, replyToken, reply); err != nil {
			return fmt.Errorf("failed to send broadcast confirmation: %w", err)
		}
		return nil
	}
	return nil
}

// isSeen marks an event id as processed and reports whether it was seen before.
// Events without an id are never deduplicated.
func (s *WebhookService) isSeen(eventID string) bool {
	if eventID == "" {
		return false
	}

	s.seenMu.Lock()
	defer s.seenMu.Unlock()

	now := s.now()
	if ts, ok := s.seen[eventID]; ok && now.Sub(ts) < dedupWindow {
		return true
	}
	s.seen[eventID] = now

	// Clean up expired records while holding the lock
	cutoff := now.Add(-dedupWindow)
	for id, ts := range s.seen {
		if ts.Before(cutoff) {
			delete(s.seen, id)
		}
	}
	return false
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
