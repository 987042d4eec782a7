package usecase

import (
	"context"

	"github.com/dolphinbot/dolphin/internal/biz/domain"
	"github.com/dolphinbot/dolphin/internal/biz/repo"
	"github.com/dolphinbot/dolphin/internal/observability"
)

// RouterConfig contains routing policy
type RouterConfig struct {
	// MuteDirectWhenDisabled also silences direct messages while replies are disabled.
	// By default only group auto-replies are muted.
	MuteDirectWhenDisabled bool

	// GroupBroadcast lets @all / @all+XXXX broadcast from inside a group.
	// By default they fall back to the checksum reply there.
	GroupBroadcast bool

	Replies ReplyTemplates
}

// DefaultRouterConfig contains the default routing policy
var DefaultRouterConfig = RouterConfig{
	Replies: DefaultReplyTemplates,
}

// RouterUsecase decides how to answer one inbound message.
// It holds no per-message state; all state lives in the injected repositories.
type RouterUsecase struct {
	directory   *domain.BroadcastDirectory
	stateRepo   repo.ReplyStateRepo
	historyRepo repo.HistoryRepo
	cfg         RouterConfig
}

// NewRouterUsecase creates a new router usecase
func NewRouterUsecase(
	directory *domain.BroadcastDirectory,
	stateRepo repo.ReplyStateRepo,
	historyRepo repo.HistoryRepo,
	cfg RouterConfig,
) *RouterUsecase {
	cfg.Replies = cfg.Replies.WithDefaults()
	if directory == nil {
		directory = domain.NewBroadcastDirectory(nil)
	}
	return &RouterUsecase{
		directory:   directory,
		stateRepo:   stateRepo,
		historyRepo: historyRepo,
		cfg:         cfg,
	}
}

// Route classifies msg and returns the action to take
func (uc *RouterUsecase) Route(ctx context.Context, msg domain.InboundMessage) domain.Action {
	log := observability.LoggerFromContext(ctx).With("user_id", msg.UserID, "group_id", msg.GroupID)
	cmd := domain.ParseCommand(msg.Text)

	// 1. Control commands work even while replies are disabled
	if cmd.IsControl() {
		return uc.handleControl(ctx, msg, cmd)
	}

	// 2. Global gate
	if (msg.IsGroup() || uc.cfg.MuteDirectWhenDisabled) && !uc.repliesEnabled(ctx) {
		log.Info("Replies are disabled, ignoring message")
		return domain.NoAction()
	}

	// 3. Group messages without a trigger: repeat detection, otherwise history only
	if msg.IsGroup() && !cmd.IsTrigger() {
		history := uc.loadHistory(ctx, msg.GroupID)
		previous, repeated := history.RepeatOf(msg.UserID, msg.Text)
		uc.appendHistory(ctx, msg)
		if repeated {
			log.Info("Repeated message detected", "reply", previous)
			return domain.SendReply(previous)
		}
		return domain.NoAction()
	}

	// 4. Direct messages get a reply to everything
	if !cmd.IsTrigger() {
		return domain.SendReply(domain.ChecksumReply(msg.UserID, msg.Text))
	}

	// 5. Trigger prefixes
	if cmd.Content == "" {
		return domain.NoAction()
	}

	action := uc.handleTrigger(ctx, msg, cmd)
	if msg.IsGroup() {
		uc.appendHistory(ctx, msg)
	}
	log.Info("Routed trigger", "command", cmd.Kind.String(), "action", string(action.Type))
	return action
}

func (uc *RouterUsecase) handleControl(ctx context.Context, msg domain.InboundMessage, cmd domain.Command) domain.Action {
	log := observability.LoggerFromContext(ctx).With("user_id", msg.UserID)
	replies := uc.cfg.Replies

	if !uc.directory.HasAnyRule() {
		return domain.SendReply(replies.BroadcastNotFound)
	}
	if _, ok := uc.directory.FindByUser(msg.UserID); !ok {
		log.Info("Unauthorized attempt to control replies")
		return domain.SendReply(replies.ControlUnauthorized)
	}

	enable := cmd.Kind == domain.CommandOn
	if err := uc.stateRepo.SetEnabled(ctx, enable); err != nil {
		log.Error("Failed to save reply state", "error", err)
		return domain.SendReply(replies.ToggleFailed)
	}

	if enable {
		log.Info("Reply status changed", "status", "enabled")
		return domain.SendReply(replies.RepliesEnabled)
	}
	log.Info("Reply status changed", "status", "disabled")
	return domain.SendReply(replies.RepliesDisabled)
}

func (uc *RouterUsecase) handleTrigger(ctx context.Context, msg domain.InboundMessage, cmd domain.Command) domain.Action {
	replies := uc.cfg.Replies

	broadcast := cmd.IsBroadcast() && (!msg.IsGroup() || uc.cfg.GroupBroadcast)
	if !broadcast {
		return domain.SendReply(domain.ChecksumReply(msg.UserID, cmd.Content))
	}

	var (
		rule domain.BroadcastRule
		ok   bool
	)
	switch cmd.Kind {
	case domain.CommandAllSuffix:
		// Authorization is the existence of a matching rule, not ownership of it
		rule, ok = uc.directory.FindByGroupSuffix(cmd.Suffix)
		if !ok {
			return domain.SendReply(render(replies.SuffixNotFound, cmd.Content, cmd.Suffix))
		}
	default:
		rule, ok = uc.directory.FindByUser(msg.UserID)
		if !ok {
			observability.LoggerFromContext(ctx).Info("Unauthorized broadcast attempt", "user_id", msg.UserID)
			return domain.SendReply(replies.BroadcastUnauthorized)
		}
	}

	return domain.SendReplyAndPush(
		render(replies.BroadcastSent, cmd.Content, cmd.Suffix),
		rule.TargetGroupID,
		cmd.Content,
		render(replies.BroadcastFailed, cmd.Content, cmd.Suffix),
	)
}

// repliesEnabled degrades to enabled when the state cannot be read
func (uc *RouterUsecase) repliesEnabled(ctx context.Context) bool {
	if uc.stateRepo == nil {
		return true
	}
	enabled, err := uc.stateRepo.IsEnabled(ctx)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn("Failed to read reply state, assuming enabled", "error", err)
		return true
	}
	return enabled
}

func (uc *RouterUsecase) loadHistory(ctx context.Context, groupID string) *domain.ConversationHistory {
	history, err := uc.historyRepo.Get(ctx, groupID)
	if err != nil || history == nil {
		if err != nil {
			observability.LoggerFromContext(ctx).Warn("Failed to load history", "group_id", groupID, "error", err)
		}
		return domain.NewConversationHistory(groupID)
	}
	return history
}

// appendHistory is best-effort; failures are only logged
func (uc *RouterUsecase) appendHistory(ctx context.Context, msg domain.InboundMessage) {
	if err := uc.historyRepo.Append(ctx, msg.GroupID, msg.UserID, msg.Text); err != nil {
		observability.LoggerFromContext(ctx).Warn("Failed to save history", "group_id", msg.GroupID, "error", err)
	}
}
