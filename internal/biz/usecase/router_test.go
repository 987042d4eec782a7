package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dolphinbot/dolphin/internal/biz/domain"
)

// Mock implementations

type mockReplyStateRepo struct {
	enabled bool
	readErr error
	saveErr error
	saves   int
}

func (m *mockReplyStateRepo) IsEnabled(ctx context.Context) (bool, error) {
	if m.readErr != nil {
		return false, m.readErr
	}
	return m.enabled, nil
}

func (m *mockReplyStateRepo) SetEnabled(ctx context.Context, enabled bool) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.enabled = enabled
	m.saves++
	return nil
}

type mockHistoryRepo struct {
	histories map[string]*domain.ConversationHistory
	appendErr error
}

func newMockHistoryRepo() *mockHistoryRepo {
	return &mockHistoryRepo{histories: make(map[string]*domain.ConversationHistory)}
}

func (m *mockHistoryRepo) Get(ctx context.Context, groupID string) (*domain.ConversationHistory, error) {
	if h, ok := m.histories[groupID]; ok {
		return h, nil
	}
	return domain.NewConversationHistory(groupID), nil
}

func (m *mockHistoryRepo) Append(ctx context.Context, groupID, userID, message string) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	h, ok := m.histories[groupID]
	if !ok {
		h = domain.NewConversationHistory(groupID)
		m.histories[groupID] = h
	}
	h.Add(userID, message)
	return nil
}

func (m *mockHistoryRepo) CleanupStale(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}

func (m *mockHistoryRepo) entries(groupID string) []domain.HistoryEntry {
	if h, ok := m.histories[groupID]; ok {
		return h.Entries
	}
	return nil
}

const (
	testAdmin = "Uadmin"
	testGroup = "Cgroup0001ABCD"
)

func newTestRouter(cfg RouterConfig, rules ...string) (*RouterUsecase, *mockReplyStateRepo, *mockHistoryRepo) {
	state := &mockReplyStateRepo{enabled: true}
	history := newMockHistoryRepo()
	uc := NewRouterUsecase(domain.NewBroadcastDirectory(rules), state, history, cfg)
	return uc, state, history
}

func TestRoute_DirectMessageChecksum(t *testing.T) {
	uc, _, _ := newTestRouter(DefaultRouterConfig)

	action := uc.Route(context.Background(), domain.NewInboundMessage("u1", "", "hi"))
	if action.Type != domain.ActionReply {
		t.Fatalf("Expected reply action, got %s", action.Type)
	}
	if action.ReplyText != domain.ReplyNo {
		t.Errorf("Expected %q, got %q", domain.ReplyNo, action.ReplyText)
	}
}

func TestRoute_ControlCommands(t *testing.T) {
	uc, state, _ := newTestRouter(DefaultRouterConfig, testAdmin+":"+testGroup)
	ctx := context.Background()

	action := uc.Route(ctx, domain.NewInboundMessage(testAdmin, "", "@off"))
	if action.ReplyText != DefaultReplyTemplates.RepliesDisabled {
		t.Errorf("Expected %q, got %q", DefaultReplyTemplates.RepliesDisabled, action.ReplyText)
	}
	if state.enabled {
		t.Error("Expected replies to be disabled")
	}

	// Group auto-replies are gated
	action = uc.Route(ctx, domain.NewInboundMessage("u1", testGroup, "@dolphin anything"))
	if !action.IsNone() {
		t.Errorf("Expected no action while disabled, got %s", action.Type)
	}

	// Direct messages are not gated by default
	action = uc.Route(ctx, domain.NewInboundMessage("u1", "", "hi"))
	if action.Type != domain.ActionReply {
		t.Errorf("Expected direct reply while disabled, got %s", action.Type)
	}

	// Control commands work while disabled
	action = uc.Route(ctx, domain.NewInboundMessage(testAdmin, testGroup, "@ON"))
	if action.ReplyText != DefaultReplyTemplates.RepliesEnabled {
		t.Errorf("Expected %q, got %q", DefaultReplyTemplates.RepliesEnabled, action.ReplyText)
	}
	if !state.enabled {
		t.Error("Expected replies to be enabled")
	}
}

func TestRoute_ControlUnauthorized(t *testing.T) {
	uc, state, _ := newTestRouter(DefaultRouterConfig, testAdmin+":"+testGroup)

	action := uc.Route(context.Background(), domain.NewInboundMessage("Ustranger", "", "@off"))
	if action.ReplyText != DefaultReplyTemplates.ControlUnauthorized {
		t.Errorf("Expected %q, got %q", DefaultReplyTemplates.ControlUnauthorized, action.ReplyText)
	}
	if state.saves != 0 {
		t.Errorf("Expected no state change, got %d saves", state.saves)
	}
}

func TestRoute_ControlWithoutRules(t *testing.T) {
	uc, state, _ := newTestRouter(DefaultRouterConfig)

	action := uc.Route(context.Background(), domain.NewInboundMessage(testAdmin, "", "@on"))
	if action.ReplyText != DefaultReplyTemplates.BroadcastNotFound {
		t.Errorf("Expected %q, got %q", DefaultReplyTemplates.BroadcastNotFound, action.ReplyText)
	}
	if state.saves != 0 {
		t.Errorf("Expected no state change, got %d saves", state.saves)
	}
}

func TestRoute_ControlSaveFailure(t *testing.T) {
	uc, state, _ := newTestRouter(DefaultRouterConfig, testAdmin+":"+testGroup)
	state.saveErr = errors.New("disk full")

	action := uc.Route(context.Background(), domain.NewInboundMessage(testAdmin, "", "@off"))
	if action.ReplyText != DefaultReplyTemplates.ToggleFailed {
		t.Errorf("Expected %q, got %q", DefaultReplyTemplates.ToggleFailed, action.ReplyText)
	}
}

func TestRoute_StateReadFailureAssumesEnabled(t *testing.T) {
	uc, state, _ := newTestRouter(DefaultRouterConfig)
	state.readErr = errors.New("db locked")

	action := uc.Route(context.Background(), domain.NewInboundMessage("u1", testGroup, "@dolphin hi"))
	if action.Type != domain.ActionReply {
		t.Errorf("Expected reply when state is unreadable, got %s", action.Type)
	}
}

func TestRoute_RepeatDetection(t *testing.T) {
	uc, _, history := newTestRouter(DefaultRouterConfig)
	ctx := context.Background()

	action := uc.Route(ctx, domain.NewInboundMessage("u1", "g1", "Hello"))
	if !action.IsNone() {
		t.Fatalf("Expected no action for first message, got %s", action.Type)
	}

	action = uc.Route(ctx, domain.NewInboundMessage("u2", "g1", "hello there"))
	if action.Type != domain.ActionReply || action.ReplyText != "hello" {
		t.Errorf("Expected repeat reply %q, got %s %q", "hello", action.Type, action.ReplyText)
	}

	entries := history.entries("g1")
	if len(entries) != 2 || entries[1].Message != "hello there" {
		t.Errorf("Expected current message appended, got %+v", entries)
	}
}

func TestRoute_RepeatSameSenderIgnored(t *testing.T) {
	uc, _, _ := newTestRouter(DefaultRouterConfig)
	ctx := context.Background()

	uc.Route(ctx, domain.NewInboundMessage("u1", "g1", "hello"))
	action := uc.Route(ctx, domain.NewInboundMessage("u1", "g1", "hello"))
	if !action.IsNone() {
		t.Errorf("Expected no action for same-sender repeat, got %s", action.Type)
	}
}

func TestRoute_HistoryFailureIsNotFatal(t *testing.T) {
	uc, _, history := newTestRouter(DefaultRouterConfig)
	history.appendErr = errors.New("write failed")

	action := uc.Route(context.Background(), domain.NewInboundMessage("u1", "g1", "@dolphin hi"))
	if action.Type != domain.ActionReply {
		t.Errorf("Expected reply despite history failure, got %s", action.Type)
	}
}

func TestRoute_DisabledGroupSkipsHistory(t *testing.T) {
	uc, state, history := newTestRouter(DefaultRouterConfig)
	state.enabled = false

	uc.Route(context.Background(), domain.NewInboundMessage("u1", "g1", "hello"))
	if len(history.entries("g1")) != 0 {
		t.Errorf("Expected no history while disabled, got %+v", history.entries("g1"))
	}
}

func TestRoute_TriggerWithEmptyContent(t *testing.T) {
	uc, _, _ := newTestRouter(DefaultRouterConfig, testAdmin+":"+testGroup)

	for _, text := range []string{"@dolphin", "@all   ", "@all+abcd"} {
		action := uc.Route(context.Background(), domain.NewInboundMessage(testAdmin, "", text))
		if !action.IsNone() {
			t.Errorf("Expected no action for %q, got %s", text, action.Type)
		}
	}
}

func TestRoute_GroupTriggerChecksumAndHistory(t *testing.T) {
	uc, _, history := newTestRouter(DefaultRouterConfig, testAdmin+":"+testGroup)

	action := uc.Route(context.Background(), domain.NewInboundMessage(testAdmin, "g1", "@all hi"))
	if action.Type != domain.ActionReply {
		t.Fatalf("Expected checksum reply for @all inside a group, got %s", action.Type)
	}
	if want := domain.ChecksumReply(testAdmin, "hi"); action.ReplyText != want {
		t.Errorf("Expected %q, got %q", want, action.ReplyText)
	}

	entries := history.entries("g1")
	if len(entries) != 1 || entries[0].Message != "@all hi" {
		t.Errorf("Expected full text in history, got %+v", entries)
	}
}

func TestRoute_DirectBroadcastAuthorized(t *testing.T) {
	uc, _, _ := newTestRouter(DefaultRouterConfig, testAdmin+":"+testGroup)

	action := uc.Route(context.Background(), domain.NewInboundMessage(testAdmin, "", "@all Meeting at 5"))
	if action.Type != domain.ActionReplyAndPush {
		t.Fatalf("Expected reply_and_push, got %s", action.Type)
	}
	if action.PushTarget != testGroup {
		t.Errorf("Expected push target %q, got %q", testGroup, action.PushTarget)
	}
	if action.PushText != "Meeting at 5" {
		t.Errorf("Expected push text %q, got %q", "Meeting at 5", action.PushText)
	}
	if want := `📢 Broadcast message sent to group: "Meeting at 5"`; action.ReplyText != want {
		t.Errorf("Expected %q, got %q", want, action.ReplyText)
	}
	if want := `❌ Failed to broadcast message: "Meeting at 5"`; action.FailureText != want {
		t.Errorf("Expected %q, got %q", want, action.FailureText)
	}
}

func TestRoute_DirectBroadcastUnauthorized(t *testing.T) {
	uc, _, _ := newTestRouter(DefaultRouterConfig, testAdmin+":"+testGroup)

	action := uc.Route(context.Background(), domain.NewInboundMessage("Ustranger", "", "@all hi"))
	if action.Type != domain.ActionReply || action.ReplyText != DefaultReplyTemplates.BroadcastUnauthorized {
		t.Errorf("Expected unauthorized reply, got %s %q", action.Type, action.ReplyText)
	}
}

func TestRoute_SuffixBroadcast(t *testing.T) {
	uc, _, _ := newTestRouter(DefaultRouterConfig, testAdmin+":"+testGroup)
	ctx := context.Background()

	// Any sender may target a configured group by suffix
	action := uc.Route(ctx, domain.NewInboundMessage("Ustranger", "", "@all+abcd Hello Team"))
	if action.Type != domain.ActionReplyAndPush {
		t.Fatalf("Expected reply_and_push, got %s", action.Type)
	}
	if action.PushTarget != testGroup || action.PushText != "Hello Team" {
		t.Errorf("Expected push of %q to %q, got %q to %q", "Hello Team", testGroup, action.PushText, action.PushTarget)
	}

	action = uc.Route(ctx, domain.NewInboundMessage("Ustranger", "", "@all+zzzz Hello"))
	if want := "❌ No group found with last 4 digits: zzzz"; action.ReplyText != want {
		t.Errorf("Expected %q, got %q", want, action.ReplyText)
	}
}

func TestRoute_GroupBroadcastPolicy(t *testing.T) {
	cfg := DefaultRouterConfig
	cfg.GroupBroadcast = true
	uc, _, _ := newTestRouter(cfg, testAdmin+":"+testGroup)

	action := uc.Route(context.Background(), domain.NewInboundMessage(testAdmin, "g1", "@all hi"))
	if action.Type != domain.ActionReplyAndPush || action.PushTarget != testGroup {
		t.Errorf("Expected group broadcast to %q, got %s %q", testGroup, action.Type, action.PushTarget)
	}
}

func TestRoute_MuteDirectWhenDisabledPolicy(t *testing.T) {
	cfg := DefaultRouterConfig
	cfg.MuteDirectWhenDisabled = true
	uc, state, _ := newTestRouter(cfg)
	state.enabled = false

	action := uc.Route(context.Background(), domain.NewInboundMessage("u1", "", "hi"))
	if !action.IsNone() {
		t.Errorf("Expected direct message to be muted, got %s", action.Type)
	}
}

func TestRoute_CustomReplyTemplates(t *testing.T) {
	cfg := RouterConfig{Replies: ReplyTemplates{BroadcastSent: "sent {{content}}"}}
	uc, _, _ := newTestRouter(cfg, testAdmin+":"+testGroup)

	action := uc.Route(context.Background(), domain.NewInboundMessage(testAdmin, "", "@all ping"))
	if action.ReplyText != "sent ping" {
		t.Errorf("Expected %q, got %q", "sent ping", action.ReplyText)
	}
	// Unset templates keep their defaults
	if want := `❌ Failed to broadcast message: "ping"`; action.FailureText != want {
		t.Errorf("Expected %q, got %q", want, action.FailureText)
	}
}

func TestRoute_SuffixBroadcastAnySender(t *testing.T) {
	uc, _, _ := newTestRouter(DefaultRouterConfig, "u1:Cxxxx1234")
	ctx := context.Background()

	for _, sender := range []string{"u1", "u2", "u3"} {
		action := uc.Route(ctx, domain.NewInboundMessage(sender, "", "@all+1234 hello"))
		if action.Type != domain.ActionReplyAndPush || action.PushTarget != "Cxxxx1234" {
			t.Errorf("%s: expected push to Cxxxx1234, got %s %q", sender, action.Type, action.PushTarget)
		}
	}

	action := uc.Route(ctx, domain.NewInboundMessage("u2", "", "@all+9999 hello"))
	if action.Type != domain.ActionReply {
		t.Fatalf("Expected reply, got %s", action.Type)
	}
	if !strings.Contains(strings.ToLower(action.ReplyText), "no group found") {
		t.Errorf("Expected no group found reply, got %q", action.ReplyText)
	}
}

func TestRoute_TriggerSkipsRepeatDetection(t *testing.T) {
	uc, _, history := newTestRouter(DefaultRouterConfig)
	ctx := context.Background()

	if action := uc.Route(ctx, domain.NewInboundMessage("u1", "g1", "@d")); !action.IsNone() {
		t.Fatalf("Expected no action for plain text, got %s", action.Type)
	}

	action := uc.Route(ctx, domain.NewInboundMessage("u2", "g1", "@dolphin hi"))
	if want := domain.ChecksumReply("u2", "hi"); action.Type != domain.ActionReply || action.ReplyText != want {
		t.Errorf("Expected checksum reply %q, got %s %q", want, action.Type, action.ReplyText)
	}

	// Bare "@all" in history must not be echoed by a suffix broadcast
	h := domain.NewConversationHistory("g2")
	h.Add("u1", "@all")
	history.histories["g2"] = h

	action = uc.Route(ctx, domain.NewInboundMessage("u2", "g2", "@all+abcd x"))
	if want := domain.ChecksumReply("u2", "x"); action.Type != domain.ActionReply || action.ReplyText != want {
		t.Errorf("Expected checksum reply %q, got %s %q", want, action.Type, action.ReplyText)
	}
}

func TestRoute_NonASCIIContentKeepsCase(t *testing.T) {
	uc, _, _ := newTestRouter(DefaultRouterConfig, testAdmin+":"+testGroup)
	ctx := context.Background()

	action := uc.Route(ctx, domain.NewInboundMessage("u1", "", "@dolphin İ"))
	if want := domain.ChecksumReply("u1", "İ"); action.ReplyText != want {
		t.Errorf("Expected %q, got %q", want, action.ReplyText)
	}

	action = uc.Route(ctx, domain.NewInboundMessage(testAdmin, "", "@all İstanbul Meeting AT 5PM"))
	if action.PushText != "İstanbul Meeting AT 5PM" {
		t.Errorf("Expected push text to keep its case, got %q", action.PushText)
	}
}
