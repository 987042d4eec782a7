package domain

// ActionType represents what the router decided to do
type ActionType string

const (
	ActionNone         ActionType = "none"
	ActionReply        ActionType = "reply"
	ActionReplyAndPush ActionType = "reply_and_push"
)

// Action is the outcome of routing one inbound message
type Action struct {
	Type ActionType

	// ReplyText is sent back with the reply token. For ActionReplyAndPush it is
	// the confirmation sent after a successful push.
	ReplyText string

	PushTarget string
	PushText   string

	// FailureText replaces ReplyText when the push fails
	FailureText string
}

// NoAction returns the empty action
func NoAction() Action {
	return Action{Type: ActionNone}
}

// SendReply returns a reply-only action
func SendReply(text string) Action {
	return Action{Type: ActionReply, ReplyText: text}
}

// SendReplyAndPush returns a push followed by a confirmation reply
func SendReplyAndPush(replyText, pushTarget, pushText, failureText string) Action {
	return Action{
		Type:        ActionReplyAndPush,
		ReplyText:   replyText,
		PushTarget:  pushTarget,
		PushText:    pushText,
		FailureText: failureText,
	}
}

// IsNone checks if nothing should be sent
func (a Action) IsNone() bool {
	return a.Type == ActionNone || a.Type == ""
}
