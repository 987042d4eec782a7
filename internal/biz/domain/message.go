package domain

// UnknownUserID is used when an event carries no sender id
const UnknownUserID = "unknown"

// InboundMessage represents one text message to route
type InboundMessage struct {
	UserID  string
	GroupID string // empty for direct (1:1) conversations
	Text    string // raw body, used verbatim for history
}

// NewInboundMessage builds a message, substituting UnknownUserID for a missing sender
func NewInboundMessage(userID, groupID, text string) InboundMessage {
	if userID == "" {
		userID = UnknownUserID
	}
	return InboundMessage{UserID: userID, GroupID: groupID, Text: text}
}

// IsGroup checks if the message was sent in a group conversation
func (m InboundMessage) IsGroup() bool {
	return m.GroupID != ""
}
