package line

// Webhook is the top-level payload posted by the LINE Platform
type Webhook struct {
	Destination string  `json:"destination"`
	Events      []Event `json:"events"`
}

// Event represents a single webhook event
type Event struct {
	Type            string          `json:"type"` // message, follow, unfollow, join, leave, postback
	WebhookEventID  string          `json:"webhookEventId"`
	Timestamp       int64           `json:"timestamp"`
	Mode            string          `json:"mode"`
	ReplyToken      string          `json:"replyToken,omitempty"`
	Source          Source          `json:"source"`
	Message         *EventMessage   `json:"message,omitempty"`
	DeliveryContext DeliveryContext `json:"deliveryContext"`
}

// Source identifies where an event came from
type Source struct {
	Type    string `json:"type"` // user, group, room
	UserID  string `json:"userId,omitempty"`
	GroupID string `json:"groupId,omitempty"`
	RoomID  string `json:"roomId,omitempty"`
}

// EventMessage is the message part of a message event
type EventMessage struct {
	ID         string `json:"id"`
	Type       string `json:"type"` // text, image, video, audio, sticker
	Text       string `json:"text,omitempty"`
	QuoteToken string `json:"quoteToken,omitempty"`
}

// DeliveryContext tells whether LINE is redelivering an event
type DeliveryContext struct {
	IsRedelivery bool `json:"isRedelivery"`
}

// IsTextMessage checks for a message event carrying text
func (e *Event) IsTextMessage() bool {
	return e.Type == "message" && e.Message != nil && e.Message.Type == "text"
}

// TextMessage is an outbound text message
type TextMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// NewTextMessage creates an outbound text message
func NewTextMessage(text string) TextMessage {
	return TextMessage{Type: "text", Text: text}
}

// ReplyRequest is the body of POST /message/reply
type ReplyRequest struct {
	ReplyToken string        `json:"replyToken"`
	Messages   []TextMessage `json:"messages"`
}

// PushRequest is the body of POST /message/push
type PushRequest struct {
	To       string        `json:"to"`
	Messages []TextMessage `json:"messages"`
}
