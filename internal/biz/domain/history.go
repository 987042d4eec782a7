package domain

import (
	"strings"
	"time"
)

// HistoryCapacity is the number of entries kept per group
const HistoryCapacity = 2

// HistoryEntry is one (sender, message) pair
type HistoryEntry struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

// ConversationHistory is the per-group sliding window of recent messages
type ConversationHistory struct {
	GroupID   string         `json:"-"`
	Entries   []HistoryEntry `json:"entries"`
	UpdatedAt time.Time      `json:"-"`
}

// NewConversationHistory creates an empty history for a group
func NewConversationHistory(groupID string) *ConversationHistory {
	return &ConversationHistory{GroupID: groupID, Entries: []HistoryEntry{}}
}

// Add appends an entry, evicting the oldest ones beyond HistoryCapacity
func (h *ConversationHistory) Add(userID, message string) {
	h.Entries = append(h.Entries, HistoryEntry{UserID: userID, Message: message})
	if over := len(h.Entries) - HistoryCapacity; over > 0 {
		h.Entries = append([]HistoryEntry(nil), h.Entries[over:]...)
	}
	h.UpdatedAt = time.Now()
}

// Last returns the most recent entry
func (h *ConversationHistory) Last() (HistoryEntry, bool) {
	if h == nil || len(h.Entries) == 0 {
		return HistoryEntry{}, false
	}
	return h.Entries[len(h.Entries)-1], true
}

// RepeatOf reports whether text from userID echoes the previous message of another sender.
// It returns the previous message lowercased, which is the reply for a repeat.
func (h *ConversationHistory) RepeatOf(userID, text string) (string, bool) {
	last, ok := h.Last()
	if !ok || last.UserID == userID {
		return "", false
	}
	previous := strings.ToLower(last.Message)
	if !strings.HasPrefix(strings.ToLower(text), previous) {
		return "", false
	}
	return previous, true
}
