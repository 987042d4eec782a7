package data

import (
	"context"
	"sync"
	"time"

	"github.com/dolphinbot/dolphin/internal/biz/domain"
)

// MemoryReplyState is an in-process reply toggle
type MemoryReplyState struct {
	mu      sync.RWMutex
	enabled *bool
}

// NewMemoryReplyState creates an unset (enabled) toggle
func NewMemoryReplyState() *MemoryReplyState {
	return &MemoryReplyState{}
}

// IsEnabled returns true until SetEnabled(false) is called
func (s *MemoryReplyState) IsEnabled(ctx context.Context) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.enabled == nil {
		return true, nil
	}
	return *s.enabled, nil
}

// SetEnabled stores the toggle
func (s *MemoryReplyState) SetEnabled(ctx context.Context, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled = &enabled
	return nil
}

// MemoryHistory is an in-process history store
type MemoryHistory struct {
	mu     sync.Mutex
	groups map[string]*domain.ConversationHistory
}

// NewMemoryHistory creates an empty history store
func NewMemoryHistory() *MemoryHistory {
	return &MemoryHistory{groups: make(map[string]*domain.ConversationHistory)}
}

// Get returns a copy of the group history
func (s *MemoryHistory) Get(ctx context.Context, groupID string) (*domain.ConversationHistory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.groups[groupID]
	if !ok {
		return domain.NewConversationHistory(groupID), nil
	}
	out := *h
	out.Entries = append([]domain.HistoryEntry(nil), h.Entries...)
	return &out, nil
}

// Append adds an entry to the group history
func (s *MemoryHistory) Append(ctx context.Context, groupID, userID, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.groups[groupID]
	if !ok {
		h = domain.NewConversationHistory(groupID)
		s.groups[groupID] = h
	}
	h.Add(userID, message)
	return nil
}

// CleanupStale removes histories not updated since before
func (s *MemoryHistory) CleanupStale(ctx context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	for id, h := range s.groups {
		if h.UpdatedAt.Before(before) {
			delete(s.groups, id)
			removed++
		}
	}
	return removed, nil
}
