package data

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FileReplyState keeps the reply toggle in a plain text file
// containing "enabled" or "disabled".
type FileReplyState struct {
	mu   sync.Mutex
	path string
}

// NewFileReplyState creates a file-backed reply state store
func NewFileReplyState(path string) *FileReplyState {
	return &FileReplyState{path: path}
}

// IsEnabled returns true when the file is missing or holds anything but "disabled"
func (s *FileReplyState) IsEnabled(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	content, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return true, nil
	}
	if err != nil {
		return true, fmt.Errorf("failed to read reply state file: %w", err)
	}
	return strings.TrimSpace(string(content)) != replyStateOff, nil
}

// SetEnabled writes the toggle through a temp file and rename
func (s *FileReplyState) SetEnabled(ctx context.Context, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	value := replyStateOff
	if enabled {
		value = replyStateEnabled
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create reply state directory: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, []byte(value), 0644); err != nil {
		return fmt.Errorf("failed to write reply state file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace reply state file: %w", err)
	}
	return nil
}
