package data

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestFileReplyState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "reply_state.txt")
	store := NewFileReplyState(path)
	ctx := context.Background()

	enabled, err := store.IsEnabled(ctx)
	if err != nil || !enabled {
		t.Fatalf("Expected enabled for missing file, got %v (err=%v)", enabled, err)
	}

	if err := store.SetEnabled(ctx, false); err != nil {
		t.Fatalf("SetEnabled failed: %v", err)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read state file: %v", err)
	}
	if string(content) != "disabled" {
		t.Errorf("Expected file content %q, got %q", "disabled", string(content))
	}

	enabled, _ = store.IsEnabled(ctx)
	if enabled {
		t.Error("Expected disabled")
	}

	store.SetEnabled(ctx, true)
	enabled, _ = store.IsEnabled(ctx)
	if !enabled {
		t.Error("Expected enabled")
	}
}

func TestFileReplyState_TolerantRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reply_state.txt")
	if err := os.WriteFile(path, []byte("disabled\n"), 0644); err != nil {
		t.Fatal(err)
	}

	enabled, err := NewFileReplyState(path).IsEnabled(context.Background())
	if err != nil {
		t.Fatalf("IsEnabled failed: %v", err)
	}
	if enabled {
		t.Error("Expected trailing newline to be ignored")
	}
}
