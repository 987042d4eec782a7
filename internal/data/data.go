package data

import (
	"fmt"
	"strings"

	"github.com/dolphinbot/dolphin/internal/biz/repo"
	"github.com/dolphinbot/dolphin/internal/infra/line"
)

// Storage backends
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
	BackendMemory = "memory"
)

// StoreConfig selects where reply state and history live
type StoreConfig struct {
	Backend        string
	DBPath         string
	ReplyStateFile string
}

// Repositories contains all repositories
type Repositories struct {
	Message    repo.MessageRepo
	ReplyState repo.ReplyStateRepo
	History    repo.HistoryRepo

	closers []func() error
}

// NewRepositories creates all repositories
func NewRepositories(lineClient *line.Client, cfg StoreConfig) (*Repositories, error) {
	repos := &Repositories{
		Message: NewLineRepo(lineClient),
	}

	switch strings.ToLower(cfg.Backend) {
	case BackendSQLite, "":
		store, err := NewSQLiteStore(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		repos.ReplyState = store
		repos.History = store
		repos.closers = append(repos.closers, store.Close)
	case BackendFile:
		// The file backend only covers the toggle; history stays in process
		repos.ReplyState = NewFileReplyState(cfg.ReplyStateFile)
		repos.History = NewMemoryHistory()
	case BackendMemory:
		repos.ReplyState = NewMemoryReplyState()
		repos.History = NewMemoryHistory()
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}

	return repos, nil
}

// Close releases underlying storage
func (r *Repositories) Close() error {
	var firstErr error
	for _, c := range r.closers {
		if err := c(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
