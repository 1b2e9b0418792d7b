package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/intentflow/intentflow/pkg/cdg"
	apperrors "github.com/intentflow/intentflow/pkg/errors"
)

// FileStore keeps drafts as JSON files, one per conversation. It is the
// default backend for CLI use.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates a file-backed draft store. An empty baseDir
// selects ~/.config/intentflow/drafts/.
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "resolve home dir")
		}
		baseDir = filepath.Join(home, ".config", "intentflow", "drafts")
	}
	if err := os.MkdirAll(baseDir, 0o700); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, err, "create draft dir")
	}
	return &FileStore{baseDir: baseDir}, nil
}

func (s *FileStore) draftPath(conversationID string) string {
	return filepath.Join(s.baseDir, conversationID+".json")
}

func (s *FileStore) Load(ctx context.Context, conversationID string) (*Draft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.draftPath(conversationID))
	if os.IsNotExist(err) {
		return nil, apperrors.New(apperrors.ErrCodeDraftNotFound, "no draft for conversation %s", conversationID)
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, err, "read draft file")
	}

	var d Draft
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidFormat, err, "parse draft %s", conversationID)
	}
	return &d, nil
}

func (s *FileStore) Save(ctx context.Context, conversationID string, g cdg.Graph) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := Draft{ConversationID: conversationID, Graph: g, UpdatedAt: time.Now().UTC()}
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInternal, err, "marshal draft")
	}
	if err := os.WriteFile(s.draftPath(conversationID), data, 0o600); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeSaveFailed, err, "write draft file")
	}
	return nil
}

func (s *FileStore) Delete(ctx context.Context, conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.draftPath(conversationID)); err != nil && !os.IsNotExist(err) {
		return apperrors.Wrap(apperrors.ErrCodeInternal, err, "remove draft file")
	}
	return nil
}

func (s *FileStore) Close(ctx context.Context) error { return nil }

var _ Store = (*FileStore)(nil)
