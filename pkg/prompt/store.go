package prompt

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
)

// PolicyStore serves the current policy document. When backed by a file it
// can follow edits with Watch; a failed reload keeps the previous document.
type PolicyStore struct {
	path   string
	doc    atomic.Pointer[string]
	logger *slog.Logger
}

// StaticPolicy returns a store that always serves doc.
func StaticPolicy(doc string) *PolicyStore {
	s := &PolicyStore{}
	s.doc.Store(&doc)
	return s
}

// NewPolicyStore loads the document at path. An empty path serves
// DefaultPolicy.
func NewPolicyStore(path string, logger *slog.Logger) (*PolicyStore, error) {
	if path == "" {
		return StaticPolicy(DefaultPolicy), nil
	}

	s := &PolicyStore{path: filepath.Clean(path), logger: logger}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Policy returns the current document.
func (s *PolicyStore) Policy() string {
	return *s.doc.Load()
}

// Reload re-reads the backing file. Empty files are rejected.
func (s *PolicyStore) Reload() error {
	if s.path == "" {
		return nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("reading policy file: %w", err)
	}

	doc := strings.TrimSpace(string(data))
	if doc == "" {
		return fmt.Errorf("policy file %s is empty", s.path)
	}

	s.doc.Store(&doc)
	return nil
}

// Watch reloads the document whenever the backing file is written or
// replaced, until ctx is done. The parent directory is watched so editors
// that rename over the file are picked up.
func (s *PolicyStore) Watch(ctx context.Context) error {
	if s.path == "" {
		<-ctx.Done()
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating policy watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		return fmt.Errorf("watching policy dir: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != s.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if err := s.Reload(); err != nil {
				s.logger.Warn("policy reload failed, keeping previous document", "path", s.path, "error", err)
				continue
			}
			s.logger.Info("policy document reloaded", "path", s.path)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("policy watcher error", "error", err)
		}
	}
}
