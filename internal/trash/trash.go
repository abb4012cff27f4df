// Package trash implements the process-wide trash manager: doomed files are
// renamed into a staging directory (fast) and deleted off the hot path
// (slow), so that a caller's remove never blocks on a directory-tree delete.
package trash

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Manager owns a lazily-created staging directory under root and a
// background executor that deletes detached staging directories. Each
// Empty call starts its own deletion goroutine, so deletions of different
// detached directories are not serialized with each other. It is safe for concurrent use and is meant to be
// constructed once per process (or once per test) and threaded through
// every cache instance that shares it, rather than reached for as a
// package-level global.
type Manager struct {
	root string // parent of the lazily-created trash directory; usually os.TempDir()
	log  *slog.Logger

	mu      sync.Mutex
	url     string // current trash directory; "" when unset
	pending int    // files moved into url since it was last detached

	group *errgroup.Group
}

// New constructs a Manager rooted at root (os.TempDir() is the usual
// choice). A nil logger defaults to slog.Default().
func New(root string, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		root:  root,
		log:   logger,
		group: &errgroup.Group{},
	}
}

// Pending reports how many items have been moved into the current trash
// directory since Empty last detached it. Items in a detached directory
// whose deletion is still running are not counted.
func (m *Manager) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pending
}

// MoveToTrash renames path into the trash directory under a fresh unique
// name, lazily creating the trash directory if needed. Returns false (with
// a nil error) if the source no longer exists; any other filesystem error
// is returned to the caller, who leaves metadata in place per the disk
// cache's contract.
func (m *Manager) MoveToTrash(path string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.url == "" {
		dir, err := os.MkdirTemp(m.root, "diskcache-trash-")
		if err != nil {
			return false, fmt.Errorf("trash: create staging dir: %w", err)
		}
		m.url = dir
	}

	dest := filepath.Join(m.url, uuid.NewString())
	if err := os.Rename(path, dest); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("trash: move %s to trash: %w", path, err)
	}
	m.pending++
	return true, nil
}

// Empty detaches the current trash directory (so concurrent MoveToTrash
// calls create and use a fresh one) and deletes the detached tree
// asynchronously on the manager's background executor. Safe to call when
// nothing is staged.
func (m *Manager) Empty() {
	m.mu.Lock()
	url := m.url
	m.url = ""
	m.pending = 0
	m.mu.Unlock()

	if url == "" {
		return
	}
	m.group.Go(func() error {
		if err := os.RemoveAll(url); err != nil {
			m.log.Error("trash: delete staging dir failed", "dir", url, "error", err)
			return err
		}
		return nil
	})
}

// Wait blocks until all deletions submitted to Empty have completed. Tests
// use this; production callers generally do not need to.
func (m *Manager) Wait(ctx context.Context) error {
	done := make(chan error, 1)
	go func() { done <- m.group.Wait() }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
