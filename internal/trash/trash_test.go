package trash

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestMoveToTrashAndEmpty(t *testing.T) {
	dir := t.TempDir()
	m := New(dir, nil)

	f := filepath.Join(dir, "victim")
	if err := os.WriteFile(f, []byte("doomed"), 0o644); err != nil {
		t.Fatalf("setup write failed: %v", err)
	}

	ok, err := m.MoveToTrash(f)
	if err != nil {
		t.Fatalf("MoveToTrash error: %v", err)
	}
	if !ok {
		t.Fatalf("expected MoveToTrash to succeed")
	}
	if _, err := os.Stat(f); !os.IsNotExist(err) {
		t.Fatalf("expected source to be gone, stat err=%v", err)
	}
	if m.Pending() != 1 {
		t.Fatalf("expected 1 pending item, got %d", m.Pending())
	}

	m.Empty()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := m.Wait(ctx); err != nil {
		t.Fatalf("Wait returned error: %v", err)
	}
	if m.Pending() != 0 {
		t.Fatalf("expected 0 pending after Empty, got %d", m.Pending())
	}
}

func TestMoveToTrashMissingSource(t *testing.T) {
	m := New(t.TempDir(), nil)
	ok, err := m.MoveToTrash(filepath.Join(t.TempDir(), "nonexistent"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatalf("expected false for a missing source")
	}
}

func TestEmptyCreatesFreshTrashURL(t *testing.T) {
	dir := t.TempDir()
	m := New(dir, nil)

	f1 := filepath.Join(dir, "a")
	os.WriteFile(f1, []byte("1"), 0o644)
	m.MoveToTrash(f1)
	m.Empty()

	f2 := filepath.Join(dir, "b")
	os.WriteFile(f2, []byte("2"), 0o644)
	ok, err := m.MoveToTrash(f2)
	if err != nil || !ok {
		t.Fatalf("expected second move to succeed after Empty, ok=%v err=%v", ok, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := m.Wait(ctx); err != nil {
		t.Fatalf("Wait returned error: %v", err)
	}
}
