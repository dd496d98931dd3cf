package storage

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryStorageGetNotFound(t *testing.T) {
	m := NewMemoryStorage()

	_, err := m.Get(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStoragePutGet(t *testing.T) {
	m := NewMemoryStorage()
	ctx := context.Background()

	if err := m.Put(ctx, "a/b.csv", []byte("hello"), "text/csv"); err != nil {
		t.Fatalf("Put: %v", err)
	}

	data, err := m.Get(ctx, "a/b.csv")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("Get = %q, want %q", data, "hello")
	}
}

func TestMemoryStorageListPrefix(t *testing.T) {
	m := NewMemoryStorage()
	ctx := context.Background()

	for _, key := range []string{"raw/b.csv", "raw/a.csv", "archive/a.csv"} {
		if err := m.Put(ctx, key, []byte("x"), "text/csv"); err != nil {
			t.Fatalf("Put %s: %v", key, err)
		}
	}

	keys, err := m.List(ctx, "raw/")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("List returned %d keys, want 2", len(keys))
	}
	// lexical order
	if keys[0] != "raw/a.csv" || keys[1] != "raw/b.csv" {
		t.Errorf("List order = %v", keys)
	}
}

func TestMemoryStorageCopyDelete(t *testing.T) {
	m := NewMemoryStorage()
	ctx := context.Background()

	if err := m.Put(ctx, "src", []byte("payload"), "text/plain"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := m.Copy(ctx, "src", "dst"); err != nil {
		t.Fatalf("Copy: %v", err)
	}
	if err := m.Delete(ctx, "src"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if _, err := m.Get(ctx, "src"); !errors.Is(err, ErrNotFound) {
		t.Errorf("src should be gone, got %v", err)
	}
	data, err := m.Get(ctx, "dst")
	if err != nil {
		t.Fatalf("Get dst: %v", err)
	}
	if string(data) != "payload" {
		t.Errorf("dst = %q, want %q", data, "payload")
	}

	// deleting a missing key is not an error
	if err := m.Delete(ctx, "src"); err != nil {
		t.Errorf("Delete missing: %v", err)
	}
}
