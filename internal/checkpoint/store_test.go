package checkpoint

import (
	"context"
	"errors"
	"testing"

	"github.com/kickon/kickon/internal/domain"
	"github.com/kickon/kickon/internal/storage"
)

const testKey = "crawl/progress.json"

func TestLoadAbsentReturnsZero(t *testing.T) {
	store := NewStore(storage.NewMemoryStorage(), testKey)

	cp, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cp.TeamIdx != 0 || cp.PlayerIdx != 0 {
		t.Errorf("Load on empty store = %+v, want zero checkpoint", cp)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := NewStore(storage.NewMemoryStorage(), testKey)
	ctx := context.Background()

	want := domain.Checkpoint{TeamIdx: 2, PlayerIdx: 3}
	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != want {
		t.Errorf("Load = %+v, want %+v", got, want)
	}
}

func TestReset(t *testing.T) {
	store := NewStore(storage.NewMemoryStorage(), testKey)
	ctx := context.Background()

	if err := store.Save(ctx, domain.Checkpoint{TeamIdx: 7, PlayerIdx: 12}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Reset(ctx); err != nil {
		t.Fatalf("Reset: %v", err)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.TeamIdx != 0 || got.PlayerIdx != 0 {
		t.Errorf("Load after Reset = %+v, want zero checkpoint", got)
	}
}

// failingStorage simulates a transient backend failure on every call.
type failingStorage struct {
	storage.ObjectStorage
}

var errBackend = errors.New("backend unavailable")

func (f *failingStorage) Get(_ context.Context, _ string) ([]byte, error) {
	return nil, errBackend
}

func TestLoadTransientErrorSurfaces(t *testing.T) {
	store := NewStore(&failingStorage{}, testKey)

	_, err := store.Load(context.Background())
	if !errors.Is(err, errBackend) {
		t.Errorf("Load should surface storage errors, got %v", err)
	}
}

func TestLoadCorruptCheckpointSurfaces(t *testing.T) {
	mem := storage.NewMemoryStorage()
	ctx := context.Background()
	if err := mem.Put(ctx, testKey, []byte("not json"), "application/json"); err != nil {
		t.Fatalf("Put: %v", err)
	}

	store := NewStore(mem, testKey)
	if _, err := store.Load(ctx); err == nil {
		t.Error("Load should fail on a corrupt checkpoint")
	}
}
