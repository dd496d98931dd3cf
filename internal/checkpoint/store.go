// Package checkpoint persists the crawl resume position in object storage.
package checkpoint

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kickon/kickon/internal/domain"
	"github.com/kickon/kickon/internal/storage"
)

// Store reads and writes the crawl checkpoint at a fixed storage key.
//
// A missing checkpoint is not an error: Load returns the zero position so a
// fresh crawl starts at the first team. Any other storage failure on Load is
// surfaced; the orchestrator cannot guess a starting point.
type Store struct {
	storage storage.ObjectStorage
	key     string
}

// NewStore creates a checkpoint store over the given object storage.
func NewStore(st storage.ObjectStorage, key string) *Store {
	return &Store{storage: st, key: key}
}

// Load returns the persisted checkpoint, or the zero position when absent.
func (s *Store) Load(ctx context.Context) (domain.Checkpoint, error) {
	data, err := s.storage.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return domain.Checkpoint{}, nil
		}
		return domain.Checkpoint{}, fmt.Errorf("load checkpoint: %w", err)
	}

	var cp domain.Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return domain.Checkpoint{}, fmt.Errorf("decode checkpoint: %w", err)
	}
	return cp, nil
}

// Save overwrites the checkpoint in one Put.
func (s *Store) Save(ctx context.Context, cp domain.Checkpoint) error {
	data, err := json.Marshal(cp)
	if err != nil {
		return fmt.Errorf("encode checkpoint: %w", err)
	}
	if err := s.storage.Put(ctx, s.key, data, "application/json"); err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}
	return nil
}

// Reset moves the checkpoint back to the zero position.
func (s *Store) Reset(ctx context.Context) error {
	return s.Save(ctx, domain.Checkpoint{})
}
