package dataset

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kickon/kickon/internal/logger"
	"github.com/kickon/kickon/internal/storage"
)

// Consolidator folds raw partitions into the consolidated training dataset
// and archives the consumed partitions.
//
// Ordering is deliberate: the combined dataset is written in one Put before
// any partition is copied or deleted, so an interruption can only leave a
// partition both merged and still present, re-merged (duplicated) on the
// next run, never lost. The duplicate-on-crash window is accepted; see
// DESIGN.md.
type Consolidator struct {
	storage       storage.ObjectStorage
	rawPrefix     string
	archivePrefix string
	combinedKey   string
	logger        *logger.Logger
}

// ConsolidatorConfig holds the storage locations the consolidator works on.
type ConsolidatorConfig struct {
	RawPrefix     string
	ArchivePrefix string
	CombinedKey   string
}

// NewConsolidator creates a consolidator over the given object storage.
func NewConsolidator(st storage.ObjectStorage, cfg *ConsolidatorConfig, log *logger.Logger) *Consolidator {
	if log == nil {
		log = logger.GetDefault()
	}
	return &Consolidator{
		storage:       st,
		rawPrefix:     cfg.RawPrefix,
		archivePrefix: cfg.ArchivePrefix,
		combinedKey:   cfg.CombinedKey,
		logger:        log,
	}
}

// ConsolidateStats reports one consolidation run.
type ConsolidateStats struct {
	PartitionsProcessed int
	RowsMerged          int
}

// Run lists raw partitions, strips the identity column, unions them with
// the previous consolidated dataset (previous rows first, then partitions
// in listing order), writes the result wholesale, and finally archives each
// consumed partition with copy-then-delete.
func (c *Consolidator) Run(ctx context.Context) (*ConsolidateStats, error) {
	keys, err := c.storage.List(ctx, c.rawPrefix)
	if err != nil {
		return nil, fmt.Errorf("list partitions: %w", err)
	}

	var processed []string
	var newRows [][]string
	for _, key := range keys {
		if !strings.HasSuffix(strings.ToLower(key), ".csv") {
			continue
		}
		// Guard against the archive or the combined dataset living under
		// the raw prefix in older layouts.
		if key == c.combinedKey || strings.HasPrefix(key, c.archivePrefix) {
			continue
		}

		data, err := c.storage.Get(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("read partition %s: %w", key, err)
		}
		rows, err := parseCSV(data)
		if err != nil {
			return nil, fmt.Errorf("parse partition %s: %w", key, err)
		}

		newRows = append(newRows, stripIdentity(rows)...)
		processed = append(processed, key)
		c.logger.WithField("partition", key).Info("Partition staged for merge")
	}

	stats := &ConsolidateStats{PartitionsProcessed: len(processed), RowsMerged: len(newRows)}
	if len(processed) == 0 {
		c.logger.Info("No new partitions to consolidate")
		return stats, nil
	}

	prev, err := c.readCombined(ctx)
	if err != nil {
		return nil, err
	}

	combined := append(prev, newRows...)
	data, err := encodeCSV(combined)
	if err != nil {
		return nil, fmt.Errorf("encode combined dataset: %w", err)
	}
	if err := c.storage.Put(ctx, c.combinedKey, data, "text/csv"); err != nil {
		return nil, fmt.Errorf("write combined dataset: %w", err)
	}

	// Archive only after the merge is durably visible.
	for _, key := range processed {
		dst := c.archivePrefix + strings.TrimPrefix(key, c.rawPrefix)
		if err := c.storage.Copy(ctx, key, dst); err != nil {
			return nil, fmt.Errorf("archive partition %s: %w", key, err)
		}
		if err := c.storage.Delete(ctx, key); err != nil {
			return nil, fmt.Errorf("remove partition %s: %w", key, err)
		}
	}

	c.logger.WithFields(logger.Fields{
		"partitions": stats.PartitionsProcessed,
		"rows":       stats.RowsMerged,
	}).Info("Consolidation completed")
	return stats, nil
}

// readCombined returns the previous consolidated rows; absence means empty.
func (c *Consolidator) readCombined(ctx context.Context) ([][]string, error) {
	data, err := c.storage.Get(ctx, c.combinedKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("read combined dataset: %w", err)
	}
	rows, err := parseCSV(data)
	if err != nil {
		return nil, fmt.Errorf("parse combined dataset: %w", err)
	}
	return rows, nil
}

// stripIdentity drops the header row and the name column, leaving only
// feature and label columns. The consolidated dataset carries no header.
func stripIdentity(rows [][]string) [][]string {
	if len(rows) == 0 {
		return nil
	}

	nameIdx := -1
	for i, col := range rows[0] {
		if strings.EqualFold(col, "name") {
			nameIdx = i
			break
		}
	}

	out := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if nameIdx < 0 || nameIdx >= len(row) {
			out = append(out, row)
			continue
		}
		reduced := make([]string, 0, len(row)-1)
		reduced = append(reduced, row[:nameIdx]...)
		reduced = append(reduced, row[nameIdx+1:]...)
		out = append(out, reduced)
	}
	return out
}
