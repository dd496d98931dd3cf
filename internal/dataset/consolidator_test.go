package dataset

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kickon/kickon/internal/domain"
	"github.com/kickon/kickon/internal/storage"
)

func newTestConsolidator(mem *storage.MemoryStorage) *Consolidator {
	return NewConsolidator(mem, &ConsolidatorConfig{
		RawPrefix:     "crawl/raw/",
		ArchivePrefix: "crawl/archive/",
		CombinedKey:   "crawl/processed/combined.csv",
	}, nil)
}

func seedPartition(t *testing.T, mem *storage.MemoryStorage, teamIdx int, teamName string, rows int) {
	t.Helper()
	w := NewWriter(mem, "crawl/raw/")
	for i := 0; i < rows; i++ {
		rec := domain.PlayerRecord{Name: "P", Age: 20 + i, JoinedTS: 1500000000}
		if err := w.AppendRecord(context.Background(), teamIdx, teamName, rec); err != nil {
			t.Fatalf("seed partition: %v", err)
		}
	}
}

func combinedLines(t *testing.T, mem *storage.MemoryStorage) []string {
	t.Helper()
	data, err := mem.Get(context.Background(), "crawl/processed/combined.csv")
	if err != nil {
		t.Fatalf("read combined: %v", err)
	}
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func TestConsolidateMergesAndArchives(t *testing.T) {
	mem := storage.NewMemoryStorage()
	ctx := context.Background()
	seedPartition(t, mem, 0, "Alpha", 3)
	seedPartition(t, mem, 1, "Beta", 4)

	stats, err := newTestConsolidator(mem).Run(ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.PartitionsProcessed != 2 {
		t.Errorf("PartitionsProcessed = %d, want 2", stats.PartitionsProcessed)
	}
	if stats.RowsMerged != 7 {
		t.Errorf("RowsMerged = %d, want 7", stats.RowsMerged)
	}

	// combined carries data rows only, no header
	lines := combinedLines(t, mem)
	if len(lines) != 7 {
		t.Errorf("combined has %d rows, want 7", len(lines))
	}

	// name column stripped: each row one field narrower than the header
	for _, line := range lines {
		fields := strings.Split(line, ",")
		if len(fields) != len(Header)-1 {
			t.Errorf("combined row has %d fields, want %d: %q", len(fields), len(Header)-1, line)
		}
		if strings.Contains(line, "P") {
			t.Errorf("combined row still contains the name column: %q", line)
		}
	}

	// source partitions archived, no longer under the raw prefix
	raw, err := mem.List(ctx, "crawl/raw/")
	if err != nil {
		t.Fatalf("List raw: %v", err)
	}
	if len(raw) != 0 {
		t.Errorf("raw prefix still holds %v", raw)
	}
	archived, err := mem.List(ctx, "crawl/archive/")
	if err != nil {
		t.Fatalf("List archive: %v", err)
	}
	if len(archived) != 2 {
		t.Errorf("archive holds %d partitions, want 2: %v", len(archived), archived)
	}
}

func TestConsolidateUnionsWithPrevious(t *testing.T) {
	mem := storage.NewMemoryStorage()
	ctx := context.Background()
	c := newTestConsolidator(mem)

	seedPartition(t, mem, 0, "Alpha", 2)
	if _, err := c.Run(ctx); err != nil {
		t.Fatalf("first Run: %v", err)
	}

	seedPartition(t, mem, 1, "Beta", 3)
	if _, err := c.Run(ctx); err != nil {
		t.Fatalf("second Run: %v", err)
	}

	if got := len(combinedLines(t, mem)); got != 5 {
		t.Errorf("combined has %d rows after two runs, want 5", got)
	}
}

func TestConsolidateRerunWithoutNewPartitionsIsIdempotent(t *testing.T) {
	mem := storage.NewMemoryStorage()
	ctx := context.Background()
	c := newTestConsolidator(mem)

	seedPartition(t, mem, 0, "Alpha", 3)
	if _, err := c.Run(ctx); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	before := len(combinedLines(t, mem))

	stats, err := c.Run(ctx)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if stats.PartitionsProcessed != 0 {
		t.Errorf("second run processed %d partitions, want 0", stats.PartitionsProcessed)
	}
	if after := len(combinedLines(t, mem)); after != before {
		t.Errorf("row count changed on rerun: %d -> %d", before, after)
	}
}

func TestConsolidateAbortsBeforeDeletionOnReadError(t *testing.T) {
	mem := storage.NewMemoryStorage()
	ctx := context.Background()
	seedPartition(t, mem, 0, "Alpha", 2)

	fs := &flakyStorage{MemoryStorage: mem, failGetKey: "crawl/raw/team_0000_Alpha.csv"}
	c := NewConsolidator(fs, &ConsolidatorConfig{
		RawPrefix:     "crawl/raw/",
		ArchivePrefix: "crawl/archive/",
		CombinedKey:   "crawl/processed/combined.csv",
	}, nil)

	if _, err := c.Run(ctx); err == nil {
		t.Fatal("Run should fail on partition read error")
	}

	// nothing deleted, nothing written
	raw, _ := mem.List(ctx, "crawl/raw/")
	if len(raw) != 1 {
		t.Errorf("raw partitions = %v, want original intact", raw)
	}
	if _, err := mem.Get(ctx, "crawl/processed/combined.csv"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("combined dataset should not exist, got %v", err)
	}
}

// flakyStorage fails Get for one specific key.
type flakyStorage struct {
	*storage.MemoryStorage
	failGetKey string
}

func (f *flakyStorage) Get(ctx context.Context, key string) ([]byte, error) {
	if key == f.failGetKey {
		return nil, errors.New("transient backend failure")
	}
	return f.MemoryStorage.Get(ctx, key)
}

func TestFilterRowsJoinedBefore(t *testing.T) {
	rows := [][]string{
		{"transfer", "name", "joined_ts"},
		{"0", "keep", "1500000000"},
		{"1", "late", "1800000000"},
		{"0", "missing", "0"},
	}

	cutoff := time.Unix(1700000000, 0)
	got := FilterRowsJoinedBefore(rows, cutoff)
	if len(got) != 2 {
		t.Fatalf("filtered to %d rows, want 2 (header + keep)", len(got))
	}
	if got[1][1] != "keep" {
		t.Errorf("kept row = %v", got[1])
	}
}
