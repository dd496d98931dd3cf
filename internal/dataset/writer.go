// Package dataset manages the CSV partitions and the consolidated training
// dataset in object storage.
package dataset

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"

	"github.com/kickon/kickon/internal/domain"
	"github.com/kickon/kickon/internal/storage"
)

// Header is the fixed column order of every partition. Consumers rely on
// this order never changing between appends.
var Header = []string{
	"transfer",
	"name",
	"age",
	"market_value",
	"position",
	"joined_ts",
	"expires_ts",
	"appearances",
	"goals",
	"assists",
	"team_rank",
}

// PartitionKey returns the storage key of one team's partition.
func PartitionKey(prefix string, teamIdx int, teamName string) string {
	return fmt.Sprintf("%steam_%04d_%s.csv", prefix, teamIdx, teamName)
}

// Writer appends player records to per-team CSV partitions. The backend has
// no append primitive, so each append is a read-modify-write: read the whole
// partition, keep every existing row verbatim, add one row, write the whole
// partition back in a single Put.
//
// Exactly-once semantics hold only while a single crawler drives a given
// team; concurrent writers to the same partition race.
type Writer struct {
	storage storage.ObjectStorage
	prefix  string
}

// NewWriter creates a writer rooted at the given raw prefix.
func NewWriter(st storage.ObjectStorage, prefix string) *Writer {
	return &Writer{storage: st, prefix: prefix}
}

// AppendRecord adds one record to the team's partition, creating the
// partition with its header row on first write.
func (w *Writer) AppendRecord(ctx context.Context, teamIdx int, teamName string, rec domain.PlayerRecord) error {
	key := PartitionKey(w.prefix, teamIdx, teamName)

	rows, err := w.readPartition(ctx, key)
	if err != nil {
		return err
	}
	rows = append(rows, recordRow(rec))

	data, err := encodeCSV(rows)
	if err != nil {
		return fmt.Errorf("encode partition %s: %w", key, err)
	}
	if err := w.storage.Put(ctx, key, data, "text/csv"); err != nil {
		return fmt.Errorf("write partition %s: %w", key, err)
	}
	return nil
}

// readPartition returns the existing rows, or just the header row when the
// partition does not exist yet.
func (w *Writer) readPartition(ctx context.Context, key string) ([][]string, error) {
	data, err := w.storage.Get(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return [][]string{Header}, nil
		}
		return nil, fmt.Errorf("read partition %s: %w", key, err)
	}

	rows, err := parseCSV(data)
	if err != nil {
		return nil, fmt.Errorf("parse partition %s: %w", key, err)
	}
	return rows, nil
}

// recordRow encodes one record in Header order.
func recordRow(rec domain.PlayerRecord) []string {
	return []string{
		strconv.Itoa(rec.Transfer),
		rec.Name,
		strconv.Itoa(rec.Age),
		strconv.FormatFloat(rec.MarketValue, 'f', -1, 64),
		strconv.Itoa(rec.Position),
		strconv.FormatInt(rec.JoinedTS, 10),
		strconv.FormatInt(rec.ExpiresTS, 10),
		strconv.Itoa(rec.Appearances),
		strconv.Itoa(rec.Goals),
		strconv.Itoa(rec.Assists),
		strconv.Itoa(rec.TeamRank),
	}
}

func parseCSV(data []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	return r.ReadAll()
}

func encodeCSV(rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
