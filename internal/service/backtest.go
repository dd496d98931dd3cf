package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kickon/kickon/internal/dataset"
	"github.com/kickon/kickon/internal/logger"
	"github.com/kickon/kickon/internal/storage"
)

// BacktestConfig holds the evaluation settings.
type BacktestConfig struct {
	ArchivePrefix string
	Weight        float64
	Threshold     float64
	// JoinedCutoff drops rows of players who arrived on or after this
	// date. Zero disables the filter.
	JoinedCutoff time.Time
}

// BacktestService replays archived partitions through the live scoring path
// and measures the fused score against the recorded transfer labels. Rows
// that fail to score are skipped and counted, not fatal; a backtest should
// survive a flaky model endpoint.
type BacktestService struct {
	storage  storage.ObjectStorage
	ensemble ensemble
	cfg      BacktestConfig
	logger   *logger.Logger
}

// NewBacktestService creates a backtest runner.
func NewBacktestService(
	st storage.ObjectStorage,
	model ModelScorer,
	news NewsSource,
	classifier ArticleClassifier,
	cfg BacktestConfig,
	log *logger.Logger,
) *BacktestService {
	if log == nil {
		log = logger.GetDefault()
	}
	return &BacktestService{
		storage: st,
		ensemble: ensemble{
			model:      model,
			news:       news,
			classifier: classifier,
			weight:     cfg.Weight,
			logger:     log,
		},
		cfg:    cfg,
		logger: log,
	}
}

// FileResult is the per-partition outcome.
type FileResult struct {
	Key     string
	Total   int
	Correct int
	Skipped int
}

// Accuracy returns the share of correctly classified rows.
func (r FileResult) Accuracy() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Correct) / float64(r.Total)
}

// BacktestResult aggregates a whole run.
type BacktestResult struct {
	Files   []FileResult
	Total   int
	Correct int
	Skipped int
}

// Accuracy returns the overall share of correctly classified rows.
func (r BacktestResult) Accuracy() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Correct) / float64(r.Total)
}

// Run evaluates every archived partition.
func (s *BacktestService) Run(ctx context.Context) (*BacktestResult, error) {
	keys, err := s.storage.List(ctx, s.cfg.ArchivePrefix)
	if err != nil {
		return nil, fmt.Errorf("list archive: %w", err)
	}

	result := &BacktestResult{}
	for _, key := range keys {
		if !strings.HasSuffix(strings.ToLower(key), ".csv") {
			continue
		}
		fr, err := s.evaluateFile(ctx, key)
		if err != nil {
			return nil, err
		}
		result.Files = append(result.Files, fr)
		result.Total += fr.Total
		result.Correct += fr.Correct
		result.Skipped += fr.Skipped

		logger.With(logger.Fields{
			"file":     key,
			"accuracy": fr.Accuracy(),
			"rows":     fr.Total,
			"skipped":  fr.Skipped,
		}).Info(ctx, "Partition evaluated")
	}

	return result, nil
}

func (s *BacktestService) evaluateFile(ctx context.Context, key string) (FileResult, error) {
	fr := FileResult{Key: key}

	data, err := s.storage.Get(ctx, key)
	if err != nil {
		return fr, fmt.Errorf("read %s: %w", key, err)
	}
	rows, err := parseArchiveCSV(data)
	if err != nil {
		return fr, fmt.Errorf("parse %s: %w", key, err)
	}
	if !s.cfg.JoinedCutoff.IsZero() {
		rows = dataset.FilterRowsJoinedBefore(rows, s.cfg.JoinedCutoff)
	}
	if len(rows) < 2 {
		return fr, nil
	}

	cols, err := columnIndex(rows[0])
	if err != nil {
		return fr, fmt.Errorf("%s: %w", key, err)
	}

	for i, row := range rows[1:] {
		label, name, featureCSV, err := extractRow(row, cols)
		if err != nil {
			s.logger.WithError(err).WithField("row", i+1).Warn("Malformed row skipped")
			fr.Skipped++
			continue
		}

		chance, _, _, err := s.ensemble.score(ctx, name, featureCSV)
		if err != nil {
			s.logger.WithError(err).WithField(logger.FieldPlayer, name).Warn("Row failed to score, skipping")
			fr.Skipped++
			continue
		}

		fr.Total++
		predicted := chance >= s.cfg.Threshold
		if predicted == (label == 1) {
			fr.Correct++
		}
	}

	return fr, nil
}

func parseArchiveCSV(data []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	return r.ReadAll()
}

// featureColumns is the order the model endpoint expects, matching
// domain.FeatureVector.CSV.
var featureColumns = []string{
	"age", "market_value", "joined_ts", "expires_ts",
	"appearances", "goals", "assists", "team_rank", "position",
}

func columnIndex(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range append([]string{"transfer", "name"}, featureColumns...) {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("missing column %q", required)
		}
	}
	return cols, nil
}

func extractRow(row []string, cols map[string]int) (label int, name, featureCSV string, err error) {
	get := func(col string) (string, error) {
		idx := cols[col]
		if idx >= len(row) {
			return "", fmt.Errorf("row too short for column %q", col)
		}
		return row[idx], nil
	}

	rawLabel, err := get("transfer")
	if err != nil {
		return 0, "", "", err
	}
	label, err = strconv.Atoi(strings.TrimSpace(rawLabel))
	if err != nil {
		return 0, "", "", fmt.Errorf("bad transfer label %q", rawLabel)
	}

	name, err = get("name")
	if err != nil {
		return 0, "", "", err
	}

	features := make([]string, len(featureColumns))
	for i, col := range featureColumns {
		v, err := get(col)
		if err != nil {
			return 0, "", "", err
		}
		features[i] = v
	}

	return label, name, strings.Join(features, ","), nil
}
