package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/kickon/kickon/internal/domain"
)

// RunRepository handles crawl run history.
type RunRepository struct {
	db *gorm.DB
}

// NewRunRepository creates a new RunRepository.
func NewRunRepository(db *gorm.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts a new crawl run record.
func (r *RunRepository) Create(ctx context.Context, run *domain.CrawlRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

// Update persists the mutable fields of a run.
func (r *RunRepository) Update(ctx context.Context, run *domain.CrawlRun) error {
	return r.db.WithContext(ctx).Save(run).Error
}

// Finish marks a run with its terminal status and completion time.
func (r *RunRepository) Finish(ctx context.Context, run *domain.CrawlRun, status domain.RunStatus, errorLog string) error {
	now := time.Now()
	run.Status = status
	run.ErrorLog = errorLog
	run.CompletedAt = &now
	return r.Update(ctx, run)
}

// ListRecent returns the most recent runs, newest first.
func (r *RunRepository) ListRecent(ctx context.Context, limit int) ([]domain.CrawlRun, error) {
	if limit <= 0 {
		limit = 20
	}
	var runs []domain.CrawlRun
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&runs).Error
	return runs, err
}
