package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/kickon/kickon/internal/domain"
)

// PredictionRepository handles scored prediction logs.
type PredictionRepository struct {
	db *gorm.DB
}

// NewPredictionRepository creates a new PredictionRepository.
func NewPredictionRepository(db *gorm.DB) *PredictionRepository {
	return &PredictionRepository{db: db}
}

// Create inserts a prediction log record.
func (r *PredictionRepository) Create(ctx context.Context, log *domain.PredictionLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// ListByPlayer returns a player's past predictions, newest first.
func (r *PredictionRepository) ListByPlayer(ctx context.Context, playerName string, limit int) ([]domain.PredictionLog, error) {
	if limit <= 0 {
		limit = 20
	}
	var logs []domain.PredictionLog
	err := r.db.WithContext(ctx).
		Where("player_name = ?", playerName).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}
