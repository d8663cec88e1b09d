package repository

import (
	"context"

	"gorm.io/gorm"

	"imagify/internal/model"
)

// SettlementLogRepository defines settlement audit log persistence operations.
type SettlementLogRepository interface {
	Create(ctx context.Context, log *model.SettlementLog) error
	CreateBatch(ctx context.Context, logs []model.SettlementLog) error
}

type settlementLogRepository struct {
	db *gorm.DB
}

// NewSettlementLogRepository creates a new settlement log repository.
func NewSettlementLogRepository(db *gorm.DB) SettlementLogRepository {
	return &settlementLogRepository{db: db}
}

// Create creates a new settlement log entry.
func (r *settlementLogRepository) Create(ctx context.Context, log *model.SettlementLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// CreateBatch creates multiple settlement log entries in a single insert.
func (r *settlementLogRepository) CreateBatch(ctx context.Context, logs []model.SettlementLog) error {
	if len(logs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(logs, 100).Error
}
