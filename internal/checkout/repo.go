package checkout

import (
	"context"

	"gorm.io/gorm"
)

// Repository persists order snapshots.
type Repository interface {
	CreateOrderRecord(ctx context.Context, record *OrderRecord) (*OrderRecord, error)
	FindOrderRecordsBySession(ctx context.Context, sessionID string) ([]OrderRecord, error)
	WithTx(tx *gorm.DB) Repository
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an order-record repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateOrderRecord(ctx context.Context, record *OrderRecord) (*OrderRecord, error) {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

func (r *repository) FindOrderRecordsBySession(ctx context.Context, sessionID string) ([]OrderRecord, error) {
	var records []OrderRecord
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}
