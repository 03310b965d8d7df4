package gormstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mateovidal/spinmart-backend/pkg/kvstore"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Entry is the persisted row backing a single key. Expiry is enforced on
// read; a sweeper is not required for correctness.
type Entry struct {
	Key       string `gorm:"primaryKey;column:key"`
	Value     []byte `gorm:"column:value"`
	ExpiresAt *time.Time
	UpdatedAt time.Time
}

func (Entry) TableName() string { return "kv_entries" }

// Store persists blobs in a single relational table. Postgres in production,
// sqlite in-memory in tests.
type Store struct {
	db  *gorm.DB
	now func() time.Time
}

var _ kvstore.Store = (*Store)(nil)

func New(db *gorm.DB) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("gorm connection required")
	}
	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Write(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	entry := Entry{
		Key:       key,
		Value:     append([]byte(nil), value...),
		UpdatedAt: s.now(),
	}
	if ttl > 0 {
		expires := s.now().Add(ttl)
		entry.ExpiresAt = &expires
	}

	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "expires_at", "updated_at"}),
		}).
		Create(&entry).Error
}

func (s *Store) Read(ctx context.Context, key string) ([]byte, error) {
	var entry Entry
	err := s.db.WithContext(ctx).First(&entry, "key = ?", key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, kvstore.ErrNotFound
		}
		return nil, err
	}
	if entry.ExpiresAt != nil && !s.now().Before(*entry.ExpiresAt) {
		_ = s.db.WithContext(ctx).Delete(&Entry{}, "key = ?", key).Error
		return nil, kvstore.ErrNotFound
	}
	return entry.Value, nil
}

func (s *Store) Clear(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Delete(&Entry{}, "key = ?", key).Error
}
