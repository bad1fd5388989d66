package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CacheRepository defines the interface for caching operations.
// Get decodes the cached value into dst.
type CacheRepository interface {
	Get(ctx context.Context, key string, dst interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// HistoryRepository defines the interface for purchase history persistence
type HistoryRepository interface {
	Save(ctx context.Context, record *PurchaseRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*PurchaseRecord, error)
	List(ctx context.Context, limit int) ([]PurchaseRecord, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// SettingsProvider supplies defaults used to pre-populate candidates
type SettingsProvider interface {
	DefaultTaxRate() decimal.Decimal
	DefaultUnit() Unit
}
