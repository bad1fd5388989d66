package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pricelens/backend/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) *HistoryRepository {
	t.Helper()
	repo, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func sampleRecord(name string, purchasedAt time.Time) *domain.PurchaseRecord {
	return &domain.PurchaseRecord{
		Name:        name,
		Price:       decimal.RequireFromString("1980.50"),
		Quantity:    decimal.RequireFromString("2.5"),
		Unit:        domain.UnitKilogram,
		TaxIncluded: false,
		TaxRate:     decimal.RequireFromString("0.08"),
		Store:       "Corner Mart",
		PurchasedAt: purchasedAt,
	}
}

func TestHistoryRepository_SaveAndGet(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	purchasedAt := time.Date(2026, 9, 1, 18, 30, 0, 0, time.UTC)

	record := sampleRecord("Rice", purchasedAt)
	require.NoError(t, repo.Save(ctx, record))
	assert.NotEqual(t, uuid.Nil, record.ID)
	assert.False(t, record.CreatedAt.IsZero())
	assert.False(t, record.UpdatedAt.IsZero())

	got, err := repo.GetByID(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, record.ID, got.ID)
	assert.Equal(t, "Rice", got.Name)
	assert.Equal(t, "1980.5", got.Price.String())
	assert.True(t, got.Quantity.Equal(decimal.RequireFromString("2.5")))
	assert.Equal(t, domain.UnitKilogram, got.Unit)
	assert.False(t, got.TaxIncluded)
	assert.True(t, got.TaxRate.Equal(decimal.RequireFromString("0.08")))
	assert.Equal(t, "Corner Mart", got.Store)
	assert.True(t, got.PurchasedAt.Equal(purchasedAt))
}

func TestHistoryRepository_SaveUpdatesExisting(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	record := sampleRecord("Rice", time.Now())
	require.NoError(t, repo.Save(ctx, record))
	createdAt := record.CreatedAt

	record.Price = decimal.RequireFromString("1780")
	require.NoError(t, repo.Save(ctx, record))

	got, err := repo.GetByID(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, "1780", got.Price.String())
	assert.True(t, got.CreatedAt.Equal(createdAt))

	all, err := repo.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestHistoryRepository_GetByID_NotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrRecordNotFound)
}

func TestHistoryRepository_ListNewestFirst(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, name := range []string{"oldest", "middle", "newest"} {
		require.NoError(t, repo.Save(ctx, sampleRecord(name, base.Add(time.Duration(i)*time.Hour))))
	}

	all, err := repo.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "newest", all[0].Name)
	assert.Equal(t, "oldest", all[2].Name)

	limited, err := repo.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestHistoryRepository_Delete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	record := sampleRecord("Rice", time.Now())
	require.NoError(t, repo.Save(ctx, record))

	require.NoError(t, repo.Delete(ctx, record.ID))
	assert.ErrorIs(t, repo.Delete(ctx, record.ID), domain.ErrRecordNotFound)

	_, err := repo.GetByID(ctx, record.ID)
	assert.ErrorIs(t, err, domain.ErrRecordNotFound)
}
