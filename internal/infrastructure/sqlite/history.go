package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pricelens/backend/internal/domain"
	"github.com/shopspring/decimal"
)

// HistoryRepository stores purchase records in SQLite.
// Decimal columns are TEXT so prices survive without float drift.
type HistoryRepository struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and prepares the schema.
// Use ":memory:" for an ephemeral store.
func Open(path string) (*HistoryRepository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// a single connection keeps ":memory:" databases shared across calls
	db.SetMaxOpenConns(1)

	repo := &HistoryRepository{db: db}
	if err := repo.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return repo, nil
}

func (r *HistoryRepository) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS purchase_records (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			price TEXT NOT NULL,
			quantity TEXT NOT NULL,
			unit TEXT NOT NULL,
			tax_included INTEGER NOT NULL,
			tax_rate TEXT NOT NULL,
			store TEXT,
			purchased_at TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_purchase_records_purchased_at
			ON purchase_records (purchased_at DESC);`,
	}
	for _, q := range queries {
		if _, err := r.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the database handle
func (r *HistoryRepository) Close() error {
	return r.db.Close()
}

// Save inserts the record or replaces an existing one with the same id.
// A zero id is replaced with a fresh uuid and timestamps are maintained.
func (r *HistoryRepository) Save(ctx context.Context, record *domain.PurchaseRecord) error {
	now := time.Now().UTC()
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	if record.PurchasedAt.IsZero() {
		record.PurchasedAt = now
	}
	record.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `INSERT INTO purchase_records
		(id, name, price, quantity, unit, tax_included, tax_rate, store, purchased_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			price = excluded.price,
			quantity = excluded.quantity,
			unit = excluded.unit,
			tax_included = excluded.tax_included,
			tax_rate = excluded.tax_rate,
			store = excluded.store,
			purchased_at = excluded.purchased_at,
			updated_at = excluded.updated_at`,
		record.ID.String(),
		record.Name,
		record.Price.String(),
		record.Quantity.String(),
		string(record.Unit),
		record.TaxIncluded,
		record.TaxRate.String(),
		record.Store,
		record.PurchasedAt.UTC().Format(time.RFC3339Nano),
		record.CreatedAt.UTC().Format(time.RFC3339Nano),
		record.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save purchase record %s: %w", record.ID, err)
	}
	return nil
}

const selectColumns = `SELECT id, name, price, quantity, unit, tax_included, tax_rate, store,
	purchased_at, created_at, updated_at FROM purchase_records`

// GetByID returns the record or domain.ErrRecordNotFound
func (r *HistoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.PurchaseRecord, error) {
	row := r.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id.String())
	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get purchase record %s: %w", id, err)
	}
	return record, nil
}

// List returns the most recent purchases first. limit <= 0 means no limit.
func (r *HistoryRepository) List(ctx context.Context, limit int) ([]domain.PurchaseRecord, error) {
	query := selectColumns + ` ORDER BY purchased_at DESC, created_at DESC`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list purchase records: %w", err)
	}
	defer rows.Close()

	var records []domain.PurchaseRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan purchase record: %w", err)
		}
		records = append(records, *record)
	}
	return records, rows.Err()
}

// Delete removes the record or returns domain.ErrRecordNotFound
func (r *HistoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM purchase_records WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("delete purchase record %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrRecordNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(s scanner) (*domain.PurchaseRecord, error) {
	var (
		id, name, price, quantity, unit, taxRate string
		store                                    sql.NullString
		taxIncluded                              bool
		purchasedAt, createdAt, updatedAt        string
	)
	if err := s.Scan(&id, &name, &price, &quantity, &unit, &taxIncluded, &taxRate, &store,
		&purchasedAt, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	record := &domain.PurchaseRecord{
		Name:        name,
		Unit:        domain.Unit(unit),
		TaxIncluded: taxIncluded,
		Store:       store.String,
	}

	var err error
	if record.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("column id: %w", err)
	}
	if record.Price, err = decimal.NewFromString(price); err != nil {
		return nil, fmt.Errorf("column price: %w", err)
	}
	if record.Quantity, err = decimal.NewFromString(quantity); err != nil {
		return nil, fmt.Errorf("column quantity: %w", err)
	}
	if record.TaxRate, err = decimal.NewFromString(taxRate); err != nil {
		return nil, fmt.Errorf("column tax_rate: %w", err)
	}
	if record.PurchasedAt, err = time.Parse(time.RFC3339Nano, purchasedAt); err != nil {
		return nil, fmt.Errorf("column purchased_at: %w", err)
	}
	if record.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("column created_at: %w", err)
	}
	if record.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, fmt.Errorf("column updated_at: %w", err)
	}
	return record, nil
}
