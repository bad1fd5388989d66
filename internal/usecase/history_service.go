package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pricelens/backend/internal/domain"
	"golang.org/x/sync/errgroup"
)

// HistoryServiceConfig holds configuration for the history service
type HistoryServiceConfig struct {
	CacheTTL           time.Duration
	MaxParallel        int
	DefaultListLimit   int
	EnableDebugLogging bool
}

// HistoryService manages purchase history and compares new products against it
type HistoryService struct {
	repo               domain.HistoryRepository
	cache              domain.CacheRepository
	engine             *ComparisonEngine
	cacheTTL           time.Duration
	maxParallel        int
	defaultListLimit   int
	enableDebugLogging bool
}

// HistoryEntry pairs a historical record with the comparison against it.
// The new candidate is always productA; the record is productB.
type HistoryEntry struct {
	Record domain.PurchaseRecord   `json:"record"`
	Result domain.ComparisonResult `json:"result"`
}

// HistoryComparison is the outcome of comparing a candidate against history
type HistoryComparison struct {
	Candidate domain.ProductCandidate `json:"candidate"`
	Entries   []HistoryEntry          `json:"entries"`
	Best      *HistoryEntry           `json:"best,omitempty"`
	Skipped   int                     `json:"skipped"`
}

// NewHistoryService creates a new history service with dependencies
func NewHistoryService(
	repo domain.HistoryRepository,
	cache domain.CacheRepository,
	engine *ComparisonEngine,
	config HistoryServiceConfig,
) *HistoryService {
	cacheTTL := config.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = 24 * time.Hour
	}
	maxParallel := config.MaxParallel
	if maxParallel <= 0 {
		maxParallel = 8
	}
	listLimit := config.DefaultListLimit
	if listLimit <= 0 {
		listLimit = 100
	}

	return &HistoryService{
		repo:               repo,
		cache:              cache,
		engine:             engine,
		cacheTTL:           cacheTTL,
		maxParallel:        maxParallel,
		defaultListLimit:   listLimit,
		enableDebugLogging: config.EnableDebugLogging,
	}
}

// RecordPurchase validates raw input and stores it as a purchase record
func (s *HistoryService) RecordPurchase(
	ctx context.Context,
	raw RawProduct,
	store string,
	purchasedAt time.Time,
	settings domain.SettingsProvider,
) (*domain.PurchaseRecord, error) {
	candidate, errs := ParseCandidate(raw, settings)
	if len(errs) > 0 {
		return nil, &domain.ComparisonError{Kind: domain.ErrProductAInvalid, ErrorsA: errs}
	}

	record := &domain.PurchaseRecord{
		Name:        candidate.Name,
		Price:       candidate.Price,
		Quantity:    candidate.Quantity,
		Unit:        candidate.Unit,
		TaxIncluded: candidate.TaxIncluded,
		TaxRate:     candidate.TaxRate,
		Store:       store,
		PurchasedAt: purchasedAt,
	}
	if err := s.repo.Save(ctx, record); err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, cacheKey(record.ID), record, s.cacheTTL); err != nil {
		log.Printf("[HISTORY] cache set failed for %s: %v", record.ID, err)
	}
	return record, nil
}

// GetRecord looks up a record, checking the cache before the repository
func (s *HistoryService) GetRecord(ctx context.Context, id uuid.UUID) (*domain.PurchaseRecord, error) {
	key := cacheKey(id)

	var cached domain.PurchaseRecord
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		if s.enableDebugLogging {
			log.Printf("[HISTORY] cache hit for %s", id)
		}
		return &cached, nil
	}

	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, record, s.cacheTTL); err != nil {
		log.Printf("[HISTORY] cache set failed for %s: %v", id, err)
	}
	return record, nil
}

// ListRecords returns recent purchases, newest first
func (s *HistoryService) ListRecords(ctx context.Context, limit int) ([]domain.PurchaseRecord, error) {
	if limit <= 0 {
		limit = s.defaultListLimit
	}
	return s.repo.List(ctx, limit)
}

// DeleteRecord removes a record and its cached copy
func (s *HistoryService) DeleteRecord(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.cache.Delete(ctx, cacheKey(id)); err != nil {
		log.Printf("[HISTORY] cache delete failed for %s: %v", id, err)
	}
	return nil
}

// CompareWithRecord compares candidate (productA) against one stored record (productB)
func (s *HistoryService) CompareWithRecord(
	ctx context.Context,
	candidate domain.ProductCandidate,
	id uuid.UUID,
) (*domain.ComparisonResult, *domain.PurchaseRecord, error) {
	record, err := s.GetRecord(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	result, err := s.engine.Compare(candidate, record.Candidate())
	if err != nil {
		return nil, record, err
	}
	return result, record, nil
}

// CompareWithHistory compares candidate against every eligible record
// among the most recent limit purchases. Records with another unit category
// or that no longer validate are skipped. Entries are ordered cheapest
// record first.
func (s *HistoryService) CompareWithHistory(
	ctx context.Context,
	candidate domain.ProductCandidate,
	limit int,
) (*HistoryComparison, error) {
	if errs := candidate.Validate(); len(errs) > 0 {
		return nil, &domain.ComparisonError{Kind: domain.ErrProductAInvalid, ErrorsA: errs}
	}

	records, err := s.ListRecords(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}

	var eligible []domain.PurchaseRecord
	for _, record := range records {
		if record.Unit.IsValid() && domain.IsComparable(candidate.Unit, record.Unit) {
			eligible = append(eligible, record)
		}
	}

	results := make([]*domain.ComparisonResult, len(eligible))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxParallel)
	for i := range eligible {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			result, err := s.engine.Compare(candidate, eligible[i].Candidate())
			if err != nil {
				// a stored record that fails comparison is skipped, not fatal
				var cmpErr *domain.ComparisonError
				var calcErr *domain.CalculationError
				if errors.As(err, &cmpErr) || errors.As(err, &calcErr) {
					if s.enableDebugLogging {
						log.Printf("[HISTORY] skipping record %s: %v", eligible[i].ID, err)
					}
					return nil
				}
				return err
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &HistoryComparison{
		Candidate: candidate,
		Entries:   make([]HistoryEntry, 0, len(eligible)),
		Skipped:   len(records) - len(eligible),
	}
	for i, result := range results {
		if result == nil {
			out.Skipped++
			continue
		}
		out.Entries = append(out.Entries, HistoryEntry{Record: eligible[i], Result: *result})
	}

	sort.SliceStable(out.Entries, func(i, j int) bool {
		return out.Entries[i].Result.Details.UnitPriceB.LessThan(out.Entries[j].Result.Details.UnitPriceB)
	})
	if len(out.Entries) > 0 {
		out.Best = &out.Entries[0]
	}

	if s.enableDebugLogging {
		log.Printf("[HISTORY] compared %q against %d records (%d skipped)",
			candidate.Name, len(out.Entries), out.Skipped)
	}
	return out, nil
}

// cacheKey builds the cache key for a purchase record.
// Format: "history:{uuid}"
func cacheKey(id uuid.UUID) string {
	return "history:" + id.String()
}
