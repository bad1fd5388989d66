package http

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pricelens/backend/internal/domain"
	"github.com/pricelens/backend/internal/infrastructure/metrics"
	"github.com/pricelens/backend/internal/usecase"
)

const (
	modePair    = "pair"
	modeRecord  = "record"
	modeHistory = "history"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	engine   *usecase.ComparisonEngine
	history  *usecase.HistoryService
	settings domain.SettingsProvider
	metrics  *metrics.Metrics
}

// NewHandler creates a new HTTP handler.
// history may be nil; history endpoints then answer 503.
func NewHandler(
	engine *usecase.ComparisonEngine,
	history *usecase.HistoryService,
	settings domain.SettingsProvider,
	m *metrics.Metrics,
) *Handler {
	return &Handler{
		engine:   engine,
		history:  history,
		settings: settings,
		metrics:  m,
	}
}

// CompareRequest is the body of POST /api/v1/compare
type CompareRequest struct {
	ProductA usecase.RawProduct `json:"productA"`
	ProductB usecase.RawProduct `json:"productB"`
}

// HistoryCompareRequest is the body of the compare-with-history endpoints
type HistoryCompareRequest struct {
	Product usecase.RawProduct `json:"product"`
	Limit   int                `json:"limit,omitempty"`
}

// RecordPurchaseRequest is the body of POST /api/v1/history
type RecordPurchaseRequest struct {
	Product     usecase.RawProduct `json:"product"`
	Store       string             `json:"store,omitempty"`
	PurchasedAt *time.Time         `json:"purchasedAt,omitempty"`
}

// ValidateResponse reports per-field problems without running a comparison
type ValidateResponse struct {
	Valid     bool                     `json:"valid"`
	Candidate *domain.ProductCandidate `json:"candidate,omitempty"`
	Errors    []FieldErrorResponse     `json:"errors,omitempty"`
}

// UnitResponse describes one supported unit
type UnitResponse struct {
	Code             string `json:"code"`
	DisplayName      string `json:"displayName"`
	Category         string `json:"category"`
	ConversionFactor string `json:"conversionFactor"`
	IsBase           bool   `json:"isBase"`
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "pricelens-backend",
		"version": "1.0.0",
	})
}

// ListUnits returns every supported unit in table order
func (h *Handler) ListUnits(c *gin.Context) {
	units := domain.AllUnits()
	out := make([]UnitResponse, 0, len(units))
	for _, u := range units {
		out = append(out, UnitResponse{
			Code:             u.String(),
			DisplayName:      u.DisplayName(),
			Category:         string(u.Category()),
			ConversionFactor: u.BaseConversionFactor().String(),
			IsBase:           u.IsBase(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"units": out})
}

// GetSettings returns the defaults applied to omitted fields
func (h *Handler) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"defaultTaxRate": h.settings.DefaultTaxRate().String(),
		"defaultUnit":    h.settings.DefaultUnit(),
	})
}

// ValidateProduct checks a single product form and reports every field error
func (h *Handler) ValidateProduct(c *gin.Context) {
	var raw usecase.RawProduct
	if err := c.ShouldBindJSON(&raw); err != nil {
		h.respondError(c, invalidRequest(err))
		return
	}

	candidate, errs := usecase.ParseCandidate(raw, h.settings)
	if len(errs) > 0 {
		c.JSON(http.StatusOK, ValidateResponse{Valid: false, Errors: fieldErrors("", errs)})
		return
	}
	c.JSON(http.StatusOK, ValidateResponse{Valid: true, Candidate: &candidate})
}

// Compare compares two products entered as raw strings
func (h *Handler) Compare(c *gin.Context) {
	var req CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, invalidRequest(err))
		return
	}

	a, b, err := usecase.ParsePair(req.ProductA, req.ProductB, h.settings)
	if err != nil {
		h.metrics.IncFailure(modePair, domain.ErrorKindLabel(err))
		h.respondError(c, err)
		return
	}

	start := time.Now()
	result, err := h.engine.Compare(a, b)
	if err != nil {
		h.metrics.IncFailure(modePair, domain.ErrorKindLabel(err))
		h.respondError(c, err)
		return
	}
	h.metrics.ObserveComparison(modePair, string(result.Winner), time.Since(start))

	c.JSON(http.StatusOK, result)
}

// CompareWithRecord compares a product against one stored purchase
func (h *Handler) CompareWithRecord(c *gin.Context) {
	if !h.requireHistory(c) {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.respondError(c, invalidRequest(err))
		return
	}

	var req HistoryCompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, invalidRequest(err))
		return
	}

	candidate, errs := usecase.ParseCandidate(req.Product, h.settings)
	if len(errs) > 0 {
		err := &domain.ComparisonError{Kind: domain.ErrProductAInvalid, ErrorsA: errs}
		h.metrics.IncFailure(modeRecord, domain.ErrorKindLabel(err))
		h.respondError(c, err)
		return
	}

	start := time.Now()
	result, record, err := h.history.CompareWithRecord(c.Request.Context(), candidate, id)
	if err != nil {
		h.metrics.IncFailure(modeRecord, domain.ErrorKindLabel(err))
		h.respondError(c, err)
		return
	}
	h.metrics.ObserveComparison(modeRecord, string(result.Winner), time.Since(start))

	c.JSON(http.StatusOK, gin.H{
		"record": record,
		"result": result,
	})
}

// CompareWithHistory compares a product against recent purchases
func (h *Handler) CompareWithHistory(c *gin.Context) {
	if !h.requireHistory(c) {
		return
	}

	var req HistoryCompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, invalidRequest(err))
		return
	}

	candidate, errs := usecase.ParseCandidate(req.Product, h.settings)
	if len(errs) > 0 {
		err := &domain.ComparisonError{Kind: domain.ErrProductAInvalid, ErrorsA: errs}
		h.metrics.IncFailure(modeHistory, domain.ErrorKindLabel(err))
		h.respondError(c, err)
		return
	}

	start := time.Now()
	out, err := h.history.CompareWithHistory(c.Request.Context(), candidate, req.Limit)
	if err != nil {
		h.metrics.IncFailure(modeHistory, domain.ErrorKindLabel(err))
		h.respondError(c, err)
		return
	}
	winner := "none"
	if out.Best != nil {
		winner = string(out.Best.Result.Winner)
	}
	h.metrics.ObserveComparison(modeHistory, winner, time.Since(start))

	c.JSON(http.StatusOK, out)
}

// RecordPurchase stores a purchase in the history
func (h *Handler) RecordPurchase(c *gin.Context) {
	if !h.requireHistory(c) {
		return
	}

	var req RecordPurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, invalidRequest(err))
		return
	}

	purchasedAt := time.Now().UTC()
	if req.PurchasedAt != nil {
		purchasedAt = req.PurchasedAt.UTC()
	}

	record, err := h.history.RecordPurchase(c.Request.Context(), req.Product, req.Store, purchasedAt, h.settings)
	h.metrics.IncHistoryOp("save", err)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

// ListHistory returns recent purchases, newest first
func (h *Handler) ListHistory(c *gin.Context) {
	if !h.requireHistory(c) {
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			h.respondError(c, invalidRequest(errors.New("limit must be a non-negative integer")))
			return
		}
		limit = n
	}

	records, err := h.history.ListRecords(c.Request.Context(), limit)
	h.metrics.IncHistoryOp("list", err)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"records": records,
		"count":   len(records),
	})
}

// GetHistoryRecord returns one stored purchase
func (h *Handler) GetHistoryRecord(c *gin.Context) {
	if !h.requireHistory(c) {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.respondError(c, invalidRequest(err))
		return
	}

	record, err := h.history.GetRecord(c.Request.Context(), id)
	h.metrics.IncHistoryOp("get", err)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// DeleteHistoryRecord removes one stored purchase
func (h *Handler) DeleteHistoryRecord(c *gin.Context) {
	if !h.requireHistory(c) {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.respondError(c, invalidRequest(err))
		return
	}

	err = h.history.DeleteRecord(c.Request.Context(), id)
	h.metrics.IncHistoryOp("delete", err)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) requireHistory(c *gin.Context) bool {
	if h.history != nil {
		return true
	}
	c.JSON(http.StatusServiceUnavailable, ErrorResponse{
		Error: "purchase history is not configured",
		Kind:  "unavailable",
	})
	return false
}

func invalidRequest(err error) error {
	return &requestError{cause: err}
}

// requestError marks a malformed request body or path parameter
type requestError struct {
	cause error
}

func (e *requestError) Error() string {
	return domain.ErrInvalidRequest.Error() + ": " + e.cause.Error()
}

func (e *requestError) Unwrap() error {
	return domain.ErrInvalidRequest
}

// respondError maps an error to its status code and JSON body
func (h *Handler) respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("[HTTP] %s %s failed: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(status, ErrorResponse{
			Error:      "internal server error",
			Kind:       domain.ErrorKindLabel(err),
			Suggestion: domain.RecoverySuggestion(err),
		})
		return
	}
	c.JSON(status, newErrorResponse(err))
}

func statusFor(err error) int {
	var (
		cmpErr   *domain.ComparisonError
		calcErr  *domain.CalculationError
		fieldErr *domain.FieldError
	)
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.As(err, &cmpErr), errors.As(err, &calcErr), errors.As(err, &fieldErr):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
