package payme

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"exampay/internal/config"
	"exampay/internal/infrastructure/metrics"

	"github.com/gin-gonic/gin"
)

// methodFunc is the uniform handler signature every gateway method is
// dispatched through.
type methodFunc func(ctx context.Context, params json.RawMessage) (interface{}, *Error)

// Handler is the single webhook endpoint: authenticate, decode the envelope,
// dispatch on method, wrap the result. Dispatch goes through a table rather
// than a switch so adding a method is one entry in one place.
type Handler struct {
	cfg      config.PaymeConfig
	merchant *MerchantService
	metrics  *metrics.WebhookMetrics
	methods  map[string]methodFunc
}

func NewHandler(cfg config.PaymeConfig, merchant *MerchantService, m *metrics.WebhookMetrics) *Handler {
	h := &Handler{
		cfg:      cfg,
		merchant: merchant,
		metrics:  m,
	}
	h.methods = map[string]methodFunc{
		"CheckPerformTransaction": h.checkPerformTransaction,
		"CreateTransaction":       h.createTransaction,
		"PerformTransaction":      h.performTransaction,
		"CancelTransaction":       h.cancelTransaction,
		"CheckTransaction":        h.checkTransaction,
	}
	return h
}

// Endpoint handles POST /payme/endpoint.
//
// HTTP status mapping: bad credentials -> 401 before anything touches the
// store; unknown method and business errors -> 200 with a structured error;
// internal failures (including panics) -> 500 with -32400.
func (h *Handler) Endpoint(c *gin.Context) {
	start := time.Now()
	method := "unknown"
	outcome := metrics.OutcomeOK
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Payme] panic in %s: %v", method, r)
			outcome = metrics.OutcomeInternalErr
			c.JSON(http.StatusInternalServerError, Fail(0, ErrInternal))
		}
		h.metrics.RecordRequest(method, outcome, time.Since(start).Seconds())
	}()

	if !CheckAuth(c.GetHeader("Authorization"), h.cfg.MerchantID, h.cfg.MerchantKey) {
		outcome = metrics.OutcomeUnauthorized
		c.JSON(http.StatusUnauthorized, Fail(0, ErrUnauthorized))
		return
	}

	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		outcome = metrics.OutcomeBadRequest
		c.JSON(http.StatusOK, Fail(0, ErrParse))
		return
	}
	method = req.Method

	fn, ok := h.methods[req.Method]
	if !ok {
		outcome = metrics.OutcomeBadRequest
		c.JSON(http.StatusOK, Fail(req.ID, ErrMethodNotFound))
		return
	}

	result, perr := fn(c.Request.Context(), req.Params)
	if perr != nil {
		if perr.Code == CodeInternal {
			outcome = metrics.OutcomeInternalErr
			c.JSON(http.StatusInternalServerError, Fail(req.ID, perr))
			return
		}
		outcome = metrics.OutcomeBusinessErr
		c.JSON(http.StatusOK, Fail(req.ID, perr))
		return
	}

	c.JSON(http.StatusOK, OK(req.ID, result))
}

func (h *Handler) checkPerformTransaction(ctx context.Context, params json.RawMessage) (interface{}, *Error) {
	var p CheckPerformParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, ErrParse
	}
	return resultOrNil(h.merchant.CheckPerformTransaction(ctx, p))
}

func (h *Handler) createTransaction(ctx context.Context, params json.RawMessage) (interface{}, *Error) {
	var p CreateParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, ErrParse
	}
	return resultOrNil(h.merchant.CreateTransaction(ctx, p))
}

func (h *Handler) performTransaction(ctx context.Context, params json.RawMessage) (interface{}, *Error) {
	var p PerformParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, ErrParse
	}
	return resultOrNil(h.merchant.PerformTransaction(ctx, p))
}

func (h *Handler) cancelTransaction(ctx context.Context, params json.RawMessage) (interface{}, *Error) {
	var p CancelParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, ErrParse
	}
	return resultOrNil(h.merchant.CancelTransaction(ctx, p))
}

func (h *Handler) checkTransaction(ctx context.Context, params json.RawMessage) (interface{}, *Error) {
	var p CheckParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, ErrParse
	}
	return resultOrNil(h.merchant.CheckTransaction(ctx, p))
}

// resultOrNil keeps typed-nil result pointers out of the interface slot.
func resultOrNil[T any](result *T, perr *Error) (interface{}, *Error) {
	if perr != nil {
		return nil, perr
	}
	return result, nil
}
