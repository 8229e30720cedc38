package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"exampay/internal/config"
	"exampay/internal/repository"
	"exampay/internal/service"
	"exampay/pkg/response"
)

// Handler bundles the platform API dependencies.
type Handler struct {
	orderService *service.OrderService
	planRepo     *repository.PlanRepository
	txnRepo      *repository.TransactionRepository
}

func NewHandler(db *gorm.DB, cfg *config.Config) *Handler {
	return &Handler{
		orderService: service.NewOrderService(db, cfg),
		planRepo:     repository.NewPlanRepository(db),
		txnRepo:      repository.NewTransactionRepository(db),
	}
}

// ============================================================
// Plans
// ============================================================

// ListPlans returns the purchasable subscription plans.
// GET /api/v1/plans
func (h *Handler) ListPlans(c *gin.Context) {
	plans, err := h.planRepo.ListActive(c.Request.Context())
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}
	response.Success(c, gin.H{"plans": plans})
}

// ============================================================
// Orders
// ============================================================

// CreateOrderRequest is the client payload for starting a purchase.
type CreateOrderRequest struct {
	RequestID string `json:"request_id" binding:"required"` // idempotency key
	PlanID    string `json:"plan_id" binding:"required"`
}

// CreateOrder creates an order for a plan and returns the checkout link.
// POST /api/v1/orders
//
// Idempotent on request_id: retrying with the same key returns the
// original order rather than charging twice.
func (h *Handler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "invalid request: "+err.Error())
		return
	}

	result, err := h.orderService.CreateOrder(c.Request.Context(), &service.CreateOrderRequest{
		RequestID: req.RequestID,
		UserID:    GetUserID(c),
		PlanID:    req.PlanID,
	})
	if err != nil {
		if errors.Is(err, service.ErrPlanNotFound) {
			response.BusinessError(c, response.CodePlanNotFound, "plan not found")
			return
		}
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, gin.H{
		"order":        result.Order,
		"checkout_url": result.CheckoutURL,
	})
}

// GetOrder returns one of the caller's orders with its payment attempts.
// GET /api/v1/orders/:id
func (h *Handler) GetOrder(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "invalid order id")
		return
	}

	order, err := h.orderService.GetOrder(c.Request.Context(), GetUserID(c), orderID)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			response.BusinessError(c, response.CodeOrderNotFound, "order not found")
			return
		}
		response.ServerError(c, err.Error())
		return
	}

	txns, err := h.txnRepo.ListByOrderID(c.Request.Context(), order.ID)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, gin.H{
		"order":        order,
		"transactions": txns,
	})
}

// ============================================================
// Support
// ============================================================

// GetTransaction looks a gateway transaction up by its Payme id. Support
// tooling uses this to answer payer disputes without database access.
// GET /api/v1/support/transaction?payme_id=xxx
func (h *Handler) GetTransaction(c *gin.Context) {
	paymeID := c.Query("payme_id")
	if paymeID == "" {
		response.ParamError(c, "payme_id is required")
		return
	}

	txn, err := h.txnRepo.GetByPaymeID(c.Request.Context(), paymeID)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}
	if txn == nil {
		response.BusinessError(c, response.CodeTransactionNotFound, "transaction not found")
		return
	}

	response.Success(c, txn)
}

// ListOrders returns the caller's orders, newest first.
// GET /api/v1/orders?page=1&page_size=10
func (h *Handler) ListOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	orders, total, err := h.orderService.ListUserOrders(c.Request.Context(), GetUserID(c), page, pageSize)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, gin.H{
		"list":      orders,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}
