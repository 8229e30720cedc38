package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"exampay/internal/config"
	"exampay/internal/model"
	"exampay/internal/payme"
	"exampay/internal/repository"

	"gorm.io/gorm"
)

var (
	ErrPlanNotFound  = errors.New("plan not found or inactive")
	ErrOrderNotFound = errors.New("order not found")
)

type OrderService struct {
	db        *gorm.DB
	cfg       *config.Config
	orderRepo *repository.OrderRepository
	planRepo  *repository.PlanRepository
}

func NewOrderService(db *gorm.DB, cfg *config.Config) *OrderService {
	return &OrderService{
		db:        db,
		cfg:       cfg,
		orderRepo: repository.NewOrderRepository(db),
		planRepo:  repository.NewPlanRepository(db),
	}
}

type CreateOrderRequest struct {
	RequestID string
	UserID    int64
	PlanID    string
}

// CreateOrderResult is the order plus the checkout URL the client redirects
// the browser to.
type CreateOrderResult struct {
	Order       *model.Order `json:"order"`
	CheckoutURL string       `json:"checkout_url"`
}

// CreateOrder is idempotent on the client-supplied request id: a retry
// returns the original order and a freshly built link for it.
func (s *OrderService) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*CreateOrderResult, error) {
	existingOrder, err := s.orderRepo.GetByRequestID(ctx, req.RequestID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up order: %w", err)
	}
	if existingOrder != nil {
		return &CreateOrderResult{
			Order:       existingOrder,
			CheckoutURL: payme.CheckoutLink(s.cfg.Payme, existingOrder.ID, existingOrder.Amount),
		}, nil
	}

	plan, err := s.planRepo.GetByID(ctx, req.PlanID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up plan: %w", err)
	}
	if plan == nil || !plan.Active {
		return nil, ErrPlanNotFound
	}

	order := &model.Order{
		RequestID: req.RequestID,
		UserID:    req.UserID,
		PlanID:    plan.ID,
		Amount:    plan.Amount,
		Status:    model.OrderStatusCreated,
		ExpiredAt: time.Now().Add(time.Duration(s.cfg.Business.OrderTimeoutMinutes) * time.Minute),
	}
	if err := s.orderRepo.Create(ctx, nil, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	return &CreateOrderResult{
		Order:       order,
		CheckoutURL: payme.CheckoutLink(s.cfg.Payme, order.ID, order.Amount),
	}, nil
}

func (s *OrderService) GetOrder(ctx context.Context, userID, orderID int64) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil || order.UserID != userID {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (s *OrderService) ListUserOrders(ctx context.Context, userID int64, page, pageSize int) ([]*model.Order, int64, error) {
	return s.orderRepo.ListByUserID(ctx, userID, page, pageSize)
}
