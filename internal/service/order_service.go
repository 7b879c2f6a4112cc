package service

import (
	"context"
	"fmt"
	"math"
	"time"

	smtpmail "calikart/internal/mail"
	"calikart/internal/model"
	"calikart/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// orderNumberAttempts bounds retries on order-number collision.
const orderNumberAttempts = 3

// PricingConfig holds the order pricing inputs.
type PricingConfig struct {
	TaxRate      float64
	ShippingCost float64
}

// orderService implements OrderService.
type orderService struct {
	orderRepo        repository.OrderRepository
	basketRepo       repository.BasketRepository
	notificationRepo repository.NotificationRepository
	sender           smtpmail.Sender
	pricing          PricingConfig
	logger           zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	basketRepo repository.BasketRepository,
	notificationRepo repository.NotificationRepository,
	sender smtpmail.Sender,
	pricing PricingConfig,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo:        orderRepo,
		basketRepo:       basketRepo,
		notificationRepo: notificationRepo,
		sender:           sender,
		pricing:          pricing,
		logger:           logger.With().Str("service", "order").Logger(),
	}
}

// CreateOrder converts a cart into an immutable order. Order insertion and
// cart deletion commit together; a half-converted state is unreachable.
func (s *orderService) CreateOrder(ctx context.Context, userID uuid.UUID, req *model.CreateOrderRequest) (*model.Order, error) {
	if err := validateCreateOrderRequest(req); err != nil {
		return nil, err
	}

	var order *model.Order
	var err error
	for attempt := 0; attempt < orderNumberAttempts; attempt++ {
		order, err = s.createOrderOnce(ctx, userID, req)
		if err == nil {
			break
		}
		if !repository.IsUniqueViolation(err) {
			return nil, err
		}
		// Order number collision: retry the whole conversion with a fresh
		// number. The cart is untouched because the transaction rolled back.
		s.logger.Warn().Int("attempt", attempt+1).Msg("order number collision, regenerating")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create order after %d attempts: %w", orderNumberAttempts, err)
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("order_number", order.OrderNumber).
		Float64("total", order.TotalAmount).
		Msg("order created")

	// Post-commit side effects are best-effort: the order is real the
	// instant the transaction committed.
	s.recordAndSend(ctx, order,
		fmt.Sprintf("Order %s placed, awaiting processing", order.OrderNumber),
		fmt.Sprintf("Thank you for your order. Your order number is %s. Total: %.2f.",
			order.OrderNumber, order.TotalAmount))

	return order, nil
}

// createOrderOnce runs one conversion attempt as a single transaction.
func (s *orderService) createOrderOnce(ctx context.Context, userID uuid.UUID, req *model.CreateOrderRequest) (*model.Order, error) {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	cart, err := s.basketRepo.GetByTokenForUpdate(ctx, tx, req.CartToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	// A previously converted cart no longer exists, so a double submit
	// lands here. Quote baskets never convert.
	if cart == nil || cart.Kind != model.BasketKindCart {
		return nil, model.ErrCartNotFound
	}
	if len(cart.Items) == 0 {
		return nil, model.ErrEmptyCart
	}

	now := time.Now()
	orderNumber, err := newOrderNumber(now)
	if err != nil {
		return nil, err
	}

	orderID := uuid.New()
	items := make([]model.OrderItem, len(cart.Items))
	subtotal := 0.0
	for i, ci := range cart.Items {
		if ci.UnitPrice == nil {
			return nil, fmt.Errorf("cart item %s has no price snapshot", ci.ID)
		}
		lineTotal := round2(*ci.UnitPrice * float64(ci.Quantity))
		subtotal += lineTotal
		items[i] = model.OrderItem{
			ID:          uuid.New(),
			OrderID:     orderID,
			ProductID:   ci.ProductID,
			ProductName: ci.ProductName,
			UnitPrice:   *ci.UnitPrice,
			Quantity:    ci.Quantity,
			LineTotal:   lineTotal,
		}
	}
	subtotal = round2(subtotal)
	tax := round2(subtotal * s.pricing.TaxRate)
	shipping := round2(s.pricing.ShippingCost)

	sourceID := cart.ID
	order := &model.Order{
		ID:             orderID,
		OrderNumber:    orderNumber,
		UserID:         userID,
		SourceBasketID: &sourceID,
		Customer:       req.ShippingDetails,
		Items:          items,
		Subtotal:       subtotal,
		Tax:            tax,
		ShippingCost:   shipping,
		TotalAmount:    round2(subtotal + tax + shipping),
		Status:         model.OrderStatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err = s.orderRepo.CreateTx(ctx, tx, order); err != nil {
		return nil, err
	}

	if err = s.orderRepo.CreateItemsTx(ctx, tx, items); err != nil {
		return nil, err
	}

	if err = s.basketRepo.DeleteTx(ctx, tx, cart.ID); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	committed = true

	return order, nil
}

// GetOrder retrieves an order with its items.
func (s *orderService) GetOrder(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	order, items, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}
	order.Items = items
	return order, nil
}

// ListOrdersForUser retrieves a user's orders, newest first.
func (s *orderService) ListOrdersForUser(ctx context.Context, userID uuid.UUID) ([]model.Order, error) {
	orders, err := s.orderRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// ListOrders retrieves orders, optionally filtered by status.
func (s *orderService) ListOrders(ctx context.Context, status *model.OrderStatus) ([]model.Order, error) {
	orders, err := s.orderRepo.List(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// Transition applies a status change. The status write and the ledger entry
// commit together.
func (s *orderService) Transition(ctx context.Context, orderID uuid.UUID, newStatus model.OrderStatus) (*model.Order, error) {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to transition order: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	order, err := s.orderRepo.GetByIDForUpdate(ctx, tx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to transition order: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}

	if !model.CanTransition(order.Status, newStatus) {
		s.logger.Warn().
			Str("order_id", orderID.String()).
			Str("from", string(order.Status)).
			Str("to", string(newStatus)).
			Msg("status transition rejected")
		return nil, model.ErrInvalidTransition
	}

	if err = s.orderRepo.UpdateStatusTx(ctx, tx, orderID, newStatus); err != nil {
		return nil, err
	}

	event := &model.NotificationEvent{
		ID:      uuid.New(),
		OrderID: orderID,
		Message: statusMessage(order.OrderNumber, newStatus),
		SentAt:  time.Now(),
	}
	if err = s.notificationRepo.AppendTx(ctx, tx, event); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to transition order: %w", err)
	}
	committed = true

	s.logger.Info().
		Str("order_id", orderID.String()).
		Str("from", string(order.Status)).
		Str("to", string(newStatus)).
		Msg("order status updated")

	// Best-effort customer notice; the transition already committed.
	if sendErr := s.sender.Send(ctx, order.Customer.Email, "Order update", event.Message); sendErr != nil {
		s.logger.Warn().Err(sendErr).Str("order_id", orderID.String()).Msg("status notice delivery failed")
	}

	return s.GetOrder(ctx, orderID)
}

// Notify records a free-form admin message and attempts delivery.
func (s *orderService) Notify(ctx context.Context, orderID uuid.UUID, message string) (*model.NotifyResponse, error) {
	if message == "" {
		return nil, model.NewDomainError(model.ErrCodeValidationFailed, "message is required")
	}

	order, _, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to notify: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}

	event := &model.NotificationEvent{
		ID:      uuid.New(),
		OrderID: orderID,
		Message: message,
		SentAt:  time.Now(),
	}
	if err := s.notificationRepo.Append(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to notify: %w", err)
	}

	resp := &model.NotifyResponse{Event: event}
	subject := fmt.Sprintf("Update on order %s", order.OrderNumber)
	if sendErr := s.sender.Send(ctx, order.Customer.Email, subject, message); sendErr != nil {
		s.logger.Warn().Err(sendErr).Str("order_id", orderID.String()).Msg("notification delivery failed")
		resp.DeliveryWarning = "message recorded but delivery failed"
	}

	return resp, nil
}

// ListNotifications returns an order's ledger in chronological order.
func (s *orderService) ListNotifications(ctx context.Context, orderID uuid.UUID) ([]model.NotificationEvent, error) {
	exists, err := s.orderRepo.Exists(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	if !exists {
		return nil, model.ErrOrderNotFound
	}

	events, err := s.notificationRepo.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return events, nil
}

// recordAndSend appends a ledger entry and emails the customer, logging but
// never propagating failures.
func (s *orderService) recordAndSend(ctx context.Context, order *model.Order, ledgerMessage, emailBody string) {
	event := &model.NotificationEvent{
		ID:      uuid.New(),
		OrderID: order.ID,
		Message: ledgerMessage,
		SentAt:  time.Now(),
	}
	if err := s.notificationRepo.Append(ctx, event); err != nil {
		s.logger.Warn().Err(err).Str("order_id", order.ID.String()).Msg("failed to record order notification")
	}

	subject := fmt.Sprintf("Order %s confirmed", order.OrderNumber)
	if err := s.sender.Send(ctx, order.Customer.Email, subject, emailBody); err != nil {
		s.logger.Warn().Err(err).Str("order_id", order.ID.String()).Msg("order confirmation delivery failed")
	}
}

// validateCreateOrderRequest checks the checkout form fields.
func validateCreateOrderRequest(req *model.CreateOrderRequest) error {
	if req == nil {
		return model.NewDomainError(model.ErrCodeValidationFailed, "request body is required")
	}
	if req.CartToken == "" {
		return model.NewDomainError(model.ErrCodeValidationFailed, "cart_token is required")
	}
	if req.ShippingDetails.Name == "" {
		return model.NewDomainError(model.ErrCodeValidationFailed, "shipping_details.name is required")
	}
	if req.ShippingDetails.Email == "" {
		return model.NewDomainError(model.ErrCodeValidationFailed, "shipping_details.email is required")
	}
	if req.ShippingDetails.Address == "" {
		return model.NewDomainError(model.ErrCodeValidationFailed, "shipping_details.address is required")
	}
	if req.ShippingDetails.City == "" {
		return model.NewDomainError(model.ErrCodeValidationFailed, "shipping_details.city is required")
	}
	return nil
}

// statusMessage composes the ledger entry for a status change.
func statusMessage(orderNumber string, status model.OrderStatus) string {
	switch status {
	case model.OrderStatusProcessing:
		return fmt.Sprintf("Order %s is now being processed", orderNumber)
	case model.OrderStatusShipped:
		return fmt.Sprintf("Order %s has been shipped", orderNumber)
	case model.OrderStatusDelivered:
		return fmt.Sprintf("Order %s has been delivered", orderNumber)
	case model.OrderStatusCancelled:
		return fmt.Sprintf("Order %s has been cancelled", orderNumber)
	default:
		return fmt.Sprintf("Order %s status changed to %s", orderNumber, status)
	}
}

// round2 rounds to two decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
