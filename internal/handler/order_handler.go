package handler

import (
	"encoding/json"
	"net/http"

	"calikart/internal/middleware"
	"calikart/internal/model"
	"calikart/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// OrderHandler handles order-related HTTP requests, both the customer
// surface and the admin fulfillment surface.
type OrderHandler struct {
	service service.OrderService
	logger  zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service service.OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger.With().Str("handler", "order").Logger(),
	}
}

// Create handles POST /api/orders requests.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, model.ErrCodeUnauthorised, "session required", h.logger)
		return
	}

	var req model.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	order, err := h.service.CreateOrder(r.Context(), userID, &req)
	if err != nil {
		handleServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, order)
}

// List handles GET /api/orders requests, returning the caller's orders.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, model.ErrCodeUnauthorised, "session required", h.logger)
		return
	}

	orders, err := h.service.ListOrdersForUser(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, orders)
}

// GetByID handles GET /api/orders/{id} requests. Callers only see their own
// orders.
func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, model.ErrCodeUnauthorised, "session required", h.logger)
		return
	}

	orderID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeValidationFailed, "invalid order ID format", h.logger)
		return
	}

	order, err := h.service.GetOrder(r.Context(), orderID)
	if err != nil {
		handleServiceError(w, err, h.logger)
		return
	}

	if order.UserID != userID {
		// Existence of another user's order is not disclosed.
		writeError(w, http.StatusNotFound, model.ErrCodeOrderNotFound, "Order not found", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// AdminList handles GET /api/admin/orders requests with an optional ?status=
// filter.
func (h *OrderHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	var status *model.OrderStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		if !model.ValidOrderStatus(raw) {
			writeError(w, http.StatusBadRequest, model.ErrCodeValidationFailed, "unknown order status", h.logger)
			return
		}
		s := model.OrderStatus(raw)
		status = &s
	}

	orders, err := h.service.ListOrders(r.Context(), status)
	if err != nil {
		handleServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, orders)
}

// AdminGetByID handles GET /api/admin/orders/{id} requests.
func (h *OrderHandler) AdminGetByID(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeValidationFailed, "invalid order ID format", h.logger)
		return
	}

	order, err := h.service.GetOrder(r.Context(), orderID)
	if err != nil {
		handleServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// UpdateStatus handles PUT /api/admin/orders/{id}/status requests.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeValidationFailed, "invalid order ID format", h.logger)
		return
	}

	var req model.UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	if !model.ValidOrderStatus(req.Status) {
		writeError(w, http.StatusBadRequest, model.ErrCodeValidationFailed, "unknown order status", h.logger)
		return
	}

	order, err := h.service.Transition(r.Context(), orderID, model.OrderStatus(req.Status))
	if err != nil {
		handleServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// Notify handles POST /api/admin/orders/{id}/notify requests.
func (h *OrderHandler) Notify(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeValidationFailed, "invalid order ID format", h.logger)
		return
	}

	var req model.NotifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	resp, err := h.service.Notify(r.Context(), orderID, req.Message)
	if err != nil {
		handleServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// ListNotifications handles GET /api/admin/orders/{id}/notifications requests.
func (h *OrderHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeValidationFailed, "invalid order ID format", h.logger)
		return
	}

	events, err := h.service.ListNotifications(r.Context(), orderID)
	if err != nil {
		handleServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, events)
}
