package handler

import (
	"encoding/json"
	"net/http"

	"calikart/internal/model"
	"calikart/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// BasketHandler handles cart and quote-request basket HTTP requests.
type BasketHandler struct {
	service service.BasketService
	logger  zerolog.Logger
}

// NewBasketHandler creates a new basket handler.
func NewBasketHandler(service service.BasketService, logger zerolog.Logger) *BasketHandler {
	return &BasketHandler{
		service: service,
		logger:  logger.With().Str("handler", "basket").Logger(),
	}
}

// Create handles POST /api/baskets/{kind} requests.
func (h *BasketHandler) Create(w http.ResponseWriter, r *http.Request) {
	kind := r.PathValue("kind")
	if !model.ValidBasketKind(kind) {
		writeError(w, http.StatusBadRequest, model.ErrCodeValidationFailed, "kind must be 'cart' or 'quote'", h.logger)
		return
	}

	basket, err := h.service.CreateBasket(r.Context(), model.BasketKind(kind))
	if err != nil {
		handleServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, basket)
}

// Get handles GET /api/baskets/{token} requests.
func (h *BasketHandler) Get(w http.ResponseWriter, r *http.Request) {
	basket, err := h.service.GetBasket(r.Context(), r.PathValue("token"))
	if err != nil {
		handleServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, basket)
}

// AddItem handles POST /api/baskets/{token}/items requests.
func (h *BasketHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req model.AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	basket, err := h.service.AddItem(r.Context(), r.PathValue("token"), req.ProductID, req.Quantity)
	if err != nil {
		handleServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, basket)
}

// UpdateItem handles PUT /api/baskets/{token}/items/{item_id} requests.
func (h *BasketHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := uuid.Parse(r.PathValue("item_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeValidationFailed, "invalid item ID format", h.logger)
		return
	}

	var req model.UpdateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	basket, err := h.service.UpdateItemQuantity(r.Context(), r.PathValue("token"), itemID, req.Quantity)
	if err != nil {
		handleServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, basket)
}

// RemoveItem handles DELETE /api/baskets/{token}/items/{item_id} requests.
func (h *BasketHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := uuid.Parse(r.PathValue("item_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeValidationFailed, "invalid item ID format", h.logger)
		return
	}

	basket, err := h.service.RemoveItem(r.Context(), r.PathValue("token"), itemID)
	if err != nil {
		handleServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, basket)
}

// Submit handles POST /api/baskets/{token}/submit requests.
func (h *BasketHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req model.SubmitQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	contact := model.QuoteContact{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
		Note:  req.Note,
	}

	basket, err := h.service.SubmitQuote(r.Context(), r.PathValue("token"), contact)
	if err != nil {
		handleServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, basket)
}
