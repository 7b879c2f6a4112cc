package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"calikart/internal/mail"
	"calikart/internal/model"
	"calikart/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// tokenGenerationAttempts bounds retries on basket token collision.
const tokenGenerationAttempts = 3

// basketService implements BasketService.
type basketService struct {
	basketRepo repository.BasketRepository
	products   ProductService
	sender     mail.Sender
	shopInbox  string
	logger     zerolog.Logger
}

// NewBasketService creates a new basket service. shopInbox receives the
// merchant notice when a quote request is submitted.
func NewBasketService(
	basketRepo repository.BasketRepository,
	products ProductService,
	sender mail.Sender,
	shopInbox string,
	logger zerolog.Logger,
) BasketService {
	return &basketService{
		basketRepo: basketRepo,
		products:   products,
		sender:     sender,
		shopInbox:  shopInbox,
		logger:     logger.With().Str("service", "basket").Logger(),
	}
}

// CreateBasket creates an empty basket with a freshly minted token.
func (s *basketService) CreateBasket(ctx context.Context, kind model.BasketKind) (*model.Basket, error) {
	var status *model.QuoteStatus
	if kind == model.BasketKindQuote {
		draft := model.QuoteStatusDraft
		status = &draft
	}

	var lastErr error
	for attempt := 0; attempt < tokenGenerationAttempts; attempt++ {
		token, err := newBasketToken()
		if err != nil {
			return nil, err
		}

		now := time.Now()
		basket := &model.Basket{
			ID:        uuid.New(),
			Token:     token,
			Kind:      kind,
			Status:    status,
			Items:     []model.BasketItem{},
			CreatedAt: now,
			UpdatedAt: now,
		}

		err = s.basketRepo.Create(ctx, basket)
		if err == nil {
			s.logger.Info().Str("kind", string(kind)).Msg("basket created")
			return basket, nil
		}
		if !repository.IsUniqueViolation(err) {
			return nil, fmt.Errorf("failed to create basket: %w", err)
		}
		// Token collision: retry with a fresh token.
		lastErr = err
		s.logger.Warn().Int("attempt", attempt+1).Msg("basket token collision, regenerating")
	}

	return nil, fmt.Errorf("failed to create basket after %d attempts: %w", tokenGenerationAttempts, lastErr)
}

// GetBasket retrieves a basket by its token.
func (s *basketService) GetBasket(ctx context.Context, token string) (*model.Basket, error) {
	basket, err := s.basketRepo.GetByToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to get basket: %w", err)
	}
	if basket == nil {
		return nil, model.ErrBasketNotFound
	}
	return basket, nil
}

// AddItem snapshots the product and adds it to the basket, merging
// quantities when a line for the product already exists.
func (s *basketService) AddItem(ctx context.Context, token, productID string, quantity int) (*model.Basket, error) {
	if quantity < 1 {
		return nil, model.ErrInvalidQuantity
	}
	if productID == "" {
		return nil, model.NewDomainError(model.ErrCodeValidationFailed, "product_id is required")
	}

	basket, err := s.mutableBasket(ctx, token)
	if err != nil {
		return nil, err
	}

	// Snapshot name and price at the moment of the call. Quote baskets
	// never carry a price.
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, model.ErrProductNotFound
	}

	item := &model.BasketItem{
		ID:          uuid.New(),
		BasketID:    basket.ID,
		ProductID:   product.ID,
		ProductName: product.Name,
		Quantity:    quantity,
		CreatedAt:   time.Now(),
	}
	if basket.Kind == model.BasketKindCart {
		price := product.Price
		item.UnitPrice = &price
	}

	if err := s.basketRepo.AddOrIncrementItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to add item: %w", err)
	}

	s.logger.Info().
		Str("product_id", productID).
		Int("quantity", quantity).
		Str("kind", string(basket.Kind)).
		Msg("item added to basket")

	return s.GetBasket(ctx, token)
}

// UpdateItemQuantity sets a line's quantity.
func (s *basketService) UpdateItemQuantity(ctx context.Context, token string, itemID uuid.UUID, quantity int) (*model.Basket, error) {
	if quantity < 1 {
		return nil, model.ErrInvalidQuantity
	}

	basket, err := s.mutableBasket(ctx, token)
	if err != nil {
		return nil, err
	}

	affected, err := s.basketRepo.SetItemQuantity(ctx, basket.ID, itemID, quantity)
	if err != nil {
		return nil, fmt.Errorf("failed to update item quantity: %w", err)
	}
	if affected == 0 {
		// Either the item does not exist or it belongs to another basket;
		// both look the same to the caller.
		return nil, model.ErrItemNotFound
	}

	return s.GetBasket(ctx, token)
}

// RemoveItem deletes a line. Removal is idempotent.
func (s *basketService) RemoveItem(ctx context.Context, token string, itemID uuid.UUID) (*model.Basket, error) {
	basket, err := s.mutableBasket(ctx, token)
	if err != nil {
		return nil, err
	}

	if err := s.basketRepo.RemoveItem(ctx, basket.ID, itemID); err != nil {
		return nil, fmt.Errorf("failed to remove item: %w", err)
	}

	return s.GetBasket(ctx, token)
}

// SubmitQuote captures contact details and finalises a draft quote.
func (s *basketService) SubmitQuote(ctx context.Context, token string, contact model.QuoteContact) (*model.Basket, error) {
	if contact.Name == "" {
		return nil, model.NewDomainError(model.ErrCodeValidationFailed, "name is required")
	}
	if contact.Email == "" {
		return nil, model.NewDomainError(model.ErrCodeValidationFailed, "email is required")
	}

	basket, err := s.GetBasket(ctx, token)
	if err != nil {
		return nil, err
	}
	if basket.Kind != model.BasketKindQuote {
		return nil, model.ErrInvalidState
	}
	if len(basket.Items) == 0 {
		return nil, model.NewDomainError(model.ErrCodeInvalidState, "Quote request contains no items")
	}

	submitted, err := s.basketRepo.SubmitQuote(ctx, basket.ID, contact)
	if err != nil {
		return nil, fmt.Errorf("failed to submit quote: %w", err)
	}
	if !submitted {
		// Already submitted, or raced with another submit.
		return nil, model.ErrInvalidState
	}

	s.logger.Info().Str("basket_id", basket.ID.String()).Msg("quote request submitted")

	// Best-effort merchant notice; the submission already committed.
	subject := fmt.Sprintf("New quote request from %s", contact.Name)
	if sendErr := s.sender.Send(ctx, s.shopInbox, subject, quoteNoticeBody(basket, contact)); sendErr != nil {
		s.logger.Warn().Err(sendErr).Str("basket_id", basket.ID.String()).Msg("quote notice delivery failed")
	}

	return s.GetBasket(ctx, token)
}

// quoteNoticeBody renders the merchant notice for a submitted quote.
func quoteNoticeBody(basket *model.Basket, contact model.QuoteContact) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Quote request from %s <%s>", contact.Name, contact.Email)
	if contact.Phone != "" {
		fmt.Fprintf(&b, ", phone %s", contact.Phone)
	}
	b.WriteString("\n\nItems:\n")
	for _, item := range basket.Items {
		fmt.Fprintf(&b, "- %s x%d\n", item.ProductName, item.Quantity)
	}
	if contact.Note != "" {
		fmt.Fprintf(&b, "\nNote: %s\n", contact.Note)
	}
	return b.String()
}

// mutableBasket loads a basket and rejects mutation of finalised quotes.
func (s *basketService) mutableBasket(ctx context.Context, token string) (*model.Basket, error) {
	basket, err := s.GetBasket(ctx, token)
	if err != nil {
		return nil, err
	}
	if basket.Status != nil && *basket.Status == model.QuoteStatusSubmitted {
		return nil, model.ErrInvalidState
	}
	return basket, nil
}
