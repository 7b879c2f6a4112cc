package repository

import (
	"context"
	"fmt"

	"calikart/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// basketRepository implements the BasketRepository interface using PostgreSQL.
type basketRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewBasketRepository creates a new PostgreSQL-backed basket repository.
func NewBasketRepository(pool *pgxpool.Pool, logger zerolog.Logger) BasketRepository {
	return &basketRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "basket").Logger(),
	}
}

const basketColumns = `id, token, kind, owner_user_id, status,
	contact_name, contact_email, contact_phone, contact_note,
	created_at, updated_at`

// Create inserts a new empty basket.
func (r *basketRepository) Create(ctx context.Context, basket *model.Basket) error {
	query := `
		INSERT INTO baskets (id, token, kind, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(ctx, query,
		basket.ID, basket.Token, basket.Kind, basket.Status,
		basket.CreatedAt, basket.UpdatedAt)
	if err != nil {
		if !IsUniqueViolation(err) {
			r.logger.Error().Err(err).Str("kind", string(basket.Kind)).Msg("failed to create basket")
		}
		return fmt.Errorf("failed to create basket: %w", err)
	}

	r.logger.Debug().Str("kind", string(basket.Kind)).Msg("basket created")
	return nil
}

// GetByToken retrieves a basket and its items by token.
func (r *basketRepository) GetByToken(ctx context.Context, token string) (*model.Basket, error) {
	query := `SELECT ` + basketColumns + ` FROM baskets WHERE token = $1`

	basket, err := r.scanBasket(r.pool.QueryRow(ctx, query, token))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.logger.Error().Err(err).Msg("failed to query basket")
		return nil, fmt.Errorf("failed to query basket: %w", err)
	}

	items, err := r.listItems(ctx, basket.ID)
	if err != nil {
		return nil, err
	}
	basket.Items = items

	return basket, nil
}

// GetByTokenForUpdate retrieves a basket by token within the transaction,
// locking the basket row.
func (r *basketRepository) GetByTokenForUpdate(ctx context.Context, tx pgx.Tx, token string) (*model.Basket, error) {
	query := `SELECT ` + basketColumns + ` FROM baskets WHERE token = $1 FOR UPDATE`

	basket, err := r.scanBasket(tx.QueryRow(ctx, query, token))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.logger.Error().Err(err).Msg("failed to query basket for update")
		return nil, fmt.Errorf("failed to query basket: %w", err)
	}

	itemsQuery := `
		SELECT id, basket_id, product_id, product_name, unit_price, quantity, created_at
		FROM basket_items
		WHERE basket_id = $1
		ORDER BY created_at, id
	`
	rows, err := tx.Query(ctx, itemsQuery, basket.ID)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query basket items")
		return nil, fmt.Errorf("failed to query basket items: %w", err)
	}
	items, err := scanBasketItems(rows)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to scan basket items")
		return nil, err
	}
	basket.Items = items

	return basket, nil
}

// AddOrIncrementItem inserts an item row or merges the quantity onto the
// existing row for the same product.
func (r *basketRepository) AddOrIncrementItem(ctx context.Context, item *model.BasketItem) error {
	query := `
		INSERT INTO basket_items (id, basket_id, product_id, product_name, unit_price, quantity, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (basket_id, product_id) DO UPDATE
		SET quantity = basket_items.quantity + EXCLUDED.quantity,
		    product_name = EXCLUDED.product_name,
		    unit_price = EXCLUDED.unit_price
	`

	_, err := r.pool.Exec(ctx, query,
		item.ID, item.BasketID, item.ProductID, item.ProductName,
		item.UnitPrice, item.Quantity, item.CreatedAt)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("basket_id", item.BasketID.String()).
			Str("product_id", item.ProductID).
			Msg("failed to add basket item")
		return fmt.Errorf("failed to add basket item: %w", err)
	}

	return nil
}

// SetItemQuantity sets an item's quantity, scoped to its basket so a guessed
// item id cannot mutate another basket.
func (r *basketRepository) SetItemQuantity(ctx context.Context, basketID, itemID uuid.UUID, quantity int) (int64, error) {
	query := `
		UPDATE basket_items
		SET quantity = $3
		WHERE id = $2 AND basket_id = $1
	`

	tag, err := r.pool.Exec(ctx, query, basketID, itemID, quantity)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("basket_id", basketID.String()).
			Str("item_id", itemID.String()).
			Msg("failed to update item quantity")
		return 0, fmt.Errorf("failed to update item quantity: %w", err)
	}

	return tag.RowsAffected(), nil
}

// RemoveItem deletes an item scoped to its basket. Absent items are ignored.
func (r *basketRepository) RemoveItem(ctx context.Context, basketID, itemID uuid.UUID) error {
	query := `DELETE FROM basket_items WHERE id = $2 AND basket_id = $1`

	_, err := r.pool.Exec(ctx, query, basketID, itemID)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("basket_id", basketID.String()).
			Str("item_id", itemID.String()).
			Msg("failed to remove basket item")
		return fmt.Errorf("failed to remove basket item: %w", err)
	}

	return nil
}

// Claim sets the basket's owner only when it is currently unowned. First
// claim wins; everything else is a silent no-op.
func (r *basketRepository) Claim(ctx context.Context, tx pgx.Tx, token string, userID uuid.UUID) error {
	query := `
		UPDATE baskets
		SET owner_user_id = $2, updated_at = NOW()
		WHERE token = $1 AND owner_user_id IS NULL
	`

	tag, err := tx.Exec(ctx, query, token, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to claim basket")
		return fmt.Errorf("failed to claim basket: %w", err)
	}

	r.logger.Debug().
		Str("user_id", userID.String()).
		Int64("claimed", tag.RowsAffected()).
		Msg("basket claim attempted")

	return nil
}

// SubmitQuote captures contact fields and moves a draft quote to submitted.
func (r *basketRepository) SubmitQuote(ctx context.Context, basketID uuid.UUID, contact model.QuoteContact) (bool, error) {
	query := `
		UPDATE baskets
		SET status = 'submitted',
		    contact_name = $2,
		    contact_email = $3,
		    contact_phone = $4,
		    contact_note = $5,
		    updated_at = NOW()
		WHERE id = $1 AND kind = 'quote' AND status = 'draft'
	`

	tag, err := r.pool.Exec(ctx, query, basketID,
		contact.Name, contact.Email, contact.Phone, contact.Note)
	if err != nil {
		r.logger.Error().Err(err).Str("basket_id", basketID.String()).Msg("failed to submit quote")
		return false, fmt.Errorf("failed to submit quote: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// DeleteTx removes the basket; items go with it via ON DELETE CASCADE.
func (r *basketRepository) DeleteTx(ctx context.Context, tx pgx.Tx, basketID uuid.UUID) error {
	query := `DELETE FROM baskets WHERE id = $1`

	_, err := tx.Exec(ctx, query, basketID)
	if err != nil {
		r.logger.Error().Err(err).Str("basket_id", basketID.String()).Msg("failed to delete basket")
		return fmt.Errorf("failed to delete basket: %w", err)
	}

	return nil
}

// listItems retrieves a basket's items in insertion order.
func (r *basketRepository) listItems(ctx context.Context, basketID uuid.UUID) ([]model.BasketItem, error) {
	query := `
		SELECT id, basket_id, product_id, product_name, unit_price, quantity, created_at
		FROM basket_items
		WHERE basket_id = $1
		ORDER BY created_at, id
	`

	rows, err := r.pool.Query(ctx, query, basketID)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query basket items")
		return nil, fmt.Errorf("failed to query basket items: %w", err)
	}

	items, err := scanBasketItems(rows)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to scan basket items")
		return nil, err
	}

	return items, nil
}

func (r *basketRepository) scanBasket(row pgx.Row) (*model.Basket, error) {
	var basket model.Basket
	err := row.Scan(
		&basket.ID,
		&basket.Token,
		&basket.Kind,
		&basket.OwnerUserID,
		&basket.Status,
		&basket.Contact.Name,
		&basket.Contact.Email,
		&basket.Contact.Phone,
		&basket.Contact.Note,
		&basket.CreatedAt,
		&basket.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &basket, nil
}

func scanBasketItems(rows pgx.Rows) ([]model.BasketItem, error) {
	defer rows.Close()

	var items []model.BasketItem
	for rows.Next() {
		var item model.BasketItem
		err := rows.Scan(
			&item.ID,
			&item.BasketID,
			&item.ProductID,
			&item.ProductName,
			&item.UnitPrice,
			&item.Quantity,
			&item.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan basket item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating basket items: %w", err)
	}

	return items, nil
}
