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

// notificationRepository implements the NotificationRepository interface
// using PostgreSQL. The ledger is insert-only.
type notificationRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewNotificationRepository creates a new PostgreSQL-backed notification repository.
func NewNotificationRepository(pool *pgxpool.Pool, logger zerolog.Logger) NotificationRepository {
	return &notificationRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "notification").Logger(),
	}
}

const appendEventQuery = `
	INSERT INTO notification_events (id, order_id, message, sent_at)
	VALUES ($1, $2, $3, $4)
`

// Append inserts an event.
func (r *notificationRepository) Append(ctx context.Context, event *model.NotificationEvent) error {
	_, err := r.pool.Exec(ctx, appendEventQuery,
		event.ID, event.OrderID, event.Message, event.SentAt)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", event.OrderID.String()).
			Msg("failed to append notification event")
		return fmt.Errorf("failed to append notification event: %w", err)
	}

	return nil
}

// AppendTx inserts an event within the provided transaction.
func (r *notificationRepository) AppendTx(ctx context.Context, tx pgx.Tx, event *model.NotificationEvent) error {
	_, err := tx.Exec(ctx, appendEventQuery,
		event.ID, event.OrderID, event.Message, event.SentAt)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", event.OrderID.String()).
			Msg("failed to append notification event")
		return fmt.Errorf("failed to append notification event: %w", err)
	}

	return nil
}

// ListByOrder retrieves all events for an order in chronological order.
func (r *notificationRepository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]model.NotificationEvent, error) {
	query := `
		SELECT id, order_id, message, sent_at
		FROM notification_events
		WHERE order_id = $1
		ORDER BY sent_at, id
	`

	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to query notification events")
		return nil, fmt.Errorf("failed to query notification events: %w", err)
	}
	defer rows.Close()

	var events []model.NotificationEvent
	for rows.Next() {
		var event model.NotificationEvent
		err := rows.Scan(&event.ID, &event.OrderID, &event.Message, &event.SentAt)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan notification event")
			return nil, fmt.Errorf("failed to scan notification event: %w", err)
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating notification events")
		return nil, fmt.Errorf("error iterating notification events: %w", err)
	}

	return events, nil
}
