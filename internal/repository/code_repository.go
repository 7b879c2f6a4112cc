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

// codeRepository implements the CodeRepository interface using PostgreSQL.
type codeRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCodeRepository creates a new PostgreSQL-backed one-time code repository.
func NewCodeRepository(pool *pgxpool.Pool, logger zerolog.Logger) CodeRepository {
	return &codeRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "code").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *codeRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// InvalidateTx marks all unconsumed codes for the email as consumed, so at
// most one live code exists per email.
func (r *codeRepository) InvalidateTx(ctx context.Context, tx pgx.Tx, email string) error {
	query := `UPDATE one_time_codes SET consumed = TRUE WHERE email = $1 AND NOT consumed`

	_, err := tx.Exec(ctx, query, email)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to invalidate codes")
		return fmt.Errorf("failed to invalidate codes: %w", err)
	}

	return nil
}

// CreateTx inserts a fresh code within the transaction.
func (r *codeRepository) CreateTx(ctx context.Context, tx pgx.Tx, code *model.OneTimeCode) error {
	query := `
		INSERT INTO one_time_codes (id, email, code, expires_at, consumed, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := tx.Exec(ctx, query,
		code.ID, code.Email, code.Code, code.ExpiresAt, code.Consumed, code.CreatedAt)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to create one-time code")
		return fmt.Errorf("failed to create one-time code: %w", err)
	}

	return nil
}

// GetActiveForUpdate retrieves the unconsumed matching code, locking the row
// for the remainder of the transaction.
func (r *codeRepository) GetActiveForUpdate(ctx context.Context, tx pgx.Tx, email, code string) (*model.OneTimeCode, error) {
	query := `
		SELECT id, email, code, expires_at, consumed, created_at
		FROM one_time_codes
		WHERE email = $1 AND code = $2 AND NOT consumed
		ORDER BY created_at DESC
		LIMIT 1
		FOR UPDATE
	`

	var otc model.OneTimeCode
	err := tx.QueryRow(ctx, query, email, code).Scan(
		&otc.ID,
		&otc.Email,
		&otc.Code,
		&otc.ExpiresAt,
		&otc.Consumed,
		&otc.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.logger.Error().Err(err).Msg("failed to query one-time code")
		return nil, fmt.Errorf("failed to query one-time code: %w", err)
	}

	return &otc, nil
}

// ConsumeTx marks the code as consumed within the transaction.
func (r *codeRepository) ConsumeTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	query := `UPDATE one_time_codes SET consumed = TRUE WHERE id = $1`

	_, err := tx.Exec(ctx, query, id)
	if err != nil {
		r.logger.Error().Err(err).Str("code_id", id.String()).Msg("failed to consume code")
		return fmt.Errorf("failed to consume code: %w", err)
	}

	return nil
}
