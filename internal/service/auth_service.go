package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"calikart/internal/auth"
	smtpmail "calikart/internal/mail"
	"calikart/internal/model"
	"calikart/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// AuthConfig holds the tunables of the one-time-code flow.
type AuthConfig struct {
	OTPTTL    time.Duration
	OTPLength int
}

// authService implements AuthService.
type authService struct {
	codeRepo   repository.CodeRepository
	userRepo   repository.UserRepository
	basketRepo repository.BasketRepository
	sender     smtpmail.Sender
	sessions   *auth.SessionManager
	cfg        AuthConfig
	logger     zerolog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	codeRepo repository.CodeRepository,
	userRepo repository.UserRepository,
	basketRepo repository.BasketRepository,
	sender smtpmail.Sender,
	sessions *auth.SessionManager,
	cfg AuthConfig,
	logger zerolog.Logger,
) AuthService {
	return &authService{
		codeRepo:   codeRepo,
		userRepo:   userRepo,
		basketRepo: basketRepo,
		sender:     sender,
		sessions:   sessions,
		cfg:        cfg,
		logger:     logger.With().Str("service", "auth").Logger(),
	}
}

// RequestCode issues a fresh one-time code for the email, invalidating any
// prior unconsumed codes, then hands the code to the message channel. The
// database transaction never spans the channel call.
func (s *authService) RequestCode(ctx context.Context, email string) error {
	email, err := normaliseEmail(email)
	if err != nil {
		return model.NewDomainError(model.ErrCodeValidationFailed, "email is not a valid address")
	}

	code, err := newNumericCode(s.cfg.OTPLength)
	if err != nil {
		return err
	}

	tx, err := s.codeRepo.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to request code: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if err = s.codeRepo.InvalidateTx(ctx, tx, email); err != nil {
		return fmt.Errorf("failed to request code: %w", err)
	}

	now := time.Now()
	otc := &model.OneTimeCode{
		ID:        uuid.New(),
		Email:     email,
		Code:      code,
		ExpiresAt: now.Add(s.cfg.OTPTTL),
		Consumed:  false,
		CreatedAt: now,
	}

	if err = s.codeRepo.CreateTx(ctx, tx, otc); err != nil {
		return fmt.Errorf("failed to request code: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to request code: %w", err)
	}

	// Delivery happens outside the transaction. A synchronous rejection is
	// surfaced so the caller knows to request a fresh code.
	subject := "Your verification code"
	body := fmt.Sprintf("Your verification code is %s. It expires in %d minutes.",
		code, int(s.cfg.OTPTTL.Minutes()))
	if sendErr := s.sender.Send(ctx, email, subject, body); sendErr != nil {
		s.logger.Warn().Err(sendErr).Msg("verification code delivery failed")
		return model.ErrDeliveryFailed
	}

	s.logger.Info().Msg("verification code issued")
	return nil
}

// VerifyCode redeems a code. Code consumption, user lookup/creation and
// basket claiming commit together; if anything fails the code stays
// unconsumed so the client may retry.
func (s *authService) VerifyCode(ctx context.Context, email, code string, basketTokens []string) (string, *model.User, error) {
	email, err := normaliseEmail(email)
	if err != nil {
		return "", nil, model.ErrOTPInvalid
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return "", nil, model.ErrOTPInvalid
	}

	tx, err := s.codeRepo.BeginTx(ctx)
	if err != nil {
		return "", nil, fmt.Errorf("failed to verify code: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	otc, err := s.codeRepo.GetActiveForUpdate(ctx, tx, email, code)
	if err != nil {
		return "", nil, fmt.Errorf("failed to verify code: %w", err)
	}
	if otc == nil {
		return "", nil, model.ErrOTPInvalid
	}

	if otc.Expired(time.Now()) {
		// Consume the expired code so it can never be replayed, and commit
		// that consumption even though verification fails.
		if err := s.codeRepo.ConsumeTx(ctx, tx, otc.ID); err != nil {
			return "", nil, fmt.Errorf("failed to verify code: %w", err)
		}
		if err := tx.Commit(ctx); err != nil {
			return "", nil, fmt.Errorf("failed to verify code: %w", err)
		}
		committed = true
		return "", nil, model.ErrOTPExpired
	}

	if err = s.codeRepo.ConsumeTx(ctx, tx, otc.ID); err != nil {
		return "", nil, fmt.Errorf("failed to verify code: %w", err)
	}

	user, err := s.userRepo.FindByEmailTx(ctx, tx, email)
	if err != nil {
		return "", nil, fmt.Errorf("failed to verify code: %w", err)
	}
	if user == nil {
		now := time.Now()
		user = &model.User{
			ID:        uuid.New(),
			Email:     email,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err = s.userRepo.CreateTx(ctx, tx, user); err != nil {
			return "", nil, fmt.Errorf("failed to verify code: %w", err)
		}
		s.logger.Info().Str("user_id", user.ID.String()).Msg("user created on first verification")
	}

	// Fold the anonymous baskets into the identity in the same transaction
	// as the login itself.
	for _, token := range basketTokens {
		if token == "" {
			continue
		}
		if err = s.basketRepo.Claim(ctx, tx, token, user.ID); err != nil {
			return "", nil, fmt.Errorf("failed to verify code: %w", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return "", nil, fmt.Errorf("failed to verify code: %w", err)
	}
	committed = true

	sessionToken, err := s.sessions.Mint(user.ID, user.Email)
	if err != nil {
		return "", nil, fmt.Errorf("failed to mint session: %w", err)
	}

	s.logger.Info().
		Str("user_id", user.ID.String()).
		Int("baskets_claimed", len(basketTokens)).
		Msg("code verified")

	return sessionToken, user, nil
}

// GetUser retrieves a user by id.
func (s *authService) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// normaliseEmail validates and lowercases an email address.
func normaliseEmail(email string) (string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return "", err
	}
	return email, nil
}
