// Package integration exercises the full HTTP API against a real
// PostgreSQL instance.
package integration

import (
	"context"
	"net/http/httptest"
	"os"
	"regexp"
	"sync"
	"testing"
	"time"

	"calikart/internal/auth"
	"calikart/internal/handler"
	"calikart/internal/repository"
	"calikart/internal/router"
	"calikart/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	testAdminAPIKey = "integration-admin-key"
	testJWTSecret   = "integration-jwt-secret"
	testShopInbox   = "sales@integration.test"
)

// recordedMessage is one message captured instead of being mailed out.
type recordedMessage struct {
	To      string
	Subject string
	Body    string
}

// recordingSender captures outbound mail so tests can read the one-time
// codes and notification bodies.
type recordingSender struct {
	mu       sync.Mutex
	messages []recordedMessage
}

func (s *recordingSender) Send(_ context.Context, to, subject, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, recordedMessage{To: to, Subject: subject, Body: body})
	return nil
}

// Last returns the most recent message sent to the address.
func (s *recordingSender) Last(to string) (recordedMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.messages) - 1; i >= 0; i-- {
		if s.messages[i].To == to {
			return s.messages[i], true
		}
	}
	return recordedMessage{}, false
}

var codePattern = regexp.MustCompile(`\b(\d{6})\b`)

// LastCode extracts the one-time code from the most recent message to the
// address.
func (s *recordingSender) LastCode(t *testing.T, to string) string {
	msg, ok := s.Last(to)
	require.True(t, ok, "no message recorded for %s", to)

	match := codePattern.FindStringSubmatch(msg.Body)
	require.Len(t, match, 2, "no code found in message body: %s", msg.Body)
	return match[1]
}

// testEnv is a fully wired API over a disposable database.
type testEnv struct {
	Server *httptest.Server
	Pool   *pgxpool.Pool
	Mail   *recordingSender
}

// setupEnv starts PostgreSQL, applies the schema, seeds the catalogue and
// serves the complete router.
func setupEnv(t *testing.T) *testEnv {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgContainer.Terminate(ctx) })

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := repository.NewPool(ctx, connStr, repository.DefaultDBConfig())
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	ddl, err := os.ReadFile("../../migrations/schema.sql")
	require.NoError(t, err)
	_, err = pool.Exec(ctx, string(ddl))
	require.NoError(t, err)

	_, err = pool.Exec(ctx, `
		INSERT INTO products (id, name, price, category, description) VALUES
			('P001', 'Dial Gauge', 500.00, 'measurement', 'Plunger dial indicator'),
			('P002', 'Vernier Caliper', 1200.00, 'measurement', '150mm stainless caliper')
	`)
	require.NoError(t, err)

	logger := zerolog.Nop()
	sender := &recordingSender{}
	sessions := auth.NewSessionManager(testJWTSecret, time.Hour)

	productRepo := repository.NewProductRepository(pool, logger)
	basketRepo := repository.NewBasketRepository(pool, logger)
	userRepo := repository.NewUserRepository(pool, logger)
	codeRepo := repository.NewCodeRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	notificationRepo := repository.NewNotificationRepository(pool, logger)

	productService := service.NewProductService(productRepo, logger)
	basketService := service.NewBasketService(basketRepo, productService, sender, testShopInbox, logger)
	authService := service.NewAuthService(codeRepo, userRepo, basketRepo, sender, sessions, service.AuthConfig{
		OTPTTL:    10 * time.Minute,
		OTPLength: 6,
	}, logger)
	orderService := service.NewOrderService(orderRepo, basketRepo, notificationRepo, sender, service.PricingConfig{
		TaxRate:      0.18,
		ShippingCost: 50,
	}, logger)

	mux := router.New(
		handler.NewProductHandler(productService, logger),
		handler.NewBasketHandler(basketService, logger),
		handler.NewAuthHandler(authService, logger),
		handler.NewOrderHandler(orderService, logger),
		sessions,
		testAdminAPIKey,
		logger,
	)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return &testEnv{Server: server, Pool: pool, Mail: sender}
}
