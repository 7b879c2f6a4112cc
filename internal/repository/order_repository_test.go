package repository

import (
	"context"
	"testing"
	"time"

	"calikart/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOrder(userID uuid.UUID, orderNumber string) *model.Order {
	now := time.Now()
	return &model.Order{
		ID:          uuid.New(),
		OrderNumber: orderNumber,
		UserID:      userID,
		Customer: model.Customer{
			Name:    "A. Metrologist",
			Email:   "customer@example.com",
			Address: "1 Gauge Street",
			City:    "Pune",
		},
		Subtotal:     1500,
		Tax:          270,
		ShippingCost: 50,
		TotalAmount:  1820,
		Status:       model.OrderStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func storeOrder(t *testing.T, pool *pgxpool.Pool, repo OrderRepository, order *model.Order, items []model.OrderItem) {
	ctx := context.Background()
	tx, err := repo.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.CreateTx(ctx, tx, order))
	require.NoError(t, repo.CreateItemsTx(ctx, tx, items))
	require.NoError(t, tx.Commit(ctx))
}

func TestOrderRepository_CreateAndGet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewOrderRepository(pool, zerolog.Nop())
	ctx := context.Background()

	userID := insertTestUser(t, pool, "customer@example.com")
	order := testOrder(userID, "CAL-20260901-000001")
	items := []model.OrderItem{
		{
			ID:          uuid.New(),
			OrderID:     order.ID,
			ProductID:   "P001",
			ProductName: "Dial Gauge",
			UnitPrice:   500,
			Quantity:    3,
			LineTotal:   1500,
		},
	}

	storeOrder(t, pool, repo, order, items)

	got, gotItems, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, order.OrderNumber, got.OrderNumber)
	assert.Equal(t, model.OrderStatusPending, got.Status)
	assert.InDelta(t, 1820.0, got.TotalAmount, 1e-9)
	require.Len(t, gotItems, 1)
	assert.Equal(t, 3, gotItems[0].Quantity)
	assert.InDelta(t, 1500.0, gotItems[0].LineTotal, 1e-9)

	t.Run("unknown order", func(t *testing.T) {
		got, gotItems, err := repo.GetByID(ctx, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, got)
		assert.Nil(t, gotItems)
	})

	t.Run("duplicate order number is a unique violation", func(t *testing.T) {
		dup := testOrder(userID, "CAL-20260901-000001")

		tx, err := repo.BeginTx(ctx)
		require.NoError(t, err)
		defer tx.Rollback(ctx)

		err = repo.CreateTx(ctx, tx, dup)
		require.Error(t, err)
		assert.True(t, IsUniqueViolation(err))
	})
}

func TestOrderRepository_UpdateStatusTx(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewOrderRepository(pool, zerolog.Nop())
	ctx := context.Background()

	userID := insertTestUser(t, pool, "customer@example.com")
	order := testOrder(userID, "CAL-20260901-000002")
	storeOrder(t, pool, repo, order, nil)

	tx, err := repo.BeginTx(ctx)
	require.NoError(t, err)

	locked, err := repo.GetByIDForUpdate(ctx, tx, order.ID)
	require.NoError(t, err)
	require.NotNil(t, locked)
	assert.Equal(t, model.OrderStatusPending, locked.Status)

	require.NoError(t, repo.UpdateStatusTx(ctx, tx, order.ID, model.OrderStatusProcessing))
	require.NoError(t, tx.Commit(ctx))

	got, _, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusProcessing, got.Status)
}

func TestOrderRepository_List(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewOrderRepository(pool, zerolog.Nop())
	ctx := context.Background()

	alice := insertTestUser(t, pool, "alice@example.com")
	bob := insertTestUser(t, pool, "bob@example.com")

	first := testOrder(alice, "CAL-20260901-000010")
	first.CreatedAt = time.Now().Add(-time.Hour)
	second := testOrder(alice, "CAL-20260901-000011")
	third := testOrder(bob, "CAL-20260901-000012")
	third.Status = model.OrderStatusShipped

	storeOrder(t, pool, repo, first, nil)
	storeOrder(t, pool, repo, second, nil)
	storeOrder(t, pool, repo, third, nil)

	t.Run("by user newest first", func(t *testing.T) {
		orders, err := repo.ListByUser(ctx, alice)
		require.NoError(t, err)
		require.Len(t, orders, 2)
		assert.Equal(t, second.ID, orders[0].ID)
		assert.Equal(t, first.ID, orders[1].ID)
	})

	t.Run("all orders", func(t *testing.T) {
		orders, err := repo.List(ctx, nil)
		require.NoError(t, err)
		assert.Len(t, orders, 3)
	})

	t.Run("filtered by status", func(t *testing.T) {
		shipped := model.OrderStatusShipped
		orders, err := repo.List(ctx, &shipped)
		require.NoError(t, err)
		require.Len(t, orders, 1)
		assert.Equal(t, third.ID, orders[0].ID)
	})
}

func TestOrderRepository_Exists(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewOrderRepository(pool, zerolog.Nop())
	ctx := context.Background()

	userID := insertTestUser(t, pool, "customer@example.com")
	order := testOrder(userID, "CAL-20260901-000020")
	storeOrder(t, pool, repo, order, nil)

	exists, err := repo.Exists(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.Exists(ctx, uuid.New())
	require.NoError(t, err)
	assert.False(t, exists)
}

// Conversion commits the order insert and the cart delete together.
func TestOrderRepository_ConversionIsAtomic(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	orderRepo := NewOrderRepository(pool, zerolog.Nop())
	basketRepo := NewBasketRepository(pool, zerolog.Nop())
	ctx := context.Background()

	userID := insertTestUser(t, pool, "customer@example.com")
	cart := newStoredBasket(t, basketRepo, "tok-convert", model.BasketKindCart)

	t.Run("rollback leaves the cart untouched", func(t *testing.T) {
		order := testOrder(userID, "CAL-20260901-000030")

		tx, err := orderRepo.BeginTx(ctx)
		require.NoError(t, err)
		require.NoError(t, orderRepo.CreateTx(ctx, tx, order))
		require.NoError(t, basketRepo.DeleteTx(ctx, tx, cart.ID))
		require.NoError(t, tx.Rollback(ctx))

		got, err := basketRepo.GetByToken(ctx, cart.Token)
		require.NoError(t, err)
		require.NotNil(t, got)

		stillThere, _, err := orderRepo.GetByID(ctx, order.ID)
		require.NoError(t, err)
		assert.Nil(t, stillThere)
	})

	t.Run("commit removes the cart with the order in place", func(t *testing.T) {
		order := testOrder(userID, "CAL-20260901-000031")

		tx, err := orderRepo.BeginTx(ctx)
		require.NoError(t, err)
		require.NoError(t, orderRepo.CreateTx(ctx, tx, order))
		require.NoError(t, basketRepo.DeleteTx(ctx, tx, cart.ID))
		require.NoError(t, tx.Commit(ctx))

		gone, err := basketRepo.GetByToken(ctx, cart.Token)
		require.NoError(t, err)
		assert.Nil(t, gone)

		created, _, err := orderRepo.GetByID(ctx, order.ID)
		require.NoError(t, err)
		require.NotNil(t, created)
	})
}

func TestNotificationRepository_AppendAndList(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	orderRepo := NewOrderRepository(pool, zerolog.Nop())
	notificationRepo := NewNotificationRepository(pool, zerolog.Nop())
	ctx := context.Background()

	userID := insertTestUser(t, pool, "customer@example.com")
	order := testOrder(userID, "CAL-20260901-000040")
	storeOrder(t, pool, orderRepo, order, nil)

	first := &model.NotificationEvent{
		ID:      uuid.New(),
		OrderID: order.ID,
		Message: "Order CAL-20260901-000040 placed, awaiting processing",
		SentAt:  time.Now().Add(-time.Minute),
	}
	require.NoError(t, notificationRepo.Append(ctx, first))

	tx, err := orderRepo.BeginTx(ctx)
	require.NoError(t, err)
	second := &model.NotificationEvent{
		ID:      uuid.New(),
		OrderID: order.ID,
		Message: "Order CAL-20260901-000040 is now being processed",
		SentAt:  time.Now(),
	}
	require.NoError(t, notificationRepo.AppendTx(ctx, tx, second))
	require.NoError(t, tx.Commit(ctx))

	events, err := notificationRepo.ListByOrder(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, first.ID, events[0].ID)
	assert.Equal(t, second.ID, events[1].ID)

	t.Run("unknown order has no events", func(t *testing.T) {
		events, err := notificationRepo.ListByOrder(ctx, uuid.New())
		require.NoError(t, err)
		assert.Empty(t, events)
	})
}
