package router

import (
	"net/http"

	"calikart/internal/auth"
	"calikart/internal/handler"
	"calikart/internal/middleware"

	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

// New creates a new HTTP router with all routes and middleware configured.
// Basket and auth routes are public: baskets are capability-addressed by
// their token, orders require a session, fulfillment requires the admin key.
func New(
	productHandler *handler.ProductHandler,
	basketHandler *handler.BasketHandler,
	authHandler *handler.AuthHandler,
	orderHandler *handler.OrderHandler,
	sessions *auth.SessionManager,
	adminAPIKey string,
	logger zerolog.Logger,
) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint (no authentication required)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	// Catalogue
	mux.HandleFunc("GET /api/products", productHandler.GetAll)
	mux.HandleFunc("GET /api/products/{id}", productHandler.GetByID)

	// Baskets
	mux.HandleFunc("POST /api/baskets/{kind}", basketHandler.Create)
	mux.HandleFunc("GET /api/baskets/{token}", basketHandler.Get)
	mux.HandleFunc("POST /api/baskets/{token}/items", basketHandler.AddItem)
	mux.HandleFunc("PUT /api/baskets/{token}/items/{item_id}", basketHandler.UpdateItem)
	mux.HandleFunc("DELETE /api/baskets/{token}/items/{item_id}", basketHandler.RemoveItem)
	mux.HandleFunc("POST /api/baskets/{token}/submit", basketHandler.Submit)

	sessionAuth := middleware.SessionAuth(sessions, logger)

	// Authentication
	mux.HandleFunc("POST /api/auth/request-code", authHandler.RequestCode)
	mux.HandleFunc("POST /api/auth/verify-code", authHandler.VerifyCode)
	mux.Handle("GET /api/auth/me", sessionAuth(http.HandlerFunc(authHandler.Me)))

	// Customer orders (session required)
	mux.Handle("POST /api/orders", sessionAuth(http.HandlerFunc(orderHandler.Create)))
	mux.Handle("GET /api/orders", sessionAuth(http.HandlerFunc(orderHandler.List)))
	mux.Handle("GET /api/orders/{id}", sessionAuth(http.HandlerFunc(orderHandler.GetByID)))

	// Fulfillment (admin API key required)
	adminAuth := middleware.APIKeyAuth(adminAPIKey, logger)
	mux.Handle("GET /api/admin/orders", adminAuth(http.HandlerFunc(orderHandler.AdminList)))
	mux.Handle("GET /api/admin/orders/{id}", adminAuth(http.HandlerFunc(orderHandler.AdminGetByID)))
	mux.Handle("PUT /api/admin/orders/{id}/status", adminAuth(http.HandlerFunc(orderHandler.UpdateStatus)))
	mux.Handle("POST /api/admin/orders/{id}/notify", adminAuth(http.HandlerFunc(orderHandler.Notify)))
	mux.Handle("GET /api/admin/orders/{id}/notifications", adminAuth(http.HandlerFunc(orderHandler.ListNotifications)))

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-API-Key"},
	})

	// Apply middleware in order: Recovery -> Logging -> CORS -> mux
	var h http.Handler = mux
	h = corsHandler.Handler(h)
	h = middleware.Logging(logger)(h)
	h = middleware.Recovery(logger)(h)

	return h
}
