package handlers

import (
	"context"
	"net/http"

	"github.com/reviveshine/lib2usexpress/internal/handlers/middleware"
	"github.com/reviveshine/lib2usexpress/internal/logger"
	"github.com/reviveshine/lib2usexpress/internal/metrics"
)

// Services required by the router
type Services struct {
	Auth     authService
	Verifier middleware.TokenVerifier
	User     userService
	Admin    adminService
	Presence presenceService
	Product  productService
	Chat     chatService
	Shipping shippingService

	// Limits auth endpoints per client IP. Optional
	AuthLimiter middleware.Limiter

	// Reports storage readiness for /healthz
	Health func(ctx context.Context) error
}

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

func NewRouter(s Services, logger logger.Logger) http.Handler {
	authMiddleware := middleware.AuthMiddleware(s.Verifier)
	withAuth := func(h http.Handler) http.Handler {
		return authMiddleware(h)
	}
	withAdmin := func(h http.Handler) http.Handler {
		return authMiddleware(middleware.RequireAdmin(h))
	}
	withLimit := func(h http.Handler) http.Handler {
		if s.AuthLimiter == nil {
			return h
		}
		return middleware.RateLimitMiddleware(s.AuthLimiter, logger)(h)
	}

	api := http.NewServeMux()

	api.Handle("POST /auth/register", withLimit(handleRegister(s.Auth, logger)))
	api.Handle("POST /auth/login", withLimit(handleLogin(s.Auth, logger)))
	api.Handle("POST /auth/refresh", withLimit(handleTokenRefresh(s.Auth, logger)))
	api.Handle("POST /auth/logout", withAuth(handleLogout(s.Auth, logger)))
	api.Handle("POST /auth/logout-all", withAuth(handleLogoutAll(s.Auth, logger)))

	api.Handle("POST /session/heartbeat", withAuth(handleHeartbeat(s.Presence, logger)))
	api.Handle("POST /session/status", withAuth(handleSetStatus(s.Presence, logger)))
	api.Handle("GET /session/status/bulk", handleBulkStatus(s.Presence, logger))
	api.Handle("GET /session/status/{userId}", handleGetStatus(s.Presence, logger))
	api.Handle("GET /session/online-users", handleOnlineUsers(s.Presence, logger))

	api.Handle("GET /users/me", withAuth(handleUserMe()))
	api.Handle("PATCH /users/me", withAuth(handleUpdateProfile(s.User, logger)))

	api.Handle("GET /products", handleListProducts(s.Product, logger))
	api.Handle("GET /products/{id}", handleGetProduct(s.Product, logger))
	api.Handle("POST /products", withAuth(handleCreateProduct(s.Product, logger)))
	api.Handle("DELETE /products/{id}", withAuth(handleDeleteProduct(s.Product, logger)))

	api.Handle("POST /shipping/rates", handleShippingRates(s.Shipping, logger))

	api.Handle("POST /chat/messages", withAuth(handleSendMessage(s.Chat, logger)))
	api.Handle("GET /chat/messages", withAuth(handleGetThread(s.Chat, logger)))
	api.Handle("GET /chat/conversations", withAuth(handleListConversations(s.Chat, logger)))

	api.Handle("POST /admin/sellers/{id}/verify", withAdmin(handleVerifySeller(s.Admin, logger)))
	api.Handle("POST /admin/users/{id}/disable", withAdmin(handleDisableUser(s.Admin, logger)))
	api.Handle("POST /admin/users/{id}/enable", withAdmin(handleEnableUser(s.Admin, logger)))

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", api))
	root.Handle("GET /metrics", metrics.Handler())
	root.Handle("GET /healthz", metrics.HealthHandler(s.Health))

	return chain(root,
		middleware.LoggerMiddleware(logger),
	)
}
