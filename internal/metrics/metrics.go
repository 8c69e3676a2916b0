package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RefreshTokenReuse counts exchanges of already consumed refresh tokens.
	// Reuse of a dead token often means the token was stolen, so this one is
	// worth alerting on.
	RefreshTokenReuse = promauto.NewCounter(prometheus.CounterOpts{
		Name: "auth_refresh_token_reuse_total",
		Help: "Attempts to exchange an already used refresh token.",
	})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Handled HTTP requests by method and status code.",
	}, []string{"method", "status"})
)

// Handler exposes the default prometheus registry
func Handler() http.Handler {
	return promhttp.Handler()
}

// HealthHandler answers 200 while the health func passes, 503 otherwise
func HealthHandler(health func(context.Context) error) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()

		if err := health(ctx); err != nil {
			http.Error(w, "unhealthy", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
}
