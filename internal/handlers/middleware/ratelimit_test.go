package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

// Allow to use a function as limiter
type limiterFunc func(ctx context.Context, key string) (bool, error)

func (f limiterFunc) Allow(ctx context.Context, key string) (bool, error) {
	return f(ctx, key)
}

type noopLogger struct{}

func (noopLogger) Warn(string, ...any) {}

func TestRateLimitMiddleware(t *testing.T) {
	okHandler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	serve := func(t *testing.T, lim Limiter, header http.Header) *http.Response {
		t.Helper()

		middleware := RateLimitMiddleware(lim, noopLogger{})
		srv := httptest.NewServer(middleware(okHandler))
		defer srv.Close()

		req, err := http.NewRequest(http.MethodGet, srv.URL+"/test", nil)
		require.NoError(t, err)
		for key, values := range header {
			req.Header[key] = values
		}

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close() // nolint:errcheck
		return resp
	}

	t.Run("allowed request passes", func(t *testing.T) {
		lim := limiterFunc(func(ctx context.Context, key string) (bool, error) {
			require.NotEmpty(t, key, "client ip must be used as the limiter key")
			return true, nil
		})

		resp := serve(t, lim, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("rejected request gets 429", func(t *testing.T) {
		lim := limiterFunc(func(ctx context.Context, key string) (bool, error) {
			return false, nil
		})

		resp := serve(t, lim, nil)
		require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	})

	t.Run("limiter error fails open", func(t *testing.T) {
		lim := limiterFunc(func(ctx context.Context, key string) (bool, error) {
			return false, errors.New("redis is down")
		})

		resp := serve(t, lim, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("x-real-ip wins over remote addr", func(t *testing.T) {
		var gotKey string
		lim := limiterFunc(func(ctx context.Context, key string) (bool, error) {
			gotKey = key
			return true, nil
		})

		header := http.Header{}
		header.Set("X-Real-Ip", "203.0.113.7")
		resp := serve(t, lim, header)

		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, "203.0.113.7", gotKey)
	})
}
