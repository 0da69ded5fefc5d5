package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// Limiter stub with a fixed answer
type limiterStub struct {
	allow bool
	keys  []string
}

func (l *limiterStub) Allow(ctx context.Context, key string) bool {
	l.keys = append(l.keys, key)
	return l.allow
}

func (l *limiterStub) Window() time.Duration {
	return 42 * time.Second
}

func TestRateLimitMiddleware(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("passed"))
	})

	get := func(t *testing.T, url string) (*http.Response, string) {
		t.Helper()

		resp, err := http.Get(url)
		require.NoError(t, err, "should make request to test server")
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err, "should read response body")
		defer resp.Body.Close() // nolint:errcheck

		return resp, string(body)
	}

	t.Run("request under limit passed through", func(t *testing.T) {
		stub := &limiterStub{allow: true}
		srv := httptest.NewServer(RateLimitMiddleware(stub)(handler))
		defer srv.Close()

		resp, body := get(t, srv.URL+"/test")

		require.Equalf(t, http.StatusOK, resp.StatusCode, "should return status OK. Resp: %s", body)
		require.Equal(t, "passed", body)
	})

	t.Run("request over limit rejected", func(t *testing.T) {
		stub := &limiterStub{allow: false}
		srv := httptest.NewServer(RateLimitMiddleware(stub)(handler))
		defer srv.Close()

		resp, body := get(t, srv.URL+"/test")

		require.Equalf(t, http.StatusTooManyRequests, resp.StatusCode, "should return status TooManyRequests. Resp: %s", body)
		require.Equal(t, "42", resp.Header.Get("Retry-After"), "retry hint should be the window size in seconds")
		require.JSONEq(t,
			`{
				"error": "service_error",
				"message": "Too many requests, try again later"
			}`,
			body,
		)
	})

	t.Run("requests keyed by client host", func(t *testing.T) {
		stub := &limiterStub{allow: true}
		srv := httptest.NewServer(RateLimitMiddleware(stub)(handler))
		defer srv.Close()

		get(t, srv.URL+"/test")

		require.Len(t, stub.keys, 1)
		require.NotContains(t, stub.keys[0], ":", "port must not be part of the key")
	})
}
