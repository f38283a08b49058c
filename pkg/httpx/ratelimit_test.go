package httpx_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aussiebroadwan/huproof/pkg/httpx"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func requestFrom(ip string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/enroll/start", nil)
	req.RemoteAddr = ip + ":12345"
	return req
}

func TestIPKeyExtractor(t *testing.T) {
	t.Run("extracts from RemoteAddr", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		require.Equal(t, "192.168.1.1", httpx.IPKeyExtractor(req))
	})

	t.Run("ignores forwarding headers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		req.Header.Set("X-Forwarded-For", "203.0.113.1")
		req.Header.Set("X-Real-IP", "203.0.113.2")
		require.Equal(t, "192.168.1.1", httpx.IPKeyExtractor(req))
	})
}

func TestClientIPKeyExtractor(t *testing.T) {
	trusted, err := httpx.ParseTrustedProxies("10.0.0.0/8, 192.168.1.1")
	require.NoError(t, err)
	extract := httpx.ClientIPKeyExtractor(trusted)

	t.Run("untrusted peer keeps its own address", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "198.51.100.7:12345"
		req.Header.Set("X-Forwarded-For", "203.0.113.1")
		req.Header.Set("X-Real-IP", "203.0.113.2")
		require.Equal(t, "198.51.100.7", extract(req))
	})

	t.Run("trusted peer yields rightmost untrusted hop", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		req.Header.Set("X-Forwarded-For", "1.2.3.4, 203.0.113.1, 10.1.2.3")
		require.Equal(t, "203.0.113.1", extract(req))
	})

	t.Run("trusted peer falls back to X-Real-IP", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.9.9.9:12345"
		req.Header.Set("X-Real-IP", "203.0.113.2")
		require.Equal(t, "203.0.113.2", extract(req))
	})

	t.Run("trusted peer without headers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.9.9.9:12345"
		require.Equal(t, "10.9.9.9", extract(req))
	})

	t.Run("no trusted prefixes ignores headers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.9.9.9:12345"
		req.Header.Set("X-Forwarded-For", "203.0.113.1")
		require.Equal(t, "10.9.9.9", httpx.ClientIPKeyExtractor(nil)(req))
	})
}

func TestParseTrustedProxies(t *testing.T) {
	got, err := httpx.ParseTrustedProxies(" 10.0.0.0/8 ,,127.0.0.1,::1 ")
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, "127.0.0.1/32", got[1].String())

	empty, err := httpx.ParseTrustedProxies("")
	require.NoError(t, err)
	require.Empty(t, empty)

	_, err = httpx.ParseTrustedProxies("10.0.0.0/33")
	require.Error(t, err)
	_, err = httpx.ParseTrustedProxies("proxy.local")
	require.Error(t, err)
}

func TestRateLimitMiddleware(t *testing.T) {
	cfg := httpx.RateLimitConfig{RequestsPerWindow: 2, Window: time.Minute, Burst: 2}

	t.Run("blocks requests over limit", func(t *testing.T) {
		h := httpx.RateLimitByIP(httpx.NewMemoryLimiter(cfg))(okHandler)

		for range 2 {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, requestFrom("10.0.0.1"))
			require.Equal(t, http.StatusOK, rec.Code)
		}

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, requestFrom("10.0.0.1"))
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		require.NotEmpty(t, rec.Header().Get("Retry-After"))
		require.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))

		var body httpx.ErrorBody
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		require.Equal(t, "rate_limit_exceeded", body.Error)
	})

	t.Run("different keys are tracked separately", func(t *testing.T) {
		h := httpx.RateLimitByIP(httpx.NewMemoryLimiter(cfg))(okHandler)

		for range 2 {
			h.ServeHTTP(httptest.NewRecorder(), requestFrom("10.0.0.2"))
		}

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, requestFrom("10.0.0.3"))
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("rejects when key is empty", func(t *testing.T) {
		empty := func(*http.Request) string { return "" }
		called := false
		h := httpx.RateLimitMiddleware(httpx.NewMemoryLimiter(cfg), empty)(http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) { called = true },
		))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, requestFrom("10.0.0.4"))
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		require.False(t, called)
	})

	t.Run("rejects when backend fails", func(t *testing.T) {
		h := httpx.RateLimitByIP(failingLimiter{cfg: cfg})(okHandler)

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, requestFrom("10.0.0.5"))
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		require.NotEmpty(t, rec.Header().Get("Retry-After"))
	})
}

func TestRedisLimiterFailsClosed(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		MaxRetries:  -1,
		DialTimeout: 100 * time.Millisecond,
	})
	t.Cleanup(func() { _ = client.Close() })

	l := httpx.NewRedisLimiter(client, "finish", httpx.DefaultBudgets().Finish)
	_, err := l.Allow(context.Background(), "10.0.0.6")
	require.Error(t, err)

	rec := httptest.NewRecorder()
	httpx.RateLimitByIP(l)(okHandler).ServeHTTP(rec, requestFrom("10.0.0.6"))
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestRateLimitProfiles(t *testing.T) {
	b := httpx.DefaultBudgets()
	require.Equal(t, 5, b.EnrollStart.RequestsPerWindow)
	require.Equal(t, 10, b.LoginStart.RequestsPerWindow)
	require.Equal(t, 20, b.Finish.RequestsPerWindow)
	require.Equal(t, 100, b.Lenient.RequestsPerWindow)
}

func TestBudgetsFromEnv(t *testing.T) {
	t.Setenv("RATELIMIT_FINISH_REQUESTS", "3")
	t.Setenv("RATELIMIT_FINISH_BURST", "4")

	b := httpx.BudgetsFromEnv(httpx.DefaultBudgets())
	require.Equal(t, 3, b.Finish.RequestsPerWindow)
	require.Equal(t, 4, b.Finish.Burst)
	require.Equal(t, httpx.DefaultBudgets().EnrollStart, b.EnrollStart)
}

func TestParseRateLimitFromEnv(t *testing.T) {
	defaultConfig := httpx.RateLimitConfig{
		RequestsPerWindow: 10,
		Window:            time.Minute,
		Burst:             10,
	}

	t.Run("NoEnvVarsUsesDefaults", func(t *testing.T) {
		config := httpx.ParseRateLimitFromEnv("TEST", defaultConfig)
		require.Equal(t, defaultConfig, config)
	})

	t.Run("OverrideAllParameters", func(t *testing.T) {
		t.Setenv("RATELIMIT_TEST_REQUESTS", "200")
		t.Setenv("RATELIMIT_TEST_WINDOW_SEC", "30")
		t.Setenv("RATELIMIT_TEST_BURST", "250")

		config := httpx.ParseRateLimitFromEnv("TEST", defaultConfig)
		require.Equal(t, 200, config.RequestsPerWindow)
		require.Equal(t, 30*time.Second, config.Window)
		require.Equal(t, 250, config.Burst)
	})

	t.Run("InvalidValuesUseDefaults", func(t *testing.T) {
		t.Setenv("RATELIMIT_TEST_REQUESTS", "invalid")
		t.Setenv("RATELIMIT_TEST_WINDOW_SEC", "-10")
		t.Setenv("RATELIMIT_TEST_BURST", "0")

		config := httpx.ParseRateLimitFromEnv("TEST", defaultConfig)
		require.Equal(t, defaultConfig, config)
	})
}

type failingLimiter struct{ cfg httpx.RateLimitConfig }

func (f failingLimiter) Allow(context.Context, string) (httpx.Decision, error) {
	return httpx.Decision{}, errors.New("backend down")
}

func (f failingLimiter) Config() httpx.RateLimitConfig { return f.cfg }
