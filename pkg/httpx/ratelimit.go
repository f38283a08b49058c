package httpx

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net"
	"net/http"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/huproof/pkg/slogx"
	"golang.org/x/time/rate"
)

// RateLimitConfig defines the rate limiting parameters.
type RateLimitConfig struct {
	// RequestsPerWindow is the number of requests allowed in the time window
	RequestsPerWindow int
	// Window is the time window for rate limiting
	Window time.Duration
	// Burst allows for temporary bursts above the rate limit
	Burst int
}

// interval is the time it takes to refill one token.
func (c RateLimitConfig) interval() time.Duration {
	if c.RequestsPerWindow <= 0 {
		return c.Window
	}
	return c.Window / time.Duration(c.RequestsPerWindow)
}

// Budgets holds one RateLimitConfig per endpoint class.
type Budgets struct {
	// EnrollStart guards GET /api/enroll/start.
	EnrollStart RateLimitConfig
	// LoginStart guards GET /api/login/start.
	LoginStart RateLimitConfig
	// Finish is one budget shared by enroll finish, login finish and logout.
	Finish RateLimitConfig
	// Lenient for health probes and session introspection.
	Lenient RateLimitConfig
}

// DefaultBudgets returns the per-endpoint budgets used when nothing is
// configured.
func DefaultBudgets() Budgets {
	return Budgets{
		EnrollStart: RateLimitConfig{RequestsPerWindow: 5, Window: time.Minute, Burst: 5},
		LoginStart:  RateLimitConfig{RequestsPerWindow: 10, Window: time.Minute, Burst: 10},
		Finish:      RateLimitConfig{RequestsPerWindow: 20, Window: time.Minute, Burst: 20},
		Lenient:     RateLimitConfig{RequestsPerWindow: 100, Window: time.Minute, Burst: 100},
	}
}

// BudgetsFromEnv applies RATELIMIT_{ENROLL_START,LOGIN_START,FINISH,LENIENT}_*
// overrides on top of base.
func BudgetsFromEnv(base Budgets) Budgets {
	return Budgets{
		EnrollStart: ParseRateLimitFromEnv("ENROLL_START", base.EnrollStart),
		LoginStart:  ParseRateLimitFromEnv("LOGIN_START", base.LoginStart),
		Finish:      ParseRateLimitFromEnv("FINISH", base.Finish),
		Lenient:     ParseRateLimitFromEnv("LENIENT", base.Lenient),
	}
}

// ParseRateLimitFromEnv reads rate limit configuration from environment variables.
// Environment variables follow the pattern: RATELIMIT_{prefix}_{field}
// For example: RATELIMIT_FINISH_REQUESTS, RATELIMIT_FINISH_WINDOW_SEC, RATELIMIT_FINISH_BURST
func ParseRateLimitFromEnv(prefix string, defaultConfig RateLimitConfig) RateLimitConfig {
	config := defaultConfig

	if val := os.Getenv("RATELIMIT_" + prefix + "_REQUESTS"); val != "" {
		if requests, err := strconv.Atoi(val); err == nil && requests > 0 {
			config.RequestsPerWindow = requests
		}
	}

	if val := os.Getenv("RATELIMIT_" + prefix + "_WINDOW_SEC"); val != "" {
		if windowSec, err := strconv.Atoi(val); err == nil && windowSec > 0 {
			config.Window = time.Duration(windowSec) * time.Second
		}
	}

	if val := os.Getenv("RATELIMIT_" + prefix + "_BURST"); val != "" {
		if burst, err := strconv.Atoi(val); err == nil && burst > 0 {
			config.Burst = burst
		}
	}

	return config
}

// Decision is the outcome of a single admission check.
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Limiter is a keyed token bucket. Implementations must be safe for
// concurrent use.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
	Config() RateLimitConfig
}

// KeyExtractor is a function that extracts a unique key from the request
// for rate limiting purposes.
type KeyExtractor func(*http.Request) string

// IPKeyExtractor keys on the connecting peer's address. Forwarding headers
// are ignored; use ClientIPKeyExtractor behind a reverse proxy.
func IPKeyExtractor(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// ParseTrustedProxies parses a comma separated list of CIDRs or bare IPs.
func ParseTrustedProxies(s string) ([]netip.Prefix, error) {
	var out []netip.Prefix
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if strings.Contains(part, "/") {
			p, err := netip.ParsePrefix(part)
			if err != nil {
				return nil, fmt.Errorf("trusted proxy %q: %w", part, err)
			}
			out = append(out, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(part)
		if err != nil {
			return nil, fmt.Errorf("trusted proxy %q: %w", part, err)
		}
		addr = addr.Unmap()
		out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return out, nil
}

// ClientIPKeyExtractor honours X-Forwarded-For and X-Real-IP only when the
// connecting peer is inside one of the trusted prefixes. X-Forwarded-For is
// walked right to left and the first hop outside the trusted set is the
// client. With no trusted prefixes it behaves like IPKeyExtractor.
func ClientIPKeyExtractor(trusted []netip.Prefix) KeyExtractor {
	isTrusted := func(addr netip.Addr) bool {
		addr = addr.Unmap()
		for _, p := range trusted {
			if p.Contains(addr) {
				return true
			}
		}
		return false
	}

	return func(r *http.Request) string {
		peer := IPKeyExtractor(r)
		if len(trusted) == 0 {
			return peer
		}
		peerAddr, err := netip.ParseAddr(peer)
		if err != nil || !isTrusted(peerAddr) {
			return peer
		}

		if xff := r.Header.Values("X-Forwarded-For"); len(xff) > 0 {
			hops := strings.Split(strings.Join(xff, ","), ",")
			for i := len(hops) - 1; i >= 0; i-- {
				hop, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
				if err != nil {
					break
				}
				if !isTrusted(hop) {
					return hop.Unmap().String()
				}
			}
		}

		if xri, err := netip.ParseAddr(strings.TrimSpace(r.Header.Get("X-Real-IP"))); err == nil {
			return xri.Unmap().String()
		}
		return peer
	}
}

// MemoryLimiter keeps one golang.org/x/time/rate bucket per key in process.
type MemoryLimiter struct {
	cfg      RateLimitConfig
	limiters sync.Map // map[string]*rate.Limiter
	rate     rate.Limit
	mu       sync.Mutex
	// Cleanup old limiters periodically
	lastCleanup time.Time
}

func NewMemoryLimiter(cfg RateLimitConfig) *MemoryLimiter {
	return &MemoryLimiter{
		cfg:         cfg,
		rate:        rate.Limit(float64(cfg.RequestsPerWindow) / cfg.Window.Seconds()),
		lastCleanup: time.Now(),
	}
}

func (l *MemoryLimiter) Config() RateLimitConfig { return l.cfg }

func (l *MemoryLimiter) Allow(_ context.Context, key string) (Decision, error) {
	limiter := l.getLimiter(key)
	if limiter.Allow() {
		return Decision{Allowed: true, Remaining: int(limiter.Tokens())}, nil
	}

	// Calculate when the next token will be available without consuming it.
	reservation := limiter.Reserve()
	delay := reservation.Delay()
	reservation.Cancel()

	return Decision{RetryAfter: delay}, nil
}

// getLimiter retrieves or creates a rate limiter for the given key
func (l *MemoryLimiter) getLimiter(key string) *rate.Limiter {
	if limiter, ok := l.limiters.Load(key); ok {
		return limiter.(*rate.Limiter)
	}

	limiter := rate.NewLimiter(l.rate, l.cfg.Burst)
	actual, _ := l.limiters.LoadOrStore(key, limiter)

	l.maybeCleanup()

	return actual.(*rate.Limiter)
}

// maybeCleanup drops buckets that have refilled completely, so ephemeral
// client addresses do not accumulate.
func (l *MemoryLimiter) maybeCleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if time.Since(l.lastCleanup) < 5*time.Minute {
		return
	}
	l.lastCleanup = time.Now()

	l.limiters.Range(func(key, value any) bool {
		if value.(*rate.Limiter).Tokens() >= float64(l.cfg.Burst) {
			l.limiters.Delete(key)
		}
		return true
	})
}

var errEmptyKey = errors.New("rate limit: empty key")

// RateLimitMiddleware admits requests through l, keyed by keyExtractor.
// It fails closed: a request with no key, or one the backend could not
// judge, is rejected before reaching next.
func RateLimitMiddleware(l Limiter, keyExtractor KeyExtractor) Middleware {
	cfg := l.Config()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			var (
				dec Decision
				err error
			)
			key := keyExtractor(r)
			if key == "" {
				err = errEmptyKey
			} else {
				dec, err = l.Allow(ctx, key)
			}

			if err != nil {
				log.Error("rate limit: rejecting request", "err", err, "endpoint", r.URL.Path)
				dec = Decision{RetryAfter: cfg.interval()}
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.RequestsPerWindow))
			w.Header().Set("X-RateLimit-Window", cfg.Window.String())

			if !dec.Allowed {
				retryAfter := max(int(math.Ceil(dec.RetryAfter.Seconds())), 1)
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))

				if err == nil {
					log.Warn("rate limit exceeded",
						"key", key,
						"endpoint", r.URL.Path,
						"retry_after", retryAfter,
					)
				}

				WriteError(w, http.StatusTooManyRequests,
					"rate_limit_exceeded", "Too many requests. Please try again later.")
				return
			}

			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(dec.Remaining))
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitByIP limits by client IP address.
func RateLimitByIP(l Limiter) Middleware {
	return RateLimitMiddleware(l, IPKeyExtractor)
}
