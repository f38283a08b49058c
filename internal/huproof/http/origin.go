package http

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/aussiebroadwan/huproof/pkg/authsdk"
	"github.com/aussiebroadwan/huproof/pkg/httpx"
	"github.com/aussiebroadwan/huproof/pkg/slogx"
)

// OriginMiddleware rejects requests whose Origin (or, failing that, Referer)
// does not name the configured origin.
func OriginMiddleware(allowed string) httpx.Middleware {
	allowed = normalizeOrigin(allowed)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := RequestOrigin(r)
			if got == "" || got != allowed {
				slogx.FromContext(r.Context()).Warn("origin rejected", "origin", got)
				authsdk.ErrInvalidOrigin.WriteError(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequestOrigin returns the Origin header, or the scheme and host of the
// Referer when Origin is absent.
func RequestOrigin(r *http.Request) string {
	if o := r.Header.Get("Origin"); o != "" {
		return normalizeOrigin(o)
	}
	ref := r.Header.Get("Referer")
	if ref == "" {
		return ""
	}
	u, err := url.Parse(ref)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

func normalizeOrigin(o string) string {
	return strings.TrimSuffix(strings.TrimSpace(o), "/")
}
