package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/huproof/internal/huproof/proof"
	"github.com/aussiebroadwan/huproof/internal/huproof/service"
	"github.com/aussiebroadwan/huproof/internal/huproof/store"
	"github.com/aussiebroadwan/huproof/pkg/cryptox"
	"github.com/aussiebroadwan/huproof/pkg/httpx"
	"github.com/aussiebroadwan/huproof/pkg/slogx"

	_ "github.com/aussiebroadwan/huproof/api/huproof" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Limiters holds one limiter per admission budget. Finish is shared by
// enroll finish, login finish and logout. Key picks the client key; nil
// means the connecting peer's address.
type Limiters struct {
	EnrollStart httpx.Limiter
	LoginStart  httpx.Limiter
	Finish      httpx.Limiter
	Lenient     httpx.Limiter

	Key httpx.KeyExtractor
}

// MemoryLimiters builds in-process limiters from the given budgets.
func MemoryLimiters(b httpx.Budgets, key httpx.KeyExtractor) Limiters {
	return Limiters{
		EnrollStart: httpx.NewMemoryLimiter(b.EnrollStart),
		LoginStart:  httpx.NewMemoryLimiter(b.LoginStart),
		Finish:      httpx.NewMemoryLimiter(b.Finish),
		Lenient:     httpx.NewMemoryLimiter(b.Lenient),
		Key:         key,
	}
}

func (l Limiters) by(limiter httpx.Limiter) httpx.Middleware {
	key := l.Key
	if key == nil {
		key = httpx.IPKeyExtractor
	}
	return httpx.RateLimitMiddleware(limiter, key)
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	origin       string
	originHash   string
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store    store.Store
	verifier proof.Verifier
	limiters Limiters

	EnrollmentService *service.EnrollmentService
	LoginService      *service.LoginService
	SessionService    *service.SessionService
}

func NewRouter(
	origin, buildVersion string,
	st store.Store,
	verifier proof.Verifier,
	limiters Limiters,
	logger *slog.Logger,
) *Router {
	origin = normalizeOrigin(origin)
	r := &Router{
		Mux:          http.NewServeMux(),
		origin:       origin,
		originHash:   cryptox.SHA256Hex(origin),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		verifier:     verifier,
		limiters:     limiters,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

// OriginHash is the hash every protocol run on this server is bound to.
func (r *Router) OriginHash() string { return r.originHash }

func (r *Router) ApplyRoutes() {
	r.registerEnroll()
	r.registerLogin()
	r.registerSession()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			huproof API
//	@version		0.1.0
//	@description	Keystroke-biometric authentication with zero-knowledge proofs.
//	@description
//	@description				A client enrolls a commitment to its keystroke template and later logs in by proving, without revealing the template, that a fresh sample is within tau of it.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/huproof
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Session token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerEnroll() {
	h := &EnrollHandler{EnrollmentService: r.EnrollmentService, OriginHash: r.originHash}
	origin := OriginMiddleware(r.origin)

	// GET /api/enroll/start - strictest budget, each call writes a row
	r.Mux.Handle("GET /api/enroll/start",
		httpx.Chain(http.HandlerFunc(h.HandleStart),
			r.limiters.by(r.limiters.EnrollStart),
			origin,
		),
	)

	// POST /api/enroll/finish - shared finish budget
	r.Mux.Handle("POST /api/enroll/finish",
		httpx.Chain(http.HandlerFunc(h.HandleFinish),
			r.limiters.by(r.limiters.Finish),
			origin,
		),
	)
}

func (r *Router) registerLogin() {
	h := &LoginHandler{LoginService: r.LoginService, OriginHash: r.originHash}
	origin := OriginMiddleware(r.origin)

	r.Mux.Handle("GET /api/login/start",
		httpx.Chain(http.HandlerFunc(h.HandleStart),
			r.limiters.by(r.limiters.LoginStart),
			origin,
		),
	)

	r.Mux.Handle("POST /api/login/finish",
		httpx.Chain(http.HandlerFunc(h.HandleFinish),
			r.limiters.by(r.limiters.Finish),
			origin,
		),
	)
}

func (r *Router) registerSession() {
	origin := OriginMiddleware(r.origin)

	// POST /api/logout - counts against the finish budget
	logout := &LogoutHandler{SessionService: r.SessionService}
	r.Mux.Handle("POST /api/logout",
		httpx.Chain(logout,
			r.limiters.by(r.limiters.Finish),
			origin,
		),
	)

	session := &SessionHandler{}
	r.Mux.Handle("GET /api/session",
		httpx.Chain(session,
			r.limiters.by(r.limiters.Lenient),
			origin,
			httpx.AuthnMiddleware(r.SessionService),
		),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			r.limiters.by(r.limiters.Lenient),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.verifier),
			r.limiters.by(r.limiters.Lenient),
		),
	)
}
