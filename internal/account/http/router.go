package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/openward/accountd/internal/account/service"
	"github.com/openward/accountd/internal/account/store"
	"github.com/openward/accountd/pkg/httpx"
	"github.com/openward/accountd/pkg/jwtx"
	"github.com/openward/accountd/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store          store.Store
	AccountService *service.AccountService
}

func NewRouter(
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAccount()
	r.registerPassword()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAccount() {
	profileHandler := &ProfileHandler{AccountService: r.AccountService}
	customDataHandler := &CustomDataHandler{AccountService: r.AccountService}

	r.Mux.Handle("GET /v1/me",
		httpx.Chain(http.HandlerFunc(profileHandler.HandleGet),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)

	r.Mux.Handle("PATCH /v1/me",
		httpx.Chain(http.HandlerFunc(profileHandler.HandlePatch),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	r.Mux.Handle("GET /v1/me/custom-data",
		httpx.Chain(http.HandlerFunc(customDataHandler.HandleGet),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)

	r.Mux.Handle("PATCH /v1/me/custom-data",
		httpx.Chain(http.HandlerFunc(customDataHandler.HandlePatch),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerPassword() {
	passwordHandler := &PasswordHandler{AccountService: r.AccountService}

	// Strict limits: both endpoints take a password guess.
	r.Mux.Handle("POST /v1/me/password/verify",
		httpx.Chain(http.HandlerFunc(passwordHandler.HandleVerify),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.StrictLimit),
		),
	)

	r.Mux.Handle("POST /v1/me/password",
		httpx.Chain(http.HandlerFunc(passwordHandler.HandleSet),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store))
}
