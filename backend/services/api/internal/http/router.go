package httpserver

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/AttriPardeep/VoltStartEV-Backend/backend/services/api/internal/http/handlers"
	"github.com/AttriPardeep/VoltStartEV-Backend/backend/services/api/internal/http/middleware"
	"github.com/AttriPardeep/VoltStartEV-Backend/backend/services/api/internal/http/response"
	"github.com/AttriPardeep/VoltStartEV-Backend/backend/services/api/internal/metrics"
)

// RouterDeps collects handler dependencies.
type RouterDeps struct {
	Auth     *handlers.AuthHandlers
	Chargers *handlers.ChargerHandlers
	Sessions *handlers.SessionHandlers
	Wallet   *handlers.WalletHandlers
	Users    *handlers.UserHandlers
	Health   http.HandlerFunc
	// Metrics serves the Prometheus exposition. Nil disables /metrics.
	Metrics http.Handler

	Tokens      middleware.TokenVerifier
	RateLimiter *middleware.RateLimiter
	Recorder    metrics.Recorder
	Logger      *zap.Logger
	CORSOrigins []string
	BodyLimit   int64
	// ExposeErrors adds panic details to 500 responses.
	ExposeErrors bool
}

// NewRouter wires HTTP routes with middleware.
func NewRouter(deps RouterDeps) http.Handler {
	recorder := deps.Recorder
	if recorder == nil {
		recorder = metrics.NopRecorder{}
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Logging(deps.Logger),
		middleware.Metrics(recorder),
		middleware.Recovery(deps.Logger, deps.ExposeErrors),
		middleware.SecurityHeaders,
		middleware.CORS(deps.CORSOrigins),
		middleware.BodyLimit(deps.BodyLimit),
	)
	r.NotFound(notFound)
	r.MethodNotAllowed(methodNotAllowed)

	r.Get("/health", deps.Health)
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}

	authenticate := middleware.Authenticate(deps.Tokens, deps.Logger)
	optionalAuth := middleware.OptionalAuth(deps.Tokens)

	r.Route("/api", func(r chi.Router) {
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.Middleware)
		}

		r.Post("/auth/send-otp", deps.Auth.SendOTP)
		r.Post("/auth/verify-otp", deps.Auth.VerifyOTP)
		r.With(authenticate).Get("/auth/me", deps.Auth.Me)

		r.With(optionalAuth).Get("/chargers", deps.Chargers.List)
		r.Get("/chargers/{id}", deps.Chargers.Get)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Post("/sessions/start", deps.Sessions.Start)
			r.Post("/sessions/{id}/stop", deps.Sessions.Stop)
			r.Get("/sessions/history", deps.Sessions.History)

			for _, prefix := range []string{"/wallet", "/users/wallet"} {
				r.Get(prefix, deps.Wallet.Get)
				r.Post(prefix+"/topup", deps.Wallet.TopUp)
			}

			r.Put("/users/profile", deps.Users.UpdateProfile)
			r.Get("/users/saved-chargers", deps.Users.SavedChargers)
			r.Post("/users/saved-chargers/{chargerId}", deps.Users.SaveCharger)
			r.Delete("/users/saved-chargers/{chargerId}", deps.Users.UnsaveCharger)
		})
	})

	return r
}

func notFound(w http.ResponseWriter, r *http.Request) {
	response.Error(w, http.StatusNotFound, response.CodeNotFound, fmt.Sprintf("Route %s %s not found", r.Method, r.URL.Path))
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	response.Error(w, http.StatusMethodNotAllowed, response.CodeMethodNotAllowed, fmt.Sprintf("Method %s not allowed on %s", r.Method, r.URL.Path))
}
