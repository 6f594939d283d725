package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/eventhub/eventhub-go/internal/config"
	"github.com/eventhub/eventhub-go/internal/crypto"
	"github.com/eventhub/eventhub-go/internal/handler"
	"github.com/eventhub/eventhub-go/internal/metrics"
	"github.com/eventhub/eventhub-go/internal/middleware"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Deps are the collaborators the router dispatches to.
type Deps struct {
	Logger    zerolog.Logger
	DB        Pinger
	Tokens    *crypto.TokenIssuer
	RateLimit config.RateLimitConfig
	Auth      *handler.AuthHandler
	Events    *handler.EventHandler
}

// NewRouter builds the HTTP routing tree.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.CorrelationID(d.Logger))
	r.Use(middleware.RequestLogging)
	r.Use(metrics.HTTPMiddleware)
	r.Use(chimiddleware.Recoverer)

	r.Get("/health", health(d.DB))
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(d.RateLimit))
			r.Post("/auth/register", d.Auth.HandleRegister)
			r.Post("/auth/login", d.Auth.HandleLogin)
		})

		r.Get("/events", d.Events.HandleListAll)
		r.Get("/events/search", d.Events.HandleGuestSearch)
		r.Get("/events/{eventID}", d.Events.HandleGet)

		r.Group(func(r chi.Router) {
			r.Use(middleware.JWTAuth(d.Tokens))

			r.Get("/auth/me", d.Auth.HandleMe)

			r.Get("/me/feed", d.Events.HandleFeed)
			r.Get("/me/feed/search", d.Events.HandleSearch)
			r.Get("/me/events", d.Events.HandleMine)
			r.Get("/me/attending", d.Events.HandleAttending)

			r.Post("/events", d.Events.HandleCreate)
			r.Put("/events/{eventID}", d.Events.HandleUpdate)
			r.Delete("/events/{eventID}", d.Events.HandleDelete)
			r.Post("/events/{eventID}/join", d.Events.HandleJoin)
			r.Delete("/events/{eventID}/join", d.Events.HandleLeave)
		})
	})

	return r
}

func health(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			zerolog.Ctx(r.Context()).Warn().Err(err).Msg("health check: database unreachable")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("database unavailable"))
			return
		}

		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}
}
