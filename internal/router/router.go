package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/GregMSThompson/pitch-backend/internal/handlers"
	"github.com/GregMSThompson/pitch-backend/internal/metrics"
	"github.com/GregMSThompson/pitch-backend/internal/middleware"
)

const defaultRequestTimeout = 5 * time.Minute

// NewRouter builds the API tree. requestTimeout must outlast the generation
// timeout, since the deck service enforces its own deadline on the model
// call; zero selects a default.
func NewRouter(deps *handlers.Deps, auth *middleware.Middleware, requestTimeout time.Duration) chi.Router {
	if requestTimeout <= 0 {
		requestTimeout = defaultRequestTimeout
	}

	r := chi.NewRouter()

	// request id first so the logger can pick it up
	lm := middleware.NewLoggerMiddleware(deps.Log)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(lm.LoggerMiddleware)
	r.Use(chimiddleware.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(chimiddleware.Timeout(requestTimeout))

	r.Get("/healthz", handlers.Healthz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	dh := handlers.NewDeckHandlers(deps)
	ch := handlers.NewChatHandlers(deps)

	r.Group(func(r chi.Router) {
		r.Use(auth.FirebaseAuth)
		r.Mount("/decks", dh.DeckRoutes())
		r.Mount("/chat", ch.ChatRoutes())
	})
	return r
}
