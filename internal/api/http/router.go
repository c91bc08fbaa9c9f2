package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mind-engage/mindengage-matchgame/internal/auth"
	"github.com/mind-engage/mindengage-matchgame/internal/origin"
)

type RouterDeps struct {
	Allow    origin.Allowlist
	NewShell NewShellFunc
	Ledger   ResultLedger       // nil when DB_DRIVER=none
	Signer   *auth.ResultSigner // nil when unsigned
	Ready    []Pinger
}

func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)

	// The channel is long-lived, so it stays outside the request timeout.
	r.Get("/channel", ChannelHandler(d.Allow, d.NewShell))

	r.Group(func(g chi.Router) {
		g.Use(middleware.Timeout(30 * time.Second))
		g.Use(cors.Handler(cors.Options{
			AllowedOrigins:   d.Allow,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Content-Type"},
			ExposedHeaders:   []string{"Content-Length"},
			AllowCredentials: false,
			MaxAge:           300,
		}))

		g.Get("/results/{roundID}", GetResultHandler(d.Ledger))
		g.Post("/results/verify", VerifyResultHandler(d.Signer))

		g.Get("/healthz", HealthzHandler())
		g.Get("/readyz", ReadyzHandler(d.Ready...))
		g.Handle("/metrics", promhttp.Handler())
	})
	return r
}
