// Package api is the HTTP surface of the HarvinAI site: lead notifications, the session,
// the onboarding wizard and the dashboard.
package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"harvin-platform/internal/common/logger"
	"harvin-platform/internal/onboarding"
	"harvin-platform/internal/session"
	leadnotify "harvin-platform/internal/workers/communication/lead-notify"
)

// Pinger reports whether a dependency is reachable.
type Pinger func(ctx context.Context) error

type Options struct {
	Notifier    leadnotify.ServiceInterface
	Wizard      *onboarding.Controller
	Sessions    *session.Service
	Pingers     map[string]Pinger
	Logger      logger.Logger
	Development bool
}

type Server struct {
	notifier leadnotify.ServiceInterface
	wizard   *onboarding.Controller
	sessions *session.Service
	pingers  map[string]Pinger
	logger   logger.Logger
}

// NewRouter builds the chi router with every route and middleware mounted.
func NewRouter(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	s := &Server{
		notifier: opts.Notifier,
		wizard:   opts.Wizard,
		sessions: opts.Sessions,
		pingers:  opts.Pingers,
		logger:   log,
	}

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(RequestLogger(log))
	r.Use(chiMiddleware.Recoverer)

	r.Get("/health", s.Health)
	r.Get("/ready", s.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/notify", s.Notify)

		r.Group(func(r chi.Router) {
			r.Use(ClientIdentity(opts.Development))

			r.Route("/session", func(r chi.Router) {
				r.Get("/", s.GetSession)
				r.Post("/", s.SignIn)
				r.Delete("/", s.SignOut)
				r.Post("/demo", s.SignInDemo)
			})

			r.Route("/onboarding", func(r chi.Router) {
				r.Get("/", s.GetOnboarding)
				r.Patch("/answers", s.SetAnswers)
				r.Post("/toggle", s.Toggle)
				r.Post("/toggle-catalog", s.ToggleCatalog)
				r.Post("/next", s.Next)
				r.Post("/back", s.Back)
				r.Post("/skip", s.Skip)
			})

			r.Get("/dashboard", s.GetDashboard)
		})
	})

	return r
}
