package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lodgelist/lodgelist/internal/accommodations"
	"github.com/lodgelist/lodgelist/internal/auth"
	"github.com/lodgelist/lodgelist/internal/destinations"
	"github.com/lodgelist/lodgelist/internal/events"
	"github.com/lodgelist/lodgelist/internal/observability"
	"github.com/lodgelist/lodgelist/internal/posts"
	"github.com/lodgelist/lodgelist/internal/users"
	"github.com/lodgelist/lodgelist/jobs"
)

// Handlers aggregates the HTTP surfaces the router mounts. Nil entries are
// skipped so tests can wire a partial application.
type Handlers struct {
	Auth           *auth.Handler
	Users          *users.Handler
	Destinations   *destinations.Handler
	Accommodations *accommodations.Handler
	Events         *events.Handler
	Posts          *posts.Handler
	Jobs           *jobs.Handler
}

// NewRouter assembles the HTTP routing tree.
func NewRouter(cfg MiddlewareConfig, handlers Handlers, metrics *observability.Metrics) chi.Router {
	r := chi.NewRouter()
	for _, mw := range MiddlewareStack(cfg) {
		r.Use(mw)
	}
	if metrics != nil {
		r.Use(metrics.Middleware)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler())
	}

	r.Route("/api/v1", func(api chi.Router) {
		if handlers.Auth != nil {
			api.Route("/auth", handlers.Auth.MountRoutes)
		}
		if handlers.Users != nil {
			api.Route("/users", handlers.Users.MountRoutes)
		}
		if handlers.Destinations != nil {
			api.Route("/destinations", handlers.Destinations.MountRoutes)
		}
		if handlers.Accommodations != nil {
			api.Route("/accommodations", handlers.Accommodations.MountRoutes)
		}
		if handlers.Events != nil {
			api.Route("/events", handlers.Events.MountRoutes)
		}
		if handlers.Posts != nil {
			api.Route("/posts", handlers.Posts.MountRoutes)
		}
		if handlers.Jobs != nil {
			api.Route("/jobs", handlers.Jobs.MountRoutes)
		}
	})

	return r
}
