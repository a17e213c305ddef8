package rest

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/docwatch/docwatch-backend/internal/metrics"
	"github.com/docwatch/docwatch-backend/internal/transport/middleware"
)

// RouterDeps carries everything the router wires together.
type RouterDeps struct {
	Logger        *slog.Logger
	Health        *HealthHandler
	Lists         *ListHandler
	Rules         *RuleHandler
	Subscriptions *SubscriptionHandler
	Events        *EventHandler
	Feed          *FeedHandler
	Gatherer      prometheus.Gatherer
}

// NewRouter builds the HTTP routing table.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Chain(
		middleware.RequestID,
		middleware.Recovery(deps.Logger),
		middleware.Logger(deps.Logger),
	))

	r.Get("/healthz", deps.Health.Live)
	r.Get("/readyz", deps.Health.Ready)
	r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/persons/{personID}/list", deps.Lists.GetOrCreateForPerson)
		r.Post("/groups/{groupID}/list", deps.Lists.GetOrCreateForGroup)

		r.Route("/lists/{listID}", func(r chi.Router) {
			r.Get("/", deps.Lists.Contents)
			r.Patch("/", deps.Lists.UpdateConfig)
			r.Get("/export", deps.Lists.ExportCSV)
			r.Get("/feed", deps.Feed.ByList)

			r.Post("/docs", deps.Lists.Pin)
			r.Delete("/docs/{docID}", deps.Lists.Unpin)

			r.Get("/rules", deps.Rules.List)
			r.Post("/rules", deps.Rules.Create)

			r.Get("/subscriptions", deps.Subscriptions.List)
			r.Post("/subscriptions", deps.Subscriptions.Create)
		})

		r.Patch("/rules/{ruleID}", deps.Rules.Update)
		r.Delete("/rules/{ruleID}", deps.Rules.Delete)
		r.Get("/rules/{ruleID}/docs", deps.Rules.Matches)

		r.Delete("/subscriptions/{subscriptionID}", deps.Subscriptions.Delete)

		r.Post("/events", deps.Events.Ingest)
		r.Get("/feeds/by-email/{email}", deps.Feed.ByEmail)
	})

	return r
}
