package http

import (
	"net/http"

	"github.com/planifive/planifive/internal/calls"
	"github.com/planifive/planifive/internal/config"
	"github.com/planifive/planifive/internal/metrics"
	"github.com/planifive/planifive/internal/notifier"
	"github.com/planifive/planifive/internal/planner"
	"github.com/planifive/planifive/internal/pubsub"
	"github.com/planifive/planifive/internal/roster"
)

func NewServer(rosterStore roster.RosterStore, plannerStore planner.Store, engine *planner.Engine, callsSvc *calls.Service, metricsSvc metrics.Metrics, metricsHandler http.Handler, cfg config.Config, notifier notifier.Notifier, pubsub pubsub.PubSubClient) *Server {
	server := &Server{
		Roster:         rosterStore,
		Planner:        plannerStore,
		Engine:         engine,
		Calls:          callsSvc,
		Metrics:        metricsSvc,
		MetricsHandler: metricsHandler,
		Cfg:            cfg,
		Notifier:       notifier,
		Router:         http.NewServeMux(),
		pubsub:         pubsub,
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	// This makes it easy to add more middlewares in the future, like an authentication middleware.
	// e.g. Chain(s.MyHandler(), paramsMiddleware, authMiddleware)
	s.Router.Handle("/metrics", s.MetricsHandler)
	s.Router.Handle("/health", Chain(s.HealthCheckHandler(), paramsMiddleware))
	s.Router.Handle("/clear", Chain(s.ClearStoreHandler(), paramsMiddleware))
	s.Router.Handle("/users", Chain(s.UsersHandler(), paramsMiddleware))
	s.Router.Handle("/users/custom-name", Chain(s.SetCustomNameHandler(), paramsMiddleware))
	s.Router.Handle("/availability", Chain(s.GridHandler(), paramsMiddleware))
	s.Router.Handle("/availability/toggle", Chain(s.ToggleHandler(), paramsMiddleware))
	s.Router.Handle("/matches", Chain(s.MatchesHandler(), paramsMiddleware))
	s.Router.Handle("/calls", Chain(s.CallsHandler(), paramsMiddleware))
	s.Router.Handle("/calls/respond", Chain(s.RespondCallHandler(), paramsMiddleware))
	s.Router.Handle("/calls/cancel", Chain(s.CancelCallHandler(), paramsMiddleware))
	s.Router.Handle("/discord/interactions", Chain(s.DiscordInteractionsHandler(), paramsMiddleware))
	s.Router.Handle("/pubsub/call-sync", Chain(s.CallSyncHandler(), paramsMiddleware))
	s.Router.Handle("/cron/vote-reminder", Chain(s.VoteReminderHandler(), paramsMiddleware))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
