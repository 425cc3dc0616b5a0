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

type Server struct {
	Roster         roster.RosterStore
	Planner        planner.Store
	Engine         *planner.Engine
	Calls          *calls.Service
	Metrics        metrics.Metrics
	MetricsHandler http.Handler
	Cfg            config.Config
	Notifier       notifier.Notifier
	Router         *http.ServeMux
	pubsub         pubsub.PubSubClient
}
