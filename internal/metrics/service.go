package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// Service is the Prometheus-backed Metrics implementation.
type Service struct {
	TogglesProcessed   prometheus.Counter
	GoldenAnnounced    prometheus.Counter
	GoldenRevoked      prometheus.Counter
	CallResponses      prometheus.Counter
	NotifSent          prometheus.Counter
	NotifFailed        prometheus.Counter
	ToggleDuration     prometheus.Histogram
	StartupTimeSeconds prometheus.Gauge
}

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		TogglesProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "planifive_toggles_processed_total",
			Help: "The total number of availability toggles processed by the engine.",
		}),
		GoldenAnnounced: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "planifive_golden_windows_announced_total",
			Help: "The total number of golden windows announced.",
		}),
		GoldenRevoked: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "planifive_golden_windows_revoked_total",
			Help: "The total number of announced golden windows revoked after breaking.",
		}),
		CallResponses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "planifive_call_responses_total",
			Help: "The total number of explicit call responses recorded.",
		}),
		NotifSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "planifive_notifications_sent_total",
			Help: "The total number of notifications successfully delivered.",
		}),
		NotifFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "planifive_notifications_failed_total",
			Help: "The total number of notifications that failed to deliver.",
		}),
		ToggleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "planifive_toggle_duration_seconds",
			Help:    "The duration of individual toggle processing.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "planifive_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.TogglesProcessed,
		s.GoldenAnnounced,
		s.GoldenRevoked,
		s.CallResponses,
		s.NotifSent,
		s.NotifFailed,
		s.ToggleDuration,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncTogglesProcessed() {
	s.TogglesProcessed.Inc()
}

func (s *Service) IncGoldenAnnounced() {
	s.GoldenAnnounced.Inc()
}

func (s *Service) IncGoldenRevoked() {
	s.GoldenRevoked.Inc()
}

func (s *Service) IncCallResponses() {
	s.CallResponses.Inc()
}

func (s *Service) IncNotifSent() {
	s.NotifSent.Inc()
}

func (s *Service) IncNotifFailed() {
	s.NotifFailed.Inc()
}

func (s *Service) ObserveToggleDuration(seconds float64) {
	s.ToggleDuration.Observe(seconds)
}

func (s *Service) SetStartupTime(seconds float64) {
	s.StartupTimeSeconds.Set(seconds)
}
