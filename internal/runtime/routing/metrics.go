package routing

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	errspkg "github.com/drblury/routeflow/internal/runtime/errors"
)

// BuildMetrics exposes route table builds to Prometheus.
type BuildMetrics struct {
	mu sync.Mutex

	buildsTotal   *prometheus.CounterVec
	failuresTotal *prometheus.CounterVec
	buildDuration prometheus.Histogram
	topicRoutes   *prometheus.GaugeVec
	topics        prometheus.Gauge

	registerer prometheus.Registerer
	registered bool
	lastTopics []string
}

// NewBuildMetrics creates the collectors. Call Register before recording.
func NewBuildMetrics(registerer prometheus.Registerer) *BuildMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &BuildMetrics{
		registerer: registerer,
		buildsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "routeflow",
			Subsystem: "routes",
			Name:      "builds_total",
			Help:      "Total number of route table builds by result",
		}, []string{"result"}),
		failuresTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "routeflow",
			Subsystem: "routes",
			Name:      "build_failures_total",
			Help:      "Failed route table builds by reason",
		}, []string{"reason"}),
		buildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "routeflow",
			Subsystem: "routes",
			Name:      "build_duration_seconds",
			Help:      "Duration of route table builds",
			Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1},
		}),
		topicRoutes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "routeflow",
			Subsystem: "routes",
			Name:      "topic_routes",
			Help:      "Number of routes per topic in the last built table",
		}, []string{"topic"}),
		topics: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "routeflow",
			Subsystem: "routes",
			Name:      "topics",
			Help:      "Number of topics in the last built table",
		}),
	}
}

// Register registers the Prometheus collectors. Safe to call multiple times.
func (m *BuildMetrics) Register() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.registered {
		return nil
	}

	if err := registerOrReuse(m.registerer, &m.buildsTotal); err != nil {
		return err
	}
	if err := registerOrReuse(m.registerer, &m.failuresTotal); err != nil {
		return err
	}
	if err := registerOrReuse(m.registerer, &m.buildDuration); err != nil {
		return err
	}
	if err := registerOrReuse(m.registerer, &m.topicRoutes); err != nil {
		return err
	}
	if err := registerOrReuse(m.registerer, &m.topics); err != nil {
		return err
	}

	m.registered = true
	return nil
}

// registerOrReuse registers *c. When an equal collector is already registered,
// *c is replaced by it so recorded values reach the registry.
func registerOrReuse[C prometheus.Collector](reg prometheus.Registerer, c *C) error {
	err := reg.Register(*c)
	if err == nil {
		return nil
	}
	var already prometheus.AlreadyRegisteredError
	if !errors.As(err, &already) {
		return err
	}
	existing, ok := already.ExistingCollector.(C)
	if !ok {
		return fmt.Errorf("routeflow: collector already registered with type %T: %w", already.ExistingCollector, err)
	}
	*c = existing
	return nil
}

// RecordBuild records a successful build and replaces the per-topic gauges.
func (m *BuildMetrics) RecordBuild(table *Table, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.buildsTotal.WithLabelValues("success").Inc()
	m.buildDuration.Observe(duration.Seconds())

	for _, topic := range m.lastTopics {
		m.topicRoutes.DeleteLabelValues(topic)
	}
	m.lastTopics = table.Topics()
	for _, topic := range m.lastTopics {
		m.topicRoutes.WithLabelValues(topic).Set(float64(len(table.Routes(topic))))
	}
	m.topics.Set(float64(len(m.lastTopics)))
}

// RecordFailure records a failed build. Gauges keep describing the last
// successful table.
func (m *BuildMetrics) RecordFailure(err error, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.buildsTotal.WithLabelValues("failure").Inc()
	m.failuresTotal.WithLabelValues(failureReason(err)).Inc()
	m.buildDuration.Observe(duration.Seconds())
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, errspkg.ErrMissingTopicName):
		return "missing_topic_name"
	case errors.Is(err, errspkg.ErrMalformedSubscription):
		return "malformed_subscription"
	case errors.Is(err, errspkg.ErrNoRoutes):
		return "no_routes"
	case errors.Is(err, errspkg.ErrProcessorIDRequired):
		return "processor_id_required"
	default:
		return "other"
	}
}
