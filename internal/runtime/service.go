package runtime

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	configpkg "github.com/drblury/routeflow/internal/runtime/config"
	errspkg "github.com/drblury/routeflow/internal/runtime/errors"
	loggingpkg "github.com/drblury/routeflow/internal/runtime/logging"
	"github.com/drblury/routeflow/internal/runtime/routing"
	"github.com/drblury/routeflow/source"
)

const shutdownTimeout = 5 * time.Second

// ServiceDependencies holds the optional collaborators that the Service can use.
// Leave fields nil to use the defaults.
type ServiceDependencies struct {
	// Consumer receives the table after every successful Build, typically the
	// runtime router.
	Consumer routing.TableConsumer
	// Source replaces the source selected by Config.Source.
	Source routing.Source
	// Sources resolves Config.Source. Defaults to source.DefaultRegistry.
	Sources *source.Registry
	// Registerer and Gatherer back the build metrics. Default to the
	// Prometheus default registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
	Hooks      routing.BuildHooks
	// Tracer is used when Config.TracingEnabled is set. Defaults to the global
	// OpenTelemetry provider.
	Tracer trace.Tracer
}

// Service collects processor declarations, builds the route table once and
// hands it to the runtime router.
type Service struct {
	Conf   *configpkg.Config
	Logger loggingpkg.ServiceLogger

	builder  *routing.Builder
	source   routing.Source
	static   *source.Static
	consumer routing.TableConsumer
	metrics  *routing.BuildMetrics
	gatherer prometheus.Gatherer

	processors   map[string]struct{}
	processorsMu sync.Mutex

	table   *routing.Table
	tableMu sync.RWMutex

	httpServers   map[int]*http.ServeMux
	httpServersMu sync.Mutex
}

// NewService constructs a Service for the supplied configuration. Register
// processors on the returned Service before calling Build or Start.
func NewService(conf *configpkg.Config, log loggingpkg.ServiceLogger, ctx context.Context, deps ServiceDependencies) (*Service, error) {
	if conf == nil {
		return nil, errspkg.ErrConfigRequired
	}
	if log == nil {
		return nil, errspkg.ErrLoggerRequired
	}
	if err := conf.Validate(); err != nil {
		return nil, errspkg.NewConfigValidationError(err)
	}

	log.Info("Creating route service", loggingpkg.LogFields{
		"source": conf.Source,
		"config": conf,
	})

	s := &Service{
		Conf:       conf,
		Logger:     log,
		static:     source.NewStatic(nil),
		consumer:   deps.Consumer,
		processors: make(map[string]struct{}),
	}

	src, err := s.resolveSource(ctx, deps)
	if err != nil {
		return nil, err
	}
	s.source = src

	hooks := routing.LoggingHooks(log).Merge(deps.Hooks)
	if conf.MetricsEnabled {
		registerer := deps.Registerer
		if registerer == nil {
			registerer = prometheus.DefaultRegisterer
		}
		s.gatherer = deps.Gatherer
		if s.gatherer == nil {
			s.gatherer = prometheus.DefaultGatherer
		}
		s.metrics = routing.NewBuildMetrics(registerer)
		if err := s.metrics.Register(); err != nil {
			return nil, fmt.Errorf("routeflow: register metrics: %w", err)
		}
		hooks = hooks.Merge(routing.MetricsHooks(s.metrics))
	}

	tracer := deps.Tracer
	if !conf.TracingEnabled {
		tracer = noop.NewTracerProvider().Tracer("routeflow")
	}

	s.builder = routing.NewBuilder(
		routing.WithLogger(log),
		routing.WithHooks(hooks),
		routing.WithTracer(tracer),
		routing.WithWorkers(conf.ExtractionWorkers),
		routing.WithStrict(conf.RequireRoutes),
	)
	return s, nil
}

// resolveSource picks the declaration source. Processors registered on the
// Service always come after the declarations of a non-static source.
func (s *Service) resolveSource(ctx context.Context, deps ServiceDependencies) (routing.Source, error) {
	external := deps.Source
	if external == nil && source.NormalizeName(s.Conf.GetSource()) != source.StaticName {
		registry := deps.Sources
		if registry == nil {
			registry = source.DefaultRegistry
		}
		built, err := registry.Build(ctx, s.Conf, loggingpkg.NewWatermillAdapter(s.Logger))
		if err != nil {
			return nil, err
		}
		external = built
	}
	if external == nil {
		return s.static, nil
	}

	return routing.SourceFunc(func(ctx context.Context) ([]routing.Declaration, error) {
		decls, err := external.Declarations(ctx)
		if err != nil {
			return nil, err
		}
		registered, err := s.static.Declarations(ctx)
		if err != nil {
			return nil, err
		}
		return append(decls, registered...), nil
	}), nil
}

// Build resolves the route table and hands it to the configured consumer.
// It succeeds at most once; a failed build leaves the Service unbuilt.
func (s *Service) Build(ctx context.Context) (*routing.Table, error) {
	s.tableMu.Lock()
	defer s.tableMu.Unlock()

	if s.table != nil {
		return nil, errspkg.ErrTableAlreadyBuilt
	}

	table, err := s.builder.Build(ctx, s.source)
	if err != nil {
		return nil, err
	}

	if s.consumer != nil {
		if err := s.consumer.SetRoutes(table); err != nil {
			s.Logger.Error("Route consumer rejected table", err, nil)
			return nil, fmt.Errorf("routeflow: route consumer rejected table: %w", err)
		}
	}

	s.table = table
	return table, nil
}

// Table returns the built table, or nil before a successful Build.
func (s *Service) Table() *routing.Table {
	s.tableMu.RLock()
	defer s.tableMu.RUnlock()
	return s.table
}

// Start builds the table when needed, then serves the inspector and metrics
// endpoints until ctx is cancelled.
func (s *Service) Start(ctx context.Context) error {
	if s.Table() == nil {
		if _, err := s.Build(ctx); err != nil && !errors.Is(err, errspkg.ErrTableAlreadyBuilt) {
			return err
		}
	}

	s.StartWebUIServer()
	s.registerMetricsHandler()
	servers := s.startHTTPServers()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	for _, srv := range servers {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.Logger.Error("Failed to stop HTTP server", err, loggingpkg.LogFields{"address": srv.Addr})
		}
	}
	return nil
}

func (s *Service) RegisterHTTPHandler(port int, pattern string, handler http.Handler) {
	s.httpServersMu.Lock()
	defer s.httpServersMu.Unlock()

	if s.httpServers == nil {
		s.httpServers = make(map[int]*http.ServeMux)
	}

	mux, ok := s.httpServers[port]
	if !ok {
		mux = http.NewServeMux()
		s.httpServers[port] = mux
	}

	mux.Handle(pattern, handler)
}

func (s *Service) startHTTPServers() []*http.Server {
	s.httpServersMu.Lock()
	defer s.httpServersMu.Unlock()

	servers := make([]*http.Server, 0, len(s.httpServers))
	for port, mux := range s.httpServers {
		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		servers = append(servers, srv)
		s.Logger.Info("Starting HTTP server", loggingpkg.LogFields{"address": srv.Addr})
		go func(srv *http.Server) {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				s.Logger.Error("Failed to start HTTP server", err, loggingpkg.LogFields{"address": srv.Addr})
			}
		}(srv)
	}
	return servers
}
