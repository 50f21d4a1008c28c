package routing

import (
	"context"
	"time"

	loggingpkg "github.com/drblury/routeflow/internal/runtime/logging"
)

// ExtractionContext describes the outcome of extracting one declaration.
type ExtractionContext struct {
	BuildID     string
	Context     context.Context
	Index       int
	ProcessorID string
	Entries     []RouteEntry
	// Err is set when the declaration aborted the build.
	Err error
}

// BuildContext describes one build.
type BuildContext struct {
	BuildID    string
	Context    context.Context
	Processors int
	StartedAt  time.Time
	// Duration is only set in OnBuildDone and OnBuildError.
	Duration time.Duration
	// Table is only set in OnBuildDone.
	Table *Table
}

// BuildHooks are optional callbacks around a build. OnExtracted runs in
// enumeration order, also for concurrent builds.
type BuildHooks struct {
	OnExtracted  func(ctx ExtractionContext)
	OnBuildDone  func(ctx BuildContext)
	OnBuildError func(ctx BuildContext, err error)
}

// Merge combines two BuildHooks; the hooks of other run after those of h.
func (h BuildHooks) Merge(other BuildHooks) BuildHooks {
	return BuildHooks{
		OnExtracted:  chain1(h.OnExtracted, other.OnExtracted),
		OnBuildDone:  chain1(h.OnBuildDone, other.OnBuildDone),
		OnBuildError: chain2(h.OnBuildError, other.OnBuildError),
	}
}

func chain1[T any](a, b func(T)) func(T) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(v T) {
		a(v)
		b(v)
	}
}

func chain2[T any, U any](a, b func(T, U)) func(T, U) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(v T, u U) {
		a(v, u)
		b(v, u)
	}
}

// LoggingHooks logs every extracted route at trace level and the final
// table at debug level.
func LoggingHooks(logger loggingpkg.ServiceLogger) BuildHooks {
	return BuildHooks{
		OnExtracted: func(ctx ExtractionContext) {
			for _, entry := range ctx.Entries {
				logger.Trace("Route resolved", loggingpkg.LogFields{
					"build_id":     ctx.BuildID,
					"processor_id": ctx.ProcessorID,
					"topic":        entry.Topic,
					"processor":    entry.Processor,
					"destination":  entry.Destination.String(),
				})
			}
		},
		OnBuildDone: func(ctx BuildContext) {
			for _, topic := range ctx.Table.Topics() {
				logger.Debug("Topic routes", loggingpkg.LogFields{
					"build_id": ctx.BuildID,
					"topic":    topic,
					"routes":   len(ctx.Table.Routes(topic)),
				})
			}
		},
	}
}

// MetricsHooks records builds in m.
func MetricsHooks(m *BuildMetrics) BuildHooks {
	return BuildHooks{
		OnBuildDone: func(ctx BuildContext) {
			m.RecordBuild(ctx.Table, ctx.Duration)
		},
		OnBuildError: func(ctx BuildContext, err error) {
			m.RecordFailure(err, ctx.Duration)
		},
	}
}
