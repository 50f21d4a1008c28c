package routing

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	errspkg "github.com/drblury/routeflow/internal/runtime/errors"
	idspkg "github.com/drblury/routeflow/internal/runtime/ids"
	loggingpkg "github.com/drblury/routeflow/internal/runtime/logging"
)

const tracerName = "github.com/drblury/routeflow/routing"

// Source enumerates processor declarations in registration order. The order
// returned is the dispatch order of the resulting table.
type Source interface {
	Declarations(ctx context.Context) ([]Declaration, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) ([]Declaration, error)

func (f SourceFunc) Declarations(ctx context.Context) ([]Declaration, error) { return f(ctx) }

// Builder folds declarations into a Table.
type Builder struct {
	logger  loggingpkg.ServiceLogger
	hooks   BuildHooks
	tracer  trace.Tracer
	workers int
	strict  bool
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger used for build progress.
func WithLogger(logger loggingpkg.ServiceLogger) Option {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithHooks appends build hooks. Calling it repeatedly merges the hooks.
func WithHooks(hooks BuildHooks) Option {
	return func(b *Builder) {
		b.hooks = b.hooks.Merge(hooks)
	}
}

// WithTracer overrides the tracer taken from the global OpenTelemetry provider.
func WithTracer(tracer trace.Tracer) Option {
	return func(b *Builder) {
		if tracer != nil {
			b.tracer = tracer
		}
	}
}

// WithWorkers extracts declarations on n goroutines. Values below 2 keep the
// build sequential.
func WithWorkers(n int) Option {
	return func(b *Builder) {
		b.workers = n
	}
}

// WithStrict makes a declaration that resolves to zero routes a build error.
func WithStrict(strict bool) Option {
	return func(b *Builder) {
		b.strict = strict
	}
}

// NewBuilder returns a Builder. Without options it is sequential, lenient,
// silent, and traces through the global OpenTelemetry provider.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		logger: loggingpkg.NewNopServiceLogger(),
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build loads the declarations from src and builds the table.
func (b *Builder) Build(ctx context.Context, src Source) (*Table, error) {
	if src == nil {
		return nil, errspkg.ErrSourceRequired
	}
	decls, err := src.Declarations(ctx)
	if err != nil {
		return nil, err
	}
	return b.BuildDeclarations(ctx, decls)
}

// BuildDeclarations builds the table for decls. The first failing declaration,
// in enumeration order, aborts the build and no table is returned.
func (b *Builder) BuildDeclarations(ctx context.Context, decls []Declaration) (*Table, error) {
	buildID := idspkg.NewBuildID()
	ctx, span := b.tracer.Start(ctx, "routeflow.BuildRouteTable",
		trace.WithAttributes(
			attribute.String("routeflow.build_id", buildID),
			attribute.Int("routeflow.processors", len(decls)),
		))
	defer span.End()

	logger := b.logger.With(loggingpkg.LogFields{"build_id": buildID})
	logger.Info("Building route table", loggingpkg.LogFields{
		"processors": len(decls),
		"workers":    b.workers,
		"strict":     b.strict,
	})

	bc := BuildContext{
		BuildID:    buildID,
		Context:    ctx,
		Processors: len(decls),
		StartedAt:  time.Now(),
	}

	table, err := b.fold(bc, logger, decls)
	bc.Duration = time.Since(bc.StartedAt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Error("Route table build failed", err, loggingpkg.LogFields{"duration": bc.Duration})
		if b.hooks.OnBuildError != nil {
			b.hooks.OnBuildError(bc, err)
		}
		return nil, err
	}

	bc.Table = table
	span.SetAttributes(
		attribute.Int("routeflow.topics", len(table.Topics())),
		attribute.Int("routeflow.routes", table.Len()),
	)
	logger.Info("Route table built", loggingpkg.LogFields{
		"topics":   len(table.Topics()),
		"routes":   table.Len(),
		"duration": bc.Duration,
	})
	if b.hooks.OnBuildDone != nil {
		b.hooks.OnBuildDone(bc)
	}
	return table, nil
}

type extraction struct {
	entries []RouteEntry
	err     error
}

func (b *Builder) fold(bc BuildContext, logger loggingpkg.ServiceLogger, decls []Declaration) (*Table, error) {
	var results []extraction
	if b.workers > 1 && len(decls) > 1 {
		results = b.extractConcurrently(decls)
	}

	table := newTable()
	for i, decl := range decls {
		var res extraction
		if results != nil {
			res = results[i]
		} else {
			res.entries, res.err = Extract(decl)
		}

		if res.err == nil && b.strict && len(res.entries) == 0 {
			res.err = &NoRoutesError{ProcessorID: processorID(decl)}
		}

		if b.hooks.OnExtracted != nil {
			b.hooks.OnExtracted(ExtractionContext{
				BuildID:     bc.BuildID,
				Context:     bc.Context,
				Index:       i,
				ProcessorID: processorID(decl),
				Entries:     res.entries,
				Err:         res.err,
			})
		}
		if res.err != nil {
			return nil, res.err
		}

		logger.Debug("Processor routes extracted", loggingpkg.LogFields{
			"processor_id": decl.ProcessorID(),
			"kind":         declarationKind(decl),
			"routes":       len(res.entries),
		})
		for _, entry := range res.entries {
			table.add(entry)
		}
	}
	return table, nil
}

// extractConcurrently extracts every declaration; results keep the index of
// their declaration so the fold stays in enumeration order.
func (b *Builder) extractConcurrently(decls []Declaration) []extraction {
	results := make([]extraction, len(decls))
	jobs := make(chan int)

	workers := b.workers
	if workers > len(decls) {
		workers = len(decls)
	}

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range jobs {
				entries, err := Extract(decls[i])
				results[i] = extraction{entries: entries, err: err}
			}
		}()
	}
	for i := range decls {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}

func processorID(decl Declaration) string {
	if decl == nil {
		return ""
	}
	return decl.ProcessorID()
}
