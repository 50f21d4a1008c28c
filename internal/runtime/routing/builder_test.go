package routing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	errspkg "github.com/drblury/routeflow/internal/runtime/errors"
	loggingpkg "github.com/drblury/routeflow/internal/runtime/logging"
)

type logRecord struct {
	level  string
	msg    string
	fields loggingpkg.LogFields
}

type recordingLogger struct {
	mu      *sync.Mutex
	records *[]logRecord
	fields  loggingpkg.LogFields
}

func newRecordingLogger() *recordingLogger {
	return &recordingLogger{mu: &sync.Mutex{}, records: &[]logRecord{}}
}

func (l *recordingLogger) With(fields loggingpkg.LogFields) loggingpkg.ServiceLogger {
	merged := loggingpkg.LogFields{}
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &recordingLogger{mu: l.mu, records: l.records, fields: merged}
}

func (l *recordingLogger) record(level, msg string, fields loggingpkg.LogFields) {
	merged := loggingpkg.LogFields{}
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	*l.records = append(*l.records, logRecord{level: level, msg: msg, fields: merged})
}

func (l *recordingLogger) Debug(msg string, fields loggingpkg.LogFields) {
	l.record("debug", msg, fields)
}

func (l *recordingLogger) Info(msg string, fields loggingpkg.LogFields) {
	l.record("info", msg, fields)
}

func (l *recordingLogger) Error(msg string, err error, fields loggingpkg.LogFields) {
	l.record("error", msg, fields)
}

func (l *recordingLogger) Trace(msg string, fields loggingpkg.LogFields) {
	l.record("trace", msg, fields)
}

func (l *recordingLogger) messages(level string) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []string
	for _, r := range *l.records {
		if r.level == level {
			out = append(out, r.msg)
		}
	}
	return out
}

func staticSource(decls ...Declaration) Source {
	return SourceFunc(func(context.Context) ([]Declaration, error) {
		return decls, nil
	})
}

func TestBuildPreservesEnumerationOrder(t *testing.T) {
	a := Declare("A", nil, Tag{TopicName: "t"})
	b := Declare("B", nil, Tag{TopicName: "t"})

	table, err := NewBuilder().Build(context.Background(), staticSource(a, b))
	require.NoError(t, err)
	assert.Equal(t, []Route{{Processor: "A"}, {Processor: "B"}}, table.Routes("t"))

	table, err = NewBuilder().Build(context.Background(), staticSource(b, a))
	require.NoError(t, err)
	assert.Equal(t, []Route{{Processor: "B"}, {Processor: "A"}}, table.Routes("t"))
}

func TestBuildPreservesTagOrderWithinDeclaration(t *testing.T) {
	decl := Declare("P", nil,
		Tag{TopicName: "t", ProcessorName: "first"},
		Tag{TopicName: "other"},
		Tag{TopicName: "t", ProcessorName: "second"},
	)

	table, err := NewBuilder().BuildDeclarations(context.Background(), []Declaration{decl})
	require.NoError(t, err)
	assert.Equal(t, []string{"t", "other"}, table.Topics())
	assert.Equal(t, []Route{{Processor: "first"}, {Processor: "second"}}, table.Routes("t"))
}

func TestBuildDoesNotDeduplicate(t *testing.T) {
	tag := Tag{TopicName: "t", ProcessorName: "p"}
	table, err := NewBuilder().BuildDeclarations(context.Background(), []Declaration{
		Declare("A", nil, tag),
		Declare("B", nil, tag),
	})
	require.NoError(t, err)
	assert.Equal(t, []Route{{Processor: "p"}, {Processor: "p"}}, table.Routes("t"))
}

func TestBuildCombinesTaggedAndSubscribers(t *testing.T) {
	decls := []Declaration{
		Declare("P1", nil, Tag{TopicName: "order.created", ProcessorName: "handler", DestinationName: "q1"}),
		Declare("P3", SubscriberFunc(func() any { return []string{"t1"} })),
		Declare("P4", SubscriberFunc(func() any {
			return map[string]any{"t2": map[string]any{"processorName": "custom"}}
		})),
	}

	table, err := NewBuilder().BuildDeclarations(context.Background(), decls)
	require.NoError(t, err)

	data, err := table.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"order.created": [["handler","q1"]],
		"t1": [["P3",null]],
		"t2": [["custom",null]]
	}`, string(data))
}

func TestBuildFailsFastWithoutPartialTable(t *testing.T) {
	done := false
	var failed error
	hooks := BuildHooks{
		OnBuildDone:  func(BuildContext) { done = true },
		OnBuildError: func(_ BuildContext, err error) { failed = err },
	}

	decls := []Declaration{
		Declare("ok", nil, Tag{TopicName: "t"}),
		Declare("P5", nil, Tag{ProcessorName: "handler"}),
		Declare("P6", SubscriberFunc(func() any { return []any{12345} })),
	}

	table, err := NewBuilder(WithHooks(hooks)).BuildDeclarations(context.Background(), decls)
	require.Error(t, err)
	assert.Nil(t, table)
	assert.ErrorIs(t, err, errspkg.ErrMissingTopicName)
	assert.False(t, done)
	assert.Equal(t, err, failed)
}

func TestBuildReportsMalformedSubscriber(t *testing.T) {
	decls := []Declaration{Declare("P6", SubscriberFunc(func() any { return []any{12345} }))}

	table, err := NewBuilder().BuildDeclarations(context.Background(), decls)
	require.Error(t, err)
	assert.Nil(t, table)
	assert.ErrorIs(t, err, errspkg.ErrMalformedSubscription)
	assert.Contains(t, err.Error(), "P6")
	assert.Contains(t, err.Error(), "12345")
}

func TestBuildZeroRoutes(t *testing.T) {
	decls := []Declaration{Declare("idle", nil), Declare("busy", nil, Tag{TopicName: "t"})}

	table, err := NewBuilder().BuildDeclarations(context.Background(), decls)
	require.NoError(t, err)
	assert.Equal(t, 1, table.Len())

	_, err = NewBuilder(WithStrict(true)).BuildDeclarations(context.Background(), decls)
	require.Error(t, err)
	assert.ErrorIs(t, err, errspkg.ErrNoRoutes)

	var noRoutes *NoRoutesError
	require.True(t, errors.As(err, &noRoutes))
	assert.Equal(t, "idle", noRoutes.ProcessorID)
}

func TestBuildEmptyDeclarations(t *testing.T) {
	table, err := NewBuilder().BuildDeclarations(context.Background(), nil)
	require.NoError(t, err)
	require.NotNil(t, table)
	assert.Zero(t, table.Len())
}

func TestBuildSourceErrors(t *testing.T) {
	_, err := NewBuilder().Build(context.Background(), nil)
	assert.ErrorIs(t, err, errspkg.ErrSourceRequired)

	boom := errors.New("boom")
	_, err = NewBuilder().Build(context.Background(), SourceFunc(func(context.Context) ([]Declaration, error) {
		return nil, boom
	}))
	assert.ErrorIs(t, err, boom)
}

func TestConcurrentBuildMatchesSequential(t *testing.T) {
	var decls []Declaration
	for i := 0; i < 50; i++ {
		id := fmt.Sprintf("P%02d", i)
		if i%3 == 0 {
			decls = append(decls, Declare(id, SubscriberFunc(func() any {
				return []any{"shared", map[string]any{fmt.Sprintf("own-%d", i): nil}}
			})))
			continue
		}
		decls = append(decls, Declare(id, nil, Tag{TopicName: "shared"}, Tag{TopicName: id, DestinationName: "q"}))
	}

	sequential, err := NewBuilder().BuildDeclarations(context.Background(), decls)
	require.NoError(t, err)

	var order []int
	hooks := BuildHooks{OnExtracted: func(ctx ExtractionContext) { order = append(order, ctx.Index) }}
	concurrent, err := NewBuilder(WithWorkers(8), WithHooks(hooks)).BuildDeclarations(context.Background(), decls)
	require.NoError(t, err)

	assert.True(t, sequential.Equal(concurrent))
	require.Len(t, order, len(decls))
	for i, idx := range order {
		assert.Equal(t, i, idx)
	}
}

func TestConcurrentBuildReportsLowestIndexError(t *testing.T) {
	decls := []Declaration{
		Declare("ok", nil, Tag{TopicName: "t"}),
		Declare("missing", nil, Tag{}),
		Declare("malformed", SubscriberFunc(func() any { return 7 })),
		Declare("missing-too", nil, Tag{}),
	}

	for i := 0; i < 20; i++ {
		_, err := NewBuilder(WithWorkers(4)).BuildDeclarations(context.Background(), decls)
		var missing *MissingTopicNameError
		require.True(t, errors.As(err, &missing))
		assert.Equal(t, "missing", missing.ProcessorID)
	}
}

func TestBuildLogsWithBuildID(t *testing.T) {
	logger := newRecordingLogger()
	builder := NewBuilder(
		WithLogger(logger),
		WithTracer(noop.NewTracerProvider().Tracer("test")),
	)

	_, err := builder.BuildDeclarations(context.Background(), []Declaration{Declare("P", nil, Tag{TopicName: "t"})})
	require.NoError(t, err)

	assert.Equal(t, []string{"Building route table", "Route table built"}, logger.messages("info"))
	assert.Equal(t, []string{"Processor routes extracted"}, logger.messages("debug"))
	for _, r := range *logger.records {
		assert.NotEmpty(t, r.fields["build_id"])
	}

	_, err = builder.BuildDeclarations(context.Background(), []Declaration{Declare("P", nil, Tag{})})
	require.Error(t, err)
	assert.Equal(t, []string{"Route table build failed"}, logger.messages("error"))
}

func TestNewBuilderIgnoresNilOptions(t *testing.T) {
	b := NewBuilder(WithLogger(nil), WithTracer(nil))
	assert.NotNil(t, b.logger)
	assert.NotNil(t, b.tracer)
}
