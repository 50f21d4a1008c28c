package routeflow

import (
	runtimepkg "github.com/drblury/routeflow/internal/runtime"
	configpkg "github.com/drblury/routeflow/internal/runtime/config"
	errspkg "github.com/drblury/routeflow/internal/runtime/errors"
	idspkg "github.com/drblury/routeflow/internal/runtime/ids"
	jsoncodec "github.com/drblury/routeflow/internal/runtime/jsoncodec"
	loggingpkg "github.com/drblury/routeflow/internal/runtime/logging"
	"github.com/drblury/routeflow/internal/runtime/routing"
	"github.com/drblury/routeflow/source"
)

type (
	Config              = configpkg.Config
	Service             = runtimepkg.Service
	ServiceDependencies = runtimepkg.ServiceDependencies

	// Declarations
	Tag               = routing.Tag
	TopicSubscriber   = routing.TopicSubscriber
	SubscriberFunc    = routing.SubscriberFunc
	Declaration       = routing.Declaration
	TaggedOnly        = routing.TaggedOnly
	SubscriberCapable = routing.SubscriberCapable

	// Subscription declarations
	SubscriptionItem  = routing.SubscriptionItem
	TopicOnly         = routing.TopicOnly
	TopicWithOverride = routing.TopicWithOverride
	Override          = routing.Override
	Mapping           = routing.Mapping
	MappingEntry      = routing.MappingEntry

	// Route table
	RouteEntry        = routing.RouteEntry
	Route             = routing.Route
	Destination       = routing.Destination
	Table             = routing.Table
	TableConsumer     = routing.TableConsumer
	TableConsumerFunc = routing.TableConsumerFunc

	// Building
	Builder           = routing.Builder
	BuilderOption     = routing.Option
	Source            = routing.Source
	SourceFunc        = routing.SourceFunc
	BuildHooks        = routing.BuildHooks
	BuildContext      = routing.BuildContext
	ExtractionContext = routing.ExtractionContext
	BuildMetrics      = routing.BuildMetrics

	// Sources
	SourceRegistry = source.Registry
	SourceBuilder  = source.Builder
	SourceConfig   = source.Config
	StaticSource   = source.Static
	ManifestSource = source.Manifest

	// Errors
	MissingTopicNameError      = routing.MissingTopicNameError
	MalformedSubscriptionError = routing.MalformedSubscriptionError
	NoRoutesError              = routing.NoRoutesError
	ConfigValidationError      = errspkg.ConfigValidationError

	LogFields     = loggingpkg.LogFields
	ServiceLogger = loggingpkg.ServiceLogger
)

var (
	NewService     = runtimepkg.NewService
	ValidateConfig = configpkg.ValidateConfig

	Declare            = routing.Declare
	Extract            = routing.Extract
	ParseSubscriptions = routing.ParseSubscriptions
	NewTable           = routing.NewTable
	NamedDestination   = routing.NamedDestination
	DefaultDestination = routing.DefaultDestination

	NewBuilder  = routing.NewBuilder
	WithLogger  = routing.WithLogger
	WithHooks   = routing.WithHooks
	WithTracer  = routing.WithTracer
	WithWorkers = routing.WithWorkers
	WithStrict  = routing.WithStrict

	LoggingHooks    = routing.LoggingHooks
	MetricsHooks    = routing.MetricsHooks
	NewBuildMetrics = routing.NewBuildMetrics

	NewStatic             = source.NewStatic
	NewManifest           = source.NewManifest
	ParseManifest         = source.ParseManifest
	NewSourceRegistry     = source.NewRegistry
	DefaultSourceRegistry = source.DefaultRegistry
	RegisterSource        = source.Register
	BuildSource           = source.Build

	Marshal       = jsoncodec.Marshal
	MarshalIndent = jsoncodec.MarshalIndent
	Unmarshal     = jsoncodec.Unmarshal
	Encode        = jsoncodec.Encode

	ErrServiceRequired       = errspkg.ErrServiceRequired
	ErrSourceRequired        = errspkg.ErrSourceRequired
	ErrProcessorIDRequired   = errspkg.ErrProcessorIDRequired
	ErrDuplicateProcessor    = errspkg.ErrDuplicateProcessor
	ErrConfigRequired        = errspkg.ErrConfigRequired
	ErrLoggerRequired        = errspkg.ErrLoggerRequired
	ErrManifestFileRequired  = errspkg.ErrManifestFileRequired
	ErrMissingTopicName      = errspkg.ErrMissingTopicName
	ErrMalformedSubscription = errspkg.ErrMalformedSubscription
	ErrNoRoutes              = errspkg.ErrNoRoutes
	ErrTableAlreadyBuilt     = errspkg.ErrTableAlreadyBuilt

	NewSlogServiceLogger      = loggingpkg.NewSlogServiceLogger
	NewWatermillServiceLogger = loggingpkg.NewWatermillServiceLogger
	NewNopServiceLogger       = loggingpkg.NewNopServiceLogger
	NewWatermillAdapter       = loggingpkg.NewWatermillAdapter

	NewBuildID = idspkg.NewBuildID
)

// Source names accepted by Config.Source.
const (
	SourceStatic   = source.StaticName
	SourceManifest = source.ManifestName
)
