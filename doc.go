// Package routeflow resolves, at startup, the route table of a message-driven
// application: which processors consume each topic, in which order, and on
// which destination (queue) they listen.
//
// Processors are declared with explicit tags (topic, optional processor name,
// optional destination) or implement TopicSubscriber to declare their topics
// in code. The Builder folds every declaration into an immutable Table in
// registration order and fails the whole build on the first invalid
// declaration, so a router never starts with a partial table.
//
// Service is the usual entry point: fill Config, create a Service, register
// processors, and call Build or Start. The table is handed to the configured
// TableConsumer, typically the runtime router. Declarations can also come
// from a YAML or JSON manifest (Config.Source = "manifest").
//
// # Observability
//
// Builds are logged through ServiceLogger (Watermill and slog adapters are
// provided), traced with OpenTelemetry when Config.TracingEnabled is set and
// recorded as Prometheus metrics when Config.MetricsEnabled is set. BuildHooks
// give access to every extracted declaration and to the finished table.
//
// # Route inspector
//
// With Config.WebUIEnabled the Service serves the built table on
// /api/routes and /api/routes/{topic}.
package routeflow
