/*
Package runtime hosts the route Service of routeflow.

# Architecture Overview

Processors are declared at startup, either on the Service or through a
declaration source. The Service folds them into an immutable route table
exactly once and hands the table to the runtime router that delivers
messages.

# Package Structure

## Core Service (service.go)

The Service struct wires together:
  - the declaration source (registered processors, or a manifest)
  - the route Builder with logging, metrics and tracing hooks
  - the TableConsumer receiving the finished table
  - HTTP servers for metrics and the route inspector

## Processor Registration (registration.go)

RegisterProcessor records processors in registration order. The order is
the dispatch order of processors sharing a topic.

## Route Inspector (webui.go)

Read-only HTTP API over the built table:
  - GET /api/routes: the whole table, JSON or ?format=yaml
  - GET /api/routes/{topic}: the routes of one topic

# Sub-packages

  - config/: Service configuration with validation
  - errors/: Sentinel errors and error types
  - ids/: ULID build ids
  - jsoncodec/: JSON marshaling utilities
  - logging/: Logger interface and adapters
  - routing/: Route extraction, the Builder and the route table

# Usage Example

	cfg := &routeflow.Config{
		MetricsEnabled: true,
		MetricsPort:    9090,
		WebUIEnabled:   true,
	}

	svc, err := routeflow.NewService(cfg, logger, ctx, routeflow.ServiceDependencies{
		Consumer: router,
	})

	svc.MustRegisterProcessor("order-handler", nil,
		routeflow.Tag{TopicName: "order.created", DestinationName: "orders"})
	svc.MustRegisterProcessor("audit", auditProcessor)

	svc.Start(ctx)
*/
package runtime
