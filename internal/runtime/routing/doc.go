/*
Package routing resolves the static topic routing table consumed by a runtime
message router.

Every processor is described by a Declaration. Declare inspects the processor
once: processors implementing TopicSubscriber become SubscriberCapable, all
others TaggedOnly. Extract turns one declaration into RouteEntry values and
Builder folds the entries of all declarations into a Table, preserving the
registration order of processors and, within a processor, the order of its
tags and subscriptions. That order is the dispatch order at runtime.

Configuration mistakes abort the build: a tag without a topic name on a
processor that cannot fall back to its subscriptions yields a
*MissingTopicNameError, a subscription value of an unexpected shape yields a
*MalformedSubscriptionError. No partial table is ever returned.

	b := routing.NewBuilder(routing.WithLogger(logger))
	table, err := b.BuildDeclarations(ctx, []routing.Declaration{
		routing.Declare("order-handler", nil, routing.Tag{TopicName: "order.created"}),
		routing.Declare("audit", auditProcessor),
	})
*/
package routing
