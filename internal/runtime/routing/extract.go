package routing

import (
	errspkg "github.com/drblury/routeflow/internal/runtime/errors"
)

// RouteEntry is one resolved routing fact.
type RouteEntry struct {
	Topic       string
	Processor   string
	Destination Destination
}

// Route returns the (processor, destination) pair stored in the table.
func (e RouteEntry) Route() Route {
	return Route{Processor: e.Processor, Destination: e.Destination}
}

// Extract resolves the route entries of one declaration.
//
// Tags are processed in order. A tag naming a topic yields one entry, with
// the processor defaulting to the declaration's processor id and the
// destination to DefaultDestination. A tag without a topic expands into the
// processor's subscriptions when it is SubscriberCapable and is a
// *MissingTopicNameError otherwise. A SubscriberCapable declaration without
// tags yields its subscriptions; a TaggedOnly declaration without tags yields
// nothing.
func Extract(decl Declaration) ([]RouteEntry, error) {
	if decl == nil {
		return nil, errspkg.ErrProcessorIDRequired
	}
	id := decl.ProcessorID()
	if id == "" {
		return nil, errspkg.ErrProcessorIDRequired
	}

	x := extractor{id: id}
	if capable, ok := decl.(SubscriberCapable); ok && capable.Subscriber != nil {
		x.subscriber = capable.Subscriber
	}

	tags := decl.Tags()
	if len(tags) == 0 {
		if x.subscriber == nil {
			return nil, nil
		}
		if err := x.fanOut(); err != nil {
			return nil, err
		}
		return x.entries, nil
	}

	for _, tag := range tags {
		if tag.TopicName != "" {
			x.add(tag.TopicName, tag.ProcessorName, tag.DestinationName)
			continue
		}
		if x.subscriber == nil {
			return nil, &MissingTopicNameError{ProcessorID: id, Tag: tag}
		}
		if err := x.fanOut(); err != nil {
			return nil, err
		}
	}
	return x.entries, nil
}

type extractor struct {
	id         string
	subscriber TopicSubscriber

	parsed        bool
	raw           any
	subscriptions []SubscriptionItem
	entries       []RouteEntry
}

func (x *extractor) add(topic, processor, destination string) {
	if processor == "" {
		processor = x.id
	}
	x.entries = append(x.entries, RouteEntry{
		Topic:       topic,
		Processor:   processor,
		Destination: NamedDestination(destination),
	})
}

// fanOut appends one entry per subscription. The subscriber is queried once.
func (x *extractor) fanOut() error {
	if !x.parsed {
		x.raw = x.subscriber.SubscribedTopics()
		items, err := ParseSubscriptions(x.raw)
		if err != nil {
			if malformed, ok := err.(*MalformedSubscriptionError); ok {
				malformed.ProcessorID = x.id
			}
			return err
		}
		x.subscriptions = items
		x.parsed = true
	}

	for _, item := range x.subscriptions {
		switch it := item.(type) {
		case TopicOnly:
			x.add(it.Name, "", "")
		case TopicWithOverride:
			x.add(it.Name, it.ProcessorName, it.DestinationName)
		default:
			return &MalformedSubscriptionError{ProcessorID: x.id, Raw: x.raw, Element: item}
		}
	}
	return nil
}

func declarationKind(decl Declaration) string {
	if _, ok := decl.(SubscriberCapable); ok {
		return "subscriber"
	}
	return "tagged"
}
