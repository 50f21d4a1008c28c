package routing

// Tag is one explicit routing declaration attached to a processor. Empty
// fields are treated as not set.
type Tag struct {
	TopicName       string `json:"topicName,omitempty" yaml:"topicName,omitempty"`
	ProcessorName   string `json:"processorName,omitempty" yaml:"processorName,omitempty"`
	DestinationName string `json:"destinationName,omitempty" yaml:"destinationName,omitempty"`
}

// TopicSubscriber is implemented by processors that declare their topics in
// code. SubscribedTopics must be a pure query; it is called at most once per
// extraction. Accepted return shapes are documented on ParseSubscriptions.
type TopicSubscriber interface {
	SubscribedTopics() any
}

// SubscriberFunc adapts a function to TopicSubscriber.
type SubscriberFunc func() any

func (f SubscriberFunc) SubscribedTopics() any { return f() }

// Declaration describes one registered processor. It is implemented by
// TaggedOnly and SubscriberCapable only.
type Declaration interface {
	ProcessorID() string
	Tags() []Tag
	isDeclaration()
}

// TaggedOnly is a processor whose routes come from its tags alone.
type TaggedOnly struct {
	ID           string
	ExplicitTags []Tag
}

func (d TaggedOnly) ProcessorID() string { return d.ID }
func (d TaggedOnly) Tags() []Tag         { return cloneTags(d.ExplicitTags) }
func (TaggedOnly) isDeclaration()        {}

// SubscriberCapable is a processor that also implements TopicSubscriber. Its
// subscriptions are used when it has no tags, and for every tag that does not
// name a topic.
type SubscriberCapable struct {
	ID           string
	ExplicitTags []Tag
	Subscriber   TopicSubscriber
}

func (d SubscriberCapable) ProcessorID() string { return d.ID }
func (d SubscriberCapable) Tags() []Tag         { return cloneTags(d.ExplicitTags) }
func (SubscriberCapable) isDeclaration()        {}

// Declare builds the declaration for a processor, detecting the subscriber
// capability once. processor may be nil for purely tagged processors.
func Declare(id string, processor any, tags ...Tag) Declaration {
	if sub, ok := processor.(TopicSubscriber); ok {
		return SubscriberCapable{ID: id, ExplicitTags: cloneTags(tags), Subscriber: sub}
	}
	return TaggedOnly{ID: id, ExplicitTags: cloneTags(tags)}
}

func cloneTags(tags []Tag) []Tag {
	if len(tags) == 0 {
		return nil
	}
	out := make([]Tag, len(tags))
	copy(out, tags)
	return out
}
