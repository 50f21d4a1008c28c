package routing

import (
	"google.golang.org/protobuf/types/known/structpb"
	"gopkg.in/yaml.v3"

	"github.com/drblury/routeflow/internal/runtime/jsoncodec"
)

// Route is one (processor, destination) pair registered for a topic.
type Route struct {
	Processor   string
	Destination Destination
}

// MarshalJSON renders the route as a two element array, for example
// ["handler","q1"] or ["handler",null].
func (r Route) MarshalJSON() ([]byte, error) {
	return jsoncodec.Marshal([]any{r.Processor, r.Destination.value()})
}

func (r Route) MarshalYAML() (any, error) {
	return []any{r.Processor, r.Destination.value()}, nil
}

// TableConsumer receives the finished table. It is implemented by the
// runtime router.
type TableConsumer interface {
	SetRoutes(table *Table) error
}

// TableConsumerFunc adapts a function to TableConsumer.
type TableConsumerFunc func(table *Table) error

func (f TableConsumerFunc) SetRoutes(table *Table) error { return f(table) }

// Table maps topics to their ordered routes. A Table is immutable once built
// and safe for concurrent use; every accessor returns a copy. The nil *Table
// behaves like an empty table.
type Table struct {
	topics []string
	routes map[string][]Route
	size   int
}

// NewTable builds a table from entries in the given order.
func NewTable(entries ...RouteEntry) *Table {
	t := newTable()
	for _, entry := range entries {
		t.add(entry)
	}
	return t
}

func newTable() *Table {
	return &Table{routes: make(map[string][]Route)}
}

func (t *Table) add(entry RouteEntry) {
	existing, ok := t.routes[entry.Topic]
	if !ok {
		t.topics = append(t.topics, entry.Topic)
	}
	t.routes[entry.Topic] = append(existing, entry.Route())
	t.size++
}

// Routes returns the routes registered for topic in dispatch order, or nil
// when no processor consumes the topic.
func (t *Table) Routes(topic string) []Route {
	if t == nil {
		return nil
	}
	routes, ok := t.routes[topic]
	if !ok {
		return nil
	}
	out := make([]Route, len(routes))
	copy(out, routes)
	return out
}

// Has reports whether at least one route exists for topic.
func (t *Table) Has(topic string) bool {
	if t == nil {
		return false
	}
	_, ok := t.routes[topic]
	return ok
}

// Topics returns the topics in the order they first appeared during the build.
func (t *Table) Topics() []string {
	if t == nil {
		return nil
	}
	out := make([]string, len(t.topics))
	copy(out, t.topics)
	return out
}

// Len returns the total number of routes across all topics.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return t.size
}

// Map returns a copy of the table as a plain map.
func (t *Table) Map() map[string][]Route {
	out := make(map[string][]Route)
	if t == nil {
		return out
	}
	for _, topic := range t.topics {
		out[topic] = t.Routes(topic)
	}
	return out
}

// Entries flattens the table, topic by topic in first-seen order.
func (t *Table) Entries() []RouteEntry {
	if t == nil {
		return nil
	}
	out := make([]RouteEntry, 0, t.size)
	for _, topic := range t.topics {
		for _, r := range t.routes[topic] {
			out = append(out, RouteEntry{Topic: topic, Processor: r.Processor, Destination: r.Destination})
		}
	}
	return out
}

// Equal reports whether both tables hold the same routes in the same order.
func (t *Table) Equal(other *Table) bool {
	if t.Len() != other.Len() || len(t.Topics()) != len(other.Topics()) {
		return false
	}
	for _, topic := range t.Topics() {
		a, b := t.Routes(topic), other.Routes(topic)
		if len(a) != len(b) {
			return false
		}
		for i := range a {
			if a[i] != b[i] {
				return false
			}
		}
	}
	return true
}

// MarshalJSON renders {"topic":[["processor","destination"|null],...]} with
// sorted topic keys.
func (t *Table) MarshalJSON() ([]byte, error) {
	return jsoncodec.Marshal(t.Map())
}

// MarshalYAML renders the table with topics in first-seen order.
func (t *Table) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, topic := range t.Topics() {
		routes := &yaml.Node{}
		if err := routes.Encode(t.Routes(topic)); err != nil {
			return nil, err
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: topic},
			routes,
		)
	}
	return node, nil
}

// ToProto converts the table into a protobuf Struct with the same layout as
// the JSON rendering, for routers living behind a protobuf boundary.
func (t *Table) ToProto() (*structpb.Struct, error) {
	fields := make(map[string]any, len(t.Topics()))
	for _, topic := range t.Topics() {
		routes := t.Routes(topic)
		list := make([]any, len(routes))
		for i, r := range routes {
			list[i] = []any{r.Processor, r.Destination.value()}
		}
		fields[topic] = list
	}
	return structpb.NewStruct(fields)
}
