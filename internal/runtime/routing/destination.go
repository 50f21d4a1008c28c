package routing

import "github.com/drblury/routeflow/internal/runtime/jsoncodec"

// Destination is the queue a processor listens on for a topic. The zero value
// is the default destination: the transport picks the queue for the topic at
// runtime. A default destination is never represented as an empty name in
// rendered tables; it renders as null.
type Destination struct {
	name string
}

// DefaultDestination lets the transport choose the queue.
var DefaultDestination = Destination{}

// NamedDestination returns a destination for name. An empty name yields the
// default destination.
func NamedDestination(name string) Destination {
	return Destination{name: name}
}

// Name returns the destination name and whether one is set.
func (d Destination) Name() (string, bool) {
	return d.name, d.name != ""
}

// IsDefault reports whether the transport default destination is used.
func (d Destination) IsDefault() bool {
	return d.name == ""
}

func (d Destination) String() string {
	if d.IsDefault() {
		return "<default>"
	}
	return d.name
}

func (d Destination) MarshalJSON() ([]byte, error) {
	if d.IsDefault() {
		return []byte("null"), nil
	}
	return jsoncodec.Marshal(d.name)
}

func (d Destination) MarshalYAML() (any, error) {
	if d.IsDefault() {
		return nil, nil
	}
	return d.name, nil
}

// value returns the name or nil, the shape used in generic renderings.
func (d Destination) value() any {
	if d.IsDefault() {
		return nil
	}
	return d.name
}
