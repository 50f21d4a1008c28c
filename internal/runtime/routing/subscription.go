package routing

import (
	"bytes"
	"reflect"
	"sort"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/drblury/routeflow/internal/runtime/jsoncodec"
)

const (
	overrideProcessorKey   = "processorName"
	overrideDestinationKey = "destinationName"
)

// SubscriptionItem is one parsed element of a subscriber declaration:
// either TopicOnly or TopicWithOverride.
type SubscriptionItem interface {
	Topic() string
	isSubscriptionItem()
}

// TopicOnly subscribes the declaring processor on the default destination.
type TopicOnly struct {
	Name string
}

func (t TopicOnly) Topic() string      { return t.Name }
func (TopicOnly) isSubscriptionItem() {}

// TopicWithOverride subscribes with an explicit processor and/or destination.
// Empty override fields fall back to the processor id and the default
// destination.
type TopicWithOverride struct {
	Name            string
	ProcessorName   string
	DestinationName string
}

func (t TopicWithOverride) Topic() string      { return t.Name }
func (TopicWithOverride) isSubscriptionItem() {}

// Override is the typed form of a per-topic override record, usable as the
// value type of map[string]Override declarations.
type Override struct {
	ProcessorName   string `json:"processorName,omitempty" yaml:"processorName,omitempty"`
	DestinationName string `json:"destinationName,omitempty" yaml:"destinationName,omitempty"`
}

// MappingEntry is one key/value pair of a Mapping.
type MappingEntry struct {
	Key   string
	Value any
}

// Mapping is an ordered topic -> override mapping. Go maps have no order, so
// decoders that know the document order (the manifest source) produce a
// Mapping instead.
type Mapping []MappingEntry

// MarshalJSON renders the mapping as a JSON object in entry order.
func (m Mapping) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, entry := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := jsoncodec.Marshal(entry.Key)
		if err != nil {
			return nil, err
		}
		value, err := jsoncodec.Marshal(entry.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ParseSubscriptions validates the value returned by a TopicSubscriber and
// converts it into SubscriptionItems, preserving declaration order.
//
// Accepted shapes:
//   - nil: no subscriptions
//   - a slice whose elements are topic strings, SubscriptionItems or
//     topic -> override mappings (mixing is allowed)
//   - a single SubscriptionItem; pointer items are dereferenced
//   - a topic -> override mapping: Mapping keeps its order, Go maps with
//     string keys are read in sorted key order
//   - structpb.Value, structpb.ListValue and structpb.Struct holding one of
//     the shapes above
//
// An override is nil, an Override, or a mapping with the optional string keys
// "processorName" and "destinationName". Anything else, and any topic that is
// empty, fails with a *MalformedSubscriptionError carrying the raw value and
// the offending element. The returned error has no processor id; Extract
// fills it in.
func ParseSubscriptions(raw any) ([]SubscriptionItem, error) {
	p := subscriptionParser{raw: raw}
	items, err := p.parseTop(raw)
	if err != nil {
		return nil, err
	}
	return items, nil
}

type subscriptionParser struct {
	raw   any
	items []SubscriptionItem
}

func (p *subscriptionParser) malformed(element any) error {
	return &MalformedSubscriptionError{Raw: p.raw, Element: element}
}

func (p *subscriptionParser) parseTop(value any) ([]SubscriptionItem, error) {
	value = unwrapProto(value)
	if value == nil {
		return nil, nil
	}

	switch v := value.(type) {
	case SubscriptionItem:
		if err := p.addItem(v, value); err != nil {
			return nil, err
		}
		return p.items, nil
	case Mapping:
		if err := p.addMapping(v); err != nil {
			return nil, err
		}
		return p.items, nil
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			if err := p.addElement(rv.Index(i).Interface()); err != nil {
				return nil, err
			}
		}
		return p.items, nil
	case reflect.Map:
		mapping, ok := toMapping(rv)
		if !ok {
			return nil, p.malformed(value)
		}
		if err := p.addMapping(mapping); err != nil {
			return nil, err
		}
		return p.items, nil
	}

	return nil, p.malformed(value)
}

func (p *subscriptionParser) addElement(element any) error {
	element = unwrapProto(element)

	switch v := element.(type) {
	case string:
		return p.addItem(TopicOnly{Name: v}, element)
	case SubscriptionItem:
		return p.addItem(v, element)
	case Mapping:
		if len(v) == 0 {
			return p.malformed(element)
		}
		return p.addMapping(v)
	}

	rv := reflect.ValueOf(element)
	if element != nil && rv.Kind() == reflect.Map {
		mapping, ok := toMapping(rv)
		if !ok || len(mapping) == 0 {
			return p.malformed(element)
		}
		return p.addMapping(mapping)
	}

	return p.malformed(element)
}

func (p *subscriptionParser) addMapping(mapping Mapping) error {
	for _, entry := range mapping {
		override, ok := parseOverride(entry.Value)
		if !ok || entry.Key == "" {
			return p.malformed(Mapping{entry})
		}
		if override == (Override{}) {
			p.items = append(p.items, TopicOnly{Name: entry.Key})
			continue
		}
		p.items = append(p.items, TopicWithOverride{
			Name:            entry.Key,
			ProcessorName:   override.ProcessorName,
			DestinationName: override.DestinationName,
		})
	}
	return nil
}

// addItem stores item, dereferencing *TopicOnly and *TopicWithOverride.
// element is the value as returned by the subscriber, used in errors.
func (p *subscriptionParser) addItem(item SubscriptionItem, element any) error {
	switch it := item.(type) {
	case *TopicOnly:
		if it == nil {
			return p.malformed(element)
		}
		item = *it
	case *TopicWithOverride:
		if it == nil {
			return p.malformed(element)
		}
		item = *it
	}
	if item == nil || item.Topic() == "" {
		return p.malformed(element)
	}
	p.items = append(p.items, item)
	return nil
}

func parseOverride(value any) (Override, bool) {
	value = unwrapProto(value)

	switch v := value.(type) {
	case nil:
		return Override{}, true
	case Override:
		return v, true
	case *Override:
		if v == nil {
			return Override{}, true
		}
		return *v, true
	case Mapping:
		return overrideFromMapping(v)
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Map {
		return Override{}, false
	}
	mapping, ok := toMapping(rv)
	if !ok {
		return Override{}, false
	}
	return overrideFromMapping(mapping)
}

func overrideFromMapping(mapping Mapping) (Override, bool) {
	var override Override
	for _, entry := range mapping {
		var name string
		switch v := entry.Value.(type) {
		case nil:
		case string:
			name = v
		default:
			return Override{}, false
		}

		switch entry.Key {
		case overrideProcessorKey:
			override.ProcessorName = name
		case overrideDestinationKey:
			override.DestinationName = name
		default:
			return Override{}, false
		}
	}
	return override, true
}

// toMapping converts a Go map with string keys into a Mapping sorted by key.
func toMapping(rv reflect.Value) (Mapping, bool) {
	if rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	keys := make([]string, 0, rv.Len())
	for _, k := range rv.MapKeys() {
		keys = append(keys, k.String())
	}
	sort.Strings(keys)

	mapping := make(Mapping, 0, len(keys))
	for _, key := range keys {
		value := rv.MapIndex(reflect.ValueOf(key).Convert(rv.Type().Key()))
		mapping = append(mapping, MappingEntry{Key: key, Value: value.Interface()})
	}
	return mapping, true
}

func unwrapProto(value any) any {
	switch v := value.(type) {
	case *structpb.Value:
		if v == nil {
			return nil
		}
		return v.AsInterface()
	case *structpb.ListValue:
		if v == nil {
			return nil
		}
		return v.AsSlice()
	case *structpb.Struct:
		if v == nil {
			return nil
		}
		return v.AsMap()
	}
	return value
}
