package source

import (
	"context"
	"fmt"
	"os"

	"github.com/ThreeDotsLabs/watermill"
	"gopkg.in/yaml.v3"

	errspkg "github.com/drblury/routeflow/internal/runtime/errors"
	"github.com/drblury/routeflow/internal/runtime/routing"
)

// Manifest reads declarations from a YAML or JSON file:
//
//	processors:
//	  - id: order-handler
//	    tags:
//	      - topicName: order.created
//	        processorName: handler
//	        destinationName: q1
//	  - id: audit
//	    subscriptions: [t1, {t2: {processorName: custom}}]
//
// A processor with a subscriptions key is subscriber capable; the value is
// handed to the route parser as written, mapping order included. The file is
// read on every call to Declarations.
type Manifest struct {
	path   string
	logger watermill.LoggerAdapter
}

var _ routing.Source = (*Manifest)(nil)

// NewManifest creates a source for the manifest at path.
func NewManifest(path string, logger watermill.LoggerAdapter) (*Manifest, error) {
	if path == "" {
		return nil, errspkg.ErrManifestFileRequired
	}
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	return &Manifest{path: path, logger: logger}, nil
}

// Path returns the manifest file path.
func (m *Manifest) Path() string { return m.path }

// Declarations reads and parses the manifest.
func (m *Manifest) Declarations(_ context.Context) ([]routing.Declaration, error) {
	data, err := os.ReadFile(m.path)
	if err != nil {
		return nil, fmt.Errorf("routeflow: read manifest: %w", err)
	}

	decls, err := ParseManifest(data)
	if err != nil {
		return nil, fmt.Errorf("%w (file: %s)", err, m.path)
	}

	m.logger.Debug("Manifest loaded", watermill.LogFields{
		"file":       m.path,
		"processors": len(decls),
	})
	return decls, nil
}

// ParseManifest parses manifest content into declarations in document order.
func ParseManifest(data []byte) ([]routing.Declaration, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("routeflow: parse manifest: %w", err)
	}
	if doc.Kind == 0 {
		return nil, nil
	}

	root := resolve(&doc)
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = resolve(root.Content[0])
	}
	if isNull(root) {
		return nil, nil
	}
	if root.Kind != yaml.MappingNode {
		return nil, manifestError(root, "top level must be a mapping")
	}

	var processors *yaml.Node
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]
		switch key.Value {
		case "processors":
			processors = resolve(value)
		default:
			return nil, manifestError(key, fmt.Sprintf("unknown field %q", key.Value))
		}
	}
	if processors == nil || isNull(processors) {
		return nil, nil
	}
	if processors.Kind != yaml.SequenceNode {
		return nil, manifestError(processors, "processors must be a list")
	}

	seen := make(map[string]struct{}, len(processors.Content))
	decls := make([]routing.Declaration, 0, len(processors.Content))
	for _, node := range processors.Content {
		decl, err := parseProcessor(resolve(node))
		if err != nil {
			return nil, err
		}
		if _, dup := seen[decl.ProcessorID()]; dup {
			return nil, fmt.Errorf("%w: %q (line %d)", errspkg.ErrDuplicateProcessor, decl.ProcessorID(), node.Line)
		}
		seen[decl.ProcessorID()] = struct{}{}
		decls = append(decls, decl)
	}
	return decls, nil
}

func parseProcessor(node *yaml.Node) (routing.Declaration, error) {
	if node.Kind != yaml.MappingNode {
		return nil, manifestError(node, "processor must be a mapping")
	}

	var (
		id            string
		tags          []routing.Tag
		subscriptions any
		subscriber    bool
	)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], resolve(node.Content[i+1])
		switch key.Value {
		case "id":
			if err := value.Decode(&id); err != nil {
				return nil, manifestError(value, "id must be a string")
			}
		case "tags":
			if err := value.Decode(&tags); err != nil {
				return nil, manifestError(value, fmt.Sprintf("invalid tags: %v", err))
			}
		case "subscriptions":
			raw, err := nodeValue(value)
			if err != nil {
				return nil, err
			}
			subscriptions = raw
			subscriber = true
		default:
			return nil, manifestError(key, fmt.Sprintf("unknown field %q", key.Value))
		}
	}
	if id == "" {
		return nil, fmt.Errorf("%w (line %d)", errspkg.ErrProcessorIDRequired, node.Line)
	}

	if !subscriber {
		return routing.Declare(id, nil, tags...), nil
	}
	return routing.Declare(id, routing.SubscriberFunc(func() any { return subscriptions }), tags...), nil
}

// nodeValue converts a YAML node into plain values, turning mappings into
// routing.Mapping so document order survives.
func nodeValue(node *yaml.Node) (any, error) {
	node = resolve(node)
	switch node.Kind {
	case yaml.MappingNode:
		mapping := make(routing.Mapping, 0, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			key := resolve(node.Content[i])
			if key.Kind != yaml.ScalarNode {
				return nil, manifestError(key, "mapping keys must be scalars")
			}
			value, err := nodeValue(node.Content[i+1])
			if err != nil {
				return nil, err
			}
			mapping = append(mapping, routing.MappingEntry{Key: key.Value, Value: value})
		}
		return mapping, nil
	case yaml.SequenceNode:
		list := make([]any, 0, len(node.Content))
		for _, child := range node.Content {
			value, err := nodeValue(child)
			if err != nil {
				return nil, err
			}
			list = append(list, value)
		}
		return list, nil
	default:
		var value any
		if err := node.Decode(&value); err != nil {
			return nil, manifestError(node, err.Error())
		}
		return value, nil
	}
}

func resolve(node *yaml.Node) *yaml.Node {
	for node != nil && node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	return node
}

func isNull(node *yaml.Node) bool {
	return node.Kind == yaml.ScalarNode && node.ShortTag() == "!!null"
}

func manifestError(node *yaml.Node, msg string) error {
	return fmt.Errorf("routeflow: invalid manifest at line %d: %s", node.Line, msg)
}
