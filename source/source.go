// Package source provides the registration sources a route table is built
// from, and a registry to select one by name from configuration.
package source

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"

	"github.com/drblury/routeflow/internal/runtime/routing"
)

const (
	// StaticName selects the in-process Static source.
	StaticName = "static"
	// ManifestName selects the Manifest file source.
	ManifestName = "manifest"
)

// Config provides the values source builders need, without depending on the
// full config package.
type Config interface {
	GetSource() string
	GetManifestFile() string
}

// Builder creates a source from configuration.
type Builder func(ctx context.Context, cfg Config, logger watermill.LoggerAdapter) (routing.Source, error)

func buildStatic(_ context.Context, _ Config, _ watermill.LoggerAdapter) (routing.Source, error) {
	return NewStatic(nil), nil
}

func buildManifest(_ context.Context, cfg Config, logger watermill.LoggerAdapter) (routing.Source, error) {
	m, err := NewManifest(cfg.GetManifestFile(), logger)
	if err != nil {
		return nil, err
	}
	return m, nil
}
