package runtime

import (
	"fmt"

	errspkg "github.com/drblury/routeflow/internal/runtime/errors"
	loggingpkg "github.com/drblury/routeflow/internal/runtime/logging"
	"github.com/drblury/routeflow/internal/runtime/routing"
)

// RegisterProcessor declares a processor. processor may implement
// routing.TopicSubscriber; it may be nil when tags carry all routes.
// Registration order is the dispatch order within a topic.
func (s *Service) RegisterProcessor(id string, processor any, tags ...routing.Tag) error {
	return s.RegisterDeclaration(routing.Declare(id, processor, tags...))
}

// RegisterDeclaration adds a prepared declaration.
func (s *Service) RegisterDeclaration(decl routing.Declaration) error {
	if s == nil {
		return errspkg.ErrServiceRequired
	}
	if decl == nil || decl.ProcessorID() == "" {
		return errspkg.ErrProcessorIDRequired
	}
	if s.Table() != nil {
		return errspkg.ErrTableAlreadyBuilt
	}

	s.processorsMu.Lock()
	defer s.processorsMu.Unlock()

	id := decl.ProcessorID()
	if _, exists := s.processors[id]; exists {
		return fmt.Errorf("%w: %q", errspkg.ErrDuplicateProcessor, id)
	}
	s.processors[id] = struct{}{}
	s.static.Add(decl)

	s.Logger.Debug("Processor registered", loggingpkg.LogFields{
		"processor_id": id,
		"tags":         len(decl.Tags()),
	})
	return nil
}

// MustRegisterProcessor is RegisterProcessor that panics on error, for wiring
// code in main packages.
func (s *Service) MustRegisterProcessor(id string, processor any, tags ...routing.Tag) {
	if err := s.RegisterProcessor(id, processor, tags...); err != nil {
		panic(err)
	}
}

// Processors returns the number of registered processors.
func (s *Service) Processors() int {
	return s.static.Len()
}
