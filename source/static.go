package source

import (
	"context"
	"sync"

	"github.com/drblury/routeflow/internal/runtime/routing"
)

// Static is a source over a list of declarations held in memory.
type Static struct {
	mu    sync.RWMutex
	decls []routing.Declaration
}

var _ routing.Source = (*Static)(nil)

// NewStatic creates a static source returning decls in the given order.
//
// Example:
//
//	src := source.NewStatic([]routing.Declaration{
//	    routing.Declare("order-handler", nil, routing.Tag{TopicName: "order.created"}),
//	    routing.Declare("audit", auditProcessor),
//	})
//	table, err := routing.NewBuilder().Build(ctx, src)
func NewStatic(decls []routing.Declaration) *Static {
	return &Static{decls: cloneDeclarations(decls)}
}

// Declarations returns a copy of the declarations in registration order.
func (s *Static) Declarations(_ context.Context) ([]routing.Declaration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return cloneDeclarations(s.decls), nil
}

// Add appends declarations after the existing ones.
func (s *Static) Add(decls ...routing.Declaration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.decls = append(s.decls, decls...)
}

// Update replaces the declaration list.
func (s *Static) Update(decls []routing.Declaration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.decls = cloneDeclarations(decls)
}

// Len returns the number of declarations.
func (s *Static) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.decls)
}

func cloneDeclarations(decls []routing.Declaration) []routing.Declaration {
	out := make([]routing.Declaration, len(decls))
	copy(out, decls)
	return out
}
