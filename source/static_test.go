package source

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drblury/routeflow/internal/runtime/routing"
)

func TestStaticReturnsCopies(t *testing.T) {
	decls := []routing.Declaration{
		routing.Declare("a", nil, routing.Tag{TopicName: "t"}),
		routing.Declare("b", nil, routing.Tag{TopicName: "t"}),
	}
	src := NewStatic(decls)
	decls[0] = routing.Declare("mutated", nil)

	got, err := src.Declarations(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ProcessorID())

	got[1] = nil
	again, err := src.Declarations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "b", again[1].ProcessorID())
}

func TestStaticAddAndUpdate(t *testing.T) {
	src := NewStatic(nil)
	assert.Zero(t, src.Len())

	src.Add(routing.Declare("a", nil), routing.Declare("b", nil))
	src.Add(routing.Declare("c", nil))
	got, err := src.Declarations(context.Background())
	require.NoError(t, err)
	ids := make([]string, len(got))
	for i, d := range got {
		ids[i] = d.ProcessorID()
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids)

	src.Update([]routing.Declaration{routing.Declare("z", nil)})
	assert.Equal(t, 1, src.Len())
}

func TestStaticBuildsTable(t *testing.T) {
	src := NewStatic([]routing.Declaration{
		routing.Declare("P1", nil, routing.Tag{TopicName: "order.created", ProcessorName: "handler", DestinationName: "q1"}),
	})

	table, err := routing.NewBuilder().Build(context.Background(), src)
	require.NoError(t, err)
	data, err := table.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"order.created":[["handler","q1"]]}`, string(data))
}
