package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/dhamidi/mcpgo/mcpcontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCounterToolsSharedState implements spec.md scenario S5: increment by
// 3, increment by 2, then get_value returns 5 off the same shared Counter.
func TestCounterToolsSharedState(t *testing.T) {
	shared := mcpcontext.NewShared(&Counter{})
	ctx := mcpcontext.Insert(mcpcontext.NewBuilder(), shared).Build()

	increment := Increment()
	getValue := GetValue()

	args3, _ := json.Marshal(incrementArgs{Quantity: 3})
	_, err := increment.Handler(context.Background(), ctx, args3)
	require.NoError(t, err)

	args2, _ := json.Marshal(incrementArgs{Quantity: 2})
	_, err = increment.Handler(context.Background(), ctx, args2)
	require.NoError(t, err)

	got, err := getValue.Handler(context.Background(), ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 5, got)
}

func TestDecrementTool(t *testing.T) {
	shared := mcpcontext.NewShared(&Counter{value: 10})
	ctx := mcpcontext.Insert(mcpcontext.NewBuilder(), shared).Build()

	decrement := Decrement()
	args, _ := json.Marshal(incrementArgs{Quantity: 4})
	got, err := decrement.Handler(context.Background(), ctx, args)
	require.NoError(t, err)
	assert.Equal(t, 6, got)
}
