package server

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/dhamidi/mcpgo/mcpcontext"
	"github.com/dhamidi/mcpgo/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func echoTool(name string, handler ToolHandler) *ToolDescriptor {
	return &ToolDescriptor{
		Name:        name,
		Description: "test tool",
		Schema:      &genai.Schema{Type: genai.TypeObject, Properties: map[string]*genai.Schema{}},
		Handler:     handler,
	}
}

func TestMCPServerToolsListReturnsSortedDescriptors(t *testing.T) {
	srv := NewBuilder("test", "a test server").
		WithTool(echoTool("zeta", nil)).
		WithTool(echoTool("alpha", nil)).
		Build()

	resp, err := srv.Call(context.Background(), &protocol.Request{ID: "1", Method: "tools/list"})
	require.NoError(t, err)
	require.False(t, resp.IsError())

	var got []toolSummary
	require.NoError(t, json.Unmarshal(resp.Result, &got))
	require.Len(t, got, 2)
	assert.Equal(t, "alpha", got[0].Name)
	assert.Equal(t, "zeta", got[1].Name)
}

func TestMCPServerInitializeAdvertisesToolsCapabilityWhenToolsRegistered(t *testing.T) {
	srv := NewBuilder("test", "a test server").
		WithTool(echoTool("alpha", nil)).
		Build()

	resp, err := srv.Call(context.Background(), &protocol.Request{ID: "1", Method: "initialize"})
	require.NoError(t, err)
	require.False(t, resp.IsError())

	var got initializeResult
	require.NoError(t, json.Unmarshal(resp.Result, &got))
	assert.Equal(t, protocolVersion, got.ProtocolVersion)
	assert.Equal(t, "test", got.ServerInfo.Name)
	require.NotNil(t, got.Capabilities.Tools)
}

func TestMCPServerInitializeOmitsToolsCapabilityWhenNoToolsRegistered(t *testing.T) {
	srv := NewBuilder("test", "a test server").Build()

	resp, err := srv.Call(context.Background(), &protocol.Request{ID: "1", Method: "initialize"})
	require.NoError(t, err)

	var got initializeResult
	require.NoError(t, json.Unmarshal(resp.Result, &got))
	assert.Nil(t, got.Capabilities.Tools)
}

func TestMCPServerToolsCallUnknownToolReturnsMethodNotFound(t *testing.T) {
	srv := NewBuilder("test", "a test server").Build()

	params, _ := json.Marshal(toolCallParams{Name: "nope"})
	resp, err := srv.Call(context.Background(), &protocol.Request{ID: "1", Method: "tools/call", Params: params})
	require.NoError(t, err)
	require.True(t, resp.IsError())
	assert.Equal(t, protocol.ErrCodeMethodNotFound, resp.Error.Code)
}

// TestMCPServerToolsCallNumberResult implements spec scenario S3: a
// calculator-like tool returning a bare number is coerced to one text
// content block with the number's plain string form.
func TestMCPServerToolsCallNumberResult(t *testing.T) {
	srv := NewBuilder("test", "a test server").
		WithTool(echoTool("add", func(ctx context.Context, shared *mcpcontext.Context, args json.RawMessage) (any, error) {
			return 42, nil
		})).
		Build()

	params, _ := json.Marshal(toolCallParams{Name: "add", Arguments: json.RawMessage(`{"a":40,"b":2}`)})
	resp, err := srv.Call(context.Background(), &protocol.Request{ID: "42", Method: "tools/call", Params: params})
	require.NoError(t, err)
	require.False(t, resp.IsError())
	assert.JSONEq(t, `[{"type":"text","text":"42"}]`, string(resp.Result))
}

// TestMCPServerToolsCallToolErrorPropagatesCode implements spec scenario
// S4: a handler reporting a division by zero surfaces as an internal error
// whose message contains the failure reason.
func TestMCPServerToolsCallToolErrorPropagatesCode(t *testing.T) {
	srv := NewBuilder("test", "a test server").
		WithTool(echoTool("divide", func(ctx context.Context, shared *mcpcontext.Context, args json.RawMessage) (any, error) {
			return nil, ExecutionError("division by zero")
		})).
		Build()

	params, _ := json.Marshal(toolCallParams{Name: "divide"})
	resp, err := srv.Call(context.Background(), &protocol.Request{ID: "7", Method: "tools/call", Params: params})
	require.NoError(t, err)
	require.True(t, resp.IsError())
	assert.Equal(t, protocol.ErrCodeInternalError, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "division by zero")
}

func TestMCPServerToolsCallSharedStateInjection(t *testing.T) {
	type counter struct{ n int }

	srv := NewBuilder("test", "a test server")
	WithState(srv, counter{n: 1})
	srv.WithTool(echoTool("bump", func(ctx context.Context, shared *mcpcontext.Context, args json.RawMessage) (any, error) {
		c := mcpcontext.MustGet[counter](shared)
		c.Get().n++
		return c.Get().n, nil
	}))
	built := srv.Build()

	params, _ := json.Marshal(toolCallParams{Name: "bump"})
	resp1, err := built.Call(context.Background(), &protocol.Request{ID: "1", Method: "tools/call", Params: params})
	require.NoError(t, err)
	resp2, err := built.Call(context.Background(), &protocol.Request{ID: "2", Method: "tools/call", Params: params})
	require.NoError(t, err)

	assert.JSONEq(t, `[{"type":"text","text":"2"}]`, string(resp1.Result))
	assert.JSONEq(t, `[{"type":"text","text":"3"}]`, string(resp2.Result))
}

func TestCoerceResultVariants(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want string
	}{
		{"string", "hi", `[{"type":"text","text":"hi"}]`},
		{"bool", true, `[{"type":"text","text":"true"}]`},
		{"integer float", 7.0, `[{"type":"text","text":"7"}]`},
		{"fractional float", 1.5, `[{"type":"text","text":"1.5"}]`},
		{"null", nil, `[]`},
		{"content array", []Content{textContent("a"), textContent("b")}, `[{"type":"text","text":"a"},{"type":"text","text":"b"}]`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := coerceResult(tc.in)
			require.NoError(t, err)
			raw, err := json.Marshal(got)
			require.NoError(t, err)
			assert.JSONEq(t, tc.want, string(raw))
		})
	}
}
