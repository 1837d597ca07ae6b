package tools

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/dhamidi/mcpgo/mcpcontext"
	"github.com/dhamidi/mcpgo/server"
	"google.golang.org/genai"
)

// Counter is the shared, mutex-guarded state behind the increment/decrement/
// get_value tools, matching counter_server.rs's Arc<Mutex<i32>> Counter.
type Counter struct {
	mu    sync.Mutex
	value int
}

func (c *Counter) add(delta int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value += delta
	return c.value
}

func (c *Counter) get() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

type incrementArgs struct {
	Quantity int `json:"quantity"`
}

// Increment adds the tool's "quantity" argument to the shared Counter
// injected via ctx, matching spec.md scenario S5.
func Increment() *server.ToolDescriptor {
	return &server.ToolDescriptor{
		Name:        "increment",
		Description: "Increment the counter by the given quantity",
		Schema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"quantity": {Type: genai.TypeInteger, Description: "Amount to add to the counter"},
			},
			Required: []string{"quantity"},
		},
		Handler: func(ctx context.Context, shared *mcpcontext.Context, raw json.RawMessage) (any, error) {
			var args incrementArgs
			if err := json.Unmarshal(raw, &args); err != nil {
				return nil, server.InvalidParametersError("decode increment arguments: %s", err)
			}
			counter := mcpcontext.MustGet[*Counter](shared)
			return (*counter.Get()).add(args.Quantity), nil
		},
	}
}

// Decrement subtracts the tool's "quantity" argument from the shared
// Counter.
func Decrement() *server.ToolDescriptor {
	return &server.ToolDescriptor{
		Name:        "decrement",
		Description: "Decrement the counter by the given quantity",
		Schema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"quantity": {Type: genai.TypeInteger, Description: "Amount to subtract from the counter"},
			},
			Required: []string{"quantity"},
		},
		Handler: func(ctx context.Context, shared *mcpcontext.Context, raw json.RawMessage) (any, error) {
			var args incrementArgs
			if err := json.Unmarshal(raw, &args); err != nil {
				return nil, server.InvalidParametersError("decode decrement arguments: %s", err)
			}
			counter := mcpcontext.MustGet[*Counter](shared)
			return (*counter.Get()).add(-args.Quantity), nil
		},
	}
}

// GetValue reads the shared Counter's current value without modifying it.
func GetValue() *server.ToolDescriptor {
	return &server.ToolDescriptor{
		Name:        "get_value",
		Description: "Get the current value of the counter",
		Schema:      &genai.Schema{Type: genai.TypeObject, Properties: map[string]*genai.Schema{}},
		Handler: func(ctx context.Context, shared *mcpcontext.Context, raw json.RawMessage) (any, error) {
			counter := mcpcontext.MustGet[*Counter](shared)
			return (*counter.Get()).get(), nil
		},
	}
}
