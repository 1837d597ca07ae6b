// Package tools is the demo tool suite (calculator, counter, notes, files)
// from examples/server_tool_macros and examples/servers in the original
// source, reimplemented as Go closures registered through server.Builder
// instead of macro-generated descriptor structs.
package tools

import (
	"context"
	"encoding/json"

	"github.com/dhamidi/mcpgo/mcpcontext"
	"github.com/dhamidi/mcpgo/server"
	"google.golang.org/genai"
)

type calculatorArgs struct {
	X         int    `json:"x"`
	Y         int    `json:"y"`
	Operation string `json:"operation"`
}

// Calculator performs basic arithmetic. It mirrors
// stateless_calculator_server.rs's calculator tool, including its
// ExecutionError on division by zero and InvalidParameters on an unknown
// operation (spec.md scenarios S3 and S4).
func Calculator() *server.ToolDescriptor {
	return &server.ToolDescriptor{
		Name:        "calculator",
		Description: "Perform basic arithmetic operations",
		Schema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"x":         {Type: genai.TypeInteger, Description: "First number in the calculation"},
				"y":         {Type: genai.TypeInteger, Description: "Second number in the calculation"},
				"operation": {Type: genai.TypeString, Description: "The operation to perform (add, subtract, multiply, divide)"},
			},
			Required: []string{"x", "y", "operation"},
		},
		Handler: func(ctx context.Context, shared *mcpcontext.Context, raw json.RawMessage) (any, error) {
			var args calculatorArgs
			if err := json.Unmarshal(raw, &args); err != nil {
				return nil, server.InvalidParametersError("decode calculator arguments: %s", err)
			}

			switch args.Operation {
			case "add":
				return args.X + args.Y, nil
			case "subtract":
				return args.X - args.Y, nil
			case "multiply":
				return args.X * args.Y, nil
			case "divide":
				if args.Y == 0 {
					return nil, server.ExecutionError("Division by zero")
				}
				return args.X / args.Y, nil
			default:
				return nil, server.InvalidParametersError("Unknown operation: %s", args.Operation)
			}
		},
	}
}
