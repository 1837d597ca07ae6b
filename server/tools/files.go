package tools

import (
	"context"
	"encoding/json"

	"github.com/dhamidi/mcpgo/mcpcontext"
	"github.com/dhamidi/mcpgo/server"
	"github.com/spf13/afero"
	"google.golang.org/genai"
)

type writeFileArgs struct {
	Path     string `json:"path"`
	Contents string `json:"contents"`
}

// WriteFile writes a file through the afero.Fs injected via ctx, mirroring
// codegen's test-vs-prod split (afero.NewMemMapFs in tests,
// afero.NewOsFs in production).
func WriteFile() *server.ToolDescriptor {
	return &server.ToolDescriptor{
		Name:        "write_file",
		Description: "Write a file to the server's filesystem",
		Schema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"path":     {Type: genai.TypeString, Description: "Destination path, relative to the server's working directory"},
				"contents": {Type: genai.TypeString, Description: "File contents"},
			},
			Required: []string{"path", "contents"},
		},
		Handler: func(ctx context.Context, shared *mcpcontext.Context, raw json.RawMessage) (any, error) {
			var args writeFileArgs
			if err := json.Unmarshal(raw, &args); err != nil {
				return nil, server.InvalidParametersError("decode write_file arguments: %s", err)
			}

			fs := mcpcontext.MustGet[afero.Fs](shared)
			if err := afero.WriteFile(*fs.Get(), args.Path, []byte(args.Contents), 0644); err != nil {
				return nil, server.ExecutionError("%s", err)
			}
			return args.Path, nil
		},
	}
}

type readFileArgs struct {
	Path string `json:"path"`
}

// ReadFile reads a file back through the injected afero.Fs.
func ReadFile() *server.ToolDescriptor {
	return &server.ToolDescriptor{
		Name:        "read_file",
		Description: "Read a file from the server's filesystem",
		Schema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"path": {Type: genai.TypeString, Description: "Path to read, relative to the server's working directory"},
			},
			Required: []string{"path"},
		},
		Handler: func(ctx context.Context, shared *mcpcontext.Context, raw json.RawMessage) (any, error) {
			var args readFileArgs
			if err := json.Unmarshal(raw, &args); err != nil {
				return nil, server.InvalidParametersError("decode read_file arguments: %s", err)
			}

			fs := mcpcontext.MustGet[afero.Fs](shared)
			data, err := afero.ReadFile(*fs.Get(), args.Path)
			if err != nil {
				return nil, server.ExecutionError("%s", err)
			}
			return string(data), nil
		},
	}
}
