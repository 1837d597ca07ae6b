package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/dhamidi/mcpgo/mcpcontext"
	"github.com/dhamidi/mcpgo/protocol"
	"google.golang.org/genai"
)

// Content is one element of a tool call's result, per the MCP content
// block shape: currently only the "text" variant is produced by the value
// coercion rules in coerceResult.
type Content struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

func textContent(s string) Content { return Content{Type: "text", Text: s} }

// ToolHandler is the function a tool registers to serve tools/call. args is
// the raw "arguments" object from the request; shared gives access to the
// state injected via mcpcontext. The returned value is coerced into
// Content blocks by coerceResult.
type ToolHandler func(ctx context.Context, shared *mcpcontext.Context, args json.RawMessage) (any, error)

// ToolDescriptor is a tool as advertised by tools/list and invoked by
// tools/call. Schema follows the teacher's genai.Schema representation of a
// tool's JSON Schema parameters (see genai_schema_adapter.go).
type ToolDescriptor struct {
	Name        string
	Description string
	Schema      *genai.Schema
	Handler     ToolHandler
}

// Builder assembles an MCPServer: its name/description, its registered
// tools, and the shared state its tools can request by type.
type Builder struct {
	name        string
	description string
	tools       map[string]*ToolDescriptor
	ctxBuilder  *mcpcontext.Builder
}

// NewBuilder starts a server under construction.
func NewBuilder(name, description string) *Builder {
	return &Builder{
		name:        name,
		description: description,
		tools:       make(map[string]*ToolDescriptor),
		ctxBuilder:  mcpcontext.NewBuilder(),
	}
}

// WithTool registers a tool. Registering a second tool under a name already
// in use overwrites the first, matching the teacher's ToolBox.Add.
func (b *Builder) WithTool(desc *ToolDescriptor) *Builder {
	b.tools[desc.Name] = desc
	return b
}

// WithState inserts a piece of shared state tools can request by type. It
// is a free function, not a method, because Go methods cannot carry their
// own type parameters.
func WithState[T any](b *Builder, value T) *Builder {
	mcpcontext.Insert(b.ctxBuilder, mcpcontext.NewShared(value))
	return b
}

// Build freezes the registered tools and shared state into an MCPServer.
func (b *Builder) Build() *MCPServer {
	return &MCPServer{
		name:        b.name,
		description: b.description,
		tools:       b.tools,
		shared:      b.ctxBuilder.Build(),
	}
}

// MCPServer routes tools/list and tools/call requests to the registered
// tool handlers. It implements Service, so it plugs directly into the
// request loop in server.go.
type MCPServer struct {
	name        string
	description string
	tools       map[string]*ToolDescriptor
	shared      *mcpcontext.Context
}

type toolSummary struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	InputSchema *genai.Schema `json:"inputSchema,omitempty"`
}

// toolsCapability mirrors the original CapabilitiesBuilder's with_tools
// flag: present only when the server has at least one tool registered.
type toolsCapability struct {
	ListChanged bool `json:"listChanged"`
}

// serverCapabilities is the subset of ServerCapabilities this server can
// truthfully advertise. Resources and prompts are omitted rather than set
// to false, matching how CapabilitiesBuilder.with_resources(false, false)
// and with_prompts(false) end up absent from a real client's view.
type serverCapabilities struct {
	Tools *toolsCapability `json:"tools,omitempty"`
}

type serverInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type initializeResult struct {
	ProtocolVersion string             `json:"protocolVersion"`
	Capabilities    serverCapabilities `json:"capabilities"`
	ServerInfo      serverInfo         `json:"serverInfo"`
	Instructions    string             `json:"instructions,omitempty"`
}

const protocolVersion = "2024-11-05"

// Call implements Service. msg is always a *protocol.Request; the request
// loop dispatches notifications without calling the service.
func (s *MCPServer) Call(ctx context.Context, msg protocol.SendableMessage) (*protocol.Response, error) {
	req, ok := msg.(*protocol.Request)
	if !ok {
		return nil, nil
	}

	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(ctx, req)
	default:
		return protocol.NewError(req.ID, protocol.ErrCodeMethodNotFound, fmt.Sprintf("method not found: %s", req.Method)), nil
	}
}

// handleInitialize advertises this server's capabilities the way
// CapabilitiesBuilder does: tools present whenever any tool is registered,
// resources and prompts always absent.
func (s *MCPServer) handleInitialize(req *protocol.Request) (*protocol.Response, error) {
	var caps serverCapabilities
	if len(s.tools) > 0 {
		caps.Tools = &toolsCapability{}
	}

	result := initializeResult{
		ProtocolVersion: protocolVersion,
		Capabilities:    caps,
		ServerInfo:      serverInfo{Name: s.name, Version: "0.1.0"},
		Instructions:    s.description,
	}

	resp, err := protocol.NewSuccess(req.ID, result)
	if err != nil {
		return nil, fmt.Errorf("server: encode initialize result: %w", err)
	}
	return resp, nil
}

func (s *MCPServer) handleToolsList(req *protocol.Request) (*protocol.Response, error) {
	summaries := make([]toolSummary, 0, len(s.tools))
	for _, t := range s.tools {
		summaries = append(summaries, toolSummary{Name: t.Name, Description: t.Description, InputSchema: t.Schema})
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Name < summaries[j].Name })

	resp, err := protocol.NewSuccess(req.ID, summaries)
	if err != nil {
		return nil, fmt.Errorf("server: encode tools/list result: %w", err)
	}
	return resp, nil
}

type toolCallParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

func (s *MCPServer) handleToolsCall(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
	var params toolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return protocol.NewError(req.ID, protocol.ErrCodeInvalidParams, fmt.Sprintf("invalid tools/call params: %s", err)), nil
	}

	tool, found := s.tools[params.Name]
	if !found {
		return protocol.NewError(req.ID, protocol.ErrCodeMethodNotFound, fmt.Sprintf("unknown tool: %s", params.Name)), nil
	}

	result, err := tool.Handler(ctx, s.shared, params.Arguments)
	if err != nil {
		var toolErr *ToolError
		if ok := asToolError(err, &toolErr); ok {
			return protocol.NewError(req.ID, toolErr.Code, toolErr.Message), nil
		}
		return protocol.NewError(req.ID, protocol.ErrCodeInternalError, err.Error()), nil
	}

	contents, coerceErr := coerceResult(result)
	if coerceErr != nil {
		return protocol.NewError(req.ID, protocol.ErrCodeInternalError, coerceErr.Error()), nil
	}

	resp, err := protocol.NewSuccess(req.ID, contents)
	if err != nil {
		return nil, fmt.Errorf("server: encode tools/call result: %w", err)
	}
	return resp, nil
}

func asToolError(err error, target **ToolError) bool {
	return errors.As(err, target)
}

// coerceResult turns a tool handler's return value into the MCP content
// sequence, following the JSON-value coercion table from spec §4.H:
// numbers/strings/bools become a single text block, null becomes no
// content, arrays/objects are themselves decoded as a content sequence, and
// anything else is an execution error.
func coerceResult(result any) ([]Content, error) {
	raw, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("marshal tool result: %w", err)
	}

	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("decode tool result: %w", err)
	}

	switch v := generic.(type) {
	case nil:
		return []Content{}, nil
	case string:
		return []Content{textContent(v)}, nil
	case bool:
		return []Content{textContent(strconv.FormatBool(v))}, nil
	case float64:
		return []Content{textContent(formatNumber(v))}, nil
	case []any, map[string]any:
		var contents []Content
		if err := json.Unmarshal(raw, &contents); err != nil {
			return nil, fmt.Errorf("tool result is not a content sequence: %w", err)
		}
		return contents, nil
	default:
		return nil, fmt.Errorf("unsupported tool result type %T", generic)
	}
}

func formatNumber(v float64) string {
	if v == math.Trunc(v) && !math.IsInf(v, 0) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
