package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// SDKServer wraps the official MCP SDK server.
//
// It keeps its own tool registry so tools can be invoked directly through
// CallTool as well as served over an MCP transport through Serve.
type SDKServer struct {
	name    string
	version string
	mu      sync.RWMutex
	tools   map[string]*sdkTool
}

// sdkTool holds tool metadata and handler for internal registry.
type sdkTool struct {
	tool    *mcp.Tool
	handler mcp.ToolHandler
	schema  *jsonschema.Resolved
}

// NewSDKServer creates a new MCP SDK server wrapper.
func NewSDKServer(name, version string) *SDKServer {
	return &SDKServer{
		name:    name,
		version: version,
		tools:   make(map[string]*sdkTool, 4),
	}
}

// AddTool registers a tool with the server. The tool's input schema must
// resolve; it is used to validate arguments passed to CallTool.
func (s *SDKServer) AddTool(tool *mcp.Tool, handler mcp.ToolHandler) error {
	entry := &sdkTool{tool: tool, handler: handler}

	var input any = tool.InputSchema
	if schema, ok := input.(*jsonschema.Schema); ok && schema != nil {
		resolved, err := schema.Resolve(nil)
		if err != nil {
			return fmt.Errorf("resolve input schema of %s: %w", tool.Name, err)
		}

		entry.schema = resolved
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.tools[tool.Name] = entry

	return nil
}

// Name returns the server name.
func (s *SDKServer) Name() string {
	return s.name
}

// Version returns the server version.
func (s *SDKServer) Version() string {
	return s.version
}

// ListTools returns all registered tools sorted by name.
func (s *SDKServer) ListTools() []*mcp.Tool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*mcp.Tool, 0, len(s.tools))
	for _, t := range s.tools {
		result = append(result, t.tool)
	}

	slices.SortFunc(result, func(a, b *mcp.Tool) int {
		return strings.Compare(a.Name, b.Name)
	})

	return result
}

// CallTool executes a tool by name with the given input.
//
// Unknown tools, invalid arguments and handler failures are reported as an
// error result rather than an error, as an MCP client would see them.
func (s *SDKServer) CallTool(ctx context.Context, name string, input map[string]any) (*mcp.CallToolResult, error) {
	s.mu.RLock()
	t, exists := s.tools[name]
	s.mu.RUnlock()

	if !exists {
		return ErrorResult("Tool not found: " + name), nil
	}

	if input == nil {
		input = map[string]any{}
	}

	if t.schema != nil {
		if err := t.schema.Validate(input); err != nil {
			return ErrorResult("Invalid arguments: " + err.Error()), nil
		}
	}

	inputBytes, err := json.Marshal(input)
	if err != nil {
		//nolint:nilerr // Intentionally return nil error - error is encoded in the result
		return ErrorResult("Failed to marshal input: " + err.Error()), nil
	}

	req := &mcp.CallToolRequest{
		Params: &mcp.CallToolParamsRaw{
			Name:      name,
			Arguments: inputBytes,
		},
	}

	result, err := t.handler(ctx, req)
	if err != nil {
		//nolint:nilerr // Intentionally return nil error - error is encoded in the result
		return ErrorResult("Tool execution failed: " + err.Error()), nil
	}

	if result == nil {
		result = &mcp.CallToolResult{Content: []mcp.Content{}}
	}

	return result, nil
}

// Server builds an SDK server exposing every registered tool.
func (s *SDKServer) Server() *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: s.name, Version: s.version}, nil)

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.tools {
		server.AddTool(t.tool, t.handler)
	}

	return server
}

// Serve runs the server on transport until the client disconnects or ctx is
// cancelled.
func (s *SDKServer) Serve(ctx context.Context, transport mcp.Transport) error {
	return s.Server().Run(ctx, transport)
}

// ObjectSchema creates an object schema whose properties are all strings.
// Only the names listed in required must be present.
func ObjectSchema(descriptions map[string]string, required ...string) *jsonschema.Schema {
	properties := make(map[string]*jsonschema.Schema, len(descriptions))

	for name, description := range descriptions {
		properties[name] = &jsonschema.Schema{Type: "string", Description: description}
	}

	return &jsonschema.Schema{
		Type:       "object",
		Properties: properties,
		Required:   required,
	}
}

// TextResult creates a CallToolResult with text content.
func TextResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

// ErrorResult creates a CallToolResult indicating an error.
func ErrorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: message},
		},
		IsError: true,
	}
}

// ResultText joins the text content of a result.
func ResultText(result *mcp.CallToolResult) string {
	if result == nil {
		return ""
	}

	parts := make([]string, 0, len(result.Content))

	for _, c := range result.Content {
		if text, ok := c.(*mcp.TextContent); ok {
			parts = append(parts, text.Text)
		}
	}

	return strings.Join(parts, "\n")
}

// NewTool creates an mcp.Tool with the given parameters.
func NewTool(name, description string, inputSchema *jsonschema.Schema) *mcp.Tool {
	return &mcp.Tool{
		Name:        name,
		Description: description,
		InputSchema: inputSchema,
	}
}

// ParseArguments unmarshals CallToolRequest arguments into a map.
func ParseArguments(req *mcp.CallToolRequest) (map[string]any, error) {
	if req == nil || req.Params == nil {
		return make(map[string]any), nil
	}

	if len(req.Params.Arguments) == 0 {
		return make(map[string]any), nil
	}

	var args map[string]any
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return nil, fmt.Errorf("failed to unmarshal arguments: %w", err)
	}

	return args, nil
}
