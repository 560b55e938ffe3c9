package mcpserver

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// SwaggerSpec is the subset of a Swagger 2.0 document used to build tools.
type SwaggerSpec struct {
	BasePath    string                          `json:"basePath"`
	Paths       map[string]map[string]Operation `json:"paths"`
	Definitions map[string]json.RawMessage      `json:"definitions"`
}

// Operation represents a single API operation.
type Operation struct {
	Tags        []string                   `json:"tags"`
	Summary     string                     `json:"summary"`
	Description string                     `json:"description"`
	OperationID string                     `json:"operationId"`
	Parameters  []Parameter                `json:"parameters"`
	Responses   map[string]json.RawMessage `json:"responses"`
}

// Parameter represents an API parameter.
type Parameter struct {
	Name        string          `json:"name"`
	In          string          `json:"in"`
	Required    bool            `json:"required"`
	Type        string          `json:"type"`
	Description string          `json:"description"`
	Schema      json.RawMessage `json:"schema"`
	Enum        []any           `json:"enum"`
}

// ToolOperation holds the data needed to proxy a tool call.
type ToolOperation struct {
	Method     string
	Path       string // URL path template with {param} placeholders
	Parameters []Parameter
}

// ParseSpec parses a Swagger 2.0 JSON document.
func ParseSpec(data []byte) (*SwaggerSpec, error) {
	var spec SwaggerSpec
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parse swagger spec: %w", err)
	}
	if len(spec.Paths) == 0 {
		return nil, fmt.Errorf("parse swagger spec: no paths")
	}
	return &spec, nil
}

// BuildTools generates MCP tools grouped by the config's group definitions.
// Returns group name -> tools, and tool name -> operation for proxying.
// Operations whose first tag belongs to no group are skipped.
func BuildTools(spec *SwaggerSpec, cfg *Config, proxyFn func(op ToolOperation) server.ToolHandlerFunc) (map[string][]server.ServerTool, map[string]ToolOperation) {
	tagMap := cfg.tagToGroup()
	groups := make(map[string][]server.ServerTool)
	operations := make(map[string]ToolOperation)

	paths := make([]string, 0, len(spec.Paths))
	for path := range spec.Paths {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		for method, op := range spec.Paths[path] {
			method = strings.ToUpper(method)

			group := ""
			if len(op.Tags) > 0 {
				group = tagMap[op.Tags[0]]
			}
			if group == "" {
				continue
			}

			toolName := toolName(method, path, op)
			override, hasOverride := cfg.Overrides[toolName]
			if hasOverride && override.Name != "" {
				toolName = override.Name
			}

			desc := op.Description
			if desc == "" {
				desc = op.Summary
			}
			if hasOverride && override.Description != "" {
				desc = override.Description
			}

			toolOpts := []mcp.ToolOption{mcp.WithDescription(desc)}
			toolOpts = append(toolOpts, buildAnnotations(method, cfg, override, hasOverride)...)
			toolOpts = append(toolOpts, buildParams(op.Parameters)...)

			toolOp := ToolOperation{
				Method:     method,
				Path:       spec.BasePath + path,
				Parameters: op.Parameters,
			}
			groups[group] = append(groups[group], server.ServerTool{
				Tool:    mcp.NewTool(toolName, toolOpts...),
				Handler: proxyFn(toolOp),
			})
			operations[toolName] = toolOp
		}
	}

	for _, tools := range groups {
		sort.Slice(tools, func(i, j int) bool { return tools[i].Tool.Name < tools[j].Tool.Name })
	}

	return groups, operations
}

// buildAnnotations creates MCP annotation options from config defaults and overrides.
func buildAnnotations(method string, cfg *Config, override ToolOverride, hasOverride bool) []mcp.ToolOption {
	var opts []mcp.ToolOption

	defaults := cfg.Defaults[method]
	readOnly := defaults.ReadOnly
	destructive := defaults.Destructive
	idempotent := defaults.Idempotent

	if hasOverride {
		if override.ReadOnly != nil {
			readOnly = override.ReadOnly
		}
		if override.Destructive != nil {
			destructive = override.Destructive
		}
		if override.Idempotent != nil {
			idempotent = override.Idempotent
		}
	}

	if readOnly != nil {
		opts = append(opts, mcp.WithReadOnlyHintAnnotation(*readOnly))
	}
	if destructive != nil {
		opts = append(opts, mcp.WithDestructiveHintAnnotation(*destructive))
	}
	if idempotent != nil {
		opts = append(opts, mcp.WithIdempotentHintAnnotation(*idempotent))
	}

	return opts
}

// buildParams converts API parameters to MCP tool parameter options.
func buildParams(params []Parameter) []mcp.ToolOption {
	var opts []mcp.ToolOption

	for _, p := range params {
		switch p.In {
		case "path":
			opts = append(opts, mcp.WithString(p.Name, paramOpts(p)...))

		case "query":
			popts := paramOpts(p)
			switch p.Type {
			case "integer", "number":
				opts = append(opts, mcp.WithNumber(p.Name, popts...))
			case "boolean":
				opts = append(opts, mcp.WithBoolean(p.Name, popts...))
			default:
				opts = append(opts, mcp.WithString(p.Name, popts...))
			}

		case "body":
			// Body is passed as a single JSON string parameter
			bodyDesc := p.Description
			if bodyDesc == "" {
				bodyDesc = "Request body (JSON object)"
			}
			popts := []mcp.PropertyOption{mcp.Description(bodyDesc + " as a JSON object")}
			if p.Required {
				popts = append(popts, mcp.Required())
			}
			opts = append(opts, mcp.WithString("body", popts...))
		}
	}

	return opts
}

func paramOpts(p Parameter) []mcp.PropertyOption {
	desc := p.Description
	if desc == "" {
		desc = p.Name
	}
	opts := []mcp.PropertyOption{mcp.Description(desc)}

	if p.Required {
		opts = append(opts, mcp.Required())
	}

	if len(p.Enum) > 0 {
		var vals []string
		for _, v := range p.Enum {
			vals = append(vals, fmt.Sprintf("%v", v))
		}
		opts = append(opts, mcp.Enum(vals...))
	}

	return opts
}

// toolName prefers the operation ID and falls back to a name derived from
// method and path.
func toolName(method, path string, op Operation) string {
	if op.OperationID != "" {
		return snakeCase(op.OperationID)
	}
	return deriveName(method, path)
}

// deriveName generates a tool name from the HTTP method and path:
// GET /workflows -> list_workflows, GET /workflows/{id} -> get_workflow,
// POST /workflows/{id}/start -> start_workflow, POST /catalog/sync -> sync_catalog.
func deriveName(method, path string) string {
	parts := strings.Split(strings.TrimPrefix(path, "/"), "/")

	var resources []string
	for _, p := range parts {
		if p != "" && !strings.HasPrefix(p, "{") {
			resources = append(resources, strings.ReplaceAll(p, "-", "_"))
		}
	}
	if len(resources) == 0 {
		return strings.ToLower(method)
	}

	last := resources[len(resources)-1]
	endsWithParam := strings.HasPrefix(parts[len(parts)-1], "{")

	switch method {
	case "GET":
		if endsWithParam {
			return "get_" + singularize(last)
		}
		if len(resources) >= 2 && strings.HasPrefix(parts[len(parts)-2], "{") {
			return "get_" + singularize(resources[len(resources)-2]) + "_" + last
		}
		return "list_" + last
	case "POST":
		if len(resources) >= 2 {
			return last + "_" + singularize(resources[len(resources)-2])
		}
		return "create_" + singularize(last)
	case "DELETE":
		return "delete_" + singularize(last)
	}
	return strings.ToLower(method) + "_" + last
}

func singularize(s string) string {
	switch {
	case strings.HasSuffix(s, "ies"):
		return s[:len(s)-3] + "y"
	case strings.HasSuffix(s, "s") && !strings.HasSuffix(s, "ss"):
		return s[:len(s)-1]
	}
	return s
}

func snakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		if r == '-' {
			r = '_'
		}
		b.WriteRune(r)
	}
	return b.String()
}
