package mcpserver

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
)

// proxyTimeout covers a provision call, which clones in the engine.
const proxyTimeout = 90 * time.Second

// ProxyHandler creates MCP tool handlers that proxy to the REST API.
type ProxyHandler struct {
	apiURL string
	client *http.Client
	logger zerolog.Logger
}

func NewProxyHandler(apiURL string, logger zerolog.Logger) *ProxyHandler {
	return &ProxyHandler{
		apiURL: strings.TrimRight(apiURL, "/"),
		client: &http.Client{Timeout: proxyTimeout},
		logger: logger,
	}
}

// Handler returns an MCP tool handler for op. The caller's bearer token from
// the MCP session is forwarded unchanged; the API does all authorization.
func (p *ProxyHandler) Handler(op ToolOperation) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := req.GetArguments()

		path := op.Path
		query := url.Values{}
		for _, param := range op.Parameters {
			val, ok := args[param.Name]
			switch param.In {
			case "path":
				if !ok || fmt.Sprintf("%v", val) == "" {
					return mcp.NewToolResultError(fmt.Sprintf("missing required path parameter: %s", param.Name)), nil
				}
				path = strings.ReplaceAll(path, "{"+param.Name+"}", url.PathEscape(fmt.Sprintf("%v", val)))
			case "query":
				if ok && val != nil && fmt.Sprintf("%v", val) != "" {
					query.Set(param.Name, fmt.Sprintf("%v", val))
				}
			}
		}

		target := p.apiURL + path
		if len(query) > 0 {
			target += "?" + query.Encode()
		}

		var bodyReader io.Reader
		if body, ok := args["body"]; ok && body != nil {
			if bodyStr := fmt.Sprintf("%v", body); bodyStr != "" {
				bodyReader = strings.NewReader(bodyStr)
			}
		}

		httpReq, err := http.NewRequestWithContext(ctx, op.Method, target, bodyReader)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("build request: %s", err)), nil
		}
		if bodyReader != nil {
			httpReq.Header.Set("Content-Type", "application/json")
		}
		if auth := req.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
			httpReq.Header.Set("Authorization", auth)
		}

		p.logger.Debug().
			Str("method", op.Method).
			Str("url", target).
			Str("tool", req.Params.Name).
			Msg("proxying MCP tool call")

		resp, err := p.client.Do(httpReq)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("API request failed: %s", err)), nil
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("read response: %s", err)), nil
		}

		if resp.StatusCode >= 400 {
			msg := fmt.Sprintf("HTTP %d: %s", resp.StatusCode, string(respBody))
			if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
				msg += fmt.Sprintf(" (retry after %ss)", retryAfter)
			}
			return mcp.NewToolResultError(msg), nil
		}

		if resp.StatusCode == http.StatusNoContent {
			return mcp.NewToolResultText(`{"status":"success"}`), nil
		}

		return mcp.NewToolResultText(string(respBody)), nil
	}
}
