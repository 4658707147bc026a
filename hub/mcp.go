package hub

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RegisterMCP registers the hub's tools on an MCP server, giving assistant
// runtimes the same read surface as the HTTP API.
func (s *Service) RegisterMCP(srv *mcp.Server) {
	s.registerContextTool(srv)
	s.registerCacheStatusTool(srv)
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func toolError(err error) *mcp.CallToolResult {
	var res mcp.CallToolResult
	res.SetError(err)
	return &res
}

func toolJSON(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return toolError(fmt.Errorf("marshal: %w", err)), nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, nil
}

// --- get_context ---

type contextReq struct {
	Lang string `json:"lang"`
}

func (s *Service) registerContextTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "sitekb_get_context",
		Description: "Fetch the assembled site knowledge base, Q&A pairs and system prompt for a language.",
		InputSchema: inputSchema(map[string]any{
			"lang": map[string]any{"type": "string", "description": "Language code; falls back to the default language"},
		}, nil),
	}

	srv.AddTool(tool, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var r contextReq
		if len(req.Params.Arguments) > 0 {
			if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
				return toolError(fmt.Errorf("invalid arguments: %w", err)), nil
			}
		}
		if r.Lang == "" {
			r.Lang = s.cfg.DefaultLang()
		}

		cx, err := s.GetContext(ctx, r.Lang)
		if err != nil {
			return toolError(err), nil
		}
		return toolJSON(cx)
	})
}

// --- cache_status ---

func (s *Service) registerCacheStatusTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "sitekb_cache_status",
		Description: "Report which languages currently hold a published content-cache entry.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}

	srv.AddTool(tool, func(ctx context.Context, _ *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		status, err := s.Status(ctx)
		if err != nil {
			return toolError(err), nil
		}
		return toolJSON(map[string]any{
			"cached":    len(status) > 0,
			"languages": status,
		})
	})
}
