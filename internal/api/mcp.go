package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aarunima248/fake-news/internal/corrections"
	"github.com/aarunima248/fake-news/internal/engine"
	"github.com/aarunima248/fake-news/internal/pipeline"
	"github.com/aarunima248/fake-news/internal/session"
)

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Analyzer *pipeline.Analyzer
	Catalog  *corrections.Catalog
	Version  string
}

// NewMCPServer creates an MCP server exposing classification and correction
// lookup as tools, plus the correction catalog as a resource.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"fakenews",
		deps.Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("fakenews — local fake news detector. Classify news content as real or fake and look up corrections for known misinformation claims."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("classify_news",
			mcp.WithDescription("Classify a piece of news content as real or fake using the local model. Returns the verdict, a confidence percentage when the model supports one, and a correction if the content matches known misinformation."),
			mcp.WithString("content", mcp.Description("The news text to classify"), mcp.Required()),
			mcp.WithString("source", mcp.Description("Where the content came from: news_article, twitter, facebook, whatsapp or other")),
		),
		mcpClassifyNews(deps),
	)

	s.AddTool(
		mcp.NewTool("find_correction",
			mcp.WithDescription("Check content against the catalog of known misinformation claims and return the matching correction, if any."),
			mcp.WithString("content", mcp.Description("The text to check"), mcp.Required()),
		),
		mcpFindCorrection(deps),
	)

	s.AddResource(
		mcp.NewResource(
			"corrections://catalog",
			"Correction Catalog",
			mcp.WithResourceDescription("All known misinformation patterns and their corrections as JSON"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceCatalog(deps),
	)

	return s
}

func mcpClassifyNews(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		content, err := req.RequireString("content")
		if err != nil {
			return mcpError("content is required"), nil
		}
		source, err := session.ParseSource(req.GetString("source", ""))
		if err != nil {
			return mcpError(fmt.Sprintf("invalid source: %v", err)), nil
		}

		res, correction, err := deps.Analyzer.ClassifyOnly(ctx, content)
		if err != nil {
			return mcpError(fmt.Sprintf("classification failed: %v", err)), nil
		}

		out := struct {
			Verdict    engine.Verdict     `json:"verdict"`
			Confidence *float64           `json:"confidence"`
			Source     session.Source     `json:"source"`
			Correction *corrections.Entry `json:"correction,omitempty"`
		}{res.Verdict, res.Confidence, source, correction}
		b, err := json.Marshal(out)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal result: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpFindCorrection(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		content, err := req.RequireString("content")
		if err != nil {
			return mcpError("content is required"), nil
		}

		type findResult struct {
			Found      bool               `json:"found"`
			Correction *corrections.Entry `json:"correction,omitempty"`
		}
		out := findResult{}
		if entry, ok := deps.Catalog.Find(content); ok {
			out.Found = true
			out.Correction = &entry
		}

		b, err := json.Marshal(out)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal result: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpResourceCatalog(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		b, err := json.Marshal(deps.Catalog.Entries())
		if err != nil {
			return nil, fmt.Errorf("failed to marshal catalog: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
