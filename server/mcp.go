package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/lexcodex/pqlsp/framework/ast"
	"github.com/lexcodex/pqlsp/framework/inspection"
	"github.com/lexcodex/pqlsp/framework/langsvc"
	"github.com/lexcodex/pqlsp/framework/library"
)

// MCPHandler adapts MCP tool calls onto the language services.
type MCPHandler struct {
	Library library.Library
}

// NewMCPServer registers the language-service tools on a new MCP server.
func NewMCPServer(handler *MCPHandler, version string) *mcpserver.MCPServer {
	s := mcpserver.NewMCPServer(
		serverName,
		version,
		mcpserver.WithToolCapabilities(false),
	)

	s.AddTool(mcp.NewTool("document_symbols",
		mcp.WithDescription("Lists the top-level bindings of a parsed document (section members or let variables) with their symbol kinds and ranges."),
		mcp.WithString("syntax_tree",
			mcp.Required(),
			mcp.Description("JSON syntax tree of the document root"),
		),
	), handler.HandleDocumentSymbols)

	s.AddTool(mcp.NewTool("document_outline",
		mcp.WithDescription("Builds the nested document outline, descending into let and record values."),
		mcp.WithString("syntax_tree",
			mcp.Required(),
			mcp.Description("JSON syntax tree of the document root"),
		),
	), handler.HandleDocumentOutline)

	s.AddTool(mcp.NewTool("signature_context",
		mcp.WithDescription("Resolves the function call enclosing a cursor and the argument the cursor is in."),
		mcp.WithString("inspection",
			mcp.Required(),
			mcp.Description(`JSON inspection result {"nodes": [...]}, innermost node first`),
		),
	), handler.HandleSignatureContext)

	return s
}

// HandleDocumentSymbols serves the document_symbols tool.
func (h *MCPHandler) HandleDocumentSymbols(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	root, errResult := treeArgument(req)
	if errResult != nil {
		return errResult, nil
	}
	symbols := []langsvc.DocumentSymbol{}
	if container, ok := RootContainer(root); ok {
		symbols = langsvc.SymbolsForContainer(container)
	}
	return jsonResult(symbols)
}

// HandleDocumentOutline serves the document_outline tool.
func (h *MCPHandler) HandleDocumentOutline(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	root, errResult := treeArgument(req)
	if errResult != nil {
		return errResult, nil
	}
	return jsonResult(BuildOutline(root))
}

// HandleSignatureContext serves the signature_context tool.
func (h *MCPHandler) HandleSignatureContext(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("inspection")
	if err != nil {
		return mcp.NewToolResultError("inspection is required"), nil
	}
	inspected, err := inspection.Decode([]byte(raw))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid inspection: %v", err)), nil
	}
	sc, ok := langsvc.ResolveInvocationContext(inspected)
	if !ok {
		return mcp.NewToolResultText("no active invocation"), nil
	}
	resp := SignatureResponse{Context: sc}
	if h.Library != nil {
		sig, err := h.Library.Lookup(ctx, sc.FunctionName)
		switch {
		case err == nil:
			resp.Signature = sig
		case !errors.Is(err, library.ErrNotFound):
			return mcp.NewToolResultError(fmt.Sprintf("library lookup failed: %v", err)), nil
		}
	}
	return jsonResult(resp)
}

func treeArgument(req mcp.CallToolRequest) (ast.Node, *mcp.CallToolResult) {
	raw, err := req.RequireString("syntax_tree")
	if err != nil {
		return nil, mcp.NewToolResultError("syntax_tree is required")
	}
	root, err := ast.Decode([]byte(raw))
	if err != nil {
		return nil, mcp.NewToolResultError(fmt.Sprintf("invalid syntax_tree: %v", err))
	}
	return root, nil
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}
