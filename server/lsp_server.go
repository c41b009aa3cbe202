package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"unicode/utf16"

	"github.com/sourcegraph/jsonrpc2"
	"go.lsp.dev/protocol"

	"github.com/lexcodex/pqlsp/framework/ast"
	"github.com/lexcodex/pqlsp/framework/inspection"
	"github.com/lexcodex/pqlsp/framework/library"
)

// ErrDocumentNotFound is returned for requests against a URI that was never
// opened (or was already closed).
var ErrDocumentNotFound = errors.New("document not open")

const serverName = "pqlsp"

// LSPServer answers documentSymbol and signatureHelp requests for open
// documents. Parsing and scope inspection are delegated.
type LSPServer struct {
	Parsers   *ast.ParserRegistry
	Inspector inspection.Inspector
	Library   library.Library
	Languages *ast.LanguageDetector
	Version   string

	mu            sync.RWMutex
	openDocuments map[protocol.DocumentURI]*Document
	shuttingDown  bool
	logger        *log.Logger
}

// Document tracks open files from the editor.
type Document struct {
	URI        protocol.DocumentURI
	LanguageID string
	Version    int32
	Text       string
}

// NewLSPServer builds a server instance.
func NewLSPServer(parsers *ast.ParserRegistry, inspector inspection.Inspector, lib library.Library, logger *log.Logger) *LSPServer {
	if logger == nil {
		logger = log.Default()
	}
	if parsers == nil {
		parsers = ast.NewParserRegistry()
	}
	return &LSPServer{
		Parsers:       parsers,
		Inspector:     inspector,
		Library:       lib,
		Languages:     ast.NewLanguageDetector(),
		openDocuments: make(map[protocol.DocumentURI]*Document),
		logger:        logger,
	}
}

// ServeStream runs the server over rwc using LSP base-protocol framing until
// the peer disconnects, the client sends exit, or ctx is cancelled.
func (s *LSPServer) ServeStream(ctx context.Context, rwc io.ReadWriteCloser, opts ...jsonrpc2.ConnOpt) error {
	stream := jsonrpc2.NewBufferedStream(rwc, jsonrpc2.VSCodeObjectCodec{})
	opts = append([]jsonrpc2.ConnOpt{jsonrpc2.SetLogger(s.logger)}, opts...)
	conn := jsonrpc2.NewConn(ctx, stream, jsonrpc2.HandlerWithError(s.handle), opts...)
	select {
	case <-ctx.Done():
		conn.Close()
		return ctx.Err()
	case <-conn.DisconnectNotify():
		return nil
	}
}

func (s *LSPServer) handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (interface{}, error) {
	switch req.Method {
	case protocol.MethodInitialize:
		var params protocol.InitializeParams
		if err := unmarshalParams(req, &params); err != nil {
			return nil, err
		}
		return s.Initialize(ctx, &params)
	case protocol.MethodInitialized:
		s.logger.Printf("LSP client initialized")
		return nil, nil
	case protocol.MethodShutdown:
		return nil, s.Shutdown(ctx)
	case protocol.MethodExit:
		s.logger.Printf("LSP exit")
		conn.Close()
		return nil, nil
	case protocol.MethodTextDocumentDidOpen:
		var params protocol.DidOpenTextDocumentParams
		if err := unmarshalParams(req, &params); err != nil {
			return nil, err
		}
		return nil, s.DidOpen(ctx, &params)
	case protocol.MethodTextDocumentDidChange:
		var params protocol.DidChangeTextDocumentParams
		if err := unmarshalParams(req, &params); err != nil {
			return nil, err
		}
		return nil, s.DidChange(ctx, &params)
	case protocol.MethodTextDocumentDidClose:
		var params protocol.DidCloseTextDocumentParams
		if err := unmarshalParams(req, &params); err != nil {
			return nil, err
		}
		return nil, s.DidClose(ctx, &params)
	case protocol.MethodTextDocumentDocumentSymbol:
		var params protocol.DocumentSymbolParams
		if err := unmarshalParams(req, &params); err != nil {
			return nil, err
		}
		symbols, err := s.DocumentSymbol(ctx, &params)
		return symbols, asRPCError(err)
	case protocol.MethodTextDocumentSignatureHelp:
		var params protocol.SignatureHelpParams
		if err := unmarshalParams(req, &params); err != nil {
			return nil, err
		}
		help, err := s.SignatureHelp(ctx, &params)
		return help, asRPCError(err)
	}
	if req.Notif {
		return nil, nil
	}
	return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeMethodNotFound, Message: fmt.Sprintf("method %q not supported", req.Method)}
}

func unmarshalParams(req *jsonrpc2.Request, v interface{}) error {
	if req.Params == nil {
		return &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: req.Method + ": missing params"}
	}
	if err := json.Unmarshal(*req.Params, v); err != nil {
		return &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: fmt.Sprintf("%s: %v", req.Method, err)}
	}
	return nil
}

func asRPCError(err error) error {
	if err == nil {
		return nil
	}
	var rpcErr *jsonrpc2.Error
	if errors.As(err, &rpcErr) {
		return rpcErr
	}
	if errors.Is(err, ErrDocumentNotFound) {
		return &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: err.Error()}
	}
	return &jsonrpc2.Error{Code: jsonrpc2.CodeInternalError, Message: err.Error()}
}

// Initialize handles the LSP initialize request.
func (s *LSPServer) Initialize(_ context.Context, params *protocol.InitializeParams) (*protocol.InitializeResult, error) {
	client := "unknown client"
	if params != nil && params.ClientInfo != nil {
		client = params.ClientInfo.Name
	}
	s.logger.Printf("LSP initialize from %s", client)
	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: true,
				Change:    protocol.TextDocumentSyncKindFull,
			},
			DocumentSymbolProvider: true,
			SignatureHelpProvider: &protocol.SignatureHelpOptions{
				TriggerCharacters: []string{"(", ","},
			},
		},
		ServerInfo: &protocol.ServerInfo{Name: serverName, Version: s.Version},
	}, nil
}

// Shutdown marks the server as shutting down. Later document requests fail.
func (s *LSPServer) Shutdown(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shuttingDown = true
	return nil
}

// DidOpen stores document state.
func (s *LSPServer) DidOpen(_ context.Context, params *protocol.DidOpenTextDocumentParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	item := params.TextDocument
	s.openDocuments[item.URI] = &Document{
		URI:        item.URI,
		LanguageID: string(item.LanguageID),
		Version:    item.Version,
		Text:       item.Text,
	}
	return nil
}

// DidChange replaces document text. Only full-document sync is advertised,
// so the last change carries the whole text.
func (s *LSPServer) DidChange(_ context.Context, params *protocol.DidChangeTextDocumentParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.openDocuments[params.TextDocument.URI]
	if !ok {
		return fmt.Errorf("%s: %w", params.TextDocument.URI, ErrDocumentNotFound)
	}
	if n := len(params.ContentChanges); n > 0 {
		doc.Text = params.ContentChanges[n-1].Text
	}
	doc.Version = params.TextDocument.Version
	return nil
}

// DidClose drops document state.
func (s *LSPServer) DidClose(_ context.Context, params *protocol.DidCloseTextDocumentParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.openDocuments, params.TextDocument.URI)
	return nil
}

// DocumentSymbol parses the document and returns its outline.
func (s *LSPServer) DocumentSymbol(ctx context.Context, params *protocol.DocumentSymbolParams) ([]protocol.DocumentSymbol, error) {
	doc, err := s.document(params.TextDocument.URI)
	if err != nil {
		return nil, err
	}
	parser, ok := s.parserFor(doc)
	if !ok {
		s.logger.Printf("no parser registered for %q (%s)", doc.LanguageID, doc.URI)
		return []protocol.DocumentSymbol{}, nil
	}
	result, err := parser.Parse(ctx, doc.Text)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", doc.URI, err)
	}
	for _, perr := range result.Errors {
		s.logger.Printf("%s:%d:%d: %s", doc.URI, perr.Line, perr.Column, perr.Message)
	}
	return BuildOutline(result.Root), nil
}

// SignatureHelp inspects the scope at the cursor and renders the signature
// of the enclosing call, if any.
func (s *LSPServer) SignatureHelp(ctx context.Context, params *protocol.SignatureHelpParams) (*protocol.SignatureHelp, error) {
	doc, err := s.document(params.TextDocument.URI)
	if err != nil {
		return nil, err
	}
	if s.Inspector == nil {
		return nil, nil
	}
	inspected, err := s.Inspector.Inspect(ctx, doc.Text, PositionToTokenPosition(doc.Text, params.Position))
	if err != nil {
		return nil, fmt.Errorf("inspect %s: %w", doc.URI, err)
	}
	return BuildSignatureHelp(ctx, s.Library, inspected)
}

// parserFor prefers the client's languageId and falls back to the document
// extension.
func (s *LSPServer) parserFor(doc Document) (ast.Parser, bool) {
	if parser, ok := s.Parsers.GetParser(doc.LanguageID); ok {
		return parser, true
	}
	if s.Languages == nil {
		return nil, false
	}
	language, ok := s.Languages.Detect(string(doc.URI))
	if !ok {
		return nil, false
	}
	return s.Parsers.GetParser(language)
}

func (s *LSPServer) document(uri protocol.DocumentURI) (Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.shuttingDown {
		return Document{}, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidRequest, Message: "server is shutting down"}
	}
	doc, ok := s.openDocuments[uri]
	if !ok {
		return Document{}, fmt.Errorf("%s: %w", uri, ErrDocumentNotFound)
	}
	return *doc, nil
}

// PositionToTokenPosition maps an LSP position onto text, filling in the
// absolute UTF-16 code unit offset. Positions past the end of a line clamp
// to the line end, in both the line column and the offset.
func PositionToTokenPosition(text string, pos protocol.Position) ast.TokenPosition {
	tp := ast.TokenPosition{LineNumber: int(pos.Line), LineCodeUnit: int(pos.Character)}
	line, col, offset := 0, 0, 0
	for _, r := range text {
		if line == tp.LineNumber && (col >= tp.LineCodeUnit || r == '\n') {
			break
		}
		width := utf16.RuneLen(r)
		if width < 0 {
			width = 1
		}
		offset += width
		if r == '\n' {
			line++
			col = 0
			continue
		}
		if line == tp.LineNumber {
			col += width
		}
	}
	if line == tp.LineNumber && col < tp.LineCodeUnit {
		tp.LineCodeUnit = col
	}
	tp.CodeUnit = offset
	return tp
}
