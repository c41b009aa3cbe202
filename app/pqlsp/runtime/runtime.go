package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/lexcodex/pqlsp/framework/ast"
	"github.com/lexcodex/pqlsp/framework/inspection"
	"github.com/lexcodex/pqlsp/framework/library"
	"github.com/lexcodex/pqlsp/internal/config"
	"github.com/lexcodex/pqlsp/server"
	"github.com/lexcodex/pqlsp/tools"
)

// Version is reported to LSP and MCP clients.
var Version = "0.1.0"

// Runtime wires configuration into the parser, inspector, signature library
// and logger shared by every entry point.
type Runtime struct {
	Config    config.Config
	Parsers   *ast.ParserRegistry
	Inspector inspection.Inspector
	Library   library.Library
	Store     *library.SQLiteStore
	Logger    *log.Logger

	closers []io.Closer
}

// New builds a runtime. Logs go to cfg.LogPath, or to stderr when it is
// empty; stdout is left to the protocol.
func New(cfg config.Config) (*Runtime, error) {
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	rt := &Runtime{Config: cfg, Parsers: ast.NewParserRegistry()}
	logger, err := rt.openLog()
	if err != nil {
		return nil, err
	}
	rt.Logger = logger

	if cfg.Parser.Command != "" {
		parser := &tools.ProcessParser{
			LanguageID:  cfg.Language,
			Command:     cfg.Parser.Command,
			ParseArgs:   cfg.Parser.ParseArgs,
			InspectArgs: cfg.Parser.InspectArgs,
			Workdir:     cfg.Workspace,
			Timeout:     cfg.Parser.Timeout,
		}
		rt.Parsers.Register(parser)
		rt.Inspector = parser
	} else {
		logger.Printf("no parser command configured; document requests will return no results")
	}

	var chain library.Chain
	if cfg.Library.YAML != "" {
		lib, err := library.LoadYAML(cfg.Library.YAML)
		switch {
		case err == nil:
			chain = append(chain, lib)
		case errors.Is(err, os.ErrNotExist):
			logger.Printf("library catalogue %s not found", cfg.Library.YAML)
		default:
			rt.Close()
			return nil, fmt.Errorf("load library: %w", err)
		}
	}
	if cfg.Library.SQLite != "" {
		store, err := rt.OpenStore()
		if err != nil {
			rt.Close()
			return nil, err
		}
		chain = append(chain, store)
	}
	rt.Library = chain
	return rt, nil
}

func (rt *Runtime) openLog() (*log.Logger, error) {
	const flags = log.LstdFlags | log.Lmicroseconds
	if rt.Config.LogPath == "" {
		return log.New(os.Stderr, "pqlsp ", flags), nil
	}
	if err := os.MkdirAll(filepath.Dir(rt.Config.LogPath), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	logFile, err := os.OpenFile(rt.Config.LogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	rt.closers = append(rt.closers, logFile)
	return log.New(logFile, "pqlsp ", flags), nil
}

// OpenStore opens the configured SQLite library, reusing an open handle.
func (rt *Runtime) OpenStore() (*library.SQLiteStore, error) {
	if rt.Store != nil {
		return rt.Store, nil
	}
	if rt.Config.Library.SQLite == "" {
		return nil, errors.New("library.sqlite not configured")
	}
	if err := os.MkdirAll(filepath.Dir(rt.Config.Library.SQLite), 0o755); err != nil {
		return nil, fmt.Errorf("create library directory: %w", err)
	}
	store, err := library.NewSQLiteStore(rt.Config.Library.SQLite)
	if err != nil {
		return nil, fmt.Errorf("open library %s: %w", rt.Config.Library.SQLite, err)
	}
	rt.Store = store
	rt.closers = append(rt.closers, store)
	return store, nil
}

// LSPServer builds the stdio language server.
func (rt *Runtime) LSPServer() *server.LSPServer {
	srv := server.NewLSPServer(rt.Parsers, rt.Inspector, rt.Library, rt.Logger)
	srv.Version = Version
	return srv
}

// APIServer builds the HTTP API.
func (rt *Runtime) APIServer() *server.APIServer {
	return &server.APIServer{Library: rt.Library, Logger: rt.Logger}
}

// MCPServer builds the MCP tool server.
func (rt *Runtime) MCPServer() *mcpserver.MCPServer {
	return server.NewMCPServer(&server.MCPHandler{Library: rt.Library}, Version)
}

// ImportCatalogue copies a YAML catalogue into the SQLite library and returns
// the number of signatures written.
func (rt *Runtime) ImportCatalogue(ctx context.Context, path string) (int, error) {
	lib, err := library.LoadYAML(path)
	if err != nil {
		return 0, err
	}
	store, err := rt.OpenStore()
	if err != nil {
		return 0, err
	}
	sigs := lib.Signatures()
	if err := store.SaveSignatures(ctx, sigs); err != nil {
		return 0, fmt.Errorf("save signatures: %w", err)
	}
	rt.Logger.Printf("imported %d signatures from %s", len(sigs), path)
	return len(sigs), nil
}

// Close releases log files and database handles, newest first.
func (rt *Runtime) Close() error {
	var errs []error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	rt.closers = nil
	rt.Store = nil
	return errors.Join(errs...)
}
