package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/lexcodex/pqlsp/framework/ast"
	"github.com/lexcodex/pqlsp/framework/inspection"
	"github.com/lexcodex/pqlsp/framework/langsvc"
	"github.com/lexcodex/pqlsp/framework/library"
)

const maxRequestBody = 16 << 20

// APIServer exposes the language services over HTTP for tooling that has
// already parsed a document.
type APIServer struct {
	Library library.Library
	Logger  *log.Logger
}

// SignatureResponse is the /api/signature payload. Signature is filled in
// when the library knows the callee.
type SignatureResponse struct {
	Context   langsvc.SignatureContext   `json:"context"`
	Signature *library.FunctionSignature `json:"signature,omitempty"`
}

// Serve starts listening on the provided address.
func (s *APIServer) Serve(addr string) error {
	return s.ServeContext(context.Background(), addr)
}

// ServeContext allows the caller to control shutdown via context cancellation.
func (s *APIServer) ServeContext(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()
	s.logf("API listening on %s", addr)
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// Handler returns the API routes.
func (s *APIServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/symbols", s.handleSymbols)
	mux.HandleFunc("/api/outline", s.handleOutline)
	mux.HandleFunc("/api/signature", s.handleSignature)
	return mux
}

func (s *APIServer) handleSymbols(w http.ResponseWriter, r *http.Request) {
	root, ok := s.readTree(w, r)
	if !ok {
		return
	}
	container, ok := RootContainer(root)
	if !ok {
		writeJSON(w, []langsvc.DocumentSymbol{})
		return
	}
	writeJSON(w, langsvc.SymbolsForContainer(container))
}

func (s *APIServer) handleOutline(w http.ResponseWriter, r *http.Request) {
	root, ok := s.readTree(w, r)
	if !ok {
		return
	}
	writeJSON(w, BuildOutline(root))
}

func (s *APIServer) handleSignature(w http.ResponseWriter, r *http.Request) {
	body, ok := readPOST(w, r)
	if !ok {
		return
	}
	inspected, err := inspection.Decode(body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	sc, present := langsvc.ResolveInvocationContext(inspected)
	if !present {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	resp := SignatureResponse{Context: sc}
	if s.Library != nil {
		sig, err := s.Library.Lookup(r.Context(), sc.FunctionName)
		switch {
		case err == nil:
			resp.Signature = sig
		case !errors.Is(err, library.ErrNotFound):
			s.logf("library lookup %s: %v", sc.FunctionName, err)
		}
	}
	writeJSON(w, resp)
}

func (s *APIServer) readTree(w http.ResponseWriter, r *http.Request) (ast.Node, bool) {
	body, ok := readPOST(w, r)
	if !ok {
		return nil, false
	}
	root, err := ast.Decode(body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}
	return root, true
}

func readPOST(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return nil, false
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}
	return body, true
}

func (s *APIServer) logf(format string, args ...interface{}) {
	if s.Logger != nil {
		s.Logger.Printf(format, args...)
	}
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
