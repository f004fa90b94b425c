// Package lspserver implements a Language Server Protocol handler for the
// gradient-compiler's surface language, grounded on
// kanso/internal/lsp.KansoHandler: the same "construct handler, wire
// protocol.Handler fields to its methods, track open documents under a
// mutex" shape (here only the set of open URIs is tracked), generalized from Kanso's AST-caching handler
// (which additionally serves completions and semantic tokens for a
// keyword-rich contract grammar) to a compile-and-publish-diagnostics-only
// handler, since the surface language is a small expression grammar with
// nothing worth classifying as semantic tokens.
package lspserver

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"gradx/internal/builtins"
)

// Handler implements the LSP methods this server supports: lifecycle
// (Initialize/Initialized/Shutdown) and document sync
// (didOpen/didChange/didClose), recompiling on every open or change and
// publishing the result as diagnostics. Like
// kanso/internal/lsp.KansoHandler.updateAST, it re-reads the document
// from disk on every notification rather than tracking edits against
// DidChangeTextDocumentParams.ContentChanges — editors write the buffer
// to disk (or send full-document sync, per TextDocumentSyncKindFull
// below) well before the next notification fires.
type Handler struct {
	mu      sync.RWMutex
	tracked map[string]bool
	reg     *builtins.Registry
}

// NewHandler returns a Handler with a fresh builtins registry shared
// across every compile this server runs — built once, like
// kanso-cli/kanso-lsp's own main.go builds its parser/handler once.
func NewHandler() *Handler {
	return &Handler{
		tracked: make(map[string]bool),
		reg:     builtins.NewRegistry(),
	}
}

func (h *Handler) Initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	log.Println("gradx-lsp: Initialize called")
	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: ptrBool(true),
				Change:    ptrSyncKind(protocol.TextDocumentSyncKindFull),
			},
		},
	}, nil
}

func (h *Handler) Initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	log.Println("gradx-lsp: Initialized")
	return nil
}

func (h *Handler) Shutdown(ctx *glsp.Context) error {
	log.Println("gradx-lsp: Shutdown")
	return nil
}

func (h *Handler) TextDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	uri := params.TextDocument.URI
	log.Printf("gradx-lsp: opened %s\n", uri)
	h.mu.Lock()
	h.tracked[uri] = true
	h.mu.Unlock()
	h.compileAndPublish(ctx, uri)
	return nil
}

func (h *Handler) TextDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI
	log.Printf("gradx-lsp: changed %s\n", uri)
	h.compileAndPublish(ctx, uri)
	return nil
}

func (h *Handler) TextDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI
	log.Printf("gradx-lsp: closed %s\n", uri)
	h.mu.Lock()
	delete(h.tracked, uri)
	h.mu.Unlock()
	return nil
}

// compileAndPublish re-reads uri from disk, runs the full parse-and-
// compile pipeline, and publishes the result as diagnostics: a single
// fatal diagnostic on parse/compile failure, or one diagnostic per
// non-fatal advisory on success (a discontinuity or capacity-ceiling
// note, the same information cmd/gradx prints to a terminal).
func (h *Handler) compileAndPublish(ctx *glsp.Context, uri protocol.DocumentUri) {
	path, err := uriToPath(string(uri))
	if err != nil {
		log.Printf("gradx-lsp: %s\n", err)
		return
	}

	source, err := os.ReadFile(path)
	if err != nil {
		log.Printf("gradx-lsp: failed to read %s: %s\n", path, err)
		return
	}

	diagnostics := h.diagnosticsFor(path, string(source))
	log.Printf("gradx-lsp: publishing %d diagnostic(s) for %s\n", len(diagnostics), uri)

	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

func uriToPath(rawURI string) (string, error) {
	u, err := url.Parse(rawURI)
	if err != nil {
		return "", fmt.Errorf("invalid URI %s: %w", rawURI, err)
	}
	path := u.Path
	if runtime.GOOS == "windows" && strings.HasPrefix(path, "/") && len(path) > 3 && path[2] == ':' {
		path = path[1:]
	}
	return filepath.FromSlash(path), nil
}

func ptrBool(b bool) *bool { return &b }

func ptrSyncKind(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind { return &k }
