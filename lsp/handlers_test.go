package lsp

import (
	"log/slog"
	"testing"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/zenlang/zls/internal/analysis"
	"github.com/zenlang/zls/internal/config"
	"github.com/zenlang/zls/internal/source"
	"github.com/zenlang/zls/internal/store"
	"github.com/zenlang/zls/internal/uri"
)

// newTestServer builds a Server wired to an in-memory store and engine,
// bypassing NewWorkspace's disk-based zls.json discovery so handler tests
// run hermetically. Shared by every *_test.go file in this package that
// exercises a protocol.Handler method directly.
func newTestServer(t *testing.T, cfg config.Config) *Server {
	t.Helper()
	reg := source.NewRegistry()
	st := store.New(reg, nil, nil, "")
	ws := &Workspace{
		logger:      slog.Default(),
		cfg:         cfg,
		store:       st,
		engine:      analysis.New(st),
		posEncoding: PositionEncodingUTF16,
	}
	return &Server{logger: slog.Default(), workspace: ws}
}

func openTestDoc(t *testing.T, s *Server, path, text string) *store.Handle {
	t.Helper()
	return s.workspace.store.OpenDocument(uri.FromPath(path), text)
}

// lspPosition converts a byte offset in h's text to an LSP Position under
// the test server's position encoding, for building request params.
func lspPosition(t *testing.T, s *Server, h *store.Handle, byteOffset int) protocol.Position {
	t.Helper()
	rng, ok := byteRangeToLSPEnc(s.workspace.store.Sources(), h.SourceID, byteOffset, byteOffset, s.workspace.posEncoding)
	if !ok {
		t.Fatalf("lspPosition: could not convert byte offset %d", byteOffset)
	}
	return rng.Start
}

func posParams(uri string, pos protocol.Position) protocol.TextDocumentPositionParams {
	return protocol.TextDocumentPositionParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
		Position:     pos,
	}
}
