package lsp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/zenlang/zls/internal/config"
)

func TestTextDocumentReferences_AcrossFiles(t *testing.T) {
	s := newTestServer(t, config.Default())
	ha := openTestDoc(t, s, "/work/a.zen", "pub const Point = struct { x: i32 };\n")
	hb := openTestDoc(t, s, "/work/b.zen", "const Shapes = @import(\"a.zen\");\nconst P = Shapes.Point;\n")
	require.Empty(t, ha.Tree.Errors)
	require.Empty(t, hb.Tree.Errors)

	pos := lspPosition(t, s, ha, strings.Index(ha.Text, "Point"))
	locs, err := s.textDocumentReferences(nil, &protocol.ReferenceParams{
		TextDocumentPositionParams: posParams(ha.URI, pos),
		Context:                    protocol.ReferenceContext{IncludeDeclaration: true},
	})
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(locs), 2)

	uris := map[string]bool{}
	for _, l := range locs {
		uris[l.URI] = true
	}
	require.True(t, uris[ha.URI])
	require.True(t, uris[hb.URI])
}

func TestTextDocumentReferences_ExcludeDeclaration(t *testing.T) {
	s := newTestServer(t, config.Default())
	h := openTestDoc(t, s, "/work/a.zen", "const n: i32 = 1;\nconst m: i32 = n;\n")

	pos := lspPosition(t, s, h, strings.Index(h.Text, "n:"))
	withDecl, err := s.textDocumentReferences(nil, &protocol.ReferenceParams{
		TextDocumentPositionParams: posParams(h.URI, pos),
		Context:                    protocol.ReferenceContext{IncludeDeclaration: true},
	})
	require.NoError(t, err)

	withoutDecl, err := s.textDocumentReferences(nil, &protocol.ReferenceParams{
		TextDocumentPositionParams: posParams(h.URI, pos),
		Context:                    protocol.ReferenceContext{IncludeDeclaration: false},
	})
	require.NoError(t, err)

	require.Equal(t, len(withDecl), len(withoutDecl)+1)
}

func TestTextDocumentReferences_UnresolvedSymbolReturnsNil(t *testing.T) {
	s := newTestServer(t, config.Default())
	h := openTestDoc(t, s, "/work/a.zen", "const n: i32 = 1;\n")

	// Position sits on the "=" operator, not on any identifier.
	pos := lspPosition(t, s, h, strings.Index(h.Text, "= 1"))
	locs, err := s.textDocumentReferences(nil, &protocol.ReferenceParams{
		TextDocumentPositionParams: posParams(h.URI, pos),
		Context:                    protocol.ReferenceContext{IncludeDeclaration: true},
	})
	require.NoError(t, err)
	require.Nil(t, locs)
}
