package lsp

import (
	"testing"

	"github.com/stretchr/testify/require"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/zenlang/zls/internal/config"
)

func TestTextDocumentDocumentSymbol_TopLevelFunction(t *testing.T) {
	s := newTestServer(t, config.Default())
	h := openTestDoc(t, s, "/work/a.zen", "fn add(a: i32, b: i32) i32 {\n\treturn a;\n}\n")
	require.Empty(t, h.Tree.Errors)

	syms, err := s.textDocumentDocumentSymbol(nil, &protocol.DocumentSymbolParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: h.URI},
	})
	require.NoError(t, err)
	require.Len(t, syms, 1)
	require.Equal(t, "add", syms[0].Name)
	require.Equal(t, protocol.SymbolKindFunction, syms[0].Kind)
}

func TestTextDocumentDocumentSymbol_StructHasFieldChildren(t *testing.T) {
	s := newTestServer(t, config.Default())
	h := openTestDoc(t, s, "/work/a.zen", "const Point = struct { x: i32, y: i32 };\n")
	require.Empty(t, h.Tree.Errors)

	syms, err := s.textDocumentDocumentSymbol(nil, &protocol.DocumentSymbolParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: h.URI},
	})
	require.NoError(t, err)
	require.Len(t, syms, 1)
	require.Equal(t, "Point", syms[0].Name)
	require.Equal(t, protocol.SymbolKindStruct, syms[0].Kind)
	require.Len(t, syms[0].Children, 2)
	require.Equal(t, "x", syms[0].Children[0].Name)
	require.Equal(t, protocol.SymbolKindField, syms[0].Children[0].Kind)
	require.Equal(t, "y", syms[0].Children[1].Name)
}

func TestTextDocumentDocumentSymbol_ConstVsVar(t *testing.T) {
	s := newTestServer(t, config.Default())
	h := openTestDoc(t, s, "/work/a.zen", "const n: i32 = 1;\nvar m: i32 = 2;\n")
	require.Empty(t, h.Tree.Errors)

	syms, err := s.textDocumentDocumentSymbol(nil, &protocol.DocumentSymbolParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: h.URI},
	})
	require.NoError(t, err)
	require.Len(t, syms, 2)
	require.Equal(t, protocol.SymbolKindConstant, syms[0].Kind)
	require.Equal(t, protocol.SymbolKindVariable, syms[1].Kind)
}

func TestTextDocumentDocumentSymbol_UnknownDocumentReturnsNil(t *testing.T) {
	s := newTestServer(t, config.Default())
	syms, err := s.textDocumentDocumentSymbol(nil, &protocol.DocumentSymbolParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: "file:///missing.zen"},
	})
	require.NoError(t, err)
	require.Nil(t, syms)
}
