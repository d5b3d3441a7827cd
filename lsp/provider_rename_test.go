package lsp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/zenlang/zls/internal/config"
)

func TestTextDocumentRename_GroupsEditsByURI(t *testing.T) {
	s := newTestServer(t, config.Default())
	ha := openTestDoc(t, s, "/work/a.zen", "pub const Point = struct { x: i32 };\n")
	hb := openTestDoc(t, s, "/work/b.zen", "const Shapes = @import(\"a.zen\");\nconst P = Shapes.Point;\nconst Q = Shapes.Point;\n")
	require.Empty(t, ha.Tree.Errors)
	require.Empty(t, hb.Tree.Errors)

	pos := lspPosition(t, s, ha, strings.Index(ha.Text, "Point"))
	params := &protocol.RenameParams{
		TextDocumentPositionParams: posParams(ha.URI, pos),
		NewName:                    "Coord",
	}

	edit, err := s.textDocumentRename(nil, params)
	require.NoError(t, err)
	require.NotNil(t, edit)
	require.Contains(t, edit.Changes, ha.URI)
	require.Contains(t, edit.Changes, hb.URI)
	require.Len(t, edit.Changes[ha.URI], 1)
	require.Len(t, edit.Changes[hb.URI], 2)

	for _, e := range edit.Changes[ha.URI] {
		require.Equal(t, "Coord", e.NewText)
	}
}

func TestTextDocumentRename_UnresolvedSymbolReturnsNil(t *testing.T) {
	s := newTestServer(t, config.Default())
	h := openTestDoc(t, s, "/work/a.zen", "const n: i32 = 1;\n")

	pos := lspPosition(t, s, h, strings.Index(h.Text, "= 1"))
	edit, err := s.textDocumentRename(nil, &protocol.RenameParams{
		TextDocumentPositionParams: posParams(h.URI, pos),
		NewName:                    "x",
	})
	require.NoError(t, err)
	require.Nil(t, edit)
}
