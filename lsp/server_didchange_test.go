package lsp

import (
	"testing"

	"github.com/stretchr/testify/require"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/zenlang/zls/internal/config"
)

func TestTextDocumentDidChange_WholeDocument(t *testing.T) {
	s := newTestServer(t, config.Default())
	h := openTestDoc(t, s, "/work/a.zen", "const x: i32 = 1;\n")

	err := s.textDocumentDidChange(nil, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: h.URI},
		},
		ContentChanges: []any{
			protocol.TextDocumentContentChangeEventWhole{Text: "const x: i32 = 2;\n"},
		},
	})
	require.NoError(t, err)

	got, ok := s.workspace.store.GetHandle(h.URI)
	require.True(t, ok)
	require.Equal(t, "const x: i32 = 2;\n", got.Text)
}

func TestTextDocumentDidChange_IncrementalRangeReplaceIsApplied(t *testing.T) {
	s := newTestServer(t, config.Default())
	h := openTestDoc(t, s, "/work/a.zen", "const x: i32 = 1;\n")

	startPos := lspPosition(t, s, h, 15) // byte offset of "1"
	endPos := lspPosition(t, s, h, 16)

	err := s.textDocumentDidChange(nil, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: h.URI},
		},
		ContentChanges: []any{
			protocol.TextDocumentContentChangeEvent{
				Range: &protocol.Range{Start: startPos, End: endPos},
				Text:  "42",
			},
		},
	})
	require.NoError(t, err)

	got, ok := s.workspace.store.GetHandle(h.URI)
	require.True(t, ok)
	require.Equal(t, "const x: i32 = 42;\n", got.Text)
}

func TestTextDocumentDidChange_MultipleIncrementalChangesApplyInOrder(t *testing.T) {
	s := newTestServer(t, config.Default())
	h := openTestDoc(t, s, "/work/a.zen", "abc\n")

	firstStart := lspPosition(t, s, h, 0)
	firstEnd := lspPosition(t, s, h, 1)

	err := s.textDocumentDidChange(nil, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: h.URI},
		},
		ContentChanges: []any{
			protocol.TextDocumentContentChangeEvent{
				Range: &protocol.Range{Start: firstStart, End: firstEnd},
				Text:  "X",
			},
			// Second change targets byte [1,2) of the buffer the first
			// change already produced ("Xbc"), not the original text.
			protocol.TextDocumentContentChangeEvent{
				Range: &protocol.Range{Start: firstEnd, End: lspPosition(t, s, h, 2)},
				Text:  "Y",
			},
		},
	})
	require.NoError(t, err)

	got, ok := s.workspace.store.GetHandle(h.URI)
	require.True(t, ok)
	require.Equal(t, "XYc\n", got.Text)
}
