package lsp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/zenlang/zls/internal/config"
)

func labelsOf(items []protocol.CompletionItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Label
	}
	return out
}

func runCompletion(t *testing.T, s *Server, uri string, pos protocol.Position) []protocol.CompletionItem {
	t.Helper()
	result, err := s.textDocumentCompletion(nil, &protocol.CompletionParams{
		TextDocumentPositionParams: posParams(uri, pos),
	})
	require.NoError(t, err)
	items, ok := result.([]protocol.CompletionItem)
	require.True(t, ok, "textDocumentCompletion must return []protocol.CompletionItem")
	return items
}

func TestTextDocumentCompletion_Builtin(t *testing.T) {
	s := newTestServer(t, config.Default())
	src := "fn f() void {\n\t@\n}\n"
	h := openTestDoc(t, s, "/work/a.zen", src)

	pos := lspPosition(t, s, h, strings.Index(src, "@")+1)
	items := runCompletion(t, s, h.URI, pos)

	require.Contains(t, labelsOf(items), "@import")
	require.Contains(t, labelsOf(items), "@sizeOf")
}

func TestTextDocumentCompletion_VarAccessIncludesScopeAndTopLevel(t *testing.T) {
	s := newTestServer(t, config.Default())
	src := "const x: i32 = 1;\nfn f() i32 {\n\treturn x;\n}\n"
	h := openTestDoc(t, s, "/work/a.zen", src)
	require.Empty(t, h.Tree.Errors)

	cursor := strings.Index(src, "return x") + len("return x")
	pos := lspPosition(t, s, h, cursor)
	items := runCompletion(t, s, h.URI, pos)

	require.Contains(t, labelsOf(items), "x")
}

func TestTextDocumentCompletion_FieldAccessListsMembers(t *testing.T) {
	s := newTestServer(t, config.Default())
	src := "const P = struct { x: i32, y: i32 };\nvar p: P = undefined;\nfn use() void {\n\tp.\n}\n"
	h := openTestDoc(t, s, "/work/a.zen", src)

	cursor := strings.Index(src, "p.\n") + len("p.")
	pos := lspPosition(t, s, h, cursor)
	items := runCompletion(t, s, h.URI, pos)

	require.Contains(t, labelsOf(items), "x")
	require.Contains(t, labelsOf(items), "y")
}

func TestTextDocumentCompletion_GlobalErrorSet(t *testing.T) {
	s := newTestServer(t, config.Default())
	src := "const Err = error { NotFound, Invalid };\nfn use() Err!void {\n\treturn error.\n}\n"
	h := openTestDoc(t, s, "/work/a.zen", src)

	cursor := strings.Index(src, "error.") + len("error.")
	pos := lspPosition(t, s, h, cursor)
	items := runCompletion(t, s, h.URI, pos)

	require.Contains(t, labelsOf(items), "NotFound")
	require.Contains(t, labelsOf(items), "Invalid")
}

func TestTextDocumentCompletion_Label(t *testing.T) {
	s := newTestServer(t, config.Default())
	src := "fn f() void {\n\touter: {\n\t\tbreak :outer;\n\t}\n}\n"
	h := openTestDoc(t, s, "/work/a.zen", src)
	require.Empty(t, h.Tree.Errors)

	cursor := strings.Index(src, "break :") + len("break :")
	pos := lspPosition(t, s, h, cursor)
	items := runCompletion(t, s, h.URI, pos)

	require.Contains(t, labelsOf(items), "outer")
}

func TestTextDocumentCompletion_EnumLiteralInVarDeclAnnotation(t *testing.T) {
	s := newTestServer(t, config.Default())
	src := "const Color = enum { Red: void, Green: void, Blue: void };\n" +
		"fn f() void {\n\tconst c: Color = .\n}\n"
	h := openTestDoc(t, s, "/work/a.zen", src)

	cursor := strings.Index(src, "Color = .") + len("Color = .")
	pos := lspPosition(t, s, h, cursor)
	items := runCompletion(t, s, h.URI, pos)

	require.Contains(t, labelsOf(items), "Red")
	require.Contains(t, labelsOf(items), "Green")
	require.Contains(t, labelsOf(items), "Blue")
}

func TestTextDocumentCompletion_EnumLiteralInCallArgument(t *testing.T) {
	s := newTestServer(t, config.Default())
	src := "const Color = enum { Red: void, Green: void, Blue: void };\n" +
		"fn paint(c: Color) void {}\n" +
		"fn f() void {\n\tpaint(.\n}\n"
	h := openTestDoc(t, s, "/work/a.zen", src)

	cursor := strings.Index(src, "paint(.") + len("paint(.")
	pos := lspPosition(t, s, h, cursor)
	items := runCompletion(t, s, h.URI, pos)

	require.Contains(t, labelsOf(items), "Red")
	require.Contains(t, labelsOf(items), "Green")
	require.Contains(t, labelsOf(items), "Blue")
}

func TestTextDocumentCompletion_EnumLiteralInReturnStatement(t *testing.T) {
	s := newTestServer(t, config.Default())
	src := "const Color = enum { Red: void, Green: void, Blue: void };\n" +
		"fn favorite() Color {\n\treturn .\n}\n"
	h := openTestDoc(t, s, "/work/a.zen", src)

	cursor := strings.Index(src, "return .") + len("return .")
	pos := lspPosition(t, s, h, cursor)
	items := runCompletion(t, s, h.URI, pos)

	require.Contains(t, labelsOf(items), "Red")
	require.Contains(t, labelsOf(items), "Green")
	require.Contains(t, labelsOf(items), "Blue")
}

func TestTextDocumentCompletion_UnknownDocumentReturnsNil(t *testing.T) {
	s := newTestServer(t, config.Default())
	result, err := s.textDocumentCompletion(nil, &protocol.CompletionParams{
		TextDocumentPositionParams: posParams("file:///missing.zen", protocol.Position{}),
	})
	require.NoError(t, err)
	require.Nil(t, result)
}
