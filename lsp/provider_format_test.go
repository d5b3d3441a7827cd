package lsp

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/zenlang/zls/internal/config"
)

func TestTextDocumentFormatting_NoToolchainConfigured(t *testing.T) {
	s := newTestServer(t, config.Default())
	h := openTestDoc(t, s, "/work/a.zen", "const n:i32=1;\n")

	edits, err := s.textDocumentFormatting(nil, &protocol.DocumentFormattingParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: h.URI},
	})
	require.NoError(t, err)
	require.Nil(t, edits)
}

func TestTextDocumentFormatting_UnknownDocument(t *testing.T) {
	cfg := config.Default()
	cfg.ZigExePath = fakeFmtScript(t, true)
	s := newTestServer(t, cfg)

	edits, err := s.textDocumentFormatting(nil, &protocol.DocumentFormattingParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: "file:///missing.zen"},
	})
	require.NoError(t, err)
	require.Nil(t, edits)
}

func TestTextDocumentFormatting_SubprocessSuccess(t *testing.T) {
	cfg := config.Default()
	cfg.ZigExePath = fakeFmtScript(t, true)
	s := newTestServer(t, cfg)

	h := openTestDoc(t, s, "/work/a.zen", "const n:i32=1;\n")

	edits, err := s.textDocumentFormatting(nil, &protocol.DocumentFormattingParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: h.URI},
	})
	require.NoError(t, err)
	require.Len(t, edits, 1)
	require.Equal(t, "const n: i32 = 1; // formatted\n", edits[0].NewText)
	require.Zero(t, edits[0].Range.Start.Line)
	require.Zero(t, edits[0].Range.Start.Character)
}

func TestTextDocumentFormatting_SubprocessFailureDegradesQuietly(t *testing.T) {
	cfg := config.Default()
	cfg.ZigExePath = fakeFmtScript(t, false)
	s := newTestServer(t, cfg)

	h := openTestDoc(t, s, "/work/a.zen", "const n:i32=1;\n")

	edits, err := s.textDocumentFormatting(nil, &protocol.DocumentFormattingParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: h.URI},
	})
	require.NoError(t, err)
	require.Nil(t, edits)
}

// fakeFmtScript writes a stand-in "zig" executable to a temp directory: when
// succeed is true it prints a fixed "formatted" marker to stdout, otherwise
// it exits non-zero, exercising runFmtSubprocess's two outcomes without
// depending on an actual Zig toolchain being installed.
func fakeFmtScript(t *testing.T, succeed bool) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "zig")
	body := "#!/bin/sh\necho 'const n: i32 = 1; // formatted'\n"
	if !succeed {
		body = "#!/bin/sh\nexit 1\n"
	}
	require.NoError(t, os.WriteFile(path, []byte(body), 0o755))
	return path
}
