package lsp

import (
	"bytes"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/google/uuid"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/zenlang/zls/internal/config"
)

// textDocumentFormatting handles textDocument/formatting. Per spec.md
// §4.8, the whole document is piped through "<toolchain> fmt --stdin"; on
// success a single TextEdit replaces the entire document with the
// formatted text, and on any failure (no toolchain configured, subprocess
// error) the result is empty rather than an error, per spec.md §7's
// Internal error policy of degrading quietly to the client.
func (s *Server) textDocumentFormatting(_ *glsp.Context, params *protocol.DocumentFormattingParams) ([]protocol.TextEdit, error) {
	uri := params.TextDocument.URI
	reqID := uuid.NewString()
	logger := s.logger.With(slog.String("request_id", reqID), slog.String("uri", uri))

	h, ok := s.workspace.engine.Handle(uri)
	if !ok || h.Tree == nil {
		return nil, nil
	}

	zigExe, err := config.ResolveZigExePath(s.workspace.cfg)
	if err != nil {
		logger.Debug("formatting skipped: no toolchain configured", slog.String("error", err.Error()))
		return nil, nil
	}

	formatted, ok := runFmtSubprocess(logger, zigExe, h.Text)
	if !ok {
		return nil, nil
	}

	start, end := 0, len(h.Text)
	rng, ok := byteRangeToLSPEnc(s.workspace.store.Sources(), h.SourceID, start, end, s.workspace.posEncoding)
	if !ok {
		return nil, nil
	}
	return []protocol.TextEdit{{Range: rng, NewText: formatted}}, nil
}

// runFmtSubprocess invokes "<zigExePath> fmt --stdin", feeding src on
// stdin and capturing stdout, the subprocess shape spec.md §4.8/§5
// describes ("spawned synchronously and joined before returning"),
// grounded on internal/store/buildfile.go's RunDescribeBuild, the repo's
// only other toolchain subprocess invocation.
func runFmtSubprocess(logger *slog.Logger, zigExePath, src string) (string, bool) {
	cmd := exec.Command(zigExePath, "fmt", "--stdin") //nolint:gosec // toolchain path is operator-configured
	cmd.Stdin = strings.NewReader(src)

	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	if err := cmd.Run(); err != nil {
		logger.Warn("fmt subprocess failed", slog.String("error", err.Error()))
		return "", false
	}
	return stdout.String(), true
}
