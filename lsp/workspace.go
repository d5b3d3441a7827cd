package lsp

import (
	"context"
	"log/slog"
	"os"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/zenlang/zls/internal/analysis"
	"github.com/zenlang/zls/internal/config"
	"github.com/zenlang/zls/internal/source"
	"github.com/zenlang/zls/internal/store"
)

// Notifier sends a server-to-client notification. It mirrors the teacher's
// Notifier type: a thin function value wrapping glsp.Context.Notify so
// analysis code does not need to depend on glsp directly.
type Notifier func(method string, params any)

// Workspace holds the per-server mutable state: the document store, the
// analysis engine built on top of it, the resolved configuration, and the
// negotiated position encoding. Every lsp.Server method routes through
// exactly one Workspace.
type Workspace struct {
	logger *slog.Logger
	cfg    config.Config

	store  *store.Store
	engine *analysis.Engine

	posEncoding PositionEncoding
}

// NewWorkspace builds a Workspace rooted at dir, discovering zls.json (if
// present) and wiring the document store's import loader and build-file
// describer from the resolved configuration.
func NewWorkspace(logger *slog.Logger, dir string) *Workspace {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "workspace"))

	cfg, path, err := config.Discover(dir)
	if err != nil {
		logger.Warn("zls.json discovery failed, using defaults", slog.String("error", err.Error()))
		cfg = config.Default()
	} else if path != "" {
		logger.Info("loaded configuration", slog.String("path", path))
	}

	reg := source.NewRegistry()

	var describeBuild store.DescribeBuildFunc
	if zigExe, err := config.ResolveZigExePath(cfg); err == nil {
		describeBuild = store.RunDescribeBuild(zigExe, cfg.BuildRunnerPath)
	}

	st := store.New(reg, diskLoader, describeBuild, cfg.ZigLibPath)

	return &Workspace{
		logger:      logger,
		cfg:         cfg,
		store:       st,
		engine:      analysis.New(st),
		posEncoding: PositionEncodingUTF16,
	}
}

// diskLoader reads an import target that is not already open in the
// editor, per spec.md §4.5's loader hook.
func diskLoader(fileURI string) ([]byte, error) {
	path, err := URIToPath(fileURI)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

// documentOpened records an opened document and returns its handle.
func (w *Workspace) documentOpened(uri, text string) *store.Handle {
	return w.store.OpenDocument(uri, text)
}

// documentChanged re-parses uri's full text and returns its handle.
func (w *Workspace) documentChanged(uri, text string) *store.Handle {
	return w.store.ApplyChanges(uri, text)
}

// documentIncrementalChanged replays changes against uri's current text
// (spec.md §4.3's L3 replace(range, text) operation, applied in the order
// the client sent them) and commits the resulting full text the same way a
// whole-document change would.
func (w *Workspace) documentIncrementalChanged(uri string, changes []source.Change) *store.Handle {
	h, ok := w.store.GetHandle(uri)
	if !ok {
		return nil
	}
	merged := source.ApplyChanges(h.Text, w.posEncoding.toOffsets(), changes)
	nh := w.store.ApplyChanges(uri, merged)
	w.engine.InvalidateHandle(uri)
	return nh
}

// documentClosed drops uri's open flag, pruning it (and any import it was
// the last referent of) if nothing else references it.
func (w *Workspace) documentClosed(uri string) {
	w.store.CloseDocument(uri)
}

// analyzeAndPublish computes diagnostics for uri and, if notify is
// non-nil, publishes them per spec.md §4.8.
func (w *Workspace) analyzeAndPublish(_ context.Context, notify Notifier, uri string) {
	h, ok := w.store.GetHandle(uri)
	if !ok {
		return
	}
	diags := computeDiagnostics(w.store.Sources(), h, w.cfg)
	if notify == nil {
		return
	}
	notify("textDocument/publishDiagnostics", protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diags,
	})
}

// showMessage surfaces an Internal-severity error (spec.md §7) to the
// client via window/showMessage, in addition to the server log.
func (w *Workspace) showMessage(notify Notifier, typ protocol.MessageType, msg string) {
	if notify == nil {
		return
	}
	notify("window/showMessage", protocol.ShowMessageParams{Type: typ, Message: msg})
}

// logMessage sends a window/logMessage notification.
func (w *Workspace) logMessage(notify Notifier, typ protocol.MessageType, msg string) {
	if notify == nil {
		return
	}
	notify("window/logMessage", protocol.LogMessageParams{Type: typ, Message: msg})
}
