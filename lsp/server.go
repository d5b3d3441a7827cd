package lsp

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	// commonlog is a required dependency of github.com/tliron/glsp. We
	// silence it in NewServer() via commonlog.Configure(0, nil) because this
	// server uses slog for all logging. The blank import of the "simple"
	// backend is required by glsp at runtime.
	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	_ "github.com/tliron/commonlog/simple" // required backend for glsp

	"github.com/zenlang/zls/internal/source"
)

const serverName = "zls"

// Config holds the server configuration supplied by the CLI entry point.
type Config struct {
	// ConfigDir overrides the directory searched for zls.json before the
	// server executable's own directory (spec.md §6's two-step search).
	// Empty means "search only the executable's directory".
	ConfigDir string
}

// Server is the Zen language server.
type Server struct {
	logger    *slog.Logger
	config    Config
	handler   protocol.Handler
	server    *server.Server
	workspace *Workspace

	shutdownCalled bool

	closeOnce sync.Once
	closeErr  error
}

// NewServer creates a new Zen language server. If logger is nil,
// slog.Default() is used.
func NewServer(logger *slog.Logger, cfg Config) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		logger:    logger.With(slog.String("component", "server")),
		config:    cfg,
		workspace: NewWorkspace(logger, cfg.ConfigDir),
	}

	commonlog.Configure(0, nil)

	s.handler = protocol.Handler{
		Initialize:    s.initialize,
		Initialized:   s.initialized,
		Shutdown:      s.shutdown,
		Exit:          s.exit,
		SetTrace:      s.setTrace,
		CancelRequest: s.cancelRequest,

		TextDocumentDidOpen:   s.textDocumentDidOpen,
		TextDocumentDidChange: s.textDocumentDidChange,
		TextDocumentDidSave:   s.textDocumentDidSave,
		TextDocumentDidClose:  s.textDocumentDidClose,
		TextDocumentWillSave:  s.textDocumentWillSave,

		TextDocumentSemanticTokensFull: s.textDocumentSemanticTokensFull,
		TextDocumentCompletion:         s.textDocumentCompletion,
		TextDocumentHover:              s.textDocumentHover,
		TextDocumentDefinition:         s.textDocumentDefinition,
		TextDocumentTypeDefinition:     s.textDocumentTypeDefinition,
		TextDocumentImplementation:     s.textDocumentImplementation,
		TextDocumentDeclaration:        s.textDocumentDeclaration,
		TextDocumentDocumentSymbol:     s.textDocumentDocumentSymbol,
		TextDocumentFormatting:         s.textDocumentFormatting,
		TextDocumentRename:             s.textDocumentRename,
		TextDocumentReferences:         s.textDocumentReferences,
	}

	s.server = server.NewServer(&s.handler, serverName, false)

	return s
}

// Handler returns the protocol handler, for testing.
func (s *Server) Handler() *protocol.Handler {
	return &s.handler
}

// RunStdio runs the server using stdio transport.
func (s *Server) RunStdio() error {
	if err := s.server.RunStdio(); err != nil {
		return fmt.Errorf("run stdio: %w", err)
	}
	return nil
}

// Shutdown initiates graceful server shutdown.
func (s *Server) Shutdown() {
	s.logger.Info("initiating shutdown")
}

// Close closes the JSON-RPC connection, causing RunStdio to return.
// Close is idempotent and safe to call before RunStdio (returns nil if the
// connection is not yet ready, so callers may retry).
func (s *Server) Close() error {
	conn := s.server.GetStdio()
	if conn == nil {
		return nil
	}
	s.closeOnce.Do(func() {
		if err := conn.Close(); err != nil {
			s.closeErr = fmt.Errorf("close connection: %w", err)
		}
	})
	return s.closeErr
}

func (s *Server) initialize(_ *glsp.Context, params *protocol.InitializeParams) (any, error) {
	s.logger.Info("initialize request received", slog.String("root_uri", s.rootURI(params)))

	s.workspace.posEncoding = PositionEncodingUTF16

	capabilities := s.handler.CreateServerCapabilities()

	syncKind := protocol.TextDocumentSyncKindFull
	if syncOpts, ok := capabilities.TextDocumentSync.(*protocol.TextDocumentSyncOptions); ok {
		syncOpts.Change = &syncKind
	}

	capabilities.CompletionProvider = &protocol.CompletionOptions{
		TriggerCharacters: []string{".", "@"},
	}

	if s.workspace.cfg.EnableSemanticTok {
		capabilities.SemanticTokensProvider = &protocol.SemanticTokensOptions{
			Legend: protocol.SemanticTokensLegend{
				TokenTypes:     semanticTokenTypeNames,
				TokenModifiers: semanticTokenModifierNames,
			},
			Full: true,
		}
	}

	version := "dev"
	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    serverName,
			Version: &version,
		},
	}, nil
}

func (s *Server) initialized(_ *glsp.Context, _ *protocol.InitializedParams) error {
	s.logger.Info("server initialized")
	return nil
}

func (s *Server) shutdown(_ *glsp.Context) error {
	s.logger.Info("shutdown request received")
	s.shutdownCalled = true
	protocol.SetTraceValue(protocol.TraceValueOff)
	return nil
}

func (s *Server) exit(_ *glsp.Context) error {
	if !s.shutdownCalled {
		s.logger.Warn("exit called without shutdown")
	}
	s.logger.Info("exit notification received")
	return nil
}

func (s *Server) setTrace(_ *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

// cancelRequest implements spec.md §9's chosen option (a): acknowledge and
// log, without threading a cancellation token through analysis walks.
func (s *Server) cancelRequest(_ *glsp.Context, params *protocol.CancelParams) error {
	s.logger.Debug("cancelRequest", slog.Any("id", params.ID))
	return nil
}

func (s *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	uri := params.TextDocument.URI
	s.logger.Debug("textDocument/didOpen", slog.String("uri", uri))
	s.workspace.documentOpened(uri, params.TextDocument.Text)
	s.workspace.analyzeAndPublish(context.Background(), notifierFor(ctx), uri)
	return nil
}

func (s *Server) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI
	s.logger.Debug("textDocument/didChange", slog.String("uri", uri))

	changes := contentChangesToEdits(params.ContentChanges)
	if len(changes) == 0 {
		return nil
	}

	h := s.workspace.documentIncrementalChanged(uri, changes)
	if h == nil {
		s.logger.Warn("didChange for unknown document", slog.String("uri", uri))
		return nil
	}
	s.workspace.analyzeAndPublish(context.Background(), notifierFor(ctx), uri)
	return nil
}

// contentChangesToEdits converts the protocol's ContentChanges union (each
// element either a whole-document replacement or a range-based incremental
// edit) into the ordered []source.Change Workspace.documentIncrementalChanged
// replays. Full-sync clients send exactly one whole-document element;
// clients that send incremental changes despite full sync being advertised
// are still handled correctly rather than dropped.
func contentChangesToEdits(raw []any) []source.Change {
	changes := make([]source.Change, 0, len(raw))
	for _, r := range raw {
		switch change := r.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			changes = append(changes, source.Change{NewText: change.Text})
		case protocol.TextDocumentContentChangeEvent:
			if change.Range == nil {
				changes = append(changes, source.Change{NewText: change.Text})
				continue
			}
			changes = append(changes, source.Change{
				HasRange:  true,
				StartLine: int(change.Range.Start.Line),
				StartChar: int(change.Range.Start.Character),
				EndLine:   int(change.Range.End.Line),
				EndChar:   int(change.Range.End.Character),
				NewText:   change.Text,
			})
		}
	}
	return changes
}

func (s *Server) textDocumentDidSave(_ *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	uri := params.TextDocument.URI
	s.logger.Debug("textDocument/didSave", slog.String("uri", uri))
	h, ok := s.workspace.store.GetHandle(uri)
	if !ok {
		return nil
	}
	if err := s.workspace.store.ApplySave(h.URI); err != nil {
		s.logger.Warn("save reanalysis failed", slog.String("uri", uri), slog.String("error", err.Error()))
	}
	return nil
}

func (s *Server) textDocumentWillSave(_ *glsp.Context, _ *protocol.WillSaveTextDocumentParams) error {
	return nil
}

func (s *Server) textDocumentDidClose(_ *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI
	s.logger.Debug("textDocument/didClose", slog.String("uri", uri))
	s.workspace.documentClosed(uri)
	return nil
}

func (s *Server) rootURI(params *protocol.InitializeParams) string {
	if params.RootURI != nil {
		return *params.RootURI
	}
	return ""
}

func notifierFor(ctx *glsp.Context) Notifier {
	if ctx == nil {
		return nil
	}
	return func(method string, params any) { ctx.Notify(method, params) }
}
