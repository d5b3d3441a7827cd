package lsp

import (
	"fmt"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/zenlang/zls/internal/analysis"
)

// textDocumentHover handles textDocument/hover requests.
//
//nolint:nilnil // LSP protocol: nil result means "no hover info"
func (s *Server) textDocumentHover(_ *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	uri := params.TextDocument.URI
	s.logger.Debug("hover request", "uri", uri)

	h, ok := s.workspace.engine.Handle(uri)
	if !ok || h.Tree == nil {
		return nil, nil
	}

	bytePos, ok := byteOffsetFromLSP(s.workspace.store.Sources(), h.SourceID, params.Position, s.workspace.posEncoding)
	if !ok {
		return nil, nil
	}

	if pc := analysis.ClassifyPosition(h.Tree.Source, bytePos); pc.Kind == analysis.PosBuiltin {
		word, _, _ := identifierWordAt(h.Tree.Source, bytePos)
		if b, ok := analysis.BuiltinByName("@" + word); ok {
			return builtinHover(b), nil
		}
	}

	decl, ok := symbolAtPosition(s.workspace.engine, h, bytePos)
	if !ok {
		return nil, nil
	}
	return s.declHover(decl), nil
}

func (s *Server) declHover(decl analysis.Declaration) *protocol.Hover {
	dh, ok := s.workspace.engine.Handle(decl.HandleURI)
	if !ok || dh.Tree == nil {
		return nil
	}

	sig := signatureFor(dh.Tree, decl)
	doc := s.workspace.engine.DocCommentForDecl(decl)

	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: codeBlock(sig) + docSuffix(doc),
		},
	}
}

func builtinHover(b analysis.Builtin) *protocol.Hover {
	value := codeBlock(b.Signature)
	if b.Doc != "" {
		value += "\n\n" + b.Doc
	}
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: value,
		},
	}
}

func codeBlock(sig string) string {
	return fmt.Sprintf("```zen\n%s\n```", sig)
}

func docSuffix(doc string) string {
	if doc == "" {
		return ""
	}
	return "\n\n" + doc
}
