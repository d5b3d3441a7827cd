package lsp

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/zenlang/zls/internal/analysis"
	"github.com/zenlang/zls/internal/refs"
)

// textDocumentReferences handles textDocument/references. Per spec.md
// §4.7, a label resolves through label_references (scoped to its own
// handle); everything else goes through the whole-graph symbol_references
// walk, honoring the workspace's skip_std_references configuration.
func (s *Server) textDocumentReferences(_ *glsp.Context, params *protocol.ReferenceParams) ([]protocol.Location, error) {
	h, bytePos, ok := s.resolvePositionParams(params.TextDocumentPositionParams)
	if !ok {
		return nil, nil
	}
	decl, ok := symbolAtPosition(s.workspace.engine, h, bytePos)
	if !ok {
		return nil, nil
	}

	includeDecl := params.Context.IncludeDeclaration
	var locs []refs.Location
	if decl.Kind == analysis.DeclLabel {
		locs = refs.LabelReferences(s.workspace.engine, decl, includeDecl)
	} else {
		locs = refs.SymbolReferences(s.workspace.engine, decl, includeDecl, s.workspace.cfg.SkipStdReferences)
	}

	out := make([]protocol.Location, 0, len(locs))
	for _, loc := range locs {
		lh, ok := s.workspace.engine.Handle(loc.URI)
		if !ok || lh.Tree == nil {
			continue
		}
		start, end := refs.ToPosition(lh.Tree, loc)
		rng, ok := byteRangeToLSPEnc(s.workspace.store.Sources(), lh.SourceID, start, end, s.workspace.posEncoding)
		if !ok {
			continue
		}
		out = append(out, protocol.Location{URI: lh.URI, Range: rng})
	}
	return out, nil
}
