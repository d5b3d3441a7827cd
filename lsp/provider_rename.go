package lsp

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/zenlang/zls/internal/refs"
)

// textDocumentRename handles textDocument/rename. Per spec.md §4.7,
// rename_symbol finds every reference to the symbol under the cursor
// (including its own declaration) and groups a replacement TextEdit per
// occurrence by URI.
//
//nolint:nilnil // LSP protocol: nil result means "nothing to rename"
func (s *Server) textDocumentRename(_ *glsp.Context, params *protocol.RenameParams) (*protocol.WorkspaceEdit, error) {
	h, bytePos, ok := s.resolvePositionParams(params.TextDocumentPositionParams)
	if !ok {
		return nil, nil
	}
	decl, ok := symbolAtPosition(s.workspace.engine, h, bytePos)
	if !ok {
		return nil, nil
	}

	edit := refs.RenameSymbol(s.workspace.engine, decl, params.NewName)
	changes := make(map[string][]protocol.TextEdit, len(edit.Changes))
	for uri, edits := range edit.Changes {
		eh, ok := s.workspace.engine.Handle(uri)
		if !ok || eh.Tree == nil {
			continue
		}
		lspEdits := make([]protocol.TextEdit, 0, len(edits))
		for _, te := range edits {
			start, end := refs.TextEditByteRange(eh.Tree, te)
			rng, ok := byteRangeToLSPEnc(s.workspace.store.Sources(), eh.SourceID, start, end, s.workspace.posEncoding)
			if !ok {
				continue
			}
			lspEdits = append(lspEdits, protocol.TextEdit{Range: rng, NewText: te.NewText})
		}
		if len(lspEdits) > 0 {
			changes[uri] = lspEdits
		}
	}
	if len(changes) == 0 {
		return nil, nil
	}
	return &protocol.WorkspaceEdit{Changes: changes}, nil
}
