package lsp

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/zenlang/zls/internal/analysis"
	"github.com/zenlang/zls/internal/source"
	"github.com/zenlang/zls/internal/store"
)

// tokenLocation builds a protocol.Location pointing at a single token in h,
// the shape every navigation provider (definition, declaration, rename
// anchors) ultimately returns.
func tokenLocation(reg *source.Registry, h *store.Handle, tokenIdx int) (*protocol.Location, bool) {
	if h.Tree == nil || tokenIdx < 0 || tokenIdx >= len(h.Tree.Tokens) {
		return nil, false
	}
	start, end := h.Tree.TokenSource(tokenIdx)
	rng, ok := byteRangeToLSP(reg, h.SourceID, start, end)
	if !ok {
		return nil, false
	}
	return &protocol.Location{URI: h.URI, Range: rng}, true
}

// declLocation resolves decl's anchor token to a protocol.Location within
// its own handle.
func declLocation(st *store.Store, decl analysis.Declaration) (*protocol.Location, bool) {
	h, ok := st.GetHandle(decl.HandleURI)
	if !ok {
		return nil, false
	}
	return tokenLocation(st.Sources(), h, decl.AnchorToken)
}

// nodeLocation builds a protocol.Range covering node's full span, for
// document-symbol ranges (which cover the whole declaration, not just its
// name token).
func nodeLocation(reg *source.Registry, h *store.Handle, node int) (protocol.Range, bool) {
	if h.Tree == nil {
		return protocol.Range{}, false
	}
	start, end := h.Tree.Span(node)
	return byteRangeToLSP(reg, h.SourceID, start, end)
}

// tokenRange is tokenLocation without the URI wrapper, for selectionRange
// fields that share a document with their enclosing range.
func tokenRange(reg *source.Registry, h *store.Handle, tokenIdx int) (protocol.Range, bool) {
	if h.Tree == nil || tokenIdx < 0 || tokenIdx >= len(h.Tree.Tokens) {
		return protocol.Range{}, false
	}
	start, end := h.Tree.TokenSource(tokenIdx)
	return byteRangeToLSP(reg, h.SourceID, start, end)
}

// declName returns decl's name as rendered from its own handle's tree,
// or "" if the handle or tree is unavailable.
func declName(st *store.Store, decl analysis.Declaration) string {
	h, ok := st.GetHandle(decl.HandleURI)
	if !ok || h.Tree == nil {
		return ""
	}
	return decl.Name(h.Tree)
}
