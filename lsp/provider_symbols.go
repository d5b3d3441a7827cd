package lsp

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/zenlang/zls/internal/analysis"
	"github.com/zenlang/zls/internal/lang"
	"github.com/zenlang/zls/internal/source"
	"github.com/zenlang/zls/internal/store"
)

// textDocumentDocumentSymbol handles textDocument/documentSymbol: a
// hierarchical outline of every top-level declaration, with container
// members nested as children (spec.md §4.8).
func (s *Server) textDocumentDocumentSymbol(_ *glsp.Context, params *protocol.DocumentSymbolParams) ([]protocol.DocumentSymbol, error) {
	uri := params.TextDocument.URI
	h, ok := s.workspace.engine.Handle(uri)
	if !ok || h.Tree == nil {
		return nil, nil
	}

	reg := s.workspace.store.Sources()
	var out []protocol.DocumentSymbol
	for _, root := range h.Tree.RootDecls() {
		if sym, ok := documentSymbolFor(reg, h, root); ok {
			out = append(out, sym)
		}
	}
	return out, nil
}

// documentSymbolFor builds one DocumentSymbol from a top-level or
// container-member node, recursing into container declarations for their
// member list.
func documentSymbolFor(reg *source.Registry, h *store.Handle, node int) (protocol.DocumentSymbol, bool) {
	t := h.Tree
	if node <= 0 || node >= len(t.Nodes) {
		return protocol.DocumentSymbol{}, false
	}
	n := t.Nodes[node]

	switch n.Tag {
	case lang.NodeFnDecl:
		fp, ok := t.FnProto(n.Data.LHS)
		if !ok {
			return protocol.DocumentSymbol{}, false
		}
		name := fp.Name(t)
		if name == "" {
			return protocol.DocumentSymbol{}, false
		}
		rng, _ := nodeLocation(reg, h, node)
		sel, _ := tokenRange(reg, h, fp.NameToken)
		detail := signatureFor(t, analysis.Declaration{Kind: analysis.DeclAstNode, HandleURI: h.URI, Node: node, AnchorToken: fp.NameToken})
		kind := protocol.SymbolKindFunction
		return protocol.DocumentSymbol{
			Name:           name,
			Detail:         &detail,
			Kind:           kind,
			Range:          rng,
			SelectionRange: sel,
		}, true

	case lang.NodeVarDecl:
		v, ok := t.VarDecl(node)
		if !ok {
			return protocol.DocumentSymbol{}, false
		}
		name := v.Name(t)
		if name == "" {
			return protocol.DocumentSymbol{}, false
		}
		rng, _ := nodeLocation(reg, h, node)
		sel, _ := tokenRange(reg, h, v.NameToken)
		detail := signatureFor(t, analysis.Declaration{Kind: analysis.DeclAstNode, HandleURI: h.URI, Node: node, AnchorToken: v.NameToken})

		sym := protocol.DocumentSymbol{
			Name:           name,
			Detail:         &detail,
			Range:          rng,
			SelectionRange: sel,
		}
		if v.InitNode != 0 && t.Nodes[v.InitNode].Tag == lang.NodeContainerDecl {
			sym.Kind = protocol.SymbolKindStruct
			sym.Children = documentSymbolsForContainer(reg, h, v.InitNode)
		} else if v.IsConst {
			sym.Kind = protocol.SymbolKindConstant
		} else {
			sym.Kind = protocol.SymbolKindVariable
		}
		return sym, true

	case lang.NodeContainerField:
		f, ok := t.ContainerField(node)
		if !ok {
			return protocol.DocumentSymbol{}, false
		}
		name := f.Name(t)
		if name == "" {
			return protocol.DocumentSymbol{}, false
		}
		rng, _ := nodeLocation(reg, h, node)
		sel, _ := tokenRange(reg, h, f.NameToken)
		detail := signatureFor(t, analysis.Declaration{Kind: analysis.DeclAstNode, HandleURI: h.URI, Node: node, AnchorToken: f.NameToken})
		return protocol.DocumentSymbol{
			Name:           name,
			Detail:         &detail,
			Kind:           protocol.SymbolKindField,
			Range:          rng,
			SelectionRange: sel,
		}, true
	}

	return protocol.DocumentSymbol{}, false
}

// documentSymbolsForContainer builds DocumentSymbol children for every
// member of a struct/enum/union/opaque declaration.
func documentSymbolsForContainer(reg *source.Registry, h *store.Handle, containerNode int) []protocol.DocumentSymbol {
	t := h.Tree
	cd, ok := t.ContainerDecl(containerNode)
	if !ok {
		return nil
	}
	var out []protocol.DocumentSymbol
	for _, m := range cd.Members {
		if sym, ok := documentSymbolFor(reg, h, m); ok {
			out = append(out, sym)
		}
	}
	return out
}
