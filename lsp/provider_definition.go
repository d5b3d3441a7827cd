package lsp

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/zenlang/zls/internal/analysis"
	"github.com/zenlang/zls/internal/store"
)

// textDocumentDefinition handles textDocument/definition. Per spec.md
// §4.6(c)/§8 S6, definition follows var-decl alias chains to their
// ultimate target.
//
//nolint:nilnil // LSP protocol: nil result means "no definition found"
func (s *Server) textDocumentDefinition(_ *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	return s.gotoDecl(params.TextDocumentPositionParams, true)
}

// textDocumentDeclaration handles textDocument/declaration. Unlike
// definition, declaration does not follow aliases: it answers "where is
// this name bound", not "where is its value ultimately defined".
//
//nolint:nilnil // LSP protocol: nil result means "no declaration found"
func (s *Server) textDocumentDeclaration(_ *glsp.Context, params *protocol.DeclarationParams) (any, error) {
	return s.gotoDecl(params.TextDocumentPositionParams, false)
}

// textDocumentTypeDefinition handles textDocument/typeDefinition: the
// declared type of the symbol under the cursor, rather than the symbol
// itself.
//
//nolint:nilnil // LSP protocol: nil result means "no type definition found"
func (s *Server) textDocumentTypeDefinition(_ *glsp.Context, params *protocol.TypeDefinitionParams) (any, error) {
	h, bytePos, ok := s.resolvePositionParams(params.TextDocumentPositionParams)
	if !ok {
		return nil, nil
	}
	decl, ok := symbolAtPosition(s.workspace.engine, h, bytePos)
	if !ok {
		return nil, nil
	}
	typ, ok := s.workspace.engine.ResolveTypeOfNode(h, decl.Node)
	if !ok || typ.HandleURI == "" {
		return nil, nil
	}
	th, ok := s.workspace.engine.Handle(typ.HandleURI)
	if !ok {
		return nil, nil
	}
	loc, ok := tokenLocation(s.workspace.store.Sources(), th, mainTokenOf(th, typ.Node))
	if !ok {
		return nil, nil
	}
	return loc, nil
}

// textDocumentImplementation handles textDocument/implementation. Zen has
// no separate interface/impl split from declaration, so this is an alias
// for definition, matching how spec.md §4.6(c) describes a single
// alias-following resolution path.
//
//nolint:nilnil // LSP protocol: nil result means "no implementation found"
func (s *Server) textDocumentImplementation(_ *glsp.Context, params *protocol.ImplementationParams) (any, error) {
	return s.gotoDecl(params.TextDocumentPositionParams, true)
}

func (s *Server) gotoDecl(params protocol.TextDocumentPositionParams, followAlias bool) (any, error) {
	h, bytePos, ok := s.resolvePositionParams(params)
	if !ok {
		return nil, nil
	}
	decl, ok := symbolAtPosition(s.workspace.engine, h, bytePos)
	if !ok {
		return nil, nil
	}
	if followAlias {
		decl = s.followAlias(decl)
	}
	loc, ok := declLocation(s.workspace.store, decl)
	if !ok {
		return nil, nil
	}
	return loc, nil
}

// followAlias resolves decl through resolve_var_decl_alias (spec.md
// §4.6(c)), returning decl itself if it is not an alias or the chain does
// not resolve.
func (s *Server) followAlias(decl analysis.Declaration) analysis.Declaration {
	h, ok := s.workspace.engine.Handle(decl.HandleURI)
	if !ok || decl.Kind != analysis.DeclAstNode {
		return decl
	}
	if alias, ok := s.workspace.engine.ResolveVarDeclAlias(h, decl.Node); ok {
		return alias
	}
	return decl
}

// resolvePositionParams resolves a request's document handle and byte
// offset, the common first step of every navigation provider.
func (s *Server) resolvePositionParams(params protocol.TextDocumentPositionParams) (h *store.Handle, bytePos int, ok bool) {
	hh, ok := s.workspace.engine.Handle(params.TextDocument.URI)
	if !ok || hh.Tree == nil {
		return nil, 0, false
	}
	pos, ok := byteOffsetFromLSP(s.workspace.store.Sources(), hh.SourceID, params.Position, s.workspace.posEncoding)
	if !ok {
		return nil, 0, false
	}
	return hh, pos, true
}

func mainTokenOf(h *store.Handle, node int) int {
	if h.Tree == nil || node < 0 || node >= len(h.Tree.Nodes) {
		return 0
	}
	return h.Tree.Nodes[node].MainToken
}
