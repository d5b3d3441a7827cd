package analysis

import (
	"github.com/zenlang/zls/internal/lang"
	"github.com/zenlang/zls/internal/store"
)

// LookupSymbolGlobal implements spec.md §4.6(a): walks outward from the
// innermost scope containing pos — local declarations first, then
// enclosing function parameters, then file top-level (which already
// covers "each import exposed as a top-level alias", since an import
// alias is itself a top-level const declaration) — returning the first
// match. Shadowing is honored because inner scopes are checked first.
func (e *Engine) LookupSymbolGlobal(h *store.Handle, name string, bytePos int) (Declaration, bool) {
	if h.Tree == nil {
		return Declaration{}, false
	}
	path := h.Tree.EnclosingPath(bytePos)
	for i := len(path) - 1; i >= 0; i-- {
		if d, ok := lookupInScope(h, path[i], name); ok {
			return d, true
		}
	}
	return e.lookupTopLevel(h, name)
}

func (e *Engine) lookupTopLevel(h *store.Handle, name string) (Declaration, bool) {
	t := h.Tree
	for _, d := range t.RootDecls() {
		if decl, ok := declMatching(h, t, d, name); ok {
			return decl, true
		}
	}
	return Declaration{}, false
}

// lookupInScope checks the declarations directly introduced by one
// enclosing scope node (a function's parameter list, or a block's
// statement list) for name.
func lookupInScope(h *store.Handle, scopeNode int, name string) (Declaration, bool) {
	t := h.Tree
	n := t.Nodes[scopeNode]
	switch n.Tag {
	case lang.NodeFnDecl:
		fp, ok := t.FnProto(n.Data.LHS)
		if !ok {
			return Declaration{}, false
		}
		for _, p := range fp.Params {
			if t.ParamName(p) == name {
				return Declaration{Kind: DeclParam, HandleURI: h.URI, Node: p, AnchorToken: t.Nodes[p].MainToken}, true
			}
		}
	case lang.NodeBlock:
		for _, stmt := range t.ExtraDataSlice(n.Data.LHS, n.Data.RHS) {
			if decl, ok := declMatching(h, t, stmt, name); ok {
				return decl, true
			}
		}
	case lang.NodeLabeledBlock:
		return lookupInScope(h, n.Data.LHS, name)
	case lang.NodeContainerDecl:
		return lookupContainerMember(h, scopeNode, name, false)
	}
	return Declaration{}, false
}

// declMatching reports whether node is itself a named declaration (var,
// fn, or container field) matching name, wrapped as a Declaration.
func declMatching(h *store.Handle, t *lang.Tree, node int, name string) (Declaration, bool) {
	d, ok := declFromNode(h, t, node)
	if !ok || d.Name(t) != name {
		return Declaration{}, false
	}
	return d, true
}

// declFromNode wraps node as a Declaration if it is itself a named
// declaration (var, fn, or container field), regardless of name. This is
// declMatching without the name filter, used by completion's scope
// enumeration (spec.md §4.8's "var_access"/"empty" completion source),
// which needs every in-scope name rather than one specific lookup.
func declFromNode(h *store.Handle, t *lang.Tree, node int) (Declaration, bool) {
	if node <= 0 || node >= len(t.Nodes) {
		return Declaration{}, false
	}
	switch t.Nodes[node].Tag {
	case lang.NodeVarDecl:
		v, _ := t.VarDecl(node)
		return Declaration{Kind: DeclAstNode, HandleURI: h.URI, Node: node, AnchorToken: v.NameToken}, true
	case lang.NodeFnDecl:
		fp, ok := t.FnProto(t.Nodes[node].Data.LHS)
		if !ok {
			return Declaration{}, false
		}
		return Declaration{Kind: DeclAstNode, HandleURI: h.URI, Node: node, AnchorToken: fp.NameToken}, true
	case lang.NodeContainerField:
		f, _ := t.ContainerField(node)
		return Declaration{Kind: DeclAstNode, HandleURI: h.URI, Node: node, AnchorToken: f.NameToken}, true
	}
	return Declaration{}, false
}

// topLevelDecls wraps every one of h's top-level declarations, for
// completion's scope enumeration.
func topLevelDecls(h *store.Handle) []Declaration {
	var out []Declaration
	for _, d := range h.Tree.RootDecls() {
		if decl, ok := declFromNode(h, h.Tree, d); ok {
			out = append(out, decl)
		}
	}
	return out
}

// lookupContainerMember is the shared implementation behind both
// LookupSymbolContainer and the container case of lookupInScope; it needs
// no Engine state since container member lookup is never cached.
func lookupContainerMember(h *store.Handle, containerNode int, name string, instance bool) (Declaration, bool) {
	t := h.Tree
	cd, ok := t.ContainerDecl(containerNode)
	if !ok {
		return Declaration{}, false
	}
	for _, m := range cd.Members {
		if m <= 0 || m >= len(t.Nodes) {
			continue
		}
		switch t.Nodes[m].Tag {
		case lang.NodeContainerField:
			f, _ := t.ContainerField(m)
			if f.Name(t) == name {
				return Declaration{Kind: DeclAstNode, HandleURI: h.URI, Node: m, AnchorToken: f.NameToken}, true
			}
		case lang.NodeVarDecl:
			if instance {
				continue // type-only member, excluded from instance lookups
			}
			v, _ := t.VarDecl(m)
			if v.Name(t) == name {
				return Declaration{Kind: DeclAstNode, HandleURI: h.URI, Node: m, AnchorToken: v.NameToken}, true
			}
		case lang.NodeFnDecl:
			if instance {
				continue
			}
			fp, ok := t.FnProto(t.Nodes[m].Data.LHS)
			if ok && fp.Name(t) == name {
				return Declaration{Kind: DeclAstNode, HandleURI: h.URI, Node: m, AnchorToken: fp.NameToken}, true
			}
		}
	}
	return Declaration{}, false
}

// LookupSymbolContainer implements spec.md §4.6(a): looks up name as a
// member of a struct/enum/union/opaque. instance=true restricts the
// search to instance fields, omitting type-only declarations (nested
// const/fn members); instance=false includes both.
func (e *Engine) LookupSymbolContainer(h *store.Handle, containerNode int, name string, instance bool) (Declaration, bool) {
	return lookupContainerMember(h, containerNode, name, instance)
}

// ContainerMembers returns every declaration introduced directly in
// containerNode's member list, honoring the same instance/type-only filter
// as LookupSymbolContainer. Completion's field-access source (spec.md
// §4.8) needs the whole member list, not one name at a time.
func (e *Engine) ContainerMembers(h *store.Handle, containerNode int, instance bool) []Declaration {
	t := h.Tree
	cd, ok := t.ContainerDecl(containerNode)
	if !ok {
		return nil
	}
	var out []Declaration
	for _, m := range cd.Members {
		switch {
		case instance:
			if t.Nodes[m].Tag != lang.NodeContainerField {
				continue
			}
		}
		if decl, ok := declFromNode(h, t, m); ok {
			out = append(out, decl)
		}
	}
	return out
}

// ScopeCompletions implements the "var_access"/"empty" completion source of
// spec.md §4.8: every local, parameter, and top-level declaration visible
// from bytePos, innermost scope first so a shadowing declaration precedes
// the one it shadows.
func (e *Engine) ScopeCompletions(h *store.Handle, bytePos int) []Declaration {
	if h.Tree == nil {
		return nil
	}
	var out []Declaration
	path := h.Tree.EnclosingPath(bytePos)
	for i := len(path) - 1; i >= 0; i-- {
		out = append(out, e.scopeDecls(h, path[i])...)
	}
	out = append(out, topLevelDecls(h)...)
	return out
}

func (e *Engine) scopeDecls(h *store.Handle, scopeNode int) []Declaration {
	t := h.Tree
	n := t.Nodes[scopeNode]
	switch n.Tag {
	case lang.NodeFnDecl:
		fp, ok := t.FnProto(n.Data.LHS)
		if !ok {
			return nil
		}
		out := make([]Declaration, 0, len(fp.Params))
		for _, p := range fp.Params {
			out = append(out, Declaration{Kind: DeclParam, HandleURI: h.URI, Node: p, AnchorToken: t.Nodes[p].MainToken})
		}
		return out
	case lang.NodeBlock:
		var out []Declaration
		for _, stmt := range t.ExtraDataSlice(n.Data.LHS, n.Data.RHS) {
			if d, ok := declFromNode(h, t, stmt); ok {
				out = append(out, d)
			}
		}
		return out
	case lang.NodeLabeledBlock:
		return e.scopeDecls(h, n.Data.LHS)
	case lang.NodeContainerDecl:
		return e.ContainerMembers(h, scopeNode, false)
	}
	return nil
}

// LabelsInScope returns every block label enclosing bytePos, innermost
// first, for completion's "label" source.
func (e *Engine) LabelsInScope(h *store.Handle, bytePos int) []Declaration {
	if h.Tree == nil {
		return nil
	}
	t := h.Tree
	path := t.EnclosingPath(bytePos)
	var out []Declaration
	for i := len(path) - 1; i >= 0; i-- {
		node := path[i]
		if t.Nodes[node].Tag != lang.NodeLabeledBlock {
			continue
		}
		out = append(out, Declaration{Kind: DeclLabel, HandleURI: h.URI, Node: node, AnchorToken: t.Nodes[node].MainToken})
	}
	return out
}

// LookupLabel implements spec.md §4.6(a): finds the nearest enclosing
// block label named name, searching from the innermost scope outward.
func (e *Engine) LookupLabel(h *store.Handle, name string, bytePos int) (Declaration, bool) {
	if h.Tree == nil {
		return Declaration{}, false
	}
	t := h.Tree
	path := t.EnclosingPath(bytePos)
	for i := len(path) - 1; i >= 0; i-- {
		node := path[i]
		if t.Nodes[node].Tag != lang.NodeLabeledBlock {
			continue
		}
		labelTok := t.Nodes[node].MainToken
		if labelTok >= 0 && labelTok < len(t.Tokens) && string(t.TokenSlice(labelTok)) == name {
			return Declaration{Kind: DeclLabel, HandleURI: h.URI, Node: node, AnchorToken: labelTok}, true
		}
	}
	return Declaration{}, false
}
