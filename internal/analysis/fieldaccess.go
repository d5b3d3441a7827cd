package analysis

import (
	"github.com/zenlang/zls/internal/lang"
	"github.com/zenlang/zls/internal/store"
)

// resolveFieldAccessChain implements spec.md §4.6(c): resolves a dotted
// expression chain (`a.b.c.d`) as a left fold over its segments, starting
// from base's resolved type and stepping through each subsequent field
// name, unwrapping pointer/optional/error-union wrappers and following
// var-decl aliases between steps.
//
// fields is ordered outermost-last: for `a.b.c`, base is the node for `a`
// and fields is ["b", "c"].
func (e *Engine) resolveFieldAccessChain(h *store.Handle, base int, fields []string, depth int) (FieldAccessReturn, bool) {
	cur, ok := e.resolveChainBase(h, base, depth)
	if !ok {
		return FieldAccessReturn{}, false
	}
	for _, field := range fields {
		cur, ok = e.stepFieldAccess(cur, field, depth)
		if !ok {
			return FieldAccessReturn{}, false
		}
	}
	unwrapped := unwrapOnce(e, cur)
	return FieldAccessReturn{Original: cur, Unwrapped: unwrapped}, true
}

// resolveChainBase resolves the leftmost expression in a field-access
// chain. An @import(...) call is special-cased to the imported file's
// top-level container rather than going through general expression typing,
// since an import call node has no type annotation of its own.
func (e *Engine) resolveChainBase(h *store.Handle, base int, depth int) (TypeWithHandle, bool) {
	if path, ok := importPathOf(h.Tree, base); ok {
		target, ok := e.store.UriFromImport(h, path)
		if !ok {
			return TypeWithHandle{}, false
		}
		th, ok := e.store.GetHandle(target)
		if !ok {
			return TypeWithHandle{}, false
		}
		return TypeWithHandle{Kind: TypeOther, Node: 0, HandleURI: th.URI, IsTypeVal: true}, true
	}
	return e.resolveTypeUncached(h, base, depth+1)
}

// resolveMember looks up field as a member of cur's container (or, if cur
// names an imported file's top-level container, as a top-level declaration
// of that file), following one var-decl alias if the member turns out to
// be a re-export. Returns the ultimate member declaration and the handle
// it lives in.
func (e *Engine) resolveMember(cur TypeWithHandle, field string, depth int) (Declaration, *store.Handle, bool) {
	h, ok := e.store.GetHandle(cur.HandleURI)
	if !ok || h.Tree == nil {
		return Declaration{}, nil, false
	}

	var decl Declaration
	if cur.Node == 0 {
		// cur names a whole file (the import-call base case): look up field
		// as one of that file's top-level declarations.
		decl, ok = e.lookupTopLevel(h, field)
	} else {
		decl, ok = e.LookupSymbolContainer(h, cur.Node, field, !cur.IsTypeVal)
	}
	if !ok {
		return Declaration{}, nil, false
	}

	if decl.Kind == DeclAstNode && h.Tree.Nodes[decl.Node].Tag == lang.NodeVarDecl {
		if alias, ok := e.resolveVarDeclAlias(h, decl.Node, depth+1); ok {
			decl = alias
			if ah, ok := e.store.GetHandle(alias.HandleURI); ok {
				h = ah
			}
		}
	}
	return decl, h, true
}

// stepFieldAccess advances one segment of a field-access chain: resolves
// field as a member of cur, then resolves that member's own declared type.
func (e *Engine) stepFieldAccess(cur TypeWithHandle, field string, depth int) (TypeWithHandle, bool) {
	if depth > maxAliasDepth {
		return TypeWithHandle{}, false
	}
	decl, h, ok := e.resolveMember(cur, field, depth)
	if !ok {
		return TypeWithHandle{}, false
	}
	return e.resolveDeclType(h, decl, depth+1)
}

// ResolveFieldAccessDecl resolves a single field-access node's own member
// declaration (the member named by node's MainToken), independent of any
// further chain the node's result feeds into. internal/refs uses this to
// match each field-access occurrence in a whole-graph walk against a
// target declaration, one dotted segment at a time.
func (e *Engine) ResolveFieldAccessDecl(h *store.Handle, base int, field string) (Declaration, bool) {
	baseType, ok := e.resolveChainBase(h, base, 0)
	if !ok {
		return Declaration{}, false
	}
	decl, _, ok := e.resolveMember(baseType, field, 1)
	return decl, ok
}

// ResolveFieldAccessChainFrom resolves a "leading identifier, then zero or
// more already-typed fields" chain given by name rather than by an existing
// field-access AST node. Completion needs this shape: at `p.`, the parser
// has nothing to show for the trailing dot, so there is no NodeFieldAccess
// to hand to ResolveFieldAccessDecl — only the leading identifier's name and
// position, plus whatever complete segments came before the dot the cursor
// is sitting after.
func (e *Engine) ResolveFieldAccessChainFrom(h *store.Handle, baseName string, basePos int, fields []string) (FieldAccessReturn, bool) {
	decl, ok := e.LookupSymbolGlobal(h, baseName, basePos)
	if !ok {
		return FieldAccessReturn{}, false
	}
	cur, ok := e.resolveDeclType(h, decl, 0)
	if !ok {
		return FieldAccessReturn{}, false
	}
	for _, field := range fields {
		if field == "" {
			continue
		}
		cur, ok = e.stepFieldAccess(cur, field, 0)
		if !ok {
			return FieldAccessReturn{}, false
		}
	}
	unwrapped := unwrapOnce(e, cur)
	return FieldAccessReturn{Original: cur, Unwrapped: unwrapped}, true
}

// unwrapOnce follows Original through a single pointer/optional/error-union
// wrapper, returning the payload type, or nil if Original is not wrapped.
func unwrapOnce(e *Engine, original TypeWithHandle) *TypeWithHandle {
	switch original.Kind {
	case TypePointer, TypeErrorUnion, TypeOptional:
		h, ok := e.store.GetHandle(original.HandleURI)
		if !ok || h.Tree == nil || original.Node <= 0 {
			return nil
		}
		inner, ok := e.resolveTypeUncached(h, original.Node, 0)
		if !ok {
			return nil
		}
		return &inner
	default:
		return nil
	}
}
