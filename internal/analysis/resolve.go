package analysis

import (
	"github.com/zenlang/zls/internal/lang"
	"github.com/zenlang/zls/internal/store"
)

// primitiveNames are the identifier spellings treated as primitive types
// rather than references to a declaration.
var primitiveNames = map[string]bool{
	"i8": true, "i16": true, "i32": true, "i64": true, "isize": true,
	"u8": true, "u16": true, "u32": true, "u64": true, "usize": true,
	"f32": true, "f64": true, "bool": true, "void": true, "type": true,
	"anyerror": true,
}

// ResolveTypeOfNode implements spec.md §4.6(b): computes the declared type
// for an expression node, or for a declaration node (var, container field,
// fn, or param) that declaration's own declared type, memoized per
// (handle, node).
func (e *Engine) ResolveTypeOfNode(h *store.Handle, node int) (TypeWithHandle, bool) {
	if node <= 0 || h.Tree == nil || node >= len(h.Tree.Nodes) {
		return TypeWithHandle{}, false
	}
	if cached, ok := e.cachedType(h.URI, node); ok {
		return cached, true
	}
	tw, ok := e.resolveTypeUncached(h, node, 0)
	if ok {
		e.storeType(h.URI, node, tw)
	}
	return tw, ok
}

func (e *Engine) resolveTypeUncached(h *store.Handle, node int, depth int) (TypeWithHandle, bool) {
	if depth > maxAliasDepth {
		return TypeWithHandle{}, false
	}
	t := h.Tree
	n := t.Nodes[node]

	switch n.Tag {
	case lang.NodeIdentifier:
		name, _ := t.Identifier(node)
		if primitiveNames[name] {
			return TypeWithHandle{Kind: TypePrimitive, Primitive: name, IsTypeVal: name == "type", HandleURI: h.URI}, true
		}
		start, _ := t.NodeTokenSource(node)
		decl, ok := e.LookupSymbolGlobal(h, name, start)
		if !ok {
			return TypeWithHandle{}, false
		}
		return e.resolveDeclType(h, decl, depth+1)

	case lang.NodeFieldAccess:
		base, field, _ := t.FieldAccess(node)
		far, ok := e.resolveFieldAccessChain(h, base, []string{field}, depth)
		if !ok {
			return TypeWithHandle{}, false
		}
		return far.Original, true

	case lang.NodeCall:
		c, _ := t.Call(node)
		calleeType, ok := e.resolveTypeUncached(h, c.Callee, depth+1)
		if !ok {
			return TypeWithHandle{}, false
		}
		return calleeType, true // return-type annotation carried by the callee's resolved type

	case lang.NodePtrType:
		child, _ := t.PtrType(node)
		return TypeWithHandle{Kind: TypePointer, Node: child.Child, HandleURI: h.URI, IsTypeVal: true}, true

	case lang.NodeOptionalType:
		return TypeWithHandle{Kind: TypeOptional, Node: n.Data.LHS, HandleURI: h.URI, IsTypeVal: true}, true

	case lang.NodeErrorUnionType:
		return TypeWithHandle{Kind: TypeErrorUnion, Node: n.Data.RHS, HandleURI: h.URI}, true

	case lang.NodeStringLiteral:
		return TypeWithHandle{Kind: TypeSlice, Primitive: "u8", HandleURI: h.URI}, true

	case lang.NodeIntegerLiteral:
		return TypeWithHandle{Kind: TypePrimitive, Primitive: "i64", HandleURI: h.URI}, true

	case lang.NodeContainerDecl:
		return TypeWithHandle{Kind: TypeOther, Node: node, HandleURI: h.URI, IsTypeVal: true}, true

	case lang.NodeTryExpr:
		return e.resolveTypeUncached(h, n.Data.LHS, depth+1)

	case lang.NodeCatchExpr, lang.NodeOrelseExpr:
		// catch/orelse handle the left-hand side's error/optional wrapper, so
		// the result is the left-hand type with that wrapper removed.
		lhs, ok := e.resolveTypeUncached(h, n.Data.LHS, depth+1)
		if ok && (lhs.Kind == TypeErrorUnion || lhs.Kind == TypeOptional) {
			if inner := unwrapOnce(e, lhs); inner != nil {
				return *inner, true
			}
		}
		return lhs, ok

	case lang.NodeVarDecl, lang.NodeContainerField, lang.NodeFnDecl:
		decl, ok := declFromNode(h, t, node)
		if !ok {
			return TypeWithHandle{}, false
		}
		return e.resolveDeclType(h, decl, depth+1)

	case lang.NodeParam:
		return e.resolveTypeUncached(h, t.ParamType(node), depth+1)

	case lang.NodeImportCall:
		_, path, ok := t.ImportExpr(node)
		if !ok {
			return TypeWithHandle{}, false
		}
		target, ok := e.store.UriFromImport(h, path)
		if !ok {
			return TypeWithHandle{}, false
		}
		th, ok := e.store.GetHandle(target)
		if !ok || th.Tree == nil {
			return TypeWithHandle{}, false
		}
		return TypeWithHandle{Kind: TypeOther, Node: 0, HandleURI: th.URI, IsTypeVal: true}, true

	default:
		return TypeWithHandle{}, false
	}
}

// ResolveDeclType resolves decl's own declared type directly, for callers
// that already have a Declaration in hand rather than an expression node
// (completion's expected-type-at-cursor resolution, which locates a target
// by name rather than through an AST reference).
func (e *Engine) ResolveDeclType(h *store.Handle, decl Declaration) (TypeWithHandle, bool) {
	return e.resolveDeclType(h, decl, 0)
}

// resolveDeclType resolves the type of whatever decl points at: a var
// decl's annotated or inferred type, a parameter's annotated type, or
// (for a decl naming an imported file via @import) the file's own
// top-level container.
func (e *Engine) resolveDeclType(h *store.Handle, decl Declaration, depth int) (TypeWithHandle, bool) {
	if depth > maxAliasDepth {
		return TypeWithHandle{}, false
	}
	dh, ok := e.store.GetHandle(decl.HandleURI)
	if !ok || dh.Tree == nil {
		return TypeWithHandle{}, false
	}
	t := dh.Tree

	switch decl.Kind {
	case DeclParam:
		typeNode := t.ParamType(decl.Node)
		return e.resolveTypeUncached(dh, typeNode, depth)

	case DeclAstNode:
		switch t.Nodes[decl.Node].Tag {
		case lang.NodeVarDecl:
			v, _ := t.VarDecl(decl.Node)
			if alias, ok := e.ResolveVarDeclAlias(dh, decl.Node); ok {
				return e.resolveDeclType(e.mustHandle(alias.HandleURI, dh), alias, depth+1)
			}
			if v.TypeNode != 0 {
				return e.resolveTypeUncached(dh, v.TypeNode, depth+1)
			}
			if v.InitNode != 0 {
				return e.resolveTypeUncached(dh, v.InitNode, depth+1)
			}
			return TypeWithHandle{}, false
		case lang.NodeContainerField:
			f, _ := t.ContainerField(decl.Node)
			return e.resolveTypeUncached(dh, f.TypeNode, depth+1)
		case lang.NodeFnDecl:
			fp, ok := t.FnProto(t.Nodes[decl.Node].Data.LHS)
			if !ok {
				return TypeWithHandle{}, false
			}
			return e.resolveTypeUncached(dh, fp.ReturnType, depth+1)
		}
	}
	return TypeWithHandle{}, false
}

func (e *Engine) mustHandle(uri string, fallback *store.Handle) *store.Handle {
	if h, ok := e.store.GetHandle(uri); ok {
		return h
	}
	return fallback
}

// ResolveVarDeclAlias implements spec.md §4.6(b): if node's initializer is
// a pure re-export — `const Foo = Bar;` or `const Foo =
// @import("...").Bar;` — returns the ultimate target declaration,
// following chains up to maxAliasDepth to guard against cycles.
func (e *Engine) ResolveVarDeclAlias(h *store.Handle, node int) (Declaration, bool) {
	return e.resolveVarDeclAlias(h, node, 0)
}

func (e *Engine) resolveVarDeclAlias(h *store.Handle, node int, depth int) (Declaration, bool) {
	if depth >= maxAliasDepth {
		return Declaration{}, false
	}
	t := h.Tree
	v, ok := t.VarDecl(node)
	if !ok || v.InitNode == 0 {
		return Declaration{}, false
	}

	init := v.InitNode
	switch t.Nodes[init].Tag {
	case lang.NodeIdentifier:
		name, _ := t.Identifier(init)
		start, _ := t.NodeTokenSource(init)
		decl, ok := e.LookupSymbolGlobal(h, name, start)
		if !ok {
			return Declaration{}, false
		}
		if dh, ok := e.store.GetHandle(decl.HandleURI); ok {
			if next, ok := e.resolveVarDeclAlias(dh, decl.Node, depth+1); ok {
				return next, true
			}
		}
		return decl, true

	case lang.NodeFieldAccess:
		base, field, _ := t.FieldAccess(init)
		decl, ok := e.resolveAliasFieldAccess(h, base, field, depth)
		if !ok {
			return Declaration{}, false
		}
		return decl, true
	}
	return Declaration{}, false
}

// resolveAliasFieldAccess resolves a single `base.field` alias
// initializer — base is commonly an @import(...) call or an identifier
// that itself aliases one, as in `const A = @import("x"); const Z = A.Y;`.
// Delegates to ResolveFieldAccessDecl so alias-chain resolution and
// plain find-references field-access resolution stay consistent.
func (e *Engine) resolveAliasFieldAccess(h *store.Handle, base int, field string, depth int) (Declaration, bool) {
	if depth > maxAliasDepth {
		return Declaration{}, false
	}
	return e.ResolveFieldAccessDecl(h, base, field)
}

// importPathOf returns the literal string argument of an @import(...)
// call node, used by the field-access resolver to short-circuit common
// `@import("x").Y` chains without a full type resolution round trip.
func importPathOf(t *lang.Tree, node int) (string, bool) {
	if t.Nodes[node].Tag != lang.NodeImportCall {
		return "", false
	}
	_, path, ok := t.ImportExpr(node)
	return path, ok
}
