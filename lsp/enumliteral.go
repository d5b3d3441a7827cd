package lsp

import (
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/zenlang/zls/internal/analysis"
	"github.com/zenlang/zls/internal/config"
	"github.com/zenlang/zls/internal/lang"
	"github.com/zenlang/zls/internal/store"
)

// expectedTypeKind tags which syntactic anchor fixed the expected type at
// an enum_literal cursor.
type expectedTypeKind int

const (
	expectedNone expectedTypeKind = iota
	expectedReturn
	expectedAssign
	expectedCallArg
)

// enumLiteralCompletions implements spec.md §4.8's enum_literal completion
// source: resolves the expected type governing the bare `.` at dot (an
// assignment target's declared type, a call argument's parameter type, or
// the enclosing function's return type) and lists that container's
// members, the same way fieldAccessCompletions lists a resolved receiver's
// members.
func enumLiteralCompletions(e *analysis.Engine, h *store.Handle, dot int, cfg config.Config) []protocol.CompletionItem {
	expected, ok := expectedTypeAt(e, h, dot)
	if !ok || expected.Kind != analysis.TypeOther || expected.Node == 0 {
		return nil
	}
	eh, ok := e.Handle(expected.HandleURI)
	if !ok || eh.Tree == nil {
		return nil
	}

	var items []protocol.CompletionItem
	for _, decl := range e.ContainerMembers(eh, expected.Node, false) {
		items = append(items, buildCompletionItem(e, decl, cfg, nil))
	}
	return items
}

// expectedTypeAt resolves the expected type at dot (the byte offset of the
// '.' that triggered an enum_literal classification) by scanning backward
// over the source text for the nearest syntactic anchor: a call's open
// paren, an assignment's '=', or a 'return' keyword.
func expectedTypeAt(e *analysis.Engine, h *store.Handle, dot int) (analysis.TypeWithHandle, bool) {
	kind, anchor, argIndex := scanExpectedContext(h.Tree.Source, dot)

	switch kind {
	case expectedReturn:
		return expectedReturnType(e, h, dot)
	case expectedAssign:
		return expectedAssignType(e, h, anchor)
	case expectedCallArg:
		return expectedCallArgType(e, h, anchor, argIndex)
	default:
		return analysis.TypeWithHandle{}, false
	}
}

// scanExpectedContext walks backward from dot, tracking nesting depth, to
// find the nearest unmatched '(' (a call argument, with argIndex counting
// commas seen at depth 0 since that paren), a depth-0 assignment '=' (not
// part of '==', '!=', '<=', '>='), or a statement boundary. At a statement
// boundary, anchor is 0 (unused) and the caller checks for a leading 'return'
// keyword via expectedReturnType's own AST-based lookup, since the text
// between a boundary and the cursor alone cannot fix a node.
func scanExpectedContext(text []byte, dot int) (kind expectedTypeKind, anchor, argIndex int) {
	depth := 0
	i := dot
	for i > 0 {
		i--
		switch text[i] {
		case ')', ']', '}':
			depth++
		case '(':
			if depth == 0 {
				return expectedCallArg, i, argIndex
			}
			depth--
		case '[', '{':
			if depth == 0 {
				return classifyBoundary(text, i+1, dot)
			}
			depth--
		case ';':
			if depth == 0 {
				return classifyBoundary(text, i+1, dot)
			}
		case ',':
			if depth == 0 {
				argIndex++
			}
		case '=':
			if depth == 0 && !isComparisonEquals(text, i) {
				return expectedAssign, i, 0
			}
		}
	}
	return classifyBoundary(text, 0, dot)
}

// classifyBoundary checks whether the text from a statement boundary (from)
// up to dot is a bare 'return' keyword (allowing for a partially-typed
// expression after it), the only statement-leading context enum_literal
// recognizes.
func classifyBoundary(text []byte, from, dot int) (expectedTypeKind, int, int) {
	seg := strings.TrimLeft(string(text[from:dot]), " \t\r\n")
	if seg == "return" || strings.HasPrefix(seg, "return") && len(seg) > len("return") && !isIdentByte(seg[len("return")]) {
		return expectedReturn, 0, 0
	}
	return expectedNone, 0, 0
}

func isComparisonEquals(text []byte, eq int) bool {
	if eq+1 < len(text) && text[eq+1] == '=' {
		return true
	}
	if eq > 0 {
		switch text[eq-1] {
		case '=', '!', '<', '>':
			return true
		}
	}
	return false
}

func isIdentByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func isSpaceByte(c byte) bool { return c == ' ' || c == '\t' || c == '\r' || c == '\n' }

// identifierBefore returns the identifier immediately preceding pos in
// text, skipping trailing whitespace first, and the byte offset it starts
// at (for use as the name's lookup position).
func identifierBefore(text []byte, pos int) (string, int) {
	end := pos
	for end > 0 && isSpaceByte(text[end-1]) {
		end--
	}
	start := end
	for start > 0 && isIdentByte(text[start-1]) {
		start--
	}
	return string(text[start:end]), start
}

// expectedReturnType resolves the declared return type of the function
// enclosing bytePos, for `return .Tag;`.
func expectedReturnType(e *analysis.Engine, h *store.Handle, bytePos int) (analysis.TypeWithHandle, bool) {
	t := h.Tree
	path := t.EnclosingPath(bytePos)
	for i := len(path) - 1; i >= 0; i-- {
		n := t.Nodes[path[i]]
		if n.Tag != lang.NodeFnDecl {
			continue
		}
		fp, ok := t.FnProto(n.Data.LHS)
		if !ok || fp.ReturnType == 0 {
			return analysis.TypeWithHandle{}, false
		}
		return e.ResolveTypeOfNode(h, fp.ReturnType)
	}
	return analysis.TypeWithHandle{}, false
}

// expectedAssignType resolves the expected type at an assignment: the
// explicit type annotation just before '=' if present (`const x: Color =
// .`), else the declared type of the name being (re-)assigned (`x = .`).
func expectedAssignType(e *analysis.Engine, h *store.Handle, eq int) (analysis.TypeWithHandle, bool) {
	name, start := identifierBefore(h.Tree.Source, eq)
	if name == "" {
		return analysis.TypeWithHandle{}, false
	}
	// Whether name is an explicit type annotation (`const x: Color = .`) or
	// the lvalue itself (`x = .Tag`), resolveDeclType's NodeVarDecl handling
	// returns the right thing either way: the type name's own declaration
	// resolves to its container, and the variable's own declaration resolves
	// through its annotated or inferred type to the same container.
	decl, ok := e.LookupSymbolGlobal(h, name, start)
	if !ok {
		return analysis.TypeWithHandle{}, false
	}
	return e.ResolveDeclType(h, decl)
}

// expectedCallArgType resolves the declared parameter type at argIndex of
// the function named just before the call's open paren.
func expectedCallArgType(e *analysis.Engine, h *store.Handle, openParen, argIndex int) (analysis.TypeWithHandle, bool) {
	name, start := identifierBefore(h.Tree.Source, openParen)
	if name == "" {
		return analysis.TypeWithHandle{}, false
	}
	decl, ok := e.LookupSymbolGlobal(h, name, start)
	if !ok || decl.Kind != analysis.DeclAstNode {
		return analysis.TypeWithHandle{}, false
	}
	t := h.Tree
	if decl.Node <= 0 || decl.Node >= len(t.Nodes) || t.Nodes[decl.Node].Tag != lang.NodeFnDecl {
		return analysis.TypeWithHandle{}, false
	}
	fp, ok := t.FnProto(t.Nodes[decl.Node].Data.LHS)
	if !ok || argIndex >= len(fp.Params) {
		return analysis.TypeWithHandle{}, false
	}
	return e.ResolveTypeOfNode(h, t.ParamType(fp.Params[argIndex]))
}
