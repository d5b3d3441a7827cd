package lang

// This file provides spec.md §4.4's structured "views" over raw Node
// values: small accessor structs that decode a node's Data fields into
// named parts, mirroring the teacher's preference for typed accessors over
// callers reaching into raw struct fields directly.

// FnProtoView decodes a NodeFnProto node.
type FnProtoView struct {
	FnToken    int
	NameToken  int
	Params     []int
	ReturnType int
}

// FnProto returns the structured view of a NodeFnProto node, or ok=false if
// node is not a function prototype.
func (t *Tree) FnProto(node int) (FnProtoView, bool) {
	if node <= 0 || node >= len(t.Nodes) {
		return FnProtoView{}, false
	}
	n := t.Nodes[node]
	if n.Tag != NodeFnProto {
		return FnProtoView{}, false
	}
	rangeOff := n.Data.LHS
	if rangeOff < 0 || rangeOff+1 >= len(t.ExtraData) {
		return FnProtoView{}, false
	}
	start, end := t.ExtraData[rangeOff], t.ExtraData[rangeOff+1]
	return FnProtoView{
		FnToken:    n.MainToken,
		NameToken:  n.MainToken + 1,
		Params:     t.ExtraDataSlice(start, end),
		ReturnType: n.Data.RHS,
	}, true
}

// Name returns the function's declared name, read from the token
// immediately following the 'fn' keyword.
func (v FnProtoView) Name(t *Tree) string {
	if v.NameToken <= 0 || v.NameToken >= len(t.Tokens) {
		return ""
	}
	return string(t.TokenSlice(v.NameToken))
}

// ParamName returns the identifier token text for a NodeParam node.
func (t *Tree) ParamName(node int) string {
	if node <= 0 || node >= len(t.Nodes) || t.Nodes[node].Tag != NodeParam {
		return ""
	}
	return string(t.TokenSlice(t.Nodes[node].MainToken))
}

// ParamType returns the type node of a NodeParam node.
func (t *Tree) ParamType(node int) int {
	if node <= 0 || node >= len(t.Nodes) || t.Nodes[node].Tag != NodeParam {
		return 0
	}
	return t.Nodes[node].Data.LHS
}

// VarDeclView decodes a NodeVarDecl node.
type VarDeclView struct {
	KeywordToken int
	NameToken    int
	IsConst      bool
	TypeNode     int // 0 if inferred
	InitNode     int // 0 if no initializer
}

// VarDecl returns the structured view of a NodeVarDecl node, or ok=false if
// node is not a variable declaration.
func (t *Tree) VarDecl(node int) (VarDeclView, bool) {
	if node <= 0 || node >= len(t.Nodes) {
		return VarDeclView{}, false
	}
	n := t.Nodes[node]
	if n.Tag != NodeVarDecl {
		return VarDeclView{}, false
	}
	return VarDeclView{
		KeywordToken: n.MainToken,
		NameToken:    n.MainToken + 1,
		IsConst:      t.Tokens[n.MainToken].Tag == TokKeywordConst,
		TypeNode:     n.Data.LHS,
		InitNode:     n.Data.RHS,
	}, true
}

// Name returns the declared variable's identifier text.
func (v VarDeclView) Name(t *Tree) string {
	if v.NameToken <= 0 || v.NameToken >= len(t.Tokens) {
		return ""
	}
	return string(t.TokenSlice(v.NameToken))
}

// ContainerFieldView decodes a NodeContainerField node.
type ContainerFieldView struct {
	NameToken    int
	TypeNode     int
	DefaultValue int // 0 if none
}

// ContainerField returns the structured view of a NodeContainerField node,
// or ok=false if node is not a container field.
func (t *Tree) ContainerField(node int) (ContainerFieldView, bool) {
	if node <= 0 || node >= len(t.Nodes) {
		return ContainerFieldView{}, false
	}
	n := t.Nodes[node]
	if n.Tag != NodeContainerField {
		return ContainerFieldView{}, false
	}
	return ContainerFieldView{
		NameToken:    n.MainToken,
		TypeNode:     n.Data.LHS,
		DefaultValue: n.Data.RHS,
	}, true
}

// Name returns the field's identifier text.
func (f ContainerFieldView) Name(t *Tree) string {
	return string(t.TokenSlice(f.NameToken))
}

// ContainerDeclView decodes a NodeContainerDecl node.
type ContainerDeclView struct {
	KeywordToken int
	Kind         TokenTag // TokKeywordStruct/Enum/Union/Opaque
	Members      []int
}

// ContainerDecl returns the structured view of a NodeContainerDecl node, or
// ok=false if node is not a container declaration.
func (t *Tree) ContainerDecl(node int) (ContainerDeclView, bool) {
	if node <= 0 || node >= len(t.Nodes) {
		return ContainerDeclView{}, false
	}
	n := t.Nodes[node]
	if n.Tag != NodeContainerDecl {
		return ContainerDeclView{}, false
	}
	return ContainerDeclView{
		KeywordToken: n.MainToken,
		Kind:         t.Tokens[n.MainToken].Tag,
		Members:      t.ExtraDataSlice(n.Data.LHS, n.Data.RHS),
	}, true
}

// PtrTypeView decodes a NodePtrType node.
type PtrTypeView struct {
	StarToken int
	Child     int
}

// PtrType returns the structured view of a NodePtrType node, or ok=false if
// node is not a pointer type.
func (t *Tree) PtrType(node int) (PtrTypeView, bool) {
	if node <= 0 || node >= len(t.Nodes) {
		return PtrTypeView{}, false
	}
	n := t.Nodes[node]
	if n.Tag != NodePtrType {
		return PtrTypeView{}, false
	}
	return PtrTypeView{StarToken: n.MainToken, Child: n.Data.LHS}, true
}

// ImportExprView decodes a NodeImportCall node (an @import("...") call).
type ImportExprView struct {
	BuiltinToken int
	PathNode     int
}

// ImportExpr returns the structured view of a NodeImportCall node, and the
// literal import path string (quotes stripped), or ok=false if node is not
// an import call or its path is not a string literal.
func (t *Tree) ImportExpr(node int) (ImportExprView, string, bool) {
	if node <= 0 || node >= len(t.Nodes) {
		return ImportExprView{}, "", false
	}
	n := t.Nodes[node]
	if n.Tag != NodeImportCall || n.Data.LHS == 0 {
		return ImportExprView{}, "", false
	}
	pathNode := t.Nodes[n.Data.LHS]
	if pathNode.Tag != NodeStringLiteral {
		return ImportExprView{}, "", false
	}
	raw := string(t.TokenSlice(pathNode.MainToken))
	path := unquote(raw)
	return ImportExprView{BuiltinToken: n.MainToken, PathNode: n.Data.LHS}, path, true
}

// unquote strips the surrounding double quotes from a Zen string literal's
// raw lexeme and resolves the small set of backslash escapes the lexer
// accepts (\", \\, \n, \t). Malformed escapes pass through unchanged.
func unquote(raw string) string {
	if len(raw) < 2 || raw[0] != '"' || raw[len(raw)-1] != '"' {
		return raw
	}
	body := raw[1 : len(raw)-1]
	out := make([]byte, 0, len(body))
	for i := 0; i < len(body); i++ {
		if body[i] == '\\' && i+1 < len(body) {
			i++
			switch body[i] {
			case 'n':
				out = append(out, '\n')
			case 't':
				out = append(out, '\t')
			case '"', '\\':
				out = append(out, body[i])
			default:
				out = append(out, '\\', body[i])
			}
			continue
		}
		out = append(out, body[i])
	}
	return string(out)
}

// FieldAccess decodes a NodeFieldAccess node into its base expression and
// the accessed field's identifier text.
func (t *Tree) FieldAccess(node int) (base int, field string, ok bool) {
	if node <= 0 || node >= len(t.Nodes) {
		return 0, "", false
	}
	n := t.Nodes[node]
	if n.Tag != NodeFieldAccess {
		return 0, "", false
	}
	return n.Data.LHS, string(t.TokenSlice(n.MainToken)), true
}

// CallView decodes a NodeCall node.
type CallView struct {
	Callee int
	Args   []int
}

// Call returns the structured view of a NodeCall node, or ok=false if node
// is not a call expression.
func (t *Tree) Call(node int) (CallView, bool) {
	if node <= 0 || node >= len(t.Nodes) {
		return CallView{}, false
	}
	n := t.Nodes[node]
	if n.Tag != NodeCall {
		return CallView{}, false
	}
	rangeOff := n.Data.RHS
	if rangeOff < 0 || rangeOff+1 >= len(t.ExtraData) {
		return CallView{Callee: n.Data.LHS}, true
	}
	start, end := t.ExtraData[rangeOff], t.ExtraData[rangeOff+1]
	return CallView{Callee: n.Data.LHS, Args: t.ExtraDataSlice(start, end)}, true
}

// Identifier returns the identifier text of a NodeIdentifier node.
func (t *Tree) Identifier(node int) (string, bool) {
	if node <= 0 || node >= len(t.Nodes) || t.Nodes[node].Tag != NodeIdentifier {
		return "", false
	}
	return string(t.TokenSlice(t.Nodes[node].MainToken)), true
}
