package lsp

import (
	"sort"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/zenlang/zls/internal/analysis"
	"github.com/zenlang/zls/internal/lang"
	"github.com/zenlang/zls/internal/store"
)

// semanticTokenTypeNames is the legend advertised in initialize() and
// indexed into by every emitted token (spec.md §4.8's token-type list).
var semanticTokenTypeNames = []string{
	"keyword", "namespace", "type", "parameter", "variable", "enumMember",
	"field", "errorTag", "function", "comment", "string", "number",
	"operator", "builtin", "label",
}

const (
	semTokKeyword uint32 = iota
	semTokNamespace
	semTokType
	semTokParameter
	semTokVariable
	semTokEnumMember
	semTokField
	semTokErrorTag
	semTokFunction
	semTokComment
	semTokString
	semTokNumber
	semTokOperator
	semTokBuiltin
	semTokLabel
)

// semanticTokenModifierNames is the modifier legend, indexed as a bitmask
// (spec.md §4.8).
var semanticTokenModifierNames = []string{
	"declaration", "definition", "readonly", "static", "deprecated",
	"abstract", "async", "modification", "documentation", "defaultLibrary",
	"generic",
}

const (
	semModDeclaration  uint32 = 1 << 0
	semModReadonly     uint32 = 1 << 2
	semModDocumentation uint32 = 1 << 8
)

// semToken is one classified token, before delta encoding.
type semToken struct {
	tokenIdx  int
	typ       uint32
	modifiers uint32
}

// textDocumentSemanticTokensFull handles textDocument/semanticTokens/full:
// classifies every lexically interesting token in the file and returns
// spec.md §4.8's 5-int-per-token delta-encoded array.
func (s *Server) textDocumentSemanticTokensFull(_ *glsp.Context, params *protocol.SemanticTokensParams) (*protocol.SemanticTokens, error) {
	uri := params.TextDocument.URI
	h, ok := s.workspace.engine.Handle(uri)
	if !ok || h.Tree == nil {
		return &protocol.SemanticTokens{Data: []uint32{}}, nil
	}

	info := classifyTokens(s.workspace.engine, h)

	type posTok struct {
		line, char, length int
		typ, modifiers      uint32
	}
	toks := make([]posTok, 0, len(info))
	for idx, tok := range info {
		rng, ok := tokenRange(s.workspace.store.Sources(), h, idx)
		if !ok {
			continue
		}
		length := int(rng.End.Character) - int(rng.Start.Character)
		if length <= 0 {
			continue
		}
		toks = append(toks, posTok{
			line:      int(rng.Start.Line),
			char:      int(rng.Start.Character),
			length:    length,
			typ:       tok.typ,
			modifiers: tok.modifiers,
		})
	}

	sort.Slice(toks, func(i, j int) bool {
		if toks[i].line != toks[j].line {
			return toks[i].line < toks[j].line
		}
		return toks[i].char < toks[j].char
	})

	data := make([]uint32, 0, len(toks)*5)
	prevLine, prevChar := 0, 0
	for _, tok := range toks {
		deltaLine := tok.line - prevLine
		deltaChar := tok.char
		if deltaLine == 0 {
			deltaChar = tok.char - prevChar
		}
		data = append(data, uint32(deltaLine), uint32(deltaChar), uint32(tok.length), tok.typ, tok.modifiers)
		prevLine, prevChar = tok.line, tok.char
	}

	return &protocol.SemanticTokens{Data: data}, nil
}

// classifyTokens assigns a semantic type/modifier pair to every token index
// worth highlighting: a raw lexical pass for comments/literals/keywords/
// operators, followed by an AST walk that resolves identifiers to their
// declaration kind.
func classifyTokens(e *analysis.Engine, h *store.Handle) map[int]semToken {
	t := h.Tree
	out := make(map[int]semToken, len(t.Tokens))

	for i, tok := range t.Tokens {
		switch {
		case tok.Tag == lang.TokDocComment:
			out[i] = semToken{tokenIdx: i, typ: semTokComment, modifiers: semModDocumentation}
		case tok.Tag == lang.TokLineComment:
			out[i] = semToken{tokenIdx: i, typ: semTokComment}
		case tok.Tag == lang.TokStringLiteral:
			out[i] = semToken{tokenIdx: i, typ: semTokString}
		case tok.Tag == lang.TokIntegerLiteral || tok.Tag == lang.TokFloatLiteral:
			out[i] = semToken{tokenIdx: i, typ: semTokNumber}
		case tok.Tag == lang.TokBuiltin:
			out[i] = semToken{tokenIdx: i, typ: semTokBuiltin}
		case isKeywordTag(tok.Tag):
			out[i] = semToken{tokenIdx: i, typ: semTokKeyword}
		case isOperatorTag(tok.Tag):
			out[i] = semToken{tokenIdx: i, typ: semTokOperator}
		}
	}

	for _, root := range t.RootDecls() {
		t.Walk(root, func(node int) bool {
			classifyNode(e, h, node, out)
			return true
		})
	}

	return out
}

func classifyNode(e *analysis.Engine, h *store.Handle, node int, out map[int]semToken) {
	t := h.Tree
	n := t.Nodes[node]
	switch n.Tag {
	case lang.NodeFnDecl:
		fp, ok := t.FnProto(n.Data.LHS)
		if ok {
			out[fp.NameToken] = semToken{tokenIdx: fp.NameToken, typ: semTokFunction, modifiers: semModDeclaration}
		}
	case lang.NodeParam:
		out[n.MainToken] = semToken{tokenIdx: n.MainToken, typ: semTokParameter}
	case lang.NodeVarDecl:
		v, ok := t.VarDecl(node)
		if !ok {
			return
		}
		mods := uint32(semModDeclaration)
		typ := semTokVariable
		if v.IsConst {
			mods |= semModReadonly
		}
		if v.InitNode != 0 && t.Nodes[v.InitNode].Tag == lang.NodeContainerDecl {
			typ = semTokType
		}
		out[v.NameToken] = semToken{tokenIdx: v.NameToken, typ: typ, modifiers: mods}
	case lang.NodeContainerField:
		f, ok := t.ContainerField(node)
		if ok {
			out[f.NameToken] = semToken{tokenIdx: f.NameToken, typ: semTokField, modifiers: semModDeclaration}
		}
	case lang.NodeErrorSetDecl:
		for _, m := range t.ExtraDataSlice(n.Data.LHS, n.Data.RHS) {
			if m <= 0 || m >= len(t.Nodes) {
				continue
			}
			out[t.Nodes[m].MainToken] = semToken{tokenIdx: t.Nodes[m].MainToken, typ: semTokErrorTag}
		}
	case lang.NodeLabeledBlock:
		out[n.MainToken] = semToken{tokenIdx: n.MainToken, typ: semTokLabel, modifiers: semModDeclaration}
	case lang.NodeCall:
		c, ok := t.Call(node)
		if ok && c.Callee > 0 && c.Callee < len(t.Nodes) && t.Nodes[c.Callee].Tag == lang.NodeIdentifier {
			tok := t.Nodes[c.Callee].MainToken
			if _, exists := out[tok]; !exists {
				out[tok] = semToken{tokenIdx: tok, typ: semTokFunction}
			}
		}
	case lang.NodeFieldAccess:
		out[n.MainToken] = semToken{tokenIdx: n.MainToken, typ: semTokField}
	case lang.NodeIdentifier:
		tok := n.MainToken
		if _, exists := out[tok]; exists {
			return
		}
		out[tok] = classifyIdentifier(e, h, node)
	}
}

// classifyIdentifier resolves node's declaration to pick a semantic type
// for an identifier's use, falling back to "variable" when resolution
// fails (an unbound name, or a usage the analysis engine cannot yet type).
func classifyIdentifier(e *analysis.Engine, h *store.Handle, node int) semToken {
	t := h.Tree
	tok := t.Nodes[node].MainToken
	name, _ := t.Identifier(node)
	if identifierPrimitiveNames[name] {
		return semToken{tokenIdx: tok, typ: semTokType}
	}
	start, _ := t.NodeTokenSource(node)
	decl, ok := e.LookupSymbolGlobal(h, name, start)
	if !ok {
		return semToken{tokenIdx: tok, typ: semTokVariable}
	}
	if decl.Kind == analysis.DeclParam {
		return semToken{tokenIdx: tok, typ: semTokParameter}
	}
	dh, ok := e.Handle(decl.HandleURI)
	if !ok || decl.Node <= 0 || decl.Node >= len(dh.Tree.Nodes) {
		return semToken{tokenIdx: tok, typ: semTokVariable}
	}
	switch dh.Tree.Nodes[decl.Node].Tag {
	case lang.NodeFnDecl:
		return semToken{tokenIdx: tok, typ: semTokFunction}
	case lang.NodeContainerField:
		return semToken{tokenIdx: tok, typ: semTokField}
	case lang.NodeVarDecl:
		v, ok := dh.Tree.VarDecl(decl.Node)
		if ok && v.InitNode != 0 && dh.Tree.Nodes[v.InitNode].Tag == lang.NodeContainerDecl {
			return semToken{tokenIdx: tok, typ: semTokType}
		}
	}
	return semToken{tokenIdx: tok, typ: semTokVariable}
}

// identifierPrimitiveNames mirrors internal/analysis's unexported primitive
// name table, duplicated here since highlighting needs it and the analysis
// package does not export it for this single use.
var identifierPrimitiveNames = map[string]bool{
	"i8": true, "i16": true, "i32": true, "i64": true, "isize": true,
	"u8": true, "u16": true, "u32": true, "u64": true, "usize": true,
	"f32": true, "f64": true, "bool": true, "void": true, "type": true,
	"anyerror": true,
}

func isKeywordTag(tag lang.TokenTag) bool {
	return tag >= lang.TokKeywordFn && tag <= lang.TokKeywordOrelse
}

func isOperatorTag(tag lang.TokenTag) bool {
	switch tag {
	case lang.TokBang, lang.TokQuestion, lang.TokStar, lang.TokAmpersand,
		lang.TokArrow, lang.TokPlus, lang.TokMinus, lang.TokSlash,
		lang.TokPercent, lang.TokEqualEqual:
		return true
	default:
		return false
	}
}
