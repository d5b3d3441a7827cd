package lsp

import (
	"strings"

	"github.com/zenlang/zls/internal/analysis"
	"github.com/zenlang/zls/internal/lang"
)

// signatureFor renders decl's declaration header as source text, the way
// hover and completion detail strings present it: for a function this is
// the `fn name(params) returnType` proto text (spec.md §8 S1's expected
// substring), for everything else it is the declaration's own span.
func signatureFor(t *lang.Tree, decl analysis.Declaration) string {
	switch decl.Kind {
	case analysis.DeclAstNode:
		n := t.Nodes[decl.Node]
		if n.Tag == lang.NodeFnDecl {
			start, end := t.Span(n.Data.LHS)
			return strings.TrimSpace(string(t.Source[start:end]))
		}
		start, end := t.Span(decl.Node)
		return strings.TrimSpace(string(t.Source[start:end]))
	case analysis.DeclLabel:
		return decl.Name(t) + ":"
	default:
		return decl.Name(t)
	}
}
