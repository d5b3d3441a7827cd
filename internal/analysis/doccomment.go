package analysis

import (
	"strings"

	"github.com/zenlang/zls/internal/lang"
)

// DocComment implements spec.md §4.6(d): collects the contiguous run of
// `///` doc-comment lines immediately preceding declToken, stripping the
// leading `///` marker and a single following space from each line, and
// joining them with newlines in source order.
//
// The run stops at the first token that is not itself a doc comment, and
// at a blank line between two doc comments or between the last doc comment
// and the declaration (a blank line detaches a comment block from the
// declaration it precedes).
func DocComment(t *lang.Tree, declToken int) string {
	lines := collectDocLines(t, declToken)
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n")
}

func collectDocLines(t *lang.Tree, declToken int) []string {
	if declToken <= 0 || declToken > len(t.Tokens) {
		return nil
	}
	start := declToken
	for i := declToken - 1; i >= 0; i-- {
		if t.Tokens[i].Tag != lang.TokDocComment {
			break
		}
		if i+1 < len(t.Tokens) && blankLineBetween(t, i, i+1) {
			break
		}
		start = i
	}

	var lines []string
	for i := start; i < declToken; i++ {
		lines = append(lines, stripDocMarker(string(t.TokenSlice(i))))
	}
	return lines
}

// blankLineBetween reports whether the source text between the end of
// token a and the start of token b contains more than one newline, i.e.
// there is a fully blank line separating them.
func blankLineBetween(t *lang.Tree, a, b int) bool {
	_, end := t.TokenSource(a)
	start, _ := t.TokenSource(b)
	if start < end || end > len(t.Source) || start > len(t.Source) {
		return false
	}
	gap := t.Source[end:start]
	return strings.Count(string(gap), "\n") > 1
}

// stripDocMarker removes a doc comment token's leading "///" and at most
// one following space.
func stripDocMarker(raw string) string {
	raw = strings.TrimPrefix(raw, "///")
	return strings.TrimPrefix(raw, " ")
}

// DocCommentForDecl returns the doc comment attached to decl, read from its
// owning handle's tree.
func (e *Engine) DocCommentForDecl(decl Declaration) string {
	h, ok := e.store.GetHandle(decl.HandleURI)
	if !ok || h.Tree == nil {
		return ""
	}
	declToken := declKeywordToken(h.Tree, decl)
	if declToken <= 0 {
		return ""
	}
	return DocComment(h.Tree, declToken)
}

// declKeywordToken returns the token a Declaration's doc comment should be
// searched backward from: the node's leading keyword/name token rather than
// AnchorToken, since e.g. a var decl's anchor is its name token but its doc
// comment precedes the 'const'/'var' keyword one token earlier.
func declKeywordToken(t *lang.Tree, decl Declaration) int {
	if decl.Node <= 0 || decl.Node >= len(t.Nodes) {
		return decl.AnchorToken
	}
	switch t.Nodes[decl.Node].Tag {
	case lang.NodeVarDecl, lang.NodeFnDecl, lang.NodeContainerDecl:
		return t.Nodes[decl.Node].MainToken
	case lang.NodeContainerField:
		return t.Nodes[decl.Node].MainToken
	default:
		return decl.AnchorToken
	}
}
