// Package analysis is the L6 analysis engine of spec.md §4.6: symbol and
// declaration lookup, type resolution, field-access resolution, doc-comment
// collection, and the position-context classifier. It is the largest
// component of the server, built atop internal/store's document graph and
// internal/lang's flat AST.
package analysis

import "github.com/zenlang/zls/internal/lang"

// DeclKind tags the variant of a resolved Declaration, mirroring spec.md
// §3's tagged Declaration union.
type DeclKind int

const (
	DeclAstNode DeclKind = iota
	DeclParam
	DeclPointerPayload
	DeclArrayPayload
	DeclArrayIndex
	DeclSwitchPayload
	DeclLabel
)

func (k DeclKind) String() string {
	switch k {
	case DeclAstNode:
		return "ast_node"
	case DeclParam:
		return "param_decl"
	case DeclPointerPayload:
		return "pointer_payload"
	case DeclArrayPayload:
		return "array_payload"
	case DeclArrayIndex:
		return "array_index"
	case DeclSwitchPayload:
		return "switch_payload"
	case DeclLabel:
		return "label_decl"
	default:
		return "unknown"
	}
}

// Declaration is a resolved symbol (spec.md §3). Node is the declaring AST
// node (0 for pattern-like bindings that have no node of their own, e.g. a
// switch payload capture); AnchorToken is the name token used both for
// equality (per spec.md §4.7: "(handle_uri, decl_kind, anchor_token_index)")
// and as the Location a references/rename/goto result points at.
type Declaration struct {
	Kind        DeclKind
	HandleURI   string
	Node        int
	AnchorToken int
}

// IsZero reports whether d is the zero Declaration (no result).
func (d Declaration) IsZero() bool {
	return d.HandleURI == "" && d.Node == 0 && d.AnchorToken == 0 && d.Kind == DeclAstNode
}

// Equal compares two declarations by the identity spec.md §4.7 specifies:
// owning handle, kind, and anchor token, not by node index (two lookups of
// the same declaration may resolve slightly different Node values across
// re-parses but share the same anchor token within one parse).
func (d Declaration) Equal(o Declaration) bool {
	return d.HandleURI == o.HandleURI && d.Kind == o.Kind && d.AnchorToken == o.AnchorToken
}

// Name returns the declaration's identifier text, read from its anchor
// token in tree.
func (d Declaration) Name(tree *lang.Tree) string {
	if d.AnchorToken <= 0 || d.AnchorToken >= len(tree.Tokens) {
		return ""
	}
	return string(tree.TokenSlice(d.AnchorToken))
}
