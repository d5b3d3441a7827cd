// Package refs is the L7 references & rename component of spec.md §4.7:
// whole-graph walks that locate every occurrence resolving to a given
// declaration, and the rename operation built atop that walk.
package refs

import (
	"strings"

	"github.com/zenlang/zls/internal/analysis"
	"github.com/zenlang/zls/internal/lang"
	"github.com/zenlang/zls/internal/store"
)

// Location pairs a handle URI with the token range of one occurrence.
type Location struct {
	URI        string
	StartToken int
	EndToken   int
}

// SymbolReferences implements spec.md §4.7's symbol_references: walks every
// handle in the store, resolving each identifier and field-access name
// token and collecting those whose resolved declaration equals decl.
// includeDecl controls whether decl's own defining occurrence is included;
// skipStd skips handles whose URI contains the engine's configured
// standard-library root.
func SymbolReferences(e *analysis.Engine, decl analysis.Declaration, includeDecl bool, skipStd bool) []Location {
	var out []Location
	stdRoot := e.Store().StdLibRoot()

	for _, h := range e.Store().AllHandles() {
		if h.Tree == nil {
			continue
		}
		if skipStd && stdRoot != "" && strings.Contains(h.URI, stdRoot) {
			continue
		}
		out = append(out, referencesInHandle(e, h, decl, includeDecl)...)
	}
	return out
}

// LabelReferences implements spec.md §4.7's label_references: scoped to the
// single handle holding decl, since labels have no cross-file visibility.
func LabelReferences(e *analysis.Engine, decl analysis.Declaration, includeDecl bool) []Location {
	h, ok := e.Handle(decl.HandleURI)
	if !ok || h.Tree == nil {
		return nil
	}
	return referencesInHandle(e, h, decl, includeDecl)
}

func referencesInHandle(e *analysis.Engine, h *store.Handle, decl analysis.Declaration, includeDecl bool) []Location {
	t := h.Tree
	var out []Location

	for _, root := range t.RootDecls() {
		t.Walk(root, func(node int) bool {
			n := t.Nodes[node]
			switch n.Tag {
			case lang.NodeIdentifier:
				if loc, ok := resolveIdentifierRef(e, h, node, decl); ok {
					out = append(out, loc)
				}
			case lang.NodeFieldAccess:
				if loc, ok := resolveFieldAccessRef(e, h, node, decl); ok {
					out = append(out, loc)
				}
			}
			return true
		})
	}

	if includeDecl && h.URI == decl.HandleURI {
		if declLoc, ok := declDefinitionLocation(t, decl); ok {
			out = append(out, declLoc)
		}
	}
	return out
}

func resolveIdentifierRef(e *analysis.Engine, h *store.Handle, node int, decl analysis.Declaration) (Location, bool) {
	t := h.Tree
	name, ok := t.Identifier(node)
	if !ok {
		return Location{}, false
	}
	start, _ := t.NodeTokenSource(node)
	resolved, ok := e.LookupSymbolGlobal(h, name, start)
	if !ok || !resolved.Equal(decl) {
		return Location{}, false
	}
	tok := t.Nodes[node].MainToken
	return Location{URI: h.URI, StartToken: tok, EndToken: tok}, true
}

func resolveFieldAccessRef(e *analysis.Engine, h *store.Handle, node int, decl analysis.Declaration) (Location, bool) {
	t := h.Tree
	base, field, ok := t.FieldAccess(node)
	if !ok {
		return Location{}, false
	}
	resolved, ok := e.ResolveFieldAccessDecl(h, base, field)
	if !ok || !resolved.Equal(decl) {
		return Location{}, false
	}
	tok := t.Nodes[node].MainToken
	return Location{URI: h.URI, StartToken: tok, EndToken: tok}, true
}

func declDefinitionLocation(t *lang.Tree, decl analysis.Declaration) (Location, bool) {
	if decl.AnchorToken <= 0 || decl.AnchorToken >= len(t.Tokens) {
		return Location{}, false
	}
	return Location{URI: decl.HandleURI, StartToken: decl.AnchorToken, EndToken: decl.AnchorToken}, true
}

// ToPosition converts a Location's start token into its byte range in one
// handle's tree, used by lsp providers to build LSP Locations/TextEdits
// without reaching into internal/lang themselves.
func ToPosition(t *lang.Tree, loc Location) (start, end int) {
	return t.TokenSource(loc.StartToken)
}
