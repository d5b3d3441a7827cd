package refs

import (
	"sort"

	"github.com/zenlang/zls/internal/analysis"
	"github.com/zenlang/zls/internal/lang"
)

// TextEdit is one token-range replacement within a single file.
type TextEdit struct {
	StartToken int
	EndToken   int
	NewText    string
}

// WorkspaceEdit groups TextEdits by the URI of the file they apply to.
type WorkspaceEdit struct {
	Changes map[string][]TextEdit
}

// RenameSymbol implements spec.md §4.7's rename_symbol: finds every
// reference to decl (including its own declaration) and groups a
// replacement TextEdit per occurrence by URI. Labels are renamed via
// LabelReferences since they have no cross-file visibility; everything
// else goes through the whole-graph SymbolReferences walk.
func RenameSymbol(e *analysis.Engine, decl analysis.Declaration, newName string) WorkspaceEdit {
	var locs []Location
	if decl.Kind == analysis.DeclLabel {
		locs = LabelReferences(e, decl, true)
	} else {
		locs = SymbolReferences(e, decl, true, false)
	}

	changes := make(map[string][]TextEdit, len(locs))
	for _, loc := range locs {
		changes[loc.URI] = append(changes[loc.URI], TextEdit{
			StartToken: loc.StartToken,
			EndToken:   loc.EndToken,
			NewText:    newName,
		})
	}
	for uri, edits := range changes {
		sort.Slice(edits, func(i, j int) bool { return edits[i].StartToken < edits[j].StartToken })
		changes[uri] = edits
	}
	return WorkspaceEdit{Changes: changes}
}

// TextEditByteRange returns the byte span in handle uri's current tree that
// a TextEdit replaces, for lsp providers to convert into an LSP Range via
// internal/offsets.
func TextEditByteRange(t *lang.Tree, edit TextEdit) (start, end int) {
	start, _ = t.TokenSource(edit.StartToken)
	_, end = t.TokenSource(edit.EndToken)
	return start, end
}
