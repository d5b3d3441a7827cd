package lsp

import (
	"github.com/zenlang/zls/internal/analysis"
	"github.com/zenlang/zls/internal/store"
)

// identifierWordAt returns the identifier-shaped run of bytes touching
// bytePos (the word the cursor sits in or immediately after), and its
// [start, end) byte range. Used by hover/definition/references/rename to
// find "the symbol under the cursor" from plain text, independent of
// analysis.ClassifyPosition's trailing-edge convention.
func identifierWordAt(text []byte, bytePos int) (word string, start, end int) {
	if bytePos < 0 {
		bytePos = 0
	}
	if bytePos > len(text) {
		bytePos = len(text)
	}
	start, end = bytePos, bytePos
	for start > 0 && isIdentStart(text[start-1]) {
		start--
	}
	for end < len(text) && isIdentStart(text[end]) {
		end++
	}
	if start == end {
		return "", 0, 0
	}
	return string(text[start:end]), start, end
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// chainBefore walks backward from dotPos (the index of a '.') collecting
// the dotted identifier chain immediately preceding it: for "a.b.c." with
// dotPos at the final dot, returns ("a", ["b", "c"]).
func chainBefore(text []byte, dotPos int) (base string, fields []string) {
	var segments []string
	end := dotPos
	for {
		segStart := end
		for segStart > 0 && isIdentStart(text[segStart-1]) {
			segStart--
		}
		if segStart == end {
			break
		}
		segments = append([]string{string(text[segStart:end])}, segments...)
		if segStart == 0 || text[segStart-1] != '.' {
			break
		}
		end = segStart - 1
	}
	if len(segments) == 0 {
		return "", nil
	}
	return segments[0], segments[1:]
}

// symbolAtPosition resolves the declaration named by the identifier
// touching bytePos: a plain identifier is resolved via scope lookup; an
// identifier following a `.` is resolved as a field-access chain member.
// Falls back to label lookup (for `break :label`/block-label identifiers)
// when no value declaration matches.
func symbolAtPosition(e *analysis.Engine, h *store.Handle, bytePos int) (analysis.Declaration, bool) {
	if h.Tree == nil {
		return analysis.Declaration{}, false
	}
	text := h.Tree.Source
	word, start, _ := identifierWordAt(text, bytePos)
	if word == "" {
		return analysis.Declaration{}, false
	}

	if start > 0 && text[start-1] == '.' {
		base, fields := chainBefore(text, start-1)
		if base != "" {
			if decl, ok := resolveChainMember(e, h, base, start-1, fields, word); ok {
				return decl, true
			}
		}
	}

	if decl, ok := e.LookupSymbolGlobal(h, word, start); ok {
		return decl, true
	}
	return e.LookupLabel(h, word, start)
}

// resolveChainMember resolves word as the member following base.fields...
// in a field-access chain, by resolving base.fields to a container type
// and then looking word up as one of its members.
func resolveChainMember(e *analysis.Engine, h *store.Handle, base string, basePos int, fields []string, word string) (analysis.Declaration, bool) {
	result, ok := e.ResolveFieldAccessChainFrom(h, base, basePos, fields)
	if !ok {
		return analysis.Declaration{}, false
	}
	cur := result.Original
	ch, ok := e.Handle(cur.HandleURI)
	if !ok {
		return analysis.Declaration{}, false
	}
	if cur.Node == 0 {
		return e.LookupSymbolGlobal(ch, word, 0)
	}
	return e.LookupSymbolContainer(ch, cur.Node, word, !cur.IsTypeVal)
}
