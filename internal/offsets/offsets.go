// Package offsets translates between byte offsets, UTF-8 rune columns, and
// UTF-16 code-unit columns, per spec.md §4.1.
//
// LSP positions are 0-based {line, character} pairs. The character unit
// depends on the encoding negotiated with the client during initialize:
// UTF-16 code units (the default, since most LSP clients are JavaScript
// hosts) or UTF-8 bytes (negotiated by newer clients). Both encodings count
// lines the same way: \n and \r\n each count as a single line break.
package offsets

import (
	"bytes"
	"unicode/utf8"

	"github.com/zenlang/zls/location"
)

// Encoding identifies the character-counting convention negotiated with the
// client.
type Encoding string

const (
	// UTF16 counts characters as UTF-16 code units; surrogate pairs count as
	// two. This is the LSP default.
	UTF16 Encoding = "utf-16"

	// UTF8 counts characters as bytes from the start of the line.
	UTF8 Encoding = "utf-8"
)

// Registry is the subset of internal/source.Registry's API that offset
// conversion depends on, so this package does not import internal/source
// directly (avoiding a dependency cycle risk as internal/source grows).
type Registry interface {
	ContentBySource(id location.SourceID) ([]byte, bool)
	LineStartByte(id location.SourceID, line int) (int, bool)
	PositionAt(id location.SourceID, byteOffset int) location.Position
}

// ByteOffset converts a 0-based LSP {line, character} position to a byte
// offset into the named source, under the given encoding. ok is false if the
// source is unknown or the line is out of range.
func ByteOffset(reg Registry, id location.SourceID, line, character int, enc Encoding) (offset int, ok bool) {
	if reg == nil {
		return 0, false
	}

	lineStart, ok := reg.LineStartByte(id, line+1) // registry lines are 1-based
	if !ok {
		return 0, false
	}

	content, ok := reg.ContentBySource(id)
	if !ok {
		return 0, false
	}

	return CharToByte(content, lineStart, character, enc), true
}

// CharToByte converts a 0-based character offset on a single line, given
// that line's start byte within content, to a byte offset, under enc. It is
// the line-local primitive ByteOffset builds on, exposed directly for
// callers that already have a line's start byte in hand without going
// through a Registry (internal/source's incremental edit merge, which
// operates on a bare text snapshot rather than a registered source).
func CharToByte(content []byte, lineStart, character int, enc Encoding) int {
	switch enc {
	case UTF8:
		return clampToLineEnd(content, lineStart, lineStart+character)
	default:
		return utf16ToByte(content, lineStart, character)
	}
}

// Position converts a 0-based LSP {line, character} position to a
// location.Position, under the given encoding.
func Position(reg Registry, id location.SourceID, line, character int, enc Encoding) (location.Position, bool) {
	off, ok := ByteOffset(reg, id, line, character, enc)
	if !ok {
		return location.Position{}, false
	}
	return reg.PositionAt(id, off), true
}

// ToUTF16 converts a byte offset within a line (lineStart <= targetByte) to
// the number of UTF-16 code units from lineStart.
func ToUTF16(content []byte, lineStart, targetByte int) int {
	if targetByte <= lineStart {
		return 0
	}

	units := 0
	pos := lineStart
	for pos < targetByte && pos < len(content) {
		r, size := utf8.DecodeRune(content[pos:])
		if r == utf8.RuneError && size <= 1 {
			units++
			pos++
			continue
		}
		if r == '\n' {
			break
		}
		if pos+size > targetByte {
			break
		}
		if r > 0xFFFF {
			units += 2
		} else {
			units++
		}
		pos += size
	}
	return units
}

// utf16ToByte converts a UTF-16 character offset on the line starting at
// lineStart to a byte offset. Mid-surrogate requests floor to the start of
// the surrounding rune.
func utf16ToByte(content []byte, lineStart, charOffset int) int {
	if charOffset <= 0 {
		return lineStart
	}

	pos := lineStart
	units := 0

	for pos < len(content) && units < charOffset {
		r, size := utf8.DecodeRune(content[pos:])
		if r == utf8.RuneError && size <= 1 {
			units++
			pos++
			continue
		}
		if r == '\n' {
			break
		}
		if r > 0xFFFF {
			if units+2 > charOffset && units+1 == charOffset {
				return pos
			}
			units += 2
		} else {
			units++
		}
		pos += size
	}

	return pos
}

// clampToLineEnd bounds offset to the end of the line starting at lineStart
// (the next '\n', or end of content).
func clampToLineEnd(content []byte, lineStart, offset int) int {
	if offset < lineStart {
		return lineStart
	}
	lineContent := content[lineStart:]
	if idx := bytes.IndexByte(lineContent, '\n'); idx >= 0 {
		lineEnd := lineStart + idx
		if offset > lineEnd {
			return lineEnd
		}
		return offset
	}
	if offset > len(content) {
		return len(content)
	}
	return offset
}

// Range converts a location.Span to an LSP-style [2]int start/end pair
// {line, character} under the given encoding. ok is false if the span or
// registry content is unavailable.
func Range(reg Registry, span location.Span, enc Encoding) (start, end [2]int, ok bool) {
	if reg == nil || span.IsZero() || !span.Start.IsKnown() {
		return [2]int{}, [2]int{}, false
	}

	content, hasContent := reg.ContentBySource(span.Source)

	startLine := max(span.Start.Line-1, 0)
	startChar := charForPosition(reg, content, hasContent, span.Source, span.Start, enc)

	endLine, endChar := startLine, startChar
	if span.End.IsKnown() {
		endLine = max(span.End.Line-1, 0)
		endChar = charForPosition(reg, content, hasContent, span.Source, span.End, enc)
	}

	return [2]int{startLine, startChar}, [2]int{endLine, endChar}, true
}

func charForPosition(reg Registry, content []byte, hasContent bool, id location.SourceID, pos location.Position, enc Encoding) int {
	if !hasContent || pos.Byte < 0 {
		return max(pos.Column-1, 0)
	}
	lineStart, ok := reg.LineStartByte(id, pos.Line)
	if !ok {
		return max(pos.Column-1, 0)
	}
	switch enc {
	case UTF8:
		return pos.Byte - lineStart
	default:
		return ToUTF16(content, lineStart, pos.Byte)
	}
}
