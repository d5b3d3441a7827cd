package source

import (
	"bytes"
	"strings"

	"github.com/zenlang/zls/internal/offsets"
)

// Change is one incoming content-change event for an open document. With
// HasRange false it is a whole-document replacement (the client's "Whole"
// sync kind); with HasRange true it replaces exactly the text spanning
// [StartLine,StartChar) through [EndLine,EndChar) with NewText, spec.md
// §4.3's L3 replace(range, text) operation.
type Change struct {
	HasRange             bool
	StartLine, StartChar int
	EndLine, EndChar     int
	NewText              string
}

// ApplyChanges replays changes against current in order, each one splicing
// into the buffer left by the previous change, per spec.md §3's "incremental
// edits replay into the buffer" lifecycle: the result is exactly what
// applying the same changes as plain-string splices, one at a time, would
// produce. A change whose range does not fit inside the buffer it applies
// against degrades to a whole-document replacement with its own NewText,
// the same fallback a misbehaving client's desynced offsets get rather than
// an out-of-range panic.
func ApplyChanges(current string, enc offsets.Encoding, changes []Change) string {
	text := normalizeLineEndings(current)
	for _, ch := range changes {
		newText := normalizeLineEndings(ch.NewText)
		if !ch.HasRange {
			text = newText
			continue
		}
		text = replaceRange(text, ch, newText, enc)
	}
	return text
}

// replaceRange splices newText into text over the byte range [ch.StartLine,
// ch.StartChar)-[ch.EndLine,ch.EndChar), converting that LSP range to byte
// offsets against text itself (not a registered source, since intermediate
// buffers from a multi-change notification are never registered).
func replaceRange(text string, ch Change, newText string, enc offsets.Encoding) string {
	content := []byte(text)
	start, ok := lineCharToByte(content, ch.StartLine, ch.StartChar, enc)
	if !ok {
		return newText
	}
	end, ok := lineCharToByte(content, ch.EndLine, ch.EndChar, enc)
	if !ok || end < start {
		return newText
	}

	var b strings.Builder
	b.Grow(len(content) - (end - start) + len(newText))
	b.Write(content[:start])
	b.WriteString(newText)
	b.Write(content[end:])
	return b.String()
}

// lineCharToByte locates line's start byte by counting line breaks in
// content directly, then converts character to a byte offset on that line
// via internal/offsets.CharToByte, the same line-local primitive ByteOffset
// uses once a source is registered.
func lineCharToByte(content []byte, line, character int, enc offsets.Encoding) (int, bool) {
	lineStart := 0
	for l := 0; l < line; l++ {
		idx := bytes.IndexByte(content[lineStart:], '\n')
		if idx < 0 {
			return 0, false
		}
		lineStart += idx + 1
	}
	if lineStart > len(content) {
		return 0, false
	}
	return offsets.CharToByte(content, lineStart, character, enc), true
}

// normalizeLineEndings collapses CRLF and bare CR into LF, so byte offsets
// computed against a client's self-reported {line, character} positions
// (which count a CRLF pair as a single line break) land on the same bytes
// this function's own line-counting does.
func normalizeLineEndings(s string) string {
	if !strings.ContainsRune(s, '\r') {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return s
}
