package analysis

// PosContextKind tags the syntactic category at a cursor position (spec.md
// §4.6(e)).
type PosContextKind int

const (
	PosOther PosContextKind = iota
	PosEmpty
	PosBuiltin
	PosVarAccess
	PosFieldAccess
	PosStringLiteral
	PosEnumLiteral
	PosGlobalErrorSet
	PosLabel
)

// PosContext is the classifier's result. Range is only meaningful for
// PosFieldAccess: it spans from the start of the leading identifier in the
// chain to the cursor.
type PosContext struct {
	Kind       PosContextKind
	RangeStart int
	RangeEnd   int
}

// ClassifyPosition implements spec.md §4.6(e): classifies the cursor at
// bytePos in text using a coarse backward text scan rather than the parse
// tree, so it tolerates syntactically broken code around the cursor (the
// usual state of the buffer mid-edit, with the tree one keystroke stale).
func ClassifyPosition(text []byte, bytePos int) PosContext {
	if bytePos < 0 {
		bytePos = 0
	}
	if bytePos > len(text) {
		bytePos = len(text)
	}

	if isInsideStringLiteral(text, bytePos) {
		return PosContext{Kind: PosStringLiteral}
	}

	i := bytePos
	for i > 0 && isIdentByte(text[i-1]) {
		i--
	}

	if i == bytePos {
		// Nothing identifier-like immediately before the cursor; check for
		// the special single-character triggers.
		if i > 0 {
			switch text[i-1] {
			case '@':
				return PosContext{Kind: PosBuiltin}
			case '.':
				return classifyDot(text, i-1, bytePos)
			case ':':
				if hasPrecedingBreakKeyword(text, i-1) {
					return PosContext{Kind: PosLabel}
				}
			}
		}
		if bytePos == 0 || isBoundaryWhitespace(text, bytePos) {
			return PosContext{Kind: PosEmpty}
		}
		return PosContext{Kind: PosOther}
	}

	if i > 0 && text[i-1] == '@' {
		return PosContext{Kind: PosBuiltin, RangeStart: i - 1, RangeEnd: bytePos}
	}
	if i > 0 && text[i-1] == '.' {
		return classifyDot(text, i-1, bytePos)
	}
	return PosContext{Kind: PosVarAccess, RangeStart: i, RangeEnd: bytePos}
}

func isIdentByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func isBoundaryWhitespace(text []byte, pos int) bool {
	for j := pos - 1; j >= 0 && j >= pos-8; j-- {
		if text[j] == '\n' {
			return true
		}
		if !isSpaceByte(text[j]) {
			return false
		}
	}
	return pos <= 8
}

func isSpaceByte(c byte) bool { return c == ' ' || c == '\t' || c == '\r' || c == '\n' }

// classifyDot handles a cursor sitting after `.` or `base.partial`: with no
// base identifier before the dot, it's an enum-literal shorthand (`.Tag`);
// with a bare `error` base, it's the global error set; otherwise it's a
// field-access chain spanning back to the leading identifier.
func classifyDot(text []byte, dot int, cursor int) PosContext {
	baseEnd := dot
	baseStart := baseEnd
	for baseStart > 0 && isIdentByte(text[baseStart-1]) {
		baseStart--
	}
	if baseStart == baseEnd {
		return PosContext{Kind: PosEnumLiteral, RangeStart: dot, RangeEnd: cursor}
	}
	if string(text[baseStart:baseEnd]) == "error" {
		return PosContext{Kind: PosGlobalErrorSet, RangeStart: baseStart, RangeEnd: cursor}
	}
	leadStart := leadingChainStart(text, baseStart)
	return PosContext{Kind: PosFieldAccess, RangeStart: leadStart, RangeEnd: cursor}
}

// leadingChainStart walks backward over a full `a.b.c` chain starting from
// the beginning of its first identifier segment, to find the start of the
// leading identifier for the field-access range.
func leadingChainStart(text []byte, segStart int) int {
	pos := segStart
	for pos > 0 {
		j := pos - 1
		if text[j] != '.' {
			break
		}
		k := j
		for k > 0 && isIdentByte(text[k-1]) {
			k--
		}
		if k == j {
			break
		}
		pos = k
	}
	return pos
}

func hasPrecedingBreakKeyword(text []byte, colon int) bool {
	j := colon
	for j > 0 && isSpaceByte(text[j-1]) {
		j--
	}
	start := j
	for start > 0 && isIdentByte(text[start-1]) {
		start--
	}
	word := string(text[start:j])
	return word == "break" || word == "continue"
}

// isInsideStringLiteral reports whether bytePos falls strictly inside an
// unterminated or terminated double-quoted string on its current line,
// counting unescaped quotes from the start of the line.
func isInsideStringLiteral(text []byte, bytePos int) bool {
	lineStart := bytePos
	for lineStart > 0 && text[lineStart-1] != '\n' {
		lineStart--
	}
	inside := false
	for i := lineStart; i < bytePos && i < len(text); i++ {
		if text[i] == '\\' && i+1 < len(text) {
			i++
			continue
		}
		if text[i] == '"' {
			inside = !inside
		}
	}
	return inside
}

