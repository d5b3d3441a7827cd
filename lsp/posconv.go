package lsp

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/zenlang/zls/internal/offsets"
	"github.com/zenlang/zls/internal/source"
	"github.com/zenlang/zls/location"
)

// PositionEncoding identifies how LSP character offsets are counted within
// a line. glsp only implements LSP 3.16, which has no position-encoding
// negotiation, so the server always advertises and uses PositionEncodingUTF16
// (the LSP default); PositionEncodingUTF8 exists for tests and for a future
// 3.17 upgrade, per spec.md §4.1.
type PositionEncoding string

const (
	PositionEncodingUTF16 PositionEncoding = "utf-16"
	PositionEncodingUTF8  PositionEncoding = "utf-8"
)

func (p PositionEncoding) toOffsets() offsets.Encoding {
	if p == PositionEncodingUTF8 {
		return offsets.UTF8
	}
	return offsets.UTF16
}

// byteOffsetFromLSP converts an LSP position into a byte offset in id's
// content, per spec.md §4.1's round-trip requirement.
func byteOffsetFromLSP(reg *source.Registry, id location.SourceID, pos protocol.Position, enc PositionEncoding) (int, bool) {
	return offsets.ByteOffset(reg, id, int(pos.Line), int(pos.Character), enc.toOffsets())
}

// byteRangeToLSP converts a [startByte, endByte) byte range in id's content
// to an LSP Range, resolving line/column via the registry first since
// offsets.Range operates on located Positions rather than bare bytes.
func byteRangeToLSP(reg *source.Registry, id location.SourceID, startByte, endByte int) (protocol.Range, bool) {
	return byteRangeToLSPEnc(reg, id, startByte, endByte, PositionEncodingUTF16)
}

func byteRangeToLSPEnc(reg *source.Registry, id location.SourceID, startByte, endByte int, enc PositionEncoding) (protocol.Range, bool) {
	startPos := reg.PositionAt(id, startByte)
	endPos := reg.PositionAt(id, endByte)
	if !startPos.IsKnown() {
		return protocol.Range{}, false
	}
	span := location.Span{Start: startPos, End: endPos, Source: id}
	start, end, ok := offsets.Range(reg, span, enc.toOffsets())
	if !ok {
		return protocol.Range{}, false
	}
	return protocol.Range{
		Start: protocol.Position{Line: uint32(start[0]), Character: uint32(start[1])},
		End:   protocol.Position{Line: uint32(end[0]), Character: uint32(end[1])},
	}, true
}
