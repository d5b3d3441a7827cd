// Package source provides a document source registry for content storage and
// position conversion.
//
// This package is the internal foundation for managing document content and
// computing byte offset / line-column conversions. It does not perform
// diagnostic rendering - that responsibility belongs to the lsp package.
//
// # Responsibilities
//
// The source registry has the following responsibilities:
//
//   - Store raw source bytes keyed by [location.SourceID]
//   - Precompute line-start byte offsets for efficient position lookup
//   - Precompute rune-to-byte offset tables for parser token conversion
//   - Convert byte offset to [location.Position] (PositionAt)
//   - Enforce uniqueness of source identity keys
//
// # Newline and Column Handling
//
// The registry follows these rules for newline handling:
//
//   - Treat \r\n (CRLF) as a single line break
//   - Treat \n (LF) as a single line break
//   - Treat bare \r (CR) as a single line break
//
// Column counting follows these rules:
//
//   - Columns count runes (Unicode code points) from line start, not bytes
//   - Tab characters count as 1 rune (no width expansion)
//   - Column numbers are 1-based (first column is 1)
//
// # Lifecycle and Concurrency
//
// The registry is designed for a "build once, read many" lifecycle per
// analysis pass, but is re-registered wholesale on every re-parse:
//
//   - Content is stored via Replace whenever a handle's tree is rebuilt
//   - Register and Replace are safe for concurrent access (synchronized with RWMutex)
//   - Read methods (ContentBySource, PositionAt, etc.) are safe for concurrent reads
//   - Clear() resets the registry, requiring exclusive access
//
// # Identity and Uniqueness
//
// Source identity uses [location.SourceID]. The registry enforces uniqueness:
//
//   - Registration with an existing SourceID and identical content succeeds (idempotent)
//   - Registration with an existing SourceID and different content returns [*KeyCollisionError]
//
// # Interface Satisfaction
//
// The [*Registry] type satisfies [location.PositionRegistry] via PositionAt.
//
// # Usage
//
//	reg := source.NewRegistry()
//
//	sourceID := location.MustSourceIDFromPath("main.zen")
//	if err := reg.Register(sourceID, content); err != nil {
//	    // handle collision error
//	}
//
//	pos := reg.PositionAt(sourceID, byteOffset)
//	if !pos.IsZero() {
//	    // pos.Line, pos.Column, pos.Byte are populated
//	}
package source
