package analysis

// TypeKind tags the variant of a resolved type (spec.md §3's TypeWithHandle
// "data" union).
type TypeKind int

const (
	TypeSlice TypeKind = iota
	TypeErrorUnion
	TypePointer
	TypeOptional
	TypeOther
	TypePrimitive
)

// TypeWithHandle is a resolved type, carrying the handle its defining node
// lives in since types are frequently cross-file (spec.md §3).
type TypeWithHandle struct {
	Kind TypeKind

	// Node is the payload type node for Pointer/Optional/ErrorUnion kinds,
	// and the container node for Other (0 when Other names a whole imported
	// file); 0 for Slice/Primitive.
	Node int

	// Primitive holds the primitive type name (e.g. "i32", "bool") when
	// Kind == TypePrimitive.
	Primitive string

	// IsTypeVal is true iff the value itself *is a type* (a struct/enum
	// declaration used as a value), which determines whether completion
	// offers type-only members or instance members.
	IsTypeVal bool

	HandleURI string
}

// IsZero reports whether t carries no resolved type.
func (t TypeWithHandle) IsZero() bool {
	return t.HandleURI == "" && t.Node == 0 && t.Primitive == ""
}

// FieldAccessReturn is the result of resolving a dotted expression chain
// (spec.md §3/§4.6(c)).
type FieldAccessReturn struct {
	// Original is the declared type of the final member in the chain.
	Original TypeWithHandle

	// Unwrapped is Original after following one level of `?`/`!` wrapper,
	// or nil if Original is not a pointer, optional, or error union.
	Unwrapped *TypeWithHandle
}
