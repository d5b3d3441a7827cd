package analysis

import "sync"

// Builtin describes one `@name` builtin for completion/hover (spec.md
// §4.8's "static list of language builtins with signature/snippet").
type Builtin struct {
	Name      string
	Signature string
	Doc       string
	Snippet   string
}

var (
	builtinsOnce  sync.Once
	builtinsTable []Builtin
)

// Builtins returns the process-wide builtin completion list, building it
// on first use (spec.md §5: "a process-wide lazy singleton built on first
// use").
func Builtins() []Builtin {
	builtinsOnce.Do(func() {
		builtinsTable = []Builtin{
			{
				Name:      "@import",
				Signature: "@import(comptime path: []const u8) type",
				Doc:       "Imports another source file by path, returning its top-level container as a value.",
				Snippet:   "@import(\"${1:path}\")",
			},
			{
				Name:      "@sizeOf",
				Signature: "@sizeOf(comptime T: type) usize",
				Doc:       "Returns the number of bytes a value of type T occupies in memory.",
				Snippet:   "@sizeOf(${1:T})",
			},
			{
				Name:      "@TypeOf",
				Signature: "@TypeOf(expr: anytype) type",
				Doc:       "Returns the type of the given expression without evaluating it.",
				Snippet:   "@TypeOf(${1:expr})",
			},
			{
				Name:      "@as",
				Signature: "@as(comptime T: type, expr: anytype) T",
				Doc:       "Coerces expr to type T, or is a compile error if no such coercion exists.",
				Snippet:   "@as(${1:T}, ${2:expr})",
			},
			{
				Name:      "@intCast",
				Signature: "@intCast(comptime T: type, int: anytype) T",
				Doc:       "Converts an integer to another integer type, truncating if it does not fit.",
				Snippet:   "@intCast(${1:T}, ${2:int})",
			},
			{
				Name:      "@ptrCast",
				Signature: "@ptrCast(comptime T: type, ptr: anytype) T",
				Doc:       "Reinterprets a pointer as a pointer of another type.",
				Snippet:   "@ptrCast(${1:T}, ${2:ptr})",
			},
			{
				Name:      "@field",
				Signature: "@field(container: anytype, comptime name: []const u8) anytype",
				Doc:       "Accesses a container field whose name is known only at compile time as a string.",
				Snippet:   "@field(${1:container}, \"${2:name}\")",
			},
			{
				Name:      "@compileError",
				Signature: "@compileError(comptime msg: []const u8) noreturn",
				Doc:       "Aborts compilation with msg as the reported diagnostic.",
				Snippet:   "@compileError(\"${1:msg}\")",
			},
			{
				Name:      "@panic",
				Signature: "@panic(msg: []const u8) noreturn",
				Doc:       "Invokes the panic handler with msg and aborts the running program.",
				Snippet:   "@panic(\"${1:msg}\")",
			},
			{
				Name:      "@errorName",
				Signature: "@errorName(err: anyerror) []const u8",
				Doc:       "Returns the declared name of an error value as a string.",
				Snippet:   "@errorName(${1:err})",
			},
		}
	})
	return builtinsTable
}

// BuiltinByName returns the builtin named name, or ok=false if none
// matches. name may include or omit the leading '@'.
func BuiltinByName(name string) (Builtin, bool) {
	if len(name) > 0 && name[0] != '@' {
		name = "@" + name
	}
	for _, b := range Builtins() {
		if b.Name == name {
			return b, true
		}
	}
	return Builtin{}, false
}
