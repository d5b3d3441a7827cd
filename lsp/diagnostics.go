package lsp

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/zenlang/zls/internal/config"
	"github.com/zenlang/zls/internal/lang"
	"github.com/zenlang/zls/internal/source"
	"github.com/zenlang/zls/internal/store"
)

// serverSource is the diagnostic "source" field clients display next to
// each message (spec.md §4.8/§8 S5).
const serverSource = "zls"

// computeDiagnostics implements spec.md §4.8's "Diagnostics": an Error
// diagnostic for every parse error, plus Information-severity style
// diagnostics when cfg.WarnStyle is set, each keyed by the offending
// declaration's name token rather than its full range.
func computeDiagnostics(reg *source.Registry, h *store.Handle, cfg config.Config) []protocol.Diagnostic {
	if h.Tree == nil {
		return nil
	}
	t := h.Tree

	diags := make([]protocol.Diagnostic, 0, len(t.Errors))
	for _, e := range t.Errors {
		rng, ok := tokenRange(reg, h, e.Token)
		if !ok {
			continue
		}
		sev := protocol.DiagnosticSeverityError
		msg := t.RenderParseError(e)
		diags = append(diags, protocol.Diagnostic{
			Range:    rng,
			Severity: &sev,
			Source:   strPtr(serverSource),
			Message:  msg,
		})
	}

	if cfg.WarnStyle {
		diags = append(diags, styleDiagnostics(reg, h)...)
	}

	return diags
}

// styleDiagnostics implements the warn_style rules of spec.md §4.8:
// type-returning functions must be PascalCase, other functions camelCase,
// and fields snake_case.
func styleDiagnostics(reg *source.Registry, h *store.Handle) []protocol.Diagnostic {
	t := h.Tree
	var diags []protocol.Diagnostic

	t.Walk(0, func(node int) bool {
		n := t.Nodes[node]
		switch n.Tag {
		case lang.NodeFnDecl:
			fp, ok := t.FnProto(n.Data.LHS)
			if !ok {
				return true
			}
			name := fp.Name(t)
			if name == "" {
				return true
			}
			if returnsTypeValue(t, fp.ReturnType) {
				if !isPascalCase(name) {
					diags = append(diags, styleDiagnostic(reg, h, fp.NameToken,
						"function \""+name+"\" returns type and should be PascalCase"))
				}
			} else if !isCamelCase(name) {
				diags = append(diags, styleDiagnostic(reg, h, fp.NameToken,
					"function \""+name+"\" should be camelCase"))
			}
		case lang.NodeContainerField:
			f, ok := t.ContainerField(node)
			if !ok {
				return true
			}
			name := f.Name(t)
			if name != "" && !isSnakeCase(name) {
				diags = append(diags, styleDiagnostic(reg, h, f.NameToken,
					"field \""+name+"\" should be snake_case"))
			}
		}
		return true
	})

	return diags
}

func styleDiagnostic(reg *source.Registry, h *store.Handle, nameToken int, msg string) protocol.Diagnostic {
	rng, _ := tokenRange(reg, h, nameToken)
	sev := protocol.DiagnosticSeverityInformation
	return protocol.Diagnostic{
		Range:    rng,
		Severity: &sev,
		Source:   strPtr(serverSource),
		Message:  msg,
	}
}

// returnsTypeValue reports whether a function's declared return-type node
// is the literal identifier "type".
func returnsTypeValue(t *lang.Tree, returnType int) bool {
	if returnType <= 0 || returnType >= len(t.Nodes) {
		return false
	}
	if t.Nodes[returnType].Tag != lang.NodeIdentifier {
		return false
	}
	name, ok := t.Identifier(returnType)
	return ok && name == "type"
}

func isPascalCase(name string) bool {
	if name == "" {
		return false
	}
	r := rune(name[0])
	if r < 'A' || r > 'Z' {
		return false
	}
	for i := 0; i < len(name); i++ {
		if name[i] == '_' {
			return false
		}
	}
	return true
}

func isCamelCase(name string) bool {
	if name == "" {
		return false
	}
	r := rune(name[0])
	if r < 'a' || r > 'z' {
		return false
	}
	for i := 0; i < len(name); i++ {
		if name[i] == '_' {
			return false
		}
	}
	return true
}

func isSnakeCase(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		isUpper := c >= 'A' && c <= 'Z'
		if isUpper {
			return false
		}
	}
	return true
}

func strPtr(s string) *string { return &s }
