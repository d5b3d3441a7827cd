package lsp

import (
	"fmt"
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/zenlang/zls/internal/analysis"
	"github.com/zenlang/zls/internal/config"
	"github.com/zenlang/zls/internal/lang"
	"github.com/zenlang/zls/internal/store"
)

// textDocumentCompletion handles textDocument/completion. Per spec.md
// §4.8, the completion source depends on the cursor's position context,
// classified textually rather than from the (possibly stale) parse tree.
func (s *Server) textDocumentCompletion(_ *glsp.Context, params *protocol.CompletionParams) (any, error) {
	h, bytePos, ok := s.resolvePositionParams(params.TextDocumentPositionParams)
	if !ok {
		return nil, nil
	}

	e := s.workspace.engine
	cfg := s.workspace.cfg
	pc := analysis.ClassifyPosition(h.Tree.Source, bytePos)

	var items []protocol.CompletionItem
	switch pc.Kind {
	case analysis.PosBuiltin:
		items = builtinCompletions(cfg)

	case analysis.PosVarAccess, analysis.PosEmpty:
		for _, decl := range e.ScopeCompletions(h, bytePos) {
			items = append(items, buildCompletionItem(e, decl, cfg, nil))
		}

	case analysis.PosFieldAccess:
		items = fieldAccessCompletions(e, h, pc, cfg)

	case analysis.PosGlobalErrorSet:
		items = globalErrorSetCompletions(e)

	case analysis.PosLabel:
		for _, decl := range e.LabelsInScope(h, bytePos) {
			items = append(items, buildCompletionItem(e, decl, cfg, nil))
		}

	case analysis.PosEnumLiteral:
		items = enumLiteralCompletions(e, h, pc.RangeStart, cfg)

	case analysis.PosStringLiteral, analysis.PosOther:
		// No static completion source applies.
	}

	return items, nil
}

// builtinCompletions renders spec.md §4.8's precomputed builtin list.
func builtinCompletions(cfg config.Config) []protocol.CompletionItem {
	builtins := analysis.Builtins()
	items := make([]protocol.CompletionItem, 0, len(builtins))
	for _, b := range builtins {
		kind := protocol.CompletionItemKindFunction
		item := protocol.CompletionItem{
			Label: b.Name,
			Kind:  &kind,
		}
		detail := b.Signature
		item.Detail = &detail
		if b.Doc != "" {
			item.Documentation = protocol.MarkupContent{Kind: protocol.MarkupKindMarkdown, Value: b.Doc}
		}
		if cfg.EnableSnippets && b.Snippet != "" {
			snippet := b.Snippet
			format := protocol.InsertTextFormatSnippet
			item.InsertText = &snippet
			item.InsertTextFormat = &format
		}
		items = append(items, item)
	}
	return items
}

// fieldAccessCompletions resolves the dotted chain spanning pc's range to a
// container type and lists its members, plus the slice/pointer synthetic
// members spec.md §4.8 calls for.
func fieldAccessCompletions(e *analysis.Engine, h *store.Handle, pc analysis.PosContext, cfg config.Config) []protocol.CompletionItem {
	chainText := string(h.Tree.Source[pc.RangeStart:pc.RangeEnd])
	segments := strings.Split(chainText, ".")
	if len(segments) < 2 || segments[0] == "" {
		return nil
	}
	base := segments[0]
	fields := segments[1 : len(segments)-1] // last segment is the in-progress filter word, not a resolved field

	result, ok := e.ResolveFieldAccessChainFrom(h, base, pc.RangeStart, fields)
	if !ok {
		return nil
	}

	var items []protocol.CompletionItem
	if cfg.OperatorCompletes {
		items = append(items, syntheticReceiverCompletions(result.Original)...)
	}

	effective := result.Original
	if result.Unwrapped != nil {
		effective = *result.Unwrapped
	}
	if effective.Kind != analysis.TypeOther || effective.Node == 0 {
		return items
	}
	eh, ok := e.Handle(effective.HandleURI)
	if !ok || eh.Tree == nil {
		return items
	}

	for _, decl := range e.ContainerMembers(eh, effective.Node, !effective.IsTypeVal) {
		items = append(items, buildCompletionItem(e, decl, cfg, &effective))
	}
	return items
}

// syntheticReceiverCompletions adds the non-member completions spec.md
// §4.8 calls out for slice, pointer, and optional receivers: "len"/"ptr"
// for a slice, a "*" dereference operator for a pointer, and a "?" unwrap
// operator for an optional.
func syntheticReceiverCompletions(original analysis.TypeWithHandle) []protocol.CompletionItem {
	fieldKind := protocol.CompletionItemKindField
	opKind := protocol.CompletionItemKindOperator

	switch original.Kind {
	case analysis.TypeSlice:
		lenDetail, ptrDetail := "usize", "[*]"+original.Primitive
		return []protocol.CompletionItem{
			{Label: "len", Kind: &fieldKind, Detail: &lenDetail},
			{Label: "ptr", Kind: &fieldKind, Detail: &ptrDetail},
		}
	case analysis.TypePointer:
		detail := "dereference"
		return []protocol.CompletionItem{{Label: "*", Kind: &opKind, Detail: &detail}}
	case analysis.TypeOptional:
		detail := "unwrap"
		return []protocol.CompletionItem{{Label: "?", Kind: &opKind, Detail: &detail}}
	default:
		return nil
	}
}

// globalErrorSetCompletions lists every error name declared anywhere in
// the reachable document graph (spec.md §4.8's global_error_set source).
func globalErrorSetCompletions(e *analysis.Engine) []protocol.CompletionItem {
	kind := protocol.CompletionItemKindEnumMember
	seen := make(map[string]bool)
	var items []protocol.CompletionItem

	for _, h := range e.Store().AllHandles() {
		if h.Tree == nil {
			continue
		}
		t := h.Tree
		for _, root := range t.RootDecls() {
			t.Walk(root, func(node int) bool {
				n := t.Nodes[node]
				if n.Tag != lang.NodeErrorSetDecl {
					return true
				}
				for _, m := range t.ExtraDataSlice(n.Data.LHS, n.Data.RHS) {
					if m <= 0 || m >= len(t.Nodes) {
						continue
					}
					name := string(t.TokenSlice(t.Nodes[m].MainToken))
					if name == "" || seen[name] {
						continue
					}
					seen[name] = true
					items = append(items, protocol.CompletionItem{Label: name, Kind: &kind})
				}
				return true
			})
		}
	}
	return items
}

// buildCompletionItem renders a resolved declaration as a CompletionItem:
// label, kind, detail (signature), documentation, and — when the client
// supports snippets — a snippet insert text. fnOwner is the container type
// decl was found on, used for the member-function method-call idiom (the
// first parameter is omitted from the snippet when its type structurally
// matches fnOwner); nil when decl did not come from a field-access source.
func buildCompletionItem(e *analysis.Engine, decl analysis.Declaration, cfg config.Config, fnOwner *analysis.TypeWithHandle) protocol.CompletionItem {
	dh, ok := e.Handle(decl.HandleURI)
	if !ok || dh.Tree == nil {
		return protocol.CompletionItem{}
	}
	t := dh.Tree
	name := decl.Name(t)

	kind := completionItemKind(t, decl)
	detail := signatureFor(t, decl)
	item := protocol.CompletionItem{
		Label:  name,
		Kind:   &kind,
		Detail: &detail,
	}

	if doc := e.DocCommentForDecl(decl); doc != "" {
		item.Documentation = protocol.MarkupContent{Kind: protocol.MarkupKindMarkdown, Value: doc}
	}

	if cfg.EnableSnippets && decl.Kind == analysis.DeclAstNode && t.Nodes[decl.Node].Tag == lang.NodeFnDecl {
		snippet := fnCallSnippet(e, t, decl, fnOwner)
		format := protocol.InsertTextFormatSnippet
		item.InsertText = &snippet
		item.InsertTextFormat = &format
	}

	return item
}

// completionItemKind maps a resolved declaration to the closest
// CompletionItemKind.
func completionItemKind(t *lang.Tree, decl analysis.Declaration) protocol.CompletionItemKind {
	if decl.Kind == analysis.DeclParam {
		return protocol.CompletionItemKindVariable
	}
	if decl.Kind == analysis.DeclLabel {
		return protocol.CompletionItemKindConstant
	}
	if decl.Node <= 0 || decl.Node >= len(t.Nodes) {
		return protocol.CompletionItemKindText
	}
	switch t.Nodes[decl.Node].Tag {
	case lang.NodeFnDecl:
		return protocol.CompletionItemKindFunction
	case lang.NodeContainerField:
		return protocol.CompletionItemKindField
	case lang.NodeVarDecl:
		v, _ := t.VarDecl(decl.Node)
		if v.InitNode != 0 && t.Nodes[v.InitNode].Tag == lang.NodeContainerDecl {
			return protocol.CompletionItemKindClass
		}
		if v.IsConst {
			return protocol.CompletionItemKindConstant
		}
		return protocol.CompletionItemKindVariable
	default:
		return protocol.CompletionItemKindText
	}
}

// fnCallSnippet builds a tab-stop snippet for calling the function decl
// names, omitting the first parameter when fnOwner is non-nil and that
// parameter's declared type structurally matches fnOwner (spec.md §4.8's
// method-call idiom).
func fnCallSnippet(e *analysis.Engine, t *lang.Tree, decl analysis.Declaration, fnOwner *analysis.TypeWithHandle) string {
	name := decl.Name(t)
	fp, ok := t.FnProto(t.Nodes[decl.Node].Data.LHS)
	if !ok {
		return name + "()"
	}

	params := fp.Params
	skipFirst := false
	if fnOwner != nil && len(params) > 0 {
		if dh, ok := e.Handle(decl.HandleURI); ok {
			skipFirst = paramMatchesOwner(e, dh, t.ParamType(params[0]), *fnOwner)
		}
	}

	var b strings.Builder
	b.WriteString(name)
	b.WriteByte('(')
	stop := 1
	wrote := false
	for i, p := range params {
		if i == 0 && skipFirst {
			continue
		}
		if wrote {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "${%d:%s}", stop, t.ParamName(p))
		stop++
		wrote = true
	}
	b.WriteByte(')')
	return b.String()
}

// paramMatchesOwner reports whether the type node paramNode names the same
// declaration as owner, directly or through one pointer indirection (the
// common `fn method(self: *Self, ...)` receiver shape).
func paramMatchesOwner(e *analysis.Engine, dh *store.Handle, paramNode int, owner analysis.TypeWithHandle) bool {
	paramType, ok := e.ResolveTypeOfNode(dh, paramNode)
	if !ok {
		return false
	}
	if paramType.Kind == analysis.TypePointer {
		if paramType.Node == 0 {
			return false
		}
		inner, ok := e.ResolveTypeOfNode(dh, paramType.Node)
		if !ok {
			return false
		}
		paramType = inner
	}
	return paramType.HandleURI == owner.HandleURI && paramType.Node == owner.Node && paramType.Node != 0
}
