package lang

// WalkFunc is called once for every node reachable from the walk's root,
// parent before children. Returning false skips node's children but does
// not stop the walk; sibling and uncle subtrees are still visited.
type WalkFunc func(node int) bool

// Walk performs a depth-first, parent-before-children traversal of node
// and everything it reaches, covering every NodeTag the parser produces.
// It is the one place that understands every node's child shape, so
// resolvers, reference walks, and outline/semantic-token builders all
// share a single traversal instead of re-deriving it per caller.
func (t *Tree) Walk(node int, visit WalkFunc) {
	if node <= 0 || node >= len(t.Nodes) {
		return
	}
	if !visit(node) {
		return
	}
	n := t.Nodes[node]
	switch n.Tag {
	case NodeRoot:
		for _, d := range t.ExtraDataSlice(n.Data.LHS, n.Data.RHS) {
			t.Walk(d, visit)
		}
	case NodeFnDecl:
		t.Walk(n.Data.LHS, visit)
		t.Walk(n.Data.RHS, visit)
	case NodeFnProto:
		fp, _ := t.FnProto(node)
		for _, p := range fp.Params {
			t.Walk(p, visit)
		}
		t.Walk(fp.ReturnType, visit)
	case NodeParam:
		t.Walk(n.Data.LHS, visit)
	case NodeVarDecl:
		v, _ := t.VarDecl(node)
		t.Walk(v.TypeNode, visit)
		t.Walk(v.InitNode, visit)
	case NodeContainerDecl:
		cd, _ := t.ContainerDecl(node)
		for _, m := range cd.Members {
			t.Walk(m, visit)
		}
	case NodeContainerField:
		f, _ := t.ContainerField(node)
		t.Walk(f.TypeNode, visit)
		t.Walk(f.DefaultValue, visit)
	case NodeImportCall:
		t.Walk(n.Data.LHS, visit)
	case NodeBuiltinCall:
		for _, a := range t.ExtraDataSlice(n.Data.LHS, n.Data.RHS) {
			t.Walk(a, visit)
		}
	case NodeFieldAccess:
		t.Walk(n.Data.LHS, visit)
	case NodeIdentifier, NodeStringLiteral, NodeIntegerLiteral, NodeUndefined:
		// leaves
	case NodeCall:
		c, _ := t.Call(node)
		t.Walk(c.Callee, visit)
		for _, a := range c.Args {
			t.Walk(a, visit)
		}
	case NodePtrType, NodeOptionalType:
		t.Walk(n.Data.LHS, visit)
	case NodeErrorUnionType:
		t.Walk(n.Data.LHS, visit)
		t.Walk(n.Data.RHS, visit)
	case NodeErrorSetDecl:
		for _, m := range t.ExtraDataSlice(n.Data.LHS, n.Data.RHS) {
			t.Walk(m, visit)
		}
	case NodeLabeledBlock:
		t.Walk(n.Data.LHS, visit)
	case NodeBlock:
		for _, stmt := range t.ExtraDataSlice(n.Data.LHS, n.Data.RHS) {
			t.Walk(stmt, visit)
		}
	case NodeReturnStmt:
		t.Walk(n.Data.LHS, visit)
	case NodeTryExpr:
		t.Walk(n.Data.LHS, visit)
	case NodeCatchExpr, NodeOrelseExpr:
		t.Walk(n.Data.LHS, visit)
		t.Walk(n.Data.RHS, visit)
	}
}

// Span returns the smallest byte range covering node and all of its
// descendants, derived by walking rather than stored per node (spec.md
// §4.4 keeps node_data to two integers; spans are computed on demand).
func (t *Tree) Span(node int) (start, end int) {
	if node <= 0 || node >= len(t.Nodes) {
		return 0, 0
	}
	start, end = t.NodeTokenSource(node)
	t.Walk(node, func(n int) bool {
		s, e := t.NodeTokenSource(n)
		if s < start {
			start = s
		}
		if e > end {
			end = e
		}
		return true
	})
	return start, end
}

// Contains reports whether bytePos falls within node's span, inclusive of
// both endpoints so a cursor sitting just past the last character of a
// declaration still resolves to it.
func (t *Tree) Contains(node int, bytePos int) bool {
	start, end := t.Span(node)
	return bytePos >= start && bytePos <= end
}

// EnclosingPath returns the node indices from the outermost root
// declaration down to the innermost node whose span contains bytePos,
// restricted to scope-introducing kinds (function declarations, blocks,
// labeled blocks, container declarations). The result is ordered
// outermost-first; callers walk it in reverse for innermost-first lookup.
func (t *Tree) EnclosingPath(bytePos int) []int {
	var path []int
	for _, root := range t.RootDecls() {
		if t.Contains(root, bytePos) {
			collectEnclosing(t, root, bytePos, &path)
		}
	}
	return path
}

func collectEnclosing(t *Tree, node int, bytePos int, path *[]int) {
	if node <= 0 || node >= len(t.Nodes) {
		return
	}
	n := t.Nodes[node]
	switch n.Tag {
	case NodeFnDecl, NodeBlock, NodeLabeledBlock, NodeContainerDecl:
		*path = append(*path, node)
	}

	var children []int
	switch n.Tag {
	case NodeFnDecl:
		children = []int{n.Data.LHS, n.Data.RHS}
	case NodeFnProto:
		fp, _ := t.FnProto(node)
		children = append(append([]int{}, fp.Params...), fp.ReturnType)
	case NodeBlock:
		children = t.ExtraDataSlice(n.Data.LHS, n.Data.RHS)
	case NodeLabeledBlock:
		children = []int{n.Data.LHS}
	case NodeContainerDecl:
		cd, _ := t.ContainerDecl(node)
		children = cd.Members
	case NodeContainerField:
		f, _ := t.ContainerField(node)
		children = []int{f.TypeNode, f.DefaultValue}
	case NodeVarDecl:
		v, _ := t.VarDecl(node)
		children = []int{v.TypeNode, v.InitNode}
	}

	for _, c := range children {
		if c > 0 && c < len(t.Nodes) && t.Contains(c, bytePos) {
			collectEnclosing(t, c, bytePos, path)
		}
	}
}
