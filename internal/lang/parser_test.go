package lang

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseFnDeclWithParamsAndReturn(t *testing.T) {
	tree := Parse([]byte("fn add(a: i32, b: i32) i32 {\n    return a;\n}\n"))
	require.Empty(t, tree.Errors)

	decls := tree.RootDecls()
	require.Len(t, decls, 1)

	fnDecl := tree.Nodes[decls[0]]
	require.Equal(t, NodeFnDecl, fnDecl.Tag)

	proto, ok := tree.FnProto(fnDecl.Data.LHS)
	require.True(t, ok)
	require.Len(t, proto.Params, 2)
	require.Equal(t, "a", tree.ParamName(proto.Params[0]))
	require.Equal(t, "b", tree.ParamName(proto.Params[1]))

	body := tree.Nodes[fnDecl.Data.RHS]
	require.Equal(t, NodeBlock, body.Tag)
}

func TestParsePubConstStructDecl(t *testing.T) {
	src := `pub const Point = struct {
    x: i32,
    y: i32 = 0,
};
`
	tree := Parse([]byte(src))
	require.Empty(t, tree.Errors)

	decls := tree.RootDecls()
	require.Len(t, decls, 1)

	vd, ok := tree.VarDecl(decls[0])
	require.True(t, ok)
	require.True(t, vd.IsConst)
	require.Equal(t, "Point", vd.Name(tree))

	container, ok := tree.ContainerDecl(vd.InitNode)
	require.True(t, ok)
	require.Equal(t, TokKeywordStruct, container.Kind)
	require.Len(t, container.Members, 2)

	f0, ok := tree.ContainerField(container.Members[0])
	require.True(t, ok)
	require.Equal(t, "x", f0.Name(tree))
	require.Equal(t, 0, f0.DefaultValue)

	f1, ok := tree.ContainerField(container.Members[1])
	require.True(t, ok)
	require.Equal(t, "y", f1.Name(tree))
	require.NotZero(t, f1.DefaultValue)
}

func TestParseImportCall(t *testing.T) {
	tree := Parse([]byte(`const std = @import("std");` + "\n"))
	require.Empty(t, tree.Errors)

	decls := tree.RootDecls()
	vd, ok := tree.VarDecl(decls[0])
	require.True(t, ok)
	require.Equal(t, "std", vd.Name(tree))

	_, path, ok := tree.ImportExpr(vd.InitNode)
	require.True(t, ok)
	require.Equal(t, "std", path)
}

func TestParseFieldAccessChain(t *testing.T) {
	tree := Parse([]byte(`const v = foo.bar.baz;` + "\n"))
	require.Empty(t, tree.Errors)

	vd, _ := tree.VarDecl(tree.RootDecls()[0])
	base, field, ok := tree.FieldAccess(vd.InitNode)
	require.True(t, ok)
	require.Equal(t, "baz", field)

	base2, field2, ok := tree.FieldAccess(base)
	require.True(t, ok)
	require.Equal(t, "bar", field2)

	name, ok := tree.Identifier(base2)
	require.True(t, ok)
	require.Equal(t, "foo", name)
}

func TestParsePointerAndOptionalTypes(t *testing.T) {
	tree := Parse([]byte("fn get(p: *?i32) i32 {\n    return 0;\n}\n"))
	require.Empty(t, tree.Errors)

	fnDecl := tree.Nodes[tree.RootDecls()[0]]
	proto, _ := tree.FnProto(fnDecl.Data.LHS)
	paramType := tree.ParamType(proto.Params[0])

	ptr, ok := tree.PtrType(paramType)
	require.True(t, ok)

	opt, ok := tree.Nodes[ptr.Child], true
	require.True(t, ok)
	require.Equal(t, NodeOptionalType, opt.Tag)
}

func TestParseTryAndCatchExpr(t *testing.T) {
	src := `const v = try open(path) catch default;` + "\n"
	tree := Parse([]byte(src))
	require.Empty(t, tree.Errors)

	vd, _ := tree.VarDecl(tree.RootDecls()[0])
	catchNode := tree.Nodes[vd.InitNode]
	require.Equal(t, NodeCatchExpr, catchNode.Tag)

	tryNode := tree.Nodes[catchNode.Data.LHS]
	require.Equal(t, NodeTryExpr, tryNode.Tag)
}

func TestParseRecoversFromMalformedDecl(t *testing.T) {
	src := "const x = ;\nfn good() i32 {\n    return 1;\n}\n"
	tree := Parse([]byte(src))
	require.NotEmpty(t, tree.Errors)

	// The parser should still recover and find the well-formed declaration
	// that follows the broken one.
	found := false
	for _, d := range tree.RootDecls() {
		if tree.Nodes[d].Tag == NodeFnDecl {
			if _, ok := tree.FnProto(tree.Nodes[d].Data.LHS); ok {
				found = true
			}
		}
	}
	require.True(t, found)
}

func TestRenderParseError(t *testing.T) {
	tree := Parse([]byte("const x = ;\n"))
	require.NotEmpty(t, tree.Errors)
	msg := tree.RenderParseError(tree.Errors[0])
	require.NotEmpty(t, msg)
}

func TestErrorSetAndErrorUnionType(t *testing.T) {
	tree := Parse([]byte("fn get() error{NotFound}!i32 {\n    return 0;\n}\n"))
	require.Empty(t, tree.Errors)

	fnDecl := tree.Nodes[tree.RootDecls()[0]]
	proto, _ := tree.FnProto(fnDecl.Data.LHS)
	retType := tree.Nodes[proto.ReturnType]
	require.Equal(t, NodeErrorUnionType, retType.Tag)

	errSet := tree.Nodes[retType.Data.LHS]
	require.Equal(t, NodeErrorSetDecl, errSet.Tag)
	require.Len(t, tree.ExtraDataSlice(errSet.Data.LHS, errSet.Data.RHS), 1)
}

func TestCallViewDecodesArgs(t *testing.T) {
	tree := Parse([]byte(`const v = add(1, 2);` + "\n"))
	require.Empty(t, tree.Errors)

	vd, _ := tree.VarDecl(tree.RootDecls()[0])
	call, ok := tree.Call(vd.InitNode)
	require.True(t, ok)
	require.Len(t, call.Args, 2)

	calleeName, ok := tree.Identifier(call.Callee)
	require.True(t, ok)
	require.Equal(t, "add", calleeName)
}
