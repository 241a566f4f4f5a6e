package emit

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/format"
	"go/token"

	"github.com/sumforge/uniongen/internal/generator"
)

// Header marks every emitted file, in the form the Go toolchain and
// editors recognize as generated output.
const Header = "// Code generated by uniongen. DO NOT EDIT."

type apiEmitter struct {
}

// New creates a new generator.APIEmitter.
func New() generator.APIEmitter {
	return &apiEmitter{}
}

// Emit renders the full generated declaration for one union model:
// tag enumeration, host struct, factories, accessors, dispatch, and
// value-semantics members. The output imports only the standard
// library.
func (e *apiEmitter) Emit(model *generator.UnionModel) (string, error) {
	b := newFileBuilder(model)

	b.addTagType()
	b.addTagConsts()
	b.addTagStringMethod()
	b.addHostStruct()
	for i := range model.Layouts {
		b.addFactory(&model.Layouts[i])
	}
	b.addTagAccessor()
	for i := range model.Layouts {
		b.addCaseAccessor(&model.Layouts[i])
		b.addIsMethod(&model.Layouts[i])
	}
	b.addMatchFunc()
	b.addCasesType()
	b.addMatchOrFunc()
	b.addEqualMethod()
	b.addHashMethod()
	b.addStringMethod()

	return b.render()
}

// fileBuilder accumulates the declarations of one emitted file and
// tracks which stdlib imports the emitted bodies need.
type fileBuilder struct {
	model *generator.UnionModel

	decls []ast.Decl

	needsFmt     bool
	needsFnv     bool
	needsReflect bool
}

func newFileBuilder(model *generator.UnionModel) *fileBuilder {
	return &fileBuilder{model: model}
}

func (b *fileBuilder) schema() *generator.UnionSchema {
	return b.model.Schema
}

// recvName is the receiver identifier used across generated methods.
// The fixed short name never collides with slot fields, which are
// always longer than one rune for single-letter hosts too.
func (b *fileBuilder) recvName() string {
	return "u"
}

// typeParams returns a cleared-position copy of the schema's type
// parameter list, or nil for non-generic schemas.
func (b *fileBuilder) typeParams() *ast.FieldList {
	return cloneFieldList(b.schema().TypeParams)
}

// hostType builds the host type expression: Shape, Result[T, E], ...
func (b *fileBuilder) hostType() ast.Expr {
	return genericTypeExpr(b.schema().HostName, b.schema().TypeParams)
}

// genericTypeExpr creates a type expression like Name, Name[T] or
// Name[T, U].
func genericTypeExpr(name string, tParams *ast.FieldList) ast.Expr {
	if tParams == nil || len(tParams.List) == 0 {
		return ast.NewIdent(name)
	}
	var indices []ast.Expr
	for _, p := range tParams.List {
		for _, n := range p.Names {
			indices = append(indices, ast.NewIdent(n.Name))
		}
	}
	if len(indices) == 1 {
		return &ast.IndexExpr{X: ast.NewIdent(name), Index: indices[0]}
	}
	return &ast.IndexListExpr{X: ast.NewIdent(name), Indices: indices}
}

// resultParamName picks the dispatch result type parameter name,
// stepping aside when the schema already declares it.
func (b *fileBuilder) resultParamName() string {
	taken := make(map[string]bool)
	for _, name := range b.schema().TypeParamNames() {
		taken[name] = true
	}
	if !taken["R"] {
		return "R"
	}
	for i := 0; ; i++ {
		candidate := fmt.Sprintf("R%d", i)
		if !taken[candidate] {
			return candidate
		}
	}
}

// callbackName derives a dispatch parameter name from a case name,
// keeping clear of keywords and of the fixed value/fallback parameters.
func (b *fileBuilder) callbackName(caseName string) string {
	name := generator.LowerCamel(caseName)
	if token.IsKeyword(name) || name == b.recvName() || name == "fallback" || name == "cases" {
		name += "_"
	}
	return name
}

// selector builds u.field.
func (b *fileBuilder) selector(field string) ast.Expr {
	return &ast.SelectorExpr{X: ast.NewIdent(b.recvName()), Sel: ast.NewIdent(field)}
}

// tagEquals builds `u.tag == TagConst` (or != with invert).
func (b *fileBuilder) tagEquals(tagConst string, invert bool) ast.Expr {
	op := token.EQL
	if invert {
		op = token.NEQ
	}
	return &ast.BinaryExpr{X: b.selector("tag"), Op: op, Y: ast.NewIdent(tagConst)}
}

// sprintfCall builds fmt.Sprintf(format, args...).
func (b *fileBuilder) sprintfCall(formatStr string, args ...ast.Expr) ast.Expr {
	b.needsFmt = true
	callArgs := append([]ast.Expr{
		&ast.BasicLit{Kind: token.STRING, Value: fmt.Sprintf("%q", formatStr)},
	}, args...)
	return &ast.CallExpr{
		Fun:  &ast.SelectorExpr{X: ast.NewIdent("fmt"), Sel: ast.NewIdent("Sprintf")},
		Args: callArgs,
	}
}

// fprintfStmt builds fmt.Fprintf(h, format, args...).
func (b *fileBuilder) fprintfStmt(formatStr string, args ...ast.Expr) ast.Stmt {
	b.needsFmt = true
	callArgs := append([]ast.Expr{
		ast.NewIdent("h"),
		&ast.BasicLit{Kind: token.STRING, Value: fmt.Sprintf("%q", formatStr)},
	}, args...)
	return &ast.ExprStmt{X: &ast.CallExpr{
		Fun:  &ast.SelectorExpr{X: ast.NewIdent("fmt"), Sel: ast.NewIdent("Fprintf")},
		Args: callArgs,
	}}
}

// panicStmt builds panic(fmt.Sprintf(format, args...)).
func (b *fileBuilder) panicStmt(formatStr string, args ...ast.Expr) ast.Stmt {
	return &ast.ExprStmt{X: &ast.CallExpr{
		Fun:  ast.NewIdent("panic"),
		Args: []ast.Expr{b.sprintfCall(formatStr, args...)},
	}}
}

// method builds a value-receiver method on the host type.
func (b *fileBuilder) method(name string, params, results *ast.FieldList, body []ast.Stmt) *ast.FuncDecl {
	if params == nil {
		params = &ast.FieldList{}
	}
	return &ast.FuncDecl{
		Recv: &ast.FieldList{List: []*ast.Field{{
			Names: []*ast.Ident{ast.NewIdent(b.recvName())},
			Type:  b.hostType(),
		}}},
		Name: ast.NewIdent(name),
		Type: &ast.FuncType{Params: params, Results: results},
		Body: &ast.BlockStmt{List: body},
	}
}

// render prints the accumulated declarations as gofmt-formatted source
// with the generated-code header.
func (b *fileBuilder) render() (string, error) {
	file := &ast.File{
		Name:  ast.NewIdent(b.schema().PackageName),
		Decls: append(b.importDecls(), b.decls...),
	}

	var buf bytes.Buffer
	buf.WriteString(Header)
	buf.WriteString("\n\n")
	if err := format.Node(&buf, token.NewFileSet(), file); err != nil {
		return "", fmt.Errorf("rendering %s: %w", b.schema().HostName, err)
	}
	return buf.String(), nil
}

func (b *fileBuilder) importDecls() []ast.Decl {
	var paths []string
	if b.needsFmt {
		paths = append(paths, "fmt")
	}
	if b.needsFnv {
		paths = append(paths, "hash/fnv")
	}
	if b.needsReflect {
		paths = append(paths, "reflect")
	}
	if len(paths) == 0 {
		return nil
	}

	gd := &ast.GenDecl{Tok: token.IMPORT}
	if len(paths) > 1 {
		gd.Lparen = 1 // force parenthesized form
	}
	for _, p := range paths {
		gd.Specs = append(gd.Specs, &ast.ImportSpec{
			Path: &ast.BasicLit{Kind: token.STRING, Value: fmt.Sprintf("%q", p)},
		})
	}
	return []ast.Decl{gd}
}

var _ generator.APIEmitter = (*apiEmitter)(nil)
