package emit

import (
	"go/ast"
	"go/token"

	"github.com/sumforge/uniongen/internal/generator"
)

// addTagType emits `type ShapeTag uint8`.
func (b *fileBuilder) addTagType() {
	b.decls = append(b.decls, &ast.GenDecl{
		Tok: token.TYPE,
		Specs: []ast.Spec{&ast.TypeSpec{
			Name: ast.NewIdent(b.model.TagType),
			Type: ast.NewIdent(b.model.TagUnderlying),
		}},
	})
}

// addTagConsts emits the case-tag enumeration. Member order matches
// declaration order, so the iota values are the case ordinals.
func (b *fileBuilder) addTagConsts() {
	var specs []ast.Spec
	for i, layout := range b.model.Layouts {
		spec := &ast.ValueSpec{
			Names: []*ast.Ident{ast.NewIdent(layout.TagConst)},
		}
		if i == 0 {
			spec.Type = ast.NewIdent(b.model.TagType)
			spec.Values = []ast.Expr{ast.NewIdent("iota")}
		}
		specs = append(specs, spec)
	}
	b.decls = append(b.decls, &ast.GenDecl{
		Tok:    token.CONST,
		Lparen: 1, // force parenthesized form
		Specs:  specs,
	})
}

// addTagStringMethod emits a String() method on the tag type returning
// the case name.
func (b *fileBuilder) addTagStringMethod() {
	var cases []ast.Stmt
	for _, layout := range b.model.Layouts {
		cases = append(cases, &ast.CaseClause{
			List: []ast.Expr{ast.NewIdent(layout.TagConst)},
			Body: []ast.Stmt{&ast.ReturnStmt{Results: []ast.Expr{
				&ast.BasicLit{Kind: token.STRING, Value: `"` + layout.Case.Name + `"`},
			}}},
		})
	}

	fallback := &ast.ReturnStmt{Results: []ast.Expr{
		b.sprintfCall(b.model.TagType+"(%d)", &ast.CallExpr{
			Fun:  ast.NewIdent(b.model.TagUnderlying),
			Args: []ast.Expr{ast.NewIdent("t")},
		}),
	}}

	b.decls = append(b.decls, &ast.FuncDecl{
		Recv: &ast.FieldList{List: []*ast.Field{{
			Names: []*ast.Ident{ast.NewIdent("t")},
			Type:  ast.NewIdent(b.model.TagType),
		}}},
		Name: ast.NewIdent("String"),
		Type: &ast.FuncType{
			Params: &ast.FieldList{},
			Results: &ast.FieldList{List: []*ast.Field{{
				Type: ast.NewIdent("string"),
			}}},
		},
		Body: &ast.BlockStmt{List: []ast.Stmt{
			&ast.SwitchStmt{
				Tag:  ast.NewIdent("t"),
				Body: &ast.BlockStmt{List: cases},
			},
			fallback,
		}},
	})
}

// addHostStruct emits the tagged-storage host struct: the tag field
// plus one unexported slot per payload value. Inactive slots keep their
// zero value and are never read.
func (b *fileBuilder) addHostStruct() {
	fields := &ast.FieldList{List: []*ast.Field{{
		Names: []*ast.Ident{ast.NewIdent("tag")},
		Type:  ast.NewIdent(b.model.TagType),
	}}}

	for _, layout := range b.model.Layouts {
		for _, slot := range layout.Slots {
			fields.List = append(fields.List, &ast.Field{
				Names: []*ast.Ident{ast.NewIdent(slot.Name)},
				Type:  cloneExpr(slot.Type),
			})
		}
	}

	b.decls = append(b.decls, &ast.GenDecl{
		Tok: token.TYPE,
		Specs: []ast.Spec{&ast.TypeSpec{
			Name:       ast.NewIdent(b.schema().HostName),
			TypeParams: b.typeParams(),
			Type:       &ast.StructType{Fields: fields},
		}},
	})
}

// addFactory emits the per-case static constructor. It is the only way
// to obtain a value of the host type, so the tag always identifies
// exactly the populated slots.
func (b *fileBuilder) addFactory(layout *generator.CaseLayout) {
	params := &ast.FieldList{}
	elts := []ast.Expr{&ast.KeyValueExpr{
		Key:   ast.NewIdent("tag"),
		Value: ast.NewIdent(layout.TagConst),
	}}

	for _, slot := range layout.Slots {
		params.List = append(params.List, &ast.Field{
			Names: []*ast.Ident{ast.NewIdent(slot.Param)},
			Type:  cloneExpr(slot.Type),
		})
		elts = append(elts, &ast.KeyValueExpr{
			Key:   ast.NewIdent(slot.Name),
			Value: ast.NewIdent(slot.Param),
		})
	}

	b.decls = append(b.decls, &ast.FuncDecl{
		Name: ast.NewIdent(generator.FactoryName(b.schema().HostName, layout.Case.Name)),
		Type: &ast.FuncType{
			TypeParams: b.typeParams(),
			Params:     params,
			Results:    &ast.FieldList{List: []*ast.Field{{Type: b.hostType()}}},
		},
		Body: &ast.BlockStmt{List: []ast.Stmt{
			&ast.ReturnStmt{Results: []ast.Expr{
				&ast.CompositeLit{Type: b.hostType(), Elts: elts},
			}},
		}},
	})
}

// addTagAccessor emits `func (u Shape) Tag() ShapeTag`.
func (b *fileBuilder) addTagAccessor() {
	b.decls = append(b.decls, b.method("Tag",
		nil,
		&ast.FieldList{List: []*ast.Field{{Type: ast.NewIdent(b.model.TagType)}}},
		[]ast.Stmt{&ast.ReturnStmt{Results: []ast.Expr{b.selector("tag")}}},
	))
}

// addCaseAccessor emits the per-case payload accessor. Wrong-case
// access is a programming error and fails fast. Tuple-shaped cases
// return all named fields, which is also the deconstruction form.
// NoPayload cases have nothing to return and get no accessor.
func (b *fileBuilder) addCaseAccessor(layout *generator.CaseLayout) {
	if layout.Case.Kind == generator.NoPayload {
		return
	}

	results := &ast.FieldList{}
	var returns []ast.Expr
	for _, slot := range layout.Slots {
		field := &ast.Field{Type: cloneExpr(slot.Type)}
		if len(layout.Slots) > 1 {
			field.Names = []*ast.Ident{ast.NewIdent(slot.Param)}
		}
		results.List = append(results.List, field)
		returns = append(returns, b.selector(slot.Name))
	}

	guard := &ast.IfStmt{
		Cond: b.tagEquals(layout.TagConst, true),
		Body: &ast.BlockStmt{List: []ast.Stmt{
			b.panicStmt(
				b.schema().HostName+": "+layout.Case.Name+"() called on %v",
				b.selector("tag"),
			),
		}},
	}

	b.decls = append(b.decls, b.method(layout.Case.Name, nil, results, []ast.Stmt{
		guard,
		&ast.ReturnStmt{Results: returns},
	}))
}

// addIsMethod emits `func (u Shape) IsCircle() bool`.
func (b *fileBuilder) addIsMethod(layout *generator.CaseLayout) {
	b.decls = append(b.decls, b.method("Is"+layout.Case.Name,
		nil,
		&ast.FieldList{List: []*ast.Field{{Type: ast.NewIdent("bool")}}},
		[]ast.Stmt{&ast.ReturnStmt{Results: []ast.Expr{b.tagEquals(layout.TagConst, false)}}},
	))
}
