package emit

import (
	"go/ast"
	"go/token"

	"github.com/sumforge/uniongen/internal/generator"
)

// callbackFuncType builds the callback signature for one case:
// func() R, func(T) R, or func(width, height float64) R.
func (b *fileBuilder) callbackFuncType(layout *generator.CaseLayout, resultParam string) *ast.FuncType {
	params := &ast.FieldList{}
	for _, slot := range layout.Slots {
		field := &ast.Field{Type: cloneExpr(slot.Type)}
		if layout.Case.Kind == generator.TupleShapedPayload {
			field.Names = []*ast.Ident{ast.NewIdent(slot.Param)}
		}
		params.List = append(params.List, field)
	}
	return &ast.FuncType{
		Params:  params,
		Results: &ast.FieldList{List: []*ast.Field{{Type: ast.NewIdent(resultParam)}}},
	}
}

// callbackArgs builds the arguments handed to a case callback: the
// active slots of the value.
func (b *fileBuilder) callbackArgs(layout *generator.CaseLayout) []ast.Expr {
	var args []ast.Expr
	for _, slot := range layout.Slots {
		args = append(args, b.selector(slot.Name))
	}
	return args
}

// matchTypeParams builds the type parameter list of the dispatch
// functions: the schema's own parameters plus the result parameter R.
func (b *fileBuilder) matchTypeParams(resultParam string) *ast.FieldList {
	tParams := b.typeParams()
	if tParams == nil {
		tParams = &ast.FieldList{}
	}
	tParams.List = append(tParams.List, &ast.Field{
		Names: []*ast.Ident{ast.NewIdent(resultParam)},
		Type:  ast.NewIdent("any"),
	})
	return tParams
}

// addMatchFunc emits the exhaustive dispatch function. One positional
// callback per case makes omission of a case a build error at every
// call site.
func (b *fileBuilder) addMatchFunc() {
	resultParam := b.resultParamName()

	params := &ast.FieldList{List: []*ast.Field{{
		Names: []*ast.Ident{ast.NewIdent(b.recvName())},
		Type:  b.hostType(),
	}}}

	var cases []ast.Stmt
	for i := range b.model.Layouts {
		layout := &b.model.Layouts[i]
		cb := b.callbackName(layout.Case.Name)

		params.List = append(params.List, &ast.Field{
			Names: []*ast.Ident{ast.NewIdent(cb)},
			Type:  b.callbackFuncType(layout, resultParam),
		})
		cases = append(cases, &ast.CaseClause{
			List: []ast.Expr{ast.NewIdent(layout.TagConst)},
			Body: []ast.Stmt{&ast.ReturnStmt{Results: []ast.Expr{
				&ast.CallExpr{Fun: ast.NewIdent(cb), Args: b.callbackArgs(layout)},
			}}},
		})
	}

	b.decls = append(b.decls, &ast.FuncDecl{
		Name: ast.NewIdent(generator.MatchFuncName(b.schema().HostName)),
		Type: &ast.FuncType{
			TypeParams: b.matchTypeParams(resultParam),
			Params:     params,
			Results:    &ast.FieldList{List: []*ast.Field{{Type: ast.NewIdent(resultParam)}}},
		},
		Body: &ast.BlockStmt{List: []ast.Stmt{
			&ast.SwitchStmt{
				Tag:  b.selector("tag"),
				Body: &ast.BlockStmt{List: cases},
			},
			b.panicStmt(b.schema().HostName+": invalid tag %v", b.selector("tag")),
		}},
	})
}

// addCasesType emits the optional-callback struct used by the fallback
// dispatch form. A nil field routes that case to the fallback.
func (b *fileBuilder) addCasesType() {
	resultParam := b.resultParamName()

	fields := &ast.FieldList{}
	for i := range b.model.Layouts {
		layout := &b.model.Layouts[i]
		fields.List = append(fields.List, &ast.Field{
			Names: []*ast.Ident{ast.NewIdent(layout.Case.Name)},
			Type:  b.callbackFuncType(layout, resultParam),
		})
	}

	b.decls = append(b.decls, &ast.GenDecl{
		Tok: token.TYPE,
		Specs: []ast.Spec{&ast.TypeSpec{
			Name:       ast.NewIdent(generator.CasesTypeName(b.schema().HostName)),
			TypeParams: b.matchTypeParams(resultParam),
			Type:       &ast.StructType{Fields: fields},
		}},
	})
}

// casesTypeExpr builds ShapeCases[R] / ResultCases[T, E, R].
func (b *fileBuilder) casesTypeExpr(resultParam string) ast.Expr {
	indices := []ast.Expr{}
	for _, name := range b.schema().TypeParamNames() {
		indices = append(indices, ast.NewIdent(name))
	}
	indices = append(indices, ast.NewIdent(resultParam))
	if len(indices) == 1 {
		return &ast.IndexExpr{X: ast.NewIdent(generator.CasesTypeName(b.schema().HostName)), Index: indices[0]}
	}
	return &ast.IndexListExpr{X: ast.NewIdent(generator.CasesTypeName(b.schema().HostName)), Indices: indices}
}

// addMatchOrFunc emits the fallback dispatch form: explicit callbacks
// may cover a subset of cases, and the remaining cases route to the
// required fallback. Requiring the fallback parameter is what lets a
// partial case set exist at all.
func (b *fileBuilder) addMatchOrFunc() {
	resultParam := b.resultParamName()

	fallbackType := &ast.FuncType{
		Params:  &ast.FieldList{List: []*ast.Field{{Type: b.hostType()}}},
		Results: &ast.FieldList{List: []*ast.Field{{Type: ast.NewIdent(resultParam)}}},
	}

	params := &ast.FieldList{List: []*ast.Field{
		{Names: []*ast.Ident{ast.NewIdent(b.recvName())}, Type: b.hostType()},
		{Names: []*ast.Ident{ast.NewIdent("cases")}, Type: b.casesTypeExpr(resultParam)},
		{Names: []*ast.Ident{ast.NewIdent("fallback")}, Type: fallbackType},
	}}

	var stmts []ast.Stmt
	var caseClauses []ast.Stmt
	for i := range b.model.Layouts {
		layout := &b.model.Layouts[i]
		caseField := &ast.SelectorExpr{X: ast.NewIdent("cases"), Sel: ast.NewIdent(layout.Case.Name)}

		caseClauses = append(caseClauses, &ast.CaseClause{
			List: []ast.Expr{ast.NewIdent(layout.TagConst)},
			Body: []ast.Stmt{&ast.IfStmt{
				Cond: &ast.BinaryExpr{X: caseField, Op: token.NEQ, Y: ast.NewIdent("nil")},
				Body: &ast.BlockStmt{List: []ast.Stmt{
					&ast.ReturnStmt{Results: []ast.Expr{
						&ast.CallExpr{Fun: caseField, Args: b.callbackArgs(layout)},
					}},
				}},
			}},
		})
	}

	stmts = append(stmts,
		&ast.SwitchStmt{
			Tag:  b.selector("tag"),
			Body: &ast.BlockStmt{List: caseClauses},
		},
		&ast.ReturnStmt{Results: []ast.Expr{
			&ast.CallExpr{Fun: ast.NewIdent("fallback"), Args: []ast.Expr{ast.NewIdent(b.recvName())}},
		}},
	)

	b.decls = append(b.decls, &ast.FuncDecl{
		Name: ast.NewIdent(generator.MatchOrFuncName(b.schema().HostName)),
		Type: &ast.FuncType{
			TypeParams: b.matchTypeParams(resultParam),
			Params:     params,
			Results:    &ast.FieldList{List: []*ast.Field{{Type: ast.NewIdent(resultParam)}}},
		},
		Body: &ast.BlockStmt{List: stmts},
	})
}
