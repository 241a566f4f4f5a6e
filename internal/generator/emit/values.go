package emit

import (
	"go/ast"
	"go/token"
	"strings"

	"github.com/sumforge/uniongen/internal/generator"
)

// comparableStatically reports whether == on the payload type is known
// to compile for every instantiation. Only primitive named types,
// pointers and channels qualify; named types, type parameters and
// composites go through reflect.DeepEqual instead.
func comparableStatically(expr ast.Expr) bool {
	switch t := expr.(type) {
	case *ast.Ident:
		return generator.IsPrimitiveType(t.Name)
	case *ast.StarExpr, *ast.ChanType:
		return true
	case *ast.ParenExpr:
		return comparableStatically(t.X)
	}
	return false
}

// slotEqualExpr builds the comparison of one slot between u and o.
func (b *fileBuilder) slotEqualExpr(slot *generator.SlotField) ast.Expr {
	left := b.selector(slot.Name)
	right := &ast.SelectorExpr{X: ast.NewIdent("o"), Sel: ast.NewIdent(slot.Name)}

	if comparableStatically(slot.Type) {
		return &ast.BinaryExpr{X: left, Op: token.EQL, Y: right}
	}

	b.needsReflect = true
	return &ast.CallExpr{
		Fun:  &ast.SelectorExpr{X: ast.NewIdent("reflect"), Sel: ast.NewIdent("DeepEqual")},
		Args: []ast.Expr{left, right},
	}
}

// addEqualMethod emits structural equality: tag first, then only the
// active slots. Inactive slots hold no meaningful value and never
// participate.
func (b *fileBuilder) addEqualMethod() {
	var cases []ast.Stmt
	for i := range b.model.Layouts {
		layout := &b.model.Layouts[i]
		var result ast.Expr = ast.NewIdent("true")
		for si := range layout.Slots {
			eq := b.slotEqualExpr(&layout.Slots[si])
			if si == 0 {
				result = eq
			} else {
				result = &ast.BinaryExpr{X: result, Op: token.LAND, Y: eq}
			}
		}
		cases = append(cases, &ast.CaseClause{
			List: []ast.Expr{ast.NewIdent(layout.TagConst)},
			Body: []ast.Stmt{&ast.ReturnStmt{Results: []ast.Expr{result}}},
		})
	}

	body := []ast.Stmt{
		&ast.IfStmt{
			Cond: &ast.BinaryExpr{
				X:  b.selector("tag"),
				Op: token.NEQ,
				Y:  &ast.SelectorExpr{X: ast.NewIdent("o"), Sel: ast.NewIdent("tag")},
			},
			Body: &ast.BlockStmt{List: []ast.Stmt{
				&ast.ReturnStmt{Results: []ast.Expr{ast.NewIdent("false")}},
			}},
		},
		&ast.SwitchStmt{
			Tag:  b.selector("tag"),
			Body: &ast.BlockStmt{List: cases},
		},
		&ast.ReturnStmt{Results: []ast.Expr{ast.NewIdent("true")}},
	}

	b.decls = append(b.decls, b.method("Equal",
		&ast.FieldList{List: []*ast.Field{{
			Names: []*ast.Ident{ast.NewIdent("o")},
			Type:  b.hostType(),
		}}},
		&ast.FieldList{List: []*ast.Field{{Type: ast.NewIdent("bool")}}},
		body,
	))
}

// addHashMethod emits a hash derived from the tag and the active
// payload only, so equal values hash equal regardless of leftover slot
// state.
func (b *fileBuilder) addHashMethod() {
	b.needsFnv = true

	var cases []ast.Stmt
	for i := range b.model.Layouts {
		layout := &b.model.Layouts[i]
		if len(layout.Slots) == 0 {
			continue
		}
		var verbs []string
		var args []ast.Expr
		for _, slot := range layout.Slots {
			verbs = append(verbs, "|%v")
			args = append(args, b.selector(slot.Name))
		}
		cases = append(cases, &ast.CaseClause{
			List: []ast.Expr{ast.NewIdent(layout.TagConst)},
			Body: []ast.Stmt{b.fprintfStmt(strings.Join(verbs, ""), args...)},
		})
	}

	body := []ast.Stmt{
		&ast.AssignStmt{
			Lhs: []ast.Expr{ast.NewIdent("h")},
			Tok: token.DEFINE,
			Rhs: []ast.Expr{&ast.CallExpr{
				Fun: &ast.SelectorExpr{X: ast.NewIdent("fnv"), Sel: ast.NewIdent("New64a")},
			}},
		},
		b.fprintfStmt("%d", b.selector("tag")),
	}
	if len(cases) > 0 {
		body = append(body, &ast.SwitchStmt{
			Tag:  b.selector("tag"),
			Body: &ast.BlockStmt{List: cases},
		})
	}
	body = append(body, &ast.ReturnStmt{Results: []ast.Expr{
		&ast.CallExpr{Fun: &ast.SelectorExpr{X: ast.NewIdent("h"), Sel: ast.NewIdent("Sum64")}},
	}})

	b.decls = append(b.decls, b.method("Hash",
		nil,
		&ast.FieldList{List: []*ast.Field{{Type: ast.NewIdent("uint64")}}},
		body,
	))
}

// addStringMethod emits the textual representation:
// TypeName.CaseName(payload).
func (b *fileBuilder) addStringMethod() {
	host := b.schema().HostName

	var cases []ast.Stmt
	for i := range b.model.Layouts {
		layout := &b.model.Layouts[i]

		var ret ast.Expr
		if len(layout.Slots) == 0 {
			ret = &ast.BasicLit{
				Kind:  token.STRING,
				Value: `"` + host + "." + layout.Case.Name + `()"`,
			}
		} else {
			var verbs []string
			var args []ast.Expr
			for _, slot := range layout.Slots {
				verbs = append(verbs, "%v")
				args = append(args, b.selector(slot.Name))
			}
			ret = b.sprintfCall(host+"."+layout.Case.Name+"("+strings.Join(verbs, ", ")+")", args...)
		}

		cases = append(cases, &ast.CaseClause{
			List: []ast.Expr{ast.NewIdent(layout.TagConst)},
			Body: []ast.Stmt{&ast.ReturnStmt{Results: []ast.Expr{ret}}},
		})
	}

	body := []ast.Stmt{
		&ast.SwitchStmt{
			Tag:  b.selector("tag"),
			Body: &ast.BlockStmt{List: cases},
		},
		&ast.ReturnStmt{Results: []ast.Expr{
			&ast.BasicLit{Kind: token.STRING, Value: `"` + host + `(<unknown>)"`},
		}},
	}

	b.decls = append(b.decls, b.method("String",
		nil,
		&ast.FieldList{List: []*ast.Field{{Type: ast.NewIdent("string")}}},
		body,
	))
}
