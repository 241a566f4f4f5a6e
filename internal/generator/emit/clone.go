package emit

import (
	"go/ast"
)

// cloneExpr deep-copies a type expression with all positions cleared.
// Payload types come out of the parsed schema file and carry positions
// from that file's FileSet; reusing them verbatim in the emitted file
// confuses the printer's line layout.
func cloneExpr(expr ast.Expr) ast.Expr {
	switch t := expr.(type) {
	case nil:
		return nil
	case *ast.Ident:
		return ast.NewIdent(t.Name)
	case *ast.BasicLit:
		return &ast.BasicLit{Kind: t.Kind, Value: t.Value}
	case *ast.SelectorExpr:
		return &ast.SelectorExpr{X: cloneExpr(t.X), Sel: ast.NewIdent(t.Sel.Name)}
	case *ast.StarExpr:
		return &ast.StarExpr{X: cloneExpr(t.X)}
	case *ast.ParenExpr:
		return &ast.ParenExpr{X: cloneExpr(t.X)}
	case *ast.ArrayType:
		return &ast.ArrayType{Len: cloneExpr(t.Len), Elt: cloneExpr(t.Elt)}
	case *ast.Ellipsis:
		return &ast.Ellipsis{Elt: cloneExpr(t.Elt)}
	case *ast.MapType:
		return &ast.MapType{Key: cloneExpr(t.Key), Value: cloneExpr(t.Value)}
	case *ast.ChanType:
		return &ast.ChanType{Dir: t.Dir, Value: cloneExpr(t.Value)}
	case *ast.IndexExpr:
		return &ast.IndexExpr{X: cloneExpr(t.X), Index: cloneExpr(t.Index)}
	case *ast.IndexListExpr:
		out := &ast.IndexListExpr{X: cloneExpr(t.X)}
		for _, idx := range t.Indices {
			out.Indices = append(out.Indices, cloneExpr(idx))
		}
		return out
	case *ast.FuncType:
		return &ast.FuncType{Params: cloneFieldList(t.Params), Results: cloneFieldList(t.Results)}
	case *ast.StructType:
		return &ast.StructType{Fields: cloneFieldList(t.Fields)}
	case *ast.InterfaceType:
		return &ast.InterfaceType{Methods: cloneFieldList(t.Methods)}
	}
	// Unknown expression kinds pass through; the host build will reject
	// them if they are not valid types.
	return expr
}

// cloneFieldList deep-copies a field list with positions cleared.
func cloneFieldList(fl *ast.FieldList) *ast.FieldList {
	if fl == nil {
		return nil
	}
	out := &ast.FieldList{}
	for _, f := range fl.List {
		nf := &ast.Field{Type: cloneExpr(f.Type)}
		for _, n := range f.Names {
			nf.Names = append(nf.Names, ast.NewIdent(n.Name))
		}
		out.List = append(out.List, nf)
	}
	return out
}
