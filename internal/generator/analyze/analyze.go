package analyze

import (
	"fmt"
	"go/ast"
	"go/token"

	"github.com/sumforge/uniongen/generr"
	"github.com/sumforge/uniongen/internal/generator"
)

type unionTypeAnalyzer struct {
	fset *token.FileSet
}

// New creates a new generator.UnionAnalyzer. Diagnostics are anchored
// through fset, which must be the set the schema was parsed against.
func New(fset *token.FileSet) generator.UnionAnalyzer {
	return &unionTypeAnalyzer{fset: fset}
}

// Analyze validates one schema against the host package snapshot. It
// reports every violation it finds rather than stopping at the first,
// and never attempts partial recovery: any returned error suppresses
// synthesis and emission for the type entirely.
func (a *unionTypeAnalyzer) Analyze(schema *generator.UnionSchema, index *generator.PackageIndex) error {
	multi := &generr.MultiError{}

	a.checkAugmentable(schema, index, multi)
	a.checkMemberConflicts(schema, index, multi)
	a.checkDerivedNames(schema, multi)
	a.checkPayloadTypes(schema, index, multi)

	return multi.ErrOrNil()
}

// checkAugmentable verifies the host declaration can be contributed to
// the package at all. A pre-existing declaration of the host name means
// the generated type cannot merge, which must fail loudly rather than
// silently skip.
func (a *unionTypeAnalyzer) checkAugmentable(schema *generator.UnionSchema, index *generator.PackageIndex, multi *generr.MultiError) {
	at := generator.DiagPos(a.fset, schema.Pos)

	if _, ok := index.Types[schema.HostName]; ok {
		multi.Append(generr.NewStructuralError(generr.CodeNotAugmentable, at,
			fmt.Sprintf("%s: host type %s is already declared in package %s; the generated declaration cannot merge",
				schema.SchemaName, schema.HostName, schema.PackageName)))
	}
	if _, ok := index.Funcs[schema.HostName]; ok {
		multi.Append(generr.NewStructuralError(generr.CodeNotAugmentable, at,
			fmt.Sprintf("%s: package-level func %s blocks the generated host type declaration",
				schema.SchemaName, schema.HostName)))
	}
}

// checkMemberConflicts verifies that no case name collides with a
// pre-existing member of the host type, and that none of the names the
// emitter will introduce at package level are taken.
func (a *unionTypeAnalyzer) checkMemberConflicts(schema *generator.UnionSchema, index *generator.PackageIndex, multi *generr.MultiError) {
	host := schema.HostName

	reserved := make(map[string]bool, len(generator.ReservedMethodNames))
	for _, name := range generator.ReservedMethodNames {
		reserved[name] = true
	}

	for i := range schema.Cases {
		c := &schema.Cases[i]
		at := generator.DiagPos(a.fset, c.Pos)

		if reserved[c.Name] {
			multi.Append(generr.NewNameConflictError(generr.CodeMemberConflict, at,
				fmt.Sprintf("%s: case %s collides with the generated %s member", schema.SchemaName, c.Name, c.Name)))
		}
		for _, method := range []string{generator.AccessorName(c.Name), generator.IsMethodName(c.Name)} {
			if _, ok := index.MethodPos(host, method); ok {
				multi.Append(generr.NewNameConflictError(generr.CodeMemberConflict, at,
					fmt.Sprintf("%s: case %s collides with existing method %s.%s", schema.SchemaName, c.Name, host, method)))
			}
		}
		a.checkPackageName(schema, index, generator.FactoryName(host, c.Name), c.Pos, multi)
		a.checkPackageName(schema, index, generator.TagConstName(host, c.Name), c.Pos, multi)
	}

	for _, method := range generator.ReservedMethodNames {
		if _, ok := index.MethodPos(host, method); ok {
			multi.Append(generr.NewNameConflictError(generr.CodeMemberConflict,
				generator.DiagPos(a.fset, schema.Pos),
				fmt.Sprintf("%s: existing method %s.%s collides with a generated member", schema.SchemaName, host, method)))
		}
	}

	for _, name := range []string{
		generator.TagTypeName(host),
		generator.MatchFuncName(host),
		generator.MatchOrFuncName(host),
		generator.CasesTypeName(host),
	} {
		a.checkPackageName(schema, index, name, schema.Pos, multi)
	}
}

func (a *unionTypeAnalyzer) checkPackageName(schema *generator.UnionSchema, index *generator.PackageIndex, name string, pos token.Pos, multi *generr.MultiError) {
	at := generator.DiagPos(a.fset, pos)
	if _, ok := index.Types[name]; ok {
		multi.Append(generr.NewNameConflictError(generr.CodeMemberConflict, at,
			fmt.Sprintf("%s: generated name %s collides with an existing type", schema.SchemaName, name)))
	}
	if _, ok := index.Funcs[name]; ok {
		multi.Append(generr.NewNameConflictError(generr.CodeMemberConflict, at,
			fmt.Sprintf("%s: generated name %s collides with an existing func", schema.SchemaName, name)))
	}
}

// checkDerivedNames verifies that no two cases normalize to the same
// generated identifier. Case names are distinct as written, but slots and
// dispatch callback parameters derive lowerCamel identifiers from them;
// letting a collision through would emit a host struct the consuming
// build rejects.
func (a *unionTypeAnalyzer) checkDerivedNames(schema *generator.UnionSchema, multi *generr.MultiError) {
	owners := make(map[string]string)
	claim := func(name, owner string, pos token.Pos) {
		prev, ok := owners[name]
		if !ok {
			owners[name] = owner
			return
		}
		multi.Append(generr.NewNameConflictError(generr.CodeMemberConflict,
			generator.DiagPos(a.fset, pos),
			fmt.Sprintf("%s: case %s generates identifier %q, which case %s already uses",
				schema.SchemaName, owner, name, prev)))
	}

	for i := range schema.Cases {
		c := &schema.Cases[i]
		claim(generator.SlotName(c.Name), c.Name, c.Pos)
		if c.Kind != generator.TupleShapedPayload {
			continue
		}
		for fi, f := range c.Fields {
			fieldName := f.Name
			if fieldName == "" {
				fieldName = fmt.Sprintf("F%d", fi)
			}
			claim(generator.TupleSlotName(c.Name, fieldName), c.Name, c.Pos)
		}
	}
}

// checkPayloadTypes verifies every case payload type resolves against
// the schema's own type parameters, the host package, imports, or the
// universe scope. A generic schema may never smuggle in a new unbound
// parameter.
func (a *unionTypeAnalyzer) checkPayloadTypes(schema *generator.UnionSchema, index *generator.PackageIndex, multi *generr.MultiError) {
	params := make(map[string]bool)
	for _, name := range schema.TypeParamNames() {
		params[name] = true
	}
	generic := len(params) > 0

	for i := range schema.Cases {
		c := &schema.Cases[i]
		for _, f := range c.Fields {
			a.checkTypeExpr(schema, c, f.Type, params, index, generic, multi)
		}
	}
}

// checkTypeExpr walks a payload type expression, visiting only type
// references (struct field types, func signature types, map keys and so
// on) and never declaration-side identifiers like field names.
func (a *unionTypeAnalyzer) checkTypeExpr(schema *generator.UnionSchema, c *generator.CaseDescriptor, expr ast.Expr, params map[string]bool, index *generator.PackageIndex, generic bool, multi *generr.MultiError) {
	switch t := expr.(type) {
	case *ast.Ident:
		if generator.IsBuiltinTypeName(t.Name) || params[t.Name] {
			return
		}
		if _, ok := index.Types[t.Name]; ok {
			return
		}
		at := generator.DiagPos(a.fset, t.Pos())
		if generic {
			multi.Append(generr.NewTypeError(generr.CodeUnboundTypeParam, at,
				fmt.Sprintf("%s: case %s payload references %s, which is not a type parameter of %s",
					schema.SchemaName, c.Name, t.Name, schema.SchemaName)))
		} else {
			multi.Append(generr.NewTypeError(generr.CodeInvalidPayload, at,
				fmt.Sprintf("%s: case %s payload type %s is not declared in package %s",
					schema.SchemaName, c.Name, t.Name, schema.PackageName)))
		}
	case *ast.SelectorExpr:
		// Imported qualified type; resolution is the host build's job.
	case *ast.StarExpr:
		a.checkTypeExpr(schema, c, t.X, params, index, generic, multi)
	case *ast.ParenExpr:
		a.checkTypeExpr(schema, c, t.X, params, index, generic, multi)
	case *ast.ArrayType:
		a.checkTypeExpr(schema, c, t.Elt, params, index, generic, multi)
	case *ast.Ellipsis:
		a.checkTypeExpr(schema, c, t.Elt, params, index, generic, multi)
	case *ast.MapType:
		a.checkTypeExpr(schema, c, t.Key, params, index, generic, multi)
		a.checkTypeExpr(schema, c, t.Value, params, index, generic, multi)
	case *ast.ChanType:
		a.checkTypeExpr(schema, c, t.Value, params, index, generic, multi)
	case *ast.IndexExpr:
		a.checkTypeExpr(schema, c, t.X, params, index, generic, multi)
		a.checkTypeExpr(schema, c, t.Index, params, index, generic, multi)
	case *ast.IndexListExpr:
		a.checkTypeExpr(schema, c, t.X, params, index, generic, multi)
		for _, idx := range t.Indices {
			a.checkTypeExpr(schema, c, idx, params, index, generic, multi)
		}
	case *ast.FuncType:
		for _, lists := range []*ast.FieldList{t.Params, t.Results} {
			if lists == nil {
				continue
			}
			for _, f := range lists.List {
				a.checkTypeExpr(schema, c, f.Type, params, index, generic, multi)
			}
		}
	case *ast.StructType:
		if t.Fields == nil {
			return
		}
		for _, f := range t.Fields.List {
			a.checkTypeExpr(schema, c, f.Type, params, index, generic, multi)
		}
	case *ast.InterfaceType:
		if t.Methods == nil {
			return
		}
		for _, f := range t.Methods.List {
			a.checkTypeExpr(schema, c, f.Type, params, index, generic, multi)
		}
	}
}

var _ generator.UnionAnalyzer = (*unionTypeAnalyzer)(nil)
