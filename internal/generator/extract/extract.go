package extract

import (
	"fmt"
	"go/ast"
	"go/token"
	"strings"

	"github.com/sumforge/uniongen/generr"
	"github.com/sumforge/uniongen/internal/generator"
)

type caseSchemaExtractor struct {
}

// New creates a new generator.SchemaExtractor that reads the marked
// case-schema declarations of a Go source file.
func New() generator.SchemaExtractor {
	return &caseSchemaExtractor{}
}

// Extract enumerates the marked schema declarations of file in source
// order and builds a UnionSchema for each. Schemas that fail extraction
// are reported through the returned error and omitted from the result;
// they never suppress extraction of the other schemas in the file.
func (e *caseSchemaExtractor) Extract(fset *token.FileSet, file *ast.File) ([]*generator.UnionSchema, error) {
	var schemas []*generator.UnionSchema
	multi := &generr.MultiError{}

	for _, decl := range file.Decls {
		gd, ok := decl.(*ast.GenDecl)
		if !ok || gd.Tok != token.TYPE {
			continue
		}
		for _, spec := range gd.Specs {
			ts, ok := spec.(*ast.TypeSpec)
			if !ok {
				continue
			}
			if !hasMarker(gd.Doc) && !hasMarker(ts.Doc) {
				continue
			}

			schema, err := e.extractSchema(fset, file.Name.Name, ts)
			if err != nil {
				multi.Append(err)
				continue
			}
			schemas = append(schemas, schema)
		}
	}

	return schemas, multi.ErrOrNil()
}

// extractSchema builds the UnionSchema for one marked declaration.
// Declaration order of the struct fields is preserved: it becomes the
// tag-ordinal order.
func (e *caseSchemaExtractor) extractSchema(fset *token.FileSet, pkgName string, ts *ast.TypeSpec) (*generator.UnionSchema, error) {
	at := generator.DiagPos(fset, ts.Name.Pos())

	st, ok := ts.Type.(*ast.StructType)
	if !ok || ts.Assign.IsValid() {
		return nil, generr.NewStructuralError(generr.CodeNoSchema, at,
			fmt.Sprintf("%s: marked declaration is not a case-schema struct", ts.Name.Name))
	}
	if !strings.HasSuffix(ts.Name.Name, generator.SchemaSuffix) || ts.Name.Name == generator.SchemaSuffix {
		return nil, generr.NewStructuralError(generr.CodeNoSchema, at,
			fmt.Sprintf("%s: case-schema type name must end in %q with a non-empty host name", ts.Name.Name, generator.SchemaSuffix))
	}

	schema := &generator.UnionSchema{
		HostName:    strings.TrimSuffix(ts.Name.Name, generator.SchemaSuffix),
		SchemaName:  ts.Name.Name,
		PackageName: pkgName,
		TypeParams:  ts.TypeParams,
		Pos:         ts.Name.Pos(),
	}

	multi := &generr.MultiError{}
	seen := make(map[string]bool)

	for _, field := range st.Fields.List {
		if len(field.Names) == 0 {
			multi.Append(generr.NewTypeError(generr.CodeInvalidPayload,
				generator.DiagPos(fset, field.Pos()),
				fmt.Sprintf("%s: embedded schema field is not a case; cases must be named", ts.Name.Name)))
			continue
		}
		for _, name := range field.Names {
			if !name.IsExported() {
				continue
			}
			if seen[name.Name] {
				multi.Append(generr.NewNameConflictError(generr.CodeDuplicateCase,
					generator.DiagPos(fset, name.Pos()),
					fmt.Sprintf("%s: duplicate case %s", ts.Name.Name, name.Name)))
				continue
			}
			seen[name.Name] = true

			kind, payload := classifyPayload(field.Type)
			schema.Cases = append(schema.Cases, generator.CaseDescriptor{
				Name:    name.Name,
				Kind:    kind,
				Fields:  payload,
				Ordinal: len(schema.Cases),
				Pos:     name.Pos(),
			})
		}
	}

	if err := multi.ErrOrNil(); err != nil {
		return nil, err
	}
	if len(schema.Cases) == 0 {
		return nil, generr.NewStructuralError(generr.CodeEmptySchema, at,
			fmt.Sprintf("%s: schema declares no cases", ts.Name.Name))
	}
	return schema, nil
}

// classifyPayload maps a schema field type onto a payload shape. An
// anonymous struct is tuple-shaped with individually addressable fields;
// the empty struct carries no payload; anything else is a single value.
func classifyPayload(expr ast.Expr) (generator.PayloadKind, []generator.PayloadField) {
	st, ok := expr.(*ast.StructType)
	if !ok {
		return generator.SinglePayload, []generator.PayloadField{{Type: expr}}
	}
	if st.Fields == nil || len(st.Fields.List) == 0 {
		return generator.NoPayload, nil
	}

	var fields []generator.PayloadField
	for _, f := range st.Fields.List {
		if len(f.Names) == 0 {
			// Embedded tuple entry stays positional; synth assigns a name.
			fields = append(fields, generator.PayloadField{Type: f.Type})
			continue
		}
		for _, n := range f.Names {
			fields = append(fields, generator.PayloadField{Name: n.Name, Type: f.Type})
		}
	}
	return generator.TupleShapedPayload, fields
}

// hasMarker reports whether the comment group carries the generation
// directive.
func hasMarker(doc *ast.CommentGroup) bool {
	if doc == nil {
		return false
	}
	for _, c := range doc.List {
		text := c.Text
		if text == generator.Marker || strings.HasPrefix(text, generator.Marker+" ") {
			return true
		}
	}
	return false
}

var _ generator.SchemaExtractor = (*caseSchemaExtractor)(nil)
