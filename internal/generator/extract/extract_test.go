package extract_test

import (
	"go/ast"
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sumforge/uniongen/generr"
	"github.com/sumforge/uniongen/internal/generator"
	"github.com/sumforge/uniongen/internal/generator/extract"
	"github.com/sumforge/uniongen/internal/parser"
)

func parseFile(t *testing.T, src string) (*token.FileSet, *ast.File) {
	t.Helper()
	p := parser.New()
	file, err := p.ParseFile("schema.go", src)
	require.NoError(t, err)
	return p.FileSet(), file
}

func codesOf(t *testing.T, err error) []generr.Code {
	t.Helper()
	require.Error(t, err)
	multi, ok := err.(*generr.MultiError)
	require.True(t, ok, "expected *generr.MultiError, got %T", err)
	var codes []generr.Code
	for _, e := range multi.Errors {
		d, ok := e.(generr.Diagnostic)
		require.True(t, ok, "expected Diagnostic, got %T", e)
		codes = append(codes, d.Code())
	}
	return codes
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		validate func(t *testing.T, schemas []*generator.UnionSchema, err error)
	}{
		{
			name: "all three payload shapes",
			input: `package shapes

//union:generate
type ShapeUnion struct {
	Circle    float64
	Rectangle struct {
		Width  float64
		Height float64
	}
	Empty struct{}
}`,
			validate: func(t *testing.T, schemas []*generator.UnionSchema, err error) {
				require.NoError(t, err)
				require.Len(t, schemas, 1)
				s := schemas[0]
				assert.Equal(t, "Shape", s.HostName)
				assert.Equal(t, "ShapeUnion", s.SchemaName)
				assert.Equal(t, "shapes", s.PackageName)
				require.Len(t, s.Cases, 3)

				assert.Equal(t, "Circle", s.Cases[0].Name)
				assert.Equal(t, generator.SinglePayload, s.Cases[0].Kind)
				assert.Equal(t, 0, s.Cases[0].Ordinal)

				assert.Equal(t, "Rectangle", s.Cases[1].Name)
				assert.Equal(t, generator.TupleShapedPayload, s.Cases[1].Kind)
				require.Len(t, s.Cases[1].Fields, 2)
				assert.Equal(t, "Width", s.Cases[1].Fields[0].Name)
				assert.Equal(t, "Height", s.Cases[1].Fields[1].Name)

				assert.Equal(t, "Empty", s.Cases[2].Name)
				assert.Equal(t, generator.NoPayload, s.Cases[2].Kind)
				assert.Empty(t, s.Cases[2].Fields)
			},
		},
		{
			name: "marker on the declaration group",
			input: `package p

//union:generate
type (
	EventUnion struct {
		Started struct{}
	}
)`,
			validate: func(t *testing.T, schemas []*generator.UnionSchema, err error) {
				require.NoError(t, err)
				require.Len(t, schemas, 1)
				assert.Equal(t, "Event", schemas[0].HostName)
			},
		},
		{
			name: "unmarked declarations are ignored",
			input: `package p

type ShapeUnion struct {
	Circle float64
}`,
			validate: func(t *testing.T, schemas []*generator.UnionSchema, err error) {
				require.NoError(t, err)
				assert.Empty(t, schemas)
			},
		},
		{
			name: "marked non-struct declaration",
			input: `package p

//union:generate
type ShapeUnion int`,
			validate: func(t *testing.T, schemas []*generator.UnionSchema, err error) {
				assert.Empty(t, schemas)
				assert.Equal(t, []generr.Code{generr.CodeNoSchema}, codesOf(t, err))
			},
		},
		{
			name: "marked alias declaration",
			input: `package p

//union:generate
type ShapeUnion = struct{ Circle float64 }`,
			validate: func(t *testing.T, schemas []*generator.UnionSchema, err error) {
				assert.Empty(t, schemas)
				assert.Equal(t, []generr.Code{generr.CodeNoSchema}, codesOf(t, err))
			},
		},
		{
			name: "schema name without the suffix",
			input: `package p

//union:generate
type Shape struct {
	Circle float64
}`,
			validate: func(t *testing.T, schemas []*generator.UnionSchema, err error) {
				assert.Empty(t, schemas)
				assert.Equal(t, []generr.Code{generr.CodeNoSchema}, codesOf(t, err))
			},
		},
		{
			name: "bare suffix has no host name",
			input: `package p

//union:generate
type Union struct {
	Circle float64
}`,
			validate: func(t *testing.T, schemas []*generator.UnionSchema, err error) {
				assert.Empty(t, schemas)
				assert.Equal(t, []generr.Code{generr.CodeNoSchema}, codesOf(t, err))
			},
		},
		{
			name: "schema with zero cases",
			input: `package p

//union:generate
type ShapeUnion struct {
	hidden int
}`,
			validate: func(t *testing.T, schemas []*generator.UnionSchema, err error) {
				assert.Empty(t, schemas)
				assert.Equal(t, []generr.Code{generr.CodeEmptySchema}, codesOf(t, err))
			},
		},
		{
			name: "duplicate case name",
			input: `package p

//union:generate
type ShapeUnion struct {
	Circle float64
	Circle int
}`,
			validate: func(t *testing.T, schemas []*generator.UnionSchema, err error) {
				assert.Empty(t, schemas)
				assert.Equal(t, []generr.Code{generr.CodeDuplicateCase}, codesOf(t, err))
			},
		},
		{
			name: "embedded schema field",
			input: `package p

//union:generate
type ShapeUnion struct {
	Circle float64
	error
}`,
			validate: func(t *testing.T, schemas []*generator.UnionSchema, err error) {
				assert.Empty(t, schemas)
				assert.Equal(t, []generr.Code{generr.CodeInvalidPayload}, codesOf(t, err))
			},
		},
		{
			name: "unexported fields are not cases",
			input: `package p

//union:generate
type ShapeUnion struct {
	Circle float64
	note   string
}`,
			validate: func(t *testing.T, schemas []*generator.UnionSchema, err error) {
				require.NoError(t, err)
				require.Len(t, schemas, 1)
				require.Len(t, schemas[0].Cases, 1)
				assert.Equal(t, "Circle", schemas[0].Cases[0].Name)
			},
		},
		{
			name: "generic schema keeps its type parameters",
			input: `package p

//union:generate
type ResultUnion[T any, E any] struct {
	Ok  T
	Err E
}`,
			validate: func(t *testing.T, schemas []*generator.UnionSchema, err error) {
				require.NoError(t, err)
				require.Len(t, schemas, 1)
				assert.Equal(t, []string{"T", "E"}, schemas[0].TypeParamNames())
			},
		},
		{
			name: "a failing schema never suppresses its neighbors",
			input: `package p

//union:generate
type BrokenUnion struct{}

//union:generate
type ShapeUnion struct {
	Circle float64
}`,
			validate: func(t *testing.T, schemas []*generator.UnionSchema, err error) {
				require.Len(t, schemas, 1)
				assert.Equal(t, "Shape", schemas[0].HostName)
				assert.Equal(t, []generr.Code{generr.CodeEmptySchema}, codesOf(t, err))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fset, file := parseFile(t, tt.input)
			schemas, err := extract.New().Extract(fset, file)
			tt.validate(t, schemas, err)
		})
	}
}

func TestExtractDiagnosticPositions(t *testing.T) {
	fset, file := parseFile(t, `package p

//union:generate
type ShapeUnion int`)

	_, err := extract.New().Extract(fset, file)
	multi := err.(*generr.MultiError)
	require.Len(t, multi.Errors, 1)

	d := multi.Errors[0].(generr.Diagnostic)
	assert.Equal(t, "schema.go", d.Position().File)
	assert.Equal(t, 4, d.Position().Line)
	assert.Equal(t, generr.SeverityError, d.Severity())
}
