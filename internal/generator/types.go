package generator

import (
	"go/ast"
	"go/token"
)

// Marker is the opt-in directive comment that marks a case-schema
// declaration for generation.
const Marker = "//union:generate"

// SchemaSuffix is the naming convention for case-schema types. The host
// type name is the schema type name with this suffix removed.
const SchemaSuffix = "Union"

// PayloadKind describes the shape of a case payload.
type PayloadKind int

const (
	// NoPayload is a case with no fields, declared as struct{}.
	NoPayload PayloadKind = iota
	// SinglePayload is a case with exactly one unnamed payload value.
	SinglePayload
	// TupleShapedPayload is a case declared as an anonymous struct whose
	// fields are individually addressable.
	TupleShapedPayload
)

func (k PayloadKind) String() string {
	switch k {
	case NoPayload:
		return "NoPayload"
	case SinglePayload:
		return "SinglePayload"
	case TupleShapedPayload:
		return "TupleShapedPayload"
	}
	return "PayloadKind(?)"
}

// PayloadField is one typed value of a case payload. Name is empty for a
// SinglePayload value and for positional tuple fields.
type PayloadField struct {
	Name string
	Type ast.Expr
}

// CaseDescriptor is one named alternative of a union. Ordinal equals the
// case's declaration position and becomes its tag value. Immutable once
// extracted.
type CaseDescriptor struct {
	Name    string
	Kind    PayloadKind
	Fields  []PayloadField
	Ordinal int
	Pos     token.Pos
}

// UnionSchema is the extracted case schema of one marked declaration.
// Built once per generation pass from a static snapshot; never mutated
// after validation succeeds.
type UnionSchema struct {
	// HostName is the name of the type to generate, e.g. "Shape" for a
	// schema declared as ShapeUnion.
	HostName string
	// SchemaName is the name of the schema declaration itself.
	SchemaName string
	// PackageName is the package the generated declaration merges into.
	PackageName string
	// TypeParams is the schema's type parameter list, nil when the
	// schema is not generic. The generated declaration type-checks
	// against the same list.
	TypeParams *ast.FieldList
	Cases      []CaseDescriptor
	// Pos anchors diagnostics that concern the schema as a whole.
	Pos token.Pos
}

// TypeParamNames returns the declared type parameter names in order.
func (s *UnionSchema) TypeParamNames() []string {
	if s.TypeParams == nil {
		return nil
	}
	var names []string
	for _, f := range s.TypeParams.List {
		for _, n := range f.Names {
			names = append(names, n.Name)
		}
	}
	return names
}

// SlotField is one backing storage field of the generated host struct,
// together with the factory parameter it is populated from.
type SlotField struct {
	// Name is the unexported struct field name, e.g. "rectangleWidth".
	Name string
	// Param is the factory parameter and deconstruction result name,
	// e.g. "width".
	Param string
	Type  ast.Expr
}

// CaseLayout is the synthesized representation of one case: its tag
// constant and backing slots. NoPayload cases have no slots.
type CaseLayout struct {
	Case     *CaseDescriptor
	TagConst string
	Slots    []SlotField
}

// UnionModel is the internal union model consumed by the emitter: the
// validated schema plus the tagged-storage layout.
type UnionModel struct {
	Schema *UnionSchema
	// TagType is the generated case-tag enumeration type, e.g. "ShapeTag".
	TagType string
	// TagUnderlying is the tag's underlying integer type.
	TagUnderlying string
	Layouts       []CaseLayout
}

// PackageIndex is a snapshot of the declarations already present in the
// host package, used for augmentability and collision checks.
type PackageIndex struct {
	// Types maps declared type names to their positions.
	Types map[string]token.Pos
	// Funcs maps package-level function names to their positions.
	Funcs map[string]token.Pos
	// Methods maps receiver base type name to its method names.
	Methods map[string]map[string]token.Pos
}

// NewPackageIndex returns an empty index.
func NewPackageIndex() *PackageIndex {
	return &PackageIndex{
		Types:   make(map[string]token.Pos),
		Funcs:   make(map[string]token.Pos),
		Methods: make(map[string]map[string]token.Pos),
	}
}

// AddFile indexes the declarations of one package file. Generated files
// should be excluded by the caller so that regeneration does not collide
// with its own previous output.
func (ix *PackageIndex) AddFile(file *ast.File) {
	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.GenDecl:
			if d.Tok != token.TYPE {
				continue
			}
			for _, spec := range d.Specs {
				ts, ok := spec.(*ast.TypeSpec)
				if !ok {
					continue
				}
				ix.Types[ts.Name.Name] = ts.Name.Pos()
			}
		case *ast.FuncDecl:
			if d.Recv == nil || len(d.Recv.List) == 0 {
				ix.Funcs[d.Name.Name] = d.Name.Pos()
				continue
			}
			base := receiverBaseName(d.Recv.List[0].Type)
			if base == "" {
				continue
			}
			if ix.Methods[base] == nil {
				ix.Methods[base] = make(map[string]token.Pos)
			}
			ix.Methods[base][d.Name.Name] = d.Name.Pos()
		}
	}
}

// MethodPos reports whether the named type already has a method with the
// given name, and where it is declared.
func (ix *PackageIndex) MethodPos(typeName, method string) (token.Pos, bool) {
	ms, ok := ix.Methods[typeName]
	if !ok {
		return token.NoPos, false
	}
	pos, ok := ms[method]
	return pos, ok
}

// receiverBaseName unwraps a method receiver type down to its base type
// name, handling pointers and generic instantiations.
func receiverBaseName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.StarExpr:
		return receiverBaseName(t.X)
	case *ast.IndexExpr:
		return receiverBaseName(t.X)
	case *ast.IndexListExpr:
		return receiverBaseName(t.X)
	}
	return ""
}

// IsPrimitiveType checks if a type name is a Go primitive/builtin type.
// Primitive payloads are compared with == in generated code; everything
// else goes through reflect.DeepEqual.
func IsPrimitiveType(name string) bool {
	switch name {
	case "int", "int8", "int16", "int32", "int64",
		"uint", "uint8", "uint16", "uint32", "uint64", "uintptr",
		"float32", "float64",
		"complex64", "complex128",
		"bool", "byte", "rune", "string",
		"any", "error":
		return true
	}
	return false
}

// IsBuiltinTypeName reports whether name resolves in Go's universe scope
// without any declaration.
func IsBuiltinTypeName(name string) bool {
	if IsPrimitiveType(name) {
		return true
	}
	switch name {
	case "comparable":
		return true
	}
	return false
}
