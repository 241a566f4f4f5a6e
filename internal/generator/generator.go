package generator

import (
	"go/ast"
	"go/token"
)

// SchemaExtractor extracts the marked case schemas of one source file.
type SchemaExtractor interface {
	Extract(fset *token.FileSet, file *ast.File) ([]*UnionSchema, error)
}

// UnionAnalyzer validates a schema against the host package snapshot.
type UnionAnalyzer interface {
	Analyze(schema *UnionSchema, index *PackageIndex) error
}

// RepresentationSynthesizer designs the tagged-storage layout for a
// validated schema.
type RepresentationSynthesizer interface {
	Synthesize(schema *UnionSchema) (*UnionModel, error)
}

// APIEmitter renders the generated declaration for a union model as Go
// source text.
type APIEmitter interface {
	Emit(model *UnionModel) (string, error)
}

// Pipeline orchestrates the analysis-and-generation pass for one schema.
// It holds no mutable state across invocations; distinct schemas may be
// processed concurrently on the same Pipeline.
type Pipeline struct {
	analyzer    UnionAnalyzer
	synthesizer RepresentationSynthesizer
	emitter     APIEmitter
}

// NewPipeline creates a new Pipeline with its stage implementations.
func NewPipeline(a UnionAnalyzer, s RepresentationSynthesizer, e APIEmitter) *Pipeline {
	return &Pipeline{
		analyzer:    a,
		synthesizer: s,
		emitter:     e,
	}
}

// Run validates, synthesizes and emits one schema. Generation is
// all-or-nothing: any analysis failure suppresses the later stages and
// no code is produced for the type.
func (p *Pipeline) Run(schema *UnionSchema, index *PackageIndex) (string, error) {
	if err := p.analyzer.Analyze(schema, index); err != nil {
		return "", err
	}

	model, err := p.synthesizer.Synthesize(schema)
	if err != nil {
		return "", err
	}

	return p.emitter.Emit(model)
}
