package parser

import (
	"go/ast"
	goparser "go/parser"
	"go/scanner"
	"go/token"

	"github.com/sumforge/uniongen/generr"
)

// GoSourceParser parses Go source files into syntax trees, translating
// parser failures into uniongen diagnostics. All files parsed by one
// instance share a FileSet so positions stay resolvable downstream.
type GoSourceParser struct {
	fset *token.FileSet
}

// New creates a new GoSourceParser with a fresh FileSet.
func New() *GoSourceParser {
	return &GoSourceParser{fset: token.NewFileSet()}
}

// FileSet returns the FileSet positions in parsed files resolve against.
func (p *GoSourceParser) FileSet() *token.FileSet {
	return p.fset
}

// ParseFile parses one source file. src may be nil to read from disk, or
// a string/[]byte snapshot. Comments are kept because the generation
// marker is a directive comment.
func (p *GoSourceParser) ParseFile(filename string, src any) (*ast.File, error) {
	file, err := goparser.ParseFile(p.fset, filename, src, goparser.ParseComments)
	if err != nil {
		return nil, translateParseError(err)
	}
	return file, nil
}

// translateParseError maps go/scanner errors onto position-anchored
// SyntaxErrors, preserving every reported location.
func translateParseError(err error) error {
	list, ok := err.(scanner.ErrorList)
	if !ok {
		return generr.NewSyntaxError(generr.Pos{}, err.Error())
	}

	multi := &generr.MultiError{}
	for _, e := range list {
		multi.Append(generr.NewSyntaxError(generr.Pos{
			File:   e.Pos.Filename,
			Line:   e.Pos.Line,
			Column: e.Pos.Column,
		}, e.Msg))
	}
	return multi.ErrOrNil()
}
