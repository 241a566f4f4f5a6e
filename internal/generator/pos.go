package generator

import (
	"go/token"

	"github.com/sumforge/uniongen/generr"
)

// DiagPos converts a token position into a diagnostic anchor.
func DiagPos(fset *token.FileSet, pos token.Pos) generr.Pos {
	if fset == nil || !pos.IsValid() {
		return generr.Pos{}
	}
	p := fset.Position(pos)
	return generr.Pos{File: p.Filename, Line: p.Line, Column: p.Column}
}
