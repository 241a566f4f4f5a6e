package generr

import (
	"fmt"
	"strings"
)

// Code is a stable diagnostic code. Codes never change meaning between
// releases so that build integrations can filter on them.
type Code string

const (
	CodeNoSchema         Code = "UG001" // marker present but no usable case-schema declaration
	CodeEmptySchema      Code = "UG002" // schema declares zero cases
	CodeDuplicateCase    Code = "UG003" // duplicate case name within one schema
	CodeNotAugmentable   Code = "UG004" // host type cannot be generated into the package
	CodeMemberConflict   Code = "UG005" // case name collides with an existing member
	CodeUnboundTypeParam Code = "UG006" // payload references an undeclared type parameter
	CodeInvalidPayload   Code = "UG007" // payload type is invalid or not accessible
	CodeParseFailure     Code = "UG101" // source file failed to parse
)

// Severity of a diagnostic. Every generation failure is an error; the
// level exists so integrations have a stable field to switch on.
type Severity string

const (
	SeverityError Severity = "error"
)

// Pos anchors a diagnostic at a source declaration.
type Pos struct {
	File   string
	Line   int
	Column int
}

func (p Pos) String() string {
	if p.File != "" {
		return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
	}
	if p.Line > 0 {
		return fmt.Sprintf("line %d:%d", p.Line, p.Column)
	}
	return ""
}

// Diagnostic is the interface for all uniongen diagnostics.
type Diagnostic interface {
	error
	Code() Code
	Severity() Severity
	Position() Pos
}

// BaseError provides common fields for uniongen diagnostics.
type BaseError struct {
	Msg     string
	ErrCode Code
	At      Pos
}

func (e *BaseError) Error() string {
	if s := e.At.String(); s != "" {
		return fmt.Sprintf("[%s] %s %s", e.ErrCode, s, e.Msg)
	}
	return fmt.Sprintf("[%s] %s", e.ErrCode, e.Msg)
}

func (e *BaseError) Code() Code         { return e.ErrCode }
func (e *BaseError) Severity() Severity { return SeverityError }
func (e *BaseError) Position() Pos      { return e.At }

// SyntaxError reports a source file that failed to parse.
type SyntaxError struct {
	BaseError
}

// StructuralError reports a host type that cannot be generated: the
// schema declaration is missing, empty, or the host declaration cannot
// be augmented.
type StructuralError struct {
	BaseError
}

// NameConflictError reports a duplicate case name or a collision with a
// pre-existing member of the host type.
type NameConflictError struct {
	BaseError
}

// TypeError reports an invalid payload type or a payload referencing a
// type parameter the schema does not declare.
type TypeError struct {
	BaseError
}

// MultiError collects the diagnostics of one generation pass.
type MultiError struct {
	Errors []error
}

func (m *MultiError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d error(s) occurred:\n", len(m.Errors)))
	for _, err := range m.Errors {
		sb.WriteString(fmt.Sprintf("- %v\n", err))
	}
	return sb.String()
}

// Append adds err to the collection, flattening nested MultiErrors.
func (m *MultiError) Append(err error) {
	if err == nil {
		return
	}
	if other, ok := err.(*MultiError); ok {
		m.Errors = append(m.Errors, other.Errors...)
		return
	}
	m.Errors = append(m.Errors, err)
}

// ErrOrNil returns the collection as an error, or nil when empty.
func (m *MultiError) ErrOrNil() error {
	if len(m.Errors) == 0 {
		return nil
	}
	return m
}

// NewSyntaxError creates a new SyntaxError.
func NewSyntaxError(pos Pos, msg string) *SyntaxError {
	return &SyntaxError{BaseError{Msg: msg, ErrCode: CodeParseFailure, At: pos}}
}

// NewStructuralError creates a StructuralError with one of the
// structural codes (UG001, UG002, UG004).
func NewStructuralError(code Code, pos Pos, msg string) *StructuralError {
	return &StructuralError{BaseError{Msg: msg, ErrCode: code, At: pos}}
}

// NewNameConflictError creates a NameConflictError with one of the name
// conflict codes (UG003, UG005).
func NewNameConflictError(code Code, pos Pos, msg string) *NameConflictError {
	return &NameConflictError{BaseError{Msg: msg, ErrCode: code, At: pos}}
}

// NewTypeError creates a TypeError with one of the type codes
// (UG006, UG007).
func NewTypeError(code Code, pos Pos, msg string) *TypeError {
	return &TypeError{BaseError{Msg: msg, ErrCode: code, At: pos}}
}
