package generator

import (
	"go/token"
	"unicode"
	"unicode/utf8"
)

// Names of the members the emitter adds to the host package. The
// analyzer checks these against pre-existing declarations so that a
// failing type never produces a half-colliding API.

// TagTypeName returns the case-tag enumeration type name, e.g. "ShapeTag".
func TagTypeName(host string) string {
	return host + "Tag"
}

// TagConstName returns the tag constant name for a case, e.g.
// "ShapeTagCircle".
func TagConstName(host, caseName string) string {
	return host + "Tag" + caseName
}

// FactoryName returns the per-case factory name, e.g. "ShapeCircle".
func FactoryName(host, caseName string) string {
	return host + caseName
}

// AccessorName returns the per-case payload accessor method name; it is
// the case name itself.
func AccessorName(caseName string) string {
	return caseName
}

// IsMethodName returns the per-case predicate method name, e.g.
// "IsCircle".
func IsMethodName(caseName string) string {
	return "Is" + caseName
}

// MatchFuncName returns the exhaustive dispatch function name, e.g.
// "MatchShape".
func MatchFuncName(host string) string {
	return "Match" + host
}

// MatchOrFuncName returns the fallback dispatch function name, e.g.
// "MatchShapeOr".
func MatchOrFuncName(host string) string {
	return "Match" + host + "Or"
}

// CasesTypeName returns the name of the optional-callback struct used by
// the fallback dispatch form, e.g. "ShapeCases".
func CasesTypeName(host string) string {
	return host + "Cases"
}

// ReservedMethodNames are the value-semantics members generated on every
// host type. A case may not use one of these as its name.
var ReservedMethodNames = []string{"Tag", "Equal", "Hash", "String"}

// SlotName returns the backing struct field name for a single-payload
// case, e.g. "circle" for Circle. The same identifier names the case's
// dispatch callback parameter.
func SlotName(caseName string) string {
	return slotIdent(LowerCamel(caseName))
}

// TupleSlotName returns the backing struct field name for one field of a
// tuple-shaped case, e.g. "rectangleWidth".
func TupleSlotName(caseName, fieldName string) string {
	return slotIdent(LowerCamel(caseName) + UpperFirst(fieldName))
}

// slotIdent keeps generated struct field names clear of Go keywords and
// of the tag field itself.
func slotIdent(name string) string {
	if token.IsKeyword(name) || name == "tag" {
		return name + "_"
	}
	return name
}

// LowerCamel lowers the leading rune: "Rectangle" -> "rectangle". A
// leading acronym keeps its last uppercase rune with the tail, so
// "HTTPCode" -> "httpCode".
func LowerCamel(name string) string {
	if name == "" {
		return name
	}
	runes := []rune(name)
	upper := 0
	for upper < len(runes) && unicode.IsUpper(runes[upper]) {
		upper++
	}
	if upper > 1 && upper < len(runes) {
		upper--
	}
	for i := 0; i < upper; i++ {
		runes[i] = unicode.ToLower(runes[i])
	}
	return string(runes)
}

// UpperFirst uppercases the leading rune.
func UpperFirst(name string) string {
	if name == "" {
		return name
	}
	r, size := utf8.DecodeRuneInString(name)
	return string(unicode.ToUpper(r)) + name[size:]
}
