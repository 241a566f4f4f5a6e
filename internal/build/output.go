package build

import (
	"strings"
	"unicode"
)

// outputFileName maps a host type name to its generated file name:
// Shape -> shape_union.go, HTTPResult -> http_result_union.go.
func outputFileName(host, suffix string) string {
	return snakeCase(host) + suffix
}

// snakeCase lowercases a CamelCase identifier with underscores at word
// boundaries, keeping acronym runs together.
func snakeCase(name string) string {
	var sb strings.Builder
	runes := []rune(name)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			// Boundary before an upper rune, except at the start and
			// inside an acronym run (unless the run ends a word, as in
			// HTTPResult -> http_result).
			if i > 0 {
				prevUpper := unicode.IsUpper(runes[i-1])
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if !prevUpper || nextLower {
					sb.WriteByte('_')
				}
			}
			sb.WriteRune(unicode.ToLower(r))
		} else {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
