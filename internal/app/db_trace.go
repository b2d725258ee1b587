package app

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const maxTracedQueryLength = 512

// traceableQuery renders a SQL statement as a single line for span
// attributes, capped at maxTracedQueryLength bytes without splitting a rune.
func traceableQuery(query string) string {
	query = strings.TrimRight(strings.Join(strings.FieldsFunc(query, unicode.IsSpace), " "), ";")
	if len(query) <= maxTracedQueryLength {
		return query
	}

	cut := maxTracedQueryLength
	for cut > 0 && !utf8.RuneStart(query[cut]) {
		cut--
	}
	return query[:cut] + "..."
}
