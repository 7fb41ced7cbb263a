package diff

import (
	"strings"
	"unicode"
)

// Reserved words that need quoting when used as column names
var reservedWords = map[string]bool{
	"user":   true,
	"order":  true,
	"group":  true,
	"select": true,
	"from":   true,
	"where":  true,
	"table":  true,
	"case":   true,
	"when":   true,
	"then":   true,
	"end":    true,
	"join":   true,
	"on":     true,
}

// needsQuoting checks if an identifier must be quoted to survive the
// engine's parser. Plain identifiers are emitted bare so the engine applies
// its own case folding.
func needsQuoting(identifier string) bool {
	if identifier == "" {
		return false
	}

	if reservedWords[strings.ToLower(identifier)] {
		return true
	}

	for i, r := range identifier {
		if i == 0 && !unicode.IsLetter(r) && r != '_' {
			return true
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '$' {
			return true
		}
	}

	return false
}

// quoteIdentifier adds quotes to an identifier if needed. Quoted
// identifiers are case-sensitive while bare ones fold to lowercase, so the
// quoted form must be the folded spelling or it stops matching the very
// columns the bare path resolves to.
func quoteIdentifier(identifier string) string {
	if needsQuoting(identifier) {
		return `"` + strings.ReplaceAll(strings.ToLower(identifier), `"`, `""`) + `"`
	}
	return identifier
}
