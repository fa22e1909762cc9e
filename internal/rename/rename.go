// Package rename validates and derives identifier text for the --rename
// operation. Case derivation is grounded on iancoleman/strcase, already a
// teacher dependency used for prop-name casing in internal/transform.
package rename

import (
	"unicode"

	"github.com/iancoleman/strcase"

	"github.com/tsnjs/tsnjs/internal/diagnostic"
)

// ValidateIdentifier reports whether s is a legal JS/TS identifier:
// starts with a letter, `_`, or `$`, followed by letters, digits, `_`,
// or `$`. This is deliberately narrower than the full Unicode
// ID_Start/ID_Continue grammar the real languages allow — good enough
// for the ASCII identifiers every seed test and fixture uses.
func ValidateIdentifier(s string) *diagnostic.Error {
	if s == "" {
		return diagnostic.New(diagnostic.InvalidReplacement, "rename target is empty")
	}
	for i, r := range s {
		ok := unicode.IsLetter(r) || r == '_' || r == '$' || (i > 0 && unicode.IsDigit(r))
		if !ok {
			return diagnostic.New(diagnostic.InvalidReplacement, "%q is not a valid identifier at position %d", s, i)
		}
	}
	if unicode.IsDigit(rune(s[0])) {
		return diagnostic.New(diagnostic.InvalidReplacement, "%q cannot start with a digit", s)
	}
	return nil
}

// ToCamel, ToPascal, and ToSnake expose the case conventions a caller
// may want to offer alongside a literal --rename value (e.g. an
// interactive "rename and also fix casing" recipe built on top of this
// core).
func ToCamel(s string) string { return strcase.ToLowerCamel(s) }
func ToPascal(s string) string { return strcase.ToCamel(s) }
func ToSnake(s string) string { return strcase.ToSnake(s) }
