// Package quote provides MySQL identifier and literal quoting helpers.
//
// Quoted text is never safe to build by plain concatenation: embedded quote
// characters and backslashes must be escaped before the surrounding quotes
// are added. All SQL emitted by this module goes through these helpers.
package quote

import "strings"

// Escape escapes every backslash and every occurrence of the quote character
// in text with a backslash, following the MySQL escaping rules.
func Escape(text string, quote byte) string {
	text = strings.ReplaceAll(text, `\`, `\\`)
	return strings.ReplaceAll(text, string(quote), `\`+string(quote))
}

// quoted escapes text and wraps it in the quote character.
func quoted(text string, quote byte) string {
	return string(quote) + Escape(text, quote) + string(quote)
}

// Identifier quotes a schema, table, or column name with backticks.
func Identifier(name string) string {
	return quoted(name, '`')
}

// Literal quotes a string literal with single quotes.
func Literal(text string) string {
	return quoted(text, '\'')
}
