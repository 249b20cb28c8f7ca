// Package template renders {{entity.field}} placeholder tokens against a
// runtime context.
package template

import (
	"regexp"
	"strings"
)

var tokenPattern = regexp.MustCompile(`\{\{\s*([a-zA-Z0-9_]+(?:\.[a-zA-Z0-9_]+)*)\s*\}\}`)

// Context maps entity names to their field values, e.g.
// {"patient": {"first_name": "Anna"}, "deal": {"title": "Consultation"}}.
type Context map[string]map[string]string

// Render replaces each {{entity.field}} token in tmpl with the matching
// context value. A token whose path is absent renders as an empty string.
// Render is pure and deterministic; rendering the output again with the same
// context is a no-op as long as the context values themselves contain no
// tokens.
func Render(tmpl string, ctx Context) string {
	return tokenPattern.ReplaceAllStringFunc(tmpl, func(match string) string {
		path := tokenPattern.FindStringSubmatch(match)[1]
		parts := strings.SplitN(path, ".", 2)
		if len(parts) != 2 {
			return ""
		}
		fields, ok := ctx[parts[0]]
		if !ok {
			return ""
		}
		return fields[parts[1]]
	})
}
