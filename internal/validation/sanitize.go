package validation

import (
	"reflect"
	"regexp"
	"strings"
)

// Defense-in-depth scrubbing of free-text input. This is not an HTML
// sanitizer; stored leads are rendered by analyst tooling, not browsers.
var (
	angleBrackets = regexp.MustCompile(`[<>]`)
	jsProtocol    = regexp.MustCompile(`(?i)javascript:`)
	eventHandlers = regexp.MustCompile(`(?i)on\w+=`)
)

// SanitizeString strips angle brackets, javascript: URI prefixes, and
// inline event-handler patterns, then trims surrounding whitespace.
func SanitizeString(input string) string {
	out := angleBrackets.ReplaceAllString(input, "")
	out = jsProtocol.ReplaceAllString(out, "")
	out = eventHandlers.ReplaceAllString(out, "")
	return strings.TrimSpace(out)
}

// SanitizeStruct applies SanitizeString to every exported string field of
// the struct pointed to by v.
func SanitizeStruct(v interface{}) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return
	}
	rv = rv.Elem()
	if rv.Kind() != reflect.Struct {
		return
	}

	for i := 0; i < rv.NumField(); i++ {
		field := rv.Field(i)
		if field.Kind() == reflect.String && field.CanSet() {
			field.SetString(SanitizeString(field.String()))
		}
	}
}
