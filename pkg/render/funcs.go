package render

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// funcs is the whole callable surface available inside templates.
// None of them reach outside the data they are given.
func funcs() map[string]any {
	return map[string]any{
		"upper": strings.ToUpper,
		"lower": strings.ToLower,
		"trim":  strings.TrimSpace,
		"title": func(s string) string {
			// Casers keep state and must not be shared between goroutines.
			return cases.Title(language.Und).String(s)
		},
		"default": func(def, val string) string {
			if strings.TrimSpace(val) == "" {
				return def
			}
			return val
		},
		"field": func(data map[string]string, name string) (string, error) {
			v, ok := data[name]
			if !ok {
				return "", fmt.Errorf("map has no entry for key %q", name)
			}
			return v, nil
		},
	}
}
