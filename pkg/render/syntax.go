package render

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// reserved words never rewritten into field lookups.
var reserved = map[string]struct{}{
	// keywords
	"if": {}, "else": {}, "end": {}, "range": {}, "with": {}, "define": {},
	"template": {}, "block": {}, "break": {}, "continue": {},
	"nil": {}, "true": {}, "false": {},
	// builtins
	"and": {}, "or": {}, "not": {}, "len": {}, "index": {}, "slice": {},
	"print": {}, "printf": {}, "println": {}, "html": {}, "js": {},
	"urlquery": {}, "call": {}, "eq": {}, "ne": {}, "lt": {}, "le": {},
	"gt": {}, "ge": {},
}

// rewriteBareFields turns bare identifiers inside actions into field lookups,
// so `{{ Name }}` and `{{ Name | upper }}` read as `{{ .Name }}` and
// `{{ .Name | upper }}`. Text outside actions, comments, string literals,
// variables and known function names are left alone.
func rewriteBareFields(src string, known map[string]any) string {
	var b strings.Builder
	b.Grow(len(src) + 16)

	for {
		start := strings.Index(src, "{{")
		if start < 0 {
			b.WriteString(src)
			return b.String()
		}
		b.WriteString(src[:start+2])
		src = src[start+2:]

		end, comment := actionEnd(src)
		if end < 0 {
			// Unterminated action: leave it for the parser to report.
			b.WriteString(src)
			return b.String()
		}
		if comment {
			b.WriteString(src[:end])
		} else {
			b.WriteString(rewriteAction(src[:end], known))
		}
		src = src[end:]
	}
}

// actionEnd returns the offset of the closing delimiter of the action that
// s starts with, and whether the action is a comment.
func actionEnd(s string) (int, bool) {
	inner := strings.TrimLeft(strings.TrimPrefix(s, "-"), " \t\r\n")
	if strings.HasPrefix(inner, "/*") {
		i := strings.Index(s, "*/")
		if i < 0 {
			return -1, true
		}
		j := strings.Index(s[i+2:], "}}")
		if j < 0 {
			return -1, true
		}
		return i + 2 + j, true
	}

	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == '\\' && quote != '`' {
				i++
				continue
			}
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'' || c == '`':
			quote = c
		case c == '}' && i+1 < len(s) && s[i+1] == '}':
			return i, false
		}
	}
	return -1, false
}

func rewriteAction(a string, known map[string]any) string {
	var b strings.Builder
	b.Grow(len(a) + 4)

	for i := 0; i < len(a); {
		r, size := utf8.DecodeRuneInString(a[i:])
		switch {
		case r == '"' || r == '\'' || r == '`':
			j := skipQuoted(a, i)
			b.WriteString(a[i:j])
			i = j
		case r == '.' || r == '$':
			// Field chain or variable, copied as is.
			j := scanIdent(a, i+size, true)
			b.WriteString(a[i:j])
			i = j
		case unicode.IsDigit(r):
			j := scanNumber(a, i)
			b.WriteString(a[i:j])
			i = j
		case r == '_' || unicode.IsLetter(r):
			j := scanIdent(a, i, false)
			word := a[i:j]
			if !isReserved(word, known) {
				b.WriteByte('.')
			}
			b.WriteString(word)
			i = j
		default:
			b.WriteString(a[i : i+size])
			i += size
		}
	}
	return b.String()
}

func isReserved(word string, known map[string]any) bool {
	if _, ok := reserved[word]; ok {
		return true
	}
	_, ok := known[word]
	return ok
}

// scanIdent returns the end of the identifier starting at i.
// With dots set, a chain like Name.First is consumed whole.
func scanIdent(s string, i int, dots bool) int {
	for i < len(s) {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) && !(dots && r == '.') {
			break
		}
		i += size
	}
	return i
}

func scanNumber(s string, i int) int {
	start := i
	for i < len(s) {
		c := s[i]
		switch {
		case c == '.' || c == '_' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z'):
		case (c == '+' || c == '-') && i > start && (s[i-1] == 'e' || s[i-1] == 'E' || s[i-1] == 'p' || s[i-1] == 'P'):
		default:
			return i
		}
		i++
	}
	return i
}

func skipQuoted(s string, i int) int {
	quote := s[i]
	for j := i + 1; j < len(s); j++ {
		switch s[j] {
		case '\\':
			if quote != '`' {
				j++
			}
		case quote:
			return j + 1
		}
	}
	return len(s)
}
