// Package render compiles subject and body templates once and renders them
// per recipient record.
//
// Templates use Go template markup. Bare field names are accepted as a
// shorthand, so both of these are equivalent:
//
//	Hello {{ .Name }}
//	Hello {{ Name }}
//
// Only the record's own fields and a small function set (upper, lower,
// title, trim, default, field) are reachable from a template. Referencing a
// field the record does not have is an error; use
// {{ index . "Nick" | default "friend" }} for optional fields.
//
// The subject renders as plain text on a single line. The body renders with
// contextual HTML escaping. Markdown bodies (FormatMarkdown) are converted
// to HTML after data binding and support call-to-action links:
//
//	[!button|Confirm](https://example.com/confirm)
//
// Basic usage:
//
//	set, err := render.Compile("Welcome, {{ Name }}", "<p>Hi {{ Name }}</p>")
//	if err != nil {
//		return err // errors.Is(err, render.ErrCompile)
//	}
//	msg, err := set.Render(map[string]string{"Name": "Ada"})
//	var rerr *render.Error
//	if errors.As(err, &rerr) {
//		log.Printf("missing %s", rerr.Field)
//	}
package render
