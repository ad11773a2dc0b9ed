package render

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

var (
	// ErrCompile indicates a template could not be parsed. Fatal for a run.
	ErrCompile = errors.New("render: failed to compile template")

	// ErrRender indicates a template could not be executed for one record.
	ErrRender = errors.New("render: failed to render template")

	// ErrNoSubject indicates neither a subject template nor a frontmatter
	// Subject key was supplied.
	ErrNoSubject = errors.New("render: no subject template")

	// ErrInvalidFrontmatter indicates the body starts with a malformed YAML header.
	ErrInvalidFrontmatter = errors.New("render: invalid frontmatter")
)

// Error describes a failure to render one template for one record.
type Error struct {
	Template string // "subject", "body" or "layout"
	Field    string // undefined field name, empty for other failures
	Err      error
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("render: template %q: undefined field %q", e.Template, e.Field)
	}
	return fmt.Sprintf("render: template %q: %v", e.Template, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports ErrRender as a match so callers can branch on the sentinel.
func (e *Error) Is(target error) bool { return target == ErrRender }

// missingKey matches the message produced both by missingkey=error and by
// the field function.
var missingKey = regexp.MustCompile(`no entry for key ("(?:[^"\\]|\\.)*")`)

func newError(name string, err error) *Error {
	re := &Error{Template: name, Err: err}
	if m := missingKey.FindStringSubmatch(err.Error()); m != nil {
		if field, uerr := strconv.Unquote(m[1]); uerr == nil {
			re.Field = field
		}
	}
	return re
}
