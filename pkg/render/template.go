package render

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"path/filepath"
	"strings"
	texttemplate "text/template"

	"github.com/yuin/goldmark"

	"github.com/dmitrymomot/paperco/pkg/sanitizer"
)

// Format selects how the body template is turned into HTML.
type Format string

const (
	// FormatHTML treats the body as an HTML template.
	FormatHTML Format = "html"
	// FormatMarkdown treats the body as markdown, converted after data binding.
	FormatMarkdown Format = "markdown"
)

// FormatFromPath guesses the body format from a file name.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return FormatMarkdown
	default:
		return FormatHTML
	}
}

// Option configures Compile.
type Option func(*options)

type options struct {
	format Format
	layout string
}

// WithFormat sets the body format. Defaults to FormatHTML.
func WithFormat(f Format) Option {
	return func(o *options) {
		if f != "" {
			o.format = f
		}
	}
}

// WithLayout wraps the rendered body in an HTML layout template
// exposing {{ .Content }} and {{ .Subject }}.
func WithLayout(src string) Option {
	return func(o *options) {
		o.layout = src
	}
}

// Message is the rendered content for one recipient.
type Message struct {
	Subject string
	HTML    string
	Text    string
}

// TemplateSet holds a compiled subject and body, ready to render any number
// of records. Safe for concurrent use.
type TemplateSet struct {
	subject *texttemplate.Template
	body    *template.Template
	layout  *template.Template
	md      goldmark.Markdown
	fields  []string
}

// Compile parses the subject and body templates once for a whole run.
//
// An empty subject falls back to a Subject key in YAML frontmatter at the
// top of the body. The subject renders as plain text; every value
// interpolated into the body is HTML-escaped, and in markdown mode also
// markdown-escaped so it cannot add links, images or emphasis. Referencing
// a field the record lacks fails at render time.
func Compile(subjectSrc, bodySrc string, opts ...Option) (*TemplateSet, error) {
	o := options{format: FormatHTML}
	for _, opt := range opts {
		opt(&o)
	}
	if o.format != FormatHTML && o.format != FormatMarkdown {
		return nil, errors.Join(ErrCompile, fmt.Errorf("unknown body format %q", o.format))
	}

	meta, bodySrc, err := splitFrontmatter(bodySrc)
	if err != nil {
		return nil, errors.Join(ErrCompile, err)
	}
	if strings.TrimSpace(subjectSrc) == "" {
		subjectSrc = subjectFromMeta(meta)
	}
	if strings.TrimSpace(subjectSrc) == "" {
		return nil, errors.Join(ErrCompile, ErrNoSubject)
	}

	fm := funcs()

	subject, err := texttemplate.New("subject").
		Option("missingkey=error").
		Funcs(fm).
		Parse(rewriteBareFields(subjectSrc, fm))
	if err != nil {
		return nil, errors.Join(ErrCompile, err)
	}

	body, err := template.New("body").
		Option("missingkey=error").
		Funcs(fm).
		Funcs(template.FuncMap{markdownEscaperName: escapeMarkdown}).
		Parse(rewriteBareFields(bodySrc, fm))
	if err != nil {
		return nil, errors.Join(ErrCompile, err)
	}

	set := &TemplateSet{
		subject: subject,
		body:    body,
		fields:  collectFields(subject.Tree, body.Tree),
	}

	if o.format == FormatMarkdown {
		for _, t := range body.Templates() {
			escapeMarkdownActions(t.Tree)
		}
		set.md = goldmark.New(goldmark.WithExtensions(ButtonExtension()))
	}

	if o.layout != "" {
		set.layout, err = template.New("layout").Option("missingkey=error").Parse(o.layout)
		if err != nil {
			return nil, errors.Join(ErrCompile, fmt.Errorf("layout: %w", err))
		}
	}

	return set, nil
}

// Fields returns the record fields the templates reference, sorted.
func (s *TemplateSet) Fields() []string {
	out := make([]string, len(s.fields))
	copy(out, s.fields)
	return out
}

// Render binds one record's data to the templates.
// Subject and body see the same data. Failures are *Error values matching
// ErrRender; a missing field is reported in Error.Field.
func (s *TemplateSet) Render(data map[string]string) (*Message, error) {
	if data == nil {
		data = map[string]string{}
	}

	var subj bytes.Buffer
	if err := s.subject.Execute(&subj, data); err != nil {
		return nil, newError("subject", err)
	}
	subject := foldSubject(subj.String())

	var body bytes.Buffer
	if err := s.body.Execute(&body, data); err != nil {
		return nil, newError("body", err)
	}

	content := body.String()
	if s.md != nil {
		var converted bytes.Buffer
		if err := s.md.Convert(body.Bytes(), &converted); err != nil {
			return nil, newError("body", err)
		}
		content = converted.String()
	}

	if s.layout != nil {
		var wrapped bytes.Buffer
		err := s.layout.Execute(&wrapped, layoutData{
			Content: template.HTML(content),
			Subject: subject,
		})
		if err != nil {
			return nil, newError("layout", err)
		}
		content = wrapped.String()
	}

	return &Message{
		Subject: subject,
		HTML:    content,
		Text:    sanitizer.PlainText(content),
	}, nil
}

type layoutData struct {
	Content template.HTML
	Subject string
}

var lineBreaks = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

// foldSubject keeps a rendered subject on one line.
func foldSubject(s string) string {
	return strings.TrimSpace(lineBreaks.Replace(s))
}
