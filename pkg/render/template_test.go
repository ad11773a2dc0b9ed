package render_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/paperco/pkg/render"
)

func TestCompile_BareFieldGreeting(t *testing.T) {
	t.Parallel()

	set, err := render.Compile("Hi {{ Name }}", "Hello {{ Name }}")
	require.NoError(t, err)

	msg, err := set.Render(map[string]string{"Name": "Ada", "Email": "a@x.com"})
	require.NoError(t, err)
	require.Equal(t, "Hello Ada", msg.HTML)
	require.Equal(t, "Hi Ada", msg.Subject)
	require.Equal(t, "Hello Ada", msg.Text)
}

func TestRender_MissingFieldNamesTheField(t *testing.T) {
	t.Parallel()

	set, err := render.Compile("Welcome", "Hello {{ Name }}")
	require.NoError(t, err)

	_, err = set.Render(map[string]string{"Email": "a@x.com"})
	require.Error(t, err)
	require.ErrorIs(t, err, render.ErrRender)

	var rerr *render.Error
	require.True(t, errors.As(err, &rerr))
	require.Equal(t, "Name", rerr.Field)
	require.Equal(t, "body", rerr.Template)
	require.Contains(t, rerr.Error(), `"Name"`)
}

func TestRender_MissingFieldInSubject(t *testing.T) {
	t.Parallel()

	set, err := render.Compile("For {{ .Company }}", "<p>ok</p>")
	require.NoError(t, err)

	_, err = set.Render(map[string]string{"Email": "a@x.com"})

	var rerr *render.Error
	require.ErrorAs(t, err, &rerr)
	require.Equal(t, "subject", rerr.Template)
	require.Equal(t, "Company", rerr.Field)
}

func TestRender_FieldFunctionForNonIdentifierNames(t *testing.T) {
	t.Parallel()

	set, err := render.Compile("x", `<p>{{ field . "First Name" }}</p>`)
	require.NoError(t, err)

	msg, err := set.Render(map[string]string{"First Name": "Ada"})
	require.NoError(t, err)
	require.Equal(t, "<p>Ada</p>", msg.HTML)

	_, err = set.Render(map[string]string{})
	var rerr *render.Error
	require.ErrorAs(t, err, &rerr)
	require.Equal(t, "First Name", rerr.Field)
}

func TestRender_EscapesMarkupInBody(t *testing.T) {
	t.Parallel()

	set, err := render.Compile("{{ Name }}", "<p>{{ Name }}</p>")
	require.NoError(t, err)

	msg, err := set.Render(map[string]string{"Name": `<script>alert(1)</script> & co`})
	require.NoError(t, err)
	assert.NotContains(t, msg.HTML, "<script>")
	assert.Contains(t, msg.HTML, "&lt;script&gt;")
	assert.Contains(t, msg.HTML, "&amp; co")

	// The subject is plain text and carries the value as given.
	assert.Equal(t, `<script>alert(1)</script> & co`, msg.Subject)
}

func TestRender_SubjectIsSingleLine(t *testing.T) {
	t.Parallel()

	set, err := render.Compile("  Hello {{ Name }}\n", "<p>x</p>")
	require.NoError(t, err)

	msg, err := set.Render(map[string]string{"Name": "Ada\r\nBcc: evil@example.com"})
	require.NoError(t, err)
	require.Equal(t, "Hello Ada Bcc: evil@example.com", msg.Subject)
	require.NotContains(t, msg.Subject, "\n")
}

func TestRender_IsIdempotent(t *testing.T) {
	t.Parallel()

	set, err := render.Compile("Hi {{ Name }}", "<h1>{{ Name | upper }}</h1><p>{{ Plan | title }}</p>")
	require.NoError(t, err)

	data := map[string]string{"Name": "Ada", "Plan": "pro plan"}
	first, err := set.Render(data)
	require.NoError(t, err)
	second, err := set.Render(data)
	require.NoError(t, err)

	require.Equal(t, first, second)
	require.Equal(t, "<h1>ADA</h1><p>Pro Plan</p>", first.HTML)
}

func TestRender_NoUnresolvedMarkers(t *testing.T) {
	t.Parallel()

	set, err := render.Compile(
		"{{ Company }} update",
		`{{- /* greeting */ -}}
<p>Dear {{ Name | trim }},</p>
{{ if Plan }}<p>Plan: {{ .Plan | lower }}</p>{{ end }}
<p>{{ index . "Nick" | default "friend" }}</p>`,
	)
	require.NoError(t, err)

	msg, err := set.Render(map[string]string{
		"Company": "Acme",
		"Name":    "  Ada ",
		"Plan":    "PRO",
	})
	require.NoError(t, err)
	assert.NotContains(t, msg.HTML, "{{")
	assert.NotContains(t, msg.HTML, "}}")
	assert.NotContains(t, msg.HTML, "greeting")
	assert.Contains(t, msg.HTML, "Dear Ada,")
	assert.Contains(t, msg.HTML, "Plan: pro")
	assert.Contains(t, msg.HTML, "friend")
}

func TestRender_DataIsNotShared(t *testing.T) {
	t.Parallel()

	set, err := render.Compile("Hi {{ Name }}", "<p>{{ Name }}</p>")
	require.NoError(t, err)

	var wg sync.WaitGroup
	names := []string{"Ada", "Grace", "Linus", "Ken"}
	results := make([]*render.Message, len(names))
	for i, name := range names {
		wg.Add(1)
		go func() {
			defer wg.Done()
			msg, err := set.Render(map[string]string{"Name": name})
			assert.NoError(t, err)
			results[i] = msg
		}()
	}
	wg.Wait()

	for i, name := range names {
		require.Equal(t, "<p>"+name+"</p>", results[i].HTML)
	}
}

func TestCompile_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		subject string
		body    string
		opts    []render.Option
		target  error
	}{
		{name: "unbalanced subject", subject: "Hi {{ Name", body: "x", target: render.ErrCompile},
		{name: "stray end in body", subject: "Hi", body: "<p>{{ end }}</p>", target: render.ErrCompile},
		{name: "no subject anywhere", subject: "", body: "<p>x</p>", target: render.ErrNoSubject},
		{name: "broken frontmatter", subject: "", body: "---\nSubject: x\n", target: render.ErrInvalidFrontmatter},
		{name: "broken layout", subject: "x", body: "y", opts: []render.Option{render.WithLayout("{{ .Content ")}, target: render.ErrCompile},
		{name: "unknown format", subject: "x", body: "y", opts: []render.Option{render.WithFormat("rtf")}, target: render.ErrCompile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			set, err := render.Compile(tt.subject, tt.body, tt.opts...)
			require.Nil(t, set)
			require.ErrorIs(t, err, tt.target)
			require.ErrorIs(t, err, render.ErrCompile)
		})
	}
}

func TestCompile_SubjectFromFrontmatter(t *testing.T) {
	t.Parallel()

	body := "---\nSubject: \"Welcome, {{ Name }}\"\n---\n<p>Hi {{ Name }}</p>"

	set, err := render.Compile("", body)
	require.NoError(t, err)

	msg, err := set.Render(map[string]string{"Name": "Ada"})
	require.NoError(t, err)
	require.Equal(t, "Welcome, Ada", msg.Subject)
	require.Equal(t, "<p>Hi Ada</p>", msg.HTML)
}

func TestCompile_ExplicitSubjectWinsOverFrontmatter(t *testing.T) {
	t.Parallel()

	set, err := render.Compile("Explicit", "---\nSubject: From header\n---\n<p>x</p>")
	require.NoError(t, err)

	msg, err := set.Render(nil)
	require.NoError(t, err)
	require.Equal(t, "Explicit", msg.Subject)
	require.Equal(t, "<p>x</p>", msg.HTML)
}

func TestTemplateSet_Fields(t *testing.T) {
	t.Parallel()

	set, err := render.Compile(
		"{{ Company }}",
		`{{ if .Plan }}{{ Name | upper }}{{ else }}{{ index . "Nick" }}{{ end }}{{ field . "First Name" }}`,
	)
	require.NoError(t, err)
	require.Equal(t, []string{"Company", "First Name", "Name", "Nick", "Plan"}, set.Fields())
}

func TestFormatFromPath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, render.FormatMarkdown, render.FormatFromPath("body.md"))
	assert.Equal(t, render.FormatMarkdown, render.FormatFromPath("BODY.Markdown"))
	assert.Equal(t, render.FormatHTML, render.FormatFromPath("body.html"))
	assert.Equal(t, render.FormatHTML, render.FormatFromPath("body"))
}
