package render_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/paperco/pkg/render"
)

func TestRender_Markdown(t *testing.T) {
	t.Parallel()

	body := "# Welcome, {{ Name }}\n\nYour plan is **{{ Plan }}**.\n\n[!button|Open dashboard](https://example.com/d?u={{ ID }})\n"

	set, err := render.Compile("Hi", body, render.WithFormat(render.FormatMarkdown))
	require.NoError(t, err)

	msg, err := set.Render(map[string]string{"Name": "Ada", "Plan": "pro", "ID": "42"})
	require.NoError(t, err)
	assert.Contains(t, msg.HTML, "<h1>Welcome, Ada</h1>")
	assert.Contains(t, msg.HTML, "<strong>pro</strong>")
	assert.Contains(t, msg.HTML, `<a href="https://example.com/d?u=42" class="btn">Open dashboard</a>`)

	assert.Contains(t, msg.Text, "Welcome, Ada")
	assert.Contains(t, msg.Text, "Open dashboard")
}

func TestRender_MarkdownEscapesValues(t *testing.T) {
	t.Parallel()

	set, err := render.Compile("Hi", "Hello {{ Name }}", render.WithFormat(render.FormatMarkdown))
	require.NoError(t, err)

	msg, err := set.Render(map[string]string{"Name": "<img src=x onerror=alert(1)>"})
	require.NoError(t, err)
	assert.NotContains(t, msg.HTML, "<img")
	assert.Contains(t, msg.HTML, "&lt;img")
}

func TestRender_MarkdownDropsRawHTML(t *testing.T) {
	t.Parallel()

	set, err := render.Compile("Hi", "before\n\n<script>alert(1)</script>\n\nafter", render.WithFormat(render.FormatMarkdown))
	require.NoError(t, err)

	msg, err := set.Render(nil)
	require.NoError(t, err)
	assert.NotContains(t, msg.HTML, "<script>")
	assert.Contains(t, msg.HTML, "after")
}

func TestRender_Layout(t *testing.T) {
	t.Parallel()

	layout := `<html><head><title>{{ .Subject }}</title></head><body>{{ .Content }}</body></html>`

	set, err := render.Compile("Hi {{ Name }}", "Hello **{{ Name }}**",
		render.WithFormat(render.FormatMarkdown),
		render.WithLayout(layout),
	)
	require.NoError(t, err)

	msg, err := set.Render(map[string]string{"Name": "Ada & Co"})
	require.NoError(t, err)
	assert.Contains(t, msg.HTML, "<title>Hi Ada &amp; Co</title>")
	assert.Contains(t, msg.HTML, "<body><p>Hello <strong>Ada &amp; Co</strong></p>\n</body>")
	assert.Contains(t, msg.Text, "Hello Ada & Co")
}

func TestRender_MarkdownValuesStayLiteral(t *testing.T) {
	t.Parallel()

	set, err := render.Compile("Hi", "Hello {{ Name }}", render.WithFormat(render.FormatMarkdown))
	require.NoError(t, err)

	name := "Ada [reset your password](https://evil.example/login) ![](https://evil.example/pixel.gif) *now* `x`"
	msg, err := set.Render(map[string]string{"Name": name})
	require.NoError(t, err)

	assert.NotContains(t, msg.HTML, "<a ")
	assert.NotContains(t, msg.HTML, "<img")
	assert.NotContains(t, msg.HTML, "<em>")
	assert.NotContains(t, msg.HTML, "<code>")
	assert.NotContains(t, msg.HTML, `\`)
	assert.Contains(t, msg.HTML, "[reset your password](https://evil.example/login)")
	assert.Contains(t, msg.HTML, "![](https://evil.example/pixel.gif)")
	assert.Contains(t, msg.HTML, "*now*")
}

func TestRender_MarkdownValuesCannotAddBlocks(t *testing.T) {
	t.Parallel()

	set, err := render.Compile("Hi", "{{ Note }}", render.WithFormat(render.FormatMarkdown))
	require.NoError(t, err)

	msg, err := set.Render(map[string]string{"Note": "# Urgent\n- one\n1. two\n> quoted\n+ three\nline\n==="})
	require.NoError(t, err)

	for _, tag := range []string{"<h1>", "<h2>", "<ul>", "<ol>", "<blockquote>"} {
		assert.NotContains(t, msg.HTML, tag)
	}
	assert.Contains(t, msg.HTML, "# Urgent")
}

func TestRender_MarkdownEscapingKeepsTemplateLogic(t *testing.T) {
	t.Parallel()

	body := `{{ if eq Plan "pro-plus" }}**{{ Plan | upper }}**{{ end }} {{ $n := Name }}{{ $n | html }} {{ html ID }}` +
		"\n\n[!button|Open {{ Name }}](https://example.com/u/{{ ID }})\n"

	set, err := render.Compile("Hi", body, render.WithFormat(render.FormatMarkdown))
	require.NoError(t, err)

	msg, err := set.Render(map[string]string{"Plan": "pro-plus", "Name": "A.B [x]", "ID": "a.b_c"})
	require.NoError(t, err)

	assert.Contains(t, msg.HTML, "<strong>PRO-PLUS</strong>")
	assert.Contains(t, msg.HTML, "A.B [x] a.b_c")
	assert.NotContains(t, msg.HTML, `\`)
	assert.Contains(t, msg.HTML, `<a href="https://example.com/u/a.b_c" class="btn">Open A.B [x]</a>`)
}
