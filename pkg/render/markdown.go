package render

import (
	"fmt"
	"strings"
	"text/template/parse"
)

// markdownEscaperName is the template function appended to every output
// action of a markdown body.
const markdownEscaperName = "_markdown_escape"

// markdownPunct lists the characters that carry markdown meaning in a value.
// The characters html/template already turns into entities (< > & ' " +)
// are left to it: a backslash in front of an entity would print the entity
// text instead of the character.
const markdownPunct = "\\`*_{}[]()#-.!|~="

// escapeMarkdown backslash-escapes markdown punctuation, so an interpolated
// value renders as the literal text it holds.
func escapeMarkdown(v any) string {
	s, ok := v.(string)
	if !ok {
		s = fmt.Sprint(v)
	}
	if !strings.ContainsAny(s, markdownPunct) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 8)
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(markdownPunct, s[i]) >= 0 {
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// escapeMarkdownActions appends the markdown escaper to every action that
// prints a value. It must run before the first Execute, so html/template
// adds its own escaper after ours.
func escapeMarkdownActions(trees ...*parse.Tree) {
	for _, t := range trees {
		if t != nil && t.Root != nil {
			escapeMarkdownNode(t.Root)
		}
	}
}

func escapeMarkdownNode(n parse.Node) {
	switch n := n.(type) {
	case *parse.ListNode:
		if n == nil {
			return
		}
		for _, c := range n.Nodes {
			escapeMarkdownNode(c)
		}
	case *parse.ActionNode:
		escapeMarkdownPipe(n.Pipe)
	case *parse.IfNode:
		escapeMarkdownNode(n.List)
		escapeMarkdownNode(n.ElseList)
	case *parse.RangeNode:
		escapeMarkdownNode(n.List)
		escapeMarkdownNode(n.ElseList)
	case *parse.WithNode:
		escapeMarkdownNode(n.List)
		escapeMarkdownNode(n.ElseList)
	}
}

func escapeMarkdownPipe(p *parse.PipeNode) {
	if p == nil || len(p.Decl) > 0 || len(p.Cmds) == 0 {
		return
	}

	cmd := &parse.CommandNode{
		NodeType: parse.NodeCommand,
		Pos:      p.Position(),
		Args:     []parse.Node{parse.NewIdentifier(markdownEscaperName).SetPos(p.Position())},
	}

	// html and urlquery must stay last in a pipeline. Their arguments move
	// into a print command ahead of the escaper.
	last := p.Cmds[len(p.Cmds)-1]
	if id, ok := last.Args[0].(*parse.IdentifierNode); ok && (id.Ident == "html" || id.Ident == "urlquery") {
		head := p.Cmds[:len(p.Cmds)-1]
		if len(last.Args) > 1 {
			head = append(head, &parse.CommandNode{
				NodeType: parse.NodeCommand,
				Pos:      last.Pos,
				Args:     append([]parse.Node{parse.NewIdentifier("print").SetPos(last.Pos)}, last.Args[1:]...),
			})
			last = &parse.CommandNode{NodeType: parse.NodeCommand, Pos: last.Pos, Args: last.Args[:1]}
		}
		p.Cmds = append(head, cmd, last)
		return
	}
	p.Cmds = append(p.Cmds, cmd)
}
