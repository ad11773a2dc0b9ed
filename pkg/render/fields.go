package render

import (
	"slices"
	"text/template/parse"
)

// collectFields lists the top-level field names referenced by the trees,
// either as {{ .Name }} or through {{ index . "Name" }} / {{ field . "Name" }}.
func collectFields(trees ...*parse.Tree) []string {
	seen := map[string]struct{}{}
	for _, t := range trees {
		if t != nil && t.Root != nil {
			walk(t.Root, seen)
		}
	}

	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

func walk(node parse.Node, seen map[string]struct{}) {
	switch n := node.(type) {
	case *parse.ListNode:
		if n == nil {
			return
		}
		for _, c := range n.Nodes {
			walk(c, seen)
		}
	case *parse.ActionNode:
		walk(n.Pipe, seen)
	case *parse.PipeNode:
		if n == nil {
			return
		}
		for _, c := range n.Cmds {
			walk(c, seen)
		}
	case *parse.CommandNode:
		if name, ok := lookupArg(n.Args); ok {
			seen[name] = struct{}{}
		}
		for _, a := range n.Args {
			walk(a, seen)
		}
	case *parse.FieldNode:
		if len(n.Ident) > 0 {
			seen[n.Ident[0]] = struct{}{}
		}
	case *parse.ChainNode:
		walk(n.Node, seen)
	case *parse.IfNode:
		walkBranch(&n.BranchNode, seen)
	case *parse.RangeNode:
		walkBranch(&n.BranchNode, seen)
	case *parse.WithNode:
		walkBranch(&n.BranchNode, seen)
	case *parse.TemplateNode:
		walk(n.Pipe, seen)
	}
}

func walkBranch(b *parse.BranchNode, seen map[string]struct{}) {
	walk(b.Pipe, seen)
	walk(b.List, seen)
	if b.ElseList != nil {
		walk(b.ElseList, seen)
	}
}

// lookupArg recognises index . "Name" and field . "Name".
func lookupArg(args []parse.Node) (string, bool) {
	if len(args) != 3 {
		return "", false
	}
	id, ok := args[0].(*parse.IdentifierNode)
	if !ok || (id.Ident != "index" && id.Ident != "field") {
		return "", false
	}
	if _, ok := args[1].(*parse.DotNode); !ok {
		return "", false
	}
	s, ok := args[2].(*parse.StringNode)
	if !ok {
		return "", false
	}
	return s.Text, true
}
