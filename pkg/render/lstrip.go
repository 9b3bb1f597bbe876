package render

import (
	"bytes"
	"text/template/parse"
)

// lstripBlocks removes the spaces and tabs between the start of a line and
// a block tag ({{range}}, {{if}}, {{with}}, {{else}}, {{end}}, {{break}},
// {{continue}}, {{template}}, {{define}}, comments and variable
// declarations).
//
// The parse tree does not keep else and end as nodes, so the text before
// them is the last node of the branch list that they close. A defined
// template body is closed by its own {{end}}. Definitions and comments
// leave no node at all; the parser never joins text, so they show up as two
// adjacent text nodes.
func lstripBlocks(tree *parse.Tree, closedByEnd bool) {
	if tree.Root == nil {
		return
	}

	stripList(tree.Root, true, closedByEnd)
}

// stripList handles one node list. atTemplateStart is set for the root list,
// whose first node begins a line even without a preceding newline.
func stripList(list *parse.ListNode, atTemplateStart, closedByTag bool) {
	if list == nil || len(list.Nodes) == 0 {
		return
	}

	for i, n := range list.Nodes {
		if i > 0 && droppedTagBetween(list.Nodes[i-1], n) {
			stripTrailingIndent(list.Nodes[i-1], atTemplateStart && i == 1)

			continue
		}

		if !isBlockTag(n) {
			continue
		}

		if i > 0 {
			stripTrailingIndent(list.Nodes[i-1], atTemplateStart && i == 1)
		}

		switch node := n.(type) {
		case *parse.IfNode:
			stripBranch(&node.BranchNode)
		case *parse.RangeNode:
			stripBranch(&node.BranchNode)
		case *parse.WithNode:
			stripBranch(&node.BranchNode)
		}
	}

	if closedByTag {
		last := len(list.Nodes) - 1
		stripTrailingIndent(list.Nodes[last], atTemplateStart && last == 0)
	}
}

func stripBranch(branch *parse.BranchNode) {
	stripList(branch.List, false, true)
	stripList(branch.ElseList, false, true)
}

func droppedTagBetween(prev, next parse.Node) bool {
	_, prevText := prev.(*parse.TextNode)
	_, nextText := next.(*parse.TextNode)

	return prevText && nextText
}

func isBlockTag(n parse.Node) bool {
	switch node := n.(type) {
	case *parse.IfNode, *parse.RangeNode, *parse.WithNode,
		*parse.TemplateNode, *parse.BreakNode, *parse.ContinueNode:
		return true
	case *parse.ActionNode:
		return node.Pipe != nil && len(node.Pipe.Decl) > 0
	default:
		return false
	}
}

// stripTrailingIndent trims horizontal whitespace after the last newline of
// a text node. Text without a newline is trimmed only when lineStart says
// it begins a line.
func stripTrailingIndent(n parse.Node, lineStart bool) {
	text, ok := n.(*parse.TextNode)
	if !ok {
		return
	}

	idx := bytes.LastIndexByte(text.Text, '\n')
	if idx < 0 && !lineStart {
		return
	}

	if len(bytes.Trim(text.Text[idx+1:], " \t")) != 0 {
		return
	}

	text.Text = text.Text[:idx+1]
}
