package document

import (
	"fmt"
	"strings"
)

// FormatTree renders the subtree at n as a text tree, one element per line
// with its value, selected branch and excluded flag.
func FormatTree(n *Node) string {
	if n == nil {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(label(n) + "\n")
	formatChildren(&sb, n, "")
	return sb.String()
}

func formatChildren(sb *strings.Builder, n *Node, prefix string) {
	kids := n.Children()
	for i, c := range kids {
		isLast := i == len(kids)-1
		connector := "├── "
		childPrefix := prefix + "│   "
		if isLast {
			connector = "└── "
			childPrefix = prefix + "    "
		}
		sb.WriteString(prefix + connector + label(c) + "\n")
		formatChildren(sb, c, childPrefix)
	}
}

func label(n *Node) string {
	var sb strings.Builder
	sb.WriteString(n.Key)
	if n.Key != n.Name {
		sb.WriteString(" <" + n.Name + ">")
	}
	for _, a := range n.Attrs() {
		if a.Text() != "" {
			sb.WriteString(fmt.Sprintf(" @%s=%q", a.Key, a.Text()))
		}
	}
	switch {
	case n.Text() != "":
		sb.WriteString(fmt.Sprintf(" = %q", n.Text()))
	case n.Record() != nil && !n.Record().Empty():
		sb.WriteString(" = {record}")
	}
	if n.Kind == KindChoice {
		if n.Selected != "" {
			sb.WriteString(" [choice: " + n.Selected + "]")
		} else {
			sb.WriteString(" [choice: none]")
		}
	}
	if n.Excluded {
		sb.WriteString(" (excluded)")
	}
	return sb.String()
}
