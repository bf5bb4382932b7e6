package workspace

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/scopeforge/impactscope/internal/parser"
)

// namespaceSet maps byte ranges covered by namespace_declaration nodes
// to their namespace name, so a type's fully-qualified name can be
// reconstructed without reparsing each type's ancestry. Kept as a
// small package-local duplicate of symbol.Index's own scan, since the
// two packages retain fundamentally different things: the index keeps
// only name -> project candidates and discards the tree; the
// compilation keeps the tree and declaration nodes for the lifetime of
// the workspace.
type namespaceSet struct {
	ranges []nsRange
}

type nsRange struct {
	start, end uint32
	name       string
}

func collectNamespaces(result *parser.ParseResult) *namespaceSet {
	ns := &namespaceSet{}
	for _, n := range result.FindNodesByType("namespace_declaration") {
		name := ""
		for i := uint32(0); i < n.ChildCount(); i++ {
			c := n.Child(int(i))
			if c.Type() == "qualified_name" || c.Type() == "identifier" {
				name = result.NodeText(c)
				break
			}
		}
		ns.ranges = append(ns.ranges, nsRange{start: n.StartByte(), end: n.EndByte(), name: name})
	}
	return ns
}

func (ns *namespaceSet) enclosing(node *sitter.Node) string {
	best := ""
	bestSpan := ^uint32(0)
	for _, r := range ns.ranges {
		if node.StartByte() >= r.start && node.EndByte() <= r.end {
			span := r.end - r.start
			if span < bestSpan {
				bestSpan = span
				best = r.name
			}
		}
	}
	return strings.TrimSpace(best)
}
