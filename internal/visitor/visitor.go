// Package visitor implements the Method Call Visitor: given one
// method body, it walks the syntax tree and enumerates outbound call
// edge candidates of every recognized kind, in source order, with
// duplicates within the body coalesced.
package visitor

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/scopeforge/impactscope/internal/parser"
)

// EdgeKind enumerates the kinds of outbound call edges a method body
// can produce.
type EdgeKind string

const (
	DirectCall      EdgeKind = "DirectCall"
	Constructor     EdgeKind = "Constructor"
	PropertyGetter  EdgeKind = "PropertyGetter"
	PropertySetter  EdgeKind = "PropertySetter"
	ExtensionMethod EdgeKind = "ExtensionMethod"
	InterfaceCall   EdgeKind = "InterfaceCall"
	VirtualCall     EdgeKind = "VirtualCall"
	StaticCall      EdgeKind = "StaticCall"
	DelegateInvoke  EdgeKind = "DelegateInvoke"
	OperatorCall    EdgeKind = "OperatorCall"
)

// CallSite is one outbound call candidate found in a method body. It
// is deliberately "syntactic" — the Symbol Resolver, which has access
// to the semantic model, turns a CallSite into a MethodId.
type CallSite struct {
	Kind     EdgeKind
	Node     *sitter.Node
	Receiver string // text before the dot, e.g. "this", "base", a variable, a type name
	Name     string // the member/method/type name itself
}

// Visit walks body depth-first and returns the call-site candidates in
// source order, with exact duplicates (same kind, receiver, and name)
// coalesced, since the call graph records a set of edges, not a
// multiset.
func Visit(result *parser.ParseResult, body *sitter.Node) []CallSite {
	if body == nil {
		return nil
	}

	var sites []CallSite
	seen := make(map[string]bool)

	add := func(site CallSite) {
		key := string(site.Kind) + "|" + site.Receiver + "|" + site.Name
		if seen[key] {
			return
		}
		seen[key] = true
		sites = append(sites, site)
	}

	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		switch n.Type() {
		case "invocation_expression":
			if site, ok := invocationSite(result, n); ok {
				add(site)
			}
		case "object_creation_expression":
			if site, ok := objectCreationSite(result, n); ok {
				add(site)
			}
		case "assignment_expression":
			if site, ok := propertyAssignmentSite(result, n); ok {
				add(site)
			}
		case "member_access_expression":
			if site, ok := propertyReadSite(result, n); ok {
				add(site)
			}
		}
		for i := uint32(0); i < n.ChildCount(); i++ {
			walk(n.Child(int(i)))
		}
	}
	walk(body)

	return sites
}

// invocationSite classifies a call expression into DirectCall,
// StaticCall, InterfaceCall/VirtualCall-eligible member call, or
// DelegateInvoke, deferring the static/virtual/extension distinction
// (which needs symbol information) to the resolver. It records enough
// syntactic shape — receiver text, name — for the resolver to decide.
func invocationSite(result *parser.ParseResult, node *sitter.Node) (CallSite, bool) {
	var receiver, name string

	for i := uint32(0); i < node.ChildCount(); i++ {
		child := node.Child(int(i))
		switch child.Type() {
		case "identifier_name", "identifier":
			name = result.NodeText(child)
		case "member_access_expression":
			name, receiver = memberAccessParts(result, child)
		case "generic_name":
			name = genericOuterName(result, child)
		}
	}

	if name == "" {
		return CallSite{}, false
	}

	kind := DirectCall
	switch receiver {
	case "":
		kind = DirectCall
	case "this", "base":
		kind = VirtualCall
	default:
		// A receiver that is a local/field/parameter could be a
		// delegate invocation or an ordinary instance call; without
		// symbol information both look the same syntactically, so the
		// Method Call Visitor reports StaticCall only when the
		// receiver itself looks like a type name (starts uppercase,
		// no call parens before it) and otherwise defers to the
		// resolver, which can tell a delegate-typed field from a
		// method.
		if looksLikeTypeName(receiver) {
			kind = StaticCall
		} else {
			kind = DelegateInvoke
		}
	}

	return CallSite{Kind: kind, Node: node, Receiver: receiver, Name: name}, true
}

func objectCreationSite(result *parser.ParseResult, node *sitter.Node) (CallSite, bool) {
	typeNode := node.ChildByFieldName("type")
	if typeNode == nil {
		for i := uint32(0); i < node.ChildCount(); i++ {
			c := node.Child(int(i))
			switch c.Type() {
			case "identifier_name", "generic_name", "qualified_name", "predefined_type":
				typeNode = c
			}
		}
	}
	if typeNode == nil {
		return CallSite{}, false
	}
	name := result.NodeText(typeNode)
	if typeNode.Type() == "generic_name" {
		name = genericOuterName(result, typeNode)
	}
	if name == "" {
		return CallSite{}, false
	}
	return CallSite{Kind: Constructor, Node: node, Name: name}, true
}

// propertyAssignmentSite recognizes `x.Prop = value` and `x.Prop += value`
// as a PropertySetter edge. Both forms bind to the setter only:
// propertyReadSite skips the left-hand side of every assignment, so a
// compound assignment records no getter edge.
func propertyAssignmentSite(result *parser.ParseResult, node *sitter.Node) (CallSite, bool) {
	left := node.ChildByFieldName("left")
	if left == nil || left.Type() != "member_access_expression" {
		return CallSite{}, false
	}
	name, receiver := memberAccessParts(result, left)
	if name == "" {
		return CallSite{}, false
	}
	return CallSite{Kind: PropertySetter, Node: node, Receiver: receiver, Name: name}, true
}

// propertyReadSite treats a bare member access not immediately used as
// an invocation target or assignment left-hand side as a property
// getter read. The resolver is responsible for confirming the member
// actually names a property rather than a field (fields produce no
// call-graph edge).
func propertyReadSite(result *parser.ParseResult, node *sitter.Node) (CallSite, bool) {
	parent := node.Parent()
	if parent != nil {
		switch parent.Type() {
		case "invocation_expression":
			return CallSite{}, false // handled by invocationSite
		case "assignment_expression":
			if parent.ChildByFieldName("left") == node {
				return CallSite{}, false // handled by propertyAssignmentSite
			}
		}
	}
	name, receiver := memberAccessParts(result, node)
	if name == "" {
		return CallSite{}, false
	}
	return CallSite{Kind: PropertyGetter, Node: node, Receiver: receiver, Name: name}, true
}

func memberAccessParts(result *parser.ParseResult, node *sitter.Node) (name, receiver string) {
	nameNode := node.ChildByFieldName("name")
	if nameNode != nil {
		name = result.NodeText(nameNode)
	}
	exprNode := node.ChildByFieldName("expression")
	if exprNode != nil {
		receiver = result.NodeText(exprNode)
	}
	if name == "" || receiver == "" {
		var parts []string
		for i := uint32(0); i < node.ChildCount(); i++ {
			child := node.Child(int(i))
			switch child.Type() {
			case "identifier_name", "identifier", "generic_name", "predefined_type", "this_expression", "base_expression", "member_access_expression":
				parts = append(parts, result.NodeText(child))
			}
		}
		if len(parts) >= 2 {
			name = parts[len(parts)-1]
			receiver = joinDot(parts[:len(parts)-1])
		} else if len(parts) == 1 {
			name = parts[0]
		}
	}
	return name, receiver
}

func genericOuterName(result *parser.ParseResult, node *sitter.Node) string {
	for i := uint32(0); i < node.ChildCount(); i++ {
		c := node.Child(int(i))
		if c.Type() == "identifier" {
			return result.NodeText(c)
		}
	}
	return result.NodeText(node)
}

func joinDot(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += "."
		}
		out += p
	}
	return out
}

func looksLikeTypeName(s string) bool {
	if s == "" {
		return false
	}
	r := s[0]
	return r >= 'A' && r <= 'Z'
}
