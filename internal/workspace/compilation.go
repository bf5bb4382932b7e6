package workspace

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/scopeforge/impactscope/internal/parser"
	"github.com/scopeforge/impactscope/internal/symbol"
)

// DeclKind distinguishes the handful of declaration shapes the Method
// Call Visitor and Symbol Resolver care about.
type DeclKind string

const (
	KindMethod      DeclKind = "method"
	KindConstructor DeclKind = "constructor"
	KindGetter      DeclKind = "getter"
	KindSetter      DeclKind = "setter"
)

// Declaration is one method-shaped member: a method, constructor, or
// property accessor, together with its body node so the Method Call
// Visitor can walk it and its MethodInfo so the call graph can label
// it directly, without another lookup.
type Declaration struct {
	Info    symbol.Info
	Kind    DeclKind
	Node    *sitter.Node // the declaration node itself
	Body    *sitter.Node // block/arrow-expression body, nil if abstract/extern
	Static  bool
	TypeFQN string
}

// Compilation is the semantic-model bundle for one project: its parsed
// syntax trees and the declarations resolved from them. It is built
// lazily by the Workspace Manager and retained for the lifetime of the
// workspace.
type Compilation struct {
	Project      *ProjectInfo
	Trees        map[string]*parser.ParseResult // file path -> parse tree
	Declarations map[string]*Declaration         // symbol.ID.Key() -> declaration
	ByType       map[string][]*Declaration        // type FQN -> its declarations
	testMarkers  map[string]bool
}

// Compile parses every source file in the project and extracts its
// method-shaped declarations. testMarkers is the set of attribute
// names (without brackets, e.g. "Fact", "Test", "TestMethod") that
// mark a method as a test; passing nil disables attribute-based
// identification and falls back to naming/project heuristics
// performed later by the coverage analyzer.
func Compile(project *ProjectInfo, testMarkers map[string]bool) (*Compilation, error) {
	c := &Compilation{
		Project:      project,
		Trees:        make(map[string]*parser.ParseResult),
		Declarations: make(map[string]*Declaration),
		ByType:       make(map[string][]*Declaration),
		testMarkers:  testMarkers,
	}

	p, err := parser.NewParser()
	if err != nil {
		return nil, &CompilationError{Project: project.Name, Err: err}
	}
	defer p.Close()

	for _, file := range project.SourceFiles {
		result, err := p.ParseFile(file)
		if err != nil {
			return nil, &CompilationError{Project: project.Name, Err: err}
		}
		c.Trees[file] = result
		c.extractFile(result, file)
	}
	return c, nil
}

func (c *Compilation) extractFile(result *parser.ParseResult, file string) {
	namespaces := collectNamespaces(result)

	for _, typeNode := range result.FindNodes(func(n *sitter.Node) bool {
		switch n.Type() {
		case "class_declaration", "interface_declaration", "struct_declaration", "record_declaration":
			return true
		default:
			return false
		}
	}) {
		typeName := identifierChild(result, typeNode)
		if typeName == "" {
			continue
		}
		fqn := qualifyName(namespaces.enclosing(typeNode), enclosingTypeNames(result, typeNode), typeName)
		c.extractMembers(result, typeNode, fqn, file)
	}
}

func (c *Compilation) extractMembers(result *parser.ParseResult, typeNode *sitter.Node, fqn, file string) {
	body := fieldOrLastBlock(typeNode)
	if body == nil {
		return
	}
	for i := uint32(0); i < body.ChildCount(); i++ {
		member := body.Child(int(i))
		switch member.Type() {
		case "method_declaration":
			c.addDeclaration(result, member, fqn, file, KindMethod, identifierChild(result, member))
		case "constructor_declaration":
			c.addDeclaration(result, member, fqn, file, KindConstructor, symbol.Constructor)
		case "property_declaration":
			c.extractProperty(result, member, fqn, file)
		}
	}
}

func (c *Compilation) extractProperty(result *parser.ParseResult, node *sitter.Node, fqn, file string) {
	name := identifierChild(result, node)
	if name == "" {
		return
	}
	accessors := findChildByType(node, "accessor_list")
	if accessors == nil {
		return
	}
	for i := uint32(0); i < accessors.ChildCount(); i++ {
		acc := accessors.Child(int(i))
		switch acc.Type() {
		case "get_accessor_declaration":
			c.addDeclaration(result, acc, fqn, file, KindGetter, name+".get")
		case "set_accessor_declaration":
			c.addDeclaration(result, acc, fqn, file, KindSetter, name+".set")
		}
	}
}

func (c *Compilation) addDeclaration(result *parser.ParseResult, node *sitter.Node, typeFQN, file string, kind DeclKind, simpleName string) {
	modifiers := extractModifiers(result, node)
	static := contains(modifiers, "static")
	params := extractParameterTypes(result, node)
	arity := countTypeParameters(node)

	methodName := simpleName
	id := symbol.New(typeFQN, methodName, params, arity)

	line, _ := startLine(node)
	decl := &Declaration{
		Info: symbol.Info{
			ID:             id,
			SimpleName:     methodName,
			ContainingType: typeFQN,
			FilePath:       file,
			StartLine:      line,
			IsTest:         c.isTestByAttribute(result, node),
		},
		Kind:    kind,
		Node:    node,
		Body:    findChildByType(node, "block"),
		Static:  static,
		TypeFQN: typeFQN,
	}
	if decl.Body == nil {
		decl.Body = findChildByType(node, "arrow_expression_clause")
	}

	key := id.Key()
	c.Declarations[key] = decl
	c.ByType[typeFQN] = append(c.ByType[typeFQN], decl)
}

func (c *Compilation) isTestByAttribute(result *parser.ParseResult, node *sitter.Node) bool {
	if len(c.testMarkers) == 0 {
		return false
	}
	lists := findAttributeLists(node)
	for _, list := range lists {
		for i := uint32(0); i < list.ChildCount(); i++ {
			attr := list.Child(int(i))
			if attr.Type() != "attribute" {
				continue
			}
			name := identifierChild(result, attr)
			if c.testMarkers[name] || c.testMarkers[strings.TrimSuffix(name, "Attribute")] {
				return true
			}
		}
	}
	return false
}

// Declaration looks up a declaration by its method key.
func (c *Compilation) Declaration(key string) (*Declaration, bool) {
	d, ok := c.Declarations[key]
	return d, ok
}

// Close releases every parse tree held by the compilation.
func (c *Compilation) Close() {
	for _, t := range c.Trees {
		t.Close()
	}
}

// --- small AST helpers shared by compilation extraction ---

func identifierChild(result *parser.ParseResult, node *sitter.Node) string {
	for i := uint32(0); i < node.ChildCount(); i++ {
		c := node.Child(int(i))
		if c.Type() == "identifier" {
			return result.NodeText(c)
		}
	}
	return ""
}

func findChildByType(node *sitter.Node, t string) *sitter.Node {
	for i := uint32(0); i < node.ChildCount(); i++ {
		c := node.Child(int(i))
		if c.Type() == t {
			return c
		}
	}
	return nil
}

func fieldOrLastBlock(typeNode *sitter.Node) *sitter.Node {
	return findChildByType(typeNode, "declaration_list")
}

func findAttributeLists(node *sitter.Node) []*sitter.Node {
	var lists []*sitter.Node
	for i := uint32(0); i < node.ChildCount(); i++ {
		c := node.Child(int(i))
		if c.Type() == "attribute_list" {
			lists = append(lists, c)
		}
	}
	return lists
}

func extractModifiers(result *parser.ParseResult, node *sitter.Node) []string {
	var mods []string
	for i := uint32(0); i < node.ChildCount(); i++ {
		c := node.Child(int(i))
		if c.Type() == "modifier" {
			mods = append(mods, result.NodeText(c))
		}
	}
	return mods
}

func extractParameterTypes(result *parser.ParseResult, node *sitter.Node) []string {
	paramList := findChildByType(node, "parameter_list")
	if paramList == nil {
		return nil
	}
	var types []string
	for i := uint32(0); i < paramList.ChildCount(); i++ {
		p := paramList.Child(int(i))
		if p.Type() != "parameter" {
			continue
		}
		typeNode := findChildByType(p, "predefined_type")
		if typeNode == nil {
			for j := uint32(0); j < p.ChildCount(); j++ {
				c := p.Child(int(j))
				switch c.Type() {
				case "identifier_name", "generic_name", "qualified_name", "array_type", "nullable_type", "predefined_type":
					typeNode = c
				}
			}
		}
		if typeNode != nil {
			types = append(types, result.NodeText(typeNode))
		} else {
			types = append(types, "?")
		}
	}
	return types
}

func countTypeParameters(node *sitter.Node) int {
	tp := findChildByType(node, "type_parameter_list")
	if tp == nil {
		return 0
	}
	count := 0
	for i := uint32(0); i < tp.ChildCount(); i++ {
		if tp.Child(int(i)).Type() == "type_parameter" {
			count++
		}
	}
	return count
}

func startLine(node *sitter.Node) (int, int) {
	p := node.StartPoint()
	return int(p.Row) + 1, int(p.Column) + 1
}

func enclosingTypeNames(result *parser.ParseResult, node *sitter.Node) []string {
	// Walking up via Parent() requires a cursor in this tree-sitter
	// binding's public API; nested-type qualification is therefore
	// approximated from the namespace only. Nested classes are rare in
	// the kind of production code this analyzes and, when present,
	// still resolve correctly within FindProjectsForType's
	// over-approximating contract.
	_ = node
	return nil
}

func qualifyName(namespace string, typeChain []string, name string) string {
	parts := []string{}
	if namespace != "" {
		parts = append(parts, namespace)
	}
	parts = append(parts, typeChain...)
	parts = append(parts, name)
	return strings.Join(parts, ".")
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
