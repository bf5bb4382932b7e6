package symbol

import (
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/scopeforge/impactscope/internal/parser"
)

// declTypeNodes are the C# declaration node types the lexical pass
// recognizes, mirroring parser.CSharpNodeTypes but restricted to the
// kinds the index needs to answer name -> project lookups.
var declTypeNodes = map[string]bool{
	"class_declaration":     true,
	"interface_declaration": true,
	"struct_declaration":    true,
	"record_declaration":    true,
	"enum_declaration":      true,
}

// Index answers, without any semantic compilation, which project(s)
// declare a given type or method name, and which file declares a given
// method simple name. Results are candidate sets: correct never to
// miss, permitted to over-approximate; callers filter with a semantic
// model when precision matters.
//
// Once Build returns, an Index is immutable and safe for concurrent
// reads without locking.
type Index struct {
	mu             sync.RWMutex
	typeToProjects map[string]map[string]bool
	methodToProj   map[string]map[string]bool
	simpleToFiles  map[string]map[string]bool
	fileToProject  map[string]string
}

// NewIndex returns an empty Index ready for Build.
func NewIndex() *Index {
	return &Index{
		typeToProjects: make(map[string]map[string]bool),
		methodToProj:   make(map[string]map[string]bool),
		simpleToFiles:  make(map[string]map[string]bool),
		fileToProject:  make(map[string]string),
	}
}

// SourceFile pairs a file path with the project that claims it, the
// unit the Build lexical pass scans.
type SourceFile struct {
	Path    string
	Project string
}

// Build scans every file with a lightweight lexical pass: parse, walk
// top-level type and method declaration nodes, record fully-qualified
// names. It does not resolve base types, generic constraints, or
// bodies, so it completes in time proportional to total source bytes
// rather than compilation cost.
func (idx *Index) Build(files []SourceFile) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	p, err := parser.NewParser()
	if err != nil {
		return err
	}
	defer p.Close()

	for _, f := range files {
		idx.fileToProject[f.Path] = f.Project

		result, err := p.ParseFile(f.Path)
		if err != nil {
			// A file the index cannot lex still gets a project claim;
			// compilation will surface the real parse failure later.
			continue
		}
		idx.scanFile(result, f)
		result.Close()
	}
	return nil
}

func (idx *Index) scanFile(result *parser.ParseResult, f SourceFile) {
	namespaces := collectNamespaces(result)

	for _, node := range result.FindNodes(func(n *sitter.Node) bool {
		return declTypeNodes[n.Type()]
	}) {
		typeName := nameOf(result, node)
		if typeName == "" {
			continue
		}
		fqn := qualify(namespaces.enclosing(node), typeName)
		idx.addType(fqn, f.Project)

		for _, m := range findDescendants(node, nodeTypesFor("method_declaration", "constructor_declaration")) {
			mname := nameOf(result, m)
			if mname == "" {
				if m.Type() == "constructor_declaration" {
					mname = Constructor
				} else {
					continue
				}
			}
			idx.addMethod(fqn+"."+mname, f.Project)
			idx.addSimpleName(mname, f.Path)
		}
	}
}

func (idx *Index) addType(fqn, project string) {
	if idx.typeToProjects[fqn] == nil {
		idx.typeToProjects[fqn] = make(map[string]bool)
	}
	idx.typeToProjects[fqn][project] = true
}

func (idx *Index) addMethod(fqn, project string) {
	if idx.methodToProj[fqn] == nil {
		idx.methodToProj[fqn] = make(map[string]bool)
	}
	idx.methodToProj[fqn][project] = true
}

func (idx *Index) addSimpleName(name, file string) {
	if idx.simpleToFiles[name] == nil {
		idx.simpleToFiles[name] = make(map[string]bool)
	}
	idx.simpleToFiles[name][file] = true
}

// FindProjectsForType returns the candidate projects declaring a
// fully-qualified type name.
func (idx *Index) FindProjectsForType(fqn string) []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return keys(idx.typeToProjects[fqn])
}

// FindProjectsForMethod returns the candidate projects declaring a
// fully-qualified method name (`Type.Method`).
func (idx *Index) FindProjectsForMethod(fqn string) []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return keys(idx.methodToProj[fqn])
}

// FindFilesContainingMethodSimpleName returns files declaring a method
// with the given simple (unqualified) name.
func (idx *Index) FindFilesContainingMethodSimpleName(name string) []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return keys(idx.simpleToFiles[name])
}

// ProjectForFile returns the project claiming path, and whether one
// was recorded.
func (idx *Index) ProjectForFile(path string) (string, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	p, ok := idx.fileToProject[path]
	return p, ok
}

// FindProjectsForTypeSuffix returns the candidate projects declaring
// any type whose fully-qualified name equals hint, equals hint's last
// dot-separated segment, or ends in "." plus that segment — the same
// suffix-match contract the Symbol Resolver uses
// for constructor/static lookups, computed over the lexical index so
// callers can narrow the project set before touching compilation.
func (idx *Index) FindProjectsForTypeSuffix(hint string) []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	if hint == "" {
		return nil
	}
	last := hint
	if i := strings.LastIndex(hint, "."); i >= 0 {
		last = hint[i+1:]
	}
	seen := make(map[string]bool)
	for fqn, projects := range idx.typeToProjects {
		if fqn == hint || fqn == last || strings.HasSuffix(fqn, "."+last) {
			for p := range projects {
				seen[p] = true
			}
		}
	}
	return keys(seen)
}

func keys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func qualify(namespace, name string) string {
	if namespace == "" {
		return name
	}
	return namespace + "." + name
}

func nodeTypesFor(types ...string) map[string]bool {
	m := make(map[string]bool, len(types))
	for _, t := range types {
		m[t] = true
	}
	return m
}

// findDescendants walks node's subtree depth-first, but does not
// descend into a nested class/interface/struct/record, so a type's own
// scan does not pick up the methods of types declared inside it.
func findDescendants(node *sitter.Node, types map[string]bool) []*sitter.Node {
	var out []*sitter.Node
	var walk func(n *sitter.Node, isRoot bool)
	walk = func(n *sitter.Node, isRoot bool) {
		if !isRoot && declTypeNodes[n.Type()] {
			return
		}
		if types[n.Type()] {
			out = append(out, n)
		}
		for i := uint32(0); i < n.ChildCount(); i++ {
			walk(n.Child(int(i)), false)
		}
	}
	walk(node, true)
	return out
}

// nameOf returns the text of a node's "name" field child, the
// convention tree-sitter's C# grammar uses for declaration names.
func nameOf(result *parser.ParseResult, node *sitter.Node) string {
	for i := uint32(0); i < node.ChildCount(); i++ {
		child := node.Child(int(i))
		if child.Type() == "identifier" {
			return result.NodeText(child)
		}
	}
	return ""
}

// namespaceSet records, for a parsed file, which namespace_declaration
// node (by byte range) encloses each node, so a type's fully-qualified
// name can be reconstructed without a second AST pass per type.
type namespaceSet struct {
	result *parser.ParseResult
	ranges []nsRange
}

type nsRange struct {
	start, end uint32
	name       string
}

func collectNamespaces(result *parser.ParseResult) *namespaceSet {
	ns := &namespaceSet{result: result}
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
	// File-scoped namespace declarations (C# 10+) behave the same for
	// our purposes: everything after them, in the same file, belongs
	// to that namespace. They parse as namespace_declaration without a
	// block body in the current grammar version, so no extra handling
	// is required here.
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
