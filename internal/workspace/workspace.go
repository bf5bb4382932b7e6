package workspace

import (
	"fmt"
	"sync"

	"github.com/scopeforge/impactscope/internal/symbol"
)

// DefaultTestMarkers lists the attribute names recognized as test
// markers for C# unless the caller supplies its own set. Names are
// matched with or without the "Attribute" suffix.
var DefaultTestMarkers = map[string]bool{
	"Test":            true,
	"Fact":            true,
	"Theory":          true,
	"TestMethod":      true,
	"TestCase":        true,
	"DataTestMethod":  true,
}

// Manager is the Workspace Manager: it lazily loads projects and
// compilations from a solution manifest, resolves inter-project
// references, and produces semantic models on demand. Initialization
// cost stays proportional to the breadth of the query — Initialize
// never compiles a project.
type Manager struct {
	mu           sync.RWMutex
	solutionPath string
	projects     map[string]*ProjectInfo // project path -> info
	order        []string                // topological project order
	index        *symbol.Index
	testMarkers  map[string]bool

	compMu       sync.Mutex
	perProject   map[string]*sync.Mutex
	compilations map[string]*Compilation
}

// NewManager returns an uninitialized Manager. Call Initialize before
// any other method.
func NewManager() *Manager {
	return &Manager{
		testMarkers:  DefaultTestMarkers,
		perProject:   make(map[string]*sync.Mutex),
		compilations: make(map[string]*Compilation),
	}
}

// WithTestMarkers overrides the attribute names recognized as test
// markers. Must be called before Initialize.
func (m *Manager) WithTestMarkers(markers map[string]bool) *Manager {
	m.testMarkers = markers
	return m
}

// Initialize parses the solution manifest, discovers projects, and
// builds the project dependency graph and the Symbol Index. It does
// not compile any project.
func (m *Manager) Initialize(solutionPath string) error {
	projectPaths, err := ParseSolution(solutionPath)
	if err != nil {
		return err
	}

	projects := make(map[string]*ProjectInfo, len(projectPaths))
	var sourceFiles []symbol.SourceFile
	for _, p := range projectPaths {
		info, err := LoadProject(p)
		if err != nil {
			return err
		}
		projects[p] = info
		for _, f := range info.SourceFiles {
			sourceFiles = append(sourceFiles, symbol.SourceFile{Path: f, Project: p})
		}
	}

	order, err := topologicalOrder(projects)
	if err != nil {
		return err
	}

	idx := symbol.NewIndex()
	if err := idx.Build(sourceFiles); err != nil {
		return err
	}

	m.mu.Lock()
	m.solutionPath = solutionPath
	m.projects = projects
	m.order = order
	m.index = idx
	m.mu.Unlock()

	return nil
}

// topologicalOrder returns project paths ordered so every project
// appears after its project references, detecting cycles. Missing
// references are treated as external (not part of the solution) per
// §4.1's "missing optional references degrade to a warning" — only a
// reference to an absent path that IS listed in the solution can
// participate in a cycle.
func topologicalOrder(projects map[string]*ProjectInfo) ([]string, error) {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, len(projects))
	var order []string
	var stack []string

	var visit func(path string) error
	visit = func(path string) error {
		switch color[path] {
		case black:
			return nil
		case gray:
			cyc := append(append([]string{}, stack...), path)
			return &CycleError{Cycle: cyc}
		}
		color[path] = gray
		stack = append(stack, path)

		info := projects[path]
		if info != nil {
			for _, dep := range info.ProjectReferences {
				if _, known := projects[dep]; !known {
					continue
				}
				if err := visit(dep); err != nil {
					return err
				}
			}
		}

		stack = stack[:len(stack)-1]
		color[path] = black
		order = append(order, path)
		return nil
	}

	// Deterministic iteration: visit in a stable order derived from
	// the map by sorting paths once up front.
	paths := make([]string, 0, len(projects))
	for p := range projects {
		paths = append(paths, p)
	}
	sortStrings(paths)

	for _, p := range paths {
		if err := visit(p); err != nil {
			return nil, err
		}
	}
	return order, nil
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

// GetProjectForFile returns the project claiming a source file, O(1)
// after Initialize has built the Symbol Index.
func (m *Manager) GetProjectForFile(path string) (*ProjectInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	projectPath, ok := m.index.ProjectForFile(path)
	if !ok {
		return nil, &FileNotInSolutionError{Path: path}
	}
	return m.projects[projectPath], nil
}

// Index returns the workspace's Symbol Index.
func (m *Manager) Index() *symbol.Index {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.index
}

// Projects returns every project in topological order.
func (m *Manager) Projects() []*ProjectInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*ProjectInfo, 0, len(m.order))
	for _, p := range m.order {
		out = append(out, m.projects[p])
	}
	return out
}

// GetCompilation returns a cached compilation or constructs one.
// Constructing a project's compilation first compiles its transitive
// project dependencies in topological order; an individual project's
// compilation failure is returned as a CompilationError and does not
// poison sibling compilations.
func (m *Manager) GetCompilation(projectPath string) (*Compilation, error) {
	m.mu.RLock()
	info, ok := m.projects[projectPath]
	m.mu.RUnlock()
	if !ok {
		return nil, &ProjectMissingError{Path: projectPath}
	}

	lock := m.lockFor(projectPath)
	lock.Lock()
	defer lock.Unlock()

	m.compMu.Lock()
	if c, ok := m.compilations[projectPath]; ok {
		m.compMu.Unlock()
		return c, nil
	}
	m.compMu.Unlock()

	for _, dep := range info.ProjectReferences {
		if _, known := m.projects[dep]; !known {
			continue // missing optional reference: degrade to warning, handled by caller
		}
		if _, err := m.GetCompilation(dep); err != nil {
			return nil, fmt.Errorf("prerequisite %s: %w", dep, err)
		}
	}

	c, err := Compile(info, m.testMarkers)
	if err != nil {
		return nil, err
	}

	m.compMu.Lock()
	m.compilations[projectPath] = c
	m.compMu.Unlock()
	return c, nil
}

func (m *Manager) lockFor(projectPath string) *sync.Mutex {
	m.compMu.Lock()
	defer m.compMu.Unlock()
	l, ok := m.perProject[projectPath]
	if !ok {
		l = &sync.Mutex{}
		m.perProject[projectPath] = l
	}
	return l
}

// SemanticModel is a per-file view over a project's compilation: the
// parse tree for that file plus the compilation it belongs to, from
// which cross-project declarations are reachable via the Manager.
type SemanticModel struct {
	File        string
	Compilation *Compilation
	Manager     *Manager
}

// GetSemanticModel derives the semantic model for a file from its
// containing project's compilation.
func (m *Manager) GetSemanticModel(file string) (*SemanticModel, error) {
	project, err := m.GetProjectForFile(file)
	if err != nil {
		return nil, err
	}
	comp, err := m.GetCompilation(project.Path)
	if err != nil {
		return nil, err
	}
	return &SemanticModel{File: file, Compilation: comp, Manager: m}, nil
}

// Dispose releases all compilations and their parse trees.
func (m *Manager) Dispose() {
	m.compMu.Lock()
	defer m.compMu.Unlock()
	for _, c := range m.compilations {
		c.Close()
	}
	m.compilations = make(map[string]*Compilation)
}
