package workspace

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// projectLineRE matches a solution-file project declaration:
//
//	Project("{GUID}") = "Name", "RelativePath.csproj", "{GUID}"
var projectLineRE = regexp.MustCompile(`^Project\("\{[0-9A-Fa-f-]+\}"\)\s*=\s*"([^"]+)"\s*,\s*"([^"]+)"\s*,\s*"\{[0-9A-Fa-f-]+\}"`)

// ParseSolution reads a solution manifest and returns the absolute
// paths of the project files it references, in declaration order.
// Only ".csproj" entries are returned; solution folders and other
// non-project entries are skipped.
func ParseSolution(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &SolutionParseError{Path: path, Err: err}
	}
	defer f.Close()

	dir := filepath.Dir(path)
	var projects []string

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		m := projectLineRE.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		rel := m[2]
		if !strings.HasSuffix(strings.ToLower(rel), ".csproj") {
			continue
		}
		projects = append(projects, filepath.Clean(filepath.Join(dir, filepath.FromSlash(rel))))
	}
	if err := scanner.Err(); err != nil {
		return nil, &SolutionParseError{Path: path, Err: err}
	}
	if len(projects) == 0 {
		return nil, &SolutionParseError{Path: path, Err: fmt.Errorf("no project entries found")}
	}
	return projects, nil
}
