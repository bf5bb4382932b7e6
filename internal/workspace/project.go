package workspace

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// ProjectInfo describes one compilation unit: a .csproj-equivalent
// project file, its source files, and its dependencies on other
// projects, assemblies, and packages.
type ProjectInfo struct {
	Path                string
	Name                string
	TargetFramework     string
	SourceFiles         []string
	AssemblyReferences  []string
	ProjectReferences   []string
	PackageReferences   []string
	Properties          map[string]string
	ContentHash         string
}

// csprojXML is a minimal shape of an MSBuild project file sufficient
// to recover the dependency edges and target framework the Workspace
// Manager needs; unrecognized elements are ignored rather than
// rejected, since the project file format itself is an external
// collaborator, not something this package owns.
type csprojXML struct {
	XMLName    xml.Name `xml:"Project"`
	ItemGroups []struct {
		ProjectReference []struct {
			Include string `xml:"Include,attr"`
		} `xml:"ProjectReference"`
		Reference []struct {
			Include string `xml:"Include,attr"`
		} `xml:"Reference"`
		PackageReference []struct {
			Include string `xml:"Include,attr"`
		} `xml:"PackageReference"`
	} `xml:"ItemGroup"`
	PropertyGroups []struct {
		TargetFramework string `xml:"TargetFramework"`
	} `xml:"PropertyGroup"`
}

// LoadProject reads a project file from disk and discovers its source
// files, dependency lists, and target framework. Source discovery
// walks the project's directory for ".cs" files, excluding bin/obj
// output directories the way `dotnet build` itself would exclude them
// via implicit globs.
func LoadProject(path string) (*ProjectInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ProjectMissingError{Path: path}
	}

	var doc csprojXML
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse project %s: %w", path, err)
	}

	info := &ProjectInfo{
		Path:       path,
		Name:       baseNameWithoutExt(path),
		Properties: map[string]string{},
	}

	for _, pg := range doc.PropertyGroups {
		if pg.TargetFramework != "" {
			info.TargetFramework = pg.TargetFramework
		}
	}
	for _, ig := range doc.ItemGroups {
		for _, pr := range ig.ProjectReference {
			info.ProjectReferences = append(info.ProjectReferences, resolveRelative(path, pr.Include))
		}
		for _, r := range ig.Reference {
			info.AssemblyReferences = append(info.AssemblyReferences, r.Include)
		}
		for _, p := range ig.PackageReference {
			info.PackageReferences = append(info.PackageReferences, p.Include)
		}
	}

	sourceFiles, err := discoverSourceFiles(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("discover sources for %s: %w", path, err)
	}
	info.SourceFiles = sourceFiles

	hash, err := computeContentHash(data, info.ProjectReferences)
	if err != nil {
		return nil, err
	}
	info.ContentHash = hash

	return info, nil
}

func discoverSourceFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			base := filepath.Base(path)
			if base == "bin" || base == "obj" || (len(base) > 0 && base[0] == '.') {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) == ".cs" {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// computeContentHash is a deterministic function of the project file
// bytes plus the sorted set of dependency paths, truncated to match
// the corpus's convention of short hex content hashes.
func computeContentHash(projectBytes []byte, deps []string) (string, error) {
	sorted := append([]string(nil), deps...)
	sort.Strings(sorted)

	h := sha256.New()
	h.Write(projectBytes)
	for _, d := range sorted {
		h.Write([]byte{0})
		h.Write([]byte(d))
	}
	return hex.EncodeToString(h.Sum(nil))[:16], nil
}

func baseNameWithoutExt(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	return base[:len(base)-len(ext)]
}

func resolveRelative(fromProject, include string) string {
	dir := filepath.Dir(fromProject)
	return filepath.Clean(filepath.Join(dir, filepath.FromSlash(include)))
}
