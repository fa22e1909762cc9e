// Package workspace implements the synchronous directory scanner used
// by discovery-only operations: it walks a tree, parses every file the
// active provider claims, collects per-file records, and never aborts
// the walk on a single file's parse error. It also resolves a bounded
// dependency-ripple summary over relative imports, grounded on the
// map-of-edges DependencyGraph shape from 1homsi-gorisk/internal/graph,
// retargeted from Go module/package edges to source-file import edges.
package workspace

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tsnjs/tsnjs/internal/jsast"
	"github.com/tsnjs/tsnjs/internal/provider"
)

// Scan result for one file: either a FileRecord or a recorded error; the
// walk continues past either.
type ScanResult struct {
	Path  string
	Rec   provider.FileRecord
	Error error
}

// Scan walks root synchronously, parsing every file p.ClaimsExtension
// accepts, honoring simple glob-style --match/--exclude filters (applied
// to the path relative to root).
func Scan(root string, p provider.Provider, match, exclude string) ([]ScanResult, error) {
	var results []ScanResult
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			results = append(results, ScanResult{Path: path, Error: err})
			return nil
		}
		if d.IsDir() {
			if d.Name() == "node_modules" || d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if !p.ClaimsExtension(path) {
			return nil
		}
		rel, _ := filepath.Rel(root, path)
		if match != "" && !globMatch(match, rel) {
			return nil
		}
		if exclude != "" && globMatch(exclude, rel) {
			return nil
		}
		src, readErr := os.ReadFile(path)
		if readErr != nil {
			results = append(results, ScanResult{Path: path, Error: readErr})
			return nil
		}
		rec := p.ParseSource(path, src)
		results = append(results, ScanResult{Path: path, Rec: rec, Error: rec.ParseErr})
		return nil
	})
	sort.Slice(results, func(i, j int) bool { return results[i].Path < results[j].Path })
	return results, err
}

func globMatch(pattern, name string) bool {
	ok, err := filepath.Match(pattern, name)
	return err == nil && ok
}

// ImportGraph is the bounded dependency-ripple graph: Edges maps a
// resolved file path to the file paths it imports.
type ImportGraph struct {
	Edges map[string][]string
}

// BuildImportGraph extracts relative import specifiers from each
// scanned file's AST and resolves them against the provider's candidate
// extensions, dropping anything that doesn't resolve to a scanned file
// (bare specifiers, node built-ins, unresolved paths).
func BuildImportGraph(results []ScanResult, p provider.Provider) *ImportGraph {
	known := make(map[string]bool, len(results))
	for _, r := range results {
		known[r.Path] = true
	}
	g := &ImportGraph{Edges: make(map[string][]string)}
	for _, r := range results {
		if r.Rec.Root == nil {
			continue
		}
		dir := filepath.Dir(r.Path)
		for _, spec := range importSpecifiers(r.Rec.Root) {
			if !strings.HasPrefix(spec, ".") {
				continue
			}
			base := filepath.Clean(filepath.Join(dir, spec))
			for _, candidate := range p.ResolveCandidateExtensions(base) {
				if known[candidate] {
					g.Edges[r.Path] = append(g.Edges[r.Path], candidate)
					break
				}
			}
		}
	}
	return g
}

func importSpecifiers(root *jsast.Node) []string {
	var specs []string
	sf := root.AsSourceFile()
	for _, stmt := range sf.Body {
		switch stmt.Kind {
		case jsast.KindImportDeclaration:
			specs = append(specs, stmt.AsImportDeclaration().ModuleSpecifier)
		case jsast.KindExportDeclaration:
			if ed := stmt.AsExportDeclaration(); ed.ModuleSpecifier != "" {
				specs = append(specs, ed.ModuleSpecifier)
			}
		}
	}
	return specs
}

// Ripple performs a bounded breadth-first walk from seed over the
// import graph, returning every file reachable within maxDepth hops. A
// visited set prevents runaway expansion and absorbs cycles by
// silently dropping already-visited nodes rather than erroring.
func Ripple(g *ImportGraph, seed string, maxDepth int) []string {
	visited := map[string]int{seed: 0}
	queue := []string{seed}
	var order []string
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		depth := visited[cur]
		if depth > 0 {
			order = append(order, cur)
		}
		if depth >= maxDepth {
			continue
		}
		for _, next := range g.Edges[cur] {
			if _, seen := visited[next]; seen {
				continue
			}
			visited[next] = depth + 1
			queue = append(queue, next)
		}
	}
	sort.Strings(order)
	return order
}
