package workspace_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/tsnjs/tsnjs/internal/provider"
	"github.com/tsnjs/tsnjs/internal/workspace"
)

func writeFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	path := filepath.Join(dir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestScanSkipsNodeModulesAndCollectsParseErrors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.js", "export function alpha() {}")
	writeFile(t, dir, "broken.js", "function ( { ///")
	writeFile(t, dir, "node_modules/dep/index.js", "export function shouldBeSkipped() {}")

	results, err := workspace.Scan(dir, provider.JS, "", "")
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(results) != 2 {
		var paths []string
		for _, r := range results {
			paths = append(paths, r.Path)
		}
		t.Fatalf("got %d results, want 2 (node_modules excluded): %v", len(results), paths)
	}
	var sawBroken bool
	for _, r := range results {
		if filepath.Base(r.Path) == "broken.js" {
			sawBroken = true
			if r.Error == nil {
				t.Error("expected broken.js to carry a parse error")
			}
		}
	}
	if !sawBroken {
		t.Error("expected broken.js in scan results")
	}
}

func TestScanMatchExcludeFilters(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "keep.js", "export function alpha() {}")
	writeFile(t, dir, "skip.test.js", "export function beta() {}")

	results, err := workspace.Scan(dir, provider.JS, "*.js", "*.test.js")
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(results) != 1 || filepath.Base(results[0].Path) != "keep.js" {
		t.Fatalf("got %+v, want only keep.js", results)
	}
}

func TestBuildImportGraphAndRipple(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.js", "import './b';\nexport function alpha() {}")
	writeFile(t, dir, "b.js", "import './c';\nexport function beta() {}")
	writeFile(t, dir, "c.js", "export function gamma() {}")

	results, err := workspace.Scan(dir, provider.JS, "", "")
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	g := workspace.BuildImportGraph(results, provider.JS)

	aPath := filepath.Join(dir, "a.js")
	order := workspace.Ripple(g, aPath, 2)
	if len(order) != 2 {
		t.Fatalf("ripple from a.js depth 2 = %v, want [b.js, c.js]", order)
	}

	shallow := workspace.Ripple(g, aPath, 1)
	if len(shallow) != 1 || filepath.Base(shallow[0]) != "b.js" {
		t.Fatalf("ripple from a.js depth 1 = %v, want [b.js]", shallow)
	}
}
