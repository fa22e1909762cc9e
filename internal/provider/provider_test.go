package provider_test

import (
	"testing"

	"github.com/tsnjs/tsnjs/internal/provider"
)

func TestFromEnv(t *testing.T) {
	if got := provider.FromEnv("typescript"); got.Name != "typescript" {
		t.Errorf("FromEnv(typescript) = %q, want typescript", got.Name)
	}
	if got := provider.FromEnv("TypeScript"); got.Name != "typescript" {
		t.Errorf("FromEnv(TypeScript) = %q, want typescript (case-insensitive)", got.Name)
	}
	if got := provider.FromEnv(""); got.Name != "javascript" {
		t.Errorf("FromEnv(\"\") = %q, want javascript", got.Name)
	}
	if got := provider.FromEnv("javascript"); got.Name != "javascript" {
		t.Errorf("FromEnv(javascript) = %q, want javascript", got.Name)
	}
}

func TestClaimsExtension(t *testing.T) {
	if !provider.JS.ClaimsExtension("foo/bar.jsx") {
		t.Error("JS should claim .jsx")
	}
	if provider.JS.ClaimsExtension("foo/bar.ts") {
		t.Error("JS should not claim .ts")
	}
	if !provider.TS.ClaimsExtension("foo/bar.d.ts") {
		t.Error("TS should claim .d.ts")
	}
	if !provider.TS.ClaimsExtension("FOO/BAR.TSX") {
		t.Error("ClaimsExtension should be case-insensitive")
	}
}

func TestResolveCandidateExtensions(t *testing.T) {
	cands := provider.JS.ResolveCandidateExtensions("./util")
	want := "./util.js"
	if len(cands) == 0 || cands[0] != want {
		t.Errorf("first candidate = %v, want %q", cands, want)
	}
	var sawIndex bool
	for _, c := range cands {
		if c == "util/index.js" {
			sawIndex = true
		}
	}
	if !sawIndex {
		t.Errorf("expected an index.js fallback candidate, got %v", cands)
	}
}

func TestParseSourceCollectsInventory(t *testing.T) {
	rec := provider.JS.ParseSource("test.js", []byte("export function alpha() {}"))
	if rec.ParseErr != nil {
		t.Fatalf("unexpected parse error: %v", rec.ParseErr)
	}
	if len(rec.Inventory.Functions) != 1 {
		t.Fatalf("got %d functions, want 1", len(rec.Inventory.Functions))
	}
	if rec.Inventory.Functions[0].CanonicalName != "exports.alpha" {
		t.Errorf("canonical name = %q", rec.Inventory.Functions[0].CanonicalName)
	}
}

func TestParseSourceReportsSyntaxError(t *testing.T) {
	rec := provider.JS.ParseSource("broken.js", []byte("function ( { ///"))
	if rec.ParseErr == nil {
		t.Fatal("expected a parse error for broken source")
	}
}
