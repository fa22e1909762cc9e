package editor_test

import (
	"testing"

	"github.com/tsnjs/tsnjs/internal/editor"
	"github.com/tsnjs/tsnjs/internal/hashid"
	"github.com/tsnjs/tsnjs/internal/jsparse"
	"github.com/tsnjs/tsnjs/internal/posmap"
	"github.com/tsnjs/tsnjs/internal/symbols"
)

func firstFunction(t *testing.T, src []byte) (symbols.FunctionEntry, *posmap.Mapper) {
	t.Helper()
	root, err := jsparse.Parse("test.js", src, jsparse.Options{})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	mapper := posmap.New(src)
	inv := symbols.Collect(root, src, mapper)
	if len(inv.Functions) == 0 {
		t.Fatal("no function entries collected")
	}
	return inv.Functions[0], mapper
}

func TestRenameAppliesAndReparsesClean(t *testing.T) {
	src := []byte("export function alpha() { return 'alpha'; }")
	entry, mapper := firstFunction(t, src)

	req := editor.Request{
		FilePath: "test.js", Source: src, Mapper: mapper,
		Target: entry, Replacement: "alphaRenamed",
		IsRename: true, Fix: false,
	}
	res, derr := editor.Apply(req)
	if derr != nil {
		t.Fatalf("unexpected error: %v", derr)
	}
	want := "export function alphaRenamed() { return 'alpha'; }"
	if string(res.NewSrc) != want {
		t.Errorf("got %q, want %q", res.NewSrc, want)
	}
	if res.Report.Result.Status != editor.StatusChanged {
		t.Errorf("result status = %q, want changed", res.Report.Result.Status)
	}
}

func TestHashMismatchRefusedWithoutForce(t *testing.T) {
	src := []byte("export function alpha() { return 'alpha'; }")
	entry, mapper := firstFunction(t, src)

	req := editor.Request{
		FilePath: "test.js", Source: src, Mapper: mapper,
		Target: entry, Replacement: "export function alpha() { return 'drift'; }",
		ExpectHash: "not-the-real-hash",
		Fix:        true,
	}
	_, derr := editor.Apply(req)
	if derr == nil {
		t.Fatal("expected HashMismatch error")
	}
}

func TestHashMismatchBypassedWithForce(t *testing.T) {
	src := []byte("export function alpha() { return 'alpha'; }")
	entry, mapper := firstFunction(t, src)

	req := editor.Request{
		FilePath: "test.js", Source: src, Mapper: mapper,
		Target: entry, Replacement: "export function alpha() { return 'drift'; }",
		ExpectHash: "not-the-real-hash",
		Force:      true,
		Fix:        false,
	}
	res, derr := editor.Apply(req)
	if derr != nil {
		t.Fatalf("unexpected error: %v", derr)
	}
	if res.Report.Hash.Status != editor.StatusBypass {
		t.Errorf("hash status = %q, want bypass", res.Report.Hash.Status)
	}
}

func TestIdempotentReplaceReportsUnchanged(t *testing.T) {
	src := []byte("export function alpha() { return 'alpha'; }")
	entry, mapper := firstFunction(t, src)

	same := string(src[entry.Span.ByteStart:entry.Span.ByteEnd])
	req := editor.Request{
		FilePath: "test.js", Source: src, Mapper: mapper,
		Target: entry, Replacement: same, Fix: false,
	}
	res, derr := editor.Apply(req)
	if derr != nil {
		t.Fatalf("unexpected error: %v", derr)
	}
	if res.Report.Result.Status != editor.StatusUnchanged {
		t.Errorf("result status = %q, want unchanged", res.Report.Result.Status)
	}
}

func TestSyntaxGuardRejectsInvalidReplacement(t *testing.T) {
	src := []byte("export function alpha() { return 'alpha'; }")
	entry, mapper := firstFunction(t, src)

	req := editor.Request{
		FilePath: "test.js", Source: src, Mapper: mapper,
		Target: entry, Replacement: "export function alpha( { ///broken",
		Fix: true,
	}
	_, derr := editor.Apply(req)
	if derr == nil {
		t.Fatal("expected InvalidReplacement error")
	}
}

func TestHashOfOriginalSnippetMatchesEntry(t *testing.T) {
	src := []byte("export function alpha() { return 'alpha'; }")
	entry, _ := firstFunction(t, src)
	snippet := src[entry.Span.ByteStart:entry.Span.ByteEnd]
	if hashid.OfBytes(snippet) != entry.Hash {
		t.Errorf("entry hash does not match hash of its own snippet")
	}
}
