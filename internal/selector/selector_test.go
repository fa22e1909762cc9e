package selector_test

import (
	"testing"

	"github.com/tsnjs/tsnjs/internal/posmap"
	"github.com/tsnjs/tsnjs/internal/selector"
)

type fakeEntry struct {
	name, canonical, hash, path string
	span                        posmap.Span
}

func (f fakeEntry) SelectorName() string          { return f.name }
func (f fakeEntry) SelectorCanonicalName() string { return f.canonical }
func (f fakeEntry) SelectorHash() string          { return f.hash }
func (f fakeEntry) SelectorPathSignature() string { return f.path }
func (f fakeEntry) SelectorSpan() posmap.Span     { return f.span }

func TestResolveByName(t *testing.T) {
	entries := []fakeEntry{
		{name: "alpha", canonical: "exports.alpha", hash: "h1", path: "p1"},
		{name: "beta", canonical: "exports.beta", hash: "h2", path: "p2"},
	}
	sel, err := selector.Parse("exports.alpha")
	if err != nil {
		t.Fatal(err)
	}
	matches, derr := selector.Resolve(entries, sel, selector.Options{})
	if derr != nil {
		t.Fatal(derr)
	}
	if len(matches) != 1 || matches[0].hash != "h1" {
		t.Fatalf("unexpected matches: %+v", matches)
	}
}

func TestResolveNotFound(t *testing.T) {
	sel, _ := selector.Parse("nonexistent")
	_, derr := selector.Resolve([]fakeEntry{{name: "a"}}, sel, selector.Options{})
	if derr == nil {
		t.Fatal("expected SelectorNotFound")
	}
}

func TestResolveAmbiguous(t *testing.T) {
	entries := []fakeEntry{
		{name: "dup", canonical: "a.dup", hash: "h1", path: "p1", span: posmap.Span{ByteStart: 0, ByteEnd: 10}},
		{name: "dup", canonical: "b.dup", hash: "h2", path: "p2", span: posmap.Span{ByteStart: 20, ByteEnd: 30}},
	}
	sel, _ := selector.Parse("dup")
	_, derr := selector.Resolve(entries, sel, selector.Options{})
	if derr == nil {
		t.Fatal("expected SelectorAmbiguous")
	}
}

func TestResolveAllowMultiple(t *testing.T) {
	entries := []fakeEntry{
		{name: "dup", canonical: "a.dup", hash: "h1", path: "p1"},
		{name: "dup", canonical: "b.dup", hash: "h2", path: "p2"},
	}
	sel, _ := selector.Parse("dup")
	matches, derr := selector.Resolve(entries, sel, selector.Options{AllowMultiple: true})
	if derr != nil {
		t.Fatal(derr)
	}
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2", len(matches))
	}
}

func TestResolveByHash(t *testing.T) {
	entries := []fakeEntry{{name: "a", hash: "abc123"}}
	sel, _ := selector.Parse("hash:abc123")
	matches, derr := selector.Resolve(entries, sel, selector.Options{})
	if derr != nil || len(matches) != 1 {
		t.Fatalf("matches=%v err=%v", matches, derr)
	}
}

func TestInnermostSpanTieBreak(t *testing.T) {
	entries := []fakeEntry{
		{name: "outer", path: "z", span: posmap.Span{ByteStart: 0, ByteEnd: 100}},
		{name: "inner", path: "a", span: posmap.Span{ByteStart: 10, ByteEnd: 20}},
	}
	matches, derr := selector.ResolvePosition(entries, 15)
	if derr != nil {
		t.Fatal(derr)
	}
	if matches[0].name != "inner" {
		t.Fatalf("expected innermost span to win, got %q", matches[0].name)
	}
}
