package plan_test

import (
	"testing"

	"github.com/tsnjs/tsnjs/internal/plan"
	"github.com/tsnjs/tsnjs/internal/posmap"
)

func TestNewAggregatesSpanAndSummary(t *testing.T) {
	matches := []plan.MatchRecord{
		{Name: "alpha", CanonicalName: "exports.alpha", ExpectedHash: "h1", ExpectedSpan: posmap.Span{Start: 10, End: 20, ByteStart: 10, ByteEnd: 20}},
		{Name: "beta", CanonicalName: "exports.beta", ExpectedHash: "h2", ExpectedSpan: posmap.Span{Start: 30, End: 50, ByteStart: 30, ByteEnd: 50}},
	}
	p := plan.New("locate", "exports.*", "declaration", "2026-07-30T00:00:00Z", matches, true)

	if p.Version != plan.Version {
		t.Errorf("version = %d, want %d", p.Version, plan.Version)
	}
	if p.Summary.MatchCount != 2 {
		t.Errorf("matchCount = %d, want 2", p.Summary.MatchCount)
	}
	if !p.Summary.AllowMultiple {
		t.Error("expected AllowMultiple=true")
	}
	if p.Summary.AggregateSpan.Start != 10 || p.Summary.AggregateSpan.End != 50 {
		t.Errorf("aggregate span = %+v, want [10,50]", p.Summary.AggregateSpan)
	}
	if p.RunID == "" {
		t.Error("expected a non-empty RunID")
	}
}

func TestMarshalIsDeterministicAcrossRuns(t *testing.T) {
	matches := []plan.MatchRecord{
		{Name: "alpha", CanonicalName: "exports.alpha", ExpectedHash: "h1", ExpectedSpan: posmap.Span{Start: 0, End: 10}},
	}
	p1 := plan.New("extract", "alpha", "declaration", "2026-07-30T00:00:00Z", matches, false)
	p2 := plan.New("extract", "alpha", "declaration", "2026-07-30T00:00:00Z", matches, false)
	p1.RunID, p2.RunID = "fixed-run-id", "fixed-run-id"

	b1, err := p1.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	b2, err := p2.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(b1) != string(b2) {
		t.Errorf("marshal not deterministic:\n%s\nvs\n%s", b1, b2)
	}
}

func TestWithContextAttachesMetadata(t *testing.T) {
	p := plan.New("context", "alpha", "declaration", "2026-07-30T00:00:00Z", nil, false)
	p.WithContext(plan.ContextInfo{PaddingRequested: 4, PaddingApplied: 4, Enclosing: "function", SnippetStart: 0, SnippetEnd: 100})
	if p.Context == nil {
		t.Fatal("expected Context to be set")
	}
	if p.Context.Enclosing != "function" {
		t.Errorf("enclosing = %q, want function", p.Context.Enclosing)
	}
}

func TestEmptyMatchesAggregateSpanIsZero(t *testing.T) {
	p := plan.New("locate", "nothing", "declaration", "2026-07-30T00:00:00Z", nil, false)
	if p.Summary.AggregateSpan != (posmap.Span{}) {
		t.Errorf("aggregate span = %+v, want zero value", p.Summary.AggregateSpan)
	}
}
