// Package plan implements the Plan/Digest Emitter (C6): a deterministic,
// JSON-shaped record of what an operation found or did, written to a
// caller-specified path. JSON encoding goes through
// go-json-experiment/json, already a teacher dependency for the
// compiler's own JSON-shaped printer output.
package plan

import (
	"os"
	"time"

	jsonv2 "github.com/go-json-experiment/json"
	"github.com/google/uuid"

	"github.com/tsnjs/tsnjs/internal/editor"
	"github.com/tsnjs/tsnjs/internal/posmap"
)

// Version is the current plan schema version.
const Version = 1

// MatchRecord is the full per-entry metadata a plan records for each
// resolved match.
type MatchRecord struct {
	Name           string      `json:"name"`
	CanonicalName  string      `json:"canonicalName"`
	ExpectedHash   string      `json:"expectedHash"`
	ExpectedSpan   posmap.Span `json:"expectedSpan"`
	IdentifierSpan *posmap.Span `json:"identifierSpan,omitempty"`
	PathSignature  string      `json:"pathSignature"`
}

// Summary aggregates the match set.
type Summary struct {
	MatchCount    int         `json:"matchCount"`
	AllowMultiple bool        `json:"allowMultiple"`
	AggregateSpan posmap.Span `json:"aggregateSpan"`
}

// ContextInfo is populated for context/preview operations.
type ContextInfo struct {
	PaddingRequested int    `json:"paddingRequested"`
	PaddingApplied   int    `json:"paddingApplied"`
	Enclosing        string `json:"enclosing"`
	SnippetStart     int    `json:"snippetStart"`
	SnippetEnd       int    `json:"snippetEnd"`
}

// NewlineRecord mirrors the editor's NewlineGuard for plan output.
type NewlineRecord struct {
	FileStyle          string `json:"fileStyle"`
	ReplacementStyle    string `json:"replacementStyle"`
	NormalisedStyle    string `json:"normalisedStyle"`
	ByteDelta          int    `json:"byteDelta"`
	Converted          bool   `json:"converted"`
}

// GuardRecord mirrors editor.GuardReport for plan output.
type GuardRecord struct {
	Hash    editor.HashGuard    `json:"hash"`
	Span    editor.SpanGuard    `json:"span"`
	Path    editor.PathGuard    `json:"path"`
	Newline editor.NewlineGuard `json:"newline"`
	Result  editor.ResultGuard  `json:"result"`
}

// Plan is the full emitted record.
type Plan struct {
	Version      int          `json:"version"`
	RunID        string       `json:"runId"`
	Operation    string       `json:"operation"`
	Selector     string       `json:"selector"`
	SelectorMode string       `json:"selectorMode"`
	GeneratedAt  string       `json:"generatedAt"`
	Summary      Summary      `json:"summary"`
	Matches      []MatchRecord `json:"matches"`
	Context      *ContextInfo `json:"context,omitempty"`
	Newline      *NewlineRecord `json:"newline,omitempty"`
	Guard        *GuardRecord `json:"guard,omitempty"`
}

// New builds a Plan for operation/selector with already-resolved
// matches. generatedAt is supplied by the caller (ISO-8601 string)
// rather than stamped internally, since this package must stay
// deterministic given the same input — wall-clock time is an explicit
// caller-supplied parameter, not something plan.New reaches for itself.
// The exception is RunID: every call stamps a fresh random UUID.
func New(operation, selector, selectorMode, generatedAt string, matches []MatchRecord, allowMultiple bool) *Plan {
	p := &Plan{
		Version: Version, RunID: uuid.NewString(), Operation: operation,
		Selector: selector, SelectorMode: selectorMode, GeneratedAt: generatedAt,
		Matches: matches,
		Summary: Summary{MatchCount: len(matches), AllowMultiple: allowMultiple, AggregateSpan: aggregateSpan(matches)},
	}
	return p
}

func aggregateSpan(matches []MatchRecord) posmap.Span {
	if len(matches) == 0 {
		return posmap.Span{}
	}
	agg := matches[0].ExpectedSpan
	for _, m := range matches[1:] {
		if m.ExpectedSpan.Start < agg.Start {
			agg.Start = m.ExpectedSpan.Start
			agg.ByteStart = m.ExpectedSpan.ByteStart
		}
		if m.ExpectedSpan.End > agg.End {
			agg.End = m.ExpectedSpan.End
			agg.ByteEnd = m.ExpectedSpan.ByteEnd
		}
	}
	return agg
}

// WithContext attaches context-operation metadata, returning the same
// plan for chaining.
func (p *Plan) WithContext(c ContextInfo) *Plan { p.Context = &c; return p }

// WithGuard attaches a replace-operation's guard report and newline
// record, returning the same plan for chaining.
func (p *Plan) WithGuard(report editor.GuardReport) *Plan {
	p.Guard = &GuardRecord{
		Hash: report.Hash, Span: report.Span, Path: report.Path,
		Newline: report.Newline, Result: report.Result,
	}
	p.Newline = &NewlineRecord{
		FileStyle: report.Newline.FileStyle, ReplacementStyle: report.Newline.ReplacementFrom,
		NormalisedStyle: report.Newline.TargetStyle, ByteDelta: report.Newline.ByteDelta,
		Converted: report.Newline.Converted,
	}
	return p
}

// Marshal renders the plan as compact JSON with deterministic ordering.
func (p *Plan) Marshal() ([]byte, error) {
	return jsonv2.Marshal(p, jsonv2.Deterministic(true))
}

// WriteFile renders and writes the plan to path.
func (p *Plan) WriteFile(path string) error {
	data, err := p.Marshal()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Now returns the current time formatted as ISO-8601/RFC3339, the form
// every generatedAt field in this package's output uses. Callers stamp
// this once per invocation and thread it into plan.New explicitly.
func Now() string { return time.Now().UTC().Format(time.RFC3339) }
