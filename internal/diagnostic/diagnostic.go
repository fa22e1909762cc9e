// Package diagnostic implements the engine's error taxonomy and a
// per-invocation diagnostic accumulator. It generalizes the Astro
// compiler's internal/handler/handler.go (which buckets errors, warnings,
// infos and hints per file and renders them through a line/column lookup)
// and internal/loc/diagnostics.go (which assigns each diagnostic a stable
// numeric code).
package diagnostic

import "fmt"

// Kind identifies one of the taxonomy entries the guard pipeline and
// selector resolver can raise. It is the string that appears verbatim in
// the `error` field of --json output.
type Kind string

const (
	ParseError         Kind = "ParseError"
	SelectorNotFound   Kind = "SelectorNotFound"
	SelectorAmbiguous  Kind = "SelectorAmbiguous"
	HashMismatch       Kind = "HashMismatch"
	SpanMismatch       Kind = "SpanMismatch"
	PathMismatch       Kind = "PathMismatch"
	InvalidReplacement Kind = "InvalidReplacement"
	IOError            Kind = "IOError"
	ArgError           Kind = "ArgError"
)

// Code is a stable numeric identifier for a Kind, grouped the way the
// Astro compiler groups diagnostic codes by severity band (1000s for
// errors, 2000s for warnings, ...): here each taxonomy entry gets its own
// contiguous band so future sub-codes can be added without renumbering.
type Code int

const (
	CodeParseError         Code = 1000
	CodeSelectorNotFound   Code = 1100
	CodeSelectorAmbiguous  Code = 1200
	CodeHashMismatch       Code = 1300
	CodeSpanMismatch       Code = 1400
	CodePathMismatch       Code = 1500
	CodeInvalidReplacement Code = 1600
	CodeIOError            Code = 1700
	CodeArgError           Code = 1800
)

var codeForKind = map[Kind]Code{
	ParseError:         CodeParseError,
	SelectorNotFound:   CodeSelectorNotFound,
	SelectorAmbiguous:  CodeSelectorAmbiguous,
	HashMismatch:       CodeHashMismatch,
	SpanMismatch:       CodeSpanMismatch,
	PathMismatch:       CodePathMismatch,
	InvalidReplacement: CodeInvalidReplacement,
	IOError:            CodeIOError,
	ArgError:           CodeArgError,
}

// Position is a human-facing location, derived from a posmap.Mapper.
type Position struct {
	File   string
	Line   int
	Column int
}

func (p Position) String() string {
	if p.File == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// Candidate describes one entry in a SelectorAmbiguous diagnostic: each
// candidate is listed with its canonical name and content hash so the
// caller can disambiguate without re-running the resolver.
type Candidate struct {
	CanonicalName string
	Hash          string
}

// Error is the structured diagnostic every fatal condition in the engine
// surfaces as. It implements the standard error interface so it composes
// with errors.Is/As and can be wrapped by callers.
type Error struct {
	Kind       Kind
	Message    string
	Position   *Position
	Candidates []Candidate // populated for SelectorAmbiguous
	Bypassable bool        // true for HashMismatch/SpanMismatch/PathMismatch
	Forced     bool        // set by no code in this module; a --force bypass shows up as a "bypass" status in the editor's GuardReport
}

func (e *Error) Error() string {
	if e.Position != nil {
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, e.Position)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Code returns the stable numeric identifier for this error's Kind.
func (e *Error) Code() Code { return codeForKind[e.Kind] }

// New constructs a non-bypassable Error (ParseError, SelectorNotFound,
// InvalidReplacement, IOError, ArgError, or a not-yet-forced
// SelectorAmbiguous).
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// NewAt is New with an attached source position.
func NewAt(kind Kind, pos Position, format string, args ...any) *Error {
	e := New(kind, format, args...)
	e.Position = &pos
	return e
}

// NewBypassable constructs one of HashMismatch, SpanMismatch, or
// PathMismatch — fatal unless the caller passed --force, in which case
// the guard pipeline downgrades it to a recorded "bypass" status instead
// of raising it.
func NewBypassable(kind Kind, format string, args ...any) *Error {
	e := New(kind, format, args...)
	e.Bypassable = true
	return e
}

// NewAmbiguous builds the SelectorAmbiguous diagnostic with its candidate
// list.
func NewAmbiguous(selector string, candidates []Candidate) *Error {
	e := New(SelectorAmbiguous, "selector %q matched %d entries", selector, len(candidates))
	e.Candidates = candidates
	return e
}

// Handler accumulates diagnostics for operations that must not abort on
// the first failure. No package in this module constructs one: the
// workspace scanner keeps each file's parse error on its ScanResult
// instead, without aborting the walk. Single mutating
// commands (edit operations) do not use a Handler; they return the first
// fatal *Error directly, since no error is silently recovered there.
type Handler struct {
	errors   []*Error
	warnings []*Error
}

func NewHandler() *Handler { return &Handler{} }

func (h *Handler) AppendError(err *Error)   { h.errors = append(h.errors, err) }
func (h *Handler) AppendWarning(err *Error) { h.warnings = append(h.warnings, err) }
func (h *Handler) HasErrors() bool          { return len(h.errors) > 0 }
func (h *Handler) Errors() []*Error         { return h.errors }
func (h *Handler) Warnings() []*Error       { return h.warnings }
