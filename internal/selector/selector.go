// Package selector resolves a user-supplied selector string against a
// symbol inventory to exactly one addressable entry, with the
// deterministic tie-breaking rules the guarded editor depends on. It
// generalizes the "find the thing the CLI flag named" step every
// withastro/compiler transform implicitly performs by AST walk, made
// explicit and reusable across functions, variables, and constructors.
package selector

import (
	"sort"
	"strconv"
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/tsnjs/tsnjs/internal/diagnostic"
	"github.com/tsnjs/tsnjs/internal/posmap"
)

// Entry is the minimal shape selector needs from a symbols.FunctionEntry,
// symbols.VariableEntry, or symbols.ConstructorEntry — kept narrow so this
// package never imports internal/symbols, avoiding a dependency cycle;
// callers adapt their concrete entry types to this interface.
type Entry interface {
	SelectorName() string
	SelectorCanonicalName() string
	SelectorHash() string
	SelectorPathSignature() string
	SelectorSpan() posmap.Span
}

// Kind classifies what a parsed selector string matches against.
type Kind int

const (
	KindName Kind = iota
	KindHash
	KindPath
	KindSpan
	KindPosition
	KindGlob
)

// Parsed is a selector string broken into its addressing mode.
type Parsed struct {
	Kind Kind
	Raw  string

	Hash          string
	PathSignature string

	SpanIsByte bool
	SpanStart  int
	SpanEnd    int

	PosByte int
	PosLine int
	PosCol  int

	Glob string
}

// Parse interprets a selector string per the documented forms: bare
// name, `hash:<digest>`, `path:<signature>`, `span:<s>:<e>` /
// `span:byte:<s>:<e>`, `@<byte>` / `line:col`, or a glob containing `*`
// or `?`.
func Parse(raw string) (Parsed, error) {
	switch {
	case strings.HasPrefix(raw, "hash:"):
		return Parsed{Kind: KindHash, Raw: raw, Hash: strings.TrimPrefix(raw, "hash:")}, nil
	case strings.HasPrefix(raw, "path:"):
		return Parsed{Kind: KindPath, Raw: raw, PathSignature: strings.TrimPrefix(raw, "path:")}, nil
	case strings.HasPrefix(raw, "span:byte:"):
		s, e, err := parsePair(strings.TrimPrefix(raw, "span:byte:"))
		if err != nil {
			return Parsed{}, err
		}
		return Parsed{Kind: KindSpan, Raw: raw, SpanIsByte: true, SpanStart: s, SpanEnd: e}, nil
	case strings.HasPrefix(raw, "span:"):
		s, e, err := parsePair(strings.TrimPrefix(raw, "span:"))
		if err != nil {
			return Parsed{}, err
		}
		return Parsed{Kind: KindSpan, Raw: raw, SpanStart: s, SpanEnd: e}, nil
	case strings.HasPrefix(raw, "@"):
		b, err := strconv.Atoi(strings.TrimPrefix(raw, "@"))
		if err != nil {
			return Parsed{}, diagnostic.New(diagnostic.ArgError, "invalid byte position selector %q: %v", raw, err)
		}
		return Parsed{Kind: KindPosition, Raw: raw, PosByte: b}, nil
	case isLineCol(raw):
		line, col, _ := parsePair(raw)
		return Parsed{Kind: KindPosition, Raw: raw, PosLine: line, PosCol: col}, nil
	case strings.ContainsAny(raw, "*?"):
		return Parsed{Kind: KindGlob, Raw: raw, Glob: raw}, nil
	default:
		return Parsed{Kind: KindName, Raw: raw}, nil
	}
}

func isLineCol(raw string) bool {
	parts := strings.SplitN(raw, ":", 2)
	if len(parts) != 2 {
		return false
	}
	_, err1 := strconv.Atoi(parts[0])
	_, err2 := strconv.Atoi(parts[1])
	return err1 == nil && err2 == nil
}

func parsePair(s string) (int, int, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, 0, diagnostic.New(diagnostic.ArgError, "expected start:end pair, got %q", s)
	}
	a, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, diagnostic.New(diagnostic.ArgError, "invalid integer %q", parts[0])
	}
	b, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, diagnostic.New(diagnostic.ArgError, "invalid integer %q", parts[1])
	}
	return a, b, nil
}

// globToRegexp compiles a `*`/`?` glob into an anchored regexp2 pattern.
// regexp2 rather than stdlib regexp so canonical names containing the
// selector grammar's own punctuation (the ` > ` class-member joiner,
// `call:name:arg` callback labels) can be matched with lookaround if a
// future glob form needs it, without swapping engines later.
const regexp2Metachars = `\.^$*+?()[]{}|`

func globToRegexp(glob string) (*regexp2.Regexp, error) {
	var b strings.Builder
	b.WriteString("^")
	for _, r := range glob {
		switch r {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		default:
			if strings.ContainsRune(regexp2Metachars, r) {
				b.WriteByte('\\')
			}
			b.WriteRune(r)
		}
	}
	b.WriteString("$")
	return regexp2.Compile(b.String(), regexp2.None)
}

// Options configures a single resolution call.
type Options struct {
	SelectPath    string // --select-path, intersected with the primary selector
	AllowMultiple bool
}

// Resolve applies the resolution algorithm over entries and returns the
// matches, already sorted for the tie-break rule when len > 1. Callers
// pass already kind-filtered entries (variable ops pass only variable
// entries, etc.) — Resolve itself is kind-agnostic.
func Resolve[E Entry](entries []E, sel Parsed, opts Options) ([]E, *diagnostic.Error) {
	var matches []E
	for _, e := range entries {
		if matchesSelector(e, sel) {
			matches = append(matches, e)
		}
	}
	if opts.SelectPath != "" {
		filtered := matches[:0]
		for _, e := range matches {
			if e.SelectorPathSignature() == opts.SelectPath {
				filtered = append(filtered, e)
			}
		}
		matches = filtered
	}
	if len(matches) == 0 {
		return nil, diagnostic.New(diagnostic.SelectorNotFound, "selector %q matched no entries", sel.Raw)
	}
	if len(matches) > 1 {
		sortByTieBreak(matches, sel)
		if !opts.AllowMultiple && sel.Kind != KindPosition && sel.Kind != KindGlob {
			var candidates []diagnostic.Candidate
			for _, e := range matches {
				candidates = append(candidates, diagnostic.Candidate{
					CanonicalName: e.SelectorCanonicalName(), Hash: e.SelectorHash(),
				})
			}
			return nil, diagnostic.NewAmbiguous(sel.Raw, candidates)
		}
	}
	return matches, nil
}

func matchesSelector[E Entry](e E, sel Parsed) bool {
	switch sel.Kind {
	case KindName:
		return e.SelectorName() == sel.Raw || e.SelectorCanonicalName() == sel.Raw
	case KindHash:
		return e.SelectorHash() == sel.Hash
	case KindPath:
		return e.SelectorPathSignature() == sel.PathSignature
	case KindSpan:
		sp := e.SelectorSpan()
		if sel.SpanIsByte {
			return sp.ByteStart == sel.SpanStart && sp.ByteEnd == sel.SpanEnd
		}
		return sp.Start == sel.SpanStart && sp.End == sel.SpanEnd
	case KindPosition:
		sp := e.SelectorSpan()
		if sel.PosByte != 0 || (sel.PosLine == 0 && sel.PosCol == 0) {
			return sp.ByteStart <= sel.PosByte && sel.PosByte < sp.ByteEnd
		}
		// line:col positions are resolved by the caller translating to a
		// byte offset before calling Resolve, since that translation
		// needs a posmap.Mapper this package doesn't hold.
		return false
	case KindGlob:
		re, err := globToRegexp(sel.Glob)
		if err != nil {
			return false
		}
		if ok, _ := re.MatchString(e.SelectorName()); ok {
			return true
		}
		ok, _ := re.MatchString(e.SelectorCanonicalName())
		return ok
	}
	return false
}

// ResolvePosition is the position/snipe entry point: given a byte offset
// (the caller translates a line:col selector through the file's mapper
// first), match the innermost containing span, breaking ties per the
// documented rule.
func ResolvePosition[E Entry](entries []E, byteOffset int) ([]E, *diagnostic.Error) {
	var matches []E
	for _, e := range entries {
		sp := e.SelectorSpan()
		if sp.ByteStart <= byteOffset && byteOffset < sp.ByteEnd {
			matches = append(matches, e)
		}
	}
	if len(matches) == 0 {
		return nil, diagnostic.New(diagnostic.SelectorNotFound, "no entry contains byte offset %d", byteOffset)
	}
	sortByTieBreak(matches, Parsed{Kind: KindPosition})
	return matches[:1], nil
}

// sortByTieBreak orders matches: innermost span (smallest byte length)
// first, then smaller span.start, then lexicographically smaller
// pathSignature.
func sortByTieBreak[E Entry](matches []E, sel Parsed) {
	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i].SelectorSpan(), matches[j].SelectorSpan()
		aLen, bLen := a.ByteEnd-a.ByteStart, b.ByteEnd-b.ByteStart
		if aLen != bLen {
			return aLen < bLen
		}
		if a.ByteStart != b.ByteStart {
			return a.ByteStart < b.ByteStart
		}
		return matches[i].SelectorPathSignature() < matches[j].SelectorPathSignature()
	})
}
