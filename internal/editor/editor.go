// Package editor implements the Guarded Editor (C5): given a resolved
// inventory entry and a replacement snippet, it runs the six-stage guard
// pipeline and either writes the target file atomically or refuses. Each
// stage that runs records its outcome; a failing stage that --force does
// not bypass ends the pipeline with its error, and the syntax guard is
// reported only through that error.
//
// Grounded on the Astro compiler's pattern of building a whole new buffer
// before any single os.WriteFile — printer/printer.go never patches a
// file in place, it renders a complete replacement and hands it to the
// caller in one piece, which is the same all-or-nothing write shape the
// guard pipeline requires here.
package editor

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/pkg/diff"

	"github.com/tsnjs/tsnjs/internal/diagnostic"
	"github.com/tsnjs/tsnjs/internal/hashid"
	"github.com/tsnjs/tsnjs/internal/jsast"
	"github.com/tsnjs/tsnjs/internal/jsparse"
	"github.com/tsnjs/tsnjs/internal/posmap"
)

// Status is the outcome recorded for one guard stage.
type Status string

const (
	StatusOK        Status = "ok"
	StatusMismatch  Status = "mismatch"
	StatusBypass    Status = "bypass"
	StatusConverted Status = "converted"
	StatusChanged   Status = "changed"
	StatusUnchanged Status = "unchanged"
	StatusNone      Status = "none"
)

// HashGuard records stage 1.
type HashGuard struct {
	Status   Status
	Expected string
	Actual   string
}

// SpanGuard records stage 2.
type SpanGuard struct {
	Status   Status
	Expected *posmap.Span
	Actual   posmap.Span
}

// PathGuard records stage 3.
type PathGuard struct {
	Status        Status
	PathSignature string
	ShapeMatched  bool
}

// NewlineGuard records stage 5.
type NewlineGuard struct {
	Status          Status
	FileStyle       string
	ReplacementFrom string
	TargetStyle     string
	Converted       bool
	ByteDelta       int
}

// ResultGuard records stage 6.
type ResultGuard struct {
	Status Status
	After  string
}

// GuardReport bundles the outcome of each stage that ran, mirroring the
// plan emitter's nested "guard" block. The syntax guard (stage 4) has no
// record here: a parse failure is returned as an error instead.
type GuardReport struct {
	Hash     HashGuard
	Span     SpanGuard
	Path     PathGuard
	Newline  NewlineGuard
	Result   ResultGuard
}

// Target is the minimal addressable-entry shape the editor needs,
// satisfied by symbols.FunctionEntry / VariableEntry / ConstructorEntry
// via small adapter methods, mirroring internal/selector.Entry.
type Target interface {
	EntrySpan() posmap.Span
	EntryIdentifierSpan() *posmap.Span
	EntryHash() string
	EntryPathSignature() string
	EntryKindName() string // e.g. "FunctionDeclaration"; used for structural-shape comparison
}

// Request describes one replace/rename invocation.
type Request struct {
	FilePath      string
	Source        []byte
	Mapper        *posmap.Mapper
	TypeScript    bool
	Target        Target
	Replacement   string // new source text for the target span (already unescaped if from --with-code)
	ReplaceRange  *[2]int // [rStart, rEnd) relative to entry snippet, nil = whole span
	ExpectHash    string  // "" = not supplied
	ExpectSpan    *posmap.Span
	Force         bool
	Fix           bool // write vs dry-run
	IsRename      bool
	IsWholeEntity bool // true when replacement is an entire definition, enabling shape comparison
}

// Result is what one invocation produces: the guard report, the new
// source (whether or not it was written), and whether the write
// happened.
type Result struct {
	Report  GuardReport
	NewSrc  []byte
	Written bool
	Diff    string
}

// Apply runs the full guard pipeline and, if Fix is set and no
// non-bypassable guard failed, writes the file atomically.
func Apply(req Request) (*Result, *diagnostic.Error) {
	res := &Result{}
	entry := req.Target

	// 1. Hash guard.
	res.Report.Hash = runHashGuard(req, entry)
	if res.Report.Hash.Status == StatusMismatch && !req.Force {
		return res, diagnostic.NewBypassable(diagnostic.HashMismatch, "expected hash %s, got %s", req.ExpectHash, entry.EntryHash())
	}

	// 2. Span guard.
	res.Report.Span = runSpanGuard(req, entry)
	if res.Report.Span.Status == StatusMismatch && !req.Force {
		return res, diagnostic.NewBypassable(diagnostic.SpanMismatch, "expected span %v, got %v", req.ExpectSpan, entry.EntrySpan())
	}

	// Build the spliced source (span or replace-range, or identifier-only for rename).
	newSrc, targetStart, targetEnd, err := splice(req)
	if err != nil {
		return res, err
	}

	// 3. Path guard: re-parse the *original* file to confirm the entry
	// still exists at its pathSignature (drift since the caller's locate).
	pathStatus, shapeOK, perr := runPathGuard(req, entry)
	res.Report.Path = PathGuard{Status: pathStatus, PathSignature: entry.EntryPathSignature(), ShapeMatched: shapeOK}
	if perr != nil {
		return res, perr
	}
	if pathStatus == StatusMismatch && !req.Force {
		return res, diagnostic.NewBypassable(diagnostic.PathMismatch, "entry at path %s no longer found, or shape changed", entry.EntryPathSignature())
	}
	if pathStatus == StatusMismatch && req.Force {
		res.Report.Path.Status = StatusBypass
	}

	// 4. Syntax guard: re-parse the spliced whole file. Not bypassable.
	if _, perr := jsparse.Parse(req.FilePath, newSrc, jsparse.Options{TypeScript: req.TypeScript}); perr != nil {
		return res, diagnostic.New(diagnostic.InvalidReplacement, "replacement does not parse: %v", perr)
	}

	// 5. Newline guard.
	res.Report.Newline = runNewlineGuard(req.Source, req.Replacement)
	if res.Report.Newline.Converted {
		converted := reconvertNewlines(req.Source, targetStart, targetEnd, req)
		res.Report.Newline.ByteDelta = len(converted) - len(newSrc)
		newSrc = converted
	}

	// 6. Result guard: re-collect at the same pathSignature in the new source.
	resultStatus, after, rerr := runResultGuard(req, newSrc)
	if rerr != nil {
		return res, rerr
	}
	res.Report.Result = ResultGuard{Status: resultStatus, After: after}

	res.NewSrc = newSrc
	res.Diff = unifiedDiff(req.FilePath, req.Source, newSrc)

	if !req.Fix {
		return res, nil
	}
	if err := atomicWrite(req.FilePath, newSrc); err != nil {
		return res, diagnostic.New(diagnostic.IOError, "writing %s: %v", req.FilePath, err)
	}
	res.Written = true
	return res, nil
}

func runHashGuard(req Request, entry Target) HashGuard {
	if req.ExpectHash == "" {
		return HashGuard{Status: StatusNone}
	}
	if req.ExpectHash == entry.EntryHash() {
		return HashGuard{Status: StatusOK, Expected: req.ExpectHash, Actual: entry.EntryHash()}
	}
	status := StatusMismatch
	if req.Force {
		status = StatusBypass
	}
	return HashGuard{Status: status, Expected: req.ExpectHash, Actual: entry.EntryHash()}
}

func runSpanGuard(req Request, entry Target) SpanGuard {
	if req.ExpectSpan == nil {
		return SpanGuard{Status: StatusNone, Actual: entry.EntrySpan()}
	}
	actual := entry.EntrySpan()
	if *req.ExpectSpan == actual {
		return SpanGuard{Status: StatusOK, Expected: req.ExpectSpan, Actual: actual}
	}
	status := StatusMismatch
	if req.Force {
		status = StatusBypass
	}
	return SpanGuard{Status: status, Expected: req.ExpectSpan, Actual: actual}
}

// splice builds the full new file buffer by substituting the replacement
// text into the target span (or sub-range, or identifier span for
// rename), returning the byte offsets actually replaced.
func splice(req Request) (newSrc []byte, start, end int, derr *diagnostic.Error) {
	sp := req.Target.EntrySpan()
	start, end = sp.ByteStart, sp.ByteEnd

	if req.IsRename {
		idSpan := req.Target.EntryIdentifierSpan()
		if idSpan == nil {
			return nil, 0, 0, diagnostic.New(diagnostic.InvalidReplacement, "entry has no identifier span to rename")
		}
		start, end = idSpan.ByteStart, idSpan.ByteEnd
	} else if req.ReplaceRange != nil {
		rStart, rEnd := req.ReplaceRange[0], req.ReplaceRange[1]
		if rStart < 0 || rEnd > (sp.ByteEnd-sp.ByteStart) || rStart > rEnd {
			return nil, 0, 0, diagnostic.New(diagnostic.InvalidReplacement, "replace-range [%d:%d) out of bounds for entry span", rStart, rEnd)
		}
		start, end = sp.ByteStart+rStart, sp.ByteStart+rEnd
	}

	if req.Replacement == "" {
		return nil, 0, 0, diagnostic.New(diagnostic.InvalidReplacement, "replacement text is empty")
	}

	var buf bytes.Buffer
	buf.Write(req.Source[:start])
	buf.WriteString(req.Replacement)
	buf.Write(req.Source[end:])
	return buf.Bytes(), start, end, nil
}

func runPathGuard(req Request, entry Target) (Status, bool, *diagnostic.Error) {
	root, perr := jsparse.Parse(req.FilePath, req.Source, jsparse.Options{TypeScript: req.TypeScript})
	if perr != nil {
		return StatusMismatch, false, diagnostic.New(diagnostic.ParseError, "re-parsing before write: %v", perr)
	}
	found := findByPathSignature(root, entry.EntryPathSignature())
	if found == nil {
		return StatusMismatch, false, nil
	}
	if req.IsWholeEntity {
		if found.Kind.String() != entry.EntryKindName() {
			return StatusMismatch, false, nil
		}
		return StatusOK, true, nil
	}
	return StatusOK, true, nil
}

// findByPathSignature recomputes path signatures while walking — a
// direct re-derivation, not a cache, since the whole point of this guard
// is to detect that the structural slot the caller remembered may no
// longer exist.
func findByPathSignature(root *jsast.Node, target string) *jsast.Node {
	var found *jsast.Node
	var walk func(n *jsast.Node, path string)
	walk = func(n *jsast.Node, path string) {
		if found != nil {
			return
		}
		if path == target {
			found = n
			return
		}
		i := 0
		n.ForEachChild(func(child *jsast.Node) bool {
			childPath := fmt.Sprintf("%s.%s[%d]", path, child.Kind.String(), i)
			i++
			walk(child, childPath)
			return found != nil
		})
	}
	walk(root, root.Kind.String())
	return found
}

// detectNewlineStyle classifies a byte slice's dominant line terminator.
func detectNewlineStyle(b []byte) string {
	crlf := bytes.Count(b, []byte("\r\n"))
	lfOnly := bytes.Count(b, []byte("\n")) - crlf
	switch {
	case crlf == 0 && lfOnly == 0:
		return "none"
	case crlf > lfOnly:
		return "crlf"
	default:
		return "lf"
	}
}

func runNewlineGuard(fileSrc []byte, replacement string) NewlineGuard {
	fileStyle := detectNewlineStyle(fileSrc)
	replStyle := detectNewlineStyle([]byte(replacement))
	if fileStyle == "none" || fileStyle == replStyle {
		return NewlineGuard{Status: StatusOK, FileStyle: fileStyle, ReplacementFrom: replStyle, TargetStyle: fileStyle}
	}
	return NewlineGuard{
		Status: StatusConverted, FileStyle: fileStyle, ReplacementFrom: replStyle,
		TargetStyle: fileStyle, Converted: true,
	}
}

// reconvertNewlines re-splices with the replacement text normalised to
// the file's dominant newline style; Apply records the resulting size
// change against the unconverted splice as the NewlineGuard's ByteDelta.
func reconvertNewlines(original []byte, start, end int, req Request) []byte {
	style := detectNewlineStyle(original)
	normalised := normaliseNewlines(req.Replacement, style)
	var buf bytes.Buffer
	buf.Write(original[:start])
	buf.WriteString(normalised)
	buf.Write(original[end:])
	return buf.Bytes()
}

func normaliseNewlines(s, style string) string {
	unified := strings.ReplaceAll(s, "\r\n", "\n")
	if style == "crlf" {
		return strings.ReplaceAll(unified, "\n", "\r\n")
	}
	return unified
}

func runResultGuard(req Request, newSrc []byte) (Status, string, *diagnostic.Error) {
	root, perr := jsparse.Parse(req.FilePath, newSrc, jsparse.Options{TypeScript: req.TypeScript})
	if perr != nil {
		return "", "", diagnostic.New(diagnostic.ParseError, "re-parsing after write: %v", perr)
	}
	found := findByPathSignature(root, req.Target.EntryPathSignature())
	if found == nil {
		return "", "", diagnostic.New(diagnostic.InvalidReplacement, "entry vanished at its path signature after edit")
	}
	mapper := posmap.New(newSrc)
	sp := mapper.ToByteSpan(found.Pos(), found.End())
	after := hashOfSpan(newSrc, sp)
	if after == req.Target.EntryHash() {
		return StatusUnchanged, after, nil
	}
	return StatusChanged, after, nil
}

func hashOfSpan(src []byte, sp posmap.Span) string {
	return hashid.OfSpan(src, sp.ByteStart, sp.ByteEnd)
}

func atomicWrite(path string, content []byte) error {
	tmp := path + ".tsnjs-tmp"
	if err := os.WriteFile(tmp, content, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func unifiedDiff(path string, a, b []byte) string {
	var buf bytes.Buffer
	if err := diff.Text(path, path, bytes.NewReader(a), bytes.NewReader(b), &buf); err != nil {
		return ""
	}
	return buf.String()
}
