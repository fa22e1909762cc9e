// Package cliapp is the shared CLI dispatcher behind all four binaries
// (js-edit, ts-edit, js-scan, ts-scan): a single flag.FlagSet parses the
// full operation/modifier surface, dispatches to the resolve/guard/plan
// pipeline, and renders either formatted text or --json. Grounded on
// 1homsi-gorisk/cmd/gorisk's `Run(args []string) int` subcommand shape,
// generalised from one FlagSet per subcommand to one FlagSet carrying
// mutually-exclusive operation-selector flags (this tool has one
// operation per invocation, not a named subcommand per operation).
package cliapp

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/tsnjs/tsnjs/internal/diagnostic"
	"github.com/tsnjs/tsnjs/internal/editor"
	"github.com/tsnjs/tsnjs/internal/jsast"
	"github.com/tsnjs/tsnjs/internal/plan"
	"github.com/tsnjs/tsnjs/internal/posmap"
	"github.com/tsnjs/tsnjs/internal/provider"
	"github.com/tsnjs/tsnjs/internal/rename"
	"github.com/tsnjs/tsnjs/internal/selector"
	"github.com/tsnjs/tsnjs/internal/symbols"
	"github.com/tsnjs/tsnjs/internal/workspace"
)

// flags carries the parsed, raw modifier surface — every --flag the
// spec names, whether or not the current operation uses it.
type flags struct {
	// operation selectors
	listFunctions    bool
	listVariables    bool
	listConstructors bool
	outline          bool
	locate           string
	locateVariable   string
	extract          string
	extractVariable  string
	extractHashes    string
	replace          string
	replaceVariable  string
	rename           string
	contextFunction  string
	contextVariable  string
	preview          string
	previewVariable  string
	searchText       string
	snipe            string
	scanTargets      string

	// modifiers
	file              string
	with              string
	withFile          string
	withCode          string
	replaceRange      string
	expectHash        string
	expectSpan        string
	selectFlag        string
	selectPath        string
	variableTarget    string
	allowMultiple     bool
	force             bool
	fix               bool
	jsonOut           bool
	emitPlan          string
	emitDiff          bool
	contextBefore     int
	contextAfter      int
	contextEnclosing  string
	match             string
	exclude           string
}

func parseFlags(fs *flag.FlagSet, args []string) *flags {
	f := &flags{}
	fs.BoolVar(&f.listFunctions, "list-functions", false, "list the function inventory")
	fs.BoolVar(&f.listVariables, "list-variables", false, "list the variable inventory")
	fs.BoolVar(&f.listConstructors, "list-constructors", false, "list the constructor inventory")
	fs.BoolVar(&f.outline, "outline", false, "print a combined outline of all inventories")
	fs.StringVar(&f.locate, "locate", "", "locate a function/class/constructor by selector")
	fs.StringVar(&f.locateVariable, "locate-variable", "", "locate a variable by selector")
	fs.StringVar(&f.extract, "extract", "", "extract source text by selector")
	fs.StringVar(&f.extractVariable, "extract-variable", "", "extract a variable's source by selector")
	fs.StringVar(&f.extractHashes, "extract-hashes", "", "comma-separated hashes to extract")
	fs.StringVar(&f.replace, "replace", "", "replace a function/class/constructor by selector")
	fs.StringVar(&f.replaceVariable, "replace-variable", "", "replace a variable by selector")
	fs.StringVar(&f.rename, "rename", "", "new identifier name for --replace/--replace-variable target")
	fs.StringVar(&f.contextFunction, "context-function", "", "print context around a function by selector")
	fs.StringVar(&f.contextVariable, "context-variable", "", "print context around a variable by selector")
	fs.StringVar(&f.preview, "preview", "", "preview a function replacement without writing")
	fs.StringVar(&f.previewVariable, "preview-variable", "", "preview a variable replacement without writing")
	fs.StringVar(&f.searchText, "search-text", "", "search file text for a substring")
	fs.StringVar(&f.snipe, "snipe", "", "resolve the entry enclosing a file position")
	fs.StringVar(&f.scanTargets, "scan-targets", "", "comma-separated file paths to scan as a workspace")

	fs.StringVar(&f.file, "file", "", "target file path")
	fs.StringVar(&f.with, "with", "", "replacement source file path")
	fs.StringVar(&f.withFile, "with-file", "", "replacement source file, relative to target's directory")
	fs.StringVar(&f.withCode, "with-code", "", "inline replacement source")
	fs.StringVar(&f.replaceRange, "replace-range", "", "sub-range s:e relative to the entry snippet")
	fs.StringVar(&f.expectHash, "expect-hash", "", "expected content hash guard")
	fs.StringVar(&f.expectSpan, "expect-span", "", "expected span guard, s:e or byte:s:e")
	fs.StringVar(&f.selectFlag, "select", "", "accepted but not applied; only --select-path narrows the match set")
	fs.StringVar(&f.selectPath, "select-path", "", "disambiguating path signature, intersected with the primary one")
	fs.StringVar(&f.variableTarget, "variable-target", "declaration", "declaration|declarator|binding")
	fs.BoolVar(&f.allowMultiple, "allow-multiple", false, "permit a selector to match more than one entry")
	fs.BoolVar(&f.force, "force", false, "bypass mismatch guards")
	fs.BoolVar(&f.fix, "fix", false, "write changes (default is dry-run)")
	fs.BoolVar(&f.jsonOut, "json", false, "emit JSON instead of formatted text")
	fs.StringVar(&f.emitPlan, "emit-plan", "", "write a plan record to this path")
	fs.BoolVar(&f.emitDiff, "emit-diff", false, "include a unified diff in the result")
	fs.IntVar(&f.contextBefore, "context-before", 0, "lines of context before the entry")
	fs.IntVar(&f.contextAfter, "context-after", 0, "lines of context after the entry")
	fs.StringVar(&f.contextEnclosing, "context-enclosing", "exact", "exact|function|class")
	fs.StringVar(&f.match, "match", "", "glob of files to include when scanning (accepted but not applied by any operation)")
	fs.StringVar(&f.exclude, "exclude", "", "glob of files to exclude when scanning (accepted but not applied by any operation)")

	fs.Parse(args)
	return f
}

// App is one bound invocation of the CLI against a specific provider,
// e.g. js-edit binds provider.JS, ts-scan binds provider.TS.
type App struct {
	Provider provider.Provider
	Stdout   io.Writer
	Stderr   io.Writer
}

// Run parses args and executes exactly one operation, returning the
// process exit code: 0 on success, non-zero on any refusal or error,
// matching the documented exit-code contract.
func (a App) Run(args []string) int {
	fs := flag.NewFlagSet("tsnjs", flag.ContinueOnError)
	f := parseFlags(fs, args)

	if f.file == "" {
		return a.fail(f.jsonOut, diagnostic.New(diagnostic.ArgError, "--file is required"))
	}
	src, err := os.ReadFile(f.file)
	if err != nil {
		return a.fail(f.jsonOut, diagnostic.New(diagnostic.IOError, "reading %s: %v", f.file, err))
	}
	rec := a.Provider.ParseSource(f.file, src)
	if rec.ParseErr != nil {
		return a.fail(f.jsonOut, diagnostic.New(diagnostic.ParseError, "%v", rec.ParseErr))
	}

	switch {
	case f.listFunctions:
		return a.emit(f, rec.Inventory.Functions)
	case f.listVariables:
		return a.emit(f, rec.Inventory.Variables)
	case f.listConstructors:
		return a.emit(f, rec.Inventory.Constructors)
	case f.outline:
		return a.emit(f, rec.Inventory)
	case f.scanTargets != "":
		return a.runScanTargets(f)
	case f.searchText != "":
		return a.runSearchText(f, rec, src)
	case f.locate != "":
		return a.runLocate(f, rec, f.locate, false)
	case f.locateVariable != "":
		return a.runLocate(f, rec, f.locateVariable, true)
	case f.snipe != "":
		return a.runSnipe(f, rec)
	case f.extract != "":
		return a.runExtract(f, rec, src, f.extract, false)
	case f.extractVariable != "":
		return a.runExtract(f, rec, src, f.extractVariable, true)
	case f.extractHashes != "":
		return a.runExtractHashes(f, rec, src)
	case f.replace != "":
		return a.runReplace(f, rec, src, f.replace, false)
	case f.replaceVariable != "":
		return a.runReplace(f, rec, src, f.replaceVariable, true)
	case f.contextFunction != "":
		return a.runContext(f, rec, src, f.contextFunction, false)
	case f.contextVariable != "":
		return a.runContext(f, rec, src, f.contextVariable, true)
	case f.preview != "":
		f.fix = false
		return a.runReplace(f, rec, src, f.preview, false)
	case f.previewVariable != "":
		f.fix = false
		return a.runReplace(f, rec, src, f.previewVariable, true)
	default:
		return a.fail(f.jsonOut, diagnostic.New(diagnostic.ArgError, "no operation selector given"))
	}
}

func (a App) fail(jsonOut bool, derr *diagnostic.Error) int {
	if jsonOut {
		enc, _ := json.MarshalIndent(map[string]any{"error": derr.Kind, "message": derr.Error()}, "", "  ")
		fmt.Fprintln(a.Stderr, string(enc))
	} else {
		fmt.Fprintln(a.Stderr, derr.Error())
	}
	return 1
}

func (a App) emit(f *flags, payload any) int {
	if f.jsonOut {
		enc, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return a.fail(f.jsonOut, diagnostic.New(diagnostic.IOError, "encoding result: %v", err))
		}
		fmt.Fprintln(a.Stdout, string(enc))
		return 0
	}
	fmt.Fprintf(a.Stdout, "%+v\n", payload)
	return 0
}

func (a App) runSearchText(f *flags, rec provider.FileRecord, src []byte) int {
	idx := strings.Index(string(src), f.searchText)
	if idx < 0 {
		return a.emit(f, map[string]any{"found": false})
	}
	pos := rec.Mapper.ByteToChar(idx)
	return a.emit(f, map[string]any{"found": true, "byteOffset": idx, "charOffset": pos})
}

func (a App) runScanTargets(f *flags) int {
	targets := strings.Split(f.scanTargets, ",")
	var results []workspace.ScanResult
	for _, t := range targets {
		src, err := os.ReadFile(t)
		if err != nil {
			results = append(results, workspace.ScanResult{Path: t, Error: err})
			continue
		}
		rec := a.Provider.ParseSource(t, src)
		results = append(results, workspace.ScanResult{Path: t, Rec: rec, Error: rec.ParseErr})
	}
	return a.emit(f, results)
}

func (a App) resolveFunctions(f *flags, rec provider.FileRecord, raw string) ([]symbols.FunctionEntry, *diagnostic.Error) {
	sel, perr := selector.Parse(raw)
	if perr != nil {
		return nil, perr.(*diagnostic.Error)
	}
	return selector.Resolve(rec.Inventory.Functions, sel, selector.Options{SelectPath: f.selectPath, AllowMultiple: f.allowMultiple})
}

func (a App) resolveVariables(f *flags, rec provider.FileRecord, raw string) ([]symbols.VariableEntry, *diagnostic.Error) {
	sel, perr := selector.Parse(raw)
	if perr != nil {
		return nil, perr.(*diagnostic.Error)
	}
	all := filterVariablesByTargetMode(rec.Inventory.Variables, f.variableTarget)
	return selector.Resolve(all, sel, selector.Options{SelectPath: f.selectPath, AllowMultiple: f.allowMultiple})
}

func filterVariablesByTargetMode(all []symbols.VariableEntry, mode string) []symbols.VariableEntry {
	var want symbols.TargetMode
	switch mode {
	case "declarator":
		want = symbols.TargetDeclarator
	case "binding":
		want = symbols.TargetBinding
	default:
		want = symbols.TargetDeclaration
	}
	var out []symbols.VariableEntry
	for _, v := range all {
		if v.TargetMode == want {
			out = append(out, v)
		}
	}
	return out
}

func (a App) runLocate(f *flags, rec provider.FileRecord, raw string, isVar bool) int {
	if isVar {
		matches, derr := a.resolveVariables(f, rec, raw)
		if derr != nil {
			return a.fail(f.jsonOut, derr)
		}
		return a.emit(f, matches)
	}
	matches, derr := a.resolveFunctions(f, rec, raw)
	if derr != nil {
		return a.fail(f.jsonOut, derr)
	}
	return a.emit(f, matches)
}

func (a App) runSnipe(f *flags, rec provider.FileRecord) int {
	byteOff, err := resolvePositionToByte(f.snipe, rec)
	if err != nil {
		return a.fail(f.jsonOut, err)
	}
	fnMatches, _ := selector.ResolvePosition(rec.Inventory.Functions, byteOff)
	varMatches, _ := selector.ResolvePosition(rec.Inventory.Variables, byteOff)
	return a.emit(f, map[string]any{"functions": fnMatches, "variables": varMatches})
}

func resolvePositionToByte(raw string, rec provider.FileRecord) (int, *diagnostic.Error) {
	if strings.HasPrefix(raw, "@") {
		b, err := strconv.Atoi(strings.TrimPrefix(raw, "@"))
		if err != nil {
			return 0, diagnostic.New(diagnostic.ArgError, "invalid position %q", raw)
		}
		return b, nil
	}
	parts := strings.SplitN(raw, ":", 2)
	if len(parts) != 2 {
		return 0, diagnostic.New(diagnostic.ArgError, "invalid line:col position %q", raw)
	}
	line, e1 := strconv.Atoi(parts[0])
	col, e2 := strconv.Atoi(parts[1])
	if e1 != nil || e2 != nil {
		return 0, diagnostic.New(diagnostic.ArgError, "invalid line:col position %q", raw)
	}
	charOff := rec.Mapper.LineColToOffset(line, col)
	return rec.Mapper.CharToByte(charOff), nil
}

func (a App) runExtract(f *flags, rec provider.FileRecord, src []byte, raw string, isVar bool) int {
	if isVar {
		matches, derr := a.resolveVariables(f, rec, raw)
		if derr != nil {
			return a.fail(f.jsonOut, derr)
		}
		var snippets []string
		for _, m := range matches {
			snippets = append(snippets, string(src[m.Span.ByteStart:m.Span.ByteEnd]))
		}
		return a.emit(f, snippets)
	}
	matches, derr := a.resolveFunctions(f, rec, raw)
	if derr != nil {
		return a.fail(f.jsonOut, derr)
	}
	var snippets []string
	for _, m := range matches {
		snippets = append(snippets, string(src[m.Span.ByteStart:m.Span.ByteEnd]))
	}
	return a.emit(f, snippets)
}

// runExtractHashes resolves each comma-separated hash independently
// against both the function and variable inventories and extracts its
// source snippet, preserving the input order so batch callers can zip
// hashes back to snippets positionally.
func (a App) runExtractHashes(f *flags, rec provider.FileRecord, src []byte) int {
	hashes := strings.Split(f.extractHashes, ",")
	var snippets []string
	for _, h := range hashes {
		h = strings.TrimSpace(h)
		sel, perr := selector.Parse("hash:" + h)
		if perr != nil {
			return a.fail(f.jsonOut, perr.(*diagnostic.Error))
		}
		if fnMatches, derr := selector.Resolve(rec.Inventory.Functions, sel, selector.Options{AllowMultiple: f.allowMultiple}); derr == nil {
			for _, m := range fnMatches {
				snippets = append(snippets, string(src[m.Span.ByteStart:m.Span.ByteEnd]))
			}
			continue
		}
		varMatches, derr := selector.Resolve(rec.Inventory.Variables, sel, selector.Options{AllowMultiple: f.allowMultiple})
		if derr != nil {
			return a.fail(f.jsonOut, derr)
		}
		for _, m := range varMatches {
			snippets = append(snippets, string(src[m.Span.ByteStart:m.Span.ByteEnd]))
		}
	}
	return a.emit(f, snippets)
}

func (a App) runContext(f *flags, rec provider.FileRecord, src []byte, raw string, isVar bool) int {
	var sp struct{ ByteStart, ByteEnd int }
	if isVar {
		matches, derr := a.resolveVariables(f, rec, raw)
		if derr != nil {
			return a.fail(f.jsonOut, derr)
		}
		sp.ByteStart, sp.ByteEnd = matches[0].Span.ByteStart, matches[0].Span.ByteEnd
	} else {
		matches, derr := a.resolveFunctions(f, rec, raw)
		if derr != nil {
			return a.fail(f.jsonOut, derr)
		}
		sp.ByteStart, sp.ByteEnd = matches[0].Span.ByteStart, matches[0].Span.ByteEnd
	}
	start, end := sp.ByteStart, sp.ByteEnd
	if f.contextEnclosing == "function" || f.contextEnclosing == "class" {
		if es, ee, ok := enclosingSpan(rec.Root, start, end, f.contextEnclosing == "class"); ok {
			start, end = es, ee
		}
	}
	before, after := expandContext(src, start, end, f.contextBefore, f.contextAfter)
	snippet := string(src[before:after])
	p := plan.New("context", raw, f.variableTarget, plan.Now(), nil, f.allowMultiple).
		WithContext(plan.ContextInfo{
			PaddingRequested: f.contextBefore + f.contextAfter,
			PaddingApplied:   (start - before) + (after - end),
			Enclosing:        f.contextEnclosing, SnippetStart: before, SnippetEnd: after,
		})
	if f.emitPlan != "" {
		p.WriteFile(f.emitPlan)
	}
	return a.emit(f, map[string]any{"snippet": snippet, "plan": p})
}

// enclosingSpan walks the parsed tree down to the deepest node covering
// [start,end), then back up through Parent pointers to the nearest
// ancestor (excluding the target's own node) that is function-like, or
// class-like when wantClass is set, returning its byte span.
func enclosingSpan(root *jsast.Node, start, end int, wantClass bool) (int, int, bool) {
	target := deepestCovering(root, start, end)
	if target == nil {
		return 0, 0, false
	}
	for n := target.Parent; n != nil; n = n.Parent {
		if wantClass && jsast.IsClassLike(n) {
			return n.Pos(), n.End(), true
		}
		if !wantClass && jsast.IsFunctionLike(n) {
			return n.Pos(), n.End(), true
		}
	}
	return 0, 0, false
}

func deepestCovering(n *jsast.Node, start, end int) *jsast.Node {
	if n == nil || n.Pos() > start || n.End() < end {
		return n
	}
	best := n
	n.ForEachChild(func(c *jsast.Node) bool {
		if c.Pos() <= start && c.End() >= end {
			if deeper := deepestCovering(c, start, end); deeper != nil {
				best = deeper
			}
		}
		return false
	})
	return best
}

// expandContext walks outward by line count, clamped to the source's
// bounds, implementing --context-before/--context-after in terms of
// newline-delimited lines rather than raw byte counts.
func expandContext(src []byte, start, end, before, after int) (int, int) {
	s := start
	for n := 0; n < before && s > 0; {
		s--
		if s == 0 || src[s-1] == '\n' {
			n++
		}
	}
	e := end
	for n := 0; n < after && e < len(src); {
		if e < len(src) && src[e] == '\n' {
			n++
		}
		e++
	}
	return s, e
}

func (a App) runReplace(f *flags, rec provider.FileRecord, src []byte, raw string, isVar bool) int {
	replacement, derr := resolveReplacementText(f)
	if derr != nil {
		return a.fail(f.jsonOut, derr)
	}
	if f.rename != "" {
		if rerr := rename.ValidateIdentifier(f.rename); rerr != nil {
			return a.fail(f.jsonOut, rerr)
		}
		replacement = f.rename
	}

	var target editor.Target
	var kindName string
	if isVar {
		matches, derr := a.resolveVariables(f, rec, raw)
		if derr != nil {
			return a.fail(f.jsonOut, derr)
		}
		target = matches[0]
		kindName = matches[0].EntryKindName()
	} else {
		matches, derr := a.resolveFunctions(f, rec, raw)
		if derr != nil {
			return a.fail(f.jsonOut, derr)
		}
		target = matches[0]
		kindName = matches[0].EntryKindName()
	}

	req := editor.Request{
		FilePath: f.file, Source: src, Mapper: rec.Mapper, TypeScript: a.Provider.TypeScript,
		Target: target, Replacement: replacement, Force: f.force, Fix: f.fix,
		IsRename: f.rename != "", IsWholeEntity: kindName != "",
	}
	if f.expectHash != "" {
		req.ExpectHash = f.expectHash
	}
	if f.expectSpan != "" {
		sp, perr := parseExpectSpan(f.expectSpan)
		if perr != nil {
			return a.fail(f.jsonOut, perr)
		}
		req.ExpectSpan = &sp
	}
	if f.replaceRange != "" {
		var rStart, rEnd int
		if _, err := fmt.Sscanf(f.replaceRange, "%d:%d", &rStart, &rEnd); err != nil {
			return a.fail(f.jsonOut, diagnostic.New(diagnostic.ArgError, "invalid --replace-range %q", f.replaceRange))
		}
		req.ReplaceRange = &[2]int{rStart, rEnd}
	}

	result, derr2 := editor.Apply(req)
	if derr2 != nil {
		return a.fail(f.jsonOut, derr2)
	}

	p := plan.New("replace", raw, f.variableTarget, plan.Now(), nil, f.allowMultiple).WithGuard(result.Report)
	if f.emitPlan != "" {
		p.WriteFile(f.emitPlan)
	}
	payload := map[string]any{"guard": result.Report, "written": result.Written, "plan": p}
	if f.emitDiff {
		payload["diff"] = result.Diff
	}
	return a.emit(f, payload)
}

func resolveReplacementText(f *flags) (string, *diagnostic.Error) {
	switch {
	case f.withCode != "":
		return unescapeInline(f.withCode)
	case f.with != "":
		b, err := os.ReadFile(f.with)
		if err != nil {
			return "", diagnostic.New(diagnostic.IOError, "reading %s: %v", f.with, err)
		}
		return string(b), nil
	case f.withFile != "":
		dir := strings.TrimSuffix(f.file, "/"+lastSegment(f.file))
		b, err := os.ReadFile(dir + "/" + f.withFile)
		if err != nil {
			return "", diagnostic.New(diagnostic.IOError, "reading %s: %v", f.withFile, err)
		}
		return string(b), nil
	case f.rename != "":
		return "", nil // identifier substitution, filled in by the caller
	default:
		return "", diagnostic.New(diagnostic.ArgError, "one of --with, --with-file, --with-code, or --rename is required")
	}
}

func lastSegment(path string) string {
	parts := strings.Split(path, "/")
	return parts[len(parts)-1]
}

// unescapeInline handles the shell-passthrough escape conventions
// --with-code accepts: `\"` becomes `"`, `\\` becomes `\`, and any other
// backslash run (e.g. a Windows path fragment) is preserved verbatim.
func unescapeInline(s string) (string, *diagnostic.Error) {
	if s == "" {
		return "", diagnostic.New(diagnostic.InvalidReplacement, "--with-code value is empty")
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			switch s[i+1] {
			case '"':
				b.WriteByte('"')
				i++
				continue
			case '\\':
				b.WriteByte('\\')
				i++
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String(), nil
}

func parseExpectSpan(raw string) (posmap.Span, *diagnostic.Error) {
	isByte := strings.HasPrefix(raw, "byte:")
	body := strings.TrimPrefix(raw, "byte:")
	parts := strings.SplitN(body, ":", 2)
	if len(parts) != 2 {
		return posmap.Span{}, diagnostic.New(diagnostic.ArgError, "invalid --expect-span %q", raw)
	}
	s, e1 := strconv.Atoi(parts[0])
	e, e2 := strconv.Atoi(parts[1])
	if e1 != nil || e2 != nil {
		return posmap.Span{}, diagnostic.New(diagnostic.ArgError, "invalid --expect-span %q", raw)
	}
	if isByte {
		return posmap.Span{ByteStart: s, ByteEnd: e}, nil
	}
	return posmap.Span{Start: s, End: e}, nil
}
