// Package provider defines the language-provider seam that lets the same
// selector/editor/workspace core drive both the js-* and ts-* binaries:
// a provider only differs in which file extensions it claims and whether
// it asks internal/jsparse to enable TypeScript-only grammar.
package provider

import (
	"path/filepath"
	"strings"

	"github.com/tsnjs/tsnjs/internal/jsast"
	"github.com/tsnjs/tsnjs/internal/jsparse"
	"github.com/tsnjs/tsnjs/internal/posmap"
	"github.com/tsnjs/tsnjs/internal/symbols"
)

// Provider is the language-specific behaviour every cmd/*-edit and
// cmd/*-scan binary is built around.
type Provider struct {
	Name       string
	TypeScript bool
	Extensions []string // in resolution-preference order
}

// JS is the plain JavaScript provider: .js, .cjs, .mjs, .jsx.
var JS = Provider{
	Name:       "javascript",
	TypeScript: false,
	Extensions: []string{".js", ".mjs", ".cjs", ".jsx"},
}

// TS is the TypeScript provider: .ts, .tsx, .cts, .mts, plus the
// declaration-file extension (parsed the same way; ambient declarations
// are a subset of the ordinary grammar this parser already accepts).
var TS = Provider{
	Name:       "typescript",
	TypeScript: true,
	Extensions: []string{".ts", ".tsx", ".cts", ".mts", ".d.ts"},
}

// FromEnv selects JS or TS based on an env var value ("typescript"
// selects TS; anything else, including unset, selects JS), matching the
// TSNJS_SCAN_LANGUAGE / TSNJS_EDIT_LANGUAGE contract.
func FromEnv(value string) Provider {
	if strings.EqualFold(value, "typescript") {
		return TS
	}
	return JS
}

// ClaimsExtension reports whether path's extension is one this provider
// parses, used by the workspace scanner to decide which files to visit
// and by import-resolution to try candidate extensions in order.
func (p Provider) ClaimsExtension(path string) bool {
	lower := strings.ToLower(path)
	for _, ext := range p.Extensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// ResolveCandidateExtensions returns the file paths to try, in order,
// when resolving an extensionless relative import specifier (e.g.
// `./util` against the TS provider tries util.ts, util.tsx, ... before
// falling back to util/index.ts).
func (p Provider) ResolveCandidateExtensions(base string) []string {
	var candidates []string
	for _, ext := range p.Extensions {
		candidates = append(candidates, base+ext)
	}
	for _, ext := range p.Extensions {
		candidates = append(candidates, filepath.Join(base, "index"+ext))
	}
	return candidates
}

// FileRecord is one workspace-scanned file: its parsed inventory plus
// the parse error, if any (a per-file error does not abort the scan).
type FileRecord struct {
	Path      string
	Source    []byte
	Mapper    *posmap.Mapper
	Root      *jsast.Node
	Inventory symbols.Inventory
	ParseErr  error
}

// ParseSource parses source under this provider's grammar and collects
// its symbol inventory in one step, the unit of work both the workspace
// scanner and the single-file CLI operations perform per file.
func (p Provider) ParseSource(fileName string, source []byte) FileRecord {
	rec := FileRecord{Path: fileName, Source: source, Mapper: posmap.New(source)}
	root, err := jsparse.Parse(fileName, source, jsparse.Options{TypeScript: p.TypeScript})
	if err != nil {
		rec.ParseErr = err
		return rec
	}
	rec.Root = root
	rec.Inventory = symbols.Collect(root, source, rec.Mapper)
	return rec
}
