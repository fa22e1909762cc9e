// Package testhelp collects the small test-support helpers every
// package's _test.go files share: dedenting multi-line fixture source,
// a colourised cmp.Diff for assertion failures, and snapshotting an
// edit's before/after/guard-report triple. Adapted from the Astro
// compiler's internal/test_utils package, retargeted from HTML/JS/CSS
// output snapshots to source-surgery before/after/guard snapshots.
package testhelp

import (
	"fmt"
	"strings"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/google/go-cmp/cmp"
	"github.com/lithammer/dedent"
)

// Dedent strips common leading whitespace and collapses excess blank
// lines, the shape every inline fixture string in this engine's tests is
// written in.
func Dedent(input string) string {
	return dedent.Dedent(
		strings.ReplaceAll(
			strings.TrimLeft(
				strings.TrimRight(input, " \n\r"),
				"\r\n"),
			"\n\n\n", "\n\n"),
	)
}

// ANSIDiff renders a cmp.Diff with red/green ANSI colouring for
// terminal-readable test failures.
func ANSIDiff(x, y interface{}, opts ...cmp.Option) string {
	escapeCode := func(code int) string { return fmt.Sprintf("\x1b[%dm", code) }
	diff := cmp.Diff(x, y, opts...)
	if diff == "" {
		return ""
	}
	lines := strings.Split(diff, "\n")
	for i, s := range lines {
		switch {
		case strings.HasPrefix(s, "-"):
			lines[i] = escapeCode(31) + s + escapeCode(0)
		case strings.HasPrefix(s, "+"):
			lines[i] = escapeCode(32) + s + escapeCode(0)
		}
	}
	return strings.Join(lines, "\n")
}

// RedactTestName strips characters that can't appear in a filename from
// a test case name, for use as a snapshot file name.
func RedactTestName(testCaseName string) string {
	replacer := strings.NewReplacer(
		"#", "_", "<", "_", ">", "_", ")", "_", "(", "_", ":", "_",
		" ", "_", "'", "_", "\"", "_", "@", "_", "`", "_", "+", "_",
	)
	return replacer.Replace(testCaseName)
}

// EditSnapshotOptions describes one replace/rename scenario to snapshot:
// the source before the edit, the source after, and a rendered guard
// report so a snapshot review shows exactly what the pipeline decided.
type EditSnapshotOptions struct {
	Testing      *testing.T
	TestCaseName string
	Selector     string
	Before       string
	After        string
	GuardReport  string
	FolderName   string
}

// MakeEditSnapshot snapshots a source-surgery scenario in one block so a
// reviewer can see selector, before, after, and guard outcome together.
func MakeEditSnapshot(options *EditSnapshotOptions) {
	folderName := "__snapshots__"
	if options.FolderName != "" {
		folderName = options.FolderName
	}
	s := snaps.WithConfig(
		snaps.Filename(RedactTestName(options.TestCaseName)),
		snaps.Dir(folderName),
	)

	var b strings.Builder
	fmt.Fprintf(&b, "## Selector\n\n%s\n\n", options.Selector)
	fmt.Fprintf(&b, "## Before\n\n```js\n%s\n```\n\n", Dedent(options.Before))
	fmt.Fprintf(&b, "## After\n\n```js\n%s\n```\n\n", Dedent(options.After))
	fmt.Fprintf(&b, "## Guard\n\n```\n%s\n```", options.GuardReport)

	s.MatchSnapshot(options.Testing, b.String())
}
