package cliapp_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tsnjs/tsnjs/internal/cliapp"
	"github.com/tsnjs/tsnjs/internal/provider"
)

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.js")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newApp() (cliapp.App, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return cliapp.App{Provider: provider.JS, Stdout: &out, Stderr: &errOut}, &out, &errOut
}

func TestRunListFunctions(t *testing.T) {
	path := writeTemp(t, "export function alpha() { return 1; }")
	app, out, _ := newApp()
	code := app.Run([]string{"-file", path, "-list-functions", "-json"})
	if code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}
	if !strings.Contains(out.String(), "exports.alpha") {
		t.Errorf("output missing canonical name: %s", out.String())
	}
}

func TestRunMissingFileFails(t *testing.T) {
	app, _, errOut := newApp()
	code := app.Run([]string{"-list-functions"})
	if code == 0 {
		t.Fatal("expected non-zero exit code when --file is missing")
	}
	if !strings.Contains(errOut.String(), "--file") {
		t.Errorf("expected error to mention --file, got: %s", errOut.String())
	}
}

func TestRunRenameWritesFile(t *testing.T) {
	path := writeTemp(t, "export function alpha() { return 'alpha'; }")
	app, _, _ := newApp()
	code := app.Run([]string{"-file", path, "-replace", "exports.alpha", "-rename", "alphaRenamed", "-fix"})
	if code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(got), "alphaRenamed") {
		t.Errorf("file was not renamed: %s", got)
	}
}

func TestRunExtractHashesRoundTrip(t *testing.T) {
	path := writeTemp(t, "export function alpha() { return 1; }")
	app, out, _ := newApp()
	if code := app.Run([]string{"-file", path, "-list-functions", "-json"}); code != 0 {
		t.Fatalf("list exit code = %d", code)
	}
	var entries []map[string]any
	if err := json.Unmarshal(out.Bytes(), &entries); err != nil {
		t.Fatalf("unmarshal list output: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	hash, _ := entries[0]["Hash"].(string)
	if hash == "" {
		t.Fatalf("expected a non-empty Hash field, got %+v", entries[0])
	}

	out.Reset()
	code := app.Run([]string{"-file", path, "-extract-hashes", hash, "-json"})
	if code != 0 {
		t.Fatalf("extract-hashes exit code = %d", code)
	}
	if !strings.Contains(out.String(), "return 1") {
		t.Errorf("extracted snippet missing expected body: %s", out.String())
	}
}

func TestRunUnknownOperationFails(t *testing.T) {
	path := writeTemp(t, "export function alpha() {}")
	app, _, _ := newApp()
	code := app.Run([]string{"-file", path})
	if code == 0 {
		t.Fatal("expected non-zero exit code when no operation selector is given")
	}
}
