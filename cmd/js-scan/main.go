// Command js-scan is the JavaScript discovery CLI. It runs the same
// internal/cliapp dispatcher as js-edit, so every operation, the
// write-capable ones included, is available; it differs only in reading
// its provider from TSNJS_SCAN_LANGUAGE.
package main

import (
	"os"

	"github.com/tsnjs/tsnjs/internal/cliapp"
	"github.com/tsnjs/tsnjs/internal/provider"
)

func main() {
	app := cliapp.App{
		Provider: provider.FromEnv(os.Getenv("TSNJS_SCAN_LANGUAGE")),
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
	}
	os.Exit(app.Run(os.Args[1:]))
}
