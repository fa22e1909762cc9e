// Command js-edit is the JavaScript source-surgery CLI: locate,
// extract, replace, and rename functions/variables/constructors by
// selector, guarded by the six-stage pipeline in internal/editor.
package main

import (
	"os"

	"github.com/tsnjs/tsnjs/internal/cliapp"
	"github.com/tsnjs/tsnjs/internal/provider"
)

func main() {
	app := cliapp.App{
		Provider: provider.FromEnv(os.Getenv("TSNJS_EDIT_LANGUAGE")),
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
	}
	os.Exit(app.Run(os.Args[1:]))
}
