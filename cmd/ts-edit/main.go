// Command ts-edit is the TypeScript source-surgery CLI: locate,
// extract, replace, and rename functions/variables/constructors/types by
// selector, guarded by the six-stage pipeline in internal/editor.
package main

import (
	"os"

	"github.com/tsnjs/tsnjs/internal/cliapp"
	"github.com/tsnjs/tsnjs/internal/provider"
)

func main() {
	app := cliapp.App{
		Provider: provider.TS,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
	}
	os.Exit(app.Run(os.Args[1:]))
}
