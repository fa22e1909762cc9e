// Command ts-scan is the TypeScript discovery CLI. It runs the same
// internal/cliapp dispatcher as ts-edit with the TypeScript provider, so
// every operation, the write-capable ones included, is available.
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
