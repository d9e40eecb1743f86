// bas55 is an implementation of the Minimal BASIC programming language
// as defined by the ECMA-55 standard: compile and run a .BAS file
// non-interactively, or start the interactive line editor.
package main

import (
	"os"

	"github.com/jorgicor/bas55/internal/cli"
)

func main() {
	os.Exit(cli.Run(os.Args, os.Stdout, os.Stderr))
}
