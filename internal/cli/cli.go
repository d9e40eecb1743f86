// Package cli implements bas55's command line: a single flag set (no
// sub-commands, since the reference interpreter is one program with one
// mode of operation) that either runs a .BAS file non-interactively or,
// given no file, starts the interactive editor.
package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync/atomic"

	"github.com/jorgicor/bas55/internal/editor"
	"github.com/jorgicor/bas55/internal/log"
)

// Version is the reported program version, set by main via -ldflags in
// a release build.
var Version = "dev"

const usage = `Usage: %s [OPTION]... [FILE.BAS]

Run FILE.BAS conforming to the Minimal BASIC programming language as
defined by the ECMA-55 standard.

If FILE.BAS is not specified, start in editor mode.

Options:
  -h, --help         Display this help and exit.
  -v, --version      Output version information and exit.
  -l, --license      Display the license text and exit.
  -g n, --gosub n    Allocate n entries for the GOSUB stack.
  -d, --debug        Enable debug mode.

Examples:
  %[1]s              Start in editor mode.
  %[1]s prog.bas     Run prog.bas.
`

const license = `bas55, an implementation of the Minimal BASIC programming language.

This program is free software: you can redistribute it and/or modify it
under the terms of the GNU General Public License as published by the
Free Software Foundation, either version 3 of the License, or (at your
option) any later version.

This program is distributed in the hope that it will be useful, but
WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the GNU General
Public License for more details.
`

// Run parses argv and executes bas55's single mode of operation. It
// returns the process exit code.
func Run(argv []string, out, errOut io.Writer) int {
	fs := flag.NewFlagSet(argv[0], flag.ContinueOnError)
	fs.SetOutput(errOut)
	fs.Usage = func() { fmt.Fprintf(errOut, usage, argv[0]) }

	var (
		help    bool
		version bool
		lic     bool
		debug   bool
		gosub   int
	)

	fs.BoolVar(&help, "h", false, "display help and exit")
	fs.BoolVar(&help, "help", false, "display help and exit")
	fs.BoolVar(&version, "v", false, "output version information and exit")
	fs.BoolVar(&version, "version", false, "output version information and exit")
	fs.BoolVar(&lic, "l", false, "display license and exit")
	fs.BoolVar(&lic, "license", false, "display license and exit")
	fs.BoolVar(&debug, "d", false, "enable debug mode")
	fs.BoolVar(&debug, "debug", false, "enable debug mode")
	fs.IntVar(&gosub, "g", 0, "GOSUB stack capacity")
	fs.IntVar(&gosub, "gosub", 0, "GOSUB stack capacity")

	if err := fs.Parse(argv[1:]); err != nil {
		return 1
	}

	switch {
	case help:
		fs.Usage()
		return 0
	case version:
		fmt.Fprintf(out, "bas55 %s\n", Version)
		return 0
	case lic:
		fmt.Fprintln(out, license)
		return 0
	}

	args := fs.Args()
	if len(args) > 1 {
		fmt.Fprintln(errOut, "bas55: wrong number of arguments")
		return 1
	}

	logger := log.NewFormattedLogger(errOut)
	log.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	brk := &atomic.Bool{}
	go watchBreak(ctx, brk)

	if len(args) == 0 {
		ed := editor.New(os.Stdin, out, errOut, brk)
		if debug {
			ed.Session().SetDebugMode(true)
		}
		if gosub > 0 {
			ed.Session().SetGosubCapacity(gosub)
		}
		ed.Loop(ctx)
		return 0
	}

	return runFile(ctx, args[0], out, errOut, debug, gosub, brk)
}

func runFile(ctx context.Context, path string, out, errOut io.Writer, debug bool, gosub int, brk *atomic.Bool) int {
	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintln(errOut, "bas55:", err)
		return 1
	}
	defer f.Close()

	ed := editor.New(nil, out, errOut, brk)
	sess := ed.Session()
	if err := sess.LoadReader(f); err != nil {
		fmt.Fprintln(errOut, "bas55:", err)
		return 1
	}

	sess.SetDebugMode(debug)
	if gosub > 0 {
		sess.SetGosubCapacity(gosub)
	}

	if err := sess.Run(ctx, out, os.Stdin, errOut, brk); err != nil {
		return 1
	}

	return 0
}

// watchBreak raises the cooperative break flag on SIGINT, so a running
// program can report "* break at N *" and unwind cleanly rather than the
// process simply dying, matching the reference interpreter's Ctrl-C
// handling in editor and run mode alike.
func watchBreak(ctx context.Context, brk *atomic.Bool) {
	<-ctx.Done()
	brk.Store(true)
}
