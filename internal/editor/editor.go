// Package editor implements the interactive line editor: a prompt loop
// that accepts numbered BASIC source lines (stored, deleted, or
// replacing earlier text) and an immediate-mode command set (RUN, LIST,
// LOAD, SAVE, NEW, RENUM, DEBUG, SETGOSUB, COMPILE, HELP, QUIT), the
// same two-mode design as edit.c/cmd.c.
package editor

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"unicode"

	"github.com/jorgicor/bas55/internal/compiler"
	"github.com/jorgicor/bas55/internal/session"
)

// maxLineChars bounds one line of input, matching LINE_MAX_CHARS.
const maxLineChars = 80

// LineNumMax is the largest accepted BASIC line number.
const LineNumMax = 99999

var helpText = []string{
	"RUN            Compile and run the current program.",
	"COMPILE or C   Compile the current program.",
	"LIST           List the program.",
	"LOAD \"FILE\"    Load a source program from FILE.",
	"SAVE \"FILE\"    Save the current program to FILE.",
	"NEW            Start a new program discarding the current one.",
	"RENUM          Change the line numbers to be evenly spaced.",
	"DEBUG ON/OFF   Use DEBUG ON to enable debug mode, DEBUG OFF to disable it.",
	"SETGOSUB N     Allow for N GOSUB calls without RETURN.",
	"QUIT           Quit the editor.",
}

// Editor drives one interactive session: reading lines from in, storing
// or running them, and reporting to out/errOut.
type Editor struct {
	sess *session.Session
	in   *bufio.Reader
	out  io.Writer
	err  io.Writer
	brk  *atomic.Bool
}

// New returns an Editor over a fresh Session.
func New(in io.Reader, out, errOut io.Writer, brk *atomic.Bool) *Editor {
	return &Editor{
		sess: session.New(),
		in:   bufio.NewReader(in),
		out:  out,
		err:  errOut,
		brk:  brk,
	}
}

// Session exposes the underlying session, e.g. so a single-shot run can
// reuse the same compile/run path the editor's RUN command uses.
func (e *Editor) Session() *session.Session { return e.sess }

func (e *Editor) printReady() { fmt.Fprintln(e.err, "Ready.") }

// Loop runs the read-eval-print cycle until EOF on in or a QUIT command.
func (e *Editor) Loop(ctx context.Context) {
	fmt.Fprintln(e.err, "Type HELP for a list of allowed commands.")
	e.printReady()

	for {
		line, err := e.in.ReadString('\n')
		if err != nil && line == "" {
			return
		}

		line = strings.TrimRight(line, "\r\n")
		if len(line) > maxLineChars {
			fmt.Fprintln(e.err, compiler.Diagnostic{Severity: compiler.SeverityError, Code: compiler.ErrLineTooLong, Line: 0, Column: -1}.Error())
			continue
		}

		start := strings.TrimLeftFunc(line, unicode.IsSpace)
		trimmed := strings.TrimRightFunc(start, unicode.IsSpace)
		if trimmed == "" {
			continue
		}

		if unicode.IsDigit(rune(trimmed[0])) {
			e.handleSourceLine(trimmed)
		} else {
			if !e.handleCommand(ctx, trimmed) {
				return
			}
			e.printReady()
		}
	}
}

// handleSourceLine parses a leading line number and stores, replaces, or
// (if nothing follows the number) deletes that line, matching edit.c's
// numbered-line handling.
func (e *Editor) handleSourceLine(line string) {
	i := 0
	for i < len(line) && unicode.IsDigit(rune(line[i])) {
		i++
	}

	n, err := strconv.Atoi(line[:i])
	if err != nil || n <= 0 || n > LineNumMax {
		fmt.Fprintln(e.err, diagErr(compiler.ErrInvalLineNum))
		return
	}

	rest := strings.TrimLeftFunc(line[i:], unicode.IsSpace)
	if rest == "" {
		e.sess.DeleteLine(n)
		return
	}

	e.sess.PutLine(n, strings.ToUpper(rest))
}

func diagErr(code compiler.Code) string {
	return compiler.Diagnostic{Severity: compiler.SeverityError, Code: code, Line: 0, Column: -1}.Error()
}

// handleCommand dispatches one immediate-mode command line. It returns
// false if the session should end, which only QUIT does.
func (e *Editor) handleCommand(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	name := strings.ToUpper(fields[0])
	args := fields[1:]

	switch name {
	case "RUN":
		e.cmdRun(ctx)
	case "COMPILE", "C":
		e.cmdCompile()
	case "LIST":
		e.cmdList()
	case "LOAD":
		e.cmdLoad(args)
	case "SAVE":
		e.cmdSave(args)
	case "NEW":
		e.sess.Clear()
	case "RENUM":
		if err := e.sess.Renumber(); err != nil {
			fmt.Fprintln(e.err, err)
		}
	case "DEBUG":
		e.cmdDebug(args)
	case "SETGOSUB":
		e.cmdSetGosub(args)
	case "HELP":
		for _, h := range helpText {
			fmt.Fprintln(e.out, h)
		}
	case "QUIT":
		return false
	default:
		fmt.Fprintln(e.err, diagErr(compiler.ErrSyntax))
	}

	return true
}

func (e *Editor) cmdRun(ctx context.Context) {
	e.sess.Run(ctx, e.out, e.in, e.err, e.brk)
}

func (e *Editor) cmdCompile() {
	res := e.sess.Compile()
	for _, d := range res.Diagnostics {
		fmt.Fprintln(e.err, d.Error())
	}
}

func (e *Editor) cmdList() {
	for _, ln := range e.sess.SourceLines() {
		fmt.Fprintf(e.out, "%d %s\n", ln.Number, ln.Text)
	}
}

func (e *Editor) cmdLoad(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(e.err, diagErr(compiler.ErrSyntax))
		return
	}

	name := strings.Trim(args[0], "\"")
	f, err := os.Open(name)
	if err != nil {
		fmt.Fprintln(e.err, err)
		return
	}
	defer f.Close()

	if err := e.sess.LoadReader(f); err != nil {
		fmt.Fprintln(e.err, err)
		return
	}

	fmt.Fprintln(e.out, name)
}

func (e *Editor) cmdSave(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(e.err, diagErr(compiler.ErrSyntax))
		return
	}

	name := strings.Trim(args[0], "\"")
	f, err := os.Create(name)
	if err != nil {
		fmt.Fprintln(e.err, err)
		return
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, ln := range e.sess.SourceLines() {
		fmt.Fprintf(w, "%d %s\n", ln.Number, ln.Text)
	}
	w.Flush()

	fmt.Fprintln(e.out, name)
}

func (e *Editor) cmdDebug(args []string) {
	if len(args) == 0 {
		state := "OFF"
		if e.sess.DebugMode() {
			state = "ON"
		}
		fmt.Fprintln(e.out, "DEBUG MODE "+state)
		return
	}

	switch strings.ToUpper(args[0]) {
	case "ON":
		e.sess.SetDebugMode(true)
	case "OFF":
		e.sess.SetDebugMode(false)
	default:
		fmt.Fprintln(e.err, diagErr(compiler.ErrSyntax))
	}
}

func (e *Editor) cmdSetGosub(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(e.err, diagErr(compiler.ErrSyntax))
		return
	}

	n, err := strconv.Atoi(args[0])
	if err != nil || n <= 0 {
		fmt.Fprintln(e.err, diagErr(compiler.ErrSyntax))
		return
	}

	e.sess.SetGosubCapacity(n)
}
