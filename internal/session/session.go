// Package session ties the editor's in-memory line list to the
// compiler and VM: it recompiles on demand and runs the result,
// mirroring the reference interpreter's s_program_ok/s_source_changed
// bookkeeping in line.c with a boolean dirty flag instead of globals.
package session

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/jorgicor/bas55/internal/compiler"
	"github.com/jorgicor/bas55/internal/vm"
)

// defaultGosubCapacity mirrors the reference interpreter's
// s_default_gosub_stack_capacity, exposed to SETGOSUB.
const defaultGosubCapacity = 256

// Session holds the program source, the result of its last compile, and
// the run-time options (debug mode, GOSUB stack size) the editor's
// commands can change.
type Session struct {
	lines map[int]string
	dirty bool

	debug    bool
	gosubCap int

	result compiler.Result
}

// New returns an empty Session, as NEW leaves it.
func New() *Session {
	return &Session{
		lines:    make(map[int]string),
		gosubCap: defaultGosubCapacity,
	}
}

// SetDebugMode turns the VM's uninitialized-variable warnings on or off.
func (s *Session) SetDebugMode(on bool) { s.debug = on }

// DebugMode reports the current debug-mode setting.
func (s *Session) DebugMode() bool { return s.debug }

// SetGosubCapacity overrides the GOSUB return-address stack's capacity,
// the effect of SETGOSUB.
func (s *Session) SetGosubCapacity(n int) { s.gosubCap = n }

// PutLine stores or replaces the text of one numbered program line,
// marking the program for recompilation, matching add_line.
func (s *Session) PutLine(number int, text string) {
	s.lines[number] = text
	s.dirty = true
}

// DeleteLine removes a numbered line if it exists, matching del_line.
func (s *Session) DeleteLine(number int) {
	if _, ok := s.lines[number]; ok {
		delete(s.lines, number)
		s.dirty = true
	}
}

// Clear discards every line, matching the NEW command.
func (s *Session) Clear() {
	s.lines = make(map[int]string)
	s.dirty = true
	s.result = compiler.Result{}
}

// LoadReader discards the current program and replaces it with the
// numbered lines read from r, one BASIC statement per text line,
// matching LOAD reading a .BAS file from disk.
func (s *Session) LoadReader(r io.Reader) error {
	sc := bufio.NewScanner(r)
	lines := make(map[int]string)

	for sc.Scan() {
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}

		i := 0
		for i < len(text) && text[i] >= '0' && text[i] <= '9' {
			i++
		}

		n, err := strconv.Atoi(text[:i])
		if err != nil {
			return fmt.Errorf("session: invalid line %q", text)
		}

		lines[n] = strings.TrimSpace(text[i:])
	}
	if err := sc.Err(); err != nil {
		return err
	}

	s.lines = lines
	s.dirty = true
	s.result = compiler.Result{}
	return nil
}

// SourceLines returns every stored line in ascending line-number order.
func (s *Session) SourceLines() []compiler.SourceLine {
	nums := make([]int, 0, len(s.lines))
	for n := range s.lines {
		nums = append(nums, n)
	}
	sort.Ints(nums)

	out := make([]compiler.SourceLine, len(nums))
	for i, n := range nums {
		out[i] = compiler.SourceLine{Number: n, Text: s.lines[n]}
	}
	return out
}

// Renumber reassigns every line a fresh, evenly spaced number and
// rewrites every GO TO/GO SUB target and every THEN line number to
// match, matching renum_lines. A target number that names no existing
// line is left as it is; Renumber always returns nil.
func (s *Session) Renumber() error {
	old := s.SourceLines()
	if len(old) == 0 {
		return nil
	}

	table := make(map[int]int, len(old))
	n := 10
	for _, ln := range old {
		table[ln.Number] = n
		n += 10
	}

	renumbered := make(map[int]string, len(old))
	for _, ln := range old {
		renumbered[table[ln.Number]] = rewriteLineRefs(ln.Text, table)
	}

	s.lines = renumbered
	s.dirty = true
	return nil
}

// Compile recompiles the stored source if it has changed since the last
// compile, and returns the diagnostics from whichever compile is current.
func (s *Session) Compile() compiler.Result {
	if s.dirty {
		s.result = compiler.Compile(s.SourceLines())
		s.dirty = false
	}
	return s.result
}

// Run compiles the program if the source changed since the last compile
// and executes it from the start, matching run_cmd. The VM rewinds the
// DATA cursor and resets the string pool at the start of every run.
func (s *Session) Run(ctx context.Context, out io.Writer, in io.Reader, errOut io.Writer, brk *atomic.Bool) error {
	res := s.Compile()
	if !res.OK {
		for _, d := range res.Diagnostics {
			fmt.Fprintln(errOut, d.Error())
		}
		return ErrCompile
	}

	for _, d := range res.Diagnostics {
		if d.Severity == compiler.SeverityWarning {
			fmt.Fprintln(errOut, d.Error())
		}
	}

	machine := vm.New(res.Program, out, in, errOut, s.debug, brk)
	machine.SetGosubCapacity(s.gosubCap)

	return machine.Run(ctx)
}

// ErrCompile is returned by Run when the program failed to compile.
var ErrCompile = compileError{}

type compileError struct{}

func (compileError) Error() string { return "session: program has compile errors" }
