package vm_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/jorgicor/bas55/internal/compiler"
	"github.com/jorgicor/bas55/internal/vm"
)

func compileOK(t *testing.T, src string) *compiler.Program {
	t.Helper()

	var lines []compiler.SourceLine
	for _, raw := range strings.Split(strings.TrimSpace(src), "\n") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		i := 0
		for i < len(raw) && raw[i] >= '0' && raw[i] <= '9' {
			i++
		}
		n := 0
		for _, c := range raw[:i] {
			n = n*10 + int(c-'0')
		}
		lines = append(lines, compiler.SourceLine{Number: n, Text: strings.TrimSpace(raw[i:])})
	}

	res := compiler.Compile(lines)
	if !res.OK {
		for _, d := range res.Diagnostics {
			t.Logf("diag: %s", d.Error())
		}
		t.Fatalf("compile failed for:\n%s", src)
	}
	return res.Program
}

func run(t *testing.T, prog *compiler.Program, stdin string) (string, string) {
	t.Helper()

	var out, errOut bytes.Buffer
	machine := vm.New(prog, &out, strings.NewReader(stdin), &errOut, false, nil)

	err := machine.Run(context.Background())
	if err != nil && err != vm.ErrFatal {
		t.Fatalf("Run: %v", err)
	}
	return out.String(), errOut.String()
}

func TestPrintHello(t *testing.T) {
	prog := compileOK(t, `
		10 PRINT "HELLO, WORLD"
		20 END
	`)

	out, errOut := run(t, prog, "")
	if errOut != "" {
		t.Fatalf("unexpected stderr: %s", errOut)
	}
	if !strings.Contains(out, "HELLO, WORLD") {
		t.Fatalf("out = %q", out)
	}
}

func TestForNextAccumulates(t *testing.T) {
	prog := compileOK(t, `
		10 LET S = 0
		20 FOR I = 1 TO 5
		30 LET S = S + I
		40 NEXT I
		50 PRINT S
		60 END
	`)

	out, _ := run(t, prog, "")
	if !strings.Contains(out, "15") {
		t.Fatalf("out = %q, want sum 15", out)
	}
}

func TestForNextNegativeStep(t *testing.T) {
	prog := compileOK(t, `
		10 LET N = 0
		20 FOR I = 5 TO 1 STEP -1
		30 LET N = N + 1
		40 NEXT I
		50 PRINT N
		60 END
	`)

	out, _ := run(t, prog, "")
	if !strings.Contains(out, "5") {
		t.Fatalf("out = %q, want 5 iterations", out)
	}
}

func TestInputScalarValid(t *testing.T) {
	prog := compileOK(t, `
		10 INPUT X, Y
		20 PRINT X + Y
		30 END
	`)

	out, errOut := run(t, prog, "3, 4\n")
	if errOut != "" {
		t.Fatalf("unexpected stderr: %s", errOut)
	}
	if !strings.Contains(out, "7") {
		t.Fatalf("out = %q", out)
	}
}

func TestInputRetriesOnBadLine(t *testing.T) {
	prog := compileOK(t, `
		10 INPUT X
		20 PRINT X
		30 END
	`)

	// First line is garbage (not a number), second is valid; INPUT must
	// re-prompt for the whole statement rather than partially accept it.
	out, errOut := run(t, prog, "ABC\n42\n")
	if errOut == "" {
		t.Fatalf("expected a re-prompt warning on stderr")
	}
	if !strings.Contains(out, "42") {
		t.Fatalf("out = %q, want 42 after retry", out)
	}
}

func TestInputTooFewValuesRetries(t *testing.T) {
	prog := compileOK(t, `
		10 INPUT X, Y
		20 PRINT X + Y
		30 END
	`)

	out, errOut := run(t, prog, "1\n1, 2\n")
	if errOut == "" {
		t.Fatalf("expected a re-prompt warning on stderr")
	}
	if !strings.Contains(out, "3") {
		t.Fatalf("out = %q, want 3 after retry", out)
	}
}

func TestInputString(t *testing.T) {
	prog := compileOK(t, `
		10 INPUT A$
		20 PRINT A$
		30 END
	`)

	out, _ := run(t, prog, "HELLO\n")
	if !strings.Contains(out, "HELLO") {
		t.Fatalf("out = %q", out)
	}
}

func TestDivByZeroWarnsAndContinues(t *testing.T) {
	prog := compileOK(t, `
		10 PRINT 1/0
		20 END
	`)

	_, errOut := run(t, prog, "")
	if !strings.Contains(errOut, "division by zero") {
		t.Fatalf("errOut = %q", errOut)
	}
}

func TestArrayIndexOutOfRangeIsFatal(t *testing.T) {
	prog := compileOK(t, `
		10 DIM A(3)
		20 LET A(9) = 1
		30 END
	`)

	_, errOut := run(t, prog, "")
	if !strings.Contains(errOut, "index out of range") {
		t.Fatalf("errOut = %q", errOut)
	}
}

func TestGosubReturn(t *testing.T) {
	prog := compileOK(t, `
		10 LET X = 1
		20 GOSUB 100
		30 PRINT X
		40 GOTO 200
		100 LET X = X + 10
		110 RETURN
		200 END
	`)

	out, _ := run(t, prog, "")
	if !strings.Contains(out, "11") {
		t.Fatalf("out = %q", out)
	}
}

func TestDataReadRestore(t *testing.T) {
	prog := compileOK(t, `
		10 DATA 1, 2, 3
		20 READ A, B
		30 RESTORE
		40 READ C
		50 PRINT A + B + C
		60 END
	`)

	out, _ := run(t, prog, "")
	if !strings.Contains(out, "4") {
		t.Fatalf("out = %q, want A+B+C = 1+2+1 = 4", out)
	}
}

func TestDebugModeWarnsOnUninitVar(t *testing.T) {
	prog := compileOK(t, `
		10 PRINT X
		20 END
	`)

	var out, errOut bytes.Buffer
	machine := vm.New(prog, &out, strings.NewReader(""), &errOut, true, nil)
	if err := machine.Run(context.Background()); err != nil && err != vm.ErrFatal {
		t.Fatalf("Run: %v", err)
	}

	if !strings.Contains(errOut.String(), "uninitialised") {
		t.Fatalf("errOut = %q, want an uninitialised-variable warning", errOut.String())
	}
}
