package compiler_test

import (
	"testing"

	"github.com/jorgicor/bas55/internal/bytecode"
	"github.com/jorgicor/bas55/internal/compiler"
)

func src(pairs ...interface{}) []compiler.SourceLine {
	var lines []compiler.SourceLine
	for i := 0; i < len(pairs); i += 2 {
		lines = append(lines, compiler.SourceLine{
			Number: pairs[i].(int),
			Text:   pairs[i+1].(string),
		})
	}
	return lines
}

func TestCompileSimpleProgram(t *testing.T) {
	res := compiler.Compile(src(
		10, `PRINT "HI"`,
		20, `END`,
	))
	if !res.OK {
		for _, d := range res.Diagnostics {
			t.Logf("diag: %s", d.Error())
		}
		t.Fatal("expected compilation to succeed")
	}
}

func TestCompileMissingEndIsError(t *testing.T) {
	res := compiler.Compile(src(
		10, `PRINT "HI"`,
	))
	if res.OK {
		t.Fatal("expected compilation to fail without an END statement")
	}
}

func TestCompileSyntaxErrorReported(t *testing.T) {
	res := compiler.Compile(src(
		10, `PRINT (`,
		20, `END`,
	))
	if res.OK {
		t.Fatal("expected a syntax error")
	}
	if len(res.Diagnostics) == 0 {
		t.Fatal("expected at least one diagnostic")
	}
	found := false
	for _, d := range res.Diagnostics {
		if d.Severity == compiler.SeverityError {
			found = true
		}
	}
	if !found {
		t.Fatal("expected an error-severity diagnostic")
	}
}

func TestForLoopEmitsForCmpAndNext(t *testing.T) {
	res := compiler.Compile(src(
		10, `FOR I = 1 TO 10`,
		20, `NEXT I`,
		30, `END`,
	))
	if !res.OK {
		for _, d := range res.Diagnostics {
			t.Logf("diag: %s", d.Error())
		}
		t.Fatal("expected compilation to succeed")
	}

	var sawForCmp, sawNext bool
	for _, cell := range res.Program.Code {
		if cell.Kind != bytecode.KindOpcode {
			continue
		}
		switch cell.Op {
		case bytecode.ForCmp:
			sawForCmp = true
		case bytecode.Next:
			sawNext = true
		}
	}
	if !sawForCmp || !sawNext {
		t.Fatalf("expected both ForCmp and Next opcodes in compiled code, got forCmp=%v next=%v", sawForCmp, sawNext)
	}
	if len(res.Program.ForLoops) == 0 {
		t.Fatal("expected at least one registered FOR loop")
	}
}

func TestInputEmitsTwoPassLink(t *testing.T) {
	res := compiler.Compile(src(
		10, `INPUT X`,
		20, `END`,
	))
	if !res.OK {
		for _, d := range res.Diagnostics {
			t.Logf("diag: %s", d.Error())
		}
		t.Fatal("expected compilation to succeed")
	}

	var sawInputNum, sawInputEnd bool
	for _, cell := range res.Program.Code {
		if cell.Kind != bytecode.KindOpcode {
			continue
		}
		switch cell.Op {
		case bytecode.InputNum:
			sawInputNum = true
		case bytecode.InputEnd:
			sawInputEnd = true
		}
	}
	if !sawInputNum || !sawInputEnd {
		t.Fatalf("expected InputNum and InputEnd opcodes, got inputNum=%v inputEnd=%v", sawInputNum, sawInputEnd)
	}
}

func TestUndefinedLineReferenceIsError(t *testing.T) {
	res := compiler.Compile(src(
		10, `GOTO 999`,
		20, `END`,
	))
	if res.OK {
		t.Fatal("expected an error for a GOTO to a nonexistent line")
	}
}

func TestDefaultOptionBaseIsZero(t *testing.T) {
	res := compiler.Compile(src(
		10, `LET A(0) = 5`,
		20, `END`,
	))
	if !res.OK {
		for _, d := range res.Diagnostics {
			t.Logf("diag: %s", d.Error())
		}
		t.Fatal("A(0) must be a valid element with no OPTION BASE statement")
	}
}

func TestDimSizeRespectsOptionBase(t *testing.T) {
	res := compiler.Compile(src(
		10, `OPTION BASE 1`,
		20, `DIM A(10)`,
		30, `END`,
	))
	if !res.OK {
		for _, d := range res.Diagnostics {
			t.Logf("diag: %s", d.Error())
		}
		t.Fatal("expected compilation to succeed")
	}
	desc := res.Program.Vars.ArrayDesc(0)
	if desc.Dim1 != 10 {
		t.Fatalf("DIM A(10) under OPTION BASE 1 should need 10 cells, got Dim1=%d", desc.Dim1)
	}
}

func TestDimZeroUnderOptionBaseOneIsInvalid(t *testing.T) {
	res := compiler.Compile(src(
		10, `OPTION BASE 1`,
		20, `DIM A(0)`,
		30, `END`,
	))
	if res.OK {
		t.Fatal("DIM A(0) under OPTION BASE 1 has no valid element and should be rejected")
	}
}

func TestDefFnSelfRecursionIsUndefinedFunction(t *testing.T) {
	res := compiler.Compile(src(
		10, `DEF FNA(X) = FNA(X)`,
		20, `END`,
	))
	if res.OK {
		t.Fatal("a DEF FN referencing its own name must be a compile error, not unbounded recursion")
	}
}

func TestLinesOutOfNumericOrderAreRejected(t *testing.T) {
	res := compiler.Compile(src(
		20, `END`,
		10, `PRINT "FIRST"`,
	))
	if res.OK {
		t.Fatal("expected lines given out of ascending order to be rejected")
	}
	found := false
	for _, d := range res.Diagnostics {
		if d.Code == compiler.ErrInvalLineOrder && d.Line == 10 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an ErrInvalLineOrder diagnostic at line 10, got %v", res.Diagnostics)
	}
}
