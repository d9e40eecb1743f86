// Package compiler implements the two-phase front end: a recursive-
// descent parser whose grammar actions emit bytecode directly (one pass,
// like the reference yacc grammar), plus the end-of-compile checks that
// require the whole program to be seen: FOR/NEXT balance, jump legality,
// and the presence of exactly one END.
package compiler

import (
	"fmt"
	"sort"

	"github.com/jorgicor/bas55/internal/bytecode"
	"github.com/jorgicor/bas55/internal/datapool"
	"github.com/jorgicor/bas55/internal/vars"
)

// MaxErrors is the compile-error budget; the 21st error halts compilation
// of the remaining lines outright.
const MaxErrors = 20

// SourceLine is one numbered program line as stored by the editor.
type SourceLine struct {
	Number int
	Text   string
}

// Result is everything a compile produces: the Program (valid only if
// Diagnostics contains no SeverityError entries) and the full diagnostic
// list in emission order.
type Result struct {
	Program     *Program
	Diagnostics []Diagnostic
	OK          bool
}

// Compiler holds all state live during one compile. It is discarded after
// Compile returns; only the resulting Program and diagnostics persist.
type Compiler struct {
	prog *Program
	diag []Diagnostic

	forTree *forTree
	jumps   []jumpRef
	patches []forwardPatch

	optionSeen    bool
	arraysTouched bool
	endSeen       bool
	endLine       int

	curLine int
	lex     *Lexer
	tok     Token

	inFunDef  bool
	curFunc   *FuncDef
	errCount  int
	halted    bool
	stackCur  int
	stackMax  int
}

// Compile compiles an entire program, given in ascending line-number
// order, and returns the bytecode Program plus every diagnostic raised.
func Compile(lines []SourceLine) Result {
	c := &Compiler{
		prog:    NewProgram(),
		forTree: newForTree(),
	}

	for _, ln := range lines {
		if c.halted {
			break
		}
		c.compileLine(ln)
	}

	c.finish()

	ok := true
	for _, d := range c.diag {
		if d.Severity == SeverityError {
			ok = false
			break
		}
	}

	return Result{Program: c.prog, Diagnostics: c.diag, OK: ok}
}

func (c *Compiler) errorAt(line, col int, code Code, detail string) {
	c.diag = append(c.diag, Diagnostic{Severity: SeverityError, Code: code, Line: line, Column: col, Detail: detail})
	c.errCount++
	if c.errCount > MaxErrors {
		c.halted = true
	}
}

func (c *Compiler) warnAt(line, col int, code Code, detail string) {
	c.diag = append(c.diag, Diagnostic{Severity: SeverityWarning, Code: code, Line: line, Column: col, Detail: detail})
}

func (c *Compiler) error(code Code, detail string)  { c.errorAt(c.curLine, c.tok.Column, code, detail) }
func (c *Compiler) warn(code Code, detail string)   { c.warnAt(c.curLine, c.tok.Column, code, detail) }

func (c *Compiler) next() { c.tok = c.lex.Next() }

func (c *Compiler) expect(k Kind, code Code) bool {
	if c.tok.Kind != k {
		c.error(code, "")
		return false
	}
	c.next()
	return true
}

// push/pop track the current opcode-sequence stack depth as cells are
// emitted, so StackMax (or a DEF FN's local StackMax) captures the
// largest depth reached.
func (c *Compiler) push(op bytecode.Opcode) {
	c.prog.EmitOp(op)
	c.stackCur += op.StackPush()
	if c.stackCur > c.stackMax {
		c.stackMax = c.stackCur
	}
	c.stackCur += op.StackNet() - op.StackPush()
}

func (c *Compiler) compileLine(ln SourceLine) {
	if c.endSeen {
		c.errorAt(ln.Number, 0, ErrLinesAfterEnd, "")
	}

	if len(c.prog.Code) > 0 {
		if pc, ok := lastLine(c.prog); ok && ln.Number <= pc {
			c.errorAt(ln.Number, 0, ErrInvalLineOrder, "")
		}
	}

	c.curLine = ln.Number
	c.lex = NewLexer(ln.Text)
	c.next()

	pc := c.prog.PC()
	c.push(bytecode.Line)
	c.prog.EmitID(ln.Number)
	c.prog.MapLine(ln.Number, pc)

	c.statementList()
}

func lastLine(p *Program) (int, bool) {
	if len(p.lines) == 0 {
		return 0, false
	}
	return p.lines[len(p.lines)-1].Line, true
}

// statementList parses one or more colon-separated statements on the
// current line.
func (c *Compiler) statementList() {
	for {
		c.statement()
		if c.tok.Kind == TColon {
			c.next()
			continue
		}
		break
	}

	if c.tok.Kind != TEOF {
		c.error(ErrSyntax, "unexpected trailing text")
	}
}

func (c *Compiler) statement() {
	switch c.tok.Kind {
	case TLet:
		c.next()
		c.letStmt()
	case TPrint:
		c.next()
		c.printStmt()
	case TInput:
		c.next()
		c.inputStmt()
	case TRead:
		c.next()
		c.readStmt()
	case TData:
		c.next()
		c.dataStmt()
	case TGoto:
		c.next()
		c.gotoStmt()
	case TGo:
		c.next()
		c.goStmt()
	case TGosub:
		c.next()
		c.gosubStmt()
	case TReturn:
		c.next()
		c.push(bytecode.Return)
	case TIf:
		c.next()
		c.ifStmt()
	case TFor:
		c.next()
		c.forStmt()
	case TNext:
		c.next()
		c.nextStmt()
	case TDim:
		c.next()
		c.dimStmt()
	case TOption:
		c.next()
		c.optionStmt()
	case TDef:
		c.next()
		c.defStmt()
	case TRandomize:
		c.next()
		c.push(bytecode.Randomize)
	case TRestore:
		c.next()
		c.push(bytecode.Restore)
	case TOn:
		c.next()
		c.onGotoStmt()
	case TEnd:
		c.next()
		c.endStmt()
	case TStop:
		c.next()
		c.push(bytecode.End)
	case TRem:
		c.next()
		// skip_rest already consumed the remainder as part of the
		// keyword token in lexID; nothing further to do.
	case TNumVar, TStrVar:
		// A bare assignment without LET is not legal ECMA-55, but
		// many programs in the wild omit it; treat it the same as
		// LET for forgiving compatibility.
		c.letStmt()
	default:
		c.error(ErrSyntax, "unrecognised statement")
		c.next()
	}
}

func (c *Compiler) endStmt() {
	if c.endSeen {
		c.warn(ErrLinesAfterEnd, "duplicate END")
	}
	c.endSeen = true
	c.endLine = c.curLine
	c.push(bytecode.End)
}

// --- variable resolution -------------------------------------------------

func (c *Compiler) resolveNumVar(v vars.Coded) int {
	if c.inFunDef && v.IsNumeric() && !v.HasDigit() && v.Letter() == c.curFunc.Param.Letter() && v.Suffix() == c.curFunc.Param.Suffix() {
		return c.curFunc.ParamPos
	}

	if !v.HasDigit() && c.prog.Vars.Dimensioned(v.Index1()) {
		c.error(ErrTypeMismatch, v.String())
	}

	c.prog.Vars.Declare(v, vars.Num, -1)
	if c.prog.Vars.Type(v) != vars.Num {
		c.error(ErrTypeMismatch, v.String())
	}
	return c.prog.Vars.EnsureRAMPos(v, func() int { return c.prog.AllocRAM(1) })
}

func (c *Compiler) resolveStrVar(v vars.Coded) int {
	c.prog.Vars.Declare(v, vars.Str, -1)
	if c.prog.Vars.Type(v) != vars.Str {
		c.error(ErrTypeMismatch, v.String())
	}
	return c.prog.Vars.EnsureRAMPos(v, func() int { return c.prog.AllocRAM(1) })
}

// ensureArray returns letter's base RAM position, allocating storage (and
// the implicit BaseIndex..10 dimension) on first reference if no DIM has
// run yet.
// A bare scalar already declared on this letter (A used both as A and
// A(i)) is a type mismatch, checked against the bare numeric sub-slot.
func (c *Compiler) ensureArray(letter int, ndim int) vars.ArrayDesc {
	bareCoded := vars.Encode(byte('A'+letter), 0)
	if c.prog.Vars.Type(bareCoded) == vars.Num {
		c.error(ErrTypeMismatch, bareCoded.String())
	}

	c.arraysTouched = true
	if !c.prog.Vars.Dimensioned(letter) {
		// The implicit default dimension is 10 in both subscripts
		// (ECMA-55 §4.7); the number of cells actually needed depends on
		// OPTION BASE, since valid subscripts run base..10.
		dim1, dim2 := 10-c.prog.BaseIndex+1, 0
		size := dim1
		if ndim == 2 {
			dim2 = dim1
			size = dim1 * dim2
		}
		c.prog.Vars.SetDim(letter, dim1, dim2)
		pos := c.prog.AllocRAM(size)
		c.prog.Vars.SetArrayDesc(letter, pos, dim1, dim2)
	}
	return c.prog.Vars.ArrayDesc(letter)
}

// --- DATA / READ ---------------------------------------------------------

func (c *Compiler) dataStmt() {
	for {
		switch c.tok.Kind {
		case TQuotedStr:
			idx := c.prog.Strs.Intern(c.tok.Str)
			c.prog.Strs.Retain(idx)
			c.prog.Data.Add(idx, datapool.Quoted)
			c.next()
		case TUnquotedStr, TNum, TInt:
			lit := c.rawDatumText()
			idx := c.prog.Strs.Intern(lit)
			c.prog.Strs.Retain(idx)
			c.prog.Data.Add(idx, datapool.Unquoted)
			c.next()
		default:
			c.error(ErrSyntax, "expected DATA literal")
			return
		}

		if c.tok.Kind != TComma {
			break
		}
		c.next()
	}
}

// rawDatumText recovers the literal text of an unquoted DATA token; the
// lexer has already classified it, so the stored Str/Num is reused
// directly rather than re-slicing source.
func (c *Compiler) rawDatumText() string {
	if c.tok.Kind == TUnquotedStr {
		return c.tok.Str
	}
	return fmtNum(c.tok.Num)
}

func fmtNum(n float64) string {
	return fmt.Sprintf("%g", n)
}

func (c *Compiler) readStmt() {
	for {
		switch c.tok.Kind {
		case TNumVar:
			v := vars.Coded(c.tok.Coded)
			c.next()
			if c.tok.Kind == TLParen {
				c.readSubscripted(v)
			} else {
				pos := c.resolveNumVar(v)
				c.push(bytecode.ReadVar)
				c.prog.EmitID(pos)
			}
		case TStrVar:
			v := vars.Coded(c.tok.Coded)
			pos := c.resolveStrVar(v)
			c.next()
			c.push(bytecode.ReadStrVar)
			c.prog.EmitID(pos)
		default:
			c.error(ErrSyntax, "expected variable in READ")
			return
		}

		if c.tok.Kind != TComma {
			break
		}
		c.next()
	}
}

func (c *Compiler) readSubscripted(v vars.Coded) {
	letter := v.Index1()
	c.next() // (
	c.expr()
	ndim := 1
	if c.tok.Kind == TComma {
		c.next()
		c.expr()
		ndim = 2
	}
	c.expect(TRParen, ErrSyntax)
	c.ensureArray(letter, ndim)
	if ndim == 1 {
		c.push(bytecode.ReadList)
	} else {
		c.push(bytecode.ReadTable)
	}
	c.prog.EmitID(letter)
}

// --- LET ------------------------------------------------------------------

func (c *Compiler) letStmt() {
	switch c.tok.Kind {
	case TNumVar:
		v := vars.Coded(c.tok.Coded)
		c.next()
		if c.tok.Kind == TLParen {
			c.letSubscripted(v)
			return
		}
		pos := c.resolveNumVar(v)
		c.expect(TEq, ErrSyntax)
		c.expr()
		c.push(bytecode.LetVar)
		c.prog.EmitID(pos)
	case TStrVar:
		v := vars.Coded(c.tok.Coded)
		c.next()
		pos := c.resolveStrVar(v)
		c.expect(TEq, ErrSyntax)
		c.strExpr()
		c.push(bytecode.LetStrVar)
		c.prog.EmitID(pos)
	default:
		c.error(ErrSyntax, "expected variable after LET")
	}
}

func (c *Compiler) letSubscripted(v vars.Coded) {
	letter := v.Index1()
	c.next() // (
	c.expr()
	ndim := 1
	if c.tok.Kind == TComma {
		c.next()
		c.expr()
		ndim = 2
	}
	c.expect(TRParen, ErrSyntax)
	c.ensureArray(letter, ndim)
	c.expect(TEq, ErrSyntax)
	c.expr()
	if ndim == 1 {
		c.push(bytecode.LetList)
	} else {
		c.push(bytecode.LetTable)
	}
	c.prog.EmitID(letter)
}

// --- PRINT -----------------------------------------------------------------

func (c *Compiler) printStmt() {
	if c.tok.Kind == TEOF || c.tok.Kind == TColon {
		c.push(bytecode.PrintNL)
		return
	}

	for {
		switch c.tok.Kind {
		case TTab:
			c.next()
			c.expect(TLParen, ErrSyntax)
			c.expr()
			c.expect(TRParen, ErrSyntax)
			c.push(bytecode.PrintTab)
		case TQuotedStr:
			idx := c.prog.Strs.Intern(c.tok.Str)
			c.prog.Strs.Retain(idx)
			c.next()
			c.push(bytecode.PushStr)
			c.prog.EmitID(idx)
			c.push(bytecode.PrintStr)
		default:
			if c.tok.Kind == TStrVar || c.startsStrExpr() {
				c.strExpr()
				c.push(bytecode.PrintStr)
			} else {
				c.expr()
				c.push(bytecode.PrintNum)
			}
		}

		switch c.tok.Kind {
		case TComma:
			c.next()
			c.push(bytecode.PrintComma)
		case TSemicolon:
			c.next()
			if c.tok.Kind == TEOF || c.tok.Kind == TColon {
				return
			}
		case TEOF, TColon:
			c.push(bytecode.PrintNL)
			return
		default:
			c.error(ErrSyntax, "expected , ; or end of PRINT list")
			return
		}
	}
}

func (c *Compiler) startsStrExpr() bool { return c.tok.Kind == TStrVar }

// --- INPUT -----------------------------------------------------------------

// inputStmt compiles INPUT's target list. Each target compiles to an
// INPUT_NUM/INPUT_STR cell whose operand is the PC of the *next* target's
// first cell (or of INPUT_END, for the last one): on pass 1 the VM jumps
// straight there to validate the remaining targets without storing
// anything, and on pass 2 it falls through into the store that follows,
// exactly mirroring the forward "goto-to-next-op" links the two-pass
// design depends on.
func (c *Compiler) inputStmt() {
	c.push(bytecode.Input)
	n := 0

	for {
		switch c.tok.Kind {
		case TNumVar:
			v := vars.Coded(c.tok.Coded)
			c.next()
			if c.tok.Kind == TLParen {
				c.inputSubscripted(v)
			} else {
				pos := c.resolveNumVar(v)
				opPC := c.push2(bytecode.InputNum)
				c.push(bytecode.LetVar)
				c.prog.EmitID(pos)
				c.prog.PatchID(opPC, c.prog.PC())
			}
		case TStrVar:
			v := vars.Coded(c.tok.Coded)
			c.next()
			pos := c.resolveStrVar(v)
			opPC := c.push2(bytecode.InputStr)
			c.push(bytecode.LetStrVar)
			c.prog.EmitID(pos)
			c.prog.PatchID(opPC, c.prog.PC())
		default:
			c.error(ErrSyntax, "expected variable in INPUT")
			return
		}
		n++

		if c.tok.Kind != TComma {
			break
		}
		c.next()
	}

	if n == 0 {
		c.error(ErrVoidInput, "")
	}
	c.push(bytecode.InputEnd)
}

// inputSubscripted compiles an INPUT target that names an array element.
// INPUT_NUM is emitted first so pass 2 pushes the parsed value before the
// subscript expression pushes the index on top of it, matching the order
// INPUT_LIST/INPUT_TABLE pop them back off in.
func (c *Compiler) inputSubscripted(v vars.Coded) {
	opPC := c.push2(bytecode.InputNum)

	letter := v.Index1()
	c.next() // (
	c.expr()
	ndim := 1
	if c.tok.Kind == TComma {
		c.next()
		c.expr()
		ndim = 2
	}
	c.expect(TRParen, ErrSyntax)
	c.ensureArray(letter, ndim)
	if ndim == 1 {
		c.push(bytecode.InputList)
	} else {
		c.push(bytecode.InputTable)
	}
	c.prog.EmitID(letter)
	c.prog.PatchID(opPC, c.prog.PC())
}

// --- GOTO / GOSUB / RETURN / GO TO / GO SUB --------------------------------

func (c *Compiler) lineRefOperand() (line int, ok bool) {
	if c.tok.Kind != TInt && c.tok.Kind != TNum {
		c.error(ErrSyntax, "expected line number")
		return 0, false
	}
	line = int(c.tok.Num)
	c.next()
	return line, true
}

func (c *Compiler) gotoStmt() {
	line, ok := c.lineRefOperand()
	if !ok {
		return
	}
	c.jumps = append(c.jumps, jumpRef{fromLine: c.curLine, toLine: line})
	pc := c.push2(bytecode.Goto)
	c.deferredTarget(pc, line)
}

func (c *Compiler) gosubStmt() {
	line, ok := c.lineRefOperand()
	if !ok {
		return
	}
	c.jumps = append(c.jumps, jumpRef{fromLine: c.curLine, toLine: line})
	pc := c.push2(bytecode.Gosub)
	c.deferredTarget(pc, line)
}

func (c *Compiler) goStmt() {
	switch c.tok.Kind {
	case TTo:
		c.next()
		c.gotoStmt()
	case TSub:
		c.next()
		c.gosubStmt()
	default:
		c.error(ErrSyntax, "expected TO or SUB after GO")
	}
}

// push2 emits op and reserves its one-cell line-target operand, returning
// the operand's PC so a forward reference can be patched later.
func (c *Compiler) push2(op bytecode.Opcode) int {
	c.push(op)
	pc := c.prog.PC()
	c.prog.EmitID(-1)
	return pc
}

// forwardPatch is one not-yet-resolved line reference to patch once the
// whole program (and hence every line's PC) is known.
type forwardPatch struct {
	operandPC int
	line      int
}

func (c *Compiler) deferredTarget(operandPC, line int) {
	c.patches = append(c.patches, forwardPatch{operandPC: operandPC, line: line})
}

// --- IF -----------------------------------------------------------------

func (c *Compiler) ifStmt() {
	if c.tok.Kind == TStrVar || (c.tok.Kind == TQuotedStr) {
		c.strExpr()
		rel := c.relOp(true)
		c.strExpr()
		switch rel {
		case TEq:
			c.push(bytecode.EqStr)
		case TNotEq:
			c.push(bytecode.NotEqStr)
		default:
			c.error(ErrSyntax, "only = and <> are valid for string comparison")
		}
	} else {
		c.expr()
		rel := c.relOp(false)
		c.expr()
		switch rel {
		case TEq:
			c.push(bytecode.Eq)
		case TNotEq:
			c.push(bytecode.NotEq)
		case TLess:
			c.push(bytecode.Less)
		case TGreater:
			c.push(bytecode.Greater)
		case TLessEq:
			c.push(bytecode.LessEq)
		case TGreaterEq:
			c.push(bytecode.GreaterEq)
		}
	}

	c.expect(TThen, ErrSyntax)
	line, ok := c.lineRefOperand()
	if !ok {
		return
	}
	c.jumps = append(c.jumps, jumpRef{fromLine: c.curLine, toLine: line})
	pc := c.push2(bytecode.GotoIfTrue)
	c.deferredTarget(pc, line)
}

func (c *Compiler) relOp(strMode bool) Kind {
	k := c.tok.Kind
	switch k {
	case TEq, TNotEq, TLess, TGreater, TLessEq, TGreaterEq:
		c.next()
		return k
	default:
		c.error(ErrSyntax, "expected relational operator")
		return TEq
	}
}

// --- ON ... GOTO -----------------------------------------------------------

func (c *Compiler) onGotoStmt() {
	c.expr()
	c.expect(TGoto, ErrSyntax)

	pc := c.push2(bytecode.OnGoto)
	_ = pc // k operand count written below, after we know k

	var targets []forwardPatch
	k := 0
	for {
		line, ok := c.lineRefOperand()
		if !ok {
			return
		}
		c.jumps = append(c.jumps, jumpRef{fromLine: c.curLine, toLine: line})
		opPC := c.prog.PC()
		c.prog.EmitID(-1)
		targets = append(targets, forwardPatch{operandPC: opPC, line: line})
		k++

		if c.tok.Kind != TComma {
			break
		}
		c.next()
	}

	c.prog.PatchID(pc, k)
	c.patches = append(c.patches, targets...)
}

// --- FOR / NEXT -------------------------------------------------------------

func (c *Compiler) forStmt() {
	if c.tok.Kind != TNumVar {
		c.error(ErrSyntax, "expected control variable after FOR")
		return
	}
	v := vars.Coded(c.tok.Coded)
	col := c.tok.Column
	c.next()

	if c.forTree.HasOuterSameVar(v) {
		c.errorAt(c.curLine, col, ErrNestedForSameVar, v.String())
	}

	blockIdx := c.forTree.Open(c.curLine)

	c.resolveNumVar(v)
	c.expect(TEq, ErrSyntax)
	c.expr()
	c.push(bytecode.LetVar)
	varPos := c.prog.Vars.RAMPos(v)
	c.prog.EmitID(varPos)

	c.expect(TTo, ErrSyntax)
	c.expr()
	limitPos := c.prog.AllocRAM(1)
	c.push(bytecode.LetVar)
	c.prog.EmitID(limitPos)

	stepPos := c.prog.AllocRAM(1)
	if c.tok.Kind == TStep {
		c.next()
		c.expr()
	} else {
		c.push(bytecode.PushNum)
		c.prog.EmitNum(1)
	}
	c.push(bytecode.LetVar)
	c.prog.EmitID(stepPos)

	cmpPC := c.prog.PC()
	c.push(bytecode.ForCmp)
	c.prog.EmitID(-1) // end_pc, patched by NEXT

	c.prog.ForLoops[cmpPC] = ForLoop{VarPos: varPos, LimitPos: limitPos, StepPos: stepPos}
	c.forTree.SetMeta(blockIdx, v, cmpPC)
}

func (c *Compiler) nextStmt() {
	if c.tok.Kind != TNumVar {
		c.error(ErrSyntax, "expected variable after NEXT")
		return
	}
	v := vars.Coded(c.tok.Coded)
	c.next()

	cur := c.forTree.Current()
	if cur == -1 || c.forTree.Var(cur) != v {
		c.error(ErrNextWithoutFor, v.String())
		return
	}

	cmpPC := c.forTree.CmpPC(cur)
	c.push(bytecode.Next)
	c.prog.EmitID(cmpPC)
	c.prog.PatchID(cmpPC+1, c.prog.PC())

	c.forTree.Close(c.curLine)
}

// --- DIM / OPTION BASE -------------------------------------------------------

func (c *Compiler) optionStmt() {
	c.expect(TBase, ErrSyntax)
	if c.tok.Kind != TInt {
		c.error(ErrSyntax, "expected 0 or 1")
		return
	}
	base := int(c.tok.Num)
	c.next()

	if c.optionSeen {
		c.error(ErrDupOption, "")
		return
	}
	if c.arraysTouched {
		c.error(ErrLateOption, "")
		return
	}
	if base != 0 && base != 1 {
		c.error(ErrInvalDim, "OPTION BASE must be 0 or 1")
		return
	}

	c.optionSeen = true
	c.prog.BaseIndex = base
}

func (c *Compiler) dimStmt() {
	for {
		if c.tok.Kind != TNumVar {
			c.error(ErrSyntax, "expected array name in DIM")
			return
		}
		v := vars.Coded(c.tok.Coded)
		if v.HasDigit() {
			c.error(ErrNumVarArray, v.String())
		}
		letter := v.Index1()
		c.next()
		c.expect(TLParen, ErrSyntax)

		if c.tok.Kind != TInt {
			c.error(ErrSyntax, "expected dimension")
			return
		}
		maxIdx1 := int(c.tok.Num)
		c.next()

		maxIdx2 := 0
		ndim := 1
		if c.tok.Kind == TComma {
			c.next()
			if c.tok.Kind != TInt {
				c.error(ErrSyntax, "expected second dimension")
				return
			}
			maxIdx2 = int(c.tok.Num)
			ndim = 2
			c.next()
		}
		c.expect(TRParen, ErrSyntax)

		// A dimensioned array's valid subscripts run BaseIndex..maxIdx, so
		// it needs maxIdx-BaseIndex+1 cells, not maxIdx+1: under OPTION
		// BASE 1, DIM A(10) must admit A(1)..A(10), ten elements, not
		// eleven.
		dim1 := maxIdx1 - c.prog.BaseIndex + 1
		dim2 := 0
		if ndim == 2 {
			dim2 = maxIdx2 - c.prog.BaseIndex + 1
		}

		if dim1 < 1 || (ndim == 2 && dim2 < 1) {
			c.error(ErrInvalDim, "")
		} else if c.prog.Vars.Dimensioned(letter) {
			c.error(ErrDupDim, v.String())
		} else {
			c.arraysTouched = true
			c.prog.Vars.SetDim(letter, dim1, dim2)
			size := dim1
			if ndim == 2 {
				size = dim1 * dim2
			}
			pos := c.prog.AllocRAM(size)
			c.prog.Vars.SetArrayDesc(letter, pos, dim1, dim2)
		}

		if c.tok.Kind != TComma {
			break
		}
		c.next()
	}
}

// --- DEF FN -----------------------------------------------------------------

func (c *Compiler) defStmt() {
	if c.tok.Kind != TUsrFn {
		c.error(ErrSyntax, "expected FNx")
		return
	}
	name := c.tok.Str[0]
	c.next()

	if _, exists := c.prog.Funcs[name]; exists {
		c.error(ErrFunRedeclared, string(name))
		return
	}

	var param vars.Coded
	hasParam := false
	if c.tok.Kind == TLParen {
		c.next()
		if c.tok.Kind != TNumVar {
			c.error(ErrSyntax, "expected parameter name")
			return
		}
		param = vars.Coded(c.tok.Coded)
		hasParam = true
		c.next()
		c.expect(TRParen, ErrSyntax)
	}

	c.expect(TEq, ErrSyntax)

	paramPos := c.prog.AllocRAM(1)
	fn := &FuncDef{Name: name, Param: param, ParamPos: paramPos, PC: c.prog.PC() + 2}
	c.prog.Funcs[name] = fn

	prevIn, prevFn, prevMax, prevCur := c.inFunDef, c.curFunc, c.stackMax, c.stackCur
	c.inFunDef, c.curFunc = true, fn
	if !hasParam {
		// no-arg DEF FN: body still has an implicit parameter cell so
		// resolveNumVar's lookup machinery stays uniform.
	}
	c.stackMax, c.stackCur = 0, 0

	skipPC := c.push2(bytecode.Goto)
	fn.PC = c.prog.PC()

	c.expr()
	c.push(bytecode.Return)

	c.prog.PatchID(skipPC, c.prog.PC())
	fn.StackMax = c.stackMax

	c.inFunDef, c.curFunc = prevIn, prevFn
	c.stackMax, c.stackCur = prevMax, prevCur
	if fn.StackMax > c.stackMax {
		c.stackMax = fn.StackMax
	}
}

// --- end of compile ----------------------------------------------------

func (c *Compiler) finish() {
	for _, p := range c.patches {
		pc, ok := c.prog.PCForLine(p.line)
		if !ok {
			c.errorAt(c.curLine, 0, ErrNoLine, fmt.Sprintf("%d", p.line))
			continue
		}
		c.prog.PatchID(p.operandPC, pc)
	}

	if !c.endSeen {
		c.errorAt(c.curLine, 0, ErrEndUnseen, "")
	}

	if n := c.forTree.OpenCount(); n > 0 {
		c.errorAt(c.curLine, 0, ErrForWithoutNext, "")
	}

	sort.Slice(c.jumps, func(i, j int) bool { return c.jumps[i].fromLine < c.jumps[j].fromLine })
	for _, j := range c.jumps {
		if !c.forTree.LegalJump(j.fromLine, j.toLine) {
			c.errorAt(j.fromLine, 1, ErrJumpIntoFor, "")
		}
	}

	c.prog.Strs.MarkConstants()
	c.prog.StackMax = c.stackMax
}
