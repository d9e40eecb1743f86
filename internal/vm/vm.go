// Package vm executes a compiled Program: a stack machine with an operand
// stack, a GOSUB return-address stack, a flat RAM of numeric/string-pool
// cells, and the run-time diagnostics (overflow, domain, division by
// zero, index range, uninitialized variable) the reference interpreter
// reports as warnings or fatal errors during execution rather than at
// compile time.
package vm

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"sync/atomic"

	"github.com/jorgicor/bas55/internal/bytecode"
	"github.com/jorgicor/bas55/internal/compiler"
	"github.com/jorgicor/bas55/internal/datapool"
	"github.com/jorgicor/bas55/internal/numerics"
	"github.com/jorgicor/bas55/internal/printer"
	"github.com/jorgicor/bas55/internal/vars"
)

// ErrFatal is returned by Run when execution stopped because of a fatal
// run-time error already reported on the error writer.
var ErrFatal = errors.New("vm: fatal run-time error")

// ErrBreak is returned by Run when the cooperative break flag was
// observed between two instructions.
var ErrBreak = errors.New("vm: break")

// defaultGosubCapacity mirrors the reference interpreter's
// s_default_gosub_stack_capacity.
const defaultGosubCapacity = 256

// defaultSeed is the Lehmer generator's seed at the start of every RUN,
// until a RANDOMIZE statement reseeds it.
const defaultSeed = 1

// ramName describes one RAM cell for the debug-mode uninitialized
// variable warning: its display name and whether it is a string cell.
type ramName struct {
	coded vars.Coded
	isStr bool
}

// VM holds all per-RUN state. A VM is built once per RUN and discarded;
// Run rewinds the Program's DATA cursor and resets its string pool before
// executing.
type VM struct {
	prog *compiler.Program

	ram   []float64
	stack []float64
	gosub []int

	gosubCap int

	pc      int
	curLine int
	fatal   bool
	halted  bool

	debug    bool
	initDone []bool // indexed by RAM position
	names    map[int]ramName

	col printer.Column
	out *bufio.Writer
	in  *bufio.Reader
	err io.Writer

	rng *numerics.Rand

	brk *atomic.Bool

	input inputState
}

// New returns a VM ready to execute prog. brk may be nil, meaning the run
// can never be cooperatively interrupted.
func New(prog *compiler.Program, out io.Writer, in io.Reader, errOut io.Writer, debug bool, brk *atomic.Bool) *VM {
	vm := &VM{
		prog:     prog,
		gosubCap: defaultGosubCapacity,
		debug:    debug,
		out:      bufio.NewWriter(out),
		in:       bufio.NewReader(in),
		err:      errOut,
		rng:      numerics.NewRand(defaultSeed),
		brk:      brk,
	}

	if debug {
		vm.buildNames()
	}

	return vm
}

// SetGosubCapacity overrides the GOSUB return-address stack's fixed
// capacity, the effect of the editor's SETGOSUB command.
func (vm *VM) SetGosubCapacity(n int) { vm.gosubCap = n }

func (vm *VM) buildNames() {
	vm.names = make(map[int]ramName)

	vm.prog.Vars.EachScalar(func(c vars.Coded, ramPos int, typ vars.Type) {
		if ramPos < 0 {
			return
		}
		vm.names[ramPos] = ramName{coded: c, isStr: typ == vars.Str}
	})
}

// Run executes the program from its first instruction until END, STOP, a
// fatal error, a cooperative break, or cancellation of ctx. It returns
// ErrFatal, ErrBreak or ctx.Err() in those last three cases and nil
// otherwise.
func (vm *VM) Run(ctx context.Context) error {
	vm.reset()

	for !vm.fatal && !vm.halted {
		if vm.brk != nil && vm.brk.Load() {
			vm.out.Flush()
			fmt.Fprintf(vm.err, "* break at %d *\n", vm.curLine)
			vm.brk.Store(false)
			return ErrBreak
		}

		select {
		case <-ctx.Done():
			vm.out.Flush()
			return ctx.Err()
		default:
		}

		vm.step()
	}

	vm.out.Flush()

	if vm.fatal {
		return ErrFatal
	}

	return nil
}

func (vm *VM) reset() {
	vm.ram = make([]float64, vm.prog.RAMSize)
	vm.stack = vm.stack[:0]
	vm.gosub = vm.gosub[:0]
	vm.pc = 0
	vm.curLine = 0
	vm.fatal = false
	vm.halted = false
	vm.col = printer.Column{}
	vm.rng.Seed(defaultSeed)
	vm.prog.Data.Restore()
	vm.prog.Strs.Reset()

	if vm.debug {
		vm.initDone = make([]bool, vm.prog.RAMSize)
	}
}

func (vm *VM) push(v float64) { vm.stack = append(vm.stack, v) }

func (vm *VM) pop() float64 {
	n := len(vm.stack) - 1
	v := vm.stack[n]
	vm.stack = vm.stack[:n]
	return v
}

func (vm *VM) fetchOp() bytecode.Opcode {
	op := vm.prog.Code[vm.pc].Op
	vm.pc++
	return op
}

func (vm *VM) fetchID() int {
	id := vm.prog.Code[vm.pc].ID
	vm.pc++
	return id
}

func (vm *VM) fetchNum() float64 {
	n := vm.prog.Code[vm.pc].Num
	vm.pc++
	return n
}

func (vm *VM) warn(code compiler.Code, detail string) {
	d := compiler.Diagnostic{Severity: compiler.SeverityWarning, Code: code, Line: vm.curLine, Column: -1, Detail: detail}
	vm.out.Flush()
	fmt.Fprintln(vm.err, d.Error())
}

func (vm *VM) fatalErr(code compiler.Code, detail string) {
	d := compiler.Diagnostic{Severity: compiler.SeverityError, Code: code, Line: vm.curLine, Column: -1, Detail: detail}
	vm.out.Flush()
	fmt.Fprintln(vm.err, d.Error())
	vm.fatal = true
}

// checkIndex validates a zero-based array index already adjusted for
// OPTION BASE, matching check_index's range test and diagnostic.
func (vm *VM) checkIndex(index float64, dim int) (int, bool) {
	if index < 0 || index >= float64(dim) {
		vm.fatalErr(compiler.ErrIndexRange, fmt.Sprintf("%v", index+float64(vm.prog.BaseIndex)))
		return 0, false
	}

	return int(index), true
}

func (vm *VM) markInit(ramPos int) {
	if vm.debug && ramPos >= 0 && ramPos < len(vm.initDone) {
		vm.initDone[ramPos] = true
	}
}

func (vm *VM) checkInit(ramPos int) {
	if !vm.debug || ramPos < 0 || ramPos >= len(vm.initDone) || vm.initDone[ramPos] {
		return
	}

	vm.initDone[ramPos] = true // warn only once

	name, ok := vm.names[ramPos]
	if !ok {
		return
	}

	vm.warn(compiler.ErrInitVar, name.coded.String())
}

// checkInitArray is checkInit's array-element counterpart: array cells
// aren't registered in vm.names (EachScalar skips them), so the warning
// names the array by its letter instead of a coded variable.
func (vm *VM) checkInitArray(ramPos int, letter int) {
	if !vm.debug || ramPos < 0 || ramPos >= len(vm.initDone) || vm.initDone[ramPos] {
		return
	}

	vm.initDone[ramPos] = true // warn only once
	vm.warn(compiler.ErrInitArray, string(rune('A'+letter)))
}

func (vm *VM) step() {
	op := vm.fetchOp()

	switch op {
	case bytecode.PushNum:
		vm.push(vm.fetchNum())
	case bytecode.PushStr:
		vm.push(float64(vm.fetchID()))

	case bytecode.PrintNL:
		vm.col.Newline(vm.out)
	case bytecode.PrintComma:
		vm.col.Comma(vm.out)
	case bytecode.PrintTab:
		vm.execPrintTab()
	case bytecode.PrintNum:
		vm.col.Num(vm.out, vm.pop())
	case bytecode.PrintStr:
		vm.col.Str(vm.out, vm.prog.Strs.String(int(vm.pop())))

	case bytecode.LetVar:
		pos := vm.fetchID()
		vm.ram[pos] = vm.pop()
		vm.markInit(pos)
	case bytecode.LetList:
		vm.execLetList()
	case bytecode.LetTable:
		vm.execLetTable()
	case bytecode.LetStrVar:
		vm.execLetStrVar()

	case bytecode.GetVar:
		pos := vm.fetchID()
		vm.checkInit(pos)
		vm.push(vm.ram[pos])
	case bytecode.GetFnVar:
		pos := vm.fetchID()
		vm.push(vm.ram[pos])
	case bytecode.GetStrVar:
		pos := vm.fetchID()
		vm.checkInit(pos)
		vm.push(vm.ram[pos])
	case bytecode.GetList:
		vm.execGetList()
	case bytecode.GetTable:
		vm.execGetTable()

	case bytecode.Add:
		b, a := vm.pop(), vm.pop()
		vm.push(a + b)
	case bytecode.Sub:
		b, a := vm.pop(), vm.pop()
		vm.push(a - b)
	case bytecode.Mul:
		vm.execMul()
	case bytecode.Div:
		vm.execDiv()
	case bytecode.Pow:
		vm.execPow()
	case bytecode.Neg:
		vm.stack[len(vm.stack)-1] = -vm.stack[len(vm.stack)-1]

	case bytecode.Line:
		vm.curLine = vm.fetchID()

	case bytecode.Gosub:
		vm.execGosub()
	case bytecode.Return:
		vm.execReturn()
	case bytecode.Goto:
		vm.pc = vm.fetchID()
	case bytecode.OnGoto:
		vm.execOnGoto()
	case bytecode.GotoIfTrue:
		target := vm.fetchID()
		if vm.pop() == 1.0 {
			vm.pc = target
		}

	case bytecode.Less:
		b, a := vm.pop(), vm.pop()
		vm.push(boolNum(a < b))
	case bytecode.Greater:
		b, a := vm.pop(), vm.pop()
		vm.push(boolNum(a > b))
	case bytecode.LessEq:
		b, a := vm.pop(), vm.pop()
		vm.push(boolNum(a <= b))
	case bytecode.GreaterEq:
		b, a := vm.pop(), vm.pop()
		vm.push(boolNum(a >= b))
	case bytecode.Eq:
		b, a := vm.pop(), vm.pop()
		vm.push(boolNum(a == b))
	case bytecode.NotEq:
		b, a := vm.pop(), vm.pop()
		vm.push(boolNum(a != b))
	case bytecode.EqStr:
		b, a := vm.pop(), vm.pop()
		vm.push(boolNum(a == b))
	case bytecode.NotEqStr:
		b, a := vm.pop(), vm.pop()
		vm.push(boolNum(a != b))

	case bytecode.ForCmp:
		vm.execForCmp()
	case bytecode.Next:
		vm.execNext()
	case bytecode.For:
		// Unused: the compiler assigns FOR's start/limit/step with
		// three explicit LET_VAR cells instead of one combined op.

	case bytecode.Restore:
		vm.prog.Data.Restore()

	case bytecode.ReadVar:
		vm.execReadVar()
	case bytecode.ReadList:
		vm.execReadList()
	case bytecode.ReadTable:
		vm.execReadTable()
	case bytecode.ReadStrVar:
		vm.execReadStrVar()

	case bytecode.Ifun0:
		vm.execIfun0()
	case bytecode.Ifun1:
		vm.execIfun1()

	case bytecode.Randomize:
		vm.rng.Seed(numerics.WallClockSeed())

	case bytecode.Input:
		vm.execInputStart()
	case bytecode.InputNum:
		vm.execInputNum()
	case bytecode.InputStr:
		vm.execInputStr()
	case bytecode.InputEnd:
		vm.execInputEnd()
	case bytecode.InputList:
		vm.execInputList()
	case bytecode.InputTable:
		vm.execInputTable()

	case bytecode.CheckInitVar:
		pos := vm.fetchID()
		vm.checkInit(pos)
	case bytecode.SetInitVar:
		pos := vm.fetchID()
		vm.markInit(pos)

	case bytecode.End:
		vm.halted = true

	default:
		panic(fmt.Sprintf("vm: unhandled opcode %v", op))
	}
}

func boolNum(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func (vm *VM) execPrintTab() {
	d := vm.pop()
	n := int(numerics.Floor(d + 0.5))
	if n <= 0 {
		vm.warn(compiler.ErrInvalTab, fmt.Sprintf("%d", n))
		n = 1
	}
	vm.col.Tab(vm.out, n)
}

func (vm *VM) execMul() {
	b, a := vm.pop(), vm.pop()
	d := a * b
	if math.IsInf(d, 0) && !math.IsInf(a, 0) && !math.IsInf(b, 0) {
		vm.warn(compiler.ErrOpOverflow, "")
	}
	vm.push(d)
}

func (vm *VM) execDiv() {
	b, a := vm.pop(), vm.pop()
	if b == 0 {
		vm.warn(compiler.ErrDivByZero, "")
	}
	vm.push(a / b)
}

func (vm *VM) execPow() {
	b, a := vm.pop(), vm.pop()
	z, err := numerics.Pow(a, b)
	var domErr *numerics.DomainError
	var rngErr *numerics.RangeError
	switch {
	case errors.As(err, &domErr):
		vm.fatalErr(compiler.ErrNegPowReal, fmt.Sprintf("%v^%v", a, b))
	case errors.As(err, &rngErr):
		if a == 0 {
			vm.warn(compiler.ErrZeroPowNeg, fmt.Sprintf("0^%v", b))
		} else {
			vm.warn(compiler.ErrOpOverflow, "")
		}
	}
	vm.push(z)
}

func (vm *VM) execGosub() {
	target := vm.fetchID()
	if len(vm.gosub) >= vm.gosubCap {
		vm.fatalErr(compiler.ErrStackOverflow, "")
		return
	}
	vm.gosub = append(vm.gosub, vm.pc)
	vm.pc = target
}

func (vm *VM) execReturn() {
	if len(vm.gosub) == 0 {
		vm.fatalErr(compiler.ErrStackUnderflow, "")
		return
	}
	n := len(vm.gosub) - 1
	vm.pc = vm.gosub[n]
	vm.gosub = vm.gosub[:n]
}

func (vm *VM) execOnGoto() {
	nlines := vm.fetchID()
	i := int(numerics.Floor(vm.pop() + 0.5))
	if i < 1 || i > nlines {
		vm.fatalErr(compiler.ErrIndexRange, "")
		vm.pc += nlines
		return
	}
	target := vm.prog.Code[vm.pc+i-1].ID
	vm.pc += nlines
	vm.pc = target
}

func (vm *VM) execLetList() {
	letter := vm.fetchID()
	desc := vm.prog.Vars.ArrayDesc(letter)
	value := vm.pop()
	idx := numerics.Floor(vm.pop()+0.5) - float64(vm.prog.BaseIndex)
	index, ok := vm.checkIndex(idx, desc.Dim1)
	if !ok {
		return
	}
	pos := desc.RAMPos + index
	vm.ram[pos] = value
	vm.markInit(pos)
}

func (vm *VM) execLetTable() {
	letter := vm.fetchID()
	desc := vm.prog.Vars.ArrayDesc(letter)
	value := vm.pop()
	idx2 := numerics.Floor(vm.pop()+0.5) - float64(vm.prog.BaseIndex)
	idx1 := numerics.Floor(vm.pop()+0.5) - float64(vm.prog.BaseIndex)
	i1, ok := vm.checkIndex(idx1, desc.Dim1)
	if !ok {
		return
	}
	i2, ok := vm.checkIndex(idx2, desc.Dim2)
	if !ok {
		return
	}
	pos := desc.RAMPos + i1*desc.Dim2 + i2
	vm.ram[pos] = value
	vm.markInit(pos)
}

func (vm *VM) execGetList() {
	letter := vm.fetchID()
	desc := vm.prog.Vars.ArrayDesc(letter)
	idx := numerics.Floor(vm.pop()+0.5) - float64(vm.prog.BaseIndex)
	index, ok := vm.checkIndex(idx, desc.Dim1)
	if !ok {
		vm.push(0)
		return
	}
	pos := desc.RAMPos + index
	vm.checkInitArray(pos, letter)
	vm.push(vm.ram[pos])
}

func (vm *VM) execGetTable() {
	letter := vm.fetchID()
	desc := vm.prog.Vars.ArrayDesc(letter)
	idx2 := numerics.Floor(vm.pop()+0.5) - float64(vm.prog.BaseIndex)
	idx1 := numerics.Floor(vm.pop()+0.5) - float64(vm.prog.BaseIndex)
	i1, ok := vm.checkIndex(idx1, desc.Dim1)
	if !ok {
		vm.push(0)
		return
	}
	i2, ok := vm.checkIndex(idx2, desc.Dim2)
	if !ok {
		vm.push(0)
		return
	}
	pos := desc.RAMPos + i1*desc.Dim2 + i2
	vm.checkInitArray(pos, letter)
	vm.push(vm.ram[pos])
}

func (vm *VM) execLetStrVar() {
	pos := vm.fetchID()
	newIdx := int(vm.pop())
	oldIdx := int(vm.ram[pos])
	if oldIdx != newIdx {
		vm.prog.Strs.Release(oldIdx)
		vm.ram[pos] = float64(newIdx)
		vm.prog.Strs.Retain(newIdx)
	}
	vm.markInit(pos)
}

func (vm *VM) execForCmp() {
	fl := vm.prog.ForLoops[vm.pc-1]
	endPC := vm.fetchID()

	step := vm.ram[fl.StepPos]
	limit := vm.ram[fl.LimitPos]
	v := vm.ram[fl.VarPos]

	if (v-limit)*sign(step) > 0 {
		vm.pc = endPC
	}
}

func sign(d float64) float64 {
	switch {
	case d < 0:
		return -1
	case d > 0:
		return 1
	default:
		return 0
	}
}

func (vm *VM) execNext() {
	cmpPC := vm.fetchID()
	vm.pc = cmpPC
	fl := vm.prog.ForLoops[cmpPC]
	vm.ram[fl.VarPos] += vm.ram[fl.StepPos]
}

func (vm *VM) execReadVar() {
	pos := vm.fetchID()
	d, ok := vm.readDouble()
	if !ok {
		return
	}
	vm.ram[pos] = d
	vm.markInit(pos)
}

func (vm *VM) execReadList() {
	letter := vm.fetchID()
	desc := vm.prog.Vars.ArrayDesc(letter)
	idx := numerics.Floor(vm.pop()+0.5) - float64(vm.prog.BaseIndex)
	index, ok := vm.checkIndex(idx, desc.Dim1)
	if !ok {
		return
	}
	d, ok := vm.readDouble()
	if !ok {
		return
	}
	pos := desc.RAMPos + index
	vm.ram[pos] = d
	vm.markInit(pos)
}

func (vm *VM) execReadTable() {
	letter := vm.fetchID()
	desc := vm.prog.Vars.ArrayDesc(letter)
	idx2 := numerics.Floor(vm.pop()+0.5) - float64(vm.prog.BaseIndex)
	idx1 := numerics.Floor(vm.pop()+0.5) - float64(vm.prog.BaseIndex)
	i1, ok := vm.checkIndex(idx1, desc.Dim1)
	if !ok {
		return
	}
	i2, ok := vm.checkIndex(idx2, desc.Dim2)
	if !ok {
		return
	}
	d, ok := vm.readDouble()
	if !ok {
		return
	}
	pos := desc.RAMPos + i1*desc.Dim2 + i2
	vm.ram[pos] = d
	vm.markInit(pos)
}

func (vm *VM) execReadStrVar() {
	pos := vm.fetchID()
	strIdx, quoting, ok := vm.prog.Data.Read()
	if !ok {
		vm.fatalErr(compiler.ErrReadOverflow, "")
		return
	}
	_ = quoting
	oldIdx := int(vm.ram[pos])
	if strIdx != oldIdx {
		vm.prog.Strs.Release(oldIdx)
		vm.ram[pos] = float64(strIdx)
		vm.prog.Strs.Retain(strIdx)
	}
	vm.markInit(pos)
}

// readDouble re-lexes the next DATA datum as a number, matching
// read_double: a quoted datum or one that doesn't parse as a clean
// number (with nothing left over) is E_READ_STR, fatal.
func (vm *VM) readDouble() (float64, bool) {
	strIdx, quoting, ok := vm.prog.Data.Read()
	if !ok {
		vm.fatalErr(compiler.ErrReadOverflow, "")
		return 0, false
	}

	if quoting == datapool.Quoted {
		vm.fatalErr(compiler.ErrReadStr, "")
		return 0, false
	}

	s := vm.prog.Strs.String(strIdx)
	n, ok := parseWholeNumber(s)
	if !ok {
		vm.fatalErr(compiler.ErrReadStr, "")
		return 0, false
	}

	return n, true
}
