package vm

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/jorgicor/bas55/internal/compiler"
	"github.com/jorgicor/bas55/internal/datalex"
	"github.com/jorgicor/bas55/internal/numerics"
	"github.com/jorgicor/bas55/internal/printer"
)

// maxInputLineChars bounds one line read for INPUT, matching the source's
// LINE_MAX_CHARS.
const maxInputLineChars = 80

// inputState is INPUT's two-state (pass 1 / pass 2) machine: pass 1 reads
// a line and validates every target's type without storing anything;
// pass 2 re-runs the same opcode sequence to actually push the parsed
// values, which the interleaved LET_VAR/LET_STRVAR cells then store. No
// partial assignment is visible on an invalid line because pass 1 always
// runs to completion (or retries) before pass 2 writes anything.
type inputState struct {
	pass     int // 0 outside INPUT, 1 validating, 2 committing
	retryPC  int // INPUT's own opcode PC, restarted on any validation failure
	line     string
	pos      int
	sawComma bool
}

func (vm *VM) execInputStart() {
	vm.input.retryPC = vm.pc - 1
	vm.beginInputLine()
}

func (vm *VM) beginInputLine() {
	vm.input.pass = 1
	vm.input.sawComma = false
	if vm.col.Pos() != 0 {
		vm.out.WriteByte('\n')
	}
	vm.col = printer.Column{}

	for {
		fmt.Fprint(vm.out, "? ")
		vm.out.Flush()

		line, err := vm.in.ReadString('\n')
		if err != nil && line == "" {
			if err == io.EOF {
				vm.fatalErr(compiler.ErrVoidInput, "")
				return
			}
			vm.fatalErr(compiler.ErrVoidInput, err.Error())
			return
		}

		line = strings.TrimRight(line, "\r\n")
		if len(line) > maxInputLineChars {
			vm.warn(compiler.ErrLineTooLong, "")
			continue
		}

		vm.input.line = line
		vm.input.pos = 0
		return
	}
}

func (vm *VM) retryInput(code compiler.Code) {
	vm.warn(code, "")
	vm.pc = vm.input.retryPC
}

func (vm *VM) lexAt(pos int, asUnquoted bool) (datalex.Elem, int) {
	s := vm.input.line[pos:]
	elem, rest := datalex.Next(s, datalex.AsUnquoted(asUnquoted))
	consumed := len(s) - len(rest)
	return elem, pos + consumed
}

func (vm *VM) execInputNum() {
	nextPC := vm.fetchID()

	if vm.input.pass == 1 {
		if vm.inputValidateNum() {
			vm.pc = nextPC
		}
		return
	}

	vm.push(vm.inputCommitNum())
}

func (vm *VM) inputValidateNum() bool {
	elem, next := vm.lexAt(vm.input.pos, false)

	switch elem.Type {
	case datalex.Number:
		if math.IsInf(elem.Num, 0) {
			vm.retryInput(compiler.ErrConstOverflow)
			return false
		}
		return vm.inputConsumeDelim(next)
	case datalex.EOF:
		vm.retryInput(compiler.ErrTooFewInput)
		return false
	case datalex.QuotedStr, datalex.UnquotedStr:
		vm.retryInput(compiler.ErrTypeMismatch)
		return false
	default:
		vm.retryInput(compiler.ErrSyntax)
		return false
	}
}

func (vm *VM) inputCommitNum() float64 {
	elem, next := vm.lexAt(vm.input.pos, false)
	_, after := vm.lexAt(next, false)
	vm.input.pos = after
	return elem.Num
}

func (vm *VM) execInputStr() {
	nextPC := vm.fetchID()

	if vm.input.pass == 1 {
		if vm.inputValidateStr() {
			vm.pc = nextPC
		}
		return
	}

	vm.push(float64(vm.inputCommitStr()))
}

func (vm *VM) inputValidateStr() bool {
	s := vm.input.line[vm.input.pos:]
	if len(s) > 0 && s[0] == '"' && !strings.Contains(s[1:], "\"") {
		vm.retryInput(compiler.ErrStrNoEnd)
		return false
	}

	elem, next := vm.lexAt(vm.input.pos, true)

	switch elem.Type {
	case datalex.QuotedStr, datalex.UnquotedStr:
		return vm.inputConsumeDelim(next)
	case datalex.EOF:
		vm.retryInput(compiler.ErrTooFewInput)
		return false
	case datalex.Number:
		vm.retryInput(compiler.ErrTypeMismatch)
		return false
	default:
		vm.retryInput(compiler.ErrSyntax)
		return false
	}
}

func (vm *VM) inputCommitStr() int {
	elem, next := vm.lexAt(vm.input.pos, true)
	_, after := vm.lexAt(next, false)
	vm.input.pos = after

	idx := vm.prog.Strs.Intern(elem.Str)
	return idx
}

// inputConsumeDelim checks that the token following a validated datum is a
// comma or end of line, recording which for input_end_op's "no trailing
// comma" check, and advances the cursor past it.
func (vm *VM) inputConsumeDelim(afterDatum int) bool {
	delim, after := vm.lexAt(afterDatum, false)

	switch delim.Type {
	case datalex.Comma:
		vm.input.sawComma = true
		vm.input.pos = after
		return true
	case datalex.EOF:
		vm.input.sawComma = false
		vm.input.pos = after
		return true
	default:
		vm.retryInput(compiler.ErrSyntax)
		return false
	}
}

func (vm *VM) execInputEnd() {
	if vm.input.pass != 1 {
		vm.input.pass = 0
		return
	}

	elem, _ := vm.lexAt(vm.input.pos, false)
	if elem.Type == datalex.EOF && !vm.input.sawComma {
		vm.input.pass = 2
		vm.input.pos = 0
		vm.pc = vm.input.retryPC + 1
		return
	}

	vm.retryInput(compiler.ErrTooMuchInput)
}

func (vm *VM) execInputList() {
	letter := vm.fetchID()
	desc := vm.prog.Vars.ArrayDesc(letter)

	idx := vm.pop()
	value := vm.pop()

	dindex := numerics.Floor(idx+0.5) - float64(vm.prog.BaseIndex)
	index, ok := vm.checkIndex(dindex, desc.Dim1)
	if !ok {
		return
	}

	pos := desc.RAMPos + index
	vm.ram[pos] = value
	vm.markInit(pos)
}

func (vm *VM) execInputTable() {
	letter := vm.fetchID()
	desc := vm.prog.Vars.ArrayDesc(letter)

	idx2 := vm.pop()
	idx1 := vm.pop()
	value := vm.pop()

	dindex2 := numerics.Floor(idx2+0.5) - float64(vm.prog.BaseIndex)
	dindex1 := numerics.Floor(idx1+0.5) - float64(vm.prog.BaseIndex)

	i1, ok := vm.checkIndex(dindex1, desc.Dim1)
	if !ok {
		return
	}
	i2, ok := vm.checkIndex(dindex2, desc.Dim2)
	if !ok {
		return
	}

	pos := desc.RAMPos + i1*desc.Dim2 + i2
	vm.ram[pos] = value
	vm.markInit(pos)
}
