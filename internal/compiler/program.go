package compiler

import (
	"sort"

	"github.com/jorgicor/bas55/internal/bytecode"
	"github.com/jorgicor/bas55/internal/datapool"
	"github.com/jorgicor/bas55/internal/strpool"
	"github.com/jorgicor/bas55/internal/vars"
)

// FuncDef is a compiled DEF FN: one RAM cell for its parameter, an entry
// PC, and the stack depth its body needs on top of whatever the caller
// already pushed.
type FuncDef struct {
	Name     byte // the letter after FN
	Param    vars.Coded
	ParamPos int
	PC       int
	StackMax int
}

// linePC maps one BASIC line number to its first instruction.
type linePC struct {
	Line int
	PC   int
}

// ForLoop holds the three RAM cells one FOR header assigned (the control
// variable and the hidden limit/step temporaries), keyed by the FOR_CMP
// instruction's own PC so the VM can find them without having to reach
// backward through the code vector the way the reference interpreter's
// fixed pc-relative offsets do.
type ForLoop struct {
	VarPos   int
	LimitPos int
	StepPos  int
}

// Program is everything the compiler produces and the VM consumes: the
// instruction vector, the interned string and DATA pools, variable and
// array descriptors, the line number to PC table, and the computed
// maximum operand-stack depth.
type Program struct {
	Code  []bytecode.Cell
	Strs  *strpool.Pool
	Data  *datapool.Pool
	Vars  *vars.Table
	Funcs map[byte]*FuncDef

	BaseIndex int // OPTION BASE value, 0 or 1
	RAMSize   int
	StackMax  int

	ForLoops map[int]ForLoop // keyed by FOR_CMP's opcode PC

	lines []linePC
}

// NewProgram returns an empty Program ready to receive a compile.
func NewProgram() *Program {
	return &Program{
		Strs:      strpool.New(),
		ForLoops:  map[int]ForLoop{},
		Data:      datapool.New(),
		Vars:      vars.NewTable(),
		Funcs:     map[byte]*FuncDef{},
		BaseIndex: 0,
	}
}

// PC returns the current instruction count, i.e. the address the next
// emitted cell will occupy.
func (p *Program) PC() int { return len(p.Code) }

// EmitOp appends an opcode cell and returns its PC.
func (p *Program) EmitOp(op bytecode.Opcode) int {
	pc := p.PC()
	p.Code = append(p.Code, bytecode.OpCell(op))
	return pc
}

// EmitID appends an integer operand cell.
func (p *Program) EmitID(id int) { p.Code = append(p.Code, bytecode.IDCell(id)) }

// EmitNum appends a double operand cell.
func (p *Program) EmitNum(n float64) { p.Code = append(p.Code, bytecode.NumCell(n)) }

// PatchID overwrites the operand cell at pc, used to back-patch forward
// jump targets and FOR_CMP's end_pc.
func (p *Program) PatchID(pc int, id int) { p.Code[pc].ID = id }

// MapLine records that BASIC line number maps to PC, called once per
// compiled line, in ascending line order.
func (p *Program) MapLine(number, pc int) {
	p.lines = append(p.lines, linePC{Line: number, PC: pc})
}

// PCForLine returns the first instruction of line, or ok=false if line
// does not exist in the compiled program.
func (p *Program) PCForLine(line int) (int, bool) {
	i := sort.Search(len(p.lines), func(i int) bool { return p.lines[i].Line >= line })
	if i < len(p.lines) && p.lines[i].Line == line {
		return p.lines[i].PC, true
	}
	return 0, false
}

// LineExists reports whether line was compiled.
func (p *Program) LineExists(line int) bool {
	_, ok := p.PCForLine(line)
	return ok
}

// LineAt returns the BASIC line number whose range contains pc, used by
// the VM to report current_line in diagnostics.
func (p *Program) LineAt(pc int) int {
	// lines is sorted by Line, but PCs are monotonic with Line too since
	// lines compile strictly in order; binary search on PC directly.
	lo, hi := 0, len(p.lines)-1
	ans := 0
	for lo <= hi {
		mid := (lo + hi) / 2
		if p.lines[mid].PC <= pc {
			ans = p.lines[mid].Line
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	return ans
}

// AllocRAM reserves n fresh RAM cells and returns the position of the
// first one.
func (p *Program) AllocRAM(n int) int {
	pos := p.RAMSize
	p.RAMSize += n
	return pos
}
