// Package bytecode defines the instruction set that the compiler emits and
// the VM executes: a flat vector of tagged cells, one opcode per
// instruction followed by zero to three operand cells.
package bytecode

// Opcode identifies one VM instruction.
type Opcode uint8

//go:generate go run golang.org/x/tools/cmd/stringer -type Opcode -output opcode_string.go

// Opcodes, in the order the compiler's statement actions emit them.
const (
	PushNum Opcode = iota
	PushStr
	PrintNL
	PrintComma
	PrintTab
	PrintNum
	PrintStr
	LetVar
	LetList
	LetTable
	LetStrVar
	GetVar
	GetFnVar
	GetStrVar
	GetList
	GetTable
	Add
	Sub
	Mul
	Div
	Pow
	Neg
	Line
	Gosub
	Return
	Goto
	OnGoto
	GotoIfTrue
	Less
	Greater
	LessEq
	GreaterEq
	Eq
	NotEq
	EqStr
	NotEqStr
	For
	ForCmp
	Next
	Restore
	ReadVar
	ReadList
	ReadTable
	ReadStrVar
	Ifun0
	Ifun1
	Randomize
	Input
	InputNum
	InputStr
	InputEnd
	InputList
	InputTable
	// CheckInitVar and SetInitVar consult and populate the RAM
	// initialization bitmap for the cell named by their operand. The
	// compiler never emits them; in debug mode the VM makes the same checks
	// inside the ordinary variable read/write opcodes.
	CheckInitVar
	SetInitVar
	End

	numOpcodes
)

// delta holds the static stack-depth contribution of one opcode: Push is
// the number of cells pushed before any operand is consulted, Net is the
// signed change in depth once the opcode has fully executed. The compiler
// sums Push (clamped against Net) along the emitted sequence to bound the
// operand stack without ever running it.
type delta struct {
	Push int8
	Net  int8
}

// stackDelta is indexed by Opcode and mirrors vm_ops[] from the reference
// interpreter: one (push, net) pair per opcode, used by the compiler to
// compute StackSize for the program and for each DEF FN body.
var stackDelta = [numOpcodes]delta{
	PushNum:      {1, 1},
	PushStr:      {1, 1},
	PrintNL:      {0, 0},
	PrintComma:   {0, 0},
	PrintTab:     {0, -1},
	PrintNum:     {0, -1},
	PrintStr:     {0, -1},
	LetVar:       {0, -1},
	LetList:      {0, -2},
	LetTable:     {0, -3},
	LetStrVar:    {0, -1},
	GetVar:       {1, 1},
	GetFnVar:     {1, 1},
	GetStrVar:    {1, 1},
	GetList:      {0, 0},
	GetTable:     {0, -1},
	Add:          {0, -1},
	Sub:          {0, -1},
	Mul:          {0, -1},
	Div:          {0, -1},
	Pow:          {0, -1},
	Neg:          {0, 0},
	Line:         {0, 0},
	Gosub:        {0, 0},
	Return:       {0, 0},
	Goto:         {0, 0},
	OnGoto:       {0, -1},
	GotoIfTrue:   {0, -1},
	Less:         {0, -1},
	Greater:      {0, -1},
	LessEq:       {0, -1},
	GreaterEq:    {0, -1},
	Eq:           {0, -1},
	NotEq:        {0, -1},
	EqStr:        {0, -1},
	NotEqStr:     {0, -1},
	For:          {0, -3},
	ForCmp:       {0, 0},
	Next:         {0, 0},
	Restore:      {0, 0},
	ReadVar:      {0, 0},
	ReadList:     {0, -1},
	ReadTable:    {0, -2},
	ReadStrVar:   {0, 0},
	Ifun0:        {1, 1},
	Ifun1:        {0, 0},
	Randomize:    {0, 0},
	Input:        {0, 0},
	InputNum:     {1, 1},
	InputStr:     {1, 1},
	InputEnd:     {0, 0},
	InputList:    {0, -2},
	InputTable:   {0, -3},
	CheckInitVar: {0, 0},
	SetInitVar:   {0, 0},
	End:          {0, 0},
}

// StackPush returns the number of cells op pushes before it reads any of
// its own operands off the stack.
func (op Opcode) StackPush() int { return int(stackDelta[op].Push) }

// StackNet returns the signed change in operand-stack depth once op has
// completed.
func (op Opcode) StackNet() int { return int(stackDelta[op].Net) }

