package vars

// Type classifies a declared variable slot.
type Type uint8

const (
	Undef Type = iota
	Num
	List
	TableType
	Str
)

// ArrayDesc records where a letter's array storage begins and how big it
// is. The compiler fills this from the first DIM, or implicitly on first
// subscripted reference with subscripts from the OPTION BASE up to 10 (11
// elements per dimension under base 0, 10 under base 1).
type ArrayDesc struct {
	RAMPos int
	Dim1   int
	Dim2   int // 0 for a one-dimensional (LIST) array.
}

// Table holds every per-letter/per-suffix declaration the compiler has
// seen for the program currently being compiled: variable types, their
// RAM positions, and array dimensions. It is rebuilt from scratch at the
// start of every compile.
type Table struct {
	varType [NLetters][NSubVars]Type
	ramPos  [NLetters][NSubVars]int
	dim     [NLetters]struct{ dim1, dim2 int }
	dimmed  [NLetters]bool
	arrays  [NLetters]ArrayDesc
}

// NewTable returns a Table with every RAM position marked unassigned.
func NewTable() *Table {
	t := &Table{}
	for i := range t.ramPos {
		for j := range t.ramPos[i] {
			t.ramPos[i][j] = -1
		}
	}

	return t
}

// Type returns the declared type of c, or Undef if c has not yet been
// referenced in the program being compiled.
func (t *Table) Type(c Coded) Type {
	return t.varType[c.Index1()][c.Index2()]
}

// Declare assigns typ and ramPos to c the first time it is seen; later
// calls are no-ops, matching the source's "first declaration wins" rule
// (a scalar reference after a DIM, or vice versa, is instead rejected
// upstream by the compiler's type check before Declare is reached).
func (t *Table) Declare(c Coded, typ Type, ramPos int) {
	i1, i2 := c.Index1(), c.Index2()
	if t.varType[i1][i2] == Undef {
		t.varType[i1][i2] = typ
		t.ramPos[i1][i2] = ramPos
	}
}

// RAMPos returns the RAM position assigned to scalar variable c, or -1 if
// c has not been declared.
func (t *Table) RAMPos(c Coded) int {
	return t.ramPos[c.Index1()][c.Index2()]
}

// EnsureRAMPos assigns the next free RAM position to c if it doesn't
// already have one, and returns it either way. This is how a bare
// variable reference (no prior LET or DIM) gets storage on first use.
func (t *Table) EnsureRAMPos(c Coded, next func() int) int {
	i1, i2 := c.Index1(), c.Index2()
	if t.ramPos[i1][i2] == -1 {
		t.ramPos[i1][i2] = next()
	}

	return t.ramPos[i1][i2]
}

// Dimensioned reports whether letter (0-based, A=0) has been explicitly
// or implicitly dimensioned.
func (t *Table) Dimensioned(letter int) bool { return t.dimmed[letter] }

// SetDim records the declared dimensions for letter's array and marks it
// dimensioned. dim2 is 0 for a LIST.
func (t *Table) SetDim(letter, dim1, dim2 int) {
	t.dim[letter].dim1 = dim1
	t.dim[letter].dim2 = dim2
	t.dimmed[letter] = true
}

// Dim returns the previously declared dimension (1 or 2) for letter.
func (t *Table) Dim(letter, ndim int) int {
	if ndim == 1 {
		return t.dim[letter].dim1
	}

	return t.dim[letter].dim2
}

// SetArrayDesc records where letter's array storage begins in RAM.
func (t *Table) SetArrayDesc(letter int, rampos, dim1, dim2 int) {
	t.arrays[letter] = ArrayDesc{RAMPos: rampos, Dim1: dim1, Dim2: dim2}
}

// ArrayDesc returns the array descriptor previously recorded for letter.
func (t *Table) ArrayDesc(letter int) ArrayDesc { return t.arrays[letter] }

// EachScalar calls fn once per declared scalar variable, in no particular
// order. It is used to build the RAM-position-to-name map the debug-mode
// uninitialized-variable warning needs, without threading that mapping
// through every call site that assigns a RAM position.
func (t *Table) EachScalar(fn func(c Coded, ramPos int, typ Type)) {
	for i1 := 0; i1 < NLetters; i1++ {
		for i2 := 0; i2 < NSubVars; i2++ {
			typ := t.varType[i1][i2]
			if typ == Undef || typ == List || typ == TableType {
				continue
			}

			suffix := byte(0)
			switch {
			case i2 == 10:
				suffix = 0
			case i2 == 11:
				suffix = '$'
			default:
				suffix = byte('0' + i2)
			}

			fn(Encode(byte('A'+i1), suffix), t.ramPos[i1][i2], typ)
		}
	}
}
