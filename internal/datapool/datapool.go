// Package datapool holds the compiled DATA statements: an ordered list of
// (quoting, string-pool index) pairs with a rewindable read cursor. READ
// re-lexes the referenced pool string against the target variable's type
// at run time, via internal/datalex; this package only tracks which raw
// datum comes next.
package datapool

// Quoting records whether a DATA literal appeared quoted in source. An
// unquoted datum is eligible for numeric reinterpretation by the data
// lexer; a quoted one is always a string.
type Quoting uint8

const (
	Unquoted Quoting = iota
	Quoted
)

type datum struct {
	quoting Quoting
	strIdx  int
}

// Pool is the ordered list of DATA statement values compiled from a
// program, in source order across all DATA statements regardless of which
// line they appeared on.
type Pool struct {
	data   []datum
	cursor int
}

// New returns an empty Pool positioned at the first datum.
func New() *Pool { return &Pool{} }

// Add appends one DATA literal, referencing strIdx in the program's
// string pool.
func (p *Pool) Add(strIdx int, quoting Quoting) {
	p.data = append(p.data, datum{quoting: quoting, strIdx: strIdx})
}

// Restore rewinds the read cursor to the first datum, the effect of a
// RESTORE statement or the start of a RUN.
func (p *Pool) Restore() { p.cursor = 0 }

// Read returns the next datum's string-pool index and quoting, advancing
// the cursor. ok is false if DATA is exhausted, the condition READ must
// report as a run-time fatal error.
func (p *Pool) Read() (strIdx int, quoting Quoting, ok bool) {
	if p.cursor >= len(p.data) {
		return 0, Unquoted, false
	}

	d := p.data[p.cursor]
	p.cursor++

	return d.strIdx, d.quoting, true
}

// Len reports the total number of compiled DATA literals.
func (p *Pool) Len() int { return len(p.data) }
