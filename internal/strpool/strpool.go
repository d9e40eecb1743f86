// Package strpool implements the interned, reference-counted string pool
// backing PUSH_STR operands, string variables, and INPUT-installed
// strings. Equal literal strings and equal strings installed by INPUT
// always intern to the same pool index, so EQ_STR/NOT_EQ_STR can compare
// by index rather than by content.
package strpool

// nLetters is the number of BASIC variable letters (A-Z); slot 0's
// refcount is reset to nLetters+1 on Reset, matching every string
// variable's implicit initial value of "".
const nLetters = 26

// Pool is the process-owned table of interned strings. The zero value is
// not ready for use; call New.
type Pool struct {
	strs  []string
	count []int32
	// nconst is the number of entries, counted from the front, that are
	// program-literal constants. Reset never discards them.
	nconst int
}

// New returns a Pool with slot 0 pre-interned to the empty string, as
// every implicit string-variable value.
func New() *Pool {
	p := &Pool{}
	p.strs = append(p.strs, "")
	p.count = append(p.count, 0)
	return p
}

// Intern returns the pool index for s, adding a new slot only if no equal
// string is already present (skipping slots freed back to zero refcount).
func (p *Pool) Intern(s string) int {
	// A slot is free only once Release has cleared it; slot 0 and the
	// constant prefix never are.
	free := func(i int) bool {
		return i > 0 && i >= p.nconst && p.count[i] == 0 && p.strs[i] == ""
	}
	for i, existing := range p.strs {
		if free(i) {
			continue
		}
		if existing == s {
			return i
		}
	}

	for i := range p.strs {
		if free(i) {
			p.strs[i] = s
			return i
		}
	}

	p.strs = append(p.strs, s)
	p.count = append(p.count, 0)
	return len(p.strs) - 1
}

// String returns the string stored at pool index i.
func (p *Pool) String(i int) string { return p.strs[i] }

// Retain increments the refcount of the string at index i.
func (p *Pool) Retain(i int) { p.count[i]++ }

// Release decrements the refcount of the string at index i. At zero the
// slot is cleared to empty and becomes eligible for reuse by Intern.
func (p *Pool) Release(i int) {
	p.count[i]--
	if p.count[i] == 0 {
		p.strs[i] = ""
	}
}

// SetRefcount forces the refcount of the string at index i, used to give
// the empty string at slot 0 its "every variable implicitly points here"
// count after Reset.
func (p *Pool) SetRefcount(i int, n int32) { p.count[i] = n }

// MarkConstants freezes the current length as the constant prefix: Reset
// never discards entries below this count. The compiler calls this once,
// at the end of a successful compile, after all program-literal strings
// have been interned.
func (p *Pool) MarkConstants() { p.nconst = len(p.strs) }

// Reset discards every non-constant string (those installed by INPUT
// during the previous RUN), restoring refcounts as if a fresh RUN had
// just begun: constants get refcount 1, and slot 0 (the empty string)
// gets nLetters+1, since every one of the 26 string variables implicitly
// starts out equal to "".
func (p *Pool) Reset() {
	p.SetRefcount(0, nLetters+1)
	for i := 1; i < p.nconst; i++ {
		p.SetRefcount(i, 1)
	}

	p.strs = p.strs[:p.nconst]
	p.count = p.count[:p.nconst]
}

// Len reports the number of live slots, including freed-but-unreused ones
// below nconst.
func (p *Pool) Len() int { return len(p.strs) }
