package compiler

import "github.com/jorgicor/bas55/internal/vars"

// forNode is one FOR/NEXT lexical block. Nodes live in a flat, owned
// slice and reference each other by index rather than pointer, per the
// arena+index convention used across this compiler.
type forNode struct {
	codedVar  vars.Coded
	cmpPC     int
	startLine int
	endLine   int
	parent    int // -1 for a top-level block
}

// forTree tracks FOR/NEXT lexical nesting for one compile, both to emit
// FOR_CMP back-patches and to validate that no GOTO/GOSUB/ON-GOTO/THEN
// jump enters a FOR block from outside it.
type forTree struct {
	nodes []forNode
	stack []int // open block indices, innermost last
}

func newForTree() *forTree { return &forTree{} }

// Open starts a new FOR block nested inside whatever block is currently
// open (or top-level if none is). It returns the node's index so the
// caller can stash cmpPC and codedVar.
func (t *forTree) Open(line int) int {
	parent := -1
	if len(t.stack) > 0 {
		parent = t.stack[len(t.stack)-1]
	}

	idx := len(t.nodes)
	t.nodes = append(t.nodes, forNode{startLine: line, endLine: line, parent: parent})
	t.stack = append(t.stack, idx)

	return idx
}

// Current returns the index of the innermost open block, or -1 if none
// is open.
func (t *forTree) Current() int {
	if len(t.stack) == 0 {
		return -1
	}
	return t.stack[len(t.stack)-1]
}

// SetMeta records the controlling variable and FOR_CMP PC for the
// currently open block, once the compiler knows them.
func (t *forTree) SetMeta(idx int, v vars.Coded, cmpPC int) {
	t.nodes[idx].codedVar = v
	t.nodes[idx].cmpPC = cmpPC
}

// CmpPC returns the FOR_CMP PC recorded for block idx.
func (t *forTree) CmpPC(idx int) int { return t.nodes[idx].cmpPC }

// Var returns the controlling variable recorded for block idx.
func (t *forTree) Var(idx int) vars.Coded { return t.nodes[idx].codedVar }

// HasOuterSameVar reports whether any FOR block still open (including
// the innermost) already controls v — a NEXT/FOR pair may not reuse a
// variable some enclosing FOR is already iterating.
func (t *forTree) HasOuterSameVar(v vars.Coded) bool {
	for _, idx := range t.stack {
		if t.nodes[idx].codedVar == v {
			return true
		}
	}
	return false
}

// Close ends the innermost open block at line, returning its index. ok
// is false if no block was open (a NEXT without a FOR).
func (t *forTree) Close(line int) (idx int, ok bool) {
	if len(t.stack) == 0 {
		return 0, false
	}

	idx = t.stack[len(t.stack)-1]
	t.stack = t.stack[:len(t.stack)-1]
	t.nodes[idx].endLine = line

	return idx, true
}

// OpenCount reports how many FOR blocks remain unclosed at end of
// compile — a non-zero count is a FOR-without-NEXT error.
func (t *forTree) OpenCount() int { return len(t.stack) }

// containing returns the index of the innermost block whose (start, end]
// range contains line, or -1 if line is not inside any FOR block. The FOR
// line itself is not considered inside, matching find_line_in_block: a
// jump landing exactly on the FOR statement is a jump to the block's
// boundary, not into its body.
func (t *forTree) containing(line int) int {
	best := -1
	bestDepth := -1
	for i, n := range t.nodes {
		if line > n.startLine && line <= n.endLine {
			depth := t.depth(i)
			if depth > bestDepth {
				bestDepth = depth
				best = i
			}
		}
	}
	return best
}

func (t *forTree) depth(idx int) int {
	d := 0
	for idx != -1 {
		idx = t.nodes[idx].parent
		d++
	}
	return d
}

// jumpRef is one recorded control-transfer edge, checked for FOR-block
// legality once the whole program has been compiled (so every target
// line's block membership is known, including forward references).
type jumpRef struct {
	fromLine int
	toLine   int
}

// LegalJump reports whether a jump from fromLine to toLine is legal: the
// target lies outside every FOR block, or the target's innermost FOR
// block is the source's innermost block or one enclosing it. A jump that
// enters a FOR block the source is not already inside, nested or not, is
// illegal.
func (t *forTree) LegalJump(fromLine, toLine int) bool {
	from := t.containing(fromLine)
	to := t.containing(toLine)

	for from != to && from != -1 {
		from = t.nodes[from].parent
	}

	return from == to
}
