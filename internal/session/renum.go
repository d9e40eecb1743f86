package session

import (
	"regexp"
	"strconv"
)

// jumpTarget matches a GO TO, GO SUB, or THEN keyword followed by a line
// number (or, for ON ... GO TO, a comma-separated list of them),
// capturing the keyword and the numbers separately so Renumber can
// substitute just the numbers, mirroring find_jmp_list/
// renum_line_list's textual rewrite of jump targets.
var jumpTarget = regexp.MustCompile(`(GO\s*TO|GO\s*SUB|THEN)(\s+)([0-9]+(?:\s*,\s*[0-9]+)*)`)

var lineNumber = regexp.MustCompile(`[0-9]+`)

// rewriteLineRefs replaces every line number following GO TO, GO SUB, or
// THEN with its renumbered value from table, leaving any number not in
// table untouched (it may be a numeric constant in an expression, not a
// jump target, so this is a best-effort textual rewrite rather than a
// full reparse).
func rewriteLineRefs(text string, table map[int]int) string {
	return jumpTarget.ReplaceAllStringFunc(text, func(m string) string {
		groups := jumpTarget.FindStringSubmatch(m)
		kw, sep, list := groups[1], groups[2], groups[3]

		return kw + sep + lineNumber.ReplaceAllStringFunc(list, func(numStr string) string {
			n, err := strconv.Atoi(numStr)
			if err != nil {
				return numStr
			}
			newNum, ok := table[n]
			if !ok {
				return numStr
			}
			return strconv.Itoa(newNum)
		})
	})
}
