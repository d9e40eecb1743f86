package vm

import (
	"strings"

	"github.com/jorgicor/bas55/internal/datalex"
)

// parseWholeNumber lexes s as a single numeric datum with nothing left
// over (after trailing spaces), matching read_double's double check:
// one parse_data_elem call for the value, another confirming EOF.
func parseWholeNumber(s string) (float64, bool) {
	elem, rest := datalex.Next(s, false)
	if elem.Type != datalex.Number {
		return 0, false
	}

	if strings.TrimSpace(rest) != "" {
		return 0, false
	}

	return elem.Num, true
}
