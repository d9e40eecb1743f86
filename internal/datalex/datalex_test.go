package datalex_test

import (
	"math"
	"testing"

	"github.com/jorgicor/bas55/internal/datalex"
)

func TestNextNumber(t *testing.T) {
	elem, rest := datalex.Next("42, 7", false)
	if elem.Type != datalex.Number || elem.Num != 42 {
		t.Fatalf("elem = %+v", elem)
	}
	if rest != ", 7" {
		t.Fatalf("rest = %q", rest)
	}
}

func TestNextQuotedString(t *testing.T) {
	elem, rest := datalex.Next(`"HELLO, WORLD", 1`, false)
	if elem.Type != datalex.QuotedStr || elem.Str != "HELLO, WORLD" {
		t.Fatalf("elem = %+v", elem)
	}
	if rest != ", 1" {
		t.Fatalf("rest = %q", rest)
	}
}

func TestNextUnquotedString(t *testing.T) {
	elem, rest := datalex.Next("HELLO WORLD,1", false)
	if elem.Type != datalex.UnquotedStr || elem.Str != "HELLO WORLD" {
		t.Fatalf("elem = %+v", elem)
	}
	if rest != ",1" {
		t.Fatalf("rest = %q", rest)
	}
}

func TestNextAsUnquotedForcesStringForNumericLooking(t *testing.T) {
	elem, _ := datalex.Next("123", true)
	if elem.Type != datalex.UnquotedStr || elem.Str != "123" {
		t.Fatalf("elem = %+v, want a string despite looking numeric", elem)
	}
}

func TestNextComma(t *testing.T) {
	elem, rest := datalex.Next(",5", false)
	if elem.Type != datalex.Comma {
		t.Fatalf("elem = %+v", elem)
	}
	if rest != "5" {
		t.Fatalf("rest = %q", rest)
	}
}

func TestNextEOF(t *testing.T) {
	elem, _ := datalex.Next("", false)
	if elem.Type != datalex.EOF {
		t.Fatalf("elem = %+v", elem)
	}
	elem, _ = datalex.Next("   ", false)
	if elem.Type != datalex.EOF {
		t.Fatalf("whitespace-only input: elem = %+v", elem)
	}
}

func TestNextNumberOverflowBecomesSignedInf(t *testing.T) {
	elem, _ := datalex.Next("1E400", false)
	if elem.Type != datalex.Number || !math.IsInf(elem.Num, 1) {
		t.Fatalf("elem = %+v, want +Inf", elem)
	}

	elem, _ = datalex.Next("-1E400", false)
	if elem.Type != datalex.Number || !math.IsInf(elem.Num, -1) {
		t.Fatalf("elem = %+v, want -Inf", elem)
	}
}

func TestNextInvalidChar(t *testing.T) {
	elem, rest := datalex.Next("#BAD", false)
	if elem.Type != datalex.InvalidChar || elem.Str != "#" {
		t.Fatalf("elem = %+v", elem)
	}
	if rest != "BAD" {
		t.Fatalf("rest = %q", rest)
	}
}

func TestNextSkipsLeadingWhitespace(t *testing.T) {
	elem, _ := datalex.Next("   99", false)
	if elem.Type != datalex.Number || elem.Num != 99 {
		t.Fatalf("elem = %+v", elem)
	}
}
