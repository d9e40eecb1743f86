package vars_test

import (
	"testing"

	"github.com/jorgicor/bas55/internal/vars"
)

func TestEncodeRoundTrips(t *testing.T) {
	c := vars.Encode('A', '5')
	if c.Letter() != 'A' || c.Suffix() != '5' {
		t.Fatalf("Letter=%c Suffix=%c, want A 5", c.Letter(), c.Suffix())
	}
}

func TestIsStringAndIsNumeric(t *testing.T) {
	str := vars.Encode('B', '$')
	if !str.IsString() || str.IsNumeric() {
		t.Fatalf("B$ classified IsString=%v IsNumeric=%v", str.IsString(), str.IsNumeric())
	}

	num := vars.Encode('B', 0)
	if num.IsString() || !num.IsNumeric() {
		t.Fatalf("bare B classified IsString=%v IsNumeric=%v", num.IsString(), num.IsNumeric())
	}
}

func TestHasDigit(t *testing.T) {
	if !vars.Encode('C', '3').HasDigit() {
		t.Fatal("C3 should report HasDigit")
	}
	if vars.Encode('C', 0).HasDigit() {
		t.Fatal("bare C should not report HasDigit")
	}
	if vars.Encode('C', '$').HasDigit() {
		t.Fatal("C$ should not report HasDigit")
	}
}

func TestIndex1And2(t *testing.T) {
	tests := []struct {
		c        vars.Coded
		i1, i2 int
	}{
		{vars.Encode('A', 0), 0, 10},
		{vars.Encode('Z', 0), 25, 10},
		{vars.Encode('A', '$'), 0, 11},
		{vars.Encode('A', '7'), 0, 7},
	}
	for _, tc := range tests {
		if got := tc.c.Index1(); got != tc.i1 {
			t.Errorf("Index1() = %d, want %d", got, tc.i1)
		}
		if got := tc.c.Index2(); got != tc.i2 {
			t.Errorf("Index2() = %d, want %d", got, tc.i2)
		}
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		c    vars.Coded
		want string
	}{
		{vars.Encode('A', 0), "A"},
		{vars.Encode('A', '3'), "A3"},
		{vars.Encode('A', '$'), "A$"},
	}
	for _, tc := range tests {
		if got := tc.c.String(); got != tc.want {
			t.Errorf("String() = %q, want %q", got, tc.want)
		}
	}
}
