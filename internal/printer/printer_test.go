package printer_test

import (
	"math"
	"strings"
	"testing"

	"github.com/jorgicor/bas55/internal/printer"
)

func TestFormatNumIntegers(t *testing.T) {
	tests := []struct {
		d    float64
		want string
	}{
		{0, " 0 "},
		{1, " 1 "},
		{-1, "-1 "},
		{100, " 100 "},
	}
	for _, tc := range tests {
		if got := printer.FormatNum(tc.d); got != tc.want {
			t.Errorf("FormatNum(%v) = %q, want %q", tc.d, got, tc.want)
		}
	}
}

func TestFormatNumFraction(t *testing.T) {
	if got := printer.FormatNum(0.5); got != " .5 " {
		t.Errorf("FormatNum(0.5) = %q, want %q (leading zero trimmed)", got, " .5 ")
	}
	if got := printer.FormatNum(-0.5); got != "-.5 " {
		t.Errorf("FormatNum(-0.5) = %q, want %q", got, "-.5 ")
	}
}

func TestFormatNumScaledNotation(t *testing.T) {
	got := printer.FormatNum(123456789012.0)
	if !strings.Contains(got, "E+") {
		t.Errorf("FormatNum(1.23...e11) = %q, want scaled notation", got)
	}
}

func TestFormatNumSpecialValues(t *testing.T) {
	if got := printer.FormatNum(math.Inf(1)); got != " INF " {
		t.Errorf("FormatNum(+Inf) = %q, want %q", got, " INF ")
	}
	if got := printer.FormatNum(math.Inf(-1)); got != "-INF " {
		t.Errorf("FormatNum(-Inf) = %q, want %q", got, "-INF ")
	}
}

func TestColumnNewlineResetsPosition(t *testing.T) {
	var col printer.Column
	var w strings.Builder

	col.Num(&w, 123)
	if col.Pos() == 0 {
		t.Fatal("expected Pos() > 0 after writing a number")
	}

	col.Newline(&w)
	if col.Pos() != 0 {
		t.Fatalf("Pos() = %d after Newline, want 0", col.Pos())
	}
	if !strings.HasSuffix(w.String(), "\n") {
		t.Fatalf("output = %q, want trailing newline", w.String())
	}
}

func TestColumnCommaWrapsZones(t *testing.T) {
	var col printer.Column
	var w strings.Builder

	for i := 0; i < printer.ZonesPerLine; i++ {
		col.Comma(&w)
	}
	if col.Pos() != 0 {
		t.Fatalf("Pos() = %d after wrapping all zones, want 0", col.Pos())
	}
	if !strings.Contains(w.String(), "\n") {
		t.Fatal("expected a newline once zones wrap past ZonesPerLine")
	}
}

func TestColumnTabMovesForwardOnly(t *testing.T) {
	var col printer.Column
	var w strings.Builder

	col.Tab(&w, 10)
	if col.Pos() != 9 {
		t.Fatalf("Pos() = %d after Tab(10), want 9", col.Pos())
	}

	// Tab to an earlier column must wrap to a new line first.
	col.Tab(&w, 5)
	if col.Pos() != 4 {
		t.Fatalf("Pos() = %d after Tab(5), want 4", col.Pos())
	}
	if !strings.Contains(w.String(), "\n") {
		t.Fatal("expected Tab backwards to emit a newline")
	}
}
