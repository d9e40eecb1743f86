package numerics_test

import (
	"errors"
	"math"
	"testing"

	"github.com/jorgicor/bas55/internal/numerics"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestFloor(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{1.5, 1},
		{-1.5, -2},
		{2, 2},
		{-2, -2},
		{0, 0},
	}
	for _, tc := range tests {
		if got := numerics.Floor(tc.in); got != tc.want {
			t.Errorf("Floor(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestFloorSpecialValues(t *testing.T) {
	if !math.IsNaN(numerics.Floor(math.NaN())) {
		t.Error("Floor(NaN) should be NaN")
	}
	if !math.IsInf(numerics.Floor(math.Inf(1)), 1) {
		t.Error("Floor(+Inf) should be +Inf")
	}
}

func TestExpAndLogAreInverse(t *testing.T) {
	for _, x := range []float64{0.5, 1, 2, 10} {
		e, err := numerics.Exp(x)
		if err != nil {
			t.Fatalf("Exp(%v): %v", x, err)
		}
		l, err := numerics.Log(e)
		if err != nil {
			t.Fatalf("Log(Exp(%v)): %v", x, err)
		}
		if !almostEqual(l, x) {
			t.Errorf("Log(Exp(%v)) = %v, want %v", x, l, x)
		}
	}
}

func TestLogNegativeIsDomainError(t *testing.T) {
	_, err := numerics.Log(-1)
	var domErr *numerics.DomainError
	if !errors.As(err, &domErr) {
		t.Fatalf("Log(-1) err = %v, want a DomainError", err)
	}
}

func TestSqrt(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{4, 2},
		{9, 3},
		{2, math.Sqrt2},
	}
	for _, tc := range tests {
		got, err := numerics.Sqrt(tc.in)
		if err != nil {
			t.Fatalf("Sqrt(%v): %v", tc.in, err)
		}
		if !almostEqual(got, tc.want) {
			t.Errorf("Sqrt(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestSqrtNegativeIsDomainError(t *testing.T) {
	_, err := numerics.Sqrt(-4)
	var domErr *numerics.DomainError
	if !errors.As(err, &domErr) {
		t.Fatalf("Sqrt(-4) err = %v, want a DomainError", err)
	}
}

func TestSinCosTan(t *testing.T) {
	s, err := numerics.Sin(0)
	if err != nil || s != 0 {
		t.Fatalf("Sin(0) = %v, %v", s, err)
	}

	c, err := numerics.Cos(0)
	if err != nil || c != 1 {
		t.Fatalf("Cos(0) = %v, %v", c, err)
	}

	sHalfPi, _ := numerics.Sin(math.Pi / 2)
	if !almostEqual(sHalfPi, 1) {
		t.Fatalf("Sin(pi/2) = %v, want 1", sHalfPi)
	}
}

func TestAtan(t *testing.T) {
	if got := numerics.Atan(0); got != 0 {
		t.Fatalf("Atan(0) = %v, want 0", got)
	}
	if got := numerics.Atan(math.Inf(1)); !almostEqual(got, math.Pi/2) {
		t.Fatalf("Atan(+Inf) = %v, want pi/2", got)
	}
}

func TestPowIntegerExponents(t *testing.T) {
	tests := []struct{ x, y, want float64 }{
		{2, 3, 8},
		{2, 0, 1},
		{1, math.Inf(1), 1},
		{5, 1, 5},
	}
	for _, tc := range tests {
		got, err := numerics.Pow(tc.x, tc.y)
		if err != nil {
			t.Fatalf("Pow(%v,%v): %v", tc.x, tc.y, err)
		}
		if !almostEqual(got, tc.want) {
			t.Errorf("Pow(%v,%v) = %v, want %v", tc.x, tc.y, got, tc.want)
		}
	}
}

func TestPowNegativeBaseNonIntegralExponentIsDomainError(t *testing.T) {
	_, err := numerics.Pow(-2, 0.5)
	var domErr *numerics.DomainError
	if !errors.As(err, &domErr) {
		t.Fatalf("Pow(-2, 0.5) err = %v, want a DomainError", err)
	}
}

func TestPowZeroToNegativeIsRangeError(t *testing.T) {
	_, err := numerics.Pow(0, -1)
	var rngErr *numerics.RangeError
	if !errors.As(err, &rngErr) {
		t.Fatalf("Pow(0, -1) err = %v, want a RangeError", err)
	}
}

func TestRandDeterministic(t *testing.T) {
	r1 := numerics.NewRand(1)
	r2 := numerics.NewRand(1)

	for i := 0; i < 5; i++ {
		a, b := r1.Float64(), r2.Float64()
		if a != b {
			t.Fatalf("Rand diverged at step %d: %v != %v", i, a, b)
		}
		if a < 0 || a >= 1 {
			t.Fatalf("Float64() = %v, want [0,1)", a)
		}
	}
}
