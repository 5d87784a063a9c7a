package safe

import (
	"math"
	"testing"
)

func TestCheckedMath(t *testing.T) {
	tests := []struct {
		name string
		op   func(a, b int64) (int64, bool)
		a, b int64
		want int64
		ok   bool
	}{
		{"add normal", CheckedAdd, 10, 20, 30, true},
		{"add boundary", CheckedAdd, math.MaxInt64 - 1, 1, math.MaxInt64, true},
		{"add overflow", CheckedAdd, math.MaxInt64, 1, 0, false},
		{"add underflow", CheckedAdd, math.MinInt64, -1, 0, false},
		{"sub normal", CheckedSub, 30, 10, 20, true},
		{"sub underflow", CheckedSub, math.MinInt64, 1, 0, false},
		{"mul normal", CheckedMul, 5, 6, 30, true},
		{"mul zero", CheckedMul, 0, math.MaxInt64, 0, true},
		{"mul overflow", CheckedMul, math.MaxInt64/2 + 1, 2, 0, false},
		{"mul negative overflow", CheckedMul, math.MinInt64, 2, 0, false},
		{"mul min by one", CheckedMul, math.MinInt64, 1, math.MinInt64, true},
		{"mul scale", CheckedMul, 9_223_372_036_854, 1_000_000, 9_223_372_036_854_000_000, true},
		{"mul scale overflow", CheckedMul, 9_223_372_036_855, 1_000_000, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.op(tt.a, tt.b)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSafeMath(t *testing.T) {
	if got := SafeAdd(10, 20); got != 30 {
		t.Errorf("SafeAdd = %d, want 30", got)
	}
	if got := SafeSub(30, 10); got != 20 {
		t.Errorf("SafeSub = %d, want 20", got)
	}
	if got := SafeMul(5, 6); got != 30 {
		t.Errorf("SafeMul = %d, want 30", got)
	}
	if got := SafeDiv(100, 4); got != 25 {
		t.Errorf("SafeDiv = %d, want 25", got)
	}
}

func TestSafeMathPanics(t *testing.T) {
	mustPanic := func(t *testing.T, fn func()) {
		t.Helper()
		defer func() {
			if r := recover(); r == nil {
				t.Error("should have panicked")
			}
		}()
		fn()
	}

	t.Run("add overflow", func(t *testing.T) {
		mustPanic(t, func() { SafeAdd(math.MaxInt64, 1) })
	})
	t.Run("mul overflow", func(t *testing.T) {
		mustPanic(t, func() { SafeMul(math.MaxInt64, 2) })
	})
	t.Run("div by zero", func(t *testing.T) {
		mustPanic(t, func() { SafeDiv(10, 0) })
	})
	t.Run("div min by minus one", func(t *testing.T) {
		mustPanic(t, func() { SafeDiv(math.MinInt64, -1) })
	})
}
