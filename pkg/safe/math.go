package safe

import "math"

// Checked variants report overflow to the caller. They are the right
// choice on boundary paths (wire parsing) where bad input must become an
// error, not a crash.

// CheckedAdd returns a+b and whether the result fits in int64.
func CheckedAdd(a, b int64) (int64, bool) {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return 0, false
	}
	return a + b, true
}

// CheckedSub returns a-b and whether the result fits in int64.
func CheckedSub(a, b int64) (int64, bool) {
	if (b > 0 && a < math.MinInt64+b) || (b < 0 && a > math.MaxInt64+b) {
		return 0, false
	}
	return a - b, true
}

// CheckedMul returns a*b and whether the result fits in int64.
func CheckedMul(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	if a == math.MinInt64 || b == math.MinInt64 {
		// MinInt64 has no positive counterpart; only *1 is representable.
		if a == 1 || b == 1 {
			return math.MinInt64, true
		}
		return 0, false
	}
	v := a * b
	if v/b != a {
		return 0, false
	}
	return v, true
}

// Safe variants panic on overflow. They guard internal arithmetic whose
// operands are already validated, where overflow means a broken invariant
// rather than bad input.

// SafeAdd performs int64 addition and panics on overflow/underflow.
func SafeAdd(a, b int64) int64 {
	v, ok := CheckedAdd(a, b)
	if !ok {
		panic("QUANT_SAFE_ADD_OVERFLOW")
	}
	return v
}

// SafeSub performs int64 subtraction and panics on overflow/underflow.
func SafeSub(a, b int64) int64 {
	v, ok := CheckedSub(a, b)
	if !ok {
		panic("QUANT_SAFE_SUB_OVERFLOW")
	}
	return v
}

// SafeMul performs int64 multiplication and panics on overflow/underflow.
func SafeMul(a, b int64) int64 {
	v, ok := CheckedMul(a, b)
	if !ok {
		panic("QUANT_SAFE_MUL_OVERFLOW")
	}
	return v
}

// SafeDiv performs int64 division and panics on division by zero.
func SafeDiv(a, b int64) int64 {
	if b == 0 {
		panic("QUANT_SAFE_DIV_BY_ZERO")
	}
	if a == math.MinInt64 && b == -1 {
		panic("QUANT_SAFE_DIV_OVERFLOW")
	}
	return a / b
}
