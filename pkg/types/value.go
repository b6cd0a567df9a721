// Package types defines the core value types used throughout rpncalc.
// Numbers are exact: every value is held as a rational and only the
// formatting layer decides whether to show it as an integer.
package types

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// NumberKind reports which side of the int/rational union a Number is on.
type NumberKind int

const (
	NumberInt      NumberKind = iota // denominator is 1
	NumberRational                   // any other exact fraction
)

// String returns the kind name used in structured output.
func (k NumberKind) String() string {
	switch k {
	case NumberInt:
		return "int"
	case NumberRational:
		return "rational"
	default:
		return "unknown"
	}
}

// Number is an exact numeric value. The zero Number is 0.
//
// A Number never shares its underlying big.Rat with another Number, so values
// can be copied and passed around freely.
type Number struct {
	rat *big.Rat
}

// NewInt creates an integer value.
func NewInt(v int64) Number {
	return Number{rat: new(big.Rat).SetInt64(v)}
}

// NewRational creates the value num/denom. It panics if denom is zero.
func NewRational(num, denom int64) Number {
	return Number{rat: big.NewRat(num, denom)}
}

// NewFromRat creates a value from a copy of r.
func NewFromRat(r *big.Rat) Number {
	return Number{rat: new(big.Rat).Set(r)}
}

func (n Number) r() *big.Rat {
	if n.rat == nil {
		return new(big.Rat)
	}
	return n.rat
}

// Kind returns NumberInt when the value is a whole number.
func (n Number) Kind() NumberKind {
	if n.r().IsInt() {
		return NumberInt
	}
	return NumberRational
}

// IsInt returns true if the value is a whole number.
func (n Number) IsInt() bool {
	return n.Kind() == NumberInt
}

// IsZero returns true if the value is exactly zero.
func (n Number) IsZero() bool {
	return n.r().Sign() == 0
}

// Int64 returns the value as an int64 and whether that is exact.
func (n Number) Int64() (int64, bool) {
	r := n.r()
	if !r.IsInt() || !r.Num().IsInt64() {
		return 0, false
	}
	return r.Num().Int64(), true
}

// Float64 returns the nearest float64 to the value.
func (n Number) Float64() float64 {
	f, _ := n.r().Float64()
	return f
}

// Neg returns -n.
func (n Number) Neg() Number {
	return Number{rat: new(big.Rat).Neg(n.r())}
}

// Add returns n + o.
func (n Number) Add(o Number) Number {
	return Number{rat: new(big.Rat).Add(n.r(), o.r())}
}

// Sub returns n - o.
func (n Number) Sub(o Number) Number {
	return Number{rat: new(big.Rat).Sub(n.r(), o.r())}
}

// Mul returns n * o.
func (n Number) Mul(o Number) Number {
	return Number{rat: new(big.Rat).Mul(n.r(), o.r())}
}

// Quo returns the exact quotient n / o.
func (n Number) Quo(o Number) (Number, error) {
	if o.IsZero() {
		return Number{}, NewDivisionByZeroError("division by zero")
	}
	return Number{rat: new(big.Rat).Quo(n.r(), o.r())}, nil
}

// Rem returns the remainder of n / o using truncated division, matching Go's
// integer % operator: the result has the sign of n. For rationals the same
// rule applies: n - o*trunc(n/o). For operands of mixed sign this differs
// from floored modulo as in Python, where -7 % 3 is 2 rather than -1.
func (n Number) Rem(o Number) (Number, error) {
	if o.IsZero() {
		return Number{}, NewDivisionByZeroError("modulo by zero")
	}
	q := new(big.Rat).Quo(n.r(), o.r())
	// big.Int.Quo truncates toward zero.
	t := new(big.Int).Quo(q.Num(), q.Denom())
	prod := new(big.Rat).Mul(o.r(), new(big.Rat).SetInt(t))
	return Number{rat: new(big.Rat).Sub(n.r(), prod)}, nil
}

// Equal reports exact equality.
func (n Number) Equal(o Number) bool {
	return n.r().Cmp(o.r()) == 0
}

// String formats the value for display. Whole numbers print without a
// fractional part. Other values print as the shortest decimal that
// round-trips through float64, unless that would read as an integer, zero or
// infinity; those print as a rounded decimal of the exact value with at least
// one non-zero fractional digit.
func (n Number) String() string {
	r := n.r()
	if r.IsInt() {
		return r.Num().String()
	}
	if f, _ := r.Float64(); f != 0 && !math.IsInf(f, 0) {
		if s := strconv.FormatFloat(f, 'f', -1, 64); strings.Contains(s, ".") {
			return s
		}
	}
	return decimalString(r)
}

// decimalString renders a non-integer r in positional notation, showing
// about 16 significant digits of its fractional part.
func decimalString(r *big.Rat) string {
	frac := new(big.Int).Rem(new(big.Int).Abs(r.Num()), r.Denom())
	prec := max(len(r.Denom().String())-len(frac.String())+16, 1)
	for {
		s := strings.TrimRight(r.FloatString(prec), "0")
		// Rounding can carry into the integer part (0.99...9 -> 1.000).
		if !strings.HasSuffix(s, ".") {
			return s
		}
		prec *= 2
	}
}

// RatString returns the exact form: "7" for integers, "1/3" for fractions.
func (n Number) RatString() string {
	r := n.r()
	if r.IsInt() {
		return r.Num().String()
	}
	return r.String()
}

// GoString supports %#v in test failure output.
func (n Number) GoString() string {
	return fmt.Sprintf("types.Number(%s)", n.RatString())
}
