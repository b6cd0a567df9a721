package types

import (
	"fmt"
	"math/big"
	"strings"
	"testing"
)

func TestNumberString(t *testing.T) {
	tests := []struct {
		name string
		n    Number
		want string
	}{
		{"zero value", Number{}, "0"},
		{"int", NewInt(7), "7"},
		{"negative int", NewInt(-3), "-3"},
		{"whole rational", NewRational(4, 2), "2"},
		{"half", NewRational(1, 2), "0.5"},
		{"third", NewRational(1, 3), "0.3333333333333333"},
		{"negative fraction", NewRational(-7, 4), "-1.75"},
		{"just above one", ratFromString(t, "1000000000000000000000000000001/1000000000000000000000000000000"), "1.000000000000000000000000000001"},
		{"just below one", ratFromString(t, "999999999999999999999999999999/1000000000000000000000000000000"), "0.999999999999999999999999999999"},
		{"half beyond 2^53", ratFromString(t, "150094635296999121/2"), "75047317648499560.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.n.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func ratFromString(t *testing.T, s string) Number {
	t.Helper()
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		t.Fatalf("bad rational %q", s)
	}
	return NewFromRat(r)
}

func TestNumberStringNeverLooksWhole(t *testing.T) {
	huge := new(big.Int).Exp(big.NewInt(9), big.NewInt(341), nil)
	half := NewFromRat(new(big.Rat).SetFrac(huge, big.NewInt(2)))
	got := half.String()
	wantInt := new(big.Int).Rsh(huge, 1).String()
	if got != wantInt+".5" {
		t.Errorf("9^341/2 = %s..., want %s....5", got[:min(20, len(got))], wantInt[:20])
	}

	tiny := NewFromRat(new(big.Rat).SetFrac(big.NewInt(1), huge))
	got = tiny.String()
	if !strings.HasPrefix(got, "0.000") || strings.Trim(got, "0.") == "" {
		t.Errorf("1/9^341 = %q, want a non-zero decimal", got)
	}
}

func TestNumberKind(t *testing.T) {
	if k := NewRational(4, 2).Kind(); k != NumberInt {
		t.Errorf("4/2 kind = %s, want int", k)
	}
	if k := NewRational(1, 2).Kind(); k != NumberRational {
		t.Errorf("1/2 kind = %s, want rational", k)
	}
	third := NewRational(1, 3)
	if got := third.Mul(NewInt(3)); !got.IsInt() || !got.Equal(NewInt(1)) {
		t.Errorf("(1/3)*3 = %s, want 1", got.RatString())
	}
}

func TestNumberArithmetic(t *testing.T) {
	a, b := NewInt(7), NewInt(2)
	if got := a.Add(b); !got.Equal(NewInt(9)) {
		t.Errorf("7+2 = %s", got)
	}
	if got := a.Sub(b); !got.Equal(NewInt(5)) {
		t.Errorf("7-2 = %s", got)
	}
	if got := a.Mul(b); !got.Equal(NewInt(14)) {
		t.Errorf("7*2 = %s", got)
	}
	q, err := a.Quo(b)
	if err != nil {
		t.Fatalf("7/2: %v", err)
	}
	if q.RatString() != "7/2" {
		t.Errorf("7/2 exact = %s", q.RatString())
	}
	if got := a.Neg(); !got.Equal(NewInt(-7)) {
		t.Errorf("-7 = %s", got)
	}
}

func TestNumberRemTruncated(t *testing.T) {
	tests := []struct {
		a, b Number
		want string
	}{
		{NewInt(7), NewInt(3), "1"},
		{NewInt(-7), NewInt(3), "-1"},
		{NewInt(7), NewInt(-3), "1"},
		{NewInt(-7), NewInt(-3), "-1"},
		{NewInt(6), NewInt(3), "0"},
		{NewRational(1, 2), NewRational(1, 3), "1/6"},
		{NewRational(-1, 2), NewRational(1, 3), "-1/6"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s%%%s", tt.a.RatString(), tt.b.RatString()), func(t *testing.T) {
			got, err := tt.a.Rem(tt.b)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.RatString() != tt.want {
				t.Errorf("got %s, want %s", got.RatString(), tt.want)
			}
		})
	}
}

func TestDivisionByZero(t *testing.T) {
	if _, err := NewInt(1).Quo(NewInt(0)); !IsKind(err, KindDivisionByZero) {
		t.Errorf("Quo by zero: got %v", err)
	}
	if _, err := NewInt(1).Rem(Number{}); !IsKind(err, KindDivisionByZero) {
		t.Errorf("Rem by zero: got %v", err)
	}
}

func TestKindOf(t *testing.T) {
	err := fmt.Errorf("line 3: %w", NewMismatchedParenthesesError("unmatched ')'", 4))
	if KindOf(err) != KindMismatchedParentheses {
		t.Errorf("KindOf = %q", KindOf(err))
	}
	if IsKind(nil, KindMismatchedParentheses) {
		t.Error("IsKind(nil) should be false")
	}
	if KindOf(fmt.Errorf("plain")) != "" {
		t.Error("plain error should have no kind")
	}
	if got := NewInvalidCharacterError("x", 2).Error(); got != `InvalidCharacter: invalid character "x" (position 2)` {
		t.Errorf("Error() = %q", got)
	}
}
