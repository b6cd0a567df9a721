// Package expr implements the rpncalc expression pipeline: a tokenizer for
// single-digit infix arithmetic, a Shunting-Yard converter to Reverse Polish
// Notation, and an exact RPN evaluator.
package expr

import "fmt"

// TokenKind represents the type of a lexical token.
type TokenKind int

const (
	TokenNumber     TokenKind = iota // single digit 0-9
	TokenOperator                    // binary + - * / %
	TokenUnaryMinus                  // prefix -
	TokenLParen                      // (
	TokenRParen                      // )
)

// String returns a debug-friendly representation of the token kind.
func (k TokenKind) String() string {
	switch k {
	case TokenNumber:
		return "NUMBER"
	case TokenOperator:
		return "OPERATOR"
	case TokenUnaryMinus:
		return "UNARY_MINUS"
	case TokenLParen:
		return "LPAREN"
	case TokenRParen:
		return "RPAREN"
	default:
		return "UNKNOWN"
	}
}

// Operator identifies an arithmetic operator, including unary minus.
type Operator int

const (
	OpAdd Operator = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpNeg // unary minus

	numOperators
)

// Assoc is operator associativity.
type Assoc int

const (
	AssocLeft Assoc = iota
	AssocRight
)

// OperatorInfo is the static metadata for one operator.
type OperatorInfo struct {
	Symbol     string
	Precedence int
	Assoc      Assoc
	Arity      int
}

var operators = [numOperators]OperatorInfo{
	OpAdd: {Symbol: "+", Precedence: 2, Assoc: AssocLeft, Arity: 2},
	OpSub: {Symbol: "-", Precedence: 2, Assoc: AssocLeft, Arity: 2},
	OpMul: {Symbol: "*", Precedence: 3, Assoc: AssocLeft, Arity: 2},
	OpDiv: {Symbol: "/", Precedence: 3, Assoc: AssocLeft, Arity: 2},
	OpMod: {Symbol: "%", Precedence: 3, Assoc: AssocLeft, Arity: 2},
	OpNeg: {Symbol: "u-", Precedence: 4, Assoc: AssocRight, Arity: 1},
}

func init() {
	if err := validateOperatorTable(operators[:]); err != nil {
		panic(err)
	}
}

// validateOperatorTable checks that the binary operators form exactly two
// left-associative precedence tiers and that unary minus binds tighter than
// both and is right-associative.
func validateOperatorTable(table []OperatorInfo) error {
	if len(table) != int(numOperators) {
		return fmt.Errorf("operator table has %d entries, want %d", len(table), numOperators)
	}
	tiers := make(map[int]bool)
	maxBinary := 0
	for op, info := range table {
		if info.Symbol == "" {
			return fmt.Errorf("operator %d has no symbol", op)
		}
		if Operator(op) == OpNeg {
			continue
		}
		if info.Arity != 2 || info.Assoc != AssocLeft {
			return fmt.Errorf("binary operator %q must be left-associative with arity 2", info.Symbol)
		}
		tiers[info.Precedence] = true
		maxBinary = max(maxBinary, info.Precedence)
	}
	if len(tiers) != 2 {
		return fmt.Errorf("binary operators span %d precedence tiers, want 2", len(tiers))
	}
	if table[OpAdd].Precedence != table[OpSub].Precedence ||
		table[OpMul].Precedence != table[OpDiv].Precedence ||
		table[OpMul].Precedence != table[OpMod].Precedence ||
		table[OpMul].Precedence <= table[OpAdd].Precedence {
		return fmt.Errorf("multiplicative operators must bind tighter than additive ones")
	}
	neg := table[OpNeg]
	if neg.Arity != 1 || neg.Assoc != AssocRight || neg.Precedence <= maxBinary {
		return fmt.Errorf("unary minus must be right-associative with arity 1 and the highest precedence")
	}
	return nil
}

// Info returns the operator's metadata.
func (op Operator) Info() OperatorInfo {
	return operators[op]
}

// String returns the operator symbol as written in RPN output.
func (op Operator) String() string {
	if op < 0 || op >= numOperators {
		return "?"
	}
	return operators[op].Symbol
}

// binaryOperator maps an input character to its binary operator.
func binaryOperator(ch byte) (Operator, bool) {
	switch ch {
	case '+':
		return OpAdd, true
	case '-':
		return OpSub, true
	case '*':
		return OpMul, true
	case '/':
		return OpDiv, true
	case '%':
		return OpMod, true
	}
	return 0, false
}

// Token represents a single lexical token. Tokens are values and are never
// modified after they are produced.
type Token struct {
	Kind  TokenKind
	Op    Operator // for TokenOperator and TokenUnaryMinus
	Digit int      // for TokenNumber
	Pos   int      // position in source, -1 if synthesised
}

// NumberToken creates a digit token.
func NumberToken(d int) Token {
	return Token{Kind: TokenNumber, Digit: d, Pos: -1}
}

// OperatorToken creates a binary operator token.
func OperatorToken(op Operator) Token {
	return Token{Kind: TokenOperator, Op: op, Pos: -1}
}

// UnaryMinusToken creates a unary minus token.
func UnaryMinusToken() Token {
	return Token{Kind: TokenUnaryMinus, Op: OpNeg, Pos: -1}
}

// IsOperator returns true for binary operators and unary minus.
func (t Token) IsOperator() bool {
	return t.Kind == TokenOperator || t.Kind == TokenUnaryMinus
}

// String renders the token as it appears in RPN output.
func (t Token) String() string {
	switch t.Kind {
	case TokenNumber:
		return fmt.Sprintf("%d", t.Digit)
	case TokenOperator, TokenUnaryMinus:
		return t.Op.String()
	case TokenLParen:
		return "("
	case TokenRParen:
		return ")"
	default:
		return "?"
	}
}

// Equal compares tokens ignoring source position.
func (t Token) Equal(o Token) bool {
	return t.Kind == o.Kind && t.Op == o.Op && t.Digit == o.Digit
}

// Strings renders each token with String.
func Strings(tokens []Token) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.String()
	}
	return out
}
