package expr

import (
	"unicode"
	"unicode/utf8"

	"github.com/lemonberrylabs/rpncalc/pkg/types"
)

// prevKind tracks what the lexer emitted last, for unary minus detection.
type prevKind int

const (
	prevNone prevKind = iota
	prevNumber
	prevOperator
	prevLParen
	prevRParen
)

// Lexer tokenizes an infix arithmetic expression.
type Lexer struct {
	input  string
	pos    int
	prev   prevKind
	tokens []Token
}

// NewLexer creates a new lexer for the given input.
func NewLexer(input string) *Lexer {
	return &Lexer{input: input}
}

// Tokenize is shorthand for NewLexer(expression).Tokenize().
func Tokenize(expression string) ([]Token, error) {
	return NewLexer(expression).Tokenize()
}

// Tokenize scans the entire input and returns all tokens. On error no tokens
// are returned.
func (l *Lexer) Tokenize() ([]Token, error) {
	for l.pos < len(l.input) {
		ch := l.input[l.pos]

		if isSpace(rune(ch)) {
			l.pos++
			continue
		}

		switch {
		case ch >= '0' && ch <= '9':
			// Single-digit operands: "12" is two numbers.
			l.emit(Token{Kind: TokenNumber, Digit: int(ch - '0'), Pos: l.pos}, prevNumber)
		case ch == '(':
			l.emit(Token{Kind: TokenLParen, Pos: l.pos}, prevLParen)
		case ch == ')':
			l.emit(Token{Kind: TokenRParen, Pos: l.pos}, prevRParen)
		case ch == '-':
			if l.prev == prevNone || l.prev == prevOperator || l.prev == prevLParen {
				l.emit(Token{Kind: TokenUnaryMinus, Op: OpNeg, Pos: l.pos}, prevOperator)
			} else {
				l.emit(Token{Kind: TokenOperator, Op: OpSub, Pos: l.pos}, prevOperator)
			}
		default:
			op, ok := binaryOperator(ch)
			if !ok {
				l.tokens = nil
				return nil, types.NewInvalidCharacterError(l.char(), l.pos)
			}
			l.emit(Token{Kind: TokenOperator, Op: op, Pos: l.pos}, prevOperator)
		}
	}
	return l.tokens, nil
}

// isSpace reports ASCII whitespace only. Other Unicode spaces are invalid
// characters.
func isSpace(r rune) bool {
	return r < utf8.RuneSelf && unicode.IsSpace(r)
}

func (l *Lexer) emit(tok Token, kind prevKind) {
	l.tokens = append(l.tokens, tok)
	l.prev = kind
	l.pos++
}

// char returns the full rune at the current position so errors show
// non-ASCII input intact.
func (l *Lexer) char() string {
	r, _ := utf8.DecodeRuneInString(l.input[l.pos:])
	return string(r)
}
