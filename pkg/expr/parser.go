package expr

import (
	"fmt"
	"strings"

	"github.com/lemonberrylabs/rpncalc/pkg/types"
)

// ToRPN converts infix tokens to postfix order with the Shunting-Yard
// algorithm. The input slice is not modified.
func ToRPN(tokens []Token) ([]Token, error) {
	output := make([]Token, 0, len(tokens))
	var ops []Token

	for _, t := range tokens {
		switch {
		case t.Kind == TokenNumber:
			output = append(output, t)

		case t.Kind == TokenLParen:
			ops = append(ops, t)

		case t.Kind == TokenRParen:
			for len(ops) > 0 && ops[len(ops)-1].Kind != TokenLParen {
				output = append(output, ops[len(ops)-1])
				ops = ops[:len(ops)-1]
			}
			if len(ops) == 0 {
				return nil, types.NewMismatchedParenthesesError("unmatched ')'", t.Pos)
			}
			ops = ops[:len(ops)-1] // discard '('

		case t.IsOperator():
			info := t.Op.Info()
			for len(ops) > 0 {
				top := ops[len(ops)-1]
				if top.Kind == TokenLParen {
					break
				}
				topInfo := top.Op.Info()
				if topInfo.Precedence > info.Precedence ||
					(topInfo.Precedence == info.Precedence && info.Assoc == AssocLeft) {
					output = append(output, top)
					ops = ops[:len(ops)-1]
					continue
				}
				break
			}
			ops = append(ops, t)

		default:
			return nil, types.NewMalformedExpressionError(fmt.Sprintf("unexpected token %s", t.Kind))
		}
	}

	for len(ops) > 0 {
		top := ops[len(ops)-1]
		ops = ops[:len(ops)-1]
		if top.Kind == TokenLParen || top.Kind == TokenRParen {
			return nil, types.NewMismatchedParenthesesError("unmatched '('", top.Pos)
		}
		output = append(output, top)
	}

	return output, nil
}

// FormatRPN renders postfix tokens space-separated, with unary minus as "u-".
func FormatRPN(tokens []Token) string {
	return strings.Join(Strings(tokens), " ")
}

// Compile tokenizes an infix expression and converts it to RPN.
func Compile(expression string) ([]Token, error) {
	tokens, err := Tokenize(expression)
	if err != nil {
		return nil, err
	}
	return ToRPN(tokens)
}

// Eval runs the whole pipeline on an infix expression and returns the RPN
// form alongside the value. On error neither is returned.
func Eval(expression string) ([]Token, types.Number, error) {
	rpn, err := Compile(expression)
	if err != nil {
		return nil, types.Number{}, err
	}
	v, err := EvaluateRPN(rpn)
	if err != nil {
		return nil, types.Number{}, err
	}
	return rpn, v, nil
}

// ParseRPN reads a whitespace-separated postfix line such as "3 4 + u-".
// Every field must be a single digit, a binary operator symbol or "u-".
func ParseRPN(line string) ([]Token, error) {
	fields := strings.FieldsFunc(line, isSpace)
	tokens := make([]Token, 0, len(fields))
	pos := 0
	for _, f := range fields {
		at := pos + strings.Index(line[pos:], f)
		pos = at + len(f)

		switch {
		case len(f) == 1 && f[0] >= '0' && f[0] <= '9':
			tokens = append(tokens, Token{Kind: TokenNumber, Digit: int(f[0] - '0'), Pos: at})
		case f == OpNeg.String():
			tokens = append(tokens, Token{Kind: TokenUnaryMinus, Op: OpNeg, Pos: at})
		case len(f) == 1:
			op, ok := binaryOperator(f[0])
			if !ok {
				return nil, types.NewInvalidCharacterError(f, at)
			}
			tokens = append(tokens, Token{Kind: TokenOperator, Op: op, Pos: at})
		default:
			return nil, types.NewInvalidCharacterError(f, at)
		}
	}
	return tokens, nil
}
