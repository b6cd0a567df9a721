package expr

import (
	"fmt"

	"github.com/lemonberrylabs/rpncalc/pkg/types"
)

// EvaluateRPN evaluates a postfix token sequence with a value stack and
// returns the single value left on it.
func EvaluateRPN(tokens []Token) (types.Number, error) {
	stack := make([]types.Number, 0, len(tokens))

	for _, t := range tokens {
		switch t.Kind {
		case TokenNumber:
			stack = append(stack, types.NewInt(int64(t.Digit)))

		case TokenUnaryMinus:
			if len(stack) == 0 {
				return types.Number{}, types.NewEmptyOperandForUnaryError()
			}
			stack[len(stack)-1] = stack[len(stack)-1].Neg()

		case TokenOperator:
			if len(stack) < 2 {
				return types.Number{}, types.NewInsufficientOperandsError(t.Op.String())
			}
			// The more recently pushed value is the right operand.
			right := stack[len(stack)-1]
			left := stack[len(stack)-2]
			stack = stack[:len(stack)-2]

			v, err := evalBinary(t.Op, left, right)
			if err != nil {
				return types.Number{}, err
			}
			stack = append(stack, v)

		default:
			return types.Number{}, types.NewMalformedExpressionError(
				fmt.Sprintf("unexpected %s in RPN", t.Kind))
		}
	}

	if len(stack) != 1 {
		return types.Number{}, types.NewMalformedExpressionError(
			fmt.Sprintf("expected 1 value on the stack, found %d", len(stack)))
	}
	return stack[0], nil
}

func evalBinary(op Operator, left, right types.Number) (types.Number, error) {
	switch op {
	case OpAdd:
		return left.Add(right), nil
	case OpSub:
		return left.Sub(right), nil
	case OpMul:
		return left.Mul(right), nil
	case OpDiv:
		return left.Quo(right)
	case OpMod:
		return left.Rem(right)
	default:
		return types.Number{}, types.NewMalformedExpressionError(
			fmt.Sprintf("unsupported binary operator: %s", op))
	}
}
