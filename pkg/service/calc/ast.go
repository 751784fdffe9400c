package calc

import (
	"math"

	"github.com/m-mizutani/goerr/v2"
)

// Operator is one of the permitted arithmetic operators
type Operator string

const (
	OpAdd Operator = "+"
	OpSub Operator = "-"
	OpMul Operator = "*"
	OpDiv Operator = "/"
	OpPow Operator = "^"
	OpNeg Operator = "neg" // unary minus
)

// Node is an expression tree node: *Number, *BinaryOp or *UnaryOp
type Node interface {
	eval() (float64, error)
}

// Number is a numeric literal
type Number struct {
	Value float64
}

// BinaryOp applies Op to two operands
type BinaryOp struct {
	Op    Operator
	Left  Node
	Right Node
}

// UnaryOp applies Op to one operand. Only OpNeg is valid.
type UnaryOp struct {
	Op      Operator
	Operand Node
}

func (n *Number) eval() (float64, error) {
	return n.Value, nil
}

func (n *BinaryOp) eval() (float64, error) {
	left, err := n.Left.eval()
	if err != nil {
		return 0, err
	}
	right, err := n.Right.eval()
	if err != nil {
		return 0, err
	}

	switch n.Op {
	case OpAdd:
		return left + right, nil
	case OpSub:
		return left - right, nil
	case OpMul:
		return left * right, nil
	case OpDiv:
		if right == 0 {
			return 0, goerr.Wrap(ErrDivisionByZero, "divisor is zero")
		}
		return left / right, nil
	case OpPow:
		// zero raised to a negative power is a division by zero
		if left == 0 && right < 0 {
			return 0, goerr.Wrap(ErrDivisionByZero, "zero raised to a negative power")
		}
		return math.Pow(left, right), nil
	default:
		return 0, goerr.Wrap(ErrUnsupportedConstruct, "unknown binary operator", goerr.V(TokenKey, string(n.Op)))
	}
}

func (n *UnaryOp) eval() (float64, error) {
	v, err := n.Operand.eval()
	if err != nil {
		return 0, err
	}
	if n.Op != OpNeg {
		return 0, goerr.Wrap(ErrUnsupportedConstruct, "unknown unary operator", goerr.V(TokenKey, string(n.Op)))
	}
	return -v, nil
}
