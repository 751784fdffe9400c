package calc_test

import (
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/jarvis/pkg/service/calc"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		expr string
		want float64
	}{
		{"2^10", 1024},
		{"(2+3)*4", 20},
		{"10/4", 2.5},
		{"2+3*4", 14},
		{"2*3+4", 10},
		{"10-4-3", 3},
		{"100/10/5", 2},
		{"2^3^2", 512},
		{"-2^2", -4},
		{"(-2)^2", 4},
		{"2^-1", 0.5},
		{"-3", -3},
		{"--3", 3},
		{"+3", 3},
		{"2*-3", -6},
		{" 15 * 8 + 10 ", 130},
		{"((1))", 1},
		{"0.1+0.2", 0.3},
		{"1/3", 0.3333333333},
		{".5*4", 2},
		{"1e3+1", 1001},
		{"2**8", 256},
		{"4^0.5", 2},
		{"7-10", -3},
		{"0*-1", 0},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			result, err := calc.Evaluate(tt.expr)
			gt.NoError(t, err).Required()
			gt.Value(t, result.Value).Equal(tt.want)
		})
	}
}

func TestEvaluate_Errors(t *testing.T) {
	tests := []struct {
		expr string
		want error
	}{
		{"5/0", calc.ErrDivisionByZero},
		{"1/(2-2)", calc.ErrDivisionByZero},
		{"0^-1", calc.ErrDivisionByZero},
		{"__import__('os')", calc.ErrDisallowed},
		{"__IMPORT__('os')", calc.ErrDisallowed},
		{"exec('1')", calc.ErrDisallowed},
		{"open('x')", calc.ErrDisallowed},
		{"profile", calc.ErrDisallowed},
		{"x+1", calc.ErrUnsupportedConstruct},
		{"abs(1)", calc.ErrUnsupportedConstruct},
		{"1<2", calc.ErrUnsupportedConstruct},
		{"1==1", calc.ErrUnsupportedConstruct},
		{"[1,2]", calc.ErrUnsupportedConstruct},
		{"7%2", calc.ErrUnsupportedConstruct},
		{"'1'", calc.ErrUnsupportedConstruct},
		{"2+2=", calc.ErrUnsupportedConstruct},
		{"", calc.ErrParse},
		{"   ", calc.ErrParse},
		{"1+", calc.ErrParse},
		{"(1+2", calc.ErrParse},
		{"1+2)", calc.ErrParse},
		{"()", calc.ErrParse},
		{"1 2", calc.ErrParse},
		{"1.2.3", calc.ErrParse},
		{"*2", calc.ErrParse},
		{"(-8)^(1/3)", calc.ErrNotANumber},
		{"10^400", calc.ErrInfinity},
		{"1e999", calc.ErrInfinity},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			_, err := calc.Evaluate(tt.expr)
			gt.Value(t, err).NotNil()
			gt.Bool(t, errors.Is(err, tt.want)).True()
		})
	}
}

func TestEvaluate_DenylistBeforeParse(t *testing.T) {
	// syntactically valid for the grammar except for the denylisted name;
	// the denylist must win over the parser's own rejection
	_, err := calc.Evaluate("1 + __import__")
	gt.Bool(t, errors.Is(err, calc.ErrDisallowed)).True()
	gt.Bool(t, errors.Is(err, calc.ErrUnsupportedConstruct)).False()
}

func TestResult_String(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{"2^10", "2^10 = 1024"},
		{"10/4", "10/4 = 2.5"},
		{"(2+3)*4", "(2+3)*4 = 20"},
		{" 1/3 ", "1/3 = 0.3333333333"},
		{"2^20", "2^20 = 1048576"},
		{"1e22*10", "1e22*10 = 1e+23"},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			result, err := calc.Evaluate(tt.expr)
			gt.NoError(t, err).Required()
			gt.Value(t, result.String()).Equal(tt.want)
		})
	}
}

func TestParse_Tree(t *testing.T) {
	node, err := calc.Parse("1-2*3")
	gt.NoError(t, err).Required()

	root, ok := node.(*calc.BinaryOp)
	gt.Bool(t, ok).True()
	gt.Value(t, root.Op).Equal(calc.OpSub)

	right, ok := root.Right.(*calc.BinaryOp)
	gt.Bool(t, ok).True()
	gt.Value(t, right.Op).Equal(calc.OpMul)

	neg, err := calc.Parse("-(1)")
	gt.NoError(t, err).Required()
	unary, ok := neg.(*calc.UnaryOp)
	gt.Bool(t, ok).True()
	gt.Value(t, unary.Op).Equal(calc.OpNeg)
}
