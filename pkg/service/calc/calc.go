// Package calc evaluates arithmetic expressions over numbers, the operators
// + - * / ^ (power), unary minus and parentheses. Nothing else is accepted:
// the input never reaches a general purpose interpreter.
package calc

import (
	"math"
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// denylist is checked on the lowercased raw input before parsing
var denylist = []string{"import", "exec", "eval", "__", "open", "file"}

// decimals is the number of decimal places results are rounded to
const decimals = 10

// Result is a successful evaluation
type Result struct {
	Expression string
	Value      float64
}

// String formats the result as "<expr> = <value>"
func (r Result) String() string {
	return r.Expression + " = " + FormatValue(r.Value)
}

// Evaluate parses and evaluates expr
func Evaluate(expr string) (Result, error) {
	expr = strings.TrimSpace(expr)

	lower := strings.ToLower(expr)
	for _, pattern := range denylist {
		if strings.Contains(lower, pattern) {
			return Result{}, goerr.Wrap(ErrDisallowed, "expression contains denylisted pattern",
				goerr.V(ExpressionKey, expr), goerr.V("pattern", pattern))
		}
	}

	node, err := Parse(expr)
	if err != nil {
		return Result{}, goerr.Wrap(err, "failed to parse expression", goerr.V(ExpressionKey, expr))
	}

	v, err := node.eval()
	if err != nil {
		return Result{}, goerr.Wrap(err, "failed to evaluate expression", goerr.V(ExpressionKey, expr))
	}

	switch {
	case math.IsNaN(v):
		return Result{}, goerr.Wrap(ErrNotANumber, "evaluation produced NaN", goerr.V(ExpressionKey, expr))
	case math.IsInf(v, 0):
		return Result{}, goerr.Wrap(ErrInfinity, "evaluation produced infinity", goerr.V(ExpressionKey, expr))
	}

	return Result{Expression: expr, Value: round(v)}, nil
}

// round suppresses floating point noise such as 0.1+0.2. Magnitudes beyond
// 1e15 carry no fractional digits in a float64 and are returned unchanged.
func round(v float64) float64 {
	if math.Abs(v) >= 1e15 {
		return v
	}
	scale := math.Pow10(decimals)
	r := math.Round(v*scale) / scale
	if r == 0 {
		return 0 // drop negative zero
	}
	return r
}

// FormatValue prints integral values without a fraction ("1024") and other
// values in their shortest form ("2.5").
func FormatValue(v float64) string {
	if math.Abs(v) >= 1e21 {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
