package calc

import "github.com/m-mizutani/goerr/v2"

var (
	// ErrParse is returned for malformed expression syntax
	ErrParse = goerr.New("malformed expression")

	// ErrUnsupportedConstruct is returned for names, calls, comparisons,
	// collections and any operator outside + - * / ^
	ErrUnsupportedConstruct = goerr.New("unsupported construct in expression")

	// ErrDisallowed is returned when the raw input contains a denylisted
	// substring. It is checked before parsing.
	ErrDisallowed = goerr.New("potentially dangerous expression")

	ErrDivisionByZero = goerr.New("division by zero")
	ErrNotANumber     = goerr.New("result is not a number")
	ErrInfinity       = goerr.New("result is infinity")
)

// Context keys for error values
const (
	ExpressionKey = "expression"
	PositionKey   = "position"
	TokenKey      = "token"
)
