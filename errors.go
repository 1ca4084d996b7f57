package gjulia

import (
	"errors"
	"fmt"
)

// ParseError is returned when a formula is malformed: unknown identifiers,
// unexpected characters, unterminated raw code, empty formulas, mismatched
// parentheses, wrong argument counts or leftover tokens.
type ParseError struct {
	// Column is the 0-indexed character column in the user's formula.
	Column  int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing: %s (char ~%d)", e.Message, e.Column+1)
}

// TypeError is returned for well-formed formulas where a complex valued
// expression is passed into a position that only accepts real values.
type TypeError struct {
	// Column is the 0-indexed character column in the user's formula.
	Column  int
	Message string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("typing: %s (char ~%d)", e.Message, e.Column+1)
}

// ErrorColumn extracts the formula column of a [ParseError] or [TypeError]
// wrapped in err. ok is false for any other error.
func ErrorColumn(err error) (col int, ok bool) {
	var perr *ParseError
	var terr *TypeError
	switch {
	case errors.As(err, &perr):
		return perr.Column, true
	case errors.As(err, &terr):
		return terr.Column, true
	}
	return -1, false
}

func parseErrorf(col int, format string, args ...any) error {
	return &ParseError{Column: col, Message: fmt.Sprintf(format, args...)}
}

func typeErrorf(col int, format string, args ...any) error {
	return &TypeError{Column: col, Message: fmt.Sprintf(format, args...)}
}
