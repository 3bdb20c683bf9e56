package expression

import (
	"errors"
	"fmt"
)

// Error codes.
const (
	ParseError = iota + 1
	NotDefinedError
)

// Error is returned by Parse and Evaluate. Code tells a syntax problem
// (ParseError) apart from a term naming an identifier missing from the
// definition table (NotDefinedError).
type Error struct {
	Code    int
	Message string
	Ident   string // NotDefinedError only
	Col     int    // ParseError only, 1-based
}

func (e *Error) Error() string {
	return e.Message
}

func parseErrorf(col int, format string, args ...interface{}) *Error {
	msg := fmt.Sprintf(format, args...)
	return &Error{
		Code:    ParseError,
		Message: fmt.Sprintf("parsing error: %s at col %d", msg, col),
		Col:     col,
	}
}

func notDefinedError(ident string) *Error {
	return &Error{
		Code:    NotDefinedError,
		Message: fmt.Sprintf("identifier %q not defined", ident),
		Ident:   ident,
	}
}

// IsParseError reports whether err is an expression syntax error.
func IsParseError(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ParseError
}

// IsNotDefined reports whether err is an undefined-identifier error.
func IsNotDefined(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == NotDefinedError
}
