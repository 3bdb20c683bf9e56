package preprocessor

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes.
const (
	IOError = iota + 1
	DirectiveError
	ConditionalError
	MissingIncludeError
	UndefinedVariableError
	ExprParseError
	ExprUndefinedError
	IncludeDepthError
	ProcessingError
)

// Error is the failure of a processing run. File, Line and GlobalLine locate
// the offending line (Text) when there is one.
type Error struct {
	Code       int
	Message    string
	File       string
	Line       int
	GlobalLine int
	Text       string
	Err        error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if e.File != "" {
		if e.Line > 0 {
			fmt.Fprintf(&b, " at %s:%d(%d)", e.File, e.Line, e.GlobalLine)
		} else {
			fmt.Fprintf(&b, " in %s", e.File)
		}
	}
	if e.Text != "" {
		b.WriteString(": ")
		b.WriteString(e.Text)
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error carrying the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// HasCode reports whether err is, or wraps, an *Error with the given code.
func HasCode(err error, code int) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}

func (f *fileState) errorf(code int, text string, format string, args ...interface{}) *Error {
	return &Error{
		Code:       code,
		Message:    fmt.Sprintf(format, args...),
		File:       f.path,
		Line:       f.line,
		GlobalLine: f.global,
		Text:       text,
	}
}
