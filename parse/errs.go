package parse

import (
	"errors"
	"fmt"

	"github.com/cfntools/cfnls/token"
)

var ErrParse = errors.New("parse error")

// Error is a recoverable parse error: the parser records it on the
// Document and keeps going with a best-effort partial tree.
type Error struct {
	Pos *token.Pos
	Msg string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%v: %s %s", ErrParse, e.Msg, e.Pos)
}

func (e *Error) Unwrap() error {
	return ErrParse
}
