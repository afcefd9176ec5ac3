package schema

import "errors"

var (
	ErrSchema = errors.New("invalid schema document")
	ErrFetch  = errors.New("schema fetch failed")
)
