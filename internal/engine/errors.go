package engine

import "errors"

// Pipeline error classes. Concrete errors wrap one of these with context.
var (
	ErrIO              = errors.New("io error")
	ErrDecode          = errors.New("decode error")
	ErrSchema          = errors.New("schema error")
	ErrDegenerateRange = errors.New("degenerate range")
)
