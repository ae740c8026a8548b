package board

import "errors"

var (
	ErrInvalidSize = errors.New("unsupported board size")
	ErrOutOfBounds = errors.New("square out of bounds")
	ErrInvalidFEN  = errors.New("invalid position string")
)
