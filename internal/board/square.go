// Package board implements checkers board representation, move generation
// and make/unmake using bitboards.
package board

import (
	"fmt"
	"strconv"
)

// Square is a cell index on the board: row*size + col.
type Square int8

// NoSquare marks an invalid or missing square.
const NoSquare Square = -1

// IsValid returns true for indices that fit in a Bitboard.
func (sq Square) IsValid() bool {
	return sq >= 0 && sq < 64
}

// String returns the numeric index, or "-" for NoSquare.
func (sq Square) String() string {
	if !sq.IsValid() {
		return "-"
	}
	return strconv.Itoa(int(sq))
}

// ParseSquare parses a decimal cell index and checks it against the board size.
func ParseSquare(s string, size int) (Square, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return NoSquare, fmt.Errorf("invalid square %q: %w", s, err)
	}
	if n < 0 || n >= size*size {
		return NoSquare, fmt.Errorf("square %d: %w", n, ErrOutOfBounds)
	}
	return Square(n), nil
}
