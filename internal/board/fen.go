package board

import (
	"fmt"
	"strings"
)

// StartFEN is the 8x8 starting position.
const StartFEN = ".a.a.a.a/a.a.a.a./.a.a.a.a/......../......../b.b.b.b./.b.b.b.b/b.b.b.b. a"

// ParseFEN parses a position string: one field of rows separated by '/',
// top row first, using a/b for men, A/B for kings and '.' for empty cells,
// followed by the side to move ("a" or "b"). The board size is the number
// of rows.
func ParseFEN(fen string) (*Position, error) {
	parts := strings.Fields(fen)
	if len(parts) != 2 {
		return nil, fmt.Errorf("%w: need 2 fields, got %d", ErrInvalidFEN, len(parts))
	}

	var turn Side
	switch parts[1] {
	case "a", "A":
		turn = SideA
	case "b", "B":
		turn = SideB
	default:
		return nil, fmt.Errorf("%w: invalid side to move %q", ErrInvalidFEN, parts[1])
	}

	return ParseDiagram(turn, strings.Split(parts[0], "/")...)
}

// ParseDiagram builds a position from rows of diagram characters.
func ParseDiagram(turn Side, rows ...string) (*Position, error) {
	size := len(rows)
	pos, err := NewEmptyPosition(size, turn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFEN, err)
	}

	for row, line := range rows {
		if len(line) != size {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrInvalidFEN, row, len(line), size)
		}
		for col := 0; col < size; col++ {
			piece, ok := PieceFromChar(line[col])
			if !ok {
				return nil, fmt.Errorf("%w: unknown piece %q at row %d", ErrInvalidFEN, line[col], row)
			}
			if piece == NoPiece {
				continue
			}
			if err := pos.SetPiece(Square(row*size+col), piece); err != nil {
				return nil, fmt.Errorf("%w: row %d col %d: %v", ErrInvalidFEN, row, col, err)
			}
		}
	}
	return pos, nil
}

// ToFEN returns the position string understood by ParseFEN.
func (p *Position) ToFEN() string {
	var sb strings.Builder
	size := p.geo.Size
	for row := 0; row < size; row++ {
		if row > 0 {
			sb.WriteByte('/')
		}
		for col := 0; col < size; col++ {
			sb.WriteString(p.PieceAt(Square(row*size + col)).String())
		}
	}
	sb.WriteByte(' ')
	if p.Turn == SideA {
		sb.WriteByte('a')
	} else {
		sb.WriteByte('b')
	}
	return sb.String()
}
