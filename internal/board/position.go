package board

import (
	"fmt"
	"strings"
)

// Position is a complete checkers position.
type Position struct {
	geo *Geometry

	// Pieces[s] holds every piece of side s, men and kings.
	Pieces [2]Bitboard

	// Kings holds the promoted pieces of both sides.
	Kings Bitboard

	// Turn is the side to move.
	Turn Side
}

// NewPosition creates the starting position for the given board size.
// Each side fills size/2-1 rows of dark cells; SideA moves first.
func NewPosition(size int) (*Position, error) {
	g, err := GeometryFor(size)
	if err != nil {
		return nil, err
	}

	p := &Position{geo: g, Turn: SideA}
	rows := size/2 - 1
	for row := 0; row < rows; row++ {
		for col := 0; col < size; col++ {
			top := Square(row*size + col)
			bottom := Square((size-1-row)*size + col)
			if g.IsDark(top) {
				p.Pieces[SideA] |= SquareBB(top)
			}
			if g.IsDark(bottom) {
				p.Pieces[SideB] |= SquareBB(bottom)
			}
		}
	}
	return p, nil
}

// NewEmptyPosition creates a board with no pieces.
func NewEmptyPosition(size int, turn Side) (*Position, error) {
	g, err := GeometryFor(size)
	if err != nil {
		return nil, err
	}
	return &Position{geo: g, Turn: turn}, nil
}

// Geometry returns the board tables.
func (p *Position) Geometry() *Geometry {
	return p.geo
}

// Size returns the board width.
func (p *Position) Size() int {
	return p.geo.Size
}

// Copy creates a deep copy of the position.
func (p *Position) Copy() *Position {
	newPos := *p
	return &newPos
}

// Equal reports cell-by-cell equality including the side to move.
func (p *Position) Equal(o *Position) bool {
	return p.Key() == o.Key()
}

// Occupied returns all occupied cells.
func (p *Position) Occupied() Bitboard {
	return p.Pieces[SideA] | p.Pieces[SideB]
}

// Men returns the unpromoted pieces of side s.
func (p *Position) Men(s Side) Bitboard {
	return p.Pieces[s] &^ p.Kings
}

// KingsOf returns the kings of side s.
func (p *Position) KingsOf(s Side) Bitboard {
	return p.Pieces[s] & p.Kings
}

// PieceAt returns the piece on sq, or NoPiece.
func (p *Position) PieceAt(sq Square) Piece {
	if !p.geo.Contains(sq) {
		return NoPiece
	}
	bb := SquareBB(sq)
	king := p.Kings&bb != 0
	switch {
	case p.Pieces[SideA]&bb != 0:
		return NewPiece(SideA, king)
	case p.Pieces[SideB]&bb != 0:
		return NewPiece(SideB, king)
	}
	return NoPiece
}

// PieceSide returns the owner of the piece on sq.
func (p *Position) PieceSide(sq Square) (Side, bool) {
	piece := p.PieceAt(sq)
	if piece == NoPiece {
		return SideA, false
	}
	return piece.Side(), true
}

// IsKing reports whether sq holds a king.
func (p *Position) IsKing(sq Square) bool {
	return p.Kings.IsSet(sq)
}

// IsEmpty reports whether sq is an empty cell of the board.
func (p *Position) IsEmpty(sq Square) bool {
	return p.geo.Contains(sq) && !p.Occupied().IsSet(sq)
}

// SetPiece places a piece on a dark cell, replacing whatever was there.
func (p *Position) SetPiece(sq Square, piece Piece) error {
	if !p.geo.Contains(sq) {
		return fmt.Errorf("square %d: %w", sq, ErrOutOfBounds)
	}
	if piece != NoPiece && !p.geo.IsDark(sq) {
		return fmt.Errorf("square %d is not a playable cell", sq)
	}
	bb := SquareBB(sq)
	p.Pieces[SideA] &^= bb
	p.Pieces[SideB] &^= bb
	p.Kings &^= bb
	if piece == NoPiece {
		return nil
	}
	p.Pieces[piece.Side()] |= bb
	if piece.IsKing() {
		p.Kings |= bb
	}
	return nil
}

// Count returns the number of pieces on the board.
func (p *Position) Count() int {
	return p.Occupied().PopCount()
}

// Flatten returns one float per cell holding the piece value (sign = side,
// magnitude = rank). This is the board vector consumed by the trainer.
func (p *Position) Flatten() []float32 {
	out := make([]float32, p.geo.Cells)
	for s := SideA; s <= SideB; s++ {
		bb := p.Pieces[s]
		for bb != 0 {
			sq := bb.PopLSB()
			out[sq] = float32(p.PieceAt(sq))
		}
	}
	return out
}

// String returns a visual representation of the position.
func (p *Position) String() string {
	var sb strings.Builder
	size := p.geo.Size
	for row := 0; row < size; row++ {
		fmt.Fprintf(&sb, "%2d  ", row*size)
		for col := 0; col < size; col++ {
			sb.WriteString(p.PieceAt(Square(row*size + col)).String())
			sb.WriteByte(' ')
		}
		sb.WriteByte('\n')
	}
	fmt.Fprintf(&sb, "\nSide to move: %s\n", p.Turn)
	return sb.String()
}

// Validate checks the structural invariants of the position.
func (p *Position) Validate() error {
	if p.Pieces[SideA]&p.Pieces[SideB] != 0 {
		return fmt.Errorf("cells occupied by both sides")
	}
	if p.Occupied()&^p.geo.Dark != 0 {
		return fmt.Errorf("pieces on light cells")
	}
	if p.Kings&^p.Occupied() != 0 {
		return fmt.Errorf("king mask marks empty cells")
	}
	return nil
}
