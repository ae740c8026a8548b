package board

// Side identifies one of the two players.
type Side uint8

const (
	SideA Side = iota // starts on the top rows, moves first
	SideB
)

// Other returns the opposing side.
func (s Side) Other() Side {
	return s ^ 1
}

// String returns the side name.
func (s Side) String() string {
	if s == SideA {
		return "A"
	}
	return "B"
}

// sign is +1 for SideA, -1 for SideB.
func (s Side) sign() int8 {
	if s == SideA {
		return 1
	}
	return -1
}

// Piece encodes a cell's content: the sign is the side (+A, -B) and the
// magnitude is the rank (1 man, 2 king). Zero is an empty cell.
type Piece int8

const (
	NoPiece Piece = 0
	ManA    Piece = 1
	KingA   Piece = 2
	ManB    Piece = -1
	KingB   Piece = -2
)

// NewPiece builds the piece value for a side and rank.
func NewPiece(s Side, king bool) Piece {
	if king {
		return Piece(2 * s.sign())
	}
	return Piece(s.sign())
}

// Side returns the owner of the piece. Only meaningful for non-empty pieces.
func (p Piece) Side() Side {
	if p < 0 {
		return SideB
	}
	return SideA
}

// IsKing reports whether the piece has been promoted.
func (p Piece) IsKing() bool {
	return p == KingA || p == KingB
}

// String returns the diagram character: a/b for men, A/B for kings, '.' for empty.
func (p Piece) String() string {
	switch p {
	case ManA:
		return "a"
	case KingA:
		return "A"
	case ManB:
		return "b"
	case KingB:
		return "B"
	default:
		return "."
	}
}

// PieceFromChar converts a diagram character to a Piece.
func PieceFromChar(c byte) (Piece, bool) {
	switch c {
	case 'a':
		return ManA, true
	case 'A':
		return KingA, true
	case 'b':
		return ManB, true
	case 'B':
		return KingB, true
	case '.', '-', '_':
		return NoPiece, true
	default:
		return NoPiece, false
	}
}
