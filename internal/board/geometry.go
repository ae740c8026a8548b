package board

import (
	"fmt"
	"sync"
)

// Direction is one of the four diagonal directions.
type Direction uint8

const (
	UpLeft Direction = iota
	UpRight
	DownLeft
	DownRight
)

// Directions lists all four diagonals.
var Directions = [4]Direction{UpLeft, UpRight, DownLeft, DownRight}

// Opposite returns the reverse diagonal.
func (d Direction) Opposite() Direction {
	return 3 - d
}

// forward holds the two step directions of men per side.
// SideA advances toward higher rows, SideB toward row 0.
var forward = [2][2]Direction{
	SideA: {DownLeft, DownRight},
	SideB: {UpLeft, UpRight},
}

// Forward returns the two diagonal directions men of side s step in.
func Forward(s Side) [2]Direction {
	return forward[s]
}

// Supported board sizes.
var SupportedSizes = []int{4, 6, 8}

// Geometry holds the precomputed, immutable tables for one board size.
type Geometry struct {
	Size  int
	Cells int

	// Dark is the mask of playable cells.
	Dark Bitboard

	// PromotionRow[s] is the row on which men of side s become kings.
	PromotionRow [2]Bitboard

	// neighbor[sq][d] is the adjacent diagonal cell, or NoSquare off the board.
	neighbor [64][4]Square

	// between[a][b] holds the cells strictly between two cells on a shared diagonal.
	between [64][64]Bitboard
}

var (
	geometryMu    sync.Mutex
	geometryCache = map[int]*Geometry{}
)

// GeometryFor returns the cached tables for the given board size.
func GeometryFor(size int) (*Geometry, error) {
	if !validSize(size) {
		return nil, fmt.Errorf("board size %d: %w", size, ErrInvalidSize)
	}

	geometryMu.Lock()
	defer geometryMu.Unlock()

	if g, ok := geometryCache[size]; ok {
		return g, nil
	}
	g := newGeometry(size)
	geometryCache[size] = g
	return g, nil
}

// mustGeometry is GeometryFor for sizes already validated by the caller.
func mustGeometry(size int) *Geometry {
	g, err := GeometryFor(size)
	if err != nil {
		panic(err)
	}
	return g
}

func validSize(size int) bool {
	for _, s := range SupportedSizes {
		if s == size {
			return true
		}
	}
	return false
}

func newGeometry(size int) *Geometry {
	g := &Geometry{Size: size, Cells: size * size}

	deltas := [4][2]int{
		UpLeft:    {-1, -1},
		UpRight:   {-1, 1},
		DownLeft:  {1, -1},
		DownRight: {1, 1},
	}

	for row := 0; row < size; row++ {
		for col := 0; col < size; col++ {
			sq := Square(row*size + col)
			if (row+col)%2 == 1 {
				g.Dark |= SquareBB(sq)
			}
			for d, delta := range deltas {
				r, c := row+delta[0], col+delta[1]
				if r < 0 || r >= size || c < 0 || c >= size {
					g.neighbor[sq][d] = NoSquare
				} else {
					g.neighbor[sq][d] = Square(r*size + c)
				}
			}
		}
	}
	for sq := size * size; sq < 64; sq++ {
		for d := range deltas {
			g.neighbor[sq][d] = NoSquare
		}
	}

	for col := 0; col < size; col++ {
		g.PromotionRow[SideA] |= SquareBB(Square((size-1)*size + col))
		g.PromotionRow[SideB] |= SquareBB(Square(col))
	}
	g.PromotionRow[SideA] &= g.Dark
	g.PromotionRow[SideB] &= g.Dark

	for from := 0; from < g.Cells; from++ {
		for _, d := range Directions {
			var path Bitboard
			for sq := g.neighbor[from][d]; sq != NoSquare; sq = g.neighbor[sq][d] {
				g.between[from][sq] = path
				path |= SquareBB(sq)
			}
		}
	}

	return g
}

// Neighbor returns the adjacent cell in direction d, or NoSquare.
func (g *Geometry) Neighbor(sq Square, d Direction) Square {
	return g.neighbor[sq][d]
}

// Between returns the cells strictly between a and b when they share a
// diagonal, Empty otherwise.
func (g *Geometry) Between(a, b Square) Bitboard {
	return g.between[a][b]
}

// aligned reports whether a and b are distinct cells on a shared diagonal.
func (g *Geometry) aligned(a, b Square) bool {
	dr := g.Row(b) - g.Row(a)
	dc := g.Col(b) - g.Col(a)
	return dr != 0 && (dr == dc || dr == -dc)
}

// Row returns the row of sq.
func (g *Geometry) Row(sq Square) int {
	return int(sq) / g.Size
}

// Col returns the column of sq.
func (g *Geometry) Col(sq Square) int {
	return int(sq) % g.Size
}

// Contains reports whether sq is a cell of this board.
func (g *Geometry) Contains(sq Square) bool {
	return sq >= 0 && int(sq) < g.Cells
}

// IsDark reports whether sq is a playable cell.
func (g *Geometry) IsDark(sq Square) bool {
	return g.Contains(sq) && g.Dark.IsSet(sq)
}
