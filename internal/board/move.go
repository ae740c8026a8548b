package board

import (
	"fmt"
	"strings"
)

// MaxHops bounds the landings of one capture chain. A side owns at most 12
// pieces on an 8x8 board, so a chain never captures more.
const MaxHops = 12

// Move is a step or a complete capture chain. For chains, To is the final
// landing square, Captured holds every jumped cell and Hops lists the
// landings in order (the last hop equals To).
type Move struct {
	From     Square
	To       Square
	Captured Bitboard
	hops     [MaxHops]Square
	nhops    uint8
}

// NoMove represents an invalid or null move.
var NoMove = Move{}

// NewMove creates a quiet step or slide.
func NewMove(from, to Square) Move {
	return Move{From: from, To: to}
}

// NewCapture creates a capture chain from its ordered landings.
func NewCapture(from Square, hops []Square, captured Bitboard) Move {
	if len(hops) == 0 || len(hops) > MaxHops {
		panic(fmt.Sprintf("board: capture chain with %d hops", len(hops)))
	}
	m := Move{From: from, To: hops[len(hops)-1], Captured: captured, nhops: uint8(len(hops))}
	copy(m.hops[:], hops)
	return m
}

// IsCapture returns true if this move captures at least one piece.
func (m Move) IsCapture() bool {
	return m.Captured != 0
}

// CaptureCount returns the number of pieces the move removes.
func (m Move) CaptureCount() int {
	return m.Captured.PopCount()
}

// Hops returns the landing squares in order. Quiet moves have a single hop.
func (m Move) Hops() []Square {
	if m.nhops == 0 {
		return []Square{m.To}
	}
	out := make([]Square, m.nhops)
	copy(out, m.hops[:m.nhops])
	return out
}

// SameEffect reports whether two moves leave the same position: same origin,
// same landing and same captured set, regardless of the path taken.
func (m Move) SameEffect(o Move) bool {
	return m.From == o.From && m.To == o.To && m.Captured == o.Captured
}

// String renders steps as "9-14" and chains as "9x18x27".
func (m Move) String() string {
	if m == NoMove {
		return "0000"
	}
	if !m.IsCapture() {
		return fmt.Sprintf("%d-%d", m.From, m.To)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d", m.From)
	for _, h := range m.Hops() {
		fmt.Fprintf(&sb, "x%d", h)
	}
	return sb.String()
}

// MoveList is an ordered list of moves.
type MoveList struct {
	moves []Move
}

// NewMoveList creates an empty move list.
func NewMoveList() *MoveList {
	return &MoveList{moves: make([]Move, 0, 16)}
}

// Add adds a move to the list.
func (ml *MoveList) Add(m Move) {
	ml.moves = append(ml.moves, m)
}

// AddUnique adds m unless a move with the same effect is already present.
func (ml *MoveList) AddUnique(m Move) bool {
	for _, o := range ml.moves {
		if o.SameEffect(m) {
			return false
		}
	}
	ml.moves = append(ml.moves, m)
	return true
}

// Len returns the number of moves in the list.
func (ml *MoveList) Len() int {
	return len(ml.moves)
}

// Get returns the move at index i.
func (ml *MoveList) Get(i int) Move {
	return ml.moves[i]
}

// Swap swaps two moves in the list.
func (ml *MoveList) Swap(i, j int) {
	ml.moves[i], ml.moves[j] = ml.moves[j], ml.moves[i]
}

// Contains returns true if the list contains a move with the same effect.
func (ml *MoveList) Contains(m Move) bool {
	return ml.IndexOf(m) >= 0
}

// IndexOf returns the index of the move with the same effect as m, or -1.
func (ml *MoveList) IndexOf(m Move) int {
	for i, o := range ml.moves {
		if o.SameEffect(m) {
			return i
		}
	}
	return -1
}

// Slice returns the moves as a slice.
func (ml *MoveList) Slice() []Move {
	return ml.moves
}

// HistoryEntry stores what Apply changed so Undo can restore it exactly.
type HistoryEntry struct {
	Move          Move
	Moved         Piece
	CapturedKings Bitboard
	Promoted      bool
	PrevTurn      Side
}

// CapturedPieces lists the values of the captured pieces, lowest square first.
func (h HistoryEntry) CapturedPieces() []Piece {
	victim := h.PrevTurn.Other()
	out := make([]Piece, 0, h.Move.CaptureCount())
	bb := h.Move.Captured
	for bb != 0 {
		sq := bb.PopLSB()
		out = append(out, NewPiece(victim, h.CapturedKings.IsSet(sq)))
	}
	return out
}
