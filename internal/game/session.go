// Package game tracks interactive checkers sessions: the position, the
// move history and the selected piece of one game.
package game

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hailam/checkersplay/internal/board"
)

var (
	ErrOutOfBounds  = errors.New("square out of bounds")
	ErrNotYourPiece = errors.New("no piece of the side to move on that square")
	ErrIllegalMove  = errors.New("illegal move")
	ErrGameOver     = errors.New("game is over")
	ErrNoHistory    = errors.New("no move to undo")
)

// Session is one game in progress. It is not safe for concurrent use.
type Session struct {
	ID       string
	Created  time.Time
	size     int
	pos      *board.Position
	start    *board.Position
	history  []board.HistoryEntry
	selected board.Square
}

// NewSession starts a game from the standard opening layout.
func NewSession(size int) (*Session, error) {
	pos, err := board.NewPosition(size)
	if err != nil {
		return nil, err
	}
	return newSession(pos), nil
}

// NewSessionFrom starts a game from an arbitrary position.
func NewSessionFrom(pos *board.Position) (*Session, error) {
	if err := pos.Validate(); err != nil {
		return nil, err
	}
	return newSession(pos.Copy()), nil
}

func newSession(pos *board.Position) *Session {
	return &Session{
		ID:       uuid.NewString(),
		Created:  time.Now(),
		size:     pos.Size(),
		pos:      pos,
		start:    pos.Copy(),
		selected: board.NoSquare,
	}
}

// Position returns a copy of the current position.
func (s *Session) Position() *board.Position {
	return s.pos.Copy()
}

// Turn returns the side to move.
func (s *Session) Turn() board.Side {
	return s.pos.Turn
}

// Size returns the board size.
func (s *Session) Size() int {
	return s.size
}

// Plies returns the number of moves played.
func (s *Session) Plies() int {
	return len(s.history)
}

// History returns the moves played so far.
func (s *Session) History() []board.Move {
	moves := make([]board.Move, len(s.history))
	for i, h := range s.history {
		moves[i] = h.Move
	}
	return moves
}

// Selected returns the selected square, or NoSquare.
func (s *Session) Selected() board.Square {
	return s.selected
}

// LegalMoves returns the moves of the side to move.
func (s *Session) LegalMoves() *board.MoveList {
	return s.pos.LegalMoves(s.pos.Turn)
}

// IsOver reports whether the side to move has no legal move.
func (s *Session) IsOver() bool {
	return s.pos.IsGameOver(s.pos.Turn)
}

// Winner returns the winning side once the game is over.
func (s *Session) Winner() (board.Side, bool) {
	if !s.IsOver() {
		return board.SideA, false
	}
	return s.pos.Turn.Other(), true
}

func (s *Session) checkSquare(sq board.Square) error {
	if sq < 0 || int(sq) >= s.size*s.size {
		return fmt.Errorf("square %d: %w", sq, ErrOutOfBounds)
	}
	return nil
}

// Select marks the piece on sq as the one to move.
func (s *Session) Select(sq board.Square) error {
	if err := s.checkSquare(sq); err != nil {
		return err
	}
	side, ok := s.pos.PieceSide(sq)
	if !ok || side != s.pos.Turn {
		return fmt.Errorf("square %d: %w", sq, ErrNotYourPiece)
	}
	s.selected = sq
	return nil
}

// Deselect clears the selection.
func (s *Session) Deselect() {
	s.selected = board.NoSquare
}

// Targets returns the landing squares of the selected piece's legal moves,
// in generation order and without duplicates.
func (s *Session) Targets() []board.Square {
	if s.selected == board.NoSquare {
		return nil
	}
	var out []board.Square
	seen := board.Empty
	for _, m := range s.LegalMoves().Slice() {
		if m.From != s.selected || seen.IsSet(m.To) {
			continue
		}
		seen = seen.Set(m.To)
		out = append(out, m.To)
	}
	return out
}

// Resolve finds the legal move from one square to another. When several
// capture chains share the endpoints the longest wins, then the first
// generated.
func (s *Session) Resolve(from, to board.Square) (board.Move, error) {
	if err := s.checkSquare(from); err != nil {
		return board.NoMove, err
	}
	if err := s.checkSquare(to); err != nil {
		return board.NoMove, err
	}
	if s.IsOver() {
		return board.NoMove, ErrGameOver
	}
	if side, ok := s.pos.PieceSide(from); !ok || side != s.pos.Turn {
		return board.NoMove, fmt.Errorf("square %d: %w", from, ErrNotYourPiece)
	}

	best := board.NoMove
	for _, m := range s.LegalMoves().Slice() {
		if m.From != from || m.To != to {
			continue
		}
		if best == board.NoMove || m.CaptureCount() > best.CaptureCount() {
			best = m
		}
	}
	if best == board.NoMove {
		return board.NoMove, fmt.Errorf("%d-%d: %w", from, to, ErrIllegalMove)
	}
	return best, nil
}

// ParseMove resolves move notation ("9-14", "9x18x27" or "9x27") against
// the legal moves.
func (s *Session) ParseMove(text string) (board.Move, error) {
	for _, m := range s.LegalMoves().Slice() {
		if m.String() == text {
			return m, nil
		}
	}
	sep := "-"
	if strings.Contains(text, "x") {
		sep = "x"
	}
	parts := strings.Split(text, sep)
	if len(parts) < 2 {
		return board.NoMove, fmt.Errorf("%q: %w", text, ErrIllegalMove)
	}
	from, err := board.ParseSquare(parts[0], s.size)
	if err != nil {
		return board.NoMove, err
	}
	to, err := board.ParseSquare(parts[len(parts)-1], s.size)
	if err != nil {
		return board.NoMove, err
	}
	return s.Resolve(from, to)
}

// Play moves the piece on from to to.
func (s *Session) Play(from, to board.Square) (board.Move, error) {
	m, err := s.Resolve(from, to)
	if err != nil {
		return board.NoMove, err
	}
	s.apply(m)
	return m, nil
}

// PlayMove applies a move, typically one returned by the engine.
func (s *Session) PlayMove(m board.Move) error {
	if s.IsOver() {
		return ErrGameOver
	}
	legal := s.LegalMoves()
	for _, lm := range legal.Slice() {
		if lm.SameEffect(m) {
			s.apply(lm)
			return nil
		}
	}
	return fmt.Errorf("%s: %w", m, ErrIllegalMove)
}

func (s *Session) apply(m board.Move) {
	s.history = append(s.history, s.pos.Apply(m))
	s.Deselect()
}

// Undo takes back the last move.
func (s *Session) Undo() (board.Move, error) {
	if len(s.history) == 0 {
		return board.NoMove, ErrNoHistory
	}
	h := s.history[len(s.history)-1]
	s.history = s.history[:len(s.history)-1]
	s.pos.Undo(h)
	s.Deselect()
	return h.Move, nil
}

// Restart returns to the starting position of the session.
func (s *Session) Restart() {
	s.pos = s.start.Copy()
	s.history = s.history[:0]
	s.Deselect()
}
