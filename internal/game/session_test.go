package game

import (
	"errors"
	"sync"
	"testing"

	"github.com/hailam/checkersplay/internal/board"
)

func fromDiagram(t *testing.T, turn board.Side, rows ...string) *Session {
	t.Helper()
	pos, err := board.ParseDiagram(turn, rows...)
	if err != nil {
		t.Fatalf("ParseDiagram: %v", err)
	}
	s, err := NewSessionFrom(pos)
	if err != nil {
		t.Fatalf("NewSessionFrom: %v", err)
	}
	return s
}

func TestSelectAndTargets(t *testing.T) {
	s, err := NewSession(8)
	if err != nil {
		t.Fatal(err)
	}
	if s.ID == "" {
		t.Fatal("session has no id")
	}

	// 17 is an A man on the front row; it can step to 24 and 26.
	if err := s.Select(17); err != nil {
		t.Fatalf("Select(17): %v", err)
	}
	targets := s.Targets()
	if len(targets) != 2 || targets[0] != 24 || targets[1] != 26 {
		t.Errorf("Targets() = %v, want [24 26]", targets)
	}

	tests := []struct {
		name string
		sq   board.Square
		want error
	}{
		{"negative", -1, ErrOutOfBounds},
		{"past the end", 64, ErrOutOfBounds},
		{"empty", 24, ErrNotYourPiece},
		{"opponent", 40, ErrNotYourPiece},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := s.Select(tt.sq); !errors.Is(err, tt.want) {
				t.Errorf("Select(%d) = %v, want %v", tt.sq, err, tt.want)
			}
			if s.Selected() != 17 {
				t.Errorf("failed Select changed the selection to %d", s.Selected())
			}
		})
	}
}

func TestPlayRejectsWithoutMutation(t *testing.T) {
	s, _ := NewSession(8)
	before := s.Position().ToFEN()

	tests := []struct {
		name     string
		from, to board.Square
		want     error
	}{
		{"out of bounds", 17, 99, ErrOutOfBounds},
		{"not your piece", 40, 33, ErrNotYourPiece},
		{"empty origin", 24, 33, ErrNotYourPiece},
		{"backward", 17, 8, ErrIllegalMove},
		{"too far", 17, 35, ErrIllegalMove},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.Play(tt.from, tt.to); !errors.Is(err, tt.want) {
				t.Errorf("Play(%d, %d) = %v, want %v", tt.from, tt.to, err, tt.want)
			}
			if got := s.Position().ToFEN(); got != before {
				t.Errorf("rejected move changed the position: %s", got)
			}
			if s.Plies() != 0 {
				t.Errorf("rejected move recorded history")
			}
		})
	}
}

func TestPlayUndoRestart(t *testing.T) {
	s, _ := NewSession(8)
	start := s.Position().ToFEN()

	if _, err := s.Play(17, 24); err != nil {
		t.Fatal(err)
	}
	if s.Turn() != board.SideB {
		t.Errorf("turn = %v after A moved", s.Turn())
	}
	if _, err := s.Play(40, 33); err != nil {
		t.Fatal(err)
	}
	if got := s.History(); len(got) != 2 || got[0].String() != "17-24" {
		t.Errorf("History() = %v", got)
	}

	m, err := s.Undo()
	if err != nil || m.String() != "40-33" {
		t.Errorf("Undo() = %s, %v", m, err)
	}
	s.Restart()
	if s.Position().ToFEN() != start || s.Plies() != 0 {
		t.Errorf("Restart did not return to the start: %s", s.Position().ToFEN())
	}
	if _, err := s.Undo(); !errors.Is(err, ErrNoHistory) {
		t.Errorf("Undo on a fresh game = %v", err)
	}
}

func TestPlayPrefersLongestChain(t *testing.T) {
	// The man on 28 can take 19 straight away and stop on 10, or first
	// loop around 37, 53, 51 and 35 back to 28 and then take 19.
	s := fromDiagram(t, board.SideA,
		"........",
		"........",
		"...b....",
		"....a...",
		"...b.b..",
		"........",
		"...b.b..",
		"........",
	)
	m, err := s.Play(28, 10)
	if err != nil {
		t.Fatalf("Play(28, 10): %v", err)
	}
	if m.CaptureCount() != 5 {
		t.Errorf("played %s capturing %d, want 5", m, m.CaptureCount())
	}
	if s.Position().Count() != 1 {
		t.Errorf("%d pieces left, want 1", s.Position().Count())
	}
}

func TestParseMove(t *testing.T) {
	s := fromDiagram(t, board.SideA,
		"........",
		"........",
		".a......",
		"..b.....",
		"........",
		"..b.....",
		"........",
		"........",
	)
	// 17x35x49 is the only legal move.
	for _, text := range []string{"17x35x49", "17x49"} {
		m, err := s.ParseMove(text)
		if err != nil {
			t.Errorf("ParseMove(%q): %v", text, err)
			continue
		}
		if m.String() != "17x35x49" {
			t.Errorf("ParseMove(%q) = %s", text, m)
		}
	}
	if _, err := s.ParseMove("17-24"); !errors.Is(err, ErrIllegalMove) {
		t.Errorf("quiet move accepted while a capture is available: %v", err)
	}
	if _, err := s.ParseMove("junk"); err == nil {
		t.Error("ParseMove accepted junk")
	}
}

func TestGameOver(t *testing.T) {
	// B's only man on 8 is boxed in: 1 is taken and the jump over 17 is
	// blocked by 26.
	s := fromDiagram(t, board.SideB,
		".a......",
		"b.......",
		".a......",
		"..a.....",
		"........",
		"........",
		"........",
		"........",
	)
	if !s.IsOver() {
		t.Fatal("expected the game to be over")
	}
	if w, ok := s.Winner(); !ok || w != board.SideA {
		t.Errorf("Winner() = %v, %v", w, ok)
	}
	if _, err := s.Play(8, 1); !errors.Is(err, ErrGameOver) {
		t.Errorf("Play after game over = %v", err)
	}
	if err := s.PlayMove(board.NewMove(8, 1)); !errors.Is(err, ErrGameOver) {
		t.Errorf("PlayMove after game over = %v", err)
	}
}

func TestManager(t *testing.T) {
	m := NewManager()
	var wg sync.WaitGroup
	ids := make(chan string, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := m.NewGame(6)
			if err != nil {
				t.Error(err)
				return
			}
			ids <- s.ID
		}()
	}
	wg.Wait()
	close(ids)

	if m.Len() != 8 {
		t.Fatalf("Len() = %d, want 8", m.Len())
	}
	for id := range ids {
		s, ok := m.Get(id)
		if !ok || s.Size() != 6 {
			t.Errorf("Get(%s) = %v, %v", id, s, ok)
		}
		m.Remove(id)
	}
	if m.Len() != 0 {
		t.Errorf("Len() = %d after removing all", m.Len())
	}
	if _, err := m.NewGame(5); err == nil {
		t.Error("NewGame accepted an odd size")
	}
}
