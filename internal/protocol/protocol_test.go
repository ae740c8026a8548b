package protocol

import (
	"bytes"
	"strings"
	"testing"

	"github.com/hailam/checkersplay/internal/board"
	"github.com/hailam/checkersplay/internal/engine"
)

func newHandler(t *testing.T) *Handler {
	t.Helper()
	opts := engine.DefaultOptions()
	opts.MemoSizeMB = 1
	opts.Seed = 7
	h, err := New(engine.NewEngine(opts), nil)
	if err != nil {
		t.Fatal(err)
	}
	return h
}

// run feeds script to a handler and returns the reply lines.
func run(t *testing.T, h *Handler, script ...string) []string {
	t.Helper()
	var out bytes.Buffer
	if err := h.Run(strings.NewReader(strings.Join(script, "\n")), &out); err != nil {
		t.Fatalf("Run: %v", err)
	}
	text := strings.TrimSpace(out.String())
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

func lastLine(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return lines[len(lines)-1]
}

func TestIsReadyAndQuit(t *testing.T) {
	h := newHandler(t)
	lines := run(t, h, "isready", "quit", "isready")
	if len(lines) != 1 || lines[0] != "readyok" {
		t.Errorf("replies = %q, want [readyok]", lines)
	}
}

func TestMovesAndPlay(t *testing.T) {
	h := newHandler(t)
	lines := run(t, h, "moves", "play 17 24", "play 40-33", "undo")
	want := []string{
		"moves 17-24 17-26 19-26 19-28 21-28 21-30 23-30",
		"played 17-24",
		"played 40-33",
		"undone 40-33",
	}
	if len(lines) != len(want) {
		t.Fatalf("replies = %q", lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
	if h.Session().Plies() != 1 {
		t.Errorf("plies = %d, want 1", h.Session().Plies())
	}
}

func TestRejectedCommandsKeepTheGame(t *testing.T) {
	h := newHandler(t)
	run(t, h, "play 17 24")
	before := h.Session().Position().ToFEN()

	tests := []struct {
		name    string
		command string
	}{
		{"wrong side", "play 19 26"},
		{"bad square", "play 40 99"},
		{"bad fen", "position xx/yy a"},
		{"bad move list", "position startpos moves 17-24 17-26"},
		{"unknown", "castle"},
		{"bad depth", "go depth x"},
		{"unknown bot", "go bot nobody"},
		{"missing value", "go depth"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := run(t, h, tt.command)
			if !strings.HasPrefix(lastLine(lines), "error ") {
				t.Errorf("%q replied %q, want an error", tt.command, lines)
			}
			if h.Session().Position().ToFEN() != before {
				t.Errorf("%q changed the game", tt.command)
			}
		})
	}
}

func TestUndoWithoutHistory(t *testing.T) {
	h := newHandler(t)
	lines := run(t, h, "undo")
	if len(lines) != 1 || !strings.HasPrefix(lines[0], "error ") {
		t.Errorf("undo on a fresh game replied %q", lines)
	}
}

func TestPositionCommand(t *testing.T) {
	h := newHandler(t)
	run(t, h, "position startpos moves 17-24 40-33")
	if h.Session().Plies() != 2 || h.Session().Turn() != board.SideA {
		t.Errorf("plies = %d, turn = %v", h.Session().Plies(), h.Session().Turn())
	}

	fen := h.Session().Position().ToFEN()
	h2 := newHandler(t)
	run(t, h2, "position "+fen)
	if got := h2.Session().Position().ToFEN(); got != fen {
		t.Errorf("position from fen = %s, want %s", got, fen)
	}

	run(t, h2, "newgame 6")
	if h2.Session().Size() != 6 {
		t.Errorf("newgame 6 gave size %d", h2.Session().Size())
	}
}

func TestGoReportsInfoAndBestMove(t *testing.T) {
	h := newHandler(t)
	lines := run(t, h,
		"position ......../......../.a....../..b...../......../..b...../......../........ a",
		"go depth 3 blunder 0",
	)
	if lastLine(lines) != "bestmove 17x35x49" {
		t.Errorf("last reply %q, want bestmove 17x35x49", lastLine(lines))
	}
	var finals int
	for _, l := range lines[:len(lines)-1] {
		if !strings.HasPrefix(l, "info phase ") {
			t.Errorf("unexpected line %q", l)
		}
		if strings.HasPrefix(l, "info phase final") {
			finals++
		}
	}
	if finals != 1 {
		t.Errorf("%d final pass reports, want 1", finals)
	}
	// The search does not play the move.
	if h.Session().Plies() != 0 {
		t.Error("go applied the move")
	}
}

func TestGoWithoutMoves(t *testing.T) {
	h := newHandler(t)
	lines := run(t, h,
		"position .a....../b......./.a....../..a...../......../......../......../........ b",
		"go depth 2",
	)
	if lastLine(lines) != "bestmove 0000" {
		t.Errorf("reply %q, want bestmove 0000", lines)
	}
}

func TestEvalAndPerft(t *testing.T) {
	h := newHandler(t)
	lines := run(t, h, "eval", "perft 2", "d")
	if !strings.HasPrefix(lines[0], "eval 0 (0.00) even") {
		t.Errorf("eval of the start = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "nodes 49 ") {
		t.Errorf("perft 2 = %q", lines[1])
	}
	if lastLine(lines) != "fen "+board.StartFEN {
		t.Errorf("d ended with %q", lastLine(lines))
	}
}

func TestSelectCommand(t *testing.T) {
	h := newHandler(t)
	lines := run(t, h, "select 17")
	if lastLine(lines) != "targets 24 26" {
		t.Errorf("select 17 replied %q", lines)
	}
	if h.Session().Selected() != 17 {
		t.Errorf("selected %d, want 17", h.Session().Selected())
	}

	lines = run(t, h, "select 40")
	if !strings.HasPrefix(lastLine(lines), "error ") {
		t.Errorf("selecting an enemy man replied %q", lines)
	}

	lines = run(t, h, "select")
	if lastLine(lines) != "selected none" || h.Session().Selected() != board.NoSquare {
		t.Errorf("select without a square replied %q, selection %d", lines, h.Session().Selected())
	}
}

func TestGameCommand(t *testing.T) {
	h := newHandler(t)
	first := h.Session().ID
	run(t, h, "play 17 24", "newgame 6")
	second := h.Session().ID
	if second == first {
		t.Fatal("newgame reused the game id")
	}

	lines := run(t, h, "game")
	if want := "game " + second + " size 6 plies 0"; lastLine(lines) != want {
		t.Errorf("game replied %q, want %q", lines, want)
	}
	lines = run(t, h, "game "+first)
	if want := "game " + first + " size 8 plies 1"; lastLine(lines) != want {
		t.Errorf("switching back replied %q, want %q", lines, want)
	}

	// A new position replaces the current game.
	run(t, h, "position startpos")
	lines = run(t, h, "game "+first)
	if !strings.HasPrefix(lastLine(lines), "error ") {
		t.Errorf("replaced game still resumable: %q", lines)
	}
	lines = run(t, h, "game "+second)
	if want := "game " + second + " size 6 plies 0"; lastLine(lines) != want {
		t.Errorf("game replied %q, want %q", lines, want)
	}
}

func TestInfoWinScores(t *testing.T) {
	h := newHandler(t)
	var out bytes.Buffer
	h.out = &out

	tests := []struct {
		score int
		want  string
	}{
		{engine.WinScore - 3, "score win 3"},
		{-engine.WinScore + 4, "score loss 4"},
		{120, "score cp 120"},
	}
	for _, tt := range tests {
		out.Reset()
		h.sendInfo(engine.SearchInfo{Phase: engine.PhaseFinal, Depth: 4, Score: tt.score})
		if !strings.Contains(out.String(), tt.want) {
			t.Errorf("score %d printed %q, want %q", tt.score, out.String(), tt.want)
		}
	}
}
