package engine

import (
	"testing"

	"github.com/hailam/checkersplay/internal/board"
)

func TestPickMoveKeepsGenerationOrderForTies(t *testing.T) {
	ml := board.NewMoveList()
	for i := 0; i < 5; i++ {
		ml.Add(board.NewMove(board.Square(i), board.Square(i+8)))
	}
	scores := []int{1, 1, 5, 1, 5}
	SortMoves(ml, scores)

	want := []board.Square{2, 4, 0, 1, 3}
	for i, from := range want {
		if got := ml.Get(i).From; got != from {
			t.Errorf("position %d: move from %d, want %d", i, got, from)
		}
	}
}

func TestScoreMovesPriorities(t *testing.T) {
	pos := mustParse(t, board.SideA,
		"........",
		"........",
		".a......",
		"..b.....",
		"........",
		"..b.b...",
		"........",
		"........",
	)
	mo := NewMoveOrderer()

	// Captures outrank everything but the hint.
	caps := pos.Captures(board.SideA)
	hint := caps.Get(1)
	scores := mo.ScoreMoves(pos, caps, 0, hint)
	if scores[1] != HintMoveScore || scores[0] >= scores[1] {
		t.Errorf("hint not first: %v", scores)
	}

	start, _ := board.NewPosition(8)
	quiet := start.LegalMoves(board.SideA)
	killer := quiet.Get(3)
	mo.UpdateKillers(killer, 2)
	scores = mo.ScoreMoves(start, quiet, 2, board.NoMove)
	for i, s := range scores {
		if i != 3 && s >= scores[3] {
			t.Errorf("move %s (%d) ranks with the killer (%d)", quiet.Get(i), s, scores[3])
		}
	}
}

func TestClearResetsHistory(t *testing.T) {
	mo := NewMoveOrderer()
	m := board.NewMove(17, 24)
	mo.UpdateHistory(m, 4)
	mo.UpdateKillers(m, 3)
	if mo.HistoryScore(m) != 16 {
		t.Fatalf("history after a depth 4 cutoff = %d, want 16", mo.HistoryScore(m))
	}

	mo.Clear()
	if got := mo.HistoryScore(m); got != 0 {
		t.Errorf("history survived Clear: %d", got)
	}
	if mo.killers[3][0] != board.NoMove {
		t.Errorf("killer survived Clear: %s", mo.killers[3][0])
	}
}

func TestTacticalScore(t *testing.T) {
	// Stepping next to an enemy man with an empty cell behind is penalised.
	pos := mustParse(t, board.SideA,
		"........",
		"........",
		"...a....",
		"........",
		".....b..",
		"........",
		"........",
		"........",
	)
	var safe, exposed int
	for _, m := range pos.LegalMoves(board.SideA).Slice() {
		switch m.To {
		case 26:
			safe = TacticalScore(pos, m)
		case 28:
			exposed = TacticalScore(pos, m)
		}
	}
	if exposed >= safe {
		t.Errorf("exposed move scored %d, safe move %d", exposed, safe)
	}

	promo := mustParse(t, board.SideA,
		"........",
		"........",
		"........",
		"........",
		"........",
		"........",
		".a......",
		"......b.",
	)
	m := promo.LegalMoves(board.SideA).Get(0)
	if TacticalScore(promo, m) != promotionVal {
		t.Errorf("promotion scored %d", TacticalScore(promo, m))
	}
}
