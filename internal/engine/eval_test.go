package engine

import (
	"testing"

	"github.com/hailam/checkersplay/internal/board"
)

func mustParse(t *testing.T, turn board.Side, rows ...string) *board.Position {
	t.Helper()
	pos, err := board.ParseDiagram(turn, rows...)
	if err != nil {
		t.Fatalf("ParseDiagram: %v", err)
	}
	return pos
}

func TestEvaluatorAntisymmetry(t *testing.T) {
	ev := NewEvaluator(DefaultWeights())
	for _, size := range board.SupportedSizes {
		pos, _ := board.NewPosition(size)
		for ply := 0; ply < 60; ply++ {
			a := ev.Score(pos, board.SideA)
			b := ev.Score(pos, board.SideB)
			if a != -b {
				t.Fatalf("size %d ply %d: Score(A)=%d Score(B)=%d\n%s", size, ply, a, b, pos)
			}
			moves := pos.LegalMoves(pos.Turn)
			if moves.Len() == 0 {
				break
			}
			pos.Apply(moves.Get((ply*3 + 2) % moves.Len()))
		}
	}
}

func TestEvaluatorTerminal(t *testing.T) {
	ev := NewEvaluator(DefaultWeights())
	pos := mustParse(t, board.SideB,
		".a......",
		"b.......",
		"........",
		"........",
		"........",
		"........",
		"........",
		"........",
	)
	if got := ev.Score(pos, board.SideB); got != -WinScore {
		t.Errorf("Score(B) = %d, want %d", got, -WinScore)
	}
	if got := ev.Score(pos, board.SideA); got != WinScore {
		t.Errorf("Score(A) = %d, want %d", got, WinScore)
	}
	if !ev.Terms(pos).Terminal {
		t.Error("terms should be marked terminal")
	}
}

func TestEvaluatorTerms(t *testing.T) {
	w := DefaultWeights()
	ev := NewEvaluator(w)

	start, _ := board.NewPosition(8)
	if got := ev.Score(start, board.SideA); got != 0 {
		t.Errorf("starting position should be balanced, got %d", got)
	}

	tests := []struct {
		name string
		pos  *board.Position
		want func(Terms) bool
	}{
		{
			name: "king outweighs man",
			pos: mustParse(t, board.SideA,
				".A......",
				"........",
				"........",
				"........",
				"........",
				"........",
				"........",
				"b.b.....",
			),
			want: func(tm Terms) bool { return tm.Material == w.King-2*w.Piece },
		},
		{
			name: "promotion threat",
			pos: mustParse(t, board.SideA,
				"........",
				"........",
				"........",
				"........",
				"........",
				"........",
				".a......",
				"......b.",
			),
			want: func(tm Terms) bool { return tm.Promotion == w.King*w.PromotionThreat/100 },
		},
		{
			name: "capture potential",
			pos: mustParse(t, board.SideA,
				"........",
				"........",
				".a......",
				"..b.....",
				"........",
				"..b.b...",
				"........",
				"........",
			),
			// A threatens three men with a double jump; B can take 17 back.
			want: func(tm Terms) bool { return tm.Captures == 3*w.Capture+w.MultiCapture-w.Capture },
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			terms := ev.Terms(tc.pos)
			if !tc.want(terms) {
				t.Errorf("unexpected terms %+v", terms)
			}
		})
	}
}

func TestEndgameScaling(t *testing.T) {
	w := DefaultWeights()
	w.Mobility = 0
	ev := NewEvaluator(w)

	// Same king advantage; fewer pieces means a larger endgame term.
	crowded := mustParse(t, board.SideA,
		".A.A....",
		"........",
		"........",
		"........",
		"........",
		"b.b.b...",
		".b......",
		"........",
	)
	sparse := mustParse(t, board.SideA,
		".A.A....",
		"........",
		"........",
		"........",
		"........",
		"b.......",
		"........",
		"........",
	)
	c := ev.Terms(crowded).Endgame
	s := ev.Terms(sparse).Endgame
	if s <= c {
		t.Errorf("endgame term should grow as pieces disappear: %d pieces -> %d, %d pieces -> %d",
			crowded.Count(), c, sparse.Count(), s)
	}
}

func TestScoreToString(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{0, "0.00"},
		{125, "1.25"},
		{-7, "-0.07"},
		{WinScore - 3, "Win in 2"},
		{-WinScore + 4, "Loss in 2"},
	}
	for _, tc := range tests {
		if got := ScoreToString(tc.score); got != tc.want {
			t.Errorf("ScoreToString(%d) = %q, want %q", tc.score, got, tc.want)
		}
	}
}

func TestOutlookFor(t *testing.T) {
	tests := []struct {
		score int
		want  Outlook
	}{
		{-1000, Losing},
		{-100, Worse},
		{0, Even},
		{120, Better},
		{WinScore, Winning},
	}
	for _, tc := range tests {
		if got := OutlookFor(tc.score); got != tc.want {
			t.Errorf("OutlookFor(%d) = %s, want %s", tc.score, got, tc.want)
		}
	}
}
