// Package engine implements the checkers evaluation and alpha-beta search.
package engine

import (
	"strconv"

	"github.com/hailam/checkersplay/internal/board"
)

// Weights are the tunable evaluation terms.
type Weights struct {
	Piece           int `json:"piece"`
	King            int `json:"king"`
	Mobility        int `json:"mobility"`
	Capture         int `json:"capture"`
	MultiCapture    int `json:"multi_capture"`
	PromotionThreat int `json:"promotion_threat_pct"` // percent of King
	EndgamePieces   int `json:"endgame_pieces"`       // endgame starts below this many pieces
	EndgameKing     int `json:"endgame_king"`
	EndgameMobility int `json:"endgame_mobility"`
	LowMobility     int `json:"low_mobility"`
}

// DefaultWeights returns the standard evaluation weights. A king is worth
// two and a half men.
func DefaultWeights() Weights {
	return Weights{
		Piece:           100,
		King:            250,
		Mobility:        5,
		Capture:         30,
		MultiCapture:    40,
		PromotionThreat: 20,
		EndgamePieces:   10,
		EndgameKing:     100,
		EndgameMobility: 10,
		LowMobility:     50,
	}
}

// lowMobilityMoves is the move count at or below which a side is cramped.
const lowMobilityMoves = 2

// maxHeuristic keeps heuristic scores clear of the win range.
const maxHeuristic = WinScore - 2*MaxPly

// Terms is an evaluation broken down by component, from SideA's point of view.
type Terms struct {
	Material  int
	Mobility  int
	Captures  int
	Promotion int
	Endgame   int
	Total     int
	Terminal  bool
}

// Evaluator scores positions with a fixed set of weights. It holds no
// mutable state and is safe for concurrent use.
type Evaluator struct {
	w Weights
}

// NewEvaluator creates an evaluator.
func NewEvaluator(w Weights) *Evaluator {
	return &Evaluator{w: w}
}

// Weights returns the evaluator's weights.
func (e *Evaluator) Weights() Weights {
	return e.w
}

// Score returns the evaluation of pos from side's point of view. Positive
// favors side. Score(p, A) == -Score(p, B) for every position. If the side
// to move has no legal move the result is -WinScore or +WinScore.
func (e *Evaluator) Score(pos *board.Position, side board.Side) int {
	total := e.Terms(pos).Total
	if side == board.SideB {
		return -total
	}
	return total
}

// Terms computes every evaluation component for pos.
func (e *Evaluator) Terms(pos *board.Position) Terms {
	moves := [2]*board.MoveList{
		pos.LegalMoves(board.SideA),
		pos.LegalMoves(board.SideB),
	}

	if moves[pos.Turn].Len() == 0 {
		total := -WinScore
		if pos.Turn == board.SideB {
			total = WinScore
		}
		return Terms{Total: total, Terminal: true}
	}

	var t Terms
	t.Material = e.material(pos, board.SideA) - e.material(pos, board.SideB)
	t.Mobility = (moves[board.SideA].Len() - moves[board.SideB].Len()) * e.w.Mobility
	t.Captures = e.capturePotential(moves[board.SideA]) - e.capturePotential(moves[board.SideB])
	t.Promotion = e.promotionThreat(pos, board.SideA) - e.promotionThreat(pos, board.SideB)
	t.Endgame = e.endgame(pos, moves)

	t.Total = t.Material + t.Mobility + t.Captures + t.Promotion + t.Endgame
	t.Total = max(-maxHeuristic, min(maxHeuristic, t.Total))
	return t
}

func (e *Evaluator) material(pos *board.Position, s board.Side) int {
	return pos.Men(s).PopCount()*e.w.Piece + pos.KingsOf(s).PopCount()*e.w.King
}

// capturePotential rewards every piece the side could take right now, with
// an extra bonus per additional capture in its longest chain.
func (e *Evaluator) capturePotential(moves *board.MoveList) int {
	if moves.Len() == 0 || !moves.Get(0).IsCapture() {
		return 0
	}
	var victims board.Bitboard
	longest := 0
	for _, m := range moves.Slice() {
		victims |= m.Captured
		longest = max(longest, m.CaptureCount())
	}
	return victims.PopCount()*e.w.Capture + (longest-1)*e.w.MultiCapture
}

// promotionThreat counts men one step from the promotion row with a free
// forward cell.
func (e *Evaluator) promotionThreat(pos *board.Position, s board.Side) int {
	g := pos.Geometry()
	occ := pos.Occupied()
	threats := 0
	men := pos.Men(s)
	for men != 0 {
		sq := men.PopLSB()
		for _, d := range board.Forward(s) {
			to := g.Neighbor(sq, d)
			if to != board.NoSquare && g.PromotionRow[s].IsSet(to) && !occ.IsSet(to) {
				threats++
				break
			}
		}
	}
	return threats * e.w.King * e.w.PromotionThreat / 100
}

// endgame re-weights kings and mobility once few pieces remain. The term
// grows as the piece count falls further below the threshold.
func (e *Evaluator) endgame(pos *board.Position, moves [2]*board.MoveList) int {
	threshold := e.w.EndgamePieces
	total := pos.Count()
	if threshold <= 0 || total >= threshold {
		return 0
	}

	score := (pos.KingsOf(board.SideA).PopCount() - pos.KingsOf(board.SideB).PopCount()) * e.w.EndgameKing
	score += (moves[board.SideA].Len() - moves[board.SideB].Len()) * e.w.EndgameMobility
	if moves[board.SideA].Len() <= lowMobilityMoves {
		score -= e.w.LowMobility
	}
	if moves[board.SideB].Len() <= lowMobilityMoves {
		score += e.w.LowMobility
	}
	return score * (threshold - total) / threshold
}

// Outlook is a coarse reading of a score used to pick bot reactions.
type Outlook int

const (
	Losing Outlook = iota
	Worse
	Even
	Better
	Winning
)

// OutlookFor buckets a score from the mover's point of view.
func OutlookFor(score int) Outlook {
	switch {
	case score <= -300:
		return Losing
	case score <= -50:
		return Worse
	case score < 50:
		return Even
	case score < 300:
		return Better
	default:
		return Winning
	}
}

func (o Outlook) String() string {
	switch o {
	case Losing:
		return "losing"
	case Worse:
		return "worse"
	case Better:
		return "better"
	case Winning:
		return "winning"
	default:
		return "even"
	}
}

// IsWinScore reports whether score encodes a forced win or loss.
func IsWinScore(score int) bool {
	return score > WinScore-MaxPly || score < -WinScore+MaxPly
}

// ScoreToString converts a score to a human-readable string.
func ScoreToString(score int) string {
	if score > WinScore-MaxPly {
		return "Win in " + strconv.Itoa((WinScore-score+1)/2)
	}
	if score < -WinScore+MaxPly {
		return "Loss in " + strconv.Itoa((WinScore+score+1)/2)
	}

	// Hundredths of a man
	sign := ""
	if score < 0 {
		sign = "-"
		score = -score
	}
	frac := strconv.Itoa(score % 100)
	if len(frac) == 1 {
		frac = "0" + frac
	}
	return sign + strconv.Itoa(score/100) + "." + frac
}
