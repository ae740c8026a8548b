package engine

import (
	"github.com/hailam/checkersplay/internal/board"
)

// Move ordering priorities
const (
	HintMoveScore = 1 << 30 // Previous best move gets highest priority
	tacticalScale = 1 << 12 // Tactical class dominates the tie-breakers
	KillerScore1  = 1 << 11 // First killer move
	KillerScore2  = 1 << 10 // Second killer move
	historyMax    = 1 << 9  // History never reaches the killer band
)

// Tactical weights, in units of tacticalScale.
const (
	captureUnit  = 100 // per captured piece
	kingCapture  = 50  // extra per captured king
	promotionVal = 80  // man reaches the promotion row
	exposedVal   = 60  // landing cell can be captured immediately
)

// MoveOrderer handles move ordering for one search worker.
type MoveOrderer struct {
	// Killer moves (quiet moves that caused beta cutoffs)
	killers [MaxPly][2]board.Move

	// History heuristic (indexed by [from][to])
	history [64][64]int
}

// NewMoveOrderer creates a new move orderer.
func NewMoveOrderer() *MoveOrderer {
	return &MoveOrderer{}
}

// Clear resets killers and history for a new search call, so repeated
// calls on the same position order moves identically.
func (mo *MoveOrderer) Clear() {
	clear(mo.killers[:])
	clear(mo.history[:])
}

func (mo *MoveOrderer) ageHistory() {
	for i := range mo.history {
		for j := range mo.history[i] {
			mo.history[i][j] /= 2
		}
	}
}

// ScoreMoves assigns ordering scores to moves. pos must be the position the
// moves were generated for; it is restored before returning.
func (mo *MoveOrderer) ScoreMoves(pos *board.Position, moves *board.MoveList, ply int, hint board.Move) []int {
	scores := make([]int, moves.Len())
	for i := 0; i < moves.Len(); i++ {
		scores[i] = mo.scoreMove(pos, moves.Get(i), ply, hint)
	}
	return scores
}

// scoreMove returns the ordering score for a single move.
func (mo *MoveOrderer) scoreMove(pos *board.Position, m board.Move, ply int, hint board.Move) int {
	if hint != board.NoMove && m.SameEffect(hint) {
		return HintMoveScore
	}

	score := TacticalScore(pos, m) * tacticalScale
	if !m.IsCapture() && ply < MaxPly {
		switch m {
		case mo.killers[ply][0]:
			return score + KillerScore1
		case mo.killers[ply][1]:
			return score + KillerScore2
		}
	}
	return score + mo.HistoryScore(m)
}

// TacticalScore is the quick static value of a move: pieces taken,
// promotion, and a penalty when the piece lands where it can be captured.
func TacticalScore(pos *board.Position, m board.Move) int {
	us := pos.Turn
	score := m.CaptureCount()*captureUnit + (pos.Kings&m.Captured).PopCount()*kingCapture

	h := pos.Apply(m)
	if h.Promoted {
		score += promotionVal
	}
	if pos.Attacked(m.To, us.Other()) {
		score -= exposedVal
	}
	pos.Undo(h)
	return score
}

// PickMove moves the best remaining move to index. Equal scores keep their
// generation order.
func PickMove(moves *board.MoveList, scores []int, index int) {
	best := index
	for j := index + 1; j < moves.Len(); j++ {
		if scores[j] > scores[best] {
			best = j
		}
	}
	for j := best; j > index; j-- {
		moves.Swap(j-1, j)
		scores[j-1], scores[j] = scores[j], scores[j-1]
	}
}

// SortMoves orders all moves by descending score, stable for ties.
func SortMoves(moves *board.MoveList, scores []int) {
	for i := 0; i < moves.Len()-1; i++ {
		PickMove(moves, scores, i)
	}
}

// UpdateKillers adds a quiet killer move at the given ply.
func (mo *MoveOrderer) UpdateKillers(m board.Move, ply int) {
	if ply >= MaxPly || m.IsCapture() {
		return
	}
	if mo.killers[ply][0] == m {
		return
	}
	mo.killers[ply][1] = mo.killers[ply][0]
	mo.killers[ply][0] = m
}

// UpdateHistory rewards a move that caused a cutoff.
func (mo *MoveOrderer) UpdateHistory(m board.Move, depth int) {
	mo.history[m.From][m.To] += depth * depth
	if mo.history[m.From][m.To] > historyMax {
		mo.ageHistory()
	}
}

// HistoryScore returns the history score for a move.
func (mo *MoveOrderer) HistoryScore(m board.Move) int {
	return mo.history[m.From][m.To]
}
