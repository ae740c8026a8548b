package engine

import (
	"sync/atomic"
	"time"

	"github.com/hailam/checkersplay/internal/board"
)

// Worker runs negamax on its own copy of the position. The memo table and
// the orderer belong to the worker; only the stop flag is shared.
type Worker struct {
	id int

	pos     *board.Position
	eval    *Evaluator
	orderer *MoveOrderer
	tt      *TranspositionTable // nil disables memoization

	// recorder is set only for the final pass.
	recorder SampleRecorder

	stopFlag *atomic.Bool
	deadline time.Time

	nodes    uint64
	pv       PVTable
	rootHint board.Move
	rootMove board.Move
}

// NewWorker creates a new search worker.
func NewWorker(id int, eval *Evaluator, tt *TranspositionTable, stopFlag *atomic.Bool) *Worker {
	return &Worker{
		id:       id,
		eval:     eval,
		orderer:  NewMoveOrderer(),
		tt:       tt,
		stopFlag: stopFlag,
	}
}

// ID returns the worker's ID.
func (w *Worker) ID() int {
	return w.id
}

// Nodes returns the number of nodes searched since the last Reset.
func (w *Worker) Nodes() uint64 {
	return w.nodes
}

// Reset prepares the worker for a new search call.
func (w *Worker) Reset() {
	w.nodes = 0
	w.orderer.Clear()
}

// prepare sets up one pass over pos.
func (w *Worker) prepare(pos *board.Position, hint board.Move, rec SampleRecorder, deadline time.Time) {
	w.pos = pos.Copy()
	w.rootHint = hint
	w.rootMove = board.NoMove
	w.recorder = rec
	w.deadline = deadline
}

// SearchDepth searches the prepared position to depth with a full window
// and returns the best root move and its score. ok is false if the pass was
// interrupted.
func (w *Worker) SearchDepth(depth int) (move board.Move, score int, ok bool) {
	score = w.negamax(depth, 0, -Infinity, Infinity)
	if w.stopped() {
		return board.NoMove, 0, false
	}
	return w.rootMove, score, true
}

// GetPV returns the principal variation from the last search.
func (w *Worker) GetPV() []board.Move {
	pv := make([]board.Move, w.pv.length[0])
	copy(pv, w.pv.moves[0][:w.pv.length[0]])
	return pv
}

func (w *Worker) stopped() bool {
	return w.stopFlag.Load()
}

func (w *Worker) checkDeadline() {
	if !w.deadline.IsZero() && time.Now().After(w.deadline) {
		w.stopFlag.Store(true)
	}
}

// negamax is a fail-soft alpha-beta search. Scores are from the point of
// view of the side to move at the node.
func (w *Worker) negamax(depth, ply, alpha, beta int) int {
	w.nodes++
	w.pv.length[ply] = ply
	if w.nodes&1023 == 0 {
		w.checkDeadline()
	}
	if w.stopped() {
		return 0
	}

	pos := w.pos
	moves := pos.LegalMoves(pos.Turn)
	if moves.Len() == 0 {
		return -WinScore + ply
	}
	if depth <= 0 || ply >= MaxPly-1 {
		return w.eval.Score(pos, pos.Turn)
	}

	key := pos.Key()
	hint := board.NoMove
	if w.tt != nil {
		move, score, cutoff := w.tt.Lookup(key, depth, ply, alpha, beta)
		// The root is always searched.
		if cutoff && ply > 0 {
			return score
		}
		hint = move
	}
	if ply == 0 && w.rootHint != board.NoMove {
		hint = w.rootHint
	}

	scores := w.orderer.ScoreMoves(pos, moves, ply, hint)
	alphaOrig := alpha
	bestScore := -Infinity
	bestMove := board.NoMove

	for i := 0; i < moves.Len(); i++ {
		PickMove(moves, scores, i)
		m := moves.Get(i)

		h := pos.Apply(m)
		score := -w.negamax(depth-1, ply+1, -beta, -alpha)
		pos.Undo(h)

		if w.stopped() {
			return 0
		}

		if score > bestScore {
			bestScore = score
			bestMove = m
			if score > alpha {
				alpha = score
				w.pv.moves[ply][ply] = m
				for j := ply + 1; j < w.pv.length[ply+1]; j++ {
					w.pv.moves[ply][j] = w.pv.moves[ply+1][j]
				}
				w.pv.length[ply] = w.pv.length[ply+1]

				if alpha >= beta {
					w.orderer.UpdateKillers(m, ply)
					w.orderer.UpdateHistory(m, depth)
					break
				}
			}
		}
	}

	var flag TTFlag
	if w.tt != nil {
		flag = w.tt.Save(key, depth, ply, bestScore, alphaOrig, beta, bestMove)
	} else {
		flag = boundFlag(bestScore, alphaOrig, beta)
	}
	if flag == TTExact && w.recorder != nil {
		w.recorder.Record(pos, bestMove)
	}
	if ply == 0 {
		w.rootMove = bestMove
	}
	return bestScore
}
