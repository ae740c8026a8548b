package engine

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/hailam/checkersplay/internal/board"
)

// Difficulty represents a bot strength profile.
type Difficulty int

const (
	Easy Difficulty = iota
	Medium
	Hard
	Expert
)

// DifficultySettings maps difficulty to search limits.
var DifficultySettings = map[Difficulty]SearchLimits{
	Easy:   {Depth: 2, Blunder: 0.35},
	Medium: {Depth: 4, Blunder: 0.15},
	Hard:   {Depth: 6, Blunder: 0.05},
	Expert: {Depth: 8, Blunder: 0},
}

func (d Difficulty) String() string {
	switch d {
	case Easy:
		return "easy"
	case Medium:
		return "medium"
	case Hard:
		return "hard"
	case Expert:
		return "expert"
	}
	return fmt.Sprintf("difficulty(%d)", int(d))
}

// ParseDifficulty parses a difficulty name.
func ParseDifficulty(s string) (Difficulty, error) {
	for d := Easy; d <= Expert; d++ {
		if strings.EqualFold(s, d.String()) {
			return d, nil
		}
	}
	return Medium, fmt.Errorf("unknown difficulty %q", s)
}

// Options configures an Engine.
type Options struct {
	MemoSizeMB  int     // Size of the memo table
	RetainMemo  bool    // Keep the memo table between calls
	DisableMemo bool    // Search without memoization
	Threads     int     // Goroutines for the root split (1 = sequential)
	Seed        uint64  // Blunder RNG seed, 0 = random
	Weights     Weights // Evaluation weights
}

// DefaultOptions returns a sequential engine with a 16 MB memo table.
func DefaultOptions() Options {
	return Options{
		MemoSizeMB: 16,
		Threads:    1,
		Weights:    DefaultWeights(),
	}
}

// Engine is the checkers search engine. One search runs at a time.
type Engine struct {
	opts       Options
	eval       *Evaluator
	tt         *TranspositionTable
	worker     *Worker
	blunder    *blunderPolicy
	difficulty Difficulty

	mu       sync.Mutex
	stopFlag atomic.Bool
	phase    atomic.Int32
	recorder SampleRecorder

	// Callbacks
	OnInfo func(SearchInfo)
}

// NewEngine creates a new engine.
func NewEngine(opts Options) *Engine {
	if opts.Threads < 1 {
		opts.Threads = 1
	}
	if opts.MemoSizeMB < 1 {
		opts.MemoSizeMB = 1
	}
	if opts.Weights == (Weights{}) {
		opts.Weights = DefaultWeights()
	}

	e := &Engine{
		opts:       opts,
		eval:       NewEvaluator(opts.Weights),
		blunder:    newBlunderPolicy(opts.Seed),
		difficulty: Medium,
	}
	if !opts.DisableMemo {
		e.tt = NewTranspositionTable(opts.MemoSizeMB)
	}
	e.worker = NewWorker(0, e.eval, e.tt, &e.stopFlag)
	return e
}

// SetDifficulty sets the profile used by Play.
func (e *Engine) SetDifficulty(d Difficulty) {
	e.difficulty = d
}

// SetRecorder sets where training samples go. nil disables recording.
func (e *Engine) SetRecorder(r SampleRecorder) {
	e.mu.Lock()
	e.recorder = r
	e.mu.Unlock()
}

// Evaluator returns the engine's evaluator.
func (e *Engine) Evaluator() *Evaluator {
	return e.eval
}

// Phase returns the stage of the current or last search.
func (e *Engine) Phase() Phase {
	return Phase(e.phase.Load())
}

// Play searches pos with the current difficulty profile.
func (e *Engine) Play(pos *board.Position) (Result, error) {
	return e.Search(pos, pos.Turn, DifficultySettings[e.difficulty])
}

// BestMove returns the move to play for side, searched to targetDepth and
// perturbed with probability blunder.
func (e *Engine) BestMove(pos *board.Position, side board.Side, targetDepth int, blunder float64) (board.Move, error) {
	r, err := e.Search(pos, side, SearchLimits{Depth: targetDepth, Blunder: blunder})
	return r.Move, err
}

// Search runs iterative deepening to limits.Depth-1 to seed move ordering,
// then an authoritative pass at limits.Depth. pos is not modified.
func (e *Engine) Search(pos *board.Position, side board.Side, limits SearchLimits) (Result, error) {
	if limits.Depth <= 0 || limits.Depth >= MaxPly {
		return Result{}, fmt.Errorf("depth %d: %w", limits.Depth, ErrInvalidDepth)
	}
	if math.IsNaN(limits.Blunder) || limits.Blunder < 0 || limits.Blunder > 1 {
		return Result{}, fmt.Errorf("blunder %v: %w", limits.Blunder, ErrInvalidBlunder)
	}

	root := pos.Copy()
	root.Turn = side
	legal := root.LegalMoves(side)
	if legal.Len() == 0 {
		return Result{Move: board.NoMove, BestMove: board.NoMove, Score: -WinScore}, ErrNoLegalMoves
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.stopFlag.Store(false)
	tm := NewTimeManager()
	tm.Init(limits.MoveTime)
	if e.tt != nil {
		if !e.opts.RetainMemo {
			e.tt.Clear()
		}
		e.tt.NewSearch()
	}
	e.worker.Reset()

	var (
		result   Result
		hint     = board.NoMove
		nodes    uint64
		timedOut bool
	)

	e.phase.Store(int32(PhaseIterating))
	for depth := 1; depth < limits.Depth; depth++ {
		if depth > 1 && !tm.ShouldStartIteration() {
			timedOut = true
			break
		}
		move, score, pv, n, ok := e.searchDepth(root, depth, hint, nil, e.armedDeadline(tm, result))
		nodes += n
		if !ok {
			timedOut = true
			break
		}
		hint = move
		result = Result{BestMove: move, Score: score, Depth: depth, PV: pv}
		e.report(PhaseIterating, result, nodes, tm)
	}

	if !timedOut && (result.Depth == 0 || tm.ShouldStartIteration()) {
		e.phase.Store(int32(PhaseFinal))
		move, score, pv, n, ok := e.searchDepth(root, limits.Depth, hint, e.recorder, e.armedDeadline(tm, result))
		nodes += n
		if ok {
			result = Result{BestMove: move, Score: score, Depth: limits.Depth, PV: pv}
			e.report(PhaseFinal, result, nodes, tm)
		}
	}
	e.phase.Store(int32(PhaseDone))

	// Stopped before the first pass completed.
	if result.BestMove == board.NoMove {
		result.BestMove = legal.Get(0)
		result.Score = e.eval.Score(root, side)
	}

	result.Nodes = nodes
	result.Move = result.BestMove
	best := legal.IndexOf(result.BestMove)
	if idx, blundered := e.blunder.pick(legal.Len(), best, limits.Blunder); blundered {
		result.Move = legal.Get(idx)
		result.Blundered = true
		log.Info().
			Str("best", result.BestMove.String()).
			Str("played", result.Move.String()).
			Float64("p", limits.Blunder).
			Msg("blunder")
	}
	result.Time = tm.Elapsed()
	return result, nil
}

// armedDeadline applies the deadline only once a pass has completed, so a
// search always returns a searched move.
func (e *Engine) armedDeadline(tm *TimeManager, completed Result) time.Time {
	if completed.Depth == 0 {
		return time.Time{}
	}
	return tm.Deadline()
}

// searchDepth runs one full-window pass at depth.
func (e *Engine) searchDepth(root *board.Position, depth int, hint board.Move, rec SampleRecorder, deadline time.Time) (board.Move, int, []board.Move, uint64, bool) {
	if e.opts.Threads > 1 {
		return e.searchRootSplit(root, depth, hint, rec, deadline)
	}

	w := e.worker
	before := w.Nodes()
	w.prepare(root, hint, rec, deadline)
	move, score, ok := w.SearchDepth(depth)
	return move, score, w.GetPV(), w.Nodes() - before, ok
}

// searchRootSplit searches every root move on its own goroutine with its own
// worker and memo table. The first move in ordering with the best score wins.
func (e *Engine) searchRootSplit(root *board.Position, depth int, hint board.Move, rec SampleRecorder, deadline time.Time) (board.Move, int, []board.Move, uint64, bool) {
	moves := root.LegalMoves(root.Turn)
	SortMoves(moves, NewMoveOrderer().ScoreMoves(root, moves, 0, hint))

	n := moves.Len()
	scores := make([]int, n)
	pvs := make([][]board.Move, n)
	nodes := make([]uint64, n)
	tableMB := max(1, e.opts.MemoSizeMB/n)

	var g errgroup.Group
	g.SetLimit(e.opts.Threads)
	for i, m := range moves.Slice() {
		i, m := i, m
		g.Go(func() error {
			var tt *TranspositionTable
			if !e.opts.DisableMemo {
				tt = NewTranspositionTable(tableMB)
			}
			w := NewWorker(i+1, e.eval, tt, &e.stopFlag)
			child := root.Copy()
			child.Apply(m)
			w.prepare(child, board.NoMove, rec, deadline)
			scores[i] = -w.negamax(depth-1, 1, -Infinity, Infinity)
			nodes[i] = w.Nodes()
			log.Debug().
				Int("worker", w.ID()).
				Int("depth", depth).
				Str("move", m.String()).
				Int("score", scores[i]).
				Msg("root move")
			pvs[i] = append([]board.Move{m}, w.pv.moves[1][1:w.pv.length[1]]...)
			return nil
		})
	}
	_ = g.Wait()

	var total uint64
	for _, c := range nodes {
		total += c
	}
	if e.stopFlag.Load() {
		return board.NoMove, 0, nil, total, false
	}

	best := 0
	for i := 1; i < n; i++ {
		if scores[i] > scores[best] {
			best = i
		}
	}
	if rec != nil {
		rec.Record(root, moves.Get(best))
	}
	return moves.Get(best), scores[best], pvs[best], total, true
}

func (e *Engine) report(phase Phase, r Result, nodes uint64, tm *TimeManager) {
	log.Debug().
		Str("phase", phase.String()).
		Int("depth", r.Depth).
		Int("score", r.Score).
		Uint64("nodes", nodes).
		Str("move", r.BestMove.String()).
		Msg("iteration")

	if e.OnInfo == nil {
		return
	}
	info := SearchInfo{
		Phase: phase,
		Depth: r.Depth,
		Score: r.Score,
		Nodes: nodes,
		Time:  tm.Elapsed(),
		PV:    r.PV,
	}
	if e.tt != nil {
		info.HashFull = e.tt.HashFull()
	}
	e.OnInfo(info)
}

// Stop stops the current search.
func (e *Engine) Stop() {
	e.stopFlag.Store(true)
}

// Clear clears the memo table and ordering history.
func (e *Engine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.tt != nil {
		e.tt.Clear()
	}
	e.worker.orderer.Clear()
	e.phase.Store(int32(PhaseIdle))
}

// Perft counts leaf nodes at depth (for debugging move generation).
func (e *Engine) Perft(pos *board.Position, depth int) uint64 {
	if depth == 0 {
		return 1
	}

	moves := pos.LegalMoves(pos.Turn)
	if depth == 1 {
		return uint64(moves.Len())
	}

	var nodes uint64
	for i := 0; i < moves.Len(); i++ {
		h := pos.Apply(moves.Get(i))
		nodes += e.Perft(pos, depth-1)
		pos.Undo(h)
	}
	return nodes
}

// Evaluate returns the static evaluation of pos for the side to move.
func (e *Engine) Evaluate(pos *board.Position) int {
	return e.eval.Score(pos, pos.Turn)
}
