package engine

import (
	"errors"
	"time"

	"github.com/hailam/checkersplay/internal/board"
)

// Search constants
const (
	Infinity = 30000
	WinScore = 29000
	MaxPly   = 64
)

var (
	ErrInvalidDepth   = errors.New("search depth must be between 1 and 63")
	ErrInvalidBlunder = errors.New("blunder probability must be within [0, 1]")
	ErrNoLegalMoves   = errors.New("side to move has no legal moves")
)

// Phase is the stage of a search call.
type Phase int32

const (
	PhaseIdle      Phase = iota
	PhaseIterating       // shallow passes that only seed move ordering
	PhaseFinal           // authoritative pass at the target depth
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseIterating:
		return "iterating"
	case PhaseFinal:
		return "final"
	case PhaseDone:
		return "done"
	default:
		return "idle"
	}
}

// SearchInfo contains information about the current search.
type SearchInfo struct {
	Phase    Phase
	Depth    int
	Score    int
	Nodes    uint64
	Time     time.Duration
	PV       []board.Move
	HashFull int // Permille of hash table used
}

// SearchLimits specifies constraints on the search.
type SearchLimits struct {
	Depth    int           // Target depth, required
	Blunder  float64       // Probability of replacing the best move
	MoveTime time.Duration // Deadline for iterating (0 = no limit)
}

// Result is the outcome of one search call.
type Result struct {
	Move      board.Move // Move to play, possibly a blunder
	BestMove  board.Move // Best move found by the search
	Score     int        // Score of BestMove for the side to move
	Depth     int        // Deepest completed pass
	Nodes     uint64
	PV        []board.Move
	Blundered bool
	Time      time.Duration
}

// SampleRecorder receives (position, best move) pairs from exact nodes of
// the final pass. Implementations must be safe for concurrent use.
type SampleRecorder interface {
	Record(pos *board.Position, m board.Move) bool
}

// PVTable stores the principal variation.
type PVTable struct {
	length [MaxPly]int
	moves  [MaxPly][MaxPly]board.Move
}
