package engine

import (
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/hailam/checkersplay/internal/board"
)

// TTFlag tells how a stored score bounds the true value.
type TTFlag uint8

const (
	TTExact      TTFlag = iota // Exact score
	TTLowerBound               // Failed high (beta cutoff)
	TTUpperBound               // Failed low
)

const (
	ttShardCount = 256 // power of 2
	ttShardMask  = ttShardCount - 1
	ttWays       = 2 // entries per bucket
)

// TTEntry is one memoized search result.
type TTEntry struct {
	Key      board.Key  // Full position key, compared on probe
	BestMove board.Move // Best move found, used as an ordering hint
	Score    int16      // Score (bounded by flag), ply-adjusted
	Depth    int8       // Remaining depth the score was searched to
	Flag     TTFlag
	Age      uint8 // Search generation that wrote the entry
}

func (e *TTEntry) empty() bool {
	return e.Depth == 0
}

type ttBucket [ttWays]TTEntry

// TranspositionTable memoizes search results by canonical position. Each
// key hashes to a bucket of two entries; buckets are guarded by sharded
// locks so one table may be shared between goroutines.
type TranspositionTable struct {
	buckets []ttBucket
	shards  [ttShardCount]sync.RWMutex
	mask    uint64
	age     atomic.Uint32

	hits   atomic.Uint64
	probes atomic.Uint64
}

// NewTranspositionTable creates a table using about sizeMB megabytes.
func NewTranspositionTable(sizeMB int) *TranspositionTable {
	if sizeMB < 1 {
		sizeMB = 1
	}
	bucketSize := uint64(unsafe.Sizeof(ttBucket{}))
	n := roundDownToPowerOf2((uint64(sizeMB) << 20) / bucketSize)

	return &TranspositionTable{
		buckets: make([]ttBucket, n),
		mask:    n - 1,
	}
}

// roundDownToPowerOf2 rounds n down to the nearest power of 2.
func roundDownToPowerOf2(n uint64) uint64 {
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return (n + 1) >> 1
}

func (tt *TranspositionTable) bucketIndex(key board.Key) uint64 {
	return key.Hash() & tt.mask
}

func (tt *TranspositionTable) lock(idx uint64) *sync.RWMutex {
	return &tt.shards[idx&ttShardMask]
}

// Probe returns the entry stored for key, if any.
func (tt *TranspositionTable) Probe(key board.Key) (TTEntry, bool) {
	tt.probes.Add(1)

	idx := tt.bucketIndex(key)
	mu := tt.lock(idx)
	mu.RLock()
	b := tt.buckets[idx]
	mu.RUnlock()

	for i := range b {
		if !b[i].empty() && b[i].Key == key {
			tt.hits.Add(1)
			return b[i], true
		}
	}
	return TTEntry{}, false
}

// Lookup applies the reuse rule for a node with depth plies left at the
// given ply. hint is the stored best move whenever the key is present. The
// stored score ends the node only if it was searched at least depth deep
// and its bound settles the (alpha, beta) window.
func (tt *TranspositionTable) Lookup(key board.Key, depth, ply, alpha, beta int) (hint board.Move, score int, cutoff bool) {
	entry, ok := tt.Probe(key)
	if !ok {
		return board.NoMove, 0, false
	}
	if int(entry.Depth) < depth {
		return entry.BestMove, 0, false
	}

	score = AdjustScoreFromTT(int(entry.Score), ply)
	switch entry.Flag {
	case TTExact:
		cutoff = true
	case TTLowerBound:
		cutoff = score >= beta
	case TTUpperBound:
		cutoff = score <= alpha
	}
	return entry.BestMove, score, cutoff
}

// Store saves a search result. A result for a key already in the bucket
// replaces it unless the stored one is deeper and from the current search.
// Otherwise the result goes to an empty or stale slot, or evicts the
// shallower entry.
func (tt *TranspositionTable) Store(key board.Key, depth int, score int, flag TTFlag, bestMove board.Move) {
	idx := tt.bucketIndex(key)
	age := uint8(tt.age.Load())

	mu := tt.lock(idx)
	mu.Lock()
	defer mu.Unlock()

	b := &tt.buckets[idx]
	slot := -1
	for i := range b {
		if !b[i].empty() && b[i].Key == key {
			if b[i].Age == age && int(b[i].Depth) > depth {
				return
			}
			slot = i
			break
		}
	}
	if slot < 0 {
		slot = 0
		for i := range b {
			if b[i].empty() || b[i].Age != age {
				slot = i
				break
			}
			if b[i].Depth < b[slot].Depth {
				slot = i
			}
		}
	}

	b[slot] = TTEntry{
		Key:      key,
		BestMove: bestMove,
		Score:    int16(score),
		Depth:    int8(depth),
		Flag:     flag,
		Age:      age,
	}
}

// Save stores a node's result, deriving the bound from the window the node
// was searched with and making win scores relative to the node.
func (tt *TranspositionTable) Save(key board.Key, depth, ply, score, alphaOrig, beta int, bestMove board.Move) TTFlag {
	flag := boundFlag(score, alphaOrig, beta)
	tt.Store(key, depth, AdjustScoreToTT(score, ply), flag, bestMove)
	return flag
}

// boundFlag classifies a fail-soft score against its search window.
func boundFlag(score, alphaOrig, beta int) TTFlag {
	switch {
	case score >= beta:
		return TTLowerBound
	case score <= alphaOrig:
		return TTUpperBound
	}
	return TTExact
}

// NewSearch starts a new generation; older entries become replaceable.
func (tt *TranspositionTable) NewSearch() {
	tt.age.Add(1)
}

// Clear empties the table and resets its statistics.
func (tt *TranspositionTable) Clear() {
	for i := range tt.shards {
		tt.shards[i].Lock()
	}
	clear(tt.buckets)
	for i := range tt.shards {
		tt.shards[i].Unlock()
	}
	tt.age.Store(0)
	tt.hits.Store(0)
	tt.probes.Store(0)
}

// HashFull returns the permille of sampled entries written by the current search.
func (tt *TranspositionTable) HashFull() int {
	sample := uint64(500)
	if sample > uint64(len(tt.buckets)) {
		sample = uint64(len(tt.buckets))
	}

	used := 0
	age := uint8(tt.age.Load())
	for i := uint64(0); i < sample; i++ {
		mu := tt.lock(i)
		mu.RLock()
		for _, e := range tt.buckets[i] {
			if !e.empty() && e.Age == age {
				used++
			}
		}
		mu.RUnlock()
	}
	return used * 1000 / int(sample*ttWays)
}

// HitRate returns the share of probes that found their key, in percent.
func (tt *TranspositionTable) HitRate() float64 {
	probes := tt.probes.Load()
	if probes == 0 {
		return 0
	}
	return float64(tt.hits.Load()) / float64(probes) * 100
}

// Size returns the number of entries in the table.
func (tt *TranspositionTable) Size() uint64 {
	return uint64(len(tt.buckets)) * ttWays
}

// AdjustScoreFromTT converts a stored win score back to distance from the
// current node.
func AdjustScoreFromTT(score int, ply int) int {
	if score > WinScore-MaxPly {
		return score - ply
	}
	if score < -WinScore+MaxPly {
		return score + ply
	}
	return score
}

// AdjustScoreToTT makes win scores relative to the stored node.
func AdjustScoreToTT(score int, ply int) int {
	if score > WinScore-MaxPly {
		return score + ply
	}
	if score < -WinScore+MaxPly {
		return score - ply
	}
	return score
}
