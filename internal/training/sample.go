// Package training collects labelled positions discovered during search for
// an external trainer.
package training

import (
	"sync"

	"github.com/hailam/checkersplay/internal/board"
)

// Sample is one labelled position: the flattened board and a one-hot label
// marking the destination cell of the chosen move.
type Sample struct {
	Key   board.Key  `json:"key"`
	Board []float32  `json:"board"`
	Label []float32  `json:"label"`
	Turn  board.Side `json:"turn"`
}

// NewSample builds the sample for playing m in pos.
func NewSample(pos *board.Position, m board.Move) Sample {
	label := make([]float32, pos.Geometry().Cells)
	label[m.To] = 1
	return Sample{
		Key:   pos.Key(),
		Board: pos.Flatten(),
		Label: label,
		Turn:  pos.Turn,
	}
}

// Destination returns the labelled cell, or -1 for an empty label.
func (s Sample) Destination() int {
	for i, v := range s.Label {
		if v == 1 {
			return i
		}
	}
	return -1
}

// Collector accumulates unique samples. It is safe for concurrent use.
type Collector struct {
	mu       sync.Mutex
	seen     map[board.Key]struct{}
	samples  []Sample
	capacity int
}

// NewCollector creates a collector. A capacity of 0 means unbounded.
func NewCollector(capacity int) *Collector {
	return &Collector{
		seen:     make(map[board.Key]struct{}),
		capacity: capacity,
	}
}

// Record adds the sample for (pos, m) unless the same board was already
// collected or the collector is full. It reports whether a sample was added.
func (c *Collector) Record(pos *board.Position, m board.Move) bool {
	if m == board.NoMove {
		return false
	}
	key := pos.Key()

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, dup := c.seen[key]; dup {
		return false
	}
	if c.capacity > 0 && len(c.samples) >= c.capacity {
		return false
	}
	c.seen[key] = struct{}{}
	c.samples = append(c.samples, NewSample(pos, m))
	return true
}

// Add inserts an already built sample, with the same dedupe and capacity
// rules as Record.
func (c *Collector) Add(s Sample) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, dup := c.seen[s.Key]; dup {
		return false
	}
	if c.capacity > 0 && len(c.samples) >= c.capacity {
		return false
	}
	c.seen[s.Key] = struct{}{}
	c.samples = append(c.samples, s)
	return true
}

// Len returns the number of collected samples.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.samples)
}

// Full reports whether the capacity has been reached.
func (c *Collector) Full() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.capacity > 0 && len(c.samples) >= c.capacity
}

// Samples returns a deep copy of the collected samples.
func (c *Collector) Samples() []Sample {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Sample, len(c.samples))
	for i, s := range c.samples {
		s.Board = append([]float32(nil), s.Board...)
		s.Label = append([]float32(nil), s.Label...)
		out[i] = s
	}
	return out
}

// Drain hands the collected samples to the caller and empties the collector.
func (c *Collector) Drain() []Sample {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.samples
	c.samples = nil
	c.seen = make(map[board.Key]struct{})
	return out
}
