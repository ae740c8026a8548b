package engine

import (
	"time"
)

// TimeManager tracks the optional per-move deadline.
type TimeManager struct {
	moveTime  time.Duration // 0 = no limit
	startTime time.Time
}

// NewTimeManager creates a new time manager.
func NewTimeManager() *TimeManager {
	return &TimeManager{}
}

// Init starts the clock for a new search.
func (tm *TimeManager) Init(moveTime time.Duration) {
	tm.startTime = time.Now()
	tm.moveTime = moveTime
}

// Elapsed returns the time elapsed since search started.
func (tm *TimeManager) Elapsed() time.Duration {
	return time.Since(tm.startTime)
}

// Limited reports whether a deadline applies.
func (tm *TimeManager) Limited() bool {
	return tm.moveTime > 0
}

// Deadline returns the absolute deadline, or the zero time when unlimited.
func (tm *TimeManager) Deadline() time.Time {
	if !tm.Limited() {
		return time.Time{}
	}
	return tm.startTime.Add(tm.moveTime)
}

// ShouldStartIteration reports whether another pass is worth starting. Once
// more than half of the budget is spent the next pass would not finish.
func (tm *TimeManager) ShouldStartIteration() bool {
	if !tm.Limited() {
		return true
	}
	elapsed := tm.Elapsed()
	return tm.moveTime-elapsed >= elapsed
}
