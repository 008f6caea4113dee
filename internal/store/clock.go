package store

import (
	"sync"
	"time"
)

var insertionClock struct {
	sync.Mutex
	last time.Time
}

// insertionTime returns a creation time in UTC, truncated to microseconds so that it survives a
// round trip through DATETIME(6), that is strictly after the time returned by the previous call.
// Records created within the same microsecond thus still list in insertion order.
func insertionTime() time.Time {
	insertionClock.Lock()
	defer insertionClock.Unlock()
	now := time.Now().UTC().Truncate(time.Microsecond)
	if !now.After(insertionClock.last) {
		now = insertionClock.last.Add(time.Microsecond)
	}
	insertionClock.last = now
	return now
}
