// Package ticketid issues ledger ticket identifiers of the form T<unix-millis>.
package ticketid

import (
	"strconv"
	"sync"
	"time"
)

// Generator hands out strictly increasing ticket IDs. When the clock has not
// moved past the last issued millisecond, the next millisecond is used
// instead, so IDs stay unique under bursts and clock steps backwards.
type Generator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// New returns a generator backed by the wall clock.
func New() *Generator {
	return &Generator{now: time.Now}
}

// NewWithClock returns a generator reading time from now.
func NewWithClock(now func() time.Time) *Generator {
	return &Generator{now: now}
}

// Next returns the next ID together with the instant it was derived from.
func (g *Generator) Next() (string, time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()

	at := g.now()
	ms := at.UnixMilli()
	if ms <= g.last {
		ms = g.last + 1
	}
	g.last = ms
	return "T" + strconv.FormatInt(ms, 10), at
}
