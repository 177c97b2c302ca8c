package ticketid

import (
	"strconv"
	"strings"
	"testing"
	"time"
)

func TestNextIsStrictlyIncreasingOnFrozenClock(t *testing.T) {
	frozen := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	gen := NewWithClock(func() time.Time { return frozen })

	seen := map[string]bool{}
	var prev int64
	for i := 0; i < 1000; i++ {
		id, _ := gen.Next()
		if !strings.HasPrefix(id, "T") {
			t.Fatalf("id %q missing T prefix", id)
		}
		if seen[id] {
			t.Fatalf("duplicate id %q at iteration %d", id, i)
		}
		seen[id] = true
		n, err := strconv.ParseInt(strings.TrimPrefix(id, "T"), 10, 64)
		if err != nil {
			t.Fatalf("id %q not numeric: %v", id, err)
		}
		if i > 0 && n <= prev {
			t.Fatalf("id %d not greater than previous %d", n, prev)
		}
		prev = n
	}
}

func TestNextUsesClockMillis(t *testing.T) {
	at := time.UnixMilli(1767225600123)
	gen := NewWithClock(func() time.Time { return at })

	id, created := gen.Next()
	if id != "T1767225600123" {
		t.Fatalf("got %q, want T1767225600123", id)
	}
	if !created.Equal(at) {
		t.Fatalf("created = %v, want %v", created, at)
	}
}

func TestNextSurvivesClockGoingBackwards(t *testing.T) {
	times := []time.Time{time.UnixMilli(5000), time.UnixMilli(4000), time.UnixMilli(6000)}
	i := 0
	gen := NewWithClock(func() time.Time {
		ts := times[i]
		i++
		return ts
	})

	want := []string{"T5000", "T5001", "T6000"}
	for _, w := range want {
		if got, _ := gen.Next(); got != w {
			t.Fatalf("got %q, want %q", got, w)
		}
	}
}
