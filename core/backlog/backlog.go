// Package backlog holds the emergency calls waiting for a free ambulance.
package backlog

import (
	"container/heap"
	"sort"

	"github.com/kilianp07/ambulance-dispatch/core/model"
)

// Entry is a queued call. Its priority key is (ArrivalTick, ID) of the call;
// re-inserting an entry keeps that key.
type Entry struct {
	Call model.EmergencyCall
	// Attempts counts failed dispatch attempts while queued.
	Attempts int
}

type entries []Entry

func (e entries) Len() int           { return len(e) }
func (e entries) Less(i, j int) bool { return e[i].Call.Before(e[j].Call) }
func (e entries) Swap(i, j int)      { e[i], e[j] = e[j], e[i] }
func (e *entries) Push(x any)        { *e = append(*e, x.(Entry)) }
func (e *entries) Pop() any {
	old := *e
	n := len(old)
	it := old[n-1]
	old[n-1] = Entry{}
	*e = old[:n-1]
	return it
}

// Backlog is an unbounded min-priority queue of calls ordered by arrival tick
// then call identifier. It never drops entries.
type Backlog struct {
	q entries
}

// New returns an empty backlog.
func New() *Backlog {
	return &Backlog{}
}

// Push queues an entry.
func (b *Backlog) Push(e Entry) {
	e.Call.Status = model.CallQueued
	heap.Push(&b.q, e)
}

// Pop removes and returns the entry with the lowest key.
func (b *Backlog) Pop() (Entry, bool) {
	if len(b.q) == 0 {
		return Entry{}, false
	}
	return heap.Pop(&b.q).(Entry), true
}

// Peek returns the entry with the lowest key without removing it.
func (b *Backlog) Peek() (Entry, bool) {
	if len(b.q) == 0 {
		return Entry{}, false
	}
	return b.q[0], true
}

// Len returns the number of queued entries.
func (b *Backlog) Len() int { return len(b.q) }

// IsEmpty reports whether the backlog holds no entries.
func (b *Backlog) IsEmpty() bool { return len(b.q) == 0 }

// Calls returns the queued calls in drain order without modifying the
// backlog.
func (b *Backlog) Calls() []model.EmergencyCall {
	out := make([]model.EmergencyCall, 0, len(b.q))
	for _, e := range b.q {
		out = append(out, e.Call)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}
