package diag

import (
	"fmt"
	"sync"
	"time"

	"github.com/gammazero/deque"
)

type Kind uint8

const (
	Edge Kind = iota
	Interrupt
	Observed
	Reaction
)

func (k Kind) String() string {
	switch k {
	case Edge:
		return "edge"
	case Interrupt:
		return "interrupt"
	case Observed:
		return "observed"
	case Reaction:
		return "reaction"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

type Record struct {
	Seq  uint64
	Kind Kind
	At   time.Time
}

// Recorder accepts trace records. Implementations must be safe to call from
// an interrupt handler: no blocking on anything the foreground may hold.
type Recorder interface {
	Record(kind Kind)
}

// Trace keeps the most recent records up to a fixed depth along with
// per-kind totals.
type Trace struct {
	mu     sync.Mutex
	depth  int
	seq    uint64
	now    func() time.Time
	recent deque.Deque[Record]
	counts map[Kind]uint64
}

func NewTrace(depth int) *Trace {
	if depth <= 0 {
		depth = 64
	}
	return &Trace{
		depth:  depth,
		now:    time.Now,
		counts: map[Kind]uint64{},
	}
}

func (t *Trace) Record(kind Kind) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seq++
	t.counts[kind]++
	t.recent.PushBack(Record{Seq: t.seq, Kind: kind, At: t.now()})
	for t.recent.Len() > t.depth {
		t.recent.PopFront()
	}
}

// Recent returns the retained records, oldest first.
func (t *Trace) Recent() []Record {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Record, t.recent.Len())
	for i := range out {
		out[i] = t.recent.At(i)
	}
	return out
}

func (t *Trace) Count(kind Kind) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.counts[kind]
}

// Nop discards records.
type Nop struct{}

func (Nop) Record(Kind) {}
