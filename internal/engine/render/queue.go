package render

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/spin/internal/logger"
)

// Status is the per-entry draw state.
type Status int

const (
	// NeedsDraw entries run FirstTimeSetup before their next draw.
	NeedsDraw Status = iota
	// Drawn entries only have their transform applied and are drawn.
	Drawn
)

func (s Status) String() string {
	switch s {
	case NeedsDraw:
		return "NeedsDraw"
	case Drawn:
		return "Drawn"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Order selects which sequence an item is pushed onto.
type Order int

const (
	// Forward items draw in insertion order.
	Forward Order = iota
	// Reverse items draw after all forward items, newest first.
	Reverse
)

func (o Order) String() string {
	if o == Reverse {
		return "reverse"
	}
	return "forward"
}

type entry struct {
	status Status
	item   *Item
}

// Stats summarizes one SubmitAll pass.
type Stats struct {
	Drawn   int
	Failed  int
	Skipped int
	Setups  int
}

// Queue is the scene-lifetime list of drawables. Entries are never removed;
// disable the item to stop drawing it.
type Queue struct {
	forward []*entry
	reverse []*entry
}

// NewQueue returns an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// PushFront appends to the forward sequence in NeedsDraw state.
func (q *Queue) PushFront(it *Item) {
	q.forward = append(q.forward, &entry{status: NeedsDraw, item: it})
}

// PushBack appends to the reverse sequence in NeedsDraw state.
func (q *Queue) PushBack(it *Item) {
	q.reverse = append(q.reverse, &entry{status: NeedsDraw, item: it})
}

// Push appends to the sequence named by order.
func (q *Queue) Push(order Order, it *Item) {
	if order == Reverse {
		q.PushBack(it)
		return
	}
	q.PushFront(it)
}

// Len returns the number of entries in one sequence.
func (q *Queue) Len(order Order) int {
	if order == Reverse {
		return len(q.reverse)
	}
	return len(q.forward)
}

// Status returns the draw state of the first entry holding it.
func (q *Queue) Status(it *Item) (Status, bool) {
	if e := q.find(it); e != nil {
		return e.status, true
	}
	return NeedsDraw, false
}

// Invalidate forces the item back to NeedsDraw, e.g. after its drawable
// was rebuilt.
func (q *Queue) Invalidate(it *Item) bool {
	e := q.find(it)
	if e == nil {
		return false
	}
	e.status = NeedsDraw
	return true
}

func (q *Queue) find(it *Item) *entry {
	for _, e := range q.forward {
		if e.item == it {
			return e
		}
	}
	for _, e := range q.reverse {
		if e.item == it {
			return e
		}
	}
	return nil
}

// SubmitAll draws the forward sequence in order, then the reverse sequence
// newest first. A failing entry is logged and left in its current state; it
// never stops the remaining entries from drawing.
func (q *Queue) SubmitAll(b Backend) Stats {
	var stats Stats

	fb, framed := b.(FrameBackend)
	if framed {
		if err := fb.BeginFrame(); err != nil {
			logger.Error("render: begin frame failed", zap.Error(err))
		}
	}

	for i, e := range q.forward {
		q.submit(b, e, Forward, i, &stats)
	}
	for i := len(q.reverse) - 1; i >= 0; i-- {
		q.submit(b, q.reverse[i], Reverse, i, &stats)
	}

	if framed {
		if err := fb.EndFrame(); err != nil {
			logger.Error("render: end frame failed", zap.Error(err))
		}
	}
	return stats
}

func (q *Queue) submit(b Backend, e *entry, order Order, index int, stats *Stats) {
	it := e.item
	if !it.enabled {
		stats.Skipped++
		return
	}

	if e.status == NeedsDraw {
		stats.Setups++
		if err := b.FirstTimeSetup(it.drawable); err != nil {
			stats.Failed++
			logFailure("setup", it, order, index, err)
			return
		}
	}

	if err := b.Submit(it.drawable, it.WorldMatrix()); err != nil {
		stats.Failed++
		logFailure("submit", it, order, index, err)
		return
	}

	stats.Drawn++
	if !it.alwaysRedraw {
		e.status = Drawn
	}
}

func logFailure(stage string, it *Item, order Order, index int, err error) {
	logger.Error("render: draw failed",
		zap.String("stage", stage),
		zap.String("item", it.Name),
		zap.Stringer("queue", order),
		zap.Int("index", index),
		zap.Error(err))
}
