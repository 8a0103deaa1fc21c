package sheet

import (
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"

	"tally/cell"
	"tally/graph"
	"tally/script"
)

// round is the shared scratchpad of one Evaluate call: the dependency graph
// under mutation behind its mutex, one write-once slot per stale cell, and a
// read-only view of the values committed by earlier rounds. All tasks hold
// the same round by reference; it never outlives the Evaluate call that
// built it.
type round struct {
	mu        sync.Mutex
	deps      *graph.Graph
	slots     map[cell.Address]*slot
	committed map[cell.Address]cell.Value

	abortMu sync.Mutex
	abort   any
}

// slot is a write-once container for one cell's forthcoming value. The
// owning task fills it exactly once; peers block on await until then. This
// is the result-channel discipline of an async task, with the channel close
// as the write barrier.
type slot struct {
	done chan struct{}
	mu   sync.Mutex
	set  bool
	val  cell.Value
}

func newSlot() *slot {
	return &slot{done: make(chan struct{})}
}

func (sl *slot) fill(v cell.Value) {
	sl.mu.Lock()
	if sl.set {
		sl.mu.Unlock()
		return
	}
	sl.val = v
	sl.set = true
	sl.mu.Unlock()
	close(sl.done)
}

func (sl *slot) await() cell.Value {
	<-sl.done
	return sl.val
}

// Evaluate recomputes every stale cell. It spawns one goroutine per stale
// address, lets them exchange values through the round, joins them all, and
// only then commits the produced values. A task panic aborts the round
// after the join without committing anything.
func (s *Sheet) Evaluate() {
	log.WithField("cells", len(s.invalid)).Info("starting cell evaluation")

	r := &round{
		deps:      s.deps,
		slots:     make(map[cell.Address]*slot, len(s.invalid)),
		committed: s.values,
	}
	s.deps = nil
	for addr := range s.invalid {
		r.slots[addr] = newSlot()
	}

	var wg sync.WaitGroup
	for addr := range s.invalid {
		src, ok := s.source[addr]
		if !ok {
			panic(fmt.Sprintf("sheet: stale cell %s has no source", addr))
		}
		wg.Add(1)
		go func(addr cell.Address, src string, sl *slot) {
			defer wg.Done()
			defer func() {
				if rec := recover(); rec != nil {
					r.noteAbort(rec)
					sl.fill(&cell.Error{Failure: cell.OtherFailure, Message: fmt.Sprintf("panic: %v", rec)})
				}
			}()
			sl.fill(computeCell(r, addr, src))
		}(addr, src, r.slots[addr])
	}
	wg.Wait()

	s.deps = r.deps
	if rec := r.aborted(); rec != nil {
		log.Errorf("cell evaluation aborted: %v", rec)
		panic(rec)
	}

	for addr, sl := range r.slots {
		s.values[addr] = sl.await()
	}
	s.invalid = make(map[cell.Address]struct{})
	log.Info("finished cell evaluation")
}

func (r *round) noteAbort(rec any) {
	r.abortMu.Lock()
	if r.abort == nil {
		r.abort = rec
	}
	r.abortMu.Unlock()
}

func (r *round) aborted() any {
	r.abortMu.Lock()
	defer r.abortMu.Unlock()
	return r.abort
}

// cellCtx is one task's view of the round: the round itself plus the
// address the task is computing. It implements script.Resolver.
type cellCtx struct {
	round  *round
	origin cell.Address
}

func (c *cellCtx) Origin() cell.Address {
	return c.origin
}

// Get resolves a peer cell's value for this round. It records the
// dependency edge, checks for a cycle while the graph is locked, and then
// either returns the committed value, awaits the peer's slot, or reports
// the cell empty.
func (c *cellCtx) Get(req cell.Address) (cell.Value, error) {
	log.Debugf("value request for %s by %s", req, c.origin)

	c.round.mu.Lock()
	c.round.deps.AddEdge(c.origin, req)
	cyclic := c.round.deps.HasCycle(c.origin)
	c.round.mu.Unlock()

	if cyclic {
		log.Warnf("dependency cycle starting at %s detected", c.origin)
		return nil, &script.CellError{
			Failure: cell.CycleFailure,
			Message: fmt.Sprintf("dependency cycle detected at %s", c.origin),
		}
	}

	if v, ok := c.round.committed[req]; ok {
		return v, nil
	}
	if sl, ok := c.round.slots[req]; ok {
		return sl.await(), nil
	}
	return &cell.Empty{}, nil
}

// computeCell produces the value for one cell source. A leading "=" makes
// the rest a formula; a leading backslash escapes a literal that would
// otherwise be parsed as one.
func computeCell(r *round, addr cell.Address, src string) cell.Value {
	switch {
	case len(src) > 0 && src[0] == '=':
		return script.Evaluate(src[1:], &cellCtx{round: r, origin: addr})
	case len(src) > 0 && src[0] == '\\':
		return &cell.Text{Value: src[1:]}
	default:
		return &cell.Text{Value: src}
	}
}
