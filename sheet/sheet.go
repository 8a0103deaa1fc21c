// Package sheet is the reactive evaluation engine: it maintains the mapping
// from cell addresses to source strings, the mapping to computed values, the
// dependency graph between cells, and the set of cells whose values are
// stale. Mutations happen on the owning goroutine; concurrency exists only
// inside Evaluate, where one task per stale cell runs and tasks exchange
// values through the round context.
package sheet

import (
	log "github.com/sirupsen/logrus"

	"tally/cell"
	"tally/graph"
)

type Sheet struct {
	source  map[cell.Address]string
	values  map[cell.Address]cell.Value
	invalid map[cell.Address]struct{}
	deps    *graph.Graph
}

func New() *Sheet {
	return &Sheet{
		source:  make(map[cell.Address]string),
		values:  make(map[cell.Address]cell.Value),
		invalid: make(map[cell.Address]struct{}),
		deps:    graph.New(),
	}
}

// FromSources builds a sheet from a loaded source table. Every cell starts
// stale, so the first Evaluate computes the whole table.
func FromSources(sources map[cell.Address]string) *Sheet {
	s := New()
	for addr, src := range sources {
		s.source[addr] = src
		s.invalid[addr] = struct{}{}
	}
	return s
}

// SetSource stores the source string for a cell and marks the cell and
// everything downstream of it stale.
func (s *Sheet) SetSource(addr cell.Address, src string) {
	s.invalidate(addr)
	s.source[addr] = src
}

// ClearSource removes the cell's source. Downstream cells become stale, but
// the cleared cell itself produces no work on the next round.
func (s *Sheet) ClearSource(addr cell.Address) {
	s.invalidate(addr)
	delete(s.invalid, addr)
	delete(s.source, addr)
}

// Source returns the cell's source string, if any.
func (s *Sheet) Source(addr cell.Address) (string, bool) {
	src, ok := s.source[addr]
	return src, ok
}

// Sources returns a copy of the source table.
func (s *Sheet) Sources() map[cell.Address]string {
	out := make(map[cell.Address]string, len(s.source))
	for addr, src := range s.source {
		out[addr] = src
	}
	return out
}

// Value returns the computed value for a cell. It must only be called when
// no cells are stale; calling it between an edit and the next Evaluate is a
// programmer error and panics.
func (s *Sheet) Value(addr cell.Address) (cell.Value, bool) {
	if len(s.invalid) != 0 {
		panic("sheet: Value called while stale cells are pending evaluation")
	}
	v, ok := s.values[addr]
	return v, ok
}

// Dependencies returns the cells addr consulted during its last evaluation,
// including one that ended in an error.
func (s *Sheet) Dependencies(addr cell.Address) []cell.Address {
	return s.deps.DependsOn(addr)
}

// Dependents returns the cells that consulted addr during their last
// evaluation, including one that ended in an error.
func (s *Sheet) Dependents(addr cell.Address) []cell.Address {
	return s.deps.RequiredBy(addr)
}

// invalidate marks addr and its transitive dependents stale. The membership
// guard makes the recursion terminate on graphs that still contain cycles
// from a previous round.
func (s *Sheet) invalidate(addr cell.Address) {
	if _, ok := s.invalid[addr]; ok {
		return
	}
	delete(s.values, addr)
	s.invalid[addr] = struct{}{}
	s.deps.DropOutgoing(addr)
	for _, req := range s.deps.RequiredBy(addr) {
		s.invalidate(req)
	}
	log.Tracef("invalidated cell %s", addr)
}
