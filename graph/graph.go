// Package graph tracks which cells consulted which during their last
// evaluation, whether or not it succeeded. It keeps the two inverse adjacency maps of the
// engine (depends-on and required-by) consistent through every mutation.
// The graph itself is not synchronized; during an evaluation round the
// engine guards it with a single mutex.
package graph

import (
	mapset "github.com/deckarep/golang-set/v2"

	"tally/cell"
)

type Graph struct {
	dependsOn  map[cell.Address]mapset.Set[cell.Address]
	requiredBy map[cell.Address]mapset.Set[cell.Address]
}

func New() *Graph {
	return &Graph{
		dependsOn:  make(map[cell.Address]mapset.Set[cell.Address]),
		requiredBy: make(map[cell.Address]mapset.Set[cell.Address]),
	}
}

// AddEdge records that from consulted to. Both directions are updated.
func (g *Graph) AddEdge(from, to cell.Address) {
	deps, ok := g.dependsOn[from]
	if !ok {
		deps = mapset.NewThreadUnsafeSet[cell.Address]()
		g.dependsOn[from] = deps
	}
	deps.Add(to)

	reqs, ok := g.requiredBy[to]
	if !ok {
		reqs = mapset.NewThreadUnsafeSet[cell.Address]()
		g.requiredBy[to] = reqs
	}
	reqs.Add(from)
}

// DropOutgoing removes every depends-on edge leaving from, including its
// presence in the inverse entries of its former dependencies.
func (g *Graph) DropOutgoing(from cell.Address) {
	deps, ok := g.dependsOn[from]
	if !ok {
		return
	}
	deps.Each(func(dep cell.Address) bool {
		if reqs, ok := g.requiredBy[dep]; ok {
			reqs.Remove(from)
			if reqs.Cardinality() == 0 {
				delete(g.requiredBy, dep)
			}
		}
		return false
	})
	delete(g.dependsOn, from)
}

// DependsOn returns the cells whose values a consulted, in no particular
// order.
func (g *Graph) DependsOn(a cell.Address) []cell.Address {
	if deps, ok := g.dependsOn[a]; ok {
		return deps.ToSlice()
	}
	return nil
}

// RequiredBy returns the cells that consulted a, in no particular order.
func (g *Graph) RequiredBy(a cell.Address) []cell.Address {
	if reqs, ok := g.requiredBy[a]; ok {
		return reqs.ToSlice()
	}
	return nil
}
