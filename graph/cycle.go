package graph

import "tally/cell"

type color uint8

const (
	white color = iota // unseen
	gray               // on the current traversal stack
	black              // fully explored
)

// HasCycle reports whether origin is reachable from itself by following
// depends-on edges. The traversal is a depth-first walk over the graph as
// it stands at call time; reaching origin again while it is gray signals a
// cycle. Cycles that do not pass through origin are not reported.
func (g *Graph) HasCycle(origin cell.Address) bool {
	colors := make(map[cell.Address]color)

	var visit func(cell.Address) bool
	visit = func(a cell.Address) bool {
		switch colors[a] {
		case gray:
			return a == origin
		case black:
			return false
		}
		colors[a] = gray
		found := false
		if deps, ok := g.dependsOn[a]; ok {
			deps.Each(func(dep cell.Address) bool {
				if visit(dep) {
					found = true
				}
				return found
			})
		}
		if found {
			return true
		}
		colors[a] = black
		return false
	}

	return visit(origin)
}
