// Package maxflow computes exact minimum s-t cuts on capacitated directed
// graphs.
//
// Supported methods:
//   - Dinic (level graph + blocking flow), O(V²·E)
//   - Edmonds–Karp (BFS shortest augmenting path), O(V·E²)
//
// Both return the same cut value; the source side is the set of nodes
// reachable from the source in the final residual graph.
package maxflow

import (
	"math"

	"github.com/pkg/errors"
)

var (
	ErrNodeRange = errors.New("maxflow: node out of range")
	ErrCapacity  = errors.New("maxflow: capacity must be finite and non-negative")
	ErrTerminals = errors.New("maxflow: invalid source or sink")
)

type arc struct {
	to   int
	next int // next arc leaving the same node, -1 at the end
	cap  float64
}

// Graph stores arcs in pairs: arc i and arc i^1 are each other's reverse, so
// a residual update touches exactly two slots.
type Graph struct {
	head []int
	arcs []arc
}

func NewGraph(nodes int) *Graph {
	g := &Graph{head: make([]int, max(nodes, 0))}
	for i := range g.head {
		g.head[i] = -1
	}
	return g
}

// Len is the number of nodes.
func (g *Graph) Len() int {
	return len(g.head)
}

// Arcs is the number of forward edges added.
func (g *Graph) Arcs() int {
	return len(g.arcs) / 2
}

// AddEdge adds a directed edge from -> to. Parallel edges accumulate.
func (g *Graph) AddEdge(from, to int, capacity float64) error {
	n := len(g.head)
	if from < 0 || from >= n || to < 0 || to >= n {
		return errors.Wrapf(ErrNodeRange, "edge %d->%d in graph of %d nodes", from, to, n)
	}
	if math.IsNaN(capacity) || math.IsInf(capacity, 0) || capacity < 0 {
		return errors.Wrapf(ErrCapacity, "edge %d->%d capacity %v", from, to, capacity)
	}
	g.arcs = append(g.arcs, arc{to: to, next: g.head[from], cap: capacity})
	g.head[from] = len(g.arcs) - 1
	g.arcs = append(g.arcs, arc{to: from, next: g.head[to], cap: 0})
	g.head[to] = len(g.arcs) - 1
	return nil
}

// Cut is a minimum s-t cut.
type Cut struct {
	Value      float64
	SourceSide []bool // indexed by node
}

func (g *Graph) checkTerminals(source, sink int) error {
	n := len(g.head)
	if source < 0 || source >= n || sink < 0 || sink >= n || source == sink {
		return errors.Wrapf(ErrTerminals, "source %d sink %d in graph of %d nodes", source, sink, n)
	}
	return nil
}

func (g *Graph) residual() []float64 {
	res := make([]float64, len(g.arcs))
	for i := range g.arcs {
		res[i] = g.arcs[i].cap
	}
	return res
}

// sourceSide marks every node reachable from source through unsaturated arcs.
func (g *Graph) sourceSide(source int, res []float64) []bool {
	seen := make([]bool, len(g.head))
	seen[source] = true
	queue := []int{source}
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		for a := g.head[u]; a != -1; a = g.arcs[a].next {
			v := g.arcs[a].to
			if !seen[v] && res[a] > 0 {
				seen[v] = true
				queue = append(queue, v)
			}
		}
	}
	return seen
}
