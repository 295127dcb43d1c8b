package maxflow

import "math"

// EdmondsKarp augments along BFS shortest paths. Slower than Dinic on image
// grids; kept as an independent reference.
type EdmondsKarp struct{}

func (EdmondsKarp) MinCut(g *Graph, source, sink int) (Cut, error) {
	if err := g.checkTerminals(source, sink); err != nil {
		return Cut{}, err
	}
	res := g.residual()
	parent := make([]int, g.Len())
	flow := 0.0
	for {
		for i := range parent {
			parent[i] = -1
		}
		parent[source] = -2
		queue := []int{source}
		for len(queue) > 0 && parent[sink] == -1 {
			u := queue[0]
			queue = queue[1:]
			for a := g.head[u]; a != -1; a = g.arcs[a].next {
				v := g.arcs[a].to
				if parent[v] == -1 && res[a] > 0 {
					parent[v] = a
					queue = append(queue, v)
				}
			}
		}
		if parent[sink] == -1 {
			break
		}

		bottleneck := math.Inf(1)
		for v := sink; v != source; v = g.arcs[parent[v]^1].to {
			bottleneck = min(bottleneck, res[parent[v]])
		}
		for v := sink; v != source; v = g.arcs[parent[v]^1].to {
			a := parent[v]
			res[a] -= bottleneck
			res[a^1] += bottleneck
		}
		flow += bottleneck
	}
	return Cut{Value: flow, SourceSide: g.sourceSide(source, res)}, nil
}
