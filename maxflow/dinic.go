package maxflow

import "math"

// Dinic is the default solver.
type Dinic struct{}

type dinicState struct {
	g     *Graph
	res   []float64
	level []int
	iter  []int
	sink  int
}

func (Dinic) MinCut(g *Graph, source, sink int) (Cut, error) {
	if err := g.checkTerminals(source, sink); err != nil {
		return Cut{}, err
	}
	s := &dinicState{
		g:     g,
		res:   g.residual(),
		level: make([]int, g.Len()),
		iter:  make([]int, g.Len()),
		sink:  sink,
	}
	flow := 0.0
	for s.bfs(source) {
		copy(s.iter, g.head)
		for {
			f := s.dfs(source, math.Inf(1))
			if f <= 0 {
				break
			}
			flow += f
		}
	}
	return Cut{Value: flow, SourceSide: g.sourceSide(source, s.res)}, nil
}

func (s *dinicState) bfs(source int) bool {
	for i := range s.level {
		s.level[i] = -1
	}
	s.level[source] = 0
	queue := []int{source}
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		for a := s.g.head[u]; a != -1; a = s.g.arcs[a].next {
			v := s.g.arcs[a].to
			if s.level[v] < 0 && s.res[a] > 0 {
				s.level[v] = s.level[u] + 1
				queue = append(queue, v)
			}
		}
	}
	return s.level[s.sink] >= 0
}

func (s *dinicState) dfs(u int, f float64) float64 {
	if u == s.sink {
		return f
	}
	for ; s.iter[u] != -1; s.iter[u] = s.g.arcs[s.iter[u]].next {
		a := s.iter[u]
		v := s.g.arcs[a].to
		if s.res[a] <= 0 || s.level[v] != s.level[u]+1 {
			continue
		}
		pushed := s.dfs(v, min(f, s.res[a]))
		if pushed > 0 {
			s.res[a] -= pushed
			s.res[a^1] += pushed
			return pushed
		}
	}
	return 0
}
