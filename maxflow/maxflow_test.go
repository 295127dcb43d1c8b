package maxflow

import (
	"math"
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type solver interface {
	MinCut(g *Graph, source, sink int) (Cut, error)
}

var solvers = []struct {
	name string
	s    solver
}{
	{"dinic", Dinic{}},
	{"edmonds-karp", EdmondsKarp{}},
}

// cutCapacity sums forward capacities crossing from the source side.
func cutCapacity(g *Graph, side []bool) float64 {
	total := 0.0
	for i := 0; i < len(g.arcs); i += 2 {
		from := g.arcs[i^1].to
		to := g.arcs[i].to
		if side[from] && !side[to] {
			total += g.arcs[i].cap
		}
	}
	return total
}

func clrsGraph(t *testing.T) *Graph {
	t.Helper()
	g := NewGraph(6)
	edges := []struct {
		u, v int
		c    float64
	}{
		{0, 1, 16}, {0, 2, 13}, {1, 2, 10}, {2, 1, 4}, {1, 3, 12},
		{3, 2, 9}, {2, 4, 14}, {4, 3, 7}, {3, 5, 20}, {4, 5, 4},
	}
	for _, e := range edges {
		require.NoError(t, g.AddEdge(e.u, e.v, e.c))
	}
	return g
}

func TestMinCutTextbookGraph(t *testing.T) {
	for _, s := range solvers {
		t.Run(s.name, func(t *testing.T) {
			g := clrsGraph(t)
			cut, err := s.s.MinCut(g, 0, 5)
			require.NoError(t, err)
			assert.InDelta(t, 23, cut.Value, 1e-12)
			assert.Equal(t, []bool{true, true, true, false, true, false}, cut.SourceSide)
			assert.InDelta(t, cut.Value, cutCapacity(g, cut.SourceSide), 1e-12)
		})
	}
}

func TestMinCutGraphIsReusable(t *testing.T) {
	g := clrsGraph(t)
	a, err := Dinic{}.MinCut(g, 0, 5)
	require.NoError(t, err)
	b, err := Dinic{}.MinCut(g, 0, 5)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestMinCutDisconnected(t *testing.T) {
	g := NewGraph(4)
	require.NoError(t, g.AddEdge(0, 1, 5))
	require.NoError(t, g.AddEdge(2, 3, 5))
	for _, s := range solvers {
		cut, err := s.s.MinCut(g, 0, 3)
		require.NoError(t, err)
		assert.Equal(t, 0.0, cut.Value)
		assert.Equal(t, []bool{true, true, false, false}, cut.SourceSide)
	}
}

func TestMinCutSolversAgree(t *testing.T) {
	rng := rand.New(rand.NewSource(17))
	for trial := range 40 {
		n := 4 + rng.Intn(20)
		g := NewGraph(n)
		for range n * 3 {
			u, v := rng.Intn(n), rng.Intn(n)
			if u == v {
				continue
			}
			c := rng.Float64() * 10
			if rng.Intn(5) == 0 {
				c = 0
			}
			require.NoError(t, g.AddEdge(u, v, c))
		}
		d, err := Dinic{}.MinCut(g, 0, n-1)
		require.NoError(t, err)
		ek, err := EdmondsKarp{}.MinCut(g, 0, n-1)
		require.NoError(t, err)

		assert.InDelta(t, d.Value, ek.Value, 1e-9, "trial %d", trial)
		assert.InDelta(t, d.Value, cutCapacity(g, d.SourceSide), 1e-9, "trial %d", trial)
		assert.InDelta(t, ek.Value, cutCapacity(g, ek.SourceSide), 1e-9, "trial %d", trial)
		assert.True(t, d.SourceSide[0])
		assert.False(t, d.SourceSide[n-1])
	}
}

func TestMinCutGrid(t *testing.T) {
	// 4-connected grid with terminal links, the shape segmentation produces
	const w, h = 12, 9
	rng := rand.New(rand.NewSource(5))
	n := w * h
	g := NewGraph(n + 2)
	src, snk := n, n+1
	for y := range h {
		for x := range w {
			p := y*w + x
			require.NoError(t, g.AddEdge(src, p, rng.Float64()*4))
			require.NoError(t, g.AddEdge(p, snk, rng.Float64()*4))
			if x+1 < w {
				c := rng.Float64()
				require.NoError(t, g.AddEdge(p, p+1, c))
				require.NoError(t, g.AddEdge(p+1, p, c))
			}
			if y+1 < h {
				c := rng.Float64()
				require.NoError(t, g.AddEdge(p, p+w, c))
				require.NoError(t, g.AddEdge(p+w, p, c))
			}
		}
	}
	d, err := Dinic{}.MinCut(g, src, snk)
	require.NoError(t, err)
	ek, err := EdmondsKarp{}.MinCut(g, src, snk)
	require.NoError(t, err)
	assert.InDelta(t, d.Value, ek.Value, 1e-9)
	assert.InDelta(t, d.Value, cutCapacity(g, d.SourceSide), 1e-9)
}

func TestAddEdgeErrors(t *testing.T) {
	g := NewGraph(3)
	assert.True(t, errors.Is(g.AddEdge(0, 3, 1), ErrNodeRange))
	assert.True(t, errors.Is(g.AddEdge(-1, 2, 1), ErrNodeRange))
	assert.True(t, errors.Is(g.AddEdge(0, 1, -1), ErrCapacity))
	assert.True(t, errors.Is(g.AddEdge(0, 1, math.NaN()), ErrCapacity))
	assert.True(t, errors.Is(g.AddEdge(0, 1, math.Inf(1)), ErrCapacity))
	assert.Equal(t, 0, g.Arcs())
	require.NoError(t, g.AddEdge(0, 1, 0))
	assert.Equal(t, 1, g.Arcs())
	assert.Equal(t, 3, g.Len())
}

func TestMinCutTerminalErrors(t *testing.T) {
	g := NewGraph(3)
	for _, s := range solvers {
		_, err := s.s.MinCut(g, 1, 1)
		assert.True(t, errors.Is(err, ErrTerminals))
		_, err = s.s.MinCut(g, 0, 3)
		assert.True(t, errors.Is(err, ErrTerminals))
	}
}
