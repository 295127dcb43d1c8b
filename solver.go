package grabcut

import (
	"github.com/pkg/errors"

	"github.com/setanarut/grabcut/maxflow"
)

// flowNetwork maps Unknown pixels to graph nodes. Fixed Background pixels get
// no node; their pairwise costs fold into the sink capacity of the Unknown
// neighbour.
type flowNetwork struct {
	graph  *maxflow.Graph
	node   []int // pixel -> node, -1 for fixed pixels
	pixels []int // node -> pixel
	source int
	sink   int
}

func buildFlowNetwork(m *EnergyModel) (*flowNetwork, error) {
	n := m.Len()
	if len(m.Trimap.Unknown) != n {
		return nil, errors.Wrapf(ErrGraphConstruction, "trimap has %d pixels, model has %d", len(m.Trimap.Unknown), n)
	}
	net := &flowNetwork{node: make([]int, n)}
	for i, u := range m.Trimap.Unknown {
		net.node[i] = -1
		if u {
			net.node[i] = len(net.pixels)
			net.pixels = append(net.pixels, i)
		}
	}
	nodes := len(net.pixels)
	net.source = nodes
	net.sink = nodes + 1
	net.graph = maxflow.NewGraph(nodes + 2)

	toSink := make([]float64, nodes)
	for _, e := range m.Pairwise.Edges {
		if e.P < 0 || e.P >= n || e.Q < 0 || e.Q >= n {
			return nil, errors.Wrapf(ErrGraphConstruction, "edge (%d,%d) outside %d pixels", e.P, e.Q, n)
		}
		np, nq := net.node[e.P], net.node[e.Q]
		switch {
		case np >= 0 && nq >= 0:
			if e.Weight == 0 {
				continue
			}
			if err := net.graph.AddEdge(np, nq, e.Weight); err != nil {
				return nil, errors.Wrap(ErrGraphConstruction, err.Error())
			}
			if err := net.graph.AddEdge(nq, np, e.Weight); err != nil {
				return nil, errors.Wrap(ErrGraphConstruction, err.Error())
			}
		case np >= 0:
			toSink[np] += e.Weight
		case nq >= 0:
			toSink[nq] += e.Weight
		}
	}

	for v, p := range net.pixels {
		fg := m.Unary[Foreground][p]
		bg := m.Unary[Background][p]
		shift := min(fg, bg)
		if c := bg - shift; c > 0 {
			if err := net.graph.AddEdge(net.source, v, c); err != nil {
				return nil, errors.Wrap(ErrGraphConstruction, err.Error())
			}
		}
		if c := fg - shift + toSink[v]; c > 0 {
			if err := net.graph.AddEdge(v, net.sink, c); err != nil {
				return nil, errors.Wrap(ErrGraphConstruction, err.Error())
			}
		}
	}
	return net, nil
}

// Solve finds the minimum-energy labeling of m with oracle and returns it with
// its energy. Only Unknown pixels can become Foreground.
func Solve(m *EnergyModel, oracle MinCutOracle) (Labeling, float64, error) {
	net, err := buildFlowNetwork(m)
	if err != nil {
		return nil, 0, err
	}
	cut, err := oracle.MinCut(net.graph, net.source, net.sink)
	if err != nil {
		return nil, 0, errors.Wrap(ErrSolver, err.Error())
	}
	if len(cut.SourceSide) != net.graph.Len() {
		return nil, 0, errors.Wrapf(ErrSolver, "cut covers %d nodes, graph has %d", len(cut.SourceSide), net.graph.Len())
	}
	if !cut.SourceSide[net.source] || cut.SourceSide[net.sink] {
		return nil, 0, errors.Wrap(ErrSolver, "cut does not separate source and sink")
	}

	labels := make(Labeling, m.Len())
	for v, p := range net.pixels {
		if cut.SourceSide[v] && m.Trimap.Unknown[p] {
			labels[p] = Foreground
		}
	}
	energy, err := m.Energy(labels)
	if err != nil {
		return nil, 0, err
	}
	return labels, energy, nil
}
