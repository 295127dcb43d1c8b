package grabcut

import (
	"math"

	"github.com/pkg/errors"
)

// Floor on the mean squared neighbour difference, keeps beta finite on
// uniform images.
const minMeanContrast = 1e-12

// Edge is a right or down 4-neighbour pair. Weight is the cost paid when the
// two pixels take different labels; agreeing labels cost nothing.
type Edge struct {
	P, Q   int
	Weight float64
}

// Cost returns the pairwise cost for the label pair (lp, lq).
func (e Edge) Cost(lp, lq Label) float64 {
	if lp == lq {
		return 0
	}
	return e.Weight
}

// Pairwise is the contrast-sensitive smoothness table. It depends only on the
// image and gamma, so it is built once per run.
type Pairwise struct {
	Gamma float64
	Beta  float64
	Edges []Edge
}

var (
	dx2 = []int{1, 0}
	dy2 = []int{0, 1}
)

func colorDist2(a, b []float64) float64 {
	d0 := a[0] - b[0]
	d1 := a[1] - b[1]
	d2 := a[2] - b[2]
	return d0*d0 + d1*d1 + d2*d2
}

// Beta computes 1 / (2 * mean squared colour difference) over every right and
// down neighbour pair of g.
func Beta(g *Grid) float64 {
	sum := 0.0
	count := 0
	for y := range g.H {
		for x := range g.W {
			p := labelOffset(g.W, x, y)
			for k := range 2 {
				nx, ny := x+dx2[k], y+dy2[k]
				if nx >= g.W || ny >= g.H {
					continue
				}
				sum += colorDist2(g.At(p), g.At(labelOffset(g.W, nx, ny)))
				count++
			}
		}
	}
	mean := minMeanContrast
	if count > 0 {
		mean = max(sum/float64(count), minMeanContrast)
	}
	return 1.0 / (2.0 * mean)
}

// NewPairwise builds the edge table for g.
func NewPairwise(g *Grid, gamma float64) (*Pairwise, error) {
	if math.IsNaN(gamma) || math.IsInf(gamma, 0) || gamma <= 0 {
		return nil, invalidf("gamma must be positive and finite, got %v", gamma)
	}
	beta := Beta(g)
	edges := make([]Edge, 0, 2*g.Len())
	for y := range g.H {
		for x := range g.W {
			p := labelOffset(g.W, x, y)
			for k := range 2 {
				nx, ny := x+dx2[k], y+dy2[k]
				if nx >= g.W || ny >= g.H {
					continue
				}
				q := labelOffset(g.W, nx, ny)
				edges = append(edges, Edge{
					P:      p,
					Q:      q,
					Weight: gamma * math.Exp(-beta*colorDist2(g.At(p), g.At(q))),
				})
			}
		}
	}
	return &Pairwise{Gamma: gamma, Beta: beta, Edges: edges}, nil
}

// ============ ENERGY MODEL ============

// EnergyModel is the full energy for one iteration: unary costs under the
// current mixtures plus the shared pairwise table.
type EnergyModel struct {
	Unary    [2][]float64 // Unary[label][pixel]
	Pairwise *Pairwise
	Trimap   *Trimap
}

// NewEnergyModel evaluates the unary table of every pixel under fg and bg.
func NewEnergyModel(g *Grid, t *Trimap, fg, bg Mixture, pw *Pairwise, workers int) (*EnergyModel, error) {
	if len(fg) == 0 || len(bg) == 0 {
		return nil, invalidf("energy model needs non-empty mixtures")
	}
	if t.W != g.W || t.H != g.H {
		return nil, invalidf("trimap %dx%d does not match grid %dx%d", t.W, t.H, g.W, g.H)
	}
	n := g.Len()
	m := &EnergyModel{
		Unary:    [2][]float64{make([]float64, n), make([]float64, n)},
		Pairwise: pw,
		Trimap:   t,
	}
	err := parallelFor(n, workers, func(lo, hi int) error {
		for i := lo; i < hi; i++ {
			x := g.At(i)
			m.Unary[Foreground][i] = fg.MinNLL(x)
			m.Unary[Background][i] = bg.MinNLL(x)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Len is the number of pixels the model covers.
func (m *EnergyModel) Len() int {
	return len(m.Unary[Foreground])
}

// Energy is the total unary plus pairwise cost of labels under m.
func (m *EnergyModel) Energy(labels Labeling) (float64, error) {
	n := m.Len()
	if len(labels) != n {
		return 0, invalidf("labeling has %d entries, model has %d pixels", len(labels), n)
	}
	e := 0.0
	for i, l := range labels {
		e += m.Unary[l][i]
	}
	for _, edge := range m.Pairwise.Edges {
		if edge.P < 0 || edge.P >= n || edge.Q < 0 || edge.Q >= n {
			return 0, errors.Wrapf(ErrGraphConstruction, "edge (%d,%d) outside %d pixels", edge.P, edge.Q, n)
		}
		e += edge.Cost(labels[edge.P], labels[edge.Q])
	}
	return e, nil
}
