package grabcut

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distmv"
)

const (
	// Added to every fitted covariance diagonal.
	covarianceFloor = 1e-6
	// Covariance of a component fitted from a single sample.
	singleSampleVariance = 1e-3
	// Jitter escalation steps tried when a regularised covariance still fails
	// Cholesky.
	maxJitterSteps = 12
)

var log2Pi3Half = 1.5 * math.Log(2*math.Pi)

// Component is one weighted 3-D Gaussian.
type Component struct {
	Weight float64
	Mean   [3]float64
	Cov    *mat.SymDense

	dist *distmv.Normal
	inv  [9]float64
	// -log(weight) + 0.5*log|Cov| + 1.5*log(2π)
	offset float64
}

// Mixture is an ordered list of components. A component's identity is its
// position: id k refers to Mixture[k-1].
type Mixture []Component

// newComponent factorises cov, adding escalating diagonal jitter when
// Cholesky fails. If no jitter helps, the component falls back to an
// isotropic singleSampleVariance covariance around mean.
func newComponent(weight float64, mean [3]float64, cov *mat.SymDense) Component {
	jitter := 0.0
	for range maxJitterSteps {
		sigma := cov
		if jitter > 0 {
			sigma = mat.NewSymDense(3, nil)
			sigma.CopySym(cov)
			for i := range 3 {
				sigma.SetSym(i, i, sigma.At(i, i)+jitter)
			}
		}
		if c, ok := factorComponent(weight, mean, sigma); ok {
			return c
		}
		jitter = max(jitter*10, covarianceFloor)
	}
	iso := mat.NewSymDense(3, nil)
	for i := range 3 {
		iso.SetSym(i, i, singleSampleVariance)
	}
	c, _ := factorComponent(weight, mean, iso)
	return c
}

func factorComponent(weight float64, mean [3]float64, sigma *mat.SymDense) (Component, bool) {
	var chol mat.Cholesky
	if !chol.Factorize(sigma) {
		return Component{}, false
	}
	dist, ok := distmv.NewNormal(mean[:], sigma, nil)
	if !ok {
		return Component{}, false
	}
	var inv mat.SymDense
	if err := chol.InverseTo(&inv); err != nil {
		return Component{}, false
	}
	c := Component{
		Weight: weight,
		Mean:   mean,
		Cov:    sigma,
		dist:   dist,
		offset: -math.Log(weight) + 0.5*chol.LogDet() + log2Pi3Half,
	}
	for i := range 3 {
		for j := range 3 {
			c.inv[i*3+j] = inv.At(i, j)
		}
	}
	return c, true
}

// LogProb is the natural-log Gaussian density of x, without the weight.
func (c *Component) LogProb(x []float64) float64 {
	return c.dist.LogProb(x)
}

// NLL is -log(density(x)) - log(weight).
func (c *Component) NLL(x []float64) float64 {
	d0 := x[0] - c.Mean[0]
	d1 := x[1] - c.Mean[1]
	d2 := x[2] - c.Mean[2]
	q := d0*(c.inv[0]*d0+c.inv[1]*d1+c.inv[2]*d2) +
		d1*(c.inv[3]*d0+c.inv[4]*d1+c.inv[5]*d2) +
		d2*(c.inv[6]*d0+c.inv[7]*d1+c.inv[8]*d2)
	return c.offset + 0.5*q
}

// best returns the 0-based index of the component with the lowest NLL and that
// NLL. Ties go to the lowest index.
func (m Mixture) best(x []float64) (int, float64) {
	bestK := 0
	bestNLL := math.Inf(1)
	for k := range m {
		if v := m[k].NLL(x); v < bestNLL {
			bestNLL = v
			bestK = k
		}
	}
	return bestK, bestNLL
}

// MinNLL is the minimum component NLL of x, the unary cost under m.
func (m Mixture) MinNLL(x []float64) float64 {
	_, v := m.best(x)
	return v
}

// Assign hard-assigns each sample to its most likely component and returns
// 1-based ids.
func (m Mixture) Assign(samples []float64) ([]int, error) {
	if len(m) == 0 {
		return nil, invalidf("empty mixture")
	}
	n, err := sampleCount(samples)
	if err != nil {
		return nil, err
	}
	ids := make([]int, n)
	for i := range n {
		k, _ := m.best(samples[i*3 : i*3+3])
		ids[i] = k + 1
	}
	return ids, nil
}

// Weights returns the component weights in order.
func (m Mixture) Weights() []float64 {
	out := make([]float64, len(m))
	for k := range m {
		out[k] = m[k].Weight
	}
	return out
}

// ============ FIT ============

// FitMixture fits one component per distinct id in ids, ordered by ascending
// id. samples holds 3N interleaved values.
func FitMixture(samples []float64, ids []int) (Mixture, error) {
	n, err := sampleCount(samples)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, invalidf("no samples to fit")
	}
	if len(ids) != n {
		return nil, invalidf("%d component ids for %d samples", len(ids), n)
	}
	if i := firstNonFinite(samples); i >= 0 {
		return nil, invalidf("non-finite sample %d", i/3)
	}

	groups := make(map[int][]int)
	for i, id := range ids {
		if id <= 0 {
			return nil, invalidf("component id %d at sample %d is not positive", id, i)
		}
		groups[id] = append(groups[id], i)
	}
	order := make([]int, 0, len(groups))
	for id := range groups {
		order = append(order, id)
	}
	slices.Sort(order)

	mix := make(Mixture, 0, len(order))
	for _, id := range order {
		members := groups[id]
		weight := float64(len(members)) / float64(n)
		mean, cov := sampleMoments(samples, members)
		mix = append(mix, newComponent(weight, mean, cov))
	}
	normalizeWeights(mix)
	return mix, nil
}

func sampleMoments(samples []float64, members []int) ([3]float64, *mat.SymDense) {
	var mean [3]float64
	if len(members) == 1 {
		off := members[0] * 3
		copy(mean[:], samples[off:off+3])
		cov := mat.NewSymDense(3, nil)
		for i := range 3 {
			cov.SetSym(i, i, singleSampleVariance)
		}
		return mean, cov
	}

	x := mat.NewDense(len(members), 3, nil)
	for r, i := range members {
		x.SetRow(r, samples[i*3:i*3+3])
	}
	col := make([]float64, len(members))
	for j := range 3 {
		mat.Col(col, j, x)
		mean[j] = stat.Mean(col, nil)
	}
	cov := mat.NewSymDense(3, nil)
	stat.CovarianceMatrix(cov, x, nil)
	for i := range 3 {
		cov.SetSym(i, i, cov.At(i, i)+covarianceFloor)
	}
	return mean, cov
}

// normalizeWeights removes rounding drift so weights sum to one.
func normalizeWeights(m Mixture) {
	w := m.Weights()
	sum := floats.Sum(w)
	if sum <= 0 {
		return
	}
	for k := range m {
		m[k].Weight /= sum
		m[k].offset = m[k].offset + math.Log(w[k]) - math.Log(m[k].Weight)
	}
}

func sampleCount(samples []float64) (int, error) {
	if len(samples)%3 != 0 {
		return 0, invalidf("sample slice length %d is not a multiple of 3", len(samples))
	}
	return len(samples) / 3, nil
}
