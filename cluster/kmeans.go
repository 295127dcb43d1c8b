package cluster

import (
	"math"

	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
	"github.com/pkg/errors"
)

// KMeans delegates to muesli/kmeans. Its centers start at random points of
// the unit cube, so samples are min-max scaled per channel first. Results are
// not reproducible across runs; use Seeded where determinism matters.
type KMeans struct {
	// Fraction of points that may still change cluster when iteration stops.
	// Ideal start: 0.01.
	DeltaThreshold float64
}

func NewKMeans() *KMeans {
	return &KMeans{DeltaThreshold: 0.01}
}

func (m *KMeans) Cluster(samples []float64, k int) ([]int, error) {
	if err := checkK(k); err != nil {
		return nil, err
	}
	obs, err := observations(samples)
	if err != nil {
		return nil, err
	}
	// kmeans spins forever looking for a donor point when every cluster is a
	// singleton, so never ask for more clusters than distinct colours.
	k = min(k, distinct(samples, k))
	if k == 1 {
		return constantIDs(len(obs)), nil
	}

	scaled := unitScale(obs)
	km, err := kmeans.NewWithOptions(m.DeltaThreshold, nil)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidInput, err.Error())
	}
	cc, err := km.Partition(scaled, k)
	if err != nil {
		return nil, errors.Wrap(err, "kmeans partition")
	}
	ids := make([]int, len(scaled))
	for i, o := range scaled {
		ids[i] = cc.Nearest(o) + 1
	}
	return ids, nil
}

func constantIDs(n int) []int {
	ids := make([]int, n)
	for i := range ids {
		ids[i] = 1
	}
	return ids
}

func unitScale(obs clusters.Observations) clusters.Observations {
	lo := [3]float64{math.Inf(1), math.Inf(1), math.Inf(1)}
	hi := [3]float64{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for _, o := range obs {
		p := o.Coordinates()
		for c := range 3 {
			lo[c] = min(lo[c], p[c])
			hi[c] = max(hi[c], p[c])
		}
	}
	out := make(clusters.Observations, len(obs))
	for i, o := range obs {
		p := o.Coordinates()
		q := make(clusters.Coordinates, 3)
		for c := range 3 {
			if span := hi[c] - lo[c]; span > 0 {
				q[c] = (p[c] - lo[c]) / span
			}
		}
		out[i] = q
	}
	return out
}
