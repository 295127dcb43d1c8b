// Package cluster partitions colour samples to seed Gaussian mixtures.
//
// Every clusterer takes 3N interleaved samples and returns one id in [1..k]
// per sample. Ids of clusters that end up empty are simply absent.
package cluster

import (
	"math"

	"github.com/muesli/clusters"
	"github.com/pkg/errors"
)

var ErrInvalidInput = errors.New("cluster: invalid input")

func observations(samples []float64) (clusters.Observations, error) {
	if len(samples) == 0 || len(samples)%3 != 0 {
		return nil, errors.Wrapf(ErrInvalidInput, "sample slice length %d", len(samples))
	}
	n := len(samples) / 3
	out := make(clusters.Observations, n)
	for i := range n {
		out[i] = clusters.Coordinates{samples[i*3], samples[i*3+1], samples[i*3+2]}
	}
	return out, nil
}

func checkK(k int) error {
	if k <= 0 {
		return errors.Wrapf(ErrInvalidInput, "k must be positive, got %d", k)
	}
	return nil
}

// distinct counts distinct samples, capped at limit.
func distinct(samples []float64, limit int) int {
	seen := make(map[[3]float64]struct{})
	for i := 0; i+2 < len(samples); i += 3 {
		seen[[3]float64{samples[i], samples[i+1], samples[i+2]}] = struct{}{}
		if len(seen) >= limit {
			break
		}
	}
	return len(seen)
}

// nearest returns the 0-based index of the closest center, lowest index on
// ties.
func nearest(p clusters.Coordinates, centers []clusters.Coordinates) int {
	best := 0
	bestD := math.Inf(1)
	for i, c := range centers {
		if d := p.Distance(c); d < bestD {
			bestD = d
			best = i
		}
	}
	return best
}

// assignNearest maps every observation to its closest center.
func assignNearest(obs clusters.Observations, centers []clusters.Coordinates) []int {
	ids := make([]int, len(obs))
	for i, o := range obs {
		ids[i] = nearest(o.Coordinates(), centers) + 1
	}
	return ids
}
