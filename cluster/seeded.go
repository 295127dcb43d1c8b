package cluster

import (
	"math/rand"

	"github.com/muesli/clusters"
)

// Seeded is Lloyd's k-means with k-means++ seeding from a fixed seed. Same
// samples, k and seed always give the same ids.
type Seeded struct {
	Seed          int64
	MaxIterations int
}

func NewSeeded(seed int64) *Seeded {
	return &Seeded{Seed: seed, MaxIterations: 20}
}

func (s *Seeded) Cluster(samples []float64, k int) ([]int, error) {
	if err := checkK(k); err != nil {
		return nil, err
	}
	obs, err := observations(samples)
	if err != nil {
		return nil, err
	}
	k = min(k, len(obs))
	rng := rand.New(rand.NewSource(s.Seed))
	centers := seedPlusPlus(obs, k, rng)

	ids := assignNearest(obs, centers)
	for range max(s.MaxIterations, 1) {
		recenter(obs, ids, centers)
		next := assignNearest(obs, centers)
		changed := 0
		for i := range ids {
			if ids[i] != next[i] {
				changed++
			}
		}
		ids = next
		if changed == 0 {
			break
		}
	}
	return ids, nil
}

// seedPlusPlus picks the first center uniformly and each following one with
// probability proportional to its squared distance to the chosen centers.
func seedPlusPlus(obs clusters.Observations, k int, rng *rand.Rand) []clusters.Coordinates {
	centers := make([]clusters.Coordinates, 0, k)
	first := obs[rng.Intn(len(obs))].Coordinates()
	centers = append(centers, append(clusters.Coordinates(nil), first...))

	d2 := make([]float64, len(obs))
	for len(centers) < k {
		total := 0.0
		last := centers[len(centers)-1]
		for i, o := range obs {
			d := o.Distance(last)
			if len(centers) == 1 || d < d2[i] {
				d2[i] = d
			}
			total += d2[i]
		}
		if total == 0 {
			// All remaining samples coincide with a center.
			break
		}
		r := rng.Float64() * total
		pick := len(obs) - 1
		for i := range d2 {
			r -= d2[i]
			if r <= 0 {
				pick = i
				break
			}
		}
		centers = append(centers, append(clusters.Coordinates(nil), obs[pick].Coordinates()...))
	}
	return centers
}

// recenter moves each center to the mean of its members. Empty clusters keep
// their center.
func recenter(obs clusters.Observations, ids []int, centers []clusters.Coordinates) {
	sums := make([][3]float64, len(centers))
	counts := make([]int, len(centers))
	for i, o := range obs {
		c := ids[i] - 1
		p := o.Coordinates()
		sums[c][0] += p[0]
		sums[c][1] += p[1]
		sums[c][2] += p[2]
		counts[c]++
	}
	for c := range centers {
		if counts[c] == 0 {
			continue
		}
		n := float64(counts[c])
		centers[c] = clusters.Coordinates{sums[c][0] / n, sums[c][1] / n, sums[c][2] / n}
	}
}
