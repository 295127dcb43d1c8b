package cluster

import (
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clusterer interface {
	Cluster(samples []float64, k int) ([]int, error)
}

var all = []struct {
	name string
	c    clusterer
}{
	{"seeded", NewSeeded(1)},
	{"kmeans", NewKMeans()},
	{"dominant", NewDominant()},
}

func twoTone(rng *rand.Rand, per int) []float64 {
	var s []float64
	for range per {
		s = append(s, 220+rng.Float64()*10, 20+rng.Float64()*10, 20+rng.Float64()*10)
	}
	for range per {
		s = append(s, 20+rng.Float64()*10, 30+rng.Float64()*10, 220+rng.Float64()*10)
	}
	return s
}

func TestClusterIDsInRange(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	samples := twoTone(rng, 40)
	for _, tt := range all {
		t.Run(tt.name, func(t *testing.T) {
			ids, err := tt.c.Cluster(samples, 4)
			require.NoError(t, err)
			require.Len(t, ids, 80)
			for _, id := range ids {
				assert.GreaterOrEqual(t, id, 1)
				assert.LessOrEqual(t, id, 4)
			}
		})
	}
}

func TestClusterUniformSamples(t *testing.T) {
	samples := make([]float64, 0, 60)
	for range 20 {
		samples = append(samples, 7, 8, 9)
	}
	for _, tt := range all {
		t.Run(tt.name, func(t *testing.T) {
			ids, err := tt.c.Cluster(samples, 5)
			require.NoError(t, err)
			for _, id := range ids {
				assert.Equal(t, 1, id)
			}
		})
	}
}

func TestClusterInvalidInput(t *testing.T) {
	for _, tt := range all {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.c.Cluster([]float64{1, 2, 3}, 0)
			assert.True(t, errors.Is(err, ErrInvalidInput))
			_, err = tt.c.Cluster([]float64{1, 2}, 2)
			assert.True(t, errors.Is(err, ErrInvalidInput))
			_, err = tt.c.Cluster(nil, 2)
			assert.True(t, errors.Is(err, ErrInvalidInput))
		})
	}
}

func TestSeededSeparatesGroups(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	samples := twoTone(rng, 30)
	ids, err := NewSeeded(3).Cluster(samples, 2)
	require.NoError(t, err)
	for i := 1; i < 30; i++ {
		assert.Equal(t, ids[0], ids[i])
		assert.Equal(t, ids[30], ids[30+i])
	}
	assert.NotEqual(t, ids[0], ids[30])
}

func TestSeededDeterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	samples := make([]float64, 300)
	for i := range samples {
		samples[i] = rng.Float64() * 255
	}
	a, err := NewSeeded(99).Cluster(samples, 5)
	require.NoError(t, err)
	b, err := NewSeeded(99).Cluster(samples, 5)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestSeededClipsK(t *testing.T) {
	ids, err := NewSeeded(1).Cluster([]float64{0, 0, 0, 100, 100, 100}, 5)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{1, 2}, ids)
}

func TestSampleImageCoversAllSamples(t *testing.T) {
	samples := []float64{0, 0, 0, 10, 20, 30, 300, -5, 128}
	img := sampleImage(samples)
	b := img.Bounds()
	assert.Equal(t, 2, b.Dx())
	assert.Equal(t, 2, b.Dy())
	r, g, bl, a := img.At(0, 1).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	assert.Equal(t, uint32(0), g)
	assert.Equal(t, uint32(128*0x101), bl)
	assert.Equal(t, uint32(0xffff), a)
}
