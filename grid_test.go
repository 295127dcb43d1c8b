package grabcut

import (
	"image"
	"image/color"
	"math"
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomPixels(rng *rand.Rand, w, h int) [][][3]float64 {
	px := make([][][3]float64, h)
	for y := range h {
		px[y] = make([][3]float64, w)
		for x := range w {
			px[y][x] = [3]float64{rng.Float64() * 255, rng.Float64() * 255, rng.Float64() * 255}
		}
	}
	return px
}

func TestGridFlattenRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	sizes := []struct{ w, h int }{{1, 1}, {1, 7}, {7, 1}, {5, 3}, {16, 9}}
	for _, s := range sizes {
		px := randomPixels(rng, s.w, s.h)
		g, err := GridFromPixels(px)
		require.NoError(t, err)
		require.Equal(t, s.w, g.W)
		require.Equal(t, s.h, g.H)

		flat := g.Flatten()
		assert.Len(t, flat, s.w*s.h*3)

		back, err := Unflatten(flat, s.w, s.h)
		require.NoError(t, err)
		assert.Equal(t, px, back.Pixels(), "%dx%d", s.w, s.h)
	}
}

func TestGridRowMajorIndex(t *testing.T) {
	g, err := GridFromPixels([][][3]float64{
		{{1, 1, 1}, {2, 2, 2}, {3, 3, 3}},
		{{4, 4, 4}, {5, 5, 5}, {6, 6, 6}},
	})
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 2, 2}, g.At(1))
	assert.Equal(t, []float64{4, 4, 4}, g.At(3))
	assert.Equal(t, []float64{6, 6, 6}, g.At(labelOffset(g.W, 2, 1)))
}

func TestNewGridRejectsBadInput(t *testing.T) {
	_, err := NewGrid(2, 1, []float64{0, 0, 0, math.NaN(), 0, 0})
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = NewGrid(2, 1, []float64{0, 0, 0, math.Inf(1), 0, 0})
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = NewGrid(2, 2, []float64{0, 0, 0})
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = GridFromPixels([][][3]float64{{{0, 0, 0}}, {{0, 0, 0}, {1, 1, 1}}})
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestGridFromImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(10, 20, 13, 22))
	img.SetRGBA(10, 20, color.RGBA{R: 255, G: 0, B: 0, A: 255})
	img.SetRGBA(12, 21, color.RGBA{R: 10, G: 20, B: 30, A: 255})

	g := GridFromImage(img)
	require.Equal(t, 3, g.W)
	require.Equal(t, 2, g.H)
	assert.Equal(t, []float64{255, 0, 0}, g.At(0))
	assert.Equal(t, []float64{10, 20, 30}, g.At(5))
}

func TestGridLab(t *testing.T) {
	g, err := NewGrid(2, 1, []float64{255, 255, 255, 0, 0, 0})
	require.NoError(t, err)
	lab := g.Lab()
	assert.InDelta(t, 100, lab.At(0)[0], 1e-3)
	assert.InDelta(t, 0, lab.At(1)[0], 1e-3)
	// source untouched
	assert.Equal(t, []float64{255, 255, 255}, g.At(0))
}

func TestTrimapFromRect(t *testing.T) {
	tm, err := TrimapFromRect(10, 10, image.Rect(3, 3, 8, 8))
	require.NoError(t, err)
	n := 0
	for y := range 10 {
		for x := range 10 {
			in := x >= 3 && x < 8 && y >= 3 && y < 8
			assert.Equal(t, in, tm.Unknown[labelOffset(10, x, y)])
			if in {
				n++
			}
		}
	}
	assert.Equal(t, 25, n)

	labels := tm.InitialLabeling()
	assert.Equal(t, 25, labels.Count(Foreground))
	assert.Equal(t, 75, labels.Count(Background))
}

func TestTrimapFromRectClipsAndValidates(t *testing.T) {
	tm, err := TrimapFromRect(4, 4, image.Rect(2, 2, 10, 10))
	require.NoError(t, err)
	assert.Equal(t, 4, tm.InitialLabeling().Count(Foreground))

	_, err = TrimapFromRect(4, 4, image.Rect(5, 5, 8, 8))
	assert.True(t, errors.Is(err, ErrInvalidInput), "no unknown pixels")

	_, err = TrimapFromRect(4, 4, image.Rect(0, 0, 4, 4))
	assert.True(t, errors.Is(err, ErrInvalidInput), "no background pixels")

	_, err = NewTrimap(2, 2, []bool{true})
	assert.True(t, errors.Is(err, ErrInvalidInput))
}
