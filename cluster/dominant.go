package cluster

import (
	"image"
	"image/color"
	"math"

	"github.com/cenkalti/dominantcolor"
	"github.com/muesli/clusters"
)

// Dominant seeds clusters from the dominant colours of the sample set and
// assigns each sample to the nearest one. It is RGB-only: samples are read as
// RGB in [0,255] and clamped, so Lab samples with negative a*/b* would be
// clustered in a distorted space.
type Dominant struct{}

func NewDominant() *Dominant {
	return &Dominant{}
}

func (d *Dominant) Cluster(samples []float64, k int) ([]int, error) {
	if err := checkK(k); err != nil {
		return nil, err
	}
	obs, err := observations(samples)
	if err != nil {
		return nil, err
	}
	k = min(k, distinct(samples, k))
	if k == 1 {
		return constantIDs(len(obs)), nil
	}

	found := dominantcolor.FindWeight(sampleImage(samples), k)
	if len(found) == 0 {
		return constantIDs(len(obs)), nil
	}
	centers := make([]clusters.Coordinates, len(found))
	for i, c := range found {
		centers[i] = clusters.Coordinates{float64(c.RGBA.R), float64(c.RGBA.G), float64(c.RGBA.B)}
	}
	return assignNearest(obs, centers), nil
}

// sampleImage packs samples into a roughly square opaque image. Trailing
// pixels repeat samples from the start so the image has no holes.
func sampleImage(samples []float64) image.Image {
	n := len(samples) / 3
	side := int(math.Ceil(math.Sqrt(float64(n))))
	h := (n + side - 1) / side
	img := image.NewNRGBA(image.Rect(0, 0, side, h))
	for i := range side * h {
		off := (i % n) * 3
		img.SetNRGBA(i%side, i/side, color.NRGBA{
			R: clampByte(samples[off]),
			G: clampByte(samples[off+1]),
			B: clampByte(samples[off+2]),
			A: 255,
		})
	}
	return img
}

func clampByte(v float64) uint8 {
	return uint8(max(0, min(255, math.Round(v))))
}
