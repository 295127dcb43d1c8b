package utils

import (
	"image"
	"path/filepath"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRect(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    image.Rectangle
		wantErr bool
	}{
		{name: "plain", in: "1,2,30,40", want: image.Rect(1, 2, 30, 40)},
		{name: "spaces", in: " 1, 2 ,30, 40", want: image.Rect(1, 2, 30, 40)},
		{name: "swapped corners", in: "30,40,1,2", want: image.Rect(1, 2, 30, 40)},
		{name: "too few", in: "1,2,3", wantErr: true},
		{name: "not a number", in: "1,2,x,4", wantErr: true},
		{name: "empty", in: "5,5,5,9", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRect(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSortPaletteByBrightness(t *testing.T) {
	p := []colorful.Color{{R: 1, G: 1, B: 1}, {R: 0, G: 0, B: 0}, {R: 0.5, G: 0.5, B: 0.5}}
	SortPaletteByBrightness(p)
	assert.Equal(t, colorful.Color{R: 0, G: 0, B: 0}, p[0])
	assert.Equal(t, colorful.Color{R: 1, G: 1, B: 1}, p[2])
}

func TestSavePaletteAndReadBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "palette.png")
	palette := []colorful.Color{{R: 1, G: 0, B: 0}, {R: 0, G: 0, B: 1}}
	require.NoError(t, SavePalette(palette, 8, path))

	img, err := ReadImage(path)
	require.NoError(t, err)
	assert.Equal(t, 16, img.Bounds().Dx())
	assert.Equal(t, 8, img.Bounds().Dy())
	r, _, b, _ := img.At(12, 3).RGBA()
	assert.Equal(t, uint32(0), r)
	assert.Equal(t, uint32(0xffff), b)

	assert.Error(t, SavePalette(nil, 8, path))
	_, err = ReadImage(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}
