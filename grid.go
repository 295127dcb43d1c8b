package grabcut

import (
	"image"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Grid is an immutable H×W colour image flattened row-major.
type Grid struct {
	W, H int
	Pix  []float64 // Interleaved colour, nominally RGB in [0,255], len = W*H*3
}

// Label is the binary segmentation label of a pixel.
type Label uint8

const (
	Background Label = iota
	Foreground
)

func (l Label) String() string {
	if l == Foreground {
		return "foreground"
	}
	return "background"
}

// Labeling holds one label per pixel, indexed like Grid.
type Labeling []Label

func (l Labeling) Count(label Label) int {
	n := 0
	for _, v := range l {
		if v == label {
			n++
		}
	}
	return n
}

func (l Labeling) Clone() Labeling {
	out := make(Labeling, len(l))
	copy(out, l)
	return out
}

func pixOffset(w, x, y int) int {
	return (y*w + x) * 3
}

func labelOffset(w, x, y int) int {
	return y*w + x
}

// NewGrid wraps pix without copying. All values must be finite.
func NewGrid(w, h int, pix []float64) (*Grid, error) {
	if w <= 0 || h <= 0 {
		return nil, invalidf("grid size %dx%d", w, h)
	}
	if len(pix) != w*h*3 {
		return nil, invalidf("grid %dx%d needs %d values, got %d", w, h, w*h*3, len(pix))
	}
	if i := firstNonFinite(pix); i >= 0 {
		return nil, invalidf("non-finite colour value at pixel %d", i/3)
	}
	return &Grid{W: w, H: h, Pix: pix}, nil
}

// GridFromImage converts img to an RGB grid in [0,255].
func GridFromImage(img image.Image) *Grid {
	bounds := img.Bounds()
	h := bounds.Dy()
	w := bounds.Dx()
	g := &Grid{
		W:   w,
		H:   h,
		Pix: make([]float64, h*w*3),
	}
	for y := range h {
		for x := range w {
			r, gr, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			off := pixOffset(w, x, y)
			g.Pix[off] = float64(r >> 8)
			g.Pix[off+1] = float64(gr >> 8)
			g.Pix[off+2] = float64(b >> 8)
		}
	}
	return g
}

// GridFromPixels builds a grid from an H×W×3 array.
func GridFromPixels(px [][][3]float64) (*Grid, error) {
	h := len(px)
	if h == 0 {
		return nil, invalidf("empty pixel array")
	}
	w := len(px[0])
	pix := make([]float64, 0, w*h*3)
	for y, row := range px {
		if len(row) != w {
			return nil, invalidf("row %d has %d pixels, want %d", y, len(row), w)
		}
		for _, c := range row {
			pix = append(pix, c[0], c[1], c[2])
		}
	}
	return NewGrid(w, h, pix)
}

// Pixels expands the grid back into an H×W×3 array.
func (g *Grid) Pixels() [][][3]float64 {
	out := make([][][3]float64, g.H)
	for y := range g.H {
		out[y] = make([][3]float64, g.W)
		for x := range g.W {
			off := pixOffset(g.W, x, y)
			out[y][x] = [3]float64{g.Pix[off], g.Pix[off+1], g.Pix[off+2]}
		}
	}
	return out
}

// Len is the pixel count N.
func (g *Grid) Len() int {
	return g.W * g.H
}

// At returns the colour of pixel i. The slice aliases the grid.
func (g *Grid) At(i int) []float64 {
	return g.Pix[i*3 : i*3+3 : i*3+3]
}

// Flatten returns a copy of the N×3 sample matrix.
func (g *Grid) Flatten() []float64 {
	out := make([]float64, len(g.Pix))
	copy(out, g.Pix)
	return out
}

// Unflatten is the inverse of Flatten.
func Unflatten(samples []float64, w, h int) (*Grid, error) {
	pix := make([]float64, len(samples))
	copy(pix, samples)
	return NewGrid(w, h, pix)
}

// Lab returns a copy of an RGB grid converted to CIE-L*a*b* scaled to the
// conventional L in [0,100] range.
func (g *Grid) Lab() *Grid {
	out := &Grid{
		W:   g.W,
		H:   g.H,
		Pix: make([]float64, len(g.Pix)),
	}
	for i := range g.Len() {
		off := i * 3
		c := colorful.Color{
			R: g.Pix[off] / 255.0,
			G: g.Pix[off+1] / 255.0,
			B: g.Pix[off+2] / 255.0,
		}
		l, a, b := c.Lab()
		out.Pix[off] = l * 100
		out.Pix[off+1] = a * 100
		out.Pix[off+2] = b * 100
	}
	return out
}

// gather copies the colours of the listed pixels into a 3N sample slice.
func (g *Grid) gather(idx []int) []float64 {
	out := make([]float64, 0, len(idx)*3)
	for _, i := range idx {
		out = append(out, g.At(i)...)
	}
	return out
}

func firstNonFinite(v []float64) int {
	for i, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return i
		}
	}
	return -1
}

// ============ TRIMAP ============

// Trimap splits the grid into the Unknown region, which is optimised, and the
// Background region, which stays Background forever.
type Trimap struct {
	W, H    int
	Unknown []bool // len = W*H
}

func NewTrimap(w, h int, unknown []bool) (*Trimap, error) {
	if w <= 0 || h <= 0 || len(unknown) != w*h {
		return nil, invalidf("trimap %dx%d with %d mask entries", w, h, len(unknown))
	}
	t := &Trimap{W: w, H: h, Unknown: unknown}
	if err := t.validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// TrimapFromRect marks r, clipped to the image, as Unknown.
func TrimapFromRect(w, h int, r image.Rectangle) (*Trimap, error) {
	if w <= 0 || h <= 0 {
		return nil, invalidf("trimap size %dx%d", w, h)
	}
	r = r.Canon().Intersect(image.Rect(0, 0, w, h))
	unknown := make([]bool, w*h)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			unknown[labelOffset(w, x, y)] = true
		}
	}
	return NewTrimap(w, h, unknown)
}

func (t *Trimap) validate() error {
	n := 0
	for _, u := range t.Unknown {
		if u {
			n++
		}
	}
	if n == 0 {
		return invalidf("trimap has no unknown pixels")
	}
	if n == len(t.Unknown) {
		return invalidf("trimap has no background pixels")
	}
	return nil
}

// InitialLabeling labels Unknown pixels Foreground and the rest Background.
func (t *Trimap) InitialLabeling() Labeling {
	out := make(Labeling, len(t.Unknown))
	for i, u := range t.Unknown {
		if u {
			out[i] = Foreground
		}
	}
	return out
}
