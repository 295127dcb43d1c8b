package grabcut

import (
	"image"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// Mask returns the labeling as a grayscale image, 255 for Foreground.
func (r *Result) Mask() *image.Gray {
	mask := image.NewGray(image.Rect(0, 0, r.W, r.H))
	for y := range r.H {
		for x := range r.W {
			if r.Labels[labelOffset(r.W, x, y)] == Foreground {
				mask.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return mask
}

// Composite keeps Foreground pixels of img and paints Background pixels with
// the opaque matte colour.
func (r *Result) Composite(img image.Image, matte colorful.Color) *image.RGBA {
	bounds := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, r.W, r.H))
	mr, mg, mb := matte.Clamped().RGB255()
	bg := color.RGBA{R: mr, G: mg, B: mb, A: 255}
	for y := range r.H {
		for x := range r.W {
			if r.Labels[labelOffset(r.W, x, y)] == Foreground {
				out.Set(x, y, img.At(bounds.Min.X+x, bounds.Min.Y+y))
				continue
			}
			out.SetRGBA(x, y, bg)
		}
	}
	return out
}

// Cutout returns img with Background pixels fully transparent.
func (r *Result) Cutout(img image.Image) *image.NRGBA {
	bounds := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, r.W, r.H))
	for y := range r.H {
		for x := range r.W {
			if r.Labels[labelOffset(r.W, x, y)] != Foreground {
				continue
			}
			c := color.NRGBAModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			out.SetNRGBA(x, y, c)
		}
	}
	return out
}

// MixtureColors returns component means as displayable colours.
func MixtureColors(m Mixture, space ColorSpace) []colorful.Color {
	out := make([]colorful.Color, len(m))
	for k := range m {
		mu := m[k].Mean
		if space == ColorSpaceLab {
			out[k] = colorful.Lab(mu[0]/100, mu[1]/100, mu[2]/100).Clamped()
			continue
		}
		out[k] = colorful.Color{R: mu[0] / 255.0, G: mu[1] / 255.0, B: mu[2] / 255.0}.Clamped()
	}
	return out
}
