package grabcut

import (
	"image"
	"math"
	"runtime"

	"github.com/rs/zerolog"

	"github.com/setanarut/grabcut/cluster"
	"github.com/setanarut/grabcut/maxflow"
)

// ColorSpace selects the space pixel colours are modelled in.
type ColorSpace int

const (
	ColorSpaceRGB ColorSpace = iota
	ColorSpaceLab
)

func (c ColorSpace) String() string {
	switch c {
	case ColorSpaceLab:
		return "lab"
	default:
		return "rgb"
	}
}

// Clusterer partitions 3N interleaved colour samples into at most k groups and
// returns one id in [1..k] per sample. It is only used to seed the mixtures.
type Clusterer interface {
	Cluster(samples []float64, k int) ([]int, error)
}

// MinCutOracle computes an exact minimum s-t cut of g.
type MinCutOracle interface {
	MinCut(g *maxflow.Graph, source, sink int) (maxflow.Cut, error)
}

type Options struct {
	// Pairwise smoothness weight.
	// Ideal start: 50. Required, must be positive.
	// Too low => ragged boundaries that follow colour noise; too high => the
	// foreground collapses into the box or disappears.
	Gamma float64
	// Gaussian components per mixture (foreground and background each).
	// Ideal start: 5. Fewer components underfit textured regions.
	NumGaussians int
	// Relative energy change below which the loop stops.
	// Ideal start: 1e-4.
	ConvergenceThreshold float64
	// Upper bound on optimisation passes. Ideal start: 10.
	MaxIterations int
	// Goroutines used for per-pixel work. <= 0 means GOMAXPROCS.
	Workers int
	// Space colours are modelled in. RGB matches the published formulation.
	ColorSpace ColorSpace
	// Seeds the initial mixtures. nil means a seeded k-means.
	Clusterer Clusterer
	// Min-cut backend. nil means Dinic.
	MinCut MinCutOracle
	Logger zerolog.Logger
}

func DefaultOptions() Options {
	return Options{
		Gamma:                50,
		NumGaussians:         5,
		ConvergenceThreshold: 1e-4,
		MaxIterations:        10,
		Workers:              runtime.GOMAXPROCS(0),
		ColorSpace:           ColorSpaceRGB,
		Clusterer:            cluster.NewSeeded(1),
		MinCut:               maxflow.Dinic{},
		Logger:               zerolog.Nop(),
	}
}

// OptionsFromSize tunes worker count to the image area. Tiny images are not
// worth the goroutine fan-out.
func OptionsFromSize(size image.Point) Options {
	opt := DefaultOptions()
	if size.X <= 0 || size.Y <= 0 {
		return opt
	}
	pixels := size.X * size.Y
	if pixels <= 64*64 {
		opt.Workers = 1
	} else if pixels > 1920*1080 {
		opt.MaxIterations = 12
	}
	return opt
}

// Validate reports the first invalid field. Nil collaborators and a
// non-positive worker count are filled with defaults instead. The dominant
// colour clusterer only accepts ColorSpaceRGB.
func (o *Options) Validate() error {
	if math.IsNaN(o.Gamma) || math.IsInf(o.Gamma, 0) || o.Gamma <= 0 {
		return invalidf("gamma must be positive and finite, got %v", o.Gamma)
	}
	if o.NumGaussians <= 0 {
		return invalidf("n_gaussians must be positive, got %d", o.NumGaussians)
	}
	if o.MaxIterations <= 0 {
		return invalidf("max_iterations must be positive, got %d", o.MaxIterations)
	}
	if math.IsNaN(o.ConvergenceThreshold) || math.IsInf(o.ConvergenceThreshold, 0) || o.ConvergenceThreshold < 0 {
		return invalidf("convergence_threshold must be finite and non-negative, got %v", o.ConvergenceThreshold)
	}
	if o.ColorSpace != ColorSpaceRGB && o.ColorSpace != ColorSpaceLab {
		return invalidf("unknown colour space %d", o.ColorSpace)
	}
	if _, ok := o.Clusterer.(*cluster.Dominant); ok && o.ColorSpace != ColorSpaceRGB {
		return invalidf("dominant clusterer reads RGB samples, not %s", o.ColorSpace)
	}
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	if o.Clusterer == nil {
		o.Clusterer = cluster.NewSeeded(1)
	}
	if o.MinCut == nil {
		o.MinCut = maxflow.Dinic{}
	}
	return nil
}
