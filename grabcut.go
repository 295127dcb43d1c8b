package grabcut

import (
	"context"
	"image"
	"math"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// State is the optimisation controller state.
type State int

const (
	Initializing State = iota
	Iterating
	Converged
	MaxIterationsReached
)

func (s State) String() string {
	switch s {
	case Initializing:
		return "initializing"
	case Iterating:
		return "iterating"
	case Converged:
		return "converged"
	case MaxIterationsReached:
		return "max_iterations_reached"
	default:
		return "unknown"
	}
}

// Terminal reports whether s ends a run.
func (s State) Terminal() bool {
	return s == Converged || s == MaxIterationsReached
}

// IterationRecord describes one completed pass.
type IterationRecord struct {
	Iteration  int
	Energy     float64
	Delta      float64 // NaN on the first pass
	Foreground int
	Elapsed    time.Duration
}

// Result is the outcome of a finished run.
type Result struct {
	W, H       int
	Labels     Labeling
	Energy     float64
	Iterations int
	Reason     State // Converged or MaxIterationsReached
	Foreground Mixture
	Background Mixture
	Beta       float64
	ColorSpace ColorSpace
	History    []IterationRecord
}

// Segmenter owns the labeling and the colour models for one image and trimap.
type Segmenter struct {
	Grid   *Grid
	Trimap *Trimap

	state    State
	opt      Options
	log      zerolog.Logger
	colors   *Grid
	labels   Labeling
	fg, bg   Mixture
	pairwise *Pairwise
}

func NewSegmenter(grid *Grid, trimap *Trimap) *Segmenter {
	return &Segmenter{
		Grid:   grid,
		Trimap: trimap,
	}
}

// Segment runs the whole pipeline on img with rect as the Unknown region.
func Segment(ctx context.Context, img image.Image, rect image.Rectangle, opt Options) (*Result, error) {
	b := img.Bounds()
	trimap, err := TrimapFromRect(b.Dx(), b.Dy(), rect.Sub(b.Min))
	if err != nil {
		return nil, err
	}
	return NewSegmenter(GridFromImage(img), trimap).Run(ctx, opt)
}

// State returns the current controller state.
func (s *Segmenter) State() State {
	return s.state
}

// Run initialises the colour models and iterates until convergence or the
// iteration limit. ctx is checked only between passes; a pass in progress
// always completes.
func (s *Segmenter) Run(ctx context.Context, opt Options) (*Result, error) {
	if err := opt.Validate(); err != nil {
		return nil, err
	}
	s.opt = opt
	s.log = opt.Logger
	if err := s.initialize(); err != nil {
		return nil, err
	}

	s.state = Iterating
	s.log.Debug().Str("state", s.state.String()).Msg("grabcut: state transition")

	var (
		prevEnergy float64
		hasPrior   bool
		energy     float64
		iteration  int
		history    []IterationRecord
	)
	for {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrapf(err, "grabcut: cancelled before pass %d", iteration+1)
		}
		start := time.Now()
		e, err := s.pass()
		if err != nil {
			return nil, errors.Wrapf(err, "grabcut: pass %d", iteration+1)
		}
		energy = e
		iteration++

		delta := math.NaN()
		if hasPrior {
			delta = relativeChange(prevEnergy, energy)
		}
		rec := IterationRecord{
			Iteration:  iteration,
			Energy:     energy,
			Delta:      delta,
			Foreground: s.labels.Count(Foreground),
			Elapsed:    time.Since(start),
		}
		history = append(history, rec)
		s.log.Info().
			Int("iteration", rec.Iteration).
			Float64("energy", rec.Energy).
			Float64("delta", rec.Delta).
			Int("foreground", rec.Foreground).
			Dur("elapsed", rec.Elapsed).
			Msg("grabcut: pass complete")

		if hasPrior && delta < opt.ConvergenceThreshold {
			s.state = Converged
			break
		}
		if iteration >= opt.MaxIterations {
			s.state = MaxIterationsReached
			break
		}
		prevEnergy = energy
		hasPrior = true
	}
	s.log.Debug().Str("state", s.state.String()).Int("iterations", iteration).Msg("grabcut: state transition")

	return &Result{
		W:          s.Grid.W,
		H:          s.Grid.H,
		Labels:     s.labels.Clone(),
		Energy:     energy,
		Iterations: iteration,
		Reason:     s.state,
		Foreground: s.fg,
		Background: s.bg,
		Beta:       s.pairwise.Beta,
		ColorSpace: opt.ColorSpace,
		History:    history,
	}, nil
}

// relativeChange is (prev - cur) / |prev|, falling back to the absolute
// change when prev is zero.
func relativeChange(prev, cur float64) float64 {
	if prev == 0 {
		return prev - cur
	}
	return (prev - cur) / math.Abs(prev)
}

// ============ INITIALIZING ============

func (s *Segmenter) initialize() error {
	s.state = Initializing
	if s.Grid == nil || s.Trimap == nil {
		return invalidf("segmenter needs a grid and a trimap")
	}
	if s.Grid.W != s.Trimap.W || s.Grid.H != s.Trimap.H {
		return invalidf("trimap %dx%d does not match image %dx%d", s.Trimap.W, s.Trimap.H, s.Grid.W, s.Grid.H)
	}
	if len(s.Grid.Pix) != s.Grid.Len()*3 || len(s.Trimap.Unknown) != s.Grid.Len() {
		return invalidf("grid or trimap buffers do not match %dx%d", s.Grid.W, s.Grid.H)
	}
	if i := firstNonFinite(s.Grid.Pix); i >= 0 {
		return invalidf("non-finite colour value at pixel %d", i/3)
	}
	if err := s.Trimap.validate(); err != nil {
		return err
	}
	s.log.Debug().
		Int("width", s.Grid.W).
		Int("height", s.Grid.H).
		Str("color_space", s.opt.ColorSpace.String()).
		Msg("grabcut: initializing")

	s.colors = s.Grid
	if s.opt.ColorSpace == ColorSpaceLab {
		s.colors = s.Grid.Lab()
	}
	s.labels = s.Trimap.InitialLabeling()

	pw, err := NewPairwise(s.colors, s.opt.Gamma)
	if err != nil {
		return err
	}
	s.pairwise = pw

	var unknown, fixed []int
	for i, u := range s.Trimap.Unknown {
		if u {
			unknown = append(unknown, i)
		} else {
			fixed = append(fixed, i)
		}
	}
	if s.fg, err = s.seedMixture(unknown); err != nil {
		return errors.Wrap(err, "seed foreground mixture")
	}
	if s.bg, err = s.seedMixture(fixed); err != nil {
		return errors.Wrap(err, "seed background mixture")
	}
	s.log.Debug().
		Float64("beta", pw.Beta).
		Int("fg_components", len(s.fg)).
		Int("bg_components", len(s.bg)).
		Msg("grabcut: initial mixtures fitted")
	return nil
}

func (s *Segmenter) seedMixture(idx []int) (Mixture, error) {
	samples := s.colors.gather(idx)
	k := min(s.opt.NumGaussians, len(idx))
	ids, err := s.opt.Clusterer.Cluster(samples, k)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidInput, err.Error())
	}
	return FitMixture(samples, ids)
}

// ============ ITERATING ============

// pass runs one assign, refit, solve cycle and replaces the labeling.
func (s *Segmenter) pass() (float64, error) {
	n := s.colors.Len()
	ids := make([]int, n)
	err := parallelFor(n, s.opt.Workers, func(lo, hi int) error {
		for i := lo; i < hi; i++ {
			mix := s.bg
			if s.labels[i] == Foreground {
				mix = s.fg
			}
			k, _ := mix.best(s.colors.At(i))
			ids[i] = k + 1
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	fg, err := s.refit(Foreground, ids)
	if err != nil {
		return 0, err
	}
	bg, err := s.refit(Background, ids)
	if err != nil {
		return 0, err
	}
	s.fg, s.bg = fg, bg

	model, err := NewEnergyModel(s.colors, s.Trimap, s.fg, s.bg, s.pairwise, s.opt.Workers)
	if err != nil {
		return 0, err
	}
	labels, energy, err := Solve(model, s.opt.MinCut)
	if err != nil {
		return 0, err
	}
	s.labels = labels
	return energy, nil
}

// refit fits the mixture of one label from the pixels currently holding it.
// An empty region keeps its previous mixture.
func (s *Segmenter) refit(label Label, ids []int) (Mixture, error) {
	prev := s.bg
	if label == Foreground {
		prev = s.fg
	}
	var members, memberIDs []int
	for i, l := range s.labels {
		if l == label {
			members = append(members, i)
			memberIDs = append(memberIDs, ids[i])
		}
	}
	if len(members) == 0 {
		s.log.Warn().Str("label", label.String()).Msg("grabcut: empty region, keeping previous mixture")
		return prev, nil
	}
	return FitMixture(s.colors.gather(members), memberIDs)
}
