// Command grabcut extracts the foreground inside a rectangle.
//
// Usage:
//
//	grabcut -i photo.jpg -r 40,30,300,260 -o cut.png
//	grabcut -i photo.jpg -r 40,30,300,260 -o out.png --mode composite --matte "#00ff00"
package main

import (
	"context"
	"os"
	"os/signal"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/setanarut/grabcut"
	"github.com/setanarut/grabcut/cluster"
	"github.com/setanarut/grabcut/maxflow"
	"github.com/setanarut/grabcut/utils"
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	app := &cli.App{
		Name:  "grabcut",
		Usage: "foreground extraction from a bounding box",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "input", Aliases: []string{"i"}, Usage: "input image", Required: true},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "output image", Required: true},
			&cli.StringFlag{Name: "rect", Aliases: []string{"r"}, Usage: "bounding box x0,y0,x1,y1", Required: true},
			&cli.StringFlag{Name: "mode", Value: "cutout", Usage: "cutout, composite or mask"},
			&cli.StringFlag{Name: "matte", Value: "#000000", Usage: "background colour for composite mode"},
			&cli.Float64Flag{Name: "gamma", Value: 50, Usage: "pairwise smoothness weight"},
			&cli.IntFlag{Name: "gaussians", Aliases: []string{"k"}, Value: 5, Usage: "components per mixture"},
			&cli.Float64Flag{Name: "threshold", Value: 1e-4, Usage: "relative energy change to stop at"},
			&cli.IntFlag{Name: "max-iter", Value: 10, Usage: "iteration limit"},
			&cli.StringFlag{Name: "cluster", Value: "seeded", Usage: "seeded, kmeans or dominant"},
			&cli.Int64Flag{Name: "seed", Value: 1, Usage: "seed for the seeded clusterer"},
			&cli.StringFlag{Name: "solver", Value: "dinic", Usage: "dinic or edmonds-karp"},
			&cli.StringFlag{Name: "color-space", Value: "rgb", Usage: "rgb or lab"},
			&cli.StringFlag{Name: "palette", Usage: "write foreground and background mixture means to this png"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "debug logging"},
		},
		Action: func(c *cli.Context) error {
			return run(c, logger)
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := app.RunContext(ctx, os.Args); err != nil {
		logger.Fatal().Err(err).Msg("grabcut failed")
	}
}

func run(c *cli.Context, logger zerolog.Logger) error {
	level := zerolog.InfoLevel
	if c.Bool("verbose") {
		level = zerolog.DebugLevel
	}
	logger = logger.Level(level)

	img, err := utils.ReadImage(c.String("input"))
	if err != nil {
		return err
	}
	rect, err := utils.ParseRect(c.String("rect"))
	if err != nil {
		return err
	}

	opt := grabcut.OptionsFromSize(img.Bounds().Size())
	opt.Gamma = c.Float64("gamma")
	opt.NumGaussians = c.Int("gaussians")
	opt.ConvergenceThreshold = c.Float64("threshold")
	opt.MaxIterations = c.Int("max-iter")
	opt.Logger = logger

	switch strings.ToLower(c.String("cluster")) {
	case "seeded":
		opt.Clusterer = cluster.NewSeeded(c.Int64("seed"))
	case "kmeans":
		opt.Clusterer = cluster.NewKMeans()
	case "dominant":
		opt.Clusterer = cluster.NewDominant()
	default:
		return errors.Errorf("unknown clusterer %q", c.String("cluster"))
	}
	switch strings.ToLower(c.String("solver")) {
	case "dinic":
		opt.MinCut = maxflow.Dinic{}
	case "edmonds-karp":
		opt.MinCut = maxflow.EdmondsKarp{}
	default:
		return errors.Errorf("unknown solver %q", c.String("solver"))
	}
	switch strings.ToLower(c.String("color-space")) {
	case "rgb":
		opt.ColorSpace = grabcut.ColorSpaceRGB
	case "lab":
		opt.ColorSpace = grabcut.ColorSpaceLab
	default:
		return errors.Errorf("unknown colour space %q", c.String("color-space"))
	}

	res, err := grabcut.Segment(c.Context, img, rect, opt)
	if err != nil {
		return err
	}
	logger.Info().
		Str("reason", res.Reason.String()).
		Int("iterations", res.Iterations).
		Float64("energy", res.Energy).
		Int("foreground", res.Labels.Count(grabcut.Foreground)).
		Msg("segmentation finished")

	switch strings.ToLower(c.String("mode")) {
	case "cutout":
		err = utils.SaveImage(res.Cutout(img), c.String("output"))
	case "mask":
		err = utils.SaveImage(res.Mask(), c.String("output"))
	case "composite":
		matte, perr := colorful.Hex(c.String("matte"))
		if perr != nil {
			return errors.Wrapf(perr, "matte colour %q", c.String("matte"))
		}
		err = utils.SaveImage(res.Composite(img, matte), c.String("output"))
	default:
		return errors.Errorf("unknown mode %q", c.String("mode"))
	}
	if err != nil {
		return err
	}

	if path := c.String("palette"); path != "" {
		palette := grabcut.MixtureColors(res.Foreground, res.ColorSpace)
		utils.SortPaletteByBrightness(palette)
		bg := grabcut.MixtureColors(res.Background, res.ColorSpace)
		utils.SortPaletteByBrightness(bg)
		if err := utils.SavePalette(append(palette, bg...), 64, path); err != nil {
			return err
		}
	}
	return nil
}
