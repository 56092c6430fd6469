// Command sketchdump classifies a digit image and writes the intermediate
// grids as PNG files.
//
// Usage:
//
//	sketchdump -in digit.png -out previews/
package main

import (
	"flag"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"os"

	"github.com/rs/zerolog"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
	"golang.org/x/text/language"

	"github.com/gogpu/sketch"
	"github.com/gogpu/sketch/glyph"
	"github.com/gogpu/sketch/grid"
	"github.com/gogpu/sketch/internal/report"
	"github.com/gogpu/sketch/internal/zlog"
	"github.com/gogpu/sketch/prototype"
)

func main() {
	var (
		in      = flag.String("in", "", "input image (png, jpeg, bmp, webp)")
		out     = flag.String("out", "", "directory for preview PNGs; empty skips them")
		size    = flag.Uint("size", 280, "preview size in pixels")
		lang    = flag.String("lang", "en", "language of the summary")
		pattern = flag.Bool("pattern", false, "use block-pattern prototypes instead of fonts")
		verbose = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	if *in == "" {
		flag.Usage()
		os.Exit(2)
	}
	if *verbose {
		sketch.SetLogger(zlog.NewConsole(zerolog.DebugLevel))
	}

	tag, err := language.Parse(*lang)
	if err != nil {
		log.Fatalf("sketchdump: bad -lang: %v", err)
	}

	snapshot, err := load(*in)
	if err != nil {
		log.Fatalf("sketchdump: %v", err)
	}

	var opts []sketch.Option
	if *pattern {
		opts = append(opts,
			sketch.WithRenderer(glyph.NewCachedRenderer(glyph.NewPatternRenderer(), 0)),
			sketch.WithPlan(prototype.Plan{
				Families: []string{"pattern"},
				Sizes:    []float64{15, 20, 25},
				Offsets:  []image.Point{{}, {X: 1}, {Y: 1}},
			}))
	}
	p, err := sketch.New(opts...)
	if err != nil {
		log.Fatalf("sketchdump: %v", err)
	}

	res, err := p.Run(snapshot)
	if err != nil {
		log.Fatalf("sketchdump: %v", err)
	}
	if err := report.Write(os.Stdout, res, tag); err != nil {
		log.Fatalf("sketchdump: %v", err)
	}

	if *out == "" {
		return
	}
	if err := os.MkdirAll(*out, 0o755); err != nil {
		log.Fatalf("sketchdump: %v", err)
	}
	paths, err := report.SavePNGs(*out, res, *size)
	if err != nil {
		log.Fatalf("sketchdump: %v", err)
	}
	for _, path := range paths {
		fmt.Println(path)
	}
}

func load(path string) (*grid.Bitmap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return grid.FromImage(img), nil
}
