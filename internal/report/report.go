// Package report renders a sketch.Result for people: a localized text
// summary and upscaled PNG previews of the grids behind it.
package report

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/nfnt/resize"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	sketch "github.com/gogpu/sketch"
	"github.com/gogpu/sketch/grid"
)

// DefaultTop is the number of predictions listed by Write.
const DefaultTop = 3

// Catalog keys. Translations are registered in init.
const (
	msgEmpty      = "No ink found."
	msgPrediction = "Prediction: %c (%.1f%%)"
	msgUnsure     = "Prediction: %c (%.1f%%), low confidence"
	msgRank       = "%d. %c  %6.2f%%  mse %.4f"
	msgBox        = "Ink box: %d×%d at (%d, %d)"
	msgNearest    = "Nearest prototype: %c from %s, mse %.4f"
	msgElapsed    = "Classified in %v"
)

func init() {
	de := language.German
	_ = message.SetString(de, msgEmpty, "Keine Tinte gefunden.")
	_ = message.SetString(de, msgPrediction, "Vorhersage: %c (%.1f%%)")
	_ = message.SetString(de, msgUnsure, "Vorhersage: %c (%.1f%%), unsicher")
	_ = message.SetString(de, msgRank, "%d. %c  %6.2f%%  MQF %.4f")
	_ = message.SetString(de, msgBox, "Tintenbereich: %d×%d bei (%d, %d)")
	_ = message.SetString(de, msgNearest, "Nächster Prototyp: %c aus %s, MQF %.4f")
	_ = message.SetString(de, msgElapsed, "Klassifiziert in %v")
}

// Write prints a summary of res in the language tag. Unknown languages
// fall back to English.
func Write(w io.Writer, res *sketch.Result, tag language.Tag) error {
	p := message.NewPrinter(tag)
	if res == nil || len(res.Predictions) == 0 {
		_, err := p.Fprintln(w, p.Sprintf(msgEmpty))
		return err
	}

	var lines []string
	best := res.Predictions[0]
	switch {
	case res.Empty:
		lines = append(lines, p.Sprintf(msgEmpty))
	case res.Confident():
		lines = append(lines, p.Sprintf(msgPrediction, best.Label, best.Probability*100))
	default:
		lines = append(lines, p.Sprintf(msgUnsure, best.Label, best.Probability*100))
	}
	for i, pred := range res.Top(DefaultTop) {
		lines = append(lines, p.Sprintf(msgRank, i+1, pred.Label, pred.Probability*100, pred.Distance))
	}
	if !res.Empty {
		b := res.Box
		lines = append(lines,
			p.Sprintf(msgBox, b.W, b.H, b.X, b.Y),
			p.Sprintf(msgNearest, res.Nearest.Label, res.Nearest.Variant.String(), res.NearestDistance))
	}
	lines = append(lines, p.Sprintf(msgElapsed, res.Elapsed))

	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	return nil
}

// Upscale renders g as dark ink on white, enlarged so its longer side is
// size pixels. Nearest-neighbour keeps cell edges crisp.
func Upscale(g *grid.Grid, size uint) image.Image {
	img := g.ToInkImage()
	if g.Empty() || size == 0 {
		return img
	}
	if g.Width() >= g.Height() {
		return resize.Resize(size, 0, img, resize.NearestNeighbor)
	}
	return resize.Resize(0, size, img, resize.NearestNeighbor)
}

// Previews returns the named grids of res in display order: the canonical
// grid, the four feature grids, then the nearest prototype when there is
// one.
func Previews(res *sketch.Result) ([]string, []*grid.Grid) {
	names := []string{"canonical"}
	grids := []*grid.Grid{res.Canonical}
	names = append(names, res.Features.Names()...)
	grids = append(grids, res.Features.All()...)
	if res.Nearest.Grid != nil {
		names = append(names, "nearest")
		grids = append(grids, res.Nearest.Grid)
	}
	return names, grids
}

// SavePNGs writes every preview of res into dir as <name>.png, upscaled to
// size pixels. It returns the written paths.
func SavePNGs(dir string, res *sketch.Result, size uint) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("report: %w", err)
	}
	names, grids := Previews(res)
	paths := make([]string, 0, len(names))
	for i, name := range names {
		if grids[i] == nil {
			continue
		}
		path := filepath.Join(dir, name+".png")
		if err := savePNG(path, Upscale(grids[i], size)); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func savePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("report: encode %s: %w", path, err)
	}
	return f.Close()
}
