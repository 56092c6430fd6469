// Command sketchpad is a desktop drawing pad that recognises handwritten
// digits while you draw.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"golang.org/x/text/language"

	"github.com/gogpu/sketch"
	"github.com/gogpu/sketch/internal/report"
	"github.com/gogpu/sketch/internal/zlog"
)

const previewSize = 112

func main() {
	var (
		side  = flag.Int("size", 280, "drawing canvas size in pixels")
		brush = flag.Float64("brush", 9, "initial brush radius")
		lang  = flag.String("lang", "en", "language of the result summary")
		level = flag.String("log", os.Getenv("SKETCH_LOG_LEVEL"), "log level")
	)
	flag.Parse()

	lvl, err := zlog.ParseLevel(*level)
	if err != nil {
		log.Fatalf("sketchpad: %v", err)
	}
	sketch.SetLogger(zlog.NewConsole(lvl))

	tag, err := language.Parse(*lang)
	if err != nil {
		log.Fatalf("sketchpad: bad -lang: %v", err)
	}

	p, err := sketch.New()
	if err != nil {
		log.Fatalf("sketchpad: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a := app.NewWithID("io.github.gogpu.sketchpad")
	w := a.NewWindow("Sketchpad")

	v := newView(tag)
	sched := sketch.NewTickScheduler(sketch.DefaultFrame)
	ctrl := sketch.NewController(p, sched,
		sketch.WithOnResult(func(res *sketch.Result) {
			fyne.Do(func() { v.show(res) })
		}),
		sketch.WithOnError(func(err error) {
			fyne.Do(func() { v.status.SetText(err.Error()) })
		}),
	)
	go func() {
		_ = sched.Run(ctx)
	}()

	surface := newPad(*side, *brush, ctrl.Trigger)

	radius := widget.NewSlider(1, 24)
	radius.Value = *brush
	radius.OnChanged = surface.setRadius
	clearBtn := widget.NewButton("Clear", surface.clear)

	toolbar := container.NewBorder(nil, nil, widget.NewLabel("Brush"), clearBtn, radius)
	w.SetContent(container.NewBorder(toolbar, v.status, nil, v.panel(), surface))
	w.SetOnClosed(cancel)
	w.ShowAndRun()
}

// view shows the latest Result: a text summary and the preview grids.
type view struct {
	tag      language.Tag
	summary  *widget.Label
	status   *widget.Label
	previews []*canvas.Image
	captions []*widget.Label
}

func newView(tag language.Tag) *view {
	v := &view{
		tag:     tag,
		summary: widget.NewLabel("Draw a digit."),
		status:  widget.NewLabel(""),
	}
	v.summary.TextStyle = fyne.TextStyle{Monospace: true}
	for range 6 {
		img := canvas.NewImageFromImage(nil)
		img.FillMode = canvas.ImageFillContain
		img.ScaleMode = canvas.ImageScalePixels
		img.SetMinSize(fyne.NewSize(previewSize, previewSize))
		v.previews = append(v.previews, img)
		v.captions = append(v.captions, widget.NewLabel(""))
	}
	return v
}

func (v *view) panel() fyne.CanvasObject {
	cells := make([]fyne.CanvasObject, len(v.previews))
	for i := range v.previews {
		cells[i] = container.NewBorder(nil, v.captions[i], nil, nil, v.previews[i])
	}
	return container.NewVBox(v.summary, container.NewGridWithColumns(3, cells...))
}

func (v *view) show(res *sketch.Result) {
	var sb strings.Builder
	if err := report.Write(&sb, res, v.tag); err != nil {
		v.status.SetText(err.Error())
		return
	}
	v.summary.SetText(sb.String())

	names, grids := report.Previews(res)
	for i, img := range v.previews {
		if i >= len(grids) {
			img.Image = nil
			v.captions[i].SetText("")
		} else {
			img.Image = report.Upscale(grids[i], previewSize)
			v.captions[i].SetText(names[i])
		}
		img.Refresh()
	}
	v.status.SetText(fmt.Sprintf("run %d in %v", res.Seq, res.Elapsed.Round(time.Microsecond)))
}
