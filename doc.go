// Package sketch recognizes hand-drawn digits.
//
// A sketch arrives as a [grid.Bitmap] snapshot of a drawing surface. The
// [Pipeline] converts it to an ink-intensity grid, crops and rescales the
// ink into a canonical 28x28 grid, extracts edge features for display and
// classifies the grid against a bank of prototypes rendered from fonts.
//
// # Quick Start
//
//	p, err := sketch.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	res, err := p.Run(snapshot)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, pred := range res.Top(3) {
//	    fmt.Printf("%c %.2f\n", pred.Label, pred.Probability)
//	}
//
// # Live input
//
// Interactive hosts trigger a run on every stroke. A [Controller] keeps at
// most one run pending, drops triggers that are superseded before they
// start and publishes each finished [Result] as a whole:
//
//	sched := sketch.NewTickScheduler(0)
//	go sched.Run(ctx)
//	c := sketch.NewController(p, sched, sketch.WithOnResult(show))
//	c.Trigger(canvas.Clone())
//
// # Prototypes
//
// The default bank renders each digit in five Go font families, four sizes
// and nine offsets through [glyph.OutlineRenderer]. It is built on first
// use and shared by every pipeline in the process. Tests and tools can
// supply their own with [WithBank] or [WithRenderer].
//
// # Logging
//
// sketch is silent unless [SetLogger] is called.
package sketch
