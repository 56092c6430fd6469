// Package glyph renders reference glyphs into capture-sized bitmaps for the
// prototype bank.
//
// The bank only needs one capability from its host: "render label L in
// family F at size S, shifted by (dx, dy), into a fixed-size bitmap". That
// capability is the Renderer interface. Three implementations are provided:
//
//   - TextRenderer: golang.org/x/image/font drawer over an opentype face
//   - OutlineRenderer: go-text/typesetting shaping plus sfnt outlines filled
//     with golang.org/x/image/vector
//   - PatternRenderer: deterministic block digits with no font dependency,
//     for tests and environments without font data
//
// Fonts are loaded through a Library, which parses each family once and
// shares the FontSource across goroutines.
//
// # Example usage
//
//	lib := glyph.NewLibrary()
//	r := glyph.NewOutlineRenderer(lib)
//	bm, err := r.Render('7', glyph.Variant{Family: "goregular", Size: 40})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Parser backends
//
// Fonts are parsed by a FontParser. The "opentype" backend is always
// registered; others can be added with RegisterParser and selected per
// Library with WithParser. Only opentype sources can be drawn by the
// outline and text renderers.
package glyph
