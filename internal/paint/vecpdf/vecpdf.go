/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package vecpdf implements paint.Context on a gofpdf page.
//
// PDF has no blur, so content drawn under a blur filter is not emitted; the covered
// area is painted as an opaque smudge block instead. Rounded rectangles are not
// offered and callers fall back to square corners.
package vecpdf

import (
	"fmt"
	"io"
	"math"

	"github.com/jung-kurt/gofpdf"

	"icyhider/internal/paint"
	"icyhider/internal/vector"
)

// SmudgeColor fills areas drawn under a blur filter.
var SmudgeColor = paint.Color{R: 0x5A, G: 0x5F, B: 0x66, A: 255}

type state struct {
	ox, oy float64
	clip   vector.Rect
	clips  int
	filter paint.Filter
	fill   paint.Fill
	stroke paint.Color
	width  float64
	font   paint.Font
	align  paint.TextAlign
	base   paint.TextBaseline
}

type smudge struct {
	depth int
	clip  vector.Rect
	area  vector.Rect
	used  bool
}

// Document is a single-page PDF sized in points.
type Document struct {
	pdf     *gofpdf.Fpdf
	w, h    float64
	st      state
	stack   []state
	path    []vector.Rect
	smudges []*smudge
	tr      func(string) string
}

// New starts a w×h point page.
func New(w, h float64, title string) *Document {
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: w, Ht: h},
	})
	pdf.SetTitle(title, true)
	pdf.SetAuthor("IcyHider", false)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPageFormat("", gofpdf.SizeType{Wd: w, Ht: h})
	pdf.SetFont("Helvetica", "", 12)
	d := &Document{pdf: pdf, w: w, h: h, tr: pdf.UnicodeTranslatorFromDescriptor("")}
	d.st = state{clip: vector.R(0, 0, w, h), width: 1, font: paint.Font{Size: 12}}
	return d
}

// Clear paints the whole page with col.
func (d *Document) Clear(col paint.Color) {
	d.pdf.SetFillColor(int(col.R), int(col.G), int(col.B))
	d.pdf.Rect(0, 0, d.w, d.h, "F")
}

// Output closes the page and writes the document.
func (d *Document) Output(w io.Writer) error {
	d.flushAll()
	if err := d.pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// SaveFile writes the document to path.
func (d *Document) SaveFile(path string) error {
	d.flushAll()
	if err := d.pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func (d *Document) flushAll() {
	for len(d.stack) > 0 {
		d.Restore()
	}
	for len(d.smudges) > 0 {
		d.paintSmudge()
	}
}

func (d *Document) Save() { d.stack = append(d.stack, d.st); d.st.clips = 0 }

func (d *Document) Restore() {
	n := len(d.stack)
	if n == 0 {
		return
	}
	for len(d.smudges) > 0 && d.smudges[len(d.smudges)-1].depth >= n {
		d.paintSmudge()
	}
	for i := 0; i < d.st.clips; i++ {
		d.pdf.ClipEnd()
	}
	d.st = d.stack[n-1]
	d.stack = d.stack[:n-1]
}

func (d *Document) Translate(x, y float64) { d.st.ox += x; d.st.oy += y }

func (d *Document) ClipRect(x, y, w, h float64) {
	r := vector.R(x+d.st.ox, y+d.st.oy, w, h)
	d.st.clip = d.st.clip.Intersect(r)
	d.pdf.ClipRect(r.X, r.Y, r.W, r.H, false)
	d.st.clips++
}

// SetFilter starts or ends a smudged region. Only one region per save depth is open.
func (d *Document) SetFilter(f paint.Filter) {
	if n := len(d.smudges); n > 0 && d.smudges[n-1].depth == len(d.stack) {
		d.paintSmudge()
	}
	d.st.filter = f
	if !f.IsNone() {
		d.smudges = append(d.smudges, &smudge{depth: len(d.stack), clip: d.st.clip})
	}
}

func (d *Document) smudging() *smudge {
	if n := len(d.smudges); n > 0 {
		return d.smudges[n-1]
	}
	return nil
}

func (d *Document) cover(r vector.Rect) {
	s := d.smudging()
	if s.used {
		s.area = s.area.Union(r)
	} else {
		s.area, s.used = r, true
	}
}

func (d *Document) paintSmudge() {
	n := len(d.smudges)
	s := d.smudges[n-1]
	d.smudges = d.smudges[:n-1]
	if !s.used {
		return
	}
	r := s.area.Intersect(s.clip)
	if r.Empty() {
		return
	}
	if outer := d.smudging(); outer != nil {
		d.cover(r)
		return
	}
	d.pdf.SetFillColor(int(SmudgeColor.R), int(SmudgeColor.G), int(SmudgeColor.B))
	d.pdf.Rect(r.X, r.Y, r.W, r.H, "F")
}

func (d *Document) BeginPath() { d.path = d.path[:0] }

func (d *Document) Rect(x, y, w, h float64) {
	d.path = append(d.path, vector.R(x+d.st.ox, y+d.st.oy, w, h))
}

func (d *Document) SetFill(f paint.Fill)           { d.st.fill = f }
func (d *Document) SetStrokeColor(c paint.Color)   { d.st.stroke = c }
func (d *Document) SetLineWidth(w float64)         { d.st.width = w }
func (d *Document) SetFont(f paint.Font)           { d.st.font = f }
func (d *Document) SetTextAlign(a paint.TextAlign) { d.st.align = a }
func (d *Document) SetTextBaseline(b paint.TextBaseline) {
	d.st.base = b
}

// SetShadow is accepted and ignored; PDF text is drawn without shadows.
func (d *Document) SetShadow(paint.Shadow) {}

func (d *Document) Fill() {
	for _, r := range d.path {
		if d.smudging() != nil {
			d.cover(r)
			continue
		}
		if g := d.st.fill.Gradient; g != nil && len(g.Stops) > 0 {
			d.gradientRect(r, g)
			continue
		}
		c := d.st.fill.Color
		d.pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
		d.pdf.Rect(r.X, r.Y, r.W, r.H, "F")
	}
}

// gradientRect fills r with the first and last stop of g. The gradient vector is
// given relative to r.
func (d *Document) gradientRect(r vector.Rect, g *paint.LinearGradient) {
	from, to := g.Stops[0].Color, g.Stops[len(g.Stops)-1].Color
	rel := func(v, origin, size float64) float64 {
		if size == 0 {
			return 0
		}
		return (v - origin) / size
	}
	x0, y0 := g.X0+d.st.ox, g.Y0+d.st.oy
	x1, y1 := g.X1+d.st.ox, g.Y1+d.st.oy
	d.pdf.LinearGradient(r.X, r.Y, r.W, r.H,
		int(from.R), int(from.G), int(from.B),
		int(to.R), int(to.G), int(to.B),
		rel(x0, r.X, r.W), rel(y0, r.Y, r.H), rel(x1, r.X, r.W), rel(y1, r.Y, r.H))
}

func (d *Document) Stroke() {
	c := d.st.stroke
	d.pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
	d.pdf.SetLineWidth(d.st.width)
	for _, r := range d.path {
		if d.smudging() != nil {
			d.cover(r.Inset(-d.st.width/2, -d.st.width/2))
			continue
		}
		d.pdf.Rect(r.X, r.Y, r.W, r.H, "D")
	}
}

// useFont selects the core Helvetica face matching the current font and returns its size.
func (d *Document) useFont() float64 {
	style := ""
	if d.st.font.Bold {
		style = "B"
	}
	size := d.st.font.Size
	if size <= 0 {
		size = 12
	}
	d.pdf.SetFont("Helvetica", style, size)
	return size
}

func (d *Document) MeasureText(s string) float64 {
	d.useFont()
	return d.pdf.GetStringWidth(d.tr(s))
}

func (d *Document) FillText(s string, x, y float64) {
	if s == "" {
		return
	}
	size := d.useFont()
	txt := d.tr(s)
	w := d.pdf.GetStringWidth(txt)
	bx, by := x+d.st.ox, y+d.st.oy
	switch d.st.align {
	case paint.AlignCenter:
		bx -= w / 2
	case paint.AlignRight:
		bx -= w
	}
	switch d.st.base {
	case paint.BaselineMiddle:
		by += size * 0.35
	case paint.BaselineTop:
		by += size * 0.8
	}
	if d.smudging() != nil {
		d.cover(vector.R(bx, by-size, math.Max(w, 1), size*1.2))
		return
	}
	c := d.st.fill.Color
	if g := d.st.fill.Gradient; g != nil && len(g.Stops) > 0 {
		c = g.Stops[0].Color
	}
	d.pdf.SetTextColor(int(c.R), int(c.G), int(c.B))
	d.pdf.Text(bx, by, txt)
}

// Err returns the first error gofpdf recorded.
func (d *Document) Err() error { return d.pdf.Error() }
