/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package raster implements paint.Context on a gogpu/gg pixel canvas. Blur filters
// and text shadows are rendered on offscreen layers blurred with imaging.
package raster

import (
	"image"
	"image/png"
	"io"
	"math"
	"os"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	applog "icyhider/internal/log"
	"icyhider/internal/paint"
)

var loggerOnce sync.Once

type state struct {
	ox, oy float64
	clip   image.Rectangle
	filter paint.Filter
	fill   paint.Fill
	stroke paint.Color
	width  float64
	font   paint.Font
	align  paint.TextAlign
	base   paint.TextBaseline
	shadow paint.Shadow
}

// layer collects drawing while a blur filter is active.
type layer struct {
	dc    *gg.Context
	blur  float64
	clip  image.Rectangle
	depth int
}

// Canvas is a raster paint.Context. Coordinates are translated on the Go side so the
// gg contexts always work in device space.
type Canvas struct {
	base   *gg.Context
	w, h   int
	st     state
	stack  []state
	layers []*layer
	fonts  *fonts
}

// New returns a transparent canvas of w×h pixels.
func New(w, h int) *Canvas {
	loggerOnce.Do(func() { gg.SetLogger(applog.WithComponent("paint")) })
	c := &Canvas{base: gg.NewContext(w, h), w: w, h: h, fonts: defaultFonts()}
	c.st = state{clip: image.Rect(0, 0, w, h), width: 1, font: paint.Font{Size: 12}}
	return c
}

func (c *Canvas) Width() int  { return c.w }
func (c *Canvas) Height() int { return c.h }

// Clear fills the canvas with col.
func (c *Canvas) Clear(col paint.Color) { c.base.ClearWithColor(toRGBA(col)) }

// Image flushes pending layers and returns the canvas pixels.
func (c *Canvas) Image() image.Image {
	for len(c.layers) > 0 {
		c.composite()
	}
	return c.base.Image()
}

// EncodePNG writes the canvas as PNG.
func (c *Canvas) EncodePNG(w io.Writer) error { return png.Encode(w, c.Image()) }

// SavePNG writes the canvas to path.
func (c *Canvas) SavePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := c.EncodePNG(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func (c *Canvas) target() *gg.Context {
	if n := len(c.layers); n > 0 {
		return c.layers[n-1].dc
	}
	return c.base
}

func (c *Canvas) applyClip(dc *gg.Context) {
	dc.ResetClip()
	if c.st.clip != image.Rect(0, 0, c.w, c.h) {
		r := c.st.clip
		dc.ClipRect(float64(r.Min.X), float64(r.Min.Y), float64(r.Dx()), float64(r.Dy()))
	}
}

func (c *Canvas) Save() {
	c.stack = append(c.stack, c.st)
}

func (c *Canvas) Restore() {
	n := len(c.stack)
	if n == 0 {
		return
	}
	c.st = c.stack[n-1]
	c.stack = c.stack[:n-1]
	for len(c.layers) > 0 && c.layers[len(c.layers)-1].depth > len(c.stack) {
		c.composite()
	}
	c.applyClip(c.target())
}

func (c *Canvas) Translate(x, y float64) {
	c.st.ox += x
	c.st.oy += y
}

func (c *Canvas) ClipRect(x, y, w, h float64) {
	r := image.Rect(
		int(math.Floor(x+c.st.ox)), int(math.Floor(y+c.st.oy)),
		int(math.Ceil(x+w+c.st.ox)), int(math.Ceil(y+h+c.st.oy)),
	)
	c.st.clip = c.st.clip.Intersect(r)
	c.applyClip(c.target())
}

// SetFilter starts a blur layer, or composites the layer opened at this save depth
// when the filter is cleared.
func (c *Canvas) SetFilter(f paint.Filter) {
	if n := len(c.layers); n > 0 && c.layers[n-1].depth == len(c.stack) {
		c.composite()
	}
	c.st.filter = f
	if f.IsNone() {
		c.applyClip(c.target())
		return
	}
	l := &layer{dc: gg.NewContext(c.w, c.h), blur: f.Blur, clip: c.st.clip, depth: len(c.stack)}
	c.layers = append(c.layers, l)
	c.applyClip(l.dc)
}

// composite blurs the top layer, crops it to its clip and draws it onto its parent.
func (c *Canvas) composite() {
	n := len(c.layers)
	l := c.layers[n-1]
	c.layers = c.layers[:n-1]
	clip := l.clip.Intersect(image.Rect(0, 0, c.w, c.h))
	if clip.Empty() {
		_ = l.dc.Close()
		return
	}
	blurred := imaging.Blur(l.dc.Image(), l.blur)
	_ = l.dc.Close()
	cropped := imaging.Crop(blurred, clip)
	dst := c.target()
	dst.ResetClip()
	dst.DrawImage(gg.ImageBufFromImage(cropped), float64(clip.Min.X), float64(clip.Min.Y))
	c.applyClip(dst)
}

func (c *Canvas) BeginPath() { c.target().ClearPath() }

func (c *Canvas) Rect(x, y, w, h float64) {
	c.target().DrawRectangle(x+c.st.ox, y+c.st.oy, w, h)
}

// RoundRect appends a rectangle with per-corner radii.
func (c *Canvas) RoundRect(x, y, w, h float64, r paint.Radii) {
	dc := c.target()
	x += c.st.ox
	y += c.st.oy
	lim := math.Min(w, h) / 2
	for i := range r {
		r[i] = math.Max(0, math.Min(r[i], lim))
	}
	// Cubic approximation of a quarter circle.
	const k = 0.5522847498
	tl, tr, br, bl := r[0], r[1], r[2], r[3]
	dc.MoveTo(x+tl, y)
	dc.LineTo(x+w-tr, y)
	if tr > 0 {
		dc.CubicTo(x+w-tr+tr*k, y, x+w, y+tr-tr*k, x+w, y+tr)
	}
	dc.LineTo(x+w, y+h-br)
	if br > 0 {
		dc.CubicTo(x+w, y+h-br+br*k, x+w-br+br*k, y+h, x+w-br, y+h)
	}
	dc.LineTo(x+bl, y+h)
	if bl > 0 {
		dc.CubicTo(x+bl-bl*k, y+h, x, y+h-bl+bl*k, x, y+h-bl)
	}
	dc.LineTo(x, y+tl)
	if tl > 0 {
		dc.CubicTo(x, y+tl-tl*k, x+tl-tl*k, y, x+tl, y)
	}
	dc.ClosePath()
}

func (c *Canvas) SetFill(f paint.Fill)           { c.st.fill = f }
func (c *Canvas) SetStrokeColor(col paint.Color) { c.st.stroke = col }
func (c *Canvas) SetLineWidth(w float64)         { c.st.width = w }

func (c *Canvas) Fill() {
	dc := c.target()
	dc.SetFillBrush(c.brush(c.st.fill))
	if err := dc.FillPreserve(); err != nil {
		gg.Logger().Warn("fill failed", "err", err)
	}
}

func (c *Canvas) Stroke() {
	dc := c.target()
	dc.SetStrokeBrush(gg.Solid(toRGBA(c.st.stroke)))
	dc.SetLineWidth(c.st.width)
	if err := dc.StrokePreserve(); err != nil {
		gg.Logger().Warn("stroke failed", "err", err)
	}
}

// brush converts a fill to a gg brush. Gradient endpoints move to device space.
func (c *Canvas) brush(f paint.Fill) gg.Brush {
	if f.Gradient == nil || len(f.Gradient.Stops) == 0 {
		return gg.Solid(toRGBA(f.Color))
	}
	g := f.Gradient
	b := gg.NewLinearGradientBrush(g.X0+c.st.ox, g.Y0+c.st.oy, g.X1+c.st.ox, g.Y1+c.st.oy)
	for _, s := range g.Stops {
		b.AddColorStop(s.Offset, toRGBA(s.Color))
	}
	return b
}

func (c *Canvas) SetFont(f paint.Font)                 { c.st.font = f }
func (c *Canvas) SetTextAlign(a paint.TextAlign)       { c.st.align = a }
func (c *Canvas) SetTextBaseline(b paint.TextBaseline) { c.st.base = b }
func (c *Canvas) SetShadow(s paint.Shadow)             { c.st.shadow = s }

func (c *Canvas) MeasureText(s string) float64 {
	dc := c.target()
	dc.SetFont(c.fonts.face(c.st.font))
	w, _ := dc.MeasureString(s)
	return w
}

// FillText draws text with the current fill color. gg draws text in device space and
// ignores the clip, which is acceptable for the short labels drawn here.
func (c *Canvas) FillText(s string, x, y float64) {
	if s == "" {
		return
	}
	face := c.fonts.face(c.st.font)
	dc := c.target()
	dc.SetFont(face)
	w, h := dc.MeasureString(s)
	bx, by := x+c.st.ox, y+c.st.oy
	switch c.st.align {
	case paint.AlignCenter:
		bx -= w / 2
	case paint.AlignRight:
		bx -= w
	}
	switch c.st.base {
	case paint.BaselineMiddle:
		by += h * 0.3
	case paint.BaselineTop:
		by += h * 0.8
	}
	if sh := c.st.shadow; !sh.IsNone() {
		tmp := gg.NewContext(c.w, c.h)
		tmp.SetFont(face)
		tmp.SetColor(sh.Color.NRGBA())
		tmp.DrawString(s, bx+sh.OffsetX, by+sh.OffsetY)
		var img image.Image = tmp.Image()
		_ = tmp.Close()
		if sh.Blur > 0 {
			// A canvas shadow blur is twice the Gaussian sigma.
			img = imaging.Blur(img, sh.Blur/2)
		}
		dc.DrawImage(gg.ImageBufFromImage(img), 0, 0)
	}
	col := c.st.fill.Color
	if g := c.st.fill.Gradient; g != nil && len(g.Stops) > 0 {
		col = g.Stops[0].Color
	}
	dc.SetColor(col.NRGBA())
	dc.DrawString(s, bx, by)
}

func toRGBA(c paint.Color) gg.RGBA {
	return gg.RGBA2(float64(c.R)/255, float64(c.G)/255, float64(c.B)/255, float64(c.A)/255)
}

type faceKey struct {
	size float64
	bold bool
}

// fonts caches Go font faces by size and weight.
type fonts struct {
	mu      sync.Mutex
	regular *text.FontSource
	bold    *text.FontSource
	faces   map[faceKey]text.Face
}

var (
	sharedFonts     *fonts
	sharedFontsOnce sync.Once
)

func defaultFonts() *fonts {
	sharedFontsOnce.Do(func() {
		f := &fonts{faces: map[faceKey]text.Face{}}
		var err error
		if f.regular, err = text.NewFontSource(goregular.TTF); err != nil {
			applog.WithComponent("paint").Error("load regular font", "err", err)
		}
		if f.bold, err = text.NewFontSource(gobold.TTF); err != nil {
			applog.WithComponent("paint").Error("load bold font", "err", err)
		}
		sharedFonts = f
	})
	return sharedFonts
}

func (f *fonts) face(pf paint.Font) text.Face {
	size := pf.Size
	if size <= 0 {
		size = 12
	}
	k := faceKey{size: size, bold: pf.Bold}
	f.mu.Lock()
	defer f.mu.Unlock()
	if face, ok := f.faces[k]; ok {
		return face
	}
	src := f.regular
	if pf.Bold && f.bold != nil {
		src = f.bold
	}
	if src == nil {
		return nil
	}
	face := src.Face(size)
	f.faces[k] = face
	return face
}
