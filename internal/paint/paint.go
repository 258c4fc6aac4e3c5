/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package paint defines the drawing surface the node renderer talks to. It mirrors the
// subset of a 2D canvas API the overlay needs: state save/restore, rectangular clips,
// a blur filter, linear gradients, strokes and text with a drop shadow.
//
// Rounded rectangles are an optional capability; see RoundRecter.
package paint

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is an sRGB color with straight alpha.
type Color struct{ R, G, B, A uint8 }

var (
	Black       = Color{0, 0, 0, 255}
	White       = Color{255, 255, 255, 255}
	Transparent = Color{}
)

// ParseHex parses "1E3C72", "#1E3C72" or the short "#abc" form.
func ParseHex(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Color{}, fmt.Errorf("empty color")
	}
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return Color{}, fmt.Errorf("parse color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return Color{R: r, G: g, B: b, A: 255}, nil
}

// HexOr parses s and returns def when s is empty or malformed.
func HexOr(s string, def Color) Color {
	c, err := ParseHex(s)
	if err != nil {
		return def
	}
	return c
}

// RGBA builds a color from 8-bit channels and a 0..1 alpha.
func RGBA(r, g, b uint8, a float64) Color {
	if a < 0 {
		a = 0
	}
	if a > 1 {
		a = 1
	}
	return Color{R: r, G: g, B: b, A: uint8(a*255 + 0.5)}
}

// Hex renders the color as RRGGBB without the leading '#'.
func (c Color) Hex() string { return fmt.Sprintf("%02X%02X%02X", c.R, c.G, c.B) }

func (c Color) NRGBA() color.NRGBA { return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A} }

// Filter is a paint filter. The zero value means no filter.
type Filter struct {
	Blur float64 // Gaussian blur radius in pixels
}

// Blur returns a blur filter of radius px.
func Blur(px float64) Filter { return Filter{Blur: px} }

func (f Filter) IsNone() bool { return f.Blur <= 0 }

// String renders the filter in CSS syntax.
func (f Filter) String() string {
	if f.IsNone() {
		return "none"
	}
	return "blur(" + strconv.FormatFloat(f.Blur, 'f', -1, 64) + "px)"
}

// ParseFilter reads the CSS form produced by String. Unknown input yields no filter.
func ParseFilter(css string) Filter {
	css = strings.TrimSpace(strings.ToLower(css))
	inner, ok := strings.CutPrefix(css, "blur(")
	if !ok {
		return Filter{}
	}
	inner = strings.TrimSuffix(strings.TrimSuffix(inner, ")"), "px")
	v, err := strconv.ParseFloat(strings.TrimSpace(inner), 64)
	if err != nil || v <= 0 {
		return Filter{}
	}
	return Filter{Blur: v}
}

// Stop is one color stop of a gradient.
type Stop struct {
	Offset float64
	Color  Color
}

// LinearGradient runs from (X0,Y0) to (X1,Y1) in the current user space.
type LinearGradient struct {
	X0, Y0, X1, Y1 float64
	Stops          []Stop
}

// NewLinearGradient returns a two-stop gradient.
func NewLinearGradient(x0, y0, x1, y1 float64, from, to Color) LinearGradient {
	return LinearGradient{X0: x0, Y0: y0, X1: x1, Y1: y1, Stops: []Stop{{0, from}, {1, to}}}
}

// Fill is either a solid color or a gradient.
type Fill struct {
	Color    Color
	Gradient *LinearGradient
}

// Font selects a face by pixel size and weight.
type Font struct {
	Size float64
	Bold bool
}

// String renders the font in CSS shorthand.
func (f Font) String() string {
	s := strconv.FormatFloat(f.Size, 'f', -1, 64) + "px sans-serif"
	if f.Bold {
		return "bold " + s
	}
	return s
}

// Shadow applies to text drawn while it is set. The zero value disables it.
type Shadow struct {
	Color            Color
	Blur             float64
	OffsetX, OffsetY float64
}

func (s Shadow) IsNone() bool { return s.Color.A == 0 }

// TextAlign positions text horizontally relative to the x coordinate.
type TextAlign int

const (
	AlignLeft TextAlign = iota
	AlignCenter
	AlignRight
)

// TextBaseline positions text vertically relative to the y coordinate.
type TextBaseline int

const (
	BaselineAlphabetic TextBaseline = iota
	BaselineMiddle
	BaselineTop
)

// Context is a stateful 2D drawing surface.
type Context interface {
	// Save pushes clip, transform, filter and paint state; Restore pops it.
	Save()
	Restore()
	Translate(x, y float64)

	// ClipRect intersects the clip with a rectangle in user space.
	ClipRect(x, y, w, h float64)
	SetFilter(f Filter)

	// BeginPath discards the current path; Rect appends a rectangle to it.
	BeginPath()
	Rect(x, y, w, h float64)
	SetFill(f Fill)
	SetStrokeColor(c Color)
	SetLineWidth(w float64)
	// Fill and Stroke paint the current path without discarding it.
	Fill()
	Stroke()

	SetFont(f Font)
	SetTextAlign(a TextAlign)
	SetTextBaseline(b TextBaseline)
	SetShadow(s Shadow)
	FillText(text string, x, y float64)
	// MeasureText returns the advance width of text in the current font.
	MeasureText(text string) float64
}

// Radii are corner radii: top-left, top-right, bottom-right, bottom-left.
type Radii [4]float64

// RoundRecter is implemented by contexts that can append rounded rectangles to the path.
type RoundRecter interface {
	RoundRect(x, y, w, h float64, r Radii)
}

// RoundRect appends a rounded rectangle when ctx supports it and a plain rectangle otherwise.
// It reports whether corners were rounded.
func RoundRect(ctx Context, x, y, w, h float64, r Radii) bool {
	if rr, ok := ctx.(RoundRecter); ok {
		if c, ok := ctx.(interface{ CanRoundRect() bool }); !ok || c.CanRoundRect() {
			rr.RoundRect(x, y, w, h, r)
			return true
		}
	}
	ctx.Rect(x, y, w, h)
	return false
}
