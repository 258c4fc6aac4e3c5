/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package paint

import (
	"fmt"
	"strings"

	"icyhider/internal/textlayout"
)

// Op is one call captured by a Recorder together with the state in effect when it ran.
type Op struct {
	Name   string
	Args   []float64
	Text   string
	Filter Filter
	Fill   Fill
	Stroke Color
	Font   Font
	Shadow Shadow
	Depth  int
}

// String renders the op compactly, e.g. "fillText(Hidden 0,15) filter=blur(20px)".
func (o Op) String() string {
	var b strings.Builder
	b.WriteString(o.Name)
	if o.Text != "" || len(o.Args) > 0 {
		b.WriteByte('(')
		if o.Text != "" {
			b.WriteString(o.Text)
			if len(o.Args) > 0 {
				b.WriteByte(' ')
			}
		}
		for i, a := range o.Args {
			if i > 0 {
				b.WriteByte(',')
			}
			fmt.Fprintf(&b, "%g", a)
		}
		b.WriteByte(')')
	}
	if !o.Filter.IsNone() {
		b.WriteString(" filter=" + o.Filter.String())
	}
	return b.String()
}

type recState struct {
	filter Filter
	fill   Fill
	stroke Color
	width  float64
	font   Font
	align  TextAlign
	base   TextBaseline
	shadow Shadow
}

// Recorder is a Context that records every call. It is used by tests and by the
// render command's dry-run output.
type Recorder struct {
	// NoRoundRect hides the rounded-rectangle capability.
	NoRoundRect bool

	Ops   []Op
	state recState
	stack []recState
}

func NewRecorder() *Recorder { return &Recorder{state: recState{width: 1}} }

func (r *Recorder) rec(name, text string, args ...float64) {
	r.Ops = append(r.Ops, Op{
		Name: name, Args: args, Text: text,
		Filter: r.state.filter, Fill: r.state.fill, Stroke: r.state.stroke,
		Font: r.state.font, Shadow: r.state.shadow, Depth: len(r.stack),
	})
}

// Mark records a named marker; test draw callbacks use it to show they ran.
func (r *Recorder) Mark(name string) { r.rec("mark", name) }

func (r *Recorder) Save() {
	r.rec("save", "")
	r.stack = append(r.stack, r.state)
}

func (r *Recorder) Restore() {
	if n := len(r.stack); n > 0 {
		r.state = r.stack[n-1]
		r.stack = r.stack[:n-1]
	}
	r.rec("restore", "")
}

func (r *Recorder) Translate(x, y float64)      { r.rec("translate", "", x, y) }
func (r *Recorder) ClipRect(x, y, w, h float64) { r.rec("clip", "", x, y, w, h) }
func (r *Recorder) SetFilter(f Filter) {
	r.state.filter = f
	r.rec("filter", f.String())
}
func (r *Recorder) BeginPath()              { r.rec("beginPath", "") }
func (r *Recorder) Rect(x, y, w, h float64) { r.rec("rect", "", x, y, w, h) }
func (r *Recorder) RoundRect(x, y, w, h float64, rad Radii) {
	r.rec("roundRect", "", x, y, w, h, rad[0], rad[1], rad[2], rad[3])
}
func (r *Recorder) CanRoundRect() bool     { return !r.NoRoundRect }
func (r *Recorder) SetFill(f Fill)         { r.state.fill = f }
func (r *Recorder) SetStrokeColor(c Color) { r.state.stroke = c }
func (r *Recorder) SetLineWidth(w float64) { r.state.width = w; r.rec("lineWidth", "", w) }
func (r *Recorder) Fill()                  { r.rec("fill", "") }
func (r *Recorder) Stroke()                { r.rec("stroke", "", r.state.width) }
func (r *Recorder) SetFont(f Font)         { r.state.font = f }
func (r *Recorder) SetTextAlign(a TextAlign) {
	r.state.align = a
}
func (r *Recorder) SetTextBaseline(b TextBaseline) { r.state.base = b }
func (r *Recorder) SetShadow(s Shadow)             { r.state.shadow = s }
func (r *Recorder) FillText(text string, x, y float64) {
	r.rec("fillText", text, x, y)
}

var measureFonts = textlayout.NewGoProvider()

// MeasureText measures with the Go fonts, like the raster backend, and is not recorded.
func (r *Recorder) MeasureText(text string) float64 {
	spec := textlayout.FontSpec{SizePt: float32(r.state.font.Size), Weight: 400}
	if r.state.font.Bold {
		spec.Weight = 700
	}
	w, _ := textlayout.Measure(measureFonts, text, spec)
	return float64(w)
}

// Names returns the op names in order.
func (r *Recorder) Names() []string {
	out := make([]string, len(r.Ops))
	for i, o := range r.Ops {
		out[i] = o.Name
	}
	return out
}

// Find returns the ops with the given name.
func (r *Recorder) Find(name string) []Op {
	var out []Op
	for _, o := range r.Ops {
		if o.Name == name {
			out = append(out, o)
		}
	}
	return out
}

// Marks returns the marker names in order.
func (r *Recorder) Marks() []string {
	var out []string
	for _, o := range r.Ops {
		if o.Name == "mark" {
			out = append(out, o.Text)
		}
	}
	return out
}

// Reset clears recorded ops and state.
func (r *Recorder) Reset() {
	r.Ops = nil
	r.stack = nil
	r.state = recState{width: 1}
}

// Balanced reports whether every Save was matched by a Restore.
func (r *Recorder) Balanced() bool { return len(r.stack) == 0 }
