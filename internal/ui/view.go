/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"image"

	"icyhider/internal/graph"
	"icyhider/internal/paint"
	"icyhider/internal/paint/raster"
	"icyhider/internal/vector"
)

// View is the toolkit-independent state of the graph canvas: the pan offset and
// the mapping of pointer input to graph events. All methods run on the UI thread.
type View struct {
	g      *graph.Graph
	bg     paint.Color
	offset vector.Pt
}

// NewView shows g over bg.
func NewView(g *graph.Graph, bg paint.Color) *View { return &View{g: g, bg: bg} }

// Offset returns the current pan.
func (v *View) Offset() vector.Pt { return v.offset }

// ToGraph maps a widget position to graph coordinates.
func (v *View) ToGraph(x, y float64) vector.Pt {
	return vector.Pt{X: x - v.offset.X, Y: y - v.offset.Y}
}

// Render paints the graph into a w×h image.
func (v *View) Render(w, h int) image.Image {
	w, h = max(w, 1), max(h, 1)
	c := raster.New(w, h)
	c.Clear(v.bg)
	c.Translate(v.offset.X, v.offset.Y)
	v.g.Draw(c)
	return c.Image()
}

// Tap selects the node under p. With additive the node's selection toggles and
// other nodes keep theirs; tapping empty space clears the selection.
func (v *View) Tap(p vector.Pt, additive bool) *graph.Node {
	n := v.g.NodeAt(p)
	switch {
	case n == nil:
		for _, o := range v.g.Nodes() {
			if o.Selected {
				v.g.Deselect(o)
			}
		}
	case additive && n.Selected:
		v.g.Deselect(n)
	default:
		v.g.Select(n, additive)
	}
	return n
}

// Hover moves the pointer to p.
func (v *View) Hover(p vector.Pt) *graph.Node { return v.g.Hover(p) }

// Leave ends hovering when the pointer exits the canvas.
func (v *View) Leave() {
	b := v.g.Bounds()
	v.g.Hover(vector.Pt{X: b.X - 1, Y: b.Y - 1})
}

// Pan shifts the view.
func (v *View) Pan(dx, dy float64) {
	v.offset.X += dx
	v.offset.Y += dy
	v.g.SetDirty()
}
