/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

// Basic 2D geometry for the node canvas. Graph space and screen space are both
// float64 to match the paint contexts.

import "math"

// Pt is a 2D point.
type Pt struct{ X, Y float64 }

// Size is a width/height pair.
type Size struct{ W, H float64 }

// Rect is an axis-aligned rectangle defined by min corner and size.
type Rect struct {
	X, Y float64
	W, H float64
}

func R(x, y, w, h float64) Rect { return Rect{X: x, Y: y, W: w, H: h} }

// At returns a rect of size s with its min corner at p.
func At(p Pt, s Size) Rect { return Rect{X: p.X, Y: p.Y, W: s.W, H: s.H} }

func (r Rect) Min() Pt     { return Pt{r.X, r.Y} }
func (r Rect) Max() Pt     { return Pt{r.X + r.W, r.Y + r.H} }
func (r Rect) Size() Size  { return Size{r.W, r.H} }
func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

func (r Rect) Contains(p Pt) bool {
	return p.X >= r.X && p.Y >= r.Y && p.X <= r.X+r.W && p.Y <= r.Y+r.H
}

// Inset returns a rectangle inset by dx,dy on all sides (negative grows).
func (r Rect) Inset(dx, dy float64) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, W: r.W - 2*dx, H: r.H - 2*dy}
}

// Offset moves the rectangle by d.
func (r Rect) Offset(dx, dy float64) Rect { return Rect{X: r.X + dx, Y: r.Y + dy, W: r.W, H: r.H} }

// Union returns the minimal rect containing both.
func (r Rect) Union(o Rect) Rect {
	minX := math.Min(r.X, o.X)
	minY := math.Min(r.Y, o.Y)
	maxX := math.Max(r.X+r.W, o.X+o.W)
	maxY := math.Max(r.Y+r.H, o.Y+o.H)
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// Intersect returns the overlap of both rectangles; the result is Empty when they are disjoint.
func (r Rect) Intersect(o Rect) Rect {
	minX := math.Max(r.X, o.X)
	minY := math.Max(r.Y, o.Y)
	maxX := math.Min(r.X+r.W, o.X+o.W)
	maxY := math.Min(r.Y+r.H, o.Y+o.H)
	if maxX < minX || maxY < minY {
		return Rect{X: minX, Y: minY}
	}
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}
