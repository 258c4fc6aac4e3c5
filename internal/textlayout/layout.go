/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package textlayout measures and fits short labels. Measurement is isolated
// behind Provider so recording contexts can measure the same way a raster does.
package textlayout

import (
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// Ellipsis is appended to labels cut by Ellipsize.
const Ellipsis = "…"

// FontSpec describes a requested font.
type FontSpec struct {
	Family string // logical family name, empty means Go
	SizePt float32
	Weight int // 100..900
	Italic bool
}

// Metrics provides font metrics in pixels for the resolved face.
type Metrics struct {
	Ascent, Descent, LineGap float32
}

// Provider maps FontSpec to a concrete font.Face.
type Provider interface {
	Resolve(FontSpec) (font.Face, Metrics)
}

// BasicProvider uses x/image/basicfont Face7x13 for deterministic tests.
type BasicProvider struct{}

func (BasicProvider) Resolve(FontSpec) (font.Face, Metrics) {
	f := basicfont.Face7x13
	m := f.Metrics()
	return f, Metrics{
		Ascent:  float32(m.Ascent.Round()),
		Descent: float32(m.Descent.Round()),
		LineGap: float32(m.Height.Round() - m.Ascent.Round() - m.Descent.Round()),
	}
}

func advance(d *font.Drawer, s string) float32 {
	return float32(d.MeasureString(s)) / 64 // fixed.Int26_6 to px
}

// Measure returns the advance width and line height of s in spec.
func Measure(provider Provider, s string, spec FontSpec) (w, h float32) {
	if provider == nil {
		provider = BasicProvider{}
	}
	face, met := provider.Resolve(spec)
	return advance(&font.Drawer{Face: face}, s), met.Ascent + met.Descent
}

// Ellipsize shortens s rune by rune until it, plus Ellipsis, fits max as reported
// by measure. Text that fits is returned unchanged; when nothing fits only the
// ellipsis remains.
func Ellipsize(measure func(string) float64, s string, max float64) string {
	if s == "" || measure(s) <= max {
		return s
	}
	r := []rune(s)
	lo, hi := 0, len(r)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if measure(string(r[:mid])+Ellipsis) <= max {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return string(r[:lo]) + Ellipsis
}
