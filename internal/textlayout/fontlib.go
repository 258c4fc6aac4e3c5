/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import (
	"fmt"
	"os"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// FamilyGo is the family GoFonts registers.
const FamilyGo = "Go"

// FontLibrary stores loaded OpenType fonts mapped by family/weight/italic.
type FontLibrary struct {
	fonts map[fontKey]*opentype.Font
}

type fontKey struct {
	family string
	weight int
	italic bool
}

func NewFontLibrary() *FontLibrary { return &FontLibrary{fonts: make(map[fontKey]*opentype.Font)} }

var (
	goOnce sync.Once
	goLib  *FontLibrary
)

// GoFonts returns a shared library holding Go Regular (400) and Go Bold (700).
func GoFonts() *FontLibrary {
	goOnce.Do(func() {
		goLib = NewFontLibrary()
		// The embedded fonts are known to parse.
		_ = goLib.Load(FamilyGo, 400, false, goregular.TTF)
		_ = goLib.Load(FamilyGo, 700, false, gobold.TTF)
	})
	return goLib
}

// Load parses font data into the library under the given family/weight/italic.
func (fl *FontLibrary) Load(family string, weight int, italic bool, data []byte) error {
	if fl.fonts == nil {
		fl.fonts = make(map[fontKey]*opentype.Font)
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return fmt.Errorf("parse font %s: %w", family, err)
	}
	fl.fonts[fontKey{family: family, weight: weight, italic: italic}] = f
	return nil
}

// LoadTTF loads a font file into the library under the given family/weight/italic.
func (fl *FontLibrary) LoadTTF(family string, weight int, italic bool, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read font %s: %w", path, err)
	}
	return fl.Load(family, weight, italic, data)
}

func (fl *FontLibrary) find(spec FontSpec) *opentype.Font {
	if fl == nil || fl.fonts == nil {
		return nil
	}
	if f, ok := fl.fonts[fontKey{family: spec.Family, weight: spec.Weight, italic: spec.Italic}]; ok {
		return f
	}
	// Same family, closest weight.
	var best *opentype.Font
	bestDist := 1 << 30
	for k, f := range fl.fonts {
		if k.family != spec.Family {
			continue
		}
		d := k.weight - spec.Weight
		if d < 0 {
			d = -d
		}
		if d < bestDist {
			best, bestDist = f, d
		}
	}
	return best
}

// OTProvider resolves FontSpec using a FontLibrary and falls back to another Provider.
// Faces are cached per spec.
type OTProvider struct {
	Lib      *FontLibrary
	DPI      float64 // default 72 if zero, so points equal pixels
	Fallback Provider

	mu    sync.Mutex
	faces map[FontSpec]cachedFace
}

type cachedFace struct {
	face font.Face
	met  Metrics
}

// NewGoProvider resolves every spec to the Go family.
func NewGoProvider() *OTProvider { return &OTProvider{Lib: GoFonts()} }

func (p *OTProvider) Resolve(spec FontSpec) (font.Face, Metrics) {
	if spec.SizePt <= 0 {
		spec.SizePt = 12
	}
	if spec.Family == "" {
		spec.Family = FamilyGo
	}
	if spec.Weight == 0 {
		spec.Weight = 400
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if c, ok := p.faces[spec]; ok {
		return c.face, c.met
	}
	dpi := p.DPI
	if dpi <= 0 {
		dpi = 72
	}
	if f := p.Lib.find(spec); f != nil {
		face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: float64(spec.SizePt), DPI: dpi, Hinting: font.HintingFull})
		if err == nil {
			m := face.Metrics()
			c := cachedFace{face: face, met: Metrics{
				Ascent:  float32(m.Ascent.Round()),
				Descent: float32(m.Descent.Round()),
				LineGap: float32(m.Height.Round() - m.Ascent.Round() - m.Descent.Round()),
			}}
			if p.faces == nil {
				p.faces = make(map[FontSpec]cachedFace)
			}
			p.faces[spec] = c
			return c.face, c.met
		}
	}
	fb := p.Fallback
	if fb == nil {
		fb = BasicProvider{}
	}
	return fb.Resolve(spec)
}
