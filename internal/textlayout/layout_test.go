/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestMeasure_Deterministic(t *testing.T) {
	w1, h1 := Measure(BasicProvider{}, "ABC", FontSpec{})
	w2, h2 := Measure(BasicProvider{}, "ABC", FontSpec{SizePt: 30})
	if w1 != 21 || w1 != w2 || h1 != h2 {
		t.Fatalf("expected fixed 7px advance, got w1=%v h1=%v vs w2=%v h2=%v", w1, h1, w2, h2)
	}
}

func TestGoProvider_ResolvesWeightAndSize(t *testing.T) {
	p := NewGoProvider()
	reg, _ := Measure(p, "FROZEN", FontSpec{SizePt: 14})
	big, _ := Measure(p, "FROZEN", FontSpec{SizePt: 28})
	if reg <= 0 || big <= reg*1.8 {
		t.Fatalf("unexpected widths: regular=%v big=%v", reg, big)
	}
	f1, _ := p.Resolve(FontSpec{SizePt: 14})
	f2, _ := p.Resolve(FontSpec{SizePt: 14, Family: FamilyGo, Weight: 400})
	if f1 != f2 {
		t.Fatalf("defaults should resolve to the cached face")
	}
	// Go Bold keeps the advances of Go Regular, so compare faces, not widths.
	bold, _ := p.Resolve(FontSpec{SizePt: 14, Weight: 700})
	if bold == f1 {
		t.Fatalf("weight 700 resolved to the regular face")
	}
	boldFont := p.Lib.find(FontSpec{Family: FamilyGo, Weight: 700})
	if boldFont == nil || p.Lib.find(FontSpec{Family: FamilyGo, Weight: 650}) != boldFont {
		t.Fatalf("weight 650 should pick the closest font, bold")
	}
}

func TestEllipsize(t *testing.T) {
	measure := func(s string) float64 { return float64(utf8.RuneCountInString(s)) * 10 }
	tests := []struct {
		name string
		in   string
		max  float64
		want string
	}{
		{name: "fits", in: "FROZEN", max: 60, want: "FROZEN"},
		{name: "empty", in: "", max: 0, want: ""},
		{name: "cut", in: "FROZEN SOLID", max: 60, want: "FROZE" + Ellipsis},
		{name: "nothing fits", in: "FROZEN", max: 5, want: Ellipsis},
		{name: "runes", in: "❄️❄️❄️❄️", max: 30, want: "❄️" + Ellipsis},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Ellipsize(measure, tt.in, tt.max)
			if got != tt.want {
				t.Fatalf("Ellipsize(%q, %v) = %q, want %q", tt.in, tt.max, got, tt.want)
			}
			if got != tt.in && !strings.HasSuffix(got, Ellipsis) {
				t.Fatalf("cut label must end with the ellipsis")
			}
		})
	}
}
