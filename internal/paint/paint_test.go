/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package paint

import "testing"

func TestParseHex(t *testing.T) {
	cases := []struct {
		in   string
		want Color
		err  bool
	}{
		{"1E3C72", Color{0x1E, 0x3C, 0x72, 255}, false},
		{"#2A5298", Color{0x2A, 0x52, 0x98, 255}, false},
		{"fff", White, false},
		{"", Color{}, true},
		{"zzzzzz", Color{}, true},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseHex(tc.in)
			if tc.err {
				if err == nil {
					t.Fatalf("expected error for %q", tc.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %+v want %+v", got, tc.want)
			}
		})
	}
}

func TestHexOrFallsBack(t *testing.T) {
	if got := HexOr("", Black); got != Black {
		t.Fatalf("empty should fall back, got %+v", got)
	}
	if got := HexOr("FFFFFF", Black); got != White {
		t.Fatalf("got %+v", got)
	}
	if White.Hex() != "FFFFFF" {
		t.Fatalf("hex: %s", White.Hex())
	}
}

func TestFilterRoundTrip(t *testing.T) {
	f := Blur(20)
	if f.String() != "blur(20px)" {
		t.Fatalf("string: %s", f.String())
	}
	if got := ParseFilter(f.String()); got != f {
		t.Fatalf("parse: %+v", got)
	}
	if !ParseFilter("none").IsNone() || !ParseFilter("blur(x)").IsNone() {
		t.Fatalf("invalid filters should be none")
	}
	if (Filter{}).String() != "none" {
		t.Fatalf("zero filter should print none")
	}
}

func TestRGBAClampsAlpha(t *testing.T) {
	if c := RGBA(0, 0, 0, 0.5); c.A != 128 {
		t.Fatalf("alpha: %d", c.A)
	}
	if c := RGBA(0, 0, 0, 2); c.A != 255 {
		t.Fatalf("alpha clamp: %d", c.A)
	}
}

func TestRoundRectFallback(t *testing.T) {
	r := NewRecorder()
	if !RoundRect(r, 0, 0, 10, 10, Radii{2, 2, 2, 2}) {
		t.Fatalf("recorder supports rounded rects")
	}
	sq := NewRecorder()
	sq.NoRoundRect = true
	if RoundRect(sq, 0, 0, 10, 10, Radii{2, 2, 2, 2}) {
		t.Fatalf("expected square fallback")
	}
	if n := sq.Names(); len(n) != 1 || n[0] != "rect" {
		t.Fatalf("ops: %v", n)
	}
}

func TestRecorderStateStack(t *testing.T) {
	r := NewRecorder()
	r.Save()
	r.SetFilter(Blur(5))
	r.Mark("inner")
	r.Restore()
	r.Mark("outer")
	if !r.Balanced() {
		t.Fatalf("stack not balanced")
	}
	m := r.Find("mark")
	if m[0].Filter.Blur != 5 || !m[1].Filter.IsNone() {
		t.Fatalf("filter not scoped: %v", m)
	}
	if got := r.Marks(); len(got) != 2 || got[0] != "inner" {
		t.Fatalf("marks: %v", got)
	}
}
