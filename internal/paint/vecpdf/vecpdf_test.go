/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vecpdf

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"icyhider/internal/paint"
)

func render(t *testing.T, draw func(d *Document)) string {
	t.Helper()
	d := New(200, 100, "test")
	d.pdf.SetCompression(false)
	draw(d)
	var buf bytes.Buffer
	if err := d.Output(&buf); err != nil {
		t.Fatalf("output: %v", err)
	}
	return buf.String()
}

func TestTextUnderBlurIsNotEmitted(t *testing.T) {
	out := render(t, func(d *Document) {
		d.SetFill(paint.Fill{Color: paint.White})
		d.FillText("VISIBLE", 10, 20)
		d.Save()
		d.ClipRect(0, 30, 200, 70)
		d.SetFilter(paint.Blur(20))
		d.FillText("SECRET", 10, 60)
		d.SetFilter(paint.Filter{})
		d.Restore()
	})
	if !strings.Contains(out, "VISIBLE") {
		t.Fatalf("plain text missing")
	}
	if strings.Contains(out, "SECRET") {
		t.Fatalf("blurred text leaked into pdf")
	}
}

func TestRestoreClosesSmudgeAndClips(t *testing.T) {
	d := New(100, 100, "test")
	d.Save()
	d.Translate(10, 10)
	d.ClipRect(0, 0, 50, 50)
	d.SetFilter(paint.Blur(5))
	d.BeginPath()
	d.Rect(0, 0, 80, 80)
	d.Fill()
	if len(d.smudges) != 1 || !d.smudges[0].used {
		t.Fatalf("smudge not tracked: %+v", d.smudges)
	}
	if got := d.smudges[0].clip; got.X != 10 || got.W != 50 {
		t.Fatalf("clip = %+v", got)
	}
	d.Restore()
	if len(d.smudges) != 0 || len(d.stack) != 0 || d.st.ox != 0 {
		t.Fatalf("state not restored: smudges=%d stack=%d ox=%v", len(d.smudges), len(d.stack), d.st.ox)
	}
	if err := d.Err(); err != nil {
		t.Fatalf("pdf error: %v", err)
	}
}

func TestRoundRectFallsBackToRect(t *testing.T) {
	d := New(100, 100, "test")
	d.BeginPath()
	if paint.RoundRect(d, 0, 0, 40, 40, paint.Radii{4, 4, 4, 4}) {
		t.Fatalf("pdf backend should not offer rounded rects")
	}
	if len(d.path) != 1 {
		t.Fatalf("fallback rect not added")
	}
}

func TestGradientFillAndSave(t *testing.T) {
	d := New(120, 80, "test")
	d.Translate(0, 30)
	g := paint.NewLinearGradient(0, 0, 0, 50, paint.HexOr("1E3C72", paint.Black), paint.HexOr("2A5298", paint.Black))
	d.SetFill(paint.Fill{Gradient: &g})
	d.BeginPath()
	d.Rect(0, 0, 120, 50)
	d.Fill()
	d.SetStrokeColor(paint.White)
	d.SetLineWidth(2)
	d.Stroke()
	out := filepath.Join(t.TempDir(), "g.pdf")
	if err := d.SaveFile(out); err != nil {
		t.Fatalf("save: %v", err)
	}
}
