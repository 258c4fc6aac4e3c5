/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package render

import (
	"strings"
	"testing"

	"icyhider/internal/graph"
	"icyhider/internal/paint"
	"icyhider/internal/policy"
	"icyhider/internal/settings"
	"icyhider/internal/textlayout"
	"icyhider/internal/vector"
)

type fixture struct {
	node   *graph.Node
	rec    *paint.Recorder
	hidden bool
	snap   settings.Snapshot
}

func newFixture(mode settings.Mode) *fixture {
	f := &fixture{
		node: graph.NewNode("IcyLoader", policy.Icy("Loader")),
		rec:  paint.NewRecorder(),
		snap: settings.DefaultSnapshot(),
	}
	f.snap.HideMode = mode
	f.node.Size = vector.Size{W: 200, H: 130}
	p := f.node.Pipeline()
	for _, s := range []graph.Stage{graph.StageBackground, graph.StageWidgets, graph.StageForeground} {
		name := "orig-" + s.String()
		p.SetBase(s, func(ctx paint.Context, _ *graph.Node) { ctx.(*paint.Recorder).Mark(name) })
	}
	New(func(*graph.Node) bool { return f.hidden }, func() settings.Snapshot { return f.snap }).Install(f.node)
	return f
}

func (f *fixture) draw(s graph.Stage) {
	f.rec.Reset()
	f.node.Pipeline().Draw(s, f.rec, f.node)
}

func TestVisibleDelegatesUnmodified(t *testing.T) {
	for _, mode := range []settings.Mode{settings.ModeCover, settings.ModeBlur} {
		f := newFixture(mode)
		for _, s := range []graph.Stage{graph.StageBackground, graph.StageWidgets, graph.StageForeground} {
			f.draw(s)
			names := f.rec.Names()
			if len(names) != 1 || names[0] != "mark" || f.rec.Ops[0].Text != "orig-"+s.String() {
				t.Fatalf("%s/%s: expected bare delegate, got %v", mode, s, names)
			}
		}
	}
}

func TestBlurWrapsDelegateInClipAndFilter(t *testing.T) {
	f := newFixture(settings.ModeBlur)
	f.hidden = true
	for _, s := range []graph.Stage{graph.StageBackground, graph.StageWidgets, graph.StageForeground} {
		f.draw(s)
		want := []string{"save", "clip", "filter", "mark", "filter", "restore"}
		got := f.rec.Names()
		if len(got) != len(want) {
			t.Fatalf("%s: ops %v", s, got)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("%s: ops %v", s, got)
			}
		}
		clip := f.rec.Find("clip")[0]
		if clip.Args[0] != 0 || clip.Args[1] != TitleHeight || clip.Args[2] != 200 || clip.Args[3] != 100 {
			t.Fatalf("clip rect: %v", clip.Args)
		}
		mark := f.rec.Find("mark")[0]
		if mark.Filter != paint.Blur(20) {
			t.Fatalf("delegate ran without blur: %+v", mark.Filter)
		}
		if !f.rec.Balanced() {
			t.Fatalf("unbalanced")
		}
	}
}

func TestBlurAmountIsReadAtPaintTime(t *testing.T) {
	f := newFixture(settings.ModeBlur)
	f.hidden = true
	f.snap.BlurAmount = 35
	f.draw(graph.StageWidgets)
	if got := f.rec.Find("mark")[0].Filter; got != paint.Blur(35) {
		t.Fatalf("filter: %+v", got)
	}
}

func TestHoverRevealsBlurredNode(t *testing.T) {
	f := newFixture(settings.ModeBlur)
	f.hidden = true
	f.draw(graph.StageWidgets)
	if len(f.rec.Find("filter")) == 0 {
		t.Fatalf("expected filter while hidden")
	}
	f.hidden = false // the binder flips this on mouse enter
	f.draw(graph.StageWidgets)
	if len(f.rec.Find("filter")) != 0 || len(f.rec.Marks()) != 1 {
		t.Fatalf("expected unfiltered delegate, got %v", f.rec.Names())
	}
}

func TestCoverSuppressesWidgets(t *testing.T) {
	f := newFixture(settings.ModeCover)
	f.hidden = true
	f.draw(graph.StageWidgets)
	if len(f.rec.Ops) != 0 {
		t.Fatalf("widgets should not paint under cover: %v", f.rec.Names())
	}
	f.draw(graph.StageBackground)
	if m := f.rec.Marks(); len(m) != 1 || m[0] != "orig-background" || len(f.rec.Find("filter")) != 0 {
		t.Fatalf("background should delegate plainly: %v", f.rec.Names())
	}
}

func TestCoverPaintsCardAfterForeground(t *testing.T) {
	f := newFixture(settings.ModeCover)
	f.hidden = true
	f.draw(graph.StageForeground)
	ops := f.rec.Ops
	if ops[0].Name != "mark" || ops[0].Text != "orig-foreground" {
		t.Fatalf("original foreground must run first: %v", f.rec.Names())
	}
	rr := f.rec.Find("roundRect")
	if len(rr) != 1 {
		t.Fatalf("expected one rounded rect, got %v", f.rec.Names())
	}
	want := []float64{0, TitleHeight, 200, 100, 0, 0, CornerRadius, CornerRadius}
	for i, v := range want {
		if rr[0].Args[i] != v {
			t.Fatalf("roundRect args: %v", rr[0].Args)
		}
	}
	fill := f.rec.Find("fill")[0].Fill
	if fill.Gradient == nil || fill.Gradient.Y0 != TitleHeight || fill.Gradient.Y1 != 130 ||
		fill.Gradient.Stops[0].Color != f.snap.GradientStart || fill.Gradient.Stops[1].Color != f.snap.GradientEnd {
		t.Fatalf("unexpected card fill: %+v", fill)
	}
	stroke := f.rec.Find("stroke")[0]
	if stroke.Stroke != f.snap.BorderColor || stroke.Args[0] != BorderWidth {
		t.Fatalf("unexpected border: %+v", stroke)
	}
	texts := f.rec.Find("fillText")
	if len(texts) != 2 {
		t.Fatalf("expected icon and label, got %v", texts)
	}
	cx, cy := 100.0, (130.0+TitleHeight)/2
	icon, label := texts[0], texts[1]
	if icon.Text != settings.DefaultIcon || icon.Args[0] != cx || icon.Args[1] != cy-LabelOffset || icon.Font.Size != IconSize || icon.Font.Bold {
		t.Fatalf("icon: %+v", icon)
	}
	if label.Text != settings.DefaultText || label.Args[1] != cy+LabelOffset || !label.Font.Bold || label.Font.Size != LabelSize {
		t.Fatalf("label: %+v", label)
	}
	if label.Shadow.Blur != 4 || label.Shadow.Color.A != 128 || !icon.Shadow.IsNone() {
		t.Fatalf("shadow applies to the label only: icon %+v label %+v", icon.Shadow, label.Shadow)
	}
	if label.Fill.Color != f.snap.TextColor {
		t.Fatalf("text color: %+v", label.Fill)
	}
	if !f.rec.Balanced() {
		t.Fatalf("unbalanced")
	}
}

func TestCoverFallsBackToSquareCorners(t *testing.T) {
	f := newFixture(settings.ModeCover)
	f.hidden = true
	f.rec.NoRoundRect = true
	f.node.Pipeline().Draw(graph.StageForeground, f.rec, f.node)
	if len(f.rec.Find("roundRect")) != 0 {
		t.Fatalf("rounded rect used without capability")
	}
	rects := f.rec.Find("rect")
	if len(rects) != 1 || rects[0].Args[1] != TitleHeight || rects[0].Args[3] != 100 {
		t.Fatalf("expected plain rect fallback, got %v", rects)
	}
}

func TestEmptyTextFallsBackToDefaults(t *testing.T) {
	f := newFixture(settings.ModeCover)
	f.hidden = true
	f.snap.Icon, f.snap.Text = "", ""
	f.draw(graph.StageForeground)
	texts := f.rec.Find("fillText")
	if texts[0].Text != settings.DefaultIcon || texts[1].Text != settings.DefaultText {
		t.Fatalf("texts: %v", texts)
	}
}

func TestLongLabelIsCutToCardWidth(t *testing.T) {
	f := newFixture(settings.ModeCover)
	f.hidden = true
	f.snap.Text = strings.Repeat("CONFIDENTIAL ", 4)
	f.draw(graph.StageForeground)
	label := f.rec.Find("fillText")[1].Text
	if !strings.HasSuffix(label, textlayout.Ellipsis) || len(label) >= len(f.snap.Text) {
		t.Fatalf("label not cut: %q", label)
	}
	f.rec.SetFont(paint.Font{Size: LabelSize, Bold: true})
	if w := f.rec.MeasureText(label); w > f.node.Size.W-2*LabelPadding {
		t.Fatalf("label width %v exceeds card", w)
	}
}

func TestNilBaseIsNotInvoked(t *testing.T) {
	f := newFixture(settings.ModeBlur)
	f.hidden = true
	f.node.Pipeline().SetBase(graph.StageBackground, nil)
	f.draw(graph.StageBackground)
	if len(f.rec.Marks()) != 0 {
		t.Fatalf("nothing should be delegated")
	}
	if !f.rec.Balanced() {
		t.Fatalf("unbalanced")
	}
}

func TestReassignedBaseIsHonoured(t *testing.T) {
	f := newFixture(settings.ModeCover)
	f.hidden = true
	f.node.Pipeline().SetBase(graph.StageForeground, func(ctx paint.Context, _ *graph.Node) {
		ctx.(*paint.Recorder).Mark("replaced")
	})
	f.draw(graph.StageForeground)
	if m := f.rec.Marks(); len(m) != 1 || m[0] != "replaced" {
		t.Fatalf("marks: %v", m)
	}
	if len(f.rec.Find("fillText")) != 2 {
		t.Fatalf("card missing after base reassignment")
	}
}

func TestInstallTwiceDoesNotStack(t *testing.T) {
	f := newFixture(settings.ModeBlur)
	New(func(*graph.Node) bool { return true }, func() settings.Snapshot { return f.snap }).Install(f.node)
	if n := f.node.Pipeline().Decorators(graph.StageWidgets); n != 1 {
		t.Fatalf("decorators: %d", n)
	}
}
