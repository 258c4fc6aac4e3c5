/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package graph

import (
	"context"
	"sync"
	"testing"
	"time"

	"icyhider/internal/dom"
	"icyhider/internal/paint"
	"icyhider/internal/policy"
	"icyhider/internal/vector"
)

var zeroVariant = policy.Other()

func newTestGraph(t *testing.T) *Graph {
	t.Helper()
	reg := NewRegistry()
	if err := RegisterBuiltins(reg); err != nil {
		t.Fatalf("register builtins: %v", err)
	}
	return New(reg, dom.NewContainer("graphcanvas"))
}

func TestIcyVariantsOnlyForConcretePublicClasses(t *testing.T) {
	reg := NewRegistry()
	for _, c := range Builtins() {
		if err := reg.Register(c); err != nil {
			t.Fatalf("register %s: %v", c.Name, err)
		}
	}
	added := reg.RegisterIcyVariants()
	want := map[string]bool{
		"IcyLoadImage": true, "IcyCLIPTextEncode": true, "IcyKSampler": true,
		"IcyPreviewImage": true, "IcySaveAnimatedWEBP": true, "IcyLoadVideo": true,
	}
	if len(added) != len(want) {
		t.Fatalf("unexpected variants: %v", added)
	}
	for _, name := range added {
		if !want[name] {
			t.Fatalf("unexpected variant %s", name)
		}
	}
	c, ok := reg.Class("IcyKSampler")
	if !ok {
		t.Fatalf("IcyKSampler missing")
	}
	if c.Category != IcyCategory || c.DisplayName != "Icy KSampler" || !c.Variant.IsIcy() || c.Variant.Subkind() != "KSampler" {
		t.Fatalf("unexpected twin: %+v", c)
	}
	if _, ok := reg.Class("IcyNote"); ok {
		t.Fatalf("Note has no outputs and must not get a variant")
	}
	if _, ok := reg.Class("Icy_Reroute"); ok {
		t.Fatalf("private classes must not get a variant")
	}
	if again := reg.RegisterIcyVariants(); len(again) != 0 {
		t.Fatalf("second pass should add nothing, got %v", again)
	}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register(Class{Name: "A"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := reg.Register(Class{Name: "A"}); err == nil {
		t.Fatalf("expected duplicate error")
	}
}

func TestAddCreatesWidgetsAndElements(t *testing.T) {
	g := newTestGraph(t)
	var added []*dom.Element
	g.Container().Observe(func(els []*dom.Element) { added = append(added, els...) })
	n := g.Add("IcyLoadImage", vector.Pt{X: 10, Y: 20})
	if !n.Variant.IsIcy() || n.Title != "Icy LoadImage" {
		t.Fatalf("unexpected node: %+v", n)
	}
	if len(n.Widgets) != 1 || n.Widgets[0].Element == nil || n.Widgets[0].Element.TagName() != dom.TagImg {
		t.Fatalf("unexpected widgets: %+v", n.Widgets)
	}
	if len(added) != 1 || added[0] != n.Widgets[0].Element {
		t.Fatalf("container not notified: %v", added)
	}
	bare := g.Add("IcySomethingUnknown", vector.Pt{})
	if !bare.Variant.IsIcy() {
		t.Fatalf("unknown class should derive variant from its name")
	}
	g.Remove(n)
	if g.Node(n.ID) != nil || len(g.Container().Elements()) != 0 {
		t.Fatalf("node not removed")
	}
}

func TestDispatchChainsDecoratorsInOrder(t *testing.T) {
	n := NewNode("X", zeroVariant)
	var calls []string
	n.SetHandler(EventSelected, func(*Node, Event) { calls = append(calls, "base") })
	n.Decorate(EventSelected, "a", func(next Handler) Handler {
		return func(n *Node, ev Event) { calls = append(calls, "a"); next(n, ev) }
	})
	n.Decorate(EventSelected, "b", func(next Handler) Handler {
		return func(n *Node, ev Event) { calls = append(calls, "b"); next(n, ev) }
	})
	// Same key replaces instead of stacking.
	n.Decorate(EventSelected, "a", func(next Handler) Handler {
		return func(n *Node, ev Event) { calls = append(calls, "a2"); next(n, ev) }
	})
	n.Dispatch(Event{Kind: EventSelected})
	want := []string{"a2", "b", "base"}
	if len(calls) != len(want) {
		t.Fatalf("calls: %v", calls)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Fatalf("calls: %v", calls)
		}
	}
	n.Undecorate("a")
	if n.Decorators(EventSelected) != 1 {
		t.Fatalf("undecorate failed")
	}
}

func TestDispatchPreservesEventAndTolerantOfNilBase(t *testing.T) {
	n := NewNode("X", zeroVariant)
	var got Event
	n.Decorate(EventMouseEnter, "k", func(next Handler) Handler {
		return func(n *Node, ev Event) { got = ev; next(n, ev) }
	})
	ev := Event{Kind: EventMouseEnter, Pos: vector.Pt{X: 3, Y: 4}}
	n.Dispatch(ev)
	if got != ev {
		t.Fatalf("event changed: %+v", got)
	}
}

func TestPipelineHonoursBaseReassignment(t *testing.T) {
	n := NewNode("X", zeroVariant)
	rec := paint.NewRecorder()
	n.Pipeline().SetBase(StageForeground, func(ctx paint.Context, _ *Node) { ctx.(*paint.Recorder).Mark("old") })
	n.Pipeline().Use(StageForeground, "wrap", func(next DrawFunc) DrawFunc {
		return func(ctx paint.Context, n *Node) {
			rec.Mark("before")
			next(ctx, n)
		}
	})
	n.Pipeline().SetBase(StageForeground, func(ctx paint.Context, _ *Node) { ctx.(*paint.Recorder).Mark("new") })
	n.Pipeline().Draw(StageForeground, rec, n)
	if m := rec.Marks(); len(m) != 2 || m[0] != "before" || m[1] != "new" {
		t.Fatalf("marks: %v", m)
	}
	rec.Reset()
	n.Pipeline().Draw(StageBackground, rec, n)
	if len(rec.Ops) != 0 {
		t.Fatalf("empty stage should paint nothing: %v", rec.Names())
	}
}

func TestSelectAndHoverDispatch(t *testing.T) {
	g := newTestGraph(t)
	a := g.Add("KSampler", vector.Pt{X: 0, Y: 0})
	b := g.Add("KSampler", vector.Pt{X: 400, Y: 0})
	var log []string
	for _, n := range []*Node{a, b} {
		name := map[*Node]string{a: "a", b: "b"}[n]
		for k := EventKind(0); k < eventKinds; k++ {
			n.SetHandler(k, func(_ *Node, ev Event) { log = append(log, name+":"+ev.Kind.String()) })
		}
	}
	g.Select(a, false)
	g.Select(b, false)
	g.Hover(vector.Pt{X: 10, Y: 10})
	g.Hover(vector.Pt{X: 410, Y: 10})
	g.Hover(vector.Pt{X: 1000, Y: 1000})
	want := []string{"a:selected", "a:deselected", "b:selected", "a:mouseenter", "a:mouseleave", "b:mouseenter", "b:mouseleave"}
	if len(log) != len(want) {
		t.Fatalf("log: %v", log)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Fatalf("log: %v", log)
		}
	}
	if !g.TakeDirty() || g.TakeDirty() {
		t.Fatalf("dirty flag should be set once and cleared by TakeDirty")
	}
	g.SetSelectedSilently(a, true)
	if len(log) != len(want) || !a.Selected {
		t.Fatalf("silent selection must not dispatch")
	}
}

type recordingExt struct {
	created, removed []NodeID
	setup            int
}

func (r *recordingExt) ExtensionName() string       { return "test" }
func (r *recordingExt) Setup(context.Context) error { r.setup++; return nil }
func (r *recordingExt) NodeCreated(n *Node)         { r.created = append(r.created, n.ID) }
func (r *recordingExt) NodeRemoved(n *Node)         { r.removed = append(r.removed, n.ID) }

func TestRegisterExtensionReplaysExistingNodes(t *testing.T) {
	g := newTestGraph(t)
	a := g.Add("KSampler", vector.Pt{})
	ext := &recordingExt{}
	if err := g.RegisterExtension(context.Background(), ext); err != nil {
		t.Fatalf("register: %v", err)
	}
	b := g.Add("KSampler", vector.Pt{X: 300})
	g.Remove(a)
	if ext.setup != 1 || len(ext.created) != 2 || ext.created[0] != a.ID || ext.created[1] != b.ID {
		t.Fatalf("unexpected created: %+v", ext)
	}
	if len(ext.removed) != 1 || ext.removed[0] != a.ID {
		t.Fatalf("unexpected removed: %v", ext.removed)
	}
}

func TestDrawPaintsStagesInOrder(t *testing.T) {
	g := newTestGraph(t)
	n := g.Add("KSampler", vector.Pt{X: 5, Y: 5})
	for s := Stage(0); s < stages; s++ {
		name := s.String()
		n.Pipeline().Use(s, "mark", func(next DrawFunc) DrawFunc {
			return func(ctx paint.Context, n *Node) { ctx.(*paint.Recorder).Mark(name); next(ctx, n) }
		})
	}
	rec := paint.NewRecorder()
	g.Draw(rec)
	m := rec.Marks()
	if len(m) != 3 || m[0] != "background" || m[1] != "widgets" || m[2] != "foreground" {
		t.Fatalf("marks: %v", m)
	}
	if !rec.Balanced() {
		t.Fatalf("unbalanced save/restore")
	}
	var values int
	for _, op := range rec.Find("fillText") {
		if op.Text == "42" || op.Text == "20" {
			values++
		}
	}
	if values != 2 {
		t.Fatalf("widget values not painted: %v", rec.Find("fillText"))
	}
}

func TestDrawElementsSkipsTransparentAndAppliesFilter(t *testing.T) {
	g := newTestGraph(t)
	n := g.Add("CLIPTextEncode", vector.Pt{})
	el := n.Widgets[0].Element
	rec := paint.NewRecorder()
	el.Style.Filter = "blur(12px)"
	DrawElements(rec, n)
	texts := rec.Find("fillText")
	if len(texts) != 1 || texts[0].Filter.Blur != 12 {
		t.Fatalf("expected blurred text, got %v", texts)
	}
	rec.Reset()
	el.Style.Opacity = 0
	DrawElements(rec, n)
	if len(rec.Ops) != 0 {
		t.Fatalf("transparent element painted: %v", rec.Names())
	}
}

func TestSerialSchedulerSerializesAndCancels(t *testing.T) {
	s := NewSerialScheduler()
	var mu sync.Mutex
	active, peak := 0, 0
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Do(func() {
				mu.Lock()
				active++
				if active > peak {
					peak = active
				}
				mu.Unlock()
				time.Sleep(time.Millisecond)
				mu.Lock()
				active--
				mu.Unlock()
			})
		}()
	}
	wg.Wait()
	if peak != 1 {
		t.Fatalf("expected serialized execution, peak %d", peak)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan bool)
	s.Do(func() {
		go func() { done <- Post(ctx, s, func() {}) }()
		cancel()
		if ran := <-done; ran {
			t.Errorf("post should give up once ctx is cancelled")
		}
	})
}

func TestDemoLaysOutRegisteredClasses(t *testing.T) {
	g := newTestGraph(t)
	nodes := Demo(g)
	if len(nodes) != len(demoLayout) {
		t.Fatalf("demo nodes = %d, want %d", len(nodes), len(demoLayout))
	}
	icy := 0
	for _, n := range nodes {
		if n.Variant.IsIcy() {
			icy++
		}
	}
	if icy != 2 {
		t.Fatalf("icy demo nodes = %d, want 2", icy)
	}
	if nodes[4].Pos.Y <= nodes[0].Pos.Y {
		t.Fatalf("fifth node should start a new row: %+v", nodes[4].Pos)
	}

	bare := New(NewRegistry(), nil)
	if got := Demo(bare); len(got) != 0 {
		t.Fatalf("demo on empty registry added %d nodes", len(got))
	}
}
