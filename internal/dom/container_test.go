/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package dom

import "testing"

func TestObserveReportsAppendedBatches(t *testing.T) {
	c := NewContainer("graphcanvas")
	var got [][]*Element
	cancel := c.Observe(func(added []*Element) { got = append(got, added) })

	a := NewElement("textarea", "")
	b := NewElement("img", "out.png")
	c.Append(a, b)
	if len(got) != 1 || len(got[0]) != 2 || got[0][0] != a || got[0][1] != b {
		t.Fatalf("unexpected batches: %v", got)
	}

	cancel()
	cancel()
	c.Append(NewElement("video", ""))
	if len(got) != 1 {
		t.Fatalf("cancelled observer still notified: %d batches", len(got))
	}
	if c.Observers() != 0 {
		t.Fatalf("Observers = %d, want 0", c.Observers())
	}
	if n := len(c.Elements()); n != 3 {
		t.Fatalf("Elements = %d, want 3", n)
	}
}

func TestRemoveDetachesElement(t *testing.T) {
	c := NewContainer("graphcanvas")
	a := NewElement("img", "a.png")
	c.Append(a, NewElement("img", "b.png"))
	c.Remove(a)
	for _, e := range c.Elements() {
		if e == a {
			t.Fatalf("element still attached")
		}
	}
}

func TestNewElementNormalizesTag(t *testing.T) {
	e := NewElement(" video ", "")
	if e.TagName() != TagVideo {
		t.Fatalf("TagName = %q", e.TagName())
	}
	if !e.Interactive() || e.Style.Opacity != 1 {
		t.Fatalf("fresh element should be visible and interactive: %+v", e.Style)
	}
}

func TestInjectStyleReplacesByID(t *testing.T) {
	c := NewContainer("graphcanvas")
	c.InjectStyle("fade", "a")
	c.InjectStyle("fade", "b")
	if css, ok := c.StyleRule("fade"); !ok || css != "b" {
		t.Fatalf("StyleRule = %q, %v", css, ok)
	}
}
