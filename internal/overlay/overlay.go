/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package overlay writes the presentation style of a node's widget elements so hidden
// content is covered or blurred.
package overlay

import (
	"icyhider/internal/dom"
	"icyhider/internal/graph"
	"icyhider/internal/media"
	"icyhider/internal/paint"
	"icyhider/internal/settings"
)

// TransitionRule eases style changes on overlaid elements.
const (
	TransitionRuleID = "icyhider-transitions"
	TransitionRule   = ".graphcanvas textarea,\n.graphcanvas video,\n.graphcanvas img,\n.graphcanvas .comfy-multiline-input {\n\ttransition: opacity 0.2s ease, filter 0.2s ease;\n}"
)

// EffectiveMode returns the mode used for el. Animated media cannot be blurred
// reliably, so it is always covered.
func EffectiveMode(el *dom.Element, mode settings.Mode) settings.Mode {
	if el != nil && media.IsAnimated(el) {
		return settings.ModeCover
	}
	return mode
}

// Style returns the element style for the given state.
func Style(hidden bool, mode settings.Mode, blur float64) dom.Style {
	if !hidden {
		return dom.Style{Filter: dom.None, Opacity: 1, PointerEvents: dom.Auto, UserSelect: dom.Auto}
	}
	if mode == settings.ModeBlur {
		return dom.Style{Filter: paint.Blur(blur).String(), Opacity: 1, PointerEvents: dom.None, UserSelect: dom.None}
	}
	return dom.Style{Filter: dom.None, Opacity: 0, PointerEvents: dom.None, UserSelect: dom.None}
}

// Apply styles every element-backed widget of n and returns how many were styled.
// Widgets without an element are skipped. Repeated calls with the same inputs leave
// the same styles.
func Apply(n *graph.Node, hidden bool, snap settings.Snapshot) int {
	if n == nil {
		return 0
	}
	count := 0
	for _, w := range n.Widgets {
		if w == nil || w.Element == nil {
			continue
		}
		w.Element.Style = Style(hidden, EffectiveMode(w.Element, snap.HideMode), snap.BlurAmount)
		count++
	}
	return count
}
