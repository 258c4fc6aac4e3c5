/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package dom is a small model of the widget elements the editor overlays on its canvas:
// text areas, images and videos with a presentation style, living in a container
// that reports elements added after the fact.
package dom

import "strings"

// Element tags the overlay cares about.
const (
	TagTextArea = "TEXTAREA"
	TagInput    = "INPUT"
	TagVideo    = "VIDEO"
	TagImg      = "IMG"
	TagDiv      = "DIV"
)

// CSS keyword values used by Style.
const (
	None = "none"
	Auto = "auto"
)

// Style is the subset of inline presentation state the overlay writes.
type Style struct {
	Filter        string
	Opacity       float64
	PointerEvents string
	UserSelect    string
}

// DefaultStyle is what a freshly created element looks like.
func DefaultStyle() Style {
	return Style{Filter: None, Opacity: 1, PointerEvents: Auto, UserSelect: Auto}
}

// Element is one interactive element backing a widget.
type Element struct {
	tag   string
	src   string
	Style Style
}

// NewElement creates an element with the given tag (case-insensitive) and optional source URL.
func NewElement(tag, src string) *Element {
	return &Element{tag: strings.ToUpper(strings.TrimSpace(tag)), src: src, Style: DefaultStyle()}
}

// TagName and Src read as empty on a nil element.
func (e *Element) TagName() string {
	if e == nil {
		return ""
	}
	return e.tag
}

func (e *Element) Src() string {
	if e == nil {
		return ""
	}
	return e.src
}

// SetSrc swaps the media source, e.g. when a preview finishes generating.
func (e *Element) SetSrc(src string) { e.src = src }

// Interactive reports whether pointer events and text selection reach the element.
func (e *Element) Interactive() bool {
	return e.Style.PointerEvents != None && e.Style.UserSelect != None
}
