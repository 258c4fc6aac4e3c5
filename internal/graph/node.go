/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package graph is a small node-graph host: node classes, nodes with widgets, selection
// and hover events, and a staged draw pipeline that extensions can decorate.
//
// Event handlers and draw stages each have a reassignable base callback. Extensions
// register keyed decorators on top; the chain is rebuilt on every call so a base
// replaced after decoration is still the one that runs.
package graph

import (
	"icyhider/internal/dom"
	"icyhider/internal/policy"
	"icyhider/internal/vector"
)

// NodeID identifies a node within its graph.
type NodeID int

// TitleHeight is the height of the node title bar in pixels.
const TitleHeight = 30

// Widget is one input row of a node. Element is nil for canvas-drawn widgets.
type Widget struct {
	Name    string
	Value   string
	Element *dom.Element
}

// EventKind enumerates the node events extensions may decorate.
type EventKind int

const (
	EventSelected EventKind = iota
	EventDeselected
	EventMouseEnter
	EventMouseLeave
	eventKinds
)

func (k EventKind) String() string {
	switch k {
	case EventSelected:
		return "selected"
	case EventDeselected:
		return "deselected"
	case EventMouseEnter:
		return "mouseenter"
	case EventMouseLeave:
		return "mouseleave"
	}
	return "unknown"
}

// Event carries the host's arguments for a node event. Decorators forward it unchanged.
type Event struct {
	Kind EventKind
	Pos  vector.Pt
}

// Handler handles one node event.
type Handler func(n *Node, ev Event)

// HandlerDecorator wraps a handler.
type HandlerDecorator func(next Handler) Handler

type keyedHandler struct {
	key string
	dec HandlerDecorator
}

// Node is an instance of a node class placed in a graph.
type Node struct {
	ID       NodeID
	Class    string
	Title    string
	Variant  policy.Variant
	Pos      vector.Pt
	Size     vector.Size
	Selected bool
	Widgets  []*Widget

	graph    *Graph
	handlers [eventKinds]Handler
	decos    [eventKinds][]keyedHandler
	pipeline DrawPipeline
}

// NewNode returns a detached node. Graph.Add is the usual constructor.
func NewNode(class string, variant policy.Variant) *Node {
	return &Node{Class: class, Title: class, Variant: variant, Size: vector.Size{W: 240, H: 120}}
}

// Graph returns the owning graph, or nil for a detached node.
func (n *Node) Graph() *Graph { return n.graph }

// Bounds returns the node rectangle in graph space, title bar included.
func (n *Node) Bounds() vector.Rect { return vector.At(n.Pos, n.Size) }

// WidgetRect returns the rectangle of widget i in node-local coordinates.
func (n *Node) WidgetRect(i int) vector.Rect {
	const pad, row = 8.0, 26.0
	return vector.R(pad, TitleHeight+pad+float64(i)*row, n.Size.W-2*pad, row-4)
}

// SetHandler replaces the base handler for kind. Decorators stay in place.
func (n *Node) SetHandler(kind EventKind, h Handler) { n.handlers[kind] = h }

// Handler returns the base handler for kind.
func (n *Node) Handler(kind EventKind) Handler { return n.handlers[kind] }

// Decorate installs d around the handler for kind. A decorator with the same key is
// replaced in place. Decorators run in registration order, outermost first.
func (n *Node) Decorate(kind EventKind, key string, d HandlerDecorator) {
	for i, kh := range n.decos[kind] {
		if kh.key == key {
			n.decos[kind][i].dec = d
			return
		}
	}
	n.decos[kind] = append(n.decos[kind], keyedHandler{key: key, dec: d})
}

// Undecorate removes every event and draw decorator registered under key.
func (n *Node) Undecorate(key string) {
	for k := range n.decos {
		out := n.decos[k][:0]
		for _, kh := range n.decos[k] {
			if kh.key != key {
				out = append(out, kh)
			}
		}
		n.decos[k] = out
	}
	n.pipeline.remove(key)
}

// Decorators returns the number of decorators on kind.
func (n *Node) Decorators(kind EventKind) int { return len(n.decos[kind]) }

// Dispatch runs the decorated handler chain for ev.Kind.
func (n *Node) Dispatch(ev Event) {
	h := n.handlers[ev.Kind]
	if h == nil {
		h = func(*Node, Event) {}
	}
	for i := len(n.decos[ev.Kind]) - 1; i >= 0; i-- {
		h = n.decos[ev.Kind][i].dec(h)
	}
	h(n, ev)
}

// Pipeline returns the node's draw pipeline.
func (n *Node) Pipeline() *DrawPipeline { return &n.pipeline }

// SetDirtyCanvas asks the host to repaint the foreground and background.
func (n *Node) SetDirtyCanvas() {
	if n.graph != nil {
		n.graph.SetDirty()
	}
}
