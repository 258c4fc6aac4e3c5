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
	"fmt"
	"log/slog"
	"slices"
	"sync/atomic"

	"icyhider/internal/dom"
	applog "icyhider/internal/log"
	"icyhider/internal/policy"
	"icyhider/internal/vector"
)

// Extension hooks into a graph. NodeCreated runs for every node added after Setup and,
// at registration, for every node already present. NodeRemoved runs before a node is
// detached.
type Extension interface {
	ExtensionName() string
	Setup(ctx context.Context) error
	NodeCreated(n *Node)
	NodeRemoved(n *Node)
}

// Graph owns nodes and the DOM container their element widgets live in.
type Graph struct {
	classes   *Registry
	container *dom.Container
	nodes     []*Node
	nextID    NodeID
	hovered   *Node
	exts      []Extension
	dirty     atomic.Bool
	log       *slog.Logger
}

// New returns an empty graph over classes. Element widgets are appended to container.
func New(classes *Registry, container *dom.Container) *Graph {
	if classes == nil {
		classes = NewRegistry()
	}
	if container == nil {
		container = dom.NewContainer("graphcanvas")
	}
	return &Graph{classes: classes, container: container, nextID: 1, log: applog.WithComponent("graph")}
}

func (g *Graph) Classes() *Registry        { return g.classes }
func (g *Graph) Container() *dom.Container { return g.container }

// RegisterExtension runs ext.Setup and replays NodeCreated for existing nodes.
func (g *Graph) RegisterExtension(ctx context.Context, ext Extension) error {
	if err := ext.Setup(ctx); err != nil {
		return fmt.Errorf("setup extension %s: %w", ext.ExtensionName(), err)
	}
	g.exts = append(g.exts, ext)
	for _, n := range g.nodes {
		ext.NodeCreated(n)
	}
	g.log.Info("extension registered", slog.String("name", ext.ExtensionName()))
	return nil
}

// Add creates a node of the named class at pos. Unregistered classes get a bare node
// whose variant is derived from the class name.
func (g *Graph) Add(class string, pos vector.Pt) *Node {
	var n *Node
	if c, ok := g.classes.Class(class); ok {
		n = NewNode(c.Name, c.Variant)
		n.Title = c.DisplayName
		n.Size = c.Size
		for _, ws := range c.Widgets {
			w := &Widget{Name: ws.Name, Value: ws.Value}
			if ws.Tag != "" {
				w.Element = dom.NewElement(ws.Tag, ws.Src)
			}
			n.Widgets = append(n.Widgets, w)
		}
		for s, fn := range c.Draw {
			n.pipeline.SetBase(s, fn)
		}
	} else {
		n = NewNode(class, policy.VariantOf(class))
	}
	n.Pos = pos
	g.AddNode(n)
	return n
}

// AddNode attaches n, appends its widget elements to the container and notifies
// extensions.
func (g *Graph) AddNode(n *Node) {
	n.graph = g
	n.ID = g.nextID
	g.nextID++
	if n.pipeline.Base(StageWidgets) == nil {
		n.pipeline.SetBase(StageWidgets, DrawWidgets)
	}
	g.nodes = append(g.nodes, n)
	for _, ext := range g.exts {
		ext.NodeCreated(n)
	}
	var els []*dom.Element
	for _, w := range n.Widgets {
		if w.Element != nil {
			els = append(els, w.Element)
		}
	}
	if len(els) > 0 {
		g.container.Append(els...)
	}
	g.SetDirty()
}

// Remove detaches n and its elements.
func (g *Graph) Remove(n *Node) {
	i := slices.Index(g.nodes, n)
	if i < 0 {
		return
	}
	for _, ext := range g.exts {
		ext.NodeRemoved(n)
	}
	g.nodes = slices.Delete(g.nodes, i, i+1)
	for _, w := range n.Widgets {
		if w.Element != nil {
			g.container.Remove(w.Element)
		}
	}
	if g.hovered == n {
		g.hovered = nil
	}
	n.graph = nil
	g.SetDirty()
}

// Nodes returns the live nodes in paint order.
func (g *Graph) Nodes() []*Node { return slices.Clone(g.nodes) }

// Node looks a node up by id.
func (g *Graph) Node(id NodeID) *Node {
	for _, n := range g.nodes {
		if n.ID == id {
			return n
		}
	}
	return nil
}

// NodeAt returns the top-most node containing p, or nil.
func (g *Graph) NodeAt(p vector.Pt) *Node {
	for i := len(g.nodes) - 1; i >= 0; i-- {
		if g.nodes[i].Bounds().Contains(p) {
			return g.nodes[i]
		}
	}
	return nil
}

// Select selects n. Unless additive, other selected nodes are deselected first.
func (g *Graph) Select(n *Node, additive bool) {
	if !additive {
		for _, o := range g.nodes {
			if o != n && o.Selected {
				g.Deselect(o)
			}
		}
	}
	if n == nil || n.Selected {
		return
	}
	n.Selected = true
	n.Dispatch(Event{Kind: EventSelected, Pos: n.Pos})
	g.SetDirty()
}

// Deselect clears the selection of n.
func (g *Graph) Deselect(n *Node) {
	if n == nil || !n.Selected {
		return
	}
	n.Selected = false
	n.Dispatch(Event{Kind: EventDeselected, Pos: n.Pos})
	g.SetDirty()
}

// SetSelectedSilently flips the selection flag without dispatching events, the way
// some host code paths (box select, undo) do.
func (g *Graph) SetSelectedSilently(n *Node, selected bool) {
	n.Selected = selected
	g.SetDirty()
}

// Hover moves the pointer to p, dispatching leave and enter events as the node under
// the pointer changes.
func (g *Graph) Hover(p vector.Pt) *Node {
	next := g.NodeAt(p)
	if next == g.hovered {
		return next
	}
	if prev := g.hovered; prev != nil {
		g.hovered = nil
		prev.Dispatch(Event{Kind: EventMouseLeave, Pos: p})
	}
	if next != nil {
		g.hovered = next
		next.Dispatch(Event{Kind: EventMouseEnter, Pos: p})
	}
	g.SetDirty()
	return next
}

// Hovered returns the node under the pointer.
func (g *Graph) Hovered() *Node { return g.hovered }

// SetDirty requests a repaint.
func (g *Graph) SetDirty() { g.dirty.Store(true) }

// TakeDirty reports and clears the repaint request.
func (g *Graph) TakeDirty() bool { return g.dirty.Swap(false) }

// Bounds returns the union of all node rectangles.
func (g *Graph) Bounds() vector.Rect {
	var r vector.Rect
	for i, n := range g.nodes {
		if i == 0 {
			r = n.Bounds()
			continue
		}
		r = r.Union(n.Bounds())
	}
	return r
}
