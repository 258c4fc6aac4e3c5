/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package graph

import (
	"path"
	"strings"

	"icyhider/internal/dom"
	"icyhider/internal/paint"
)

var (
	nodeBody     = paint.Color{R: 0x35, G: 0x35, B: 0x35, A: 255}
	nodeTitle    = paint.Color{R: 0x22, G: 0x22, B: 0x22, A: 255}
	nodeOutline  = paint.Color{R: 0x11, G: 0x11, B: 0x11, A: 255}
	selectedEdge = paint.Color{R: 0xFF, G: 0xFF, B: 0xFF, A: 255}
	widgetBG     = paint.Color{R: 0x22, G: 0x22, B: 0x22, A: 255}
	widgetText   = paint.Color{R: 0xDD, G: 0xDD, B: 0xDD, A: 255}
	mutedText    = paint.Color{R: 0x99, G: 0x99, B: 0x99, A: 255}
)

// Draw paints every node: host chrome, then the background, widgets and foreground
// stages, then the element overlays on top.
func (g *Graph) Draw(ctx paint.Context) {
	for _, n := range g.nodes {
		ctx.Save()
		ctx.Translate(n.Pos.X, n.Pos.Y)
		drawChrome(ctx, n)
		n.pipeline.Draw(StageBackground, ctx, n)
		n.pipeline.Draw(StageWidgets, ctx, n)
		n.pipeline.Draw(StageForeground, ctx, n)
		ctx.Restore()
	}
	for _, n := range g.nodes {
		ctx.Save()
		ctx.Translate(n.Pos.X, n.Pos.Y)
		DrawElements(ctx, n)
		ctx.Restore()
	}
}

func drawChrome(ctx paint.Context, n *Node) {
	w, h := n.Size.W, n.Size.H
	ctx.SetFill(paint.Fill{Color: nodeBody})
	ctx.BeginPath()
	paint.RoundRect(ctx, 0, 0, w, h, paint.Radii{8, 8, 8, 8})
	ctx.Fill()
	ctx.SetFill(paint.Fill{Color: nodeTitle})
	ctx.BeginPath()
	paint.RoundRect(ctx, 0, 0, w, TitleHeight, paint.Radii{8, 8, 0, 0})
	ctx.Fill()

	edge := nodeOutline
	if n.Selected {
		edge = selectedEdge
	}
	ctx.SetStrokeColor(edge)
	ctx.SetLineWidth(1)
	ctx.BeginPath()
	paint.RoundRect(ctx, 0, 0, w, h, paint.Radii{8, 8, 8, 8})
	ctx.Stroke()

	ctx.SetFill(paint.Fill{Color: widgetText})
	ctx.SetFont(paint.Font{Size: 14})
	ctx.SetTextAlign(paint.AlignLeft)
	ctx.SetTextBaseline(paint.BaselineMiddle)
	ctx.FillText(n.Title, 12, TitleHeight/2)
}

// DrawWidgets is the default widgets stage. It paints canvas widgets as value rows;
// element-backed widgets are painted by DrawElements.
func DrawWidgets(ctx paint.Context, n *Node) {
	ctx.SetFont(paint.Font{Size: 12})
	ctx.SetTextBaseline(paint.BaselineMiddle)
	for i, w := range n.Widgets {
		if w.Element != nil {
			continue
		}
		r := n.WidgetRect(i)
		ctx.SetFill(paint.Fill{Color: widgetBG})
		ctx.BeginPath()
		paint.RoundRect(ctx, r.X, r.Y, r.W, r.H, paint.Radii{6, 6, 6, 6})
		ctx.Fill()
		ctx.SetFill(paint.Fill{Color: mutedText})
		ctx.SetTextAlign(paint.AlignLeft)
		ctx.FillText(w.Name, r.X+10, r.Y+r.H/2)
		ctx.SetFill(paint.Fill{Color: widgetText})
		ctx.SetTextAlign(paint.AlignRight)
		ctx.FillText(w.Value, r.X+r.W-10, r.Y+r.H/2)
	}
}

// DrawElements paints the element overlays of n the way a browser would composite
// them over the canvas: transparent elements are skipped and a CSS blur filter is
// honoured.
func DrawElements(ctx paint.Context, n *Node) {
	for i, w := range n.Widgets {
		el := w.Element
		if el == nil || el.Style.Opacity <= 0 {
			continue
		}
		r := n.WidgetRect(i)
		if el.TagName() != dom.TagTextArea && el.TagName() != dom.TagInput {
			// Media fills the rest of the node.
			r.H = n.Size.H - r.Y - 8
		}
		if r.Empty() {
			continue
		}
		ctx.Save()
		ctx.SetFilter(paint.ParseFilter(el.Style.Filter))
		switch el.TagName() {
		case dom.TagTextArea, dom.TagInput:
			ctx.SetFill(paint.Fill{Color: widgetBG})
			ctx.BeginPath()
			ctx.Rect(r.X, r.Y, r.W, r.H)
			ctx.Fill()
			ctx.SetFill(paint.Fill{Color: widgetText})
			ctx.SetFont(paint.Font{Size: 12})
			ctx.SetTextAlign(paint.AlignLeft)
			ctx.SetTextBaseline(paint.BaselineMiddle)
			ctx.FillText(w.Value, r.X+6, r.Y+r.H/2)
		default:
			ctx.SetFill(paint.Fill{Gradient: ptr(paint.NewLinearGradient(r.X, r.Y, r.X+r.W, r.Y+r.H,
				paint.Color{R: 0x8E, G: 0x2D, B: 0xE2, A: 255}, paint.Color{R: 0x4A, G: 0x00, B: 0xE0, A: 255}))})
			ctx.BeginPath()
			ctx.Rect(r.X, r.Y, r.W, r.H)
			ctx.Fill()
			ctx.SetFill(paint.Fill{Color: paint.White})
			ctx.SetFont(paint.Font{Size: 11})
			ctx.SetTextAlign(paint.AlignCenter)
			ctx.SetTextBaseline(paint.BaselineMiddle)
			ctx.FillText(mediaLabel(el), r.X+r.W/2, r.Y+r.H/2)
		}
		ctx.SetFilter(paint.Filter{})
		ctx.Restore()
	}
}

// mediaLabel extracts a file name from a source like "/view?filename=a.png&type=input".
func mediaLabel(el *dom.Element) string {
	src := el.Src()
	if _, q, ok := strings.Cut(src, "filename="); ok {
		name, _, _ := strings.Cut(q, "&")
		return name
	}
	return path.Base(src)
}
