/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package render decorates a node's draw pipeline so hidden nodes paint blurred or
// behind a placeholder card.
package render

import (
	"icyhider/internal/graph"
	"icyhider/internal/paint"
	"icyhider/internal/settings"
	"icyhider/internal/textlayout"
	"icyhider/internal/vector"
)

// Key is the decorator key the interceptor installs under.
const Key = "icyhider.render"

// Placeholder card geometry.
const (
	TitleHeight  = graph.TitleHeight
	CornerRadius = 10
	BorderWidth  = 2
	IconSize     = 32
	LabelSize    = 14
	LabelOffset  = 15
	// LabelPadding is kept free on both sides of the icon and label; longer
	// text is cut with an ellipsis.
	LabelPadding = 8
)

var labelShadow = paint.Shadow{Color: paint.RGBA(0, 0, 0, 0.5), Blur: 4}

// Interceptor installs the hide-aware draw decorators. hidden and snapshot are read on
// every paint so the latest state wins.
type Interceptor struct {
	hidden   func(*graph.Node) bool
	snapshot func() settings.Snapshot
}

func New(hidden func(*graph.Node) bool, snapshot func() settings.Snapshot) *Interceptor {
	return &Interceptor{hidden: hidden, snapshot: snapshot}
}

// Install decorates the three stages of n. Installing again replaces the previous
// decorators instead of stacking.
func (i *Interceptor) Install(n *graph.Node) {
	p := n.Pipeline()
	p.Use(graph.StageWidgets, Key, i.widgets)
	p.Use(graph.StageBackground, Key, i.background)
	p.Use(graph.StageForeground, Key, i.foreground)
}

func (i *Interceptor) widgets(next graph.DrawFunc) graph.DrawFunc {
	return func(ctx paint.Context, n *graph.Node) {
		if !i.hidden(n) {
			next(ctx, n)
			return
		}
		s := i.snapshot()
		if s.HideMode == settings.ModeBlur {
			blurred(ctx, n, s.BlurAmount, next)
		}
		// Covered widgets are not painted at all.
	}
}

func (i *Interceptor) background(next graph.DrawFunc) graph.DrawFunc {
	return func(ctx paint.Context, n *graph.Node) {
		if !i.hidden(n) {
			next(ctx, n)
			return
		}
		s := i.snapshot()
		if s.HideMode == settings.ModeBlur {
			blurred(ctx, n, s.BlurAmount, next)
			return
		}
		next(ctx, n)
	}
}

func (i *Interceptor) foreground(next graph.DrawFunc) graph.DrawFunc {
	return func(ctx paint.Context, n *graph.Node) {
		if !i.hidden(n) {
			next(ctx, n)
			return
		}
		s := i.snapshot()
		if s.HideMode == settings.ModeBlur {
			blurred(ctx, n, s.BlurAmount, next)
			return
		}
		next(ctx, n)
		Placeholder(ctx, n.Size, s)
	}
}

// blurred runs next clipped to the node body with a blur filter.
func blurred(ctx paint.Context, n *graph.Node, amount float64, next graph.DrawFunc) {
	ctx.Save()
	ctx.ClipRect(0, TitleHeight, n.Size.W, n.Size.H-TitleHeight)
	ctx.SetFilter(paint.Blur(amount))
	next(ctx, n)
	ctx.SetFilter(paint.Filter{})
	ctx.Restore()
}

// Placeholder paints the cover card over the node body: a vertical gradient with
// rounded bottom corners, a border, and the icon above the label.
func Placeholder(ctx paint.Context, size vector.Size, s settings.Snapshot) {
	d := settings.DefaultSnapshot()
	icon, text := s.Icon, s.Text
	if icon == "" {
		icon = d.Icon
	}
	if text == "" {
		text = d.Text
	}
	w, h := size.W, size.H

	ctx.Save()
	ctx.SetFill(paint.Fill{Gradient: &paint.LinearGradient{
		X0: 0, Y0: TitleHeight, X1: 0, Y1: h,
		Stops: []paint.Stop{{Offset: 0, Color: s.GradientStart}, {Offset: 1, Color: s.GradientEnd}},
	}})
	ctx.BeginPath()
	paint.RoundRect(ctx, 0, TitleHeight, w, h-TitleHeight, paint.Radii{0, 0, CornerRadius, CornerRadius})
	ctx.Fill()
	ctx.SetStrokeColor(s.BorderColor)
	ctx.SetLineWidth(BorderWidth)
	ctx.Stroke()

	cx, cy := w/2, (h+TitleHeight)/2
	ctx.SetFill(paint.Fill{Color: s.TextColor})
	ctx.SetTextAlign(paint.AlignCenter)
	ctx.SetTextBaseline(paint.BaselineMiddle)
	room := w - 2*LabelPadding
	ctx.SetFont(paint.Font{Size: IconSize})
	ctx.FillText(textlayout.Ellipsize(ctx.MeasureText, icon, room), cx, cy-LabelOffset)
	ctx.SetFont(paint.Font{Size: LabelSize, Bold: true})
	ctx.SetShadow(labelShadow)
	ctx.FillText(textlayout.Ellipsize(ctx.MeasureText, text, room), cx, cy+LabelOffset)
	ctx.Restore()
}
