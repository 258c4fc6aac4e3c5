/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package graph

import (
	"icyhider/internal/dom"
	"icyhider/internal/paint"
	"icyhider/internal/vector"
)

// Builtins returns a small set of image-generation node classes used by the CLI and the
// desktop host.
func Builtins() []Class {
	return []Class{
		{
			Name: "LoadImage", Category: "image",
			Inputs: []string{}, Outputs: []string{"IMAGE", "MASK"},
			Widgets: []WidgetSpec{{Name: "image", Tag: dom.TagImg, Src: "/view?filename=portrait.png&type=input"}},
		},
		{
			Name: "CLIPTextEncode", Category: "conditioning",
			Inputs: []string{"CLIP"}, Outputs: []string{"CONDITIONING"},
			Widgets: []WidgetSpec{{Name: "text", Tag: dom.TagTextArea, Value: "a quiet harbor at dawn, film grain"}},
		},
		{
			Name: "KSampler", Category: "sampling",
			Inputs:  []string{"MODEL", "CONDITIONING", "LATENT"},
			Outputs: []string{"LATENT"},
			Widgets: []WidgetSpec{{Name: "seed", Value: "42"}, {Name: "steps", Value: "20"}, {Name: "cfg", Value: "7.0"}},
		},
		{
			Name: "PreviewImage", Category: "image",
			Inputs: []string{"IMAGE"}, Outputs: []string{},
			Widgets: []WidgetSpec{{Name: "preview", Tag: dom.TagImg, Src: "/view?filename=out_0001.png&type=temp"}},
			Draw:    map[Stage]DrawFunc{StageForeground: drawPreview},
		},
		{
			Name: "SaveAnimatedWEBP", Category: "image/animation",
			Inputs: []string{"IMAGE"}, Outputs: []string{},
			Widgets: []WidgetSpec{{Name: "preview", Tag: dom.TagImg, Src: "/view?filename=clip_0001.webp&type=output"}},
		},
		{
			Name: "LoadVideo", Category: "video",
			Inputs: []string{}, Outputs: []string{"VIDEO"},
			Widgets: []WidgetSpec{{Name: "video", Tag: dom.TagVideo, Src: "/view?filename=walk.mp4&type=input"}},
		},
		{
			Name: "Note", Category: "utils",
			Widgets: []WidgetSpec{{Name: "text", Tag: dom.TagTextArea, Value: "remember to check the seed"}},
		},
		{
			Name: "_Reroute", Category: "utils",
			Inputs: []string{"*"}, Outputs: []string{"*"},
		},
	}
}

// RegisterBuiltins registers Builtins and their Icy variants.
func RegisterBuiltins(r *Registry) error {
	for _, c := range Builtins() {
		if err := r.Register(c); err != nil {
			return err
		}
	}
	r.RegisterIcyVariants()
	return nil
}

// drawPreview paints a stand-in for a generated image below the widget rows.
func drawPreview(ctx paint.Context, n *Node) {
	top := n.WidgetRect(len(n.Widgets)).Y
	h := n.Size.H - top - 8
	if h <= 0 {
		return
	}
	ctx.SetFill(paint.Fill{Gradient: ptr(paint.NewLinearGradient(8, top, n.Size.W-8, top+h,
		paint.Color{R: 0xF2, G: 0x99, B: 0x4A, A: 255}, paint.Color{R: 0xF2, G: 0xC9, B: 0x4C, A: 255}))})
	ctx.BeginPath()
	ctx.Rect(8, top, n.Size.W-16, h)
	ctx.Fill()
}

func ptr[T any](v T) *T { return &v }

// demoLayout is the class order of the demo workflow.
var demoLayout = []string{
	"LoadImage", "CLIPTextEncode", "KSampler", "PreviewImage",
	"IcyCLIPTextEncode", "IcyKSampler", "SaveAnimatedWEBP", "LoadVideo", "Note",
}

// Demo adds a small workflow to g, four nodes per row. Classes missing from the
// registry are skipped. The added nodes are returned in layout order.
func Demo(g *Graph) []*Node {
	const cols, gapX, gapY = 4, 270.0, 190.0
	var out []*Node
	for _, name := range demoLayout {
		if _, ok := g.classes.Class(name); !ok {
			continue
		}
		i := len(out)
		out = append(out, g.Add(name, vector.Pt{X: 20 + float64(i%cols)*gapX, Y: 20 + float64(i/cols)*gapY}))
	}
	return out
}
