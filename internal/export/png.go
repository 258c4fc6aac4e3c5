/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"icyhider/internal/graph"
	"icyhider/internal/paint"
	"icyhider/internal/paint/raster"
	"icyhider/internal/vector"
)

// DefaultMargin surrounds the node bounds when the frame size is derived.
const DefaultMargin = 20

// Options controls frame export.
// - Width/Height: output size; zero derives it from the graph bounds plus Margin
// - Margin: space left around the nodes, negative means none
// - Background: fill behind the graph; the zero value means the editor gray
type Options struct {
	Width      int
	Height     int
	Margin     float64
	Background paint.Color
}

var editorBackground = paint.Color{R: 0x20, G: 0x20, B: 0x20, A: 255}

// frame resolves the output size and the translation that moves the graph into it.
func (o Options) frame(g *graph.Graph) (w, h int, origin vector.Pt, bg paint.Color) {
	margin := o.Margin
	if margin == 0 {
		margin = DefaultMargin
	}
	if margin < 0 {
		margin = 0
	}
	b := g.Bounds()
	origin = vector.Pt{X: margin - b.X, Y: margin - b.Y}
	w, h = o.Width, o.Height
	if w <= 0 {
		w = int(math.Ceil(b.W + 2*margin))
	}
	if h <= 0 {
		h = int(math.Ceil(b.H + 2*margin))
	}
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	bg = o.Background
	if bg == (paint.Color{}) {
		bg = editorBackground
	}
	return w, h, origin, bg
}

// drawFrame paints g into ctx shifted by origin.
func drawFrame(ctx paint.Context, g *graph.Graph, origin vector.Pt) {
	ctx.Save()
	ctx.Translate(origin.X, origin.Y)
	g.Draw(ctx)
	ctx.Restore()
}

// RenderImage draws g on a raster canvas and returns it.
func RenderImage(g *graph.Graph, opt Options) (*raster.Canvas, error) {
	if g == nil {
		return nil, fmt.Errorf("graph is nil")
	}
	w, h, origin, bg := opt.frame(g)
	c := raster.New(w, h)
	c.Clear(bg)
	drawFrame(c, g, origin)
	return c, nil
}

// ExportPNG renders g as one PNG frame at path. Parent directories are created.
func ExportPNG(g *graph.Graph, path string, opt Options) error {
	c, err := RenderImage(g, opt)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	if err := c.SavePNG(path); err != nil {
		return fmt.Errorf("save png: %w", err)
	}
	return nil
}
