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
	"os"
	"path/filepath"
	"strings"

	"icyhider/internal/graph"
	"icyhider/internal/paint/vecpdf"
)

// ExportPDF renders g as a single-page vector PDF at path. One PDF point maps to
// one canvas pixel. Blurred regions become opaque blocks.
func ExportPDF(g *graph.Graph, path string, opt Options) error {
	if g == nil {
		return fmt.Errorf("graph is nil")
	}
	w, h, origin, bg := opt.frame(g)
	doc := vecpdf.New(float64(w), float64(h), "IcyHider frame")
	doc.Clear(bg)
	drawFrame(doc, g, origin)
	if err := doc.Err(); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	return doc.SaveFile(path)
}

// Export picks the format from the file extension.
func Export(g *graph.Graph, path string, opt Options) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return ExportPNG(g, path, opt)
	case ".pdf":
		return ExportPDF(g, path, opt)
	default:
		return fmt.Errorf("unknown export format: %q", filepath.Ext(path))
	}
}
