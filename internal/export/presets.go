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
	"path/filepath"
	"strings"

	"icyhider/internal/graph"
)

// PresetName represents a named export preset.
type PresetName string

const (
	PresetWeb   PresetName = "web"
	PresetPrint PresetName = "print"
)

// BatchOptions controls export of one graph frame into several formats.
//
// Files are written as <OutDir>/<preset>/<Name>.<format>. An empty Name means "frame".
type BatchOptions struct {
	Preset  PresetName
	Formats []string // allowed: png, pdf; empty means preset defaults
	Name    string
	OutDir  string
	Frame   Options
}

// BatchExport runs exports according to the given preset and returns the written paths.
func BatchExport(g *graph.Graph, opt BatchOptions) ([]string, error) {
	if g == nil {
		return nil, fmt.Errorf("graph is nil")
	}
	formats := opt.Formats
	if len(formats) == 0 {
		formats = presetDefaultFormats(opt.Preset)
	}
	name := opt.Name
	if name == "" {
		name = "frame"
	}
	preset := string(opt.Preset)
	if preset == "" {
		preset = "default"
	}
	frame := opt.Frame
	if opt.Preset == PresetPrint && frame.Margin == 0 {
		frame.Margin = 2 * DefaultMargin
	}

	var out []string
	for _, f := range formats {
		f = strings.ToLower(strings.TrimSpace(f))
		path := filepath.Join(opt.OutDir, preset, name+"."+f)
		var err error
		switch f {
		case "png":
			err = ExportPNG(g, path, frame)
		case "pdf":
			err = ExportPDF(g, path, frame)
		default:
			return out, fmt.Errorf("unknown format: %s", f)
		}
		if err != nil {
			return out, fmt.Errorf("%s: %w", f, err)
		}
		out = append(out, path)
	}
	return out, nil
}

func presetDefaultFormats(p PresetName) []string {
	switch p {
	case PresetWeb:
		return []string{"png"}
	case PresetPrint:
		return []string{"pdf", "png"}
	default:
		return []string{"png"}
	}
}
