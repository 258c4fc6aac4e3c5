/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package graph

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	applog "icyhider/internal/log"
	"icyhider/internal/policy"
	"icyhider/internal/vector"
)

// IcyCategory is the category Icy variants are listed under.
const IcyCategory = "IcyHider"

// WidgetSpec declares a widget row. Tag is the DOM tag for element-backed widgets and
// empty for widgets painted on the canvas.
type WidgetSpec struct {
	Name  string
	Tag   string
	Src   string
	Value string
}

// Class is a node type. Inputs and Outputs are nil for abstract classes.
type Class struct {
	Name        string
	DisplayName string
	Category    string
	Inputs      []string
	Outputs     []string
	Widgets     []WidgetSpec
	Size        vector.Size
	// Draw holds optional base callbacks for the background and foreground stages.
	Draw    map[Stage]DrawFunc
	Variant policy.Variant
}

// Concrete reports whether the class declares both inputs and outputs and is public.
func (c Class) Concrete() bool {
	return c.Inputs != nil && c.Outputs != nil && !strings.HasPrefix(c.Name, "_")
}

// Registry maps class names to classes.
type Registry struct {
	classes map[string]*Class
}

func NewRegistry() *Registry { return &Registry{classes: map[string]*Class{}} }

// Register adds c. Duplicate names are rejected.
func (r *Registry) Register(c Class) error {
	if c.Name == "" {
		return fmt.Errorf("graph: class without name")
	}
	if _, ok := r.classes[c.Name]; ok {
		return fmt.Errorf("graph: class %q already registered", c.Name)
	}
	if c.DisplayName == "" {
		c.DisplayName = c.Name
	}
	if c.Size == (vector.Size{}) {
		c.Size = vector.Size{W: 240, H: TitleHeight + 16 + 26*float64(max(len(c.Widgets), 2))}
	}
	r.classes[c.Name] = &c
	return nil
}

// Class looks up a class by name.
func (r *Registry) Class(name string) (*Class, bool) {
	c, ok := r.classes[name]
	return c, ok
}

// Classes returns all classes sorted by name.
func (r *Registry) Classes() []*Class {
	out := make([]*Class, 0, len(r.classes))
	for _, c := range r.classes {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// RegisterIcyVariants registers an Icy twin for every concrete class: same inputs,
// outputs and widgets, class "Icy<Name>", category IcyHider, display name "Icy <Name>".
// It returns the names of the registered twins.
func (r *Registry) RegisterIcyVariants() []string {
	log := applog.WithComponent("graph")
	var added []string
	for _, c := range r.Classes() {
		if !c.Concrete() || c.Variant.IsIcy() {
			continue
		}
		name := policy.IcyPrefix + c.Name
		if _, exists := r.classes[name]; exists {
			log.Debug("icy variant exists", slog.String("class", name))
			continue
		}
		twin := *c
		twin.Name = name
		twin.DisplayName = "Icy " + c.Name
		twin.Category = IcyCategory
		twin.Variant = policy.Icy(c.Name)
		twin.Widgets = append([]WidgetSpec(nil), c.Widgets...)
		r.classes[name] = &twin
		added = append(added, name)
	}
	if len(added) > 0 {
		log.Info("registered icy variants", slog.Int("count", len(added)))
	}
	return added
}
