/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package policy decides whether a node's content is hidden.
package policy

import "strings"

// IcyPrefix is the reserved class-name prefix of Icy node classes.
const IcyPrefix = "Icy"

// Variant marks a node as Icy (hover to reveal) or as an ordinary node.
// It is set once when the node is created, never derived at draw time.
type Variant struct {
	icy     bool
	subkind string
}

// Other is the variant of every non-Icy node.
func Other() Variant { return Variant{} }

// Icy returns the Icy variant wrapping the given base class.
func Icy(subkind string) Variant { return Variant{icy: true, subkind: subkind} }

// VariantOf derives the marker from a bare class name.
func VariantOf(class string) Variant {
	if base, ok := strings.CutPrefix(class, IcyPrefix); ok {
		return Icy(base)
	}
	return Other()
}

func (v Variant) IsIcy() bool     { return v.icy }
func (v Variant) Subkind() string { return v.subkind }

func (v Variant) String() string {
	if v.icy {
		return IcyPrefix + "(" + v.subkind + ")"
	}
	return "Other"
}

// Inputs is everything the decision depends on.
type Inputs struct {
	Avalanche bool
	Selected  bool
	Hovered   bool
	Variant   Variant
}

// Hidden reports whether a node's content must be hidden.
//
// With Avalanche on every node is hidden unless selected. With Avalanche off only
// Icy nodes are hidden, and only while the pointer is not over them.
func Hidden(in Inputs) bool {
	if in.Avalanche {
		return !in.Selected
	}
	if in.Variant.IsIcy() {
		return !in.Hovered
	}
	return false
}
