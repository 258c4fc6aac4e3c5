/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package graph

import "icyhider/internal/paint"

// Stage is one step of a node's paint pass.
type Stage int

const (
	StageBackground Stage = iota
	StageWidgets
	StageForeground
	stages
)

func (s Stage) String() string {
	switch s {
	case StageBackground:
		return "background"
	case StageWidgets:
		return "widgets"
	case StageForeground:
		return "foreground"
	}
	return "unknown"
}

// DrawFunc paints one stage of a node. The context is translated to the node origin.
type DrawFunc func(ctx paint.Context, n *Node)

// DrawDecorator wraps a stage. next is never nil; it paints nothing when the stage has
// no base callback.
type DrawDecorator func(next DrawFunc) DrawFunc

type keyedDraw struct {
	key string
	dec DrawDecorator
}

// DrawPipeline holds the base callback and decorators of each stage.
type DrawPipeline struct {
	base  [stages]DrawFunc
	decos [stages][]keyedDraw
}

// SetBase replaces the base callback of s. Existing decorators wrap the new base.
func (p *DrawPipeline) SetBase(s Stage, fn DrawFunc) { p.base[s] = fn }

// Base returns the base callback of s, possibly nil.
func (p *DrawPipeline) Base(s Stage) DrawFunc { return p.base[s] }

// Use installs d on stage s. A decorator with the same key is replaced in place.
func (p *DrawPipeline) Use(s Stage, key string, d DrawDecorator) {
	for i, kd := range p.decos[s] {
		if kd.key == key {
			p.decos[s][i].dec = d
			return
		}
	}
	p.decos[s] = append(p.decos[s], keyedDraw{key: key, dec: d})
}

// Decorators returns the number of decorators on s.
func (p *DrawPipeline) Decorators(s Stage) int { return len(p.decos[s]) }

func (p *DrawPipeline) remove(key string) {
	for s := range p.decos {
		out := p.decos[s][:0]
		for _, kd := range p.decos[s] {
			if kd.key != key {
				out = append(out, kd)
			}
		}
		p.decos[s] = out
	}
}

// Draw paints stage s through its decorators.
func (p *DrawPipeline) Draw(s Stage, ctx paint.Context, n *Node) {
	base := p.base[s]
	fn := DrawFunc(func(ctx paint.Context, n *Node) {
		if base != nil {
			base(ctx, n)
		}
	})
	for i := len(p.decos[s]) - 1; i >= 0; i-- {
		fn = p.decos[s][i].dec(fn)
	}
	fn(ctx, n)
}
