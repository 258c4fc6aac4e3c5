/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package dom

import (
	"slices"
	"sync"
)

// Container holds the elements layered over the graph canvas. Observers are told
// about every batch of elements appended after they subscribed.
type Container struct {
	Name string

	mu     sync.Mutex
	elems  []*Element
	subs   map[int]func(added []*Element)
	nextID int
	rules  map[string]string
}

func NewContainer(name string) *Container {
	return &Container{Name: name, subs: make(map[int]func([]*Element)), rules: make(map[string]string)}
}

// Append adds elements and notifies observers synchronously with the added batch.
func (c *Container) Append(els ...*Element) {
	if len(els) == 0 {
		return
	}
	c.mu.Lock()
	c.elems = append(c.elems, els...)
	subs := make([]func([]*Element), 0, len(c.subs))
	ids := make([]int, 0, len(c.subs))
	for id := range c.subs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		subs = append(subs, c.subs[id])
	}
	c.mu.Unlock()

	batch := slices.Clone(els)
	for _, fn := range subs {
		fn(batch)
	}
}

// Remove detaches an element. Removals are not reported.
func (c *Container) Remove(el *Element) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.elems = slices.DeleteFunc(c.elems, func(e *Element) bool { return e == el })
}

// Elements returns a snapshot of the attached elements.
func (c *Container) Elements() []*Element {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.elems)
}

// Observe subscribes fn to appended elements. The returned cancel func is idempotent.
func (c *Container) Observe(fn func(added []*Element)) (cancel func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = fn
	c.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, id)
			c.mu.Unlock()
		})
	}
}

// Observers reports how many subscriptions are live.
func (c *Container) Observers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subs)
}

// InjectStyle installs a stylesheet rule under id, replacing an earlier one with the same id.
func (c *Container) InjectStyle(id, css string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rules[id] = css
}

// StyleRule returns the stylesheet rule registered under id.
func (c *Container) StyleRule(id string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	css, ok := c.rules[id]
	return css, ok
}
