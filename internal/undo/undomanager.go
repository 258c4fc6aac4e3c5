/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package undo keeps an undo/redo history of settings edits.
package undo

import (
	"reflect"
	"sync"
	"time"
)

// Edit is one change of Key from Old to New.
type Edit struct {
	Key      string
	Old, New any
	TS       time.Time
}

type Config struct {
	// MaxDepth caps the undo stack; the oldest edits are dropped first.
	MaxDepth int
	// Edits of the same key closer than MinInterval coalesce into one, so a slider
	// drag undoes in one step.
	MinInterval time.Duration
}

type Manager struct {
	cfg  Config
	mu   sync.Mutex
	undo []Edit
	redo []Edit
}

func NewManager(cfg Config) *Manager {
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = 100
	}
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = 250 * time.Millisecond
	}
	return &Manager{cfg: cfg}
}

// Push records e and clears the redo stack.
func (m *Manager) Push(e Edit) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.redo = nil
	if n := len(m.undo); n > 0 {
		last := m.undo[n-1]
		if last.Key == e.Key && e.TS.Sub(last.TS) < m.cfg.MinInterval {
			if reflect.DeepEqual(last.Old, e.New) {
				// Back where it started: nothing left to undo.
				m.undo = m.undo[:n-1]
				return
			}
			last.New, last.TS = e.New, e.TS
			m.undo[n-1] = last
			return
		}
	}
	m.undo = append(m.undo, e)
	if over := len(m.undo) - m.cfg.MaxDepth; over > 0 {
		m.undo = append([]Edit{}, m.undo[over:]...)
	}
}

// Undo pops the newest edit and moves it to the redo stack.
func (m *Manager) Undo() (Edit, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.undo)
	if n == 0 {
		return Edit{}, false
	}
	e := m.undo[n-1]
	m.undo = m.undo[:n-1]
	m.redo = append(m.redo, e)
	return e, true
}

// Redo re-applies the last undone edit.
func (m *Manager) Redo() (Edit, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.redo)
	if n == 0 {
		return Edit{}, false
	}
	e := m.redo[n-1]
	m.redo = m.redo[:n-1]
	m.undo = append(m.undo, e)
	return e, true
}

// Clear drops both stacks.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.undo, m.redo = nil, nil
}

// Stats returns the stack depths for diagnostics.
func (m *Manager) Stats() (undo, redo int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.undo), len(m.redo)
}
