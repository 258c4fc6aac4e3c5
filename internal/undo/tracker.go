/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package undo

import (
	"fmt"
	"sync/atomic"
	"time"

	"icyhider/internal/settings"
)

// Tracker records every change of a settings registry into a Manager and replays
// undo and redo through the registry, so replayed values validate, persist and
// notify like any other edit.
type Tracker struct {
	reg       *settings.Registry
	m         *Manager
	now       func() time.Time
	replaying atomic.Bool
	cancel    func()
}

// Track subscribes to reg. Close stops recording.
func Track(reg *settings.Registry, m *Manager) *Tracker {
	t := &Tracker{reg: reg, m: m, now: time.Now}
	t.cancel = reg.Subscribe(func(c settings.Change) {
		if t.replaying.Load() {
			return
		}
		t.m.Push(Edit{Key: c.Key, Old: c.Old, New: c.New, TS: t.now()})
	})
	return t
}

// Manager returns the underlying history.
func (t *Tracker) Manager() *Manager { return t.m }

// Undo restores the value before the newest edit. ok is false when there is
// nothing to undo.
func (t *Tracker) Undo() (e Edit, ok bool, err error) {
	if e, ok = t.m.Undo(); !ok {
		return e, false, nil
	}
	if err := t.replay(e.Key, e.Old); err != nil {
		t.m.Redo()
		return e, true, fmt.Errorf("undo %s: %w", e.Key, err)
	}
	return e, true, nil
}

// Redo re-applies the last undone edit.
func (t *Tracker) Redo() (e Edit, ok bool, err error) {
	if e, ok = t.m.Redo(); !ok {
		return e, false, nil
	}
	if err := t.replay(e.Key, e.New); err != nil {
		t.m.Undo()
		return e, true, fmt.Errorf("redo %s: %w", e.Key, err)
	}
	return e, true, nil
}

func (t *Tracker) replay(key string, v any) error {
	t.replaying.Store(true)
	defer t.replaying.Store(false)
	return t.reg.Set(key, v)
}

func (t *Tracker) Close() {
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
}
