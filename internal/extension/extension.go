/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package extension is the IcyHider registration object a graph host loads: its name,
// its settings, and the setup and node-creation hooks.
package extension

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"icyhider/internal/graph"
	"icyhider/internal/lifecycle"
	applog "icyhider/internal/log"
	"icyhider/internal/settings"
)

// Name is the registered extension name.
const Name = "Comfy.IcyHider"

// Deps are the host services the extension uses.
type Deps struct {
	Graph     *graph.Graph
	Settings  *settings.Registry
	Prompter  settings.Prompter
	Scheduler graph.Scheduler
	// PollInterval overrides the reconciliation interval.
	PollInterval time.Duration
	// WatchSettings applies external edits of the settings file while set up.
	WatchSettings bool
	// OnReload runs after a reload finished, e.g. to repaint.
	OnReload func()
}

// Extension implements graph.Extension.
type Extension struct {
	Name     string
	Settings []settings.Declaration

	deps Deps
	log  *slog.Logger

	mu      sync.Mutex
	binder  *lifecycle.Binder
	unsub   func()
	stop    context.CancelFunc
	reloads int
	closed  bool

	// pending counts settings work posted to the scheduler and not yet run.
	pending sync.WaitGroup
}

// New builds the extension and registers its settings with d.Settings. Changing a
// structural setting prompts through d.Prompter and reloads on confirmation.
func New(d Deps) (*Extension, error) {
	if d.Graph == nil || d.Settings == nil {
		return nil, errors.New("extension: graph and settings are required")
	}
	if d.Scheduler == nil {
		d.Scheduler = graph.NewSerialScheduler()
	}
	e := &Extension{Name: Name, deps: d, log: applog.WithComponent("extension")}
	decls := settings.Declarations()
	for i := range decls {
		if decls[i].Structural {
			decls[i].OnChange = settings.PromptOnChange(decls[i].ID, d.Prompter, e.reloadFromPrompt)
		}
	}
	e.Settings = decls
	if err := d.Settings.Register(decls...); err != nil {
		return nil, fmt.Errorf("register settings: %w", err)
	}
	return e, nil
}

func (e *Extension) ExtensionName() string { return e.Name }

// Setup creates the binder, subscribes it to the widget container and to live
// settings changes, and starts the settings watcher when configured.
func (e *Extension) Setup(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.setupLocked(ctx)
}

func (e *Extension) setupLocked(ctx context.Context) error {
	if e.binder != nil {
		return errors.New("extension: already set up")
	}
	b := lifecycle.New(e.deps.Graph.Container(), e.deps.Settings.Snapshot(), lifecycle.Options{
		PollInterval: e.deps.PollInterval,
		Scheduler:    e.deps.Scheduler,
		Logger:       applog.WithComponent("lifecycle"),
	})
	b.Setup()
	e.binder = b
	e.unsub = e.deps.Settings.Subscribe(func(c settings.Change) {
		if settings.IsStructural(c.Key) {
			return
		}
		e.post(func() {
			if cur := e.current(); cur != nil {
				cur.ApplySettings(e.deps.Settings.Snapshot())
			}
		})
	})
	wctx, stop := context.WithCancel(ctx)
	e.stop = stop
	if e.deps.WatchSettings && e.deps.Settings.Path() != "" {
		if err := e.deps.Settings.Watch(wctx); err != nil {
			e.log.Warn("settings watch unavailable", slog.Any("err", err))
		}
	}
	snap := b.Snapshot()
	e.log.Info("setup complete",
		slog.Bool("avalanche", snap.Avalanche),
		slog.String("mode", string(snap.HideMode)),
	)
	return nil
}

func (e *Extension) current() *lifecycle.Binder {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.binder
}

// Binder returns the active binder, or nil before Setup.
func (e *Extension) Binder() *lifecycle.Binder { return e.current() }

// NodeCreated binds n.
func (e *Extension) NodeCreated(n *graph.Node) {
	if b := e.current(); b != nil {
		b.NodeCreated(n)
	}
}

// NodeRemoved unbinds n.
func (e *Extension) NodeRemoved(n *graph.Node) {
	if b := e.current(); b != nil {
		b.NodeRemoved(n)
	}
}

// Reload tears the binder down and sets it up again with the current settings, then
// binds every live node. It must run on the host's UI thread.
func (e *Extension) Reload() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	old := e.binder
	e.binder = nil
	if e.unsub != nil {
		e.unsub()
		e.unsub = nil
	}
	if e.stop != nil {
		e.stop()
		e.stop = nil
	}
	e.mu.Unlock()

	var errs []error
	if old != nil {
		errs = append(errs, old.Close())
	}

	e.mu.Lock()
	err := e.setupLocked(context.Background())
	b := e.binder
	e.reloads++
	e.mu.Unlock()
	if err != nil {
		return errors.Join(append(errs, err)...)
	}
	for _, n := range e.deps.Graph.Nodes() {
		b.NodeCreated(n)
	}
	e.deps.Graph.SetDirty()
	e.log.Info("reloaded", slog.Int("nodes", len(e.deps.Graph.Nodes())))
	if e.deps.OnReload != nil {
		e.deps.OnReload()
	}
	return errors.Join(errs...)
}

// reloadFromPrompt queues a confirmed reload on the UI thread.
func (e *Extension) reloadFromPrompt() {
	e.post(func() {
		if err := e.Reload(); err != nil {
			e.log.Error("reload failed", slog.Any("err", err))
		}
	})
}

// post queues fn on the scheduler without waiting for it. Settings change callbacks
// run inside Registry.Set, which may itself be running on the UI thread.
func (e *Extension) post(fn func()) {
	e.pending.Add(1)
	go func() {
		defer e.pending.Done()
		e.deps.Scheduler.Do(fn)
	}()
}

// Settle waits until queued settings work has run. It must not be called on the UI
// thread.
func (e *Extension) Settle() { e.pending.Wait() }

// Reloads returns how many reloads ran.
func (e *Extension) Reloads() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.reloads
}

// Close stops the binder, the settings subscription and the watcher.
func (e *Extension) Close() error {
	e.mu.Lock()
	e.closed = true
	b := e.binder
	e.binder = nil
	if e.unsub != nil {
		e.unsub()
		e.unsub = nil
	}
	if e.stop != nil {
		e.stop()
		e.stop = nil
	}
	e.mu.Unlock()
	if b == nil {
		return nil
	}
	return b.Close()
}
