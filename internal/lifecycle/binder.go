/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package lifecycle binds the hide policy to graph nodes: it decorates selection and
// hover events, keeps the per-node hidden flag current, reconciles selection changes
// that bypass events, and restyles late-added widget elements.
package lifecycle

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"icyhider/internal/dom"
	"icyhider/internal/graph"
	applog "icyhider/internal/log"
	"icyhider/internal/overlay"
	"icyhider/internal/policy"
	"icyhider/internal/render"
	"icyhider/internal/settings"
)

// Key is the decorator key the binder installs event handlers under.
const Key = "icyhider.lifecycle"

// DefaultPollInterval is how often selection drift is checked.
const DefaultPollInterval = 100 * time.Millisecond

// Options configures a Binder.
type Options struct {
	PollInterval time.Duration
	Scheduler    graph.Scheduler
	Logger       *slog.Logger
}

// State is the transient per-node state the binder keeps.
type State struct {
	Hovered      bool
	ShouldHide   bool
	Hidden       bool
	LastSelected bool
}

type nodeState struct {
	State
	cancel context.CancelFunc
}

// Binder attaches hide behaviour to nodes. Node state is only touched on the scheduler.
type Binder struct {
	container *dom.Container
	sched     graph.Scheduler
	interval  time.Duration
	log       *slog.Logger
	render    *render.Interceptor

	// snap is read by paint and written by live settings updates.
	snap atomic.Pointer[settings.Snapshot]

	mu      sync.Mutex
	states  map[*graph.Node]*nodeState
	unsub   func()
	ctx     context.Context
	cancel  context.CancelFunc
	group   *errgroup.Group
	closed  bool
	running atomic.Int32
}

// New returns a binder using snap until ApplySettings replaces its live fields.
func New(container *dom.Container, snap settings.Snapshot, opts Options) *Binder {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.Scheduler == nil {
		opts.Scheduler = graph.NewSerialScheduler()
	}
	if opts.Logger == nil {
		opts.Logger = applog.WithComponent("lifecycle")
	}
	ctx, cancel := context.WithCancel(context.Background())
	group, gctx := errgroup.WithContext(ctx)
	b := &Binder{
		container: container,
		sched:     opts.Scheduler,
		interval:  opts.PollInterval,
		log:       opts.Logger,
		states:    map[*graph.Node]*nodeState{},
		ctx:       gctx,
		cancel:    cancel,
		group:     group,
	}
	b.snap.Store(&snap)
	b.render = render.New(b.Hidden, b.Snapshot)
	return b
}

// Snapshot returns the settings the binder currently paints with.
func (b *Binder) Snapshot() settings.Snapshot { return *b.snap.Load() }

// Setup subscribes to the container so widget elements created after a node was set
// up get the overlay too.
func (b *Binder) Setup() {
	if b.container == nil {
		return
	}
	b.container.InjectStyle(overlay.TransitionRuleID, overlay.TransitionRule)
	cancel := b.container.Observe(b.elementsAdded)
	b.mu.Lock()
	b.unsub = cancel
	b.mu.Unlock()
}

// NodeCreated initializes n's state, decorates its events and draw stages and starts
// its reconciliation task.
func (b *Binder) NodeCreated(n *graph.Node) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	if old, ok := b.states[n]; ok {
		old.cancel()
	}
	ctx, cancel := context.WithCancel(b.ctx)
	st := &nodeState{cancel: cancel}
	b.states[n] = st
	b.mu.Unlock()

	b.update(n, st)

	n.Decorate(graph.EventSelected, Key, b.wrap(st, func() { st.LastSelected = true; n.Selected = true }))
	n.Decorate(graph.EventDeselected, Key, b.wrap(st, func() { st.LastSelected = false; n.Selected = false }))
	n.Decorate(graph.EventMouseEnter, Key, b.wrap(st, func() { st.Hovered = true }))
	n.Decorate(graph.EventMouseLeave, Key, b.wrap(st, func() { st.Hovered = false }))
	b.render.Install(n)

	b.group.Go(func() error { return b.reconcileLoop(ctx, n, st) })
	b.log.Debug("node bound", slog.Int("node", int(n.ID)), slog.String("class", n.Class), slog.Bool("hidden", st.Hidden))
}

// wrap returns a decorator that applies mutate, recomputes, marks the canvas dirty and
// then delegates with the original event.
func (b *Binder) wrap(st *nodeState, mutate func()) graph.HandlerDecorator {
	return func(next graph.Handler) graph.Handler {
		return func(n *graph.Node, ev graph.Event) {
			mutate()
			b.update(n, st)
			n.SetDirtyCanvas()
			next(n, ev)
		}
	}
}

// update recomputes the policy for n and applies the overlay.
func (b *Binder) update(n *graph.Node, st *nodeState) {
	snap := b.Snapshot()
	st.ShouldHide = policy.Hidden(policy.Inputs{
		Avalanche: snap.Avalanche,
		Selected:  n.Selected,
		Hovered:   st.Hovered,
		Variant:   n.Variant,
	})
	st.Hidden = st.ShouldHide
	overlay.Apply(n, st.Hidden, snap)
}

func (b *Binder) reconcileLoop(ctx context.Context, n *graph.Node, st *nodeState) error {
	b.running.Add(1)
	defer b.running.Add(-1)
	t := time.NewTicker(b.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			// Schedulers such as fyne.Do queue fn; the binder may be gone by the time it runs.
			graph.Post(ctx, b.sched, func() {
				if ctx.Err() == nil {
					b.reconcile(n, st)
				}
			})
		}
	}
}

// reconcile catches selection changes made without events.
func (b *Binder) reconcile(n *graph.Node, st *nodeState) bool {
	if n.Selected == st.LastSelected {
		return false
	}
	st.LastSelected = n.Selected
	b.update(n, st)
	n.SetDirtyCanvas()
	b.log.Debug("selection drift reconciled", slog.Int("node", int(n.ID)), slog.Bool("selected", n.Selected))
	return true
}

// elementsAdded restyles hidden nodes when a text area, video or image appears.
func (b *Binder) elementsAdded(els []*dom.Element) {
	relevant := false
	for _, el := range els {
		switch el.TagName() {
		case dom.TagTextArea, dom.TagVideo, dom.TagImg:
			relevant = true
		}
	}
	if !relevant {
		return
	}
	snap := b.Snapshot()
	for n, st := range b.bound() {
		if st.Hidden {
			overlay.Apply(n, true, snap)
		}
	}
}

func (b *Binder) bound() map[*graph.Node]*nodeState {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(map[*graph.Node]*nodeState, len(b.states))
	for n, st := range b.states {
		out[n] = st
	}
	return out
}

// Hidden reports the last computed hidden flag of n. Unbound nodes are visible.
func (b *Binder) Hidden(n *graph.Node) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	st, ok := b.states[n]
	return ok && st.Hidden
}

// State returns a copy of n's state.
func (b *Binder) State(n *graph.Node) (State, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	st, ok := b.states[n]
	if !ok {
		return State{}, false
	}
	return st.State, true
}

// NodeRemoved cancels n's task, removes its decorators and forgets its state.
func (b *Binder) NodeRemoved(n *graph.Node) {
	b.mu.Lock()
	st, ok := b.states[n]
	delete(b.states, n)
	b.mu.Unlock()
	if !ok {
		return
	}
	st.cancel()
	n.Undecorate(Key)
	n.Undecorate(render.Key)
}

// ApplySettings takes the live fields of snap. Avalanche and HideMode stay as they
// were when the binder was created; they change only through a reload.
func (b *Binder) ApplySettings(snap settings.Snapshot) {
	next := snap.WithStructural(b.Snapshot())
	b.snap.Store(&next)
	for n, st := range b.bound() {
		if st.Hidden {
			overlay.Apply(n, true, next)
			n.SetDirtyCanvas()
		}
	}
}

// Close stops every task and the container subscription, and removes the binder's
// decorators from its nodes. It waits for the tasks to exit.
func (b *Binder) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	unsub := b.unsub
	states := b.states
	b.states = map[*graph.Node]*nodeState{}
	b.mu.Unlock()

	if unsub != nil {
		unsub()
	}
	b.cancel()
	for n, st := range states {
		st.cancel()
		n.Undecorate(Key)
		n.Undecorate(render.Key)
	}
	return b.group.Wait()
}

// Bound returns the number of nodes the binder tracks.
func (b *Binder) Bound() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.states)
}

// Running returns the number of reconciliation tasks that have not exited yet.
func (b *Binder) Running() int { return int(b.running.Load()) }
