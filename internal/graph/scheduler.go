/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package graph

import (
	"context"
)

// Scheduler runs work on the host's UI thread. All node, element and paint state is
// touched only from functions passed to Do.
type Scheduler interface {
	Do(fn func())
}

// ContextScheduler is implemented by schedulers that can give up waiting for the UI
// thread when ctx is done. It reports whether fn ran.
type ContextScheduler interface {
	Scheduler
	DoContext(ctx context.Context, fn func()) bool
}

// SerialScheduler serializes work with a one-slot semaphore. It is the headless
// stand-in for a UI event loop: Do runs fn on the caller's goroutine once no other
// scheduled function is running. Do is not reentrant.
type SerialScheduler struct {
	sem chan struct{}
}

func NewSerialScheduler() *SerialScheduler { return &SerialScheduler{sem: make(chan struct{}, 1)} }

func (s *SerialScheduler) Do(fn func()) {
	s.sem <- struct{}{}
	defer func() { <-s.sem }()
	fn()
}

func (s *SerialScheduler) DoContext(ctx context.Context, fn func()) bool {
	select {
	case s.sem <- struct{}{}:
	case <-ctx.Done():
		return false
	}
	defer func() { <-s.sem }()
	if ctx.Err() != nil {
		return false
	}
	fn()
	return true
}

// Post runs fn through s, giving up when ctx is done first if s supports it.
func Post(ctx context.Context, s Scheduler, fn func()) bool {
	if cs, ok := s.(ContextScheduler); ok {
		return cs.DoContext(ctx, fn)
	}
	if ctx.Err() != nil {
		return false
	}
	s.Do(fn)
	return true
}

// SchedulerFunc adapts a function such as fyne.Do to Scheduler.
type SchedulerFunc func(fn func())

func (f SchedulerFunc) Do(fn func()) { f(fn) }
