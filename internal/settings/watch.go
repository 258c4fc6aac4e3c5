/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package settings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch applies external edits of the settings file until ctx is done. Changed keys go
// through Set, so OnChange and subscribers fire as for interactive edits. Editors that
// replace the file are handled by watching the directory.
func (r *Registry) Watch(ctx context.Context) error {
	if r.path == "" {
		return errors.New("settings: watch needs a file-backed registry")
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("settings watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(r.path)); err != nil {
		_ = w.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(r.path), err)
	}
	go func() {
		defer w.Close()
		var debounce <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != filepath.Clean(r.path) {
					continue
				}
				if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
					debounce = time.After(50 * time.Millisecond)
				}
			case <-debounce:
				debounce = nil
				if err := r.Reconcile(); err != nil {
					r.log.Warn("settings reload failed", slog.Any("err", err))
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				r.log.Warn("settings watcher error", slog.Any("err", err))
			}
		}
	}()
	return nil
}

// Reconcile re-reads the settings file and applies every declared key whose value
// differs from the current one. Invalid values are skipped.
func (r *Registry) Reconcile() error {
	raw, err := readFile(r.path)
	if err != nil {
		return err
	}
	var errs []error
	for _, d := range r.Declarations() {
		v, ok := raw[d.ID]
		if !ok {
			continue
		}
		if err := r.Set(d.ID, v); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
