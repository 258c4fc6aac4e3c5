/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package host assembles a headless graph host: the settings registry, the node
// classes, a demo workflow and the loaded IcyHider extension. The CLI and the
// desktop UI both start from here.
package host

import (
	"context"
	"fmt"
	"log/slog"

	"icyhider/internal/config"
	"icyhider/internal/dom"
	"icyhider/internal/extension"
	"icyhider/internal/graph"
	applog "icyhider/internal/log"
	"icyhider/internal/paint"
	"icyhider/internal/settings"
	"icyhider/internal/undo"
)

// Options configure Open.
type Options struct {
	Config    config.AppConfig
	Prompter  settings.Prompter
	Scheduler graph.Scheduler
	// Demo adds the sample workflow.
	Demo     bool
	OnReload func()
}

// Host is a running graph with the extension registered.
type Host struct {
	Graph     *graph.Graph
	Settings  *settings.Registry
	Extension *extension.Extension
	Scheduler graph.Scheduler
	Config    config.AppConfig
	// History records settings edits for undo.
	History *undo.Tracker
}

// Open loads the settings, builds the graph and registers the extension.
func Open(ctx context.Context, opt Options) (*Host, error) {
	l := applog.WithComponent("host")
	path, err := opt.Config.SettingsPath()
	if err != nil {
		return nil, fmt.Errorf("settings path: %w", err)
	}
	reg := settings.NewRegistry(path)
	if err := reg.Load(); err != nil {
		return nil, err
	}

	classes := graph.NewRegistry()
	if err := graph.RegisterBuiltins(classes); err != nil {
		return nil, fmt.Errorf("register classes: %w", err)
	}
	g := graph.New(classes, dom.NewContainer("graphcanvas"))
	if opt.Demo {
		graph.Demo(g)
	}

	sched := opt.Scheduler
	if sched == nil {
		sched = graph.NewSerialScheduler()
	}
	ext, err := extension.New(extension.Deps{
		Graph:         g,
		Settings:      reg,
		Prompter:      opt.Prompter,
		Scheduler:     sched,
		PollInterval:  opt.Config.Hider.PollInterval(),
		WatchSettings: opt.Config.Hider.WatchSettings,
		OnReload:      opt.OnReload,
	})
	if err != nil {
		return nil, err
	}
	if err := g.RegisterExtension(ctx, ext); err != nil {
		_ = ext.Close()
		return nil, err
	}
	l.Info("host ready", slog.Int("nodes", len(g.Nodes())), slog.String("settings", path))
	return &Host{
		Graph:     g,
		Settings:  reg,
		Extension: ext,
		Scheduler: sched,
		Config:    opt.Config,
		History:   undo.Track(reg, undo.NewManager(undo.Config{})),
	}, nil
}

// Do runs fn on the host scheduler.
func (h *Host) Do(fn func()) { h.Scheduler.Do(fn) }

// Background is the configured canvas color.
func (h *Host) Background() paint.Color {
	return paint.HexOr(h.Config.Render.Background, paint.Color{R: 0x20, G: 0x20, B: 0x20, A: 255})
}

// Close stops the history and the extension.
func (h *Host) Close() error {
	if h.History != nil {
		h.History.Close()
	}
	return h.Extension.Close()
}
