/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"icyhider/internal/config"
	"icyhider/internal/crash"
	"icyhider/internal/export"
	"icyhider/internal/graph"
	"icyhider/internal/host"
	applog "icyhider/internal/log"
	"icyhider/internal/settings"
	"icyhider/internal/stylepack"
	"icyhider/internal/ui"
	"icyhider/internal/vector"
	"icyhider/internal/version"
)

// errUsage makes main print the usage text and exit with code 2.
var errUsage = errors.New("usage")

func usage(w io.Writer) {
	_, _ = fmt.Fprintln(w, "IcyHider — visual privacy for node graphs")
	_, _ = fmt.Fprintf(w, "Version: %s\n", version.String())
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "Usage:")
	_, _ = fmt.Fprintln(w, "  icyhider version|-v|--version                      Show version")
	_, _ = fmt.Fprintln(w, "  icyhider settings                                  Print effective settings")
	_, _ = fmt.Fprintln(w, "  icyhider set <key> <value>                         Change a setting (key with or without IcyHider. prefix)")
	_, _ = fmt.Fprintln(w, "  icyhider render <out.png|out.pdf> [--select id]... [--hover id] [--width n] [--height n]")
	_, _ = fmt.Fprintln(w, "                                                     Render the demo graph; id is a node number or class")
	_, _ = fmt.Fprintln(w, "  icyhider theme save|apply <name>                   Save or apply the cover appearance")
	_, _ = fmt.Fprintln(w, "  icyhider theme list                                List saved themes")
	_, _ = fmt.Fprintln(w, "  icyhider theme export|install <pack.zip>           Share themes as a style pack")
	_, _ = fmt.Fprintln(w, "  icyhider ui                                        Launch desktop UI (build with -tags fyne)")
}

func main() {
	cfg, cfgErr := config.Load()
	applog.Init(applog.Options{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.Source,
		File:      cfg.Logging.File,
	})
	l := applog.WithComponent("cli")
	if cfgErr != nil {
		l.Warn("config load failed, using defaults", slog.Any("err", cfgErr))
	}
	info := &crash.Info{}
	if dir, err := config.Dir(); err == nil {
		info.Dir = filepath.Join(dir, "crashes")
	}
	defer func() { crash.Recover(info) }()

	err := run(cfg, os.Args[1:], os.Stdin, os.Stdout)
	switch {
	case err == nil:
	case errors.Is(err, errUsage):
		usage(os.Stdout)
		os.Exit(2)
	default:
		l.Error("command failed", slog.Any("err", err))
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}

func run(cfg config.AppConfig, args []string, in io.Reader, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	switch args[0] {
	case "version", "--version", "-v":
		_, _ = fmt.Fprintln(out, "IcyHider")
		_, _ = fmt.Fprintln(out, version.String())
		return nil
	case "settings":
		return showSettings(cfg, out)
	case "set":
		if len(args) != 3 {
			_, _ = fmt.Fprintln(out, "set requires <key> and <value>")
			return errUsage
		}
		return setSetting(cfg, args[1], args[2], in, out)
	case "render":
		return render(cfg, args[1:], out)
	case "theme":
		return theme(cfg, args[1:], out)
	case "ui":
		return ui.Run(cfg)
	default:
		return errUsage
	}
}

func openHost(cfg config.AppConfig, demo bool, p settings.Prompter) (*host.Host, error) {
	// Commands are short-lived; edits from other processes are not followed.
	cfg.Hider.WatchSettings = false
	return host.Open(context.Background(), host.Options{Config: cfg, Demo: demo, Prompter: p})
}

func showSettings(cfg config.AppConfig, out io.Writer) error {
	h, err := openHost(cfg, false, settings.AutoPrompter{})
	if err != nil {
		return err
	}
	defer func() { _ = h.Close() }()
	_, _ = fmt.Fprintf(out, "# %s\n", h.Settings.Path())
	for _, d := range h.Settings.Declarations() {
		mark := ""
		if d.Structural {
			mark = "  (reload)"
		}
		_, _ = fmt.Fprintf(out, "%-28s %v%s\n", d.ID, h.Settings.Value(d.ID, d.Default), mark)
	}
	return nil
}

func setSetting(cfg config.AppConfig, key, value string, in io.Reader, out io.Writer) error {
	if !strings.HasPrefix(key, settings.Prefix) {
		key = settings.Prefix + key
	}
	h, err := openHost(cfg, false, &settings.ConsolePrompter{In: in, Out: out})
	if err != nil {
		return err
	}
	defer func() { _ = h.Close() }()
	before := h.Extension.Reloads()
	if err := h.Settings.SetString(key, value); err != nil {
		return err
	}
	h.Extension.Settle()
	_, _ = fmt.Fprintf(out, "%s = %v\n", key, h.Settings.Value(key, nil))
	if h.Extension.Reloads() > before {
		_, _ = fmt.Fprintln(out, "Reloaded.")
	}
	return nil
}

func theme(cfg config.AppConfig, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	dir, err := cfg.ThemesDir()
	if err != nil {
		return err
	}
	if args[0] == "list" {
		names, err := stylepack.ListThemes(dir)
		if err != nil {
			return err
		}
		for _, n := range names {
			_, _ = fmt.Fprintln(out, n)
		}
		return nil
	}
	if len(args) != 2 {
		_, _ = fmt.Fprintf(out, "theme %s requires one argument\n", args[0])
		return errUsage
	}
	arg := args[1]
	switch args[0] {
	case "export":
		if err := stylepack.ExportPack(dir, arg); err != nil {
			return err
		}
		_, _ = fmt.Fprintln(out, "Wrote", arg)
		return nil
	case "install":
		n, err := stylepack.InstallPack(dir, arg)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(out, "Installed %d theme(s)\n", n)
		return nil
	case "save", "apply":
	default:
		return errUsage
	}

	h, err := openHost(cfg, false, settings.AutoPrompter{})
	if err != nil {
		return err
	}
	defer func() { _ = h.Close() }()
	if args[0] == "save" {
		p, err := stylepack.SaveTheme(dir, arg, stylepack.Capture(h.Settings))
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(out, "Saved", p)
		return nil
	}
	th, err := stylepack.LoadTheme(dir, arg)
	if err != nil {
		return err
	}
	if err := stylepack.Apply(h.Settings, th); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(out, "Applied", arg)
	return nil
}

// nodeList collects repeated --select/--hover values.
type nodeList []string

func (n *nodeList) String() string     { return strings.Join(*n, ",") }
func (n *nodeList) Set(v string) error { *n = append(*n, v); return nil }

func render(cfg config.AppConfig, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	fs.SetOutput(out)
	var sel nodeList
	var hover string
	fs.Var(&sel, "select", "select node by number or class (repeatable)")
	fs.StringVar(&hover, "hover", "", "hover node by number or class")
	width := fs.Int("width", cfg.Render.Width, "frame width, 0 fits the graph")
	height := fs.Int("height", cfg.Render.Height, "frame height, 0 fits the graph")

	var path string
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		path, args = args[0], args[1:]
	}
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if path == "" {
		path = fs.Arg(0)
	}
	if path == "" {
		_, _ = fmt.Fprintln(out, "render requires <out.png|out.pdf>")
		return errUsage
	}

	h, err := openHost(cfg, true, settings.AutoPrompter{})
	if err != nil {
		return err
	}
	defer func() { _ = h.Close() }()

	var runErr error
	h.Do(func() {
		g := h.Graph
		for _, id := range sel {
			n := findNode(g, id)
			if n == nil {
				runErr = fmt.Errorf("no node %q", id)
				return
			}
			g.Select(n, true)
		}
		if hover != "" {
			n := findNode(g, hover)
			if n == nil {
				runErr = fmt.Errorf("no node %q", hover)
				return
			}
			b := n.Bounds()
			g.Hover(vector.Pt{X: b.X + b.W/2, Y: b.Y + b.H/2})
		}
		opt := export.Options{Width: *width, Height: *height, Background: h.Background()}
		runErr = export.Export(g, path, opt)
	})
	if runErr != nil {
		return runErr
	}
	_, _ = fmt.Fprintln(out, "Wrote", path)
	return nil
}

// findNode resolves a node number or, failing that, the first node of a class.
func findNode(g *graph.Graph, id string) *graph.Node {
	if n, err := strconv.Atoi(id); err == nil {
		return g.Node(graph.NodeID(n))
	}
	for _, n := range g.Nodes() {
		if n.Class == id {
			return n
		}
	}
	return nil
}
