//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"icyhider/internal/config"
	"icyhider/internal/crash"
	"icyhider/internal/export"
	"icyhider/internal/graph"
	"icyhider/internal/host"
	applog "icyhider/internal/log"
	"icyhider/internal/settings"
	"icyhider/internal/undo"
	"icyhider/internal/version"
)

// Run starts the desktop host: the graph canvas on the left, the IcyHider settings
// on the right.
func Run(cfg config.AppConfig) error {
	l := applog.WithComponent("ui")
	l.Info("starting UI")

	fyneApp := app.NewWithID("icyhider")
	w := fyneApp.NewWindow("IcyHider " + version.String())
	prefs := fyneApp.Preferences()
	winW := max(prefs.IntWithFallback("window.width", 1280), 800)
	winH := max(prefs.IntWithFallback("window.height", 800), 600)
	w.Resize(fyne.NewSize(float32(winW), float32(winH)))

	var gc *GraphCanvas
	h, err := host.Open(context.Background(), host.Options{
		Config:    cfg,
		Prompter:  &DialogPrompter{Window: w},
		Scheduler: graph.SchedulerFunc(fyne.Do),
		Demo:      true,
		OnReload: func() {
			if gc != nil {
				gc.Refresh()
			}
		},
	})
	if err != nil {
		return fmt.Errorf("open host: %w", err)
	}
	crashInfo := &crash.Info{Settings: h.Settings}
	if dir, err := config.Dir(); err == nil {
		crashInfo.Dir = filepath.Join(dir, "crashes")
	}
	defer func() { crash.Recover(crashInfo) }()

	gc = NewGraphCanvas(NewView(h.Graph, h.Background()))
	status := widget.NewLabel("Ready")
	scroll := container.NewVScroll(newSettingsForm(h.Settings, w, status))
	split := container.NewHSplit(gc, scroll)
	split.Offset = 0.72
	w.SetContent(container.NewBorder(nil, status, nil, nil, split))

	exportItem := func(label, ext string) *fyne.MenuItem {
		return fyne.NewMenuItem(label, func() {
			fd := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
				if err != nil || uc == nil {
					return
				}
				path := uc.URI().Path()
				_ = uc.Close()
				opt := export.Options{Background: h.Background()}
				if err := export.Export(h.Graph, path, opt); err != nil {
					l.Error("export failed", slog.Any("err", err))
					dialog.ShowError(err, w)
					return
				}
				status.SetText("Exported " + filepath.Base(path))
			}, w)
			fd.SetFileName("frame" + ext)
			fd.Show()
		})
	}
	reloadItem := fyne.NewMenuItem("Reload Extension", func() {
		if err := h.Extension.Reload(); err != nil {
			dialog.ShowError(err, w)
		}
	})
	history := func(label string, step func() (undo.Edit, bool, error)) *fyne.MenuItem {
		return fyne.NewMenuItem(label, func() {
			e, ok, err := step()
			switch {
			case err != nil:
				dialog.ShowError(err, w)
			case !ok:
				status.SetText("Nothing to " + strings.ToLower(label))
			default:
				scroll.Content = newSettingsForm(h.Settings, w, status)
				scroll.Refresh()
				status.SetText(label + " " + e.Key)
			}
		})
	}
	undoItem := history("Undo", h.History.Undo)
	undoItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyZ, Modifier: fyne.KeyModifierShortcutDefault}
	redoItem := history("Redo", h.History.Redo)
	redoItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyY, Modifier: fyne.KeyModifierShortcutDefault}
	w.SetMainMenu(fyne.NewMainMenu(
		fyne.NewMenu("File", exportItem("Export PNG…", ".png"), exportItem("Export PDF…", ".pdf")),
		fyne.NewMenu("Edit", undoItem, redoItem),
		fyne.NewMenu("View", reloadItem),
	))
	for _, it := range []*fyne.MenuItem{undoItem, redoItem} {
		w.Canvas().AddShortcut(it.Shortcut, func(fyne.Shortcut) { it.Action() })
	}

	ctx, cancel := context.WithCancel(context.Background())
	go repaintLoop(ctx, h.Graph, gc)
	w.SetOnClosed(func() {
		cancel()
		sz := w.Canvas().Size()
		prefs.SetInt("window.width", int(sz.Width))
		prefs.SetInt("window.height", int(sz.Height))
		if err := h.Close(); err != nil {
			l.Error("close host", slog.Any("err", err))
		}
	})
	w.ShowAndRun()
	return nil
}

// repaintLoop refreshes the canvas whenever the graph asked for a repaint.
func repaintLoop(ctx context.Context, g *graph.Graph, gc *GraphCanvas) {
	t := time.NewTicker(33 * time.Millisecond)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			fyne.Do(func() {
				if g.TakeDirty() {
					gc.Refresh()
				}
			})
		}
	}
}

// DialogPrompter asks for a reload with a confirm dialog on w.
type DialogPrompter struct {
	Window fyne.Window
}

func (p *DialogPrompter) PromptReload(key string, reload func()) {
	fyne.Do(func() {
		d := dialog.NewConfirm("Reload required", settings.ReloadMessage, func(ok bool) {
			applog.WithComponent("ui").Info("reload prompt answered", slog.String("key", key), slog.Bool("reload", ok))
			if ok {
				reload()
			}
		}, p.Window)
		d.SetConfirmText("Reload")
		d.SetDismissText("Cancel")
		d.Show()
	})
}

// GraphCanvas draws the graph through the raster backend and forwards pointer
// input to its View.
type GraphCanvas struct {
	widget.BaseWidget
	view *View
}

var (
	_ fyne.Tappable          = (*GraphCanvas)(nil)
	_ fyne.SecondaryTappable = (*GraphCanvas)(nil)
	_ fyne.Draggable         = (*GraphCanvas)(nil)
	_ desktop.Hoverable      = (*GraphCanvas)(nil)
)

func NewGraphCanvas(v *View) *GraphCanvas {
	gc := &GraphCanvas{view: v}
	gc.ExtendBaseWidget(gc)
	return gc
}

// CreateRenderer renders at the widget's logical size; fyne scales to device pixels.
func (c *GraphCanvas) CreateRenderer() fyne.WidgetRenderer {
	r := canvas.NewRaster(func(_, _ int) image.Image {
		sz := c.Size()
		return c.view.Render(int(sz.Width), int(sz.Height))
	})
	return widget.NewSimpleRenderer(r)
}

func (c *GraphCanvas) MinSize() fyne.Size { return fyne.NewSize(640, 480) }

func (c *GraphCanvas) pt(p fyne.Position) (float64, float64) { return float64(p.X), float64(p.Y) }

func (c *GraphCanvas) Tapped(e *fyne.PointEvent) {
	c.view.Tap(c.view.ToGraph(c.pt(e.Position)), false)
	c.Refresh()
}

// TappedSecondary toggles the node in or out of the selection.
func (c *GraphCanvas) TappedSecondary(e *fyne.PointEvent) {
	c.view.Tap(c.view.ToGraph(c.pt(e.Position)), true)
	c.Refresh()
}

func (c *GraphCanvas) Dragged(e *fyne.DragEvent) {
	c.view.Pan(float64(e.Dragged.DX), float64(e.Dragged.DY))
	c.Refresh()
}

func (c *GraphCanvas) DragEnd() {}

func (c *GraphCanvas) MouseIn(e *desktop.MouseEvent) { c.MouseMoved(e) }

func (c *GraphCanvas) MouseMoved(e *desktop.MouseEvent) {
	before := c.view.g.Hovered()
	if c.view.Hover(c.view.ToGraph(c.pt(e.Position))) != before {
		c.Refresh()
	}
}

func (c *GraphCanvas) MouseOut() {
	c.view.Leave()
	c.Refresh()
}

// newSettingsForm renders one editor per declaration. Edits go through the
// registry, which validates, persists and notifies.
func newSettingsForm(reg *settings.Registry, w fyne.Window, status *widget.Label) *widget.Form {
	set := func(key string, v any) {
		if err := reg.Set(key, v); err != nil {
			dialog.ShowError(err, w)
			return
		}
		status.SetText("Saved " + key)
	}
	form := widget.NewForm()
	for _, d := range reg.Declarations() {
		cur := reg.Value(d.ID, d.Default)
		var obj fyne.CanvasObject
		switch d.Type {
		case settings.TypeBoolean:
			chk := widget.NewCheck("", nil)
			chk.Checked, _ = cur.(bool)
			chk.OnChanged = func(b bool) { set(d.ID, b) }
			obj = chk
		case settings.TypeCombo:
			sel := widget.NewSelect(d.Options, nil)
			sel.Selected = fmt.Sprint(cur)
			sel.OnChanged = func(s string) { set(d.ID, s) }
			obj = sel
		case settings.TypeSlider:
			s := widget.NewSlider(d.Min, d.Max)
			s.Step = d.Step
			s.Value, _ = strconv.ParseFloat(fmt.Sprint(cur), 64)
			s.OnChangeEnded = func(v float64) { set(d.ID, v) }
			obj = s
		default:
			e := widget.NewEntry()
			e.SetText(fmt.Sprint(cur))
			e.OnSubmitted = func(s string) { set(d.ID, s) }
			obj = e
		}
		item := widget.NewFormItem(d.Name, obj)
		item.HintText = d.Tooltip
		form.AppendItem(item)
	}
	return form
}
