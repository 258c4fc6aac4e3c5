/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package host

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"icyhider/internal/config"
	"icyhider/internal/settings"
)

func testConfig(t *testing.T) config.AppConfig {
	t.Helper()
	cfg := config.Defaults()
	cfg.Hider.SettingsFile = filepath.Join(t.TempDir(), "settings.yaml")
	cfg.Hider.WatchSettings = false
	cfg.Hider.PollIntervalMs = 10
	return cfg
}

func TestOpenBindsDemoNodes(t *testing.T) {
	h, err := Open(context.Background(), Options{Config: testConfig(t), Demo: true, Prompter: settings.AutoPrompter{}})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = h.Close() })

	nodes := h.Graph.Nodes()
	if len(nodes) == 0 {
		t.Fatalf("demo graph is empty")
	}
	b := h.Extension.Binder()
	if b == nil {
		t.Fatalf("binder missing after open")
	}
	if got := b.Bound(); got != len(nodes) {
		t.Fatalf("bound %d of %d nodes", got, len(nodes))
	}
	// Avalanche defaults on, so nothing selected means everything hidden.
	h.Do(func() {
		for _, n := range nodes {
			if !b.Hidden(n) {
				t.Errorf("node %s should start hidden", n.Class)
			}
		}
	})
}

func TestOpenRejectsBrokenSettingsFile(t *testing.T) {
	cfg := testConfig(t)
	if err := writeFile(cfg.Hider.SettingsFile, "IcyHider.HideMode: [unclosed"); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Open(context.Background(), Options{Config: cfg}); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestBackgroundFallsBack(t *testing.T) {
	h := &Host{Config: config.AppConfig{}}
	if got := h.Background(); got.R != 0x20 || got.A != 255 {
		t.Fatalf("background = %+v", got)
	}
	h.Config.Render.Background = "FF0000"
	if got := h.Background(); got.R != 0xFF || got.G != 0 {
		t.Fatalf("background = %+v", got)
	}
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}

func TestHistoryUndoesLiveEdit(t *testing.T) {
	h, err := Open(context.Background(), Options{Config: testConfig(t)})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = h.Close() })
	if err := h.Settings.Set(settings.KeyBorderColor, "FF00AA"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, ok, err := h.History.Undo(); !ok || err != nil {
		t.Fatalf("undo: ok=%v err=%v", ok, err)
	}
	if got := h.Settings.Snapshot().BorderColor.Hex(); got != "A5DEE5" {
		t.Fatalf("border after undo = %s", got)
	}
}
