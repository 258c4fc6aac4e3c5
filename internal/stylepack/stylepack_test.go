/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package stylepack

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"icyhider/internal/settings"
)

func newRegistry(t *testing.T) *settings.Registry {
	t.Helper()
	reg := settings.NewRegistry(filepath.Join(t.TempDir(), "settings.yaml"))
	if err := reg.Register(settings.Declarations()...); err != nil {
		t.Fatalf("register: %v", err)
	}
	return reg
}

func TestCaptureSkipsStructuralKeys(t *testing.T) {
	th := Capture(newRegistry(t))
	if _, ok := th[settings.KeyHideMode]; ok {
		t.Fatalf("structural key captured")
	}
	if th[settings.KeyBorderColor] != "A5DEE5" || th[settings.KeyText] != settings.DefaultText {
		t.Fatalf("theme = %v", th)
	}
}

func TestSaveLoadApplyTheme(t *testing.T) {
	dir := t.TempDir()
	src := newRegistry(t)
	if err := src.Set(settings.KeyGradientStart, "000000"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := src.Set(settings.KeyText, "PRIVATE"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, err := SaveTheme(dir, "night", Capture(src)); err != nil {
		t.Fatalf("save: %v", err)
	}
	names, err := ListThemes(dir)
	if err != nil || len(names) != 1 || names[0] != "night" {
		t.Fatalf("list = %v %v", names, err)
	}

	th, err := LoadTheme(dir, "night")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	th[settings.KeyHideMode] = "blur"
	th["Other.Key"] = 1
	dst := newRegistry(t)
	if err := Apply(dst, th); err != nil {
		t.Fatalf("apply: %v", err)
	}
	snap := dst.Snapshot()
	if snap.Text != "PRIVATE" || snap.GradientStart.Hex() != "000000" {
		t.Fatalf("snapshot after apply = %+v", snap)
	}
	if snap.HideMode != settings.ModeCover {
		t.Fatalf("apply must not touch structural keys")
	}
}

func TestApplyJoinsValidationErrors(t *testing.T) {
	err := Apply(newRegistry(t), Theme{settings.KeyBlurAmount: 90, settings.KeyBorderColor: "nothex"})
	if err == nil {
		t.Fatalf("expected validation errors")
	}
}

func TestSaveThemeRejectsBadNames(t *testing.T) {
	for _, name := range []string{"", "../up", "a/b", ".hidden"} {
		if _, err := SaveTheme(t.TempDir(), name, Theme{}); err == nil {
			t.Fatalf("name %q accepted", name)
		}
	}
}

func TestExportAndInstallPack(t *testing.T) {
	src := t.TempDir()
	for _, name := range []string{"frost", "ember"} {
		if _, err := SaveTheme(src, name, Theme{settings.KeyText: name}); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
	zpath := filepath.Join(t.TempDir(), "out", "pack.zip")
	if err := ExportPack(src, zpath); err != nil {
		t.Fatalf("export: %v", err)
	}

	dst := t.TempDir()
	if _, err := SaveTheme(dst, "frost", Theme{settings.KeyText: "mine"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	n, err := InstallPack(dst, zpath)
	if err != nil {
		t.Fatalf("install: %v", err)
	}
	if n != 1 {
		t.Fatalf("installed %d, want 1 (existing frost skipped)", n)
	}
	th, err := LoadTheme(dst, "frost")
	if err != nil || th[settings.KeyText] != "mine" {
		t.Fatalf("existing theme overwritten: %v %v", th, err)
	}
	if _, err := LoadTheme(dst, "ember"); err != nil {
		t.Fatalf("ember missing: %v", err)
	}
}

func TestInstallPack_ZipSlipAndJunk(t *testing.T) {
	dir := t.TempDir()
	zpath := filepath.Join(t.TempDir(), "pack.zip")
	f, err := os.Create(zpath)
	if err != nil {
		t.Fatalf("create zip: %v", err)
	}
	zw := zip.NewWriter(f)
	for name, body := range map[string]string{
		"../evil.yaml":     "IcyHider.Text: EVIL\n",
		"nested/deep.yaml": "IcyHider.Text: DEEP\n",
		"readme.txt":       "hello",
		"good.yaml":        "IcyHider.Text: GOOD\n",
	} {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create entry %s: %v", name, err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatalf("write entry %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip writer: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close zip file: %v", err)
	}

	n, err := InstallPack(dir, zpath)
	if err != nil {
		t.Fatalf("install: %v", err)
	}
	if n != 1 {
		t.Fatalf("installed %d, want only good.yaml", n)
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(dir), "evil.yaml")); err == nil {
		t.Fatalf("evil.yaml should not exist")
	}
}
