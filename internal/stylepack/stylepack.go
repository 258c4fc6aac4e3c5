/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package stylepack saves the cover appearance as named themes and shares them as
// zip packs. A theme holds every live (non-structural) IcyHider setting; a pack is
// a zip of <name>.yaml themes plus a manifest.
package stylepack

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	applog "icyhider/internal/log"
	"icyhider/internal/settings"
)

// ManifestName is the informational entry at the root of every pack.
const ManifestName = "stylepack.manifest.txt"

// Theme maps setting ids to values.
type Theme map[string]any

var validName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,63}$`)

// ValidName reports whether name can be used as a theme file name.
func ValidName(name string) bool { return validName.MatchString(name) }

// Capture reads the current appearance from reg.
func Capture(reg *settings.Registry) Theme {
	th := Theme{}
	for _, d := range reg.Declarations() {
		if d.Structural {
			continue
		}
		th[d.ID] = reg.Value(d.ID, d.Default)
	}
	return th
}

// Apply sets every known appearance key of th through reg. Structural and unknown
// keys are skipped; validation errors are joined.
func Apply(reg *settings.Registry, th Theme) error {
	l := applog.WithOperation(applog.WithComponent("stylepack"), "apply")
	known := map[string]bool{}
	for _, d := range reg.Declarations() {
		known[d.ID] = !d.Structural
	}
	keys := make([]string, 0, len(th))
	for k := range th {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var errs []error
	for _, k := range keys {
		if !known[k] {
			l.Warn("skip theme key", slog.String("key", k))
			continue
		}
		if err := reg.Set(k, th[k]); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SaveTheme writes th as <dir>/<name>.yaml and returns the path.
func SaveTheme(dir, name string, th Theme) (string, error) {
	if !ValidName(name) {
		return "", fmt.Errorf("invalid theme name %q", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("ensure themes dir: %w", err)
	}
	b, err := yaml.Marshal(th)
	if err != nil {
		return "", fmt.Errorf("encode theme: %w", err)
	}
	p := filepath.Join(dir, name+".yaml")
	if err := os.WriteFile(p, b, 0o644); err != nil {
		return "", fmt.Errorf("write theme: %w", err)
	}
	return p, nil
}

// LoadTheme reads <dir>/<name>.yaml.
func LoadTheme(dir, name string) (Theme, error) {
	if !ValidName(name) {
		return nil, fmt.Errorf("invalid theme name %q", name)
	}
	b, err := os.ReadFile(filepath.Join(dir, name+".yaml"))
	if err != nil {
		return nil, fmt.Errorf("read theme: %w", err)
	}
	th := Theme{}
	if err := yaml.Unmarshal(b, &th); err != nil {
		return nil, fmt.Errorf("parse theme %s: %w", name, err)
	}
	return th, nil
}

// ListThemes returns the theme names in dir, sorted. A missing dir has none.
func ListThemes(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var out []string
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), ".yaml")
		if ok && !e.IsDir() && ValidName(name) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out, nil
}

// ExportPack zips every theme in dir into destZipPath.
func ExportPack(dir, destZipPath string) error {
	l := applog.WithOperation(applog.WithComponent("stylepack"), "export").With(slog.String("dir", dir))
	if strings.TrimSpace(destZipPath) == "" {
		return errors.New("destZipPath is required")
	}
	names, err := ListThemes(dir)
	if err != nil {
		return fmt.Errorf("list themes: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(destZipPath), 0o755); err != nil {
		return fmt.Errorf("ensure zip dir: %w", err)
	}
	// On Windows, remove destination if present before create
	_ = os.Remove(destZipPath)

	zf, err := os.Create(destZipPath)
	if err != nil {
		return fmt.Errorf("create zip: %w", err)
	}
	defer func() { _ = zf.Close() }()
	zw := zip.NewWriter(zf)

	manifest := fmt.Sprintf("IcyHider Style Pack\nCreated: %s\nThemes: %s\n",
		time.Now().Format(time.RFC3339), strings.Join(names, ", "))
	w, err := zw.Create(ManifestName)
	if err != nil {
		return fmt.Errorf("add manifest: %w", err)
	}
	if _, err := w.Write([]byte(manifest)); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	for _, name := range names {
		if err := addFile(zw, filepath.Join(dir, name+".yaml"), name+".yaml"); err != nil {
			l.Error("zip build failed", slog.Any("err", err))
			return fmt.Errorf("build zip: %w", err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finish zip: %w", err)
	}
	l.Info("style pack exported", slog.Int("themes", len(names)), slog.String("zip", destZipPath))
	return nil
}

func addFile(zw *zip.Writer, src, name string) error {
	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	fw, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = io.Copy(fw, f)
	return err
}

// InstallPack extracts the themes of a pack into dir. Existing themes are not
// overwritten, entries that are not top-level theme files are ignored, and each
// theme must parse. Returns the number of themes installed.
func InstallPack(dir, packZipPath string) (int, error) {
	l := applog.WithOperation(applog.WithComponent("stylepack"), "install").With(slog.String("dir", dir))
	if strings.TrimSpace(packZipPath) == "" {
		return 0, errors.New("packZipPath is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("ensure themes dir: %w", err)
	}
	r, err := zip.OpenReader(packZipPath)
	if err != nil {
		return 0, fmt.Errorf("open pack: %w", err)
	}
	defer func() { _ = r.Close() }()

	installed := 0
	for _, f := range r.File {
		if f.Name == ManifestName || f.FileInfo().IsDir() {
			continue
		}
		// Only flat "<name>.yaml" entries; this also rules out path traversal.
		base, ok := strings.CutSuffix(f.Name, ".yaml")
		if !ok || path.Base(f.Name) != f.Name || !ValidName(base) {
			l.Warn("skip pack entry", slog.String("entry", f.Name))
			continue
		}
		target := filepath.Join(dir, f.Name)
		if _, err := os.Stat(target); err == nil {
			l.Warn("skip existing theme", slog.String("path", target))
			continue
		}
		b, err := readEntry(f)
		if err != nil {
			return installed, err
		}
		var th Theme
		if err := yaml.Unmarshal(b, &th); err != nil {
			return installed, fmt.Errorf("parse theme %s: %w", f.Name, err)
		}
		if err := os.WriteFile(target, b, 0o644); err != nil {
			return installed, err
		}
		installed++
	}
	l.Info("style pack installed", slog.Int("themes", installed))
	return installed, nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()
	// Themes are a handful of short values.
	return io.ReadAll(io.LimitReader(rc, 64<<10))
}
