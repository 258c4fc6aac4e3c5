/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	applog "icyhider/internal/log"
)

// AppConfig is the user-editable application configuration persisted to a YAML file in the user scope.
// Environment variables are treated as read-only overrides at runtime.
//
// The overlay settings themselves (Avalanche, HideMode, colors...) are not part of this file; they
// belong to the settings registry and live next to it in settings.yaml.

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type HiderConfig struct {
	// PollIntervalMs is the selection reconciliation period per node.
	PollIntervalMs int `yaml:"poll_interval_ms"`
	// SettingsFile overrides the location of settings.yaml.
	SettingsFile string `yaml:"settings_file"`
	// WatchSettings reloads settings.yaml when it is edited outside the app.
	WatchSettings bool `yaml:"watch_settings"`
}

// RenderConfig sizes exported frames. Zero width or height fits the graph.
type RenderConfig struct {
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Background string `yaml:"background"` // hex, no leading '#'
}

type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	Logging       LoggingConfig `yaml:"logging"`
	Hider         HiderConfig   `yaml:"hider"`
	Render        RenderConfig  `yaml:"render"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		Logging:       LoggingConfig{Level: "info", Format: "console"},
		Hider:         HiderConfig{PollIntervalMs: 100, WatchSettings: true},
		Render:        RenderConfig{Background: "202020"},
	}
}

// Env var names used as overrides.
const (
	EnvConfigDir      = "ICY_CONFIG_DIR"
	EnvPollIntervalMs = "ICY_POLL_INTERVAL_MS"
	EnvSettingsFile   = "ICY_SETTINGS_FILE"
	EnvWatchSettings  = "ICY_WATCH_SETTINGS"
	EnvRenderWidth    = "ICY_RENDER_WIDTH"
	EnvRenderHeight   = "ICY_RENDER_HEIGHT"
	// EnvLogLevel Logging envs
	EnvLogLevel  = "ICY_LOG_LEVEL"
	EnvLogFormat = "ICY_LOG_FORMAT"
	EnvLogSource = "ICY_LOG_SOURCE"
	EnvLogFile   = "ICY_LOG_FILE"
)

// Dir returns the per-user config directory. ICY_CONFIG_DIR wins when set.
func Dir() (string, error) {
	if v := strings.TrimSpace(os.Getenv(EnvConfigDir)); v != "" {
		return v, nil
	}
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "IcyHider")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "IcyHider")
	default:
		base = filepath.Join(os.Getenv("HOME"), ".config", "icyhider")
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return base, nil
}

// ConfigPath returns the per-user config file path.
func ConfigPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// SettingsPath resolves where the overlay settings registry is persisted.
func (c AppConfig) SettingsPath() (string, error) {
	if p := strings.TrimSpace(c.Hider.SettingsFile); p != "" {
		return p, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "settings.yaml"), nil
}

// ThemesDir is where saved cover themes live, next to the settings file.
func (c AppConfig) ThemesDir() (string, error) {
	p, err := c.SettingsPath()
	if err != nil {
		return "", err
	}
	return filepath.Join(filepath.Dir(p), "themes"), nil
}

// Load reads the user config file (if present), applies defaults, and merges environment overrides.
func Load() (AppConfig, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, err
	}
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err == nil {
			mergeInto(&cfg, &fileCfg)
		} else {
			applog.WithComponent("config").Warn("ignoring unreadable config", "path", path, "err", err)
		}
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}

// Save writes the user config YAML.
func Save(cfg AppConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
	if src.Hider.PollIntervalMs > 0 {
		dst.Hider.PollIntervalMs = src.Hider.PollIntervalMs
	}
	if strings.TrimSpace(src.Hider.SettingsFile) != "" {
		dst.Hider.SettingsFile = strings.TrimSpace(src.Hider.SettingsFile)
	}
	dst.Hider.WatchSettings = src.Hider.WatchSettings
	if src.Render.Width > 0 {
		dst.Render.Width = src.Render.Width
	}
	if src.Render.Height > 0 {
		dst.Render.Height = src.Render.Height
	}
	if strings.TrimSpace(src.Render.Background) != "" {
		dst.Render.Background = strings.TrimPrefix(strings.TrimSpace(src.Render.Background), "#")
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvPollIntervalMs)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Hider.PollIntervalMs = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvSettingsFile)); v != "" {
		cfg.Hider.SettingsFile = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvWatchSettings)); v != "" {
		cfg.Hider.WatchSettings = parseBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvRenderWidth)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Render.Width = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvRenderHeight)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Render.Height = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = parseBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

func parseBool(v string) bool {
	lv := strings.ToLower(strings.TrimSpace(v))
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

// PollInterval returns the reconciliation period, falling back to the default for non-positive values.
func (h HiderConfig) PollInterval() time.Duration {
	if h.PollIntervalMs <= 0 {
		return time.Duration(Defaults().Hider.PollIntervalMs) * time.Millisecond
	}
	return time.Duration(h.PollIntervalMs) * time.Millisecond
}

// LogOptions maps the logging section onto logger options.
func (c AppConfig) LogOptions() applog.Options {
	return applog.Options{
		Level:     c.Logging.Level,
		Format:    c.Logging.Format,
		AddSource: c.Logging.Source,
		File:      c.Logging.File,
	}
}
