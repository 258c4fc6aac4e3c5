/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package settings declares the user-facing IcyHider settings, validates and persists
// their values, and hands the renderer an immutable Snapshot of them.
package settings

import (
	"icyhider/internal/paint"
)

// Mode selects how hidden content is obscured.
type Mode string

const (
	ModeCover Mode = "cover"
	ModeBlur  Mode = "blur"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool { return m == ModeCover || m == ModeBlur }

// Setting keys.
const (
	Prefix            = "IcyHider."
	KeyAvalanche      = Prefix + "Avalanche"
	KeyHideMode       = Prefix + "HideMode"
	KeyBlurAmount     = Prefix + "BlurAmount"
	KeyGradientStart  = Prefix + "GradientStart"
	KeyGradientEnd    = Prefix + "GradientEnd"
	KeyBorderColor    = Prefix + "BorderColor"
	KeyTextColor      = Prefix + "TextColor"
	KeyIcon           = Prefix + "Icon"
	KeyText           = Prefix + "Text"
	DefaultBlurAmount = 20.0
	DefaultIcon       = "❄️"
	DefaultText       = "FROZEN"
)

// Type is the editor widget a declaration renders as.
type Type string

const (
	TypeBoolean Type = "boolean"
	TypeCombo   Type = "combo"
	TypeSlider  Type = "slider"
	TypeColor   Type = "color"
	TypeText    Type = "text"
)

// Declaration describes one setting.
type Declaration struct {
	ID      string
	Name    string
	Type    Type
	Default any
	Tooltip string
	Options []string // combo
	Min     float64  // slider
	Max     float64
	Step    float64
	// Structural settings change which decorators get installed and only take
	// effect after a reload.
	Structural bool
	// OnChange runs after a value changes. old is nil for the initial load.
	OnChange func(newVal, oldVal any)
}

// Declarations returns the IcyHider settings in display order.
func Declarations() []Declaration {
	return []Declaration{
		{
			ID: KeyAvalanche, Name: "Hide All Nodes (Icy + Non-Icy)", Type: TypeBoolean, Default: true,
			Tooltip:    "When ON: all nodes hidden until selected. When OFF: only Icy nodes hidden, revealed on hover.",
			Structural: true,
		},
		{
			ID: KeyHideMode, Name: "Hide Mode", Type: TypeCombo, Default: string(ModeCover),
			Options:    []string{string(ModeCover), string(ModeBlur)},
			Tooltip:    "Choose between cover overlay or blur effect.",
			Structural: true,
		},
		{
			ID: KeyBlurAmount, Name: "Blur Amount", Type: TypeSlider, Default: DefaultBlurAmount,
			Min: 0, Max: 50, Step: 1,
			Tooltip: "Amount of blur to apply (0-50px). Only applies when Hide Mode is 'blur'.",
		},
		{ID: KeyGradientStart, Name: "Gradient Start Color", Type: TypeColor, Default: "1E3C72", Tooltip: "The starting color of the gradient background (cover mode only)."},
		{ID: KeyGradientEnd, Name: "Gradient End Color", Type: TypeColor, Default: "2A5298", Tooltip: "The ending color of the gradient background (cover mode only)."},
		{ID: KeyBorderColor, Name: "Border Color", Type: TypeColor, Default: "A5DEE5", Tooltip: "The color of the border around the cover (cover mode only)."},
		{ID: KeyIcon, Name: "Icon", Type: TypeText, Default: DefaultIcon, Tooltip: "The emoji or text icon to display (cover mode only)."},
		{ID: KeyText, Name: "Text", Type: TypeText, Default: DefaultText, Tooltip: "The text to display below the icon (cover mode only)."},
		{ID: KeyTextColor, Name: "Text Color", Type: TypeColor, Default: "E0F7FA", Tooltip: "The color of the text and icon (cover mode only)."},
	}
}

// IsStructural reports whether key only takes effect after a reload.
func IsStructural(key string) bool { return key == KeyAvalanche || key == KeyHideMode }

// Snapshot is an immutable view of the settings used by one render or reconciliation pass.
type Snapshot struct {
	Avalanche     bool
	HideMode      Mode
	BlurAmount    float64
	GradientStart paint.Color
	GradientEnd   paint.Color
	BorderColor   paint.Color
	TextColor     paint.Color
	Icon          string
	Text          string
}

var (
	defaultGradientStart = paint.Color{R: 0x1E, G: 0x3C, B: 0x72, A: 255}
	defaultGradientEnd   = paint.Color{R: 0x2A, G: 0x52, B: 0x98, A: 255}
	defaultBorderColor   = paint.Color{R: 0xA5, G: 0xDE, B: 0xE5, A: 255}
	defaultTextColor     = paint.Color{R: 0xE0, G: 0xF7, B: 0xFA, A: 255}
)

// DefaultSnapshot returns the snapshot of an empty store.
func DefaultSnapshot() Snapshot {
	return Snapshot{
		Avalanche:     true,
		HideMode:      ModeCover,
		BlurAmount:    DefaultBlurAmount,
		GradientStart: defaultGradientStart,
		GradientEnd:   defaultGradientEnd,
		BorderColor:   defaultBorderColor,
		TextColor:     defaultTextColor,
		Icon:          DefaultIcon,
		Text:          DefaultText,
	}
}

// WithStructural returns s with the structural fields copied from pinned.
func (s Snapshot) WithStructural(pinned Snapshot) Snapshot {
	s.Avalanche = pinned.Avalanche
	s.HideMode = pinned.HideMode
	return s
}

// snapshotFrom builds a snapshot from effective values. Empty or malformed colors and
// empty texts fall back to their defaults.
func snapshotFrom(get func(key string) any) Snapshot {
	d := DefaultSnapshot()
	s := d
	if v, ok := get(KeyAvalanche).(bool); ok {
		s.Avalanche = v
	}
	if v, ok := get(KeyHideMode).(string); ok && Mode(v).Valid() {
		s.HideMode = Mode(v)
	}
	if v, ok := toFloat(get(KeyBlurAmount)); ok && v >= 0 {
		s.BlurAmount = v
	}
	str := func(k string) string { v, _ := get(k).(string); return v }
	s.GradientStart = paint.HexOr(str(KeyGradientStart), d.GradientStart)
	s.GradientEnd = paint.HexOr(str(KeyGradientEnd), d.GradientEnd)
	s.BorderColor = paint.HexOr(str(KeyBorderColor), d.BorderColor)
	s.TextColor = paint.HexOr(str(KeyTextColor), d.TextColor)
	if v := str(KeyIcon); v != "" {
		s.Icon = v
	}
	if v := str(KeyText); v != "" {
		s.Text = v
	}
	return s
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}
