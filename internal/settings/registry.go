/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package settings

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"sync"

	gojsonschema "github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	applog "icyhider/internal/log"
)

// ErrUnknownKey is returned for keys that were never declared.
var ErrUnknownKey = errors.New("unknown setting")

// ValidationError lists why a value was rejected.
type ValidationError struct {
	Key      string
	Value    any
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid value %v for %s: %s", e.Value, e.Key, strings.Join(e.Problems, "; "))
}

// Change describes one applied setting change.
type Change struct {
	Key      string
	New, Old any
}

// Registry holds declarations and their current values. Values are persisted as a flat
// YAML document keyed by setting id when a path is configured.
type Registry struct {
	mu     sync.RWMutex
	decls  map[string]Declaration
	order  []string
	values map[string]any
	// pending holds loaded values whose key is not declared yet.
	pending map[string]any
	schema  *gojsonschema.Schema
	path    string
	subs    map[int]func(Change)
	nextID  int
	log     *slog.Logger
}

// NewRegistry returns a registry persisting to path. An empty path keeps values in memory.
func NewRegistry(path string) *Registry {
	return &Registry{
		decls:   map[string]Declaration{},
		values:  map[string]any{},
		pending: map[string]any{},
		path:    path,
		subs:    map[int]func(Change){},
		log:     applog.WithComponent("settings"),
	}
}

// Path returns the backing file, or "" for an in-memory registry.
func (r *Registry) Path() string { return r.path }

// Register adds declarations and rebuilds the validation schema. Each declaration whose
// key already has a loaded value gets OnChange(value, nil).
func (r *Registry) Register(decls ...Declaration) error {
	r.mu.Lock()
	for _, d := range decls {
		if d.ID == "" {
			r.mu.Unlock()
			return errors.New("setting declaration without id")
		}
		if _, ok := r.decls[d.ID]; !ok {
			r.order = append(r.order, d.ID)
		}
		r.decls[d.ID] = d
	}
	schema, err := compileSchema(r.declsLocked())
	if err != nil {
		r.mu.Unlock()
		return fmt.Errorf("compile settings schema: %w", err)
	}
	r.schema = schema
	for _, d := range decls {
		v, ok := r.pending[d.ID]
		if !ok {
			continue
		}
		delete(r.pending, d.ID)
		v = normalize(d, v)
		if err := r.validateLocked(d.ID, v); err != nil {
			r.log.Warn("dropping persisted setting", slog.String("key", d.ID), slog.Any("err", err))
			continue
		}
		r.values[d.ID] = v
	}
	type initial struct {
		fn  func(newVal, oldVal any)
		val any
	}
	var inits []initial
	for _, d := range decls {
		if v, ok := r.values[d.ID]; ok && d.OnChange != nil {
			inits = append(inits, initial{d.OnChange, v})
		}
	}
	r.mu.Unlock()
	for _, in := range inits {
		in.fn(in.val, nil)
	}
	return nil
}

// Declarations returns the registered declarations in registration order.
func (r *Registry) Declarations() []Declaration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.declsLocked()
}

func (r *Registry) declsLocked() []Declaration {
	out := make([]Declaration, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.decls[id])
	}
	return out
}

// Load reads persisted values. A missing file is not an error; invalid entries are
// dropped with a warning. Values for undeclared keys are kept until Register declares them.
func (r *Registry) Load() error {
	if r.path == "" {
		return nil
	}
	raw, err := readFile(r.path)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, v := range raw {
		d, ok := r.decls[k]
		if !ok {
			r.pending[k] = v
			continue
		}
		v = normalize(d, v)
		if err := r.validateLocked(k, v); err != nil {
			r.log.Warn("dropping persisted setting", slog.String("key", k), slog.Any("err", err))
			continue
		}
		r.values[k] = v
	}
	return nil
}

func readFile(path string) (map[string]any, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]any{}, nil
		}
		return nil, fmt.Errorf("read settings: %w", err)
	}
	raw := map[string]any{}
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("parse settings: %w", err)
	}
	return raw, nil
}

// Value returns the stored value, the declared default, or def in that order.
func (r *Registry) Value(key string, def any) any {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.valueLocked(key, def)
}

func (r *Registry) valueLocked(key string, def any) any {
	if v, ok := r.values[key]; ok {
		return v
	}
	if d, ok := r.decls[key]; ok && d.Default != nil {
		return d.Default
	}
	return def
}

// Set validates and stores v. Setting the current value again is a no-op. OnChange and
// subscribers run after the value is persisted, outside the registry lock.
func (r *Registry) Set(key string, v any) error {
	r.mu.Lock()
	d, ok := r.decls[key]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	v = normalize(d, v)
	if err := r.validateLocked(key, v); err != nil {
		r.mu.Unlock()
		return err
	}
	old := r.valueLocked(key, nil)
	if reflect.DeepEqual(old, v) {
		r.mu.Unlock()
		return nil
	}
	prev, had := r.values[key]
	r.values[key] = v
	if err := r.saveLocked(); err != nil {
		if had {
			r.values[key] = prev
		} else {
			delete(r.values, key)
		}
		r.mu.Unlock()
		return err
	}
	subs := make([]func(Change), 0, len(r.subs))
	for id := 0; id < r.nextID; id++ {
		if fn, ok := r.subs[id]; ok {
			subs = append(subs, fn)
		}
	}
	r.mu.Unlock()

	r.log.Info("setting changed", slog.String("key", key), slog.Any("value", v))
	if d.OnChange != nil {
		d.OnChange(v, old)
	}
	ch := Change{Key: key, New: v, Old: old}
	for _, fn := range subs {
		fn(ch)
	}
	return nil
}

// SetString parses raw according to the declared type and sets it.
func (r *Registry) SetString(key, raw string) error {
	r.mu.RLock()
	d, ok := r.decls[key]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	switch d.Type {
	case TypeBoolean:
		b, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return &ValidationError{Key: key, Value: raw, Problems: []string{"expected true or false"}}
		}
		return r.Set(key, b)
	case TypeSlider:
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return &ValidationError{Key: key, Value: raw, Problems: []string{"expected a number"}}
		}
		return r.Set(key, f)
	default:
		return r.Set(key, raw)
	}
}

// Subscribe registers fn for every applied change. The returned func unsubscribes.
func (r *Registry) Subscribe(fn func(Change)) (cancel func()) {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.subs[id] = fn
	r.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.subs, id)
			r.mu.Unlock()
		})
	}
}

// Snapshot returns the current effective values.
func (r *Registry) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return snapshotFrom(func(k string) any { return r.valueLocked(k, nil) })
}

func (r *Registry) saveLocked() error {
	if r.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}
	doc := make(map[string]any, len(r.values)+len(r.pending))
	for k, v := range r.pending {
		doc[k] = v
	}
	for k, v := range r.values {
		doc[k] = v
	}
	b, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return fmt.Errorf("replace settings: %w", err)
	}
	return nil
}

// normalize coerces YAML and CLI shapes into the declared type.
func normalize(d Declaration, v any) any {
	switch d.Type {
	case TypeSlider:
		if f, ok := toFloat(v); ok {
			return f
		}
	case TypeColor:
		if s, ok := v.(string); ok {
			return strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(s), "#"))
		}
	}
	return v
}

func (r *Registry) validateLocked(key string, v any) error {
	if _, ok := r.decls[key]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	if r.schema == nil {
		return nil
	}
	res, err := r.schema.Validate(gojsonschema.NewGoLoader(map[string]any{key: v}))
	if err != nil {
		return fmt.Errorf("validate %s: %w", key, err)
	}
	if res.Valid() {
		return nil
	}
	ve := &ValidationError{Key: key, Value: v}
	for _, e := range res.Errors() {
		ve.Problems = append(ve.Problems, e.Description())
	}
	return ve
}

// compileSchema builds a JSON schema with one property per declaration.
func compileSchema(decls []Declaration) (*gojsonschema.Schema, error) {
	props := map[string]any{}
	for _, d := range decls {
		props[d.ID] = propertySchema(d)
	}
	doc := map[string]any{
		"$schema":    "http://json-schema.org/draft-07/schema#",
		"type":       "object",
		"properties": props,
	}
	return gojsonschema.NewSchema(gojsonschema.NewGoLoader(doc))
}

func propertySchema(d Declaration) map[string]any {
	switch d.Type {
	case TypeBoolean:
		return map[string]any{"type": "boolean"}
	case TypeCombo:
		enum := make([]any, len(d.Options))
		for i, o := range d.Options {
			enum[i] = o
		}
		return map[string]any{"type": "string", "enum": enum}
	case TypeSlider:
		return map[string]any{"type": "number", "minimum": d.Min, "maximum": d.Max}
	case TypeColor:
		return map[string]any{"type": "string", "pattern": "^(([0-9A-F]{3}){1,2})?$"}
	default:
		return map[string]any{"type": "string", "maxLength": 64}
	}
}
