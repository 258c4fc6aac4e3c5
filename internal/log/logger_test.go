/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package log

import (
	"bufio"
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestInitAndStructuredLoggingToFile verifies that Init with a file handler writes JSON logs
// and that static and contextual attributes are present.
func TestInitAndStructuredLoggingToFile(t *testing.T) {
	fpath := filepath.Join(t.TempDir(), "icy.log")
	var console bytes.Buffer
	Init(Options{Level: "debug", Format: "json", File: fpath, Console: &console})
	t.Cleanup(Discard)

	l := WithOperation(WithComponent("binder"), "recompute")
	l.Info("node hidden", slog.Int("node", 7))

	b, err := os.ReadFile(fpath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	scanner := bufio.NewScanner(bytes.NewReader(b))
	var last string
	for scanner.Scan() {
		if s := strings.TrimSpace(scanner.Text()); s != "" {
			last = s
		}
	}
	if last == "" {
		t.Fatalf("no log lines found")
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(last), &m); err != nil {
		t.Fatalf("unmarshal json log: %v", err)
	}
	if m["app"] != "icyhider" {
		t.Fatalf("missing app attr: %v", m["app"])
	}
	if _, ok := m["ver"].(string); !ok {
		t.Fatalf("missing ver attr")
	}
	if m["component"] != "binder" || m["op"] != "recompute" {
		t.Fatalf("context attrs mismatch: %v / %v", m["component"], m["op"])
	}
	if m["msg"] != "node hidden" {
		t.Fatalf("msg mismatch: %v", m["msg"])
	}
	if !strings.Contains(console.String(), "node hidden") {
		t.Fatalf("console sink did not receive the record: %q", console.String())
	}
}

func TestLevelFiltering(t *testing.T) {
	var console bytes.Buffer
	Init(Options{Level: "warn", Console: &console})
	t.Cleanup(Discard)

	WithComponent("x").Info("quiet")
	WithComponent("x").Warn("loud")
	out := console.String()
	if strings.Contains(out, "quiet") {
		t.Fatalf("info record leaked at warn level: %q", out)
	}
	if !strings.Contains(out, "WRN loud") {
		t.Fatalf("warn record missing: %q", out)
	}
}
