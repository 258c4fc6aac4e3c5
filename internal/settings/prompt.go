/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package settings

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"
)

// ReloadMessage is shown when a structural setting changes.
const ReloadMessage = "The page needs to reload for this setting to take effect."

// Prompter asks the user whether to reload after a structural setting changed. reload
// runs only when the user confirms.
type Prompter interface {
	PromptReload(key string, reload func())
}

// PromptFunc adapts a function to Prompter.
type PromptFunc func(key string, reload func())

func (f PromptFunc) PromptReload(key string, reload func()) { f(key, reload) }

// PromptOnChange returns an OnChange callback that prompts once per actual change of
// key. The initial load (old == nil) and no-op changes do not prompt.
func PromptOnChange(key string, p Prompter, reload func()) func(newVal, oldVal any) {
	return func(newVal, oldVal any) {
		if p == nil || oldVal == nil || newVal == oldVal {
			return
		}
		p.PromptReload(key, reload)
	}
}

// ConsolePrompter asks on a terminal. Anything starting with "r" or "y" confirms.
type ConsolePrompter struct {
	In  io.Reader
	Out io.Writer

	once sync.Once
	sc   *bufio.Scanner
}

func (c *ConsolePrompter) PromptReload(key string, reload func()) {
	c.once.Do(func() { c.sc = bufio.NewScanner(c.In) })
	fmt.Fprintf(c.Out, "%s changed.\n%s\nReload now? [Reload/Cancel]: ", key, ReloadMessage)
	if !c.sc.Scan() {
		fmt.Fprintln(c.Out)
		return
	}
	ans := strings.ToLower(strings.TrimSpace(c.sc.Text()))
	if strings.HasPrefix(ans, "r") || strings.HasPrefix(ans, "y") {
		reload()
	}
}

// AutoPrompter never asks and always (or never) reloads.
type AutoPrompter struct{ Accept bool }

func (a AutoPrompter) PromptReload(_ string, reload func()) {
	if a.Accept {
		reload()
	}
}
