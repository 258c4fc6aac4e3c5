/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package media classifies widget elements that show animated content.
// Animated sources are always covered instead of blurred.
package media

import "strings"

// Element is the part of a DOM element the classifier reads.
type Element interface {
	TagName() string
	Src() string
}

// animatedHints match file extensions as well as the format query used by preview URLs.
var animatedHints = []string{
	".gif",
	".apng",
	".avif",
	".webp",
	"format=image%2fgif",
	"format=image/gif",
}

// IsAnimated reports whether el plays animated media: every video, and images whose
// source (case-insensitive) carries one of the animated hints.
func IsAnimated(el Element) bool {
	if el == nil {
		return false
	}
	switch strings.ToUpper(el.TagName()) {
	case "VIDEO":
		return true
	case "IMG":
		src := strings.ToLower(el.Src())
		if src == "" {
			return false
		}
		for _, h := range animatedHints {
			if strings.Contains(src, h) {
				return true
			}
		}
	}
	return false
}
