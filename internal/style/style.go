/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package style extracts the fill color from an SVG style attribute.
package style

import (
	"fmt"
	"regexp"
	"strings"
)

// Mode selects the character class accepted for the six color characters.
type Mode int

const (
	// ModeLax accepts [0-9a-z]. Level files in circulation rely on it, so it
	// stays the default even though letters past f are not hex.
	ModeLax Mode = iota
	// ModeStrict accepts only lowercase hex digits [0-9a-f].
	ModeStrict
)

func (m Mode) String() string {
	switch m {
	case ModeLax:
		return "lax"
	case ModeStrict:
		return "strict"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode maps a config value to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "lax":
		return ModeLax, nil
	case "strict":
		return ModeStrict, nil
	}
	return ModeLax, fmt.Errorf("unknown color mode %q", s)
}

var patterns = map[Mode]*regexp.Regexp{
	ModeLax:    regexp.MustCompile(`fill:#([0-9a-z]{6})`),
	ModeStrict: regexp.MustCompile(`fill:#([0-9a-f]{6})`),
}

// ExtractionError reports a style without a usable fill:#XXXXXX fragment.
type ExtractionError struct {
	Style string
	Mode  Mode
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("no fill color (%s) in style %q", e.Mode, e.Style)
}

// Decoder extracts fill colors under a fixed Mode.
type Decoder struct {
	Mode Mode
}

// Color returns the six characters following the first "fill:#" that match
// the decoder's character class.
func (d Decoder) Color(style string) (string, error) {
	re, ok := patterns[d.Mode]
	if !ok {
		return "", fmt.Errorf("unknown color mode %d", int(d.Mode))
	}
	m := re.FindStringSubmatch(style)
	if m == nil {
		return "", &ExtractionError{Style: style, Mode: d.Mode}
	}
	return m[1], nil
}

// Color decodes style in ModeLax.
func Color(style string) (string, error) { return Decoder{}.Color(style) }
