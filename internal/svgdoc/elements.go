/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package svgdoc

import "fmt"

// MissingAttributeError reports a required attribute absent from an element.
type MissingAttributeError struct {
	Element string // local tag name
	ID      string // may be empty when the id itself is missing
	Attr    string
}

func (e *MissingAttributeError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("<%s> without id: missing attribute %q", e.Element, e.Attr)
	}
	return fmt.Sprintf("<%s id=%q>: missing attribute %q", e.Element, e.ID, e.Attr)
}

// Rect is the typed view of a rect element. Values are kept verbatim.
type Rect struct {
	ID     string
	X      string
	Y      string
	Width  string
	Height string
	Style  string
}

// Text is the typed view of a text element. Spans holds the leading
// character data of each direct child (normally tspan) in order.
type Text struct {
	ID    string
	X     string
	Y     string
	Style string
	Spans []string
}

// ID returns the id attribute, or "" when the element has none.
// Elements without an id never match a selector.
func ID(e *Element) string {
	v, _ := e.Attr("id")
	return v
}

// Fields reads required attributes of one element, remembering the first
// missing one so a record can be read in a single pass and checked once.
type Fields struct {
	el  *Element
	id  string
	err error
}

// Read starts reading required attributes of e.
func Read(e *Element) *Fields { return &Fields{el: e, id: ID(e)} }

// Get returns the named attribute, or "" after recording a MissingAttributeError.
func (f *Fields) Get(name string) string {
	if f.err != nil {
		return ""
	}
	v, ok := f.el.Attr(name)
	if !ok {
		f.err = &MissingAttributeError{Element: f.el.Name.Local, ID: f.id, Attr: name}
	}
	return v
}

// Err returns the first missing attribute, if any.
func (f *Fields) Err() error { return f.err }

// AsRect reads the geometry and style attributes of a rect element.
func AsRect(e *Element) (Rect, error) {
	r := Read(e)
	rect := Rect{
		ID:     r.Get("id"),
		X:      r.Get("x"),
		Y:      r.Get("y"),
		Width:  r.Get("width"),
		Height: r.Get("height"),
		Style:  r.Get("style"),
	}
	return rect, r.Err()
}

// AsText reads the position, style and span texts of a text element.
func AsText(e *Element) (Text, error) {
	r := Read(e)
	t := Text{
		ID:    r.Get("id"),
		X:     r.Get("x"),
		Y:     r.Get("y"),
		Style: r.Get("style"),
	}
	if err := r.Err(); err != nil {
		return t, err
	}
	t.Spans = make([]string, 0, len(e.children))
	for _, c := range e.children {
		t.Spans = append(t.Spans, c.Text())
	}
	return t, nil
}
