/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package svgdoc loads an SVG file into an immutable element tree and exposes
// the two queries the level converter needs: every rect and every text
// element in the SVG namespace, in document order.
//
// Only the structure is kept. Styles, transforms and groups are not
// interpreted; attribute values are stored exactly as written.
package svgdoc

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"strings"

	"golang.org/x/net/html/charset"
)

// Namespace is the SVG XML namespace rect and text elements must belong to.
const Namespace = "http://www.w3.org/2000/svg"

// Element is one node of the parsed document.
type Element struct {
	Name     xml.Name
	Attrs    []xml.Attr
	children []*Element
	text     strings.Builder
}

// Attr returns the value of the attribute with the given local name.
// Namespaced attributes (inkscape:label, xlink:href) never shadow plain ones.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name.Local == name && a.Name.Space == "" {
			return a.Value, true
		}
	}
	return "", false
}

// Text returns the character data before the element's first child.
// Text following a nested element is not part of it.
func (e *Element) Text() string { return e.text.String() }

// Children returns the direct child elements in document order.
func (e *Element) Children() []*Element { return e.children }

// Document is a parsed SVG file. It is not modified after Parse returns.
type Document struct {
	Root *Element
}

// ParseError reports an input file that could not be read or is not well-formed XML.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("parse svg: %v", e.Err)
	}
	return fmt.Sprintf("parse svg %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Load opens and parses the SVG file at path.
func Load(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	defer f.Close()
	doc, err := Parse(f)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Path = path
		}
		return nil, err
	}
	return doc, nil
}

// Parse reads a whole XML document from r. Declared non-UTF-8 encodings are
// converted through the HTML charset table.
func Parse(r io.Reader) (*Document, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel

	var (
		root  *Element
		stack []*Element
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &ParseError{Err: err}
		}
		switch t := tok.(type) {
		case xml.StartElement:
			el := &Element{Name: t.Name, Attrs: append([]xml.Attr(nil), t.Attr...)}
			if len(stack) == 0 {
				if root != nil {
					return nil, &ParseError{Err: errors.New("multiple root elements")}
				}
				root = el
			} else {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, el)
			}
			stack = append(stack, el)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				if cur := stack[len(stack)-1]; len(cur.children) == 0 {
					cur.text.Write(t)
				}
			}
		}
	}
	if root == nil {
		return nil, &ParseError{Err: errors.New("no root element")}
	}
	return &Document{Root: root}, nil
}

// Elements yields every element whose name matches ns and local, depth first
// in document order. The sequence rescans the tree each time it is ranged over.
func (d *Document) Elements(ns, local string) iter.Seq[*Element] {
	return func(yield func(*Element) bool) {
		if d == nil || d.Root == nil {
			return
		}
		walk(d.Root, func(e *Element) bool {
			if e.Name.Space == ns && e.Name.Local == local {
				return yield(e)
			}
			return true
		})
	}
}

// Rects yields all SVG rect elements.
func (d *Document) Rects() iter.Seq[*Element] { return d.Elements(Namespace, "rect") }

// Texts yields all SVG text elements.
func (d *Document) Texts() iter.Seq[*Element] { return d.Elements(Namespace, "text") }

func walk(e *Element, visit func(*Element) bool) bool {
	if !visit(e) {
		return false
	}
	for _, c := range e.children {
		if !walk(c, visit) {
			return false
		}
	}
	return true
}
