/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package level

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"svg2rects/internal/style"
	"svg2rects/internal/svgdoc"
)

// Section is one block of the asset. Extract fills its part of the Level;
// Encode renders that part as lines; Count reports how many records it holds.
type Section struct {
	Name    string
	Extract func(x *Extractor, lvl *Level) error
	Encode  func(lvl *Level) []string
	Count   func(lvl *Level) int
}

// Sections returns the sections in the order they appear in the asset.
// "rect" and "backrect" never select the same element: an id starting
// with "backrect" does not start with "rect".
func Sections() []Section {
	platforms := func(l *Level) []Block { return l.Platforms }
	lavas := func(l *Level) []Block { return l.Lavas }
	backPlatforms := func(l *Level) []Block { return l.BackPlatforms }
	return []Section{
		{Name: "background", Extract: extractBackground, Encode: encodeBackground, Count: one},
		{Name: "player", Extract: extractPlayer, Encode: encodePlayer, Count: one},
		{Name: "platforms", Extract: blocks("rect", func(l *Level) *[]Block { return &l.Platforms }), Encode: encodeBlocks(platforms), Count: count(platforms)},
		{Name: "goals", Extract: extractGoals, Encode: encodeGoals, Count: count(func(l *Level) []Goal { return l.Goals })},
		{Name: "lavas", Extract: blocks("lava", func(l *Level) *[]Block { return &l.Lavas }), Encode: encodeBlocks(lavas), Count: count(lavas)},
		{Name: "backplatforms", Extract: blocks("backrect", func(l *Level) *[]Block { return &l.BackPlatforms }), Encode: encodeBlocks(backPlatforms), Count: count(backPlatforms)},
		{Name: "boxes", Extract: extractBoxes, Encode: encodeBoxes, Count: count(func(l *Level) []Box { return l.Boxes })},
		{Name: "labels", Extract: extractLabels, Encode: encodeLabels, Count: count(func(l *Level) []Label { return l.Labels })},
		{Name: "scripts", Extract: extractScripts, Encode: encodeScripts, Count: count(func(l *Level) []Script { return l.Scripts })},
	}
}

func one(*Level) int { return 1 }

func count[T any](field func(*Level) []T) func(*Level) int {
	return func(l *Level) int { return len(field(l)) }
}

// Extractor gives section extractors read access to the document and the
// conversion settings.
type Extractor struct {
	doc      *svgdoc.Document
	colors   style.Decoder
	readFile func(string) ([]byte, error)
	log      *slog.Logger
}

// rects returns the rect elements whose id satisfies match, in document order.
func (x *Extractor) rects(match func(id string) bool) []*svgdoc.Element {
	var out []*svgdoc.Element
	for e := range x.doc.Rects() {
		if id := svgdoc.ID(e); id != "" && match(id) {
			out = append(out, e)
		}
	}
	return out
}

func (x *Extractor) texts(match func(id string) bool) []*svgdoc.Element {
	var out []*svgdoc.Element
	for e := range x.doc.Texts() {
		if id := svgdoc.ID(e); id != "" && match(id) {
			out = append(out, e)
		}
	}
	return out
}

// only returns the single rect with the given id.
func (x *Extractor) only(section, id string) (*svgdoc.Element, error) {
	found := x.rects(func(s string) bool { return s == id })
	if len(found) != 1 {
		return nil, &CardinalityError{Section: section, Selector: fmt.Sprintf("rect id=%q", id), Count: len(found)}
	}
	return found[0], nil
}

func (x *Extractor) color(id, styleAttr string) (string, error) {
	c, err := x.colors.Color(styleAttr)
	if err != nil {
		return "", fmt.Errorf("%q: %w", id, err)
	}
	return c, nil
}

func prefix(p string) func(string) bool {
	return func(id string) bool { return strings.HasPrefix(id, p) }
}

func extractBackground(x *Extractor, lvl *Level) error {
	e, err := x.only("background", "background")
	if err != nil {
		return err
	}
	f := svgdoc.Read(e)
	st := f.Get("style")
	if err := f.Err(); err != nil {
		return err
	}
	lvl.Background, err = x.color("background", st)
	return err
}

func extractPlayer(x *Extractor, lvl *Level) error {
	e, err := x.only("player", "player")
	if err != nil {
		return err
	}
	f := svgdoc.Read(e)
	p := Player{X: f.Get("x"), Y: f.Get("y")}
	st := f.Get("style")
	if err := f.Err(); err != nil {
		return err
	}
	if p.Color, err = x.color("player", st); err != nil {
		return err
	}
	lvl.Player = p
	return nil
}

func readBlock(x *Extractor, e *svgdoc.Element) (Block, error) {
	r, err := svgdoc.AsRect(e)
	if err != nil {
		return Block{}, err
	}
	c, err := x.color(r.ID, r.Style)
	if err != nil {
		return Block{}, err
	}
	return Block{X: r.X, Y: r.Y, W: r.Width, H: r.Height, Color: c}, nil
}

// blocks builds the extractor of a plain rectangle list selected by id prefix.
func blocks(idPrefix string, field func(*Level) *[]Block) func(*Extractor, *Level) error {
	return func(x *Extractor, lvl *Level) error {
		found := x.rects(prefix(idPrefix))
		list := make([]Block, 0, len(found))
		for _, e := range found {
			b, err := readBlock(x, e)
			if err != nil {
				return err
			}
			list = append(list, b)
		}
		*field(lvl) = list
		return nil
	}
}

func extractGoals(x *Extractor, lvl *Level) error {
	found := x.rects(prefix("goal"))
	lvl.Goals = make([]Goal, 0, len(found))
	for _, e := range found {
		f := svgdoc.Read(e)
		g := Goal{ID: f.Get("id"), X: f.Get("x"), Y: f.Get("y")}
		st := f.Get("style")
		if err := f.Err(); err != nil {
			return err
		}
		regionID := "region" + strings.TrimPrefix(g.ID, "goal")
		re, err := x.only("goals", regionID)
		if err != nil {
			return fmt.Errorf("goal %q: %w", g.ID, err)
		}
		rf := svgdoc.Read(re)
		g.Region = Area{X: rf.Get("x"), Y: rf.Get("y"), W: rf.Get("width"), H: rf.Get("height")}
		if err := rf.Err(); err != nil {
			return err
		}
		if g.Color, err = x.color(g.ID, st); err != nil {
			return err
		}
		lvl.Goals = append(lvl.Goals, g)
	}
	return nil
}

func extractBoxes(x *Extractor, lvl *Level) error {
	found := x.rects(prefix("box"))
	lvl.Boxes = make([]Box, 0, len(found))
	for _, e := range found {
		b, err := readBlock(x, e)
		if err != nil {
			return err
		}
		lvl.Boxes = append(lvl.Boxes, Box{ID: svgdoc.ID(e), Block: b})
	}
	return nil
}

func extractLabels(x *Extractor, lvl *Level) error {
	found := x.texts(prefix("label"))
	lvl.Labels = make([]Label, 0, len(found))
	for _, e := range found {
		t, err := svgdoc.AsText(e)
		if err != nil {
			return err
		}
		c, err := x.color(t.ID, t.Style)
		if err != nil {
			return err
		}
		// Spans are joined with a single space; line breaks the designer
		// meant between spans are not kept.
		lvl.Labels = append(lvl.Labels, Label{X: t.X, Y: t.Y, Color: c, Text: strings.Join(t.Spans, " ")})
	}
	return nil
}

func extractScripts(x *Extractor, lvl *Level) error {
	found := x.rects(prefix("script"))
	lvl.Scripts = make([]Script, 0, len(found))
	for _, e := range found {
		f := svgdoc.Read(e)
		s := Script{ID: f.Get("id")}
		s.Area = Area{X: f.Get("x"), Y: f.Get("y"), W: f.Get("width"), H: f.Get("height")}
		if err := f.Err(); err != nil {
			return err
		}
		children := e.Children()
		if len(children) != 1 {
			return &CardinalityError{Section: "scripts", Selector: fmt.Sprintf("child element of rect id=%q", s.ID), Count: len(children)}
		}
		// The path is taken as written and resolved against the working
		// directory, not the SVG's directory.
		s.Path = children[0].Text()
		data, err := x.readFile(s.Path)
		if err != nil {
			return &ScriptError{ID: s.ID, Path: s.Path, Err: err}
		}
		s.Lines = SplitLines(string(data))
		lvl.Scripts = append(lvl.Scripts, s)
	}
	return nil
}

func encodeBackground(lvl *Level) []string { return []string{lvl.Background} }

func encodePlayer(lvl *Level) []string {
	p := lvl.Player
	return []string{join(p.X, p.Y, p.Color)}
}

func encodeBlocks(field func(*Level) []Block) func(*Level) []string {
	return func(lvl *Level) []string {
		list := field(lvl)
		out := make([]string, 0, len(list)+1)
		out = append(out, strconv.Itoa(len(list)))
		for _, b := range list {
			out = append(out, join(b.X, b.Y, b.W, b.H, b.Color))
		}
		return out
	}
}

func encodeGoals(lvl *Level) []string {
	out := []string{strconv.Itoa(len(lvl.Goals))}
	for _, g := range lvl.Goals {
		out = append(out, join(g.ID, g.X, g.Y, g.Region.X, g.Region.Y, g.Region.W, g.Region.H, g.Color))
	}
	return out
}

func encodeBoxes(lvl *Level) []string {
	out := []string{strconv.Itoa(len(lvl.Boxes))}
	for _, b := range lvl.Boxes {
		out = append(out, join(b.ID, b.X, b.Y, b.W, b.H, b.Color))
	}
	return out
}

func encodeLabels(lvl *Level) []string {
	out := []string{strconv.Itoa(len(lvl.Labels))}
	for _, l := range lvl.Labels {
		out = append(out, join(l.X, l.Y, l.Color), l.Text)
	}
	return out
}

func encodeScripts(lvl *Level) []string {
	out := []string{strconv.Itoa(len(lvl.Scripts))}
	for _, s := range lvl.Scripts {
		out = append(out, join(s.Area.X, s.Area.Y, s.Area.W, s.Area.H), strconv.Itoa(len(s.Lines)))
		out = append(out, s.Lines...)
	}
	return out
}

func join(fields ...string) string { return strings.Join(fields, " ") }
