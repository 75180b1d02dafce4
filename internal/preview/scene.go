/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package preview renders an extracted level to PNG or PDF so designers can
// check what the converter picked up from their drawing.
package preview

import (
	"fmt"
	"image/color"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"svg2rects/internal/level"
)

// Options controls preview rendering. Zero values fall back to defaults.
type Options struct {
	Scale      float64 // output units per SVG unit
	LabelColor string  // 6 hex digits, used when a label color is not hex
}

// Write renders lvl to path; the format follows the extension (.png or .pdf).
func Write(lvl *level.Level, path string, opt Options) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return PNG(lvl, path, opt)
	case ".pdf":
		return PDF(lvl, path, opt)
	default:
		return fmt.Errorf("preview %s: unsupported format (want .png or .pdf)", path)
	}
}

// markerSize is the side of the square drawn for records the asset stores
// as a bare point: the spawn point and goal markers.
const markerSize = 10

type rect struct {
	X, Y, W, H float64
}

type shape struct {
	rect
	fill    color.RGBA
	outline bool // draw the border only
}

type text struct {
	X, Y float64
	col  color.RGBA
	s    string
}

// scene is the numeric form of a level, translated so every shape lies in
// [0,W]x[0,H], in paint order.
type scene struct {
	W, H   float64
	bg     color.RGBA
	shapes []shape
	labels []text
}

var invalidColor = color.RGBA{R: 0xff, G: 0x00, B: 0xff, A: 0xff}

// parseColor converts RRGGBB. ok is false for codes the lax decoder accepts
// that are not hex.
func parseColor(s string) (c color.RGBA, ok bool) {
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil || len(s) != 6 {
		return color.RGBA{}, false
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, true
}

// colorOr is parseColor with def for unparsable codes.
func colorOr(s string, def color.RGBA) color.RGBA {
	if c, ok := parseColor(s); ok {
		return c
	}
	return def
}

type numParser struct {
	what string
	err  error
}

func (p *numParser) f(s string) float64 {
	if p.err != nil {
		return 0
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		p.err = fmt.Errorf("preview: %s: %w", p.what, err)
		return 0
	}
	if math.IsInf(v, 0) || math.IsNaN(v) {
		p.err = fmt.Errorf("preview: %s: %q is not a finite number", p.what, s)
		return 0
	}
	return v
}

func (p *numParser) area(x, y, w, h string) rect {
	return rect{X: p.f(x), Y: p.f(y), W: p.f(w), H: p.f(h)}
}

func buildScene(lvl *level.Level, opt Options) (*scene, error) {
	sc := &scene{bg: colorOr(lvl.Background, invalidColor)}
	labelFallback := colorOr(opt.LabelColor, color.RGBA{A: 0xff})

	blocks := func(kind string, list []level.Block) error {
		for i, b := range list {
			p := numParser{what: fmt.Sprintf("%s[%d]", kind, i)}
			r := p.area(b.X, b.Y, b.W, b.H)
			if p.err != nil {
				return p.err
			}
			sc.shapes = append(sc.shapes, shape{rect: r, fill: colorOr(b.Color, invalidColor)})
		}
		return nil
	}
	if err := blocks("backplatform", lvl.BackPlatforms); err != nil {
		return nil, err
	}
	if err := blocks("platform", lvl.Platforms); err != nil {
		return nil, err
	}
	if err := blocks("lava", lvl.Lavas); err != nil {
		return nil, err
	}
	for _, g := range lvl.Goals {
		p := numParser{what: "goal " + g.ID}
		region := p.area(g.Region.X, g.Region.Y, g.Region.W, g.Region.H)
		marker := rect{X: p.f(g.X), Y: p.f(g.Y), W: markerSize, H: markerSize}
		if p.err != nil {
			return nil, p.err
		}
		col := colorOr(g.Color, invalidColor)
		sc.shapes = append(sc.shapes, shape{rect: region, fill: col, outline: true}, shape{rect: marker, fill: col})
	}
	for _, b := range lvl.Boxes {
		p := numParser{what: "box " + b.ID}
		r := p.area(b.X, b.Y, b.W, b.H)
		if p.err != nil {
			return nil, p.err
		}
		sc.shapes = append(sc.shapes, shape{rect: r, fill: colorOr(b.Color, invalidColor)})
	}
	for _, s := range lvl.Scripts {
		p := numParser{what: "script " + s.ID}
		r := p.area(s.Area.X, s.Area.Y, s.Area.W, s.Area.H)
		if p.err != nil {
			return nil, p.err
		}
		sc.shapes = append(sc.shapes, shape{rect: r, fill: color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff}, outline: true})
	}
	p := numParser{what: "player"}
	pr := rect{X: p.f(lvl.Player.X), Y: p.f(lvl.Player.Y), W: markerSize, H: markerSize}
	if p.err != nil {
		return nil, p.err
	}
	sc.shapes = append(sc.shapes, shape{rect: pr, fill: colorOr(lvl.Player.Color, invalidColor)})

	for i, l := range lvl.Labels {
		p := numParser{what: fmt.Sprintf("label[%d]", i)}
		x, y := p.f(l.X), p.f(l.Y)
		if p.err != nil {
			return nil, p.err
		}
		sc.labels = append(sc.labels, text{X: x, Y: y, col: colorOr(l.Color, labelFallback), s: l.Text})
	}

	sc.normalize()
	return sc, nil
}

// normalize moves the scene so its bounding box starts at the origin.
func (sc *scene) normalize() {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	grow := func(x0, y0, x1, y1 float64) {
		minX, minY = math.Min(minX, math.Min(x0, x1)), math.Min(minY, math.Min(y0, y1))
		maxX, maxY = math.Max(maxX, math.Max(x0, x1)), math.Max(maxY, math.Max(y0, y1))
	}
	for _, s := range sc.shapes {
		grow(s.X, s.Y, s.X+s.W, s.Y+s.H)
	}
	for _, l := range sc.labels {
		grow(l.X, l.Y, l.X, l.Y)
	}
	if math.IsInf(minX, 1) {
		sc.W, sc.H = 1, 1
		return
	}
	for i := range sc.shapes {
		sc.shapes[i].X -= minX
		sc.shapes[i].Y -= minY
	}
	for i := range sc.labels {
		sc.labels[i].X -= minX
		sc.labels[i].Y -= minY
	}
	sc.W, sc.H = math.Max(maxX-minX, 1), math.Max(maxY-minY, 1)
}

func (o Options) scale() float64 {
	if o.Scale <= 0 {
		return 1
	}
	return o.Scale
}
