/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package preview

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"svg2rects/internal/level"
)

// maxPixels caps the raster size; larger drawings need a smaller scale.
const maxPixels = 16384

// PNG renders lvl as a raster image at opt.Scale pixels per SVG unit.
func PNG(lvl *level.Level, path string, opt Options) error {
	img, err := Raster(lvl, opt)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create png: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close png: %w", err)
	}
	return nil
}

// Raster renders lvl into an in-memory image.
func Raster(lvl *level.Level, opt Options) (*image.RGBA, error) {
	sc, err := buildScene(lvl, opt)
	if err != nil {
		return nil, err
	}
	k := opt.scale()
	w, h := sc.W*k, sc.H*k
	if !(w <= maxPixels && h <= maxPixels) {
		return nil, fmt.Errorf("preview %gx%g px exceeds %d px, lower preview.scale", w, h, maxPixels)
	}
	pixW, pixH := int(math.Ceil(w)), int(math.Ceil(h))
	if pixW <= 0 || pixH <= 0 {
		return nil, fmt.Errorf("preview %dx%d px is empty", pixW, pixH)
	}

	img := image.NewRGBA(image.Rect(0, 0, pixW, pixH))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: sc.bg}, image.Point{}, draw.Src)

	for _, s := range sc.shapes {
		x0 := int(math.Round(s.X * k))
		y0 := int(math.Round(s.Y * k))
		x1 := int(math.Round((s.X+s.W)*k)) - 1
		y1 := int(math.Round((s.Y+s.H)*k)) - 1
		if s.outline {
			strokeRect(img, x0, y0, x1, y1, s.fill)
		} else {
			fillRect(img, x0, y0, x1, y1, s.fill)
		}
	}

	d := &font.Drawer{Dst: img, Face: basicfont.Face7x13}
	for _, l := range sc.labels {
		d.Src = image.NewUniform(l.col)
		d.Dot = fixed.P(int(math.Round(l.X*k)), int(math.Round(l.Y*k)))
		d.DrawString(l.s)
	}
	return img, nil
}

// strokeRect draws a 1px axis-aligned rectangle border inclusive of endpoints.
func strokeRect(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	for x := x0; x <= x1; x++ {
		img.SetRGBA(x, y0, col)
		img.SetRGBA(x, y1, col)
	}
	for y := y0; y <= y1; y++ {
		img.SetRGBA(x0, y, col)
		img.SetRGBA(x1, y, col)
	}
}

func fillRect(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	r := image.Rect(x0, y0, x1+1, y1+1).Intersect(img.Bounds())
	draw.Draw(img, r, &image.Uniform{C: col}, image.Point{}, draw.Src)
}
