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
	"image/color"

	"github.com/jung-kurt/gofpdf"

	"svg2rects/internal/level"
)

// PDF renders lvl as a single vector page, one point per SVG unit times
// opt.Scale. Labels use the built-in Helvetica so nothing is embedded.
func PDF(lvl *level.Level, path string, opt Options) error {
	sc, err := buildScene(lvl, opt)
	if err != nil {
		return err
	}
	k := opt.scale()
	size := gofpdf.SizeType{Wd: sc.W * k, Ht: sc.H * k}

	pdf := gofpdf.NewCustom(&gofpdf.InitType{UnitStr: "pt", Size: size})
	pdf.SetTitle("svg2rects level preview", false)
	pdf.SetCreator("svg2rects", false)
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPageFormat("", size)

	setFillColor(pdf, sc.bg)
	pdf.Rect(0, 0, size.Wd, size.Ht, "F")

	pdf.SetLineWidth(0.5)
	for _, s := range sc.shapes {
		if s.outline {
			setDrawColor(pdf, s.fill)
			pdf.Rect(s.X*k, s.Y*k, s.W*k, s.H*k, "D")
			continue
		}
		setFillColor(pdf, s.fill)
		pdf.Rect(s.X*k, s.Y*k, s.W*k, s.H*k, "F")
	}

	pdf.SetFont("Helvetica", "", 10*k)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	for _, l := range sc.labels {
		pdf.SetTextColor(int(l.col.R), int(l.col.G), int(l.col.B))
		pdf.Text(l.X*k, l.Y*k, tr(l.s))
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func setDrawColor(pdf *gofpdf.Fpdf, c color.RGBA) {
	pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
}

func setFillColor(pdf *gofpdf.Fpdf, c color.RGBA) {
	pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
}
