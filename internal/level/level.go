/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package level turns a level-design SVG into the line-oriented level asset
// read by the game.
//
// Extraction is driven by element ids. Each section of the asset has an
// extractor that fills the Level model from the document and an encoder that
// renders the model back to lines; Sections lists them in output order.
//
// Asset layout (one record per line, fields separated by a single space):
//
//	background   color
//	player       x y color
//	platforms    count, then x y w h color
//	goals        count, then id x y regionX regionY regionW regionH color
//	lavas        count, then x y w h color
//	backplatforms count, then x y w h color
//	boxes        count, then id x y w h color
//	labels       count, then "x y color" and the label text
//	scripts      count, then "x y w h", the line count and the script lines
package level

import (
	"fmt"
	"log/slog"
	"os"

	"svg2rects/internal/style"
)

// Level is the extracted content of one drawing. All geometry is kept as
// the attribute strings found in the SVG.
type Level struct {
	Background    string   `json:"background"`
	Player        Player   `json:"player"`
	Platforms     []Block  `json:"platforms"`
	Goals         []Goal   `json:"goals"`
	Lavas         []Block  `json:"lavas"`
	BackPlatforms []Block  `json:"backplatforms"`
	Boxes         []Box    `json:"boxes"`
	Labels        []Label  `json:"labels"`
	Scripts       []Script `json:"scripts"`
}

// Player is the spawn point.
type Player struct {
	X     string `json:"x"`
	Y     string `json:"y"`
	Color string `json:"color"`
}

// Block is a colored rectangle: platform, lava or backplatform.
type Block struct {
	X     string `json:"x"`
	Y     string `json:"y"`
	W     string `json:"w"`
	H     string `json:"h"`
	Color string `json:"color"`
}

// Area is an uncolored rectangle.
type Area struct {
	X string `json:"x"`
	Y string `json:"y"`
	W string `json:"w"`
	H string `json:"h"`
}

// Goal is a goal marker and the region that completes it.
type Goal struct {
	ID     string `json:"id"`
	X      string `json:"x"`
	Y      string `json:"y"`
	Region Area   `json:"region"`
	Color  string `json:"color"`
}

// Box is a movable box; the id is part of the record.
type Box struct {
	ID string `json:"id"`
	Block
}

// Label is a piece of text shown in the level.
type Label struct {
	X     string `json:"x"`
	Y     string `json:"y"`
	Color string `json:"color"`
	Text  string `json:"text"`
}

// Script is a trigger area with the lines of the script file it references.
type Script struct {
	ID    string   `json:"id"`
	Area  Area     `json:"area"`
	Path  string   `json:"path"`
	Lines []string `json:"lines"`
}

// Options tunes extraction. The zero value decodes colors in lax mode, reads
// scripts from the file system relative to the working directory and logs
// through the application logger.
type Options struct {
	Colors   style.Decoder
	ReadFile func(path string) ([]byte, error)
	Logger   *slog.Logger
	// Atomic makes ConvertFile write through a temp file renamed into place.
	Atomic bool
}

func (o Options) readFile() func(string) ([]byte, error) {
	if o.ReadFile != nil {
		return o.ReadFile
	}
	return os.ReadFile
}

// CardinalityError reports a selector that must match exactly once but did not.
type CardinalityError struct {
	Section  string
	Selector string
	Count    int
}

func (e *CardinalityError) Error() string {
	return fmt.Sprintf("%s: expected exactly one %s, found %d", e.Section, e.Selector, e.Count)
}

// ScriptError reports a script file that could not be read.
type ScriptError struct {
	ID   string
	Path string
	Err  error
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("script %q: read %s: %v", e.ID, e.Path, e.Err)
}

func (e *ScriptError) Unwrap() error { return e.Err }
