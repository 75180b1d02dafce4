/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package level

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"runtime"
	"unicode/utf8"

	applog "svg2rects/internal/log"
	"svg2rects/internal/svgdoc"
)

// Extract runs every section extractor against doc, in asset order.
func Extract(doc *svgdoc.Document, opts Options) (*Level, error) {
	l := opts.Logger
	if l == nil {
		l = applog.WithComponent("level")
	}
	x := &Extractor{doc: doc, colors: opts.Colors, readFile: opts.readFile(), log: l}
	lvl := &Level{}
	for _, s := range Sections() {
		if err := s.Extract(x, lvl); err != nil {
			return nil, fmt.Errorf("%s: %w", s.Name, err)
		}
		x.log.Debug("section extracted", slog.String("section", s.Name), slog.Int("records", s.Count(lvl)))
	}
	return lvl, nil
}

// Encode writes lvl to w in asset format.
func Encode(w io.Writer, lvl *Level) error {
	bw := bufio.NewWriter(w)
	for _, s := range Sections() {
		for _, line := range s.Encode(lvl) {
			if _, err := bw.WriteString(line); err != nil {
				return fmt.Errorf("write %s: %w", s.Name, err)
			}
			if err := bw.WriteByte('\n'); err != nil {
				return fmt.Errorf("write %s: %w", s.Name, err)
			}
		}
	}
	return bw.Flush()
}

// Convert extracts the level from doc and writes the asset to w.
// Nothing is written when extraction fails.
func Convert(doc *svgdoc.Document, w io.Writer, opts Options) error {
	lvl, err := Extract(doc, opts)
	if err != nil {
		return err
	}
	return Encode(w, lvl)
}

// ConvertFile converts the SVG at svgPath into the asset at outPath and
// returns the extracted level.
func ConvertFile(svgPath, outPath string, opts Options) (*Level, error) {
	lvl, err := ExtractFile(svgPath, opts)
	if err != nil {
		return nil, err
	}
	write := writeFile
	if opts.Atomic {
		write = writeFileAtomic
	}
	if err := write(outPath, func(w io.Writer) error { return Encode(w, lvl) }); err != nil {
		return nil, err
	}
	return lvl, nil
}

// ExtractFile loads the SVG at svgPath and extracts its level.
func ExtractFile(svgPath string, opts Options) (*Level, error) {
	doc, err := svgdoc.Load(svgPath)
	if err != nil {
		return nil, err
	}
	return Extract(doc, opts)
}

// WriteJSON writes lvl as indented JSON.
func WriteJSON(w io.Writer, lvl *Level) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(lvl)
}

// WriteJSONFile writes lvl as indented JSON to path.
func WriteJSONFile(path string, lvl *Level, atomic bool) error {
	write := writeFile
	if atomic {
		write = writeFileAtomic
	}
	return write(path, func(w io.Writer) error { return WriteJSON(w, lvl) })
}

func writeFile(path string, fill func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close output: %w", cerr)
		}
	}()
	return fill(f)
}

// rename is swapped in tests to simulate a failing replace.
var rename = os.Rename

// writeFileAtomic fills a temp file next to path, syncs it and renames it
// over path, so readers never see a half-written asset.
func writeFileAtomic(path string, fill func(io.Writer) error) error {
	dir := filepath.Dir(path)
	temp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d-%d", filepath.Base(path), os.Getpid(), rand.Int()))
	if err := writeFileSync(temp, fill); err != nil {
		_ = os.Remove(temp)
		return err
	}
	// Windows refuses to rename over an existing file.
	if runtime.GOOS == "windows" {
		if _, err := os.Stat(path); err == nil {
			_ = os.Remove(path)
		}
	}
	if err := rename(temp, path); err != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("replace output: %w", err)
	}
	return nil
}

func writeFileSync(path string, fill func(io.Writer) error) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("create temp output: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close temp output: %w", cerr)
		}
	}()
	if err := fill(f); err != nil {
		return err
	}
	return f.Sync()
}

// SplitLines splits s at every line boundary Unicode text editors recognize
// (\n, \r\n, \r, \v, \f, \x1c, \x1d, \x1e, U+0085, U+2028, U+2029). A trailing
// boundary does not start an extra empty line. Line content is sliced from s
// unchanged, invalid UTF-8 included.
func SplitLines(s string) []string {
	lines := []string{}
	start := 0
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		switch r {
		case '\r':
			lines = append(lines, s[start:i])
			i += size
			if i < len(s) && s[i] == '\n' {
				i++
			}
			start = i
			continue
		case '\n', '\v', '\f', '\x1c', '\x1d', '\x1e', '\u0085', '\u2028', '\u2029':
			lines = append(lines, s[start:i])
			i += size
			start = i
			continue
		}
		i += size
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}
