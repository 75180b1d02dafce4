/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package level

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"svg2rects/internal/style"
	"svg2rects/internal/svgdoc"
)

const (
	bgRect     = `<rect id="background" x="0" y="0" width="10" height="10" style="fill:#000000"/>`
	playerRect = `<rect id="player" x="1" y="2" width="3" height="4" style="fill:#ffffff"/>`
)

func quiet() Options { return Options{Logger: slog.New(slog.DiscardHandler)} }

func parse(t *testing.T, body string) *svgdoc.Document {
	t.Helper()
	doc, err := svgdoc.Parse(strings.NewReader(`<svg xmlns="http://www.w3.org/2000/svg">` + body + `</svg>`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

func convertLines(t *testing.T, doc *svgdoc.Document, opts Options) []string {
	t.Helper()
	var buf bytes.Buffer
	if err := Convert(doc, &buf, opts); err != nil {
		t.Fatalf("Convert: %v", err)
	}
	return strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
}

func TestConvertGolden(t *testing.T) {
	doc, err := svgdoc.Load(filepath.Join("testdata", "level.svg"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	var buf bytes.Buffer
	if err := Convert(doc, &buf, quiet()); err != nil {
		t.Fatalf("Convert: %v", err)
	}
	want, err := os.ReadFile(filepath.Join("testdata", "level.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(strings.Split(string(want), "\n"), strings.Split(buf.String(), "\n")); diff != "" {
		t.Fatalf("asset mismatch (-want +got):\n%s", diff)
	}
}

func TestMinimalLevelHasZeroCounts(t *testing.T) {
	got := convertLines(t, parse(t, bgRect+playerRect), quiet())
	want := []string{"000000", "1 2 ffffff", "0", "0", "0", "0", "0", "0", "0"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}

func TestSectionOrder(t *testing.T) {
	var names []string
	for _, s := range Sections() {
		names = append(names, s.Name)
	}
	want := []string{"background", "player", "platforms", "goals", "lavas", "backplatforms", "boxes", "labels", "scripts"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}

func TestRequiredRectCardinality(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		section string
		count   int
	}{
		{"no background", playerRect, "background", 0},
		{"two backgrounds", bgRect + bgRect + playerRect, "background", 2},
		{"no player", bgRect, "player", 0},
		{"two players", bgRect + playerRect + playerRect, "player", 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := Convert(parse(t, tc.body), &buf, quiet())
			var ce *CardinalityError
			if !errors.As(err, &ce) {
				t.Fatalf("expected CardinalityError, got %v", err)
			}
			if ce.Section != tc.section || ce.Count != tc.count {
				t.Fatalf("got %+v", ce)
			}
			if buf.Len() != 0 {
				t.Fatalf("output written despite failure: %q", buf.String())
			}
		})
	}
}

func TestBackgroundNeedsOnlyStyle(t *testing.T) {
	doc := parse(t, `<rect id="background" style="fill:#abcdef"/>`+playerRect)
	got := convertLines(t, doc, quiet())
	if got[0] != "abcdef" {
		t.Fatalf("background line = %q", got[0])
	}
}

func TestPlatformsAndBackplatformsAreDisjoint(t *testing.T) {
	body := bgRect + playerRect +
		`<rect id="backrect1" x="0" y="0" width="1" height="1" style="fill:#111111"/>` +
		`<rect id="rect1" x="1" y="1" width="1" height="1" style="fill:#222222"/>` +
		`<rect id="backrect2" x="2" y="2" width="1" height="1" style="fill:#333333"/>` +
		`<rect id="rectangle" x="3" y="3" width="1" height="1" style="fill:#444444"/>`
	lvl, err := Extract(parse(t, body), quiet())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(lvl.Platforms) != 2 || len(lvl.BackPlatforms) != 2 {
		t.Fatalf("platforms=%d backplatforms=%d", len(lvl.Platforms), len(lvl.BackPlatforms))
	}
	if lvl.Platforms[0].Color != "222222" || lvl.Platforms[1].Color != "444444" {
		t.Fatalf("platforms out of document order: %+v", lvl.Platforms)
	}
	if lvl.BackPlatforms[0].Color != "111111" || lvl.BackPlatforms[1].Color != "333333" {
		t.Fatalf("backplatforms out of document order: %+v", lvl.BackPlatforms)
	}
}

func TestLabelSpansJoinedWithSpace(t *testing.T) {
	body := bgRect + playerRect +
		`<text id="label1" x="4" y="5" style="fill:#0000ff"><tspan>Hello</tspan><tspan>World</tspan></text>`
	got := convertLines(t, parse(t, body), quiet())
	want := []string{"1", "4 5 0000ff", "Hello World"}
	if diff := cmp.Diff(want, got[7:10]); diff != "" {
		t.Fatalf("labels (-want +got):\n%s", diff)
	}
}

func TestGoalRegionPairing(t *testing.T) {
	goal := `<rect id="goalA" x="10" y="20" width="1" height="1" style="fill:#00ff00"/>`
	region := `<rect id="regionA" x="30" y="40" width="50" height="60"/>`

	lvl, err := Extract(parse(t, bgRect+playerRect+goal+region), quiet())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	want := []string{"1", "goalA 10 20 30 40 50 60 00ff00"}
	if diff := cmp.Diff(want, encodeGoals(lvl)); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}

	for name, body := range map[string]string{
		"missing region":   bgRect + playerRect + goal,
		"duplicate region": bgRect + playerRect + goal + region + region,
	} {
		_, err := Extract(parse(t, body), quiet())
		var ce *CardinalityError
		if !errors.As(err, &ce) {
			t.Fatalf("%s: expected CardinalityError, got %v", name, err)
		}
		if !strings.Contains(err.Error(), `"goalA"`) || !strings.Contains(err.Error(), `"regionA"`) {
			t.Fatalf("%s: error does not name goal and region: %v", name, err)
		}
	}
}

func TestBoxesCarryID(t *testing.T) {
	body := bgRect + playerRect + `<rect id="box7" x="1" y="2" width="3" height="4" style="fill:#777777"/>`
	got := convertLines(t, parse(t, body), quiet())
	if diff := cmp.Diff([]string{"1", "box7 1 2 3 4 777777"}, got[6:8]); diff != "" {
		t.Fatalf("boxes (-want +got):\n%s", diff)
	}
}

func TestScriptBlock(t *testing.T) {
	body := bgRect + playerRect +
		`<rect id="script1" x="7" y="8" width="9" height="10"><title>scripts/door.txt</title></rect>`
	opts := quiet()
	var asked string
	opts.ReadFile = func(path string) ([]byte, error) {
		asked = path
		return []byte("line one\n  line two  \nline three\n"), nil
	}
	got := convertLines(t, parse(t, body), opts)
	if asked != "scripts/door.txt" {
		t.Fatalf("script path = %q", asked)
	}
	want := []string{"1", "7 8 9 10", "3", "line one", "  line two  ", "line three"}
	if diff := cmp.Diff(want, got[8:]); diff != "" {
		t.Fatalf("scripts (-want +got):\n%s", diff)
	}
}

func TestScriptErrors(t *testing.T) {
	missing := bgRect + playerRect +
		`<rect id="script1" x="7" y="8" width="9" height="10"><title>` + filepath.Join(t.TempDir(), "nope.txt") + `</title></rect>`
	_, err := Extract(parse(t, missing), quiet())
	var se *ScriptError
	if !errors.As(err, &se) || !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected ScriptError wrapping ErrNotExist, got %v", err)
	}
	if se.ID != "script1" {
		t.Fatalf("ScriptError.ID = %q", se.ID)
	}

	childless := bgRect + playerRect + `<rect id="script1" x="7" y="8" width="9" height="10"/>`
	_, err = Extract(parse(t, childless), quiet())
	var ce *CardinalityError
	if !errors.As(err, &ce) || ce.Section != "scripts" || ce.Count != 0 {
		t.Fatalf("expected scripts CardinalityError, got %v", err)
	}
}

func TestColorExtractionFailureNamesElement(t *testing.T) {
	body := bgRect + playerRect + `<rect id="lava3" x="1" y="2" width="3" height="4" style="stroke:#ff0000"/>`
	_, err := Extract(parse(t, body), quiet())
	var ee *style.ExtractionError
	if !errors.As(err, &ee) {
		t.Fatalf("expected ExtractionError, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), "lavas: ") || !strings.Contains(err.Error(), `"lava3"`) {
		t.Fatalf("error lacks context: %v", err)
	}
}

func TestColorModes(t *testing.T) {
	body := bgRect + playerRect + `<rect id="rect1" x="1" y="2" width="3" height="4" style="fill:#zz00zz"/>`
	lvl, err := Extract(parse(t, body), quiet())
	if err != nil {
		t.Fatalf("lax Extract: %v", err)
	}
	if lvl.Platforms[0].Color != "zz00zz" {
		t.Fatalf("lax color = %q", lvl.Platforms[0].Color)
	}

	strict := quiet()
	strict.Colors = style.Decoder{Mode: style.ModeStrict}
	if _, err := Extract(parse(t, body), strict); err == nil {
		t.Fatalf("strict mode accepted fill:#zz00zz")
	}
}

func TestMissingAttribute(t *testing.T) {
	body := bgRect + playerRect + `<rect id="rect1" x="1" y="2" height="4" style="fill:#000000"/>`
	_, err := Extract(parse(t, body), quiet())
	var mae *svgdoc.MissingAttributeError
	if !errors.As(err, &mae) {
		t.Fatalf("expected MissingAttributeError, got %v", err)
	}
	if mae.ID != "rect1" || mae.Attr != "width" {
		t.Fatalf("got %+v", mae)
	}
}

func TestElementsWithoutIDAreIgnored(t *testing.T) {
	body := bgRect + playerRect + `<rect x="1" y="2" width="3" height="4"/>`
	if _, err := Extract(parse(t, body), quiet()); err != nil {
		t.Fatalf("Extract: %v", err)
	}
}

func TestManyPlatformsCount(t *testing.T) {
	var b strings.Builder
	b.WriteString(bgRect + playerRect)
	for i := 0; i < 25; i++ {
		fmt.Fprintf(&b, `<rect id="rect%d" x="%d" y="0" width="1" height="1" style="fill:#abcdef"/>`, i, i)
	}
	got := convertLines(t, parse(t, b.String()), quiet())
	if got[2] != "25" {
		t.Fatalf("platform count line = %q", got[2])
	}
	if got[27] != "24 0 1 1 abcdef" {
		t.Fatalf("last platform = %q", got[27])
	}
}

func TestExtractLogsRecordCounts(t *testing.T) {
	var buf bytes.Buffer
	opts := Options{Logger: slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))}
	doc := parse(t, bgRect+playerRect+
		`<rect id="rect1" x="0" y="0" width="1" height="1" style="fill:#111111"/>`+
		`<rect id="rect2" x="0" y="0" width="1" height="1" style="fill:#222222"/>`)
	if _, err := Extract(doc, opts); err != nil {
		t.Fatalf("Extract: %v", err)
	}
	got := map[string]int{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var rec struct {
			Section string `json:"section"`
			Records int    `json:"records"`
		}
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Fatalf("bad log line %q: %v", line, err)
		}
		got[rec.Section] = rec.Records
	}
	want := map[string]int{"background": 1, "player": 1, "platforms": 2, "goals": 0, "lavas": 0, "backplatforms": 0, "boxes": 0, "labels": 0, "scripts": 0}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("record counts (-want +got):\n%s", diff)
	}
}
