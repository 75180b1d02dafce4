/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"svg2rects/internal/config"
)

const drawing = `<svg xmlns="http://www.w3.org/2000/svg">
  <rect id="background" style="fill:#112233"/>
  <rect id="player" x="5" y="6" width="1" height="1" style="fill:#ff0000"/>
  <rect id="rect1" x="0" y="90" width="100" height="10" style="fill:#00ff00"/>
</svg>`

func setup(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(config.EnvConfigPath, filepath.Join(dir, "missing.yaml"))
	t.Setenv(config.EnvLogFile, "")
	in := filepath.Join(dir, "level.svg")
	if err := os.WriteFile(in, []byte(drawing), 0o644); err != nil {
		t.Fatal(err)
	}
	return in
}

func TestRunConverts(t *testing.T) {
	in := setup(t)
	out := filepath.Join(filepath.Dir(in), "level.txt")
	var stdout, stderr bytes.Buffer
	if code := run([]string{in, out}, &stdout, &stderr); code != 0 {
		t.Fatalf("exit %d, stderr: %s", code, stderr.String())
	}
	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	want := "112233\n5 6 ff0000\n1\n0 90 100 10 00ff00\n0\n0\n0\n0\n0\n0\n"
	if diff := cmp.Diff(want, string(b)); diff != "" {
		t.Fatalf("asset mismatch (-want +got):\n%s", diff)
	}
}

func TestRunUsage(t *testing.T) {
	setup(t)
	for _, args := range [][]string{nil, {"only-one.svg"}, {"preview"}} {
		var stdout, stderr bytes.Buffer
		if code := run(args, &stdout, &stderr); code != 1 {
			t.Errorf("%v: exit %d, want 1", args, code)
		}
		if !strings.Contains(stdout.String(), "Usage:") {
			t.Errorf("%v: usage not printed to stdout: %q", args, stdout.String())
		}
	}
}

func TestRunReportsErrors(t *testing.T) {
	in := setup(t)
	dir := filepath.Dir(in)
	out := filepath.Join(dir, "out.txt")
	var stdout, stderr bytes.Buffer
	code := run([]string{filepath.Join(dir, "nope.svg"), out}, &stdout, &stderr)
	if code != 1 {
		t.Fatalf("exit %d, want 1", code)
	}
	if !strings.Contains(stderr.String(), "Error:") {
		t.Fatalf("stderr lacks error line: %q", stderr.String())
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Fatalf("output should not exist, stat err = %v", err)
	}
}

func TestRunJSONAndPreview(t *testing.T) {
	in := setup(t)
	dir := filepath.Dir(in)
	for _, out := range []string{"level.json", "level.png", "level.pdf"} {
		var stdout, stderr bytes.Buffer
		cmd := "preview"
		if strings.HasSuffix(out, ".json") {
			cmd = "json"
		}
		path := filepath.Join(dir, out)
		if code := run([]string{cmd, in, path}, &stdout, &stderr); code != 0 {
			t.Fatalf("%s %s: exit %d, stderr: %s", cmd, out, code, stderr.String())
		}
		if st, err := os.Stat(path); err != nil || st.Size() == 0 {
			t.Fatalf("%s: missing or empty output (%v)", out, err)
		}
	}
}

func TestRunVersion(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run([]string{"--version"}, &stdout, &stderr); code != 0 {
		t.Fatalf("exit %d", code)
	}
	if !strings.HasPrefix(stdout.String(), "svg2rects\n") {
		t.Fatalf("unexpected version output %q", stdout.String())
	}
}

func TestRunTwoArgumentsAlwaysConvert(t *testing.T) {
	in := setup(t)
	dir := filepath.Dir(in)
	t.Chdir(dir)
	for _, name := range []string{"json", "preview", "version"} {
		if err := os.WriteFile(name, []byte(drawing), 0o644); err != nil {
			t.Fatal(err)
		}
		out := name + ".txt"
		var stdout, stderr bytes.Buffer
		if code := run([]string{name, out}, &stdout, &stderr); code != 0 {
			t.Fatalf("%s: exit %d, stdout %q, stderr %q", name, code, stdout.String(), stderr.String())
		}
		b, err := os.ReadFile(out)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if !strings.HasPrefix(string(b), "112233\n") {
			t.Fatalf("%s: unexpected asset %q", name, b)
		}
	}
}
