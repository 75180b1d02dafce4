/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package crash turns an unexpected panic into a logged error, a report file
// and a non-zero exit.
package crash

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"time"

	applog "svg2rects/internal/log"
	"svg2rects/internal/version"
)

// EnvDir overrides the directory crash reports are written to.
const EnvDir = "S2R_CRASH_DIR"

// exitFn is used to allow testing of Recover without terminating the test process.
var exitFn = os.Exit

// Job describes the conversion in progress, for the report.
type Job struct {
	Command string
	Input   string
	Output  string
}

// Recover captures a panic, logs it with its stack, writes a report file and
// exits with status 2.
//
// It must be deferred directly: defer crash.Recover(job).
func Recover(job *Job) {
	if r := recover(); r != nil {
		l := applog.WithComponent("crash")
		stack := debug.Stack()
		l.Error("panic recovered", slog.Any("panic", r), slog.String("stack", string(stack)))

		reportPath, err := writeReport(job, r, stack)
		if err != nil {
			l.Error("crash report not written", slog.Any("err", err))
		}
		fmt.Fprintf(os.Stderr, "svg2rects crashed; report: %s\n", reportPath)
		fmt.Fprintf(os.Stderr, "Version: %s\nOS/Arch: %s/%s\n", version.String(), runtime.GOOS, runtime.GOARCH)
		exitFn(2)
	}
}

func writeReport(job *Job, panicVal any, stack []byte) (string, error) {
	dir := os.Getenv(EnvDir)
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, fmt.Sprintf("svg2rects-crash-%s-%d.log", time.Now().Format("20060102-150405"), os.Getpid()))

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "svg2rects crash report\n")
	fmt.Fprintf(&buf, "Timestamp: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(&buf, "Version: %s\n", version.String())
	fmt.Fprintf(&buf, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	if job != nil {
		fmt.Fprintf(&buf, "Command: %s\n", job.Command)
		fmt.Fprintf(&buf, "Input: %s\n", job.Input)
		fmt.Fprintf(&buf, "Output: %s\n", job.Output)
	}
	fmt.Fprintf(&buf, "\nPanic: %v\n\n", panicVal)
	fmt.Fprintf(&buf, "Stack:\n%s\n", stack)

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return path, err
	}
	return path, nil
}
