/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"svg2rects/internal/config"
	"svg2rects/internal/crash"
	"svg2rects/internal/level"
	applog "svg2rects/internal/log"
	"svg2rects/internal/preview"
	"svg2rects/internal/style"
	"svg2rects/internal/version"
)

func usage(w io.Writer) {
	fmt.Fprintln(w, "svg2rects: convert an SVG level drawing into a level asset")
	fmt.Fprintf(w, "Version: %s\n", version.String())
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  svg2rects <svg-file-path> <output-file-path>    Write the level asset")
	fmt.Fprintln(w, "  svg2rects preview <svg-file-path> <out.png|pdf>  Render a preview of the level")
	fmt.Fprintln(w, "  svg2rects json <svg-file-path> <out.json>        Dump the extracted level as JSON")
	fmt.Fprintln(w, "  svg2rects version|-v|--version                   Show version")
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	job := &crash.Job{}
	defer crash.Recover(job)

	if len(args) == 1 {
		switch args[0] {
		case "version", "--version", "-v":
			fmt.Fprintln(stdout, "svg2rects")
			fmt.Fprintln(stdout, version.String())
			return 0
		}
	}

	cfg, err := config.Load()
	if err != nil {
		applog.Init(applog.Options{Console: stderr})
		applog.WithComponent("cli").Error("config failed", slog.Any("err", err))
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	applog.Init(applog.Options{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.Source,
		File:      cfg.Logging.File,
		Console:   stderr,
	})
	l := applog.WithComponent("cli")
	l.Debug("start", slog.Int("args", len(args)))

	mode, err := style.ParseMode(cfg.Conversion.ColorMode)
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	opts := level.Options{
		Colors: style.Decoder{Mode: mode},
		Logger: applog.WithComponent("level"),
		Atomic: cfg.Conversion.AtomicWrite,
	}

	// Two arguments are always <svg> <out>, even when the first is named
	// like a command.
	cmd := "convert"
	if len(args) > 2 && (args[0] == "preview" || args[0] == "json") {
		cmd, args = args[0], args[1:]
	}
	if len(args) < 2 {
		usage(stdout)
		return 1
	}
	*job = crash.Job{Command: cmd, Input: args[0], Output: args[1]}
	op := applog.WithOperation(l, cmd)
	op.Info("run", slog.String("input", job.Input), slog.String("output", job.Output))

	if err := execute(job, opts, cfg); err != nil {
		op.Error(cmd+" failed", slog.Any("err", err))
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	op.Info("done", slog.String("output", job.Output))
	return 0
}

func execute(job *crash.Job, opts level.Options, cfg config.AppConfig) error {
	switch job.Command {
	case "preview":
		lvl, err := level.ExtractFile(job.Input, opts)
		if err != nil {
			return err
		}
		return preview.Write(lvl, job.Output, preview.Options{
			Scale:      cfg.Preview.Scale,
			LabelColor: cfg.Preview.LabelColor,
		})
	case "json":
		lvl, err := level.ExtractFile(job.Input, opts)
		if err != nil {
			return err
		}
		return level.WriteJSONFile(job.Output, lvl, opts.Atomic)
	default:
		_, err := level.ConvertFile(job.Input, job.Output, opts)
		return err
	}
}
