/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// AppConfig is the user-editable configuration persisted as YAML.
// Environment variables are read-only overrides applied after the file.
//
// config_version: bump when the structure changes in a backward-incompatible way.

type ConversionConfig struct {
	ColorMode   string `yaml:"color_mode"` // "lax" | "strict"
	AtomicWrite bool   `yaml:"atomic_write"`
}

type PreviewConfig struct {
	Scale      float64 `yaml:"scale"`
	LabelColor string  `yaml:"label_color"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int              `yaml:"config_version"`
	Conversion    ConversionConfig `yaml:"conversion"`
	Preview       PreviewConfig    `yaml:"preview"`
	Logging       LoggingConfig    `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		Conversion:    ConversionConfig{ColorMode: "lax", AtomicWrite: true},
		Preview:       PreviewConfig{Scale: 1, LabelColor: "000000"},
		Logging:       LoggingConfig{Level: "info", Format: "console"},
	}
}

// Env var names used as overrides.
const (
	EnvConfigPath   = "S2R_CONFIG"
	EnvColorMode    = "S2R_COLOR_MODE"
	EnvAtomicWrite  = "S2R_ATOMIC_WRITE"
	EnvPreviewScale = "S2R_PREVIEW_SCALE"
	// EnvLogLevel Logging envs, shared with internal/log
	EnvLogLevel  = "S2R_LOG_LEVEL"
	EnvLogFormat = "S2R_LOG_FORMAT"
	EnvLogSource = "S2R_LOG_SOURCE"
	EnvLogFile   = "S2R_LOG_FILE"
)

// ConfigPath returns the config file path: $S2R_CONFIG when set, else the per-user location.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p, nil
	}
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "svg2rects")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "svg2rects")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			base = filepath.Join(xdg, "svg2rects")
		} else {
			base = filepath.Join(os.Getenv("HOME"), ".config", "svg2rects")
		}
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the config file (if present), merges it onto the defaults and
// applies environment overrides. A missing file is not an error; a file that
// exists but is not valid YAML is.
func Load() (AppConfig, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, err
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
		mergeInto(&cfg, &fileCfg, data)
	case !errors.Is(err, os.ErrNotExist):
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	applyEnvOverrides(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Save writes cfg as YAML to the config path.
func Save(cfg AppConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate rejects values the converter cannot act on.
func (c AppConfig) Validate() error {
	switch c.Conversion.ColorMode {
	case "lax", "strict":
	default:
		return fmt.Errorf("conversion.color_mode: unknown mode %q (want lax or strict)", c.Conversion.ColorMode)
	}
	if c.Preview.Scale <= 0 {
		return fmt.Errorf("preview.scale: must be positive, got %v", c.Preview.Scale)
	}
	if len(c.Preview.LabelColor) != 6 {
		return fmt.Errorf("preview.label_color: want 6 hex digits, got %q", c.Preview.LabelColor)
	}
	if _, err := strconv.ParseUint(c.Preview.LabelColor, 16, 32); err != nil {
		return fmt.Errorf("preview.label_color: %w", err)
	}
	return nil
}

// mergeInto copies the fields set in the file onto dst. Booleans are only
// taken over when the raw document mentions them, otherwise an omitted
// atomic_write would silently switch off.
func mergeInto(dst *AppConfig, src *AppConfig, raw []byte) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	if v := strings.ToLower(strings.TrimSpace(src.Conversion.ColorMode)); v != "" {
		dst.Conversion.ColorMode = v
	}
	var probe struct {
		Conversion struct {
			AtomicWrite *bool `yaml:"atomic_write"`
		} `yaml:"conversion"`
	}
	if err := yaml.Unmarshal(raw, &probe); err == nil && probe.Conversion.AtomicWrite != nil {
		dst.Conversion.AtomicWrite = *probe.Conversion.AtomicWrite
	}
	if src.Preview.Scale != 0 {
		dst.Preview.Scale = src.Preview.Scale
	}
	if v := strings.TrimSpace(src.Preview.LabelColor); v != "" {
		dst.Preview.LabelColor = strings.ToLower(strings.TrimPrefix(v, "#"))
	}
	if v := strings.TrimSpace(src.Logging.Level); v != "" {
		dst.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(src.Logging.Format); v != "" {
		dst.Logging.Format = strings.ToLower(v)
	}
	dst.Logging.Source = src.Logging.Source
	if v := strings.TrimSpace(src.Logging.File); v != "" {
		dst.Logging.File = v
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvColorMode)); v != "" {
		cfg.Conversion.ColorMode = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvAtomicWrite)); v != "" {
		cfg.Conversion.AtomicWrite = parseBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvPreviewScale)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Preview.Scale = f
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = parseBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

func parseBool(v string) bool {
	lv := strings.ToLower(v)
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}
