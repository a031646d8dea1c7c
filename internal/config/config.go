// SPDX-License-Identifier: Apache-2.0

// Package config loads the service configuration from a YAML file, the
// environment and an optional .env file, and validates it against an
// embedded CUE schema.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"

	"github.com/talentsift/resume-extract/internal/fields"
	"github.com/talentsift/resume-extract/internal/lexicon"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "RESUME_EXTRACT_"

//go:embed schema.cue
var schemaCUE string

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Scoring groups the tunable scoring weights.
type Scoring struct {
	Name fields.NameWeights `yaml:"name" json:"name"`
}

// Config is the full service configuration.
type Config struct {
	MaxBatchSize    int     `yaml:"max_batch_size" json:"max_batch_size"`
	MaxFileSize     int64   `yaml:"max_file_size" json:"max_file_size"`
	DocumentTimeout string  `yaml:"document_timeout" json:"document_timeout"`
	Throttle        string  `yaml:"throttle" json:"throttle"`
	LogLevel        string  `yaml:"log_level" json:"log_level"`
	LogFormat       string  `yaml:"log_format" json:"log_format"`
	LexiconPath     string  `yaml:"lexicon_path" json:"lexicon_path"`
	HTTPAddr        string  `yaml:"http_addr" json:"http_addr"`
	Scoring         Scoring `yaml:"scoring" json:"scoring"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		MaxBatchSize:    100,
		MaxFileSize:     50 * 1024 * 1024,
		DocumentTimeout: "60s",
		Throttle:        "0s",
		LogLevel:        "info",
		LogFormat:       "text",
		HTTPAddr:        ":5000",
		Scoring:         Scoring{Name: fields.DefaultNameWeights()},
	}
}

// Load builds the configuration from the defaults, the YAML file at path
// (skipped when path is empty), and RESUME_EXTRACT_* environment variables,
// in that order. A .env file in the working directory is loaded first if
// present; it never overrides variables already set. A .env that exists but
// cannot be read or parsed is an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("decode config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(EnvPrefix + key); ok && v != "" {
			*dst = v
		}
	}
	integer := func(key string, set func(int64)) error {
		v, ok := lookup(EnvPrefix + key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return fmt.Errorf("%w: %s%s=%q is not an integer", ErrInvalid, EnvPrefix, key, v)
		}
		set(n)
		return nil
	}

	if err := integer("MAX_BATCH_SIZE", func(n int64) { c.MaxBatchSize = int(n) }); err != nil {
		return err
	}
	if err := integer("MAX_FILE_SIZE", func(n int64) { c.MaxFileSize = n }); err != nil {
		return err
	}
	str("DOCUMENT_TIMEOUT", &c.DocumentTimeout)
	str("THROTTLE", &c.Throttle)
	str("LOG_LEVEL", &c.LogLevel)
	str("LOG_FORMAT", &c.LogFormat)
	str("LEXICON_PATH", &c.LexiconPath)
	str("HTTP_ADDR", &c.HTTPAddr)
	return nil
}

// Validate checks the configuration against the embedded schema.
func (c *Config) Validate() error {
	cctx := cuecontext.New()
	schema := cctx.CompileString(schemaCUE)
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}

	v := cctx.Encode(c)
	if err := v.Err(); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))
	if err := def.Unify(v).Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	// The schema checks the shape; ParseDuration has the final word.
	for key, s := range map[string]string{"document_timeout": c.DocumentTimeout, "throttle": c.Throttle} {
		if _, err := time.ParseDuration(s); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalid, key, err)
		}
	}
	return nil
}

// Timeout returns the per-document timeout.
func (c *Config) Timeout() time.Duration {
	d, _ := time.ParseDuration(c.DocumentTimeout)
	return d
}

// ThrottleDelay returns the pause between batch documents.
func (c *Config) ThrottleDelay() time.Duration {
	d, _ := time.ParseDuration(c.Throttle)
	return d
}

// Lexicon returns the embedded lexicon, extended with LexiconPath when set.
func (c *Config) Lexicon() (*lexicon.Lexicon, error) {
	if c.LexiconPath == "" {
		return lexicon.Default(), nil
	}
	return lexicon.LoadFile(c.LexiconPath)
}

// NewLogger builds a logger writing to w at the configured level and format.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	var level slog.Level
	switch c.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
