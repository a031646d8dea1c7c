// SPDX-License-Identifier: Apache-2.0

// Package convert turns resume files into plain text plus optional layout
// lines.
//
// Supported formats:
//   - .pdf  (ledongthuc/pdf, per-glyph font sizes)
//   - .docx (archive/zip, word/document.xml run sizes)
//   - .doc  (OLE compound file, WordDocument piece table)
//
// Every converter returns the same Output shape; format quirks stay inside
// the converter.
package convert

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Format identifies a document type.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOC  Format = "doc"
	FormatDOCX Format = "docx"
)

// Position classes of a layout line.
const (
	PositionTop   = "top"
	PositionUpper = "upper"
	PositionBody  = "body"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrFileTooLarge      = errors.New("file too large")
	ErrNoText            = errors.New("no text content found")
)

// Line is the formatting record of one rendered line.
type Line struct {
	Number   int     `json:"number"`
	Text     string  `json:"text"`
	FontSize float64 `json:"fontSize,omitempty"`
	Position string  `json:"position"`
}

// Output is the converted form of a document. Lines is empty when the
// format carries no font information.
type Output struct {
	Format Format `json:"format"`
	Text   string `json:"text"`
	Lines  []Line `json:"lines,omitempty"`
}

// Converter converts the file at path.
type Converter interface {
	Convert(ctx context.Context, path string) (*Output, error)
}

// ConversionError reports a document that could not be read.
type ConversionError struct {
	Path   string
	Format Format
	Err    error
}

func (e *ConversionError) Error() string {
	if e.Format == "" {
		return fmt.Sprintf("convert %s: %v", filepath.Base(e.Path), e.Err)
	}
	return fmt.Sprintf("convert %s (%s): %v", filepath.Base(e.Path), e.Format, e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }

// Config configures a Registry.
type Config struct {
	// MaxFileSize is the largest file accepted (default: 50 MiB).
	MaxFileSize int64 `json:"max_file_size" yaml:"max_file_size"`

	Logger *slog.Logger `json:"-" yaml:"-"`
}

func (c *Config) defaults() {
	if c.MaxFileSize <= 0 {
		c.MaxFileSize = 50 * 1024 * 1024
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// extractor reads raw lines from one format.
type extractor func(ctx context.Context, path string) ([]Line, error)

// Registry dispatches conversion by file extension.
type Registry struct {
	cfg        Config
	logger     *slog.Logger
	extractors map[Format]extractor
}

// New creates a Registry for all supported formats.
func New(cfg Config) *Registry {
	cfg.defaults()
	return &Registry{
		cfg:    cfg,
		logger: cfg.Logger,
		extractors: map[Format]extractor{
			FormatPDF:  extractPDF,
			FormatDOCX: extractDOCX,
			FormatDOC:  extractDOC,
		},
	}
}

// Detect returns the document format based on the file extension.
func Detect(name string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".pdf":
		return FormatPDF, nil
	case ".doc":
		return FormatDOC, nil
	case ".docx":
		return FormatDOCX, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// Supported reports whether name has a convertible extension.
func Supported(name string) bool {
	_, err := Detect(name)
	return err == nil
}

// SupportedFormats returns all supported format extensions.
func SupportedFormats() []string {
	return []string{string(FormatPDF), string(FormatDOC), string(FormatDOCX)}
}

// Convert reads the document at path. Failures are returned as
// *ConversionError.
func (r *Registry) Convert(ctx context.Context, path string) (*Output, error) {
	format, err := Detect(path)
	if err != nil {
		return nil, &ConversionError{Path: path, Err: err}
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, &ConversionError{Path: path, Format: format, Err: err}
	}
	if info.Size() > r.cfg.MaxFileSize {
		return nil, &ConversionError{
			Path:   path,
			Format: format,
			Err:    fmt.Errorf("%w: %d bytes (max %d)", ErrFileTooLarge, info.Size(), r.cfg.MaxFileSize),
		}
	}

	r.logger.Debug("convert.start", "path", path, "format", format)

	raw, err := r.extractors[format](ctx, path)
	if err != nil {
		return nil, &ConversionError{Path: path, Format: format, Err: err}
	}

	out := assemble(format, raw)
	if strings.TrimSpace(out.Text) == "" {
		return nil, &ConversionError{Path: path, Format: format, Err: ErrNoText}
	}
	r.logger.Debug("convert.done", "path", path, "format", format, "lines", len(out.Lines))
	return out, nil
}

// assemble normalizes raw lines, drops blank ones, renumbers the rest and
// classifies their position. Layout lines are kept only when at least one
// line carries a font size.
func assemble(format Format, raw []Line) *Output {
	lines := make([]Line, 0, len(raw))
	texts := make([]string, 0, len(raw))
	hasFont := false

	for _, l := range raw {
		text := NormalizeLine(l.Text)
		if text == "" {
			continue
		}
		n := len(lines) + 1
		lines = append(lines, Line{Number: n, Text: text, FontSize: l.FontSize, Position: positionOf(n)})
		texts = append(texts, text)
		if l.FontSize > 0 {
			hasFont = true
		}
	}

	out := &Output{Format: format, Text: strings.Join(texts, "\n")}
	if hasFont {
		out.Lines = lines
	}
	return out
}

func positionOf(n int) string {
	switch {
	case n <= 3:
		return PositionTop
	case n <= 10:
		return PositionUpper
	default:
		return PositionBody
	}
}
