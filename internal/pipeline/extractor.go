// SPDX-License-Identifier: Apache-2.0

// Package pipeline runs documents through conversion and field extraction
// and turns the outcome into one Result per document.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/talentsift/resume-extract/internal/candidate"
	"github.com/talentsift/resume-extract/internal/convert"
	"github.com/talentsift/resume-extract/internal/fields"
)

// Config configures an Extractor. Zero values are replaced by defaults.
type Config struct {
	Converter convert.Converter
	Engine    *fields.Engine

	// MaxBatchSize is the largest accepted batch (default: 100).
	MaxBatchSize int
	// DocumentTimeout bounds conversion and extraction of one document
	// (default: 60s).
	DocumentTimeout time.Duration
	// Throttle is the pause between documents of a batch (default: none).
	Throttle time.Duration

	Logger *slog.Logger
	Now    func() time.Time
	NewID  func() string
}

func (c *Config) defaults() {
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.Converter == nil {
		c.Converter = convert.New(convert.Config{Logger: c.Logger})
	}
	if c.Engine == nil {
		c.Engine = fields.NewEngine(fields.Config{Logger: c.Logger})
	}
	if c.MaxBatchSize <= 0 {
		c.MaxBatchSize = 100
	}
	if c.DocumentTimeout <= 0 {
		c.DocumentTimeout = 60 * time.Second
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	if c.NewID == nil {
		c.NewID = uuid.NewString
	}
}

// Extractor turns resume files into Results.
type Extractor struct {
	cfg    Config
	logger *slog.Logger
}

// New creates an Extractor.
func New(cfg Config) *Extractor {
	cfg.defaults()
	return &Extractor{cfg: cfg, logger: cfg.Logger}
}

// MaxBatchSize returns the configured batch cap.
func (x *Extractor) MaxBatchSize() int {
	return x.cfg.MaxBatchSize
}

// Convert runs only the conversion step under the document timeout.
func (x *Extractor) Convert(ctx context.Context, path string) (*convert.Output, error) {
	ctx, cancel := context.WithTimeout(ctx, x.cfg.DocumentTimeout)
	defer cancel()
	return x.convert(ctx, path)
}

// ExtractCandidate converts the file at path and extracts its fields.
// Every failure, including a stalled or panicking converter, yields a
// failed Result rather than an error.
func (x *Extractor) ExtractCandidate(ctx context.Context, path, fileName string) (res *Result) {
	res = x.newResult(fileName)
	defer x.recoverInto(res)

	ctx, cancel := context.WithTimeout(ctx, x.cfg.DocumentTimeout)
	defer cancel()

	out, err := x.convert(ctx, path)
	if err != nil {
		x.fail(res, err)
		return res
	}
	x.extract(ctx, res, out.Text, out.Lines)
	return res
}

// ExtractText extracts fields from already converted text. lines may be
// nil when no layout is known.
func (x *Extractor) ExtractText(ctx context.Context, text string, lines []convert.Line, fileName string) (res *Result) {
	res = x.newResult(fileName)
	defer x.recoverInto(res)

	ctx, cancel := context.WithTimeout(ctx, x.cfg.DocumentTimeout)
	defer cancel()

	x.extract(ctx, res, text, lines)
	return res
}

func (x *Extractor) newResult(fileName string) *Result {
	return &Result{
		ID:         x.cfg.NewID(),
		FileName:   fileName,
		UploadedAt: x.cfg.Now(),
		AllNames:   []string{},
		AllEmails:  []string{},
		AllPhones:  []string{},
	}
}

// convert runs the converter in its own goroutine so a converter that
// ignores ctx still cannot stall the caller past the deadline.
func (x *Extractor) convert(ctx context.Context, path string) (*convert.Output, error) {
	type converted struct {
		out *convert.Output
		err error
	}
	done := make(chan converted, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- converted{err: fmt.Errorf("converter panicked: %v", r)}
			}
		}()
		out, err := x.cfg.Converter.Convert(ctx, path)
		done <- converted{out: out, err: err}
	}()

	select {
	case c := <-done:
		return c.out, c.err
	case <-ctx.Done():
		return nil, x.deadlineError(ctx)
	}
}

func (x *Extractor) extract(ctx context.Context, res *Result, text string, lines []convert.Line) {
	doc := candidate.NewDocument(text, layoutLines(lines))
	ex := x.cfg.Engine.Extract(ctx, doc)
	if ctx.Err() != nil {
		x.fail(res, x.deadlineError(ctx))
		return
	}

	res.RawText = text
	res.AllNames = nonNil(ex.Name.All)
	res.AllEmails = nonNil(ex.Email.All)
	res.AllPhones = nonNil(ex.Phone.All)
	res.Diagnostics = ex.Diagnostics()

	var missing []string
	if ex.Name.Valid {
		res.FullName = ex.Name.Value
	} else {
		missing = append(missing, LabelName)
	}
	if ex.Email.Valid {
		res.Email = ex.Email.Value
	} else {
		missing = append(missing, LabelEmail)
	}
	if ex.Phone.Valid {
		res.ContactNumber = ex.Phone.Value
	} else {
		missing = append(missing, LabelPhone)
	}

	if len(missing) > 0 {
		res.Status = StatusFailed
		res.FailureReason = MissingFieldsReason(missing...)
		x.logger.Info("pipeline.document.failed",
			"file", res.FileName,
			"id", res.ID,
			"reason", res.FailureReason,
		)
		return
	}
	res.Status = StatusSuccess
	x.logger.Info("pipeline.document.ok", "file", res.FileName, "id", res.ID)
}

func (x *Extractor) fail(res *Result, err error) {
	res.Status = StatusFailed
	res.FailureReason = parseErrorReason(err)
	x.logger.Warn("pipeline.document.failed",
		"file", res.FileName,
		"id", res.ID,
		"err", err,
	)
}

func (x *Extractor) recoverInto(res *Result) {
	if r := recover(); r != nil {
		*res = Result{
			ID:         res.ID,
			FileName:   res.FileName,
			UploadedAt: res.UploadedAt,
			AllNames:   []string{},
			AllEmails:  []string{},
			AllPhones:  []string{},
		}
		x.fail(res, fmt.Errorf("extraction panicked: %v", r))
	}
}

func (x *Extractor) deadlineError(ctx context.Context) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("document timed out after %s", x.cfg.DocumentTimeout)
	}
	return ctx.Err()
}

func layoutLines(lines []convert.Line) []candidate.LayoutLine {
	if len(lines) == 0 {
		return nil
	}
	out := make([]candidate.LayoutLine, len(lines))
	for i, l := range lines {
		out[i] = candidate.LayoutLine{Number: l.Number, Text: l.Text, FontSize: l.FontSize, Position: l.Position}
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
