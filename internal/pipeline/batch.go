// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/talentsift/resume-extract/internal/convert"
)

var (
	ErrEmptyBatch    = errors.New("no valid resume files found")
	ErrBatchTooLarge = errors.New("too many files")
)

// Input is one document of a batch.
type Input struct {
	Path     string `json:"path"`
	FileName string `json:"fileName"`
}

// BatchReport summarizes a processed batch.
type BatchReport struct {
	TotalUploaded      int       `json:"totalUploaded"`
	TotalProcessed     int       `json:"totalProcessed"`
	SuccessfullyParsed int       `json:"successfullyParsed"`
	FailedToParse      int       `json:"failedToParse"`
	DuplicatesRemoved  int       `json:"duplicatesRemoved"`
	Skipped            []string  `json:"skipped,omitempty"`
	Candidates         []*Result `json:"candidates"`
}

// ExtractBatch extracts every supported document in inputs, one at a time,
// and deduplicates the results by email. Files with unsupported extensions
// are skipped before anything else. An empty or oversized batch is rejected
// before any document is read; no other error is returned.
func (x *Extractor) ExtractBatch(ctx context.Context, inputs []Input) (*BatchReport, error) {
	var accepted []Input
	var skipped []string
	for _, in := range inputs {
		if convert.Supported(in.FileName) {
			accepted = append(accepted, in)
		} else {
			skipped = append(skipped, in.FileName)
		}
	}

	if len(accepted) == 0 {
		return nil, fmt.Errorf("%w (supported formats: %v)", ErrEmptyBatch, convert.SupportedFormats())
	}
	if len(accepted) > x.cfg.MaxBatchSize {
		return nil, fmt.Errorf("%w: %d files (max %d)", ErrBatchTooLarge, len(accepted), x.cfg.MaxBatchSize)
	}

	x.logger.Info("pipeline.batch.start", "files", len(accepted), "skipped", len(skipped))

	results := make([]*Result, 0, len(accepted))
	for i, in := range accepted {
		if i > 0 {
			pause(ctx, x.cfg.Throttle)
		}
		results = append(results, x.ExtractCandidate(ctx, in.Path, in.FileName))
	}

	unique := Deduplicate(results)
	report := &BatchReport{
		TotalUploaded:     len(accepted),
		TotalProcessed:    len(unique),
		DuplicatesRemoved: len(results) - len(unique),
		Skipped:           skipped,
		Candidates:        unique,
	}
	for _, r := range unique {
		if r.Succeeded() {
			report.SuccessfullyParsed++
		} else {
			report.FailedToParse++
		}
	}

	x.logger.Info("pipeline.batch.done",
		"processed", report.TotalProcessed,
		"success", report.SuccessfullyParsed,
		"failed", report.FailedToParse,
		"duplicates", report.DuplicatesRemoved,
	)
	return report, nil
}

// Deduplicate keeps, for every email of a successful result, only the
// result with the latest upload time; on equal times the earlier one stays.
// All other results are kept. Output follows the first appearance of each
// key.
func Deduplicate(results []*Result) []*Result {
	index := make(map[string]int, len(results))
	out := make([]*Result, 0, len(results))
	for _, r := range results {
		key := "id:" + r.ID
		if r.Succeeded() && r.Email != "" {
			key = "email:" + r.Email
		}
		if i, ok := index[key]; ok {
			if r.UploadedAt.After(out[i].UploadedAt) {
				out[i] = r
			}
			continue
		}
		index[key] = len(out)
		out = append(out, r)
	}
	return out
}

func pause(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
