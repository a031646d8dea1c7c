// SPDX-License-Identifier: Apache-2.0

package server

import (
	"bytes"
	"errors"
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/talentsift/resume-extract/internal/convert"
	"github.com/talentsift/resume-extract/internal/export"
	"github.com/talentsift/resume-extract/internal/fields"
	"github.com/talentsift/resume-extract/internal/pipeline"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func supportedList() string {
	formats := convert.SupportedFormats()
	for i, f := range formats {
		formats[i] = "." + f
	}
	return strings.Join(formats, ", ")
}

func (s *Server) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "healthy", "message": "resume extraction service is running"})
}

// uploadInfo describes a converted document.
type uploadInfo struct {
	FileName string `json:"filename"`
	Format   string `json:"format"`
	Lines    int    `json:"lines"`
}

// upload converts a single document and returns its text.
func (s *Server) upload(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil || fh == nil {
		return respondError(c, fiber.StatusBadRequest, "No file uploaded")
	}
	if fh.Filename == "" {
		return respondError(c, fiber.StatusBadRequest, "No file selected")
	}
	if !convert.Supported(fh.Filename) {
		return respondError(c, fiber.StatusBadRequest, "Unsupported file type. Supported formats: "+supportedList())
	}

	dir, err := s.workDir()
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, filepath.Base(fh.Filename))
	if err := c.SaveFile(fh, path); err != nil {
		return fmt.Errorf("save upload: %w", err)
	}

	out, err := s.cfg.Extractor.Convert(c.UserContext(), path)
	if err != nil {
		s.logger.Warn("http.upload.failed", "file", fh.Filename, "err", err)
		return respondError(c, fiber.StatusInternalServerError, "Error parsing document: "+err.Error())
	}
	return c.JSON(fiber.Map{
		"text": out.Text,
		"info": uploadInfo{FileName: fh.Filename, Format: string(out.Format), Lines: len(out.Lines)},
	})
}

// batchSummary repeats the report counters under the names the upload
// response has always carried.
type batchSummary struct {
	TotalResumesUploaded int `json:"totalResumesUploaded"`
	SuccessfullyParsed   int `json:"successfullyParsed"`
	FailedToParse        int `json:"failedToParse"`
	DuplicatesRemoved    int `json:"duplicatesRemoved"`
}

type batchResponse struct {
	*pipeline.BatchReport
	Summary batchSummary `json:"summary"`
}

// uploadResumes extracts every resume of a multipart upload. Zip archives
// are expanded and only their supported entries are kept.
func (s *Server) uploadResumes(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "No files uploaded")
	}
	files := form.File["files"]
	if len(files) == 0 {
		return respondError(c, fiber.StatusBadRequest, "No files selected")
	}

	dir, err := s.workDir()
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)

	var inputs []pipeline.Input
	for i, fh := range files {
		name := filepath.Base(fh.Filename)
		if strings.EqualFold(filepath.Ext(name), ".zip") {
			expanded, err := s.expandZip(fh, dir, i)
			if err != nil {
				return respondError(c, fiber.StatusBadRequest, fmt.Sprintf("Invalid zip archive %s: %v", name, err))
			}
			inputs = append(inputs, expanded...)
			continue
		}
		path := filepath.Join(dir, fmt.Sprintf("%03d-%s", i, name))
		if err := c.SaveFile(fh, path); err != nil {
			return fmt.Errorf("save upload: %w", err)
		}
		inputs = append(inputs, pipeline.Input{Path: path, FileName: name})
	}

	report, err := s.cfg.Extractor.ExtractBatch(c.UserContext(), inputs)
	switch {
	case errors.Is(err, pipeline.ErrBatchTooLarge):
		return respondError(c, fiber.StatusBadRequest,
			fmt.Sprintf("Too many files. Maximum %d resumes per upload.", s.cfg.Extractor.MaxBatchSize()))
	case errors.Is(err, pipeline.ErrEmptyBatch):
		return respondError(c, fiber.StatusBadRequest, "No valid resume files found. Supported formats: "+supportedList())
	case err != nil:
		return err
	}

	return c.JSON(batchResponse{
		BatchReport: report,
		Summary: batchSummary{
			TotalResumesUploaded: report.TotalUploaded,
			SuccessfullyParsed:   report.SuccessfullyParsed,
			FailedToParse:        report.FailedToParse,
			DuplicatesRemoved:    report.DuplicatesRemoved,
		},
	})
}

func (s *Server) expandZip(fh *multipart.FileHeader, dir string, n int) ([]pipeline.Input, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sub := filepath.Join(dir, fmt.Sprintf("%03d-zip", n))
	if err := os.Mkdir(sub, 0o700); err != nil {
		return nil, err
	}
	return pipeline.ExpandZip(f, fh.Size, sub, s.cfg.MaxFileSize)
}

// exportRequest carries results previously returned by the upload routes.
type exportRequest struct {
	Candidates []*pipeline.Result `json:"candidates"`
}

func (s *Server) readCandidates(c *fiber.Ctx) ([]*pipeline.Result, bool) {
	var req exportRequest
	if err := c.BodyParser(&req); err != nil || len(req.Candidates) == 0 {
		return nil, false
	}
	return req.Candidates, true
}

func (s *Server) exportCSV(c *fiber.Ctx) error {
	candidates, ok := s.readCandidates(c)
	if !ok {
		return respondError(c, fiber.StatusBadRequest, "Invalid candidates data")
	}

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, candidates); err != nil {
		return fmt.Errorf("generate csv report: %w", err)
	}
	c.Attachment(export.ReportFileName)
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	return c.Send(buf.Bytes())
}

func (s *Server) exportXLSX(c *fiber.Ctx) error {
	candidates, ok := s.readCandidates(c)
	if !ok {
		return respondError(c, fiber.StatusBadRequest, "Invalid candidates data")
	}

	data, err := export.XLSX(candidates)
	if err != nil {
		return fmt.Errorf("generate xlsx report: %w", err)
	}
	c.Attachment(strings.TrimSuffix(export.ReportFileName, ".csv") + ".xlsx")
	c.Set(fiber.HeaderContentType, xlsxMIME)
	return c.Send(data)
}

// candidateUpdate is a manual correction of the three contact fields.
type candidateUpdate struct {
	FullName      string `json:"fullName"`
	Email         string `json:"email"`
	ContactNumber string `json:"contactNumber"`
}

type fieldVerdicts struct {
	FullName      bool `json:"fullName"`
	Email         bool `json:"email"`
	ContactNumber bool `json:"contactNumber"`
}

// updateCandidate echoes an edited candidate with the validator verdict of
// each field. Nothing is stored.
func (s *Server) updateCandidate(c *fiber.Ctx) error {
	var upd candidateUpdate
	if err := c.BodyParser(&upd); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid candidate data")
	}

	return c.JSON(fiber.Map{
		"id":            c.Params("id"),
		"fullName":      upd.FullName,
		"email":         upd.Email,
		"contactNumber": upd.ContactNumber,
		"status":        "updated",
		"valid": fieldVerdicts{
			FullName:      fields.ValidName(upd.FullName),
			Email:         fields.ValidEmail(s.cfg.Lexicon, upd.Email),
			ContactNumber: fields.ValidPhone(upd.ContactNumber),
		},
	})
}

func (s *Server) workDir() (string, error) {
	dir, err := os.MkdirTemp(s.cfg.TempDir, "resume-upload-*")
	if err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	return dir, nil
}
