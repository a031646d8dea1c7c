// SPDX-License-Identifier: Apache-2.0

// Package export renders extraction results as CSV or XLSX reports.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/talentsift/resume-extract/internal/pipeline"
)

// SheetName is the worksheet holding the report in XLSX exports.
const SheetName = "Candidates"

// ReportFileName is the suggested download name of a CSV report.
const ReportFileName = "resume_parsing_report.csv"

// Headers is the column set of every report, in order.
var Headers = []string{
	"File Name",
	"Full Name",
	"Email",
	"Contact Number",
	"All Names",
	"All Emails",
	"All Phones",
	"Parse Status",
	"Failure Reason",
	"Upload Timestamp",
}

// Row flattens a result into report columns.
func Row(r *pipeline.Result) []string {
	ts := ""
	if !r.UploadedAt.IsZero() {
		ts = r.UploadedAt.UTC().Format(time.RFC3339)
	}
	return []string{
		r.FileName,
		r.FullName,
		r.Email,
		r.ContactNumber,
		strings.Join(r.AllNames, ", "),
		strings.Join(r.AllEmails, ", "),
		strings.Join(r.AllPhones, ", "),
		string(r.Status),
		r.FailureReason,
		ts,
	}
}

// WriteCSV writes a header row followed by one row per result.
func WriteCSV(w io.Writer, results []*pipeline.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Headers); err != nil {
		return fmt.Errorf("csv header: %w", err)
	}
	for _, r := range results {
		if err := cw.Write(Row(r)); err != nil {
			return fmt.Errorf("csv row %s: %w", r.FileName, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("csv flush: %w", err)
	}
	return nil
}

// XLSX returns a workbook with the report on a single sheet.
func XLSX(results []*pipeline.Result) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	// Rename the default sheet so the workbook carries only the report.
	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, fmt.Errorf("xlsx sheet: %w", err)
	}

	for i, h := range Headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(SheetName, cell, h); err != nil {
			return nil, fmt.Errorf("xlsx header: %w", err)
		}
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		last, _ := excelize.CoordinatesToCellName(len(Headers), 1)
		_ = f.SetCellStyle(SheetName, "A1", last, style)
	}

	for i, r := range results {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := Row(r)
		values := make([]any, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return nil, fmt.Errorf("xlsx row %s: %w", r.FileName, err)
		}
	}

	_ = f.SetColWidth(SheetName, "A", "A", 28) // file
	_ = f.SetColWidth(SheetName, "B", "D", 24)
	_ = f.SetColWidth(SheetName, "E", "G", 40) // candidate lists
	_ = f.SetColWidth(SheetName, "H", "H", 12)
	_ = f.SetColWidth(SheetName, "I", "I", 60)
	_ = f.SetColWidth(SheetName, "J", "J", 22)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}
