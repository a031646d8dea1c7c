// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"strings"
	"time"

	"github.com/talentsift/resume-extract/internal/candidate"
)

// Status is the parse verdict of one document.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Labels used in the failure reason, in reporting order.
const (
	LabelName  = "Full Name"
	LabelEmail = "Valid Email"
	LabelPhone = "Valid Contact Number"
)

const (
	missingFieldsPrefix = "Missing or invalid mandatory fields: "
	parseErrorPrefix    = "Parse error: "
)

// Result is the extraction outcome of one document. It is created once and
// never modified after it is returned.
type Result struct {
	ID            string                 `json:"id"`
	FileName      string                 `json:"fileName"`
	UploadedAt    time.Time              `json:"uploadTimestamp"`
	Status        Status                 `json:"parseStatus"`
	FailureReason string                 `json:"failureReason,omitempty"`
	FullName      string                 `json:"fullName"`
	Email         string                 `json:"email"`
	ContactNumber string                 `json:"contactNumber"`
	AllNames      []string               `json:"allNames"`
	AllEmails     []string               `json:"allEmails"`
	AllPhones     []string               `json:"allPhones"`
	Diagnostics   []candidate.Diagnostic `json:"diagnostics,omitempty"`
	RawText       string                 `json:"rawText,omitempty"`
}

// Succeeded reports whether all three fields were extracted and valid.
func (r *Result) Succeeded() bool {
	return r.Status == StatusSuccess
}

// MissingFieldsReason formats the failure reason for the given field labels.
func MissingFieldsReason(labels ...string) string {
	return missingFieldsPrefix + strings.Join(labels, ", ")
}

func parseErrorReason(err error) string {
	return parseErrorPrefix + err.Error()
}
