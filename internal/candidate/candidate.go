// SPDX-License-Identifier: Apache-2.0

// Package candidate defines the raw material of field extraction: the
// document being read, the strategies that propose values from it, and the
// pool of proposals each field collects.
package candidate

import (
	"context"
	"strings"
)

// Field identifies one of the structured values extracted from a resume.
type Field string

const (
	FieldName  Field = "name"
	FieldEmail Field = "email"
	FieldPhone Field = "phone"
)

// LayoutLine is the formatting record of one rendered line.
type LayoutLine struct {
	Number   int     // 1-based line number
	Text     string
	FontSize float64 // 0 when unknown
	Position string  // top, upper or body
}

// Document is the converted text of a resume plus optional layout metadata.
type Document struct {
	Text   string
	Layout []LayoutLine

	lines []string
}

// NewDocument wraps converted text and its layout lines, if any.
func NewDocument(text string, layout []LayoutLine) *Document {
	return &Document{
		Text:   text,
		Layout: layout,
		lines:  strings.Split(text, "\n"),
	}
}

// Lines returns the text split on newlines. The slice must not be modified.
func (d *Document) Lines() []string {
	if d.lines == nil {
		return strings.Split(d.Text, "\n")
	}
	return d.lines
}

// HasLayout reports whether formatting metadata is available.
func (d *Document) HasLayout() bool {
	return len(d.Layout) > 0
}

// Candidate is an unvalidated value proposed by a strategy.
type Candidate struct {
	Value  string `json:"value"`
	Source string `json:"source"`
	Order  int    `json:"order"`
}

// Diagnostic records a strategy that failed while generating candidates.
type Diagnostic struct {
	Field    Field  `json:"field"`
	Strategy string `json:"strategy"`
	Message  string `json:"message"`
}

// Strategy proposes raw candidate values for one field.
type Strategy interface {
	Name() string
	Generate(ctx context.Context, doc *Document) ([]string, error)
}

// StrategyFunc adapts a function to the Strategy interface.
type StrategyFunc struct {
	ID string
	Fn func(ctx context.Context, doc *Document) ([]string, error)
}

func (s StrategyFunc) Name() string { return s.ID }

func (s StrategyFunc) Generate(ctx context.Context, doc *Document) ([]string, error) {
	return s.Fn(ctx, doc)
}

// Values returns the candidate values in order.
func Values(cs []Candidate) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Value
	}
	return out
}

// Unique returns cs without later repeats of the same value, keeping order.
func Unique(cs []Candidate) []Candidate {
	seen := make(map[string]struct{}, len(cs))
	out := make([]Candidate, 0, len(cs))
	for _, c := range cs {
		if _, ok := seen[c.Value]; ok {
			continue
		}
		seen[c.Value] = struct{}{}
		out = append(out, c)
	}
	return out
}
