// SPDX-License-Identifier: Apache-2.0

// Package fields extracts the full name, email address and phone number of a
// resume. Each field runs its own plan of candidate strategies, filters the
// candidates for plausibility, selects one by score and validates it.
package fields

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/talentsift/resume-extract/internal/candidate"
	"github.com/talentsift/resume-extract/internal/lexicon"
	"github.com/talentsift/resume-extract/internal/nlp"
)

// Config configures an Engine. Zero values are replaced by defaults.
type Config struct {
	Lexicon *lexicon.Lexicon
	Tagger  nlp.Tagger
	Weights NameWeights
	Logger  *slog.Logger
}

func (c *Config) defaults() {
	if c.Lexicon == nil {
		c.Lexicon = lexicon.Default()
	}
	if c.Tagger == nil {
		c.Tagger = nlp.NewProseTagger()
	}
	if c.Weights == (NameWeights{}) {
		c.Weights = DefaultNameWeights()
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Outcome is the result of one field flow.
type Outcome struct {
	Value       string                 `json:"value"`
	Source      string                 `json:"source,omitempty"`
	Score       float64                `json:"score"`
	Valid       bool                   `json:"valid"`
	All         []string               `json:"all"`
	Diagnostics []candidate.Diagnostic `json:"diagnostics,omitempty"`
}

// Extraction holds the three field outcomes of one document.
type Extraction struct {
	Name  Outcome `json:"name"`
	Email Outcome `json:"email"`
	Phone Outcome `json:"phone"`
}

// Diagnostics returns the strategy failures of all three fields.
func (e Extraction) Diagnostics() []candidate.Diagnostic {
	var out []candidate.Diagnostic
	out = append(out, e.Name.Diagnostics...)
	out = append(out, e.Email.Diagnostics...)
	out = append(out, e.Phone.Diagnostics...)
	return out
}

// Engine extracts the three fields from converted documents. It is safe for
// concurrent use.
type Engine struct {
	lex     *lexicon.Lexicon
	weights NameWeights
	logger  *slog.Logger

	phone *candidate.Plan
	email *candidate.Plan
	name  *candidate.Plan
}

// NewEngine creates an Engine.
func NewEngine(cfg Config) *Engine {
	cfg.defaults()
	lex := cfg.Lexicon

	return &Engine{
		lex:     lex,
		weights: cfg.Weights,
		logger:  cfg.Logger,
		phone: candidate.NewPlan(candidate.FieldPhone, PlausiblePhone, cfg.Logger,
			candidate.Step{Strategy: phonePatterns{}},
			candidate.Step{Strategy: phoneKeywords{}, Fallback: true},
		),
		email: candidate.NewPlan(candidate.FieldEmail,
			func(v string) bool { return PlausibleEmail(lex, v) }, cfg.Logger,
			candidate.Step{Strategy: emailPattern{}},
			candidate.Step{Strategy: emailObfuscated{}, Fallback: true},
		),
		name: candidate.NewPlan(candidate.FieldName,
			func(v string) bool { return PlausibleName(lex, v) }, cfg.Logger,
			candidate.Step{Strategy: nameNER{lex: lex, tagger: cfg.Tagger}},
			candidate.Step{Strategy: namePosition{lex: lex}},
			candidate.Step{Strategy: newNameKeywords(lex)},
		),
	}
}

// Lexicon returns the lexicon the engine filters with.
func (e *Engine) Lexicon() *lexicon.Lexicon {
	return e.lex
}

// Extract runs the name, email and phone flows concurrently. The flows share
// nothing but the read-only lexicon.
func (e *Engine) Extract(ctx context.Context, doc *candidate.Document) Extraction {
	var ex Extraction
	var g errgroup.Group
	g.Go(func() error { e.guard(ctx, doc, candidate.FieldName, &ex.Name, e.ExtractName); return nil })
	g.Go(func() error { e.guard(ctx, doc, candidate.FieldEmail, &ex.Email, e.ExtractEmail); return nil })
	g.Go(func() error { e.guard(ctx, doc, candidate.FieldPhone, &ex.Phone, e.ExtractPhone); return nil })
	_ = g.Wait()
	return ex
}

// guard runs one field flow and stores its outcome. A panicking flow leaves
// an empty, invalid outcome carrying the panic as a diagnostic.
func (e *Engine) guard(ctx context.Context, doc *candidate.Document, field candidate.Field, dst *Outcome, flow func(context.Context, *candidate.Document) Outcome) {
	defer func() {
		if r := recover(); r != nil {
			*dst = Outcome{
				All: []string{},
				Diagnostics: []candidate.Diagnostic{{
					Field:    field,
					Strategy: "fields." + string(field),
					Message:  fmt.Sprintf("field flow panicked: %v", r),
				}},
			}
			e.logger.Error("fields.flow.panicked", "field", field, "panic", r)
		}
	}()
	*dst = flow(ctx, doc)
}

// ExtractPhone runs the phone flow.
func (e *Engine) ExtractPhone(ctx context.Context, doc *candidate.Document) Outcome {
	pool := e.phone.Run(ctx, doc)
	ranked := RankPhones(pool.Accepted)
	out := Outcome{All: candidate.Values(ranked), Diagnostics: pool.Diagnostics}

	if best, score, ok := SelectPhone(ranked); ok {
		out.Value, out.Source, out.Score = best.Value, best.Source, float64(score)
		out.Valid = ValidPhone(best.Value)
	}
	e.logOutcome(candidate.FieldPhone, pool, out)
	return out
}

// ExtractEmail runs the email flow.
func (e *Engine) ExtractEmail(ctx context.Context, doc *candidate.Document) Outcome {
	pool := e.email.Run(ctx, doc)
	unique := candidate.Unique(pool.Accepted)
	out := Outcome{All: candidate.Values(unique), Diagnostics: pool.Diagnostics}

	if best, score, ok := SelectEmail(e.lex, unique); ok {
		out.Value, out.Source, out.Score = best.Value, best.Source, float64(score)
		out.Valid = ValidEmail(e.lex, best.Value)
	}
	e.logOutcome(candidate.FieldEmail, pool, out)
	return out
}

// ExtractName runs the name flow. Documents with layout lines are scored
// with the layout-aware weights; plain text takes the first candidate.
func (e *Engine) ExtractName(ctx context.Context, doc *candidate.Document) Outcome {
	pool := e.name.Run(ctx, doc)
	out := Outcome{
		All:         candidate.Values(candidate.Unique(pool.Accepted)),
		Diagnostics: pool.Diagnostics,
	}

	if doc.HasLayout() {
		if best, _, ok := SelectNameWeighted(e.lex, doc, pool.Accepted, e.weights); ok {
			out.Value, out.Source, out.Score = best.Value, best.Source, best.Score
		}
	} else if best, ok := SelectNamePlain(e.lex, pool); ok {
		out.Value, out.Source = best.Value, best.Source
	}
	if out.Value != "" {
		out.Valid = ValidName(out.Value)
	}
	e.logOutcome(candidate.FieldName, pool, out)
	return out
}

func (e *Engine) logOutcome(field candidate.Field, pool candidate.Pool, out Outcome) {
	e.logger.Debug("fields.selected",
		"field", field,
		"raw", len(pool.Raw),
		"accepted", len(pool.Accepted),
		"value", out.Value,
		"source", out.Source,
		"valid", out.Valid,
	)
}
