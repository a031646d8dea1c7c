// SPDX-License-Identifier: Apache-2.0

package candidate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Step is one strategy in a Plan.
type Step struct {
	Strategy Strategy
	// Fallback steps run only when no earlier step produced an accepted
	// candidate.
	Fallback bool
}

// Plan runs an ordered list of strategies for one field and pools their
// output. Generation order is preserved and doubles as priority.
type Plan struct {
	field  Field
	steps  []Step
	accept func(string) bool
	logger *slog.Logger
}

// NewPlan creates a Plan for field. accept is the field's plausibility
// filter; nil accepts every value.
func NewPlan(field Field, accept func(string) bool, logger *slog.Logger, steps ...Step) *Plan {
	if logger == nil {
		logger = slog.Default()
	}
	return &Plan{field: field, steps: steps, accept: accept, logger: logger}
}

// Pool is the output of a Plan run.
type Pool struct {
	Field       Field
	Raw         []Candidate
	Accepted    []Candidate
	Diagnostics []Diagnostic
}

// Run executes the plan against doc. A strategy that fails or panics
// contributes nothing and is recorded as a Diagnostic.
func (p *Plan) Run(ctx context.Context, doc *Document) Pool {
	pool := Pool{Field: p.field}
	order := 0

	for _, step := range p.steps {
		if step.Fallback && len(pool.Accepted) > 0 {
			continue
		}
		if err := ctx.Err(); err != nil {
			pool.Diagnostics = append(pool.Diagnostics, p.diagnostic(step.Strategy, err))
			break
		}

		values, err := p.generate(ctx, step.Strategy, doc)
		if err != nil {
			pool.Diagnostics = append(pool.Diagnostics, p.diagnostic(step.Strategy, err))
			p.logger.Debug("candidate.strategy.failed",
				"field", p.field,
				"strategy", step.Strategy.Name(),
				"err", err,
			)
			continue
		}

		for _, v := range values {
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			c := Candidate{Value: v, Source: step.Strategy.Name(), Order: order}
			order++
			pool.Raw = append(pool.Raw, c)
			if p.accept == nil || p.accept(v) {
				pool.Accepted = append(pool.Accepted, c)
			}
		}
	}
	return pool
}

func (p *Plan) generate(ctx context.Context, s Strategy, doc *Document) (values []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			values = nil
			err = fmt.Errorf("strategy panicked: %v", r)
		}
	}()
	return s.Generate(ctx, doc)
}

func (p *Plan) diagnostic(s Strategy, err error) Diagnostic {
	return Diagnostic{Field: p.field, Strategy: s.Name(), Message: err.Error()}
}

// Field returns the field this plan extracts.
func (p *Plan) Field() Field {
	return p.field
}

// Strategies returns the names of the plan's strategies in run order.
func (p *Plan) Strategies() []string {
	names := make([]string, len(p.steps))
	for i, s := range p.steps {
		names[i] = s.Strategy.Name()
	}
	return names
}
