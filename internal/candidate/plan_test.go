// SPDX-License-Identifier: Apache-2.0

package candidate_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentsift/resume-extract/internal/candidate"
)

func fixed(name string, values ...string) candidate.Strategy {
	return candidate.StrategyFunc{
		ID: name,
		Fn: func(context.Context, *candidate.Document) ([]string, error) { return values, nil },
	}
}

func failing(name string, err error) candidate.Strategy {
	return candidate.StrategyFunc{
		ID: name,
		Fn: func(context.Context, *candidate.Document) ([]string, error) { return nil, err },
	}
}

func longerThan3(v string) bool { return len(v) > 3 }

// ---------------------------------------------------------------------------
// Plan
// ---------------------------------------------------------------------------

func TestPlan_Run_PreservesGenerationOrderAndProvenance(t *testing.T) {
	plan := candidate.NewPlan(candidate.FieldName, nil, nil,
		candidate.Step{Strategy: fixed("first", "Alpha Beta", "Gamma Delta")},
		candidate.Step{Strategy: fixed("second", "Epsilon Zeta")},
	)

	pool := plan.Run(context.Background(), candidate.NewDocument("", nil))

	require.Len(t, pool.Raw, 3)
	assert.Equal(t, []string{"Alpha Beta", "Gamma Delta", "Epsilon Zeta"}, candidate.Values(pool.Raw))
	assert.Equal(t, "first", pool.Raw[0].Source)
	assert.Equal(t, "second", pool.Raw[2].Source)
	assert.Equal(t, 2, pool.Raw[2].Order)
	assert.Equal(t, pool.Raw, pool.Accepted, "nil filter accepts everything")
}

func TestPlan_Run_AppliesFilter(t *testing.T) {
	plan := candidate.NewPlan(candidate.FieldPhone, longerThan3, nil,
		candidate.Step{Strategy: fixed("s", "ab", "abcd", "  ", "xyz12")},
	)

	pool := plan.Run(context.Background(), candidate.NewDocument("", nil))

	assert.Equal(t, []string{"ab", "abcd", "xyz12"}, candidate.Values(pool.Raw), "blank values are dropped")
	assert.Equal(t, []string{"abcd", "xyz12"}, candidate.Values(pool.Accepted))
}

func TestPlan_Run_FallbackOnlyWhenNothingAccepted(t *testing.T) {
	tests := []struct {
		name         string
		primary      []string
		wantAccepted []string
	}{
		{
			name:         "primary accepted skips fallback",
			primary:      []string{"primary-value"},
			wantAccepted: []string{"primary-value"},
		},
		{
			name:         "primary rejected runs fallback",
			primary:      []string{"no"},
			wantAccepted: []string{"fallback-value"},
		},
		{
			name:         "primary empty runs fallback",
			primary:      nil,
			wantAccepted: []string{"fallback-value"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := candidate.NewPlan(candidate.FieldEmail, longerThan3, nil,
				candidate.Step{Strategy: fixed("primary", tt.primary...)},
				candidate.Step{Strategy: fixed("fallback", "fallback-value"), Fallback: true},
			)
			pool := plan.Run(context.Background(), candidate.NewDocument("", nil))
			assert.Equal(t, tt.wantAccepted, candidate.Values(pool.Accepted))
		})
	}
}

func TestPlan_Run_FailingStrategyBecomesDiagnostic(t *testing.T) {
	panicking := candidate.StrategyFunc{
		ID: "panics",
		Fn: func(context.Context, *candidate.Document) ([]string, error) { panic("boom") },
	}
	plan := candidate.NewPlan(candidate.FieldName, nil, nil,
		candidate.Step{Strategy: failing("broken", errors.New("tagger unavailable"))},
		candidate.Step{Strategy: panicking},
		candidate.Step{Strategy: fixed("healthy", "Jane Doe")},
	)

	pool := plan.Run(context.Background(), candidate.NewDocument("", nil))

	assert.Equal(t, []string{"Jane Doe"}, candidate.Values(pool.Accepted))
	require.Len(t, pool.Diagnostics, 2)
	assert.Equal(t, "broken", pool.Diagnostics[0].Strategy)
	assert.Equal(t, candidate.FieldName, pool.Diagnostics[0].Field)
	assert.Contains(t, pool.Diagnostics[0].Message, "tagger unavailable")
	assert.Equal(t, "panics", pool.Diagnostics[1].Strategy)
	assert.True(t, strings.Contains(pool.Diagnostics[1].Message, "boom"))
}

func TestPlan_Run_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	plan := candidate.NewPlan(candidate.FieldName, nil, nil, candidate.Step{Strategy: fixed("s", "Jane Doe")})
	pool := plan.Run(ctx, candidate.NewDocument("", nil))

	assert.Empty(t, pool.Raw)
	require.Len(t, pool.Diagnostics, 1)
	assert.Contains(t, pool.Diagnostics[0].Message, "context canceled")
}

func TestPlan_Strategies(t *testing.T) {
	plan := candidate.NewPlan(candidate.FieldPhone, nil, nil,
		candidate.Step{Strategy: fixed("phone.patterns")},
		candidate.Step{Strategy: fixed("phone.keywords"), Fallback: true},
	)
	assert.Equal(t, []string{"phone.patterns", "phone.keywords"}, plan.Strategies())
	assert.Equal(t, candidate.FieldPhone, plan.Field())
}

// ---------------------------------------------------------------------------
// Document and helpers
// ---------------------------------------------------------------------------

func TestDocument_Lines(t *testing.T) {
	doc := candidate.NewDocument("one\ntwo\n\nfour", nil)
	assert.Equal(t, []string{"one", "two", "", "four"}, doc.Lines())
	assert.False(t, doc.HasLayout())

	literal := &candidate.Document{Text: "a\nb", Layout: []candidate.LayoutLine{{Number: 1, Text: "a"}}}
	assert.Equal(t, []string{"a", "b"}, literal.Lines())
	assert.True(t, literal.HasLayout())
}

func TestUnique(t *testing.T) {
	in := []candidate.Candidate{
		{Value: "a", Source: "x", Order: 0},
		{Value: "b", Source: "x", Order: 1},
		{Value: "a", Source: "y", Order: 2},
	}
	out := candidate.Unique(in)
	require.Len(t, out, 2)
	assert.Equal(t, "x", out[0].Source, "first occurrence wins")
	assert.Equal(t, []string{"a", "b"}, candidate.Values(out))
}
