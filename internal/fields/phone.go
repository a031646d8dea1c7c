// SPDX-License-Identifier: Apache-2.0

package fields

import (
	"context"
	"sort"
	"strings"

	"github.com/talentsift/resume-extract/internal/candidate"
	"github.com/talentsift/resume-extract/internal/lexicon"
)

// maxPhoneCandidates caps the ranked phone list.
const maxPhoneCandidates = 5

// phonePatterns runs the layered phone regexes over the whole document.
type phonePatterns struct{}

func (phonePatterns) Name() string { return "phone.patterns" }

func (phonePatterns) Generate(_ context.Context, doc *candidate.Document) ([]string, error) {
	var out []string
	for _, re := range lexicon.PhonePatterns {
		out = append(out, re.FindAllString(doc.Text, -1)...)
	}
	return out, nil
}

// phoneKeywords reads the number written after a phone label, plus any run
// of ten digits with separators.
type phoneKeywords struct{}

func (phoneKeywords) Name() string { return "phone.keywords" }

func (phoneKeywords) Generate(_ context.Context, doc *candidate.Document) ([]string, error) {
	var out []string
	for _, m := range lexicon.PhoneAfterKeyword.FindAllStringSubmatch(doc.Text, -1) {
		out = append(out, m[1])
	}
	out = append(out, lexicon.SpacedDigitRun.FindAllString(doc.Text, -1)...)
	return out, nil
}

// PlausiblePhone rejects strings that cannot be a phone number: a single
// decimal point, a digit count outside [10,15], four identical trailing
// digits, or a leading zero run.
func PlausiblePhone(raw string) bool {
	if strings.Count(raw, ".") == 1 {
		return false
	}
	d := digitsOf(raw)
	if len(d) < 10 || len(d) > 15 {
		return false
	}
	last := d[len(d)-4:]
	if strings.Count(last, last[:1]) == 4 {
		return false
	}
	return !strings.HasPrefix(d, "0")
}

// RankPhones deduplicates accepted phone candidates, orders them by length
// then by a leading '+', and keeps the top five.
func RankPhones(accepted []candidate.Candidate) []candidate.Candidate {
	ranked := candidate.Unique(accepted)
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i].Value, ranked[j].Value
		if len(a) != len(b) {
			return len(a) > len(b)
		}
		return strings.HasPrefix(a, "+") && !strings.HasPrefix(b, "+")
	})
	if len(ranked) > maxPhoneCandidates {
		ranked = ranked[:maxPhoneCandidates]
	}
	return ranked
}

// ScorePhone rates how much p looks like a reachable mobile number.
func ScorePhone(p string) int {
	score := 0
	if strings.HasPrefix(p, "+") {
		score += 10
	}
	if strings.Contains(p, "+91") {
		score += 15
	}
	switch n := len(digitsOf(p)); {
	case n == 10:
		score += 8
	case n == 13 && strings.HasPrefix(p, "+91"):
		score += 12
	}
	if !strings.Contains(p, ".") {
		score += 5
	}
	return score
}

// SelectPhone returns the highest-scoring phone; ties go to the earlier one.
func SelectPhone(phones []candidate.Candidate) (candidate.Candidate, int, bool) {
	best, bestScore := -1, 0
	for i, p := range phones {
		if s := ScorePhone(p.Value); best < 0 || s > bestScore {
			best, bestScore = i, s
		}
	}
	if best < 0 {
		return candidate.Candidate{}, 0, false
	}
	return phones[best], bestScore, true
}

func digitsOf(s string) string {
	return lexicon.NonDigit.ReplaceAllString(s, "")
}
