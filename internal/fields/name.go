// SPDX-License-Identifier: Apache-2.0

package fields

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/talentsift/resume-extract/internal/candidate"
	"github.com/talentsift/resume-extract/internal/lexicon"
)

// PlausibleName rejects strings that are not a person's name: fewer than two
// characters, any word found in a gazetteer, a multi-word location, fewer
// than two or more than four words, or a word that is not a capitalized
// alphabetic token of 2 to 20 letters.
func PlausibleName(lex *lexicon.Lexicon, name string) bool {
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) < 2 {
		return false
	}
	words := strings.Fields(name)
	for _, w := range words {
		if _, hit := lex.Lookup(w); hit {
			return false
		}
	}
	if lex.HasLocationPhrase(name) {
		return false
	}
	return nameShaped(words)
}

// nameShaped reports whether words are two to four capitalized alphabetic
// tokens of 2 to 20 letters each.
func nameShaped(words []string) bool {
	if len(words) < 2 || len(words) > 4 {
		return false
	}
	for _, w := range words {
		if !capitalizedWord(w) {
			return false
		}
	}
	return true
}

func capitalizedWord(w string) bool {
	n := utf8.RuneCountInString(w)
	if n < 2 || n > 20 {
		return false
	}
	first, _ := utf8.DecodeRuneInString(w)
	if !unicode.IsUpper(first) {
		return false
	}
	for _, r := range w {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// NameWeights are the additive terms of the layout-aware name score.
type NameWeights struct {
	Base               float64 `yaml:"base" json:"base"`
	FontSizeFactor     float64 `yaml:"font_size_factor" json:"font_size_factor"`
	EarlyBonus         float64 `yaml:"early_bonus" json:"early_bonus"`
	EarlyLines         int     `yaml:"early_lines" json:"early_lines"`
	Line3Bonus         float64 `yaml:"line3_bonus" json:"line3_bonus"`
	Line5Bonus         float64 `yaml:"line5_bonus" json:"line5_bonus"`
	Line10Bonus        float64 `yaml:"line10_bonus" json:"line10_bonus"`
	TwoWordBonus       float64 `yaml:"two_word_bonus" json:"two_word_bonus"`
	ThreeWordBonus     float64 `yaml:"three_word_bonus" json:"three_word_bonus"`
	SectionWordPenalty float64 `yaml:"section_word_penalty" json:"section_word_penalty"`
	CapitalizedBonus   float64 `yaml:"capitalized_bonus" json:"capitalized_bonus"`
	RepeatBonus        float64 `yaml:"repeat_bonus" json:"repeat_bonus"`
	RepeatCap          float64 `yaml:"repeat_cap" json:"repeat_cap"`
}

// DefaultNameWeights returns the stock scoring weights.
func DefaultNameWeights() NameWeights {
	return NameWeights{
		Base:               10,
		FontSizeFactor:     2,
		EarlyBonus:         50,
		EarlyLines:         10,
		Line3Bonus:         30,
		Line5Bonus:         20,
		Line10Bonus:        10,
		TwoWordBonus:       20,
		ThreeWordBonus:     10,
		SectionWordPenalty: 30,
		CapitalizedBonus:   15,
		RepeatBonus:        5,
		RepeatCap:          20,
	}
}

// NameCandidate is a name candidate annotated with layout evidence.
type NameCandidate struct {
	candidate.Candidate
	FontSize float64 `json:"fontSize,omitempty"`
	Line     int     `json:"line,omitempty"`
	Position string  `json:"position,omitempty"`
	Early    bool    `json:"early"`
	Score    float64 `json:"score"`
}

// Annotate attaches layout evidence to c. The first layout line whose text
// contains the candidate supplies font size and line number; Early is set when the candidate appears in the first
// w.EarlyLines text lines.
func Annotate(doc *candidate.Document, c candidate.Candidate, w NameWeights) NameCandidate {
	nc := NameCandidate{Candidate: c}
	value := strings.ToLower(c.Value)

	for _, ll := range doc.Layout {
		text := strings.ToLower(strings.TrimSpace(ll.Text))
		if text == "" {
			continue
		}
		if strings.Contains(text, value) {
			nc.FontSize = ll.FontSize
			nc.Line = ll.Number
			nc.Position = ll.Position
			break
		}
	}

	lines := doc.Lines()
	if len(lines) > w.EarlyLines {
		lines = lines[:w.EarlyLines]
	}
	for _, l := range lines {
		if strings.Contains(strings.ToLower(l), value) {
			nc.Early = true
			break
		}
	}
	return nc
}

// ScoreName computes the layout-aware score of an annotated candidate.
func ScoreName(lex *lexicon.Lexicon, doc *candidate.Document, nc NameCandidate, w NameWeights) float64 {
	score := w.Base
	score += nc.FontSize * w.FontSizeFactor

	if nc.Early || (nc.Line > 0 && nc.Line <= w.EarlyLines) {
		score += w.EarlyBonus
	}
	switch {
	case nc.Line <= 0:
	case nc.Line <= 3:
		score += w.Line3Bonus
	case nc.Line <= 5:
		score += w.Line5Bonus
	case nc.Line <= 10:
		score += w.Line10Bonus
	}

	words := strings.Fields(nc.Value)
	if len(words) >= 2 {
		score += w.TwoWordBonus
	}
	if len(words) >= 3 {
		score += w.ThreeWordBonus
	}
	if lex.HasSectionWord(nc.Value) {
		score -= w.SectionWordPenalty
	}
	if allCapitalized(words) {
		score += w.CapitalizedBonus
	}
	if repeats := strings.Count(doc.Text, nc.Value) - 1; repeats > 0 {
		score += min(w.RepeatCap, w.RepeatBonus*float64(repeats))
	}
	return score
}

func allCapitalized(words []string) bool {
	if len(words) == 0 {
		return false
	}
	for _, w := range words {
		r, _ := utf8.DecodeRuneInString(w)
		if !unicode.IsUpper(r) {
			return false
		}
	}
	return true
}

// SelectNameWeighted scores every accepted candidate against the layout and
// returns the best one; ties go to the earlier candidate. All scored
// candidates are returned in pool order.
func SelectNameWeighted(lex *lexicon.Lexicon, doc *candidate.Document, accepted []candidate.Candidate, w NameWeights) (NameCandidate, []NameCandidate, bool) {
	unique := candidate.Unique(accepted)
	if len(unique) == 0 {
		return NameCandidate{}, nil, false
	}

	scored := make([]NameCandidate, len(unique))
	best := 0
	for i, c := range unique {
		nc := Annotate(doc, c, w)
		nc.Score = ScoreName(lex, doc, nc, w)
		scored[i] = nc
		if nc.Score > scored[best].Score {
			best = i
		}
	}
	return scored[best], scored, true
}

// SelectNamePlain returns the first accepted candidate, or failing that the
// first raw candidate of the pool that names no gazetteer word or location.
func SelectNamePlain(lex *lexicon.Lexicon, pool candidate.Pool) (candidate.Candidate, bool) {
	if len(pool.Accepted) > 0 {
		return pool.Accepted[0], true
	}
	for _, c := range pool.Raw {
		if !gazetteerHit(lex, c.Value) {
			return c, true
		}
	}
	return candidate.Candidate{}, false
}

// gazetteerHit reports whether any word of s, stripped of punctuation, is a
// gazetteer word, or s holds a multi-word location.
func gazetteerHit(lex *lexicon.Lexicon, s string) bool {
	for _, w := range strings.Fields(s) {
		w = strings.TrimFunc(w, func(r rune) bool { return !unicode.IsLetter(r) })
		if w == "" {
			continue
		}
		if _, hit := lex.Lookup(w); hit {
			return true
		}
	}
	return lex.HasLocationPhrase(s)
}
