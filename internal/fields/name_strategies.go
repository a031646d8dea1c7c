// SPDX-License-Identifier: Apache-2.0

package fields

import (
	"context"
	"errors"
	"regexp"
	"sort"
	"strings"

	"github.com/talentsift/resume-extract/internal/candidate"
	"github.com/talentsift/resume-extract/internal/lexicon"
	"github.com/talentsift/resume-extract/internal/nlp"
)

const (
	headLines     = 5
	contactWindow = 5
	keywordLines  = 10
)

// nameNER proposes every PERSON entity the tagger finds once stop-words are
// removed. Output is not pre-filtered.
type nameNER struct {
	lex    *lexicon.Lexicon
	tagger nlp.Tagger
}

func (nameNER) Name() string { return "name.ner" }

func (s nameNER) Generate(ctx context.Context, doc *candidate.Document) ([]string, error) {
	if s.tagger == nil {
		return nil, errors.New("no tagger configured")
	}
	text := nlp.RemoveStopwords(doc.Text, s.lex.IsStopword)
	sentences, err := s.tagger.Analyze(ctx, text)
	if err != nil {
		return nil, err
	}
	return nlp.ChunksLabeled(sentences, nlp.LabelPerson), nil
}

// namePosition looks where names usually sit: the first non-empty lines,
// the lines around contact details, and capitalized runs anywhere in the
// text. Results are plausible names ordered by first appearance.
type namePosition struct {
	lex *lexicon.Lexicon
}

func (namePosition) Name() string { return "name.position" }

func (s namePosition) Generate(_ context.Context, doc *candidate.Document) ([]string, error) {
	lines := doc.Lines()
	var found []string
	add := func(v string) {
		v = strings.Join(strings.Fields(v), " ")
		if PlausibleName(s.lex, v) {
			found = append(found, v)
		}
	}

	seen := 0
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if seen == headLines {
			break
		}
		seen++
		if lexicon.ContainsAnyFold(line, s.lex.HeaderSkipKeywords()) {
			continue
		}
		if nameShaped(strings.Fields(line)) {
			add(line)
		}
	}

	for i, line := range lines {
		if !lexicon.ContainsAnyFold(line, s.lex.ContactKeywords()) {
			continue
		}
		lo, hi := max(0, i-contactWindow), min(len(lines)-1, i+contactWindow)
		for j := lo; j <= hi; j++ {
			if j == i {
				continue
			}
			if nameShaped(strings.Fields(lines[j])) {
				add(lines[j])
			}
		}
	}

	for _, m := range lexicon.CapitalizedRun.FindAllString(doc.Text, -1) {
		add(m)
	}

	return byFirstAppearance(doc.Text, dedupe(found)), nil
}

// nameKeywords reads names written after labels such as "Name:" and
// capitalized spans in the opening lines, dropping section headings.
type nameKeywords struct {
	lex   *lexicon.Lexicon
	label *regexp.Regexp
}

func newNameKeywords(lex *lexicon.Lexicon) nameKeywords {
	kws := lex.NameKeywords()
	quoted := make([]string, len(kws))
	for i, k := range kws {
		quoted[i] = regexp.QuoteMeta(k)
	}
	var label *regexp.Regexp
	if len(quoted) > 0 {
		label = regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b[\s:\-|]*(.*)$`)
	}
	return nameKeywords{lex: lex, label: label}
}

func (nameKeywords) Name() string { return "name.keywords" }

func (s nameKeywords) Generate(_ context.Context, doc *candidate.Document) ([]string, error) {
	lines := doc.Lines()
	var found []string
	collect := func(text string) {
		text = strings.TrimSpace(text)
		if words := strings.Fields(text); nameShaped(words) {
			found = append(found, strings.Join(words, " "))
		}
		found = append(found, lexicon.CapitalizedSpan.FindAllString(text, -1)...)
	}

	if s.label != nil {
		for i, line := range lines {
			m := s.label.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			collect(m[1])
			if i+1 < len(lines) {
				collect(lines[i+1])
			}
		}
	}
	for _, line := range lines[:min(keywordLines, len(lines))] {
		found = append(found, lexicon.CapitalizedSpan.FindAllString(line, -1)...)
	}

	var out []string
	for _, v := range dedupe(found) {
		if s.lex.HasSectionPhrase(v) || !PlausibleName(s.lex, v) {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := values[:0:0]
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// byFirstAppearance sorts values by where they first occur in text, case
// folded. Values not found keep their relative order at the end.
func byFirstAppearance(text string, values []string) []string {
	lower := strings.ToLower(text)
	pos := make(map[string]int, len(values))
	for _, v := range values {
		p := strings.Index(lower, strings.ToLower(v))
		if p < 0 {
			p = len(lower)
		}
		pos[v] = p
	}
	sort.SliceStable(values, func(i, j int) bool { return pos[values[i]] < pos[values[j]] })
	return values
}
