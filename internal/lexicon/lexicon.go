// SPDX-License-Identifier: Apache-2.0

// Package lexicon holds the static word lists and regular expressions the
// field extractors use to generate and reject candidates.
//
// A Lexicon is immutable once built. The default instance is decoded once
// from the embedded lexicon.yaml; operators can extend (never shrink) it
// with an additional YAML document of the same shape.
package lexicon

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/goccy/go-yaml"
)

//go:embed lexicon.yaml
var defaultYAML []byte

// Category names the gazetteer a disqualifying word belongs to.
type Category string

const (
	CategoryJobTitle      Category = "job_title"
	CategoryTechnicalTerm Category = "technical_term"
	CategoryLocation      Category = "location"
	CategoryCompany       Category = "company"
	CategorySectionHeader Category = "section_header"
)

// categoryOrder fixes the lookup order so a word present in several
// gazetteers always reports the same category.
var categoryOrder = []Category{
	CategoryJobTitle,
	CategoryTechnicalTerm,
	CategoryLocation,
	CategoryCompany,
	CategorySectionHeader,
}

// document is the YAML shape of a lexicon file.
type document struct {
	JobTitles          []string `yaml:"job_titles"`
	TechnicalTerms     []string `yaml:"technical_terms"`
	Locations          []string `yaml:"locations"`
	Companies          []string `yaml:"companies"`
	SectionHeaders     []string `yaml:"section_headers"`
	LocationPhrases    []string `yaml:"location_phrases"`
	SectionPhrases     []string `yaml:"section_phrases"`
	ResumeSectionWords []string `yaml:"resume_section_words"`
	Stopwords          []string `yaml:"stopwords"`
	Email              struct {
		Blocklist       []string `yaml:"blocklist"`
		SystemHints     []string `yaml:"system_hints"`
		PersonalDomains []string `yaml:"personal_domains"`
	} `yaml:"email"`
	Keywords struct {
		Contact    []string `yaml:"contact"`
		Name       []string `yaml:"name"`
		HeaderSkip []string `yaml:"header_skip"`
	} `yaml:"keywords"`
}

type set map[string]struct{}

func (s set) add(words []string) {
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			s[w] = struct{}{}
		}
	}
}

func (s set) has(w string) bool {
	_, ok := s[w]
	return ok
}

// Lexicon is a read-only collection of gazetteers and keyword lists.
type Lexicon struct {
	gazetteers      map[Category]set
	locationPhrases []string
	sectionPhrases  []string
	sectionWords    []string
	stopwords       set
	emailBlocklist  []string
	systemHints     []string
	personalDomains set
	contactKeywords []string
	nameKeywords    []string
	headerSkip      []string
}

var (
	defaultOnce sync.Once
	defaultLex  *Lexicon
)

// Default returns the process-wide lexicon built from the embedded lists.
func Default() *Lexicon {
	defaultOnce.Do(func() {
		lex, err := Load()
		if err != nil {
			panic(fmt.Sprintf("lexicon: embedded lexicon.yaml is invalid: %v", err))
		}
		defaultLex = lex
	})
	return defaultLex
}

// Load builds a Lexicon from the embedded defaults extended with each of the
// given YAML documents, in order.
func Load(extensions ...[]byte) (*Lexicon, error) {
	lex := &Lexicon{
		gazetteers:      make(map[Category]set, len(categoryOrder)),
		stopwords:       set{},
		personalDomains: set{},
	}
	for _, c := range categoryOrder {
		lex.gazetteers[c] = set{}
	}

	docs := append([][]byte{defaultYAML}, extensions...)
	for i, raw := range docs {
		var doc document
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("decode lexicon document %d: %w", i, err)
		}
		lex.merge(doc)
	}
	return lex, nil
}

// LoadFile builds a Lexicon from the embedded defaults extended with the
// YAML file at path.
func LoadFile(path string) (*Lexicon, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lexicon %s: %w", path, err)
	}
	return Load(raw)
}

func (l *Lexicon) merge(doc document) {
	l.gazetteers[CategoryJobTitle].add(doc.JobTitles)
	l.gazetteers[CategoryTechnicalTerm].add(doc.TechnicalTerms)
	l.gazetteers[CategoryLocation].add(doc.Locations)
	l.gazetteers[CategoryCompany].add(doc.Companies)
	l.gazetteers[CategorySectionHeader].add(doc.SectionHeaders)
	l.stopwords.add(doc.Stopwords)
	l.personalDomains.add(doc.Email.PersonalDomains)

	l.locationPhrases = appendLower(l.locationPhrases, doc.LocationPhrases)
	l.sectionPhrases = appendLower(l.sectionPhrases, doc.SectionPhrases)
	l.sectionWords = appendLower(l.sectionWords, doc.ResumeSectionWords)
	l.emailBlocklist = appendLower(l.emailBlocklist, doc.Email.Blocklist)
	l.systemHints = appendLower(l.systemHints, doc.Email.SystemHints)
	l.contactKeywords = appendLower(l.contactKeywords, doc.Keywords.Contact)
	l.nameKeywords = appendLower(l.nameKeywords, doc.Keywords.Name)
	l.headerSkip = appendLower(l.headerSkip, doc.Keywords.HeaderSkip)
}

func appendLower(dst, src []string) []string {
	for _, s := range src {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		dup := false
		for _, existing := range dst {
			if existing == s {
				dup = true
				break
			}
		}
		if !dup {
			dst = append(dst, s)
		}
	}
	return dst
}

// Lookup reports the gazetteer containing word, compared case-insensitively.
func (l *Lexicon) Lookup(word string) (Category, bool) {
	w := strings.ToLower(word)
	for _, c := range categoryOrder {
		if l.gazetteers[c].has(w) {
			return c, true
		}
	}
	return "", false
}

// Size returns the number of words in the given gazetteer.
func (l *Lexicon) Size(c Category) int {
	return len(l.gazetteers[c])
}

// HasLocationPhrase reports whether s contains a multi-word location such as
// "west bengal".
func (l *Lexicon) HasLocationPhrase(s string) bool {
	return containsAny(strings.ToLower(s), l.locationPhrases)
}

// HasSectionPhrase reports whether s contains a resume section heading such
// as "work experience".
func (l *Lexicon) HasSectionPhrase(s string) bool {
	return containsAny(strings.ToLower(s), l.sectionPhrases)
}

// HasSectionWord reports whether s contains a generic resume-section word.
func (l *Lexicon) HasSectionWord(s string) bool {
	return containsAny(strings.ToLower(s), l.sectionWords)
}

// IsStopword reports whether word is an English stop-word.
func (l *Lexicon) IsStopword(word string) bool {
	return l.stopwords.has(strings.ToLower(word))
}

// EmailBlocked reports whether addr contains an infrastructural or system
// address fragment.
func (l *Lexicon) EmailBlocked(addr string) bool {
	return containsAny(strings.ToLower(addr), l.emailBlocklist)
}

// SystemLooking reports whether addr contains a hint of an automated sender.
func (l *Lexicon) SystemLooking(addr string) bool {
	return containsAny(strings.ToLower(addr), l.systemHints)
}

// PersonalDomain reports whether domain is a well-known personal mailbox
// provider.
func (l *Lexicon) PersonalDomain(domain string) bool {
	return l.personalDomains.has(strings.ToLower(domain))
}

// ContactKeywords returns the keywords that mark a contact-details line.
func (l *Lexicon) ContactKeywords() []string { return l.contactKeywords }

// NameKeywords returns the keywords that usually precede a candidate name.
func (l *Lexicon) NameKeywords() []string { return l.nameKeywords }

// HeaderSkipKeywords returns the keywords of document title lines that never
// hold the name.
func (l *Lexicon) HeaderSkipKeywords() []string { return l.headerSkip }

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

// ContainsAnyFold reports whether s contains one of needles, ignoring case.
// Needles are expected to be lowercase.
func ContainsAnyFold(s string, needles []string) bool {
	return containsAny(strings.ToLower(s), needles)
}
