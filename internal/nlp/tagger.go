// SPDX-License-Identifier: Apache-2.0

// Package nlp wraps the tokenizer, part-of-speech tagger and named-entity
// chunker used by the name extractor.
package nlp

import (
	"context"
	"fmt"
	"strings"

	"github.com/jdkato/prose/v2"
)

// LabelPerson is the entity label of person-name chunks.
const LabelPerson = "PERSON"

// Token is a word with its part-of-speech tag.
type Token struct {
	Text string `json:"text"`
	Tag  string `json:"tag"`
}

// Chunk is a labeled run of tokens such as a PERSON entity.
type Chunk struct {
	Label  string  `json:"label"`
	Tokens []Token `json:"tokens"`
}

// Text joins the chunk tokens with single spaces.
func (c Chunk) Text() string {
	words := make([]string, len(c.Tokens))
	for i, t := range c.Tokens {
		words[i] = t.Text
	}
	return strings.Join(words, " ")
}

// Sentence is one tokenized, tagged and chunked sentence.
type Sentence struct {
	Tokens []Token `json:"tokens"`
	Chunks []Chunk `json:"chunks"`
}

// Tagger splits text into sentences, tags tokens and labels entity chunks.
// Results are statistical and may miss or mislabel entities.
type Tagger interface {
	Analyze(ctx context.Context, text string) ([]Sentence, error)
}

// ProseTagger is a Tagger backed by the prose NLP library.
type ProseTagger struct{}

// NewProseTagger creates a ProseTagger.
func NewProseTagger() *ProseTagger {
	return &ProseTagger{}
}

// Analyze segments text into sentences and runs tagging and entity
// extraction on each one separately so chunks stay sentence-local.
func (t *ProseTagger) Analyze(ctx context.Context, text string) ([]Sentence, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	segmented, err := prose.NewDocument(text, prose.WithTagging(false), prose.WithExtraction(false))
	if err != nil {
		return nil, fmt.Errorf("segment text: %w", err)
	}

	var out []Sentence
	for _, s := range segmented.Sentences() {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		doc, err := prose.NewDocument(s.Text, prose.WithSegmentation(false))
		if err != nil {
			return out, fmt.Errorf("tag sentence: %w", err)
		}

		var sent Sentence
		for _, tok := range doc.Tokens() {
			sent.Tokens = append(sent.Tokens, Token{Text: tok.Text, Tag: tok.Tag})
		}
		for _, ent := range doc.Entities() {
			chunk := Chunk{Label: ent.Label}
			for _, w := range strings.Fields(ent.Text) {
				chunk.Tokens = append(chunk.Tokens, Token{Text: w, Tag: "NNP"})
			}
			sent.Chunks = append(sent.Chunks, chunk)
		}
		out = append(out, sent)
	}
	return out, nil
}

// RemoveStopwords drops every whitespace-separated word for which isStop
// reports true and joins the rest with single spaces.
func RemoveStopwords(text string, isStop func(string) bool) string {
	words := strings.Fields(text)
	kept := words[:0]
	for _, w := range words {
		if !isStop(w) {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}

// ChunksLabeled returns the text of every chunk with the given label, in
// sentence order.
func ChunksLabeled(sentences []Sentence, label string) []string {
	var out []string
	for _, s := range sentences {
		for _, c := range s.Chunks {
			if c.Label == label && len(c.Tokens) > 0 {
				out = append(out, c.Text())
			}
		}
	}
	return out
}
