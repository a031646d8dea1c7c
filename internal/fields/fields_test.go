// SPDX-License-Identifier: Apache-2.0

package fields_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentsift/resume-extract/internal/candidate"
	"github.com/talentsift/resume-extract/internal/fields"
	"github.com/talentsift/resume-extract/internal/lexicon"
	"github.com/talentsift/resume-extract/internal/nlp"
)

// stubTagger labels the configured names as PERSON regardless of input.
type stubTagger struct {
	persons []string
	err     error
}

func (s stubTagger) Analyze(context.Context, string) ([]nlp.Sentence, error) {
	if s.err != nil {
		return nil, s.err
	}
	var sent nlp.Sentence
	for _, p := range s.persons {
		chunk := nlp.Chunk{Label: nlp.LabelPerson}
		for _, w := range strings.Fields(p) {
			chunk.Tokens = append(chunk.Tokens, nlp.Token{Text: w, Tag: "NNP"})
		}
		sent.Chunks = append(sent.Chunks, chunk)
	}
	return []nlp.Sentence{sent}, nil
}

func cands(values ...string) []candidate.Candidate {
	out := make([]candidate.Candidate, len(values))
	for i, v := range values {
		out[i] = candidate.Candidate{Value: v, Source: "test", Order: i}
	}
	return out
}

func newEngine(persons ...string) *fields.Engine {
	return fields.NewEngine(fields.Config{Tagger: stubTagger{persons: persons}})
}

// ---------------------------------------------------------------------------
// Phone
// ---------------------------------------------------------------------------

func TestPlausiblePhone(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"+91 9876512345", true},
		{"(987) 654-3210", true},
		{"987.654.3210", true},
		{"98765.12345", false},
		{"12345", false},
		{"+1234567890123456", false},
		{"98765 11111", false},
		{"0987654321", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, fields.PlausiblePhone(tt.in))
		})
	}
}

func TestRankPhones(t *testing.T) {
	ranked := fields.RankPhones(cands("9876512345", "+91 9876512345", "+919876512345", "9876512345"))
	assert.Equal(t, []string{"+91 9876512345", "+919876512345", "9876512345"}, candidate.Values(ranked))

	ranked = fields.RankPhones(cands("919876512345", "+19876512345"))
	assert.Equal(t, []string{"+19876512345", "919876512345"}, candidate.Values(ranked), "leading + breaks length ties")

	ranked = fields.RankPhones(cands(
		"9876512341", "9876512342", "9876512343", "9876512344",
		"9876512345", "9876512346", "9876512347",
	))
	assert.Len(t, ranked, 5)
	assert.Equal(t, "9876512341", ranked[0].Value)
}

func TestScorePhone(t *testing.T) {
	assert.Equal(t, 30, fields.ScorePhone("+91 9876512345"))
	// 12 digits earn no length bonus
	assert.Equal(t, 30, fields.ScorePhone("+919876512345"))
	// 10 plus + 15 country code + 12 thirteen digits + 5 no dots
	assert.Equal(t, 42, fields.ScorePhone("+9109876512345"))
	assert.Equal(t, 13, fields.ScorePhone("9876512345"))
	assert.Equal(t, 8, fields.ScorePhone("987.654.3210"))
}

func TestSelectPhone_Idempotent(t *testing.T) {
	list := cands("9876512345", "8765412345", "+91 9876512345")

	first, score, ok := fields.SelectPhone(list)
	require.True(t, ok)
	again, scoreAgain, _ := fields.SelectPhone(list)

	assert.Equal(t, first, again)
	assert.Equal(t, score, scoreAgain)
	assert.Equal(t, "+91 9876512345", first.Value)

	tie, _, _ := fields.SelectPhone(cands("9876512345", "8765412345"))
	assert.Equal(t, "9876512345", tie.Value, "ties go to the earlier candidate")

	_, _, ok = fields.SelectPhone(nil)
	assert.False(t, ok)
}

// ---------------------------------------------------------------------------
// Email
// ---------------------------------------------------------------------------

func TestPlausibleEmail(t *testing.T) {
	lex := lexicon.Default()
	tests := []struct {
		in   string
		want bool
	}{
		{"jane.doe@gmail.com", true},
		{"ab12@acme.io", true},
		{"admin@company.com", false},
		{"test@example.com", false},
		{"noreply@service.io", false},
		{"12345678@gmail.com", false},
		{"1234567890abcdefghijk@mail.io", false},
		{"no-at-sign", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, fields.PlausibleEmail(lex, tt.in))
		})
	}
}

func TestScoreAndSelectEmail(t *testing.T) {
	lex := lexicon.Default()
	assert.Equal(t, 15, fields.ScoreEmail(lex, "jane.doe@gmail.com"))
	assert.Equal(t, 5, fields.ScoreEmail(lex, "jobs@company.com"))
	assert.Equal(t, -5, fields.ScoreEmail(lex, "mailer@gmail.com"))

	best, score, ok := fields.SelectEmail(lex, cands("jobs@company.com", "jane.doe@gmail.com"))
	require.True(t, ok)
	assert.Equal(t, "jane.doe@gmail.com", best.Value)
	assert.Equal(t, 15, score)
}

// ---------------------------------------------------------------------------
// Name
// ---------------------------------------------------------------------------

func TestPlausibleName(t *testing.T) {
	lex := lexicon.Default()
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{name: "two words", in: "John Smith", want: true},
		{name: "accented letters", in: "José García", want: true},
		{name: "single word", in: "John", want: false},
		{name: "lowercase", in: "john smith", want: false},
		{name: "gazetteer word last", in: "John Engineer", want: false},
		{name: "gazetteer word first, upper case", in: "DEVELOPER John", want: false},
		{name: "location", in: "Tamil Nadu", want: false},
		{name: "too many words", in: "John Smith Kumar Rao Verma", want: false},
		{name: "initial", in: "J. Smith", want: false},
		{name: "hyphenated", in: "Anne-Marie Smith", want: false},
		{name: "blank", in: "  ", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, fields.PlausibleName(lex, tt.in))
		})
	}
}

func TestScoreName(t *testing.T) {
	lex := lexicon.Default()
	w := fields.DefaultNameWeights()

	doc := candidate.NewDocument("Priya Sharma\nBackend Developer", []candidate.LayoutLine{
		{Number: 1, Text: "Priya Sharma", FontSize: 24, Position: "top"},
		{Number: 2, Text: "Backend Developer", FontSize: 12, Position: "top"},
	})
	nc := fields.Annotate(doc, candidate.Candidate{Value: "Priya Sharma"}, w)
	assert.Equal(t, 24.0, nc.FontSize)
	assert.Equal(t, 1, nc.Line)
	assert.True(t, nc.Early)
	// 10 base + 48 font + 50 early + 30 line + 20 words + 15 capitalized
	assert.Equal(t, 173.0, fields.ScoreName(lex, doc, nc, w))

	repeated := candidate.NewDocument(strings.Repeat("Priya Sharma\n", 6), nil)
	nc = fields.Annotate(repeated, candidate.Candidate{Value: "Priya Sharma"}, w)
	// 10 base + 50 early + 20 words + 15 capitalized + 20 capped repeats
	assert.Equal(t, 115.0, fields.ScoreName(lex, repeated, nc, w))
}

func TestSelectNameWeighted_PrefersProminentLine(t *testing.T) {
	lex := lexicon.Default()
	text := "Priya Sharma\nBackend Developer\n" + strings.Repeat("Built services\n", 10) + "References\nRahul Verma"
	doc := candidate.NewDocument(text, []candidate.LayoutLine{
		{Number: 1, Text: "Priya Sharma", FontSize: 24, Position: "top"},
		{Number: 14, Text: "Rahul Verma", FontSize: 10, Position: "body"},
	})

	best, scored, ok := fields.SelectNameWeighted(lex, doc, cands("Rahul Verma", "Priya Sharma"), fields.DefaultNameWeights())
	require.True(t, ok)
	assert.Equal(t, "Priya Sharma", best.Value)
	require.Len(t, scored, 2)
	assert.Equal(t, "Rahul Verma", scored[0].Value, "scored list keeps pool order")

	_, _, ok = fields.SelectNameWeighted(lex, doc, nil, fields.DefaultNameWeights())
	assert.False(t, ok)
}

func TestSelectNameWeighted_ShortLayoutLine(t *testing.T) {
	lex := lexicon.Default()
	w := fields.DefaultNameWeights()
	text := "Profile\nSummary\nR\nNotes\nDetails\nMore\nOther\nRavi Kumar\nFiller\nFiller\nAnita Rao"
	doc := candidate.NewDocument(text, []candidate.LayoutLine{
		{Number: 3, Text: "R", FontSize: 24, Position: "top"},
		{Number: 8, Text: "Ravi Kumar", FontSize: 10, Position: "body"},
		{Number: 11, Text: "Anita Rao", FontSize: 10, Position: "body"},
	})

	nc := fields.Annotate(doc, candidate.Candidate{Value: "Anita Rao"}, w)
	assert.Equal(t, 11, nc.Line, "a line shorter than the candidate never matches it")
	assert.Equal(t, 10.0, nc.FontSize)
	assert.False(t, nc.Early)

	best, scored, ok := fields.SelectNameWeighted(lex, doc, cands("Anita Rao", "Ravi Kumar"), w)
	require.True(t, ok)
	assert.Equal(t, "Ravi Kumar", best.Value)
	require.Len(t, scored, 2)
	// 10 base + 20 font + 20 words + 15 capitalized
	assert.Equal(t, 65.0, scored[0].Score)
	// plus 50 early + 10 line
	assert.Equal(t, 125.0, scored[1].Score)
}

func TestSelectNamePlain(t *testing.T) {
	lex := lexicon.Default()

	tests := []struct {
		name   string
		pool   candidate.Pool
		want   string
		wantOK bool
	}{
		{"accepted wins", candidate.Pool{Raw: cands("raw one", "Jane Doe"), Accepted: cands("Jane Doe")}, "Jane Doe", true},
		{"first raw is the last resort", candidate.Pool{Raw: cands("raw one")}, "raw one", true},
		{"gazetteer chunk skipped", candidate.Pool{Raw: cands("Data Science Intern", "Jane Doe")}, "Jane Doe", true},
		{"location skipped", candidate.Pool{Raw: cands("Bangalore, India")}, "", false},
		{"only gazetteer chunks", candidate.Pool{Raw: cands("Data Science Intern Bangalore")}, "", false},
		{"empty", candidate.Pool{}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := fields.SelectNamePlain(lex, tt.pool)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got.Value)
		})
	}
}

// ---------------------------------------------------------------------------
// Validators
// ---------------------------------------------------------------------------

func TestValidPhone(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"+91 9876512345", true},
		{"9876512345", true},
		{"+1 415 555 2671", true},
		{"5876512345", false},
		{"+91 5876512345", false},
		{"1111122222", false},
		{"", false},
		{"98765", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, fields.ValidPhone(tt.in))
		})
	}
}

func TestValidPhone_RejectsSequencesRegardlessOfFormatting(t *testing.T) {
	for _, in := range []string{
		"1234567890", "123-456-7890", "(123) 456 7890",
		"0123456789", "012.345.6789",
		"9876543210", "98765 43210", "987-654-3210",
	} {
		assert.False(t, fields.ValidPhone(in), in)
	}
}

func TestValidEmail(t *testing.T) {
	lex := lexicon.Default()
	tests := []struct {
		in   string
		want bool
	}{
		{"jane.doe@gmail.com", true},
		{"a@gmail.com", false},
		{"jane@localhost", false},
		{"jane@@gmail.com", false},
		{"jane@a.b", false},
		{"admin@company.com", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, fields.ValidEmail(lex, tt.in))
		})
	}
}

func TestValidName(t *testing.T) {
	assert.True(t, fields.ValidName("John Smith"))
	assert.True(t, fields.ValidName("Data Science Intern"), "validator does not consult gazetteers")
	assert.False(t, fields.ValidName("John"))
	assert.False(t, fields.ValidName("John smith"))
	assert.False(t, fields.ValidName("John S"))
	assert.False(t, fields.ValidName("John Smith3"))
}

// ---------------------------------------------------------------------------
// Engine
// ---------------------------------------------------------------------------

func TestEngine_Extract_ContactBlock(t *testing.T) {
	doc := candidate.NewDocument("John Smith\nSoftware Engineer\nEmail: john.smith@gmail.com\nPhone: +91 9876512345", nil)

	ex := newEngine().Extract(context.Background(), doc)

	assert.Equal(t, "John Smith", ex.Name.Value)
	assert.Equal(t, "name.position", ex.Name.Source)
	assert.True(t, ex.Name.Valid)

	assert.Equal(t, "john.smith@gmail.com", ex.Email.Value)
	assert.Equal(t, "email.pattern", ex.Email.Source)
	assert.True(t, ex.Email.Valid)

	assert.Equal(t, "+91 9876512345", ex.Phone.Value)
	assert.Equal(t, []string{"+91 9876512345", "9876512345"}, ex.Phone.All)
	assert.True(t, ex.Phone.Valid)
	assert.Empty(t, ex.Diagnostics())
}

func TestEngine_Extract_NoContactDetails(t *testing.T) {
	doc := candidate.NewDocument("Data Science Intern\nBangalore, India", nil)

	ex := newEngine().Extract(context.Background(), doc)

	assert.Empty(t, ex.Name.Value)
	assert.Empty(t, ex.Email.Value)
	assert.Empty(t, ex.Phone.Value)
	assert.False(t, ex.Name.Valid || ex.Email.Valid || ex.Phone.Valid)
}

func TestEngine_ExtractEmail_ObfuscatedFallback(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "bracket markers", text: "Reach me: jane.doe [at] gmail [dot] com"},
		{name: "paren markers", text: "jane.doe(at)gmail(dot)com"},
		{name: "spaced", text: "Mail jane . doe @ gmail . com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := newEngine().ExtractEmail(context.Background(), candidate.NewDocument(tt.text, nil))
			assert.Equal(t, "jane.doe@gmail.com", out.Value)
			assert.Equal(t, "email.obfuscated", out.Source)
			assert.True(t, out.Valid)
		})
	}
}

func TestEngine_ExtractPhone_KeywordFallback(t *testing.T) {
	out := newEngine().ExtractPhone(context.Background(), candidate.NewDocument("Mobile No: 98765 12345", nil))
	assert.Equal(t, "98765 12345", out.Value)
	assert.Equal(t, "phone.keywords", out.Source)
	assert.True(t, out.Valid)
}

func TestEngine_ExtractName_LayoutMode(t *testing.T) {
	text := "Priya Sharma\nBackend Developer\n" + strings.Repeat("Built services\n", 10) + "References\nRahul Verma"
	layout := []candidate.LayoutLine{
		{Number: 1, Text: "Priya Sharma", FontSize: 24, Position: "top"},
		{Number: 14, Text: "Rahul Verma", FontSize: 10, Position: "body"},
	}
	engine := newEngine("Rahul Verma")

	plain := engine.ExtractName(context.Background(), candidate.NewDocument(text, nil))
	assert.Equal(t, "Rahul Verma", plain.Value, "plain mode takes the first accepted candidate")
	assert.Equal(t, "name.ner", plain.Source)

	weighted := engine.ExtractName(context.Background(), candidate.NewDocument(text, layout))
	assert.Equal(t, "Priya Sharma", weighted.Value)
	assert.Positive(t, weighted.Score)
	assert.ElementsMatch(t, []string{"Rahul Verma", "Priya Sharma"}, weighted.All)
}

func TestEngine_ExtractName_TaggerFailureIsDiagnostic(t *testing.T) {
	engine := fields.NewEngine(fields.Config{Tagger: stubTagger{err: errors.New("model not loaded")}})

	out := engine.ExtractName(context.Background(), candidate.NewDocument("Aarav Mehta\nEmail: aarav@gmail.com", nil))

	assert.Equal(t, "Aarav Mehta", out.Value)
	require.Len(t, out.Diagnostics, 1)
	assert.Equal(t, "name.ner", out.Diagnostics[0].Strategy)
	assert.Contains(t, out.Diagnostics[0].Message, "model not loaded")
}

func TestEngine_StatusIffAllValid(t *testing.T) {
	docs := []string{
		"John Smith\nEmail: john.smith@gmail.com\nPhone: +91 9876512345",
		"John Smith\nEmail: john.smith@gmail.com\nPhone: 123-456-7890",
		"John Smith\nPhone: +91 9876512345",
		"Email: john.smith@gmail.com\nPhone: +91 9876512345",
	}
	engine := newEngine()
	for _, text := range docs {
		ex := engine.Extract(context.Background(), candidate.NewDocument(text, nil))
		allValid := ex.Name.Valid && ex.Email.Valid && ex.Phone.Valid
		nonEmpty := ex.Name.Value != "" && ex.Email.Value != "" && ex.Phone.Value != ""
		if allValid {
			assert.True(t, nonEmpty, text)
		}
		assert.Equal(t, text == docs[0], allValid, text)
	}
}
