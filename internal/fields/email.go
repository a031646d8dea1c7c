// SPDX-License-Identifier: Apache-2.0

package fields

import (
	"context"
	"strings"
	"unicode"

	"github.com/talentsift/resume-extract/internal/candidate"
	"github.com/talentsift/resume-extract/internal/lexicon"
)

// emailPattern finds well-formed addresses.
type emailPattern struct{}

func (emailPattern) Name() string { return "email.pattern" }

func (emailPattern) Generate(_ context.Context, doc *candidate.Document) ([]string, error) {
	return lexicon.EmailAddress.FindAllString(doc.Text, -1), nil
}

// emailObfuscated finds addresses written as "jane [at] mail [dot] com" or
// broken up by whitespace, and rewrites them to their plain form.
type emailObfuscated struct{}

func (emailObfuscated) Name() string { return "email.obfuscated" }

func (emailObfuscated) Generate(_ context.Context, doc *candidate.Document) ([]string, error) {
	text := lexicon.ObfuscatedAt.ReplaceAllString(doc.Text, "@")
	text = lexicon.ObfuscatedDot.ReplaceAllString(text, ".")

	var out []string
	for _, m := range lexicon.SpacedEmail.FindAllString(text, -1) {
		compact := lexicon.Whitespace.ReplaceAllString(m, "")
		out = append(out, lexicon.EmailAddress.FindAllString(compact, -1)...)
	}
	return out, nil
}

// PlausibleEmail rejects system and throwaway addresses: blocklisted
// fragments, local parts that are mostly digits, and long local parts with
// no letter in their first ten characters.
func PlausibleEmail(lex *lexicon.Lexicon, addr string) bool {
	at := strings.LastIndex(addr, "@")
	if at <= 0 {
		return false
	}
	if lex.EmailBlocked(addr) {
		return false
	}

	local := addr[:at]
	digits := 0
	for _, r := range local {
		if unicode.IsDigit(r) {
			digits++
		}
	}
	if float64(digits)/float64(len(local)) > 0.6 {
		return false
	}
	if len(local) > 20 && !hasLetter(local[:10]) {
		return false
	}
	return true
}

// ScoreEmail favours personal mailbox providers and human-looking local
// parts, and penalises automated senders.
func ScoreEmail(lex *lexicon.Lexicon, addr string) int {
	score := 0
	local, domain, _ := strings.Cut(addr, "@")
	if lex.PersonalDomain(domain) {
		score += 10
	}
	if hasLetter(local) {
		score += 5
	}
	if lex.SystemLooking(addr) {
		score -= 20
	}
	return score
}

// SelectEmail returns the highest-scoring address; ties go to the earlier
// one.
func SelectEmail(lex *lexicon.Lexicon, emails []candidate.Candidate) (candidate.Candidate, int, bool) {
	best, bestScore := -1, 0
	for i, e := range emails {
		if s := ScoreEmail(lex, e.Value); best < 0 || s > bestScore {
			best, bestScore = i, s
		}
	}
	if best < 0 {
		return candidate.Candidate{}, 0, false
	}
	return emails[best], bestScore, true
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
