// SPDX-License-Identifier: Apache-2.0

package fields

import (
	"strings"

	"github.com/talentsift/resume-extract/internal/lexicon"
)

var sequentialDigits = map[string]struct{}{
	"1234567890": {},
	"0123456789": {},
	"9876543210": {},
}

// ValidPhone is the final gate for a selected phone number. Numbers with an
// Indian country code, or bare ten-digit numbers, must start with 6-9 after
// any leading zeros.
func ValidPhone(p string) bool {
	p = strings.TrimSpace(p)
	if p == "" {
		return false
	}
	d := digitsOf(p)
	if len(d) < 10 || len(d) > 15 {
		return false
	}

	distinct := make(map[rune]struct{}, 10)
	for _, r := range d {
		distinct[r] = struct{}{}
	}
	if len(distinct) <= 2 {
		return false
	}
	if _, ok := sequentialDigits[d]; ok {
		return false
	}

	switch {
	case strings.HasPrefix(p, "+91"):
		return mobileLead(strings.TrimPrefix(d, "91"))
	case !strings.HasPrefix(p, "+") && len(d) == 10:
		return mobileLead(d)
	}
	return true
}

func mobileLead(d string) bool {
	d = strings.TrimLeft(d, "0")
	return d != "" && strings.IndexByte("6789", d[0]) >= 0
}

// ValidEmail is the final gate for a selected address: one '@', a local part
// of 2 to 64 characters, a dotted domain of 4 to 255 characters, and the
// plausibility filter.
func ValidEmail(lex *lexicon.Lexicon, addr string) bool {
	addr = strings.TrimSpace(addr)
	if strings.Count(addr, "@") != 1 {
		return false
	}
	local, domain, _ := strings.Cut(addr, "@")
	if len(local) < 2 || len(local) > 64 {
		return false
	}
	if !strings.Contains(domain, ".") || len(domain) < 4 || len(domain) > 255 {
		return false
	}
	return PlausibleEmail(lex, addr)
}

// ValidName is the final gate for a selected name: at least two words, each
// a capitalized alphabetic token of 2 to 20 letters.
func ValidName(name string) bool {
	words := strings.Fields(name)
	if len(words) < 2 {
		return false
	}
	for _, w := range words {
		if !capitalizedWord(w) {
			return false
		}
	}
	return true
}
