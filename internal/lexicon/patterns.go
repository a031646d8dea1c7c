// SPDX-License-Identifier: Apache-2.0

package lexicon

import "regexp"

// PhonePatterns are tried in order, most specific first.
var PhonePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\+91[-.\s]?\d{10}`),                             // +91 followed by ten digits
	regexp.MustCompile(`\+\d{1,3}[-.\s]?\d{10}`),                        // other country codes
	regexp.MustCompile(`\+\d{1,3}[-.\s]?\d{3}[-.\s]?\d{3}[-.\s]?\d{4}`), // country code with separators
	regexp.MustCompile(`\d{10}`),                                        // bare ten digits
	regexp.MustCompile(`\(\d{3}\)\s*\d{3}[-.\s]?\d{4}`),                 // (xxx) xxx-xxxx
	regexp.MustCompile(`\d{3}[-.\s]\d{3}[-.\s]\d{4}`),                   // xxx-xxx-xxxx
}

var (
	// PhoneAfterKeyword captures the number written after a phone label.
	PhoneAfterKeyword = regexp.MustCompile(`(?i)\b(?:phone|mobile|tel)\b[^:\n]{0,12}:\s*(\+?[\d(][\d\s().\-]{8,20}\d)`)

	// SpacedDigitRun matches ten digits with optional single separators.
	SpacedDigitRun = regexp.MustCompile(`\b(?:\d[\s\-]?){9}\d\b`)
)

var (
	// EmailAddress is the standard local@domain.tld shape.
	EmailAddress = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)

	// ObfuscatedAt and ObfuscatedDot match [at]/(at) and [dot]/(dot) markers.
	ObfuscatedAt  = regexp.MustCompile(`(?i)\s*[\[({]\s*at\s*[\])}]\s*`)
	ObfuscatedDot = regexp.MustCompile(`(?i)\s*[\[({]\s*dot\s*[\])}]\s*`)

	// SpacedEmail matches addresses broken up by whitespace around '@' or '.'.
	SpacedEmail = regexp.MustCompile(`[A-Za-z0-9._%+-]+(?:\s*\.\s*[A-Za-z0-9_%+-]+)*\s*@\s*[A-Za-z0-9-]+(?:\s*\.\s*[A-Za-z0-9-]+)+`)
)

var (
	// CapitalizedRun matches two or three consecutive capitalized words on
	// one line.
	CapitalizedRun = regexp.MustCompile(`\b[A-Z][a-z]{2,15}[ \t]+[A-Z][a-z]{2,15}(?:[ \t]+[A-Z][a-z]{2,15})?\b`)

	// CapitalizedSpan matches two to four capitalized words on one line.
	CapitalizedSpan = regexp.MustCompile(`\b[A-Z][A-Za-z]{1,19}(?:[ \t]+[A-Z][A-Za-z]{1,19}){1,3}\b`)

	// Whitespace matches any whitespace run.
	Whitespace = regexp.MustCompile(`\s+`)

	// NonDigit matches anything but an ASCII digit.
	NonDigit = regexp.MustCompile(`[^0-9]`)
)
