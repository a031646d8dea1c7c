// SPDX-License-Identifier: Apache-2.0

package convert

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var horizontalSpace = regexp.MustCompile(`[ \t\r\f\v\x{00A0}\x{2007}\x{202F}]+`)

// NormalizeLine folds compatibility characters (ligatures, full-width
// forms) with NFKC, collapses horizontal whitespace and trims the result.
func NormalizeLine(s string) string {
	s = norm.NFKC.String(s)
	s = strings.Map(func(r rune) rune {
		if r == '\u200b' || r == '\ufeff' {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(horizontalSpace.ReplaceAllString(s, " "))
}

// NormalizeText applies NormalizeLine to every line of s and drops blank
// lines.
func NormalizeText(s string) string {
	var kept []string
	for _, line := range strings.Split(s, "\n") {
		if line = NormalizeLine(line); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
