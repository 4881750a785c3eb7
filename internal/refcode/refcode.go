// Package refcode extracts structured payment-reference tokens from
// free-text transaction descriptions.
package refcode

import (
	"regexp"
	"strings"
)

// Token grammar is fixed: member segment of 1-20 alphanumerics/underscores,
// a dash, then a 6-digit YYYYMM month segment.
var tokenPattern = regexp.MustCompile(`(?i)([A-Z0-9_]{1,20})-(\d{6})`)

// Extract returns all reference tokens found in text, uppercased, in
// left-to-right scan order. Malformed fragments are ignored.
func Extract(text string) []string {
	if text == "" {
		return nil
	}
	matches := tokenPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	refs := make([]string, 0, len(matches))
	for _, m := range matches {
		refs = append(refs, strings.ToUpper(m[1])+"-"+m[2])
	}
	return refs
}

// ExtractForMonth returns only the tokens whose month segment equals the
// given YYYYMM key. Tokens for other months are noise for a single-month run.
func ExtractForMonth(text, monthKey string) []string {
	var refs []string
	for _, ref := range Extract(text) {
		if strings.HasSuffix(ref, "-"+monthKey) {
			refs = append(refs, ref)
		}
	}
	return refs
}
