// Package text provides helpers for preparing issue text for
// classification.
package text

import (
	"regexp"
	"strings"
)

var htmlCommentRe = regexp.MustCompile(`(?s)<!--.*?-->`)

// Normalize prepares an issue body for rule matching: HTML comments are
// removed (issue-template instructions live in them and must not match
// rules) and line endings are normalized to \n.
func Normalize(body string) string {
	body = strings.ReplaceAll(body, "\r\n", "\n")
	body = htmlCommentRe.ReplaceAllString(body, "")
	return body
}

// Truncate bounds s to at most max bytes, cutting on a rune boundary.
func Truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !isRuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
