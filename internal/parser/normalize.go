package parser

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	pageMarkerRe    = regexp.MustCompile(`(?m)^[ \t]*={5,}[ \t]*PAGE[ \t]+\d+[ \t]*={5,}[ \t]*$`)
	trailingSpaceRe = regexp.MustCompile(`(?m)[ \t]+$`)
	excessBlankRe   = regexp.MustCompile(`\n{3,}`)
)

// Normalize cleans OCR output before classification and segmentation.
// The result is stable under repeated application.
func Normalize(raw string) string {
	s := norm.NFC.String(raw)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = pageMarkerRe.ReplaceAllString(s, "")
	s = trailingSpaceRe.ReplaceAllString(s, "")
	s = excessBlankRe.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// head returns at most n runes from the start of s.
func head(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

func truncateRunes(s string, n int) string {
	s = strings.TrimSpace(s)
	if t := head(s, n); len(t) < len(s) {
		return strings.TrimSpace(t) + "…"
	}
	return s
}
