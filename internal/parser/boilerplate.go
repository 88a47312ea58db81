package parser

import (
	"regexp"
	"strings"
)

var (
	signedAtRe  = regexp.MustCompile(`(?i)^(?:Ditetapkan|Dikeluarkan)\s+di\b`)
	signedOnRe  = regexp.MustCompile(`(?i)^Pada\s+tanggal\b`)
	signerLines = 4
)

// ExtractAppendix removes the trailing block that starts at the grammar's
// appendix anchor. The block runs to the recipient cutoff when that follows
// the anchor, otherwise to the end of the text.
func ExtractAppendix(text string, g *Grammar) (body, appendix string) {
	if g == nil || g.appendixAnchor == nil {
		return text, ""
	}
	loc := g.appendixAnchor.FindStringIndex(text)
	if loc == nil {
		return text, ""
	}
	end := len(text)
	if g.recipientCutoff != nil {
		if cut := g.recipientCutoff.FindStringIndex(text[loc[1]:]); cut != nil {
			end = loc[1] + cut[0]
		}
	}
	appendix = strings.TrimSpace(text[loc[0]:end])
	body = strings.TrimRight(text[:loc[0]], " \t\n") + "\n" + strings.TrimLeft(text[end:], "\n")
	return strings.TrimSpace(body), appendix
}

// ExtractRecipientCutoff truncates the text at the first recipient or
// distribution-list line and returns the removed tail.
func ExtractRecipientCutoff(text string, g *Grammar) (body, removed string) {
	if g == nil || g.recipientCutoff == nil {
		return text, ""
	}
	loc := g.recipientCutoff.FindStringIndex(text)
	if loc == nil {
		return text, ""
	}
	return strings.TrimSpace(text[:loc[0]]), strings.TrimSpace(text[loc[0]:])
}

// ExtractSignatureBlock removes the last "Ditetapkan/Dikeluarkan di" +
// "Pada tanggal" pair together with up to four signer lines. Text after the
// signer lines stays in the body.
func ExtractSignatureBlock(text string) (body, signature string) {
	lines := strings.Split(text, "\n")
	start, end := -1, -1
	for i := len(lines) - 1; i >= 0; i-- {
		if !signedAtRe.MatchString(strings.TrimSpace(lines[i])) {
			continue
		}
		j := nextNonEmpty(lines, i+1)
		if j < 0 || !signedOnRe.MatchString(strings.TrimSpace(lines[j])) {
			continue
		}
		start, end = i, j
		for taken := 0; taken < signerLines; taken++ {
			k := nextNonEmpty(lines, end+1)
			if k < 0 {
				break
			}
			end = k
		}
		break
	}
	if start < 0 {
		return text, ""
	}

	signature = strings.TrimSpace(strings.Join(lines[start:end+1], "\n"))
	rest := append(append([]string{}, lines[:start]...), lines[end+1:]...)
	return strings.TrimSpace(strings.Join(rest, "\n")), signature
}

func nextNonEmpty(lines []string, from int) int {
	for i := from; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) != "" {
			return i
		}
	}
	return -1
}
