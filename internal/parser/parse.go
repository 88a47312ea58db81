// Package parser turns OCR text of Indonesian regulatory documents into a
// leveled list of sections. Everything here is pure and safe for concurrent use.
package parser

import (
	"github.com/cloo-solutions/dokrag/internal/domain"
)

// Result is the outcome of parsing one document.
type Result struct {
	Genre     domain.Genre
	Detected  domain.Genre
	Metadata  Metadata
	CleanText string
	Sections  []*domain.Section
	// Blocks removed from the body before segmentation.
	Signature  string
	Appendix   string
	Recipients string
	Warnings   []domain.Warning
}

// Parse runs normalization, classification, boilerplate extraction,
// segmentation and hierarchy resolution. hint may be empty.
func Parse(raw string, hint domain.Genre) *Result {
	clean := Normalize(raw)
	detected := Classify(clean)
	genre := ResolveGenre(hint, detected)
	g := GrammarFor(genre)

	res := &Result{Genre: genre, Detected: detected, CleanText: clean}
	res.Metadata, res.Warnings = ExtractMetadata(clean, genre)
	if genre == domain.GenreUnknown {
		res.Warnings = append(res.Warnings, domain.NewWarning(domain.ErrCodeUnknownGenre,
			"no genre grammar matched, using single body section"))
	}

	body, appendix := ExtractAppendix(clean, g)
	body, recipients := ExtractRecipientCutoff(body, g)
	body, signature := ExtractSignatureBlock(body)
	res.Appendix, res.Recipients, res.Signature = appendix, recipients, signature

	res.Sections = Segment(body, g)
	res.Warnings = append(res.Warnings, ResolveHierarchy(res.Sections)...)
	return res
}

// AppendixTitle returns the title used for the re-attached appendix section.
func (r *Result) AppendixTitle() string {
	return GrammarFor(r.Genre).appendixTitle
}
