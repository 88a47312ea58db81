package parser

import (
	"regexp"
	"strings"

	"github.com/cloo-solutions/dokrag/internal/domain"
)

// ClassifyWindow is how many leading runes the classifier inspects.
const ClassifyWindow = 800

var (
	decreeTitleRe    = regexp.MustCompile(`(?m)^[ \t]*SURAT KEPUTUSAN`)
	circularNumberRe = regexp.MustCompile(`NOMOR\s*[:：]\s*SE[/\d]`)
	workCodeRe       = regexp.MustCompile(`I[-\s]\d{3}`)
	procedureCodeRe  = regexp.MustCompile(`P\s*[-–]\s*\d+\s*[-–]\s*[A-Z]`)
)

type genreRule struct {
	genre domain.Genre
	match func(upper string) bool
}

// Priority order matters: the first matching rule wins.
var genreRules = []genreRule{
	{domain.GenreDecree, func(u string) bool {
		if decreeTitleRe.MatchString(u) {
			return true
		}
		return strings.Contains(u, "MENIMBANG") &&
			strings.Contains(u, "MENGINGAT") &&
			strings.Contains(u, "MEMUTUSKAN")
	}},
	{domain.GenreCircular, func(u string) bool {
		return strings.Contains(u, "SURAT EDARAN") && circularNumberRe.MatchString(u)
	}},
	{domain.GenreWorkInstruction, func(u string) bool {
		return strings.Contains(u, "INSTRUKSI KERJA") && workCodeRe.MatchString(u)
	}},
	{domain.GenreProcedure, func(u string) bool {
		return strings.Contains(u, "PROSEDUR") || procedureCodeRe.MatchString(u)
	}},
}

// Classify picks the genre grammar for a cleaned document text by looking
// for anchor phrases in its opening window. It returns GenreUnknown when no
// rule matches.
func Classify(text string) domain.Genre {
	upper := strings.ToUpper(head(text, ClassifyWindow))
	for _, rule := range genreRules {
		if rule.match(upper) {
			return rule.genre
		}
	}
	return domain.GenreUnknown
}

// ResolveGenre combines a caller hint with the classifier result. A detected
// genre always wins; the hint only fills in when detection found nothing.
func ResolveGenre(hint, detected domain.Genre) domain.Genre {
	if detected != domain.GenreUnknown && detected != "" {
		return detected
	}
	if hint != "" {
		return hint
	}
	return domain.GenreUnknown
}
