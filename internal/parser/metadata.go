package parser

import (
	"regexp"
	"strings"

	"github.com/cloo-solutions/dokrag/internal/domain"
)

// Metadata holds the document-level facts pulled from the text. Any field
// may be empty when its anchor is missing.
type Metadata struct {
	Nomor   string `json:"nomor,omitempty"`
	Tanggal string `json:"tanggal,omitempty"`
	Tempat  string `json:"tempat,omitempty"`
	Judul   string `json:"judul,omitempty"`
	Tentang string `json:"tentang,omitempty"`
}

var (
	nomorPatterns = map[domain.Genre]*regexp.Regexp{
		domain.GenreCircular:        regexp.MustCompile(`(?i)Nomor\s*[:：]\s*(SE[/\w.\- ]*\w)`),
		domain.GenreDecree:          regexp.MustCompile(`(?i)Nomor\s*[:：]\s*(SKEP[/\w.\- ]*\w)`),
		domain.GenreWorkInstruction: regexp.MustCompile(`\b(I[- ]\d{3}(?:[-/]\w+)*)`),
		domain.GenreProcedure:       regexp.MustCompile(`\b(P\s*[-–]\s*\d+\s*[-–]\s*[A-Z]\w*(?:\s*[-–/]\s*\w+)*)`),
	}
	genericNomorRe = regexp.MustCompile(`(?im)^[ \t]*(?:Nomor|No\.)[ \t]*(?:Dokumen)?[ \t]*[:：][ \t]*(\S[^\n]*)$`)

	onDateRe      = regexp.MustCompile(`(?i)Pada\s+tanggal[ \t]*[:：]?[ \t]*(\S[^\n]*)`)
	labelDateRe   = regexp.MustCompile(`(?im)^[ \t]*Tanggal(?:[ \t]+(?:Berlaku|Terbit|Efektif))?[ \t]*[:：][ \t]*(\S[^\n]*)$`)
	placeRe       = regexp.MustCompile(`(?i)(?:Ditetapkan|Dikeluarkan)\s+di[ \t]*[:：]?[ \t]*(\S[^\n]*)`)
	subjectLineRe = regexp.MustCompile(`(?im)^[ \t]*(?:Tentang|Perihal|Hal)[ \t]*[:：][ \t]*(\S[^\n]*)$`)
	subjectHeadRe = regexp.MustCompile(`(?i)^\s*TENTANG\s*[:：]?\s*$`)
	codeLineRe    = regexp.MustCompile(`^(?:I[- ]\d{3}|P\s*[-–]\s*\d+)`)
)

// ExtractDocumentNumber returns the regulatory number, genre-specific
// pattern first, then a generic "Nomor :" label.
func ExtractDocumentNumber(text string, genre domain.Genre) string {
	if re, ok := nomorPatterns[genre]; ok {
		if m := re.FindStringSubmatch(text); m != nil {
			return cleanField(m[1])
		}
	}
	if m := genericNomorRe.FindStringSubmatch(text); m != nil {
		return cleanField(m[1])
	}
	return ""
}

// ExtractDate prefers the signature date over header date labels.
func ExtractDate(text string) string {
	if m := onDateRe.FindStringSubmatch(text); m != nil {
		return cleanField(m[1])
	}
	if m := labelDateRe.FindStringSubmatch(text); m != nil {
		return cleanField(m[1])
	}
	return ""
}

// ExtractPlace returns the place of signing.
func ExtractPlace(text string) string {
	if m := placeRe.FindStringSubmatch(text); m != nil {
		return cleanField(m[1])
	}
	return ""
}

// ExtractSubject returns the "tentang" line. A bare TENTANG heading takes
// the following lines up to the next blank line.
func ExtractSubject(text string, genre domain.Genre) string {
	if genre == domain.GenreWorkInstruction || genre == domain.GenreProcedure {
		return headerTitle(text, genre)
	}
	if m := subjectLineRe.FindStringSubmatch(text); m != nil {
		return cleanField(m[1])
	}

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if !subjectHeadRe.MatchString(line) {
			continue
		}
		var parts []string
		for _, next := range lines[i+1:] {
			next = strings.TrimSpace(next)
			if next == "" {
				if len(parts) > 0 {
					break
				}
				continue
			}
			parts = append(parts, next)
			if len(parts) == 3 {
				break
			}
		}
		return cleanField(strings.Join(parts, " "))
	}
	return ""
}

// ExtractTitle returns the document's heading line.
func ExtractTitle(text string, genre domain.Genre) string {
	var anchor string
	switch genre {
	case domain.GenreDecree:
		anchor = "SURAT KEPUTUSAN"
	case domain.GenreCircular:
		anchor = "SURAT EDARAN"
	case domain.GenreWorkInstruction, domain.GenreProcedure:
		return headerTitle(text, genre)
	default:
		return ""
	}
	for _, line := range strings.Split(head(text, ClassifyWindow), "\n") {
		if strings.Contains(strings.ToUpper(line), anchor) {
			return cleanField(line)
		}
	}
	return ""
}

// headerTitle finds the title of a work instruction or procedure: the first
// line after the genre heading that is neither a "label : value" line nor a
// document code.
func headerTitle(text string, genre domain.Genre) string {
	keyword := "INSTRUKSI KERJA"
	if genre == domain.GenreProcedure {
		keyword = "PROSEDUR"
	}
	lines := strings.Split(head(text, ClassifyWindow), "\n")
	for i, line := range lines {
		upper := strings.ToUpper(line)
		idx := strings.Index(upper, keyword)
		if idx < 0 {
			continue
		}
		if rest := cleanField(line[idx+len(keyword):]); rest != "" && !strings.ContainsAny(rest, ":：") {
			return rest
		}
		for _, next := range lines[i+1:] {
			next = strings.TrimSpace(next)
			if next == "" || strings.ContainsAny(next, ":：") || codeLineRe.MatchString(next) {
				continue
			}
			if clauseRe.MatchString(next) {
				break
			}
			return cleanField(next)
		}
		break
	}
	return ""
}

// ExtractMetadata runs every field extractor over the cleaned text and
// records an ExtractionMiss warning per missing core field.
func ExtractMetadata(text string, genre domain.Genre) (Metadata, []domain.Warning) {
	md := Metadata{
		Nomor:   ExtractDocumentNumber(text, genre),
		Tanggal: ExtractDate(text),
		Tempat:  ExtractPlace(text),
		Judul:   ExtractTitle(text, genre),
		Tentang: ExtractSubject(text, genre),
	}

	var warnings []domain.Warning
	for _, f := range []struct{ name, value string }{
		{"nomor", md.Nomor},
		{"tanggal", md.Tanggal},
		{"tentang", md.Tentang},
	} {
		if f.value == "" {
			warnings = append(warnings, domain.NewWarning(domain.ErrCodeExtractionMiss, f.name+" not found"))
		}
	}
	return md, warnings
}

func cleanField(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return strings.Trim(s, " .,;:-–")
}
