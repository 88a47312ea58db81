package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/cloo-solutions/dokrag/internal/domain"
)

// marker describes one structural level of a genre grammar.
type marker struct {
	kind  domain.SectionKind
	level int
	// pattern is matched against the trimmed line. Submatch 1 is the
	// number or numeral, submatch 2 the inline title (may be empty).
	pattern *regexp.Regexp
	// titleOnNextLine allows the title to be taken from the following line
	// when the marker line carries none.
	titleOnNextLine bool
	// numberOf converts submatch 1 to an integer; numbering must strictly
	// increase for the marker to count, otherwise the line is plain content.
	numberOf func(string) (int, bool)
	title    func(num, name string) string
	metaKey  string
}

// leadBlock names the sections built from lines that precede the first marker.
type leadBlock struct {
	kind  domain.SectionKind
	title string
	// split, when set, starts a second lead section at the first matching line.
	split      *regexp.Regexp
	splitKind  domain.SectionKind
	splitTitle string
}

// Grammar is the per-genre strategy table driving the segmenter and the
// boilerplate extractors.
type Grammar struct {
	Genre           domain.Genre
	markers         []marker
	subItem         *regexp.Regexp
	lead            leadBlock
	recipientCutoff *regexp.Regexp
	appendixAnchor  *regexp.Regexp
	appendixTitle   string
}

// maxLevel returns the deepest level any marker of g opens.
func (g *Grammar) maxLevel() int {
	deepest := 0
	for _, m := range g.markers {
		deepest = max(deepest, m.level)
	}
	return deepest
}

const maxTitleRunes = 120

var (
	chapterRe    = regexp.MustCompile(`^BAB\s+([IVXLCDM]+)\b\.?\s*[-–—:]?\s*(.*)$`)
	articleRe    = regexp.MustCompile(`^(?:Pasal|PASAL)\s+(\d+)\b\.?\s*[-–—:]?\s*(.*)$`)
	clauseRe     = regexp.MustCompile(`^(\d{1,2})\.(?:\s+(.*))?$`)
	partRe       = regexp.MustCompile(`^(\d{1,2})\.(?:\s+([A-Z][A-Z0-9 &/,().:'’\-]*))?$`)
	stepRe       = regexp.MustCompile(`^(\d{1,2})\.(?:\s+(\S.*))?$`)
	subItemRe    = regexp.MustCompile(`^(?:[a-z][.)]|\(?[ivxl]+\)|\d{1,2}\)|\([a-z0-9]{1,3}\)|[-•▪·*])\s*\S`)
	menimbangRe  = regexp.MustCompile(`(?i)^\s*Menimbang\b`)
	kepadaYthRe  = regexp.MustCompile(`(?m)^[ \t]*Kepada[ \t]+Yth\.?`)
	tembusanRe   = regexp.MustCompile(`(?m)^[ \t]*Tembusan[ \t]*[:：]?`)
	lampiranRe   = regexp.MustCompile(`(?m)^[ \t]*LAMPIRAN(?:[ \t]+[^:：\n][^\n]*)?$`)
	pengesahanRe = regexp.MustCompile(`(?m)^[ \t]*LEMBAR[ \t]+PENGESAHAN\b[^\n]*$`)
)

func arabic(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	return n, err == nil
}

func roman(s string) (int, bool) {
	values := map[rune]int{'I': 1, 'V': 5, 'X': 10, 'L': 50, 'C': 100, 'D': 500, 'M': 1000}
	total, prev := 0, 0
	runes := []rune(strings.ToUpper(s))
	for i := len(runes) - 1; i >= 0; i-- {
		v, ok := values[runes[i]]
		if !ok {
			return 0, false
		}
		if v < prev {
			total -= v
		} else {
			total += v
			prev = v
		}
	}
	return total, total > 0
}

func dashed(prefix string) func(num, name string) string {
	return func(num, name string) string {
		label := prefix + " " + num
		if name == "" {
			return label
		}
		return label + " – " + truncateRunes(name, maxTitleRunes)
	}
}

func numbered(num, name string) string {
	if name == "" {
		return num + "."
	}
	return num + ". " + truncateRunes(name, maxTitleRunes)
}

var decreeGrammar = &Grammar{
	Genre: domain.GenreDecree,
	markers: []marker{
		{
			kind: domain.SectionKindChapter, level: 0, pattern: chapterRe,
			titleOnNextLine: true, numberOf: roman, title: dashed("BAB"), metaKey: "chapter_numeral",
		},
		{
			kind: domain.SectionKindArticle, level: 1, pattern: articleRe,
			numberOf: arabic, title: dashed("Pasal"), metaKey: "article_number",
		},
	},
	subItem: subItemRe,
	lead: leadBlock{
		kind: domain.SectionKindHeader, title: "Kepala Keputusan",
		split: menimbangRe, splitKind: domain.SectionKindPertimbangan, splitTitle: "Pertimbangan Hukum",
	},
	recipientCutoff: kepadaYthRe,
	appendixAnchor:  lampiranRe,
	appendixTitle:   "Lampiran",
}

var circularGrammar = &Grammar{
	Genre: domain.GenreCircular,
	markers: []marker{
		{
			kind: domain.SectionKindClause, level: 0, pattern: clauseRe,
			numberOf: arabic, title: numbered, metaKey: "clause_number",
		},
	},
	subItem:         subItemRe,
	lead:            leadBlock{kind: domain.SectionKindHeader, title: "Kepala Surat"},
	recipientCutoff: tembusanRe,
	appendixAnchor:  lampiranRe,
	appendixTitle:   "Lampiran",
}

// partGrammar builds the work-instruction and procedure grammars. Work
// instructions head their parts in capitals; procedures accept any title.
func partGrammar(genre domain.Genre, headerTitle string, heading *regexp.Regexp) *Grammar {
	return &Grammar{
		Genre: genre,
		markers: []marker{
			{
				kind: domain.SectionKindBagian, level: 0, pattern: heading,
				numberOf: arabic, title: numbered, metaKey: "section_number",
			},
		},
		subItem:        subItemRe,
		lead:           leadBlock{kind: domain.SectionKindHeader, title: headerTitle},
		appendixAnchor: pengesahanRe,
		appendixTitle:  "Lembar Pengesahan",
	}
}

var (
	workInstructionGrammar = partGrammar(domain.GenreWorkInstruction, "Header Instruksi Kerja", partRe)
	procedureGrammar       = partGrammar(domain.GenreProcedure, "Header Prosedur", stepRe)
	fallbackGrammar        = &Grammar{Genre: domain.GenreUnknown}
)

// GrammarFor returns the grammar for a genre. Unknown genres get a grammar
// without markers, which makes the segmenter emit a single body section.
func GrammarFor(g domain.Genre) *Grammar {
	switch g {
	case domain.GenreDecree:
		return decreeGrammar
	case domain.GenreCircular:
		return circularGrammar
	case domain.GenreWorkInstruction:
		return workInstructionGrammar
	case domain.GenreProcedure:
		return procedureGrammar
	}
	return fallbackGrammar
}
