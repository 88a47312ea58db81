package parser

import (
	"sort"
	"strings"
	"testing"

	"github.com/cloo-solutions/dokrag/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sectionsOfKind(sections []*domain.Section, kind domain.SectionKind) []*domain.Section {
	var out []*domain.Section
	for _, s := range sections {
		if s.Kind == kind {
			out = append(out, s)
		}
	}
	return out
}

func titles(sections []*domain.Section) []string {
	out := make([]string, 0, len(sections))
	for _, s := range sections {
		out = append(out, s.Title)
	}
	return out
}

// lineMultiset returns the sorted non-empty trimmed lines of all texts.
func lineMultiset(texts ...string) []string {
	var out []string
	for _, text := range texts {
		for _, line := range strings.Split(text, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				out = append(out, line)
			}
		}
	}
	sort.Strings(out)
	return out
}

func TestParseDecree(t *testing.T) {
	res := Parse(decreeText, "")

	assert.Equal(t, domain.GenreDecree, res.Genre)
	assert.Equal(t, []string{
		"Kepala Keputusan",
		"Pertimbangan Hukum",
		"BAB I – KETENTUAN UMUM",
		"Pasal 1",
		"BAB II – REKRUTMEN",
		"Pasal 2",
	}, titles(res.Sections))

	chapters := sectionsOfKind(res.Sections, domain.SectionKindChapter)
	articles := sectionsOfKind(res.Sections, domain.SectionKindArticle)
	require.Len(t, chapters, 2)
	require.Len(t, articles, 2)

	for i, article := range articles {
		assert.Equal(t, 1, article.Level)
		assert.Equal(t, chapters[i].Title, article.ParentTitle)
		assert.Equal(t, chapters[i].Order, article.ParentOrder)
	}
	assert.Equal(t, "I", chapters[0].Metadata["chapter_numeral"])
	assert.Equal(t, 2, articles[1].Metadata["article_number"])
	assert.Equal(t, 2, articles[1].Metadata["sub_item_count"])
	assert.Equal(t, domain.SectionKindPertimbangan, res.Sections[1].Kind)
	assert.True(t, strings.HasPrefix(res.Sections[1].Content, "Menimbang"))

	assert.Contains(t, res.Signature, "BUDI SANTOSO")
	assert.Contains(t, res.Recipients, "Para Direktur")
	assert.NotContains(t, articles[1].Content, "Ditetapkan")
	assert.Empty(t, res.Warnings)
	require.NoError(t, ValidateHierarchy(res.Sections))
}

func TestParseCircular(t *testing.T) {
	res := Parse(circularText, "")

	assert.Equal(t, domain.GenreCircular, res.Genre)
	clauses := sectionsOfKind(res.Sections, domain.SectionKindClause)
	require.Len(t, clauses, 4)
	assert.Equal(t, []string{
		"1. Latar Belakang",
		"2. Maksud dan Tujuan",
		"3. Ruang lingkup meliputi seluruh unit kerja.",
		"4. Ketentuan",
	}, titles(clauses))

	for _, c := range clauses {
		assert.Equal(t, 0, c.Level)
		assert.False(t, c.HasParent())
	}
	assert.Equal(t, 2, clauses[1].Metadata["sub_item_count"])
	assert.Contains(t, clauses[1].Content, "b. menurunkan angka kecelakaan.")

	assert.Equal(t, "Kepala Surat", res.Sections[0].Title)
	assert.Contains(t, res.Signature, "ANI WIJAYA")
	assert.NotContains(t, clauses[3].Content, "ANI WIJAYA")
	assert.True(t, strings.HasPrefix(res.Recipients, "Tembusan"))
}

func TestParseWorkInstruction(t *testing.T) {
	res := Parse(workInstructionText, "")

	assert.Equal(t, domain.GenreWorkInstruction, res.Genre)
	assert.Equal(t, []string{
		"Header Instruksi Kerja",
		"1. TUJUAN",
		"2. RUANG LINGKUP",
		"3. URAIAN INSTRUKSI",
	}, titles(res.Sections))
	assert.Equal(t, domain.SectionKindBagian, res.Sections[1].Kind)
	assert.Equal(t, 3, res.Sections[3].Metadata["sub_item_count"])
	assert.True(t, strings.HasPrefix(res.Appendix, "LEMBAR PENGESAHAN"))
	assert.Equal(t, "Lembar Pengesahan", res.AppendixTitle())
}

func TestParseProcedure(t *testing.T) {
	res := Parse(mixedCaseProcedureText, "")

	assert.Equal(t, domain.GenreProcedure, res.Genre)
	assert.Equal(t, []string{
		"Header Prosedur",
		"1. Tujuan",
		"2. Ruang Lingkup",
		"3. Uraian Prosedur",
	}, titles(res.Sections))
	for _, s := range res.Sections[1:] {
		assert.Equal(t, domain.SectionKindBagian, s.Kind)
		assert.Equal(t, 0, s.Level)
	}
	assert.Contains(t, res.Sections[2].Content, "1. Kantor pusat")
	assert.Contains(t, res.Sections[2].Content, "2. Kantor cabang")
	assert.Equal(t, 2, res.Sections[3].Metadata["sub_item_count"])
	assert.Equal(t, "P-01-ADM", res.Metadata.Nomor)
	assert.Equal(t, "Pengadaan Barang", res.Metadata.Judul)
	assert.True(t, strings.HasPrefix(res.Appendix, "LEMBAR PENGESAHAN"))
}

func TestWorkInstructionPartsStayUppercase(t *testing.T) {
	sections := Segment("1. Tujuan\nisi\n2. RUANG LINGKUP\nisi", GrammarFor(domain.GenreWorkInstruction))

	require.Len(t, sections, 2)
	assert.Equal(t, "2. RUANG LINGKUP", sections[1].Title)
	assert.Contains(t, sections[0].Content, "1. Tujuan")
}

func TestParseUnknownFallsBackToSingleSection(t *testing.T) {
	res := Parse(unstructuredText, "")

	require.Len(t, res.Sections, 1)
	s := res.Sections[0]
	assert.Equal(t, domain.SectionKindBagian, s.Kind)
	assert.Equal(t, FallbackTitle, s.Title)
	assert.Equal(t, unstructuredText, s.Content)

	var codes []string
	for _, w := range res.Warnings {
		codes = append(codes, w.Code)
	}
	assert.Contains(t, codes, domain.ErrCodeUnknownGenre)
}

func TestParseHintOnlyAppliesWhenUndetected(t *testing.T) {
	text := "1. Pertama\nisi\n2. Kedua\nisi"
	res := Parse(text, domain.GenreCircular)
	assert.Equal(t, domain.GenreCircular, res.Genre)
	assert.Len(t, sectionsOfKind(res.Sections, domain.SectionKindClause), 2)

	res = Parse(decreeText, domain.GenreCircular)
	assert.Equal(t, domain.GenreDecree, res.Genre)
}

func TestSegmentChapterTitleNotTakenFromMarker(t *testing.T) {
	body := "BAB I\nPasal 1\nIsi pasal.\nBAB II\n\nKETENTUAN PENUTUP\nPasal 2\nIsi."
	sections := Segment(body, GrammarFor(domain.GenreDecree))

	assert.Equal(t, []string{"BAB I", "Pasal 1", "BAB II – KETENTUAN PENUTUP", "Pasal 2"}, titles(sections))
	assert.Equal(t, "BAB II\n\nKETENTUAN PENUTUP", sections[2].Content)
}

func TestSegmentChapterInlineTitle(t *testing.T) {
	sections := Segment("BAB III - PENUTUP\nPasal 9\nSelesai.", GrammarFor(domain.GenreDecree))
	require.Len(t, sections, 2)
	assert.Equal(t, "BAB III – PENUTUP", sections[0].Title)
	assert.Equal(t, "BAB III – PENUTUP", sections[1].ParentTitle)
}

func TestSegmentNumberingMustIncrease(t *testing.T) {
	body := "Pasal 3\nSebagaimana dimaksud dalam\nPasal 2 ayat (1) tetap berlaku.\nPasal 4\nIsi."
	sections := Segment(body, GrammarFor(domain.GenreDecree))

	require.Len(t, sections, 2)
	assert.Contains(t, sections[0].Content, "Pasal 2 ayat (1) tetap berlaku.")
	assert.Equal(t, "Pasal 4", sections[1].Title)
}

func TestSegmentArticleWithoutChapter(t *testing.T) {
	sections := Segment("Pasal 1\nIsi.", GrammarFor(domain.GenreDecree))
	require.Len(t, sections, 1)
	assert.Empty(t, sections[0].ParentTitle)
	assert.Empty(t, ResolveHierarchy(sections))
}

func TestSegmentEmptyBody(t *testing.T) {
	assert.Nil(t, Segment("  \n ", GrammarFor(domain.GenreDecree)))
}

func TestSegmentOrdersAreSequential(t *testing.T) {
	for _, text := range []string{decreeText, circularText, workInstructionText, procedureText} {
		res := Parse(text, "")
		for i, s := range res.Sections {
			assert.Equal(t, i+1, s.Order)
			assert.NotEmpty(t, s.Title)
			assert.NotEmpty(t, s.Content)
		}
	}
}

func TestParseIsIdempotent(t *testing.T) {
	for _, text := range []string{decreeText, circularText, workInstructionText, procedureText, unstructuredText} {
		assert.Equal(t, Parse(text, ""), Parse(text, ""))
	}
}

func TestParseCoversAllText(t *testing.T) {
	for _, text := range []string{decreeText, circularText, workInstructionText, procedureText, unstructuredText} {
		res := Parse(text, "")

		parts := []string{res.Signature, res.Appendix, res.Recipients}
		for _, s := range res.Sections {
			parts = append(parts, s.Content)
		}
		assert.Equal(t, lineMultiset(res.CleanText), lineMultiset(parts...))
	}
}

func TestParseHierarchyIsValid(t *testing.T) {
	for _, text := range []string{decreeText, circularText, workInstructionText, procedureText} {
		res := Parse(text, "")
		require.NoError(t, ValidateHierarchy(res.Sections))
	}
}
