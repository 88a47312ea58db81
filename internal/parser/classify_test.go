package parser

import (
	"strings"
	"testing"

	"github.com/cloo-solutions/dokrag/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		text string
		want domain.Genre
	}{
		{"decree title", decreeText, domain.GenreDecree},
		{"decree preamble keywords", "KEPUTUSAN DIREKSI\nMenimbang : a\nMengingat : b\nMEMUTUSKAN", domain.GenreDecree},
		{"circular", circularText, domain.GenreCircular},
		{"circular citing a decree mid-sentence", "SURAT EDARAN\nNomor : SE/1/2020\nBerdasarkan Surat Keputusan Direksi", domain.GenreCircular},
		{"circular without SE number", "SURAT EDARAN\nNomor : 12/2020", domain.GenreUnknown},
		{"work instruction", workInstructionText, domain.GenreWorkInstruction},
		{"work instruction without code", "INSTRUKSI KERJA\nPENGOPERASIAN GENSET", domain.GenreUnknown},
		{"procedure keyword", procedureText, domain.GenreProcedure},
		{"procedure code only", "No : P-04-SDM\nPenilaian kinerja", domain.GenreProcedure},
		{"unknown", unstructuredText, domain.GenreUnknown},
		{"empty", "", domain.GenreUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.text))
		})
	}
}

func TestClassifyOnlyInspectsOpeningWindow(t *testing.T) {
	text := strings.Repeat("x", ClassifyWindow) + "\nSURAT KEPUTUSAN"
	assert.Equal(t, domain.GenreUnknown, Classify(text))
}

func TestClassifyDecreeWinsOverCircular(t *testing.T) {
	text := "SURAT KEPUTUSAN\nSURAT EDARAN\nNOMOR : SE/1/2020"
	assert.Equal(t, domain.GenreDecree, Classify(text))
}

func TestResolveGenre(t *testing.T) {
	assert.Equal(t, domain.GenreDecree, ResolveGenre(domain.GenreCircular, domain.GenreDecree))
	assert.Equal(t, domain.GenreCircular, ResolveGenre(domain.GenreCircular, domain.GenreUnknown))
	assert.Equal(t, domain.GenreUnknown, ResolveGenre("", domain.GenreUnknown))
}
