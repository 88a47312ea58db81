package domain

import (
	"fmt"
	"strings"
)

// Genre is one of the fixed regulatory document types the segmenter understands.
type Genre string

const (
	GenreDecree          Genre = "SKEP"
	GenreCircular        Genre = "SE"
	GenreWorkInstruction Genre = "IK"
	GenreProcedure       Genre = "PROSEDUR"
	GenreUnknown         Genre = "UNKNOWN"
)

// KnownGenres lists the genres that have a dedicated grammar.
var KnownGenres = []Genre{GenreDecree, GenreCircular, GenreWorkInstruction, GenreProcedure}

// ParseGenre accepts the tag case-insensitively. An empty string is GenreUnknown.
func ParseGenre(s string) (Genre, error) {
	g := Genre(strings.ToUpper(strings.TrimSpace(s)))
	if g == "" {
		return GenreUnknown, nil
	}
	if err := ValidateGenre(g); err != nil {
		return "", err
	}
	return g, nil
}

// ValidateGenre validates a Genre value
func ValidateGenre(g Genre) error {
	switch g {
	case GenreDecree, GenreCircular, GenreWorkInstruction, GenreProcedure, GenreUnknown:
		return nil
	}
	return NewDomainErrorWithCause(ErrCodeValidation, "invalid genre", fmt.Errorf("%q", string(g)))
}

// Label returns the Indonesian display name of the genre.
func (g Genre) Label() string {
	switch g {
	case GenreDecree:
		return "Surat Keputusan"
	case GenreCircular:
		return "Surat Edaran"
	case GenreWorkInstruction:
		return "Instruksi Kerja"
	case GenreProcedure:
		return "Prosedur"
	}
	return "Tidak Dikenal"
}
