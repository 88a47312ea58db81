package cli

import (
	"fmt"
	"strings"

	"github.com/cloo-solutions/dokrag/internal/domain"
)

// enumValue is a flag value with a closed set of accepted strings.
type enumValue interface {
	Allowed() []string
}

// GenreValue is a pflag.Value accepting a genre tag case-insensitively.
// The zero value means "no hint".
type GenreValue struct {
	Genre domain.Genre
}

func (v *GenreValue) String() string { return string(v.Genre) }

func (v *GenreValue) Set(s string) error {
	g, err := domain.ParseGenre(s)
	if err != nil {
		return fmt.Errorf("must be one of %s", strings.Join(v.Allowed(), "|"))
	}
	if g == domain.GenreUnknown {
		g = ""
	}
	v.Genre = g
	return nil
}

func (v *GenreValue) Type() string { return "genre" }

func (v *GenreValue) Allowed() []string {
	out := make([]string, 0, len(domain.KnownGenres))
	for _, g := range domain.KnownGenres {
		out = append(out, string(g))
	}
	return out
}

// StatusValue is a pflag.Value accepting a document status.
type StatusValue struct {
	Status domain.DocumentStatus
}

func (v *StatusValue) String() string { return string(v.Status) }

func (v *StatusValue) Set(s string) error {
	status := domain.DocumentStatus(strings.ToLower(strings.TrimSpace(s)))
	if status == "" {
		v.Status = ""
		return nil
	}
	if err := domain.ValidateDocumentStatus(status); err != nil {
		return fmt.Errorf("must be one of %s", strings.Join(v.Allowed(), "|"))
	}
	v.Status = status
	return nil
}

func (v *StatusValue) Type() string { return "status" }

func (v *StatusValue) Allowed() []string {
	return []string{
		string(domain.DocumentStatusPending),
		string(domain.DocumentStatusSegmented),
		string(domain.DocumentStatusEmbedded),
		string(domain.DocumentStatusIndexed),
		string(domain.DocumentStatusCleaned),
		string(domain.DocumentStatusFailed),
	}
}
