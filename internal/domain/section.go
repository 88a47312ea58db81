package domain

// SectionKind labels a structural node produced by segmentation.
type SectionKind string

const (
	SectionKindHeader       SectionKind = "header"
	SectionKindPertimbangan SectionKind = "pertimbangan"
	SectionKindChapter      SectionKind = "chapter"
	SectionKindArticle      SectionKind = "article"
	SectionKindClause       SectionKind = "clause"
	SectionKindSubItem      SectionKind = "sub_item"
	SectionKindSignature    SectionKind = "signature"
	SectionKindAppendix     SectionKind = "appendix"
	SectionKindBagian       SectionKind = "bagian"
)

// Section is one node of a segmented document.
//
// ParentTitle is the title declared during segmentation. ParentOrder is set by
// hierarchy resolution and refers to the Order of the parent within the same
// document (0 means no parent). ParentID is only known once the parent has
// been persisted.
type Section struct {
	ID          string
	Kind        SectionKind
	Title       string
	Content     string
	Level       int
	Order       int
	ParentTitle string
	ParentOrder int
	ParentID    string
	Metadata    map[string]any
}

// HasParent reports whether hierarchy resolution attached a parent.
func (s *Section) HasParent() bool {
	return s.ParentOrder > 0
}

// IsValidSectionKind checks if a SectionKind is known
func IsValidSectionKind(k SectionKind) bool {
	switch k {
	case SectionKindHeader, SectionKindPertimbangan, SectionKindChapter, SectionKindArticle,
		SectionKindClause, SectionKindSubItem, SectionKindSignature, SectionKindAppendix,
		SectionKindBagian:
		return true
	}
	return false
}
