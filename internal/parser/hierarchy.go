package parser

import (
	"fmt"
	"strings"

	"github.com/cloo-solutions/dokrag/internal/domain"
)

var dashReplacer = strings.NewReplacer("–", "-", "—", "-")

// NormalizeTitle makes titles comparable across dash variants and spacing.
func NormalizeTitle(title string) string {
	return strings.Join(strings.Fields(dashReplacer.Replace(title)), " ")
}

// ResolveHierarchy turns declared parent titles into parent orders. Each
// title maps to the most recent section carrying it. Unmatched parents are
// left unset and reported as warnings.
func ResolveHierarchy(sections []*domain.Section) []domain.Warning {
	latest := make(map[string]*domain.Section, len(sections))
	var warnings []domain.Warning

	for _, s := range sections {
		s.ParentOrder = 0
		if s.ParentTitle != "" {
			parent, ok := latest[NormalizeTitle(s.ParentTitle)]
			switch {
			case !ok:
				warnings = append(warnings, unresolved(s, "no earlier section titled %q"))
			case parent.Level >= s.Level || parent.Order >= s.Order:
				warnings = append(warnings, unresolved(s, "section titled %q cannot be a parent"))
			default:
				s.ParentOrder = parent.Order
			}
		}
		latest[NormalizeTitle(s.Title)] = s
	}
	return warnings
}

func unresolved(s *domain.Section, format string) domain.Warning {
	return domain.Warning{
		Code:         domain.ErrCodeUnresolvedParent,
		Message:      fmt.Sprintf(format, s.ParentTitle),
		SectionOrder: s.Order,
	}
}

// ValidateHierarchy checks that every resolved parent precedes its child
// and sits at a shallower level.
func ValidateHierarchy(sections []*domain.Section) error {
	byOrder := make(map[int]*domain.Section, len(sections))
	for _, s := range sections {
		byOrder[s.Order] = s
	}
	for _, s := range sections {
		if !s.HasParent() {
			continue
		}
		parent, ok := byOrder[s.ParentOrder]
		if !ok {
			return fmt.Errorf("section %d: parent %d does not exist", s.Order, s.ParentOrder)
		}
		if parent.Order >= s.Order {
			return fmt.Errorf("section %d: parent %d does not precede it", s.Order, parent.Order)
		}
		if parent.Level >= s.Level {
			return fmt.Errorf("section %d: parent level %d is not above %d", s.Order, parent.Level, s.Level)
		}
	}
	return nil
}
