package parser

import (
	"strings"

	"github.com/cloo-solutions/dokrag/internal/domain"
)

// FallbackTitle is the title of the single section produced when a document
// has no recognizable structure.
const FallbackTitle = "document body"

type phase int

const (
	phaseOutside phase = iota
	phaseInChapter
	phaseInArticle
	phaseInClause
)

func (p phase) String() string {
	switch p {
	case phaseInChapter:
		return "IN_CHAPTER"
	case phaseInArticle:
		return "IN_ARTICLE"
	case phaseInClause:
		return "IN_CLAUSE"
	}
	return "OUTSIDE"
}

// openSection is a section still receiving lines.
type openSection struct {
	sec          *domain.Section
	lines        []string
	subItems     []string
	subItemCount int
	pendingTitle bool
	number       string
}

func (o *openSection) append(line string, subItem bool) {
	trimmed := strings.TrimSpace(line)
	if o.pendingTitle && trimmed != "" {
		o.sec.Title = numbered(o.number, trimmed)
		o.pendingTitle = false
	}
	if subItem {
		o.subItemCount++
	}
	if subItem || len(o.subItems) > 0 {
		o.subItems = append(o.subItems, line)
		return
	}
	o.lines = append(o.lines, line)
}

// close folds buffered sub-items into the section content.
func (o *openSection) close() {
	content := strings.Join(o.lines, "\n")
	if len(o.subItems) > 0 {
		content += "\n" + strings.Join(o.subItems, "\n")
	}
	o.sec.Content = strings.TrimSpace(content)
	if o.subItemCount > 0 {
		o.sec.Metadata["sub_item_count"] = o.subItemCount
	}
}

// segState is the whole mutable state of one segmentation run.
type segState struct {
	grammar    *Grammar
	sections   []*domain.Section
	open       []*openSection
	current    *openSection
	lead       []string
	lastNumber map[domain.SectionKind]int
	sawMarker  bool
}

func newSegState(g *Grammar) *segState {
	return &segState{
		grammar:    g,
		open:       make([]*openSection, g.maxLevel()+1),
		lastNumber: make(map[domain.SectionKind]int),
	}
}

func (st *segState) phase() phase {
	if st.current == nil {
		return phaseOutside
	}
	switch st.current.sec.Kind {
	case domain.SectionKindChapter:
		return phaseInChapter
	case domain.SectionKindArticle:
		return phaseInArticle
	}
	return phaseInClause
}

// Segment walks the body line by line and returns the ordered, leveled
// section list for grammar g. Parent titles are declared, not resolved.
func Segment(body string, g *Grammar) []*domain.Section {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil
	}
	if g == nil {
		g = fallbackGrammar
	}

	st := newSegState(g)
	lines := strings.Split(body, "\n")
	for i := 0; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		if m, groups := st.match(trimmed); m != nil {
			i = st.openMarker(m, groups, lines, i)
			continue
		}
		st.appendLine(lines[i])
	}
	st.closeFrom(0)

	if !st.sawMarker {
		return []*domain.Section{{
			Kind:     domain.SectionKindBagian,
			Title:    FallbackTitle,
			Content:  body,
			Level:    0,
			Order:    1,
			Metadata: map[string]any{},
		}}
	}
	return st.sections
}

// match returns the marker that opens a section on this line, honoring the
// strictly increasing numbering rule.
func (st *segState) match(trimmed string) (*marker, []string) {
	if trimmed == "" {
		return nil, nil
	}
	for i := range st.grammar.markers {
		m := &st.grammar.markers[i]
		groups := m.pattern.FindStringSubmatch(trimmed)
		if groups == nil {
			continue
		}
		n, ok := m.numberOf(groups[1])
		if !ok || n <= st.lastNumber[m.kind] {
			continue
		}
		return m, groups
	}
	return nil, nil
}

// looksLikeMarker ignores numbering; it is used when peeking for titles.
func (st *segState) looksLikeMarker(trimmed string) bool {
	for _, m := range st.grammar.markers {
		if m.pattern.MatchString(trimmed) {
			return true
		}
	}
	return st.grammar.subItem != nil && st.grammar.subItem.MatchString(trimmed)
}

// openMarker closes sections at or below the marker level, opens the new
// one and returns the index of the last line it consumed.
func (st *segState) openMarker(m *marker, groups []string, lines []string, i int) int {
	if !st.sawMarker {
		st.flushLead()
		st.sawMarker = true
	}
	st.closeFrom(m.level)

	num := groups[1]
	n, _ := m.numberOf(num)
	st.lastNumber[m.kind] = n
	name := strings.TrimSpace(groups[2])

	consumed := []string{lines[i]}
	last := i
	if name == "" && m.titleOnNextLine {
		for j := i + 1; j < len(lines); j++ {
			next := strings.TrimSpace(lines[j])
			if next == "" {
				continue
			}
			if !st.looksLikeMarker(next) {
				name = next
				consumed = append(consumed, lines[i+1:j+1]...)
				last = j
			}
			break
		}
	}

	sec := &domain.Section{
		Kind:        m.kind,
		Title:       m.title(num, name),
		Level:       m.level,
		Order:       len(st.sections) + 1,
		ParentTitle: st.parentTitle(m.level),
		Metadata:    map[string]any{m.metaKey: metaValue(m, num, n)},
	}
	st.sections = append(st.sections, sec)

	o := &openSection{sec: sec, lines: consumed, number: num}
	o.pendingTitle = name == "" && !m.titleOnNextLine && m.kind != domain.SectionKindArticle
	st.open[m.level] = o
	st.current = o
	return last
}

func metaValue(m *marker, raw string, n int) any {
	if m.kind == domain.SectionKindChapter {
		return raw
	}
	return n
}

func (st *segState) parentTitle(level int) string {
	for l := level - 1; l >= 0; l-- {
		if o := st.open[l]; o != nil {
			return o.sec.Title
		}
	}
	return ""
}

func (st *segState) closeFrom(level int) {
	for l := len(st.open) - 1; l >= level; l-- {
		if o := st.open[l]; o != nil {
			o.close()
			st.open[l] = nil
		}
	}
	st.current = nil
	for l := level - 1; l >= 0; l-- {
		if o := st.open[l]; o != nil {
			st.current = o
			break
		}
	}
}

func (st *segState) appendLine(line string) {
	if st.phase() == phaseOutside {
		st.lead = append(st.lead, line)
		return
	}
	subItem := st.grammar.subItem != nil && st.grammar.subItem.MatchString(strings.TrimSpace(line))
	st.current.append(line, subItem)
}

// flushLead turns the lines seen before the first marker into lead sections.
func (st *segState) flushLead() {
	lead := st.grammar.lead
	first, second := st.lead, []string(nil)
	if lead.split != nil {
		for i, line := range st.lead {
			if lead.split.MatchString(line) {
				first, second = st.lead[:i], st.lead[i:]
				break
			}
		}
	}
	st.addLead(lead.kind, lead.title, first)
	st.addLead(lead.splitKind, lead.splitTitle, second)
	st.lead = nil
}

func (st *segState) addLead(kind domain.SectionKind, title string, lines []string) {
	content := strings.TrimSpace(strings.Join(lines, "\n"))
	if content == "" {
		return
	}
	st.sections = append(st.sections, &domain.Section{
		Kind:     kind,
		Title:    title,
		Content:  content,
		Level:    0,
		Order:    len(st.sections) + 1,
		Metadata: map[string]any{},
	})
}
