package service

import (
	"encoding/hex"
	"strings"

	"github.com/cloo-solutions/dokrag/internal/domain"
	"github.com/cloo-solutions/dokrag/internal/parser"
	"github.com/go-crypt/x/blake2b"
)

// SignatureTitle names the section created for a signature block when the
// body produced no section to carry it.
const SignatureTitle = "Tanda Tangan"

// ContentHash is the hex BLAKE2b-256 digest of the trimmed content.
func ContentHash(content string) string {
	sum := blake2b.Sum256([]byte(strings.TrimSpace(content)))
	return hex.EncodeToString(sum[:])
}

// FinalizeSections re-attaches the blocks the parser cut from the body: the
// signature goes to the end of the last section and the appendix becomes its
// own trailing section. Orders stay contiguous.
func FinalizeSections(res *parser.Result) []*domain.Section {
	sections := append([]*domain.Section(nil), res.Sections...)

	if sig := strings.TrimSpace(res.Signature); sig != "" {
		if n := len(sections); n > 0 {
			last := sections[n-1]
			last.Content = strings.TrimSpace(last.Content + "\n\n" + sig)
			if last.Metadata == nil {
				last.Metadata = map[string]any{}
			}
			last.Metadata["has_signature"] = true
		} else {
			sections = append(sections, &domain.Section{
				Kind:     domain.SectionKindSignature,
				Title:    SignatureTitle,
				Content:  sig,
				Order:    1,
				Metadata: map[string]any{},
			})
		}
	}

	if app := strings.TrimSpace(res.Appendix); app != "" {
		sections = append(sections, &domain.Section{
			Kind:     domain.SectionKindAppendix,
			Title:    res.AppendixTitle(),
			Content:  app,
			Level:    0,
			Order:    len(sections) + 1,
			Metadata: map[string]any{},
		})
	}
	return sections
}

// AssignSectionIDs gives every section an id and maps resolved parent orders
// to parent ids.
func AssignSectionIDs(sections []*domain.Section, ids UUIDGenerator) {
	byOrder := make(map[int]string, len(sections))
	for _, sec := range sections {
		sec.ID = ids.NewString()
		byOrder[sec.Order] = sec.ID
		if sec.HasParent() {
			sec.ParentID = byOrder[sec.ParentOrder]
		}
	}
}

// AssembleChunks projects every non-empty section of doc into a chunk with a
// 1-based chunk id, a content hash and the metadata bag.
func AssembleChunks(doc *domain.Document, ids UUIDGenerator) []*domain.Chunk {
	chunks := make([]*domain.Chunk, 0, len(doc.Sections))
	for _, sec := range doc.Sections {
		content := strings.TrimSpace(sec.Content)
		if content == "" {
			continue
		}
		chunks = append(chunks, &domain.Chunk{
			ID:           ids.NewString(),
			DocumentID:   doc.ID,
			SectionID:    sec.ID,
			SectionOrder: sec.Order,
			ChunkID:      len(chunks) + 1,
			Content:      content,
			ContentHash:  ContentHash(content),
			Metadata:     chunkMetadata(doc, sec),
		})
	}
	return chunks
}

func chunkMetadata(doc *domain.Document, sec *domain.Section) map[string]any {
	md := make(map[string]any, len(sec.Metadata)+7)
	for k, v := range sec.Metadata {
		md[k] = v
	}
	md["section_type"] = string(sec.Kind)
	md["section_title"] = sec.Title
	md["level"] = sec.Level
	md["order"] = sec.Order
	md["genre"] = string(doc.Genre)
	if sec.ParentTitle != "" {
		md["parent_title"] = sec.ParentTitle
	}
	if doc.Nomor != "" {
		md["nomor"] = doc.Nomor
	}
	return md
}
