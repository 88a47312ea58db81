package repository

import (
	"context"
	"fmt"

	"github.com/cloo-solutions/dokrag/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SectionRepository struct {
	db dbtx
}

func NewSectionRepository(pool *pgxpool.Pool) *SectionRepository {
	return &SectionRepository{db: pool}
}

func NewSectionRepositoryWithTx(tx pgx.Tx) *SectionRepository {
	return &SectionRepository{db: tx}
}

// CreateBatch inserts the sections in order, so parents land before children.
func (r *SectionRepository) CreateBatch(ctx context.Context, documentID string, sections []*domain.Section) error {
	if len(sections) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, s := range sections {
		md := s.Metadata
		if md == nil {
			md = map[string]any{}
		}
		batch.Queue(
			`INSERT INTO sections (id, document_id, kind, title, content, level, section_order, parent_id, metadata)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			s.ID, documentID, s.Kind, s.Title, s.Content, s.Level, s.Order, nullableString(s.ParentID), md,
		)
	}

	br := r.db.SendBatch(ctx, batch)
	defer br.Close()
	for _, s := range sections {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("insert section %d: %w", s.Order, err)
		}
	}
	return nil
}

// ListByDocument returns the sections in document order. ParentOrder and
// ParentTitle are rebuilt from parent_id.
func (r *SectionRepository) ListByDocument(ctx context.Context, documentID string) ([]*domain.Section, error) {
	rows, err := r.db.Query(ctx,
		`SELECT s.id, s.kind, s.title, s.content, s.level, s.section_order, s.parent_id, s.metadata,
		        p.section_order, p.title
		 FROM sections s
		 LEFT JOIN sections p ON p.id = s.parent_id
		 WHERE s.document_id = $1
		 ORDER BY s.section_order`,
		documentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sections []*domain.Section
	for rows.Next() {
		var s domain.Section
		var parentID, parentTitle pgtype.Text
		var parentOrder pgtype.Int4
		if err := rows.Scan(&s.ID, &s.Kind, &s.Title, &s.Content, &s.Level, &s.Order, &parentID, &s.Metadata,
			&parentOrder, &parentTitle); err != nil {
			return nil, err
		}
		s.ParentID = textValue(parentID)
		s.ParentTitle = textValue(parentTitle)
		if parentOrder.Valid {
			s.ParentOrder = int(parentOrder.Int32)
		}
		sections = append(sections, &s)
	}
	return sections, rows.Err()
}
