package repository

import (
	"context"
	"errors"
	"time"

	"github.com/cloo-solutions/dokrag/internal/domain"
	"github.com/cloo-solutions/dokrag/internal/pagination"
	"github.com/cloo-solutions/dokrag/internal/service"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const defaultListLimit = 100

type DocumentRepository struct {
	db dbtx
}

func NewDocumentRepository(pool *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{db: pool}
}

func NewDocumentRepositoryWithTx(tx pgx.Tx) *DocumentRepository {
	return &DocumentRepository{db: tx}
}

func (r *DocumentRepository) Create(ctx context.Context, d *domain.Document) error {
	warnings := d.Warnings
	if warnings == nil {
		warnings = []domain.Warning{}
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO documents (id, source_key, filename, genre, nomor, tanggal, judul, tentang, tempat,
		                        raw_text, clean_text, status, warnings, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		d.ID, d.SourceKey, d.Filename, d.Genre,
		nullableString(d.Nomor), nullableString(d.Tanggal), nullableString(d.Judul),
		nullableString(d.Tentang), nullableString(d.Tempat),
		d.RawText, d.CleanText, d.Status, warnings, d.CreatedAt, d.UpdatedAt,
	)
	return err
}

const documentColumns = `id, source_key, filename, genre, nomor, tanggal, judul, tentang, tempat,
	status, warnings, created_at, updated_at`

// scanDocument reads documentColumns, optionally followed by the two text columns.
func scanDocument(row pgx.Row, withText bool) (*domain.Document, error) {
	var d domain.Document
	var nomor, tanggal, judul, tentang, tempat pgtype.Text
	dest := []any{
		&d.ID, &d.SourceKey, &d.Filename, &d.Genre,
		&nomor, &tanggal, &judul, &tentang, &tempat,
		&d.Status, &d.Warnings, &d.CreatedAt, &d.UpdatedAt,
	}
	if withText {
		dest = append(dest, &d.RawText, &d.CleanText)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	d.Nomor = textValue(nomor)
	d.Tanggal = textValue(tanggal)
	d.Judul = textValue(judul)
	d.Tentang = textValue(tentang)
	d.Tempat = textValue(tempat)
	return &d, nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	d, err := scanDocument(r.db.QueryRow(ctx,
		`SELECT `+documentColumns+`, raw_text, clean_text FROM documents WHERE id = $1`, id,
	), true)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrDocumentNotFound
	}
	return d, err
}

func (r *DocumentRepository) GetBySourceKey(ctx context.Context, sourceKey string) (*domain.Document, error) {
	d, err := scanDocument(r.db.QueryRow(ctx,
		`SELECT `+documentColumns+`, raw_text, clean_text FROM documents WHERE source_key = $1`, sourceKey,
	), true)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrDocumentNotFound
	}
	return d, err
}

// GetMany returns the documents with the given ids keyed by id, without text.
// Missing ids are simply absent from the map.
func (r *DocumentRepository) GetMany(ctx context.Context, ids []string) (map[string]*domain.Document, error) {
	out := make(map[string]*domain.Document, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.db.Query(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE id = ANY($1)`, ids,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		d, err := scanDocument(rows, false)
		if err != nil {
			return nil, err
		}
		out[d.ID] = d
	}
	return out, rows.Err()
}

func (r *DocumentRepository) List(ctx context.Context, filter service.DocumentFilter) ([]*domain.Document, error) {
	page, err := r.ListPage(ctx, filter, nil)
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

// ListPage lists documents newest first, resuming after cursor when set.
func (r *DocumentRepository) ListPage(ctx context.Context, filter service.DocumentFilter, cursor *pagination.Cursor) (*pagination.PageResult[*domain.Document], error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	var afterAt, afterID any
	if cursor != nil {
		afterAt, afterID = cursor.Timestamp, cursor.LastID
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+documentColumns+`
		 FROM documents
		 WHERE ($1 = '' OR status = $1) AND ($2 = '' OR genre = $2)
		   AND ($3::timestamptz IS NULL OR (created_at, id) < ($3, $4::uuid))
		 ORDER BY created_at DESC, id DESC
		 LIMIT $5`,
		string(filter.Status), string(filter.Genre), afterAt, afterID, limit+1,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*domain.Document
	for rows.Next() {
		d, err := scanDocument(rows, false)
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return pagination.NewPage(docs, limit, func(d *domain.Document) (string, time.Time) {
		return d.ID, d.CreatedAt
	}), nil
}

func (r *DocumentRepository) UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE documents SET status = $1, updated_at = $2 WHERE id = $3`,
		status, time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

// Delete removes a document; sections, chunks and jobs go with it.
func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}
