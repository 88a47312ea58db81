package domain

import (
	"fmt"
	"time"
)

// DocumentStatus tracks a document through the ingestion pipeline.
type DocumentStatus string

const (
	DocumentStatusPending   DocumentStatus = "pending"
	DocumentStatusSegmented DocumentStatus = "segmented"
	DocumentStatusEmbedded  DocumentStatus = "embedded"
	DocumentStatusIndexed   DocumentStatus = "indexed"
	DocumentStatusCleaned   DocumentStatus = "cleaned"
	DocumentStatusFailed    DocumentStatus = "failed"
)

var documentTransitions = map[DocumentStatus][]DocumentStatus{
	DocumentStatusPending:   {DocumentStatusSegmented, DocumentStatusFailed},
	DocumentStatusSegmented: {DocumentStatusEmbedded, DocumentStatusCleaned, DocumentStatusFailed},
	DocumentStatusEmbedded:  {DocumentStatusIndexed, DocumentStatusFailed},
	DocumentStatusCleaned:   {DocumentStatusEmbedded, DocumentStatusIndexed, DocumentStatusFailed},
	DocumentStatusIndexed:   {},
	DocumentStatusFailed:    {},
}

// CanTransitionTo reports whether moving from s to next is allowed.
func (s DocumentStatus) CanTransitionTo(next DocumentStatus) bool {
	for _, allowed := range documentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Searchable reports whether retrieval may return chunks of a document in this status.
func (s DocumentStatus) Searchable() bool {
	return s == DocumentStatusIndexed
}

// ValidateDocumentStatus validates a DocumentStatus value
func ValidateDocumentStatus(s DocumentStatus) error {
	if _, ok := documentTransitions[s]; !ok {
		return ErrInvalidDocumentStatus
	}
	return nil
}

// Document is one ingested regulatory file together with its segmentation.
type Document struct {
	ID        string
	SourceKey string
	Filename  string
	Genre     Genre
	Nomor     string
	Tanggal   string
	Judul     string
	Tentang   string
	Tempat    string
	RawText   string
	CleanText string
	Status    DocumentStatus
	Warnings  []Warning
	Sections  []*Section
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Transition moves the document to next, rejecting moves the lifecycle forbids.
func (d *Document) Transition(next DocumentStatus) error {
	if !d.Status.CanTransitionTo(next) {
		return NewDomainErrorWithCause(ErrCodeValidation, ErrInvalidStatusTransition.Message,
			fmt.Errorf("%s -> %s", d.Status, next))
	}
	d.Status = next
	return nil
}

// AddWarning records a non-fatal condition.
func (d *Document) AddWarning(w Warning) {
	d.Warnings = append(d.Warnings, w)
}

// DisplayTitle prefers the subject line, then the title, then the file name.
func (d *Document) DisplayTitle() string {
	switch {
	case d.Tentang != "":
		return d.Tentang
	case d.Judul != "":
		return d.Judul
	}
	return d.Filename
}

// ValidateDocument validates a Document instance
func ValidateDocument(d *Document) error {
	if d == nil {
		return fmt.Errorf("document cannot be nil")
	}
	if d.ID == "" {
		return fmt.Errorf("document ID is required")
	}
	if d.SourceKey == "" {
		return fmt.Errorf("document SourceKey is required")
	}
	if err := ValidateGenre(d.Genre); err != nil {
		return fmt.Errorf("document Genre is invalid: %w", err)
	}
	if err := ValidateDocumentStatus(d.Status); err != nil {
		return fmt.Errorf("document Status is invalid: %s", d.Status)
	}
	return nil
}
