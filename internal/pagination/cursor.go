// Package pagination implements keyset cursors over (timestamp, id) ordered
// listings.
package pagination

import (
	"encoding/base64"
	"errors"
	"strings"
	"time"
)

// Cursor is the position after the last item of a page.
type Cursor struct {
	LastID    string
	Timestamp time.Time
}

// PageResult represents a paginated result set
type PageResult[T any] struct {
	Items   []T    `json:"items"`
	Cursor  string `json:"cursor,omitempty"`
	HasMore bool   `json:"has_more"`
}

var (
	ErrInvalidCursor = errors.New("invalid cursor format")
)

// EncodeCursor creates a base64-encoded cursor from the last item ID and timestamp
func EncodeCursor(lastID string, timestamp time.Time) string {
	if lastID == "" {
		return ""
	}
	raw := lastID + "|" + timestamp.UTC().Format(time.RFC3339Nano)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor decodes a cursor produced by EncodeCursor. An empty string
// decodes to nil, meaning the first page.
func DecodeCursor(cursor string) (*Cursor, error) {
	if cursor == "" {
		return nil, nil
	}

	decoded, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return nil, ErrInvalidCursor
	}

	id, ts, ok := strings.Cut(string(decoded), "|")
	if !ok || id == "" {
		return nil, ErrInvalidCursor
	}

	timestamp, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return nil, ErrInvalidCursor
	}

	return &Cursor{
		LastID:    id,
		Timestamp: timestamp,
	}, nil
}

// NewPage builds a page from a query that fetched up to limit+1 rows. The
// extra row only signals that another page exists.
func NewPage[T any](items []T, limit int, key func(T) (string, time.Time)) *PageResult[T] {
	page := &PageResult[T]{Items: items}
	if len(items) > limit {
		page.Items = items[:limit]
		page.HasMore = true
	}
	if page.Items == nil {
		page.Items = []T{}
	}
	if page.HasMore && len(page.Items) > 0 {
		page.Cursor = EncodeCursor(key(page.Items[len(page.Items)-1]))
	}
	return page
}
