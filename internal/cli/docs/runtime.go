// Package docs implements the document commands of the dokrag CLI: ingest,
// search, segment and documents.
package docs

import (
	"context"

	"github.com/cloo-solutions/dokrag/internal/cli"
	"github.com/cloo-solutions/dokrag/internal/domain"
	"github.com/cloo-solutions/dokrag/internal/pagination"
	"github.com/cloo-solutions/dokrag/internal/repository"
	"github.com/cloo-solutions/dokrag/internal/service"
	"github.com/spf13/cobra"
)

type Ingester interface {
	Ingest(ctx context.Context, in service.IngestInput) (*service.IngestOutput, error)
}

type Searcher interface {
	Search(ctx context.Context, in service.SearchInput) (*service.SearchOutput, error)
}

type Lister interface {
	ListPage(ctx context.Context, filter service.DocumentFilter, cursor *pagination.Cursor) (*pagination.PageResult[*domain.Document], error)
}

// TextStore reads s3:// sources and archives raw text.
type TextStore interface {
	GetTextURI(ctx context.Context, uri string) (string, error)
	PutText(ctx context.Context, key, text string) (string, error)
}

// Runtime hands commands the services they need. Each accessor builds its
// dependencies lazily and fails when they are not configured.
type Runtime interface {
	Ingester(ctx context.Context) (Ingester, error)
	Searcher(ctx context.Context) (Searcher, error)
	Lister(ctx context.Context) (Lister, error)
	Store(ctx context.Context) (TextStore, error)
	Close()
}

// OpenRuntime creates the Runtime for one command invocation.
type OpenRuntime func() (Runtime, error)

// Commands returns the document commands bound to open.
func Commands(open OpenRuntime) []*cobra.Command {
	return []*cobra.Command{
		IngestCmd(open),
		SearchCmd(open),
		SegmentCmd(open),
		DocumentsCmd(open),
	}
}

// DefaultRuntime builds a Runtime from the environment configuration.
func DefaultRuntime() (Runtime, error) {
	app, err := cli.LoadApp("cli")
	if err != nil {
		return nil, err
	}
	return &appRuntime{app: app}, nil
}

type appRuntime struct {
	app *cli.App
}

func (r *appRuntime) Ingester(ctx context.Context) (Ingester, error) {
	svc, err := r.app.IngestionService(ctx)
	if err != nil {
		return nil, err
	}
	return svc, nil
}

func (r *appRuntime) Searcher(ctx context.Context) (Searcher, error) {
	svc, err := r.app.RetrievalService(ctx)
	if err != nil {
		return nil, err
	}
	return svc, nil
}

func (r *appRuntime) Lister(ctx context.Context) (Lister, error) {
	pool, err := r.app.Pool(ctx)
	if err != nil {
		return nil, err
	}
	return repository.NewDocumentRepository(pool), nil
}

func (r *appRuntime) Store(ctx context.Context) (TextStore, error) {
	svc, err := r.app.Storage(ctx)
	if err != nil {
		return nil, err
	}
	return svc, nil
}

func (r *appRuntime) Close() {
	r.app.Close()
}
