package docs

import (
	"fmt"
	"io"
	"strings"

	"github.com/cloo-solutions/dokrag/internal/cli"
	"github.com/cloo-solutions/dokrag/internal/domain"
	"github.com/cloo-solutions/dokrag/internal/service"
	"github.com/spf13/cobra"
)

type ingestView struct {
	DocumentID      string           `json:"document_id"`
	SourceKey       string           `json:"source_key"`
	Genre           domain.Genre     `json:"genre"`
	Status          string           `json:"status"`
	Nomor           string           `json:"nomor,omitempty"`
	Tanggal         string           `json:"tanggal,omitempty"`
	Tempat          string           `json:"tempat,omitempty"`
	Judul           string           `json:"judul,omitempty"`
	Tentang         string           `json:"tentang,omitempty"`
	Sections        int              `json:"sections"`
	Chunks          int              `json:"chunks"`
	ReusedVectors   int              `json:"reused_vectors"`
	Unchanged       bool             `json:"unchanged"`
	EmbeddingFailed bool             `json:"embedding_failed"`
	ArchivedURI     string           `json:"archived_uri,omitempty"`
	Warnings        []domain.Warning `json:"warnings"`
}

// IngestCmd creates the ingest command.
func IngestCmd(open OpenRuntime) *cobra.Command {
	var (
		genre      cli.GenreValue
		sourceKey  string
		archive    bool
		outputJSON bool
	)

	cmd := &cobra.Command{
		Use:   "ingest <path|s3://bucket/key>",
		Short: "Segment, embed and index a document",
		Long: `Reads the OCR text of one regulatory document, segments it according to
its genre, embeds every section and stores it for retrieval.

Re-ingesting the same source key replaces the stored version. Sections whose
content did not change keep their vectors.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := open()
			if err != nil {
				return err
			}
			defer rt.Close()
			return runIngest(cmd, rt, args[0], ingestOptions{
				genre:     genre.Genre,
				sourceKey: sourceKey,
				archive:   archive,
				json:      outputJSON,
			})
		},
	}

	cmd.Flags().Var(&genre, "genre", "Genre hint used when detection finds none (SKEP|SE|IK|PROSEDUR)")
	cmd.Flags().StringVar(&sourceKey, "source-key", "", "Stable document key (default: file name or s3 URI)")
	cmd.Flags().BoolVar(&archive, "archive", false, "Archive the raw text to object storage")
	cmd.Flags().BoolVar(&outputJSON, "json", false, "Output as JSON")

	return cmd
}

type ingestOptions struct {
	genre     domain.Genre
	sourceKey string
	archive   bool
	json      bool
}

func runIngest(cmd *cobra.Command, rt Runtime, source string, opts ingestOptions) error {
	ctx := cmd.Context()

	text, err := readSource(ctx, rt, source)
	if err != nil {
		return err
	}

	key := strings.TrimSpace(opts.sourceKey)
	if key == "" {
		key = defaultSourceKey(source)
	}

	var archived string
	if opts.archive {
		store, err := rt.Store(ctx)
		if err != nil {
			return err
		}
		archived, err = store.PutText(ctx, archiveKey(key), text)
		if err != nil {
			return fmt.Errorf("archive raw text: %w", err)
		}
	}

	ingester, err := rt.Ingester(ctx)
	if err != nil {
		return err
	}
	out, err := ingester.Ingest(ctx, service.IngestInput{
		SourceKey: key,
		Filename:  sourceFilename(source),
		Text:      text,
		Genre:     opts.genre,
	})
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	view := newIngestView(out, archived)
	if opts.json {
		return writeJSON(cmd.OutOrStdout(), view)
	}
	printIngest(cmd.OutOrStdout(), view)
	return nil
}

func newIngestView(out *service.IngestOutput, archived string) ingestView {
	doc := out.Document
	warnings := out.Warnings
	if warnings == nil {
		warnings = []domain.Warning{}
	}
	return ingestView{
		DocumentID:      doc.ID,
		SourceKey:       doc.SourceKey,
		Genre:           doc.Genre,
		Status:          string(doc.Status),
		Nomor:           doc.Nomor,
		Tanggal:         doc.Tanggal,
		Tempat:          doc.Tempat,
		Judul:           doc.Judul,
		Tentang:         doc.Tentang,
		Sections:        len(doc.Sections),
		Chunks:          len(out.Chunks),
		ReusedVectors:   out.ReusedVectors,
		Unchanged:       out.Unchanged,
		EmbeddingFailed: out.EmbeddingFailed,
		ArchivedURI:     archived,
		Warnings:        warnings,
	}
}

func printIngest(w io.Writer, v ingestView) {
	if v.Unchanged {
		fmt.Fprintf(w, "Unchanged: %s (%s)\n", v.SourceKey, v.DocumentID)
		return
	}

	fmt.Fprintf(w, "Ingested %s\n", v.SourceKey)
	fmt.Fprintf(w, "  ID:       %s\n", v.DocumentID)
	fmt.Fprintf(w, "  Genre:    %s (%s)\n", v.Genre, v.Genre.Label())
	fmt.Fprintf(w, "  Status:   %s\n", v.Status)
	if v.Nomor != "" {
		fmt.Fprintf(w, "  Nomor:    %s\n", v.Nomor)
	}
	if v.Tentang != "" {
		fmt.Fprintf(w, "  Tentang:  %s\n", v.Tentang)
	}
	fmt.Fprintf(w, "  Sections: %d\n", v.Sections)
	fmt.Fprintf(w, "  Chunks:   %d (reused vectors: %d)\n", v.Chunks, v.ReusedVectors)
	if v.ArchivedURI != "" {
		fmt.Fprintf(w, "  Archived: %s\n", v.ArchivedURI)
	}
	if v.EmbeddingFailed {
		fmt.Fprintln(w, "  Embedding failed; queued for backfill.")
	}
	if len(v.Warnings) > 0 {
		fmt.Fprintf(w, "  Warnings:\n")
		for _, warn := range v.Warnings {
			if warn.SectionOrder > 0 {
				fmt.Fprintf(w, "    - [%s] section %d: %s\n", warn.Code, warn.SectionOrder, warn.Message)
				continue
			}
			fmt.Fprintf(w, "    - [%s] %s\n", warn.Code, warn.Message)
		}
	}
}
