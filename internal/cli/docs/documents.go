package docs

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/cloo-solutions/dokrag/internal/cli"
	"github.com/cloo-solutions/dokrag/internal/domain"
	"github.com/cloo-solutions/dokrag/internal/pagination"
	"github.com/cloo-solutions/dokrag/internal/service"
	"github.com/spf13/cobra"
)

const titleRunes = 60

type documentView struct {
	ID        string           `json:"id"`
	SourceKey string           `json:"source_key"`
	Filename  string           `json:"filename,omitempty"`
	Genre     domain.Genre     `json:"genre"`
	Status    string           `json:"status"`
	Nomor     string           `json:"nomor,omitempty"`
	Title     string           `json:"title,omitempty"`
	Warnings  []domain.Warning `json:"warnings,omitempty"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// DocumentsCmd creates the documents command.
func DocumentsCmd(open OpenRuntime) *cobra.Command {
	var (
		status     cli.StatusValue
		genre      cli.GenreValue
		limit      int
		cursor     string
		outputJSON bool
	)

	cmd := &cobra.Command{
		Use:     "documents",
		Aliases: []string{"ls"},
		Short:   "List ingested documents",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := open()
			if err != nil {
				return err
			}
			defer rt.Close()

			after, err := pagination.DecodeCursor(cursor)
			if err != nil {
				return err
			}

			lister, err := rt.Lister(cmd.Context())
			if err != nil {
				return err
			}
			page, err := lister.ListPage(cmd.Context(), service.DocumentFilter{
				Status: status.Status,
				Genre:  genre.Genre,
				Limit:  limit,
			}, after)
			if err != nil {
				return fmt.Errorf("list failed: %w", err)
			}

			views := make([]documentView, 0, len(page.Items))
			for _, doc := range page.Items {
				views = append(views, documentView{
					ID:        doc.ID,
					SourceKey: doc.SourceKey,
					Filename:  doc.Filename,
					Genre:     doc.Genre,
					Status:    string(doc.Status),
					Nomor:     doc.Nomor,
					Title:     doc.DisplayTitle(),
					Warnings:  doc.Warnings,
					UpdatedAt: doc.UpdatedAt,
				})
			}

			result := pagination.PageResult[documentView]{Items: views, Cursor: page.Cursor, HasMore: page.HasMore}
			if outputJSON {
				return writeJSON(cmd.OutOrStdout(), result)
			}
			return printDocuments(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().Var(&status, "status", "Filter by status (pending|segmented|embedded|indexed|cleaned|failed)")
	cmd.Flags().Var(&genre, "genre", "Filter by genre (SKEP|SE|IK|PROSEDUR)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum number of documents")
	cmd.Flags().StringVar(&cursor, "cursor", "", "Pagination cursor from previous output")
	cmd.Flags().BoolVar(&outputJSON, "json", false, "Output as JSON")

	return cmd
}

func printDocuments(w io.Writer, page pagination.PageResult[documentView]) error {
	if len(page.Items) == 0 {
		fmt.Fprintln(w, "No documents found.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tGENRE\tSTATUS\tNOMOR\tTITLE\tWARNINGS")
	for _, d := range page.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\n",
			d.ID, d.Genre, d.Status, orDash(d.Nomor), snippet(orDash(d.Title), titleRunes), len(d.Warnings))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if page.HasMore {
		fmt.Fprintf(w, "\nMore documents available. Use --cursor %s\n", page.Cursor)
	}
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
