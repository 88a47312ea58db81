package docs

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cloo-solutions/dokrag/internal/domain"
	"github.com/cloo-solutions/dokrag/internal/service"
	"github.com/spf13/cobra"
)

const snippetRunes = 160

// SearchCmd creates the search command.
func SearchCmd(open OpenRuntime) *cobra.Command {
	var (
		limit      int
		threshold  float64
		timeout    time.Duration
		outputJSON bool
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search indexed documents",
		Long: `Runs hybrid search over the indexed sections: full-text rank and vector
similarity are fused and filtered by the similarity threshold. When the
hybrid path yields nothing or fails, results come from vector search alone.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := open()
			if err != nil {
				return err
			}
			defer rt.Close()

			searcher, err := rt.Searcher(cmd.Context())
			if err != nil {
				return err
			}
			in := service.SearchInput{
				Query:   strings.Join(args, " "),
				Limit:   limit,
				Timeout: timeout,
			}
			if cmd.Flags().Changed("threshold") {
				in.Threshold = service.Threshold(threshold)
			}
			out, err := searcher.Search(cmd.Context(), in)
			if err != nil {
				return fmt.Errorf("search failed: %w", err)
			}

			if outputJSON {
				return writeJSON(cmd.OutOrStdout(), out)
			}
			printSearch(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of results (default from DOKRAG_SEARCH_LIMIT)")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "Minimum vector similarity, 0 disables the floor (default from DOKRAG_SIMILARITY_THRESHOLD)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Hybrid search budget (default from DOKRAG_SEARCH_TIMEOUT)")
	cmd.Flags().BoolVar(&outputJSON, "json", false, "Output as JSON")

	return cmd
}

func printSearch(w io.Writer, out *service.SearchOutput) {
	switch out.Mode {
	case service.SearchModeEmptyQuery:
		fmt.Fprintln(w, "Empty query.")
		return
	case service.SearchModeUnavailable:
		fmt.Fprintf(w, "Search unavailable: %s\n", out.FallbackReason)
		return
	case service.SearchModeVectorFallback:
		fmt.Fprintf(w, "Vector-only results (%s)\n", out.FallbackReason)
	}

	if len(out.Hits) == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}

	fmt.Fprintf(w, "Found %d results:\n\n", len(out.Hits))
	for i, hit := range out.Hits {
		fmt.Fprintf(w, "%d. %s (%.3f)\n", i+1, hitTitle(hit), hit.FusedScore)
		if line := hitReference(hit); line != "" {
			fmt.Fprintf(w, "   %s\n", line)
		}
		fmt.Fprintf(w, "   %s\n", snippet(hit.Content, snippetRunes))
		fmt.Fprintf(w, "   lexical %.3f  vector %.3f  chunk %d of %s\n",
			hit.LexicalScore, hit.VectorSimilarity, hit.ChunkID, hit.DocumentID)
		if i < len(out.Hits)-1 {
			fmt.Fprintln(w, strings.Repeat("-", 40))
		}
	}
}

func hitTitle(hit domain.RetrievalHit) string {
	if hit.Judul != "" {
		return hit.Judul
	}
	if title, ok := hit.Metadata["section_title"].(string); ok && title != "" {
		return title
	}
	return hit.Filename
}

func hitReference(hit domain.RetrievalHit) string {
	var parts []string
	if hit.Genre != "" {
		parts = append(parts, string(hit.Genre))
	}
	if hit.Nomor != "" {
		parts = append(parts, hit.Nomor)
	}
	if hit.Tanggal != "" {
		parts = append(parts, hit.Tanggal)
	}
	if title, ok := hit.Metadata["section_title"].(string); ok && title != "" && title != hit.Judul {
		parts = append(parts, title)
	}
	return strings.Join(parts, " | ")
}
