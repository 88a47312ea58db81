package main

import (
	"fmt"
	"os"

	"github.com/cloo-solutions/dokrag/internal/cli"
	"github.com/cloo-solutions/dokrag/internal/cli/docs"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "dokrag",
		Short: "dokrag - segmentation and hybrid retrieval for regulatory documents",
		Long: `dokrag segments OCR text of Indonesian regulatory documents (SKEP, SE, IK,
PROSEDUR) into sections, indexes them and answers hybrid searches.

Environment variables:
  DOKRAG_DATABASE_URL     Postgres connection string (required)
  DOKRAG_OPENAI_API_KEY   API key of the embedding provider
  DOKRAG_S3_ENDPOINT      Object storage for s3:// sources and --archive`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(docs.Commands(docs.DefaultRuntime)...)

	if handled, err := cli.HandleHelpJSON(rootCmd, os.Args[1:], os.Stdout); handled {
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
