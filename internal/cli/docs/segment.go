package docs

import (
	"github.com/cloo-solutions/dokrag/internal/cli"
	"github.com/cloo-solutions/dokrag/internal/domain"
	"github.com/cloo-solutions/dokrag/internal/parser"
	"github.com/cloo-solutions/dokrag/internal/service"
	"github.com/cloo-solutions/dokrag/internal/storage"
	"github.com/spf13/cobra"
)

type sectionView struct {
	Order       int            `json:"order"`
	Kind        string         `json:"kind"`
	Title       string         `json:"title"`
	Level       int            `json:"level"`
	ParentOrder int            `json:"parent_order,omitempty"`
	ParentTitle string         `json:"parent_title,omitempty"`
	Metadata    map[string]any `json:"metadata"`
	Content     string         `json:"content,omitempty"`
}

type segmentView struct {
	Genre    domain.Genre     `json:"genre"`
	Detected domain.Genre     `json:"detected"`
	Metadata parser.Metadata  `json:"metadata"`
	Sections []sectionView    `json:"sections"`
	Warnings []domain.Warning `json:"warnings"`
}

// SegmentCmd creates the segment command. It previews the segmentation of a
// document without storing anything.
func SegmentCmd(open OpenRuntime) *cobra.Command {
	var (
		genre       cli.GenreValue
		withContent bool
	)

	cmd := &cobra.Command{
		Use:   "segment <path|s3://bucket/key>",
		Short: "Preview the segmentation of a document as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Local files are parsed without loading any configuration.
			var rt Runtime
			if storage.IsS3URI(args[0]) {
				var err error
				if rt, err = open(); err != nil {
					return err
				}
				defer rt.Close()
			}

			text, err := readSource(cmd.Context(), rt, args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), segment(text, genre.Genre, withContent))
		},
	}

	cmd.Flags().Var(&genre, "genre", "Genre hint used when detection finds none (SKEP|SE|IK|PROSEDUR)")
	cmd.Flags().BoolVar(&withContent, "content", true, "Include section content")

	return cmd
}

func segment(text string, hint domain.Genre, withContent bool) segmentView {
	res := parser.Parse(text, hint)
	sections := service.FinalizeSections(res)

	view := segmentView{
		Genre:    res.Genre,
		Detected: res.Detected,
		Metadata: res.Metadata,
		Sections: make([]sectionView, 0, len(sections)),
		Warnings: res.Warnings,
	}
	if view.Warnings == nil {
		view.Warnings = []domain.Warning{}
	}
	for _, sec := range sections {
		sv := sectionView{
			Order:       sec.Order,
			Kind:        string(sec.Kind),
			Title:       sec.Title,
			Level:       sec.Level,
			ParentOrder: sec.ParentOrder,
			ParentTitle: sec.ParentTitle,
			Metadata:    sec.Metadata,
		}
		if withContent {
			sv.Content = sec.Content
		}
		view.Sections = append(view.Sections, sv)
	}
	return view
}
