package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openshelf/enricher/internal/catalog"
	"github.com/openshelf/enricher/internal/config"
	"github.com/openshelf/enricher/internal/dupdetect"
)

func newDedupeCmd() *cobra.Command {
	var (
		catalogPath string
		title       string
		authors     []string
		isbn        []string
		pubDate     string
		publisher   string
		series      string
		output      string
	)

	cmd := &cobra.Command{
		Use:   "dedupe",
		Short: "Screen a candidate entry against an existing catalog export",
		Long: `Dedupe compares a proposed catalog entry against every entry in a catalog
export (.parquet or .jsonl) using weighted multi-field similarity, and
reports matches with a classification and a recommended action.`,
		Example: `  # Screen a candidate against a JSONL export
  enricher dedupe --catalog export.jsonl --title "The Great Gatsby" \
    --author "F. Scott Fitzgerald" --isbn 9780743273565`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if title == "" && len(isbn) == 0 {
				return fmt.Errorf("a title or ISBN is required")
			}

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			existing, err := catalog.NewLoader(catalogPath).Load()
			if err != nil {
				return err
			}

			candidate := catalog.Entry{
				Title:           title,
				Authors:         authors,
				ISBN:            isbn,
				PublicationDate: pubDate,
				Publisher:       publisher,
				Series:          series,
			}

			detector := dupdetect.NewDetector(cfg.Duplicates)
			matches := detector.DetectDuplicates(candidate, existing)

			if len(matches) == 0 {
				fmt.Printf("No matches above the similarity floor among %d entries; safe to add as new.\n", len(existing))
				return nil
			}

			fmt.Printf("Found %d potential matches among %d entries:\n\n", len(matches), len(existing))
			for i, match := range matches {
				fmt.Printf("%3d. [%.2f] %-18s %s — %s\n", i+1, match.Similarity, match.MatchType, match.Entry.Title, match.Recommendation)
				fmt.Printf("     %s\n", match.Explanation)
			}

			if output != "" {
				if err := writeYAML(output, matches); err != nil {
					return err
				}
				fmt.Printf("\nFull matches written to %s\n", output)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&catalogPath, "catalog", "", "Path to catalog export (.parquet or .jsonl)")
	cmd.Flags().StringVar(&title, "title", "", "Candidate title")
	cmd.Flags().StringSliceVar(&authors, "author", nil, "Candidate author (repeatable)")
	cmd.Flags().StringSliceVar(&isbn, "isbn", nil, "Candidate ISBN (repeatable)")
	cmd.Flags().StringVar(&pubDate, "date", "", "Candidate publication date")
	cmd.Flags().StringVar(&publisher, "publisher", "", "Candidate publisher")
	cmd.Flags().StringVar(&series, "series", "", "Candidate series")
	cmd.Flags().StringVar(&output, "output", "", "Write full matches to a YAML file")
	_ = cmd.MarkFlagRequired("catalog")

	return cmd
}
