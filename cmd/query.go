package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/openshelf/enricher/internal/config"
	"github.com/openshelf/enricher/internal/coordinator"
	"github.com/openshelf/enricher/internal/engine"
	"github.com/openshelf/enricher/internal/metadata"
	"github.com/openshelf/enricher/internal/selection"
)

type queryFlags struct {
	title        string
	authors      []string
	isbn         string
	publisher    string
	language     string
	subjects     []string
	strategy     string
	maxProviders int
	exclude      []string
	required     []string
	minScore     float64
	output       string
}

func (f *queryFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.title, "title", "", "Title to search for")
	cmd.Flags().StringSliceVar(&f.authors, "author", nil, "Author to search for (repeatable)")
	cmd.Flags().StringVar(&f.isbn, "isbn", "", "ISBN to search for")
	cmd.Flags().StringVar(&f.publisher, "publisher", "", "Publisher to search for")
	cmd.Flags().StringVar(&f.language, "language", "", "Language code to search for")
	cmd.Flags().StringSliceVar(&f.subjects, "subject", nil, "Subject to search for (repeatable)")
	cmd.Flags().StringVar(&f.strategy, "strategy", "priority", "Provider selection strategy (all, priority, fastest, consensus)")
	cmd.Flags().IntVar(&f.maxProviders, "max-providers", -1, "Maximum providers to query (-1 for strategy default)")
	cmd.Flags().StringSliceVar(&f.exclude, "exclude", nil, "Provider names to exclude (repeatable)")
	cmd.Flags().StringSliceVar(&f.required, "require", nil, "Data types every provider must support (repeatable)")
	cmd.Flags().Float64Var(&f.minScore, "min-reliability", 0, "Minimum average provider reliability for required types")
	cmd.Flags().StringVar(&f.output, "output", "", "Write full results to a YAML file")
}

func (f *queryFlags) query() metadata.SearchQuery {
	return metadata.SearchQuery{
		Title:     f.title,
		Authors:   f.authors,
		ISBN:      f.isbn,
		Publisher: f.publisher,
		Language:  f.language,
		Subjects:  f.subjects,
	}
}

func (f *queryFlags) options(strategy selection.Strategy) selection.Options {
	opts := selection.DefaultOptions(strategy)
	if f.maxProviders >= 0 {
		opts.MaxProviders = f.maxProviders
	}
	opts.ExcludeProviders = f.exclude
	opts.MinReliabilityScore = f.minScore
	for _, t := range f.required {
		opts.RequiredDataTypes = append(opts.RequiredDataTypes, metadata.DataType(t))
	}
	if f.language != "" {
		opts.PreferredLanguages = []string{f.language}
	}
	return opts
}

func newQueryCmd() *cobra.Command {
	var flags queryFlags

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Search metadata providers and show the aggregated results",
		Example: `  # Search by title across all providers
  enricher query --title "The Great Gatsby"

  # ISBN lookup with the consensus strategy
  enricher query --isbn 9780743273565 --strategy consensus`,
		RunE: func(cmd *cobra.Command, args []string) error {
			query := flags.query()
			if query.IsEmpty() {
				return fmt.Errorf("at least one search criterion is required")
			}

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			eng := engine.New(cfg, prometheus.DefaultRegisterer)
			strategy := selection.Strategy(flags.strategy)
			result := eng.Query(cmd.Context(), query, strategy, flags.options(strategy))

			printQueryResult(result)

			if flags.output != "" {
				if err := writeYAML(flags.output, result); err != nil {
					return err
				}
				fmt.Printf("\nFull results written to %s\n", flags.output)
			}
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

func printQueryResult(result coordinator.QueryResult) {
	fmt.Printf("Providers queried: %d\n", len(result.Providers))
	for _, outcome := range result.Providers {
		status := fmt.Sprintf("ok, %d records", len(outcome.Records))
		if !outcome.Success {
			status = "failed: " + outcome.Error
		}
		fmt.Printf("  %-14s %-10s (%s)\n", outcome.Name, outcome.Duration.Round(time.Millisecond), status)
	}

	fmt.Printf("\nAggregated records: %d (total %s)\n", result.TotalRecords, result.TotalDuration.Round(time.Millisecond))
	for i, record := range result.AggregatedRecords {
		fmt.Printf("%3d. [%.2f] %s", i+1, record.Confidence, record.Title)
		if len(record.Authors) > 0 {
			fmt.Printf(" — %s", record.Authors[0])
		}
		if record.PublicationDate != "" {
			fmt.Printf(" (%s)", record.PublicationDate)
		}
		fmt.Printf("  [%s]\n", record.Source)
	}
}

func writeYAML(path string, value any) error {
	data, err := yaml.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
