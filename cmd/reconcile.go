package cmd

import (
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/openshelf/enricher/internal/config"
	"github.com/openshelf/enricher/internal/engine"
	"github.com/openshelf/enricher/internal/reconcile"
	"github.com/openshelf/enricher/internal/selection"
)

func newReconcileCmd() *cobra.Command {
	var flags queryFlags

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Query providers and merge their answers into one record",
		Long: `Reconcile fans the search out to the selected providers, then merges the
raw records field by field into a single preview record with per-field
confidence, contributing sources, reasoning, and a conflict summary.`,
		Example: `  # Reconcile metadata for an ISBN using the consensus strategy
  enricher reconcile --isbn 9780743273565 --strategy consensus

  # Save the full preview for review tooling
  enricher reconcile --title "Dune" --author "Frank Herbert" --output preview.yaml`,
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
			queryResult := eng.Query(cmd.Context(), query, strategy, flags.options(strategy))

			if queryResult.TotalRecords == 0 {
				printQueryResult(queryResult)
				return fmt.Errorf("no records to reconcile")
			}

			result := eng.Reconcile(queryResult.AggregatedRecords)
			printReconcileResult(result)

			if flags.output != "" {
				if err := writeYAML(flags.output, result); err != nil {
					return err
				}
				fmt.Printf("\nFull preview written to %s\n", flags.output)
			}
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

func printReconcileResult(result reconcile.Result) {
	printField := func(name, value string, confidence float64, reasoning string) {
		if value == "" {
			return
		}
		fmt.Printf("%-17s [%.2f] %s\n", name, confidence, value)
		fmt.Printf("%17s        %s\n", "", reasoning)
	}

	printField("Title:", result.Title.Value, result.Title.Confidence, result.Title.Reasoning)
	if len(result.Authors.Value) > 0 {
		printField("Authors:", strings.Join(result.Authors.Value, ", "), result.Authors.Confidence, result.Authors.Reasoning)
	}
	printField("Published:", result.PublicationDate.Value.Canonical(), result.PublicationDate.Confidence, result.PublicationDate.Reasoning)
	printField("Publisher:", result.Publisher.Value, result.Publisher.Confidence, result.Publisher.Reasoning)
	printField("Language:", result.Language.Value, result.Language.Confidence, result.Language.Reasoning)

	if len(result.Identifiers.Value) > 0 {
		ids := make([]string, 0, len(result.Identifiers.Value))
		for _, id := range result.Identifiers.Value {
			ids = append(ids, string(id.Type)+":"+id.Normalized)
		}
		printField("Identifiers:", strings.Join(ids, ", "), result.Identifiers.Confidence, result.Identifiers.Reasoning)
	}
	if len(result.Subjects.Value) > 0 {
		subjects := make([]string, 0, len(result.Subjects.Value))
		for _, s := range result.Subjects.Value {
			subjects = append(subjects, s.Normalized)
		}
		printField("Subjects:", strings.Join(subjects, ", "), result.Subjects.Confidence, result.Subjects.Reasoning)
	}

	summary := result.Summary
	fmt.Printf("\nConflicts: %d total (%d auto-resolvable, %d manual), impact %.2f\n",
		summary.Total, len(summary.AutoResolvable), len(summary.ManualConflicts), summary.OverallScore)
	for _, recommendation := range summary.Recommendations {
		fmt.Printf("  - %s\n", recommendation)
	}
}
