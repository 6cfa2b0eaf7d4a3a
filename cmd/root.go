package cmd

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "enricher",
		Short: "Book metadata discovery and reconciliation engine",
		Long: `Enricher queries multiple external metadata sources concurrently,
reconciles their disagreeing answers into one trustworthy record with
confidence scores and conflict explanations, and screens proposed entries
against an existing catalog for duplicates.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: ./enricher.yaml if present)")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	// Add subcommands
	cmd.AddCommand(newQueryCmd())
	cmd.AddCommand(newReconcileCmd())
	cmd.AddCommand(newDedupeCmd())
	cmd.AddCommand(newProvidersCmd())

	return cmd
}
