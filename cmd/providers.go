package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/openshelf/enricher/internal/config"
	"github.com/openshelf/enricher/internal/engine"
	"github.com/openshelf/enricher/internal/metadata"
)

func newProvidersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List registered metadata providers and their capabilities",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			eng := engine.New(cfg, nil)
			registry := eng.Registry()

			types := []metadata.DataType{
				metadata.DataTypeTitle, metadata.DataTypeAuthors, metadata.DataTypeISBN,
				metadata.DataTypePublisher, metadata.DataTypePublicationDate,
				metadata.DataTypeDescription, metadata.DataTypeSubjects,
			}

			for _, name := range registry.Names() {
				p, err := registry.Get(name)
				if err != nil {
					continue
				}
				fmt.Printf("%s (priority %d, timeout %s)\n", p.Name(), p.Priority(), p.Timeout())
				fmt.Printf("  languages: %s\n", strings.Join(p.SupportedLanguages(), ", "))
				fmt.Printf("  reliability:")
				for _, t := range types {
					if p.SupportsDataType(t) {
						fmt.Printf(" %s=%.2f", t, p.ReliabilityScore(t))
					}
				}
				fmt.Println()
			}
			return nil
		},
	}
}
