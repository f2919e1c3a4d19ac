package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/nextlevelbuilder/rigbot/internal/catalog"
	"github.com/nextlevelbuilder/rigbot/internal/config"
	"github.com/nextlevelbuilder/rigbot/internal/pricing"
)

func catalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage the component price catalog",
	}
	cmd.AddCommand(catalogImportCmd())
	cmd.AddCommand(catalogSearchCmd())
	cmd.AddCommand(catalogRefreshCmd())
	return cmd
}

func openCatalog() (*catalog.Store, *config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	cat, err := catalog.Open(cfg.DB.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open catalog: %w", err)
	}
	return cat, cfg, nil
}

func catalogImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import [csv-file]",
		Short: "Import components from a semicolon-separated CSV file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, cfg, err := openCatalog()
			if err != nil {
				return err
			}
			defer cat.Close()

			path := cfg.Catalog.CSVPath
			if len(args) > 0 {
				path = args[0]
			}

			imported, skipped, err := cat.ImportCSV(cmd.Context(), path)
			if err != nil {
				return err
			}
			total, err := cat.Count(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Imported %d components (%d rows skipped), %d in catalog\n", imported, skipped, total)
			return nil
		},
	}
}

func catalogSearchCmd() *cobra.Command {
	var kind string
	var limit int
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search the catalog the way the bot does",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, _, err := openCatalog()
			if err != nil {
				return err
			}
			defer cat.Close()

			matches, err := cat.Search(cmd.Context(), args[0], catalog.SearchOptions{
				Kind:  kind,
				Limit: limit,
			})
			if err != nil {
				return err
			}
			if len(matches) == 0 {
				fmt.Println("No matches.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SCORE\tTYPE\tNAME\tPRICE")
			for _, m := range matches {
				fmt.Fprintf(w, "%d\t%s\t%s\t$%d\n", m.Score, m.Kind, m.Name, m.Price)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "restrict to a component type (cpu, ram, gpu, storage, motherboard)")
	cmd.Flags().IntVar(&limit, "limit", 0, "max results (0 = all)")
	return cmd
}

func catalogRefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Run one price refresh pass over sourced entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, cfg, err := openCatalog()
			if err != nil {
				return err
			}
			defer cat.Close()

			scraper := pricing.NewScraper(cfg.Refresh.PriceSelector,
				time.Duration(cfg.Refresh.TimeoutMs)*time.Millisecond)
			refresher := pricing.NewRefresher(cat, scraper,
				time.Duration(cfg.Refresh.MinDelayMs)*time.Millisecond,
				time.Duration(cfg.Refresh.MaxDelayMs)*time.Millisecond,
				cfg.Refresh.Divisors)

			updated, err := refresher.Run(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Updated %d prices\n", updated)
			return nil
		},
	}
}
