package commands

import (
	"fmt"
	"os"
	"time"

	"giftscout-backend/lib/scrapers/peek"
	"giftscout-backend/services/search"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	searchCeiling     int
	searchLimit       int
	searchBaseUrl     string
	searchConcurrency int
)

func init() {
	searchCmd.Flags().IntVar(&searchCeiling, "ceiling", 1100, "maximum price in stars")
	searchCmd.Flags().IntVar(&searchLimit, "limit", search.MaxLimit, "maximum number of results (up to 15)")
	searchCmd.Flags().StringVar(&searchBaseUrl, "base-url", peek.DefaultBaseUrl, "marketplace base url")
	searchCmd.Flags().IntVar(&searchConcurrency, "concurrency", search.DefaultConcurrency, "confirmation worker pool width")
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Runs one marketplace search and prints the confirmed listings.",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := peek.NewClient(peek.ClientOptions{BaseUrl: searchBaseUrl})
		if err != nil {
			return err
		}
		service, err := search.NewService(search.ServiceOptions{
			Client:      client,
			Concurrency: searchConcurrency,
		})
		if err != nil {
			return err
		}

		started := time.Now()
		results, err := service.Select(cmd.Context(), search.SelectionRequest{
			MaxStars: searchCeiling,
			Limit:    searchLimit,
		})
		if err != nil {
			return err
		}

		if len(results) == 0 {
			fmt.Printf("nothing found under %d⭐ (%.1fs)\n", searchCeiling, time.Since(started).Seconds())
			return nil
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"#", "Seller", "Price", "Item"})
		for i, r := range results {
			t.AppendRow(table.Row{i + 1, r.Seller, fmt.Sprintf("%d⭐", r.PriceStars), r.URL})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()
		return nil
	},
}
