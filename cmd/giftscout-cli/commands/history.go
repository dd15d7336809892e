package commands

import (
	"os"

	configsqlite "giftscout-backend/lib/configutil/sqlite"
	"giftscout-backend/lib/searchlog"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	historyFile  string
	historyCount int
)

func init() {
	historyCmd.Flags().StringVar(&historyFile, "file", "searchlog.db", "search log database path")
	historyCmd.Flags().IntVar(&historyCount, "count", 20, "number of entries to show")
	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Prints the most recent selection runs from the search log.",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := configsqlite.Struct{File: historyFile}.OpenDB(searchlog.Schema)
		if err != nil {
			return err
		}
		defer db.Close()

		entries, err := searchlog.NewStore(db).Recent(cmd.Context(), historyCount)
		if err != nil {
			return err
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Time", "Origin", "Ceiling", "Results", "Duration"})
		for _, e := range entries {
			t.AppendRow(table.Row{
				e.Time.Format("2006-01-02 15:04:05"),
				e.Origin,
				e.Ceiling,
				e.ResultCount,
				e.Duration.String(),
			})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()
		return nil
	},
}
