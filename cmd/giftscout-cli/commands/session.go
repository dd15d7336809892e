package commands

import (
	"os"

	"giftscout-backend/lib/tgsession"

	"github.com/spf13/cobra"
)

var (
	sessionApiID   int
	sessionApiHash string
	sessionFile    string
)

func init() {
	sessionCmd.Flags().IntVar(&sessionApiID, "api-id", 0, "telegram api id")
	sessionCmd.Flags().StringVar(&sessionApiHash, "api-hash", "", "telegram api hash")
	sessionCmd.Flags().StringVar(&sessionFile, "file", "tg.session.json", "where to store the session")
	sessionCmd.MarkFlagRequired("api-id")
	sessionCmd.MarkFlagRequired("api-hash")
	rootCmd.AddCommand(sessionCmd)
}

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Interactively logs into a Telegram account and stores a reusable session file.",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := tgsession.NewClient(tgsession.Options{
			ApiID:       sessionApiID,
			ApiHash:     sessionApiHash,
			SessionFile: sessionFile,
		})
		if err != nil {
			return err
		}
		return client.Provision(cmd.Context(), os.Stdin, os.Stdout)
	},
}
