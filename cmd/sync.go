package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run a one-shot Tally to Supabase synchronization",
	Long: `Fetches all entity types from Tally, replaces the destination tables in
Supabase with the fetched records, and prints the per-entity outcome as JSON.
Exits non-zero when any entity failed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, mapping, err := loadConfig()
		if err != nil {
			return err
		}

		_, syncer, err := buildSyncer(cfg, mapping)
		if err != nil {
			return err
		}

		outcome, err := syncer.Run(cmd.Context())
		if err != nil {
			return err
		}

		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(outcome); err != nil {
			return err
		}

		if outcome.Failed() {
			return fmt.Errorf("sync finished with failed entities")
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
