package cmd

import (
	"github.com/spf13/cobra"

	"github.com/tally-bridge/backend/internal/controllers"
	"github.com/tally-bridge/backend/internal/router"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the flattened Tally data as a JSON API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, mapping, err := loadConfig()
		if err != nil {
			return err
		}

		tallyClient, syncer, err := buildSyncer(cfg, mapping)
		if err != nil {
			return err
		}

		from, to := cfg.Window()
		co := controllers.Controller{
			Tally:  tallyClient,
			Syncer: syncer,
			From:   from,
			To:     to,
		}

		r, err := router.Config()
		if err != nil {
			return err
		}

		router.AttachRoutes(co, r.Group(""))

		// Listens on PORT if set, :8080 otherwise
		return r.Run()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
