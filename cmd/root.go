// Package cmd holds the CLI commands: serve runs the HTTP API, sync runs a
// one-shot synchronization.
package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/tally-bridge/backend/internal/config"
	"github.com/tally-bridge/backend/internal/supabase"
	"github.com/tally-bridge/backend/internal/sync"
	"github.com/tally-bridge/backend/internal/tally"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "tally-bridge",
	Short: "Sync accounting data from a local Tally instance into Supabase",
	Long: `tally-bridge extracts companies, groups, ledgers, cost centres,
vouchers and voucher entries from a locally running Tally ERP instance over
its XML-over-HTTP interface and pushes them into a Supabase project through
the PostgREST API. It can also serve the flattened Tally data as a JSON API.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command. Called by main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to config.json (default is ~/.tally-bridge/config.json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// setupLogging configures the global zerolog logger. Log format can be
// explicitly set; if it is not, it defaults to human readable for
// development and JSON for release.
func setupLogging() {
	ginMode, ok := os.LookupEnv("GIN_MODE")
	if !ok {
		gin.SetMode("release")
	} else {
		gin.SetMode(ginMode)
	}

	logFormat, ok := os.LookupEnv("LOG_FORMAT")
	output := io.Writer(os.Stdout)
	if (!ok && gin.IsDebugging()) || (ok && logFormat == "human") {
		output = zerolog.ConsoleWriter{Out: os.Stdout}
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if verbose || gin.IsDebugging() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	log.Logger = log.Output(output).With().Timestamp().Logger()
}

// loadConfig reads config.json and the table mapping, from --config's
// directory or the default per-user one.
func loadConfig() (config.Config, config.Mapping, error) {
	path := cfgFile
	if path == "" {
		dir, err := config.Dir()
		if err != nil {
			return config.Config{}, nil, err
		}

		path = filepath.Join(dir, config.FileName)
	}

	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, nil, err
	}

	mapping, err := config.LoadMapping(filepath.Join(filepath.Dir(path), config.MappingFileName))
	if err != nil {
		return config.Config{}, nil, err
	}

	return cfg, mapping, nil
}

// buildSyncer wires the Tally client, the Supabase client and the Syncer
// from the configuration.
func buildSyncer(cfg config.Config, mapping config.Mapping) (*tally.Client, *sync.Syncer, error) {
	options := []tally.Option{}

	if cfg.FieldsFile != "" {
		fields, err := tally.LoadFieldOverrides(cfg.FieldsFile)
		if err != nil {
			return nil, nil, err
		}

		options = append(options, tally.WithFields(fields))
	}

	tallyClient := tally.NewClient(cfg.TallyURL, cfg.TallyTimeout(), options...)

	if cfg.SupabaseURL == "" || cfg.SupabaseServiceKey == "" {
		return nil, nil, fmt.Errorf("supabase_url and supabase_service_key must be configured")
	}

	db := supabase.New(supabase.Config{
		ProjectURL: cfg.SupabaseURL,
		ServiceKey: cfg.SupabaseServiceKey,
		UserID:     cfg.UserID,
		BatchSize:  cfg.BatchSize,
	})

	from, to := cfg.Window()

	return tallyClient, sync.New(tallyClient, db, mapping, cfg.SchemaSampleSize, from, to), nil
}
