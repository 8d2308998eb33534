/*
main.go - Application entry point

PURPOSE:
  The points command: runs the HTTP server and offers read-only reports
  over the stored periods.

COMMANDS:
  serve     Start the HTTP server (default)
  balance   Print a period's balance and payout
  export    Write a period's CSV report
  catalog   Print the active catalog (json, yaml or toml)
  periods   List stored periods (sqlite only)

CONFIGURATION:
  Settings come from the environment (see config/config.go), optionally
  preloaded from a dotenv file:

    POINTS_PORT, POINTS_STORAGE, POINTS_DB_PATH, POINTS_ADMIN_CODE,
    POINTS_CATALOG_PATH, POINTS_ALLOWED_ORIGINS, POINTS_STATIC_DIR,
    POINTS_ROLLOVER_INTERVAL, LOG_LEVEL, LOG_FORMAT

EXAMPLES:
  # Run with file database
  POINTS_DB_PATH=./data/points.db points serve

  # Run in memory on a different port
  POINTS_STORAGE=memory POINTS_PORT=3000 points serve

  # Download last month's report
  points export --period "February 2025" -o february.csv

SEE ALSO:
  - api/server.go: Router configuration
  - ledger/session.go: Session lifecycle
*/
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/warp/points-engine/config"
)

var (
	envFile   string
	periodArg string

	cfg    config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:           "points",
	Short:         "Monthly points ledger for a child's behavior and grades",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(envFile)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		logger, err = cfg.NewLogger()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to preload (ignored if missing)")

	for _, c := range []*cobra.Command{balanceCmd, exportCmd} {
		c.Flags().StringVar(&periodArg, "period", "", `period to read, e.g. "March 2025" (default: current month)`)
	}
	exportCmd.Flags().StringVarP(&exportOut, "output", "o", "", "output file (default: the period's report name, - for stdout)")
	catalogCmd.Flags().StringVarP(&catalogFormat, "format", "f", "json", "output format: json, yaml or toml")

	rootCmd.AddCommand(serveCmd, balanceCmd, exportCmd, catalogCmd, periodsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
