package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/warp/points-engine/factory"
	"github.com/warp/points-engine/ledger"
	"github.com/warp/points-engine/rewards"
)

var (
	exportOut     string
	catalogFormat string
)

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Print a period's balance and payout",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		state, period, err := readPeriod(cmd.Context())
		if err != nil {
			return err
		}
		p := rewards.Summarize(state.Balance)

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s: %d points (%d entries)\n", period, state.Balance, len(state.Entries))
		fmt.Fprintln(out, p.Message)
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a period's CSV report",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		state, period, err := readPeriod(cmd.Context())
		if err != nil {
			return err
		}
		exp, err := ledger.NewExport(period, state.Entries)
		if err != nil {
			return err
		}

		switch exportOut {
		case "-":
			_, err = cmd.OutOrStdout().Write(exp.Body)
			return err
		case "":
			exportOut = exp.Filename
		}
		if err := os.WriteFile(exportOut, exp.Body, 0o644); err != nil {
			return fmt.Errorf("write export: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", exportOut)
		return nil
	},
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Print the active catalog",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := loadCatalog(cfg, logger)
		if err != nil {
			return err
		}
		data, err := factory.EncodeCatalog(cat, factory.Format(catalogFormat))
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var periodsCmd = &cobra.Command{
	Use:   "periods",
	Short: "List stored periods (sqlite only)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, closeStore, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer closeStore()
		if db == nil {
			return errors.New("periods requires sqlite storage")
		}

		periods, err := db.Periods(cmd.Context())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "PERIOD\tBALANCE\tENTRIES\tUPDATED")
		for _, p := range periods {
			fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", p.Period, p.Balance, p.Entries, p.UpdatedAt.Local().Format(time.DateTime))
		}
		return w.Flush()
	},
}

// readPeriod loads the --period record. A missing record reads as a fresh period.
func readPeriod(ctx context.Context) (ledger.State, ledger.PeriodKey, error) {
	period, err := selectedPeriod()
	if err != nil {
		return ledger.State{}, "", fmt.Errorf("invalid --period: %w", err)
	}

	st, _, closeStore, err := openStore(cfg)
	if err != nil {
		return ledger.State{}, "", err
	}
	defer closeStore()

	state, ok, err := st.Load(ctx, period)
	if err != nil {
		return ledger.State{}, "", err
	}
	if !ok {
		state = ledger.FreshState()
	}
	return state, period, nil
}
