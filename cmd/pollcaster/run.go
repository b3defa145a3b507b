package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"pollcaster/internal/scheduler"
)

func newRunCmd(rf *rootFlags) *cobra.Command {
	var (
		force bool
		nowS  string
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Perform one scheduler run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now()
			if nowS != "" {
				t, err := time.Parse(time.RFC3339, nowS)
				if err != nil {
					return fmt.Errorf("--now: %w", err)
				}
				now = t
			}

			a, err := openApp(cmd, rf)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			var res scheduler.Result
			if force {
				res, err = a.runner.Force(ctx, now)
			} else {
				res, err = a.runner.Run(ctx, now)
			}
			if err != nil {
				return err
			}
			printResult(cmd, res)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Publish the next poll now, ignoring the calendar and ledger")
	cmd.Flags().StringVar(&nowS, "now", "", "Evaluate the calendar at this RFC3339 instant instead of the clock")
	return cmd
}

func printResult(cmd *cobra.Command, res scheduler.Result) {
	out := cmd.OutOrStdout()
	switch res.State {
	case scheduler.StateNoOp:
		fmt.Fprintln(out, "no eligible slot")
	case scheduler.StateRecorded:
		where := "forced"
		if res.HasSlot {
			where = fmt.Sprintf("slot %02d:00", res.Hour)
		}
		fmt.Fprintf(out, "published %s (%s) as %s\n", res.ItemID, where, res.DeliveryID)
	default:
		fmt.Fprintf(out, "run ended in state %s\n", res.State)
	}
}
