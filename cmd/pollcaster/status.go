package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func newStatusCmd(rf *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show slot windows, today's ledger and rotation progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, rf)
			if err != nil {
				return err
			}
			defer a.Close()

			st, err := a.runner.Status(context.Background(), time.Now())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			cal := a.settings.Calendar
			fmt.Fprintf(out, "now        %s\n", st.Now.Format("2006-01-02 15:04:05 MST"))
			fmt.Fprintf(out, "tolerance  %s\n", cal.Tolerance())
			for _, c := range st.Slots {
				mark := " "
				switch {
				case c.Fired:
					mark = "x"
				case c.InWindow:
					mark = "*"
				}
				fmt.Fprintf(out, "  [%s] %02d:00  %+v\n", mark, c.Hour, c.Delta.Round(time.Second))
			}
			fired := make([]string, 0, len(st.FiredToday))
			for _, h := range st.FiredToday {
				fired = append(fired, fmt.Sprintf("%02d", h))
			}
			fmt.Fprintf(out, "fired      %s\n", orNone(strings.Join(fired, ", ")))
			fmt.Fprintf(out, "ledger     %d/%d\n", st.LedgerLen, st.Retention)
			if st.HasSlot {
				fmt.Fprintf(out, "would run  slot %02d:00\n", st.WouldSelect)
			} else {
				fmt.Fprintln(out, "would run  no")
			}
			fmt.Fprintf(out, "rotation   %d/%d consumed\n", st.Consumed, st.PoolSize)
			next := st.Next.ID
			if st.WouldReset {
				next += " (after restart)"
			}
			fmt.Fprintf(out, "next       %s\n", next)
			return nil
		},
	}
}

func newResetCmd(rf *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Forget which polls were delivered; the ledger is kept",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, rf)
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := a.runner.ResetRotation(context.Background())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cleared %d delivered ids\n", n)
			return nil
		},
	}
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
