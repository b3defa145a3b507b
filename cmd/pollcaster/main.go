package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"pollcaster/internal/config"
)

type rootFlags struct {
	configPath string
	envFile    string
}

func newRootCmd() *cobra.Command {
	rf := &rootFlags{}
	root := &cobra.Command{
		Use:   "pollcaster",
		Short: "Publish one poll per calendar slot, rotating through a question pool",
		Long: `pollcaster checks whether the current time falls inside a configured slot
window that has not fired today. If so, it publishes the next unused poll from
the pool and records both the slot and the poll.

Run it from cron every few minutes, or use "pollcaster daemon".

Examples:
  pollcaster                      # same as "pollcaster run"
  pollcaster run --force          # publish now, ignoring the calendar
  pollcaster status
  pollcaster --config /etc/pollcaster.yaml daemon`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&rf.configPath, "config", "c", config.DefaultPath, "Config file (JSON or YAML)")
	root.PersistentFlags().StringVar(&rf.envFile, "env-file", config.DefaultEnvFile, "Dotenv file with credentials, read if present")

	run := newRunCmd(rf)
	root.RunE = run.RunE
	root.Flags().AddFlagSet(run.Flags())

	root.AddCommand(run, newDaemonCmd(rf), newStatusCmd(rf), newResetCmd(rf))
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "pollcaster:", err)
		os.Exit(1)
	}
}
