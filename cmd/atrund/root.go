package main

import (
	"github.com/spf13/cobra"
)

type rootFlags struct {
	configPath    string
	debug         bool
	foreground    bool
	oneShot       bool
	loadLimit     float64
	batchInterval uint
}

func newRootCommand() *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:           "atrund",
		Short:         "Deferred-job execution daemon",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(cmd, flags)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Configuration file path")
	rootCmd.Flags().BoolVarP(&flags.debug, "debug", "d", false, "Enable debug logging and stay in the foreground")
	rootCmd.Flags().BoolVarP(&flags.foreground, "foreground", "f", false, "Stay in the foreground")
	rootCmd.Flags().BoolVarP(&flags.oneShot, "oneshot", "s", false, "Process the spool once and exit")
	rootCmd.Flags().Float64VarP(&flags.loadLimit, "loadavg", "l", 0, "Batch load-average limit (values <= 0 reset to the default)")
	rootCmd.Flags().UintVarP(&flags.batchInterval, "batch-interval", "b", 0, "Minimum seconds between batch job starts")

	rootCmd.AddCommand(newQueueCommand(flags))
	rootCmd.AddCommand(newConfigCommand(flags))

	return rootCmd
}
