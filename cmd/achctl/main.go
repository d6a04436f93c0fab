package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "achctl",
		Short:         "Offline ACH tooling: routing checks, fees, schedules and NACHA files",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(routingCmd())
	rootCmd.AddCommand(feeCmd())
	rootCmd.AddCommand(scheduleCmd())
	rootCmd.AddCommand(nachaCmd())
	rootCmd.AddCommand(returnsCmd())

	return rootCmd
}
