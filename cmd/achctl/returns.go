package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kevin07696/ach-processor/internal/nacha"
)

func returnsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "returns",
		Short: "ACH return reason codes",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "lookup CODE",
		Short: "Describe a return code such as R01",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reason, ok := nacha.LookupReturnReason(strings.ToUpper(args[0]))
			if !ok {
				return fmt.Errorf("unknown return code %q", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n%s\n", reason.Code, reason.Reason, reason.Description)
			return nil
		},
	})

	return cmd
}
