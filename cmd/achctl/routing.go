package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kevin07696/ach-processor/internal/domain"
)

func routingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "routing",
		Short: "ABA routing number utilities",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "validate ROUTING...",
		Short: "Check routing numbers against the ABA 3-7-1 checksum",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			invalid := 0
			for _, r := range args {
				status := "valid"
				if !domain.ValidateRoutingNumber(r) {
					status = "invalid"
					invalid++
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", r, status)
			}
			if invalid > 0 {
				return fmt.Errorf("%d of %d routing numbers are invalid", invalid, len(args))
			}
			return nil
		},
	})

	return cmd
}
